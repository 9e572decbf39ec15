/*
 * Copyright 2026 Adrià Giménez Pastor.
 *
 * This file is part of adriagipas/nandcp.
 *
 * adriagipas/nandcp is free software: you can redistribute it and/or
 * modify it under the terms of the GNU General Public License as
 * published by the Free Software Foundation, either version 3 of the
 * License, or (at your option) any later version.
 *
 * adriagipas/nandcp is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
 * General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with adriagipas/nandcp.  If not, see <https://www.gnu.org/licenses/>.
 */
/*
 *  lost.go - Implementa l'operació LOST. Mostra (i allibera) els
 *            clusters perduts.
 *
 */

package ops

import (
  "errors"
  "fmt"
  
  "github.com/adriagipas/nandcp/nand"
  "github.com/adriagipas/nandcp/utils"
)


/************/
/* OPERACIÓ */
/************/

func Lost ( args *utils.Args ) (err error) {

  flags,rest,err := args.SplitFlags ( "-free" )
  if err != nil { return err }
  if len(rest) != 0 {
    return errors.New ( "lost does not accept paths" )
  }
  
  n,err := openNAND ( args, flags["-free"] )
  if err != nil { return err }
  defer func() { err= closeNAND ( n, err ) }()

  var lost []uint16
  if flags["-free"] {
    lost,err= n.FreeLostClusters ()
  } else {
    lost,err= n.LostClusters ()
  }
  if err != nil { return err }
  for _,c := range lost {
    fmt.Printf ( "%04x\n", c )
  }
  fmt.Printf ( "%d lost clusters (%s)\n", len(lost),
    utils.NumBytesToStr ( uint64(len(lost))*nand.CLUSTER_SIZE ) )
  
  return nil
  
} // end Lost
