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
 *  format.go - Implementa l'operació FORMAT. Esborra tot el contingut
 *              de la NAND.
 *
 */

package ops

import (
  "errors"
  
  "github.com/adriagipas/nandcp/utils"
)


/************/
/* OPERACIÓ */
/************/

func Format ( args *utils.Args ) (err error) {

  flags,rest,err := args.SplitFlags ( "-secure" )
  if err != nil { return err }
  if len(rest) != 0 {
    return errors.New ( "format does not accept paths" )
  }
  
  n,err := openNAND ( args, true )
  if err != nil { return err }
  defer func() { err= closeNAND ( n, err ) }()

  return n.Format ( flags["-secure"] )
  
} // end Format
