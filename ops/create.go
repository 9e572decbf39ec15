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
 *  create.go - Implementa l'operació CREATE. Crea un bolcat nou buit.
 *
 */

package ops

import (
  "errors"
  "fmt"
  "strconv"
  
  "github.com/adriagipas/nandcp/nand"
  "github.com/adriagipas/nandcp/utils"
  "github.com/sirupsen/logrus"
)


/************/
/* OPERACIÓ */
/************/

func Create ( args *utils.Args ) error {

  if len(args.OpArgs) == 0 {
    return errors.New ( "no dump type provided to create command" )
  }
  
  // Tipus
  var dump_type int
  switch args.OpArgs[0] {
  case "ecc":
    dump_type= nand.DUMP_TYPE_ECC
  case "noecc":
    dump_type= nand.DUMP_TYPE_NO_ECC
  case "boot":
    dump_type= nand.DUMP_TYPE_BOOT
  default:
    return fmt.Errorf ( "unknown dump type: %s", args.OpArgs[0] )
  }

  // Blocs dolents
  bad := []uint16{}
  for _,arg := range args.OpArgs[1:] {
    b,err := strconv.ParseUint ( arg, 0, 16 )
    if err != nil {
      return fmt.Errorf ( "wrong bad block number '%s': %s", arg, err )
    }
    bad= append ( bad, uint16(b) )
  }

  // Claus
  var keys *nand.Keys
  if src := keySource ( args ); src != nil {
    var err error
    if keys,err= src.Keys (); err != nil { return err }
  }
  
  return nand.CreateNew ( args.FileName, dump_type, keys, bad,
    logrus.StandardLogger () )
  
} // end Create
