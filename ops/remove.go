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
 *  remove.go - Implementa l'operació REMOVE. Elimina fitxers o directoris.
 *
 */

package ops

import (
  "fmt"
  
  "github.com/adriagipas/nandcp/utils"
)


/************/
/* OPERACIÓ */
/************/

func Remove ( args *utils.Args ) (err error) {

  // Comprova que hi han PATHs
  if err := needPaths ( "remove", args.OpArgs ); err != nil {
    return err
  }
  verbose := len(args.OpArgs)>1

  // Obri
  n,err := openNAND ( args, true )
  if err != nil { return err }
  defer func() { err= closeNAND ( n, err ) }()
  
  // Processa args
  for _,path := range args.OpArgs {
    if verbose {
      fmt.Printf ( "Removing %s ...\n", path )
    }
    if err := n.Delete ( path ); err != nil {
      return err
    }
  }
  
  return nil
  
} // end Remove
