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
 *  cat.go - Implementa l'operació CAT. Concatena fitxers i els
 *           imprimeix per pantalla.
 *
 */

package ops

import (
  "os"
  
  "github.com/adriagipas/nandcp/utils"
)


/************/
/* OPERACIÓ */
/************/

func Cat ( args *utils.Args ) error {

  // Comprova que hi han PATHs
  if err := needPaths ( "cat", args.OpArgs ); err != nil {
    return err
  }

  // Obri
  n,err := openNAND ( args, false )
  if err != nil { return err }
  defer n.Close ()
  
  // Processa args
  for _,path := range args.OpArgs {
    data,err := n.GetData ( path )
    if err != nil { return err }
    if _,err := os.Stdout.Write ( data ); err != nil {
      return err
    }
  }
  
  return nil
  
} // end Cat
