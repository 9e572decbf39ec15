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
 * show.go - Implementa l'operació SHOW. Mostra per pantala la
 *           informació del bolcat.
 */

package ops

import (
  "fmt"
  "os"

  "github.com/adriagipas/nandcp/utils"
)


/**********************/
/* FUNCIONS PÚBLIQUES */
/**********************/

func Show ( args *utils.Args ) error {

  // No es suporten arguments
  if err := checkNoArgs ( "SHOW", args ); err != nil {
    return err
  }

  // Executa operació
  n,err := openNAND ( args, false )
  if err != nil { return err }
  defer n.Close ()
  fmt.Println("")
  if err = n.PrintInfo ( os.Stdout, "  " ); err != nil {
    return err
  }
  fmt.Println("")
  
  return nil
  
} // end Show
