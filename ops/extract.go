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
 *  extract.go - Implementa l'operació EXTRACT. Extrau fitxers i
 *               directoris de la NAND al host.
 *
 */

package ops

import (
  "errors"
  "os"
  
  "github.com/adriagipas/nandcp/nand"
  "github.com/adriagipas/nandcp/utils"
  "github.com/sirupsen/logrus"
)


/************/
/* OPERACIÓ */
/************/

func Extract ( args *utils.Args ) error {

  // Arguments
  flags,rest,err := args.SplitFlags ( "-fat" )
  if err != nil { return err }
  if len(rest) != 2 {
    return errors.New ( "extract needs a NAND path and a host directory" )
  }
  
  // Obri
  opts := nand.Options{
    KeySource: keySource ( args ),
    ReadOnly: true,
    Logger: logrus.StandardLogger (),
    FixNamesForFAT: flags["-fat"],
  }
  n,err := nand.Open ( args.FileName, &opts )
  if err != nil { return err }
  defer n.Close ()

  // Extrau
  idx,err := n.Resolve ( rest[0] )
  if err != nil { return err }
  if err := os.MkdirAll ( rest[1], 0755 ); err != nil {
    return err
  }
  
  return reportEntryErrors ( "extract", n.ExtractToDir ( idx, rest[1] ) )
  
} // end Extract
