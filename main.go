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
 *  main.go - Utilitat per manipular bolcats de la NAND de la Wii.
 */

package main;

import (
  "os"
  
  "github.com/adriagipas/nandcp/ops"
  "github.com/adriagipas/nandcp/utils"
  "github.com/sirupsen/logrus"
)

func main() {

  // Inicialitza log
  logrus.SetOutput ( os.Stderr )
  logrus.SetFormatter ( &logrus.TextFormatter{
    DisableTimestamp: true,
  })
  logrus.SetLevel ( logrus.WarnLevel )

  // Executa operació
  if args,err := utils.NewArgs(); err == nil {
    if args.Verbose {
      logrus.SetLevel ( logrus.DebugLevel )
    }
    if args.Op == utils.OP_VERSION {
      utils.PrintVersion ()
    } else if args.FileName != "" {
      switch args.Op {
      case utils.OP_SHOW:
        err= ops.Show ( args )
      case utils.OP_LIST:
        err= ops.List ( args )
      case utils.OP_CAT:
        err= ops.Cat ( args )
      case utils.OP_MKDIR:
        err= ops.Mkdir ( args )
      case utils.OP_PUT:
        err= ops.Put ( args )
      case utils.OP_EXTRACT:
        err= ops.Extract ( args )
      case utils.OP_REMOVE:
        err= ops.Remove ( args )
      case utils.OP_CHECK:
        err= ops.Check ( args )
      case utils.OP_FIX:
        err= ops.Fix ( args )
      case utils.OP_FORMAT:
        err= ops.Format ( args )
      case utils.OP_LOST:
        err= ops.Lost ( args )
      case utils.OP_CREATE:
        err= ops.Create ( args )
      default:
        err= ops.Show ( args )
      }
      if err != nil {
        logrus.Fatal ( err )
      }
    }
  } else {
    logrus.Fatal ( err )
  }
  
}
