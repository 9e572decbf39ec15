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
 *  common.go - Funcions compartides per totes les operacions.
 *
 */

package ops

import (
  "errors"
  "fmt"

  "github.com/adriagipas/nandcp/nand"
  "github.com/adriagipas/nandcp/utils"
  "github.com/sirupsen/logrus"
)


/*********************/
/* FUNCIONS PRIVADES */
/*********************/

// Font de claus indicada en la línia de comandaments. Torna nil si no
// se n'ha indicat cap.
func keySource( args *utils.Args ) *nand.KeySource {

  if args.KeysFile != "" {
    return &nand.KeySource{
      Format: nand.KEY_SOURCE_KEYFILE,
      FileName: args.KeysFile,
    }
  } else if args.OTPFile != "" {
    return &nand.KeySource{
      Format: nand.KEY_SOURCE_OTP,
      FileName: args.OTPFile,
    }
  }

  return nil
  
} // end keySource


func openNAND( args *utils.Args, writable bool ) (*nand.NAND,error) {

  opts := nand.Options{
    KeySource: keySource ( args ),
    ReadOnly: !writable,
    Logger: logrus.StandardLogger (),
  }

  return nand.Open ( args.FileName, &opts )
  
} // end openNAND


// Escriu les metadades i tanca. Si ERR no és nil sols tanca.
func closeNAND( n *nand.NAND, err error ) error {

  if err == nil && n.IsDirty () {
    err= n.WriteMetaData ()
  }
  if cerr := n.Close (); err == nil {
    err= cerr
  }

  return err
  
} // end closeNAND


// Mostra els errors per entrada i torna un error resum.
func reportEntryErrors( what string, errs []nand.EntryError ) error {

  if len(errs) == 0 { return nil }
  for _,e := range errs {
    logrus.WithFields ( logrus.Fields{
      "entry": e.Entry,
      "path": e.Path,
    }).Error ( e.Err )
  }
  
  return fmt.Errorf ( "%s: %d entries failed", what, len(errs) )
  
} // end reportEntryErrors


func checkNoArgs( name string, args *utils.Args ) error {
  if len(args.OpArgs) != 0 {
    return fmt.Errorf ( "(%s) invalid arguments: %v", name, args.OpArgs )
  }
  return nil
} // end checkNoArgs


func needPaths( name string, args []string ) error {
  if len(args) == 0 {
    return errors.New ( "no file paths provided to "+name+" command" )
  }
  return nil
} // end needPaths
