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
 *  put.go - Implementa l'operació PUT. Copia fitxers del host a la
 *           NAND.
 *
 */

package ops

import (
  "errors"
  "fmt"
  "os"
  "path"
  "path/filepath"
  
  "github.com/adriagipas/nandcp/nand"
  "github.com/adriagipas/nandcp/utils"
  "github.com/sirupsen/logrus"
)


/************/
/* OPERACIÓ */
/************/

func Put ( args *utils.Args ) (err error) {

  // Comprova que hi han PATHs
  if len(args.OpArgs) <= 1 {
    return errors.New ( "at least two paths must be provided" )
  }
  srcs := args.OpArgs[:len(args.OpArgs)-1]
  dst := args.OpArgs[len(args.OpArgs)-1]
  
  // Obri
  n,err := openNAND ( args, true )
  if err != nil { return err }
  defer func() { err= closeNAND ( n, err ) }()

  // Destí
  idx,err := n.Resolve ( dst )
  if errors.Is ( err, nand.ErrPathNotFound ) { // Fitxer nou
    if len(srcs) != 1 {
      return fmt.Errorf ( "destination directory '%s' does not exist", dst )
    }
    dir_path,name := path.Split ( path.Clean ( "/"+dst ) )
    dir,err := n.Resolve ( dir_path )
    if err != nil { return err }
    return copyToDir ( n, srcs[0], dir, dir_path, name )
  } else if err != nil {
    return err
  }
  e,err := n.FST ().Get ( idx )
  if err != nil { return err }
  if !e.IsDir () { // Sobreescriu
    if len(srcs) != 1 {
      return fmt.Errorf ( "'%s' is not a directory", dst )
    }
    return copyFile ( n, srcs[0], idx, dst )
  }
  dst_path := path.Clean ( "/"+dst )
  for _,src := range srcs {
    name := filepath.Base ( src )
    if err := copyToDir ( n, src, idx, dst_path, name ); err != nil {
      return err
    }
  }
  
  return nil
  
} // end Put


func copyFile( n *nand.NAND, src string, idx uint16, dst string ) error {

  data,err := os.ReadFile ( src )
  if err != nil { return err }
  logrus.WithFields ( logrus.Fields{
    "src": src,
    "dst": dst,
  }).Info ( "copying" )
  
  return n.SetData ( idx, data )
  
} // end copyFile


// Copia el fitxer o directori SRC dins de DIR amb el nom NAME.
func copyToDir(

  n        *nand.NAND,
  src      string,
  dir      uint16,
  dir_path string,
  name     string,
  
) error {

  info,err := os.Stat ( src )
  if err != nil { return err }
  dst := path.Join ( dir_path, name )
  
  // Entrada destí
  idx,err := n.FST ().Lookup ( dir, name )
  if errors.Is ( err, nand.ErrPathNotFound ) {
    typ := nand.TYPE_FILE
    if info.IsDir () { typ= nand.TYPE_DIR }
    if idx,err= createIn ( n, dir, dir_path, name, typ ); err != nil {
      return err
    }
  } else if err != nil {
    return err
  }
  e,err := n.FST ().Get ( idx )
  if err != nil { return err }
  if e.IsDir () != info.IsDir () {
    return fmt.Errorf ( "cannot copy '%s' over '%s': types differ", src, dst )
  }

  // Copia
  if !info.IsDir () {
    return copyFile ( n, src, idx, dst )
  }
  entries,err := os.ReadDir ( src )
  if err != nil { return err }
  for _,ent := range entries {
    err := copyToDir ( n, filepath.Join ( src, ent.Name () ), idx, dst,
      ent.Name () )
    if err != nil { return err }
  }
  
  return nil
  
} // end copyToDir
