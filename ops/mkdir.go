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
 *  mkdir.go - Implementa l'operació MKDIR. Crea directoris.
 *
 */

package ops

import (
  "errors"
  "fmt"
  "path"
  
  "github.com/adriagipas/nandcp/nand"
  "github.com/adriagipas/nandcp/utils"
)


/************/
/* OPERACIÓ */
/************/

func Mkdir ( args *utils.Args ) (err error) {

  // Comprova que hi han PATHs
  if err := needPaths ( "mkdir", args.OpArgs ); err != nil {
    return err
  }

  // Obri
  n,err := openNAND ( args, true )
  if err != nil { return err }
  defer func() { err= closeNAND ( n, err ) }()

  // Processa args
  for _,p := range args.OpArgs {
    if _,err := MakeDirPath ( n, p ); err != nil {
      return err
    }
  }
  
  return nil
  
} // end Mkdir


// Crea una entrada dins de DIR heretant el propietari i els permisos
// del directori pare.
func createIn(

  n        *nand.NAND,
  dir      uint16,
  dir_path string,
  name     string,
  typ      int,
  
) (uint16,error) {

  parent,err := n.FST ().Get ( dir )
  if err != nil { return 0,err }
  
  return n.CreateEntry ( path.Join ( dir_path, name ), parent.UID,
    parent.GID, typ, 0, parent.Perms () )
  
} // end createIn


// Partint de l'arrel crea tots els subdirectoris (si és necessari) del
// camí proporcionat. Torna l'últim directori.
func MakeDirPath( n *nand.NAND, dir_path string ) (uint16,error) {

  fst := n.FST ()
  cur := uint16(nand.FST_ROOT)
  cur_path := "/"
  for _,name := range nand.SplitPath ( dir_path ) {

    // Cerca el subdirectori
    next,err := fst.Lookup ( cur, name )
    if errors.Is ( err, nand.ErrPathNotFound ) { // Crea el directori
      next,err= createIn ( n, cur, cur_path, name, nand.TYPE_DIR )
      if err != nil { return 0,err }
      
    } else if err != nil {
      return 0,err
      
    } else if e,_ := fst.Get ( next ); !e.IsDir () { // És un fitxer
      return 0,fmt.Errorf ( "path (%s) includes a regular file path",
        dir_path )
    }
    cur= next
    cur_path= path.Join ( cur_path, name )
    
  }

  return cur,nil
  
} // end MakeDirPath
