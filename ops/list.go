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
 *  list.go - Implementa l'operació LIST. Mostra per pantalla el
 *            contingut d'un directori o la informació d'un fitxer.
 *
 */

package ops

import (
  "fmt"
  "io"
  "os"

  "github.com/adriagipas/nandcp/nand"
  "github.com/adriagipas/nandcp/utils"
)


/************/
/* OPERACIÓ */
/************/

func permsToStr( p nand.Perms ) string {

  ret := []byte{}
  for _,v := range []uint8{p.User,p.Group,p.Other} {
    if v&nand.PERM_READ != 0 {
      ret= append ( ret, 'r' )
    } else {
      ret= append ( ret, '-' )
    }
    if v&nand.PERM_WRITE != 0 {
      ret= append ( ret, 'w' )
    } else {
      ret= append ( ret, '-' )
    }
  }

  return string(ret)
  
} // end permsToStr


func listEntry( out io.Writer, e *nand.Entry ) {

  typ := '-'
  if e.IsDir () { typ= 'd' }
  fmt.Fprintf ( out, "%c%s %08x %04x %02x %10s  %s\n",
    typ, permsToStr ( e.Perms () ), e.UID, e.GID, e.Attr,
    utils.NumBytesToStr ( uint64(e.Size) ), e.GetName () )
  
} // end listEntry


func List ( args *utils.Args ) error {

  // Comprova que hi han PATHs
  if err := needPaths ( "list", args.OpArgs ); err != nil {
    return err
  }

  // Obri
  n,err := openNAND ( args, false )
  if err != nil { return err }
  defer n.Close ()
  fst := n.FST ()
  
  // Processa args
  for _,path := range args.OpArgs {

    idx,err := n.Resolve ( path )
    if err != nil { return err }
    e,err := fst.Get ( idx )
    if err != nil { return err }
    
    // Llista 
    if e.IsDir () {
      children,err := fst.Children ( idx )
      if err != nil { return err }
      if len(args.OpArgs) > 1 {
        fmt.Printf ( "%s:\n", path )
      }
      for _,c := range children {
        ce,_ := fst.Get ( c )
        listEntry ( os.Stdout, ce )
      }
    } else {
      listEntry ( os.Stdout, e )
    }
    
  }
  
  return nil
  
} // end List
