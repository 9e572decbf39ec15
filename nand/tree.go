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
 *  tree.go - Recorregut de l'arbre, instantània de l'arbre, extracció
 *            i informació general.
 */

package nand

import (
  "fmt"
  "io"
  "os"
  "path"
  "path/filepath"
  "strings"

  "github.com/sirupsen/logrus"
)


/*************/
/* RECORREGUT */
/*************/

// Funció cridada per cada entrada del recorregut. Si torna error
// l'entrada es dona per fallida i, si és un directori, no es baixa.
type walkFunc func( idx uint16, parent uint16, path string, e *Entry ) error


// Camí absolut d'una entrada.
func (self *NAND) EntryPath( idx uint16 ) (string,error) {

  names:= []string{}
  visited:= make(map[uint16]bool)
  for cur:= idx; cur != FST_ROOT; {
    if visited[cur] {
      return "",fmt.Errorf ( "%w: entry %d", ErrChainCorruption, idx )
    }
    visited[cur]= true
    e,err:= self.fst.Get ( cur )
    if err != nil { return "",err }
    names= append ( names, e.GetName () )
    if cur,err= self.fst.Parent ( cur ); err != nil {
      return "",err
    }
  }
  for i,j:= 0,len(names)-1; i < j; i,j= i+1,j-1 {
    names[i],names[j]= names[j],names[i]
  }

  return "/"+strings.Join ( names, "/" ),nil

} // end EntryPath


// Recorre el subarbre d'IDX en preordre. Els errors de cada entrada
// s'acumulen i el recorregut continua.
func (self *NAND) walk( idx uint16, fn walkFunc ) []EntryError {

  ret:= []EntryError{}
  root_path,err:= self.EntryPath ( idx )
  if err != nil {
    return append ( ret, EntryError{ Entry: idx, Err: err } )
  }
  visited:= make(map[uint16]bool)
  var rec func(i uint16, parent uint16, p string)
  rec= func(i uint16, parent uint16, p string) {
    if visited[i] {
      ret= append ( ret, EntryError{ i, p, fmt.Errorf (
        "%w: entry reachable twice", ErrChainCorruption ) } )
      return
    }
    visited[i]= true
    e,err:= self.fst.Get ( i )
    if err != nil {
      ret= append ( ret, EntryError{ i, p, err } )
      return
    }
    if err:= fn ( i, parent, p, e ); err != nil {
      ret= append ( ret, EntryError{ i, p, err } )
      return
    }
    if !e.IsDir () { return }
    children,err:= self.fst.Children ( i )
    if err != nil {
      ret= append ( ret, EntryError{ i, p, err } )
      return
    }
    for _,c:= range children {
      rec ( c, i, path.Join ( p, self.fst.entries[c].GetName () ) )
    }
  }
  rec ( idx, FST_NULL, root_path )

  return ret

} // end walk


/**********/
/* ARBRE */
/**********/

// Node de l'instantània de l'arbre. És una còpia, modificar-la no
// afecta a la NAND.
type Node struct {
  Name     string
  Entry    uint16
  Type     int
  Size     uint32
  UID      uint32
  GID      uint16
  X3       uint32
  Perms    Perms
  Mode     uint8
  Attr     uint8
  Children []*Node
}


// Construeix l'instantània de tot l'arbre. Les entrades que no s'han
// pogut recórrer no apareixen i es tornen com a errors.
func (self *NAND) GetTree() (*Node,[]EntryError,error) {

  if _,err:= self.fst.Get ( FST_ROOT ); err != nil {
    return nil,nil,err
  }
  nodes:= make(map[uint16]*Node)
  var root *Node
  errs:= self.walk ( FST_ROOT, func(i,parent uint16, p string, e *Entry) error {
    n:= &Node{
      Name: e.GetName (),
      Entry: i,
      Type: e.Type (),
      Size: e.Size,
      UID: e.UID,
      GID: e.GID,
      X3: e.X3,
      Perms: e.Perms (),
      Mode: e.Mode,
      Attr: e.Attr,
    }
    nodes[i]= n
    if i == FST_ROOT {
      root= n
      return nil
    }
    if pn,ok:= nodes[parent]; ok {
      pn.Children= append ( pn.Children, n )
    }
    return nil
  })

  return root,errs,nil

} // end GetTree


/**************/
/* EXTRACCIÓ */
/**************/

func (self *NAND) localName( name string ) string {
  if name == "." || name == ".." {
    return "_"
  }
  if self.fix_names {
    return strings.ReplaceAll ( name, ":", "-" )
  }
  return name
} // end localName


// Extrau el subarbre d'IDX dins del directori local DIR. Si IDX és
// l'arrel s'extrau el seu contingut. Els fitxers que fallen es tornen
// com a errors i l'extracció continua.
func (self *NAND) ExtractToDir( idx uint16, dir string ) []EntryError {

  base,err:= self.EntryPath ( idx )
  if err != nil {
    return []EntryError{{ Entry: idx, Err: err }}
  }
  return self.walk ( idx, func(i,_ uint16, p string, e *Entry) error {
    rel:= strings.TrimPrefix ( p, path.Dir ( base ) )
    parts:= SplitPath ( rel )
    for j,part:= range parts {
      parts[j]= self.localName ( part )
    }
    local:= filepath.Join ( append ( []string{dir}, parts... )... )
    log:= self.log.WithFields ( logrus.Fields{ "entry": i, "path": p } )
    if e.IsDir () {
      if err:= os.MkdirAll ( local, 0755 ); err != nil { return err }
      log.Debug ( "directory extracted" )
      return nil
    }
    data,err:= self.GetFile ( i )
    if err != nil {
      log.WithError ( err ).Error ( "unable to extract file" )
      return err
    }
    if err:= os.WriteFile ( local, data, 0644 ); err != nil { return err }
    log.WithField ( "local", local ).Info ( "file extracted" )
    return nil
  })

} // end ExtractToDir


/***********/
/* INFO */
/***********/

func (self *NAND) PrintInfo( file io.Writer, prefix string ) error {

  P:= func(format string, args ...any) {
    fmt.Fprint ( file, prefix )
    fmt.Fprintf ( file, format, args... )
    fmt.Fprintln ( file )
  }

  P ( "NAND dump: %s", self.file_name )
  P ( "  Layout:      %s", self.layout.String () )
  aes,hmac:= "no","no"
  if self.keys != nil && self.keys.AES != nil { aes= "yes" }
  if self.keys != nil && self.keys.HMAC != nil { hmac= "yes" }
  P ( "  AES key:     %s", aes )
  P ( "  HMAC key:    %s", hmac )
  slot,cluster,version:= self.ActiveSuperblock ()
  P ( "  Superblock:  slot %d (cluster %#x), version %d",
    slot, cluster, version )
  st:= self.fat.Stats ()
  P ( "  Clusters:    %d free, %d used, %d bad, %d reserved",
    st.Free, st.Used, st.Bad, st.Reserved )
  P ( "  Free space:  %d bytes",
    uint64(self.fat.FreeCount ())*CLUSTER_SIZE )
  P ( "  FST entries: %d free of %d", self.fst.FreeCount (), FST_ENTRIES-1 )
  if self.dirty {
    P ( "  (unwritten changes)" )
  }

  return nil

} // end PrintInfo
