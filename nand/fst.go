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
 *  fst.go - Taula d'entrades (fitxers i directoris).
 *
 *  Les entrades formen un arbre mitjançant els índexs Sub (primer
 *  fill) i Sib (següent germà). L'arrel és l'entrada 0. En els
 *  fitxers Sub és el primer cluster de la cadena.
 */

package nand

import (
  "bytes"
  "encoding/binary"
  "errors"
  "fmt"
  "strings"

  "github.com/go-restruct/restruct"
  "golang.org/x/text/encoding/charmap"
)


/*************/
/* CONSTANTS */
/*************/

const (
  FST_ENTRIES    = 0x17ff
  FST_ENTRY_SIZE = 0x20
  FST_SIZE       = FST_ENTRIES*FST_ENTRY_SIZE
  FST_NULL       = 0xffff
  FST_ROOT       = 0

  NAME_SIZE = 12

  TYPE_FREE = 0
  TYPE_FILE = 1
  TYPE_DIR  = 2

  _MODE_TYPE_MASK = 0x03
)

// Permisos (2 bits cadascun).
const (
  PERM_NONE  = 0
  PERM_READ  = 1
  PERM_WRITE = 2
  PERM_RW    = PERM_READ|PERM_WRITE
)


/*********/
/* ENTRY */
/*********/

// Camps tal i com estan en el disc.
type EntryData struct {
  Name [NAME_SIZE]byte
  Mode uint8
  Attr uint8
  Sub  uint16
  Sib  uint16
  Size uint32
  UID  uint32
  GID  uint16
  X3   uint32
}

type Entry struct {
  EntryData
  Pos uint16 // Índex dins de la taula, no està en el disc
}

type Perms struct {
  User  uint8
  Group uint8
  Other uint8
}


func (self *Entry) Type() int {
  return int(self.Mode&_MODE_TYPE_MASK)
} // end Entry.Type


func (self *Entry) IsDir() bool {
  return self.Type () == TYPE_DIR
} // end Entry.IsDir


func (self *Entry) IsFile() bool {
  return self.Type () == TYPE_FILE
} // end Entry.IsFile


func (self *Entry) IsFree() bool {
  return self.Type () == TYPE_FREE
} // end Entry.IsFree


func (self *Entry) Perms() Perms {
  return Perms{
    User: (self.Mode>>6)&3,
    Group: (self.Mode>>4)&3,
    Other: (self.Mode>>2)&3,
  }
} // end Entry.Perms


func makeMode( typ int, perm Perms ) uint8 {
  return uint8(typ&_MODE_TYPE_MASK) |
    ((perm.User&3)<<6) |
    ((perm.Group&3)<<4) |
    ((perm.Other&3)<<2)
} // end makeMode


// Nom de l'entrada. Els noms estan en ISO-8859-1 farcits amb zeros.
func (self *Entry) GetName() string {

  name:= bytes.TrimRight ( self.Name[:], "\000" )
  if dec,err:= charmap.ISO8859_1.NewDecoder ().Bytes ( name ); err == nil {
    return string(dec)
  }

  return string(name)

} // end Entry.GetName


// Codifica un nom per a una entrada.
func EncodeName( name string ) ([NAME_SIZE]byte,error) {

  var ret [NAME_SIZE]byte
  if name == "" || strings.ContainsAny ( name, "/\000" ) {
    return ret,fmt.Errorf ( "%w: '%s'", ErrInvalidName, name )
  }
  enc,err:= charmap.ISO8859_1.NewEncoder ().Bytes ( []byte(name) )
  if err != nil {
    return ret,fmt.Errorf ( "%w: '%s': %s", ErrInvalidName, name, err )
  }
  if len(enc) > NAME_SIZE {
    return ret,fmt.Errorf ( "%w: '%s' is longer than %d bytes",
      ErrInvalidName, name, NAME_SIZE )
  }
  copy ( ret[:], enc )

  return ret,nil

} // end EncodeName


func freeEntry( pos uint16 ) Entry {

  ret:= Entry{ Pos: pos }
  ret.Sub= FST_NULL
  ret.Sib= FST_NULL

  return ret

} // end freeEntry


/*******/
/* FST */
/*******/

// La taula sencera en memòria. Les entrades s'adrecen per índex.
type FST struct {
  entries []Entry
}


func DecodeFST( data []byte ) (*FST,error) {

  if len(data) < FST_SIZE {
    return nil,fmt.Errorf ( "FST too short: %d bytes", len(data) )
  }
  ret:= FST{ entries: make([]Entry,FST_ENTRIES) }
  for i:= range ret.entries {
    e:= &ret.entries[i]
    raw:= data[i*FST_ENTRY_SIZE:(i+1)*FST_ENTRY_SIZE]
    if err:= restruct.Unpack ( raw, binary.BigEndian, &e.EntryData ); err != nil {
      return nil,fmt.Errorf ( "unable to decode FST entry %d: %s", i, err )
    }
    e.Pos= uint16(i)
  }

  return &ret,nil

} // end DecodeFST


func (self *FST) Encode( data []byte ) error {

  for i:= range self.entries {
    raw,err:= restruct.Pack ( binary.BigEndian, &self.entries[i].EntryData )
    if err != nil {
      return fmt.Errorf ( "unable to encode FST entry %d: %s", i, err )
    }
    copy ( data[i*FST_ENTRY_SIZE:(i+1)*FST_ENTRY_SIZE], raw )
  }

  return nil

} // end FST.Encode


// FST buida amb sols l'arrel.
func NewFST( root_perm Perms ) *FST {

  ret:= FST{ entries: make([]Entry,FST_ENTRIES) }
  for i:= range ret.entries {
    ret.entries[i]= freeEntry ( uint16(i) )
  }
  root:= &ret.entries[FST_ROOT]
  root.Name[0]= '/'
  root.Mode= makeMode ( TYPE_DIR, root_perm )

  return &ret

} // end NewFST


func (self *FST) Clone() *FST {

  ret:= FST{ entries: make([]Entry,len(self.entries)) }
  copy ( ret.entries, self.entries )

  return &ret

} // end FST.Clone


func (self *FST) Len() int {
  return len(self.entries)
} // end FST.Len


func (self *FST) Get( idx uint16 ) (*Entry,error) {

  if int(idx) >= len(self.entries) {
    return nil,fmt.Errorf ( "%w: entry %#x out of range",
      ErrChainCorruption, idx )
  }

  return &self.entries[idx],nil

} // end FST.Get


// Fills d'un directori en l'ordre de la llista de germans.
func (self *FST) Children( idx uint16 ) ([]uint16,error) {

  e,err:= self.Get ( idx )
  if err != nil { return nil,err }
  if !e.IsDir () {
    return nil,fmt.Errorf ( "%w: entry %d", ErrNotDirectory, idx )
  }
  ret:= []uint16{}
  visited:= make(map[uint16]bool)
  for cur:= e.Sub; cur != FST_NULL; {
    if int(cur) >= len(self.entries) || cur == FST_ROOT {
      return nil,fmt.Errorf ( "%w: sibling list of entry %d reaches %#x",
        ErrChainCorruption, idx, cur )
    }
    if visited[cur] {
      return nil,fmt.Errorf ( "%w: sibling list of entry %d loops at %d",
        ErrChainCorruption, idx, cur )
    }
    visited[cur]= true
    ret= append ( ret, cur )
    cur= self.entries[cur].Sib
  }

  return ret,nil

} // end FST.Children


// Busca el fill amb el nom indicat. Si n'hi ha més d'un torna el
// primer de la llista, que és l'últim creat.
func (self *FST) Lookup( dir uint16, name string ) (uint16,error) {

  children,err:= self.Children ( dir )
  if err != nil { return 0,err }
  for _,c:= range children {
    if self.entries[c].GetName () == name {
      return c,nil
    }
  }

  return 0,fmt.Errorf ( "%w: '%s'", ErrPathNotFound, name )

} // end FST.Lookup


// Divideix un camí absolut en components.
func SplitPath( path string ) []string {

  ret:= []string{}
  for _,tok:= range strings.Split ( path, "/" ) {
    if tok != "" {
      ret= append ( ret, tok )
    }
  }

  return ret

} // end SplitPath


func (self *FST) Resolve( path string ) (uint16,error) {

  cur:= uint16(FST_ROOT)
  for _,name:= range SplitPath ( path ) {
    e:= &self.entries[cur]
    if !e.IsDir () {
      return 0,fmt.Errorf ( "%w: '%s' (accessing a file as directory)",
        ErrPathNotFound, path )
    }
    next,err:= self.Lookup ( cur, name )
    if errors.Is ( err, ErrPathNotFound ) {
      return 0,fmt.Errorf ( "%w: '%s'", ErrPathNotFound, path )
    } else if err != nil {
      return 0,err
    }
    cur= next
  }

  return cur,nil

} // end FST.Resolve


// Busca el pare d'una entrada recorrent l'arbre des de l'arrel. Els
// directoris corruptes es salten i sols es torna el seu error si no
// s'ha trobat l'entrada.
func (self *FST) Parent( idx uint16 ) (uint16,error) {

  if idx == FST_ROOT {
    return 0,fmt.Errorf ( "root entry has no parent" )
  }
  var first_err error
  pending:= []uint16{FST_ROOT}
  visited:= make(map[uint16]bool)
  for len(pending) > 0 {
    dir:= pending[len(pending)-1]
    pending= pending[:len(pending)-1]
    if visited[dir] { continue }
    visited[dir]= true
    children,err:= self.Children ( dir )
    if err != nil {
      if first_err == nil { first_err= err }
      continue
    }
    for _,c:= range children {
      if c == idx { return dir,nil }
      if self.entries[c].IsDir () {
        pending= append ( pending, c )
      }
    }
  }
  if first_err != nil {
    return 0,fmt.Errorf ( "entry %d not found: %w", idx, first_err )
  }

  return 0,fmt.Errorf ( "%w: entry %d is not reachable from root",
    ErrPathNotFound, idx )

} // end FST.Parent


func (self *FST) FreeCount() int {

  ret:= 0
  for i:= range self.entries {
    if i != FST_ROOT && self.entries[i].IsFree () { ret++ }
  }

  return ret

} // end FST.FreeCount


// Crea una entrada dins del directori PARENT, al principi de la llista
// de fills. Si la taula està plena no modifica res.
func (self *FST) Create(

  parent uint16,
  name   string,
  uid    uint32,
  gid    uint16,
  typ    int,
  attr   uint8,
  perm   Perms,

) (uint16,error) {

  // Comprovacions
  if typ != TYPE_FILE && typ != TYPE_DIR {
    return 0,fmt.Errorf ( "invalid entry type %d", typ )
  }
  enc_name,err:= EncodeName ( name )
  if err != nil { return 0,err }
  p,err:= self.Get ( parent )
  if err != nil { return 0,err }
  if !p.IsDir () {
    return 0,fmt.Errorf ( "%w: entry %d", ErrNotDirectory, parent )
  }

  // Busca entrada lliure
  var idx uint16
  found:= false
  for i:= 1; i < len(self.entries); i++ {
    if self.entries[i].IsFree () {
      idx,found= uint16(i),true
      break
    }
  }
  if !found {
    return 0,ErrNoFreeEntry
  }

  // Ompli i enllaça
  e:= freeEntry ( idx )
  e.Name= enc_name
  e.Mode= makeMode ( typ, perm )
  e.Attr= attr
  e.UID= uid
  e.GID= gid
  if typ == TYPE_FILE {
    e.Sub= FAT_LAST
  }
  e.Sib= p.Sub
  self.entries[idx]= e
  p.Sub= idx

  return idx,nil

} // end FST.Create


// Entrades del subarbre (IDX inclòs) en postordre: els fills abans
// que el pare.
func (self *FST) Subtree( idx uint16 ) ([]uint16,error) {
  return self.subtree ( idx, make(map[uint16]bool) )
} // end FST.Subtree


func (self *FST) subtree(

  idx     uint16,
  visited map[uint16]bool,

) ([]uint16,error) {

  e,err:= self.Get ( idx )
  if err != nil { return nil,err }
  if visited[idx] {
    return nil,fmt.Errorf ( "%w: entry %d is reachable twice",
      ErrChainCorruption, idx )
  }
  visited[idx]= true
  ret:= []uint16{}
  if e.IsDir () {
    children,err:= self.Children ( idx )
    if err != nil { return nil,err }
    for _,c:= range children {
      sub,err:= self.subtree ( c, visited )
      if err != nil { return nil,err }
      ret= append ( ret, sub... )
    }
  }
  ret= append ( ret, idx )

  return ret,nil

} // end FST.subtree


// Desenllaça IDX de la llista de fills de PARENT.
func (self *FST) unlink( parent uint16, idx uint16 ) {

  p:= &self.entries[parent]
  if p.Sub == idx {
    p.Sub= self.entries[idx].Sib
    return
  }
  for cur:= p.Sub; cur != FST_NULL; cur= self.entries[cur].Sib {
    if self.entries[cur].Sib == idx {
      self.entries[cur].Sib= self.entries[idx].Sib
      return
    }
  }

} // end FST.unlink


// Elimina l'entrada i tot el seu contingut, alliberant les cadenes
// dels fitxers en FAT. Valida tot abans de modificar res.
func (self *FST) Delete( idx uint16, fat *FAT ) error {

  if idx == FST_ROOT {
    return fmt.Errorf ( "the root entry cannot be deleted" )
  }
  parent,err:= self.Parent ( idx )
  if err != nil { return err }
  entries,err:= self.Subtree ( idx )
  if err != nil { return err }

  // Cadenes
  chains:= [][]uint16{}
  for _,i:= range entries {
    e:= &self.entries[i]
    if !e.IsFile () { continue }
    chain,err:= fat.Chain ( e.Sub )
    if err != nil {
      return EntryError{ Entry: i, Err: err }
    }
    chains= append ( chains, chain )
  }

  // Modifica
  self.unlink ( parent, idx )
  for _,chain:= range chains {
    fat.FreeClusters ( chain )
  }
  for _,i:= range entries {
    self.entries[i]= freeEntry ( i )
  }

  return nil

} // end FST.Delete


// Buida la taula deixant sols l'arrel sense fills.
func (self *FST) Clear() {

  for i:= 1; i < len(self.entries); i++ {
    self.entries[i]= freeEntry ( uint16(i) )
  }
  self.entries[FST_ROOT].Sub= FST_NULL

} // end FST.Clear
