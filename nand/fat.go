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
 *  fat.go - Taula d'assignació de clusters.
 */

package nand

import (
  "encoding/binary"
  "fmt"
)


/*************/
/* CONSTANTS */
/*************/

const (
  FAT_LAST     = 0xfffb // Final de cadena
  FAT_RESERVED = 0xfffc
  FAT_BAD      = 0xfffd
  FAT_FREE     = 0xfffe

  FAT_SIZE = CLUSTERS_COUNT*2
)


/*******/
/* FAT */
/*******/

// Taula carregada en memòria. Cada cel·la és el següent cluster de la
// cadena o un dels valors especials.
type FAT struct {
  cells []uint16
}


func NewFAT() *FAT {

  ret:= FAT{ cells: make([]uint16,CLUSTERS_COUNT) }
  for i:= range ret.cells {
    ret.cells[i]= FAT_FREE
  }

  return &ret

} // end NewFAT


// Descodifica la taula tal i com està en el superbloc (big endian).
func DecodeFAT( data []byte ) (*FAT,error) {

  if len(data) < FAT_SIZE {
    return nil,fmt.Errorf ( "FAT too short: %d bytes", len(data) )
  }
  ret:= FAT{ cells: make([]uint16,CLUSTERS_COUNT) }
  for i:= range ret.cells {
    ret.cells[i]= binary.BigEndian.Uint16 ( data[2*i:] )
  }

  return &ret,nil

} // end DecodeFAT


func (self *FAT) Encode( data []byte ) {
  for i,v:= range self.cells {
    binary.BigEndian.PutUint16 ( data[2*i:], v )
  }
} // end FAT.Encode


func (self *FAT) Clone() *FAT {

  ret:= FAT{ cells: make([]uint16,len(self.cells)) }
  copy ( ret.cells, self.cells )

  return &ret

} // end FAT.Clone


func (self *FAT) Get( cluster uint16 ) (uint16,error) {

  if int(cluster) >= len(self.cells) {
    return 0,fmt.Errorf ( "%w: cluster %#x out of range",
      ErrChainCorruption, cluster )
  }

  return self.cells[cluster],nil

} // end FAT.Get


func (self *FAT) set( cluster uint16, val uint16 ) {
  self.cells[cluster]= val
} // end FAT.set


// Torna la cadena que comença en START. Una cadena buida comença en
// FAT_LAST. Mai fa més de CLUSTERS_COUNT passos.
func (self *FAT) Chain( start uint16 ) ([]uint16,error) {

  ret:= []uint16{}
  visited:= make([]bool,len(self.cells))
  for cur:= start; cur != FAT_LAST; {
    if int(cur) >= len(self.cells) {
      return nil,fmt.Errorf ( "%w: chain starting at %#x reaches %#x",
        ErrChainCorruption, start, cur )
    }
    if visited[cur] {
      return nil,fmt.Errorf ( "%w: chain starting at %#x loops at %#x",
        ErrChainCorruption, start, cur )
    }
    if len(ret) == len(self.cells) {
      return nil,fmt.Errorf ( "%w: chain starting at %#x is too long",
        ErrChainCorruption, start )
    }
    visited[cur]= true
    ret= append ( ret, cur )
    cur= self.cells[cur]
  }

  return ret,nil

} // end FAT.Chain


func allocatable( cluster int ) bool {
  return cluster < SUPERBLOCK_FIRST_CLUSTER
} // end allocatable


// Reserva el primer cluster lliure i el marca com a final de cadena.
func (self *FAT) Alloc() (uint16,error) {

  for i,v:= range self.cells {
    if !allocatable ( i ) { break }
    if v == FAT_FREE {
      self.cells[i]= FAT_LAST
      return uint16(i),nil
    }
  }

  return 0,fmt.Errorf ( "%w: no free cluster left", ErrOutOfSpace )

} // end FAT.Alloc


// Reserva N clusters i els enllaça. Si no n'hi ha prou no modifica la
// taula.
func (self *FAT) AllocChain( n int ) ([]uint16,error) {

  if free:= self.FreeCount (); free < n {
    return nil,fmt.Errorf ( "%w: %d clusters needed, %d free",
      ErrOutOfSpace, n, free )
  }
  ret:= make([]uint16,0,n)
  for len(ret) < n {
    c,err:= self.Alloc ()
    if err != nil {
      for _,r:= range ret { self.cells[r]= FAT_FREE }
      return nil,err
    }
    if len(ret) > 0 {
      self.cells[ret[len(ret)-1]]= c
    }
    ret= append ( ret, c )
  }

  return ret,nil

} // end FAT.AllocChain


// Allibera tota la cadena. Primer la valida, si està corrupta no
// modifica res.
func (self *FAT) Free( start uint16 ) error {

  chain,err:= self.Chain ( start )
  if err != nil { return err }
  self.FreeClusters ( chain )

  return nil

} // end FAT.Free


func (self *FAT) FreeClusters( clusters []uint16 ) {
  for _,c:= range clusters {
    self.cells[c]= FAT_FREE
  }
} // end FAT.FreeClusters


// Torna a enllaçar una cadena alliberada.
func (self *FAT) relink( chain []uint16 ) {
  for i,c:= range chain {
    if i+1 < len(chain) {
      self.cells[c]= chain[i+1]
    } else {
      self.cells[c]= FAT_LAST
    }
  }
} // end FAT.relink


func (self *FAT) MarkBad( cluster uint16 ) error {

  if int(cluster) >= len(self.cells) {
    return fmt.Errorf ( "cluster %#x out of range", cluster )
  }
  self.cells[cluster]= FAT_BAD

  return nil

} // end FAT.MarkBad


func (self *FAT) MarkReserved( cluster uint16 ) error {

  if int(cluster) >= len(self.cells) {
    return fmt.Errorf ( "cluster %#x out of range", cluster )
  }
  self.cells[cluster]= FAT_RESERVED

  return nil

} // end FAT.MarkReserved


// Cert si la cel·la es preserva sempre (també en formatar).
func Permanent( cell uint16 ) bool {
  return cell == FAT_BAD || cell == FAT_RESERVED
} // end Permanent


func (self *FAT) FreeCount() int {

  ret:= 0
  for i,v:= range self.cells {
    if !allocatable ( i ) { break }
    if v == FAT_FREE { ret++ }
  }

  return ret

} // end FAT.FreeCount


// Estadístiques de la taula.
type FATStats struct {
  Free     int
  Used     int
  Bad      int
  Reserved int
}


func (self *FAT) Stats() FATStats {

  var ret FATStats
  for _,v:= range self.cells {
    switch v {
    case FAT_FREE:
      ret.Free++
    case FAT_BAD:
      ret.Bad++
    case FAT_RESERVED:
      ret.Reserved++
    default:
      ret.Used++
    }
  }

  return ret

} // end FAT.Stats
