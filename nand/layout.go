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
 *  layout.go - Traducció de pàgines a offsets dins del fitxer bolcat.
 */

package nand

import (
  "fmt"
  "io"
  "os"

  "github.com/adriagipas/nandcp/utils"
)


/*************/
/* CONSTANTS */
/*************/

const (
  PAGE_SIZE         = 0x800
  SPARE_SIZE        = 0x40
  PAGES_PER_CLUSTER = 8
  CLUSTER_SIZE      = PAGE_SIZE*PAGES_PER_CLUSTER
  CLUSTERS_COUNT    = 0x8000
  PAGES_COUNT       = CLUSTERS_COUNT*PAGES_PER_CLUSTER

  // Un bloc (unitat d'esborrat) són 8 clusters.
  CLUSTERS_PER_BLOCK = 8
  BLOCKS_COUNT       = CLUSTERS_COUNT/CLUSTERS_PER_BLOCK

  // Regió d'arrencada que precedeix les pàgines en els bolcats de
  // tipus DUMP_TYPE_BOOT. Té el format d'un fitxer de claus.
  BOOT_REGION_SIZE = KEYFILE_SIZE
)

const (
  DUMP_TYPE_INVALID = 0
  DUMP_TYPE_NO_ECC  = 1 // Sols pàgines
  DUMP_TYPE_ECC     = 2 // Pàgines + spare
  DUMP_TYPE_BOOT    = 3 // Regió d'arrencada + pàgines + spare
)

const (
  DUMP_SIZE_NO_ECC = PAGES_COUNT*PAGE_SIZE
  DUMP_SIZE_ECC    = PAGES_COUNT*(PAGE_SIZE+SPARE_SIZE)
  DUMP_SIZE_BOOT   = DUMP_SIZE_ECC + BOOT_REGION_SIZE
)


/**********/
/* LAYOUT */
/**********/

// Descriu com estan guardades les pàgines dins del fitxer. Es fixa en
// obrir el fitxer i no canvia mai.
type Layout struct {

  Type int

  size   int64 // Grandària total del fitxer
  base   int64 // Offset de la primera pàgina
  stride int64 // Distància entre pàgines

}


// Decideix el tipus de bolcat a partir de la grandària del fitxer. No
// s'empra cap altra informació.
func NewLayout( size int64 ) (Layout,error) {

  ret:= Layout{ size: size }
  switch size {
  case DUMP_SIZE_NO_ECC:
    ret.Type= DUMP_TYPE_NO_ECC
    ret.stride= PAGE_SIZE
  case DUMP_SIZE_ECC:
    ret.Type= DUMP_TYPE_ECC
    ret.stride= PAGE_SIZE+SPARE_SIZE
  case DUMP_SIZE_BOOT:
    ret.Type= DUMP_TYPE_BOOT
    ret.base= BOOT_REGION_SIZE
    ret.stride= PAGE_SIZE+SPARE_SIZE
  default:
    return Layout{},fmt.Errorf ( "%w: unexpected dump size %d (%#x)",
      ErrLayout, size, size )
  }

  return ret,nil

} // end NewLayout


// Com NewLayout però a partir d'un fitxer obert.
func DetectLayout( f *os.File ) (Layout,error) {

  info,err:= f.Stat ()
  if err != nil { return Layout{},err }

  return NewLayout ( info.Size () )

} // end DetectLayout


// Grandària que ha de tindre un fitxer del tipus indicat.
func DumpSize( dump_type int ) (int64,error) {

  switch dump_type {
  case DUMP_TYPE_NO_ECC:
    return DUMP_SIZE_NO_ECC,nil
  case DUMP_TYPE_ECC:
    return DUMP_SIZE_ECC,nil
  case DUMP_TYPE_BOOT:
    return DUMP_SIZE_BOOT,nil
  default:
    return -1,fmt.Errorf ( "%w: unknown dump type %d", ErrLayout, dump_type )
  }

} // end DumpSize


func (self Layout) HasSpare() bool {
  return self.Type != DUMP_TYPE_NO_ECC
} // end HasSpare


func (self Layout) Size() int64 {
  return self.size
} // end Size


func (self Layout) String() string {
  switch self.Type {
  case DUMP_TYPE_NO_ECC:
    return "No ECC"
  case DUMP_TYPE_ECC:
    return "ECC"
  case DUMP_TYPE_BOOT:
    return "ECC + boot region"
  default:
    return "Invalid"
  }
} // end String


// Torna l'offset i la grandària de la pàgina. Si WITH_ECC és cert la
// grandària inclou la spare, excepte en els bolcats que no en tenen,
// on la torna ReadPage plena de zeros.
func (self Layout) PageOffset( page uint32, with_ecc bool ) (int64,int,error) {

  if page >= PAGES_COUNT {
    return -1,0,fmt.Errorf ( "%w: page %#x out of range", ErrLayout, page )
  }
  length:= PAGE_SIZE
  if with_ecc && self.HasSpare () {
    length+= SPARE_SIZE
  }

  return self.base + int64(page)*self.stride,length,nil

} // end PageOffset


func (self Layout) SpareOffset( page uint32 ) (int64,error) {

  if !self.HasSpare () {
    return -1,ErrNoSpare
  }
  off,_,err:= self.PageOffset ( page, false )
  if err != nil { return -1,err }

  return off+PAGE_SIZE,nil

} // end SpareOffset


// Regió d'arrencada. Torna ok=false si el bolcat no en té.
func (self Layout) BootRegion() (offset int64,length int64,ok bool) {
  if self.Type != DUMP_TYPE_BOOT {
    return 0,0,false
  }
  return 0,BOOT_REGION_SIZE,true
} // end BootRegion


func (self Layout) ReadPage(

  f        io.ReaderAt,
  page     uint32,
  with_ecc bool,

) ([]byte,error) {

  off,length,err:= self.PageOffset ( page, with_ecc )
  if err != nil { return nil,err }
  var ret []byte
  if with_ecc {
    ret= make([]byte,PAGE_SIZE+SPARE_SIZE)
  } else {
    ret= make([]byte,PAGE_SIZE)
  }
  if err:= utils.ReadBytes ( f, 0, self.size, ret[:length], off ); err != nil {
    return nil,fmt.Errorf ( "unable to read page %#x: %w", page, err )
  }

  return ret,nil

} // end ReadPage


// Llig la spare d'una pàgina. Si el bolcat no en té torna zeros, igual
// que ReadPage.
func (self Layout) ReadSpare( f io.ReaderAt, page uint32 ) ([]byte,error) {

  ret:= make([]byte,SPARE_SIZE)
  if !self.HasSpare () {
    if _,_,err:= self.PageOffset ( page, false ); err != nil {
      return nil,err
    }
    return ret,nil
  }
  off,err:= self.SpareOffset ( page )
  if err != nil { return nil,err }
  if err:= utils.ReadBytes ( f, 0, self.size, ret, off ); err != nil {
    return nil,fmt.Errorf ( "unable to read spare of page %#x: %w", page, err )
  }

  return ret,nil

} // end ReadSpare


// DATA pot ser una pàgina o una pàgina més la spare. En bolcats sense
// spare la spare es descarta.
func (self Layout) WritePage( f io.WriterAt, page uint32, data []byte ) error {

  if len(data) != PAGE_SIZE && len(data) != PAGE_SIZE+SPARE_SIZE {
    return fmt.Errorf ( "unable to write page %#x: invalid length %d",
      page, len(data) )
  }
  off,length,err:= self.PageOffset ( page, len(data) > PAGE_SIZE )
  if err != nil { return err }
  if err:= utils.WriteBytes ( f, 0, self.size, data[:length], off ); err != nil {
    return fmt.Errorf ( "unable to write page %#x: %w", page, err )
  }

  return nil

} // end WritePage


func (self Layout) WriteSpare( f io.WriterAt, page uint32, spare []byte ) error {

  if len(spare) != SPARE_SIZE {
    return fmt.Errorf ( "unable to write spare of page %#x: invalid length %d",
      page, len(spare) )
  }
  off,err:= self.SpareOffset ( page )
  if err != nil { return err }
  if err:= utils.WriteBytes ( f, 0, self.size, spare, off ); err != nil {
    return fmt.Errorf ( "unable to write spare of page %#x: %w", page, err )
  }

  return nil

} // end WriteSpare


// Primera pàgina d'un cluster.
func ClusterToPage( cluster uint16 ) uint32 {
  return uint32(cluster)*PAGES_PER_CLUSTER
} // end ClusterToPage
