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
 *  nand.go - Sessió sobre un bolcat de NAND xifrat.
 *
 *  Ús bàsic: Open, operacions de lectura/escriptura, WriteMetaData
 *  per a fer persistents els canvis i Close. Una sessió assumeix que
 *  és l'única propietària del fitxer.
 */

package nand

import (
  "fmt"
  "io"
  "os"

  "github.com/adriagipas/nandcp/utils"
  "github.com/sirupsen/logrus"
)


/***********/
/* OPTIONS */
/***********/

type Options struct {

  // Claus. Si Keys és nil s'intenta KeySource i després la regió
  // d'arrencada del bolcat. Sense claus sols es pot navegar per
  // l'arbre.
  Keys      *Keys
  KeySource *KeySource

  ReadOnly bool

  // Canal d'esdeveniments. Si és nil es descarten.
  Logger *logrus.Logger

  // En extraure canvia ':' per '-' en els noms.
  FixNamesForFAT bool

}


/********/
/* NAND */
/********/

type NAND struct {

  file_name string
  f         *os.File
  layout    Layout
  read_only bool
  fix_names bool

  keys   *Keys
  cipher *ClusterCipher
  log    *logrus.Entry

  // Superbloc actiu i taules en memòria
  sb_slot   int
  sb_header SuperblockHeader
  fat       *FAT
  fst       *FST
  dirty     bool

}


func newDiscardLogger() *logrus.Logger {

  ret:= logrus.New ()
  ret.SetOutput ( io.Discard )

  return ret

} // end newDiscardLogger


// Obri el bolcat, carrega les claus, busca el superbloc actiu i
// carrega la FAT i la FST. Qualsevol error és fatal i tanca el
// fitxer.
func Open( file_name string, opts *Options ) (ret *NAND,err error) {

  if opts == nil { opts= &Options{} }
  logger:= opts.Logger
  if logger == nil { logger= newDiscardLogger () }

  // Obri fitxer
  flag:= os.O_RDWR
  if opts.ReadOnly { flag= os.O_RDONLY }
  f,err:= os.OpenFile ( file_name, flag, 0 )
  if err != nil { return nil,err }
  defer func() {
    if err != nil { f.Close () }
  }()

  // Tipus de bolcat
  layout,err:= DetectLayout ( f )
  if err != nil { return nil,err }

  ret= &NAND{
    file_name: file_name,
    f: f,
    layout: layout,
    read_only: opts.ReadOnly,
    fix_names: opts.FixNamesForFAT,
    log: logger.WithField ( "nand", file_name ),
  }
  ret.log.WithField ( "layout", layout.String () ).Info ( "NAND dump opened" )

  // Claus
  if err= ret.loadKeys ( opts ); err != nil { return nil,err }

  // Superbloc
  slot,sb,err:= ret.findSuperblock ()
  if err != nil { return nil,err }
  ret.sb_slot= slot
  ret.sb_header= sb.Header
  ret.fat= sb.FAT
  ret.fst= sb.FST

  return ret,nil

} // end Open


func (self *NAND) loadKeys( opts *Options ) error {

  var err error
  keys:= opts.Keys
  if keys == nil && opts.KeySource != nil {
    if keys,err= opts.KeySource.Keys (); err != nil {
      return err
    }
  }
  if keys == nil {
    if r,ok:= self.BootRegion (); ok {
      if keys,err= KeysFromBootRegion ( r ); err != nil {
        self.log.WithError ( err ).Warn ( "no keys found in boot region" )
        keys= nil
      }
    }
  }
  if keys == nil {
    self.log.Warn ( "no keys loaded, only browsing is possible" )
    return nil
  }
  self.keys= keys
  if keys.AES != nil {
    if self.cipher,err= NewClusterCipher ( keys.AES ); err != nil {
      return err
    }
  }

  return nil

} // end loadKeys


// Tanca el fitxer. Els canvis no escrits amb WriteMetaData es perden.
func (self *NAND) Close() error {

  if self.f == nil { return nil }
  if self.dirty {
    self.log.Warn ( "closing NAND with unwritten metadata changes" )
  }
  err:= self.f.Close ()
  self.f= nil

  return err

} // end Close


func (self *NAND) FilePath() string {
  return self.file_name
} // end FilePath


func (self *NAND) Layout() Layout {
  return self.layout
} // end Layout


func (self *NAND) Keys() *Keys {
  return self.keys
} // end Keys


func (self *NAND) FAT() *FAT {
  return self.fat
} // end FAT


func (self *NAND) FST() *FST {
  return self.fst
} // end FST


func (self *NAND) IsDirty() bool {
  return self.dirty
} // end IsDirty


// Slot i versió del superbloc actiu.
func (self *NAND) ActiveSuperblock() (slot int,cluster uint16,version uint32) {
  return self.sb_slot,SlotCluster ( self.sb_slot ),self.sb_header.Version
} // end ActiveSuperblock


func (self *NAND) FirstSuperblockCluster() uint16 {
  return SUPERBLOCK_FIRST_CLUSTER
} // end FirstSuperblockCluster


// Lector de la regió d'arrencada.
func (self *NAND) BootRegion() (*utils.SubfileReader,bool) {

  off,length,ok:= self.layout.BootRegion ()
  if !ok { return nil,false }

  return utils.NewSubfileReader ( self.f, off, length ),true

} // end BootRegion


func (self *NAND) checkWritable() error {
  if self.read_only { return ErrReadOnly }
  return nil
} // end checkWritable


/*********/
/* PAGES */
/*********/

func (self *NAND) GetPage( page uint32, with_ecc bool ) ([]byte,error) {
  return self.layout.ReadPage ( self.f, page, with_ecc )
} // end GetPage


// Llig les dades d'un cluster, desxifrades si DECRYPT és cert.
func (self *NAND) GetCluster( cluster uint16, decrypt bool ) ([]byte,error) {

  if cluster >= CLUSTERS_COUNT {
    return nil,fmt.Errorf ( "%w: cluster %#x out of range", ErrLayout, cluster )
  }
  if decrypt && self.cipher == nil {
    return nil,fmt.Errorf ( "%w: NAND AES key not loaded", ErrKey )
  }
  ret:= make([]byte,0,CLUSTER_SIZE)
  first:= ClusterToPage ( cluster )
  for i:= uint32(0); i < PAGES_PER_CLUSTER; i++ {
    page,err:= self.layout.ReadPage ( self.f, first+i, false )
    if err != nil { return nil,err }
    ret= append ( ret, page... )
  }
  if decrypt {
    return self.cipher.Decrypt ( ret )
  }

  return ret,nil

} // end GetCluster


// Spares de les 8 pàgines d'un cluster.
func (self *NAND) clusterSpares( cluster uint16 ) ([][]byte,error) {

  ret:= make([][]byte,PAGES_PER_CLUSTER)
  first:= ClusterToPage ( cluster )
  for i:= range ret {
    spare,err:= self.layout.ReadSpare ( self.f, first+uint32(i) )
    if err != nil { return nil,err }
    ret[i]= spare
  }

  return ret,nil

} // end clusterSpares


// Escriu un cluster (ja xifrat si cal) amb spares noves. Si HMAC no és
// nil es guarda en la spare.
func (self *NAND) writeCluster( cluster uint16, data []byte, hmac []byte ) error {

  if err:= checkClusterLength ( data ); err != nil { return err }
  spares:= make([][]byte,PAGES_PER_CLUSTER)
  for i:= range spares {
    spares[i]= NewSpare ( data[i*PAGE_SIZE:(i+1)*PAGE_SIZE] )
  }
  if hmac != nil {
    PutSpareHMAC ( spares, hmac )
  }
  first:= ClusterToPage ( cluster )
  buf:= make([]byte,PAGE_SIZE+SPARE_SIZE)
  for i:= range spares {
    copy ( buf, data[i*PAGE_SIZE:(i+1)*PAGE_SIZE] )
    copy ( buf[PAGE_SIZE:], spares[i] )
    if err:= self.layout.WritePage ( self.f, first+uint32(i), buf ); err != nil {
      return err
    }
  }

  return nil

} // end writeCluster


// Xifra i escriu un cluster d'un fitxer calculant el seu HMAC.
func (self *NAND) writeDecryptedCluster(

  cluster   uint16,
  data      []byte,
  entry     *Entry,
  chain_pos uint32,

) error {

  if self.cipher == nil {
    return fmt.Errorf ( "%w: NAND AES key not loaded", ErrKey )
  }
  var hmac []byte
  if self.layout.HasSpare () {
    key,err:= self.keys.Get ( KEY_NAND_HMAC )
    if err != nil { return err }
    hmac= CalcHMAC ( key, DataSalt ( entry, chain_pos ), data )
  }
  enc,err:= self.cipher.Encrypt ( data )
  if err != nil { return err }

  return self.writeCluster ( cluster, enc, hmac )

} // end writeDecryptedCluster
