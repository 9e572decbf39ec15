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
 *  superblock.go - Superblocs: codificació, selecció de l'actiu i
 *                  escriptura en el següent slot.
 *
 *  Hi ha 16 slots de 16 clusters al final de la NAND. Cada slot conté
 *  una còpia de la FAT i de la FST amb un número de versió. L'HMAC
 *  del slot està en la spare de l'últim cluster.
 */

package nand

import (
  "bytes"
  "encoding/binary"
  "fmt"

  "github.com/go-restruct/restruct"
  "github.com/sirupsen/logrus"
)


/*************/
/* CONSTANTS */
/*************/

const (
  SUPERBLOCK_FIRST_CLUSTER = 0x7f00
  SUPERBLOCK_CLUSTERS      = 0x10
  SUPERBLOCK_SLOTS         = 16
  SUPERBLOCK_SIZE          = SUPERBLOCK_CLUSTERS*CLUSTER_SIZE
  SUPERBLOCK_HEADER_SIZE   = 0x0c

  _SB_FAT_OFFSET = SUPERBLOCK_HEADER_SIZE
  _SB_FST_OFFSET = _SB_FAT_OFFSET + FAT_SIZE
)

var SUPERBLOCK_MAGIC = [4]byte{'S','F','F','S'}


/**************/
/* SUPERBLOCK */
/**************/

type SuperblockHeader struct {
  Magic    [4]byte
  Version  uint32
  Reserved uint32
}

type Superblock struct {
  Header SuperblockHeader
  FAT    *FAT
  FST    *FST
}


func decodeSuperblockHeader( data []byte ) (SuperblockHeader,error) {

  var ret SuperblockHeader
  if len(data) < SUPERBLOCK_HEADER_SIZE {
    return ret,fmt.Errorf ( "superblock header too short: %d bytes", len(data) )
  }
  err:= restruct.Unpack ( data[:SUPERBLOCK_HEADER_SIZE], binary.BigEndian, &ret )
  if err != nil {
    return ret,fmt.Errorf ( "unable to decode superblock header: %s", err )
  }

  return ret,nil

} // end decodeSuperblockHeader


func (self *SuperblockHeader) Valid() bool {
  return bytes.Equal ( self.Magic[:], SUPERBLOCK_MAGIC[:] )
} // end SuperblockHeader.Valid


func DecodeSuperblock( data []byte ) (*Superblock,error) {

  if len(data) != SUPERBLOCK_SIZE {
    return nil,fmt.Errorf ( "superblock must be %d bytes long (got %d)",
      SUPERBLOCK_SIZE, len(data) )
  }
  header,err:= decodeSuperblockHeader ( data )
  if err != nil { return nil,err }
  if !header.Valid () {
    return nil,fmt.Errorf ( "wrong superblock magic: %q", header.Magic[:] )
  }
  fat,err:= DecodeFAT ( data[_SB_FAT_OFFSET:] )
  if err != nil { return nil,err }
  fst,err:= DecodeFST ( data[_SB_FST_OFFSET:] )
  if err != nil { return nil,err }

  return &Superblock{ Header: header, FAT: fat, FST: fst },nil

} // end DecodeSuperblock


func (self *Superblock) Encode() ([]byte,error) {

  ret:= make([]byte,SUPERBLOCK_SIZE)
  header,err:= restruct.Pack ( binary.BigEndian, &self.Header )
  if err != nil {
    return nil,fmt.Errorf ( "unable to encode superblock header: %s", err )
  }
  copy ( ret, header )
  self.FAT.Encode ( ret[_SB_FAT_OFFSET:] )
  if err:= self.FST.Encode ( ret[_SB_FST_OFFSET:] ); err != nil {
    return nil,err
  }

  return ret,nil

} // end Superblock.Encode


// Primer cluster del slot.
func SlotCluster( slot int ) uint16 {
  return uint16(SUPERBLOCK_FIRST_CLUSTER + slot*SUPERBLOCK_CLUSTERS)
} // end SlotCluster


func SlotOf( cluster uint16 ) (int,error) {

  if cluster < SUPERBLOCK_FIRST_CLUSTER ||
    (cluster-SUPERBLOCK_FIRST_CLUSTER)%SUPERBLOCK_CLUSTERS != 0 {
    return -1,fmt.Errorf ( "cluster %#x is not the start of a superblock",
      cluster )
  }

  return int(cluster-SUPERBLOCK_FIRST_CLUSTER)/SUPERBLOCK_CLUSTERS,nil

} // end SlotOf


/************/
/* SELECTOR */
/************/

// Slot candidat que ha passat les comprovacions.
type SuperblockCandidate struct {
  Slot    int
  Version uint32
}


// Tria el candidat amb la versió més alta. Amb versions iguals guanya
// el slot més baix.
func SelectSuperblock( cands []SuperblockCandidate ) (SuperblockCandidate,error) {

  var ret SuperblockCandidate
  found:= false
  for _,c:= range cands {
    if !found || c.Version > ret.Version ||
      (c.Version == ret.Version && c.Slot < ret.Slot) {
      ret,found= c,true
    }
  }
  if !found {
    return ret,ErrNoValidSuperblock
  }

  return ret,nil

} // end SelectSuperblock


// Recorre tots els slots i torna el superbloc actiu ja
// descodificat. Sense clau HMAC o sense spare sols es comprova la
// capçalera.
func (self *NAND) findSuperblock() (int,*Superblock,error) {

  verify:= self.layout.HasSpare () && self.keys != nil && self.keys.HMAC != nil
  if !verify {
    self.log.Warn ( "superblock HMAC cannot be verified, "+
      "selecting by magic and version only" )
  }

  cands:= []SuperblockCandidate{}
  for slot:= 0; slot < SUPERBLOCK_SLOTS; slot++ {
    cluster:= SlotCluster ( slot )
    log:= self.log.WithFields ( logrus.Fields{
      "slot": slot,
      "cluster": fmt.Sprintf ( "%#x", cluster ),
    })
    page,err:= self.layout.ReadPage ( self.f, ClusterToPage ( cluster ), false )
    if err != nil { return -1,nil,err }
    header,err:= decodeSuperblockHeader ( page )
    if err != nil { return -1,nil,err }
    if !header.Valid () {
      log.Debug ( "no superblock in slot" )
      continue
    }
    if verify {
      ok,err:= self.CheckHMACMeta ( cluster )
      if err != nil { return -1,nil,err }
      if !ok {
        log.WithField ( "version", header.Version ).Error (
          "superblock HMAC mismatch, ignoring slot" )
        continue
      }
    }
    cands= append ( cands, SuperblockCandidate{
      Slot: slot,
      Version: header.Version,
    })
  }

  best,err:= SelectSuperblock ( cands )
  if err != nil { return -1,nil,err }
  data,err:= self.readSuperblockData ( SlotCluster ( best.Slot ) )
  if err != nil { return -1,nil,err }
  sb,err:= DecodeSuperblock ( data )
  if err != nil { return -1,nil,err }
  self.log.WithFields ( logrus.Fields{
    "slot": best.Slot,
    "version": best.Version,
  }).Info ( "superblock found" )

  return best.Slot,sb,nil

} // end findSuperblock


// Llig el contingut (sense xifrar) d'un slot.
func (self *NAND) readSuperblockData( cluster uint16 ) ([]byte,error) {

  if _,err:= SlotOf ( cluster ); err != nil { return nil,err }
  ret:= make([]byte,0,SUPERBLOCK_SIZE)
  for i:= uint16(0); i < SUPERBLOCK_CLUSTERS; i++ {
    data,err:= self.GetCluster ( cluster+i, false )
    if err != nil { return nil,err }
    ret= append ( ret, data... )
  }

  return ret,nil

} // end readSuperblockData


// Escriu DATA en el slot que comença en CLUSTER, amb ECC i
// HMAC. L'HMAC sols s'escriu si el bolcat té spare.
func (self *NAND) writeSuperblockData( cluster uint16, data []byte ) error {

  var hmac []byte
  if self.layout.HasSpare () {
    key,err:= self.keys.Get ( KEY_NAND_HMAC )
    if err != nil { return err }
    hmac= CalcHMAC ( key, MetaSalt ( cluster ), data )
  }
  for i:= uint16(0); i < SUPERBLOCK_CLUSTERS; i++ {
    var h []byte
    if i == SUPERBLOCK_CLUSTERS-1 { h= hmac }
    err:= self.writeCluster ( cluster+i,
      data[int(i)*CLUSTER_SIZE:int(i+1)*CLUSTER_SIZE], h )
    if err != nil { return err }
  }

  return nil

} // end writeSuperblockData


// Escriu la FAT i la FST actuals en el següent slot amb la versió
// incrementada. El slot anterior no es toca.
func (self *NAND) WriteMetaData() error {

  if err:= self.checkWritable (); err != nil { return err }

  slot:= (self.sb_slot+1)%SUPERBLOCK_SLOTS
  sb:= Superblock{
    Header: self.sb_header,
    FAT: self.fat,
    FST: self.fst,
  }
  sb.Header.Magic= SUPERBLOCK_MAGIC
  sb.Header.Version++
  data,err:= sb.Encode ()
  if err != nil { return err }
  if err:= self.writeSuperblockData ( SlotCluster ( slot ), data ); err != nil {
    return fmt.Errorf ( "unable to write superblock in slot %d: %w", slot, err )
  }
  if err:= self.f.Sync (); err != nil {
    return err
  }

  self.sb_slot= slot
  self.sb_header= sb.Header
  self.dirty= false
  self.log.WithFields ( logrus.Fields{
    "slot": slot,
    "version": sb.Header.Version,
  }).Info ( "metadata written" )

  return nil

} // end WriteMetaData
