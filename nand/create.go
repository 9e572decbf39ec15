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
 *  create.go - Creació de bolcats nous buits.
 */

package nand

import (
  "fmt"
  "os"

  "github.com/adriagipas/nandcp/utils"
  "github.com/sirupsen/logrus"
)


/*************/
/* CONSTANTS */
/*************/

const (
  // Clusters del carregador (boot1 i boot2). Sempre reservats.
  BOOT_CLUSTERS = 0x40

  FIRST_DATA_BLOCK = BOOT_CLUSTERS/CLUSTERS_PER_BLOCK
  LAST_DATA_BLOCK  = SUPERBLOCK_FIRST_CLUSTER/CLUSTERS_PER_BLOCK - 1
)

var ROOT_PERMS = Perms{ User: PERM_RW, Group: PERM_RW, Other: PERM_READ }


/************/
/* FUNCIONS */
/************/

// FAT d'una NAND acabada de formatar. BAD_BLOCKS són números de bloc
// (8 clusters).
func NewFormattedFAT( bad_blocks []uint16 ) (*FAT,error) {

  ret:= NewFAT ()
  for c:= 0; c < BOOT_CLUSTERS; c++ {
    ret.cells[c]= FAT_RESERVED
  }
  for c:= SUPERBLOCK_FIRST_CLUSTER; c < CLUSTERS_COUNT; c++ {
    ret.cells[c]= FAT_RESERVED
  }
  for _,b:= range bad_blocks {
    if b < FIRST_DATA_BLOCK || b > LAST_DATA_BLOCK {
      return nil,fmt.Errorf ( "bad block %d out of range [%d,%d]",
        b, FIRST_DATA_BLOCK, LAST_DATA_BLOCK )
    }
    for i:= 0; i < CLUSTERS_PER_BLOCK; i++ {
      ret.cells[int(b)*CLUSTERS_PER_BLOCK+i]= FAT_BAD
    }
  }

  return ret,nil

} // end NewFormattedFAT


// Crea un bolcat nou del tipus indicat amb un sistema de fitxers
// buit. Els bolcats amb spare necessiten la clau HMAC. En els bolcats
// amb regió d'arrencada s'hi guarda el fitxer de claus.
func CreateNew(

  file_name  string,
  dump_type  int,
  keys       *Keys,
  bad_blocks []uint16,
  logger     *logrus.Logger,

) (err error) {

  if logger == nil { logger= newDiscardLogger () }
  size,err:= DumpSize ( dump_type )
  if err != nil { return err }
  layout,err:= NewLayout ( size )
  if err != nil { return err }
  fat,err:= NewFormattedFAT ( bad_blocks )
  if err != nil { return err }

  // Crea fitxer
  f,err:= os.OpenFile ( file_name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644 )
  if err != nil { return err }
  defer func() {
    if cerr:= f.Close (); err == nil { err= cerr }
    if err != nil { os.Remove ( file_name ) }
  }()
  if err= f.Truncate ( size ); err != nil { return err }

  // Claus
  if off,length,ok:= layout.BootRegion (); ok {
    kf,err:= keys.Keyfile ()
    if err != nil { return err }
    if err:= utils.WriteBytes ( f, 0, size, kf[:length], off ); err != nil {
      return err
    }
  }

  // Superbloc inicial
  self:= &NAND{
    file_name: file_name,
    f: f,
    layout: layout,
    keys: keys,
    log: logger.WithField ( "nand", file_name ),
  }
  sb:= Superblock{
    Header: SuperblockHeader{ Magic: SUPERBLOCK_MAGIC, Version: 1 },
    FAT: fat,
    FST: NewFST ( ROOT_PERMS ),
  }
  data,err:= sb.Encode ()
  if err != nil { return err }
  if err= self.writeSuperblockData ( SlotCluster ( 0 ), data ); err != nil {
    return err
  }
  if err= f.Sync (); err != nil { return err }
  self.log.WithFields ( logrus.Fields{
    "layout": layout.String (),
    "bad_blocks": len(bad_blocks),
  }).Info ( "NAND dump created" )

  return nil

} // end CreateNew
