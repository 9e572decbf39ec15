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
 *  hmac.go - HMAC dels clusters de dades i dels superblocs.
 */

package nand

import (
  "crypto/hmac"
  "crypto/sha1"
  "encoding/binary"
)


/*************/
/* CONSTANTS */
/*************/

const SALT_SIZE = 0x40

// Camps de la sal dels clusters de dades.
const (
  _SALT_UID      = 0x00
  _SALT_NAME     = 0x04
  _SALT_CHAIN    = 0x10
  _SALT_X3       = 0x14
  _SALT_ENTRY    = 0x18
  _SALT_GID      = 0x1c
  _SALT_SIZE     = 0x20
  _SALT_META_CLU = 0x12
)


/************/
/* FUNCIONS */
/************/

// Sal dels clusters d'un fitxer. CHAIN_POS és la posició del cluster
// dins de la cadena del fitxer.
func DataSalt( entry *Entry, chain_pos uint32 ) []byte {

  ret:= make([]byte,SALT_SIZE)
  binary.BigEndian.PutUint32 ( ret[_SALT_UID:], entry.UID )
  copy ( ret[_SALT_NAME:_SALT_NAME+NAME_SIZE], entry.Name[:] )
  binary.BigEndian.PutUint32 ( ret[_SALT_CHAIN:], chain_pos )
  binary.BigEndian.PutUint32 ( ret[_SALT_X3:], entry.X3 )
  binary.BigEndian.PutUint32 ( ret[_SALT_ENTRY:], uint32(entry.Pos) )
  binary.BigEndian.PutUint16 ( ret[_SALT_GID:], entry.GID )
  binary.BigEndian.PutUint32 ( ret[_SALT_SIZE:], entry.Size )

  return ret

} // end DataSalt


// Sal dels superblocs. CLUSTER és el primer cluster del superbloc.
func MetaSalt( cluster uint16 ) []byte {

  ret:= make([]byte,SALT_SIZE)
  binary.BigEndian.PutUint16 ( ret[_SALT_META_CLU:], cluster )

  return ret

} // end MetaSalt


// HMAC-SHA1 de SALT || DATA.
func CalcHMAC( key []byte, salt []byte, data []byte ) []byte {

  mac:= hmac.New ( sha1.New, key )
  mac.Write ( salt )
  mac.Write ( data )

  return mac.Sum ( nil )

} // end CalcHMAC
