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
 *  cipher.go - Xifrat dels clusters (AES-128-CBC, IV a zero per
 *              cluster).
 */

package nand

import (
  "crypto/aes"
  "crypto/cipher"
  "fmt"
)


/******************/
/* CLUSTER CIPHER */
/******************/

type ClusterCipher struct {
  block cipher.Block
}


func NewClusterCipher( key []byte ) (*ClusterCipher,error) {

  if len(key) != AES_KEY_SIZE {
    return nil,fmt.Errorf ( "%w: AES key must be %d bytes long (got %d)",
      ErrKey, AES_KEY_SIZE, len(key) )
  }
  block,err:= aes.NewCipher ( key )
  if err != nil {
    return nil,fmt.Errorf ( "%w: %s", ErrKey, err )
  }

  return &ClusterCipher{ block: block },nil

} // end NewClusterCipher


func checkClusterLength( data []byte ) error {
  if len(data) != CLUSTER_SIZE {
    return fmt.Errorf ( "cluster must be %d bytes long (got %d)",
      CLUSTER_SIZE, len(data) )
  }
  return nil
} // end checkClusterLength


func (self *ClusterCipher) Decrypt( data []byte ) ([]byte,error) {

  if err:= checkClusterLength ( data ); err != nil { return nil,err }
  var iv [aes.BlockSize]byte
  ret:= make([]byte,len(data))
  cipher.NewCBCDecrypter ( self.block, iv[:] ).CryptBlocks ( ret, data )

  return ret,nil

} // end ClusterCipher.Decrypt


func (self *ClusterCipher) Encrypt( data []byte ) ([]byte,error) {

  if err:= checkClusterLength ( data ); err != nil { return nil,err }
  var iv [aes.BlockSize]byte
  ret:= make([]byte,len(data))
  cipher.NewCBCEncrypter ( self.block, iv[:] ).CryptBlocks ( ret, data )

  return ret,nil

} // end ClusterCipher.Encrypt
