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
 *  ecc.go - Codi de correcció d'errors de les pàgines.
 */

package nand

import (
  "math/bits"
)


/*************/
/* CONSTANTS */
/*************/

const (
  ECC_BLOCK_SIZE = 0x200
  ECC_SIZE       = 4
  PAGE_ECC_SIZE  = ECC_SIZE*(PAGE_SIZE/ECC_BLOCK_SIZE)
)


/************/
/* FUNCIONS */
/************/

func parity( x uint8 ) uint8 {
  return uint8(bits.OnesCount8 ( x )&1)
} // end parity


// Codi Hamming d'un bloc de 512 bytes. Cada parell a[j] acumula la
// paritat dels bytes amb el bit j de l'índex a 0 i a 1. Els tres
// primers parells són les paritats de les columnes de bits.
func CalcECC( data []byte ) [ECC_SIZE]byte {

  var a [12][2]uint8

  for i:= 0; i < ECC_BLOCK_SIZE; i++ {
    x:= data[i]
    for j:= 0; j < 9; j++ {
      a[3+j][(i>>uint(j))&1]^= x
    }
  }
  x:= a[3][0]^a[3][1]
  a[0][0]= x&0x55
  a[0][1]= x&0xaa
  a[1][0]= x&0x33
  a[1][1]= x&0xcc
  a[2][0]= x&0x0f
  a[2][1]= x&0xf0

  var a0,a1 uint32
  for j:= 0; j < 12; j++ {
    a0|= uint32(parity ( a[j][0] ))<<uint(j)
    a1|= uint32(parity ( a[j][1] ))<<uint(j)
  }

  return [ECC_SIZE]byte{
    uint8(a0), uint8(a0>>8),
    uint8(a1), uint8(a1>>8),
  }

} // end CalcECC


// ECC de tota una pàgina (4 blocs de 512 bytes).
func PageECC( page []byte ) [PAGE_ECC_SIZE]byte {

  var ret [PAGE_ECC_SIZE]byte
  for i:= 0; i < PAGE_SIZE/ECC_BLOCK_SIZE; i++ {
    ecc:= CalcECC ( page[i*ECC_BLOCK_SIZE:(i+1)*ECC_BLOCK_SIZE] )
    copy ( ret[i*ECC_SIZE:], ecc[:] )
  }

  return ret

} // end PageECC


func erased( data []byte ) bool {
  for _,b:= range data {
    if b != 0xff { return false }
  }
  return true
} // end erased


// Comprova l'ECC d'una pàgina amb spare. Una pàgina esborrada (tota a
// 0xff, spare inclosa) es considera vàlida.
func CheckPageECC( page_spare []byte ) bool {

  if erased ( page_spare ) {
    return true
  }
  ecc:= PageECC ( page_spare[:PAGE_SIZE] )
  stored:= page_spare[PAGE_SIZE+SPARE_ECC_OFFSET:PAGE_SIZE+SPARE_ECC_OFFSET+PAGE_ECC_SIZE]
  for i,b:= range ecc {
    if stored[i] != b { return false }
  }

  return true

} // end CheckPageECC
