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
 *  spare.go - Format de la regió spare de cada pàgina.
 *
 *  La spare conté la marca de bloc bo, l'ECC i, en les dues últimes
 *  pàgines de cada cluster, l'HMAC del cluster:
 *
 *    pàgina 6: [1:0x15] HMAC, [0x15:0x21] HMAC[0:0xc]
 *    pàgina 7: [1:9]    HMAC[0xc:0x14]
 */

package nand


/*************/
/* CONSTANTS */
/*************/

const (
  SPARE_BAD_OFFSET  = 0x00
  SPARE_HMAC_OFFSET = 0x01
  SPARE_ECC_OFFSET  = 0x30

  HMAC_SIZE = 0x14

  SPARE_GOOD_BLOCK = 0xff

  _HMAC_PAGE1 = 6
  _HMAC_PAGE2 = 7
  _HMAC_SPLIT = 0x0c
)


/************/
/* FUNCIONS */
/************/

// Spare nova per a una pàgina: marca de bloc bo, zeros i l'ECC. No
// conté HMAC.
func NewSpare( page []byte ) []byte {

  ret:= make([]byte,SPARE_SIZE)
  ret[SPARE_BAD_OFFSET]= SPARE_GOOD_BLOCK
  ecc:= PageECC ( page )
  copy ( ret[SPARE_ECC_OFFSET:], ecc[:] )

  return ret

} // end NewSpare


// Escriu l'HMAC en les spares d'un cluster. SPARES ha de tindre 8
// entrades.
func PutSpareHMAC( spares [][]byte, hmac []byte ) {

  s1:= spares[_HMAC_PAGE1]
  copy ( s1[SPARE_HMAC_OFFSET:SPARE_HMAC_OFFSET+HMAC_SIZE], hmac )
  copy ( s1[SPARE_HMAC_OFFSET+HMAC_SIZE:], hmac[:_HMAC_SPLIT] )
  s2:= spares[_HMAC_PAGE2]
  copy ( s2[SPARE_HMAC_OFFSET:], hmac[_HMAC_SPLIT:] )

} // end PutSpareHMAC


// Torna l'HMAC guardat en la spare de la pàgina 6 d'un cluster.
func SpareHMAC( spare6 []byte ) []byte {

  ret:= make([]byte,HMAC_SIZE)
  copy ( ret, spare6[SPARE_HMAC_OFFSET:SPARE_HMAC_OFFSET+HMAC_SIZE] )

  return ret

} // end SpareHMAC


// Pàgina on està guardat l'HMAC d'un cluster.
func hmacPage( cluster uint16 ) uint32 {
  return ClusterToPage ( cluster ) + _HMAC_PAGE1
} // end hmacPage
