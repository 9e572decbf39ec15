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
 *  keys.go - Extracció de les claus de la NAND dels contenidors
 *            coneguts (keys.bin i otp.bin).
 */

package nand

import (
  "bytes"
  "fmt"
  "io"
  "os"
)


/*************/
/* CONSTANTS */
/*************/

const (
  KEY_NAND_AES  = 0
  KEY_NAND_HMAC = 1
)

const (
  KEY_SOURCE_KEYFILE = 0 // keys.bin
  KEY_SOURCE_OTP     = 1 // otp.bin
)

const (
  AES_KEY_SIZE  = 0x10
  HMAC_KEY_SIZE = 0x14

  KEYFILE_SIZE = 0x400
  OTP_SIZE     = 0x80

  // Dins de l'OTP. El fitxer de claus conté una còpia de l'OTP a
  // partir de 0x100.
  _OTP_HMAC_OFFSET       = 0x44
  _OTP_AES_OFFSET        = 0x58
  _KEYFILE_OTP_OFFSET    = 0x100
)


/************/
/* FUNCIONS */
/************/

func keyKindName( kind int ) string {
  switch kind {
  case KEY_NAND_AES:
    return "NAND AES key"
  case KEY_NAND_HMAC:
    return "NAND HMAC key"
  default:
    return fmt.Sprintf ( "key kind %d", kind )
  }
} // end keyKindName


func keyKindSize( kind int ) (int,error) {
  switch kind {
  case KEY_NAND_AES:
    return AES_KEY_SIZE,nil
  case KEY_NAND_HMAC:
    return HMAC_KEY_SIZE,nil
  default:
    return 0,fmt.Errorf ( "%w: unknown key kind %d", ErrKey, kind )
  }
} // end keyKindSize


// Una clau plena de zeros o de 0xff indica un contenidor buit.
func blankKey( key []byte ) bool {
  return bytes.Count ( key, []byte{0x00} ) == len(key) ||
    bytes.Count ( key, []byte{0xff} ) == len(key)
} // end blankKey


// Extrau una clau d'un contenidor ja carregat en memòria. No fa cap
// operació criptogràfica.
func ExtractKey( data []byte, format int, kind int ) ([]byte,error) {

  size,err:= keyKindSize ( kind )
  if err != nil { return nil,err }

  // Localitza l'OTP dins del contenidor
  var otp []byte
  switch format {
  case KEY_SOURCE_KEYFILE:
    if len(data) != KEYFILE_SIZE {
      return nil,fmt.Errorf ( "%w: keyfile must be %d bytes long (got %d)",
        ErrKey, KEYFILE_SIZE, len(data) )
    }
    otp= data[_KEYFILE_OTP_OFFSET:_KEYFILE_OTP_OFFSET+OTP_SIZE]
  case KEY_SOURCE_OTP:
    if len(data) != OTP_SIZE {
      return nil,fmt.Errorf ( "%w: OTP file must be %d bytes long (got %d)",
        ErrKey, OTP_SIZE, len(data) )
    }
    otp= data
  default:
    return nil,fmt.Errorf ( "%w: unknown key container %d", ErrKey, format )
  }

  // Extrau
  var off int
  if kind == KEY_NAND_AES {
    off= _OTP_AES_OFFSET
  } else {
    off= _OTP_HMAC_OFFSET
  }
  ret:= make([]byte,size)
  copy ( ret, otp[off:off+size] )
  if blankKey ( ret ) {
    return nil,fmt.Errorf ( "%w: %s is blank", ErrKey, keyKindName ( kind ) )
  }

  return ret,nil

} // end ExtractKey


/**************/
/* KEY SOURCE */
/**************/

// Descriu d'on s'han de traure les claus. Si Data és nil es llig el
// fitxer FileName.
type KeySource struct {

  Format   int
  FileName string
  Data     []byte

}


func (self *KeySource) load() ([]byte,error) {

  if self.Data != nil {
    return self.Data,nil
  }
  if self.FileName == "" {
    return nil,fmt.Errorf ( "%w: key source without data", ErrKey )
  }
  data,err:= os.ReadFile ( self.FileName )
  if err != nil {
    return nil,fmt.Errorf ( "%w: unable to read '%s': %s",
      ErrKey, self.FileName, err )
  }
  self.Data= data

  return data,nil

} // end KeySource.load


func (self *KeySource) Get( kind int ) ([]byte,error) {

  data,err:= self.load ()
  if err != nil { return nil,err }

  return ExtractKey ( data, self.Format, kind )

} // end KeySource.Get


// Carrega les dues claus.
func (self *KeySource) Keys() (*Keys,error) {

  aes,err:= self.Get ( KEY_NAND_AES )
  if err != nil { return nil,err }
  hmac,err:= self.Get ( KEY_NAND_HMAC )
  if err != nil { return nil,err }

  return &Keys{ AES: aes, HMAC: hmac },nil

} // end KeySource.Keys


// Llig el fitxer de claus que hi ha a la regió d'arrencada.
func KeysFromBootRegion( r io.Reader ) (*Keys,error) {

  buf:= make([]byte,KEYFILE_SIZE)
  if _,err:= io.ReadFull ( r, buf ); err != nil {
    return nil,fmt.Errorf ( "%w: unable to read boot region: %s", ErrKey, err )
  }
  src:= KeySource{ Format: KEY_SOURCE_KEYFILE, Data: buf }

  return src.Keys ()

} // end KeysFromBootRegion


/********/
/* KEYS */
/********/

// Material de claus. Qualsevol de les dues pot faltar, aleshores les
// operacions que la necessiten tornen ErrKey.
type Keys struct {
  AES  []byte
  HMAC []byte
}


// Claus passades directament.
func RawKeys( aes []byte, hmac []byte ) (*Keys,error) {

  if aes != nil && len(aes) != AES_KEY_SIZE {
    return nil,fmt.Errorf ( "%w: AES key must be %d bytes long (got %d)",
      ErrKey, AES_KEY_SIZE, len(aes) )
  }
  if hmac != nil && len(hmac) != HMAC_KEY_SIZE {
    return nil,fmt.Errorf ( "%w: HMAC key must be %d bytes long (got %d)",
      ErrKey, HMAC_KEY_SIZE, len(hmac) )
  }

  return &Keys{ AES: aes, HMAC: hmac },nil

} // end RawKeys


func (self *Keys) Get( kind int ) ([]byte,error) {

  var ret []byte
  if self != nil {
    switch kind {
    case KEY_NAND_AES:
      ret= self.AES
    case KEY_NAND_HMAC:
      ret= self.HMAC
    }
  }
  if ret == nil {
    return nil,fmt.Errorf ( "%w: %s not loaded", ErrKey, keyKindName ( kind ) )
  }

  return ret,nil

} // end Keys.Get


// Construeix un fitxer de claus (keys.bin) amb les claus
// indicades. Útil per a crear bolcats nous.
func (self *Keys) Keyfile() ([]byte,error) {

  aes,err:= self.Get ( KEY_NAND_AES )
  if err != nil { return nil,err }
  hmac,err:= self.Get ( KEY_NAND_HMAC )
  if err != nil { return nil,err }
  ret:= make([]byte,KEYFILE_SIZE)
  copy ( ret[_KEYFILE_OTP_OFFSET+_OTP_HMAC_OFFSET:], hmac )
  copy ( ret[_KEYFILE_OTP_OFFSET+_OTP_AES_OFFSET:], aes )

  return ret,nil

} // end Keys.Keyfile
