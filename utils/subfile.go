/*
 * Copyright 2022-2026 Adrià Giménez Pastor.
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
 *  subfile.go - Per a llegir regions que formen part d'un altre
 *               fitxer.
 *
 */

package utils;

import (
  "errors"
  "io"
)


/******************/
/* SUBFILE READER */
/******************/

// Lector d'una regió d'un fitxer ja obert. No és propietari del
// fitxer, per tant Close no el tanca.
type SubfileReader struct {

  f           io.ReaderAt
  data_offset int64
  data_length int64
  pos         int64 // Posició actual relativa a data_offset

}


func (self *SubfileReader) Read(buf []byte) (int,error) {

  // Calcula el que queda
  remain := self.data_length-self.pos
  if remain <= 0 { return 0,io.EOF }

  // Reajusta buffer
  if int64(len(buf)) > remain {
    buf= buf[:remain]
  }

  // Llig
  if err := ReadBytes ( self.f, self.data_offset,
    self.data_length, buf, self.data_offset+self.pos ); err != nil {
    return 0,err
  }
  self.pos+= int64(len(buf))

  return len(buf),nil

} // end Read


func (self *SubfileReader) ReadAt(buf []byte, off int64) (int,error) {

  if off < 0 || off >= self.data_length {
    return 0,io.EOF
  }
  n := len(buf)
  if remain := self.data_length-off; int64(n) > remain {
    n= int(remain)
  }
  if err := ReadBytes ( self.f, self.data_offset, self.data_length,
    buf[:n], self.data_offset+off ); err != nil {
    return 0,err
  }
  if n < len(buf) { return n,io.EOF }

  return n,nil

} // end ReadAt


func (self *SubfileReader) Seek( offset int64, whence int ) (int64,error) {

  if whence != io.SeekStart {
    return -1,errors.New ( "SubfileReader.Seek only supports io.SeekStart" )
  }
  if offset < 0 || offset > self.data_length {
    return -1,errors.New ( "offset out of range" )
  }
  self.pos= offset

  return offset,nil

} // end Seek


func (self *SubfileReader) Size() int64 {
  return self.data_length
} // end Size


func NewSubfileReader(

  f           io.ReaderAt,
  data_offset int64,
  data_length int64,

) *SubfileReader {

  return &SubfileReader{
    f: f,
    data_offset: data_offset,
    data_length: data_length,
  }

} // end NewSubfileReader
