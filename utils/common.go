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
 *  common.go - Funcions bàsiques.
 *
 */

package utils;

import (
  "errors"
  "fmt"
  "io"
  "strconv"
)

/************/
/* FUNCIONS */
/************/

func NumBytesToStr(num_bytes uint64) string {
  if num_bytes > 1024*1024*1024 { // G
    val := float64(num_bytes)/(1024*1024*1024)
    return strconv.FormatFloat ( val, 'f', 1, 32 ) + "G"
  } else if num_bytes > 1024*1024 { // M
    val := float64(num_bytes)/(1024*1024)
    return strconv.FormatFloat ( val, 'f', 1, 32 ) + "M"
  } else if num_bytes > 1024 { // K
    val := float64(num_bytes)/1024
    return strconv.FormatFloat ( val, 'f', 1, 32 ) + "K"
  } else {
    return strconv.FormatUint ( num_bytes, 10 )
  }
} // end NumBytesToStr


// Comprova que el segment [offset,offset+length) cau dins de la regió
// [f_begin,f_begin+f_length).
func checkBounds(

  op       string,
  f_begin  int64,
  f_length int64,
  length   int64,
  offset   int64,

) error {

  end := f_begin + f_length
  if offset < f_begin || offset >= end {
    return fmt.Errorf ( "error while %s bytes: offset (%d) is out"+
      " of bounds (offset:%d, length:%d)",
      op, offset, f_begin, f_length )
  }
  if my_end := offset + length; my_end > end {
    return fmt.Errorf ( "error while %s bytes: segment "+
      "(offset:%d, length:%d) is out of bounds (offset:%d, length:%d)",
      op, offset, length, f_begin, f_length )
  }

  return nil

} // end checkBounds


// Llig bytes d'un fitxer fent comprovacions
func ReadBytes(

  f        io.ReaderAt,
  f_begin  int64,
  f_length int64,
  buf      []byte,
  offset   int64,

) error {

  err := checkBounds ( "reading", f_begin, f_length, int64(len(buf)), offset )
  if err != nil { return err }

  // Llig bytes. ReadAt pot tornar io.EOF just en l'últim byte.
  nbytes,err := f.ReadAt ( buf, offset )
  if err != nil && !(err == io.EOF && nbytes == len(buf)) { return err }
  if nbytes != len(buf) {
    return errors.New("Unexpected error occurred while reading bytes")
  }

  return nil

} // ReadBytes


// Escriu bytes en un fitxer fent comprovacions
func WriteBytes(

  f        io.WriterAt,
  f_begin  int64,
  f_length int64,
  buf      []byte,
  offset   int64,

) error {

  err := checkBounds ( "writing", f_begin, f_length, int64(len(buf)), offset )
  if err != nil { return err }

  // Escriu bytes
  nbytes,err := f.WriteAt ( buf, offset )
  if err != nil { return err }
  if nbytes != len(buf) {
    return errors.New("Unexpected error occurred while writing bytes")
  }

  return nil

} // WriteBytes
