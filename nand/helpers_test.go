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

package nand

import (
  "bytes"
  "path/filepath"
  "testing"

  "github.com/sirupsen/logrus"
  "github.com/sirupsen/logrus/hooks/test"
)


func testKeys( t *testing.T ) *Keys {

  t.Helper ()
  aes:= make([]byte,AES_KEY_SIZE)
  for i:= range aes { aes[i]= byte(i+1) }
  hmac:= make([]byte,HMAC_KEY_SIZE)
  for i:= range hmac { hmac[i]= byte(0x20+i) }
  keys,err:= RawKeys ( aes, hmac )
  if err != nil { t.Fatalf ( "RawKeys: %v", err ) }

  return keys

} // end testKeys


// Crea un bolcat buit en un directori temporal i torna el seu camí.
func createTestDump(

  t          *testing.T,
  dump_type  int,
  bad_blocks []uint16,

) string {

  t.Helper ()
  file_name:= filepath.Join ( t.TempDir (), "nand.bin" )
  err:= CreateNew ( file_name, dump_type, testKeys ( t ), bad_blocks, nil )
  if err != nil { t.Fatalf ( "CreateNew: %v", err ) }

  return file_name

} // end createTestDump


func openTestDump(

  t         *testing.T,
  file_name string,

) (*NAND,*test.Hook) {

  t.Helper ()
  logger,hook:= test.NewNullLogger ()
  logger.SetLevel ( logrus.DebugLevel )
  n,err:= Open ( file_name, &Options{ Keys: testKeys ( t ), Logger: logger } )
  if err != nil { t.Fatalf ( "Open: %v", err ) }
  t.Cleanup ( func() { n.Close () } )

  return n,hook

} // end openTestDump


func newTestNAND( t *testing.T ) (*NAND,*test.Hook) {
  t.Helper ()
  return openTestDump ( t, createTestDump ( t, DUMP_TYPE_ECC, nil ) )
} // end newTestNAND


// Crea un fitxer amb contingut.
func putFile( t *testing.T, n *NAND, path string, data []byte ) uint16 {

  t.Helper ()
  idx,err:= n.CreateEntry ( path, 0x1000, 0x3031, TYPE_FILE, 0, ROOT_PERMS )
  if err != nil { t.Fatalf ( "CreateEntry(%s): %v", path, err ) }
  if err:= n.SetData ( idx, data ); err != nil {
    t.Fatalf ( "SetData(%s): %v", path, err )
  }

  return idx

} // end putFile


func pattern( size int, seed byte ) []byte {

  ret:= make([]byte,size)
  for i:= range ret {
    ret[i]= byte(i*7) ^ seed
  }

  return ret

} // end pattern


func hasMessage( hook *test.Hook, level logrus.Level, msg string ) bool {
  for _,e:= range hook.AllEntries () {
    if e.Level == level && e.Message == msg { return true }
  }
  return false
} // end hasMessage


func mustEqual( t *testing.T, what string, got, want []byte ) {
  t.Helper ()
  if !bytes.Equal ( got, want ) {
    t.Fatalf ( "%s: got %d bytes, want %d bytes (contents differ)",
      what, len(got), len(want) )
  }
} // end mustEqual
