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

package ops

import (
  "bytes"
  "errors"
  "os"
  "path/filepath"
  "testing"

  "github.com/adriagipas/nandcp/nand"
  "github.com/adriagipas/nandcp/utils"
  "github.com/sirupsen/logrus"
)


func init() {
  logrus.SetLevel ( logrus.ErrorLevel )
}


// Crea un bolcat nou amb el seu fitxer de claus.
func newDump( t *testing.T ) *utils.Args {

  t.Helper ()
  dir:= t.TempDir ()
  aes:= bytes.Repeat ( []byte{0x11}, nand.AES_KEY_SIZE )
  hmac:= bytes.Repeat ( []byte{0x22}, nand.HMAC_KEY_SIZE )
  keys,err:= nand.RawKeys ( aes, hmac )
  if err != nil { t.Fatal ( err ) }
  kf,err:= keys.Keyfile ()
  if err != nil { t.Fatal ( err ) }
  keys_file:= filepath.Join ( dir, "keys.bin" )
  if err:= os.WriteFile ( keys_file, kf, 0644 ); err != nil { t.Fatal ( err ) }
  args:= &utils.Args{
    FileName: filepath.Join ( dir, "nand.bin" ),
    KeysFile: keys_file,
    OpArgs: []string{ "ecc", "100" },
  }
  if err:= Create ( args ); err != nil { t.Fatalf ( "Create: %v", err ) }

  return args

} // end newDump


func run(

  t    *testing.T,
  args *utils.Args,
  op   func(*utils.Args) error,
  op_args ...string,

) error {

  t.Helper ()
  a:= *args
  a.OpArgs= op_args
  return op ( &a )

} // end run


func openDump( t *testing.T, args *utils.Args ) *nand.NAND {

  t.Helper ()
  n,err:= openNAND ( args, false )
  if err != nil { t.Fatal ( err ) }
  t.Cleanup ( func() { n.Close () } )

  return n

} // end openDump


func TestMkdirPut( t *testing.T ) {

  args:= newDump ( t )
  if err:= run ( t, args, Mkdir, "/title/00010000" ); err != nil {
    t.Fatalf ( "Mkdir: %v", err )
  }
  if err:= run ( t, args, Mkdir, "/title/00010000/data" ); err != nil {
    t.Fatalf ( "Mkdir existing prefix: %v", err )
  }

  // Arbre al host
  host:= t.TempDir ()
  os.MkdirAll ( filepath.Join ( host, "save", "sub" ), 0755 )
  files:= map[string][]byte{
    "save/banner.bin": bytes.Repeat ( []byte{1}, 0x5000 ),
    "save/sub/data.bin": []byte("data"),
  }
  for name,data:= range files {
    if err:= os.WriteFile ( filepath.Join ( host, name ), data, 0644 ); err != nil {
      t.Fatal ( err )
    }
  }
  single:= filepath.Join ( host, "single.txt" )
  os.WriteFile ( single, []byte("single"), 0644 )

  if err:= run ( t, args, Put, filepath.Join ( host, "save" ),
    "/title/00010000/data" ); err != nil {
    t.Fatalf ( "Put dir: %v", err )
  }
  if err:= run ( t, args, Put, single, "/title/new.txt" ); err != nil {
    t.Fatalf ( "Put new file: %v", err )
  }
  if err:= run ( t, args, Put, single, "/nope/new.txt" ); !errors.Is ( err, nand.ErrPathNotFound ) {
    t.Errorf ( "Put into missing dir: got %v", err )
  }
  if err:= run ( t, args, Mkdir, "/title/new.txt/x" ); err == nil {
    t.Error ( "mkdir through a file accepted" )
  }

  n:= openDump ( t, args )
  for name,want:= range files {
    got,err:= n.GetData ( "/title/00010000/data/"+name )
    if err != nil { t.Fatalf ( "%s: %v", name, err ) }
    if !bytes.Equal ( got, want ) { t.Errorf ( "%s: content differs", name ) }
  }
  if got,err:= n.GetData ( "/title/new.txt" ); err != nil || string(got) != "single" {
    t.Errorf ( "new.txt: %q %v", got, err )
  }
  idx,_:= n.Resolve ( "/title/00010000/data/save/sub" )
  e,_:= n.FST ().Get ( idx )
  if !e.IsDir () || e.Perms () != nand.ROOT_PERMS {
    t.Errorf ( "created directory %+v", e )
  }
  if errs:= n.VerifyTree ( nand.FST_ROOT ); len(errs) != 0 {
    t.Errorf ( "VerifyTree: %v", errs )
  }

} // end TestMkdirPut


func TestRemoveLost( t *testing.T ) {

  args:= newDump ( t )
  host:= filepath.Join ( t.TempDir (), "f.bin" )
  os.WriteFile ( host, bytes.Repeat ( []byte{7}, 0x9000 ), 0644 )
  if err:= run ( t, args, Put, host, "/f.bin" ); err != nil { t.Fatal ( err ) }
  if err:= run ( t, args, Remove, "/f.bin" ); err != nil { t.Fatal ( err ) }
  if err:= run ( t, args, Remove, "/f.bin" ); !errors.Is ( err, nand.ErrPathNotFound ) {
    t.Errorf ( "second remove: got %v", err )
  }
  if err:= run ( t, args, Lost ); err != nil { t.Errorf ( "Lost: %v", err ) }
  if err:= run ( t, args, Lost, "-free" ); err != nil { t.Errorf ( "Lost -free: %v", err ) }
  if err:= run ( t, args, Lost, "-bogus" ); err == nil {
    t.Error ( "unknown option accepted" )
  }

} // end TestRemoveLost


func TestCheckFixFormat( t *testing.T ) {

  args:= newDump ( t )
  host:= filepath.Join ( t.TempDir (), "f.bin" )
  os.WriteFile ( host, []byte("hello"), 0644 )
  if err:= run ( t, args, Put, host, "/f.bin" ); err != nil { t.Fatal ( err ) }
  if err:= run ( t, args, Check ); err != nil { t.Errorf ( "Check: %v", err ) }
  if err:= run ( t, args, Fix ); err != nil { t.Errorf ( "Fix: %v", err ) }
  if err:= run ( t, args, Check, "/f.bin" ); err != nil { t.Errorf ( "Check after Fix: %v", err ) }

  if err:= run ( t, args, Format, "-secure" ); err != nil { t.Fatal ( err ) }
  n:= openDump ( t, args )
  if c,_:= n.FST ().Children ( nand.FST_ROOT ); len(c) != 0 {
    t.Errorf ( "root not empty after format: %v", c )
  }
  if v,_:= n.FAT ().Get ( 100*nand.CLUSTERS_PER_BLOCK ); v != nand.FAT_BAD {
    t.Errorf ( "bad block lost: %#x", v )
  }

} // end TestCheckFixFormat


func TestExtract( t *testing.T ) {

  args:= newDump ( t )
  host:= filepath.Join ( t.TempDir (), "a:b" )
  os.WriteFile ( host, []byte("x"), 0644 )
  if err:= run ( t, args, Put, host, "/" ); err != nil { t.Fatal ( err ) }
  out:= t.TempDir ()
  if err:= run ( t, args, Extract, "-fat", "/", out ); err != nil { t.Fatal ( err ) }
  if got,err:= os.ReadFile ( filepath.Join ( out, "a-b" ) ); err != nil || string(got) != "x" {
    t.Errorf ( "extracted file: %q %v", got, err )
  }

} // end TestExtract


func TestFixSuperblockECC( t *testing.T ) {

  args:= newDump ( t )
  n:= openDump ( t, args )
  _,cluster,_:= n.ActiveSuperblock ()
  page:= nand.ClusterToPage ( cluster )+3
  n.Close ()

  // Trenca l'ECC d'una pàgina del primer cluster del superbloc
  f,err:= os.OpenFile ( args.FileName, os.O_RDWR, 0 )
  if err != nil { t.Fatal ( err ) }
  off:= int64(page)*(nand.PAGE_SIZE+nand.SPARE_SIZE) +
    nand.PAGE_SIZE + nand.SPARE_ECC_OFFSET
  if _,err:= f.WriteAt ( []byte{ 0x12, 0x34, 0x56, 0x78 }, off ); err != nil {
    t.Fatal ( err )
  }
  f.Close ()
  n= openDump ( t, args )
  if bad,err:= n.CheckClusterECC ( cluster ); err != nil || len(bad) != 1 {
    t.Fatalf ( "ECC not broken: %x (%v)", bad, err )
  }
  n.Close ()

  if err:= run ( t, args, Fix ); err != nil { t.Fatalf ( "Fix: %v", err ) }
  n= openDump ( t, args )
  for i:= uint16(0); i < nand.SUPERBLOCK_CLUSTERS; i++ {
    if bad,err:= n.CheckClusterECC ( cluster+i ); err != nil || len(bad) != 0 {
      t.Errorf ( "cluster %#x: bad pages %x (%v)", cluster+i, bad, err )
    }
  }
  if ok,err:= n.CheckHMACMeta ( cluster ); err != nil || !ok {
    t.Errorf ( "CheckHMACMeta after Fix: %v %v", ok, err )
  }

} // end TestFixSuperblockECC
