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
  "errors"
  "testing"
)


func mustCreate(

  t      *testing.T,
  fst    *FST,
  parent uint16,
  name   string,
  typ    int,

) uint16 {

  t.Helper ()
  idx,err:= fst.Create ( parent, name, 0, 0, typ, 0, ROOT_PERMS )
  if err != nil { t.Fatalf ( "Create(%s): %v", name, err ) }

  return idx

} // end mustCreate


func TestFSTCreateResolve( t *testing.T ) {

  fst:= NewFST ( ROOT_PERMS )
  sys:= mustCreate ( t, fst, FST_ROOT, "sys", TYPE_DIR )
  a:= mustCreate ( t, fst, sys, "a.bin", TYPE_FILE )
  b:= mustCreate ( t, fst, sys, "b.bin", TYPE_FILE )

  children,err:= fst.Children ( sys )
  if err != nil { t.Fatal ( err ) }
  if len(children) != 2 || children[0] != b || children[1] != a {
    t.Errorf ( "children %v, want [%d %d] (head insertion)", children, b, a )
  }
  for path,want:= range map[string]uint16{
    "/": FST_ROOT,
    "/sys": sys,
    "/sys/a.bin": a,
    "sys//b.bin": b,
  } {
    got,err:= fst.Resolve ( path )
    if err != nil || got != want {
      t.Errorf ( "Resolve(%s) = %d, %v; want %d", path, got, err, want )
    }
  }
  for _,path:= range []string{ "/SYS", "/sys/c", "/sys/a.bin/x" } {
    if _,err:= fst.Resolve ( path ); !errors.Is ( err, ErrPathNotFound ) {
      t.Errorf ( "Resolve(%s): got %v, want ErrPathNotFound", path, err )
    }
  }
  e,_:= fst.Get ( a )
  if !e.IsFile () || e.Sub != FAT_LAST || e.Size != 0 {
    t.Errorf ( "new file entry: %+v", e )
  }
  if p,err:= fst.Parent ( a ); err != nil || p != sys {
    t.Errorf ( "Parent(%d) = %d, %v", a, p, err )
  }

} // end TestFSTCreateResolve


func TestFSTCreateErrors( t *testing.T ) {

  fst:= NewFST ( ROOT_PERMS )
  f:= mustCreate ( t, fst, FST_ROOT, "file", TYPE_FILE )
  _,err:= fst.Create ( f, "x", 0, 0, TYPE_FILE, 0, ROOT_PERMS )
  if !errors.Is ( err, ErrNotDirectory ) {
    t.Errorf ( "create under file: got %v", err )
  }
  for _,name:= range []string{ "", "a/b", "thirteen.byte" } {
    _,err:= fst.Create ( FST_ROOT, name, 0, 0, TYPE_FILE, 0, ROOT_PERMS )
    if !errors.Is ( err, ErrInvalidName ) {
      t.Errorf ( "name %q: got %v, want ErrInvalidName", name, err )
    }
  }

} // end TestFSTCreateErrors


func TestFSTFull( t *testing.T ) {

  fst:= NewFST ( ROOT_PERMS )
  for i:= 1; i < FST_ENTRIES; i++ {
    mustCreate ( t, fst, FST_ROOT, "f", TYPE_FILE )
  }
  if fst.FreeCount () != 0 {
    t.Fatalf ( "free count %d", fst.FreeCount () )
  }
  before:= fst.Clone ()
  _,err:= fst.Create ( FST_ROOT, "g", 0, 0, TYPE_FILE, 0, ROOT_PERMS )
  if !errors.Is ( err, ErrNoFreeEntry ) {
    t.Fatalf ( "got %v, want ErrNoFreeEntry", err )
  }
  for i:= range fst.entries {
    if fst.entries[i] != before.entries[i] {
      t.Fatalf ( "entry %d modified by failed create", i )
    }
  }

} // end TestFSTFull


func TestFSTDuplicateNames( t *testing.T ) {

  fst:= NewFST ( ROOT_PERMS )
  mustCreate ( t, fst, FST_ROOT, "dup", TYPE_FILE )
  last:= mustCreate ( t, fst, FST_ROOT, "dup", TYPE_FILE )
  if got,_:= fst.Resolve ( "/dup" ); got != last {
    t.Errorf ( "Resolve(/dup) = %d, want most recent %d", got, last )
  }

} // end TestFSTDuplicateNames


func TestFSTDelete( t *testing.T ) {

  fat:= NewFAT ()
  fst:= NewFST ( ROOT_PERMS )
  dir:= mustCreate ( t, fst, FST_ROOT, "dir", TYPE_DIR )
  sub:= mustCreate ( t, fst, dir, "sub", TYPE_DIR )
  f1:= mustCreate ( t, fst, dir, "f1", TYPE_FILE )
  f2:= mustCreate ( t, fst, sub, "f2", TYPE_FILE )
  keep:= mustCreate ( t, fst, FST_ROOT, "keep", TYPE_FILE )
  for _,f:= range []uint16{ f1, f2, keep } {
    chain,err:= fat.AllocChain ( 2 )
    if err != nil { t.Fatal ( err ) }
    fst.entries[f].Sub= chain[0]
  }
  used:= fat.Stats ().Used

  if err:= fst.Delete ( dir, fat ); err != nil { t.Fatal ( err ) }
  if got:= fat.Stats ().Used; got != used-4 {
    t.Errorf ( "used clusters %d, want %d", got, used-4 )
  }
  for _,i:= range []uint16{ dir, sub, f1, f2 } {
    if !fst.entries[i].IsFree () {
      t.Errorf ( "entry %d not freed", i )
    }
  }
  children,_:= fst.Children ( FST_ROOT )
  if len(children) != 1 || children[0] != keep {
    t.Errorf ( "root children %v", children )
  }
  if err:= fst.Delete ( FST_ROOT, fat ); err == nil {
    t.Error ( "root deleted" )
  }

} // end TestFSTDelete


func TestFSTDeleteCorruptChain( t *testing.T ) {

  fat:= NewFAT ()
  fst:= NewFST ( ROOT_PERMS )
  f:= mustCreate ( t, fst, FST_ROOT, "f", TYPE_FILE )
  fat.set ( 0x200, 0x201 )
  fat.set ( 0x201, 0x200 )
  fst.entries[f].Sub= 0x200
  err:= fst.Delete ( f, fat )
  var ee EntryError
  if !errors.As ( err, &ee ) || ee.Entry != f || !errors.Is ( err, ErrChainCorruption ) {
    t.Fatalf ( "got %v, want EntryError with ErrChainCorruption", err )
  }
  if fst.entries[f].IsFree () {
    t.Error ( "entry freed after failed delete" )
  }

} // end TestFSTDeleteCorruptChain


func TestFSTSiblingLoop( t *testing.T ) {

  fst:= NewFST ( ROOT_PERMS )
  a:= mustCreate ( t, fst, FST_ROOT, "a", TYPE_FILE )
  b:= mustCreate ( t, fst, FST_ROOT, "b", TYPE_FILE )
  fst.entries[a].Sib= b
  if _,err:= fst.Children ( FST_ROOT ); !errors.Is ( err, ErrChainCorruption ) {
    t.Errorf ( "Children: got %v, want ErrChainCorruption", err )
  }
  if _,err:= fst.Subtree ( FST_ROOT ); !errors.Is ( err, ErrChainCorruption ) {
    t.Errorf ( "Subtree: got %v, want ErrChainCorruption", err )
  }

} // end TestFSTSiblingLoop


func TestFSTEncodeDecode( t *testing.T ) {

  fst:= NewFST ( ROOT_PERMS )
  d:= mustCreate ( t, fst, FST_ROOT, "títol", TYPE_DIR )
  fst.entries[d].UID= 0x1234
  fst.entries[d].X3= 0xdeadbeef
  buf:= make([]byte,FST_SIZE)
  if err:= fst.Encode ( buf ); err != nil { t.Fatal ( err ) }
  raw:= buf[int(d)*FST_ENTRY_SIZE:]
  if raw[0] != 't' || raw[1] != 0xed {
    t.Errorf ( "name not ISO-8859-1 encoded: %x", raw[:NAME_SIZE] )
  }
  dec,err:= DecodeFST ( buf )
  if err != nil { t.Fatal ( err ) }
  e,_:= dec.Get ( d )
  if e.GetName () != "títol" || e.UID != 0x1234 || e.X3 != 0xdeadbeef || e.Pos != d {
    t.Errorf ( "decoded entry %+v", e )
  }
  if p:= e.Perms (); p != ROOT_PERMS {
    t.Errorf ( "perms %+v", p )
  }

} // end TestFSTEncodeDecode


func TestFSTParentSkipsCorruptDirectory( t *testing.T ) {

  fst:= NewFST ( ROOT_PERMS )
  b:= mustCreate ( t, fst, FST_ROOT, "b", TYPE_DIR )
  a:= mustCreate ( t, fst, FST_ROOT, "a", TYPE_DIR )
  f:= mustCreate ( t, fst, a, "f", TYPE_FILE )
  fst.entries[b].Sub= 0x2000

  if p,err:= fst.Parent ( f ); err != nil || p != a {
    t.Errorf ( "Parent: %d (%v), want %d", p, err, a )
  }
  orphan:= mustCreate ( t, fst, a, "g", TYPE_FILE )
  fst.unlink ( a, orphan )
  if _,err:= fst.Parent ( orphan ); !errors.Is ( err, ErrChainCorruption ) {
    t.Errorf ( "unreachable entry: got %v, want ErrChainCorruption", err )
  }
  if _,err:= fst.Resolve ( "/b/x" ); !errors.Is ( err, ErrChainCorruption ) ||
    errors.Is ( err, ErrPathNotFound ) {
    t.Errorf ( "Resolve: got %v, want ErrChainCorruption", err )
  }
  if _,err:= fst.Resolve ( "/a/x" ); !errors.Is ( err, ErrPathNotFound ) {
    t.Errorf ( "Resolve: got %v, want ErrPathNotFound", err )
  }

} // end TestFSTParentSkipsCorruptDirectory
