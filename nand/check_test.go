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


func mustCheck( t *testing.T, what string, ok bool, err error, want bool ) {
  t.Helper ()
  if err != nil { t.Fatalf ( "%s: %v", what, err ) }
  if ok != want { t.Fatalf ( "%s = %v, want %v", what, ok, want ) }
} // end mustCheck


func TestECCFixCheck( t *testing.T ) {

  n,_:= newTestNAND ( t )
  idx:= putFile ( t, n, "/f", pattern ( CLUSTER_SIZE, 1 ) )
  chain,_:= n.GetFatsForFile ( idx )
  page:= ClusterToPage ( chain[0] )+2

  ok,err:= n.CheckECC ( page )
  mustCheck ( t, "CheckECC after write", ok, err, true )

  // Corromp les dades sense tocar la spare
  data,err:= n.GetPage ( page, false )
  if err != nil { t.Fatal ( err ) }
  data[0x123]^= 0x01
  if err:= n.layout.WritePage ( n.f, page, data ); err != nil { t.Fatal ( err ) }
  ok,err= n.CheckECC ( page )
  mustCheck ( t, "CheckECC after corruption", ok, err, false )
  if err:= n.VerifyFile ( idx ); !errors.Is ( err, ErrIntegrityMismatch ) {
    t.Errorf ( "VerifyFile: got %v, want ErrIntegrityMismatch", err )
  }

  if err:= n.FixECC ( page ); err != nil { t.Fatal ( err ) }
  ok,err= n.CheckECC ( page )
  mustCheck ( t, "CheckECC after FixECC", ok, err, true )

} // end TestECCFixCheck


func TestHMACDataFixCheck( t *testing.T ) {

  n,_:= newTestNAND ( t )
  idx:= putFile ( t, n, "/f", pattern ( 2*CLUSTER_SIZE+10, 2 ) )
  chain,_:= n.GetFatsForFile ( idx )

  ok,err:= n.CheckHMACData ( idx )
  mustCheck ( t, "CheckHMACData after write", ok, err, true )

  // FixECC sobre la pàgina de l'HMAC esborra l'HMAC
  page:= hmacPage ( chain[1] )
  if err:= n.FixECC ( page ); err != nil { t.Fatal ( err ) }
  ok,err= n.CheckECC ( page )
  mustCheck ( t, "CheckECC after FixECC", ok, err, true )
  ok,err= n.CheckHMACData ( idx )
  mustCheck ( t, "CheckHMACData after FixECC", ok, err, false )
  if err:= n.VerifyFile ( idx ); !errors.Is ( err, ErrIntegrityMismatch ) {
    t.Errorf ( "VerifyFile: got %v, want ErrIntegrityMismatch", err )
  }

  if err:= n.FixHMACData ( idx ); err != nil { t.Fatal ( err ) }
  ok,err= n.CheckHMACData ( idx )
  mustCheck ( t, "CheckHMACData after FixHMACData", ok, err, true )
  ok,err= n.CheckECC ( page )
  mustCheck ( t, "CheckECC after FixHMACData", ok, err, true )

} // end TestHMACDataFixCheck


// L'HMAC depén de les metadades de l'entrada.
func TestHMACDataDependsOnEntry( t *testing.T ) {

  n,_:= newTestNAND ( t )
  idx:= putFile ( t, n, "/f", pattern ( 100, 2 ) )
  e,_:= n.FST ().Get ( idx )
  e.UID++
  ok,err:= n.CheckHMACData ( idx )
  mustCheck ( t, "CheckHMACData with other UID", ok, err, false )
  e.UID--
  ok,err= n.CheckHMACData ( idx )
  mustCheck ( t, "CheckHMACData restored", ok, err, true )

} // end TestHMACDataDependsOnEntry


func TestFixFile( t *testing.T ) {

  n,_:= newTestNAND ( t )
  idx:= putFile ( t, n, "/f", pattern ( CLUSTER_SIZE, 3 ) )
  chain,_:= n.GetFatsForFile ( idx )
  page:= ClusterToPage ( chain[0] )
  data,_:= n.GetPage ( page, false )
  data[0]^= 0xff
  n.layout.WritePage ( n.f, page, data )

  if err:= n.FixFile ( idx ); err != nil { t.Fatal ( err ) }
  if err:= n.VerifyFile ( idx ); err != nil {
    t.Errorf ( "VerifyFile after FixFile: %v", err )
  }

} // end TestFixFile


func TestHMACMetaFixCheck( t *testing.T ) {

  n,_:= newTestNAND ( t )
  _,cluster,_:= n.ActiveSuperblock ()
  ok,err:= n.CheckHMACMeta ( cluster )
  mustCheck ( t, "CheckHMACMeta", ok, err, true )

  last:= cluster+SUPERBLOCK_CLUSTERS-1
  if err:= n.FixClusterECC ( last ); err != nil { t.Fatal ( err ) }
  ok,err= n.CheckHMACMeta ( cluster )
  mustCheck ( t, "CheckHMACMeta after FixClusterECC", ok, err, false )

  if err:= n.FixHMACMeta ( cluster ); err != nil { t.Fatal ( err ) }
  ok,err= n.CheckHMACMeta ( cluster )
  mustCheck ( t, "CheckHMACMeta after FixHMACMeta", ok, err, true )
  bad,err:= n.CheckClusterECC ( last )
  if err != nil || len(bad) != 0 {
    t.Errorf ( "ECC broken by FixHMACMeta: %x (%v)", bad, err )
  }

} // end TestHMACMetaFixCheck


func TestVerifyTreePartial( t *testing.T ) {

  n,_:= newTestNAND ( t )
  if _,err:= n.CreateEntry ( "/d", 0, 0, TYPE_DIR, 0, ROOT_PERMS ); err != nil {
    t.Fatal ( err )
  }
  good:= putFile ( t, n, "/d/good", pattern ( CLUSTER_SIZE, 1 ) )
  bad:= putFile ( t, n, "/d/bad", pattern ( 2*CLUSTER_SIZE, 2 ) )
  chain,_:= n.GetFatsForFile ( bad )
  n.FAT ().set ( chain[1], chain[0] )

  errs:= n.VerifyTree ( FST_ROOT )
  if len(errs) != 1 {
    t.Fatalf ( "got %d errors, want 1: %v", len(errs), errs )
  }
  if errs[0].Entry != bad || errs[0].Path != "/d/bad" ||
    !errors.Is ( errs[0], ErrChainCorruption ) {
    t.Errorf ( "unexpected error %v", errs[0] )
  }
  if err:= n.VerifyFile ( good ); err != nil {
    t.Errorf ( "good file: %v", err )
  }

  errs= n.FixTree ( FST_ROOT )
  if len(errs) != 1 || errs[0].Entry != bad {
    t.Errorf ( "FixTree errors: %v", errs )
  }

} // end TestVerifyTreePartial
