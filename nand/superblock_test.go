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
  "os"
  "testing"

  "github.com/sirupsen/logrus"
  "github.com/sirupsen/logrus/hooks/test"
)


func TestSelectSuperblock( t *testing.T ) {

  tests:= []struct {
    name  string
    cands []SuperblockCandidate
    slot  int
  }{
    { "distinct", []SuperblockCandidate{ {0,3}, {1,7}, {2,5} }, 1 },
    { "wrapped", []SuperblockCandidate{ {0,17}, {14,15}, {15,16} }, 0 },
    { "tie", []SuperblockCandidate{ {9,4}, {3,4}, {5,2} }, 3 },
    { "single", []SuperblockCandidate{ {12,1} }, 12 },
  }
  for _,tt:= range tests {
    got,err:= SelectSuperblock ( tt.cands )
    if err != nil || got.Slot != tt.slot {
      t.Errorf ( "%s: got slot %d (%v), want %d", tt.name, got.Slot, err, tt.slot )
    }
  }
  if _,err:= SelectSuperblock ( nil ); !errors.Is ( err, ErrNoValidSuperblock ) {
    t.Errorf ( "no candidates: got %v", err )
  }

} // end TestSelectSuperblock


func TestSlotCluster( t *testing.T ) {

  for slot:= 0; slot < SUPERBLOCK_SLOTS; slot++ {
    got,err:= SlotOf ( SlotCluster ( slot ) )
    if err != nil || got != slot {
      t.Errorf ( "SlotOf(SlotCluster(%d)) = %d, %v", slot, got, err )
    }
  }
  if SlotCluster ( SUPERBLOCK_SLOTS-1 )+SUPERBLOCK_CLUSTERS-1 != CLUSTERS_COUNT-1 {
    t.Error ( "last slot does not end at the last cluster" )
  }
  if _,err:= SlotOf ( SUPERBLOCK_FIRST_CLUSTER+1 ); err == nil {
    t.Error ( "cluster inside a slot accepted" )
  }

} // end TestSlotCluster


// Corromp l'HMAC guardat d'un slot directament en el fitxer.
func corruptSlotHMAC( t *testing.T, file_name string, slot int ) {

  t.Helper ()
  f,err:= os.OpenFile ( file_name, os.O_RDWR, 0 )
  if err != nil { t.Fatal ( err ) }
  defer f.Close ()
  info,_:= f.Stat ()
  layout,err:= NewLayout ( info.Size () )
  if err != nil { t.Fatal ( err ) }
  page:= hmacPage ( SlotCluster ( slot )+SUPERBLOCK_CLUSTERS-1 )
  spare,err:= layout.ReadSpare ( f, page )
  if err != nil { t.Fatal ( err ) }
  spare[SPARE_HMAC_OFFSET]^= 0xff
  if err:= layout.WriteSpare ( f, page, spare ); err != nil { t.Fatal ( err ) }

} // end corruptSlotHMAC


func TestSuperblockCommitAndSelection( t *testing.T ) {

  file_name:= createTestDump ( t, DUMP_TYPE_ECC, nil )
  n,_:= openTestDump ( t, file_name )
  if slot,_,version:= n.ActiveSuperblock (); slot != 0 || version != 1 {
    t.Fatalf ( "fresh dump: slot %d version %d", slot, version )
  }
  for i:= 0; i < 4; i++ {
    if _,err:= n.CreateEntry ( "/d"+string(rune('0'+i)), 0, 0, TYPE_DIR, 0,
      ROOT_PERMS ); err != nil {
      t.Fatal ( err )
    }
    if err:= n.WriteMetaData (); err != nil { t.Fatal ( err ) }
  }
  if slot,_,version:= n.ActiveSuperblock (); slot != 4 || version != 5 {
    t.Fatalf ( "after 4 commits: slot %d version %d", slot, version )
  }
  n.Close ()

  // La versió més alta és vàlida
  n,_= openTestDump ( t, file_name )
  if slot,_,version:= n.ActiveSuperblock (); slot != 4 || version != 5 {
    t.Errorf ( "reopen: slot %d version %d", slot, version )
  }
  if _,err:= n.Resolve ( "/d3" ); err != nil {
    t.Errorf ( "committed entry lost: %v", err )
  }
  n.Close ()

  // La versió 5 no passa l'HMAC, es tria la 4
  corruptSlotHMAC ( t, file_name, 4 )
  n,hook:= openTestDump ( t, file_name )
  if slot,_,version:= n.ActiveSuperblock (); slot != 3 || version != 4 {
    t.Errorf ( "corrupted v5: slot %d version %d", slot, version )
  }
  if _,err:= n.Resolve ( "/d3" ); !errors.Is ( err, ErrPathNotFound ) {
    t.Errorf ( "entry from rejected superblock visible: %v", err )
  }
  if !hasMessage ( hook, logrus.ErrorLevel, "superblock HMAC mismatch, ignoring slot" ) {
    t.Error ( "rejected superblock not reported" )
  }

  // El següent commit va després del slot actiu
  if err:= n.WriteMetaData (); err != nil { t.Fatal ( err ) }
  if slot,_,version:= n.ActiveSuperblock (); slot != 4 || version != 5 {
    t.Errorf ( "commit after fallback: slot %d version %d", slot, version )
  }

} // end TestSuperblockCommitAndSelection


func TestSuperblockWrapAround( t *testing.T ) {

  n,_:= newTestNAND ( t )
  for i:= 0; i < SUPERBLOCK_SLOTS; i++ {
    if err:= n.WriteMetaData (); err != nil { t.Fatal ( err ) }
  }
  slot,cluster,version:= n.ActiveSuperblock ()
  if slot != 0 || cluster != SUPERBLOCK_FIRST_CLUSTER || version != SUPERBLOCK_SLOTS+1 {
    t.Errorf ( "slot %d cluster %#x version %d", slot, cluster, version )
  }
  if ok,err:= n.CheckHMACMeta ( cluster ); err != nil || !ok {
    t.Errorf ( "rewritten slot 0 HMAC: %v %v", ok, err )
  }

} // end TestSuperblockWrapAround


func TestNoValidSuperblock( t *testing.T ) {

  file_name:= createTestDump ( t, DUMP_TYPE_ECC, nil )
  corruptSlotHMAC ( t, file_name, 0 )
  logger,_:= test.NewNullLogger ()
  _,err:= Open ( file_name, &Options{ Keys: testKeys ( t ), Logger: logger } )
  if !errors.Is ( err, ErrNoValidSuperblock ) {
    t.Errorf ( "got %v, want ErrNoValidSuperblock", err )
  }

} // end TestNoValidSuperblock


func TestSuperblockWithoutKeys( t *testing.T ) {

  file_name:= createTestDump ( t, DUMP_TYPE_ECC, nil )
  corruptSlotHMAC ( t, file_name, 0 )
  logger,hook:= test.NewNullLogger ()
  n,err:= Open ( file_name, &Options{ Logger: logger, ReadOnly: true } )
  if err != nil { t.Fatalf ( "Open without keys: %v", err ) }
  defer n.Close ()
  if !hasMessage ( hook, logrus.WarnLevel,
    "superblock HMAC cannot be verified, selecting by magic and version only" ) {
    t.Error ( "missing warning" )
  }
  if _,err:= n.GetCluster ( 0x100, true ); !errors.Is ( err, ErrKey ) {
    t.Errorf ( "decrypt without keys: got %v, want ErrKey", err )
  }
  if _,err:= n.CheckHMACMeta ( SUPERBLOCK_FIRST_CLUSTER ); !errors.Is ( err, ErrKey ) {
    t.Errorf ( "HMAC without keys: got %v, want ErrKey", err )
  }

} // end TestSuperblockWithoutKeys
