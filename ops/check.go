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
 *  check.go - Implementa les operacions CHECK i FIX. Comprova o
 *             repara l'ECC i l'HMAC dels fitxers i del superbloc.
 *
 */

package ops

import (
  "fmt"
  
  "github.com/adriagipas/nandcp/nand"
  "github.com/adriagipas/nandcp/utils"
  "github.com/sirupsen/logrus"
)


/************/
/* OPERACIÓ */
/************/

func rootOr( paths []string ) []string {
  if len(paths) == 0 { return []string{"/"} }
  return paths
} // end rootOr


func Check ( args *utils.Args ) error {

  n,err := openNAND ( args, false )
  if err != nil { return err }
  defer n.Close ()

  // Superbloc actiu
  slot,cluster,_ := n.ActiveSuperblock ()
  ok,err := n.CheckHMACMeta ( cluster )
  if err != nil { return err }
  if !ok {
    logrus.WithField ( "slot", slot ).Error ( "superblock HMAC mismatch" )
  }
  
  // Fitxers
  errs := []nand.EntryError{}
  for _,path := range rootOr ( args.OpArgs ) {
    idx,err := n.Resolve ( path )
    if err != nil { return err }
    errs= append ( errs, n.VerifyTree ( idx )... )
  }
  if err := reportEntryErrors ( "check", errs ); err != nil {
    return err
  }
  if !ok {
    return fmt.Errorf ( "%w: superblock in slot %d",
      nand.ErrIntegrityMismatch, slot )
  }
  fmt.Println ( "OK" )
  
  return nil
  
} // end Check


func Fix ( args *utils.Args ) (err error) {

  n,err := openNAND ( args, true )
  if err != nil { return err }
  defer func() { err= closeNAND ( n, err ) }()

  // Fitxers
  errs := []nand.EntryError{}
  for _,path := range rootOr ( args.OpArgs ) {
    idx,err := n.Resolve ( path )
    if err != nil { return err }
    errs= append ( errs, n.FixTree ( idx )... )
  }
  
  // Superbloc actiu
  _,cluster,_ := n.ActiveSuperblock ()
  for i := uint16(0); i < nand.SUPERBLOCK_CLUSTERS; i++ {
    if err := n.FixClusterECC ( cluster+i ); err != nil {
      return err
    }
  }
  if err := n.FixHMACMeta ( cluster ); err != nil {
    return err
  }
  
  return reportEntryErrors ( "fix", errs )
  
} // end Fix
