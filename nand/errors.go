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
 *  errors.go - Errors que pot tornar el paquet.
 */

package nand

import (
  "errors"
  "fmt"
)


/**********/
/* ERRORS */
/**********/

// Tots els errors que torna el paquet embolcallen algun d'aquests, per
// tant es poden comprovar amb errors.Is.
var (
  ErrLayout            = errors.New ( "unrecognized NAND dump layout" )
  ErrNoSpare           = errors.New ( "NAND dump has no spare data" )
  ErrKey               = errors.New ( "invalid key material" )
  ErrNoValidSuperblock = errors.New ( "no valid superblock found" )
  ErrChainCorruption   = errors.New ( "corrupted chain" )
  ErrNoFreeEntry       = errors.New ( "no free entry in the FST" )
  ErrOutOfSpace        = errors.New ( "not enough free clusters" )
  ErrIntegrityMismatch = errors.New ( "integrity check failed" )
  ErrPathNotFound      = errors.New ( "path not found" )
  ErrNotFile           = errors.New ( "entry is not a file" )
  ErrNotDirectory      = errors.New ( "entry is not a directory" )
  ErrInvalidName       = errors.New ( "invalid entry name" )
  ErrReadOnly          = errors.New ( "NAND opened in read-only mode" )
)


/***************/
/* ENTRY ERROR */
/***************/

// Error associat a una entrada concreta de la FST. S'empra per a
// tornar resultats parcials quan es recorre un arbre sencer.
type EntryError struct {
  Entry uint16
  Path  string
  Err   error
}


func (self EntryError) Error() string {
  if self.Path != "" {
    return fmt.Sprintf ( "entry %d (%s): %s", self.Entry, self.Path, self.Err )
  }
  return fmt.Sprintf ( "entry %d: %s", self.Entry, self.Err )
} // end EntryError.Error


func (self EntryError) Unwrap() error {
  return self.Err
} // end EntryError.Unwrap
