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
 *  check.go - Comprovació i reparació de l'ECC i dels HMAC.
 *
 *  ATENCIÓ! FixECC reescriu tota la spare i per tant esborra
 *  l'HMAC. Després d'un FixECC cal cridar a FixHMACData o
 *  FixHMACMeta.
 */

package nand

import (
  "bytes"
  "fmt"

  "github.com/sirupsen/logrus"
)


/*******/
/* ECC */
/*******/

func (self *NAND) checkSpare() error {
  if !self.layout.HasSpare () {
    return fmt.Errorf ( "%w: %s", ErrNoSpare, self.layout.String () )
  }
  return nil
} // end checkSpare


func (self *NAND) CheckECC( page uint32 ) (bool,error) {

  if err:= self.checkSpare (); err != nil { return false,err }
  data,err:= self.layout.ReadPage ( self.f, page, true )
  if err != nil { return false,err }

  return CheckPageECC ( data ),nil

} // end CheckECC


// Recalcula l'ECC de la pàgina. La spare queda sense HMAC.
func (self *NAND) FixECC( page uint32 ) error {

  if err:= self.checkWritable (); err != nil { return err }
  if err:= self.checkSpare (); err != nil { return err }
  data,err:= self.layout.ReadPage ( self.f, page, false )
  if err != nil { return err }
  if err:= self.layout.WriteSpare ( self.f, page, NewSpare ( data ) ); err != nil {
    return err
  }
  self.log.WithField ( "page", fmt.Sprintf ( "%#x", page ) ).Debug (
    "page ECC fixed" )

  return nil

} // end FixECC


// Comprova l'ECC de totes les pàgines d'un cluster. Torna les pàgines
// errònies.
func (self *NAND) CheckClusterECC( cluster uint16 ) ([]uint32,error) {

  ret:= []uint32{}
  first:= ClusterToPage ( cluster )
  for i:= uint32(0); i < PAGES_PER_CLUSTER; i++ {
    ok,err:= self.CheckECC ( first+i )
    if err != nil { return nil,err }
    if !ok { ret= append ( ret, first+i ) }
  }

  return ret,nil

} // end CheckClusterECC


func (self *NAND) FixClusterECC( cluster uint16 ) error {

  first:= ClusterToPage ( cluster )
  for i:= uint32(0); i < PAGES_PER_CLUSTER; i++ {
    if err:= self.FixECC ( first+i ); err != nil { return err }
  }

  return nil

} // end FixClusterECC


/*********************/
/* HMAC DE LES DADES */
/*********************/

func (self *NAND) hmacKey() ([]byte,error) {

  if err:= self.checkSpare (); err != nil { return nil,err }

  return self.keys.Get ( KEY_NAND_HMAC )

} // end hmacKey


// Cadena i HMACs esperats per a cada cluster d'un fitxer.
func (self *NAND) dataHMACs( idx uint16 ) ([]uint16,[][]byte,error) {

  key,err:= self.hmacKey ()
  if err != nil { return nil,nil,err }
  e,err:= self.fileEntry ( idx )
  if err != nil { return nil,nil,err }
  chain,err:= self.fileChain ( e )
  if err != nil { return nil,nil,err }
  hmacs:= make([][]byte,len(chain))
  for i,c:= range chain {
    data,err:= self.GetCluster ( c, true )
    if err != nil { return nil,nil,err }
    hmacs[i]= CalcHMAC ( key, DataSalt ( e, uint32(i) ), data )
  }

  return chain,hmacs,nil

} // end dataHMACs


func (self *NAND) storedHMAC( cluster uint16 ) ([]byte,error) {

  spare,err:= self.layout.ReadSpare ( self.f, hmacPage ( cluster ) )
  if err != nil { return nil,err }

  return SpareHMAC ( spare ),nil

} // end storedHMAC


// Escriu l'HMAC en les spares d'un cluster conservant la resta.
func (self *NAND) putHMAC( cluster uint16, hmac []byte ) error {

  spares,err:= self.clusterSpares ( cluster )
  if err != nil { return err }
  PutSpareHMAC ( spares, hmac )
  first:= ClusterToPage ( cluster )
  for _,p:= range []uint32{_HMAC_PAGE1,_HMAC_PAGE2} {
    if err:= self.layout.WriteSpare ( self.f, first+p, spares[p] ); err != nil {
      return err
    }
  }

  return nil

} // end putHMAC


// Cert si tots els clusters del fitxer tenen l'HMAC correcte.
func (self *NAND) CheckHMACData( idx uint16 ) (bool,error) {

  chain,hmacs,err:= self.dataHMACs ( idx )
  if err != nil { return false,err }
  for i,c:= range chain {
    stored,err:= self.storedHMAC ( c )
    if err != nil { return false,err }
    if !bytes.Equal ( stored, hmacs[i] ) {
      self.log.WithFields ( logrus.Fields{
        "entry": idx,
        "cluster": fmt.Sprintf ( "%#x", c ),
      }).Debug ( "data HMAC mismatch" )
      return false,nil
    }
  }

  return true,nil

} // end CheckHMACData


func (self *NAND) FixHMACData( idx uint16 ) error {

  if err:= self.checkWritable (); err != nil { return err }
  chain,hmacs,err:= self.dataHMACs ( idx )
  if err != nil { return err }
  for i,c:= range chain {
    if err:= self.putHMAC ( c, hmacs[i] ); err != nil { return err }
  }
  self.log.WithFields ( logrus.Fields{
    "entry": idx,
    "clusters": len(chain),
  }).Info ( "data HMAC fixed" )

  return nil

} // end FixHMACData


/*************************/
/* HMAC DELS SUPERBLOCS */
/*************************/

func (self *NAND) metaHMAC( cluster uint16 ) ([]byte,error) {

  key,err:= self.hmacKey ()
  if err != nil { return nil,err }
  data,err:= self.readSuperblockData ( cluster )
  if err != nil { return nil,err }

  return CalcHMAC ( key, MetaSalt ( cluster ), data ),nil

} // end metaHMAC


// CLUSTER és el primer cluster del superbloc. L'HMAC està en l'últim.
func (self *NAND) CheckHMACMeta( cluster uint16 ) (bool,error) {

  hmac,err:= self.metaHMAC ( cluster )
  if err != nil { return false,err }
  stored,err:= self.storedHMAC ( cluster+SUPERBLOCK_CLUSTERS-1 )
  if err != nil { return false,err }

  return bytes.Equal ( hmac, stored ),nil

} // end CheckHMACMeta


func (self *NAND) FixHMACMeta( cluster uint16 ) error {

  if err:= self.checkWritable (); err != nil { return err }
  hmac,err:= self.metaHMAC ( cluster )
  if err != nil { return err }
  if err:= self.putHMAC ( cluster+SUPERBLOCK_CLUSTERS-1, hmac ); err != nil {
    return err
  }
  self.log.WithField ( "cluster", fmt.Sprintf ( "%#x", cluster ) ).Info (
    "superblock HMAC fixed" )

  return nil

} // end FixHMACMeta


/*************/
/* FITXERS */
/*************/

// Comprova l'ECC i l'HMAC d'un fitxer. Torna un error que embolcalla
// ErrIntegrityMismatch si alguna cosa no quadra.
func (self *NAND) VerifyFile( idx uint16 ) error {

  e,err:= self.fileEntry ( idx )
  if err != nil { return err }
  chain,err:= self.fileChain ( e )
  if err != nil { return err }
  for _,c:= range chain {
    bad,err:= self.CheckClusterECC ( c )
    if err != nil { return err }
    if len(bad) > 0 {
      return fmt.Errorf ( "%w: ECC of page %#x (cluster %#x)",
        ErrIntegrityMismatch, bad[0], c )
    }
  }
  ok,err:= self.CheckHMACData ( idx )
  if err != nil { return err }
  if !ok {
    return fmt.Errorf ( "%w: data HMAC", ErrIntegrityMismatch )
  }

  return nil

} // end VerifyFile


// Recalcula l'ECC de totes les pàgines i després l'HMAC.
func (self *NAND) FixFile( idx uint16 ) error {

  if err:= self.checkWritable (); err != nil { return err }
  e,err:= self.fileEntry ( idx )
  if err != nil { return err }
  chain,err:= self.fileChain ( e )
  if err != nil { return err }
  for _,c:= range chain {
    if err:= self.FixClusterECC ( c ); err != nil { return err }
  }

  return self.FixHMACData ( idx )

} // end FixFile


// Verifica tots els fitxers del subarbre. Continua encara que falle
// algun fitxer i torna la llista d'errors.
func (self *NAND) VerifyTree( idx uint16 ) []EntryError {

  return self.walk ( idx, func(i,_ uint16, _ string, e *Entry) error {
    if !e.IsFile () { return nil }
    return self.VerifyFile ( i )
  })

} // end VerifyTree


// Repara tots els fitxers del subarbre.
func (self *NAND) FixTree( idx uint16 ) []EntryError {

  return self.walk ( idx, func(i,_ uint16, _ string, e *Entry) error {
    if !e.IsFile () { return nil }
    return self.FixFile ( i )
  })

} // end FixTree
