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
 *  file.go - Lectura i escriptura de fitxers, creació, esborrat i
 *            formatació.
 *
 *  Totes les operacions modifiquen la FAT i la FST en memòria. Cal
 *  cridar a WriteMetaData per a fer-les persistents.
 */

package nand

import (
  "fmt"
  "path"
  "sort"

  "github.com/sirupsen/logrus"
)


/***********/
/* LECTURA */
/***********/

func (self *NAND) fileEntry( idx uint16 ) (*Entry,error) {

  e,err:= self.fst.Get ( idx )
  if err != nil { return nil,err }
  if !e.IsFile () {
    return nil,fmt.Errorf ( "%w: entry %d", ErrNotFile, idx )
  }

  return e,nil

} // end fileEntry


func clustersFor( size int ) int {
  return (size+CLUSTER_SIZE-1)/CLUSTER_SIZE
} // end clustersFor


// Cadena d'un fitxer comprovant que és prou llarga per a la seua
// grandària.
func (self *NAND) fileChain( e *Entry ) ([]uint16,error) {

  chain,err:= self.fat.Chain ( e.Sub )
  if err != nil { return nil,err }
  if need:= clustersFor ( int(e.Size) ); len(chain) < need {
    return nil,fmt.Errorf ( "%w: entry %d needs %d clusters but its chain "+
      "has %d", ErrChainCorruption, e.Pos, need, len(chain) )
  }

  return chain,nil

} // end fileChain


// Torna el contingut desxifrat del fitxer.
func (self *NAND) GetFile( idx uint16 ) ([]byte,error) {

  e,err:= self.fileEntry ( idx )
  if err != nil { return nil,err }
  chain,err:= self.fileChain ( e )
  if err != nil { return nil,err }

  ret:= make([]byte,0,len(chain)*CLUSTER_SIZE)
  for _,c:= range chain[:clustersFor ( int(e.Size) )] {
    data,err:= self.GetCluster ( c, true )
    if err != nil { return nil,err }
    ret= append ( ret, data... )
  }

  return ret[:e.Size],nil

} // end GetFile


func (self *NAND) GetData( path string ) ([]byte,error) {

  idx,err:= self.fst.Resolve ( path )
  if err != nil { return nil,err }

  return self.GetFile ( idx )

} // end GetData


func (self *NAND) Resolve( path string ) (uint16,error) {
  return self.fst.Resolve ( path )
} // end Resolve


func (self *NAND) GetFatsForFile( idx uint16 ) ([]uint16,error) {

  e,err:= self.fileEntry ( idx )
  if err != nil { return nil,err }

  return self.fat.Chain ( e.Sub )

} // end GetFatsForFile


// Tots els clusters emprats pels fitxers del subarbre.
func (self *NAND) GetFatsForEntry( idx uint16 ) ([]uint16,error) {

  entries,err:= self.fst.Subtree ( idx )
  if err != nil { return nil,err }
  ret:= []uint16{}
  for _,i:= range entries {
    e:= &self.fst.entries[i]
    if !e.IsFile () { continue }
    chain,err:= self.fat.Chain ( e.Sub )
    if err != nil {
      return nil,EntryError{ Entry: i, Err: err }
    }
    ret= append ( ret, chain... )
  }

  return ret,nil

} // end GetFatsForEntry


// Clusters marcats com a emprats en la FAT que no pertanyen a cap
// fitxer de l'arbre.
func (self *NAND) LostClusters() ([]uint16,error) {

  used,err:= self.GetFatsForEntry ( FST_ROOT )
  if err != nil { return nil,err }
  owned:= make([]bool,CLUSTERS_COUNT)
  for _,c:= range used { owned[c]= true }
  ret:= []uint16{}
  for i,v:= range self.fat.cells {
    if v == FAT_FREE || Permanent ( v ) { continue }
    if !owned[i] { ret= append ( ret, uint16(i) ) }
  }

  return ret,nil

} // end LostClusters


/**************/
/* ESCRIPTURA */
/**************/

// Substitueix el contingut d'un fitxer. Si falla deixa la FAT i
// l'entrada com estaven. La cadena nova es reserva abans d'alliberar
// la vella, així les dades que apunta l'últim superbloc escrit no es
// sobreescriuen. Sols si no hi ha prou clusters lliures es reutilitzen
// els de la cadena vella.
func (self *NAND) SetData( idx uint16, data []byte ) error {

  if err:= self.checkWritable (); err != nil { return err }
  if self.cipher == nil {
    return fmt.Errorf ( "%w: NAND AES key not loaded", ErrKey )
  }
  if uint64(len(data)) > 0xffffffff {
    return fmt.Errorf ( "%w: file too big", ErrOutOfSpace )
  }
  e,err:= self.fileEntry ( idx )
  if err != nil { return err }
  old_chain,err:= self.fat.Chain ( e.Sub )
  if err != nil { return err }
  old_entry:= *e
  need:= clustersFor ( len(data) )
  log:= self.log.WithFields ( logrus.Fields{ "entry": idx, "size": len(data) } )

  // Reserva
  reuse:= self.fat.FreeCount () < need
  if reuse {
    log.Warn ( "not enough free clusters, reusing the old chain" )
    self.fat.FreeClusters ( old_chain )
  }
  chain,err:= self.fat.AllocChain ( need )
  if err != nil {
    if reuse { self.fat.relink ( old_chain ) }
    log.WithError ( err ).Error ( "unable to allocate clusters" )
    return err
  }
  rollback:= func() {
    self.fat.FreeClusters ( chain )
    self.fat.relink ( old_chain )
    *e= old_entry
  }

  // Actualitza l'entrada abans de calcular els HMAC
  e.Size= uint32(len(data))
  if len(chain) > 0 {
    e.Sub= chain[0]
  } else {
    e.Sub= FAT_LAST
  }

  // Escriu
  buf:= make([]byte,CLUSTER_SIZE)
  for i,c:= range chain {
    for j:= range buf { buf[j]= 0 }
    copy ( buf, data[i*CLUSTER_SIZE:] )
    if err:= self.writeDecryptedCluster ( c, buf, e, uint32(i) ); err != nil {
      rollback ()
      log.WithError ( err ).WithField ( "cluster", c ).Error (
        "unable to write cluster" )
      return err
    }
  }
  if !reuse {
    self.fat.FreeClusters ( old_chain )
  }
  self.dirty= true
  log.WithField ( "clusters", len(chain) ).Info ( "file data written" )

  return nil

} // end SetData


func (self *NAND) SetDataPath( path string, data []byte ) error {

  idx,err:= self.fst.Resolve ( path )
  if err != nil { return err }

  return self.SetData ( idx, data )

} // end SetDataPath


/************************/
/* CREACIÓ I ESBORRAT */
/************************/

// Crea una entrada. PATH és el camí complet de la nova entrada i el
// directori pare ha d'existir. No es comprova si ja hi ha una entrada
// amb el mateix nom.
func (self *NAND) CreateEntry(

  path_name string,
  uid       uint32,
  gid       uint16,
  typ       int,
  attr      uint8,
  perm      Perms,

) (uint16,error) {

  if err:= self.checkWritable (); err != nil { return 0,err }
  clean:= path.Clean ( "/"+path_name )
  if clean == "/" {
    return 0,fmt.Errorf ( "%w: '%s'", ErrInvalidName, path_name )
  }
  dir,name:= path.Split ( clean )
  parent,err:= self.fst.Resolve ( dir )
  if err != nil { return 0,err }
  idx,err:= self.fst.Create ( parent, name, uid, gid, typ, attr, perm )
  if err != nil { return 0,err }
  self.dirty= true
  self.log.WithFields ( logrus.Fields{
    "entry": idx,
    "path": clean,
  }).Info ( "entry created" )

  return idx,nil

} // end CreateEntry


func (self *NAND) DeleteEntry( idx uint16 ) error {

  if err:= self.checkWritable (); err != nil { return err }
  if err:= self.fst.Delete ( idx, self.fat ); err != nil {
    self.log.WithError ( err ).WithField ( "entry", idx ).Error (
      "unable to delete entry" )
    return err
  }
  self.dirty= true
  self.log.WithField ( "entry", idx ).Info ( "entry deleted" )

  return nil

} // end DeleteEntry


func (self *NAND) Delete( path string ) error {

  idx,err:= self.fst.Resolve ( path )
  if err != nil { return err }

  return self.DeleteEntry ( idx )

} // end Delete


/*************/
/* FORMATACIÓ */
/*************/

// Esborra tot el contingut deixant sols l'arrel. Els clusters
// reservats i dolents es preserven. Si SECURE és cert els clusters que
// estaven en ús es sobreescriuen amb 0xff (estat esborrat).
func (self *NAND) Format( secure bool ) error {

  if err:= self.checkWritable (); err != nil { return err }

  // Clusters a alliberar
  to_free:= []uint16{}
  for i,v:= range self.fat.cells {
    if !allocatable ( i ) { break }
    if v != FAT_FREE && !Permanent ( v ) {
      to_free= append ( to_free, uint16(i) )
    }
  }
  sort.Slice ( to_free, func(a,b int) bool { return to_free[a] < to_free[b] } )

  // Sobreescriu
  if secure {
    buf:= make([]byte,PAGE_SIZE+SPARE_SIZE)
    for i:= range buf { buf[i]= 0xff }
    for _,c:= range to_free {
      first:= ClusterToPage ( c )
      for p:= uint32(0); p < PAGES_PER_CLUSTER; p++ {
        if err:= self.layout.WritePage ( self.f, first+p, buf ); err != nil {
          self.log.WithError ( err ).WithField ( "cluster", c ).Error (
            "unable to wipe cluster" )
          return err
        }
      }
    }
  }

  // Tables
  self.fat.FreeClusters ( to_free )
  self.fst.Clear ()
  self.dirty= true
  self.log.WithFields ( logrus.Fields{
    "clusters": len(to_free),
    "secure": secure,
  }).Info ( "NAND formatted" )

  return nil

} // end Format


// Allibera els clusters perduts.
func (self *NAND) FreeLostClusters() ([]uint16,error) {

  if err:= self.checkWritable (); err != nil { return nil,err }
  lost,err:= self.LostClusters ()
  if err != nil { return nil,err }
  if len(lost) > 0 {
    self.fat.FreeClusters ( lost )
    self.dirty= true
  }
  self.log.WithField ( "clusters", len(lost) ).Info ( "lost clusters freed" )

  return lost,nil

} // end FreeLostClusters
