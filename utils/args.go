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
 *  args.go - Processament de la línia de comandaments.
 *
 */

package utils;

import (
  "errors"
  "fmt"
  "os"
  "strings"
)


/*********/
/* TIPUS */
/*********/

type Args struct {

  // Bolcat de la NAND
  FileName string

  // Fitxers de claus (opcionals)
  KeysFile string
  OTPFile  string

  // Operador i arguments
  Op     int
  OpArgs []string

  // Mostra també els missatges de depuració
  Verbose bool
  
}


/*************/
/* CONSTANTS */
/*************/

const OP_NONE    = 0
const OP_SHOW    = 1
const OP_LIST    = 2
const OP_CAT     = 3
const OP_MKDIR   = 4
const OP_PUT     = 5
const OP_EXTRACT = 6
const OP_REMOVE  = 7
const OP_CHECK   = 8
const OP_FIX     = 9
const OP_FORMAT  = 10
const OP_LOST    = 11
const OP_CREATE  = 12
const OP_VERSION = 13


var _OPS= map[string]int{
  "show": OP_SHOW, "sh": OP_SHOW,
  "list": OP_LIST, "ls": OP_LIST,
  "cat": OP_CAT,
  "mkdir": OP_MKDIR,
  "put": OP_PUT,
  "extract": OP_EXTRACT, "ex": OP_EXTRACT,
  "remove": OP_REMOVE, "rm": OP_REMOVE,
  "check": OP_CHECK,
  "fix": OP_FIX,
  "format": OP_FORMAT,
  "lost": OP_LOST,
  "create": OP_CREATE,
}


/*********************/
/* FUNCIONS PRIVADES */
/*********************/

func print_usage() {
  P := fmt.Println
  P("USAGE:\n")
  P("  nandcp <NAND> [<KEYS>] [-v] [<OP>]\n")
  P("    <NAND>: NAND dump file name")
  P("    <KEYS>: KEYS=<keys.bin> | OTP=<otp.bin>")
  P("    <PATH>: A NAND path separated by '/'")
  P("")
  P("    <OP>: <OP_SHOW> | <OP_LIST> | <OP_CAT> | <OP_MKDIR> | <OP_PUT> |")
  P("          <OP_EXTRACT> | <OP_REMOVE> | <OP_CHECK> | <OP_FIX> |")
  P("          <OP_FORMAT> | <OP_LOST> | <OP_CREATE>")
  P("")
  P("    <OP_CAT> : cat <PATH> [<PATH>]*")
  P("")
  P("    <OP_CHECK> : check [<PATH>]*")
  P("")
  P("    <OP_CREATE> : create (ecc | noecc | boot) [<BAD BLOCK>]*")
  P("")
  P("    <OP_EXTRACT> : (extract | ex) [-fat] <PATH> <HOST DIR>")
  P("")
  P("    <OP_FIX> : fix [<PATH>]*")
  P("")
  P("    <OP_FORMAT> : format [-secure]")
  P("")
  P("    <OP_LIST> : (list | ls) <PATH> [<PATH>]*")
  P("")
  P("    <OP_LOST> : lost [-free]")
  P("")
  P("    <OP_MKDIR> : mkdir <PATH> [<PATH>]*")
  P("")
  P("    <OP_PUT> : put <HOST PATH> [<HOST PATH>]* <PATH>")
  P("")
  P("    <OP_REMOVE> : (remove | rm) <PATH> [<PATH>]*")
  P("")
  P("    <OP_SHOW>: show | sh")
  P("")
  P("OPERATIONS:\n")
  P("  cat: Similar to the UNIX cat command, concatenate files and print")
  P("       on the standard output")
  P("")
  P("  check: Verify the ECC and the HMAC of all the files inside the")
  P("         provided paths (the whole NAND by default).")
  P("")
  P("  create: Create a new empty NAND dump. Keys are mandatory for dumps")
  P("          with spare data. Bad blocks are block numbers.")
  P("")
  P("  extract: Extract files and directories to the host. With -fat the")
  P("           ':' character is replaced by '-'.")
  P("")
  P("  fix: Recompute the ECC and the HMAC of all the files inside the")
  P("       provided paths (the whole NAND by default).")
  P("")
  P("  format: Remove all files. Bad blocks and reserved clusters are")
  P("          preserved. With -secure the used clusters are erased.")
  P("")
  P("  list: Similar to the UNIX ls command, show the content inside")
  P("        the provided PATH. If the PATH is a file show the properties")
  P("        of the provided PATH")
  P("")
  P("  lost: Show the clusters allocated in the FAT that do not belong")
  P("        to any file. With -free they are released.")
  P("")
  P("  mkdir: Similar to the UNIX mkdir command, creates a directory for")
  P("         a provided path. All subdirectories in the path are also")
  P("         created.")
  P("")
  P("  put: Copy host files into the NAND. Destination path is always")
  P("       the last provided path. If it is an existing directory the")
  P("       files are copied inside it. Host directories are copied")
  P("       recursively.")
  P("")
  P("  remove: Remove files or directories (recursively).")
  P("")
  P("  show: This is the default operation. Show the information")
  P("        of the NAND dump.")
  P("")
}


/**********************/
/* FUNCIONS PÚBLIQUES */
/**********************/

func NewArgs() (*Args,error) {

  // Crea arguments
  args := Args {
    Op     : OP_NONE,
    OpArgs : os.Args[:0],
  }
  
  // Processa arguments
  for i := 1; i < len(os.Args); i++ {
    arg := os.Args[i]
    if op,ok := _OPS[arg]; ok { // Operació
      args.Op= op
      args.OpArgs= os.Args[i+1:]
      break
    } else if arg == "--version" || arg == "-V" {
      args.Op= OP_VERSION
      return &args,nil
    } else if arg == "-v" {
      args.Verbose= true
    } else if strings.HasPrefix ( arg, "KEYS=" ) {
      args.KeysFile= arg[len("KEYS="):]
    } else if strings.HasPrefix ( arg, "OTP=" ) {
      args.OTPFile= arg[len("OTP="):]
    } else if args.FileName == "" {
      args.FileName= arg
    } else {
      return nil,errors.New ( "only one NAND dump can be provided: "+arg )
    }
  }
  if args.KeysFile != "" && args.OTPFile != "" {
    return nil,errors.New ( "KEYS and OTP cannot be used at the same time" )
  }
  
  // Si no té fitxer mostra usage
  if args.FileName == "" {
    print_usage ()
  }
  
  return &args,nil
  
} // end NewArgs


// Separa les opcions (arguments que comencen per '-') de la resta.
func (self *Args) SplitFlags( known ...string ) (map[string]bool,[]string,error) {

  flags := make(map[string]bool)
  rest := []string{}
  for _,arg := range self.OpArgs {
    if !strings.HasPrefix ( arg, "-" ) {
      rest= append ( rest, arg )
      continue
    }
    found := false
    for _,k := range known {
      if k == arg { found= true; break }
    }
    if !found {
      return nil,nil,fmt.Errorf ( "unknown option: %s", arg )
    }
    flags[arg]= true
  }
  
  return flags,rest,nil
  
} // end SplitFlags
