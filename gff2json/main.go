// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// gff2json converts a GFF3 file, optionally gzip compressed, into a JSON
// array of feature documents suitable for loading with mongoload.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/biogo/annotools/gff3"
)

var (
	inf  = flag.String("input", "", "GFF file to convert, gzip compressed when ending in .gz (required).")
	outf = flag.String("output", "", "JSON output file name. Defaults to stdout.")
	help = flag.Bool("help", false, "help prints this message.")
)

func main() {
	flag.Parse()
	if *help {
		flag.Usage()
		os.Exit(0)
	}
	if *inf == "" {
		flag.Usage()
		os.Exit(1)
	}

	fs, err := gff3.ReadFile(*inf)
	if err != nil {
		log.Fatalf("failed to read %q: %v", *inf, err)
	}

	var out *os.File
	if *outf == "" {
		out = os.Stdout
	} else if out, err = os.Create(*outf); err != nil {
		log.Fatalf("failed to open %q: %v", *outf, err)
	}
	defer out.Close()

	if err = gff3.WriteJSON(out, fs); err != nil {
		log.Fatalf("failed to write JSON: %v", err)
	}
	fmt.Fprintf(os.Stderr, "Finished! Converted %d features.\n", len(fs))
}
