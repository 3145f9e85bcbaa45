// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// rgi2gff converts CARD RGI tabular output into GFF3.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/biogo/annotools/gff3"
	"github.com/biogo/annotools/rgi"
)

var (
	inf  = flag.String("file", "", "RGI txt output file. Defaults to stdin.")
	outf = flag.String("out", "", "GFF3 output file name. Defaults to stdout.")
	help = flag.Bool("help", false, "help prints this message.")
)

func main() {
	flag.Parse()
	if *help {
		flag.Usage()
		os.Exit(0)
	}

	in := os.Stdin
	var err error
	if *inf != "" {
		if in, err = os.Open(*inf); err != nil {
			log.Fatalf("failed to open %q: %v", *inf, err)
		}
		defer in.Close()
	}
	fmt.Fprintf(os.Stderr, "Starting RGI parsing on %s %s\n", in.Name(), time.Now().Format(time.ANSIC))

	rows, err := rgi.ReadRows(in)
	if err != nil {
		log.Fatalf("failed to read RGI output: %v", err)
	}
	fs, n := rgi.Features(rows)

	var out *os.File
	if *outf == "" {
		out = os.Stdout
	} else if out, err = os.Create(*outf); err != nil {
		log.Fatalf("failed to open %q: %v", *outf, err)
	}
	defer out.Close()
	w := gff3.NewWriter(out, true)
	for _, f := range fs {
		w.Write(f)
	}
	if err = w.Flush(); err != nil {
		log.Fatalf("failed to write features: %v", err)
	}

	now := time.Now().Format(time.ANSIC)
	fmt.Fprintf(os.Stderr, "Parsed %d lines %s\n", n.Lines, now)
	fmt.Fprintf(os.Stderr, "Found %d forward and %d reverse hits\n", n.Plus, n.Minus)
	fmt.Fprintf(os.Stderr, "Wrote %d matches %s\n", n.Written, now)
}
