// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// orthoupset converts an OrthoFinder Orthogroups.tsv table into the
// presence/absence matrix read by UpSetR. With -shared the number of
// orthogroups shared by each pair of species is also written.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/biogo/annotools/tabular"
)

var (
	inf    = flag.String("input", "", "Orthogroups.tsv input file (required).")
	outf   = flag.String("output", "", "presence/absence output file. Defaults to stdout.")
	shared = flag.String("shared", "", "optional output file for the shared orthogroup counts.")
	help   = flag.Bool("help", false, "help prints this message.")
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

	in, err := os.Open(*inf)
	if err != nil {
		log.Fatalf("failed to open %q: %v", *inf, err)
	}
	t, err := tabular.ReadDelimited(in, "\t", true)
	in.Close()
	if err != nil {
		log.Fatalf("failed to read %q: %v", *inf, err)
	}
	p, err := tabular.PresenceMatrix(t)
	if err != nil {
		log.Fatalf("failed to build presence matrix: %v", err)
	}

	name := "Orthogroup"
	if len(t.Header) != 0 && t.Header[0] != "" {
		name = t.Header[0]
	}
	if err = write(*outf, p.Table(name)); err != nil {
		log.Fatal(err)
	}
	if *shared != "" {
		if err = write(*shared, p.SharedTable()); err != nil {
			log.Fatal(err)
		}
	}
	fmt.Fprintf(os.Stderr, "Wrote %d orthogroups over %d species.\n", len(p.Groups), len(p.Members))
}

func write(name string, t *tabular.Table) error {
	if name == "" {
		return tabular.WriteDelimited(os.Stdout, t, "\t")
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err = tabular.WriteDelimited(f, t, "\t"); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
