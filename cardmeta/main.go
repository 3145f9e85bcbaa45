// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// cardmeta annotates bacannot resistance features with the drug class,
// resistance mechanism and gene family recorded by CARD.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/biogo/annotools/tabular"
)

var (
	inf   = flag.String("input", "", "{prefix}_resistance.tsv input file (required).")
	index = flag.String("aro-index", "", "CARD aro_index.tsv file (required).")
	cats  = flag.String("aro-categories", "", "CARD aro_categories_index.tsv file (required).")
	outf  = flag.String("output", "", "output file. Defaults to stdout.")
	help  = flag.Bool("help", false, "help prints this message.")
)

func main() {
	flag.Parse()
	if *help {
		flag.Usage()
		os.Exit(0)
	}
	if *inf == "" || *index == "" || *cats == "" {
		flag.Usage()
		os.Exit(1)
	}

	features := read(*inf)
	meta, err := tabular.CardMetadata(features, read(*index), read(*cats))
	if err != nil {
		log.Fatalf("failed to join CARD metadata: %v", err)
	}

	out := os.Stdout
	if *outf != "" {
		if out, err = os.Create(*outf); err != nil {
			log.Fatalf("failed to open %q: %v", *outf, err)
		}
	}
	err = tabular.WriteDelimited(out, meta, "\t")
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		log.Fatalf("failed to write metadata: %v", err)
	}
	fmt.Fprintf(os.Stderr, "Annotated %d of %d features.\n", len(meta.Rows), len(features.Rows))
}

func read(name string) *tabular.Table {
	f, err := os.Open(name)
	if err != nil {
		log.Fatalf("failed to open %q: %v", name, err)
	}
	defer f.Close()
	t, err := tabular.ReadDelimited(f, "\t", true)
	if err != nil {
		log.Fatalf("failed to read %q: %v", name, err)
	}
	return t
}
