// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// gbksubset subsets a GenBank annotation to the CDS whose translations
// align to a nucleotide FASTA file. The CDS proteins are searched with
// tblastn and records keeping no CDS are dropped.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/biogo/annotools/blast"
	"github.com/biogo/annotools/genbank"
)

var (
	gbk     = flag.String("gbk", "", "GenBank file to subset (required).")
	fasta   = flag.String("fasta", "", "nucleotide FASTA queried with the CDS proteins (required).")
	outf    = flag.String("out", "", "GenBank output file (required).")
	minid   = flag.Float64("minid", 80, "minimum percent identity.")
	mincov  = flag.Float64("mincov", 80, "minimum percent query coverage.")
	culling = flag.Int("culling-limit", 1, "BLAST culling limit, 1 keeps the best hit only.")
	help    = flag.Bool("help", false, "help prints this message.")
)

func main() {
	flag.Parse()
	if *help {
		flag.Usage()
		os.Exit(0)
	}
	if *gbk == "" || *fasta == "" || *outf == "" {
		fmt.Fprintln(os.Stderr, "Missing mandatory arguments")
		flag.Usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	recs, err := genbank.ReadFile(*gbk)
	if err != nil {
		log.Fatalf("failed to read %q: %v", *gbk, err)
	}

	dir, err := os.MkdirTemp("", "gbksubset-")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)
	prots := filepath.Join(dir, "cds.faa")
	f, err := os.Create(prots)
	if err != nil {
		log.Fatal(err)
	}
	n, err := genbank.CDSFasta(f, recs, genbank.Protein, nil)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		log.Fatalf("failed to translate CDS: %v", err)
	}
	fmt.Fprintf(os.Stderr, "Searching %d CDS proteins against %s.\n", n, *fasta)

	hits, err := blast.Pairwise{
		Task:         "tblastn",
		Query:        prots,
		Subject:      *fasta,
		Filter:       blast.Filter{MinIdentity: *minid, MinCoverage: *mincov},
		CullingLimit: *culling,
		Threads:      1,
		Columns:      blast.TitleColumns,
	}.Run(ctx)
	if err != nil {
		log.Fatal(err)
	}

	tags := make(map[string]bool)
	for _, h := range hits {
		tags[h.QSeqID] = true
	}
	sub := genbank.SubsetByLocusTags(recs, tags)
	if err = genbank.WriteFile(*outf, sub); err != nil {
		log.Fatalf("failed to write %q: %v", *outf, err)
	}
	fmt.Fprintf(os.Stderr, "Kept %d CDS in %d records.\n", len(tags), len(sub))
}
