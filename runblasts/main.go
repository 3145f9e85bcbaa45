// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// runblasts searches a query against a gene database formatted for the
// bacannot pipeline and summarises the accepted alignments.
//
//	runblasts blastn|tblastn|blastp|blastx -query genome.fa -db genes [options]
//
// Nucleotide searches run BLAST+ and protein searches run DIAMOND. The
// subject titles of the database must have the form
// db~~~gene~~~accession~~~product description.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/biogo/annotools/blast"
)

func main() {
	if len(os.Args) < 2 || strings.HasPrefix(os.Args[1], "-") {
		fmt.Fprintf(os.Stderr, "usage: %s blastn|tblastn|blastp|blastx [options]\n", os.Args[0])
		os.Exit(2)
	}
	task := os.Args[1]

	fs := flag.NewFlagSet(task, flag.ExitOnError)
	query := fs.String("query", "", "query genome or genes to search (required).")
	db := fs.String("db", "", "BLAST or DIAMOND database (required).")
	minid := fs.Float64("minid", 80, "minimum percent identity.")
	mincov := fs.Float64("mincov", 80, "minimum percent coverage.")
	culling := fs.Int("culling-limit", 1, "culling limit, 1 keeps the best hit only.")
	outf := fs.String("out", "out.blast", "file for the accepted alignments.")
	threads := fs.Int("threads", 1, "number of threads.")
	fs.Parse(os.Args[2:])
	if *query == "" || *db == "" {
		fmt.Fprintln(os.Stderr, "Missing mandatory arguments")
		fs.Usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	hits, err := blast.Annotated{
		Task:         task,
		Query:        *query,
		DB:           *db,
		MinIdentity:  *minid,
		MinCoverage:  *mincov,
		CullingLimit: *culling,
		Threads:      *threads,
	}.Run(ctx)
	if err != nil {
		log.Fatal(err)
	}

	out, err := os.Create(*outf)
	if err != nil {
		log.Fatalf("failed to open %q: %v", *outf, err)
	}
	err = blast.WriteTable(out, blast.TitleColumns, hits)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		log.Fatalf("failed to write %q: %v", *outf, err)
	}

	blast.Describe(hits).Write(os.Stderr)
	if err = blast.WriteGeneSummary(os.Stdout, hits); err != nil {
		log.Fatalf("failed to write summary: %v", err)
	}
}
