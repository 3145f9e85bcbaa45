// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// tgfamshiu reconciles TGFam-Finder gene family annotations with the
// pseudogenes predicted by the Shiu pipeline.
//
//	tgfamshiu summary [options]
//	tgfamshiu compare [options]
//
// The summary mode counts, for each family, the overlapping genes and how
// they classify by the number of disabling mutations of the overlapping
// pseudogene. The compare mode writes per family gene, relaxed gene and
// pseudogene annotations and the final set of pseudogenes.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"

	"github.com/biogo/annotools/pseudogene"
)

func main() {
	if len(os.Args) < 2 || (os.Args[1] != "summary" && os.Args[1] != "compare") {
		fmt.Fprintf(os.Stderr, "usage: %s summary|compare [options]\n", os.Args[0])
		os.Exit(2)
	}
	mode := os.Args[1]

	fs := flag.NewFlagSet(mode, flag.ExitOnError)
	tgfam := fs.String("tgfam", "./gffs/TGFam", "directory of TGFam-Finder GFF files.")
	shiu := fs.String("shiu", "./gffs/Pseudogenes/bnut.shiu.Pseudogenes.gff", "Shiu pipeline pseudogene GFF.")
	mutations := fs.Int("mutations", 3, "disabling mutations accepted for relaxed genes.")
	bedtools := fs.String("bedtools", "bedtools", "bedtools executable.")
	fraction := fs.Float64("tgfam-fraction", 0.1, "minimum overlap as a fraction of the TGFam gene.")
	outdir := fs.String("outdir", "./_results", "output directory.")
	native := fs.Bool("native", false, "intersect in memory instead of running bedtools.")
	threads := fs.Int("threads", runtime.GOMAXPROCS(0), "number of families processed concurrently.")
	fs.Parse(os.Args[2:])

	isect := pseudogene.Bedtools(*bedtools, 0, *fraction)
	if *native {
		isect = pseudogene.Native(0, *fraction)
	}
	c := &pseudogene.Comparison{
		Shiu:      *shiu,
		TGFam:     *tgfam,
		Outdir:    *outdir,
		Mutations: *mutations,
		Fraction:  *fraction,
		Intersect: isect,
		Threads:   *threads,
		Log:       os.Stderr,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch mode {
	case "summary":
		sums, err := c.Summary(ctx)
		if err != nil {
			log.Fatal(err)
		}
		if err = os.MkdirAll(*outdir, 0o755); err != nil {
			log.Fatal(err)
		}
		name := filepath.Join(*outdir, "Intersection_summary.md")
		if err = pseudogene.WriteSummaryFile(name, sums, *fraction, *mutations); err != nil {
			log.Fatalf("failed to write %q: %v", name, err)
		}
		if err = pseudogene.WriteSummary(os.Stdout, sums, *fraction, *mutations); err != nil {
			log.Fatal(err)
		}
		fmt.Fprintf(os.Stderr, "Summary of %d families written to %s\n", len(sums), name)

	case "compare":
		res, err := c.Run(ctx)
		if err != nil {
			log.Fatal(err)
		}
		var promoted int
		for _, r := range res {
			promoted += len(r.Promoted)
		}
		fmt.Fprintf(os.Stderr, "Compared %d families, %d pseudogenes promoted to genes. Results are in %s\n",
			len(res), promoted, *outdir)
	}
}
