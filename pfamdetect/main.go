// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// pfamdetect detects target proteins carrying Pfam domains of interest.
// HMMER must be available in $PATH.
//
//	pfamdetect index -pfam Pfam-A.hmm
//	pfamdetect detect -pfam Pfam-A.hmm -list domains.txt -prots proteins.fa [-prefix out]
//
// The detect mode writes the hmmsearch table to {prefix}_pfam_hits.txt
// and the detected proteins to {prefix}_target.fa. The domain list is
// preferably given as domain names since the accessions in the HMM file
// may carry version suffixes.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"strings"

	"github.com/biogo/annotools/hmmer"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s index|detect [options]\n", os.Args[0])
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch os.Args[1] {
	case "index":
		index(ctx, os.Args[2:])
	case "detect":
		detect(ctx, os.Args[2:])
	case "-help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", os.Args[1])
		usage()
	}
}

func index(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	pfam := fs.String("pfam", "", "Pfam HMM database to index (required).")
	force := fs.Bool("force", false, "overwrite existing index files.")
	fs.Parse(args)
	if *pfam == "" {
		fs.Usage()
		os.Exit(1)
	}

	cmd, err := hmmer.Press{Force: *force, HMM: *pfam}.BuildCommand()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Fprintf(os.Stderr, "Initiating Pfam hmm indexation\n\t%s\n", strings.Join(cmd.Args, " "))
	press := exec.CommandContext(ctx, cmd.Args[0], cmd.Args[1:]...)
	press.Stdout, press.Stderr = os.Stdout, os.Stderr
	if err = press.Run(); err != nil {
		log.Fatalf("hmmpress failed: %v", err)
	}
}

func detect(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("detect", flag.ExitOnError)
	pfam := fs.String("pfam", "", "pressed Pfam HMM database (required).")
	list := fs.String("list", "", "file of Pfam domain names or accessions, one per line (required).")
	prots := fs.String("prots", "", "target protein FASTA (required).")
	prefix := fs.String("prefix", "out", "prefix of the output files.")
	fs.Parse(args)
	if *pfam == "" || *list == "" || *prots == "" {
		fs.Usage()
		os.Exit(1)
	}

	d := hmmer.Detection{HMM: *pfam, List: *list, Target: *prots, Prefix: *prefix}
	fmt.Fprintf(os.Stderr, "Initiating Pfam domain detection: hmmfetch -f %s %s | hmmsearch --tblout %s - %s\n",
		*pfam, *list, d.HitsName(), *prots)

	n, err := d.Run(ctx, os.Stderr)
	if err != nil {
		log.Fatalf("detection failed: %v", err)
	}
	fmt.Fprintf(os.Stderr, "%d proteins containing the Pfam domains of interest are in:\n\t%s\n", n, d.TargetName())
}
