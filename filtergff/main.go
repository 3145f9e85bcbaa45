// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// filtergff subsets a GFF3 annotation to the genes named in a list and
// their transcripts. Gene identifiers are compared up to the first ".g"
// and transcripts are tagged with the phytozome accession taken from
// their ID.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/biogo/annotools/gff3"
)

var (
	inf  = flag.String("input", "", "GFF file to subset (required).")
	fofn = flag.String("fofn", "", "file holding one gene ID per line (required).")
	outf = flag.String("out", "", "output file name. Defaults to stdout.")
	help = flag.Bool("help", false, "help prints this message.")
)

func main() {
	flag.Parse()
	if *help {
		flag.Usage()
		os.Exit(0)
	}
	if *inf == "" || *fofn == "" {
		flag.Usage()
		os.Exit(1)
	}

	ids, err := readIDs(*fofn)
	if err != nil {
		log.Fatalf("failed to read gene list %q: %v", *fofn, err)
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

	w := gff3.NewWriter(out, true)
	n := filter(w, fs, ids)
	if err = w.Flush(); err != nil {
		log.Fatalf("failed to write features: %v", err)
	}
	fmt.Fprintf(os.Stderr, "Kept %d of %d features.\n", n, len(fs))
}

func readIDs(name string) (map[string]bool, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseIDs(f)
}

func parseIDs(r io.Reader) (map[string]bool, error) {
	ids := make(map[string]bool)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		id := strings.TrimSpace(sc.Text())
		if id != "" {
			ids[id] = true
		}
	}
	return ids, sc.Err()
}

// geneID returns the gene part of a gene or transcript identifier.
func geneID(s string) string {
	id, _, _ := strings.Cut(s, ".g")
	return id
}

// pacid returns the accession following the first ':' of a transcript ID.
func pacid(id string) string {
	_, acc, ok := strings.Cut(id, ":")
	if !ok {
		return id
	}
	acc, _, _ = strings.Cut(acc, ":")
	return acc
}

// filter writes the genes in ids, their mRNAs and the children of those
// mRNAs to w in input order, returning the number of features written.
// Children are written directly after their mRNA.
func filter(w *gff3.Writer, fs []*gff3.Feature, ids map[string]bool) int {
	var children []*gff3.Feature
	for _, f := range fs {
		if f.Type != "gene" && f.Type != "mRNA" {
			children = append(children, f)
		}
	}

	var n int
	for _, f := range fs {
		switch f.Type {
		case "gene":
			if ids[geneID(f.ID())] {
				w.Write(f)
				n++
			}
		case "mRNA":
			if !ids[geneID(f.Attributes.Get("Parent"))] {
				continue
			}
			acc := pacid(f.ID())
			w.Write(tagged(f, acc))
			n++
			key := "ID=" + f.ID()
			for _, c := range children {
				if strings.Contains(c.Attributes.String(), key) {
					w.Write(tagged(c, acc))
					n++
				}
			}
		}
	}
	return n
}

func tagged(f *gff3.Feature, acc string) *gff3.Feature {
	c := *f
	c.Attributes = append(gff3.Attributes(nil), f.Attributes...)
	c.Attributes = append(c.Attributes, gff3.Attribute{Key: "pacid", Value: acc})
	return &c
}
