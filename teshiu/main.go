// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// teshiu finds intersections between transposable elements and Shiu
// pipeline pseudogene predictions.
//
//	teshiu compare [options]
//	teshiu plot [options]
//
// The compare mode annotates each pseudogene with the family of the
// transposable element it overlaps most. The plot mode draws the number of
// annotated pseudogenes per TE family as counts and normalised by the
// number of elements of each family.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/biogo/annotools/featplot"
	"github.com/biogo/annotools/gff3"
	"github.com/biogo/annotools/overlap"
	"github.com/biogo/annotools/pseudogene"
)

func main() {
	if len(os.Args) < 2 || (os.Args[1] != "compare" && os.Args[1] != "plot") {
		fmt.Fprintf(os.Stderr, "usage: %s compare|plot [options]\n", os.Args[0])
		os.Exit(2)
	}
	mode := os.Args[1]

	fs := flag.NewFlagSet(mode, flag.ExitOnError)
	shiu := fs.String("shiu", "./bnut_pseudogenes.gff", "Shiu pipeline pseudogene GFF.")
	repet := fs.String("transposons", "./repet_bnut_final.gff", "REPET transposable element GFF.")
	parsed := fs.String("parsed-gff", "./_results/bnut_pseudogenes_TEs.gff", "pseudogene GFF annotated by the compare mode.")
	bedtools := fs.String("bedtools", "bedtools", "bedtools executable.")
	fraction := fs.Float64("shiu-fraction", 0.2, "minimum overlap as a fraction of the pseudogene.")
	outdir := fs.String("outdir", "./_results", "output directory.")
	native := fs.Bool("native", false, "intersect in memory instead of running bedtools.")
	width := fs.Float64("width", 12, "plot width in inches.")
	height := fs.Float64("height", 8, "plot height in inches.")
	fs.Parse(os.Args[2:])

	switch mode {
	case "compare":
		isect := pseudogene.Bedtools(*bedtools, *fraction, 0)
		if *native {
			isect = pseudogene.Native(*fraction, 0)
		}
		c := &pseudogene.TEComparison{
			Shiu:      *shiu,
			Repet:     *repet,
			Outdir:    *outdir,
			Fraction:  *fraction,
			Intersect: isect,
		}
		annotated, err := c.Run()
		if err != nil {
			log.Fatal(err)
		}
		var withTE []*gff3.Feature
		for _, f := range annotated {
			if f.Attributes.Get("Putative_TE") == "Yes" {
				withTE = append(withTE, f)
			}
		}
		teBases, err := bases(withTE)
		if err != nil {
			log.Fatal(err)
		}
		allBases, err := bases(annotated)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Fprintf(os.Stderr, "%d of %d pseudogenes intersect transposable elements, spanning %d of %d pseudogene bases. Annotation written to %s\n",
			len(withTE), len(annotated), teBases, allBases, c.AnnotatedName())

	case "plot":
		annotated, err := gff3.ReadFile(*parsed)
		if err != nil {
			log.Fatal(err)
		}
		tes, err := gff3.ReadFile(*repet)
		if err != nil {
			log.Fatal(err)
		}
		if err = os.MkdirAll(*outdir, 0o755); err != nil {
			log.Fatal(err)
		}
		err = plot(pseudogene.FamilyCounts(annotated),
			"TE families with intersections to pseudogenes", "Count",
			filepath.Join(*outdir, "TE_families_plot"), *width, *height)
		if err != nil {
			log.Fatal(err)
		}
		err = plot(pseudogene.Normalized(annotated, tes),
			"TE families with intersections to pseudogenes (Normalized)", "Count (Intersections / Total)",
			filepath.Join(*outdir, "TE_families_plot_normalized"), *width, *height)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Fprintf(os.Stderr, "Plots written to %s\n", *outdir)
	}
}

// bases returns the number of bases covered by fs.
func bases(fs []*gff3.Feature) (int, error) {
	cov, err := overlap.Coverage(fs)
	if err != nil {
		return 0, err
	}
	var n int
	for _, c := range cov {
		n += c
	}
	return n, nil
}

// plot draws counts as a bar chart saved as base.png and base.svg.
func plot(counts []pseudogene.Count, title, ylabel, base string, width, height float64) error {
	names := make([]string, len(counts))
	values := make([]float64, len(counts))
	for i, c := range counts {
		names[i] = c.Class
		values[i] = c.Value
	}
	p, err := featplot.BarChart(names, values, title, ylabel)
	if err != nil {
		return fmt.Errorf("failed to draw %s: %w", filepath.Base(base), err)
	}
	return featplot.Save(p, width, height, base+".png", base+".svg")
}
