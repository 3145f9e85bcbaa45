// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// plotfeatures draws the features of one or more GFF3 files that lie within
// a window of a contig as a gene map.
//
// With -fofn the features of several files are drawn together. The file of
// file names is comma separated with the columns: GFF file, legend label and
// hex colour.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"io"
	"log"
	"os"

	"github.com/biogo/annotools/featplot"
	"github.com/biogo/annotools/gff3"
	"github.com/biogo/annotools/tabular"
)

var (
	inf     = flag.String("input", "", "single GFF file to plot.")
	fofn    = flag.String("fofn", "", "CSV file of gff,label,colour lines naming several GFF files to plot.")
	contig  = flag.String("contig", "", "contig to plot (required).")
	start   = flag.Int("start", -1, "0-based start of the plotted window (required).")
	end     = flag.Int("end", -1, "end of the plotted window (required).")
	feature = flag.String("feature", "gene", "GFF feature type to plot.")
	title   = flag.String("title", featplot.DefaultTitle, "plot title.")
	label   = flag.String("label", featplot.DefaultLabel, "legend label for -input.")
	colour  = flag.String("color", featplot.DefaultColor, "hex colour of -input features.")
	width   = flag.Float64("width", featplot.DefaultWidth, "plot width in inches.")
	height  = flag.Float64("height", featplot.DefaultHeight, "plot height in inches.")
	outf    = flag.String("out", "./out.png", "output image file; the format is taken from the extension.")
	help    = flag.Bool("help", false, "help prints this message.")
)

func main() {
	flag.Parse()
	if *help {
		flag.Usage()
		os.Exit(0)
	}
	if (*inf == "") == (*fofn == "") || *contig == "" || *start < 0 || *end <= *start {
		fmt.Fprintln(os.Stderr, "Missing mandatory arguments: one of -input or -fofn, and -contig, -start and -end.")
		flag.Usage()
		os.Exit(1)
	}

	var (
		tracks []featplot.Track
		err    error
	)
	if *inf != "" {
		fmt.Fprintln(os.Stderr, "Plotting features from a single GFF input.")
		var c color.RGBA
		c, err = featplot.ParseColor(*colour)
		if err != nil {
			log.Fatal(err)
		}
		tracks, err = loadTracks([]source{{file: *inf, label: *label, color: c}})
	} else {
		fmt.Fprintln(os.Stderr, "Plotting features from multiple GFF inputs.")
		var f *os.File
		f, err = os.Open(*fofn)
		if err != nil {
			log.Fatalf("failed to open %q: %v", *fofn, err)
		}
		var srcs []source
		srcs, err = readSources(f)
		f.Close()
		if err != nil {
			log.Fatalf("failed to read %q: %v", *fofn, err)
		}
		tracks, err = loadTracks(srcs)
	}
	if err != nil {
		log.Fatal(err)
	}

	p, err := featplot.GeneMap(tracks, *title, *start, *end)
	if err != nil {
		log.Fatalf("failed to draw gene map: %v", err)
	}
	if err = featplot.Save(p, *width, *height, *outf); err != nil {
		log.Fatalf("failed to save %q: %v", *outf, err)
	}
	fmt.Fprintf(os.Stderr, "Done, check out the results in %s\n", *outf)
}

type source struct {
	file  string
	label string
	color color.RGBA
}

// readSources reads a file of file names.
func readSources(r io.Reader) ([]source, error) {
	t, err := tabular.ReadDelimited(r, ",", false)
	if err != nil {
		return nil, err
	}
	srcs := make([]source, 0, len(t.Rows))
	for i, row := range t.Rows {
		if len(row) < 3 {
			return nil, fmt.Errorf("line %d: want gff,label,colour: got %d fields", i+1, len(row))
		}
		c, err := featplot.ParseColor(row[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		srcs = append(srcs, source{file: row[0], label: row[1], color: c})
	}
	return srcs, nil
}

func loadTracks(srcs []source) ([]featplot.Track, error) {
	tracks := make([]featplot.Track, len(srcs))
	for i, s := range srcs {
		fs, err := gff3.ReadFile(s.file)
		if err != nil {
			return nil, err
		}
		sel := featplot.Select(fs, *contig, *feature, *start, *end)
		fmt.Fprintf(os.Stderr, "%s: %d %s features in %s:%d-%d\n", s.file, len(sel), *feature, *contig, *start, *end)
		tracks[i] = featplot.Track{Label: s.label, Color: s.color, Features: sel}
	}
	return tracks, nil
}
