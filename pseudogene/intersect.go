// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pseudogene compares pseudogene predictions made by the Shiu
// pipeline with TGFam-Finder gene family annotations and with transposable
// element annotations.
package pseudogene

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/biogo/annotools/gff3"
	"github.com/biogo/annotools/overlap"
)

// Intersector returns the overlapping pairs of features from the GFF3
// files a and b.
type Intersector func(a, b string, stderr io.Writer) ([]overlap.Pair, error)

// Bedtools returns an Intersector that runs bedtools intersect -wo with
// the given minimum overlap fractions of a (-f) and b (-F). A zero
// fraction is not passed to bedtools.
func Bedtools(cmd string, fracA, fracB float64) Intersector {
	return func(a, b string, stderr io.Writer) ([]overlap.Pair, error) {
		return overlap.Intersect{Cmd: cmd, A: a, B: b, FracA: fracA, FracB: fracB}.Run(stderr)
	}
}

// Native returns an Intersector that intersects the files in memory.
func Native(fracA, fracB float64) Intersector {
	return func(a, b string, _ io.Writer) ([]overlap.Pair, error) {
		fa, err := gff3.ReadFile(a)
		if err != nil {
			return nil, err
		}
		fb, err := gff3.ReadFile(b)
		if err != nil {
			return nil, err
		}
		idx, err := overlap.NewIndex(fb)
		if err != nil {
			return nil, err
		}
		return idx.Intersect(fa, fracA, fracB), nil
	}
}

// writePairs writes pairs to the named file in bedtools -wo format.
func writePairs(name string, pairs []overlap.Pair) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	for _, p := range pairs {
		if _, err = fmt.Fprintln(f, p); err != nil {
			f.Close()
			return err
		}
	}
	return f.Close()
}

// featureID returns the ID of f, or its Parent when it has no ID.
func featureID(f *gff3.Feature) string {
	if id := f.ID(); id != "" {
		return id
	}
	return f.Attributes.Get("Parent")
}

// filterFeatures returns the features of fs whose ID is in ids, or not
// in ids when invert is true.
func filterFeatures(fs []*gff3.Feature, ids map[string]bool, invert bool) []*gff3.Feature {
	var out []*gff3.Feature
	for _, f := range fs {
		if ids[featureID(f)] != invert {
			out = append(out, f)
		}
	}
	return out
}

// Family is a TGFam-Finder gene family annotation.
type Family struct {
	Name string
	Path string
}

// Families returns the .gff and .gff3 files in dir in name order. The
// family name is the file name up to its first dot.
func Families(dir string) ([]Family, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var fams []Family
	for _, e := range ents {
		n := e.Name()
		if e.IsDir() || !(strings.HasSuffix(n, ".gff") || strings.HasSuffix(n, ".gff3")) {
			continue
		}
		name, _, _ := strings.Cut(n, ".")
		fams = append(fams, Family{Name: name, Path: filepath.Join(dir, n)})
	}
	if len(fams) == 0 {
		return nil, fmt.Errorf("pseudogene: no GFF files in %q", dir)
	}
	return fams, nil
}

// sortFeatures sorts fs by natural sequence name order and then start.
func sortFeatures(fs []*gff3.Feature) {
	sort.SliceStable(fs, func(i, j int) bool {
		if fs[i].SeqID != fs[j].SeqID {
			return naturalLess(fs[i].SeqID, fs[j].SeqID)
		}
		return fs[i].Start < fs[j].Start
	})
}

// naturalLess compares a and b treating runs of digits as numbers, so
// chr2 sorts before chr10.
func naturalLess(a, b string) bool {
	for a != "" && b != "" {
		da, db := digits(a), digits(b)
		if da > 0 && db > 0 {
			na, nb := strings.TrimLeft(a[:da], "0"), strings.TrimLeft(b[:db], "0")
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			if na != nb {
				return na < nb
			}
			a, b = a[da:], b[db:]
			continue
		}
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func digits(s string) int {
	for i, r := range s {
		if !unicode.IsDigit(r) {
			return i
		}
	}
	return len(s)
}
