// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package genbank

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// SplitFile writes each record to its own file named <ID>.gbk in outdir
// and returns the names of the files written.
func SplitFile(recs []*Record, outdir string) ([]string, error) {
	if err := os.MkdirAll(outdir, 0o755); err != nil {
		return nil, err
	}
	var names []string
	for _, rec := range recs {
		name := filepath.Join(outdir, rec.ID()+".gbk")
		if err := WriteFile(name, []*Record{rec}); err != nil {
			return names, err
		}
		names = append(names, name)
	}
	return names, nil
}

// SeqType selects nucleotide or protein output for CDS features.
type SeqType int

const (
	Protein SeqType = iota
	Nucleotide
)

// CDSFasta writes CDS features of recs as FASTA records named by
// locus_tag with the product as description. If allowed is not nil only
// features whose locus_tag is in allowed are written. Sequences are
// written unwrapped.
func CDSFasta(w io.Writer, recs []*Record, typ SeqType, allowed map[string]bool) (int, error) {
	var n int
	for _, rec := range recs {
		for _, f := range rec.Features {
			if f.Key != "CDS" {
				continue
			}
			tag := f.Get("locus_tag")
			if allowed != nil && !allowed[tag] {
				continue
			}
			var (
				s     *linear.Seq
				err   error
				alpha alphabet.Alphabet
				data  []byte
			)
			switch typ {
			case Protein:
				var p string
				p, err = CDSProtein(rec, f)
				data, alpha = []byte(p), alphabet.Protein
			case Nucleotide:
				data, err = f.Extract(rec.Seq)
				alpha = alphabet.DNAredundant
			}
			if err != nil {
				return n, fmt.Errorf("genbank: %s %s: %w", rec.ID(), tag, err)
			}
			s = linear.NewSeq(tag, alphabet.BytesToLetters(data), alpha)
			s.Desc = f.Get("product")
			if err = writeUnwrapped(w, s); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}

// RecordsFasta writes the nucleotide sequence of each record named by its
// ID.
func RecordsFasta(w io.Writer, recs []*Record) error {
	for _, rec := range recs {
		s := linear.NewSeq(rec.ID(), alphabet.BytesToLetters(append([]byte(nil), rec.Seq...)), alphabet.DNAredundant)
		if err := writeUnwrapped(w, s); err != nil {
			return err
		}
	}
	return nil
}

func writeUnwrapped(w io.Writer, s *linear.Seq) error {
	_, err := fasta.NewWriter(w, max(1, s.Len())).Write(s)
	return err
}

// Region is a closed 1-based interval on a named sequence.
type Region struct {
	Name       string
	Start, End int
}

// SubsetByRegions returns copies of recs holding only non-source features
// whose start lies within one of the regions for the record. Records left
// with no features are omitted.
func SubsetByRegions(recs []*Record, regions []Region) []*Record {
	byName := make(map[string][]Region)
	for _, r := range regions {
		byName[r.Name] = append(byName[r.Name], r)
	}
	return subset(recs, func(rec *Record, f *Feature) bool {
		if f.Key == "source" {
			return false
		}
		rs := byName[rec.ID()]
		if rs == nil {
			rs = byName[rec.Name]
		}
		start := f.Start()
		for _, r := range rs {
			if r.Start <= start && start <= r.End {
				return true
			}
		}
		return false
	})
}

// SubsetByLocusTags returns copies of recs holding only the CDS features
// whose locus_tag is in tags. Records left with no features are omitted.
func SubsetByLocusTags(recs []*Record, tags map[string]bool) []*Record {
	return subset(recs, func(_ *Record, f *Feature) bool {
		return f.Key == "CDS" && tags[f.Get("locus_tag")]
	})
}

func subset(recs []*Record, keep func(*Record, *Feature) bool) []*Record {
	var out []*Record
	for _, rec := range recs {
		var fs []*Feature
		for _, f := range rec.Features {
			if keep(rec, f) {
				fs = append(fs, f)
			}
		}
		if len(fs) == 0 {
			continue
		}
		c := *rec
		c.Features = fs
		out = append(out, &c)
	}
	return out
}
