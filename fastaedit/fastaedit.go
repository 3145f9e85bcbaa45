// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fastaedit replaces regions of FASTA sequences with sequences
// given in a BED4 file.
//
// All edit coordinates refer to the unedited input sequence, whatever
// the order of the BED lines. Edits are not applied one after another
// on the already edited sequence, so a replacement that changes the
// length of a contig does not shift the coordinates of later lines.
// Overlapping edits to the same contig are rejected with ErrOverlap.
package fastaedit

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/featio/bed"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

var (
	ErrNoContig = errors.New("fastaedit: no such contig")
	ErrRange    = errors.New("fastaedit: edit out of range")
	ErrOverlap  = errors.New("fastaedit: overlapping edits")
)

// Edit replaces the 0-based half-open interval [Start, End) of Contig
// with Sub.
type Edit struct {
	Contig     string
	Start, End int
	Sub        string
}

// ReadEdits reads BED4 lines of contig, start, end and replacement.
func ReadEdits(r io.Reader) ([]Edit, error) {
	br, err := bed.NewReader(r, 4)
	if err != nil {
		return nil, err
	}
	var edits []Edit
	for {
		f, err := br.Read()
		if err != nil {
			if err == io.EOF {
				return edits, nil
			}
			return nil, fmt.Errorf("fastaedit: edit %d: %w", len(edits)+1, err)
		}
		b := f.(*bed.Bed4)
		edits = append(edits, Edit{Contig: b.Chrom, Start: b.ChromStart, End: b.ChromEnd, Sub: b.FeatName})
	}
}

// ReadFasta returns the sequences read from r in file order.
func ReadFasta(r io.Reader) ([]*linear.Seq, error) {
	var seqs []*linear.Seq
	sc := seqio.NewScanner(fasta.NewReader(r, linear.NewSeq("", nil, alphabet.DNAredundant)))
	for sc.Next() {
		seqs = append(seqs, sc.Seq().(*linear.Seq))
	}
	return seqs, sc.Error()
}

// Apply applies edits to seqs in place. Coordinates refer to the
// unedited sequences, so edits to a contig are applied from the right
// end. Edits to the same contig must not overlap.
func Apply(seqs []*linear.Seq, edits []Edit) error {
	byName := make(map[string]*linear.Seq, len(seqs))
	for _, s := range seqs {
		byName[s.Name()] = s
	}
	byContig := make(map[string][]Edit)
	var order []string
	for _, e := range edits {
		s, ok := byName[e.Contig]
		if !ok {
			return fmt.Errorf("%w: %q", ErrNoContig, e.Contig)
		}
		if e.Start < 0 || e.End < e.Start || e.End > s.Len() {
			return fmt.Errorf("%w: %s:%d-%d of %d", ErrRange, e.Contig, e.Start, e.End, s.Len())
		}
		if _, ok := byContig[e.Contig]; !ok {
			order = append(order, e.Contig)
		}
		byContig[e.Contig] = append(byContig[e.Contig], e)
	}

	for _, name := range order {
		es := byContig[name]
		sort.SliceStable(es, func(i, j int) bool { return es[i].Start > es[j].Start })
		for i := 1; i < len(es); i++ {
			if es[i].End > es[i-1].Start {
				return fmt.Errorf("%w: %s:%d-%d and %d-%d", ErrOverlap, name, es[i].Start, es[i].End, es[i-1].Start, es[i-1].End)
			}
		}
		s := byName[name]
		for _, e := range es {
			seq := make(alphabet.Letters, 0, len(s.Seq)-(e.End-e.Start)+len(e.Sub))
			seq = append(seq, s.Seq[:e.Start]...)
			seq = append(seq, alphabet.BytesToLetters([]byte(e.Sub))...)
			s.Seq = append(seq, s.Seq[e.End:]...)
		}
	}
	return nil
}

// WriteFasta writes seqs to w as unwrapped FASTA headed by their IDs.
func WriteFasta(w io.Writer, seqs []*linear.Seq) error {
	for _, s := range seqs {
		id := linear.NewSeq(s.Name(), s.Seq, s.Alphabet())
		if _, err := fasta.NewWriter(w, max(1, id.Len())).Write(id); err != nil {
			return err
		}
	}
	return nil
}
