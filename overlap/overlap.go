// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package overlap finds overlapping pairs of GFF3 features, either by
// running bedtools intersect or natively using an interval tree.
package overlap

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	"github.com/biogo/external"
	"github.com/biogo/store/interval"
	"github.com/biogo/store/step"

	"github.com/biogo/annotools/gff3"
)

var (
	ErrMissingRequired = errors.New("overlap: missing required argument")
	ErrBadPair         = errors.New("overlap: malformed intersect line")
	ErrBadInterval     = errors.New("overlap: invalid feature interval")
)

// Pair is an overlapping pair of features as reported by
// bedtools intersect -wo.
type Pair struct {
	A, B    *gff3.Feature
	Overlap int
}

// Fields returns the columns of the pair in bedtools -wo order.
func (p Pair) Fields() []string {
	f := append(p.A.Fields(), p.B.Fields()...)
	return append(f, strconv.Itoa(p.Overlap))
}

// String returns the pair as a tab-delimited line.
func (p Pair) String() string { return strings.Join(p.Fields(), "\t") }

// ReadPairs reads GFF×GFF bedtools intersect -wo output.
func ReadPairs(r io.Reader) ([]Pair, error) {
	var pairs []Pair
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 16<<20)
	for line := 1; sc.Scan(); line++ {
		text := sc.Text()
		if text == "" {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) != 19 {
			return pairs, fmt.Errorf("%w: line %d: %d columns", ErrBadPair, line, len(fields))
		}
		a, err := gff3.ParseFields(fields[:9])
		if err != nil {
			return pairs, fmt.Errorf("overlap: line %d: %w", line, err)
		}
		b, err := gff3.ParseFields(fields[9:18])
		if err != nil {
			return pairs, fmt.Errorf("overlap: line %d: %w", line, err)
		}
		n, err := strconv.Atoi(fields[18])
		if err != nil {
			return pairs, fmt.Errorf("%w: line %d: %v", ErrBadPair, line, err)
		}
		pairs = append(pairs, Pair{A: a, B: b, Overlap: n})
	}
	return pairs, sc.Err()
}

// Intersect is a bedtools intersect -wo command builder.
//
//  bedtools intersect -wo -a <A> -b <B> [-f <FA>] [-F <FB>]
type Intersect struct {
	// Cmd is the bedtools executable. Defaults to "bedtools".
	Cmd string `buildarg:"{{if .}}{{.}}{{else}}bedtools{{end}}"`

	// A and B are the query and database feature files.
	A string `buildarg:"{{if .}}-a{{split}}{{.}}{{end}}"`
	B string `buildarg:"{{if .}}-b{{split}}{{.}}{{end}}"`

	// FracA is the minimum overlap as a fraction of A (-f).
	FracA float64 `buildarg:"{{if .}}-f{{split}}{{.}}{{end}}"`
	// FracB is the minimum overlap as a fraction of B (-F).
	FracB float64 `buildarg:"{{if .}}-F{{split}}{{.}}{{end}}"`
}

// BuildCommand returns an exec.Cmd built from the parameters in i.
func (i Intersect) BuildCommand() (*exec.Cmd, error) {
	if i.A == "" || i.B == "" {
		return nil, ErrMissingRequired
	}
	cl := external.Must(external.Build(i))
	args := append([]string{"intersect", "-wo"}, cl[1:]...)
	return exec.Command(cl[0], args...), nil
}

// Run runs the intersection and parses its output.
func (i Intersect) Run(stderr io.Writer) ([]Pair, error) {
	cmd, err := i.BuildCommand()
	if err != nil {
		return nil, err
	}
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	cmd.Stderr = stderr
	if err = cmd.Start(); err != nil {
		return nil, err
	}
	pairs, perr := ReadPairs(out)
	if perr != nil {
		io.Copy(io.Discard, out)
	}
	err = cmd.Wait()
	if perr != nil {
		return nil, perr
	}
	return pairs, err
}

// record is a feature held in an interval tree.
type record struct {
	id    uintptr
	start int // 0-based, half-open.
	end   int
	feat  *gff3.Feature
}

func (r *record) Overlap(b interval.IntRange) bool {
	return r.end > b.Start && r.start < b.End
}
func (r *record) ID() uintptr { return r.id }
func (r *record) Range() interval.IntRange {
	return interval.IntRange{Start: r.start, End: r.end}
}

// query is an interval query in 0-based half-open coordinates.
type query struct {
	start, end int
}

func (q query) Overlap(b interval.IntRange) bool {
	return q.end > b.Start && q.start < b.End
}

// Index is an interval index of features keyed by sequence ID.
type Index struct {
	trees map[string]*interval.IntTree
	n     uintptr
}

// NewIndex returns an Index holding fs.
func NewIndex(fs []*gff3.Feature) (*Index, error) {
	idx := &Index{trees: make(map[string]*interval.IntTree)}
	for _, f := range fs {
		t, ok := idx.trees[f.SeqID]
		if !ok {
			t = &interval.IntTree{}
			idx.trees[f.SeqID] = t
		}
		err := t.Insert(&record{id: idx.n, start: f.Start - 1, end: f.End, feat: f}, true)
		if err != nil {
			return nil, fmt.Errorf("overlap: insertion error: %v with feature: %v", err, f)
		}
		idx.n++
	}
	for _, t := range idx.trees {
		t.AdjustRanges()
	}
	return idx, nil
}

// Len returns the number of features in the index.
func (idx *Index) Len() int { return int(idx.n) }

// Intersect returns the pairs of features in a and the index that overlap
// by at least fracA of the a feature's length and fracB of the indexed
// feature's length. Pairs are ordered by a, then by indexed feature
// start and insertion order.
func (idx *Index) Intersect(a []*gff3.Feature, fracA, fracB float64) []Pair {
	var (
		pairs []Pair
		hits  []*record
	)
	for _, f := range a {
		t, ok := idx.trees[f.SeqID]
		if !ok {
			continue
		}
		hits = hits[:0]
		t.DoMatching(func(iv interval.IntInterface) (done bool) {
			hits = append(hits, iv.(*record))
			return
		}, query{start: f.Start - 1, end: f.End})
		sort.Slice(hits, func(i, j int) bool {
			if hits[i].start != hits[j].start {
				return hits[i].start < hits[j].start
			}
			return hits[i].id < hits[j].id
		})
		for _, h := range hits {
			n := min(h.end, f.End) - max(h.start, f.Start-1)
			if float64(n) < fracA*float64(f.Len()) || float64(n) < fracB*float64(h.end-h.start) {
				continue
			}
			pairs = append(pairs, Pair{A: f, B: h.feat, Overlap: n})
		}
	}
	return pairs
}

// stepBool is a bool type satisfying the step.Equaler interface.
type stepBool bool

// Equal returns whether b equals e. Equal assumes the underlying type of e is a stepBool.
func (b stepBool) Equal(e step.Equaler) bool {
	return b == e.(stepBool)
}

// Coverage returns the number of bases covered by fs for each sequence ID.
// A feature ending before it starts is reported as ErrBadInterval.
func Coverage(fs []*gff3.Feature) (map[string]int, error) {
	vecs := make(map[string]*step.Vector)
	for _, f := range fs {
		if f.Start < 1 || f.End < f.Start {
			return nil, fmt.Errorf("%w: %s:%d-%d", ErrBadInterval, f.SeqID, f.Start, f.End)
		}
		vec, ok := vecs[f.SeqID]
		if !ok {
			var err error
			vec, err = step.New(f.Start-1, f.End, stepBool(false))
			if err != nil {
				return nil, fmt.Errorf("overlap: %s: %w", f.SeqID, err)
			}
			vec.Relaxed = true
			vecs[f.SeqID] = vec
		}
		vec.SetRange(f.Start-1, f.End, stepBool(true))
	}
	cov := make(map[string]int, len(vecs))
	for id, vec := range vecs {
		var n int
		vec.Do(func(start, end int, e step.Equaler) {
			if e.(stepBool) {
				n += end - start
			}
		})
		cov[id] = n
	}
	return cov, nil
}
