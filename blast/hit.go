// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package blast runs BLAST+ and DIAMOND searches and filters and summarises
// their tabular (outfmt 6) output.
package blast

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	ErrBadHit      = errors.New("blast: malformed hit line")
	ErrBadColumn   = errors.New("blast: unknown column")
	ErrBadTitle    = errors.New("blast: malformed subject title")
	ErrUnknownTask = errors.New("blast: unknown task")
)

var (
	// Columns is the outfmt 6 column set used for pairwise searches.
	Columns = []string{
		"qseqid", "qstart", "qend", "qlen",
		"sseqid", "sstart", "send", "slen",
		"evalue", "length", "pident", "gaps", "gapopen", "bitscore",
	}

	// TitleColumns is the outfmt 6 column set used for searches against
	// databases whose subject titles carry gene annotation.
	TitleColumns = []string{
		"qseqid", "qstart", "qend", "qlen",
		"sseqid", "sstart", "send", "slen",
		"evalue", "length", "pident", "gaps", "gapopen", "stitle",
	}
)

// Outfmt returns the -outfmt argument for the given columns.
func Outfmt(cols []string) string {
	return "6 " + strings.Join(cols, " ")
}

// Hit is a single tabular alignment record.
type Hit struct {
	QSeqID  string
	QStart  int
	QEnd    int
	QLen    int
	SSeqID  string
	SStart  int
	SEnd    int
	SLen    int
	EValue  float64
	Length  int
	PIdent  float64
	Gaps    int
	GapOpen int
	Bits    float64
	STitle  string

	// raw holds the fields as read.
	raw []string
}

// QueryCoverage returns the percentage of the query covered by the
// ungapped alignment.
func (h *Hit) QueryCoverage() float64 {
	return 100 * float64(h.Length-h.Gaps) / float64(h.QLen)
}

// SubjectCoverage returns the percentage of the subject covered by the
// ungapped alignment.
func (h *Hit) SubjectCoverage() float64 {
	return 100 * float64(h.Length-h.Gaps) / float64(h.SLen)
}

// QueryStrand returns '-' if the query alignment is reversed.
func (h *Hit) QueryStrand() byte { return strand(h.QStart, h.QEnd) }

// SubjectStrand returns '-' if the subject alignment is reversed.
func (h *Hit) SubjectStrand() byte { return strand(h.SStart, h.SEnd) }

func strand(start, end int) byte {
	if start > end {
		return '-'
	}
	return '+'
}

func (h *Hit) set(col, v string) error {
	var err error
	switch col {
	case "qseqid":
		h.QSeqID = v
	case "qstart":
		h.QStart, err = strconv.Atoi(v)
	case "qend":
		h.QEnd, err = strconv.Atoi(v)
	case "qlen":
		h.QLen, err = strconv.Atoi(v)
	case "sseqid":
		h.SSeqID = v
	case "sstart":
		h.SStart, err = strconv.Atoi(v)
	case "send":
		h.SEnd, err = strconv.Atoi(v)
	case "slen":
		h.SLen, err = strconv.Atoi(v)
	case "evalue":
		h.EValue, err = strconv.ParseFloat(v, 64)
	case "length":
		h.Length, err = strconv.Atoi(v)
	case "pident":
		h.PIdent, err = strconv.ParseFloat(v, 64)
	case "gaps":
		h.Gaps, err = strconv.Atoi(v)
	case "gapopen":
		h.GapOpen, err = strconv.Atoi(v)
	case "bitscore":
		h.Bits, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
	case "stitle":
		h.STitle = v
	default:
		return fmt.Errorf("%w: %q", ErrBadColumn, col)
	}
	if err != nil {
		return fmt.Errorf("%s: %v", col, err)
	}
	return nil
}

// Reader reads tabular hits. Comment lines and header rows starting with
// qseqid are skipped wherever they occur.
type Reader struct {
	cols []string
	sc   *bufio.Scanner
	line int
}

// NewReader returns a Reader for hits with the given columns.
func NewReader(r io.Reader, cols []string) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 16<<20)
	return &Reader{cols: cols, sc: sc}
}

// Read returns the next hit, or io.EOF at the end of the input.
func (r *Reader) Read() (*Hit, error) {
	for r.sc.Scan() {
		r.line++
		text := r.sc.Text()
		if text == "" || text[0] == '#' || strings.HasPrefix(text, "qseqid") {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) != len(r.cols) {
			return nil, fmt.Errorf("%w: line %d: %d columns, want %d", ErrBadHit, r.line, len(fields), len(r.cols))
		}
		h := &Hit{raw: fields}
		for i, col := range r.cols {
			if err := h.set(col, fields[i]); err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrBadHit, r.line, err)
			}
		}
		return h, nil
	}
	if err := r.sc.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// ReadHits reads all hits from r.
func ReadHits(r io.Reader, cols []string) ([]*Hit, error) {
	hr := NewReader(r, cols)
	var hits []*Hit
	for {
		h, err := hr.Read()
		if err != nil {
			if err == io.EOF {
				return hits, nil
			}
			return hits, err
		}
		hits = append(hits, h)
	}
}

// Filter holds the identity and coverage thresholds for accepting a hit.
type Filter struct {
	// MinIdentity is the minimum percent identity.
	MinIdentity float64
	// MinCoverage is the minimum percent coverage of the query.
	MinCoverage float64
	// TwoWay requires MinCoverage of the subject as well as the query.
	TwoWay bool
	// SubjectOnly checks MinCoverage against the subject alone.
	SubjectOnly bool
}

// Pass returns whether h satisfies the filter.
func (f Filter) Pass(h *Hit) bool {
	if h.PIdent < f.MinIdentity {
		return false
	}
	if f.SubjectOnly {
		return h.SubjectCoverage() >= f.MinCoverage
	}
	if h.QueryCoverage() < f.MinCoverage {
		return false
	}
	return !f.TwoWay || h.SubjectCoverage() >= f.MinCoverage
}

// Apply returns the hits passing the filter.
func (f Filter) Apply(hits []*Hit) []*Hit {
	var kept []*Hit
	for _, h := range hits {
		if f.Pass(h) {
			kept = append(kept, h)
		}
	}
	return kept
}

// WriteTable writes hits as a tab-delimited table with a header row.
func WriteTable(w io.Writer, cols []string, hits []*Hit) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, strings.Join(cols, "\t"))
	for _, h := range hits {
		if len(h.raw) == len(cols) {
			fmt.Fprintln(bw, strings.Join(h.raw, "\t"))
			continue
		}
		fmt.Fprintln(bw, strings.Join(h.fields(cols), "\t"))
	}
	return bw.Flush()
}

func (h *Hit) fields(cols []string) []string {
	f := make([]string, len(cols))
	for i, col := range cols {
		switch col {
		case "qseqid":
			f[i] = h.QSeqID
		case "qstart":
			f[i] = strconv.Itoa(h.QStart)
		case "qend":
			f[i] = strconv.Itoa(h.QEnd)
		case "qlen":
			f[i] = strconv.Itoa(h.QLen)
		case "sseqid":
			f[i] = h.SSeqID
		case "sstart":
			f[i] = strconv.Itoa(h.SStart)
		case "send":
			f[i] = strconv.Itoa(h.SEnd)
		case "slen":
			f[i] = strconv.Itoa(h.SLen)
		case "evalue":
			f[i] = strconv.FormatFloat(h.EValue, 'g', 3, 64)
		case "length":
			f[i] = strconv.Itoa(h.Length)
		case "pident":
			f[i] = strconv.FormatFloat(h.PIdent, 'f', 3, 64)
		case "gaps":
			f[i] = strconv.Itoa(h.Gaps)
		case "gapopen":
			f[i] = strconv.Itoa(h.GapOpen)
		case "bitscore":
			f[i] = strconv.FormatFloat(h.Bits, 'f', -1, 64)
		case "stitle":
			f[i] = h.STitle
		}
	}
	return f
}
