// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package genbank reads and writes GenBank flat files and extracts coding
// sequence features from them.
package genbank

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrBadRecord   = errors.New("genbank: malformed record")
	ErrBadLocation = errors.New("genbank: malformed location")
)

// Record is a single GenBank entry.
type Record struct {
	Name     string
	Length   int
	Molecule string
	Topology string
	Division string
	Date     string

	Definition string
	Accession  string
	Version    string

	// Header holds the raw lines between LOCUS and FEATURES.
	Header []string

	Features []*Feature

	// Seq is the nucleotide sequence from ORIGIN.
	Seq []byte
}

// ID returns the versioned accession of the record if present, falling
// back to the accession and the LOCUS name.
func (r *Record) ID() string {
	switch {
	case r.Version != "":
		return r.Version
	case r.Accession != "":
		return r.Accession
	}
	return r.Name
}

// Qualifier is a feature qualifier. Quoted values are written between
// double quotes.
type Qualifier struct {
	Key    string
	Value  string
	Quoted bool
}

// Feature is a feature table entry.
type Feature struct {
	Key        string
	Location   string
	Qualifiers []Qualifier

	spans []Span
}

// Get returns the value of the first qualifier with the given key.
func (f *Feature) Get(key string) string {
	for _, q := range f.Qualifiers {
		if q.Key == key {
			return q.Value
		}
	}
	return ""
}

// Has returns whether the feature has a qualifier with the given key.
func (f *Feature) Has(key string) bool {
	for _, q := range f.Qualifiers {
		if q.Key == key {
			return true
		}
	}
	return false
}

// Span is a contiguous part of a feature location in 1-based inclusive
// coordinates.
type Span struct {
	Start, End int
	Minus      bool
}

// Spans returns the parsed location of the feature in biological order.
func (f *Feature) Spans() ([]Span, error) {
	if f.spans != nil {
		return f.spans, nil
	}
	s, err := ParseLocation(f.Location)
	if err != nil {
		return nil, err
	}
	f.spans = s
	return s, nil
}

// Start returns the lowest 1-based position of the feature, or zero if
// the location cannot be parsed.
func (f *Feature) Start() int {
	s, err := f.Spans()
	if err != nil || len(s) == 0 {
		return 0
	}
	lo := s[0].Start
	for _, sp := range s[1:] {
		lo = min(lo, sp.Start)
	}
	return lo
}

// End returns the highest 1-based position of the feature, or zero if
// the location cannot be parsed.
func (f *Feature) End() int {
	s, err := f.Spans()
	if err != nil || len(s) == 0 {
		return 0
	}
	hi := s[0].End
	for _, sp := range s[1:] {
		hi = max(hi, sp.End)
	}
	return hi
}

// Minus returns whether the feature is on the reverse strand.
func (f *Feature) Minus() bool {
	s, err := f.Spans()
	return err == nil && len(s) != 0 && s[0].Minus
}

// ParseLocation parses a GenBank location string such as
// "complement(join(1..10,20..>30))". Partial markers are dropped and
// remote references are rejected.
func ParseLocation(loc string) ([]Span, error) {
	loc = strings.Join(strings.Fields(loc), "")
	spans, err := parseLoc(loc, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrBadLocation, loc, err)
	}
	return spans, nil
}

func parseLoc(loc string, minus bool) ([]Span, error) {
	for _, op := range []string{"complement", "join", "order"} {
		if !strings.HasPrefix(loc, op+"(") {
			continue
		}
		if !strings.HasSuffix(loc, ")") {
			return nil, errors.New("unbalanced parentheses")
		}
		inner := loc[len(op)+1 : len(loc)-1]
		if op == "complement" {
			s, err := parseLoc(inner, !minus)
			if err != nil {
				return nil, err
			}
			for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
				s[i], s[j] = s[j], s[i]
			}
			return s, nil
		}
		var spans []Span
		for _, part := range splitTop(inner) {
			s, err := parseLoc(part, minus)
			if err != nil {
				return nil, err
			}
			spans = append(spans, s...)
		}
		return spans, nil
	}
	if strings.Contains(loc, ":") {
		return nil, errors.New("remote reference")
	}
	loc = strings.NewReplacer("<", "", ">", "").Replace(loc)
	var start, end string
	switch {
	case strings.Contains(loc, ".."):
		start, end, _ = strings.Cut(loc, "..")
	case strings.Contains(loc, "^"):
		start, end, _ = strings.Cut(loc, "^")
	case strings.Contains(loc, "."):
		start, end, _ = strings.Cut(loc, ".")
	default:
		start, end = loc, loc
	}
	s, err := strconv.Atoi(start)
	if err != nil {
		return nil, err
	}
	e, err := strconv.Atoi(end)
	if err != nil {
		return nil, err
	}
	if e < s {
		s, e = e, s
	}
	return []Span{{Start: s, End: e, Minus: minus}}, nil
}

// splitTop splits s on commas that are not nested in parentheses.
func splitTop(s string) []string {
	var (
		parts []string
		depth int
		last  int
	)
	for i, c := range s {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	return append(parts, s[last:])
}

// Extract returns the nucleotide sequence of f from seq in biological
// order, reverse complementing minus strand spans.
func (f *Feature) Extract(seq []byte) ([]byte, error) {
	spans, err := f.Spans()
	if err != nil {
		return nil, err
	}
	var out []byte
	for _, s := range spans {
		if s.Start < 1 || s.End > len(seq) {
			return nil, fmt.Errorf("%w: %d..%d outside sequence of length %d", ErrBadLocation, s.Start, s.End, len(seq))
		}
		part := seq[s.Start-1 : s.End]
		if s.Minus {
			out = append(out, ReverseComplement(part)...)
		} else {
			out = append(out, part...)
		}
	}
	return out, nil
}

var complement = [256]byte{}

func init() {
	for i := range complement {
		complement[i] = byte(i)
	}
	for _, p := range []string{"AT", "CG", "RY", "KM", "BV", "DH", "at", "cg", "ry", "km", "bv", "dh"} {
		complement[p[0]] = p[1]
		complement[p[1]] = p[0]
	}
}

// ReverseComplement returns the reverse complement of a nucleotide sequence.
func ReverseComplement(s []byte) []byte {
	rc := make([]byte, len(s))
	for i, c := range s {
		rc[len(s)-1-i] = complement[c]
	}
	return rc
}
