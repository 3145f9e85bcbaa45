// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package genbank

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrUnknownTable = errors.New("genbank: unsupported translation table")

// standard is the NCBI translation table 1 in TCAG order.
const standard = "FFLLSSSSYY**CC*WLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG"

type codonTable struct {
	aa     string
	starts map[string]bool
}

var tables = map[int]codonTable{
	1: {
		aa:     standard,
		starts: map[string]bool{"TTG": true, "CTG": true, "ATG": true},
	},
	4: {
		aa:     "FFLLSSSSYY**CCWWLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG",
		starts: map[string]bool{"TTA": true, "TTG": true, "CTG": true, "ATT": true, "ATC": true, "ATA": true, "ATG": true, "GTG": true},
	},
	11: {
		aa:     standard,
		starts: map[string]bool{"TTG": true, "CTG": true, "ATT": true, "ATC": true, "ATA": true, "ATG": true, "GTG": true},
	},
}

func base(c byte) int {
	switch c {
	case 'T', 't', 'U', 'u':
		return 0
	case 'C', 'c':
		return 1
	case 'A', 'a':
		return 2
	case 'G', 'g':
		return 3
	}
	return -1
}

// Translate translates dna using the given NCBI translation table. If cds
// is true an alternative start codon in the first position is translated
// as methionine. Stop codons are rendered as '*' and a trailing stop is
// removed. Incomplete trailing codons are ignored and ambiguous codons
// translate to 'X'.
func Translate(dna []byte, table int, cds bool) (string, error) {
	t, ok := tables[table]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownTable, table)
	}
	var b strings.Builder
	for i := 0; i+3 <= len(dna); i += 3 {
		codon := dna[i : i+3]
		if i == 0 && cds && t.starts[strings.ToUpper(string(codon))] {
			b.WriteByte('M')
			continue
		}
		x, y, z := base(codon[0]), base(codon[1]), base(codon[2])
		if x < 0 || y < 0 || z < 0 {
			b.WriteByte('X')
			continue
		}
		b.WriteByte(t.aa[x*16+y*4+z])
	}
	return strings.TrimSuffix(b.String(), "*"), nil
}

// CDSProtein returns the protein sequence of a CDS feature of rec. The
// translation qualifier is used if present, otherwise the feature is
// extracted from the record sequence and translated with its
// transl_table (default 1), honouring codon_start.
func CDSProtein(rec *Record, f *Feature) (string, error) {
	if f.Has("translation") {
		return f.Get("translation"), nil
	}
	nt, err := f.Extract(rec.Seq)
	if err != nil {
		return "", err
	}
	table := 1
	if v := f.Get("transl_table"); v != "" {
		table, err = strconv.Atoi(v)
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrUnknownTable, v)
		}
	}
	if v := f.Get("codon_start"); v != "" {
		off, err := strconv.Atoi(v)
		if err != nil || off < 1 || off > 3 {
			return "", fmt.Errorf("genbank: invalid codon_start %q", v)
		}
		if off-1 > len(nt) {
			return "", nil
		}
		nt = nt[off-1:]
	}
	return Translate(nt, table, true)
}
