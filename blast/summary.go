// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blast

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// SummaryHeader is the header of the pairwise alignment summary.
var SummaryHeader = []string{
	"QUERY", "QUERY_START", "QUERY_END", "QUERY_STRAND", "%QUERY_COV",
	"SUBJECT", "SUBJECT_START", "SUBJECT_END", "SUBJECT_STRAND", "%SUBJECT_COV",
	"%IDENTITY", "GAPS",
}

// GeneSummaryHeader is the header of the gene annotation summary.
var GeneSummaryHeader = []string{
	"SEQUENCE", "START", "END", "STRAND", "GENE", "COVERAGE", "GAPS",
	"%COVERAGE", "%IDENTITY", "DATABASE", "ACCESSION", "PRODUCT", "DESCRIPTION",
}

// round2 formats v rounded to two decimal places, always showing at
// least one decimal digit.
func round2(v float64) string {
	s := strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// Summary returns the pairwise summary row for h.
func Summary(h *Hit) []string {
	return []string{
		h.QSeqID,
		strconv.Itoa(h.QStart),
		strconv.Itoa(h.QEnd),
		string(h.QueryStrand()),
		round2(h.QueryCoverage()),
		h.SSeqID,
		strconv.Itoa(h.SStart),
		strconv.Itoa(h.SEnd),
		string(h.SubjectStrand()),
		round2(h.SubjectCoverage()),
		round2(h.PIdent),
		fmt.Sprintf("%d/%d", h.GapOpen, h.Gaps),
	}
}

// Title is the annotation encoded in a subject title as
// database~~~gene~~~accession~~~product description.
type Title struct {
	Database    string
	Gene        string
	Accession   string
	Product     string
	Description string
}

// ParseTitle parses an annotated subject title.
func ParseTitle(s string) (Title, error) {
	parts := strings.SplitN(s, "~~~", 4)
	if len(parts) != 4 {
		return Title{}, fmt.Errorf("%w: %q", ErrBadTitle, s)
	}
	t := Title{Database: parts[0], Gene: parts[1], Accession: parts[2]}
	t.Product, t.Description, _ = strings.Cut(parts[3], " ")
	return t, nil
}

// GeneSummary returns the gene annotation summary row for h.
func GeneSummary(h *Hit) ([]string, error) {
	t, err := ParseTitle(h.STitle)
	if err != nil {
		return nil, err
	}
	lo, hi := h.SStart, h.SEnd
	if lo > hi {
		lo, hi = hi, lo
	}
	return []string{
		h.QSeqID,
		strconv.Itoa(h.QStart),
		strconv.Itoa(h.QEnd),
		string(h.QueryStrand()),
		t.Gene,
		fmt.Sprintf("%d-%d/%d", lo, hi, h.SLen),
		fmt.Sprintf("%d/%d", h.GapOpen, h.Gaps),
		round2(h.SubjectCoverage()),
		round2(h.PIdent),
		t.Database,
		t.Accession,
		t.Product,
		t.Description,
	}, nil
}

// WriteSummary writes the pairwise summary of hits to w.
func WriteSummary(w io.Writer, hits []*Hit) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, strings.Join(SummaryHeader, "\t"))
	for _, h := range hits {
		fmt.Fprintln(bw, strings.Join(Summary(h), "\t"))
	}
	return bw.Flush()
}

// WriteGeneSummary writes the gene annotation summary of hits to w.
func WriteGeneSummary(w io.Writer, hits []*Hit) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, strings.Join(GeneSummaryHeader, "\t"))
	for _, h := range hits {
		row, err := GeneSummary(h)
		if err != nil {
			return fmt.Errorf("%s: %w", h.QSeqID, err)
		}
		fmt.Fprintln(bw, strings.Join(row, "\t"))
	}
	return bw.Flush()
}
