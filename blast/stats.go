// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blast

import (
	"fmt"
	"io"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarises a set of hits.
type Stats struct {
	Hits     int
	Queries  int
	Subjects int

	MeanIdentity   float64
	StdDevIdentity float64
	MedianCoverage float64
	AlignedBases   float64
}

// Describe returns summary statistics for hits.
func Describe(hits []*Hit) Stats {
	s := Stats{Hits: len(hits)}
	if len(hits) == 0 {
		return s
	}
	var (
		ident   = make([]float64, len(hits))
		cov     = make([]float64, len(hits))
		aligned = make([]float64, len(hits))

		queries  = make(map[string]bool)
		subjects = make(map[string]bool)
	)
	for i, h := range hits {
		ident[i] = h.PIdent
		cov[i] = h.QueryCoverage()
		aligned[i] = float64(h.Length - h.Gaps)
		queries[h.QSeqID] = true
		subjects[h.SSeqID] = true
	}
	s.Queries = len(queries)
	s.Subjects = len(subjects)
	s.MeanIdentity, s.StdDevIdentity = stat.MeanStdDev(ident, nil)
	if len(hits) == 1 {
		s.StdDevIdentity = 0
	}
	sort.Float64s(cov)
	s.MedianCoverage = stat.Quantile(0.5, stat.Empirical, cov, nil)
	s.AlignedBases = floats.Sum(aligned)
	return s
}

// Write writes a short report of s to w.
func (s Stats) Write(w io.Writer) error {
	_, err := fmt.Fprintf(w, "hits: %d\tqueries: %d\tsubjects: %d\nidentity: %.2f±%.2f\tmedian query coverage: %.2f\taligned bases: %.0f\n",
		s.Hits, s.Queries, s.Subjects, s.MeanIdentity, s.StdDevIdentity, s.MedianCoverage, s.AlignedBases)
	return err
}
