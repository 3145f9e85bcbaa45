// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pseudogene

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/biogo/annotools/gff3"
	"github.com/biogo/annotools/overlap"
)

// Excluded holds the TE classes left out of family counts.
var Excluded = map[string]bool{
	"CONFUSED": true,
	"FILTERED": true,
	"UNK":      true,
	"SSR":      true,
}

// Dedup keeps the pair with the largest overlap for each pseudogene,
// identified by its attributes, and returns the kept pairs ordered by
// sequence, start and overlap.
func Dedup(pairs []overlap.Pair) []overlap.Pair {
	s := append([]overlap.Pair(nil), pairs...)
	sort.SliceStable(s, func(i, j int) bool { return s[i].Overlap > s[j].Overlap })
	seen := make(map[string]bool)
	var kept []overlap.Pair
	for _, p := range s {
		k := p.A.Attributes.String()
		if seen[k] {
			continue
		}
		seen[k] = true
		kept = append(kept, p)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if a.A.SeqID != b.A.SeqID {
			return a.A.SeqID < b.A.SeqID
		}
		if a.A.Start != b.A.Start {
			return a.A.Start < b.A.Start
		}
		return a.Overlap < b.Overlap
	})
	return kept
}

// TEMap holds the TE classes intersecting each pseudogene.
type TEMap struct {
	IDs     []string
	Classes map[string][]string
}

// TEFamilies returns the TE classes of the B features of pairs keyed by
// the ID of the A pseudogene.
func TEFamilies(pairs []overlap.Pair) *TEMap {
	f := &TEMap{Classes: make(map[string][]string)}
	for _, p := range pairs {
		id := p.A.ID()
		if _, ok := f.Classes[id]; !ok {
			f.IDs = append(f.IDs, id)
		}
		f.Classes[id] = append(f.Classes[id], p.B.Type)
	}
	return f
}

// Write writes the pseudogene TE classes as a two column table.
func (f *TEMap) Write(w io.Writer) error {
	fmt.Fprintln(w, "Pseudogene ID\tTE family")
	for _, id := range f.IDs {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", id, strings.Join(f.Classes[id], ",")); err != nil {
			return err
		}
	}
	return nil
}

// Annotate returns copies of the pseudogene features ordered by sequence,
// start and attributes, marked with whether they intersect a TE and the TE
// families they intersect.
func Annotate(shiu []*gff3.Feature, fams *TEMap) []*gff3.Feature {
	out := make([]*gff3.Feature, len(shiu))
	for i, f := range shiu {
		c := *f
		c.Attributes = append(gff3.Attributes(nil), f.Attributes...)
		if cls, ok := fams.Classes[f.ID()]; ok {
			c.Attributes = append(c.Attributes,
				gff3.Attribute{Key: "Putative_TE", Value: "Yes"},
				gff3.Attribute{Key: "TE_family", Value: strings.Join(cls, ",")},
			)
		} else {
			c.Attributes = append(c.Attributes, gff3.Attribute{Key: "Putative_TE", Value: "No"})
		}
		out[i] = &c
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.SeqID != b.SeqID {
			return a.SeqID < b.SeqID
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.Attributes.String() < b.Attributes.String()
	})
	return out
}

// Count is a TE class frequency.
type Count struct {
	Class string
	Value float64
}

func intersected(annotated []*gff3.Feature) map[string]float64 {
	n := make(map[string]float64)
	for _, f := range annotated {
		if f.Attributes.Get("Putative_TE") != "Yes" {
			continue
		}
		n[f.Attributes.Get("TE_family")]++
	}
	return n
}

func sorted(m map[string]float64) []Count {
	c := make([]Count, 0, len(m))
	for k, v := range m {
		if Excluded[k] {
			continue
		}
		c = append(c, Count{Class: k, Value: v})
	}
	sort.Slice(c, func(i, j int) bool { return c[i].Class < c[j].Class })
	return c
}

// FamilyCounts returns the number of pseudogenes intersecting each TE
// family in an annotated GFF, ordered by family.
func FamilyCounts(annotated []*gff3.Feature) []Count {
	return sorted(intersected(annotated))
}

// Normalized returns the number of pseudogenes intersecting each TE family
// divided by the number of TEs of that family in the REPET annotation.
// Families absent from the REPET annotation are omitted.
func Normalized(annotated, repet []*gff3.Feature) []Count {
	total := make(map[string]float64)
	for _, f := range repet {
		total[f.Type]++
	}
	norm := make(map[string]float64)
	for k, v := range intersected(annotated) {
		if t, ok := total[k]; ok {
			norm[k] = v / t
		}
	}
	return sorted(norm)
}

// TEComparison finds Shiu pseudogenes overlapping transposable elements.
type TEComparison struct {
	// Shiu is the Shiu pipeline pseudogene GFF.
	Shiu string
	// Repet is the REPET transposable element GFF.
	Repet string
	// Outdir receives the results. It is removed
	// before the comparison starts.
	Outdir string

	// Fraction is the minimum overlap as a fraction of the pseudogene.
	Fraction float64

	// Intersect finds overlaps. Defaults to bedtools.
	Intersect Intersector
	Stderr    io.Writer
}

// AnnotatedName returns the name of the annotated pseudogene GFF written
// by Run.
func (c *TEComparison) AnnotatedName() string {
	base := strings.TrimSuffix(filepath.Base(c.Shiu), filepath.Ext(c.Shiu))
	return filepath.Join(c.Outdir, base+"_TEs.gff")
}

// Run performs the comparison and returns the annotated pseudogenes.
func (c *TEComparison) Run() ([]*gff3.Feature, error) {
	isect := c.Intersect
	if isect == nil {
		isect = Bedtools("", c.Fraction, 0)
	}
	stderr := c.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	if err := os.RemoveAll(c.Outdir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(c.Outdir, 0o755); err != nil {
		return nil, err
	}
	logf, err := os.Create(filepath.Join(c.Outdir, "gff_comparison.log"))
	if err != nil {
		return nil, err
	}
	defer logf.Close()

	fmt.Fprintf(logf, "\n# STEP 1\n\nFind intersections between REPET and pseudogene annotations.\n"+
		"    + Minimum overlap: %v of the pseudogene length.\n"+
		"    + Intersections at: pseudogenes_intersection.txt\n", c.Fraction)
	pairs, err := isect(c.Shiu, c.Repet, stderr)
	if err != nil {
		return nil, err
	}
	if err = writePairs(filepath.Join(c.Outdir, "pseudogenes_intersection.txt"), pairs); err != nil {
		return nil, err
	}

	fmt.Fprint(logf, "\n# STEP 2\n\nKeep the largest overlap for each pseudogene.\n"+
		"    + Filtered intersections at: pseudogenes_intersection.filtered.txt\n")
	pairs = Dedup(pairs)
	if err = writePairs(filepath.Join(c.Outdir, "pseudogenes_intersection.filtered.txt"), pairs); err != nil {
		return nil, err
	}

	fmt.Fprint(logf, "\n# STEP 3\n\nRecord the TE family of each intersection.\n"+
		"    + Families at: transposable_pseudogenes_family.txt\n")
	fams := TEFamilies(pairs)
	ff, err := os.Create(filepath.Join(c.Outdir, "transposable_pseudogenes_family.txt"))
	if err != nil {
		return nil, err
	}
	if err = fams.Write(ff); err != nil {
		ff.Close()
		return nil, err
	}
	if err = ff.Close(); err != nil {
		return nil, err
	}

	name := c.AnnotatedName()
	fmt.Fprintf(logf, "\n# STEP 4\n\nAdd TE families to the pseudogene attributes.\n"+
		"    + Annotated GFF at: %s\n", filepath.Base(name))
	shiu, err := gff3.ReadFile(c.Shiu)
	if err != nil {
		return nil, err
	}
	annotated := Annotate(shiu, fams)
	return annotated, gff3.WriteFile(name, annotated, true)
}
