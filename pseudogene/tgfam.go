// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pseudogene

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/biogo/annotools/gff3"
	"github.com/biogo/annotools/overlap"
	"github.com/biogo/annotools/runner"
	"github.com/biogo/annotools/tabular"
)

var ErrBadNote = errors.New("pseudogene: malformed disabling mutation note")

// DisablingMutations returns the number of disabling mutations recorded
// in a Shiu pipeline Note attribute. The fourth underscore separated
// field of the note holds comma separated mutation counts.
func DisablingMutations(note string) (int, error) {
	f := strings.Split(note, "_")
	if len(f) < 4 {
		return 0, fmt.Errorf("%w: %q", ErrBadNote, note)
	}
	var n int
	for _, v := range strings.Split(f[3], ",") {
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrBadNote, note)
		}
		n += i
	}
	return n, nil
}

// Class is the fate of a TGFam gene overlapping a pseudogene.
type Class int

const (
	// Gene is a TGFam gene overlapping a pseudogene with no disabling
	// mutations. The pseudogene is promoted to a gene.
	Gene Class = iota
	// Relaxed is a TGFam gene overlapping a pseudogene with a tolerated
	// number of disabling mutations. The pseudogene is promoted.
	Relaxed
	// Pseudogene is a TGFam gene relegated to a pseudogene.
	Pseudogene
)

// Classify returns the class of a gene overlapping a pseudogene with the
// given number of disabling mutations when up to relax are tolerated.
func Classify(mutations, relax int) Class {
	switch {
	case mutations == 0:
		return Gene
	case mutations <= relax:
		return Relaxed
	default:
		return Pseudogene
	}
}

// Hit is a TGFam gene overlapping a Shiu pseudogene.
type Hit struct {
	TGFamID   string
	ShiuID    string
	Mutations int
	Class     Class
}

// Hits classifies the gene features of TGFam overlapping Shiu
// pseudogenes. In each pair A is the pseudogene and B the TGFam feature.
func Hits(pairs []overlap.Pair, relax int) ([]Hit, error) {
	var hits []Hit
	for _, p := range pairs {
		if p.B.Type != "gene" {
			continue
		}
		n, err := DisablingMutations(p.A.Attributes.Get("Note"))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.A.ID(), err)
		}
		hits = append(hits, Hit{
			TGFamID:   p.B.ID(),
			ShiuID:    p.A.ID(),
			Mutations: n,
			Class:     Classify(n, relax),
		})
	}
	return hits, nil
}

// genes keeps only gene features of B.
func genes(pairs []overlap.Pair) []overlap.Pair {
	var g []overlap.Pair
	for _, p := range pairs {
		if p.B.Type == "gene" {
			g = append(g, p)
		}
	}
	return g
}

// Summary is the overlap summary of a gene family.
type Summary struct {
	Family      string
	Overlapping int
	Intact      int
	Relaxed     int
	Pseudogenes int
}

// Summarize counts the distinct TGFam genes in hits by class.
func Summarize(family string, hits []Hit) Summary {
	s := Summary{Family: family}
	seen := make(map[string]bool)
	class := make([]map[string]bool, 3)
	for i := range class {
		class[i] = make(map[string]bool)
	}
	for _, h := range hits {
		if !seen[h.TGFamID] {
			seen[h.TGFamID] = true
			s.Overlapping++
		}
		class[h.Class][h.TGFamID] = true
	}
	s.Intact = len(class[Gene])
	s.Relaxed = len(class[Relaxed])
	s.Pseudogenes = len(class[Pseudogene])
	return s
}

// WriteSummary writes the family summaries as a markdown document.
func WriteSummary(w io.Writer, sums []Summary, fraction float64, relax int) error {
	fmt.Fprintf(w, "# Summary of TGFam gene family intersections with Shiu pseudogenes\n\n")
	fmt.Fprintf(w, "Overlaps require a minimum of %v of the TGFam gene length (bedtools intersect -F).\n\n", fraction)
	t := &tabular.Table{Header: []string{
		"Family",
		"Overlapping genes",
		"No disabling mutations",
		fmt.Sprintf("1 to %d disabling mutations", relax),
		fmt.Sprintf("More than %d disabling mutations", relax),
	}}
	for _, s := range sums {
		t.Rows = append(t.Rows, []string{
			s.Family,
			strconv.Itoa(s.Overlapping),
			strconv.Itoa(s.Intact),
			strconv.Itoa(s.Relaxed),
			strconv.Itoa(s.Pseudogenes),
		})
	}
	return tabular.Markdown(w, t, nil)
}

// assignment maps TGFam IDs to pseudogene IDs keeping first insertion
// order and the last assigned value.
type assignment struct {
	keys []string
	m    map[string]string
}

func (a *assignment) set(k, v string) {
	if a.m == nil {
		a.m = make(map[string]string)
	}
	if _, ok := a.m[k]; !ok {
		a.keys = append(a.keys, k)
	}
	a.m[k] = v
}

func (a *assignment) write(name string) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	fmt.Fprintln(f, "TGFam ID\tPseudogene ID")
	for _, k := range a.keys {
		fmt.Fprintf(f, "%s\t%s\n", k, a.m[k])
	}
	return f.Close()
}

// FamilyResult holds the classified TGFam genes of a family.
type FamilyResult struct {
	Family   Family
	Genes    []string
	Relaxed  []string
	Relegate []string

	// Promoted holds the pseudogenes promoted to
	// genes or relaxed genes, in order.
	Promoted []string
}

// Comparison reconciles TGFam gene family annotations with Shiu
// pseudogene predictions.
type Comparison struct {
	// Shiu is the Shiu pipeline pseudogene GFF.
	Shiu string
	// TGFam is the directory of family GFF files.
	TGFam string
	// Outdir receives the results. It is removed
	// before the comparison starts.
	Outdir string

	// Mutations is the number of disabling mutations tolerated for relaxed genes.
	Mutations int
	// Fraction is the minimum overlap as a fraction of the TGFam gene.
	Fraction float64

	// Intersect finds overlaps. Defaults to bedtools.
	Intersect Intersector

	Threads int
	Log     io.Writer
}

func (c *Comparison) intersector() Intersector {
	if c.Intersect == nil {
		return Bedtools("", 0, c.Fraction)
	}
	return c.Intersect
}

// Summary intersects each family with the pseudogenes and returns the
// family summaries in family name order.
func (c *Comparison) Summary(ctx context.Context) ([]Summary, error) {
	fams, err := Families(c.TGFam)
	if err != nil {
		return nil, err
	}
	sums := make([]Summary, len(fams))
	jobs := make([]runner.Job, len(fams))
	isect := c.intersector()
	for i, fam := range fams {
		i, fam := i, fam
		jobs[i] = runner.Job{
			Name: fam.Name,
			Run: func(_ context.Context, stderr io.Writer) error {
				pairs, err := isect(c.Shiu, fam.Path, stderr)
				if err != nil {
					return err
				}
				hits, err := Hits(pairs, c.Mutations)
				if err != nil {
					return err
				}
				sums[i] = Summarize(fam.Name, hits)
				return nil
			},
		}
	}
	r := runner.Runner{Threads: c.Threads, Log: c.Log}
	if err = r.Run(ctx, jobs); err != nil {
		return nil, err
	}
	return sums, nil
}

// Run performs the comparison for each family and writes the final set
// of pseudogenes that were not promoted to genes.
func (c *Comparison) Run(ctx context.Context) ([]FamilyResult, error) {
	fams, err := Families(c.TGFam)
	if err != nil {
		return nil, err
	}
	if err = os.RemoveAll(c.Outdir); err != nil {
		return nil, err
	}
	if err = os.MkdirAll(c.Outdir, 0o755); err != nil {
		return nil, err
	}

	results := make([]FamilyResult, len(fams))
	jobs := make([]runner.Job, len(fams))
	for i, fam := range fams {
		i, fam := i, fam
		jobs[i] = runner.Job{
			Name: fam.Name,
			Run: func(_ context.Context, stderr io.Writer) error {
				res, err := c.family(fam, stderr)
				results[i] = res
				return err
			},
		}
	}
	r := runner.Runner{Threads: c.Threads, Log: c.Log}
	if err = r.Run(ctx, jobs); err != nil {
		return nil, err
	}

	promoted := make(map[string]bool)
	for _, res := range results {
		for _, id := range res.Promoted {
			promoted[id] = true
		}
	}
	shiu, err := gff3.ReadFile(c.Shiu)
	if err != nil {
		return nil, err
	}
	final := FinalPseudogenes(shiu, promoted)
	dir := filepath.Join(c.Outdir, "00_final_Pseudogenes")
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return results, gff3.WriteFile(filepath.Join(dir, filepath.Base(c.Shiu)), final, false)
}

// FinalPseudogenes returns the pseudogene features not promoted to genes
// sorted by sequence and start.
func FinalPseudogenes(shiu []*gff3.Feature, promoted map[string]bool) []*gff3.Feature {
	final := filterFeatures(shiu, promoted, true)
	sortFeatures(final)
	return final
}

var (
	logIntersect = `
# STEP 1

Find intersections between TGFam gene features and pseudogene annotations.
    + Minimum overlap: %v of the TGFam gene length.
    + Intersections at: intersected_genes.txt
`
	logClassify = `
# STEP 2

Classify overlapping TGFam genes by the disabling mutations of their pseudogenes.
    + True genes, no disabling mutations: gene_ids/accepted_as_genes_ids.txt
    + Relaxed genes, 1 to %[1]d disabling mutations: gene_ids/relaxed_genes_ids.txt
    + Relegated genes, more than %[1]d disabling mutations: gene_ids/accepted_as_Pseudogenes_ids.txt
`
	logFilter = `
# STEP 3

Split the TGFam annotation.
    + True genes, all genes not relaxed or relegated: tgfam_gffs/true_genes_tgfam.gff
    + Relaxed genes: tgfam_gffs/relaxed_genes_tgfam.gff
    + Relegated genes: tgfam_gffs/relegated_genes_tgfam.gff
`
)

func (c *Comparison) family(fam Family, stderr io.Writer) (FamilyResult, error) {
	res := FamilyResult{Family: fam}
	dir := filepath.Join(c.Outdir, fam.Name)
	for _, d := range []string{"gene_ids", "tgfam_gffs"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return res, err
		}
	}
	logf, err := os.Create(filepath.Join(dir, "gff_comparison.log"))
	if err != nil {
		return res, err
	}
	defer logf.Close()

	fmt.Fprintf(logf, logIntersect, c.Fraction)
	pairs, err := c.intersector()(c.Shiu, fam.Path, stderr)
	if err != nil {
		return res, err
	}
	pairs = genes(pairs)
	if err = writePairs(filepath.Join(dir, "intersected_genes.txt"), pairs); err != nil {
		return res, err
	}

	fmt.Fprintf(logf, logClassify, c.Mutations)
	hits, err := Hits(pairs, c.Mutations)
	if err != nil {
		return res, err
	}
	var classes [3]assignment
	for _, h := range hits {
		classes[h.Class].set(h.TGFamID, h.ShiuID)
	}
	for i, name := range []string{
		"accepted_as_genes_ids.txt",
		"relaxed_genes_ids.txt",
		"accepted_as_Pseudogenes_ids.txt",
	} {
		if err = classes[i].write(filepath.Join(dir, "gene_ids", name)); err != nil {
			return res, err
		}
	}
	res.Genes = classes[Gene].keys
	res.Relaxed = classes[Relaxed].keys
	res.Relegate = classes[Pseudogene].keys
	seen := make(map[string]bool)
	for _, a := range []*assignment{&classes[Gene], &classes[Relaxed]} {
		for _, k := range a.keys {
			if id := a.m[k]; !seen[id] {
				seen[id] = true
				res.Promoted = append(res.Promoted, id)
			}
		}
	}

	fmt.Fprint(logf, logFilter)
	tgfam, err := gff3.ReadFile(fam.Path)
	if err != nil {
		return res, err
	}
	set := func(ids ...[]string) map[string]bool {
		m := make(map[string]bool)
		for _, s := range ids {
			for _, id := range s {
				m[id] = true
			}
		}
		return m
	}
	out := filepath.Join(dir, "tgfam_gffs")
	for _, f := range []struct {
		name   string
		ids    map[string]bool
		invert bool
	}{
		{name: "true_genes_tgfam.gff", ids: set(res.Relaxed, res.Relegate), invert: true},
		{name: "relaxed_genes_tgfam.gff", ids: set(res.Relaxed)},
		{name: "relegated_genes_tgfam.gff", ids: set(res.Relegate)},
	} {
		err = gff3.WriteFile(filepath.Join(out, f.name), filterFeatures(tgfam, f.ids, f.invert), false)
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

// WriteSummaryFile writes the family summaries to the named markdown file.
func WriteSummaryFile(name string, sums []Summary, fraction float64, relax int) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err = WriteSummary(f, sums, fraction, relax); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
