// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pseudogene

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/check.v1"

	"github.com/biogo/annotools/gff3"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct{}

var _ = check.Suite(&S{})

const (
	shiuGFF = `##gff-version 3
chr1	shiu	pseudogene	100	200	.	+	.	ID=ps1;Note=Pg_chr1_1_0,0
chr1	shiu	pseudogene	300	400	.	+	.	ID=ps2;Note=Pg_chr1_2_1,1
chr2	shiu	pseudogene	100	200	.	-	.	ID=ps3;Note=Pg_chr2_1_3,2
chr10	shiu	pseudogene	50	60	.	+	.	ID=ps4;Note=Pg_chr10_1_0
`
	familyGFF = `chr1	TGFam	gene	120	180	.	+	.	ID=g1
chr1	TGFam	mRNA	120	180	.	+	.	ID=g1
chr1	TGFam	gene	320	390	.	+	.	ID=g2
chr2	TGFam	gene	110	190	.	-	.	ID=g3
chr1	TGFam	gene	1000	1100	.	+	.	ID=g4
`
	repetGFF = `chr1	REPET	RLX	90	210	.	+	.	ID=te1
chr1	REPET	DTX	150	250	.	+	.	ID=te2
chr1	REPET	SSR	310	390	.	+	.	ID=te3
chr2	REPET	RLX	5000	6000	.	+	.	ID=te4
`
)

func write(c *check.C, dir, name, content string) string {
	p := filepath.Join(dir, name)
	c.Assert(os.MkdirAll(filepath.Dir(p), 0o755), check.IsNil)
	c.Assert(os.WriteFile(p, []byte(content), 0o644), check.IsNil)
	return p
}

func ids(c *check.C, name string) []string {
	fs, err := gff3.ReadFile(name)
	c.Assert(err, check.IsNil)
	var s []string
	for _, f := range fs {
		s = append(s, f.ID())
	}
	return s
}

func (s *S) TestDisablingMutations(c *check.C) {
	for _, t := range []struct {
		note string
		want int
		err  bool
	}{
		{note: "Pg_chr1_1_0,0", want: 0},
		{note: "Pg_chr1_1_3,2,1", want: 6},
		{note: "Pg_chr1_1_4_extra", want: 4},
		{note: "Pg_chr1", err: true},
		{note: "Pg_chr1_1_x", err: true},
	} {
		n, err := DisablingMutations(t.note)
		if t.err {
			c.Check(errors.Is(err, ErrBadNote), check.Equals, true, check.Commentf("%q", t.note))
			continue
		}
		c.Check(err, check.IsNil)
		c.Check(n, check.Equals, t.want, check.Commentf("%q", t.note))
	}
}

func (s *S) TestClassify(c *check.C) {
	for _, t := range []struct {
		n, relax int
		want     Class
	}{
		{0, 3, Gene},
		{1, 3, Relaxed},
		{3, 3, Relaxed},
		{4, 3, Pseudogene},
		{1, 0, Pseudogene},
	} {
		c.Check(Classify(t.n, t.relax), check.Equals, t.want, check.Commentf("%d/%d", t.n, t.relax))
	}
}

func (s *S) TestNaturalLess(c *check.C) {
	c.Check(naturalLess("chr2", "chr10"), check.Equals, true)
	c.Check(naturalLess("chr10", "chr2"), check.Equals, false)
	c.Check(naturalLess("chr1", "chr1a"), check.Equals, true)
	c.Check(naturalLess("scaffold_007", "scaffold_7b"), check.Equals, true)
	c.Check(naturalLess("a", "a"), check.Equals, false)
}

func (s *S) TestSummary(c *check.C) {
	dir := c.MkDir()
	shiu := write(c, dir, "shiu.gff", shiuGFF)
	write(c, dir, "tgfam/famA.final.gff3", familyGFF)
	write(c, dir, "tgfam/notes.txt", "ignored")

	cmp := Comparison{
		Shiu:      shiu,
		TGFam:     filepath.Join(dir, "tgfam"),
		Mutations: 3,
		Fraction:  0.1,
		Intersect: Native(0, 0.1),
		Log:       io.Discard,
	}
	sums, err := cmp.Summary(context.Background())
	c.Assert(err, check.IsNil)
	c.Check(sums, check.DeepEquals, []Summary{{Family: "famA", Overlapping: 3, Intact: 1, Relaxed: 1, Pseudogenes: 1}})

	var buf bytes.Buffer
	c.Assert(WriteSummary(&buf, sums, 0.1, 3), check.IsNil)
	c.Check(strings.Contains(buf.String(), "| famA "), check.Equals, true)
	c.Check(strings.Contains(buf.String(), "1 to 3 disabling mutations"), check.Equals, true)
}

func (s *S) TestCompare(c *check.C) {
	dir := c.MkDir()
	shiu := write(c, dir, "shiu.gff", shiuGFF)
	write(c, dir, "tgfam/famA.gff", familyGFF)
	out := filepath.Join(dir, "results")
	write(c, out, "stale.txt", "removed")

	cmp := Comparison{
		Shiu:      shiu,
		TGFam:     filepath.Join(dir, "tgfam"),
		Outdir:    out,
		Mutations: 3,
		Fraction:  0.1,
		Intersect: Native(0, 0.1),
		Threads:   2,
		Log:       io.Discard,
	}
	res, err := cmp.Run(context.Background())
	c.Assert(err, check.IsNil)
	c.Assert(res, check.HasLen, 1)
	c.Check(res[0].Genes, check.DeepEquals, []string{"g1"})
	c.Check(res[0].Relaxed, check.DeepEquals, []string{"g2"})
	c.Check(res[0].Relegate, check.DeepEquals, []string{"g3"})
	c.Check(res[0].Promoted, check.DeepEquals, []string{"ps1", "ps2"})

	_, err = os.Stat(filepath.Join(out, "stale.txt"))
	c.Check(os.IsNotExist(err), check.Equals, true)

	fam := filepath.Join(out, "famA")
	b, err := os.ReadFile(filepath.Join(fam, "gene_ids", "relaxed_genes_ids.txt"))
	c.Assert(err, check.IsNil)
	c.Check(string(b), check.Equals, "TGFam ID\tPseudogene ID\ng2\tps2\n")

	b, err = os.ReadFile(filepath.Join(fam, "intersected_genes.txt"))
	c.Assert(err, check.IsNil)
	c.Check(strings.Count(string(b), "\n"), check.Equals, 3)

	c.Check(ids(c, filepath.Join(fam, "tgfam_gffs", "true_genes_tgfam.gff")), check.DeepEquals, []string{"g1", "g1", "g4"})
	c.Check(ids(c, filepath.Join(fam, "tgfam_gffs", "relaxed_genes_tgfam.gff")), check.DeepEquals, []string{"g2"})
	c.Check(ids(c, filepath.Join(fam, "tgfam_gffs", "relegated_genes_tgfam.gff")), check.DeepEquals, []string{"g3"})
	c.Check(ids(c, filepath.Join(out, "00_final_Pseudogenes", "shiu.gff")), check.DeepEquals, []string{"ps3", "ps4"})

	_, err = os.Stat(filepath.Join(fam, "gff_comparison.log"))
	c.Check(err, check.IsNil)
}

func (s *S) TestTEComparison(c *check.C) {
	dir := c.MkDir()
	cmp := TEComparison{
		Shiu:      write(c, dir, "shiu.gff", shiuGFF),
		Repet:     write(c, dir, "repet.gff", repetGFF),
		Outdir:    filepath.Join(dir, "results"),
		Fraction:  0.2,
		Intersect: Native(0.2, 0),
	}
	annotated, err := cmp.Run()
	c.Assert(err, check.IsNil)
	c.Check(cmp.AnnotatedName(), check.Equals, filepath.Join(dir, "results", "shiu_TEs.gff"))

	var got []string
	for _, f := range annotated {
		got = append(got, f.ID()+" "+f.Attributes.Get("Putative_TE")+" "+f.Attributes.Get("TE_family"))
	}
	c.Check(got, check.DeepEquals, []string{"ps1 Yes RLX", "ps2 Yes SSR", "ps4 No ", "ps3 No "})

	b, err := os.ReadFile(filepath.Join(cmp.Outdir, "transposable_pseudogenes_family.txt"))
	c.Assert(err, check.IsNil)
	c.Check(string(b), check.Equals, "Pseudogene ID\tTE family\nps1\tRLX\nps2\tSSR\n")

	b, err = os.ReadFile(filepath.Join(cmp.Outdir, "pseudogenes_intersection.txt"))
	c.Assert(err, check.IsNil)
	c.Check(strings.Count(string(b), "\n"), check.Equals, 3)

	reread, err := gff3.ReadFile(cmp.AnnotatedName())
	c.Assert(err, check.IsNil)
	c.Check(reread, check.HasLen, 4)

	repet, err := gff3.ReadFile(cmp.Repet)
	c.Assert(err, check.IsNil)
	c.Check(FamilyCounts(reread), check.DeepEquals, []Count{{Class: "RLX", Value: 1}})
	c.Check(Normalized(reread, repet), check.DeepEquals, []Count{{Class: "RLX", Value: 0.5}})
}
