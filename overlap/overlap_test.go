// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package overlap

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"gopkg.in/check.v1"

	"github.com/biogo/annotools/gff3"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct{}

var _ = check.Suite(&S{})

func features(c *check.C, s string) []*gff3.Feature {
	fs, err := gff3.ReadAll(strings.NewReader(s))
	c.Assert(err, check.IsNil)
	return fs
}

const (
	shiu = `Chr01	shiu	pseudogene	100	199	.	+	.	ID=ps1;Note=a_b_c_1,0
Chr01	shiu	pseudogene	500	599	.	-	.	ID=ps2
Chr02	shiu	pseudogene	10	20	.	+	.	ID=ps3
`
	tgfam = `Chr01	TGFam	gene	150	400	.	+	.	ID=g1
Chr01	TGFam	gene	90	120	.	+	.	ID=g0
Chr01	TGFam	gene	590	700	.	-	.	ID=g2
Chr03	TGFam	gene	10	20	.	+	.	ID=g3
`
)

func (s *S) TestIndexIntersect(c *check.C) {
	idx, err := NewIndex(features(c, tgfam))
	c.Assert(err, check.IsNil)
	c.Check(idx.Len(), check.Equals, 4)

	a := features(c, shiu)
	for i, t := range []struct {
		fracA, fracB float64
		want         []string
	}{
		{want: []string{"ps1 g0 21", "ps1 g1 50", "ps2 g2 10"}},
		{fracB: 0.1, want: []string{"ps1 g0 21", "ps1 g1 50"}},
		{fracA: 0.3, want: []string{"ps1 g1 50"}},
		{fracA: 0.6},
	} {
		var got []string
		for _, p := range idx.Intersect(a, t.fracA, t.fracB) {
			got = append(got, strings.Join([]string{p.A.ID(), p.B.ID(), strconv.Itoa(p.Overlap)}, " "))
		}
		c.Check(got, check.DeepEquals, t.want, check.Commentf("Test %d", i))
	}
}

func (s *S) TestReadPairs(c *check.C) {
	idx, err := NewIndex(features(c, tgfam))
	c.Assert(err, check.IsNil)
	pairs := idx.Intersect(features(c, shiu), 0, 0)

	var lines []string
	for _, p := range pairs {
		lines = append(lines, p.String())
	}
	got, err := ReadPairs(strings.NewReader(strings.Join(lines, "\n") + "\n"))
	c.Assert(err, check.IsNil)
	c.Assert(got, check.HasLen, len(pairs))
	for i := range got {
		c.Check(got[i].String(), check.Equals, pairs[i].String())
	}

	_, err = ReadPairs(strings.NewReader("Chr01\tshiu\n"))
	c.Check(errors.Is(err, ErrBadPair), check.Equals, true)
}

func (s *S) TestIntersectCommand(c *check.C) {
	_, err := Intersect{A: "a.gff"}.BuildCommand()
	c.Check(err, check.Equals, ErrMissingRequired)

	cmd, err := Intersect{A: "shiu.gff", B: "fam.gff", FracB: 0.1}.BuildCommand()
	c.Assert(err, check.IsNil)
	c.Check(cmd.Args, check.DeepEquals, []string{"bedtools", "intersect", "-wo", "-a", "shiu.gff", "-b", "fam.gff", "-F", "0.1"})

	cmd, err = Intersect{Cmd: "/opt/bedtools", A: "shiu.gff", B: "te.gff", FracA: 0.2}.BuildCommand()
	c.Assert(err, check.IsNil)
	c.Check(cmd.Args, check.DeepEquals, []string{"/opt/bedtools", "intersect", "-wo", "-a", "shiu.gff", "-b", "te.gff", "-f", "0.2"})
}

func (s *S) TestCoverage(c *check.C) {
	cov, err := Coverage(features(c, tgfam))
	c.Assert(err, check.IsNil)
	c.Check(cov, check.DeepEquals, map[string]int{
		"Chr01": (120 - 90 + 1) + (400 - 150 + 1) + (700 - 590 + 1),
		"Chr03": 11,
	})

	cov, err = Coverage(nil)
	c.Assert(err, check.IsNil)
	c.Check(cov, check.HasLen, 0)

	for _, f := range []*gff3.Feature{
		{SeqID: "Chr01", Start: 50, End: 10},
		{SeqID: "Chr01", Start: 0, End: 10},
	} {
		_, err = Coverage([]*gff3.Feature{f})
		c.Check(errors.Is(err, ErrBadInterval), check.Equals, true, check.Commentf("%d-%d", f.Start, f.End))
	}
}
