// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rgi

import (
	"errors"
	"strings"
	"testing"

	"gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct{}

var _ = check.Suite(&S{})

func row(fields ...string) string {
	for len(fields) < Columns {
		fields = append(fields, "x")
	}
	return strings.Join(fields, "\t") + "\n"
}

var input = "ORF_ID\tContig\tStart\tStop\n" +
	row("contig_1_3 # 100 # 400", "contig_1", "100", "400", "+", "Strict", "500", "612.3", "TEM-1") +
	row("contig_2_9 # 900 # 10", "contig_2", "900", "10", "-", "Perfect", "500", "700", "tet(B)")

func (s *S) TestReadRows(c *check.C) {
	rows, err := ReadRows(strings.NewReader(input))
	c.Assert(err, check.IsNil)
	c.Assert(rows, check.HasLen, 2)
	c.Check(rows[0].ORFID, check.Equals, "contig_1_3 # 100 # 400")
	c.Check(rows[0].BestHitARO, check.Equals, "TEM-1")
	c.Check(rows[1].Start, check.Equals, 900)
	c.Check(rows[1].Stop, check.Equals, 10)

	_, err = ReadRows(strings.NewReader("a\tb\n"))
	c.Check(errors.Is(err, ErrBadRow), check.Equals, true)
	_, err = ReadRows(strings.NewReader(row("o", "c", "one", "2")))
	c.Check(errors.Is(err, ErrBadRow), check.Equals, true)
}

func (s *S) TestFeatures(c *check.C) {
	rows, err := ReadRows(strings.NewReader(input))
	c.Assert(err, check.IsNil)
	fs, n := Features(rows)
	c.Check(n, check.Equals, Counts{Lines: 2, Plus: 1, Minus: 1, Written: 2})
	c.Check(fs[0].String(), check.Equals,
		"contig_1\tCARD_RGI\tresistance\t100\t400\t612.3\t+\t.\tAdditional_database=CARD_RGI;TEM-1_ID=contig_1;contig_1_Target=TEM-1")
	c.Check(fs[1].Start, check.Equals, 10)
	c.Check(fs[1].End, check.Equals, 900)
	c.Check(fs[1].Strand, check.Equals, byte('-'))
	c.Check(fs[1].Attributes.Get("tet(B)_ID"), check.Equals, "contig_2")
}

func (s *S) TestFeatureOrientation(c *check.C) {
	for i, t := range []struct {
		start, stop int
		orient      string
		strand      byte
	}{
		{start: 100, stop: 400, orient: "-", strand: '-'},
		{start: 100, stop: 400, orient: "+", strand: '+'},
		{start: 400, stop: 100, orient: "+", strand: '+'},
		{start: 400, stop: 100, orient: "", strand: '-'},
		{start: 100, stop: 400, orient: "", strand: '+'},
	} {
		f := Row{Contig: "contig_1", Start: t.start, Stop: t.stop, Orientation: t.orient}.Feature()
		c.Check(f.Strand, check.Equals, t.strand, check.Commentf("Test %d", i))
		c.Check(f.Start, check.Equals, 100, check.Commentf("Test %d", i))
		c.Check(f.End, check.Equals, 400, check.Commentf("Test %d", i))
	}

	rows, err := ReadRows(strings.NewReader(row("contig_1_7 # 100 # 400 # -1", "contig_1", "100", "400", "-", "Strict", "500", "612.3", "OXA-48")))
	c.Assert(err, check.IsNil)
	fs, n := Features(rows)
	c.Check(n, check.Equals, Counts{Lines: 1, Minus: 1, Written: 1})
	c.Check(fs[0].Strand, check.Equals, byte('-'))
}
