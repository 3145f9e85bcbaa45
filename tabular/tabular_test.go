// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tabular

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct{}

var _ = check.Suite(&S{})

func (s *S) TestReadDelimited(c *check.C) {
	t, err := ReadDelimited(strings.NewReader("a , b\tc\n\n 1\t2 \t3\r\n4\t5\n"), "\t", true)
	c.Assert(err, check.IsNil)
	c.Check(t.Header, check.DeepEquals, []string{"a , b", "c"})
	c.Check(t.Rows, check.DeepEquals, [][]string{{"1", "2", "3"}, {"4", "5"}})

	t, err = ReadDelimited(strings.NewReader("x,y\n"), ",", false)
	c.Assert(err, check.IsNil)
	c.Check(t.Header, check.IsNil)
	c.Check(t.Rows, check.DeepEquals, [][]string{{"x", "y"}})

	t, err = ReadDelimited(strings.NewReader("Earth,\"6,371\"\nMars,3389 \"km\"\n"), ",", false)
	c.Assert(err, check.IsNil)
	c.Check(t.Rows, check.DeepEquals, [][]string{{"Earth", "6,371"}, {"Mars", `3389 "km"`}})

	_, err = ReadDelimited(strings.NewReader("x\n"), "::", false)
	c.Check(err, check.NotNil)
}

func (s *S) TestMarkdown(c *check.C) {
	t := &Table{Header: []string{"a", "bb"}, Rows: [][]string{{"1", "2"}, {"333", "4"}}}
	var buf bytes.Buffer
	c.Assert(Markdown(&buf, t, nil), check.IsNil)
	c.Check(buf.String(), check.Equals, ""+
		"| a   | bb |\n"+
		"|-----|----|\n"+
		"| 1   | 2  |\n"+
		"| 333 | 4  |\n")

	buf.Reset()
	c.Assert(Markdown(&buf, t, []string{"First", "Second"}), check.IsNil)
	c.Check(strings.HasPrefix(buf.String(), "| First | Second |\n"), check.Equals, true)

	c.Check(Markdown(&buf, &Table{}, nil), check.Equals, ErrEmpty)
}

func (s *S) TestColumns(c *check.C) {
	t := &Table{Header: []string{"id", "name", "n"}, Rows: [][]string{{"b", "beta", "2"}, {"a", "alpha"}}}
	col, err := t.Column("n")
	c.Assert(err, check.IsNil)
	c.Check(col, check.DeepEquals, []string{"2", ""})
	_, err = t.Column("missing")
	c.Check(errors.Is(err, ErrNoColumn), check.Equals, true)

	sel, err := t.Select("name", "id")
	c.Assert(err, check.IsNil)
	c.Check(sel.Rows, check.DeepEquals, [][]string{{"beta", "b"}, {"alpha", "a"}})

	cl := t.Clone()
	c.Assert(cl.Drop("name"), check.IsNil)
	c.Assert(cl.SortBy("id"), check.IsNil)
	c.Check(cl.Header, check.DeepEquals, []string{"id", "n"})
	c.Check(cl.Rows, check.DeepEquals, [][]string{{"a"}, {"b", "2"}})
	c.Check(t.Rows[0], check.DeepEquals, []string{"b", "beta", "2"})
}

func (s *S) TestJoin(c *check.C) {
	a := &Table{Header: []string{"k", "x"}, Rows: [][]string{{"1", "a"}, {"2", "b"}, {"3", "c"}}}
	b := &Table{Header: []string{"y", "key"}, Rows: [][]string{{"p", "2"}, {"q", "1"}, {"r", "2"}}}
	j, err := Join(a, b, "k", "key")
	c.Assert(err, check.IsNil)
	c.Check(j.Header, check.DeepEquals, []string{"k", "x", "y"})
	c.Check(j.Rows, check.DeepEquals, [][]string{{"1", "a", "q"}, {"2", "b", "p"}, {"2", "b", "r"}})
}

func (s *S) TestPresence(c *check.C) {
	t, err := ReadDelimited(strings.NewReader(""+
		"Orthogroup\tg1\tg2\tg3\n"+
		"OG1\ta1, a2\tb1\t\n"+
		"OG2\t\tb2\tc2\n"+
		"OG3\ta3\tb3\tc3\n"), "\t", true)
	c.Assert(err, check.IsNil)
	p, err := PresenceMatrix(t)
	c.Assert(err, check.IsNil)
	c.Check(p.Table("Orthogroup").Rows, check.DeepEquals, [][]string{
		{"OG1", "1", "1", "0"},
		{"OG2", "0", "1", "1"},
		{"OG3", "1", "1", "1"},
	})
	c.Check(p.SharedTable().Rows, check.DeepEquals, [][]string{
		{"g1", "2", "2", "1"},
		{"g2", "2", "3", "2"},
		{"g3", "1", "2", "2"},
	})
}

func (s *S) TestCardMetadata(c *check.C) {
	index := &Table{
		Header: []string{"ARO Accession", "ARO Name", "Protein Accession"},
		Rows: [][]string{
			{"ARO:3000002", "tetB", "P2"},
			{"ARO:3000001", "blaTEM", "P1"},
		},
	}
	cats := &Table{
		Header: []string{"Protein Accession", "AMR Gene Family", "Drug Class", "Resistance Mechanism"},
		Rows: [][]string{
			{"P1", "TEM beta-lactamase", "penam", "antibiotic inactivation"},
			{"P2", "tet efflux", "tetracycline", "antibiotic efflux"},
		},
	}
	feats := &Table{
		Header: []string{"seqname", "Prokka_product", "ARO_Accession"},
		Rows: [][]string{
			{"contig_1", "Beta-lactamase TEM", "aro:3000001"},
			{"contig_2", "hypothetical", "aro:9999999"},
		},
	}
	got, err := CardMetadata(feats, index, cats)
	c.Assert(err, check.IsNil)
	c.Check(got.Header, check.DeepEquals, CardColumns)
	c.Check(got.Rows, check.DeepEquals, [][]string{
		{"contig_1", "Beta-lactamase TEM", "ARO:3000001", "P1", "penam", "antibiotic inactivation", "TEM beta-lactamase"},
	})
	c.Check(feats.Rows[0][2], check.Equals, "aro:3000001")
	c.Check(index.Header, check.HasLen, 3)
}
