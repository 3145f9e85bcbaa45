// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gff3

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct{}

var _ = check.Suite(&S{})

const gffData = `##gff-version 3
# a comment

Chr01	phytozome	gene	100	900	.	+	.	ID=Bnut.01G000100.g;Name=BnA01
Chr01	phytozome	mRNA	100	900	.	+	.	ID=Bnut.01G000100.1:12345;Parent=Bnut.01G000100.g
Chr01	phytozome	CDS	150	600	3.5	+	0	ID=Bnut.01G000100.1:12345.CDS.1;Parent=Bnut.01G000100.1:12345
`

func (s *S) TestRead(c *check.C) {
	fs, err := ReadAll(strings.NewReader(gffData))
	c.Assert(err, check.IsNil)
	c.Assert(fs, check.HasLen, 3)

	c.Check(fs[0].SeqID, check.Equals, "Chr01")
	c.Check(fs[0].Type, check.Equals, "gene")
	c.Check(fs[0].Start, check.Equals, 100)
	c.Check(fs[0].End, check.Equals, 900)
	c.Check(fs[0].Len(), check.Equals, 801)
	c.Check(fs[0].HasScore(), check.Equals, false)
	c.Check(fs[0].Phase, check.Equals, -1)
	c.Check(fs[0].ID(), check.Equals, "Bnut.01G000100.g")
	c.Check(fs[0].Attributes.Get("Name"), check.Equals, "BnA01")

	c.Check(fs[2].Score, check.Equals, 3.5)
	c.Check(fs[2].Phase, check.Equals, 0)
	c.Check(fs[2].Strand, check.Equals, byte('+'))
}

func (s *S) TestScore(c *check.C) {
	f := &Feature{SeqID: "ctg1", Source: "src", Type: "gene", Start: 1, End: 10, Score: math.NaN(), Strand: '-', Phase: -1}
	c.Check(f.HasScore(), check.Equals, false)
	c.Check(f.String(), check.Equals, "ctg1\tsrc\tgene\t1\t10\t.\t-\t.\t.")
	c.Check(f.Document().Score, check.Equals, ".")

	f.Score = 0
	c.Check(f.HasScore(), check.Equals, true)
	c.Check(f.String(), check.Equals, "ctg1\tsrc\tgene\t1\t10\t0\t-\t.\t.")
	c.Check(f.Document().Score, check.Equals, "0")
}

func (s *S) TestRoundTrip(c *check.C) {
	fs, err := ReadAll(strings.NewReader(gffData))
	c.Assert(err, check.IsNil)

	var buf bytes.Buffer
	w := NewWriter(&buf, true)
	for _, f := range fs {
		c.Assert(w.Write(f), check.IsNil)
	}
	c.Assert(w.Flush(), check.IsNil)

	want := "##gff-version 3\n" + strings.Join(strings.Split(gffData, "\n")[3:], "\n")
	c.Check(buf.String(), check.Equals, want)
}

func (s *S) TestBadLines(c *check.C) {
	for i, t := range []struct {
		line string
		err  error
	}{
		{line: "Chr01\tsrc\tgene\t1\t10\t.\t+\t.", err: ErrBadLine},
		{line: "Chr01\tsrc\tgene\tx\t10\t.\t+\t.\tID=a", err: ErrBadLine},
		{line: "Chr01\tsrc\tgene\t1\t10\tlow\t+\t.\tID=a", err: ErrBadLine},
		{line: "Chr01\tsrc\tgene\t1\t10\t.\tx\t.\tID=a", err: ErrBadStrand},
	} {
		_, err := NewReader(strings.NewReader(t.line)).Read()
		c.Check(errors.Is(err, t.err), check.Equals, true, check.Commentf("Test %d: %v", i, err))
		c.Check(strings.HasPrefix(err.Error(), "line 1:"), check.Equals, true)
	}
}

func (s *S) TestAttributes(c *check.C) {
	a := ParseAttributes("ID=x; Note=a=b;;flag")
	c.Check(a, check.DeepEquals, Attributes{
		{Key: "ID", Value: "x"},
		{Key: "Note", Value: "a=b"},
		{Key: "flag"},
	})
	a.Set("ID", "y")
	a.Set("pacid", "42")
	c.Check(a.Get("ID"), check.Equals, "y")
	c.Check(a.Has("pacid"), check.Equals, true)
	c.Check(a.String(), check.Equals, "ID=y;Note=a=b;flag;pacid=42")
	c.Check(Attributes(nil).String(), check.Equals, ".")
}

func (s *S) TestDocument(c *check.C) {
	fs, err := ReadAll(strings.NewReader(gffData))
	c.Assert(err, check.IsNil)

	var buf bytes.Buffer
	c.Assert(WriteJSON(&buf, fs[2:]), check.IsNil)
	var docs []map[string]interface{}
	c.Assert(json.Unmarshal(buf.Bytes(), &docs), check.IsNil)
	c.Assert(docs, check.HasLen, 1)
	c.Check(docs[0]["CDS"], check.Equals, "Bnut.01G000100.1:12345.CDS.1")
	c.Check(docs[0]["score"], check.Equals, "3.5")
	c.Check(docs[0]["phase"], check.Equals, "0")
	c.Check(docs[0]["start"], check.Equals, 150.)
	c.Check(docs[0]["attributes"].(map[string]interface{})["Parent"], check.Equals, "Bnut.01G000100.1:12345")
}

func (s *S) TestGzipFile(c *check.C) {
	fs, err := ReadAll(strings.NewReader(gffData))
	c.Assert(err, check.IsNil)

	dir := c.MkDir()
	for _, name := range []string{"plain.gff", "packed.gff.gz"} {
		path := filepath.Join(dir, name)
		c.Assert(WriteFile(path, fs, true), check.IsNil)
		got, err := ReadFile(path)
		c.Assert(err, check.IsNil)
		c.Assert(got, check.HasLen, len(fs))
		for i := range got {
			c.Check(got[i].String(), check.Equals, fs[i].String(), check.Commentf("%s", name))
		}
	}

	raw, err := os.ReadFile(filepath.Join(dir, "packed.gff.gz"))
	c.Assert(err, check.IsNil)
	c.Check(raw[:2], check.DeepEquals, []byte{0x1f, 0x8b})
}

func (s *S) TestFASTASection(c *check.C) {
	r := NewReader(strings.NewReader("c\ts\tgene\t1\t2\t.\t+\t.\tID=a\n##FASTA\n>c\nACGT\n"))
	_, err := r.Read()
	c.Assert(err, check.IsNil)
	_, err = r.Read()
	c.Check(err, check.Equals, io.EOF)
}
