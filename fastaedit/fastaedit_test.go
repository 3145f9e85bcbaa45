// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fastaedit

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/biogo/biogo/alphabet"
	"gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct{}

var _ = check.Suite(&S{})

const genome = `>ctg1 assembled contig
ACGTACGTAC
GTACGT
>ctg2
TTTTGGGG
`

func (s *S) TestReadEdits(c *check.C) {
	edits, err := ReadEdits(strings.NewReader("ctg1\t2\t4\tNNN\nctg2\t0\t1\tA\n"))
	c.Assert(err, check.IsNil)
	c.Check(edits, check.DeepEquals, []Edit{
		{Contig: "ctg1", Start: 2, End: 4, Sub: "NNN"},
		{Contig: "ctg2", Start: 0, End: 1, Sub: "A"},
	})
}

func (s *S) TestApply(c *check.C) {
	seqs, err := ReadFasta(strings.NewReader(genome))
	c.Assert(err, check.IsNil)
	c.Assert(seqs, check.HasLen, 2)

	err = Apply(seqs, []Edit{
		{Contig: "ctg1", Start: 0, End: 2, Sub: "gg"},
		{Contig: "ctg1", Start: 10, End: 16, Sub: ""},
		{Contig: "ctg2", Start: 4, End: 4, Sub: "CC"},
		{Contig: "ctg1", Start: 4, End: 5, Sub: "TTTT"},
	})
	c.Assert(err, check.IsNil)

	var buf bytes.Buffer
	c.Assert(WriteFasta(&buf, seqs), check.IsNil)
	c.Check(buf.String(), check.Equals, ">ctg1\nggGTTTTTCGTAC\n>ctg2\nTTTTCCGGGG\n")
}

func (s *S) TestApplyOriginalCoordinates(c *check.C) {
	seqs, err := ReadFasta(strings.NewReader(">ctg1\nACGTACGT\n"))
	c.Assert(err, check.IsNil)
	err = Apply(seqs, []Edit{
		{Contig: "ctg1", Start: 0, End: 4, Sub: "T"},
		{Contig: "ctg1", Start: 4, End: 8, Sub: "GG"},
	})
	c.Assert(err, check.IsNil)
	c.Check(string(alphabet.LettersToBytes(seqs[0].Seq)), check.Equals, "TGG")
}

func (s *S) TestApplyErrors(c *check.C) {
	for _, t := range []struct {
		edit Edit
		err  error
	}{
		{Edit{Contig: "ctg3", Start: 0, End: 1}, ErrNoContig},
		{Edit{Contig: "ctg2", Start: 4, End: 9}, ErrRange},
		{Edit{Contig: "ctg2", Start: 5, End: 4}, ErrRange},
		{Edit{Contig: "ctg2", Start: -1, End: 4}, ErrRange},
	} {
		seqs, err := ReadFasta(strings.NewReader(genome))
		c.Assert(err, check.IsNil)
		err = Apply(seqs, []Edit{t.edit})
		c.Check(errors.Is(err, t.err), check.Equals, true, check.Commentf("%+v: %v", t.edit, err))
	}

	seqs, err := ReadFasta(strings.NewReader(genome))
	c.Assert(err, check.IsNil)
	err = Apply(seqs, []Edit{{Contig: "ctg1", Start: 0, End: 5}, {Contig: "ctg1", Start: 4, End: 6}})
	c.Check(errors.Is(err, ErrOverlap), check.Equals, true)
}
