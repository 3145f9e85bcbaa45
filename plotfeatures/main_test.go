// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"image/color"
	"strings"
	"testing"

	"gopkg.in/check.v1"

	"github.com/biogo/annotools/featplot"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct{}

var _ = check.Suite(&S{})

func (s *S) TestReadSources(c *check.C) {
	srcs, err := readSources(strings.NewReader("a.gff,Reference,#ff0000\n\nb.gff.gz, Query ,#00f\n"))
	c.Assert(err, check.IsNil)
	c.Check(srcs, check.DeepEquals, []source{
		{file: "a.gff", label: "Reference", color: color.RGBA{R: 0xff, A: 0xff}},
		{file: "b.gff.gz", label: "Query", color: color.RGBA{B: 0xff, A: 0xff}},
	})

	_, err = readSources(strings.NewReader("a.gff,Reference\n"))
	c.Check(err, check.ErrorMatches, "line 1: want gff,label,colour: got 2 fields")

	_, err = readSources(strings.NewReader("a.gff,Reference,red\n"))
	c.Check(errors.Is(err, featplot.ErrBadColor), check.Equals, true)
}
