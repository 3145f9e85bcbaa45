// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hmmer

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct{}

var _ = check.Suite(&S{})

func (s *S) TestBuilders(c *check.C) {
	cmd, err := Press{HMM: "Pfam-A.hmm"}.BuildCommand()
	c.Assert(err, check.IsNil)
	c.Check(cmd.Args, check.DeepEquals, []string{"hmmpress", "Pfam-A.hmm"})

	cmd, err = Fetch{HMM: "Pfam-A.hmm", List: "ids.txt"}.BuildCommand()
	c.Assert(err, check.IsNil)
	c.Check(cmd.Args, check.DeepEquals, []string{"hmmfetch", "-f", "Pfam-A.hmm", "ids.txt"})

	cmd, err = Search{TblOut: "out_pfam_hits.txt", NoAli: true, Query: "-", Target: "prots.fa"}.BuildCommand()
	c.Assert(err, check.IsNil)
	c.Check(cmd.Args, check.DeepEquals, []string{"hmmsearch", "--noali", "--tblout", "out_pfam_hits.txt", "-", "prots.fa"})

	_, err = Press{}.BuildCommand()
	c.Check(err, check.Equals, ErrMissingRequired)
	_, err = Fetch{HMM: "Pfam-A.hmm"}.BuildCommand()
	c.Check(err, check.Equals, ErrMissingRequired)
	_, err = Search{Query: "-"}.BuildCommand()
	c.Check(err, check.Equals, ErrMissingRequired)
}

func (s *S) TestPipeline(c *check.C) {
	d := Detection{HMM: "Pfam-A.hmm", List: "ids.txt", Target: "prots.fa", Prefix: "out"}
	c.Check(d.HitsName(), check.Equals, "out_pfam_hits.txt")
	c.Check(d.TargetName(), check.Equals, "out_target.fa")

	fetch, search, err := d.Pipeline()
	c.Assert(err, check.IsNil)
	c.Check(fetch.Args, check.DeepEquals, []string{"hmmfetch", "-f", "Pfam-A.hmm", "ids.txt"})
	c.Check(search.Args, check.DeepEquals, []string{"hmmsearch", "-o", os.DevNull, "--noali", "--tblout", "out_pfam_hits.txt", "-", "prots.fa"})
	c.Check(search.Stdin, check.NotNil)
}

const tblout = `#                                                               --- full sequence ----
# target name        accession  query name           accession    E-value  score  bias
#------------------- ---------- -------------------- ---------- --------- ------ -----
prot2                -          PF00005.30           PF00005.30   1.2e-20   72.1   0.1
prot-3               -          PF00005.30           PF00005.30   3.4e-10   38.0   0.0
prot2                -          PF00664.26           PF00664.26   5.6e-08   30.2   0.3
#
# Program:         hmmsearch
`

func (s *S) TestReadTblout(c *check.C) {
	names, err := ReadTblout(strings.NewReader(tblout))
	c.Assert(err, check.IsNil)
	c.Check(names, check.DeepEquals, []string{"prot2", "prot-3"})
}

func (s *S) TestExtract(c *check.C) {
	const prots = `>prot1 first
MKLV
>prot2 ABC transporter
MKKL
LLAA
>prot-3
MSTQ
`
	var buf bytes.Buffer
	n, err := Extract(&buf, strings.NewReader(prots), []string{"prot2", "prot-3", "absent"})
	c.Assert(err, check.IsNil)
	c.Check(n, check.Equals, 2)
	c.Check(buf.String(), check.Equals, ">prot2 ABC transporter\nMKKLLLAA\n>prot-3\nMSTQ\n")
}
