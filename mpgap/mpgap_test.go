// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mpgap

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct{}

var _ = check.Suite(&S{})

const report = `{
  "report_general_stats_data": [{"spades": {}, "flye": {}}],
  "report_saved_raw_data": {
    "multiqc_quast": {
      "flye": {"# contigs": 3, "N50": 4500000, "Total length": 5000000.0, "Avg. coverage depth": 88.5},
      "spades": {"# contigs": 120, "N50": 95000}
    },
    "multiqc_busco": {
      "flye": {"complete_single_copy": 120, "lineage_dataset": "enterobacterales_odb10", "missing": null},
      "spades": {"total": 124}
    }
  }
}`

func (s *S) TestSplitPath(c *check.C) {
	sample, method, outdir, err := SplitPath("/data/out/ecoli/hybrid/final_assemblies/multiqc/multiqc_data.json")
	c.Assert(err, check.IsNil)
	c.Check(sample, check.Equals, "ecoli")
	c.Check(method, check.Equals, "hybrid")
	c.Check(outdir, check.Equals, "/data/out")

	_, _, _, err = SplitPath("a/b/c")
	c.Check(errors.Is(err, ErrBadPath), check.Equals, true)
}

func (s *S) TestCollect(c *check.C) {
	root := c.MkDir()
	p := filepath.Join(root, "ecoli", "hybrid", "strategy_1", "multiqc", ReportName)
	c.Assert(os.MkdirAll(filepath.Dir(p), 0o755), check.IsNil)
	c.Assert(os.WriteFile(p, []byte(report), 0o644), check.IsNil)

	rows, err := Collect(root)
	c.Assert(err, check.IsNil)
	c.Assert(rows, check.HasLen, 2)
	c.Check(rows[0].Sample, check.Equals, "ecoli")
	c.Check(rows[0].Method, check.Equals, "hybrid")
	c.Check(rows[0].Outdir, check.Equals, filepath.ToSlash(root))
	c.Check(rows[0].Software, check.Equals, "flye")
	c.Check(rows[0].Quast[:3], check.DeepEquals, []string{"3", "4500000", "5000000.0"})
	c.Check(rows[0].Quast[5], check.Equals, "88.5")
	c.Check(rows[0].Busco[0], check.Equals, "120")
	c.Check(rows[0].Busco[3], check.Equals, "")
	c.Check(rows[0].Busco[5], check.Equals, "enterobacterales_odb10")
	c.Check(rows[1].Software, check.Equals, "spades")

	var buf bytes.Buffer
	c.Assert(WriteCSV(&buf, rows), check.IsNil)
	recs, err := csv.NewReader(&buf).ReadAll()
	c.Assert(err, check.IsNil)
	c.Assert(recs, check.HasLen, 3)
	c.Check(recs[0], check.DeepEquals, Header())
	c.Check(recs[2][4], check.Equals, "spades")
	c.Check(recs[2][5], check.Equals, "120")
}
