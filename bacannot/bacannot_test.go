// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bacannot

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct{}

var _ = check.Suite(&S{})

var files = map[string]string{
	"annotation/ecoli.txt": "organism: Escherichia coli\ncontigs: 2\nbases: 5000\nCDS: 10\nrRNA: 3\ntRNA: 40\ntmRNA: 1\n",
	"MLST/ecoli_mlst_analysis.txt": "ecoli.fasta\tecoli\t-\n",
	"refseq_masher/refseq_masher_results.txt": "sample\ttop_taxonomy_name\tdistance\tassembly_accession\n" +
		"ecoli\tEscherichia coli K-12\t0.02\tGCF_1\n" +
		"ecoli\tEscherichia coli O157\t0.01\tGCF_2\n",
	"virulence/vfdb/ecoli_vfdb_blastn_onGenes.summary.txt": "SEQUENCE\tGENE\tPRODUCT\n" +
		"ECO_1\t(fimA)\t[Type_1_fimbriae_(VF0221)\n" +
		"ECO_1\t(fimA)\t[Type_1_fimbriae_(VF0221)\n" +
		"ECO_7\t(ompA)\t[OmpA_(VF0236)\n",
	"resistance/resfinder/ResFinder_results_tab.txt": "Resistance gene\tIdentity\tContig\tPosition in contig\tPhenotype\tAccession no.\n" +
		"blaTEM-1B\t100.0\tcontig_1\t10..870\tampicillin\tAY458016\n" +
		"blaTEM-1B\t100.0\tcontig_1\t10..870\tampicillin\tAY458016\n" +
		"tet(B)\t99.5\tcontig_2\t5..1210\ttetracycline\tAP000342\n",
	"integron_finder/ecoli_integrons.gff": "##gff-version 3\n" +
		"contig_1\tIntegron_Finder\tintegron\t100\t2000\t.\t+\t.\tID=integron_01;integron_type=complete\n",
}

func (s *S) setup(c *check.C) string {
	root := c.MkDir()
	for name, content := range files {
		p := filepath.Join(root, "ecoli", name)
		c.Assert(os.MkdirAll(filepath.Dir(p), 0o755), check.IsNil)
		c.Assert(os.WriteFile(p, []byte(content), 0o644), check.IsNil)
	}
	return root
}

func (s *S) TestSamples(c *check.C) {
	root := s.setup(c)
	sum, err := Samples(root)
	c.Assert(err, check.IsNil)
	c.Assert(sum, check.HasLen, 1)
	c.Check(sum["ecoli"]["results_dir"], check.Equals, filepath.Join(root, "ecoli"))

	_, err = Samples(c.MkDir())
	c.Check(errors.Is(err, ErrNoSamples), check.Equals, true)
}

func (s *S) TestSummarize(c *check.C) {
	root := s.setup(c)
	sum, err := Summarize(root)
	c.Assert(err, check.IsNil)

	var buf bytes.Buffer
	c.Assert(sum.Write(&buf), check.IsNil)
	c.Check(strings.Contains(buf.String(), "\n    \"ecoli\": {\n"), check.Equals, true)

	var got map[string]map[string]interface{}
	c.Assert(json.Unmarshal(buf.Bytes(), &got), check.IsNil)
	e := got["ecoli"]

	gen := e["general_annotation"].(map[string]interface{})
	c.Check(gen["cds"], check.Equals, 10.0)
	c.Check(gen["tmrna"], check.Equals, 1.0)
	c.Check(gen["mlst"], check.Equals, "null")
	ref := gen["closest_reference"].(map[string]interface{})
	c.Check(ref["strain"], check.Equals, "Escherichia coli O157")
	c.Check(ref["accession"], check.Equals, "GCF_2")
	c.Check(ref["distance"], check.Equals, 0.01)

	vfdb := e["virulence"].(map[string]interface{})["VFDB"].(map[string]interface{})
	c.Check(vfdb["total"], check.Equals, 2.0)
	c.Check(vfdb["ECO_1"], check.DeepEquals, map[string]interface{}{
		"virulence_factor": "Type_1_fimbriae",
		"id":               "VF0221",
		"name":             "fimA",
	})

	rf := e["resistance"].(map[string]interface{})["resfinder"].(map[string]interface{})
	c.Check(rf["total"], check.Equals, 2.0)
	tet := rf["contig_2"].(map[string]interface{})["tet(B)"].(map[string]interface{})
	c.Check(tet["start"], check.Equals, "5")
	c.Check(tet["end"], check.Equals, "1210")
	c.Check(tet["Identity"], check.Equals, 99.5)
	_, ok := e["resistance"].(map[string]interface{})["amrfinderplus"]
	c.Check(ok, check.Equals, false)

	_, ok = e["plasmid"]
	c.Check(ok, check.Equals, false)

	inf := e["MGE"].(map[string]interface{})["integron_finder"].(map[string]interface{})
	c.Check(inf["total"], check.Equals, 1.0)
	integron := inf["contig_1"].(map[string]interface{})["integron_01"].(map[string]interface{})
	c.Check(integron["type"], check.Equals, "complete")
	c.Check(integron["start"], check.Equals, 100.0)
	c.Check(integron["product"], check.Equals, "integron")
}
