// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biogo/annotools/blast"
	"github.com/biogo/annotools/genbank"
)

const gbk = `LOCUS       contig_1                  60 bp    DNA     linear   BCT 01-JAN-2021
DEFINITION  Escherichia coli contig 1.
ACCESSION   contig_1
FEATURES             Location/Qualifiers
     source          1..60
                     /organism="Escherichia coli"
     CDS             1..12
                     /locus_tag="ECO_00001"
                     /product="leader peptide"
                     /translation="MKR"
     CDS             complement(31..42)
                     /locus_tag="ECO_00002"
                     /product="hypothetical protein"
                     /translation="MVK"
ORIGIN
        1 atgaaacgct aaggggcccc ttttaaaagg ccttgcgttt catgaaaccc gggtttaaaa
//
LOCUS       contig_2                  10 bp    DNA     circular BCT 01-JAN-2021
DEFINITION  .
FEATURES             Location/Qualifiers
     source          1..10
ORIGIN
        1 acgtacgtac
//
`

// run executes fapy with args in a clean environment and returns its
// standard output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	var out, errOut bytes.Buffer
	root := NewRootCmd(viper.New())
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.Execute()
	return out.String(), err
}

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "0.9\n", out)

	out, err = run(t, "license")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Copyright ©2022 The bíogo Authors."))
}

func TestTSV2Markdown(t *testing.T) {
	dir := t.TempDir()
	tsv := write(t, dir, "t.tsv", "name\tsize\nchr1 \t 100\n")
	out, err := run(t, "tsv2markdown", "--tsv", tsv)
	require.NoError(t, err)
	assert.Equal(t, "| name | size |\n|------|------|\n| chr1 | 100  |\n", out)

	csv := write(t, dir, "t.csv", "Earth,6371\n")
	out, err = run(t, "tsv2markdown", "--csv", csv, "--header", "Planet,R (km)")
	require.NoError(t, err)
	assert.Equal(t, "| Planet | R (km) |\n|--------|--------|\n| Earth  | 6371   |\n", out)

	_, err = run(t, "tsv2markdown")
	assert.True(t, errors.Is(err, errMissingFlag))
}

func TestSplitGBK(t *testing.T) {
	dir := t.TempDir()
	in := write(t, dir, "in.gbk", gbk)
	outdir := filepath.Join(dir, "split")
	_, err := run(t, "splitgbk", "-g", in, "-o", outdir)
	require.NoError(t, err)
	for _, name := range []string{"contig_1.gbk", "contig_2.gbk"} {
		recs, err := genbank.ReadFile(filepath.Join(outdir, name))
		require.NoError(t, err, name)
		assert.Len(t, recs, 1, name)
	}
}

func TestGBK2Fasta(t *testing.T) {
	dir := t.TempDir()
	in := write(t, dir, "in.gbk", gbk)
	out, err := run(t, "gbk2fasta", "--gbk", in)
	require.NoError(t, err)
	assert.Equal(t, ">ECO_00001 leader peptide\nMKR\n>ECO_00002 hypothetical protein\nMVK\n", out)

	list := write(t, dir, "genes.txt", "ECO_00002\n\n")
	out, err = run(t, "gbk2fasta", "--gbk", in, "--fofn", list)
	require.NoError(t, err)
	assert.Equal(t, ">ECO_00002 hypothetical protein\nMVK\n", out)
}

func TestSettingsPrecedence(t *testing.T) {
	dir := t.TempDir()
	in := write(t, dir, "in.gbk", gbk)

	t.Setenv("FAPY_TYPE", "bogus")
	_, err := run(t, "gbk2fasta", "--gbk", in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid sequence type "bogus"`)

	_, err = run(t, "gbk2fasta", "--gbk", in, "--type", "prot")
	assert.NoError(t, err)

	os.Unsetenv("FAPY_TYPE")
	cfg := write(t, dir, "fapy.yaml", "type: other\n")
	_, err = run(t, "--config", cfg, "gbk2fasta", "--gbk", in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid sequence type "other"`)
}

func TestReplaceFastaSeq(t *testing.T) {
	dir := t.TempDir()
	fa := write(t, dir, "in.fa", ">ctg1 desc\nACGTACGT\n>ctg2\nGGGG\n")
	bed := write(t, dir, "edits.bed", "ctg1\t0\t4\tTT\nctg2\t2\t2\tCC\n")
	_, err := run(t, "replace_fasta_seq", "-f", fa, "-b", bed, "-o", "-")
	require.NoError(t, err)

	out := filepath.Join(dir, "out.fa")
	_, err = run(t, "replace_fasta_seq", "--fasta", fa, "--bed", bed, "--out", out)
	require.NoError(t, err)
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, ">ctg1\nTTACGT\n>ctg2\nGGCCGG\n", string(b))

	_, err = run(t, "replace_fasta_seq", "--fasta", fa)
	assert.True(t, errors.Is(err, errMissingFlag))
}

func TestBlastsTask(t *testing.T) {
	_, err := run(t, "blasts", "--query", "q.fa", "--subject", "s.fa", "--task", "megablast")
	assert.True(t, errors.Is(err, blast.ErrUnknownTask))
}

func TestHitRegions(t *testing.T) {
	hits := []*blast.Hit{
		{SSeqID: "contig_1", SStart: 10, SEnd: 50},
		{SSeqID: "contig_2", SStart: 90, SEnd: 20},
	}
	assert.Equal(t, []genbank.Region{
		{Name: "contig_1", Start: 5, End: 55},
		{Name: "contig_2", Start: 15, End: 95},
	}, hitRegions(hits, 5))
}
