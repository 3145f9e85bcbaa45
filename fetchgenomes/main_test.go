// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/biogo/ncbi/entrez/summary"
	"gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct{}

var _ = check.Suite(&S{})

func (s *S) TestRetry(c *check.C) {
	fail := errors.New("fail")

	var calls []int
	err := retry(5, func(t int) error {
		calls = append(calls, t)
		if t < 2 {
			return fail
		}
		return nil
	})
	c.Check(err, check.IsNil)
	c.Check(calls, check.DeepEquals, []int{0, 1, 2})

	calls = nil
	err = retry(3, func(t int) error {
		calls = append(calls, t)
		return fail
	})
	c.Check(err, check.Equals, fail)
	c.Check(calls, check.DeepEquals, []int{0, 1, 2})

	c.Check(retry(0, func(int) error { return nil }), check.Equals, errNoAttempts)
}

func (s *S) TestFTPField(c *check.C) {
	for _, t := range []struct {
		collection string
		field      string
		err        error
	}{
		{collection: "RefSeq", field: "FtpPath_RefSeq"},
		{collection: "refseq", field: "FtpPath_RefSeq"},
		{collection: "Genbank", field: "FtpPath_GenBank"},
		{collection: "GenBank", field: "FtpPath_GenBank"},
		{collection: "ENA", err: errBadCollection},
	} {
		field, err := ftpField(t.collection)
		c.Check(field, check.Equals, t.field, check.Commentf("%s", t.collection))
		c.Check(errors.Is(err, t.err), check.Equals, true, check.Commentf("%s", t.collection))
	}
}

func (s *S) TestGenomeURL(c *check.C) {
	d := summary.Document{Id: 709711, Items: []summary.Item{
		{Name: "AssemblyAccession", Type: "String", Value: "GCF_000013325.1"},
		{Name: "FtpPath_GenBank", Type: "String", Value: "ftp://ftp.ncbi.nlm.nih.gov/genomes/all/GCA/000/013/325/GCA_000013325.1_ASM1332v1"},
		{Name: "FtpPath_RefSeq", Type: "String", Value: "ftp://ftp.ncbi.nlm.nih.gov/genomes/all/GCF/000/013/325/GCF_000013325.1_ASM1332v1/"},
	}}
	p := ftpPath(d, "FtpPath_RefSeq")
	url, err := genomeURL(p)
	c.Assert(err, check.IsNil)
	c.Check(url, check.Equals, "https://ftp.ncbi.nlm.nih.gov/genomes/all/GCF/000/013/325/GCF_000013325.1_ASM1332v1/GCF_000013325.1_ASM1332v1_genomic.fna.gz")

	url, err = genomeURL(ftpPath(d, "FtpPath_GenBank"))
	c.Assert(err, check.IsNil)
	c.Check(url, check.Equals, "https://ftp.ncbi.nlm.nih.gov/genomes/all/GCA/000/013/325/GCA_000013325.1_ASM1332v1/GCA_000013325.1_ASM1332v1_genomic.fna.gz")

	c.Check(ftpPath(summary.Document{}, "FtpPath_RefSeq"), check.Equals, "")
	_, err = genomeURL("")
	c.Check(err, check.Equals, errNoPath)
}

func (s *S) TestDownload(c *check.C) {
	const genome = "gzipped genome bytes"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/all/GCF_1_ASM1/GCF_1_ASM1_genomic.fna.gz" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(genome))
	}))
	defer srv.Close()

	dir := c.MkDir()
	url, err := genomeURL(srv.URL + "/all/GCF_1_ASM1")
	c.Assert(err, check.IsNil)
	name, err := download(srv.Client(), url, dir)
	c.Assert(err, check.IsNil)
	c.Check(name, check.Equals, filepath.Join(dir, "GCF_1_ASM1_genomic.fna.gz"))
	b, err := os.ReadFile(name)
	c.Assert(err, check.IsNil)
	c.Check(string(b), check.Equals, genome)

	_, err = download(srv.Client(), srv.URL+"/missing.fna.gz", dir)
	c.Check(err, check.NotNil)
	entries, err := os.ReadDir(dir)
	c.Assert(err, check.IsNil)
	c.Check(entries, check.HasLen, 1)
}

func (s *S) TestWriteDatabases(c *check.C) {
	var buf bytes.Buffer
	writeDatabases(&buf, []string{"pubmed", "assembly", "nuccore"})
	c.Check(buf.String(), check.Equals, "pubmed\nassembly\nnuccore\n")
}
