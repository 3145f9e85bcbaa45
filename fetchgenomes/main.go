// Copyright ©2013 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// fetchgenomes retrieves the records matching an Entrez query.
//
// Searches of the assembly database download the *_genomic.fna.gz file of
// each matching assembly into -outdir, taken from the RefSeq or GenBank FTP
// path of the assembly document summary as selected by -collection. Other
// databases are fetched as -rettype records to -out in pages of -retmax.
// Each request is retried up to -retry times.
//
// For example, to retrieve the RefSeq genomes of Novosphingobium:
//
//	fetchgenomes -db assembly -query 'Novosphingobium[Organism]' -email me@example.org -outdir genomes
//
// The available Entrez databases are listed with -show.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/biogo/ncbi/entrez"
	"github.com/biogo/ncbi/entrez/summary"
)

const tool = "biogo.annotools"

var (
	db         = flag.String("db", "assembly", "Entrez database to search.")
	query      = flag.String("query", "", "Entrez query (required).")
	collection = flag.String("collection", "RefSeq", "assembly collection to download from: RefSeq or GenBank.")
	outdir     = flag.String("outdir", ".", "outdir specifies the directory for downloaded assembly genomes.")
	rettype    = flag.String("rettype", "fasta", "rettype specifies the format of the returned data for non-assembly databases.")
	retmax     = flag.Int("retmax", 500, "retmax specifies the number of records to be retrieved per request.")
	out        = flag.String("out", "", "out specifies destination of the returned data for non-assembly databases (default to stdout).")
	email      = flag.String("email", "", "email specifies the email address to be sent to the server (required).")
	retries    = flag.Int("retry", 5, "retry specifies the number of attempts to retrieve the data.")
	show       = flag.Bool("show", false, "show lists the available Entrez databases.")
	help       = flag.Bool("help", false, "help prints this message.")
)

func main() {
	flag.Parse()
	if *help {
		flag.Usage()
		os.Exit(0)
	}
	if *show {
		info, err := entrez.DoInfo("", tool, *email)
		if err != nil {
			log.Fatalf("einfo failed: %v", err)
		}
		if info.Err != "" {
			log.Fatalf("einfo failed: %s", info.Err)
		}
		writeDatabases(os.Stdout, info.DbList)
		return
	}
	if *email == "" || *query == "" {
		flag.Usage()
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Now performing the search of %q in the %s database.\n", *query, *db)
	h := entrez.History{}
	s, err := entrez.DoSearch(*db, *query, nil, &h, tool, *email)
	if err != nil {
		log.Fatalf("search failed: %v", err)
	}
	fmt.Fprintf(os.Stderr, "Will retrieve %d records.\n", s.Count)

	if *db == "assembly" {
		field, err := ftpField(*collection)
		if err != nil {
			log.Fatal(err)
		}
		n, err := fetchAssemblies(s.IdList, field)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Fprintf(os.Stderr, "Downloaded %d genomes to %s\n", n, *outdir)
		return
	}
	fetchRecords(s.Count, &h)
}

// fetchAssemblies downloads the genomes of the assemblies with the given
// ids from the FTP path in field of their document summaries.
func fetchAssemblies(ids []int, field string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if err := os.MkdirAll(*outdir, 0o755); err != nil {
		return 0, err
	}
	var sum *entrez.Summary
	err := retry(*retries, func(t int) error {
		var err error
		sum, err = entrez.DoSummary("assembly", nil, tool, *email, nil, ids...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to retrieve summaries on attempt %d... retrying.\n", t)
		}
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("exceeded retries: last error: %w", err)
	}
	if len(sum.Err) != 0 {
		return 0, fmt.Errorf("esummary failed: %s", strings.Join(sum.Err, "; "))
	}

	var n int
	for _, d := range sum.Documents {
		p := ftpPath(d, field)
		if p == "" {
			fmt.Fprintf(os.Stderr, "Assembly %d has no %s... skipping.\n", d.Id, field)
			continue
		}
		url, err := genomeURL(p)
		if err != nil {
			return n, err
		}
		fmt.Fprintf(os.Stderr, "Downloading %s\n", url)
		err = retry(*retries, func(t int) error {
			_, err := download(http.DefaultClient, url, *outdir)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to download on attempt %d... retrying.\n", t)
			}
			return err
		})
		if err != nil {
			return n, fmt.Errorf("exceeded retries: last error: %w", err)
		}
		n++
	}
	return n, nil
}

// fetchRecords writes the count records held by the search history h to
// -out in pages of -retmax.
func fetchRecords(count int, h *entrez.History) {
	var (
		of  *os.File
		err error
	)
	if *out == "" {
		of = os.Stdout
	} else {
		of, err = os.Create(*out)
		if err != nil {
			log.Fatalf("failed to open %q: %v", *out, err)
		}
		defer of.Close()
	}

	var (
		buf   = &bytes.Buffer{}
		p     = &entrez.Parameters{RetMax: *retmax, RetType: *rettype, RetMode: "text"}
		bn, n int64
	)
	for p.RetStart = 0; p.RetStart < count; p.RetStart += p.RetMax {
		fmt.Fprintf(os.Stderr, "Attempting to retrieve %d records starting from %d with %d retries.\n", p.RetMax, p.RetStart, *retries)
		err = retry(*retries, func(t int) error {
			buf.Reset()
			r, err := entrez.Fetch(*db, p, tool, *email, h)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to retrieve on attempt %d... retrying.\n", t)
				return err
			}
			defer r.Close()
			if _, err = io.Copy(buf, r); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to buffer on attempt %d... retrying.\n", t)
				return err
			}
			return nil
		})
		if err != nil {
			log.Fatalf("exceeded retries: last error: %v", err)
		}
		bn += int64(buf.Len())

		fmt.Fprintln(os.Stderr, "Retrieved records... writing out.")
		_n, err := io.Copy(of, buf)
		n += _n
		if err != nil {
			log.Fatalf("failed to write records: %v", err)
		}
	}
	if bn != n {
		fmt.Fprintf(os.Stderr, "Writethrough mismatch: %d != %d\n", bn, n)
	}
}

var (
	errNoAttempts    = errors.New("no attempts made")
	errBadCollection = errors.New("unknown assembly collection")
	errNoPath        = errors.New("empty assembly FTP path")
)

// retry calls f with the attempt number until it succeeds or n attempts
// have been made, returning the last error.
func retry(n int, f func(attempt int) error) error {
	err := errNoAttempts
	for t := 0; t < n; t++ {
		if err = f(t); err == nil {
			return nil
		}
	}
	return err
}

// writeDatabases writes the Entrez database names one per line.
func writeDatabases(w io.Writer, names []string) {
	for _, n := range names {
		fmt.Fprintln(w, n)
	}
}

// ftpField returns the document summary item holding the FTP path of
// the named assembly collection.
func ftpField(collection string) (string, error) {
	switch strings.ToLower(collection) {
	case "refseq":
		return "FtpPath_RefSeq", nil
	case "genbank":
		return "FtpPath_GenBank", nil
	}
	return "", fmt.Errorf("%w: %q: select RefSeq or GenBank", errBadCollection, collection)
}

// ftpPath returns the value of the named item of d.
func ftpPath(d summary.Document, field string) string {
	for _, it := range d.Items {
		if it.Name == field {
			return strings.TrimSpace(it.Value)
		}
	}
	return ""
}

// genomeURL returns the URL of the genomic FASTA of the assembly
// directory at p. NCBI serves its FTP site over https.
func genomeURL(p string) (string, error) {
	p = strings.TrimRight(strings.TrimSpace(p), "/")
	if p == "" {
		return "", errNoPath
	}
	if strings.HasPrefix(p, "ftp://") {
		p = "https://" + strings.TrimPrefix(p, "ftp://")
	}
	return p + "/" + path.Base(p) + "_genomic.fna.gz", nil
}

// download retrieves url into dir, naming the file by the last element
// of the URL path, and returns the file name. Partial downloads are
// removed.
func download(c *http.Client, url, dir string) (string, error) {
	resp, err := c.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: %s", url, resp.Status)
	}

	name := filepath.Join(dir, path.Base(url))
	tmp, err := os.CreateTemp(dir, ".download-")
	if err != nil {
		return "", err
	}
	_, err = io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err = os.Rename(tmp.Name(), name); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return name, nil
}
