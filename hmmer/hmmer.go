// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hmmer wraps the HMMER tools used to find proteins carrying
// domains of interest.
package hmmer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"github.com/biogo/external"
)

var ErrMissingRequired = errors.New("hmmer: missing required argument")

// Press is an hmmpress command builder.
//
//  hmmpress [-f] <hmmfile>
type Press struct {
	Cmd   string `buildarg:"{{if .}}{{.}}{{else}}hmmpress{{end}}"`
	Force bool   `buildarg:"{{if .}}-f{{end}}"`
	HMM   string `buildarg:"{{.}}"`
}

// BuildCommand returns an exec.Cmd built from the parameters in p.
func (p Press) BuildCommand() (*exec.Cmd, error) {
	if p.HMM == "" {
		return nil, ErrMissingRequired
	}
	cl := external.Must(external.Build(p))
	return exec.Command(cl[0], cl[1:]...), nil
}

// Fetch is an hmmfetch command builder retrieving the profiles named in
// the key file List.
//
//  hmmfetch -f <hmmfile> <keyfile>
type Fetch struct {
	Cmd  string `buildarg:"{{if .}}{{.}}{{else}}hmmfetch{{end}}"`
	Out  string `buildarg:"{{if .}}-o{{split}}{{.}}{{end}}"`
	HMM  string `buildarg:"{{if .}}-f{{split}}{{.}}{{end}}"`
	List string `buildarg:"{{.}}"`
}

// BuildCommand returns an exec.Cmd built from the parameters in f.
func (f Fetch) BuildCommand() (*exec.Cmd, error) {
	if f.HMM == "" || f.List == "" {
		return nil, ErrMissingRequired
	}
	cl := external.Must(external.Build(f))
	return exec.Command(cl[0], cl[1:]...), nil
}

// Search is an hmmsearch command builder. A Query of "-" reads the
// profiles from stdin.
//
//  hmmsearch [-o <out>] [--noali] [--tblout <tbl>] [--cpu <n>] <query> <target>
type Search struct {
	Cmd     string `buildarg:"{{if .}}{{.}}{{else}}hmmsearch{{end}}"`
	Out     string `buildarg:"{{if .}}-o{{split}}{{.}}{{end}}"`
	NoAli   bool   `buildarg:"{{if .}}--noali{{end}}"`
	TblOut  string `buildarg:"{{if .}}--tblout{{split}}{{.}}{{end}}"`
	Threads int    `buildarg:"{{if .}}--cpu{{split}}{{.}}{{end}}"`
	Query   string `buildarg:"{{.}}"`
	Target  string `buildarg:"{{.}}"`
}

// BuildCommand returns an exec.Cmd built from the parameters in s.
func (s Search) BuildCommand() (*exec.Cmd, error) {
	if s.Query == "" || s.Target == "" {
		return nil, ErrMissingRequired
	}
	cl := external.Must(external.Build(s))
	return exec.Command(cl[0], cl[1:]...), nil
}

// Detection finds target proteins carrying the Pfam domains named in List.
type Detection struct {
	HMM    string // Pressed Pfam-A.hmm.
	List   string // Pfam accessions or names, one per line.
	Target string // Protein FASTA.
	Prefix string
}

// HitsName returns the name of the hmmsearch table written by the
// detection.
func (d Detection) HitsName() string { return d.Prefix + "_pfam_hits.txt" }

// TargetName returns the name of the FASTA file of detected proteins.
func (d Detection) TargetName() string { return d.Prefix + "_target.fa" }

// Pipeline returns the hmmfetch and hmmsearch commands of the detection
// with the fetch output piped into the search. The search report is
// discarded.
func (d Detection) Pipeline() (fetch, search *exec.Cmd, err error) {
	fetch, err = Fetch{HMM: d.HMM, List: d.List}.BuildCommand()
	if err != nil {
		return nil, nil, err
	}
	search, err = Search{Out: os.DevNull, NoAli: true, TblOut: d.HitsName(), Query: "-", Target: d.Target}.BuildCommand()
	if err != nil {
		return nil, nil, err
	}
	search.Stdin, err = fetch.StdoutPipe()
	if err != nil {
		return nil, nil, err
	}
	return fetch, search, nil
}

// Run runs the detection pipeline and writes the detected proteins. It
// returns the number of proteins written.
func (d Detection) Run(ctx context.Context, stderr io.Writer) (int, error) {
	if d.Target == "" || d.Prefix == "" {
		return 0, ErrMissingRequired
	}
	fetch, search, err := d.Pipeline()
	if err != nil {
		return 0, err
	}
	fetch.Stderr, search.Stderr = stderr, stderr
	if err = fetch.Start(); err != nil {
		return 0, err
	}
	if err = search.Start(); err != nil {
		fetch.Process.Kill()
		fetch.Wait()
		return 0, err
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			fetch.Process.Kill()
			search.Process.Kill()
		case <-done:
		}
	}()
	ferr := fetch.Wait()
	serr := search.Wait()
	close(done)
	if ferr != nil {
		return 0, fmt.Errorf("hmmer: hmmfetch: %w", ferr)
	}
	if serr != nil {
		return 0, fmt.Errorf("hmmer: hmmsearch: %w", serr)
	}

	tbl, err := os.Open(d.HitsName())
	if err != nil {
		return 0, err
	}
	names, err := ReadTblout(tbl)
	tbl.Close()
	if err != nil {
		return 0, err
	}
	return ExtractFile(d.Target, names, d.TargetName())
}

// ReadTblout returns the distinct target names of an hmmsearch --tblout
// table in order of first appearance.
func ReadTblout(r io.Reader) ([]string, error) {
	var names []string
	seen := make(map[string]bool)
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, 1<<20)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		f := strings.Fields(line)
		if len(f) == 0 || seen[f[0]] {
			continue
		}
		seen[f[0]] = true
		names = append(names, f[0])
	}
	return names, sc.Err()
}

// Extract writes the sequences in the FASTA stream r whose ID is in names
// to w as unwrapped FASTA. It returns the number of sequences written.
func Extract(w io.Writer, r io.Reader, names []string) (int, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var n int
	sc := seqio.NewScanner(fasta.NewReader(r, linear.NewSeq("", nil, alphabet.Protein)))
	for sc.Next() {
		s := sc.Seq().(*linear.Seq)
		if !want[s.Name()] {
			continue
		}
		if _, err := fasta.NewWriter(w, max(1, s.Len())).Write(s); err != nil {
			return n, err
		}
		n++
	}
	return n, sc.Error()
}

// ExtractFile extracts the named sequences of the FASTA file in into the
// file out.
func ExtractFile(in string, names []string, out string) (int, error) {
	f, err := os.Open(in)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	o, err := os.Create(out)
	if err != nil {
		return 0, err
	}
	n, err := Extract(o, f, names)
	if cerr := o.Close(); err == nil {
		err = cerr
	}
	return n, err
}
