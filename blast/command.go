// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blast

import (
	"errors"
	"fmt"
	"os/exec"

	"github.com/biogo/external"
)

var ErrMissingRequired = errors.New("blast: missing required argument")

// DBType returns the makeblastdb database type searched by task.
func DBType(task string) (string, error) {
	switch task {
	case "blastn", "tblastn":
		return "nucl", nil
	case "blastp", "blastx":
		return "prot", nil
	}
	return "", fmt.Errorf("%w: %q: select one of blastn, tblastn, blastp or blastx", ErrUnknownTask, task)
}

// MakeDB is a makeblastdb command builder.
type MakeDB struct {
	// Usage: makeblastdb -in <fasta> -out <db> -dbtype <nucl|prot> [-parse_seqids]
	//
	Cmd         string `buildarg:"{{if .}}{{.}}{{else}}makeblastdb{{end}}"`
	In          string `buildarg:"{{if .}}-in{{split}}{{.}}{{end}}"`
	ParseSeqIDs bool   `buildarg:"{{if .}}-parse_seqids{{end}}"`
	Out         string `buildarg:"{{if .}}-out{{split}}{{.}}{{end}}"`
	DBType      string `buildarg:"{{if .}}-dbtype{{split}}{{.}}{{end}}"`
}

// BuildCommand returns an exec.Cmd built from the parameters in m.
func (m MakeDB) BuildCommand() (*exec.Cmd, error) {
	if m.In == "" || m.DBType == "" {
		return nil, ErrMissingRequired
	}
	cl := external.Must(external.Build(m))
	return exec.Command(cl[0], cl[1:]...), nil
}

// Search is a BLAST+ search command builder. Task names the program,
// one of blastn, blastp, blastx or tblastn.
type Search struct {
	Task         string  `buildarg:"{{.}}"`
	Query        string  `buildarg:"{{if .}}-query{{split}}{{.}}{{end}}"`
	DB           string  `buildarg:"{{if .}}-db{{split}}{{.}}{{end}}"`
	Outfmt       string  `buildarg:"{{if .}}-outfmt{{split}}{{.}}{{end}}"`
	Out          string  `buildarg:"{{if .}}-out{{split}}{{.}}{{end}}"`
	Threads      int     `buildarg:"{{if .}}-num_threads{{split}}{{.}}{{end}}"`
	CullingLimit int     `buildarg:"{{if .}}-culling_limit{{split}}{{.}}{{end}}"`
	PercIdentity float64 `buildarg:"{{if .}}-perc_identity{{split}}{{.}}{{end}}"`
	EValue       float64 `buildarg:"{{if .}}-evalue{{split}}{{.}}{{end}}"`
}

// BuildCommand returns an exec.Cmd built from the parameters in s.
func (s Search) BuildCommand() (*exec.Cmd, error) {
	if _, err := DBType(s.Task); err != nil {
		return nil, err
	}
	if s.Query == "" || s.DB == "" {
		return nil, ErrMissingRequired
	}
	cl := external.Must(external.Build(s))
	return exec.Command(cl[0], cl[1:]...), nil
}

// Diamond is a DIAMOND protein search command builder. Task is one of
// blastp or blastx.
type Diamond struct {
	Cmd           string   `buildarg:"{{if .}}{{.}}{{else}}diamond{{end}}"`
	Task          string   `buildarg:"{{.}}"`
	Query         string   `buildarg:"{{if .}}--query{{split}}{{.}}{{end}}"`
	DB            string   `buildarg:"{{if .}}--db{{split}}{{.}}{{end}}"`
	Columns       []string `buildarg:"{{if .}}--outfmt{{split}}6{{range .}}{{split}}{{.}}{{end}}{{end}}"`
	MaxTargetSeqs int      `buildarg:"{{if .}}--max-target-seqs{{split}}{{.}}{{end}}"`
	Threads       int      `buildarg:"{{if .}}--threads{{split}}{{.}}{{end}}"`
	Identity      float64  `buildarg:"{{if .}}--id{{split}}{{.}}{{end}}"`
	SubjectCover  float64  `buildarg:"{{if .}}--subject-cover{{split}}{{.}}{{end}}"`
	QueryCover    float64  `buildarg:"{{if .}}--query-cover{{split}}{{.}}{{end}}"`
	Out           string   `buildarg:"{{if .}}--out{{split}}{{.}}{{end}}"`
}

// BuildCommand returns an exec.Cmd built from the parameters in d.
func (d Diamond) BuildCommand() (*exec.Cmd, error) {
	if d.Task != "blastp" && d.Task != "blastx" {
		return nil, fmt.Errorf("%w: diamond %q", ErrUnknownTask, d.Task)
	}
	if d.Query == "" || d.DB == "" {
		return nil, ErrMissingRequired
	}
	cl := external.Must(external.Build(d))
	return exec.Command(cl[0], cl[1:]...), nil
}
