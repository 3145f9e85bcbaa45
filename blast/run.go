// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blast

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/biogo/annotools/runner"
)

// Pairwise describes a search of a query FASTA file against a subject FASTA
// file, formatted into a temporary database for the duration of the run.
type Pairwise struct {
	Task    string
	Query   string
	Subject string

	Filter       Filter
	CullingLimit int
	Threads      int

	// Columns is the outfmt 6 column set. Defaults to Columns.
	Columns []string

	// Stderr receives the diagnostic output of the external programs.
	Stderr io.Writer
}

// Run formats the subject database, runs the search and returns the hits
// passing the filter.
func (p Pairwise) Run(ctx context.Context) ([]*Hit, error) {
	dbType, err := DBType(p.Task)
	if err != nil {
		return nil, err
	}
	cols := p.Columns
	if cols == nil {
		cols = Columns
	}
	stderr := p.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	dir, err := os.MkdirTemp("", "blast-subject-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)
	db := filepath.Join(dir, "subject")

	mk, err := MakeDB{In: p.Subject, Out: db, DBType: dbType, ParseSeqIDs: true}.BuildCommand()
	if err != nil {
		return nil, err
	}
	mk.Stdout = io.Discard
	if err = runner.RunCmd(ctx, mk, stderr); err != nil {
		return nil, fmt.Errorf("blast: makeblastdb: %w", err)
	}

	search, err := Search{
		Task:         p.Task,
		Query:        p.Query,
		DB:           db,
		Outfmt:       Outfmt(cols),
		Threads:      p.Threads,
		CullingLimit: p.CullingLimit,
	}.BuildCommand()
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	search.Stdout = &out
	if err = runner.RunCmd(ctx, search, stderr); err != nil {
		return nil, fmt.Errorf("blast: %s: %w", p.Task, err)
	}

	hits, err := ReadHits(&out, cols)
	if err != nil {
		return nil, err
	}
	return p.Filter.Apply(hits), nil
}

// Annotated describes a search of a query against a preformatted database
// whose subject titles carry gene annotation. Nucleotide tasks run
// BLAST+ and are filtered on subject coverage only; protein tasks run
// DIAMOND with equivalent thresholds.
type Annotated struct {
	Task  string
	Query string
	DB    string

	MinIdentity  float64
	MinCoverage  float64
	CullingLimit int
	Threads      int

	Stderr io.Writer
}

// Run runs the search and returns the accepted hits.
func (a Annotated) Run(ctx context.Context) ([]*Hit, error) {
	stderr := a.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	var (
		cmd    interface{ String() string }
		out    bytes.Buffer
		err    error
		filter = Filter{MinIdentity: a.MinIdentity, MinCoverage: a.MinCoverage, SubjectOnly: true}
	)
	switch a.Task {
	case "blastn", "tblastn":
		c, berr := Search{
			Task:         a.Task,
			Query:        a.Query,
			DB:           a.DB,
			Outfmt:       Outfmt(TitleColumns),
			Threads:      a.Threads,
			CullingLimit: a.CullingLimit,
			PercIdentity: a.MinIdentity,
		}.BuildCommand()
		if berr != nil {
			return nil, berr
		}
		c.Stdout = &out
		cmd = c
		err = runner.RunCmd(ctx, c, stderr)
	case "blastp", "blastx":
		c, berr := Diamond{
			Task:          a.Task,
			Query:         a.Query,
			DB:            a.DB,
			Columns:       TitleColumns,
			MaxTargetSeqs: a.CullingLimit,
			Threads:       a.Threads,
			Identity:      a.MinIdentity,
			SubjectCover:  a.MinCoverage,
			QueryCover:    a.MinCoverage,
		}.BuildCommand()
		if berr != nil {
			return nil, berr
		}
		c.Stdout = &out
		cmd = c
		err = runner.RunCmd(ctx, c, stderr)
		// DIAMOND applies the thresholds itself.
		filter = Filter{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTask, a.Task)
	}
	if err != nil {
		return nil, fmt.Errorf("blast: %s: %w", cmd, err)
	}
	hits, err := ReadHits(&out, TitleColumns)
	if err != nil {
		return nil, err
	}
	return filter.Apply(hits), nil
}
