// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rgi reads CARD Resistance Gene Identifier tabular output.
package rgi

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/biogo/annotools/gff3"
)

var ErrBadRow = errors.New("rgi: malformed row")

// Columns is the number of leading columns of RGI output used by Row.
// Later RGI versions append further columns which are ignored.
const Columns = 23

// Row is a single RGI hit.
type Row struct {
	ORFID           string
	Contig          string
	Start, Stop     int
	Orientation     string
	CutOff          string
	PassBitscore    string
	BestHitBitscore string
	BestHitARO      string
	BestIdentities  string
	ARO             string
	ModelType       string
	SNPsInBestHit   string
	OtherSNPs       string
	DrugClass       string
	Mechanism       string
	GeneFamily      string
	PredictedDNA    string
	PredictedProt   string
	CARDProtein     string
	PercentLength   string
	ID              string
	ModelID         string
}

// ReadRows reads RGI rows from r. A header row starting with ORF_ID is
// skipped as are blank lines.
func ReadRows(r io.Reader) ([]Row, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 16<<20)
	var (
		rows []Row
		line int
	)
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r\n")
		if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "ORF_ID\t") {
			continue
		}
		f := strings.Split(text, "\t")
		if len(f) < Columns {
			return rows, fmt.Errorf("%w: line %d: %d columns", ErrBadRow, line, len(f))
		}
		start, err := strconv.Atoi(strings.TrimSpace(f[2]))
		if err != nil {
			return rows, fmt.Errorf("%w: line %d: start: %v", ErrBadRow, line, err)
		}
		stop, err := strconv.Atoi(strings.TrimSpace(f[3]))
		if err != nil {
			return rows, fmt.Errorf("%w: line %d: stop: %v", ErrBadRow, line, err)
		}
		rows = append(rows, Row{
			ORFID:           f[0],
			Contig:          f[1],
			Start:           start,
			Stop:            stop,
			Orientation:     f[4],
			CutOff:          f[5],
			PassBitscore:    f[6],
			BestHitBitscore: f[7],
			BestHitARO:      f[8],
			BestIdentities:  f[9],
			ARO:             f[10],
			ModelType:       f[11],
			SNPsInBestHit:   f[12],
			OtherSNPs:       f[13],
			DrugClass:       f[14],
			Mechanism:       f[15],
			GeneFamily:      f[16],
			PredictedDNA:    f[17],
			PredictedProt:   f[18],
			CARDProtein:     f[19],
			PercentLength:   f[20],
			ID:              f[21],
			ModelID:         f[22],
		})
	}
	return rows, sc.Err()
}

// Feature returns the GFF3 resistance feature for the row. The strand is
// taken from the Orientation column when it holds + or -, otherwise hits
// with start after stop are on the minus strand. Coordinates are always
// written in ascending order.
func (r Row) Feature() *gff3.Feature {
	f := &gff3.Feature{
		SeqID:  r.Contig,
		Source: "CARD_RGI",
		Type:   "resistance",
		Start:  r.Start,
		End:    r.Stop,
		Score:  math.NaN(),
		Strand: '+',
		Phase:  -1,
		Attributes: gff3.Attributes{
			{Key: "Additional_database", Value: "CARD_RGI"},
			{Key: r.BestHitARO + "_ID", Value: r.Contig},
			{Key: r.Contig + "_Target", Value: r.BestHitARO},
		},
	}
	if s, err := strconv.ParseFloat(r.BestHitBitscore, 64); err == nil {
		f.Score = s
	}
	if r.Start > r.Stop {
		f.Start, f.End = r.Stop, r.Start
		f.Strand = '-'
	}
	switch strings.TrimSpace(r.Orientation) {
	case "+":
		f.Strand = '+'
	case "-":
		f.Strand = '-'
	}
	return f
}

// Counts holds conversion statistics.
type Counts struct {
	Lines   int
	Plus    int
	Minus   int
	Written int
}

// Features converts rows to GFF3 features.
func Features(rows []Row) ([]*gff3.Feature, Counts) {
	c := Counts{Lines: len(rows)}
	fs := make([]*gff3.Feature, 0, len(rows))
	for _, r := range rows {
		f := r.Feature()
		if f.Strand == '-' {
			c.Minus++
		} else {
			c.Plus++
		}
		fs = append(fs, f)
		c.Written++
	}
	return fs, c
}
