// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mpgap collects assembly statistics from the MultiQC reports of
// MpGAP assembly runs.
package mpgap

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var ErrBadPath = errors.New("mpgap: report path too short")

// ReportName is the name of the MultiQC data file.
const ReportName = "multiqc_data.json"

var (
	BaseColumns = []string{"sample", "method", "outdir", "multiqc_file", "software"}

	QuastColumns = []string{
		"# contigs", "N50", "Total length",
		"# total reads", "Properly paired (%)", "Avg. coverage depth",
		"# predicted rRNA genes", "Complete BUSCO (%)", "Partial BUSCO (%)",
	}

	BuscoColumns = []string{
		"complete_single_copy", "complete_duplicated", "fragmented",
		"missing", "total", "lineage_dataset",
	}
)

// Header returns the CSV header.
func Header() []string {
	h := append([]string(nil), BaseColumns...)
	h = append(h, QuastColumns...)
	return append(h, BuscoColumns...)
}

// Row holds the statistics of one assembly.
type Row struct {
	Sample   string
	Method   string
	Outdir   string
	File     string
	Software string
	Quast    []string
	Busco    []string
}

// Fields returns the CSV fields of r.
func (r Row) Fields() []string {
	f := []string{r.Sample, r.Method, r.Outdir, r.File, r.Software}
	f = append(f, r.Quast...)
	return append(f, r.Busco...)
}

// FindReports returns the absolute paths of the MultiQC data files below
// dir in lexical order.
func FindReports(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != ReportName {
			return nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		paths = append(paths, abs)
		return nil
	})
	return paths, err
}

// SplitPath returns the sample, assembly method and output directory of
// a report at <outdir>/<sample>/<method>/x/y/multiqc_data.json.
func SplitPath(path string) (sample, method, outdir string, err error) {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) < 5 {
		return "", "", "", fmt.Errorf("%w: %q", ErrBadPath, path)
	}
	n := len(parts)
	return parts[n-5], parts[n-4], strings.Join(parts[:n-5], "/"), nil
}

type multiqcReport struct {
	General []map[string]json.RawMessage `json:"report_general_stats_data"`
	Raw     map[string]json.RawMessage   `json:"report_saved_raw_data"`
}

// section decodes a per-assembly section of the saved raw data.
func (r *multiqcReport) section(name string) (map[string]map[string]value, error) {
	b, ok := r.Raw[name]
	if !ok {
		return nil, nil
	}
	var m map[string]map[string]value
	err := json.Unmarshal(b, &m)
	return m, err
}

// value keeps the literal text of a JSON scalar.
type value string

func (v *value) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*v = value(s)
		return nil
	}
	if string(b) == "null" {
		*v = ""
		return nil
	}
	*v = value(b)
	return nil
}

// Read reads the assembly rows of the MultiQC report at path.
func Read(path string) ([]Row, error) {
	sample, method, outdir, err := SplitPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("mpgap: %s: %w", path, err)
	}
	for i := range rows {
		rows[i].Sample = sample
		rows[i].Method = method
		rows[i].Outdir = outdir
		rows[i].File = path
	}
	return rows, nil
}

func decode(r io.Reader) ([]Row, error) {
	var rep multiqcReport
	if err := json.NewDecoder(r).Decode(&rep); err != nil {
		return nil, err
	}
	if len(rep.General) == 0 {
		return nil, nil
	}
	var assemblies []string
	for a := range rep.General[0] {
		assemblies = append(assemblies, a)
	}
	sort.Strings(assemblies)

	quast, err := rep.section("multiqc_quast")
	if err != nil {
		return nil, err
	}
	busco, err := rep.section("multiqc_busco")
	if err != nil {
		return nil, err
	}
	rows := make([]Row, len(assemblies))
	for i, a := range assemblies {
		rows[i].Software = a
		rows[i].Quast = pick(quast[a], QuastColumns)
		rows[i].Busco = pick(busco[a], BuscoColumns)
	}
	return rows, nil
}

func pick(m map[string]value, cols []string) []string {
	s := make([]string, len(cols))
	for i, c := range cols {
		s[i] = string(m[c])
	}
	return s
}

// Collect reads the rows of every report below dir.
func Collect(dir string) ([]Row, error) {
	paths, err := FindReports(dir)
	if err != nil {
		return nil, err
	}
	var rows []Row
	for _, p := range paths {
		r, err := Read(p)
		if err != nil {
			return rows, err
		}
		rows = append(rows, r...)
	}
	return rows, nil
}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	cw.Write(Header())
	for _, r := range rows {
		cw.Write(r.Fields())
	}
	cw.Flush()
	return cw.Error()
}
