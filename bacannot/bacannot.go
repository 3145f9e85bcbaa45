// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bacannot summarises the results directory of a bacannot
// annotation run.
package bacannot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/biogo/annotools/gff3"
	"github.com/biogo/annotools/rgi"
	"github.com/biogo/annotools/tabular"

	"gopkg.in/yaml.v3"
)

var ErrNoSamples = errors.New("bacannot: no annotated samples found")

// Node is a level of the summary document.
type Node map[string]interface{}

func (n Node) node(key string) Node {
	c, ok := n[key].(Node)
	if !ok {
		c = make(Node)
		n[key] = c
	}
	return c
}

// Summary holds a Node for each sample keyed by sample name.
type Summary map[string]Node

// Section adds a part of a sample summary. Missing inputs are not errors.
type Section func(sample, dir string, n Node) error

// Sections are the summary sections in the order they are built.
var Sections = []Section{
	General,
	Virulence,
	Resistance,
	Plasmid,
	MGE,
}

// Samples returns the summary roots for each sample found below dir. A
// sample is a directory holding an annotation directory.
func Samples(dir string) (Summary, error) {
	s := make(Summary)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || d.Name() != "annotation" || path == dir {
			return nil
		}
		res, err := filepath.Abs(filepath.Dir(path))
		if err != nil {
			return err
		}
		s[filepath.Base(res)] = Node{"results_dir": res}
		return filepath.SkipDir
	})
	if err != nil {
		return nil, err
	}
	if len(s) == 0 {
		return nil, fmt.Errorf("%w in %q", ErrNoSamples, dir)
	}
	return s, nil
}

// Summarize builds the complete summary for the results below dir.
func Summarize(dir string) (Summary, error) {
	s, err := Samples(dir)
	if err != nil {
		return nil, err
	}
	for sample, n := range s {
		res := n["results_dir"].(string)
		for _, sec := range Sections {
			if err := sec(sample, res, n); err != nil {
				return nil, fmt.Errorf("bacannot: %s: %w", sample, err)
			}
		}
	}
	return s, nil
}

// Write writes s as JSON with sorted keys and a four space indent.
func (s Summary) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	return enc.Encode(s)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func readTable(path string, header bool) (*tabular.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return tabular.ReadDelimited(f, "\t", header)
}

// value returns s as an int or float64 when it parses as one.
func value(s string) interface{} {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// firstRows returns the first row for each distinct value of the key
// column in order of first appearance.
func firstRows(t *tabular.Table, key string) ([]string, map[string]map[string]string, error) {
	col, err := t.Column(key)
	if err != nil {
		return nil, nil, err
	}
	var keys []string
	rows := make(map[string]map[string]string)
	for i, k := range col {
		if _, ok := rows[k]; ok {
			continue
		}
		keys = append(keys, k)
		rows[k] = record(t.Header, t.Rows[i])
	}
	return keys, rows, nil
}

func record(header, row []string) map[string]string {
	r := make(map[string]string, len(header))
	for j, h := range header {
		if j < len(row) {
			r[h] = row[j]
		}
	}
	return r
}

// General records MLST, prokka feature counts and the closest RefSeq
// genome.
func General(sample, dir string, n Node) error {
	g := n.node("general_annotation")

	if p := filepath.Join(dir, "annotation", sample+".txt"); exists(p) {
		b, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		var stats map[string]interface{}
		if err = yaml.Unmarshal(b, &stats); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		for _, k := range []string{"CDS", "rRNA", "tRNA", "tmRNA"} {
			if v, ok := stats[k]; ok {
				g[strings.ToLower(k)] = v
			}
		}
	}

	if p := filepath.Join(dir, "MLST", sample+"_mlst_analysis.txt"); exists(p) {
		t, err := readTable(p, false)
		if err != nil {
			return err
		}
		if len(t.Rows) != 0 && len(t.Rows[0]) > 2 {
			g["mlst"] = strings.ReplaceAll(t.Rows[0][2], "-", "null")
		}
	}

	if p := filepath.Join(dir, "refseq_masher", "refseq_masher_results.txt"); exists(p) {
		t, err := readTable(p, true)
		if err != nil {
			return err
		}
		di, ti, ai := t.Index("distance"), t.Index("top_taxonomy_name"), t.Index("assembly_accession")
		if di < 0 || ti < 0 || ai < 0 {
			return fmt.Errorf("%s: %w", p, tabular.ErrNoColumn)
		}
		best := -1
		var min float64
		for i, r := range t.Rows {
			if len(r) <= max(di, ti, ai) {
				continue
			}
			d, err := strconv.ParseFloat(r[di], 64)
			if err != nil {
				continue
			}
			if best < 0 || d < min {
				best, min = i, d
			}
		}
		if best >= 0 {
			r := t.Rows[best]
			g["closest_reference"] = Node{
				"strain":    r[ti],
				"distance":  min,
				"accession": r[ai],
			}
		}
	}
	return nil
}

// Virulence records VFDB and Victors hits.
func Virulence(sample, dir string, n Node) error {
	base := filepath.Join(dir, "virulence")
	if !exists(base) {
		return nil
	}
	v := n.node("virulence")

	if p := filepath.Join(base, "vfdb", sample+"_vfdb_blastn_onGenes.summary.txt"); exists(p) {
		t, err := readTable(p, true)
		if err != nil {
			return err
		}
		genes, rows, err := firstRows(t, "SEQUENCE")
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		db := v.node("VFDB")
		db["total"] = len(genes)
		for _, g := range genes {
			r := rows[g]
			name, id, _ := strings.Cut(r["PRODUCT"], "_(")
			id, _, _ = strings.Cut(id, ")")
			db[g] = Node{
				"virulence_factor": strings.ReplaceAll(name, "[", ""),
				"id":               id,
				"name":             strings.NewReplacer("(", "", ")", "").Replace(r["GENE"]),
			}
		}
	}

	if p := filepath.Join(base, "victors", sample+"_victors_blastp_onGenes.summary.txt"); exists(p) {
		t, err := readTable(p, true)
		if err != nil {
			return err
		}
		genes, rows, err := firstRows(t, "SEQUENCE")
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		db := v.node("Victors")
		db["total"] = len(genes)
		for _, g := range genes {
			r := rows[g]
			db[g] = Node{
				"id":   strings.ReplaceAll(r["VICTORS_ID"], "Victors_", ""),
				"name": r["GENE"],
			}
		}
	}
	return nil
}

// Resistance records AMRFinderPlus, ResFinder and RGI hits.
func Resistance(sample, dir string, n Node) error {
	base := filepath.Join(dir, "resistance")
	if !exists(base) {
		return nil
	}
	res := n.node("resistance")

	if p := filepath.Join(base, "AMRFinderPlus", "AMRFinder_resistance-only.tsv"); exists(p) {
		t, err := readTable(p, true)
		if err != nil {
			return err
		}
		ids, rows, err := firstRows(t, "Protein identifier")
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		amr := res.node("amrfinderplus")
		amr["total"] = len(ids)
		for _, id := range ids {
			r := rows[id]
			amr[id] = Node{
				"gene":     r["Gene symbol"],
				"subclass": r["Subclass"],
				"identity": value(r["% Identity to reference sequence"]),
			}
		}
	}

	if p := filepath.Join(base, "resfinder", "ResFinder_results_tab.txt"); exists(p) {
		t, err := readTable(p, true)
		if err != nil {
			return err
		}
		rf := res.node("resfinder")
		seen := make(map[string]bool)
		var total int
		for _, r := range t.Rows {
			k := strings.Join(r, "\t")
			if seen[k] {
				continue
			}
			seen[k] = true
			total++
			row := record(t.Header, r)
			start, end, _ := strings.Cut(row["Position in contig"], "..")
			rf.node(row["Contig"])[row["Resistance gene"]] = Node{
				"start":     start,
				"end":       end,
				"Identity":  value(row["Identity"]),
				"phenotype": row["Phenotype"],
				"accession": row["Accession no."],
			}
		}
		rf["total"] = total
	}

	if p := filepath.Join(base, "RGI", "RGI_"+sample+".txt"); exists(p) {
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		rows, err := rgi.ReadRows(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		r := res.node("rgi")
		seen := make(map[string]bool)
		for _, row := range rows {
			if seen[row.ORFID] {
				continue
			}
			seen[row.ORFID] = true
			gene, name, _ := strings.Cut(row.ORFID, " ")
			r[gene] = Node{
				"name":                 name,
				"gene":                 row.BestHitARO,
				"cut_off":              row.CutOff,
				"resistance_mechanism": row.Mechanism,
				"gene_family":          row.GeneFamily,
				"subclass":             row.DrugClass,
				"identity":             value(row.BestIdentities),
				"accession":            value(row.ModelID),
			}
		}
		r["total"] = len(seen)
	}
	return nil
}

// Plasmid records Platon and PlasmidFinder results.
func Plasmid(sample, dir string, n Node) error {
	base := filepath.Join(dir, "plasmids")
	if !exists(base) {
		return nil
	}
	pl := n.node("plasmid")

	if p := filepath.Join(base, "platon", sample+".tsv"); exists(p) {
		t, err := readTable(p, true)
		if err != nil {
			return err
		}
		ids, rows, err := firstRows(t, "ID")
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		platon := pl.node("platon")
		platon["total"] = len(t.Rows)
		for _, id := range ids {
			r := rows[id]
			platon[id] = Node{
				"ORFs":         value(r["# ORFs"]),
				"Circular":     r["Circular"],
				"AMRs":         value(r["# AMRs"]),
				"Replication":  value(r["# Replication"]),
				"Mobilization": value(r["# Mobilization"]),
				"Conjugation":  value(r["# Conjugation"]),
			}
		}
	}

	if p := filepath.Join(base, "plasmidfinder", "results_tab.tsv"); exists(p) {
		t, err := readTable(p, true)
		if err != nil {
			return err
		}
		contigs, _, err := firstRows(t, "Contig")
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		pf := pl.node("plasmidfinder")
		dbs, err := t.Column("Database")
		if err == nil && len(dbs) != 0 {
			pf["meta"] = Node{"database": strings.Join(unique(dbs), ";")}
		}
		pf["total"] = len(contigs)
		for _, r := range t.Rows {
			row := record(t.Header, r)
			pf[row["Contig"]] = Node{
				"inc_types": row["Plasmid"],
				"identity":  value(row["Identity"]),
				"accession": row["Accession number"],
			}
		}
	}
	return nil
}

// MGE records integron_finder integrons.
func MGE(sample, dir string, n Node) error {
	m := n.node("MGE")
	p := filepath.Join(dir, "integron_finder", sample+"_integrons.gff")
	if !exists(p) {
		return nil
	}
	feats, err := gff3.ReadFile(p)
	if err != nil {
		return err
	}
	inf := m.node("integron_finder")
	inf["total"] = len(feats)
	for _, f := range feats {
		var id, typ string
		if len(f.Attributes) > 0 {
			id = f.Attributes[0].Value
		}
		if len(f.Attributes) > 1 {
			typ = f.Attributes[1].Value
		}
		inf.node(f.SeqID)[id] = Node{
			"id":      id,
			"contig":  f.SeqID,
			"start":   f.Start,
			"end":     f.End,
			"type":    typ,
			"source":  f.Source,
			"product": f.Type,
		}
	}
	return nil
}

func unique(s []string) []string {
	seen := make(map[string]bool)
	var u []string
	for _, v := range s {
		if !seen[v] {
			seen[v] = true
			u = append(u, v)
		}
	}
	sort.Strings(u)
	return u
}
