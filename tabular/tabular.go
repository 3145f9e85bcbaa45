// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tabular provides simple delimited table handling for the
// annotation tools.
package tabular

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/olekukonko/tablewriter"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrNoColumn = errors.New("tabular: no such column")
	ErrEmpty    = errors.New("tabular: empty table")
)

// Table is a header and rows of string cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadDelimited reads a table of sep separated cells from r. Each cell is
// trimmed of surrounding white space and blank lines are skipped. Quotes
// are honoured where they are well formed. If header is true the first
// non-empty line is used as the header.
func ReadDelimited(r io.Reader, sep string, header bool) (*Table, error) {
	if sep == "" {
		sep = "\t"
	}
	comma, n := utf8.DecodeRuneInString(sep)
	if n != len(sep) {
		return nil, fmt.Errorf("tabular: separator %q is not a single character", sep)
	}
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false
	t := &Table{}
	for {
		cells, err := cr.Read()
		if err == io.EOF {
			return t, nil
		}
		if err != nil {
			return t, err
		}
		blank := true
		for i, c := range cells {
			cells[i] = strings.TrimSpace(c)
			if cells[i] != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		if header && t.Header == nil {
			t.Header = cells
			continue
		}
		t.Rows = append(t.Rows, cells)
	}
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	c := &Table{Header: append([]string(nil), t.Header...)}
	for _, r := range t.Rows {
		c.Rows = append(c.Rows, append([]string(nil), r...))
	}
	return c
}

// Index returns the index of the named column, or -1.
func (t *Table) Index(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Column returns the cells of the named column.
func (t *Table) Column(name string) ([]string, error) {
	i := t.Index(name)
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoColumn, name)
	}
	col := make([]string, len(t.Rows))
	for j, r := range t.Rows {
		col[j] = cell(r, i)
	}
	return col, nil
}

// Select returns a table holding only the named columns in the given order.
func (t *Table) Select(names ...string) (*Table, error) {
	idx := make([]int, len(names))
	for i, n := range names {
		idx[i] = t.Index(n)
		if idx[i] < 0 {
			return nil, fmt.Errorf("%w: %q", ErrNoColumn, n)
		}
	}
	s := &Table{Header: append([]string(nil), names...)}
	for _, r := range t.Rows {
		row := make([]string, len(idx))
		for i, j := range idx {
			row[i] = cell(r, j)
		}
		s.Rows = append(s.Rows, row)
	}
	return s, nil
}

// Rename renames column old to new.
func (t *Table) Rename(old, new string) error {
	i := t.Index(old)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNoColumn, old)
	}
	t.Header[i] = new
	return nil
}

// Drop removes the named column.
func (t *Table) Drop(name string) error {
	i := t.Index(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNoColumn, name)
	}
	t.Header = append(t.Header[:i:i], t.Header[i+1:]...)
	for j, r := range t.Rows {
		if i < len(r) {
			t.Rows[j] = append(r[:i:i], r[i+1:]...)
		}
	}
	return nil
}

// SortBy stably sorts rows by the named column.
func (t *Table) SortBy(name string) error {
	i := t.Index(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNoColumn, name)
	}
	sort.SliceStable(t.Rows, func(a, b int) bool {
		return cell(t.Rows[a], i) < cell(t.Rows[b], i)
	})
	return nil
}

func cell(r []string, i int) string {
	if i < len(r) {
		return r[i]
	}
	return ""
}

// Join returns the inner join of a and b on a's keyA column and b's keyB
// column. The result holds all of a's columns followed by b's columns
// other than keyB. Row order follows a, then b for repeated keys.
func Join(a, b *Table, keyA, keyB string) (*Table, error) {
	ia := a.Index(keyA)
	if ia < 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoColumn, keyA)
	}
	ib := b.Index(keyB)
	if ib < 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoColumn, keyB)
	}
	byKey := make(map[string][][]string)
	for _, r := range b.Rows {
		k := cell(r, ib)
		byKey[k] = append(byKey[k], r)
	}
	j := &Table{Header: append([]string(nil), a.Header...)}
	for i, h := range b.Header {
		if i != ib {
			j.Header = append(j.Header, h)
		}
	}
	for _, ra := range a.Rows {
		for _, rb := range byKey[cell(ra, ia)] {
			row := make([]string, 0, len(j.Header))
			for i := range a.Header {
				row = append(row, cell(ra, i))
			}
			for i := range b.Header {
				if i != ib {
					row = append(row, cell(rb, i))
				}
			}
			j.Rows = append(j.Rows, row)
		}
	}
	return j, nil
}

// WriteDelimited writes t to w with cells separated by sep.
func WriteDelimited(w io.Writer, t *Table, sep string) error {
	bw := bufio.NewWriter(w)
	if t.Header != nil {
		fmt.Fprintln(bw, strings.Join(t.Header, sep))
	}
	for _, r := range t.Rows {
		fmt.Fprintln(bw, strings.Join(r, sep))
	}
	return bw.Flush()
}

// Markdown renders t as a github flavoured markdown table. If header is
// not nil it is used in place of t.Header.
func Markdown(w io.Writer, t *Table, header []string) error {
	if header == nil {
		header = t.Header
	}
	if header == nil && len(t.Rows) == 0 {
		return ErrEmpty
	}
	tw := tablewriter.NewWriter(w)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetBorders(tablewriter.Border{Left: true, Right: true})
	tw.SetCenterSeparator("|")
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	if header != nil {
		tw.SetHeader(header)
	}
	tw.AppendBulk(t.Rows)
	tw.Render()
	return nil
}

// Presence is a presence/absence matrix of groups over members.
type Presence struct {
	Groups  []string
	Members []string
	// Matrix holds 1 where a member is
	// present in a group, 0 otherwise.
	Matrix *mat.Dense
}

// PresenceMatrix returns the presence/absence matrix of t where the first
// column names a group and each subsequent column is a member. A non-empty
// cell marks the member as present in the group.
func PresenceMatrix(t *Table) (*Presence, error) {
	if len(t.Header) < 2 || len(t.Rows) == 0 {
		return nil, ErrEmpty
	}
	p := &Presence{
		Members: append([]string(nil), t.Header[1:]...),
		Matrix:  mat.NewDense(len(t.Rows), len(t.Header)-1, nil),
	}
	for i, r := range t.Rows {
		p.Groups = append(p.Groups, cell(r, 0))
		for j := range p.Members {
			if cell(r, j+1) != "" {
				p.Matrix.Set(i, j, 1)
			}
		}
	}
	return p, nil
}

// Table returns the presence matrix as a table of 0/1 cells.
func (p *Presence) Table(name string) *Table {
	t := &Table{Header: append([]string{name}, p.Members...)}
	for i, g := range p.Groups {
		row := []string{g}
		for j := range p.Members {
			row = append(row, fmt.Sprint(p.Matrix.At(i, j)))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Shared returns the member by member matrix of group counts shared by
// each pair of members. The diagonal holds the number of groups each
// member is present in.
func (p *Presence) Shared() *mat.Dense {
	var s mat.Dense
	s.Mul(p.Matrix.T(), p.Matrix)
	return &s
}

// SharedTable returns Shared as a table.
func (p *Presence) SharedTable() *Table {
	s := p.Shared()
	t := &Table{Header: append([]string{""}, p.Members...)}
	for i, m := range p.Members {
		row := []string{m}
		for j := range p.Members {
			row = append(row, fmt.Sprint(s.At(i, j)))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
