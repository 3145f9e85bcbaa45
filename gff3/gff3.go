// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gff3 reads and writes GFF version 3 feature files.
//
// The biogo gff package handles GFF2 attribute syntax (tag value); this
// package keeps key=value attribute pairs intact and preserves their order.
package gff3

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/pgzip"
)

// Version is the header line written by Writer.
const Version = "##gff-version 3"

var (
	ErrBadLine   = errors.New("gff3: malformed feature line")
	ErrBadStrand = errors.New("gff3: invalid strand")
)

// Attribute is a single key=value pair from column 9.
type Attribute struct {
	Key   string
	Value string
}

// Attributes is an ordered set of feature attributes.
type Attributes []Attribute

// Get returns the value of the first attribute with the given key.
func (a Attributes) Get(key string) string {
	for _, kv := range a {
		if kv.Key == key {
			return kv.Value
		}
	}
	return ""
}

// Has returns whether an attribute with the given key is present.
func (a Attributes) Has(key string) bool {
	for _, kv := range a {
		if kv.Key == key {
			return true
		}
	}
	return false
}

// Set replaces the value of key, appending the attribute if it is absent.
func (a *Attributes) Set(key, value string) {
	for i, kv := range *a {
		if kv.Key == key {
			(*a)[i].Value = value
			return
		}
	}
	*a = append(*a, Attribute{Key: key, Value: value})
}

// String renders the attributes in column 9 syntax.
func (a Attributes) String() string {
	if len(a) == 0 {
		return "."
	}
	var b strings.Builder
	for i, kv := range a {
		if i != 0 {
			b.WriteByte(';')
		}
		b.WriteString(kv.Key)
		if kv.Value != "" {
			b.WriteByte('=')
			b.WriteString(kv.Value)
		}
	}
	return b.String()
}

// ParseAttributes splits column 9 on ';' and then on the first '='.
// Empty fields are dropped and fields without '=' become keys with an
// empty value.
func ParseAttributes(s string) Attributes {
	s = strings.TrimSpace(s)
	if s == "" || s == "." {
		return nil
	}
	var a Attributes
	for _, f := range strings.Split(s, ";") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		k, v, _ := strings.Cut(f, "=")
		a = append(a, Attribute{Key: k, Value: v})
	}
	return a
}

// Feature is a GFF3 feature line. Start and End are 1-based and inclusive
// as they appear in the file.
type Feature struct {
	SeqID      string
	Source     string
	Type       string
	Start      int
	End        int
	Score      float64 // NaN when absent.
	Strand     byte    // One of '+', '-', '.' or '?'.
	Phase      int     // -1 when absent.
	Attributes Attributes
}

// Len returns the length of the feature in bases.
func (f *Feature) Len() int { return f.End - f.Start + 1 }

// ID returns the ID attribute of the feature.
func (f *Feature) ID() string { return f.Attributes.Get("ID") }

// HasScore returns whether the score column was set.
func (f *Feature) HasScore() bool { return !math.IsNaN(f.Score) }

func (f *Feature) scoreString() string {
	if !f.HasScore() {
		return "."
	}
	return strconv.FormatFloat(f.Score, 'f', -1, 64)
}

func (f *Feature) phaseString() string {
	if f.Phase < 0 {
		return "."
	}
	return strconv.Itoa(f.Phase)
}

func (f *Feature) strandString() string {
	if f.Strand == 0 {
		return "."
	}
	return string(f.Strand)
}

// Fields returns the nine columns of the feature.
func (f *Feature) Fields() []string {
	return []string{
		f.SeqID,
		f.Source,
		f.Type,
		strconv.Itoa(f.Start),
		strconv.Itoa(f.End),
		f.scoreString(),
		f.strandString(),
		f.phaseString(),
		f.Attributes.String(),
	}
}

// String returns the feature as a GFF3 line without a trailing newline.
func (f *Feature) String() string { return strings.Join(f.Fields(), "\t") }

// ParseFeature parses a single tab-delimited GFF3 line.
func ParseFeature(line string) (*Feature, error) {
	fields := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
	return ParseFields(fields)
}

// ParseFields parses the nine columns of a GFF3 feature.
func ParseFields(fields []string) (*Feature, error) {
	if len(fields) != 9 {
		return nil, fmt.Errorf("%w: %d columns", ErrBadLine, len(fields))
	}
	f := &Feature{
		SeqID:      fields[0],
		Source:     fields[1],
		Type:       fields[2],
		Score:      math.NaN(),
		Phase:      -1,
		Attributes: ParseAttributes(fields[8]),
	}
	var err error
	f.Start, err = strconv.Atoi(fields[3])
	if err != nil {
		return nil, fmt.Errorf("%w: start: %v", ErrBadLine, err)
	}
	f.End, err = strconv.Atoi(fields[4])
	if err != nil {
		return nil, fmt.Errorf("%w: end: %v", ErrBadLine, err)
	}
	if fields[5] != "." && fields[5] != "" {
		f.Score, err = strconv.ParseFloat(fields[5], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: score: %v", ErrBadLine, err)
		}
	}
	switch fields[6] {
	case "+", "-", ".", "?":
		f.Strand = fields[6][0]
	case "":
		f.Strand = '.'
	default:
		return nil, fmt.Errorf("%w: %q", ErrBadStrand, fields[6])
	}
	if fields[7] != "." && fields[7] != "" {
		f.Phase, err = strconv.Atoi(fields[7])
		if err != nil {
			return nil, fmt.Errorf("%w: phase: %v", ErrBadLine, err)
		}
	}
	return f, nil
}

// Reader reads GFF3 features, skipping comment, directive and blank lines.
type Reader struct {
	sc   *bufio.Scanner
	line int
}

// NewReader returns a Reader reading from r.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 16<<20)
	return &Reader{sc: sc}
}

// Read returns the next feature. It returns io.EOF at the end of input.
func (r *Reader) Read() (*Feature, error) {
	for r.sc.Scan() {
		r.line++
		text := r.sc.Text()
		if strings.HasPrefix(text, "##FASTA") {
			return nil, io.EOF
		}
		if text == "" || text[0] == '#' {
			continue
		}
		f, err := ParseFeature(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", r.line, err)
		}
		return f, nil
	}
	if err := r.sc.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// ReadAll reads all the remaining features from r.
func ReadAll(r io.Reader) ([]*Feature, error) {
	var fs []*Feature
	gr := NewReader(r)
	for {
		f, err := gr.Read()
		if err != nil {
			if err == io.EOF {
				return fs, nil
			}
			return fs, err
		}
		fs = append(fs, f)
	}
}

type gzipFile struct {
	*pgzip.Reader
	f *os.File
}

func (g gzipFile) Close() error {
	g.Reader.Close()
	return g.f.Close()
}

// Open opens the named file, decompressing it if the name ends in ".gz".
func Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(name, ".gz") {
		return f, nil
	}
	z, err := pgzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("gff3: %s: %w", name, err)
	}
	return gzipFile{Reader: z, f: f}, nil
}

// ReadFile reads every feature from the named, possibly gzipped, file.
func ReadFile(name string) ([]*Feature, error) {
	rc, err := Open(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	fs, err := ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("gff3: %s: %w", name, err)
	}
	return fs, nil
}

// Writer writes GFF3 features.
type Writer struct {
	w      *bufio.Writer
	header bool
}

// NewWriter returns a Writer writing to w. If header is true the version
// directive is written before the first feature.
func NewWriter(w io.Writer, header bool) *Writer {
	return &Writer{w: bufio.NewWriter(w), header: header}
}

func (w *Writer) writeHeader() error {
	if !w.header {
		return nil
	}
	w.header = false
	_, err := fmt.Fprintln(w.w, Version)
	return err
}

// Write writes a single feature.
func (w *Writer) Write(f *Feature) error {
	if err := w.writeHeader(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w.w, f.String())
	return err
}

// WriteRaw writes line followed by a newline, unmodified.
func (w *Writer) WriteRaw(line string) error {
	if err := w.writeHeader(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w.w, line)
	return err
}

// Flush flushes buffered output, writing the header if nothing was written.
func (w *Writer) Flush() error {
	if err := w.writeHeader(); err != nil {
		return err
	}
	return w.w.Flush()
}

// WriteFile writes fs to the named file, compressing it with pgzip when the
// name ends in ".gz".
func WriteFile(name string, fs []*Feature, header bool) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	var dst io.Writer = f
	if strings.HasSuffix(name, ".gz") {
		z := pgzip.NewWriter(f)
		defer func() {
			if cerr := z.Close(); err == nil {
				err = cerr
			}
		}()
		dst = z
	}
	w := NewWriter(dst, header)
	for _, feat := range fs {
		if err = w.Write(feat); err != nil {
			return err
		}
	}
	return w.Flush()
}
