// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package genbank

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

const lineWidth = 79

// Writer writes GenBank records.
type Writer struct {
	w *bufio.Writer
}

// NewWriter returns a Writer writing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write writes rec followed by the record terminator.
func (w *Writer) Write(rec *Record) error {
	b := w.w
	mol := rec.Molecule
	if mol == "" {
		mol = "DNA"
	}
	top := rec.Topology
	if top == "" {
		top = "linear"
	}
	length := rec.Length
	if len(rec.Seq) != 0 {
		length = len(rec.Seq)
	}
	fmt.Fprintf(b, "LOCUS       %-16s %11d bp    %-6s  %-8s %s %s\n",
		rec.Name, length, mol, top, rec.Division, rec.Date)

	if len(rec.Header) != 0 {
		for _, l := range rec.Header {
			fmt.Fprintln(b, l)
		}
	} else {
		def := rec.Definition
		if def == "" {
			def = "."
		}
		writeWrapped(b, "DEFINITION  ", def, ' ')
		if rec.Accession != "" {
			fmt.Fprintf(b, "ACCESSION   %s\n", rec.Accession)
		}
		if rec.Version != "" {
			fmt.Fprintf(b, "VERSION     %s\n", rec.Version)
		}
	}

	fmt.Fprintln(b, "FEATURES             Location/Qualifiers")
	pad := strings.Repeat(" ", featureIndent)
	for _, f := range rec.Features {
		writeWrapped(b, fmt.Sprintf("     %-16s", f.Key), f.Location, ',')
		for _, q := range f.Qualifiers {
			text := "/" + q.Key
			if q.Quoted {
				text += `="` + strings.ReplaceAll(q.Value, `"`, `""`) + `"`
			} else if q.Value != "" {
				text += "=" + q.Value
			}
			sep := byte(' ')
			if q.Key == "translation" {
				sep = 0
			}
			writeWrapped(b, pad, text, sep)
		}
	}

	fmt.Fprintln(b, "ORIGIN")
	seq := bytes.ToLower(rec.Seq)
	for i := 0; i < len(seq); i += 60 {
		fmt.Fprintf(b, "%9d", i+1)
		for j := i; j < i+60 && j < len(seq); j += 10 {
			fmt.Fprintf(b, " %s", seq[j:min(j+10, len(seq))])
		}
		fmt.Fprintln(b)
	}
	_, err := fmt.Fprintln(b, "//")
	return err
}

// writeWrapped writes text after prefix, wrapping at lineWidth with
// continuation lines indented to the prefix width. Breaks are made after
// sep where possible; a zero sep breaks at the line width.
func writeWrapped(w io.Writer, prefix, text string, sep byte) {
	indent := strings.Repeat(" ", len(prefix))
	width := lineWidth - len(prefix)
	first := true
	for {
		p := indent
		if first {
			p = prefix
			first = false
		}
		if len(text) <= width {
			fmt.Fprintf(w, "%s%s\n", p, text)
			return
		}
		cut := width
		if sep != 0 {
			if i := strings.LastIndexByte(text[:width], sep); i > 0 {
				cut = i + 1
			}
		}
		fmt.Fprintf(w, "%s%s\n", p, strings.TrimRight(text[:cut], " "))
		text = text[cut:]
	}
}

// Flush flushes the underlying writer.
func (w *Writer) Flush() error { return w.w.Flush() }

// WriteFile writes recs to the named file.
func WriteFile(name string, recs []*Record) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	w := NewWriter(f)
	for _, rec := range recs {
		if err = w.Write(rec); err != nil {
			f.Close()
			return err
		}
	}
	if err = w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
