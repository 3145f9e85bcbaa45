// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package genbank

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Reader reads GenBank records from a multi-record flat file.
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

func (r *Reader) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: line %d: %s", ErrBadRecord, r.line, fmt.Sprintf(format, args...))
}

const (
	featureIndent = 21
	keyIndent     = 5
)

// Read returns the next record, or io.EOF when no records remain.
func (r *Reader) Read() (*Record, error) {
	var (
		rec     *Record
		section string // "header", "features", "origin"
		feat    *Feature
		qual    *Qualifier
		raw     strings.Builder
		lastKey string
	)
	finishQual := func() {
		if qual == nil {
			return
		}
		v := raw.String()
		if strings.HasPrefix(v, `"`) {
			qual.Quoted = true
			v = strings.TrimPrefix(v, `"`)
			v = strings.TrimSuffix(v, `"`)
			v = strings.ReplaceAll(v, `""`, `"`)
		}
		qual.Value = v
		feat.Qualifiers = append(feat.Qualifiers, *qual)
		qual = nil
		raw.Reset()
	}
	finishFeat := func() {
		finishQual()
		if feat != nil {
			rec.Features = append(rec.Features, feat)
			feat = nil
		}
	}

	for r.sc.Scan() {
		r.line++
		line := strings.TrimRight(r.sc.Text(), "\r")
		if rec == nil {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if !strings.HasPrefix(line, "LOCUS") {
				return nil, r.errorf("expected LOCUS, got %q", line)
			}
			var err error
			rec, err = parseLocus(line)
			if err != nil {
				return nil, r.errorf("%v", err)
			}
			section = "header"
			continue
		}

		if strings.HasPrefix(line, "//") {
			finishFeat()
			return rec, nil
		}

		switch {
		case strings.HasPrefix(line, "FEATURES"):
			section = "features"
			continue
		case strings.HasPrefix(line, "ORIGIN"):
			finishFeat()
			section = "origin"
			continue
		case section == "features" && len(line) > 0 && line[0] != ' ':
			// BASE COUNT, CONTIG and similar close the feature table.
			finishFeat()
			section = "trailer"
			continue
		}

		switch section {
		case "header":
			rec.Header = append(rec.Header, line)
			if len(line) > 0 && line[0] != ' ' {
				lastKey, _, _ = strings.Cut(line, " ")
			}
			value := strings.TrimSpace(cut(line, 12))
			switch lastKey {
			case "DEFINITION":
				if rec.Definition != "" {
					rec.Definition += " "
				}
				rec.Definition += value
			case "ACCESSION":
				if rec.Accession == "" {
					rec.Accession, _, _ = strings.Cut(value, " ")
				}
			case "VERSION":
				if rec.Version == "" {
					rec.Version, _, _ = strings.Cut(value, " ")
				}
			}

		case "features":
			if len(line) > keyIndent && line[keyIndent] != ' ' {
				finishFeat()
				fields := strings.Fields(line)
				if len(fields) < 2 {
					return nil, r.errorf("malformed feature line %q", line)
				}
				feat = &Feature{Key: fields[0], Location: strings.Join(fields[1:], "")}
				continue
			}
			if feat == nil {
				return nil, r.errorf("qualifier outside feature: %q", line)
			}
			text := strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(text, "/") && !continuesQuote(qual, raw.String()):
				finishQual()
				key, value, _ := strings.Cut(text[1:], "=")
				qual = &Qualifier{Key: key}
				raw.WriteString(value)
			case qual == nil:
				feat.Location += text
			case qual.Key == "translation":
				raw.WriteString(text)
			default:
				raw.WriteByte(' ')
				raw.WriteString(text)
			}

		case "origin":
			for _, c := range []byte(line) {
				if ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c == '*' || c == '-' {
					rec.Seq = append(rec.Seq, c)
				}
			}
		}
	}
	if err := r.sc.Err(); err != nil {
		return nil, err
	}
	if rec != nil {
		return nil, r.errorf("unterminated record %q", rec.Name)
	}
	return nil, io.EOF
}

// continuesQuote returns whether the qualifier value being accumulated has
// an unclosed quote, so a line beginning with '/' is part of its text.
func continuesQuote(q *Qualifier, v string) bool {
	if q == nil || !strings.HasPrefix(v, `"`) {
		return false
	}
	return strings.Count(v, `"`)%2 == 1
}

func cut(s string, n int) string {
	if len(s) < n {
		return ""
	}
	return s[n:]
}

// parseLocus parses a LOCUS line of the form
//  LOCUS       name   length bp    molecule  topology division date
func parseLocus(line string) (*Record, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return nil, fmt.Errorf("malformed LOCUS line %q", line)
	}
	rec := &Record{Name: fields[1]}
	rest := fields[2:]
	if len(rest) >= 2 && (rest[1] == "bp" || rest[1] == "aa") {
		n, err := strconv.Atoi(rest[0])
		if err != nil {
			return nil, fmt.Errorf("malformed LOCUS length %q", rest[0])
		}
		rec.Length = n
		rest = rest[2:]
	}
	for i, f := range rest {
		switch {
		case f == "linear" || f == "circular":
			rec.Topology = f
		case isDate(f):
			rec.Date = f
		case i == 0:
			rec.Molecule = f
		default:
			rec.Division = f
		}
	}
	return rec, nil
}

func isDate(s string) bool {
	return len(s) == 11 && s[2] == '-' && s[6] == '-'
}

// ReadAll reads all records from r.
func ReadAll(r io.Reader) ([]*Record, error) {
	gr := NewReader(r)
	var recs []*Record
	for {
		rec, err := gr.Read()
		if err != nil {
			if err == io.EOF {
				return recs, nil
			}
			return recs, err
		}
		recs = append(recs, rec)
	}
}

// ReadFile reads all records from the named file.
func ReadFile(name string) ([]*Record, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	recs, err := ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return recs, nil
}
