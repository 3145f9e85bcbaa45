// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package featplot draws annotated features as gene maps and summary
// counts as bar charts.
package featplot

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/biogo/annotools/gff3"
)

// Defaults for gene maps.
const (
	DefaultTitle  = "Gene Plot"
	DefaultLabel  = "Gene"
	DefaultColor  = "#ccccff"
	DefaultWidth  = 20
	DefaultHeight = 5
)

// Unit is the length of one width or height unit.
const Unit = vg.Inch

var ErrBadColor = errors.New("featplot: invalid colour")

// ParseColor parses a colour in #rrggbb or #rgb hex form.
func ParseColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// Select returns the features of fs on contig with the given type that lie
// entirely within the 0-based half-open window [start, end).
func Select(fs []*gff3.Feature, contig, typ string, start, end int) []*gff3.Feature {
	var sel []*gff3.Feature
	for _, f := range fs {
		if f.SeqID != contig || f.Type != typ {
			continue
		}
		if f.Start-1 >= start && f.End <= end {
			sel = append(sel, f)
		}
	}
	return sel
}

// Track is a set of features drawn in one colour under one legend entry.
type Track struct {
	Label    string
	Color    color.Color
	Features []*gff3.Feature
}

// Name returns the label drawn for f.
func Name(f *gff3.Feature) string {
	if n := f.Attributes.Get("Name"); n != "" {
		return n
	}
	return f.ID()
}

type placed struct {
	f     *gff3.Feature
	track int
	level int
}

// levels assigns features from all tracks to levels so that features on
// the same level do not overlap.
func levels(tracks []Track) []placed {
	var all []placed
	for i, t := range tracks {
		for _, f := range t.Features {
			all = append(all, placed{f: f, track: i})
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].f.Start < all[j].f.Start })
	var ends []int
	for i := range all {
		l := 0
		for ; l < len(ends); l++ {
			if ends[l] < all[i].f.Start {
				break
			}
		}
		if l == len(ends) {
			ends = append(ends, 0)
		}
		ends[l] = all[i].f.End
		all[i].level = l
	}
	return all
}

// arrow returns the outline of f at height y. The head length is at most
// head base pairs.
func arrow(f *gff3.Feature, y, h, head float64) plotter.XYs {
	s, e := float64(f.Start-1), float64(f.End)
	head = math.Min(head, e-s)
	switch f.Strand {
	case '+':
		return plotter.XYs{{X: s, Y: y - h}, {X: e - head, Y: y - h}, {X: e, Y: y}, {X: e - head, Y: y + h}, {X: s, Y: y + h}}
	case '-':
		return plotter.XYs{{X: e, Y: y - h}, {X: s + head, Y: y - h}, {X: s, Y: y}, {X: s + head, Y: y + h}, {X: e, Y: y + h}}
	default:
		return plotter.XYs{{X: s, Y: y - h}, {X: e, Y: y - h}, {X: e, Y: y + h}, {X: s, Y: y + h}}
	}
}

// GeneMap returns a plot of the features in tracks over the window
// [start, end). Each track gets one legend entry under the plot title.
func GeneMap(tracks []Track, title string, start, end int) (*plot.Plot, error) {
	if end <= start {
		return nil, fmt.Errorf("featplot: empty window [%d, %d)", start, end)
	}
	p := plot.New()
	p.Legend.Top = true
	p.Legend.Add(title)
	p.X.Label.Text = "Position"
	p.X.Min, p.X.Max = float64(start), float64(end)
	p.HideY()

	const halfHeight = 0.3
	head := 0.02 * float64(end-start)
	var (
		xys    plotter.XYs
		labels []string
		top    float64
	)
	thumbs := make([]*plotter.Polygon, len(tracks))
	for _, pl := range levels(tracks) {
		t := tracks[pl.track]
		y := float64(pl.level)
		poly, err := plotter.NewPolygon(arrow(pl.f, y, halfHeight, head))
		if err != nil {
			return nil, err
		}
		poly.Color = t.Color
		p.Add(poly)
		thumbs[pl.track] = poly
		xys = append(xys, plotter.XY{X: float64(pl.f.Start-1+pl.f.End) / 2, Y: y + halfHeight})
		labels = append(labels, Name(pl.f))
		top = math.Max(top, y)
	}
	for i, t := range tracks {
		if thumbs[i] != nil {
			p.Legend.Add(t.Label, thumbs[i])
		}
	}
	if len(xys) != 0 {
		l, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
		if err != nil {
			return nil, err
		}
		l.Offset = vg.Point{Y: vg.Points(2)}
		for i := range l.TextStyle {
			l.TextStyle[i].XAlign = -0.5
		}
		p.Add(l)
	}
	p.Y.Min, p.Y.Max = -1, top+1
	return p, nil
}

// BarChart returns a bar chart of values labelled by names.
func BarChart(names []string, values []float64, title, ylabel string) (*plot.Plot, error) {
	if len(names) != len(values) {
		return nil, fmt.Errorf("featplot: %d names for %d values", len(names), len(values))
	}
	if len(values) == 0 {
		return nil, errors.New("featplot: no values to plot")
	}
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = ylabel
	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(20))
	if err != nil {
		return nil, err
	}
	bars.Color = color.RGBA{R: 0x44, G: 0x77, B: 0xaa, A: 0xff}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(names...)
	return p, nil
}

// Save writes p to each of the named files, choosing the image format from
// the file extension. Width and height are in inches.
func Save(p *plot.Plot, width, height float64, names ...string) error {
	for _, n := range names {
		if err := p.Save(vg.Length(width)*Unit, vg.Length(height)*Unit, n); err != nil {
			return err
		}
	}
	return nil
}
