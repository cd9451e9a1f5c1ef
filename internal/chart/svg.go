package chart

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// Series colours by metric.
const (
	TokensColor = "#3B82F6"
	CostColor   = "#10B981"
)

// SVGOptions controls text and colour for RenderSVG.
type SVGOptions struct {
	Title      string
	Color      string               // stroke and fill; defaults to TokensColor
	Labels     []string             // x-axis labels, one per value
	FormatTick func(float64) string // y-axis label text; defaults to %g
}

// RenderSVG writes geom as a standalone SVG document. Empty geometry renders
// the grid with a "No data" caption.
func RenderSVG(w io.Writer, geom Geometry, opts SVGOptions) error {
	f := geom.Frame
	color := opts.Color
	if color == "" {
		color = TokensColor
	}
	format := opts.FormatTick
	if format == nil {
		format = func(v float64) string { return fmt.Sprintf("%g", v) }
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`+"\n",
		num(f.Width), num(f.Height), num(f.Width), num(f.Height))
	if opts.Title != "" {
		b.WriteString("  <title>")
		escape(&b, opts.Title)
		b.WriteString("</title>\n")
	}
	fmt.Fprintf(&b, `  <defs><linearGradient id="fill" x1="0" y1="0" x2="0" y2="1">`+
		`<stop offset="5%%" stop-color="%s" stop-opacity="0.3"/>`+
		`<stop offset="95%%" stop-color="%s" stop-opacity="0.05"/></linearGradient></defs>`+"\n", color, color)

	for _, l := range GridLines(f) {
		fmt.Fprintf(&b, `  <line x1="%s" y1="%s" x2="%s" y2="%s" stroke="rgba(255,255,255,0.1)" stroke-dasharray="2,2"/>`+"\n",
			num(l.X1), num(l.Y1), num(l.X2), num(l.Y2))
	}
	for _, t := range YTicks(geom.Max, f) {
		fmt.Fprintf(&b, `  <text x="%s" y="%s" text-anchor="end" font-size="12" fill="#a3a3a3">`,
			num(f.Padding-8), num(t.Pos+4))
		escape(&b, format(t.Value))
		b.WriteString("</text>\n")
	}

	if geom.Empty {
		fmt.Fprintf(&b, `  <text x="%s" y="%s" text-anchor="middle" fill="#a3a3a3">No data</text>`+"\n",
			num(f.Width/2), num(f.Height/2))
		b.WriteString("</svg>\n")
		_, err := w.Write(b.Bytes())
		return err
	}

	switch geom.Kind {
	case KindBar:
		for _, r := range geom.Bars {
			fmt.Fprintf(&b, `  <rect x="%s" y="%s" width="%s" height="%s" rx="4" fill="%s"/>`+"\n",
				num(r.X), num(r.Y), num(r.Width), num(r.Height), color)
		}
	case KindLine:
		fmt.Fprintf(&b, `  <path d="%s" fill="none" stroke="%s" stroke-width="3" stroke-linecap="round" stroke-linejoin="round"/>`+"\n",
			geom.Path, color)
	default:
		fmt.Fprintf(&b, `  <path d="%s" fill="url(#fill)" stroke="%s" stroke-width="2"/>`+"\n", geom.Path, color)
	}
	for _, p := range geom.Points {
		fmt.Fprintf(&b, `  <circle cx="%s" cy="%s" r="4" fill="%s" stroke="white" stroke-width="2"/>`+"\n",
			num(p.X), num(p.Y), color)
	}

	n := len(geom.Points)
	if geom.Kind == KindBar {
		n = len(geom.Bars)
	}
	for _, t := range XLabels(n, geom.Kind, f) {
		if t.Index >= len(opts.Labels) {
			break
		}
		fmt.Fprintf(&b, `  <text x="%s" y="%s" text-anchor="middle" font-size="12" fill="#a3a3a3">`,
			num(t.Pos), num(f.Height-10))
		escape(&b, opts.Labels[t.Index])
		b.WriteString("</text>\n")
	}

	b.WriteString("</svg>\n")
	_, err := w.Write(b.Bytes())
	return err
}

// DonutSlice is one labelled donut category.
type DonutSlice struct {
	Label      string
	Percentage float64
	Color      string
}

// RenderDonutSVG writes a ring of slices with a centre caption.
func RenderDonutSVG(w io.Writer, slices []DonutSlice, center string) error {
	const (
		size   = 160
		stroke = 16
	)
	mid := num(size / 2)
	pcts := make([]float64, len(slices))
	for i, s := range slices {
		pcts[i] = s.Percentage
	}
	arcs := Donut(pcts, DonutRadius)

	var b bytes.Buffer
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		size, size, size, size)
	fmt.Fprintf(&b, `  <g transform="rotate(-90 %s %s)">`+"\n", mid, mid)
	fmt.Fprintf(&b, `    <circle cx="%s" cy="%s" r="%d" fill="none" stroke="rgba(255,255,255,0.1)" stroke-width="%d"/>`+"\n",
		mid, mid, DonutRadius, stroke)
	for i, a := range arcs {
		fmt.Fprintf(&b, `    <circle cx="%s" cy="%s" r="%d" fill="none" stroke="%s" stroke-width="%d" `+
			`stroke-dasharray="%s" stroke-dashoffset="%s" transform="rotate(%s %s %s)">`,
			mid, mid, DonutRadius, slices[i].Color, stroke,
			num(a.Circumference), num(a.DashOffset), num(a.Rotation), mid, mid)
		b.WriteString("<title>")
		escape(&b, fmt.Sprintf("%s %.1f%%", slices[i].Label, a.Percentage))
		b.WriteString("</title></circle>\n")
	}
	b.WriteString("  </g>\n")
	if center != "" {
		fmt.Fprintf(&b, `  <text x="%s" y="%s" text-anchor="middle" dominant-baseline="middle" fill="white">`, mid, mid)
		escape(&b, center)
		b.WriteString("</text>\n")
	}
	b.WriteString("</svg>\n")
	_, err := w.Write(b.Bytes())
	return err
}

func escape(b *bytes.Buffer, s string) {
	// EscapeText only fails when the writer does; bytes.Buffer never does.
	_ = xml.EscapeText(b, []byte(s))
}
