package export

import (
	"fmt"
	"html"
	"io"
	"math"
	"sort"
	"strings"
)

// SVG constants for plot generation.
const (
	SVGVersion   = "1.1"
	SVGNamespace = "http://www.w3.org/2000/svg"
)

// CurvePoint is one point of a plotted curve. Param is the scanned parameter
// that produced it (for example beta_hat or the step index).
type CurvePoint struct {
	Param float64
	X     float64
	Y     float64
}

// SVGConfig specifies options for WriteCurveSVG.
type SVGConfig struct {
	// Width and Height of the SVG in pixels.
	// Default: 640 × 400
	Width  int
	Height int

	// Padding is the margin around the plot area.
	// Default: 60
	Padding int

	// Title is drawn above the plot when non-empty.
	Title string

	// XLabel and YLabel name the axes.
	XLabel string
	YLabel string

	// SortByX orders the polyline by x instead of by Param.
	// Default: false
	SortByX bool

	// Diagonal draws the y = x reference line.
	Diagonal bool

	// Marker draws a vertical line at MarkerX when it falls in range.
	Marker  bool
	MarkerX float64

	// LabelEnds annotates the first and last points with their Param.
	LabelEnds bool

	// LineColor of the curve.
	// Default: "#2563eb"
	LineColor string

	// MarkerColor of the diagonal and the vertical marker.
	// Default: "#dc2626"
	MarkerColor string
}

// DefaultSVGConfig returns a 640×400 plot with blue line and red markers.
func DefaultSVGConfig() *SVGConfig {
	return &SVGConfig{
		Width:       640,
		Height:      400,
		Padding:     60,
		LineColor:   "#2563eb",
		MarkerColor: "#dc2626",
	}
}

type bounds struct {
	minX, maxX, minY, maxY float64
}

// WriteCurveSVG plots points as a polyline with circle markers. Points are
// ordered by Param unless SortByX is set; NaN coordinates are skipped.
func WriteCurveSVG(w io.Writer, points []CurvePoint, cfg *SVGConfig) error {
	if cfg == nil {
		cfg = DefaultSVGConfig()
	}
	pts := make([]CurvePoint, 0, len(points))
	for _, p := range points {
		if !math.IsNaN(p.X) && !math.IsNaN(p.Y) {
			pts = append(pts, p)
		}
	}
	if len(pts) == 0 {
		return fmt.Errorf("WriteCurveSVG: %w", ErrNoPoints)
	}
	sort.SliceStable(pts, func(i, j int) bool {
		if cfg.SortByX {
			return pts[i].X < pts[j].X
		}
		return pts[i].Param < pts[j].Param
	})

	b := curveBounds(pts, cfg)
	pw := float64(cfg.Width - 2*cfg.Padding)
	ph := float64(cfg.Height - 2*cfg.Padding)
	sx := func(x float64) float64 { return (x - b.minX) / (b.maxX - b.minX) * pw }
	sy := func(y float64) float64 { return ph - (y-b.minY)/(b.maxY-b.minY)*ph }

	var sb strings.Builder
	sb.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	fmt.Fprintf(&sb, "<svg version=%q xmlns=%q width=\"%d\" height=\"%d\" viewBox=\"0 0 %d %d\">\n",
		SVGVersion, SVGNamespace, cfg.Width, cfg.Height, cfg.Width, cfg.Height)
	fmt.Fprintf(&sb, "  <rect width=\"%d\" height=\"%d\" fill=\"#ffffff\"/>\n", cfg.Width, cfg.Height)
	fmt.Fprintf(&sb, "  <g transform=\"translate(%d,%d)\">\n", cfg.Padding, cfg.Padding)

	// Axes with min/max ticks.
	fmt.Fprintf(&sb, "    <line class=\"axis\" x1=\"0\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"#374151\"/>\n", ph, pw, ph)
	fmt.Fprintf(&sb, "    <line class=\"axis\" x1=\"0\" y1=\"0\" x2=\"0\" y2=\"%.2f\" stroke=\"#374151\"/>\n", ph)
	fmt.Fprintf(&sb, "    <text x=\"0\" y=\"%.2f\" font-size=\"11\" text-anchor=\"middle\">%s</text>\n", ph+16, tick(b.minX))
	fmt.Fprintf(&sb, "    <text x=\"%.2f\" y=\"%.2f\" font-size=\"11\" text-anchor=\"middle\">%s</text>\n", pw, ph+16, tick(b.maxX))
	fmt.Fprintf(&sb, "    <text x=\"-6\" y=\"%.2f\" font-size=\"11\" text-anchor=\"end\">%s</text>\n", ph, tick(b.minY))
	fmt.Fprintf(&sb, "    <text x=\"-6\" y=\"0\" font-size=\"11\" text-anchor=\"end\">%s</text>\n", tick(b.maxY))

	if cfg.Diagonal {
		lo := math.Max(b.minX, b.minY)
		hi := math.Min(b.maxX, b.maxY)
		if lo < hi {
			fmt.Fprintf(&sb, "    <line class=\"diagonal\" x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=%q/>\n",
				sx(lo), sy(lo), sx(hi), sy(hi), cfg.MarkerColor)
		}
	}
	if cfg.Marker && cfg.MarkerX >= b.minX && cfg.MarkerX <= b.maxX {
		fmt.Fprintf(&sb, "    <line class=\"marker\" x1=\"%.2f\" y1=\"0\" x2=\"%.2f\" y2=\"%.2f\" stroke=%q/>\n",
			sx(cfg.MarkerX), sx(cfg.MarkerX), ph, cfg.MarkerColor)
	}

	coords := make([]string, len(pts))
	for i, p := range pts {
		coords[i] = fmt.Sprintf("%.2f,%.2f", sx(p.X), sy(p.Y))
	}
	fmt.Fprintf(&sb, "    <polyline class=\"curve\" fill=\"none\" stroke=%q stroke-width=\"2\" points=\"%s\"/>\n",
		cfg.LineColor, strings.Join(coords, " "))
	for _, p := range pts {
		fmt.Fprintf(&sb, "    <circle cx=\"%.2f\" cy=\"%.2f\" r=\"3\" fill=%q/>\n", sx(p.X), sy(p.Y), cfg.LineColor)
	}
	if cfg.LabelEnds {
		for _, p := range []CurvePoint{pts[0], pts[len(pts)-1]} {
			fmt.Fprintf(&sb, "    <text class=\"param\" x=\"%.2f\" y=\"%.2f\" font-size=\"11\">%.2f</text>\n",
				sx(p.X)+5, sy(p.Y)-5, p.Param)
		}
	}
	sb.WriteString("  </g>\n")

	if cfg.Title != "" {
		fmt.Fprintf(&sb, "  <text x=\"%d\" y=\"%d\" font-size=\"16\" text-anchor=\"middle\">%s</text>\n",
			cfg.Width/2, cfg.Padding/2, html.EscapeString(cfg.Title))
	}
	if cfg.XLabel != "" {
		fmt.Fprintf(&sb, "  <text x=\"%d\" y=\"%d\" font-size=\"13\" text-anchor=\"middle\">%s</text>\n",
			cfg.Width/2, cfg.Height-cfg.Padding/4, html.EscapeString(cfg.XLabel))
	}
	if cfg.YLabel != "" {
		fmt.Fprintf(&sb, "  <text x=\"%d\" y=\"%d\" font-size=\"13\" text-anchor=\"middle\" transform=\"rotate(-90 %d %d)\">%s</text>\n",
			cfg.Padding/3, cfg.Height/2, cfg.Padding/3, cfg.Height/2, html.EscapeString(cfg.YLabel))
	}
	sb.WriteString("</svg>\n")

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("WriteCurveSVG: %w", err)
	}
	return nil
}

func curveBounds(pts []CurvePoint, cfg *SVGConfig) bounds {
	b := bounds{minX: pts[0].X, maxX: pts[0].X, minY: pts[0].Y, maxY: pts[0].Y}
	for _, p := range pts[1:] {
		b.minX = math.Min(b.minX, p.X)
		b.maxX = math.Max(b.maxX, p.X)
		b.minY = math.Min(b.minY, p.Y)
		b.maxY = math.Max(b.maxY, p.Y)
	}
	if cfg.Marker {
		b.minX = math.Min(b.minX, cfg.MarkerX)
		b.maxX = math.Max(b.maxX, cfg.MarkerX)
	}
	if b.minX == b.maxX {
		b.minX--
		b.maxX++
	}
	if b.minY == b.maxY {
		b.minY--
		b.maxY++
	}
	return b
}

func tick(v float64) string {
	return fmt.Sprintf("%.3g", v)
}
