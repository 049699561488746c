package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/macrolens/liquiditylens/internal/liquidity"
	"github.com/macrolens/liquiditylens/pkg/models"
)

// ChartConfig holds rendering parameters for SVG charts.
type ChartConfig struct {
	Width        int
	Height       int
	MarginTop    int
	MarginRight  int
	MarginBottom int
	MarginLeft   int
	BgColor      string
	GridColor    string
	TextColor    string
	FontSize     int
	Title        string
}

// DefaultChartConfig returns sensible defaults for chart rendering.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:        800,
		Height:       400,
		MarginTop:    40,
		MarginRight:  60,
		MarginBottom: 50,
		MarginLeft:   70,
		BgColor:      "#ffffff",
		GridColor:    "#e8e8e8",
		TextColor:    "#333333",
		FontSize:     11,
	}
}

// plotArea returns the usable drawing area dimensions.
func (c ChartConfig) plotArea() (x, y, w, h int) {
	return c.MarginLeft, c.MarginTop,
		c.Width - c.MarginLeft - c.MarginRight,
		c.Height - c.MarginTop - c.MarginBottom
}

// YieldCurveChart renders one curve snapshot as an SVG line chart with
// maturity years on the X axis and yield percent on the Y axis.
func YieldCurveChart(snap *models.CurveSnapshot, stats *liquidity.CurveStats, cfg ChartConfig) string {
	if snap == nil || len(snap.Points) == 0 {
		return emptySVG(cfg, "No complete yield curve snapshot")
	}

	if cfg.Width == 0 {
		cfg = DefaultChartConfig()
	}
	if cfg.Title == "" {
		cfg.Title = "US Treasury Yield Curve " + snap.Date.Format("2006-01-02")
	}

	px, py, pw, ph := cfg.plotArea()

	minRate, maxRate := snap.Points[0].Rate, snap.Points[0].Rate
	maxYears := snap.Points[0].Years
	for _, p := range snap.Points {
		if p.Rate < minRate {
			minRate = p.Rate
		}
		if p.Rate > maxRate {
			maxRate = p.Rate
		}
		if p.Years > maxYears {
			maxYears = p.Years
		}
	}
	rateRange := maxRate - minRate
	if rateRange < 0.01 {
		rateRange = 1
	}
	minRate -= rateRange * 0.05
	maxRate += rateRange * 0.05
	rateRange = maxRate - minRate

	// Square-root X scale keeps the short end readable without the
	// 30Y tail crushing it.
	xOf := func(years float64) float64 {
		return float64(px) + math.Sqrt(years/maxYears)*float64(pw)
	}
	yOf := func(rate float64) float64 {
		return float64(py+ph) - (rate-minRate)/rateRange*float64(ph)
	}

	var sb strings.Builder
	sb.WriteString(svgHeader(cfg))
	sb.WriteString(fmt.Sprintf(`<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`,
		cfg.Width, cfg.Height, cfg.BgColor))
	sb.WriteString(fmt.Sprintf(`<text x="%d" y="20" font-size="14" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
		cfg.Width/2, cfg.TextColor, escapeXML(cfg.Title)))

	// Y-axis grid and labels.
	gridLines := 5
	for i := 0; i <= gridLines; i++ {
		rate := minRate + rateRange*float64(i)/float64(gridLines)
		y := py + ph - int(float64(ph)*float64(i)/float64(gridLines))
		sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-dasharray="3,3"/>`,
			px, y, px+pw, y, cfg.GridColor))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="%d" fill="%s" text-anchor="end">%.2f%%</text>`,
			px-5, y+4, cfg.FontSize, cfg.TextColor, rate))
	}

	// Curve path with point markers and maturity labels.
	var pathParts []string
	for _, p := range snap.Points {
		cmd := "L"
		if len(pathParts) == 0 {
			cmd = "M"
		}
		pathParts = append(pathParts, fmt.Sprintf("%s%.1f,%.1f", cmd, xOf(p.Years), yOf(p.Rate)))
	}
	color := "#2196f3"
	if stats != nil && stats.Inverted() {
		color = "#ef5350"
	}
	sb.WriteString(fmt.Sprintf(`<path d="%s" fill="none" stroke="%s" stroke-width="2"/>`,
		strings.Join(pathParts, " "), color))

	for _, p := range snap.Points {
		cx, cy := xOf(p.Years), yOf(p.Rate)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="3" fill="%s"/>`, cx, cy, color))
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%d" font-size="%d" fill="%s" text-anchor="middle">%s</text>`,
			cx, py+ph+18, cfg.FontSize-1, cfg.TextColor, escapeXML(p.Maturity)))
	}

	if stats != nil {
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="10" fill="%s">slope %.2f  min %.2f  max %.2f</text>`,
			px+10, py+12, cfg.TextColor, stats.Slope, stats.Min, stats.Max))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// IndicatorChart renders one frame column as an SVG time-series line
// chart. Dates without a value leave a gap in the line.
func IndicatorChart(f *liquidity.Frame, column string, cfg ChartConfig) string {
	if f == nil || f.IsEmpty() {
		return emptySVG(cfg, "No data")
	}

	if cfg.Width == 0 {
		cfg = DefaultChartConfig()
	}
	if cfg.Title == "" {
		cfg.Title = strings.ReplaceAll(column, "_", " ")
	}

	px, py, pw, ph := cfg.plotArea()

	dates := f.Dates()
	minVal, maxVal := math.MaxFloat64, -math.MaxFloat64
	n := 0
	for _, d := range dates {
		v, ok := f.Value(column, d)
		if !ok {
			continue
		}
		n++
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if n == 0 {
		return emptySVG(cfg, "No data for "+column)
	}

	vRange := maxVal - minVal
	if vRange < 0.001 {
		vRange = 1
	}
	minVal -= vRange * 0.05
	maxVal += vRange * 0.05
	vRange = maxVal - minVal

	var sb strings.Builder
	sb.WriteString(svgHeader(cfg))
	sb.WriteString(fmt.Sprintf(`<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`,
		cfg.Width, cfg.Height, cfg.BgColor))
	sb.WriteString(fmt.Sprintf(`<text x="%d" y="20" font-size="14" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
		cfg.Width/2, cfg.TextColor, escapeXML(cfg.Title)))

	gridLines := 5
	for i := 0; i <= gridLines; i++ {
		val := minVal + vRange*float64(i)/float64(gridLines)
		y := py + ph - int(float64(ph)*float64(i)/float64(gridLines))
		sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-dasharray="3,3"/>`,
			px, y, px+pw, y, cfg.GridColor))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="%d" fill="%s" text-anchor="end">%.2f</text>`,
			px-5, y+4, cfg.FontSize, cfg.TextColor, val))
	}

	span := float64(len(dates) - 1)
	if span == 0 {
		span = 1
	}
	var pathParts []string
	prevHadValue := false
	for i, d := range dates {
		v, ok := f.Value(column, d)
		if !ok {
			prevHadValue = false
			continue
		}
		cx := float64(px) + float64(i)/span*float64(pw)
		cy := float64(py+ph) - (v-minVal)/vRange*float64(ph)
		cmd := "L"
		if !prevHadValue {
			cmd = "M"
		}
		pathParts = append(pathParts, fmt.Sprintf("%s%.1f,%.1f", cmd, cx, cy))
		prevHadValue = true
	}
	sb.WriteString(fmt.Sprintf(`<path d="%s" fill="none" stroke="#2196f3" stroke-width="2"/>`,
		strings.Join(pathParts, " ")))

	// X-axis date labels.
	interval := len(dates) / 6
	if interval < 1 {
		interval = 1
	}
	for i := 0; i < len(dates); i += interval {
		cx := float64(px) + float64(i)/span*float64(pw)
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%d" font-size="%d" fill="%s" text-anchor="middle">%s</text>`,
			cx, py+ph+18, cfg.FontSize-1, cfg.TextColor, dates[i].Format("Jan 02")))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func formatDate(t time.Time) string { return t.Format("2006-01-02") }

func svgHeader(cfg ChartConfig) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
}

func emptySVG(cfg ChartConfig, msg string) string {
	if cfg.Width == 0 {
		cfg.Width = 400
	}
	if cfg.Height == 0 {
		cfg.Height = 200
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="%d" height="%d" fill="#f5f5f5"/><text x="%d" y="%d" text-anchor="middle" fill="#999" font-size="14">%s</text></svg>`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height, cfg.Width/2, cfg.Height/2, escapeXML(msg))
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}
