// Package report renders a liquidity collection run as a daily text
// report, a CSV history file, and SVG charts.
package report

import (
	"fmt"
	"strings"

	"github.com/macrolens/liquiditylens/internal/liquidity"
	"github.com/macrolens/liquiditylens/pkg/models"
)

// Outputs lists the artifact paths a run produced, for the report
// footer.
type Outputs struct {
	CSVPath   string
	ChartPath string
}

// indicatorUnits maps frame columns to display units for the text
// report.
var indicatorUnits = map[models.Indicator]string{
	models.IndicatorFedFundsRate:    "%",
	models.IndicatorTreasuryBill3M:  "%",
	models.IndicatorFundingSpread:   "pp",
	models.IndicatorReserveBalances: "$B",
}

// Render produces the daily text report for one collection run.
func Render(res *liquidity.Result, out Outputs, releases []models.ReleaseEvent) string {
	var sb strings.Builder

	sb.WriteString("US LIQUIDITY CONDITIONS\n")
	sb.WriteString(fmt.Sprintf("Run %s  window %s .. %s\n",
		res.FetchedAt.Format("2006-01-02 15:04 MST"), res.Start, res.End))
	sb.WriteString(strings.Repeat("-", 60) + "\n\n")

	if !res.HasData() {
		sb.WriteString("No indicator data could be fetched.\n")
		writeGaps(&sb, res.Gaps)
		return sb.String()
	}

	sb.WriteString("Latest readings\n")
	for _, ind := range []models.Indicator{
		models.IndicatorFedFundsRate,
		models.IndicatorTreasuryBill3M,
		models.IndicatorFundingSpread,
		models.IndicatorReserveBalances,
	} {
		writeLatest(&sb, res.Frame, ind)
	}
	sb.WriteString("\n")

	if res.CurveStats != nil {
		shape := "normal"
		if res.CurveStats.Inverted() {
			shape = "INVERTED"
		}
		sb.WriteString(fmt.Sprintf("Yield curve (%s): min %.2f%%  max %.2f%%  slope %+.2f (%s)\n",
			res.CurveStats.Date.Format("2006-01-02"),
			res.CurveStats.Min, res.CurveStats.Max, res.CurveStats.Slope, shape))
		if res.Snapshot != nil {
			for _, p := range res.Snapshot.Points {
				sb.WriteString(fmt.Sprintf("  %-4s %6.2f%%\n", p.Maturity, p.Rate))
			}
		}
	} else {
		sb.WriteString("Yield curve: no complete snapshot in window\n")
	}
	sb.WriteString("\n")

	writeGaps(&sb, res.Gaps)

	if len(releases) > 0 {
		sb.WriteString("Upcoming/recent data releases\n")
		for i, r := range releases {
			if i >= 5 {
				break
			}
			sb.WriteString(fmt.Sprintf("  %s  %s\n", r.Published.Format("Jan 02"), r.Title))
		}
		sb.WriteString("\n")
	}

	if out.CSVPath != "" || out.ChartPath != "" {
		sb.WriteString("Outputs\n")
		if out.CSVPath != "" {
			sb.WriteString("  CSV:   " + out.CSVPath + "\n")
		}
		if out.ChartPath != "" {
			sb.WriteString("  Chart: " + out.ChartPath + "\n")
		}
	}

	return sb.String()
}

func writeLatest(sb *strings.Builder, f *liquidity.Frame, ind models.Indicator) {
	name := string(ind)
	date, v, ok := f.Latest(name)
	if !ok {
		sb.WriteString(fmt.Sprintf("  %-18s (no data)\n", name))
		return
	}
	unit := indicatorUnits[ind]
	sb.WriteString(fmt.Sprintf("  %-18s %10.2f %-3s (%s)\n", name, v, unit, formatDate(date)))
}

func writeGaps(sb *strings.Builder, gaps []liquidity.Gap) {
	if len(gaps) == 0 {
		return
	}
	sb.WriteString("Gaps (indicators that could not be fetched)\n")
	for _, g := range gaps {
		sb.WriteString(fmt.Sprintf("  %s: %v\n", g.Indicator, g.Err))
	}
	sb.WriteString("\n")
}
