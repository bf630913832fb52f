package dashboard

import (
	"fmt"
	"html/template"
	"sort"
	"strings"

	"github.com/symfluence/snowcover/backend/internal/snow"
)

// Chart geometry. The SVG scales to its container via viewBox.
const (
	chartWidth   = 1000
	chartHeight  = 220
	chartPadLeft = 44
	chartPadBot  = 24
	chartPadTop  = 10
)

// seriesChartSVG renders the time series as an inline SVG line chart
// with a dashed mean rule. The y axis is fixed to 0-100 percent.
func seriesChartSVG(series snow.Series, mean float64) template.HTML {
	var b strings.Builder

	plotW := chartWidth - chartPadLeft - 10
	plotH := chartHeight - chartPadTop - chartPadBot

	yFor := func(pct float64) float64 {
		return float64(chartPadTop) + float64(plotH)*(1-pct/100)
	}

	fmt.Fprintf(&b, `<svg viewBox="0 0 %d %d" width="100%%" preserveAspectRatio="none" role="img">`,
		chartWidth, chartHeight)

	// Axes and y labels
	fmt.Fprintf(&b, `<line class="axis" x1="%d" y1="%d" x2="%d" y2="%d"/>`,
		chartPadLeft, chartPadTop, chartPadLeft, chartPadTop+plotH)
	fmt.Fprintf(&b, `<line class="axis" x1="%d" y1="%d" x2="%d" y2="%d"/>`,
		chartPadLeft, chartPadTop+plotH, chartPadLeft+plotW, chartPadTop+plotH)
	for _, tick := range []float64{0, 25, 50, 75, 100} {
		fmt.Fprintf(&b, `<text x="%d" y="%.1f" text-anchor="end">%.0f%%</text>`,
			chartPadLeft-4, yFor(tick)+3, tick)
	}

	n := series.Len()
	if n > 0 {
		// Date labels at both ends
		fmt.Fprintf(&b, `<text x="%d" y="%d">%s</text>`,
			chartPadLeft, chartHeight-6, series.Samples[0].Date.Format("2006-01-02"))
		fmt.Fprintf(&b, `<text x="%d" y="%d" text-anchor="end">%s</text>`,
			chartPadLeft+plotW, chartHeight-6, series.Samples[n-1].Date.Format("2006-01-02"))

		// Mean rule
		fmt.Fprintf(&b, `<line class="mean-line" x1="%d" y1="%.1f" x2="%d" y2="%.1f"/>`,
			chartPadLeft, yFor(mean), chartPadLeft+plotW, yFor(mean))

		// Series polyline, x spaced by sample index
		b.WriteString(`<polyline class="series-line" points="`)
		for i, s := range series.Samples {
			x := float64(chartPadLeft)
			if n > 1 {
				x += float64(plotW) * float64(i) / float64(n-1)
			}
			fmt.Fprintf(&b, "%.1f,%.1f ", x, yFor(s.SnowCoverPercent))
		}
		b.WriteString(`"/>`)
	}

	b.WriteString(`</svg>`)
	return template.HTML(b.String())
}

// sweChartSVG renders the estimated snow water equivalent series for
// point analyses. The y axis scales to the series maximum.
func sweChartSVG(series snow.Series) template.HTML {
	var b strings.Builder

	plotW := chartWidth - chartPadLeft - 10
	plotH := chartHeight - chartPadTop - chartPadBot

	maxSWE := 0.0
	for _, s := range series.Samples {
		if s.SWEEstimate > maxSWE {
			maxSWE = s.SWEEstimate
		}
	}
	if maxSWE == 0 {
		maxSWE = 1
	}

	yFor := func(v float64) float64 {
		return float64(chartPadTop) + float64(plotH)*(1-v/maxSWE)
	}

	fmt.Fprintf(&b, `<svg viewBox="0 0 %d %d" width="100%%" preserveAspectRatio="none" role="img">`,
		chartWidth, chartHeight)

	fmt.Fprintf(&b, `<line class="axis" x1="%d" y1="%d" x2="%d" y2="%d"/>`,
		chartPadLeft, chartPadTop, chartPadLeft, chartPadTop+plotH)
	fmt.Fprintf(&b, `<line class="axis" x1="%d" y1="%d" x2="%d" y2="%d"/>`,
		chartPadLeft, chartPadTop+plotH, chartPadLeft+plotW, chartPadTop+plotH)
	for _, tick := range []float64{0, maxSWE / 2, maxSWE} {
		fmt.Fprintf(&b, `<text x="%d" y="%.1f" text-anchor="end">%.0f</text>`,
			chartPadLeft-4, yFor(tick)+3, tick)
	}

	n := series.Len()
	if n > 0 {
		fmt.Fprintf(&b, `<text x="%d" y="%d">%s</text>`,
			chartPadLeft, chartHeight-6, series.Samples[0].Date.Format("2006-01-02"))
		fmt.Fprintf(&b, `<text x="%d" y="%d" text-anchor="end">%s</text>`,
			chartPadLeft+plotW, chartHeight-6, series.Samples[n-1].Date.Format("2006-01-02"))

		b.WriteString(`<polyline class="swe-line" points="`)
		for i, s := range series.Samples {
			x := float64(chartPadLeft)
			if n > 1 {
				x += float64(plotW) * float64(i) / float64(n-1)
			}
			fmt.Fprintf(&b, "%.1f,%.1f ", x, yFor(s.SWEEstimate))
		}
		b.WriteString(`"/>`)
	}

	b.WriteString(`</svg>`)
	return template.HTML(b.String())
}

// barRow is one row of a horizontal bar chart or summary table.
type barRow struct {
	Label    string
	Value    float64
	Std      float64
	Count    int
	WidthPct float64
}

// seasonalBars builds month rows ordered Jan-Dec, scaled to 0-100.
func seasonalBars(seasonal map[int]snow.GroupStats) []barRow {
	months := sortedIntKeys(seasonal)
	rows := make([]barRow, 0, len(months))
	for _, m := range months {
		g := seasonal[m]
		rows = append(rows, barRow{
			Label:    snow.MonthName(m),
			Value:    g.Mean,
			Std:      g.Std,
			Count:    g.Count,
			WidthPct: g.Mean,
		})
	}
	return rows
}

// annualRows builds year rows in ascending order.
func annualRows(annual map[int]snow.GroupStats) []barRow {
	years := sortedIntKeys(annual)
	rows := make([]barRow, 0, len(years))
	for _, y := range years {
		g := annual[y]
		rows = append(rows, barRow{
			Label:    fmt.Sprintf("%d", y),
			Value:    g.Mean,
			Std:      g.Std,
			Count:    g.Count,
			WidthPct: g.Mean,
		})
	}
	return rows
}

// histogramBars groups samples into ten-percent bins. Bar widths scale
// to the fullest bin so short series still draw visibly.
func histogramBars(series snow.Series) []barRow {
	counts := make([]int, 10)
	for _, s := range series.Samples {
		bin := int(s.SnowCoverPercent / 10)
		if bin > 9 {
			bin = 9
		}
		counts[bin]++
	}

	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}

	rows := make([]barRow, 0, len(counts))
	for i, c := range counts {
		width := 0.0
		if maxCount > 0 {
			width = float64(c) / float64(maxCount) * 100
		}
		rows = append(rows, barRow{
			Label:    fmt.Sprintf("%d-%d%%", i*10, (i+1)*10),
			Count:    c,
			WidthPct: width,
		})
	}
	return rows
}

func sortedIntKeys(m map[int]snow.GroupStats) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
