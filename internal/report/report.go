// Package report renders analysis results for the terminal: summary
// with metric bars, per-level heatmaps, top combinations. Output is
// deterministic for a given result.
package report

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"lectio/internal/analysis"
	"lectio/internal/matrix"
)

// Palette — restrained; the data is the point.
var (
	colTitle = lipgloss.Color("#8B5CF6")
	colDim   = lipgloss.Color("#94A3B8")
	colWarn  = lipgloss.Color("#F97316")
	colBad   = lipgloss.Color("#F43F5E")
	colGood  = lipgloss.Color("#22C55E")

	// heat tiers from cold to hot, indexed by cell intensity quartile.
	heatColors = []color.Color{
		lipgloss.Color("#334155"),
		lipgloss.Color("#14B8A6"),
		lipgloss.Color("#F59E0B"),
		lipgloss.Color("#F43F5E"),
	}

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colTitle)
	dimStyle   = lipgloss.NewStyle().Foreground(colDim)
	warnStyle  = lipgloss.NewStyle().Foreground(colWarn)
	badStyle   = lipgloss.NewStyle().Foreground(colBad)
	goodStyle  = lipgloss.NewStyle().Foreground(colGood)
)

const barWidth = 24

// RenderSummary renders job status, completeness counts and the four
// complexity metrics as labeled bars.
func RenderSummary(job *analysis.Job) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Analysis "+job.ID) + "\n")
	b.WriteString(statusLine(job) + "\n")

	if job.Result == nil {
		return b.String()
	}
	res := job.Result

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Utterances: %d total, %s classified, %s unclassified, %s low-confidence\n",
		res.Statistics.TotalUtterances,
		goodStyle.Render(fmt.Sprintf("%d", res.Counts.Classified)),
		badStyle.Render(fmt.Sprintf("%d", res.Counts.Unclassified)),
		warnStyle.Render(fmt.Sprintf("%d", res.Counts.LowConfidence)),
	))

	m := res.Statistics.EducationalComplexity
	b.WriteString("\n" + titleStyle.Render("Educational complexity") + "\n")
	b.WriteString(metricBar("cognitive diversity", m.CognitiveDiversity))
	b.WriteString(metricBar("instructional variety", m.InstructionalVariety))
	b.WriteString(metricBar("progression quality", m.ProgressionQuality))
	b.WriteString(metricBar("overall", m.OverallComplexity))

	if len(job.Errors) > 0 {
		b.WriteString("\n" + badStyle.Render("Unclassified utterances") + "\n")
		for _, e := range job.Errors {
			b.WriteString(fmt.Sprintf("  %s: %s\n", e.UtteranceID, dimStyle.Render(e.Message)))
		}
	}
	return b.String()
}

func statusLine(job *analysis.Job) string {
	var style lipgloss.Style
	switch job.Status {
	case analysis.StatusCompleted:
		style = goodStyle
	case analysis.StatusFailed, analysis.StatusCancelled:
		style = badStyle
	default:
		style = warnStyle
	}
	line := "Status: " + style.Render(string(job.Status))
	if job.Message != "" {
		line += dimStyle.Render(" (" + job.Message + ")")
	}
	return line
}

// metricBar renders one metric as `name  ████████░░ 0.80`.
func metricBar(name string, value float64) string {
	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}
	filled := int(value*barWidth + 0.5)
	bar := goodStyle.Render(strings.Repeat("█", filled)) +
		dimStyle.Render(strings.Repeat("░", barWidth-filled))
	return fmt.Sprintf("  %-22s %s %.2f\n", name, bar, value)
}

// RenderHeatmap renders one level's stage×context grid with intensity
// shading. Axis order follows the matrix dimensions, so repeated runs
// line up.
func RenderHeatmap(m *matrix.Matrix, level string) string {
	hm, ok := m.HeatmapData[level]
	if !ok {
		return dimStyle.Render("no heatmap for level "+level) + "\n"
	}

	max := 0
	for _, row := range hm.Cells {
		for _, c := range row {
			if c > max {
				max = c
			}
		}
	}

	colWidth := 0
	for _, ctx := range m.Dimensions.Context {
		if len(ctx) > colWidth {
			colWidth = len(ctx)
		}
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Level "+level) + "\n")

	b.WriteString(fmt.Sprintf("  %-14s", ""))
	for _, ctx := range m.Dimensions.Context {
		b.WriteString(fmt.Sprintf(" %*s", colWidth, ctx))
	}
	b.WriteString("\n")

	for i, stage := range m.Dimensions.Stage {
		b.WriteString(fmt.Sprintf("  %-14s", stage))
		for j := range m.Dimensions.Context {
			count := hm.Cells[i][j]
			cell := fmt.Sprintf(" %*d", colWidth, count)
			b.WriteString(heatStyle(count, max).Render(cell))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func heatStyle(count, max int) lipgloss.Style {
	if count == 0 || max == 0 {
		return dimStyle
	}
	tier := count * len(heatColors) / (max + 1)
	if tier >= len(heatColors) {
		tier = len(heatColors) - 1
	}
	return lipgloss.NewStyle().Foreground(heatColors[tier])
}

// RenderTopCombinations renders the ranked combination table.
func RenderTopCombinations(res *analysis.Result, k int) string {
	combos := res.Statistics.TopCombinations
	if k > 0 && len(combos) > k {
		combos = combos[:k]
	}
	if len(combos) == 0 {
		return dimStyle.Render("no combinations recorded") + "\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Top combinations") + "\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %-14s %-14s %-6s %6s %8s", "stage", "context", "level", "count", "share")) + "\n")
	for _, c := range combos {
		b.WriteString(fmt.Sprintf("  %-14s %-14s %-6s %6d %7.1f%%\n",
			c.Stage, c.Context, c.Level, c.Count, c.Percent))
	}
	return b.String()
}
