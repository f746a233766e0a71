// Package render writes calibration results for people: JSON for tooling and
// lipgloss tables for terminals. It makes no decisions of its own.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	service "github.com/okian/fairpay/internal/app"
	"github.com/okian/fairpay/internal/domain/equity"
	"github.com/okian/fairpay/internal/domain/hiring"
)

// Output formats.
const (
	FormatJSON  = "json"
	FormatTable = "table"
)

// ErrUnknownFormat is returned for formats other than FormatJSON and FormatTable.
var ErrUnknownFormat = errors.New("unknown output format")

var (
	colorAccent = lipgloss.Color("#20B9B4")
	colorMuted  = lipgloss.Color("#2C4A54")
	colorWarn   = lipgloss.Color("#F4D03F")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	warnStyle   = lipgloss.NewStyle().Foreground(colorWarn)
)

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Report writes r in the given format.
func Report(w io.Writer, format string, r *service.Report) error {
	return write(w, format, r, func() error { return Table(w, r) })
}

// write encodes v as JSON or calls asTable, by format.
func write(w io.Writer, format string, v any, asTable func() error) error {
	switch format {
	case FormatJSON:
		return JSON(w, v)
	case FormatTable:
		return asTable()
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
}

// Table writes a per-employee table followed by a summary. Stages missing
// from a partial report are shown as "-".
func Table(w io.Writer, r *service.Report) error {
	rank := make(map[int]int)
	combined := make(map[int]float64)
	if r.Ranking != nil {
		for _, e := range r.Ranking.Entries {
			rank[e.Index] = e.Rank
			combined[e.Index] = e.Combined
		}
	}

	t := newTable("#", "Productivity", "Salary", "Consistency", "Class", "Gap", "Combined", "Rank")
	for i, p := range r.Points {
		row := []string{
			strconv.Itoa(i),
			money(p.Productivity),
			money(p.Salary),
			money(at(r.Consistency.Adjustments, i)),
			"-", "-", "-", "-",
		}
		if r.Market != nil {
			res := r.Market.Results[i]
			row[4] = res.Classification.String()
			row[5] = money(res.Gap)
		}
		if r.Ranking != nil {
			row[6] = money(combined[i])
			row[7] = strconv.Itoa(rank[i])
		}
		t.Row(row...)
	}

	lines := []string{
		titleStyle.Render("Calibration " + r.RunID),
		t.String(),
		fmt.Sprintf("consistency raises: %s across %d employees",
			money(r.Consistency.Total), len(r.Consistency.Inconsistent)),
	}
	if r.Fit != nil {
		lines = append(lines, fmt.Sprintf("fitted curve: %.4f * x^%.4f (sse %.1f, %d iterations)",
			r.Fit.Params.Alpha, r.Fit.Params.Beta, r.Fit.SSE, r.Fit.Iterations))
	}
	if r.Market != nil {
		lines = append(lines, fmt.Sprintf("market curve: %.4f * x^%.4f, total gap %s",
			r.Market.Curve.Alpha, r.Market.Curve.Beta, money(r.Market.TotalGap)))
	}
	if !r.Complete() {
		lines = append(lines, warnStyle.Render("partial report: market stages did not run"))
	}
	return writeLines(w, lines)
}

// Assessment writes a candidate assessment in the given format.
func Assessment(w io.Writer, format string, a hiring.Assessment) error {
	return write(w, format, a, func() error { return assessmentTable(w, a) })
}

func assessmentTable(w io.Writer, a hiring.Assessment) error {
	t := newTable("Employee", "Shortfall")
	for _, inc := range a.Inconsistencies {
		t.Row(strconv.Itoa(inc.Index), money(inc.Shortfall))
	}

	lines := []string{
		titleStyle.Render(fmt.Sprintf("Offer %s for productivity %s",
			money(a.Offer.Salary), money(a.Offer.Productivity))),
		fmt.Sprintf("value surplus: %s", money(a.ValueSurplus)),
		fmt.Sprintf("consistent range: %s .. %s", bound(a.Range.Min, a.Range.HasMin), bound(a.Range.Max, a.Range.HasMax)),
	}
	if len(a.Inconsistencies) > 0 {
		lines = append(lines, t.String(),
			warnStyle.Render(fmt.Sprintf("inconsistency cost: %s", money(a.InconsistencyCost))))
	}
	return writeLines(w, lines)
}

// Equity writes a sampled equity multiple curve in the given format.
func Equity(w io.Writer, format string, points []equity.Point) error {
	return write(w, format, points, func() error { return equityTable(w, points) })
}

func equityTable(w io.Writer, points []equity.Point) error {
	t := newTable("Stage", "Multiple")
	for _, p := range points {
		t.Row(strconv.FormatFloat(p.Stage, 'f', 2, 64), strconv.FormatFloat(p.Multiple, 'f', 3, 64))
	}
	return writeLines(w, []string{t.String()})
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func writeLines(w io.Writer, lines []string) error {
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func bound(v float64, ok bool) string {
	if !ok {
		return "unbounded"
	}
	return money(v)
}

func at(s []float64, i int) float64 {
	if i < len(s) {
		return s[i]
	}
	return 0
}
