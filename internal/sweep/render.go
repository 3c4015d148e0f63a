package sweep

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/NimbleMarkets/ntcharts/sparkline"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"
)

// Report formats.
const (
	FormatText  = "text"
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTOML  = "toml"
)

// Formats lists the supported report formats.
func Formats() []string {
	return []string{FormatText, FormatTable, FormatJSON, FormatYAML, FormatTOML}
}

// Render writes report to w in the given format.
func Render(w io.Writer, report *Report, format string) error {
	switch format {
	case FormatText, "":
		return renderText(w, report)
	case FormatTable:
		return renderTable(w, report)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(report)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// renderText writes one line per row, series separated by a header line.
func renderText(w io.Writer, report *Report) error {
	for i, s := range report.Series {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "# policy=%s branching=%d\n", s.Policy, report.Branching); err != nil {
			return err
		}
		for _, row := range s.Rows {
			if _, err := fmt.Fprintln(w, FormatLine(row)); err != nil {
				return err
			}
		}
	}
	return nil
}

// FormatLine renders a row in the classic comparison line format. NaN is
// spelled "NaN" here; other formats use "nan".
func FormatLine(row Row) string {
	ratio := row.Ratio.String()
	if math.IsNaN(float64(row.Ratio)) {
		ratio = "NaN"
	}
	return fmt.Sprintf("%4d, %10d: total-difference %9d, relative-difference %3s",
		row.Budget, row.Count, row.Delta, ratio)
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle      = lipgloss.NewStyle().Padding(0, 1)
	borderStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	sparklineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Padding(0, 1)
)

const (
	maxSparklineWidth = 64
	sparklineHeight   = 3
)

// countSparkline draws the node counts of a series, most recent budgets
// last. Wide series keep only the trailing maxSparklineWidth counts.
func countSparkline(rows []Row) string {
	if len(rows) == 0 {
		return ""
	}
	width := len(rows)
	if width > maxSparklineWidth {
		width = maxSparklineWidth
	}

	spark := sparkline.New(width, sparklineHeight)
	for _, row := range rows {
		spark.Push(float64(row.Count))
	}
	spark.Draw()
	return sparklineStyle.Render(spark.View())
}

// renderTable writes one bordered table per series.
func renderTable(w io.Writer, report *Report) error {
	for _, s := range report.Series {
		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(borderStyle).
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			}).
			Headers("budget", "count", "delta", "ratio")

		for _, row := range s.Rows {
			t.Row(
				strconv.FormatUint(row.Budget, 10),
				strconv.FormatUint(row.Count, 10),
				strconv.FormatInt(row.Delta, 10),
				row.Ratio.String(),
			)
		}

		title := fmt.Sprintf("%s (n=%d, %d nodes, %s)", s.Policy, report.Branching, s.Nodes, s.Duration)
		if _, err := fmt.Fprintln(w, headerStyle.Render(title)); err != nil {
			return err
		}
		if spark := countSparkline(s.Rows); spark != "" {
			if _, err := fmt.Fprintln(w, spark); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, t.String()); err != nil {
			return err
		}
	}
	return nil
}
