package services

import (
	"database/sql"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"vehicle-insights/models"
)

const undefinedCell = "n/a"

var (
	bannerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	textCell     = lipgloss.NewStyle().Padding(0, 1)
	numberCell   = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
)

// Printer renders analysis reports as terminal tables. Numbers use the
// Brazilian convention: R$ 1.234,56, 12.345 and 68,27%.
type Printer struct {
	w io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Print renders every section of the report.
func (p *Printer) Print(r *models.Report) {
	sep := strings.Repeat("═", 72)
	fmt.Fprintln(p.w, bannerStyle.Render(sep))
	fmt.Fprintln(p.w, bannerStyle.Render("  USED VEHICLE MARKET ANALYSIS  ·  run "+r.RunID))
	fmt.Fprintln(p.w, bannerStyle.Render(sep))

	p.PrintSummary(r.Summary)
	p.PrintDescriptive(r.Descriptive)
	p.PrintCoverage(r.Coverage)
	p.PrintFocus(r.Focus)
	p.PrintSensitivity(r.Sensitivity)
	p.PrintClusters(r.Cluster)

	fmt.Fprintln(p.w, bannerStyle.Render(sep))
	fmt.Fprintln(p.w, bannerStyle.Render("  ANALYSIS COMPLETE"))
	fmt.Fprintln(p.w, bannerStyle.Render(sep))
}

func (p *Printer) PrintSummary(s models.PrepareSummary) {
	p.section("Data preparation")
	fmt.Fprintf(p.w, "  ✓ Records loaded              : %s\n", FormatInt(float64(s.TotalLoaded)))
	fmt.Fprintf(p.w, "  ✓ Used vehicles above floor   : %s\n", FormatInt(float64(s.Retained)))
	fmt.Fprintf(p.w, "  ✓ Model years                 : %d to %d\n", s.MinModelYear, s.MaxModelYear)
	fmt.Fprintf(p.w, "  ✓ Missing price/mileage/year  : %d / %d / %d\n",
		s.MissingPrice, s.MissingMileage, s.MissingModelYear)
}

func (p *Printer) PrintDescriptive(d models.DescriptiveReport) {
	p.section("Descriptive statistics by category and body type")
	for _, m := range []models.Matrix{d.Count, d.Mean, d.Median, d.Std} {
		fmt.Fprintf(p.w, "\n  >>> %s\n", strings.ToUpper(m.Metric))
		format := FormatCurrency
		if m.Metric == "count" {
			format = FormatInt
		}
		rows := make([][]string, len(m.Rows))
		for i, body := range m.Rows {
			row := []string{body}
			for _, v := range m.Values[i] {
				row = append(row, format(v))
			}
			rows[i] = row
		}
		p.table(append([]string{"Body type"}, m.Columns...), rows)
	}
}

func (p *Printer) PrintCoverage(reports []models.CoverageReport) {
	p.section("Coverage report (mean ± k·std)")
	for _, rep := range reports {
		fmt.Fprintf(p.w, "\n  >>> k = %s\n", strconv.FormatFloat(rep.K, 'f', -1, 64))
		rows := make([][]string, len(rep.Rows))
		for i, r := range rep.Rows {
			rows[i] = []string{
				r.Key.Category, r.Key.BodyType, FormatInt(float64(r.N)),
				FormatCurrency(r.Mean), FormatNullCurrency(r.Std), FormatNullPercent(r.Percent),
			}
		}
		p.table([]string{"Category", "Body type", "n", "Mean", "Std", "% within"}, rows)
	}
}

func (p *Printer) PrintFocus(f models.FocusReport) {
	p.section("Median profile of the focus groups")
	rows := make([][]string, len(f.Groups))
	for i, g := range f.Groups {
		rows[i] = []string{
			g.Key.Category, g.Key.BodyType, FormatInt(float64(g.N)),
			FormatNullCurrency(g.MedianPrice), FormatNullInt(g.MedianMileage),
			FormatNullTrunc(g.MedianModelYear), FormatNullTrunc(g.MedianAge),
		}
	}
	p.table([]string{"Category", "Body type", "n", "Median price", "Median km", "Median year", "Median age"}, rows)

	p.section("Top models of each focus group")
	for _, g := range f.Models {
		fmt.Fprintf(p.w, "\n  >>> GROUP: %s\n", g.Key)
		rows := make([][]string, len(g.Models))
		for i, m := range g.Models {
			rows[i] = []string{
				m.Model, FormatInt(float64(m.N)), FormatNullCurrency(m.MedianPrice),
				FormatNullInt(m.MedianMileage), FormatNullTrunc(m.MedianAge),
			}
		}
		p.table([]string{"Model", "n", "Median price", "Median km", "Median age"}, rows)
	}
}

func (p *Printer) PrintSensitivity(s models.SensitivityReport) {
	p.section(fmt.Sprintf("Usage sensitivity (price drop per %s km)", FormatInt(s.Scale)))
	for _, g := range s.Groups {
		fmt.Fprintf(p.w, "\n  >>> GROUP: %s\n", g.Key)
		rows := make([][]string, len(g.Rows))
		for i, r := range g.Rows {
			rows[i] = []string{
				r.Model, FormatInt(float64(r.N)), FormatNullCurrency(r.MedianPrice),
				FormatNullInt(r.LowMileage), FormatNullInt(r.HighMileage), FormatCurrency(r.ISU),
			}
		}
		p.table([]string{"Model", "n", "Median price", "Low-km median", "High-km median", "ISU"}, rows)
	}
}

func (p *Printer) PrintClusters(c models.ClusterReport) {
	p.section("Cluster model (k-means)")
	if c.Skipped != "" {
		fmt.Fprintf(p.w, "  ✗ Clustering skipped: %s\n", c.Skipped)
		return
	}
	fmt.Fprintf(p.w, "  ✓ Model trained on %s rows (%s without complete features)\n",
		FormatInt(float64(c.Clustered)), FormatInt(float64(c.Excluded)))
	fmt.Fprintf(p.w, "  ✓ Inertia: %s\n", humanize.FormatFloat("#.###,##", c.Inertia))

	fmt.Fprintf(p.w, "\n  >>> CLUSTER PROFILES\n")
	rows := make([][]string, len(c.Profiles))
	for i, pr := range c.Profiles {
		rows[i] = []string{
			strconv.Itoa(pr.ClusterID), FormatCurrency(pr.MedianPrice), FormatInt(pr.MedianMileage),
			strconv.Itoa(int(pr.MedianAge)), FormatInt(float64(pr.N)),
		}
	}
	p.table([]string{"Cluster", "Median price", "Median km", "Median age", "n"}, rows)

	fmt.Fprintf(p.w, "\n  >>> CLUSTER x CATEGORY (%%)\n")
	rows = make([][]string, len(c.CrossTab.ClusterIDs))
	for i, id := range c.CrossTab.ClusterIDs {
		row := []string{strconv.Itoa(id)}
		for _, v := range c.CrossTab.Percent[i] {
			row = append(row, FormatPercent(v))
		}
		rows[i] = row
	}
	p.table(append([]string{"Cluster"}, c.CrossTab.Categories...), rows)
}

func (p *Printer) section(title string) {
	fmt.Fprintf(p.w, "\n%s\n", sectionStyle.Render("=== "+strings.ToUpper(title)+" ==="))
}

func (p *Printer) table(headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(p.w, "  (no data)")
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return textCell
			default:
				return numberCell
			}
		})
	fmt.Fprintln(p.w, t.Render())
}

// FormatCurrency renders v as R$ 1.234,56.
func FormatCurrency(v float64) string {
	return "R$ " + humanize.FormatFloat("#.###,##", v)
}

// FormatInt renders v rounded to an integer with dot thousands separators.
func FormatInt(v float64) string {
	return humanize.FormatInteger("#.###,", int(math.Round(v)))
}

// FormatPercent renders v as 68,27%.
func FormatPercent(v float64) string {
	return strings.Replace(strconv.FormatFloat(v, 'f', 2, 64), ".", ",", 1) + "%"
}

func FormatNullCurrency(v sql.NullFloat64) string {
	if !v.Valid {
		return undefinedCell
	}
	return FormatCurrency(v.Float64)
}

func FormatNullInt(v sql.NullFloat64) string {
	if !v.Valid {
		return undefinedCell
	}
	return FormatInt(v.Float64)
}

// FormatNullTrunc renders v truncated toward zero, the way years and ages
// are reported.
func FormatNullTrunc(v sql.NullFloat64) string {
	if !v.Valid {
		return undefinedCell
	}
	return strconv.Itoa(int(v.Float64))
}

func FormatNullPercent(v sql.NullFloat64) string {
	if !v.Valid {
		return undefinedCell
	}
	return FormatPercent(v.Float64)
}
