// Package output provides utilities for formatting and displaying business-case reports.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/iwvelando/business-case/internal/metrics"
	"github.com/iwvelando/business-case/internal/projection"
	"github.com/iwvelando/business-case/internal/report"
	"github.com/iwvelando/business-case/pkg/constants"
	"github.com/iwvelando/business-case/pkg/format"
	"github.com/iwvelando/business-case/pkg/validation"
)

// Write renders r to w in the named format.
func Write(w io.Writer, r *report.Report, outputFormat string) error {
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return err
	}
	switch outputFormat {
	case constants.OutputFormatCSV:
		return CsvFormat(w, r)
	case constants.OutputFormatMarkdown:
		_, err := io.WriteString(w, Markdown(r))
		return err
	case constants.OutputFormatHTML:
		return HTMLFormat(w, r)
	case constants.OutputFormatJSON:
		return JSONFormat(w, r)
	case constants.OutputFormatXLSX:
		return XLSXFormat(w, r)
	default:
		return PrettyFormat(w, r)
	}
}

// PrettyFormat outputs human-readable tables. Roll-up amounts are printed
// with English digit grouping in the report currency.
func PrettyFormat(w io.Writer, r *report.Report) error {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	fmt.Fprintf(&b, "--- %s ---\n", r.Title)
	if r.StartDate != "" {
		_, _ = p.Fprintf(&b, "%s to %s, %d months, %s\n", r.StartDate, r.EndDate, r.Periods, r.Currency)
	}
	if len(r.Records) > 0 {
		var revenue, volume float64
		for _, rec := range r.Records {
			revenue += rec.Revenue
			volume += rec.SalesVolume
		}
		_, _ = p.Fprintf(&b, "Revenue %s %.2f from %.0f units sold\n", r.Currency, revenue, volume)
	}
	b.WriteString("\n")

	money := func(v float64) string { return p.Sprintf("%.2f", v) }
	for _, s := range sections(r, money) {
		s.t.SetTitle(s.title)
		s.t.SetStyle(table.StyleLight)
		b.WriteString(s.t.Render())
		b.WriteString("\n\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// CsvFormat outputs the monthly records in comma-separated value format.
func CsvFormat(w io.Writer, r *report.Report) error {
	t := monthlyTable(r.Records)
	_, err := io.WriteString(w, t.RenderCSV()+"\n")
	return err
}

// Markdown renders the report as a Markdown document.
func Markdown(r *report.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Title)
	if r.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", r.Description)
	}
	if r.StartDate != "" {
		fmt.Fprintf(&b, "Projection from %s to %s (%d months) in %s.\n\n", r.StartDate, r.EndDate, r.Periods, r.Currency)
	}

	for _, s := range sections(r, r.Money) {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", s.title, s.t.RenderMarkdown())
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// HTMLFormat renders the Markdown document to a standalone HTML page.
func HTMLFormat(w io.Writer, r *report.Report) error {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(r)), &body); err != nil {
		return eris.Wrap(err, "output: render html")
	}
	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n%s</body>\n</html>\n",
		html.EscapeString(r.Title), body.String())
	return err
}

// JSONFormat outputs the full report as indented JSON.
func JSONFormat(w io.Writer, r *report.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(r), "output: encode json")
}

// XLSXFormat writes a workbook with Summary, Annual and Monthly sheets.
func XLSXFormat(w io.Writer, r *report.Report) error {
	f := xlsx.NewFile()

	summary, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "output: add summary sheet")
	}
	addStringRow(summary, r.Title)
	addStringRow(summary, "Metric", "Value", "Display")
	for _, c := range r.Summary {
		row := summary.AddRow()
		row.AddCell().SetString(c.Label)
		row.AddCell().SetFloat(c.Value)
		row.AddCell().SetString(c.Display)
	}
	summary.AddRow()
	addStringRow(summary, "Breakdown", "Amount", "Share %")
	for _, l := range append(append([]report.Line{}, r.RevenueBreakdown...), r.CostBreakdown...) {
		row := summary.AddRow()
		row.AddCell().SetString(l.Label)
		row.AddCell().SetFloatWithFormat(l.Amount, "#,##0.00")
		row.AddCell().SetFloat(l.Share)
	}

	annual, err := f.AddSheet("Annual")
	if err != nil {
		return eris.Wrap(err, "output: add annual sheet")
	}
	addStringRow(annual, periodHeader...)
	for _, period := range r.Annual {
		row := annual.AddRow()
		row.AddCell().SetString(period.Label)
		row.AddCell().SetString(period.StartDate)
		row.AddCell().SetString(period.EndDate)
		for _, v := range periodValues(period) {
			row.AddCell().SetFloatWithFormat(v, "#,##0.00")
		}
	}

	monthly, err := f.AddSheet("Monthly")
	if err != nil {
		return eris.Wrap(err, "output: add monthly sheet")
	}
	addStringRow(monthly, monthlyHeader...)
	for _, rec := range r.Records {
		row := monthly.AddRow()
		row.AddCell().SetInt(rec.Month)
		row.AddCell().SetString(rec.Date)
		for _, v := range recordValues(rec) {
			row.AddCell().SetFloatWithFormat(v, "#,##0.00")
		}
	}

	return eris.Wrap(f.Write(w), "output: write xlsx")
}

type section struct {
	title string
	t     table.Writer
}

// sections builds the report tables; money renders the roll-up amounts.
func sections(r *report.Report, money func(float64) string) []section {
	return []section{
		{"Summary", summaryTable(r)},
		{"Annual", periodTable(r.Annual, money)},
		{"Quarterly", periodTable(r.Quarterly, money)},
		{"Revenue breakdown", breakdownTable(r.RevenueBreakdown)},
		{"Cost breakdown", breakdownTable(r.CostBreakdown)},
	}
}

var periodHeader = []string{"Period", "Start", "End", "Revenue", "COGS", "Gross profit", "Opex", "EBITDA", "Capex", "Net cash flow", "Cumulative cash"}

var monthlyHeader = []string{
	"month", "date", "salesVolume", "unitPrice", "revenue", "cogs", "grossProfit",
	"salesMarketing", "totalCAC", "cac", "rd", "ga", "efficiencyGains", "totalOpex",
	"ebitda", "capex", "netCashFlow",
}

func periodValues(p metrics.Period) []float64 {
	return []float64{p.Revenue, p.COGS, p.GrossProfit, p.TotalOpex, p.EBITDA, p.Capex, p.NetCashFlow, p.CumulativeCash}
}

func recordValues(r projection.MonthlyRecord) []float64 {
	return []float64{
		r.SalesVolume, r.UnitPrice, r.Revenue, r.COGS, r.GrossProfit,
		r.SalesMarketing, r.TotalCAC, r.CAC, r.RD, r.GA, r.EfficiencyGains, r.TotalOpex,
		r.EBITDA, r.Capex, r.NetCashFlow,
	}
}

func summaryTable(r *report.Report) table.Writer {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Metric", "Value"})
	for _, c := range r.Summary {
		t.AppendRow(table.Row{c.Label, c.Display})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	return t
}

func periodTable(periods []metrics.Period, money func(float64) string) table.Writer {
	t := table.NewWriter()
	header := table.Row{}
	for _, h := range periodHeader {
		if h == "Start" || h == "End" {
			continue
		}
		header = append(header, h)
	}
	t.AppendHeader(header)
	for _, p := range periods {
		row := table.Row{p.Label}
		for _, v := range periodValues(p) {
			row = append(row, money(v))
		}
		t.AppendRow(row)
	}
	configs := make([]table.ColumnConfig, 0, len(header)-1)
	for i := 2; i <= len(header); i++ {
		configs = append(configs, table.ColumnConfig{Number: i, Align: text.AlignRight})
	}
	t.SetColumnConfigs(configs)
	return t
}

func breakdownTable(lines []report.Line) table.Writer {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Item", "Amount", "Share"})
	for _, l := range lines {
		t.AppendRow(table.Row{l.Label, l.Display, format.Percentage(l.Share)})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	return t
}

func monthlyTable(records []projection.MonthlyRecord) table.Writer {
	t := table.NewWriter()
	header := make(table.Row, len(monthlyHeader))
	for i, h := range monthlyHeader {
		header[i] = h
	}
	t.AppendHeader(header)
	for _, rec := range records {
		row := table.Row{rec.Month, rec.Date}
		for _, v := range recordValues(rec) {
			row = append(row, fmt.Sprintf("%.2f", v))
		}
		t.AppendRow(row)
	}
	return t
}

func addStringRow(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}
