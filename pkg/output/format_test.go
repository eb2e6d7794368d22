package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/tealeg/xlsx/v2"

	"github.com/iwvelando/business-case/internal/metrics"
	"github.com/iwvelando/business-case/internal/projection"
	"github.com/iwvelando/business-case/internal/report"
	"github.com/iwvelando/business-case/pkg/format"
	"github.com/iwvelando/business-case/pkg/testutil"
)

func sampleReport() *report.Report {
	d := testutil.RecurringBusinessData()
	records := projection.Generate(d)
	return report.Build(d, records, metrics.Calculate(records, metrics.Options{}))
}

func TestPrettyFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := PrettyFormat(&buf, sampleReport()); err != nil {
		t.Fatalf("PrettyFormat() error = %v", err)
	}
	output := buf.String()

	if !strings.Contains(output, "--- Team plan launch ---") {
		t.Errorf("PrettyFormat missing report header")
	}
	if !strings.Contains(output, "2025-01 to 2026-12, 24 months, EUR") {
		t.Errorf("PrettyFormat missing horizon line")
	}
	for _, title := range []string{"Summary", "Annual", "Quarterly", "Revenue breakdown", "Cost breakdown"} {
		if !strings.Contains(output, title) {
			t.Errorf("PrettyFormat missing section %q", title)
		}
	}
	if !strings.Contains(output, "Year 2") || !strings.Contains(output, "Y2 Q4") {
		t.Errorf("PrettyFormat missing roll-up labels")
	}
	if !strings.Contains(output, "€") {
		t.Errorf("PrettyFormat missing currency symbol")
	}
}

func TestPrettyFormatGroupsFigures(t *testing.T) {
	r := sampleReport()
	var buf bytes.Buffer
	if err := PrettyFormat(&buf, r); err != nil {
		t.Fatalf("PrettyFormat() error = %v", err)
	}
	output := buf.String()

	var revenue, volume float64
	for _, rec := range r.Records {
		revenue += rec.Revenue
		volume += rec.SalesVolume
	}
	headline := "Revenue EUR " + format.Number(revenue, 2) + " from " + format.Number(volume, 0) + " units sold"
	if !strings.Contains(output, headline) {
		t.Errorf("PrettyFormat missing headline %q", headline)
	}
	if year1 := format.Number(r.Annual[0].Revenue, 2); !strings.Contains(output, year1) {
		t.Errorf("PrettyFormat missing grouped Year 1 revenue %q", year1)
	}
	if revenue < 1000 || !strings.Contains(headline, ",") {
		t.Errorf("expected a grouped revenue figure, got %q", headline)
	}
}

func TestCsvFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := CsvFormat(&buf, sampleReport()); err != nil {
		t.Fatalf("CsvFormat() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")

	if len(lines) != 25 {
		t.Fatalf("CsvFormat() produced %d lines, expected header plus 24 records", len(lines))
	}
	if !strings.HasPrefix(lines[0], "month,date,salesVolume,unitPrice,revenue") {
		t.Errorf("CsvFormat header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "1,2025-01,") {
		t.Errorf("CsvFormat first record = %q", lines[1])
	}
	if !strings.HasSuffix(lines[0], "netCashFlow") {
		t.Errorf("CsvFormat header should end with netCashFlow, got %q", lines[0])
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleReport())

	if !strings.HasPrefix(md, "# Team plan launch\n") {
		t.Errorf("Markdown() should start with the title, got %q", md[:min(40, len(md))])
	}
	if !strings.Contains(md, "## Cost breakdown") {
		t.Errorf("Markdown() missing cost breakdown section")
	}
	if !strings.Contains(md, "| Metric | Value |") {
		t.Errorf("Markdown() missing summary table header")
	}
}

func TestHTMLFormat(t *testing.T) {
	r := sampleReport()
	r.Title = "Launch <beta>"

	var buf bytes.Buffer
	if err := HTMLFormat(&buf, r); err != nil {
		t.Fatalf("HTMLFormat() error = %v", err)
	}
	html := buf.String()

	if !strings.Contains(html, "<title>Launch &lt;beta&gt;</title>") {
		t.Errorf("HTMLFormat() title not escaped")
	}
	if !strings.Contains(html, "<table>") {
		t.Errorf("HTMLFormat() should render Markdown tables as HTML tables")
	}
	if !strings.Contains(html, "<h2>Summary</h2>") {
		t.Errorf("HTMLFormat() missing summary heading")
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := JSONFormat(&buf, sampleReport()); err != nil {
		t.Fatalf("JSONFormat() error = %v", err)
	}

	var decoded struct {
		Title   string `json:"title"`
		Summary []struct {
			Key string `json:"key"`
		} `json:"summary"`
		Records []json.RawMessage `json:"records"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("JSONFormat() produced invalid JSON: %v", err)
	}
	if decoded.Title != "Team plan launch" || len(decoded.Summary) != 6 || len(decoded.Records) != 24 {
		t.Errorf("JSONFormat() decoded = %+v", decoded)
	}
}

func TestXLSXFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := XLSXFormat(&buf, sampleReport()); err != nil {
		t.Fatalf("XLSXFormat() error = %v", err)
	}

	f, err := xlsx.OpenBinary(buf.Bytes())
	if err != nil {
		t.Fatalf("XLSXFormat() produced an unreadable workbook: %v", err)
	}
	for _, name := range []string{"Summary", "Annual", "Monthly"} {
		if _, ok := f.Sheet[name]; !ok {
			t.Errorf("workbook missing sheet %q", name)
		}
	}

	monthly := f.Sheet["Monthly"]
	if len(monthly.Rows) != 25 {
		t.Errorf("Monthly sheet has %d rows, expected 25", len(monthly.Rows))
	}
	if got := monthly.Rows[1].Cells[1].String(); got != "2025-01" {
		t.Errorf("Monthly first date = %q, expected 2025-01", got)
	}
	if got := f.Sheet["Summary"].Rows[0].Cells[0].String(); got != "Team plan launch" {
		t.Errorf("Summary title = %q", got)
	}
}

func TestWrite(t *testing.T) {
	tests := []struct {
		format  string
		contain string
		wantErr bool
	}{
		{format: "table", contain: "--- Team plan launch ---"},
		{format: "csv", contain: "month,date"},
		{format: "markdown", contain: "## Annual"},
		{format: "html", contain: "<!DOCTYPE html>"},
		{format: "json", contain: `"title": "Team plan launch"`},
		{format: "xlsx", contain: "PK"},
		{format: "pdf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			err := Write(&buf, sampleReport(), tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Write() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !strings.Contains(buf.String(), tt.contain) {
				t.Errorf("Write(%s) output missing %q", tt.format, tt.contain)
			}
		})
	}
}
