package projection_test

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/iwvelando/business-case/internal/business"
	"github.com/iwvelando/business-case/internal/projection"
	"github.com/iwvelando/business-case/pkg/constants"
	"github.com/iwvelando/business-case/pkg/testutil"
)

func TestGenerateRecurring(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	records := projection.NewEngine(logger).Generate(testutil.RecurringBusinessData())

	if len(records) != 24 {
		t.Fatalf("Generate() returned %d records, expected 24", len(records))
	}

	tests := []struct {
		name     string
		date     string
		expected projection.MonthlyRecord
	}{
		{
			name: "First month carries the initial capex",
			date: "2025-01",
			expected: projection.MonthlyRecord{
				Month: 1, Date: "2025-01", SalesVolume: 1000, UnitPrice: 50, Revenue: 50000, COGS: -15000,
				GrossProfit: 35000, SalesMarketing: -15000, TotalCAC: -2000, CAC: 2, RD: -8000, GA: -5000,
				TotalOpex: -30000, EBITDA: 5000, Capex: -50000, NetCashFlow: -45000,
			},
		},
		{
			name: "Second month grows volume and opex linearly",
			date: "2025-02",
			expected: projection.MonthlyRecord{
				Month: 2, Date: "2025-02", SalesVolume: 1020, UnitPrice: 50, Revenue: 51000, COGS: -15300,
				GrossProfit: 35700, SalesMarketing: -15300, TotalCAC: -2040, CAC: 2, RD: -8200, GA: -5100,
				TotalOpex: -30640, EBITDA: 5060, Capex: 0, NetCashFlow: 5060,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := testutil.FindRecord(records, tt.date)
			if record == nil {
				t.Fatalf("no record for %s", tt.date)
			}
			if *record != tt.expected {
				t.Errorf("record %s = %+v, expected %+v", tt.date, *record, tt.expected)
			}
		})
	}

	if capex := testutil.FindRecord(records, "2026-01").Capex; capex != -constants.RecurringCapex {
		t.Errorf("month 13 capex = %v, expected %v", capex, -constants.RecurringCapex)
	}
}

func TestGenerateInvariants(t *testing.T) {
	for _, d := range []*business.BusinessData{
		testutil.RecurringBusinessData(),
		testutil.CostSavingsBusinessData(),
		{},
	} {
		for _, r := range projection.Generate(d) {
			if r.GrossProfit != r.Revenue+r.COGS {
				t.Errorf("%s: grossProfit %v != revenue %v + cogs %v", r.Date, r.GrossProfit, r.Revenue, r.COGS)
			}
			if r.COGS > 0 {
				t.Errorf("%s: cogs %v should be non-positive", r.Date, r.COGS)
			}
			if r.TotalOpex != r.SalesMarketing+r.TotalCAC+r.RD+r.GA+r.EfficiencyGains {
				t.Errorf("%s: totalOpex %v does not add up", r.Date, r.TotalOpex)
			}
			if r.EBITDA != r.GrossProfit+r.TotalOpex {
				t.Errorf("%s: ebitda %v != grossProfit + totalOpex", r.Date, r.EBITDA)
			}
			if r.NetCashFlow != r.EBITDA+r.Capex {
				t.Errorf("%s: netCashFlow %v != ebitda + capex", r.Date, r.NetCashFlow)
			}
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	d := testutil.RecurringBusinessData()
	first := projection.Generate(d)
	second := projection.Generate(d)
	if !reflect.DeepEqual(first, second) {
		t.Error("Generate() is not deterministic")
	}
	if !reflect.DeepEqual(d, testutil.RecurringBusinessData()) {
		t.Error("Generate() mutated its input")
	}
}

func TestGenerateEfficiencyGains(t *testing.T) {
	d := testutil.CostSavingsBusinessData()
	records := projection.Generate(d)

	if len(records) != 12 {
		t.Fatalf("Generate() returned %d records, expected 12", len(records))
	}
	for _, r := range records {
		if r.EfficiencyGains != 400 {
			t.Fatalf("%s: efficiencyGains = %v, expected improved × rate = 400", r.Date, r.EfficiencyGains)
		}
		if r.EfficiencyGains == 1600 {
			t.Fatalf("%s: efficiencyGains used the savings delta", r.Date)
		}
	}
	if first := records[0]; first.TotalOpex != -27600 {
		t.Errorf("first totalOpex = %v, expected -27600", first.TotalOpex)
	}
	if last := records[11]; last.Date != "2026-05" {
		t.Errorf("last date = %s, expected 2026-05", last.Date)
	}

	// The same rules under another model contribute nothing.
	d.Meta.BusinessModel = business.ModelRecurring
	for _, r := range projection.Generate(d) {
		if r.EfficiencyGains != 0 {
			t.Fatalf("%s: efficiencyGains = %v for a recurring model", r.Date, r.EfficiencyGains)
		}
	}
}

func TestGenerateDefaults(t *testing.T) {
	tests := []struct {
		name            string
		data            *business.BusinessData
		expectedPeriods int
		expectedVolume  float64
		expectedDate    string
	}{
		{"ZeroPeriods", &business.BusinessData{}, 60, 1000, "2025-01"},
		{"TooManyPeriods", &business.BusinessData{Meta: business.Meta{Periods: 120}}, 60, 1000, "2025-01"},
		{"InvalidStartDate", &business.BusinessData{Meta: business.Meta{Periods: 3, StartDate: "January"}}, 3, 1000, "2025-01"},
		{"PatternSegmentIgnored", &business.BusinessData{
			Meta: business.Meta{Periods: 6, StartDate: "2030-11"},
			Assumptions: business.Assumptions{Customers: business.Customers{Segments: []business.CustomerSegment{
				{ID: "p", Volume: business.PatternOf(business.PatternLinearGrowth, *testutil.NumberPtr(5, "u", "r"))},
			}}},
		}, 6, 1000, "2030-11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := projection.Generate(tt.data)
			if len(records) != tt.expectedPeriods {
				t.Fatalf("Generate() returned %d records, expected %d", len(records), tt.expectedPeriods)
			}
			first := records[0]
			if first.SalesVolume != tt.expectedVolume || first.Date != tt.expectedDate {
				t.Errorf("first record = %+v, expected volume %v on %s", first, tt.expectedVolume, tt.expectedDate)
			}
			if first.UnitPrice != constants.DefaultUnitPrice {
				t.Errorf("unitPrice = %v, expected default %v", first.UnitPrice, constants.DefaultUnitPrice)
			}
			if records[len(records)-1].Month != tt.expectedPeriods {
				t.Errorf("last month = %d, expected %d", records[len(records)-1].Month, tt.expectedPeriods)
			}
		})
	}

	if records := projection.Generate(nil); records != nil {
		t.Errorf("Generate(nil) = %v, expected nil", records)
	}
}

func TestMonthlyRecordJSONFields(t *testing.T) {
	out, err := json.Marshal(projection.Generate(testutil.RecurringBusinessData())[0])
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	for _, field := range []string{
		"month", "date", "salesVolume", "unitPrice", "revenue", "cogs", "grossProfit", "salesMarketing",
		"totalCAC", "cac", "rd", "ga", "totalOpex", "ebitda", "capex", "netCashFlow", "efficiencyGains",
	} {
		if !strings.Contains(string(out), `"`+field+`":`) {
			t.Errorf("record JSON is missing field %q: %s", field, out)
		}
	}
	if strings.Contains(string(out), "-0,") || strings.Contains(string(out), "-0}") {
		t.Errorf("record JSON contains a negative zero: %s", out)
	}
}

func TestCapexAt(t *testing.T) {
	tests := []struct {
		month    int
		expected float64
	}{
		{0, -50000},
		{1, 0},
		{11, 0},
		{12, -10000},
		{24, -10000},
		{25, 0},
	}
	for _, tt := range tests {
		if result := projection.CapexAt(tt.month); result != tt.expected {
			t.Errorf("CapexAt(%d) = %v, expected %v", tt.month, result, tt.expected)
		}
	}
}

func BenchmarkGenerate(b *testing.B) {
	d := testutil.RecurringBusinessData()
	d.Meta.Periods = constants.MaxPeriods
	engine := projection.NewEngine(nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.Generate(d)
	}
}
