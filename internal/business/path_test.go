package business

import (
	"errors"
	"testing"

	"github.com/iwvelando/business-case/pkg/value"
)

func sampleData() *BusinessData {
	price := value.NewNumber(49, "EUR", "list price")
	return &BusinessData{
		Meta: Meta{Title: "Sample", Currency: "EUR", Periods: 24, BusinessModel: ModelRecurring},
		Assumptions: Assumptions{
			Customers: Customers{Segments: []CustomerSegment{
				{ID: "smb", Label: "SMB", Rationale: "pilot", Volume: TimeSeriesOf(
					value.NewNumber(100, "customers", "pilot"),
					value.NewNumber(120, "customers", "pilot"),
				)},
				{ID: "ent", Label: "Enterprise", Rationale: "sales pipeline", Volume: PatternOf(PatternGeomGrowth, value.NewNumber(10, "customers", "pipeline"))},
			}},
			Pricing: Pricing{AvgUnitPrice: &price},
			Opex: []CostLine{
				{Name: "Sales & Marketing", Value: value.NewNumber(15000, "EUR", "team")},
			},
			CostSavings: &CostSavings{
				EfficiencyGains: []EfficiencyGain{{
					ID:            "recon",
					BaselineValue: value.NewNumber(10, "hrs", "measured"),
					ImprovedValue: value.NewNumber(8, "hrs", "target"),
					ValuePerUnit:  value.NewNumber(50, "EUR/hr", "loaded rate"),
				}},
			},
		},
		Drivers: []Driver{{Key: "price", Path: "assumptions.pricing.avg_unit_price.value", Range: []float64{39, 59}}},
	}
}

func TestSetValue(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		value    float64
		expected float64
	}{
		{"Price", "assumptions.pricing.avg_unit_price.value", 59, 59},
		{"CreatesCOGS", "assumptions.unit_economics.cogs_pct.value", 0.25, 0.25},
		{"Opex", "assumptions.opex[0].value.value", 18000, 18000},
		{"SeriesEntry", "assumptions.customers.segments[0].volume.series[1].value", 150, 150},
		{"PatternBase", "assumptions.customers.segments[1].volume.base.value", 12, 12},
		{"EfficiencyGain", "assumptions.cost_savings.efficiency_gains[0].improved_value.value", 6, 6},
		{"Periods", "meta.periods", 36, 36},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := sampleData()
			before, _, err := GetValue(original, tt.path)
			if err != nil {
				t.Fatalf("GetValue() error = %v", err)
			}

			updated, err := SetValue(original, tt.path, tt.value)
			if err != nil {
				t.Fatalf("SetValue() error = %v", err)
			}
			got, ok, err := GetValue(updated, tt.path)
			if err != nil || !ok || got != tt.expected {
				t.Errorf("GetValue() after SetValue() = %v, %v, %v, expected %v", got, ok, err, tt.expected)
			}

			after, _, _ := GetValue(original, tt.path)
			if after != before {
				t.Errorf("SetValue() mutated the input: %v became %v", before, after)
			}
		})
	}
}

func TestSetValuePreservesUnitAndRationale(t *testing.T) {
	updated, err := SetValue(sampleData(), "assumptions.customers.segments[0].volume.series[0].value", 250)
	if err != nil {
		t.Fatalf("SetValue() error = %v", err)
	}
	series, _ := updated.Assumptions.Customers.Segments[0].Volume.Series()
	if series[0].Unit != "customers" || series[0].Rationale != "pilot" {
		t.Errorf("SetValue() series[0] = %+v, expected unit and rationale kept", series[0])
	}
	if len(series) != 2 || series[1].Value != 120 {
		t.Errorf("SetValue() touched other series entries: %+v", series)
	}
}

func TestSetValueUnknownPath(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"Empty", ""},
		{"NoValueSuffix", "assumptions.pricing.avg_unit_price"},
		{"UnknownField", "assumptions.pricing.discount.value"},
		{"OutOfRange", "assumptions.opex[3].value.value"},
		{"MissingIndex", "assumptions.opex.value.value"},
		{"MalformedIndex", "assumptions.opex[x].value.value"},
		{"SeriesOnPattern", "assumptions.customers.segments[1].volume.series[0].value"},
		{"BaseOnSeries", "assumptions.customers.segments[0].volume.base.value"},
		{"NoBaselineCosts", "assumptions.cost_savings.baseline_costs[0].current_cost.value"},
		{"OutsideAssumptions", "drivers[0].range.value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := sampleData()
			updated, err := SetValue(original, tt.path, 1)
			if err == nil {
				t.Fatalf("SetValue(%q) expected an error", tt.path)
			}
			if updated != nil {
				t.Errorf("SetValue() returned data alongside error")
			}
			if !errors.Is(err, ErrUnknownPath) {
				t.Errorf("SetValue() error = %v, expected ErrUnknownPath", err)
			}
			var pathErr *PathError
			if !errors.As(err, &pathErr) || pathErr.Path != tt.path {
				t.Errorf("SetValue() error = %#v, expected *PathError for %q", err, tt.path)
			}
		})
	}
}

func TestGetValueOptionalUnset(t *testing.T) {
	_, ok, err := GetValue(sampleData(), "assumptions.unit_economics.cac.value")
	if err != nil {
		t.Fatalf("GetValue() error = %v", err)
	}
	if ok {
		t.Error("GetValue() reported an unset optional field as set")
	}
}

func TestCloneIsDeep(t *testing.T) {
	original := sampleData()
	clone := original.Clone()

	*clone.Assumptions.Pricing.AvgUnitPrice = clone.Assumptions.Pricing.AvgUnitPrice.WithValue(1)
	clone.Drivers[0].Range[0] = 0
	clone.Assumptions.CostSavings.EfficiencyGains[0].ImprovedValue.Value = 0
	clone.Assumptions.Customers.Segments[0].Label = "changed"

	if original.Assumptions.Pricing.AvgUnitPrice.Value != 49 {
		t.Error("Clone() shares avg_unit_price")
	}
	if original.Drivers[0].Range[0] != 39 {
		t.Error("Clone() shares driver ranges")
	}
	if original.Assumptions.CostSavings.EfficiencyGains[0].ImprovedValue.Value != 8 {
		t.Error("Clone() shares efficiency gains")
	}
	if original.Assumptions.Customers.Segments[0].Label != "SMB" {
		t.Error("Clone() shares segments")
	}
	if (*BusinessData)(nil).Clone() != nil {
		t.Error("Clone() of nil should be nil")
	}
}

func TestEfficiencyGainValue(t *testing.T) {
	gain := sampleData().Assumptions.CostSavings.EfficiencyGains[0]
	if gain.MonthlyValue() != 400 {
		t.Errorf("MonthlyValue() = %v, expected 400", gain.MonthlyValue())
	}
	if gain.Savings() != 100 {
		t.Errorf("Savings() = %v, expected 100", gain.Savings())
	}
}

func TestLookups(t *testing.T) {
	d := sampleData()
	if d.SegmentByID("ent") != 1 || d.SegmentByID("missing") != -1 {
		t.Error("SegmentByID() returned the wrong index")
	}
	if d.DriverByKey("price") != 0 || d.DriverByKey("missing") != -1 {
		t.Error("DriverByKey() returned the wrong index")
	}
	d.EnsureSchemaVersion()
	if d.SchemaVersion != "1.0" {
		t.Errorf("EnsureSchemaVersion() = %q, expected 1.0", d.SchemaVersion)
	}
	if !ModelCostSavings.Valid() || Model("saas").Valid() {
		t.Error("Model.Valid() misclassified a model")
	}
}
