// Package business defines the business-case document: meta data, the
// assumption tree the projection engine reads, and sensitivity drivers.
package business

import (
	"github.com/iwvelando/business-case/internal/sourcing"
	"github.com/iwvelando/business-case/pkg/constants"
	"github.com/iwvelando/business-case/pkg/value"
)

// Model is the revenue logic a business case follows.
type Model string

const (
	ModelRecurring   Model = "recurring"
	ModelUnitSales   Model = "unit_sales"
	ModelCostSavings Model = "cost_savings"
)

// Valid reports whether m is one of the known business models.
func (m Model) Valid() bool {
	switch m {
	case ModelRecurring, ModelUnitSales, ModelCostSavings:
		return true
	}
	return false
}

// BusinessData is the root of a business case.
type BusinessData struct {
	SchemaVersion string      `json:"schema_version,omitempty"`
	Meta          Meta        `json:"meta"`
	Assumptions   Assumptions `json:"assumptions"`
	Drivers       []Driver    `json:"drivers,omitempty"`
}

// Meta holds descriptive and horizon settings.
type Meta struct {
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	Currency      string `json:"currency"`
	Periods       int    `json:"periods"`
	Frequency     string `json:"frequency,omitempty"`
	BusinessModel Model  `json:"business_model"`
	StartDate     string `json:"start_date,omitempty"`
}

// Assumptions is the input tree of the projection.
type Assumptions struct {
	Customers      Customers       `json:"customers"`
	Pricing        Pricing         `json:"pricing"`
	UnitEconomics  UnitEconomics   `json:"unit_economics"`
	Opex           []CostLine      `json:"opex,omitempty"`
	Capex          []CostLine      `json:"capex,omitempty"`
	CostSavings    *CostSavings    `json:"cost_savings,omitempty"`
	GrowthSettings *GrowthSettings `json:"growth_settings,omitempty"`
}

// Customers groups the customer segments.
type Customers struct {
	Segments []CustomerSegment `json:"segments,omitempty"`
}

// CustomerSegment is one customer group and its volume.
type CustomerSegment struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Rationale string `json:"rationale"`
	Volume    Volume `json:"volume"`

	// SourcedVolume is set once a cross-tool transfer populated this segment.
	SourcedVolume *sourcing.Assumption `json:"sourced_volume,omitempty"`
}

// Pricing holds price assumptions.
type Pricing struct {
	AvgUnitPrice *value.Number `json:"avg_unit_price,omitempty"`
}

// UnitEconomics holds per-unit cost assumptions.
type UnitEconomics struct {
	COGSPct *value.Number `json:"cogs_pct,omitempty"`
	CAC     *value.Number `json:"cac,omitempty"`
}

// CostLine is a named monthly opex or capex amount.
type CostLine struct {
	Name  string       `json:"name"`
	Value value.Number `json:"value"`
}

// CostSavings holds the inputs of the cost_savings business model.
type CostSavings struct {
	BaselineCosts   []BaselineCost   `json:"baseline_costs,omitempty"`
	EfficiencyGains []EfficiencyGain `json:"efficiency_gains,omitempty"`
}

// BaselineCost is a cost the business case intends to reduce.
type BaselineCost struct {
	ID           string        `json:"id"`
	Label        string        `json:"label"`
	Category     string        `json:"category,omitempty"`
	CurrentCost  value.Number  `json:"current_cost"`
	ImprovedCost *value.Number `json:"improved_cost,omitempty"`
}

// EfficiencyGain describes a process metric before and after improvement,
// e.g. hours per week spent on manual reconciliation.
type EfficiencyGain struct {
	ID            string       `json:"id"`
	Label         string       `json:"label"`
	Metric        string       `json:"metric,omitempty"`
	BaselineValue value.Number `json:"baseline_value"`
	ImprovedValue value.Number `json:"improved_value"`
	ValuePerUnit  value.Number `json:"value_per_unit"`
}

// MonthlyValue is the ongoing value of the improved process:
// improved_value × value_per_unit.
func (g EfficiencyGain) MonthlyValue() float64 {
	return g.ImprovedValue.Value * g.ValuePerUnit.Value
}

// Savings is the delta between baseline and improved process,
// (baseline_value − improved_value) × value_per_unit. It is reported for
// comparison only and never feeds the projection.
func (g EfficiencyGain) Savings() float64 {
	return (g.BaselineValue.Value - g.ImprovedValue.Value) * g.ValuePerUnit.Value
}

// GrowthSettings holds the global growth patterns. At most one should be set.
type GrowthSettings struct {
	GeomGrowth     *GeomGrowth     `json:"geom_growth,omitempty"`
	SeasonalGrowth *SeasonalGrowth `json:"seasonal_growth,omitempty"`
	LinearGrowth   *LinearGrowth   `json:"linear_growth,omitempty"`
}

// GeomGrowth is compound growth from a start value up to an optional cap.
type GeomGrowth struct {
	Start value.Number  `json:"start"`
	CAGR  value.Number  `json:"cagr"`
	Cap   *value.Number `json:"cap,omitempty"`
}

// SeasonalGrowth distributes a yearly total over seasonal shares.
type SeasonalGrowth struct {
	BaseYearTotal value.Number `json:"base_year_total"`
	SeasonShares  []float64    `json:"season_shares,omitempty"`
}

// LinearGrowth adds a fixed increase every month.
type LinearGrowth struct {
	Start           value.Number `json:"start"`
	MonthlyIncrease value.Number `json:"monthly_increase"`
}

// Populated returns the names of the growth patterns that are set.
func (g *GrowthSettings) Populated() []string {
	if g == nil {
		return nil
	}
	var names []string
	if g.GeomGrowth != nil {
		names = append(names, PatternGeomGrowth)
	}
	if g.SeasonalGrowth != nil {
		names = append(names, PatternSeasonalGrowth)
	}
	if g.LinearGrowth != nil {
		names = append(names, PatternLinearGrowth)
	}
	return names
}

// Growth pattern names shared by global settings and segment volumes.
const (
	PatternGeomGrowth     = "geom_growth"
	PatternSeasonalGrowth = "seasonal_growth"
	PatternLinearGrowth   = "linear_growth"
)

// Driver is a sensitivity-analysis override pointing at a numeric field.
type Driver struct {
	Key       string    `json:"key"`
	Path      string    `json:"path"`
	Range     []float64 `json:"range"`
	Rationale string    `json:"rationale"`
	Unit      string    `json:"unit,omitempty"`
}

// SegmentByID returns the index of the segment with the given id, or -1.
func (d *BusinessData) SegmentByID(id string) int {
	if d == nil {
		return -1
	}
	for i, segment := range d.Assumptions.Customers.Segments {
		if segment.ID == id {
			return i
		}
	}
	return -1
}

// DriverByKey returns the index of the driver with the given key, or -1.
func (d *BusinessData) DriverByKey(key string) int {
	if d == nil {
		return -1
	}
	for i, driver := range d.Drivers {
		if driver.Key == key {
			return i
		}
	}
	return -1
}

// EnsureSchemaVersion stamps the current schema version when none is set.
func (d *BusinessData) EnsureSchemaVersion() {
	if d != nil && d.SchemaVersion == "" {
		d.SchemaVersion = constants.SchemaVersion
	}
}
