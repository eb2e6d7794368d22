package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/business-case/internal/business"
	"github.com/iwvelando/business-case/pkg/constants"
	"github.com/iwvelando/business-case/pkg/datetime"
	"github.com/iwvelando/business-case/pkg/value"
)

// Report holds the findings of a structural check. Findings never block
// computation; only Errors mark the document as invalid for its model.
type Report struct {
	Warnings    []string `json:"warnings"`
	Errors      []string `json:"errors"`
	Suggestions []string `json:"suggestions"`
}

// Valid reports whether no errors were found.
func (r Report) Valid() bool {
	return len(r.Errors) == 0
}

// Empty reports whether there are no findings at all.
func (r Report) Empty() bool {
	return len(r.Warnings) == 0 && len(r.Errors) == 0 && len(r.Suggestions) == 0
}

func (r *Report) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Report) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Report) suggestf(format string, args ...any) {
	r.Suggestions = append(r.Suggestions, fmt.Sprintf(format, args...))
}

// ValidateBusinessData runs every structural check on d.
func ValidateBusinessData(d *business.BusinessData) Report {
	r := Report{Warnings: []string{}, Errors: []string{}, Suggestions: []string{}}
	if d == nil {
		r.errorf("no business data loaded")
		return r
	}

	validateMeta(d, &r)
	validateGrowth(d, &r)
	validateModelFields(d, &r)
	validateDrivers(d, &r)
	validateRationales(d, &r)
	return r
}

func validateMeta(d *business.BusinessData, r *Report) {
	if d.Meta.Periods > constants.MaxPeriods {
		r.warnf("meta.periods is %d; projections are capped at %d periods", d.Meta.Periods, constants.MaxPeriods)
	}
	if !d.Meta.BusinessModel.Valid() {
		r.warnf("unknown business model %q; expected %s, %s or %s", d.Meta.BusinessModel,
			business.ModelRecurring, business.ModelUnitSales, business.ModelCostSavings)
	}
	if d.Meta.StartDate != "" {
		if err := datetime.ValidatePeriod(d.Meta.StartDate); err != nil {
			r.warnf("meta.start_date: %v; %s is used instead", err, constants.DefaultStartDate)
		}
	}
}

func validateGrowth(d *business.BusinessData, r *Report) {
	global := d.Assumptions.GrowthSettings.Populated()
	if len(global) > 1 {
		r.errorf("multiple growth patterns populated in growth_settings: %s; keep exactly one", strings.Join(global, ", "))
	}

	for _, segment := range d.Assumptions.Customers.Segments {
		if segment.Volume.Ambiguous() {
			r.warnf("segment %q defines both a pattern and a series; the %s representation is used", segment.ID, segment.Volume.Kind())
		}
		pattern, ok := segment.Volume.Pattern()
		if !ok || len(global) == 0 {
			continue
		}
		r.warnf("segment %q uses growth pattern %q while growth_settings defines %s; the growth pattern is duplicated",
			segment.ID, pattern.PatternType, strings.Join(global, ", "))
	}
}

func validateModelFields(d *business.BusinessData, r *Report) {
	a := d.Assumptions
	hasCostSavings := a.CostSavings != nil && (len(a.CostSavings.BaselineCosts) > 0 || len(a.CostSavings.EfficiencyGains) > 0)

	switch d.Meta.BusinessModel {
	case business.ModelRecurring, business.ModelUnitSales:
		if a.Pricing.AvgUnitPrice == nil {
			r.errorf("%s model requires assumptions.pricing.avg_unit_price", d.Meta.BusinessModel)
		}
		if len(a.Customers.Segments) == 0 {
			r.errorf("%s model requires at least one customer segment", d.Meta.BusinessModel)
		}
		if hasCostSavings {
			r.suggestf("cost savings data is ignored by the %s model; consider the %s model", d.Meta.BusinessModel, business.ModelCostSavings)
		}
	case business.ModelCostSavings:
		if !hasCostSavings {
			r.errorf("%s model requires baseline costs or efficiency gains", business.ModelCostSavings)
		}
		if a.Pricing.AvgUnitPrice != nil {
			r.suggestf("pricing is set on a %s model; consider %s or %s", business.ModelCostSavings, business.ModelRecurring, business.ModelUnitSales)
		}
	}
}

func validateDrivers(d *business.BusinessData, r *Report) {
	if len(d.Drivers) == 0 {
		r.suggestf("no drivers defined; add drivers to run a sensitivity analysis")
		return
	}
	seen := make(map[string]bool, len(d.Drivers))
	for _, driver := range d.Drivers {
		if seen[driver.Key] {
			r.warnf("driver key %q is defined more than once", driver.Key)
		}
		seen[driver.Key] = true

		if !strings.HasSuffix(driver.Path, business.PathSuffix) && driver.Path != business.MetaPeriodsPath {
			r.warnf("driver %q path %q should end in %s", driver.Key, driver.Path, business.PathSuffix)
		} else if err := business.ResolvePath(d, driver.Path); err != nil {
			r.warnf("driver %q: %v", driver.Key, err)
		}
		if len(driver.Range) < 2 {
			r.warnf("driver %q needs at least two range points", driver.Key)
		} else if driver.Range[0] > driver.Range[len(driver.Range)-1] {
			r.warnf("driver %q range should run from low to high", driver.Key)
		}
		checkRationale(r, fmt.Sprintf("driver %q", driver.Key), driver.Rationale)
	}
}

func validateRationales(d *business.BusinessData, r *Report) {
	a := d.Assumptions
	for i, segment := range a.Customers.Segments {
		checkRationale(r, fmt.Sprintf("segment %q", segment.ID), segment.Rationale)
		if series, ok := segment.Volume.Series(); ok {
			for j, n := range series {
				checkNumber(r, fmt.Sprintf("assumptions.customers.segments[%d].volume.series[%d]", i, j), &n)
			}
		}
		if pattern, ok := segment.Volume.Pattern(); ok {
			checkNumber(r, fmt.Sprintf("assumptions.customers.segments[%d].volume.base", i), &pattern.Base)
		}
	}
	checkNumber(r, "assumptions.pricing.avg_unit_price", a.Pricing.AvgUnitPrice)
	checkNumber(r, "assumptions.unit_economics.cogs_pct", a.UnitEconomics.COGSPct)
	checkNumber(r, "assumptions.unit_economics.cac", a.UnitEconomics.CAC)
	for i, line := range a.Opex {
		checkNumber(r, fmt.Sprintf("assumptions.opex[%d]", i), &line.Value)
	}
	for i, line := range a.Capex {
		checkNumber(r, fmt.Sprintf("assumptions.capex[%d]", i), &line.Value)
	}
	if cs := a.CostSavings; cs != nil {
		for i, cost := range cs.BaselineCosts {
			checkNumber(r, fmt.Sprintf("assumptions.cost_savings.baseline_costs[%d].current_cost", i), &cost.CurrentCost)
			checkNumber(r, fmt.Sprintf("assumptions.cost_savings.baseline_costs[%d].improved_cost", i), cost.ImprovedCost)
		}
		for i, gain := range cs.EfficiencyGains {
			prefix := fmt.Sprintf("assumptions.cost_savings.efficiency_gains[%d]", i)
			checkNumber(r, prefix+".baseline_value", &gain.BaselineValue)
			checkNumber(r, prefix+".improved_value", &gain.ImprovedValue)
			checkNumber(r, prefix+".value_per_unit", &gain.ValuePerUnit)
		}
	}
}

func checkNumber(r *Report, field string, n *value.Number) {
	if n == nil {
		return
	}
	checkRationale(r, field, n.Rationale)
}

func checkRationale(r *Report, field, rationale string) {
	switch {
	case strings.TrimSpace(rationale) == "":
		r.warnf("%s has no rationale", field)
	case value.IsPlaceholder(rationale):
		r.warnf("%s rationale looks like a placeholder: %q", field, rationale)
	}
}
