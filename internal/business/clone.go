package business

import "github.com/iwvelando/business-case/pkg/value"

// Clone returns a deep copy. Mutations are always applied to a clone so a
// failed update never leaves the caller's document half-written.
func (d *BusinessData) Clone() *BusinessData {
	if d == nil {
		return nil
	}
	out := &BusinessData{
		SchemaVersion: d.SchemaVersion,
		Meta:          d.Meta,
		Assumptions:   d.Assumptions.clone(),
	}
	if d.Drivers != nil {
		out.Drivers = make([]Driver, len(d.Drivers))
		for i, driver := range d.Drivers {
			driver.Range = append([]float64(nil), driver.Range...)
			out.Drivers[i] = driver
		}
	}
	return out
}

func (a Assumptions) clone() Assumptions {
	out := Assumptions{
		Pricing:       Pricing{AvgUnitPrice: cloneNumber(a.Pricing.AvgUnitPrice)},
		UnitEconomics: UnitEconomics{COGSPct: cloneNumber(a.UnitEconomics.COGSPct), CAC: cloneNumber(a.UnitEconomics.CAC)},
		Opex:          append([]CostLine(nil), a.Opex...),
		Capex:         append([]CostLine(nil), a.Capex...),
	}
	if a.Customers.Segments != nil {
		out.Customers.Segments = make([]CustomerSegment, len(a.Customers.Segments))
		for i, segment := range a.Customers.Segments {
			segment.Volume = segment.Volume.clone()
			segment.SourcedVolume = segment.SourcedVolume.Clone()
			out.Customers.Segments[i] = segment
		}
	}
	if a.CostSavings != nil {
		cs := &CostSavings{
			EfficiencyGains: append([]EfficiencyGain(nil), a.CostSavings.EfficiencyGains...),
		}
		if a.CostSavings.BaselineCosts != nil {
			cs.BaselineCosts = make([]BaselineCost, len(a.CostSavings.BaselineCosts))
			for i, cost := range a.CostSavings.BaselineCosts {
				cost.ImprovedCost = cloneNumber(cost.ImprovedCost)
				cs.BaselineCosts[i] = cost
			}
		}
		out.CostSavings = cs
	}
	if a.GrowthSettings != nil {
		gs := &GrowthSettings{}
		if g := a.GrowthSettings.GeomGrowth; g != nil {
			gs.GeomGrowth = &GeomGrowth{Start: g.Start, CAGR: g.CAGR, Cap: cloneNumber(g.Cap)}
		}
		if s := a.GrowthSettings.SeasonalGrowth; s != nil {
			gs.SeasonalGrowth = &SeasonalGrowth{BaseYearTotal: s.BaseYearTotal, SeasonShares: append([]float64(nil), s.SeasonShares...)}
		}
		if l := a.GrowthSettings.LinearGrowth; l != nil {
			copied := *l
			gs.LinearGrowth = &copied
		}
		out.GrowthSettings = gs
	}
	return out
}

func (v Volume) clone() Volume {
	out := v
	if v.series != nil {
		out.series = append([]value.Number(nil), v.series...)
	}
	return out
}

func cloneNumber(n *value.Number) *value.Number {
	if n == nil {
		return nil
	}
	copied := *n
	return &copied
}
