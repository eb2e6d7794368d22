// Package testutil provides common fixtures and lookup helpers for testing.
package testutil

import (
	"github.com/iwvelando/business-case/internal/business"
	"github.com/iwvelando/business-case/internal/market"
	"github.com/iwvelando/business-case/internal/projection"
	"github.com/iwvelando/business-case/pkg/value"
)

// FindRecord finds a monthly record by date in the records slice.
// Returns a pointer to the record if found, nil otherwise.
func FindRecord(records []projection.MonthlyRecord, date string) *projection.MonthlyRecord {
	for i := range records {
		if records[i].Date == date {
			return &records[i]
		}
	}
	return nil
}

// NumberPtr returns a pointer to a new value.Number.
func NumberPtr(v float64, unit, rationale string) *value.Number {
	n := value.NewNumber(v, unit, rationale)
	return &n
}

// RecurringBusinessData is a 24-month subscription business case with one
// time-series segment and a pattern segment.
func RecurringBusinessData() *business.BusinessData {
	return &business.BusinessData{
		SchemaVersion: "1.0",
		Meta: business.Meta{
			Title:         "Team plan launch",
			Currency:      "EUR",
			Periods:       24,
			Frequency:     "monthly",
			BusinessModel: business.ModelRecurring,
			StartDate:     "2025-01",
		},
		Assumptions: business.Assumptions{
			Customers: business.Customers{Segments: []business.CustomerSegment{
				{
					ID:        "smb",
					Label:     "Small business",
					Rationale: "Pilot conversions",
					Volume: business.TimeSeriesOf(
						value.NewNumber(1000, "customers", "Pilot conversions in 2024"),
						value.NewNumber(1100, "customers", "Referral uplift"),
					),
				},
				{
					ID:        "ent",
					Label:     "Enterprise",
					Rationale: "Sales pipeline",
					Volume:    business.PatternOf(business.PatternGeomGrowth, value.NewNumber(20, "customers", "Qualified pipeline")),
				},
			}},
			Pricing: business.Pricing{AvgUnitPrice: NumberPtr(50, "EUR", "List price of the team plan")},
			UnitEconomics: business.UnitEconomics{
				COGSPct: NumberPtr(0.3, "ratio", "Hosting and support share"),
				CAC:     NumberPtr(2, "EUR", "Paid acquisition per customer"),
			},
			Opex: []business.CostLine{
				{Name: "Sales & Marketing", Value: value.NewNumber(15000, "EUR", "Two marketers")},
				{Name: "R&D", Value: value.NewNumber(8000, "EUR", "One engineer")},
				{Name: "G&A", Value: value.NewNumber(5000, "EUR", "Office and accounting")},
			},
		},
		Drivers: []business.Driver{
			{Key: "price", Path: "assumptions.pricing.avg_unit_price.value", Range: []float64{40, 60}, Rationale: "Competitor price band", Unit: "EUR"},
		},
	}
}

// CostSavingsBusinessData is a cost_savings case with a single efficiency
// gain of 8 hrs at 50 EUR/hr against a 40 hr baseline.
func CostSavingsBusinessData() *business.BusinessData {
	return &business.BusinessData{
		SchemaVersion: "1.0",
		Meta: business.Meta{
			Title:         "Reconciliation automation",
			Currency:      "EUR",
			Periods:       12,
			BusinessModel: business.ModelCostSavings,
			StartDate:     "2025-06",
		},
		Assumptions: business.Assumptions{
			CostSavings: &business.CostSavings{
				BaselineCosts: []business.BaselineCost{
					{ID: "manual", Label: "Manual reconciliation", Category: "operations", CurrentCost: value.NewNumber(2000, "EUR", "Finance team timesheets")},
				},
				EfficiencyGains: []business.EfficiencyGain{
					{
						ID:            "recon-hours",
						Label:         "Reconciliation hours",
						Metric:        "hours per month",
						BaselineValue: value.NewNumber(40, "hrs", "Measured in Q1"),
						ImprovedValue: value.NewNumber(8, "hrs", "Vendor benchmark"),
						ValuePerUnit:  value.NewNumber(50, "EUR/hr", "Loaded hourly rate"),
					},
				},
			},
		},
	}
}

// MarketFunnel is a complete market analysis whose extracted volume is
// 2,500,000 × 60% × 30% × 8% = 36,000.
func MarketFunnel() *market.MarketData {
	return &market.MarketData{
		SchemaVersion: "1.0",
		Meta:          &market.Meta{Title: "Team plan market", Currency: "EUR"},
		MarketSizing: &market.MarketSizing{
			TotalAddressableMarket:       &market.TotalAddressableMarket{BaseValue: value.NewNumber(2500000, "customers", "EU SMB census")},
			ServiceableAddressableMarket: &market.ServiceableAddressableMarket{PercentageOfTAM: value.NewNumber(60, "%", "Digitally mature share")},
			ServiceableObtainableMarket:  &market.ServiceableObtainableMarket{PercentageOfSAM: value.NewNumber(30, "%", "Reachable via partners")},
		},
		MarketShare: &market.MarketShare{
			CurrentPosition: &market.CurrentPosition{CurrentShare: value.NewNumber(0, "%", "Not launched")},
			TargetPosition:  &market.TargetPosition{TargetShare: value.NewNumber(8, "%", "Comparable launches"), TargetDate: "2027-12"},
		},
	}
}
