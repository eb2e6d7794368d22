// Package metrics folds monthly projection records into summary metrics and
// annual or quarterly roll-ups.
package metrics

import (
	"math"

	"github.com/iwvelando/business-case/internal/business"
	"github.com/iwvelando/business-case/internal/projection"
	"github.com/iwvelando/business-case/pkg/constants"
	"github.com/iwvelando/business-case/pkg/mathutil"
)

// Metrics summarizes a projection. Field names are the report contract.
type Metrics struct {
	TotalRevenue     float64 `json:"totalRevenue"`
	NetProfit        float64 `json:"netProfit"`
	NPV              float64 `json:"npv"`
	PaybackPeriod    int     `json:"paybackPeriod"`
	BreakEvenMonth   int     `json:"breakEvenMonth"`
	BreakEvenReached bool    `json:"breakEvenReached"`
	ROA              float64 `json:"roa"`
}

// Options tune the aggregation.
type Options struct {
	// AnnualDiscountRate discounts monthly cash flows at rate/12. Nil selects
	// constants.DefaultAnnualDiscountRate; zero disables discounting.
	AnnualDiscountRate *float64
}

// WithDiscountRate returns Options discounting at the given annual rate.
func WithDiscountRate(rate float64) Options {
	return Options{AnnualDiscountRate: &rate}
}

func (o Options) monthlyRate() float64 {
	rate := constants.DefaultAnnualDiscountRate
	if o.AnnualDiscountRate != nil {
		rate = *o.AnnualDiscountRate
	}
	return rate / constants.MonthsPerYear
}

// DefaultMetrics is returned when there is nothing to aggregate.
func DefaultMetrics() Metrics {
	return Metrics{
		TotalRevenue:     constants.DefaultMetricsTotalRevenue,
		NetProfit:        constants.DefaultMetricsNetProfit,
		NPV:              constants.DefaultMetricsNPV,
		PaybackPeriod:    constants.DefaultMetricsPaybackPeriod,
		BreakEvenMonth:   constants.DefaultMetricsBreakEvenMonth,
		BreakEvenReached: false,
		ROA:              constants.DefaultMetricsROA,
	}
}

// Summarize projects d and aggregates the records. A nil document yields
// DefaultMetrics.
func Summarize(d *business.BusinessData, opts Options) Metrics {
	if d == nil {
		return DefaultMetrics()
	}
	return Calculate(projection.Generate(d), opts)
}

// Calculate aggregates records. Empty input yields DefaultMetrics.
//
// NetProfit is a flat constants.NetProfitMargin of total revenue rather than
// the sum of monthly EBITDA; report narratives quote this exact figure.
func Calculate(records []projection.MonthlyRecord, opts Options) Metrics {
	if len(records) == 0 {
		return DefaultMetrics()
	}

	rate := opts.monthlyRate()
	var m Metrics
	var cumulative, capex float64
	for i, r := range records {
		m.TotalRevenue += r.Revenue
		m.NPV += r.NetCashFlow * mathutil.DiscountFactor(rate, i+1)
		capex += math.Abs(r.Capex)

		cumulative += r.NetCashFlow
		if !m.BreakEvenReached && cumulative > 0 {
			m.BreakEvenMonth = i + 1
			m.BreakEvenReached = true
		}
	}

	m.NetProfit = m.TotalRevenue * constants.NetProfitMargin
	if m.BreakEvenReached {
		m.PaybackPeriod = m.BreakEvenMonth
	} else {
		m.BreakEvenMonth = constants.FallbackBreakEvenMonth
		m.PaybackPeriod = int(math.Ceil(constants.FallbackPaybackFraction * float64(len(records))))
	}
	if capex > 0 {
		m.ROA = m.NetProfit / capex
	}
	return m
}
