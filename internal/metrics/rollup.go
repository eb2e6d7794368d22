package metrics

import (
	"fmt"

	"github.com/iwvelando/business-case/internal/projection"
	"github.com/iwvelando/business-case/pkg/constants"
)

// Period is an aggregate of consecutive monthly records.
type Period struct {
	Label          string  `json:"label"`
	StartDate      string  `json:"startDate"`
	EndDate        string  `json:"endDate"`
	Months         int     `json:"months"`
	Revenue        float64 `json:"revenue"`
	COGS           float64 `json:"cogs"`
	GrossProfit    float64 `json:"grossProfit"`
	TotalOpex      float64 `json:"totalOpex"`
	EBITDA         float64 `json:"ebitda"`
	Capex          float64 `json:"capex"`
	NetCashFlow    float64 `json:"netCashFlow"`
	CumulativeCash float64 `json:"cumulativeCash"`
}

// Annual groups records into 12-month buckets labelled "Year 1", "Year 2", …
// A trailing partial year is kept.
func Annual(records []projection.MonthlyRecord) []Period {
	return rollup(records, constants.MonthsPerYear, func(i int) string {
		return fmt.Sprintf("Year %d", i+1)
	})
}

// Quarterly groups records into 3-month buckets labelled "Y1 Q1", "Y1 Q2", …
func Quarterly(records []projection.MonthlyRecord) []Period {
	perYear := constants.MonthsPerYear / constants.MonthsPerQuarter
	return rollup(records, constants.MonthsPerQuarter, func(i int) string {
		return fmt.Sprintf("Y%d Q%d", i/perYear+1, i%perYear+1)
	})
}

func rollup(records []projection.MonthlyRecord, size int, label func(int) string) []Period {
	if len(records) == 0 {
		return nil
	}
	periods := make([]Period, 0, (len(records)+size-1)/size)
	cumulative := 0.0
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		p := Period{
			Label:     label(len(periods)),
			StartDate: records[start].Date,
			EndDate:   records[end-1].Date,
			Months:    end - start,
		}
		for _, r := range records[start:end] {
			p.Revenue += r.Revenue
			p.COGS += r.COGS
			p.GrossProfit += r.GrossProfit
			p.TotalOpex += r.TotalOpex
			p.EBITDA += r.EBITDA
			p.Capex += r.Capex
			p.NetCashFlow += r.NetCashFlow
		}
		cumulative += p.NetCashFlow
		p.CumulativeCash = cumulative
		periods = append(periods, p)
	}
	return periods
}
