// Package projection expands the sparse assumptions of a business case into a
// fixed-length sequence of monthly P&L and cash-flow records.
package projection

import (
	"github.com/iwvelando/business-case/internal/business"
	"github.com/iwvelando/business-case/pkg/constants"
	"github.com/iwvelando/business-case/pkg/datetime"
	"github.com/iwvelando/business-case/pkg/mathutil"
	"go.uber.org/zap"
)

// MonthlyRecord holds one period of the projection. Costs are stored as
// non-positive numbers.
type MonthlyRecord struct {
	Month           int     `json:"month"`
	Date            string  `json:"date"`
	SalesVolume     float64 `json:"salesVolume"`
	UnitPrice       float64 `json:"unitPrice"`
	Revenue         float64 `json:"revenue"`
	COGS            float64 `json:"cogs"`
	GrossProfit     float64 `json:"grossProfit"`
	SalesMarketing  float64 `json:"salesMarketing"`
	TotalCAC        float64 `json:"totalCAC"`
	CAC             float64 `json:"cac"`
	RD              float64 `json:"rd"`
	GA              float64 `json:"ga"`
	EfficiencyGains float64 `json:"efficiencyGains"`
	TotalOpex       float64 `json:"totalOpex"`
	EBITDA          float64 `json:"ebitda"`
	Capex           float64 `json:"capex"`
	NetCashFlow     float64 `json:"netCashFlow"`
}

// Inputs are the resolved assumptions a projection runs on, after defaults.
type Inputs struct {
	Periods         int
	StartDate       string
	BaseVolume      float64
	UnitPrice       float64
	COGSPct         float64
	CAC             float64
	SalesMarketing  float64
	RD              float64
	GA              float64
	EfficiencyGains float64
}

// Engine generates projections.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates a projection engine with the given logger.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Generate is a convenience wrapper around an Engine without logging.
func Generate(d *business.BusinessData) []MonthlyRecord {
	return NewEngine(nil).Generate(d)
}

// Generate builds the monthly records for d. A nil document yields nil.
// The result depends only on d; calling it twice gives identical records.
func (e *Engine) Generate(d *business.BusinessData) []MonthlyRecord {
	if d == nil {
		e.logger.Debug("no business data, skipping projection",
			zap.String("op", "projection.Generate"),
		)
		return nil
	}

	in := Resolve(d)
	e.logger.Debug("generating projection",
		zap.String("op", "projection.Generate"),
		zap.Int("periods", in.Periods),
		zap.String("startDate", in.StartDate),
		zap.Float64("baseVolume", in.BaseVolume),
		zap.Float64("unitPrice", in.UnitPrice),
		zap.Float64("efficiencyGains", in.EfficiencyGains),
	)

	dates := datetime.PeriodDates(in.StartDate, in.Periods)
	records := make([]MonthlyRecord, in.Periods)
	for i := range records {
		records[i] = in.record(i, dates[i])
	}
	return records
}

// Resolve applies the documented defaults to d.
func Resolve(d *business.BusinessData) Inputs {
	a := d.Assumptions
	in := Inputs{
		Periods:        ClampPeriods(d.Meta.Periods),
		StartDate:      d.Meta.StartDate,
		BaseVolume:     constants.DefaultBaseVolume,
		UnitPrice:      constants.DefaultUnitPrice,
		COGSPct:        constants.DefaultCOGSPct,
		CAC:            constants.DefaultCAC,
		SalesMarketing: constants.DefaultSalesMarketing,
		RD:             constants.DefaultRD,
		GA:             constants.DefaultGA,
	}
	if in.StartDate == "" || datetime.ValidatePeriod(in.StartDate) != nil {
		in.StartDate = constants.DefaultStartDate
	}

	// Only a time series feeds the base volume; pattern segments do not.
	if segments := a.Customers.Segments; len(segments) > 0 {
		if first, ok := segments[0].Volume.FirstValue(); ok {
			in.BaseVolume = first
		}
	}
	if a.Pricing.AvgUnitPrice != nil {
		in.UnitPrice = a.Pricing.AvgUnitPrice.Value
	}
	if a.UnitEconomics.COGSPct != nil {
		in.COGSPct = a.UnitEconomics.COGSPct.Value
	}
	if a.UnitEconomics.CAC != nil {
		in.CAC = a.UnitEconomics.CAC.Value
	}
	opex := []*float64{&in.SalesMarketing, &in.RD, &in.GA}
	for i, line := range a.Opex {
		if i >= len(opex) {
			break
		}
		*opex[i] = line.Value.Value
	}
	if d.Meta.BusinessModel == business.ModelCostSavings {
		in.EfficiencyGains = EfficiencyGains(a.CostSavings)
	}
	return in
}

// ClampPeriods maps a non-positive horizon to the maximum and caps the rest.
func ClampPeriods(periods int) int {
	if periods <= 0 || periods > constants.MaxPeriods {
		return constants.MaxPeriods
	}
	return periods
}

// EfficiencyGains sums improved_value × value_per_unit over every rule. It
// is the ongoing value of the improved process, not the savings delta.
func EfficiencyGains(cs *business.CostSavings) float64 {
	if cs == nil {
		return 0
	}
	total := 0.0
	for _, gain := range cs.EfficiencyGains {
		total += gain.MonthlyValue()
	}
	return mathutil.RoundHalfUp(total)
}

// CapexAt is the capital expenditure of period i.
func CapexAt(i int) float64 {
	switch {
	case i == 0:
		return -constants.InitialCapex
	case i%constants.MonthsPerYear == 0:
		return -constants.RecurringCapex
	default:
		return 0
	}
}

func (in Inputs) record(i int, date string) MonthlyRecord {
	round := mathutil.RoundHalfUp
	month := float64(i)

	r := MonthlyRecord{
		Month:           i + 1,
		Date:            date,
		SalesVolume:     round(in.BaseVolume * (1 + constants.MonthlyVolumeGrowth*month)),
		UnitPrice:       in.UnitPrice,
		CAC:             in.CAC,
		SalesMarketing:  cost(in.SalesMarketing + month*constants.SalesMarketingIncrement),
		RD:              cost(in.RD + month*constants.RDIncrement),
		GA:              cost(in.GA + month*constants.GAIncrement),
		EfficiencyGains: in.EfficiencyGains,
		Capex:           CapexAt(i),
	}
	r.Revenue = round(r.SalesVolume * r.UnitPrice)
	r.COGS = cost(r.Revenue * in.COGSPct)
	r.GrossProfit = r.Revenue + r.COGS
	r.TotalCAC = cost(r.SalesVolume * in.CAC)
	r.TotalOpex = r.SalesMarketing + r.TotalCAC + r.RD + r.GA + r.EfficiencyGains
	r.EBITDA = r.GrossProfit + r.TotalOpex
	r.NetCashFlow = r.EBITDA + r.Capex
	return r
}

// cost rounds v and stores it as a non-positive amount. Subtracting from zero
// keeps a zero cost at +0 so it never encodes as -0.
func cost(v float64) float64 {
	return 0 - mathutil.RoundHalfUp(v)
}
