// Package report assembles the printable view of a business case: summary
// metric cards, annual and quarterly roll-ups and revenue and cost breakdowns.
package report

import (
	"fmt"
	"math"

	"github.com/iwvelando/business-case/internal/business"
	"github.com/iwvelando/business-case/internal/metrics"
	"github.com/iwvelando/business-case/internal/projection"
	"github.com/iwvelando/business-case/pkg/constants"
	"github.com/iwvelando/business-case/pkg/format"
	"github.com/iwvelando/business-case/pkg/mathutil"
)

// Card keys, in display order.
const (
	CardTotalRevenue   = "totalRevenue"
	CardNetProfit      = "netProfit"
	CardNPV            = "npv"
	CardPaybackPeriod  = "paybackPeriod"
	CardBreakEvenMonth = "breakEvenMonth"
	CardROA            = "roa"
)

// Card is one headline metric.
type Card struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Display string  `json:"display"`
}

// Line is one row of a breakdown. Share is the percentage of the breakdown
// total.
type Line struct {
	Label   string  `json:"label"`
	Amount  float64 `json:"amount"`
	Display string  `json:"display"`
	Share   float64 `json:"share"`
}

// Report is the assembled view.
type Report struct {
	Title            string                     `json:"title"`
	Description      string                     `json:"description,omitempty"`
	Currency         string                     `json:"currency"`
	BusinessModel    string                     `json:"businessModel"`
	StartDate        string                     `json:"startDate"`
	EndDate          string                     `json:"endDate"`
	Periods          int                        `json:"periods"`
	Summary          []Card                     `json:"summary"`
	Annual           []metrics.Period           `json:"annual"`
	Quarterly        []metrics.Period           `json:"quarterly"`
	RevenueBreakdown []Line                     `json:"revenueBreakdown"`
	CostBreakdown    []Line                     `json:"costBreakdown"`
	Records          []projection.MonthlyRecord `json:"records"`
}

// Build assembles a Report. d may be nil; the title and currency then fall
// back to neutral defaults.
func Build(d *business.BusinessData, records []projection.MonthlyRecord, m metrics.Metrics) *Report {
	r := &Report{
		Title:     "Business case",
		Currency:  "USD",
		Periods:   len(records),
		Annual:    metrics.Annual(records),
		Quarterly: metrics.Quarterly(records),
		Records:   records,
	}
	if d != nil {
		if d.Meta.Title != "" {
			r.Title = d.Meta.Title
		}
		if d.Meta.Currency != "" {
			r.Currency = d.Meta.Currency
		}
		r.Description = d.Meta.Description
		r.BusinessModel = string(d.Meta.BusinessModel)
	}
	if len(records) > 0 {
		r.StartDate = records[0].Date
		r.EndDate = records[len(records)-1].Date
	}

	r.Summary = r.cards(m)
	r.RevenueBreakdown, r.CostBreakdown = r.breakdowns(records)
	return r
}

// Card returns the summary card with the given key.
func (r *Report) Card(key string) (Card, bool) {
	for _, c := range r.Summary {
		if c.Key == key {
			return c, true
		}
	}
	return Card{}, false
}

// Money formats an amount in the report currency.
func (r *Report) Money(v float64) string {
	return format.Currency(v, r.Currency)
}

func (r *Report) cards(m metrics.Metrics) []Card {
	breakEven := fmt.Sprintf("Month %d", m.BreakEvenMonth)
	if !m.BreakEvenReached {
		breakEven = fmt.Sprintf("Not reached (month %d assumed)", m.BreakEvenMonth)
	}
	return []Card{
		{Key: CardTotalRevenue, Label: "Total revenue", Value: m.TotalRevenue, Display: r.Money(m.TotalRevenue)},
		{Key: CardNetProfit, Label: "Net profit", Value: m.NetProfit, Display: r.Money(m.NetProfit)},
		{Key: CardNPV, Label: "NPV", Value: m.NPV, Display: r.Money(m.NPV)},
		{Key: CardPaybackPeriod, Label: "Payback period", Value: float64(m.PaybackPeriod), Display: fmt.Sprintf("%d months", m.PaybackPeriod)},
		{Key: CardBreakEvenMonth, Label: "Break-even", Value: float64(m.BreakEvenMonth), Display: breakEven},
		{Key: CardROA, Label: "Return on assets", Value: m.ROA, Display: format.Percentage(m.ROA * constants.PercentageMultiplier)},
	}
}

func (r *Report) breakdowns(records []projection.MonthlyRecord) ([]Line, []Line) {
	var revenue, cogs, gross, salesMarketing, cac, rd, ga, gains, capex float64
	for _, rec := range records {
		revenue += rec.Revenue
		cogs += rec.COGS
		gross += rec.GrossProfit
		salesMarketing += rec.SalesMarketing
		cac += rec.TotalCAC
		rd += rec.RD
		ga += rec.GA
		gains += rec.EfficiencyGains
		capex += rec.Capex
	}

	revenueLines := []Line{
		r.line("Revenue", revenue, revenue),
		r.line("Cost of goods sold", cogs, revenue),
		r.line("Gross profit", gross, revenue),
	}

	// Costs are non-positive; efficiency gains reduce them.
	costTotal := math.Abs(salesMarketing + cac + rd + ga + capex)
	costLines := []Line{
		r.line("Sales & marketing", salesMarketing, costTotal),
		r.line("Customer acquisition", cac, costTotal),
		r.line("R&D", rd, costTotal),
		r.line("G&A", ga, costTotal),
		r.line("Capital expenditure", capex, costTotal),
	}
	balanceShares(costLines)
	if !mathutil.IsZero(gains) {
		costLines = append(costLines, r.line("Efficiency gains", gains, costTotal))
	}
	return revenueLines, costLines
}

func (r *Report) line(label string, amount, total float64) Line {
	amount = mathutil.RoundHalfUp(amount)
	share := 0.0
	if total != 0 {
		share = mathutil.Round(mathutil.CalculatePercentage(math.Abs(amount), math.Abs(total)), constants.ShareDecimalPlaces)
	}
	return Line{Label: label, Amount: amount, Display: r.Money(amount), Share: share}
}

// balanceShares moves the rounding remainder onto the largest line so that
// shares of a non-empty breakdown add up to exactly 100.
func balanceShares(lines []Line) {
	var sum float64
	largest := -1
	for i, l := range lines {
		sum += l.Share
		if largest < 0 || l.Share > lines[largest].Share {
			largest = i
		}
	}
	if largest < 0 || mathutil.IsZero(sum) {
		return
	}
	lines[largest].Share = mathutil.Round(lines[largest].Share+constants.PercentageMultiplier-sum, constants.ShareDecimalPlaces)
}
