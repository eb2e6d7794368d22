// Package sensitivity evaluates how the summary metrics of a business case
// respond to the values listed in its drivers.
package sensitivity

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iwvelando/business-case/internal/business"
	"github.com/iwvelando/business-case/internal/metrics"
	"github.com/iwvelando/business-case/internal/projection"
	"github.com/iwvelando/business-case/pkg/constants"
	"github.com/iwvelando/business-case/pkg/format"
)

// Point is the outcome of one driver value.
type Point struct {
	Value            float64 `json:"value"`
	ValueDisplay     string  `json:"valueDisplay"`
	TotalRevenue     float64 `json:"totalRevenue"`
	NPV              float64 `json:"npv"`
	BreakEvenMonth   int     `json:"breakEvenMonth"`
	BreakEvenReached bool    `json:"breakEvenReached"`
	DeltaNPV         float64 `json:"deltaNPV"`
}

// DriverResult holds every evaluated point of a driver. Error is set instead
// of Points when the driver path cannot be applied.
type DriverResult struct {
	Key    string  `json:"key"`
	Path   string  `json:"path"`
	Unit   string  `json:"unit,omitempty"`
	Points []Point `json:"points,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// Result is a complete sensitivity run.
type Result struct {
	Baseline metrics.Metrics `json:"baseline"`
	Drivers  []DriverResult  `json:"drivers"`
}

// Empty indicates whether no driver produced any point.
func (r Result) Empty() bool {
	for _, d := range r.Drivers {
		if len(d.Points) > 0 {
			return false
		}
	}
	return true
}

// Runner evaluates drivers concurrently.
type Runner struct {
	logger      *zap.Logger
	concurrency int
	opts        metrics.Options
}

// NewRunner constructs a Runner. A non-positive concurrency selects
// constants.DefaultSensitivityConcurrency.
func NewRunner(logger *zap.Logger, concurrency int, opts metrics.Options) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency <= 0 {
		concurrency = constants.DefaultSensitivityConcurrency
	}
	return &Runner{logger: logger, concurrency: concurrency, opts: opts}
}

// Run evaluates every point of every driver of d against the baseline
// metrics. Each point runs on its own clone of d. Results are ordered by
// driver, then by point, regardless of completion order.
func (r *Runner) Run(ctx context.Context, d *business.BusinessData) (*Result, error) {
	if d == nil {
		return nil, eris.New("sensitivity: no business data")
	}
	engine := projection.NewEngine(r.logger)
	result := &Result{
		Baseline: metrics.Calculate(engine.Generate(d), r.opts),
		Drivers:  make([]DriverResult, len(d.Drivers)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, driver := range d.Drivers {
		dr := &result.Drivers[i]
		dr.Key, dr.Path, dr.Unit = driver.Key, driver.Path, driver.Unit

		if err := business.ResolvePath(d, driver.Path); err != nil {
			dr.Error = err.Error()
			r.logger.Warn("skipping driver with invalid path",
				zap.String("op", "sensitivity.Run"),
				zap.String("driver", driver.Key),
				zap.Error(err),
			)
			continue
		}

		dr.Points = make([]Point, len(driver.Range))
		for j, v := range driver.Range {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				updated, err := business.SetValue(d, driver.Path, v)
				if err != nil {
					return eris.Wrapf(err, "sensitivity: apply driver %s", driver.Key)
				}
				m := metrics.Calculate(engine.Generate(updated), r.opts)
				dr.Points[j] = Point{
					Value:            v,
					ValueDisplay:     format.Value(v, driver.Unit),
					TotalRevenue:     m.TotalRevenue,
					NPV:              m.NPV,
					BreakEvenMonth:   m.BreakEvenMonth,
					BreakEvenReached: m.BreakEvenReached,
					DeltaNPV:         m.NPV - result.Baseline.NPV,
				}
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "sensitivity: run")
	}

	r.logger.Info("sensitivity analysis complete",
		zap.String("op", "sensitivity.Run"),
		zap.Int("drivers", len(result.Drivers)),
		zap.Float64("baselineNPV", result.Baseline.NPV),
	)
	return result, nil
}
