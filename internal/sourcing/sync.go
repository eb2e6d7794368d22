package sourcing

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/iwvelando/business-case/internal/market"
	"github.com/iwvelando/business-case/pkg/constants"
	"github.com/iwvelando/business-case/pkg/format"
	"github.com/iwvelando/business-case/pkg/mathutil"
	"github.com/iwvelando/business-case/pkg/value"
)

var (
	// ErrSourceNotAvailable is returned when switching to a source the
	// assumption does not hold.
	ErrSourceNotAvailable = eris.New("data source not available")

	// ErrTargetSegmentNotFound is returned when a transfer names no segment.
	ErrTargetSegmentNotFound = eris.New("target segment not found")
)

// DefaultVolumeUnit labels market-derived volumes whose TAM has no unit.
const DefaultVolumeUnit = "customers"

// TransferOptions tune TransferMarketVolume.
type TransferOptions struct {
	// UserValue seeds the user_input source. A zero placeholder is used
	// when nil.
	UserValue *value.Number

	// Existing is the assumption already attached to the segment. Its
	// sources are kept and the market_analysis source is refreshed.
	Existing *Assumption

	SourceID  string
	UserNotes string
}

// AlignmentResult compares a stored assumption with the current market data.
type AlignmentResult struct {
	IsAligned      bool    `json:"is_aligned"`
	VariancePct    float64 `json:"variance_pct"`
	StoredValue    float64 `json:"stored_value"`
	MarketValue    float64 `json:"market_value"`
	Recommendation string  `json:"recommendation"`
}

// Syncer moves values between the market analysis and business assumptions.
// Every operation returns a new Assumption and leaves its inputs untouched.
type Syncer struct {
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
	threshold float64
}

// NewSyncer builds a Syncer. A non-positive threshold selects
// constants.DefaultAlignmentThreshold; a nil clock selects time.Now.
func NewSyncer(logger *zap.Logger, threshold float64, now func() time.Time) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if threshold <= 0 {
		threshold = constants.DefaultAlignmentThreshold
	}
	if now == nil {
		now = time.Now
	}
	return &Syncer{
		logger:    logger,
		now:       now,
		newID:     func() string { return uuid.NewString() },
		threshold: threshold,
	}
}

// Threshold returns the alignment variance threshold in percent.
func (s *Syncer) Threshold() float64 {
	return s.threshold
}

// TransferMarketVolume builds an assumption whose active source is the volume
// extracted from md. The segment itself is not touched; callers apply the
// result.
func (s *Syncer) TransferMarketVolume(md *market.MarketData, targetSegmentID string, opts TransferOptions) (*Assumption, error) {
	if targetSegmentID == "" {
		return nil, eris.Wrap(ErrTargetSegmentNotFound, "sourcing: transfer market volume")
	}

	out := opts.Existing.Clone()
	if out == nil {
		out = &Assumption{}
	}
	if out.Sources == nil {
		out.Sources = make(map[SourceType]SourceEntry)
	}

	estimate := market.ExtractVolume(md)
	sourceID := opts.SourceID
	if sourceID == "" {
		sourceID = s.newID()
	}
	out.Sources[SourceMarketAnalysis] = s.marketEntry(estimate, sourceID, opts.UserNotes)

	if _, ok := out.Sources[SourceUserInput]; !ok {
		userValue := value.NewNumber(0, out.Sources[SourceMarketAnalysis].Data.Unit, "")
		modified := false
		if opts.UserValue != nil {
			userValue = *opts.UserValue
			modified = true
		}
		out.Sources[SourceUserInput] = SourceEntry{
			Data:           userValue,
			SourceMetadata: SourceMetadata{Type: SourceUserInput, Timestamp: s.now()},
			UserModified:   modified,
		}
	}

	out.activate(SourceMarketAnalysis)
	out.SyncStatus = StatusCurrent

	s.logger.Debug("transferred market volume",
		zap.String("op", "sourcing.TransferMarketVolume"),
		zap.String("segment", targetSegmentID),
		zap.String("sourceID", sourceID),
		zap.Float64("volume", out.Value),
		zap.String("confidence", string(estimate.ConfidenceLevel)),
	)
	return out, nil
}

// SwitchDataSource activates another source already held by a.
func (s *Syncer) SwitchDataSource(a *Assumption, target SourceType) (*Assumption, error) {
	if _, ok := a.Source(target); !ok {
		return nil, eris.Wrapf(ErrSourceNotAvailable, "sourcing: switch to %s", target)
	}
	out := a.Clone()
	out.activate(target)
	if target == SourceMarketAnalysis {
		out.SyncStatus = StatusCurrent
	} else {
		out.SyncStatus = StatusNeverSynced
	}

	s.logger.Debug("switched data source",
		zap.String("op", "sourcing.SwitchDataSource"),
		zap.String("source", string(target)),
		zap.Float64("value", out.Value),
	)
	return out, nil
}

// MarkAsStale returns copies of as in which every market-sourced assumption
// is marked stale. Nil entries stay nil.
func (s *Syncer) MarkAsStale(as []*Assumption) []*Assumption {
	out := make([]*Assumption, len(as))
	marked := 0
	for i, a := range as {
		out[i] = a.Clone()
		if out[i].IsMarketSourced() {
			out[i].SyncStatus = StatusStale
			marked++
		}
	}
	if marked > 0 {
		s.logger.Info("marked market-sourced assumptions stale",
			zap.String("op", "sourcing.MarkAsStale"),
			zap.Int("count", marked),
		)
	}
	return out
}

// Resync refreshes the market_analysis source from md. When it is the
// active source the top-level value follows and the status returns to
// current. Other sources are kept.
func (s *Syncer) Resync(a *Assumption, md *market.MarketData) (*Assumption, error) {
	previous, ok := a.Source(SourceMarketAnalysis)
	if !ok {
		return nil, eris.Wrapf(ErrSourceNotAvailable, "sourcing: resync %s", SourceMarketAnalysis)
	}
	out := a.Clone()
	estimate := market.ExtractVolume(md)
	out.Sources[SourceMarketAnalysis] = s.marketEntry(estimate, previous.SourceMetadata.SourceID, previous.SourceMetadata.UserNotes)
	if out.ActiveSource == SourceMarketAnalysis {
		out.activate(SourceMarketAnalysis)
		out.SyncStatus = StatusCurrent
	}

	s.logger.Debug("resynced market source",
		zap.String("op", "sourcing.Resync"),
		zap.Float64("previous", previous.Data.Value),
		zap.Float64("current", estimate.ProjectedVolume),
	)
	return out, nil
}

// ValidateAlignment compares the stored value of a market-sourced assumption
// with the volume md currently yields. Assumptions driven by any other source
// are always aligned.
func (s *Syncer) ValidateAlignment(a *Assumption, md *market.MarketData) AlignmentResult {
	if !a.IsMarketSourced() {
		stored := 0.0
		if a != nil {
			stored = a.Value
		}
		return AlignmentResult{
			IsAligned:      true,
			StoredValue:    stored,
			Recommendation: "Value is not sourced from the market analysis; nothing to compare.",
		}
	}

	marketValue := market.ExtractVolume(md).ProjectedVolume
	variance := VariancePct(a.Value, marketValue)
	result := AlignmentResult{
		IsAligned:   variance < s.threshold,
		VariancePct: variance,
		StoredValue: a.Value,
		MarketValue: marketValue,
	}
	if result.IsAligned {
		result.Recommendation = fmt.Sprintf("Value is within %s of the current market analysis.", format.Percentage(s.threshold))
	} else {
		result.Recommendation = fmt.Sprintf(
			"Value differs from the current market analysis by %s; re-sync to adopt %s or switch to user input to keep %s.",
			format.Percentage(variance), format.Number(marketValue, 0), format.Number(a.Value, 0),
		)
	}
	return result
}

// VariancePct is |stored − market| / market in percent. A zero market value
// yields 0 when stored is also zero and 100 otherwise.
func VariancePct(stored, market float64) float64 {
	if market == 0 {
		if stored == 0 {
			return 0
		}
		return 100
	}
	return mathutil.CalculatePercentage(math.Abs(stored-market), math.Abs(market))
}

func (s *Syncer) marketEntry(estimate market.VolumeEstimate, sourceID, notes string) SourceEntry {
	unit := estimate.Components.Unit
	if unit == "" {
		unit = DefaultVolumeUnit
	}
	score := estimate.ConfidenceScore
	return SourceEntry{
		Data: value.NewNumber(estimate.ProjectedVolume, unit, estimate.Rationale),
		SourceMetadata: SourceMetadata{
			Type:            SourceMarketAnalysis,
			Timestamp:       s.now(),
			SourceID:        sourceID,
			ConfidenceScore: &score,
			UserNotes:       notes,
		},
		UserAccepted: true,
	}
}
