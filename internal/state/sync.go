package state

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/iwvelando/business-case/internal/business"
	"github.com/iwvelando/business-case/internal/market"
	"github.com/iwvelando/business-case/internal/sourcing"
	"github.com/iwvelando/business-case/pkg/format"
	"github.com/iwvelando/business-case/pkg/value"
)

// TransferResult reports the outcome of a cross-tool transfer.
type TransferResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SegmentStatus summarizes the provenance of one segment volume.
type SegmentStatus struct {
	SegmentID    string                `json:"segmentId"`
	Label        string                `json:"label"`
	Value        float64               `json:"value"`
	Unit         string                `json:"unit"`
	ActiveSource sourcing.SourceType   `json:"activeSource,omitempty"`
	SyncStatus   sourcing.SyncStatus   `json:"syncStatus,omitempty"`
	Sources      []sourcing.SourceType `json:"sources,omitempty"`
}

// TransferMarketVolume derives a volume from the market analysis and makes it
// the active source of the segment's leading volume. Missing data or an
// unknown segment is reported through the result; only persistence failures
// are returned as errors.
func (s *Store) TransferMarketVolume(ctx context.Context, segmentID string) (TransferResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.business == nil {
		s.logger.Warn("no business data loaded, ignoring transfer", zap.String("op", "state.TransferMarketVolume"))
		return TransferResult{Message: "No business case is loaded."}, nil
	}
	if s.market == nil {
		return TransferResult{Message: "No market analysis is loaded."}, nil
	}
	i := s.business.SegmentByID(segmentID)
	if i < 0 {
		return TransferResult{Message: fmt.Sprintf("Customer segment %q was not found.", segmentID)}, nil
	}

	estimate := market.ExtractVolume(s.market)
	if estimate.ProjectedVolume <= 0 {
		return TransferResult{Message: "The market analysis yields no volume; complete the market sizing and target share first."}, nil
	}

	segment := s.business.Assumptions.Customers.Segments[i]
	opts := sourcing.TransferOptions{Existing: segment.SourcedVolume}
	if segment.SourcedVolume == nil {
		if n, ok := leadingNumber(segment.Volume); ok {
			opts.UserValue = &n
		}
	}
	assumption, err := s.syncer.TransferMarketVolume(s.market, segmentID, opts)
	if err != nil {
		return TransferResult{Message: err.Error()}, nil
	}

	if err := s.commitSegment(ctx, i, assumption); err != nil {
		return TransferResult{}, err
	}

	s.logger.Info("transferred market volume",
		zap.String("op", "state.TransferMarketVolume"),
		zap.String("segment", segmentID),
		zap.Float64("volume", assumption.Value),
	)
	return TransferResult{
		Success: true,
		Message: fmt.Sprintf("Transferred %s %s to segment %q (%s confidence).",
			format.Number(assumption.Value, 0), assumption.Unit, segmentID, estimate.ConfidenceLevel),
	}, nil
}

// SwitchSegmentSource activates another source of a segment volume.
func (s *Store) SwitchSegmentSource(ctx context.Context, segmentID string, source sourcing.SourceType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.requireBusiness("state.SwitchSegmentSource") {
		return nil
	}
	i, sourced, err := s.sourcedSegment(segmentID)
	if err != nil {
		return err
	}
	switched, err := s.syncer.SwitchDataSource(sourced, source)
	if err != nil {
		return eris.Wrapf(err, "state: switch segment %q", segmentID)
	}
	return s.commitSegment(ctx, i, switched)
}

// ResyncSegment refreshes the market source of a segment volume from the
// current market analysis.
func (s *Store) ResyncSegment(ctx context.Context, segmentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.requireBusiness("state.ResyncSegment") {
		return nil
	}
	if s.market == nil {
		s.logger.Warn("no market data loaded, ignoring resync", zap.String("op", "state.ResyncSegment"))
		return nil
	}
	i, sourced, err := s.sourcedSegment(segmentID)
	if err != nil {
		return err
	}
	resynced, err := s.syncer.Resync(sourced, s.market)
	if err != nil {
		return eris.Wrapf(err, "state: resync segment %q", segmentID)
	}
	return s.commitSegment(ctx, i, resynced)
}

// SegmentAlignment compares a segment's market-sourced volume with the current
// market analysis.
func (s *Store) SegmentAlignment(segmentID string) (sourcing.AlignmentResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.business.SegmentByID(segmentID)
	if i < 0 {
		return sourcing.AlignmentResult{}, eris.Wrapf(sourcing.ErrTargetSegmentNotFound, "state: align segment %q", segmentID)
	}
	sourced := s.business.Assumptions.Customers.Segments[i].SourcedVolume
	return s.syncer.ValidateAlignment(sourced, s.market), nil
}

// SegmentStatuses lists the provenance of every segment volume.
func (s *Store) SegmentStatuses() []SegmentStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.business == nil {
		return nil
	}

	out := make([]SegmentStatus, 0, len(s.business.Assumptions.Customers.Segments))
	for _, segment := range s.business.Assumptions.Customers.Segments {
		status := SegmentStatus{SegmentID: segment.ID, Label: segment.Label}
		if n, ok := leadingNumber(segment.Volume); ok {
			status.Value, status.Unit = n.Value, n.Unit
		}
		if a := segment.SourcedVolume; a != nil {
			status.ActiveSource = a.ActiveSource
			status.SyncStatus = a.SyncStatus
			for _, source := range []sourcing.SourceType{
				sourcing.SourceUserInput, sourcing.SourceMarketAnalysis, sourcing.SourceExternalAPI, sourcing.SourceImported,
			} {
				if _, ok := a.Source(source); ok {
					status.Sources = append(status.Sources, source)
				}
			}
		}
		out = append(out, status)
	}
	return out
}

func (s *Store) sourcedSegment(segmentID string) (int, *sourcing.Assumption, error) {
	i := s.business.SegmentByID(segmentID)
	if i < 0 {
		return -1, nil, eris.Wrapf(sourcing.ErrTargetSegmentNotFound, "state: segment %q", segmentID)
	}
	sourced := s.business.Assumptions.Customers.Segments[i].SourcedVolume
	if sourced == nil {
		return -1, nil, eris.Wrapf(sourcing.ErrSourceNotAvailable, "state: segment %q has no sourced volume", segmentID)
	}
	return i, sourced, nil
}

// commitSegment stores a as the sourced volume of segment i and mirrors its
// active value into the segment's leading volume.
func (s *Store) commitSegment(ctx context.Context, i int, a *sourcing.Assumption) error {
	updated := s.business.Clone()
	segment := &updated.Assumptions.Customers.Segments[i]
	segment.SourcedVolume = a
	segment.Volume = segment.Volume.WithLeadingValue(a.Number())
	return s.commitBusiness(ctx, updated)
}

func leadingNumber(v business.Volume) (value.Number, bool) {
	if series, ok := v.Series(); ok && len(series) > 0 {
		return series[0], true
	}
	if pattern, ok := v.Pattern(); ok {
		return pattern.Base, true
	}
	return value.Number{}, false
}
