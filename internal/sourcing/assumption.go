// Package sourcing models business assumptions that carry several competing
// data sources, and the operations that move values between the market
// analysis and the business case.
package sourcing

import (
	"time"

	"github.com/iwvelando/business-case/pkg/value"
)

// SourceType names where a value came from.
type SourceType string

const (
	SourceUserInput      SourceType = "user_input"
	SourceMarketAnalysis SourceType = "market_analysis"
	SourceExternalAPI    SourceType = "external_api"
	SourceImported       SourceType = "imported"
)

// Valid reports whether s is a known source type.
func (s SourceType) Valid() bool {
	switch s {
	case SourceUserInput, SourceMarketAnalysis, SourceExternalAPI, SourceImported:
		return true
	}
	return false
}

// SyncStatus tracks whether a market-sourced value still matches its origin.
type SyncStatus string

const (
	StatusCurrent     SyncStatus = "current"
	StatusStale       SyncStatus = "stale"
	StatusNeverSynced SyncStatus = "never_synced"

	// StatusConflict is reserved for two-way edit detection and is not
	// produced by any operation yet.
	StatusConflict SyncStatus = "conflict"
)

// SourceMetadata describes the provenance of one source entry.
type SourceMetadata struct {
	Type            SourceType `json:"type"`
	Timestamp       time.Time  `json:"timestamp"`
	SourceID        string     `json:"source_id,omitempty"`
	ConfidenceScore *float64   `json:"confidence_score,omitempty"`
	UserNotes       string     `json:"user_notes,omitempty"`
}

// SourceEntry is one candidate value for an assumption.
type SourceEntry struct {
	Data           value.Number   `json:"data"`
	SourceMetadata SourceMetadata `json:"source_metadata"`
	UserAccepted   bool           `json:"user_accepted"`
	UserModified   bool           `json:"user_modified"`
}

// Assumption is a business input annotated with its sources. The top-level
// value, unit and rationale mirror Sources[ActiveSource].Data whenever
// ActiveSource is set. Sources are only ever added.
type Assumption struct {
	Value        float64                    `json:"value"`
	Unit         string                     `json:"unit"`
	Rationale    string                     `json:"rationale"`
	ActiveSource SourceType                 `json:"active_source,omitempty"`
	Sources      map[SourceType]SourceEntry `json:"sources,omitempty"`
	SyncStatus   SyncStatus                 `json:"sync_status"`
}

// Number returns the active value as a value.Number.
func (a *Assumption) Number() value.Number {
	if a == nil {
		return value.Number{}
	}
	return value.NewNumber(a.Value, a.Unit, a.Rationale)
}

// Source returns the entry for the given source type.
func (a *Assumption) Source(source SourceType) (SourceEntry, bool) {
	if a == nil {
		return SourceEntry{}, false
	}
	entry, ok := a.Sources[source]
	return entry, ok
}

// IsMarketSourced reports whether the active source is the market analysis.
func (a *Assumption) IsMarketSourced() bool {
	return a != nil && a.ActiveSource == SourceMarketAnalysis
}

// Clone returns a deep copy.
func (a *Assumption) Clone() *Assumption {
	if a == nil {
		return nil
	}
	out := *a
	if a.Sources != nil {
		out.Sources = make(map[SourceType]SourceEntry, len(a.Sources))
		for source, entry := range a.Sources {
			if entry.SourceMetadata.ConfidenceScore != nil {
				score := *entry.SourceMetadata.ConfidenceScore
				entry.SourceMetadata.ConfidenceScore = &score
			}
			out.Sources[source] = entry
		}
	}
	return &out
}

func (a *Assumption) activate(source SourceType) {
	entry := a.Sources[source]
	a.Value = entry.Data.Value
	a.Unit = entry.Data.Unit
	a.Rationale = entry.Data.Rationale
	a.ActiveSource = source
}
