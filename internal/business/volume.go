package business

import (
	"bytes"
	"encoding/json"

	"github.com/iwvelando/business-case/pkg/value"
)

// VolumeKind identifies the active Volume representation.
type VolumeKind string

const (
	VolumeNone       VolumeKind = ""
	VolumePattern    VolumeKind = "pattern"
	VolumeTimeSeries VolumeKind = "time_series"
)

// PatternVolume is a named growth pattern applied to a base value.
type PatternVolume struct {
	PatternType string
	Base        value.Number
}

// Volume is a segment volume with exactly one active representation.
// The zero Volume has no representation.
type Volume struct {
	kind      VolumeKind
	pattern   PatternVolume
	series    []value.Number
	ambiguous bool
}

// PatternOf builds a pattern Volume.
func PatternOf(patternType string, base value.Number) Volume {
	return Volume{kind: VolumePattern, pattern: PatternVolume{PatternType: patternType, Base: base}}
}

// TimeSeriesOf builds a time-series Volume. The series is copied.
func TimeSeriesOf(series ...value.Number) Volume {
	return Volume{kind: VolumeTimeSeries, series: append([]value.Number(nil), series...)}
}

// Kind returns the active representation.
func (v Volume) Kind() VolumeKind {
	return v.kind
}

// Pattern returns the pattern variant when it is active.
func (v Volume) Pattern() (PatternVolume, bool) {
	return v.pattern, v.kind == VolumePattern
}

// Series returns a copy of the time series when it is active.
func (v Volume) Series() ([]value.Number, bool) {
	if v.kind != VolumeTimeSeries {
		return nil, false
	}
	return append([]value.Number(nil), v.series...), true
}

// FirstValue returns the first time-series value, if any.
func (v Volume) FirstValue() (float64, bool) {
	if v.kind != VolumeTimeSeries || len(v.series) == 0 {
		return 0, false
	}
	return v.series[0].Value, true
}

// Ambiguous reports that the decoded document populated both a pattern and a
// series for this volume; the series was kept.
func (v Volume) Ambiguous() bool {
	return v.ambiguous
}

// WithLeadingValue returns a copy whose first data point is n: the first
// series entry for time series, the base for patterns. A volume without a
// representation becomes a single-entry series.
func (v Volume) WithLeadingValue(n value.Number) Volume {
	switch v.kind {
	case VolumePattern:
		out := v
		out.pattern.Base = n
		return out
	case VolumeTimeSeries:
		series := append([]value.Number(nil), v.series...)
		if len(series) == 0 {
			series = append(series, n)
		} else {
			series[0] = n
		}
		return Volume{kind: VolumeTimeSeries, series: series, ambiguous: v.ambiguous}
	default:
		return TimeSeriesOf(n)
	}
}

type volumeJSON struct {
	Type        string         `json:"type,omitempty"`
	PatternType string         `json:"pattern_type,omitempty"`
	Base        *value.Number  `json:"base,omitempty"`
	Series      []value.Number `json:"series,omitempty"`

	// Legacy shapes accepted on decode only.
	BaseValue     *value.Number `json:"base_value,omitempty"`
	BaseYearTotal *value.Number `json:"base_year_total,omitempty"`
	Value         *float64      `json:"value,omitempty"`
	Unit          string        `json:"unit,omitempty"`
	Rationale     string        `json:"rationale,omitempty"`
}

// MarshalJSON writes the canonical tagged shape.
func (v Volume) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case VolumePattern:
		base := v.pattern.Base
		return json.Marshal(volumeJSON{Type: string(VolumePattern), PatternType: v.pattern.PatternType, Base: &base})
	case VolumeTimeSeries:
		series := v.series
		if series == nil {
			series = []value.Number{}
		}
		return json.Marshal(struct {
			Type   string         `json:"type"`
			Series []value.Number `json:"series"`
		}{Type: string(VolumeTimeSeries), Series: series})
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts the canonical shape and normalizes legacy ones:
// a bare array, base_value, base_year_total and a plain {value, unit,
// rationale} triple.
func (v *Volume) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*v = Volume{}
		return nil
	}
	if trimmed[0] == '[' {
		var series []value.Number
		if err := json.Unmarshal(trimmed, &series); err != nil {
			return err
		}
		*v = TimeSeriesOf(series...)
		return nil
	}

	var raw volumeJSON
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	*v = raw.normalize()
	return nil
}

func (raw volumeJSON) normalize() Volume {
	base, patternType := raw.base()
	hasPattern := base != nil || raw.PatternType != ""

	switch VolumeKind(raw.Type) {
	case VolumeTimeSeries:
		out := TimeSeriesOf(raw.Series...)
		out.ambiguous = hasPattern
		return out
	case VolumePattern:
		if base == nil {
			base = &value.Number{}
		}
		out := PatternOf(patternType, *base)
		out.ambiguous = len(raw.Series) > 0
		return out
	}

	switch {
	case len(raw.Series) > 0:
		out := TimeSeriesOf(raw.Series...)
		out.ambiguous = hasPattern
		return out
	case base != nil:
		return PatternOf(patternType, *base)
	case raw.Value != nil:
		return TimeSeriesOf(value.NewNumber(*raw.Value, raw.Unit, raw.Rationale))
	}
	return Volume{}
}

func (raw volumeJSON) base() (*value.Number, string) {
	patternType := raw.PatternType
	switch {
	case raw.Base != nil:
		if patternType == "" {
			patternType = PatternGeomGrowth
		}
		return raw.Base, patternType
	case raw.BaseValue != nil:
		if patternType == "" {
			patternType = PatternGeomGrowth
		}
		return raw.BaseValue, patternType
	case raw.BaseYearTotal != nil:
		if patternType == "" {
			patternType = PatternSeasonalGrowth
		}
		return raw.BaseYearTotal, patternType
	}
	if patternType == "" {
		patternType = PatternGeomGrowth
	}
	return nil, patternType
}
