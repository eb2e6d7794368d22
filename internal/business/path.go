package business

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/iwvelando/business-case/pkg/value"
)

// ErrUnknownPath is matched by every *PathError.
var ErrUnknownPath = eris.New("unknown assumption path")

// PathError reports a path that does not address a mutable numeric field.
type PathError struct {
	Path   string
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("assumption path %q: %s", e.Path, e.Reason)
}

// Unwrap lets errors.Is match ErrUnknownPath.
func (e *PathError) Unwrap() error {
	return ErrUnknownPath
}

// PathSuffix ends every addressable assumption path.
const PathSuffix = ".value"

// MetaPeriodsPath addresses the projection horizon, the one integer field
// that can be updated by path.
const MetaPeriodsPath = "meta.periods"

type pathSegment struct {
	name  string
	index int
}

type accessor struct {
	get func() (float64, bool)
	set func(float64)
}

// GetValue reads the numeric field addressed by path. The boolean is false
// when the path is valid but the optional field is not set.
func GetValue(d *BusinessData, path string) (float64, bool, error) {
	if d == nil {
		return 0, false, &PathError{Path: path, Reason: "no business data"}
	}
	acc, err := resolve(d, path)
	if err != nil {
		return 0, false, err
	}
	v, ok := acc.get()
	return v, ok, nil
}

// SetValue returns a copy of d with the field addressed by path set to v.
// d itself is never modified. Optional fields that are unset are created
// with an empty unit and rationale.
func SetValue(d *BusinessData, path string, v float64) (*BusinessData, error) {
	if d == nil {
		return nil, &PathError{Path: path, Reason: "no business data"}
	}
	out := d.Clone()
	acc, err := resolve(out, path)
	if err != nil {
		return nil, err
	}
	acc.set(v)
	return out, nil
}

// ResolvePath reports whether path addresses a mutable field of d.
func ResolvePath(d *BusinessData, path string) error {
	_, _, err := GetValue(d, path)
	return err
}

func parsePath(path string) ([]pathSegment, error) {
	if strings.TrimSpace(path) == "" {
		return nil, &PathError{Path: path, Reason: "empty path"}
	}
	parts := strings.Split(path, ".")
	segments := make([]pathSegment, 0, len(parts))
	for _, part := range parts {
		segment := pathSegment{name: part, index: -1}
		if open := strings.IndexByte(part, '['); open >= 0 {
			if !strings.HasSuffix(part, "]") || open == 0 {
				return nil, &PathError{Path: path, Reason: fmt.Sprintf("malformed segment %q", part)}
			}
			idx, err := strconv.Atoi(part[open+1 : len(part)-1])
			if err != nil || idx < 0 {
				return nil, &PathError{Path: path, Reason: fmt.Sprintf("malformed index in %q", part)}
			}
			segment.name = part[:open]
			segment.index = idx
		}
		if segment.name == "" {
			return nil, &PathError{Path: path, Reason: "empty segment"}
		}
		segments = append(segments, segment)
	}
	return segments, nil
}

func resolve(d *BusinessData, path string) (accessor, error) {
	if path == MetaPeriodsPath {
		return accessor{
			get: func() (float64, bool) { return float64(d.Meta.Periods), d.Meta.Periods != 0 },
			set: func(v float64) { d.Meta.Periods = int(math.Round(v)) },
		}, nil
	}
	segs, err := parsePath(path)
	if err != nil {
		return accessor{}, err
	}
	unknown := func(reason string) (accessor, error) {
		return accessor{}, &PathError{Path: path, Reason: reason}
	}
	if !strings.HasSuffix(path, PathSuffix) {
		return unknown("path must end in " + PathSuffix)
	}
	if len(segs) < 4 || segs[0].name != "assumptions" || segs[0].index >= 0 {
		return unknown("path must start at assumptions")
	}
	a := &d.Assumptions

	switch segs[1].name {
	case "pricing":
		if len(segs) == 4 && segs[2].name == "avg_unit_price" {
			return optionalNumber(&a.Pricing.AvgUnitPrice), nil
		}
	case "unit_economics":
		if len(segs) == 4 {
			switch segs[2].name {
			case "cogs_pct":
				return optionalNumber(&a.UnitEconomics.COGSPct), nil
			case "cac":
				return optionalNumber(&a.UnitEconomics.CAC), nil
			}
		}
	case "opex", "capex":
		lines := a.Opex
		if segs[1].name == "capex" {
			lines = a.Capex
		}
		if len(segs) == 4 && segs[2].name == "value" && segs[1].index >= 0 {
			if segs[1].index >= len(lines) {
				return unknown(fmt.Sprintf("%s index %d out of range", segs[1].name, segs[1].index))
			}
			return number(&lines[segs[1].index].Value), nil
		}
	case "customers":
		return resolveSegment(a, segs, unknown)
	case "cost_savings":
		return resolveCostSavings(a, segs, unknown)
	}
	return unknown("not an addressable field")
}

func resolveSegment(a *Assumptions, segs []pathSegment, unknown func(string) (accessor, error)) (accessor, error) {
	if len(segs) != 6 || segs[2].name != "segments" || segs[2].index < 0 || segs[3].name != "volume" {
		return unknown("not an addressable segment field")
	}
	if segs[2].index >= len(a.Customers.Segments) {
		return unknown(fmt.Sprintf("segment index %d out of range", segs[2].index))
	}
	segment := &a.Customers.Segments[segs[2].index]

	switch segs[4].name {
	case "series":
		series, ok := segment.Volume.Series()
		if !ok || segs[4].index < 0 || segs[4].index >= len(series) {
			return unknown("segment has no such series entry")
		}
		j := segs[4].index
		return accessor{
			get: func() (float64, bool) { return series[j].Value, true },
			set: func(v float64) {
				series[j] = series[j].WithValue(v)
				segment.Volume = TimeSeriesOf(series...)
			},
		}, nil
	case "base":
		pattern, ok := segment.Volume.Pattern()
		if !ok || segs[4].index >= 0 {
			return unknown("segment volume is not a pattern")
		}
		return accessor{
			get: func() (float64, bool) { return pattern.Base.Value, true },
			set: func(v float64) {
				segment.Volume = PatternOf(pattern.PatternType, pattern.Base.WithValue(v))
			},
		}, nil
	}
	return unknown("not an addressable segment field")
}

func resolveCostSavings(a *Assumptions, segs []pathSegment, unknown func(string) (accessor, error)) (accessor, error) {
	if len(segs) != 5 || segs[2].index < 0 {
		return unknown("not an addressable cost savings field")
	}
	cs := a.CostSavings
	if cs == nil {
		cs = &CostSavings{}
	}
	i := segs[2].index

	switch segs[2].name {
	case "efficiency_gains":
		if i >= len(cs.EfficiencyGains) {
			return unknown(fmt.Sprintf("efficiency gain index %d out of range", i))
		}
		gain := &cs.EfficiencyGains[i]
		switch segs[3].name {
		case "baseline_value":
			return number(&gain.BaselineValue), nil
		case "improved_value":
			return number(&gain.ImprovedValue), nil
		case "value_per_unit":
			return number(&gain.ValuePerUnit), nil
		}
	case "baseline_costs":
		if i >= len(cs.BaselineCosts) {
			return unknown(fmt.Sprintf("baseline cost index %d out of range", i))
		}
		cost := &cs.BaselineCosts[i]
		switch segs[3].name {
		case "current_cost":
			return number(&cost.CurrentCost), nil
		case "improved_cost":
			return optionalNumber(&cost.ImprovedCost), nil
		}
	}
	return unknown("not an addressable cost savings field")
}

func number(n *value.Number) accessor {
	return accessor{
		get: func() (float64, bool) { return n.Value, true },
		set: func(v float64) { *n = n.WithValue(v) },
	}
}

func optionalNumber(n **value.Number) accessor {
	return accessor{
		get: func() (float64, bool) {
			if *n == nil {
				return 0, false
			}
			return (*n).Value, true
		},
		set: func(v float64) {
			if *n == nil {
				created := value.NewNumber(v, "", "")
				*n = &created
				return
			}
			updated := (*n).WithValue(v)
			*n = &updated
		},
	}
}
