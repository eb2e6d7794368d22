package market

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/business-case/pkg/constants"
	"github.com/iwvelando/business-case/pkg/format"
	"github.com/iwvelando/business-case/pkg/mathutil"
)

// ConfidenceLevel is an ordinal completeness rating of a volume estimate.
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// VolumeComponents are the funnel inputs a volume estimate was built from.
// A missing percentage is reported as 0 with its Has flag unset.
type VolumeComponents struct {
	TAM            float64 `json:"tam"`
	SAMPct         float64 `json:"sam_pct"`
	SOMPct         float64 `json:"som_pct"`
	TargetSharePct float64 `json:"target_share_pct"`
	HasTAM         bool    `json:"has_tam"`
	HasSAM         bool    `json:"has_sam"`
	HasSOM         bool    `json:"has_som"`
	HasTargetShare bool    `json:"has_target_share"`
	Unit           string  `json:"unit,omitempty"`
}

// Present counts the funnel inputs that were provided.
func (c VolumeComponents) Present() int {
	n := 0
	for _, ok := range []bool{c.HasTAM, c.HasSAM, c.HasSOM, c.HasTargetShare} {
		if ok {
			n++
		}
	}
	return n
}

// VolumeEstimate is the projected customer volume derived from market data.
type VolumeEstimate struct {
	ProjectedVolume float64          `json:"projected_volume"`
	ConfidenceLevel ConfidenceLevel  `json:"confidence_level"`
	ConfidenceScore float64          `json:"confidence_score"`
	Components      VolumeComponents `json:"components"`
	Rationale       string           `json:"rationale"`
}

const percentCubed = constants.PercentageMultiplier * constants.PercentageMultiplier * constants.PercentageMultiplier

// ExtractVolume computes TAM × SAM% × SOM% × target share%. Missing inputs
// count as 0, so an incomplete funnel yields a zero volume rather than an
// error. A nil document yields an empty low-confidence estimate.
func ExtractVolume(md *MarketData) VolumeEstimate {
	c := components(md)

	// Dividing once keeps whole-number inputs exact. Very large funnels
	// overflow the intermediate product, so they scale each step instead.
	projected := c.TAM * c.SAMPct * c.SOMPct * c.TargetSharePct / percentCubed
	if !isFinite(projected) {
		projected = c.TAM *
			mathutil.PercentToDecimal(c.SAMPct) *
			mathutil.PercentToDecimal(c.SOMPct) *
			mathutil.PercentToDecimal(c.TargetSharePct)
	}
	if !isFinite(projected) {
		projected = 0
	}

	return VolumeEstimate{
		ProjectedVolume: projected,
		ConfidenceLevel: confidenceLevel(c.Present()),
		ConfidenceScore: confidenceScore(c),
		Components:      c,
		Rationale:       volumeRationale(c, projected),
	}
}

func isFinite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

func components(md *MarketData) VolumeComponents {
	var c VolumeComponents
	if md == nil {
		return c
	}
	if sizing := md.MarketSizing; sizing != nil {
		if tam := sizing.TotalAddressableMarket; tam != nil {
			c.TAM = tam.BaseValue.Value
			c.Unit = tam.BaseValue.Unit
			c.HasTAM = true
		}
		if sam := sizing.ServiceableAddressableMarket; sam != nil {
			c.SAMPct = sam.PercentageOfTAM.Value
			c.HasSAM = true
		}
		if som := sizing.ServiceableObtainableMarket; som != nil {
			c.SOMPct = som.PercentageOfSAM.Value
			c.HasSOM = true
		}
	}
	if share := md.MarketShare; share != nil && share.TargetPosition != nil {
		c.TargetSharePct = share.TargetPosition.TargetShare.Value
		c.HasTargetShare = true
	}
	return c
}

func confidenceLevel(present int) ConfidenceLevel {
	switch {
	case present >= 4:
		return ConfidenceHigh
	case present >= 2:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func confidenceScore(c VolumeComponents) float64 {
	score := constants.BaseConfidenceScore
	if c.HasTAM {
		score += constants.TAMConfidenceIncrement
	}
	if c.HasSAM {
		score += constants.SAMConfidenceIncrement
	}
	if c.HasSOM {
		score += constants.SOMConfidenceIncrement
	}
	if c.HasTargetShare {
		score += constants.TargetShareConfidenceIncrement
	}
	return math.Min(1, score)
}

func volumeRationale(c VolumeComponents, projected float64) string {
	var missing []string
	if !c.HasTAM {
		missing = append(missing, "TAM")
	}
	if !c.HasSAM {
		missing = append(missing, "SAM %")
	}
	if !c.HasSOM {
		missing = append(missing, "SOM %")
	}
	if !c.HasTargetShare {
		missing = append(missing, "target share %")
	}

	text := fmt.Sprintf("Derived from market analysis: TAM %s × SAM %s × SOM %s × target share %s = %s",
		format.Number(c.TAM, 0),
		format.Percentage(c.SAMPct),
		format.Percentage(c.SOMPct),
		format.Percentage(c.TargetSharePct),
		format.Number(projected, 0),
	)
	if len(missing) > 0 {
		text += fmt.Sprintf(" (missing: %s)", strings.Join(missing, ", "))
	}
	return text
}
