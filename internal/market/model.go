// Package market defines the market-analysis document and the operations that
// read it: volume extraction, module-level merging and template generation.
package market

import (
	"github.com/iwvelando/business-case/pkg/value"
)

// Module identifiers of the market-analysis document.
const (
	ModuleMarketSizing         = "market_sizing"
	ModuleCompetitiveLandscape = "competitive_landscape"
	ModuleCustomerAnalysis     = "customer_analysis"
	ModuleStrategicPlanning    = "strategic_planning"
)

// Modules lists every module identifier in document order.
var Modules = []string{
	ModuleMarketSizing,
	ModuleCompetitiveLandscape,
	ModuleCustomerAnalysis,
	ModuleStrategicPlanning,
}

// MarketData is the root of a market analysis. Every module is optional; a nil
// module is absent.
type MarketData struct {
	SchemaVersion        string                `json:"schema_version,omitempty" yaml:"schema_version,omitempty"`
	Meta                 *Meta                 `json:"meta,omitempty" yaml:"meta,omitempty"`
	MarketSizing         *MarketSizing         `json:"market_sizing,omitempty" yaml:"market_sizing,omitempty"`
	MarketShare          *MarketShare          `json:"market_share,omitempty" yaml:"market_share,omitempty"`
	CompetitiveLandscape *CompetitiveLandscape `json:"competitive_landscape,omitempty" yaml:"competitive_landscape,omitempty"`
	CustomerAnalysis     *CustomerAnalysis     `json:"customer_analysis,omitempty" yaml:"customer_analysis,omitempty"`
	StrategicPlanning    *StrategicPlanning    `json:"strategic_planning,omitempty" yaml:"strategic_planning,omitempty"`
}

// Meta describes the analysis.
type Meta struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Currency    string `json:"currency,omitempty" yaml:"currency,omitempty"`
	Created     string `json:"created,omitempty" yaml:"created,omitempty"`
	LastUpdated string `json:"last_updated,omitempty" yaml:"last_updated,omitempty"`
}

// MarketSizing holds the TAM → SAM → SOM funnel.
type MarketSizing struct {
	TotalAddressableMarket       *TotalAddressableMarket       `json:"total_addressable_market,omitempty" yaml:"total_addressable_market,omitempty"`
	ServiceableAddressableMarket *ServiceableAddressableMarket `json:"serviceable_addressable_market,omitempty" yaml:"serviceable_addressable_market,omitempty"`
	ServiceableObtainableMarket  *ServiceableObtainableMarket  `json:"serviceable_obtainable_market,omitempty" yaml:"serviceable_obtainable_market,omitempty"`
}

// TotalAddressableMarket is the full market size.
type TotalAddressableMarket struct {
	BaseValue  value.Number    `json:"base_value" yaml:"base_value"`
	GrowthRate *value.Number   `json:"growth_rate,omitempty" yaml:"growth_rate,omitempty"`
	Segments   []MarketSegment `json:"segments,omitempty" yaml:"segments,omitempty"`
}

// MarketSegment is a named slice of the TAM.
type MarketSegment struct {
	Name  string       `json:"name" yaml:"name"`
	Value value.Number `json:"value" yaml:"value"`
}

// ServiceableAddressableMarket is the share of the TAM the offering can serve.
type ServiceableAddressableMarket struct {
	PercentageOfTAM value.Number `json:"percentage_of_tam" yaml:"percentage_of_tam"`
	RationaleNotes  string       `json:"rationale_notes,omitempty" yaml:"rationale_notes,omitempty"`
}

// ServiceableObtainableMarket is the share of the SAM that is realistically reachable.
type ServiceableObtainableMarket struct {
	PercentageOfSAM value.Number `json:"percentage_of_sam" yaml:"percentage_of_sam"`
	RationaleNotes  string       `json:"rationale_notes,omitempty" yaml:"rationale_notes,omitempty"`
}

// MarketShare tracks current and targeted share of the SOM.
type MarketShare struct {
	CurrentPosition *CurrentPosition `json:"current_position,omitempty" yaml:"current_position,omitempty"`
	TargetPosition  *TargetPosition  `json:"target_position,omitempty" yaml:"target_position,omitempty"`
	Milestones      []Milestone      `json:"milestones,omitempty" yaml:"milestones,omitempty"`
}

// CurrentPosition is today's share.
type CurrentPosition struct {
	CurrentShare value.Number `json:"current_share" yaml:"current_share"`
}

// TargetPosition is the share aimed for by TargetDate.
type TargetPosition struct {
	TargetShare value.Number `json:"target_share" yaml:"target_share"`
	TargetDate  string       `json:"target_date,omitempty" yaml:"target_date,omitempty"`
}

// Milestone is an intermediate share target.
type Milestone struct {
	Label string       `json:"label" yaml:"label"`
	Date  string       `json:"date,omitempty" yaml:"date,omitempty"`
	Share value.Number `json:"share" yaml:"share"`
}

// CompetitiveLandscape lists competitors and differentiators.
type CompetitiveLandscape struct {
	Competitors           []Competitor `json:"competitors,omitempty" yaml:"competitors,omitempty"`
	CompetitiveAdvantages []string     `json:"competitive_advantages,omitempty" yaml:"competitive_advantages,omitempty"`
}

// Competitor is one known competitor.
type Competitor struct {
	Name        string        `json:"name" yaml:"name"`
	MarketShare *value.Number `json:"market_share,omitempty" yaml:"market_share,omitempty"`
	Strengths   []string      `json:"strengths,omitempty" yaml:"strengths,omitempty"`
	Weaknesses  []string      `json:"weaknesses,omitempty" yaml:"weaknesses,omitempty"`
	ThreatLevel string        `json:"threat_level,omitempty" yaml:"threat_level,omitempty"`
}

// CustomerAnalysis describes the target customers.
type CustomerAnalysis struct {
	Segments []CustomerSegment `json:"segments,omitempty" yaml:"segments,omitempty"`
}

// CustomerSegment is a market-side view of a customer group.
type CustomerSegment struct {
	ID               string        `json:"id" yaml:"id"`
	Label            string        `json:"label" yaml:"label"`
	Size             *value.Number `json:"size,omitempty" yaml:"size,omitempty"`
	WillingnessToPay *value.Number `json:"willingness_to_pay,omitempty" yaml:"willingness_to_pay,omitempty"`
	PainPoints       []string      `json:"pain_points,omitempty" yaml:"pain_points,omitempty"`
}

// StrategicPlanning holds go-to-market and risk planning.
type StrategicPlanning struct {
	GoToMarket *GoToMarket `json:"go_to_market,omitempty" yaml:"go_to_market,omitempty"`
	Risks      []Risk      `json:"risks,omitempty" yaml:"risks,omitempty"`
}

// GoToMarket describes how the offering reaches customers.
type GoToMarket struct {
	Channels   []string `json:"channels,omitempty" yaml:"channels,omitempty"`
	LaunchDate string   `json:"launch_date,omitempty" yaml:"launch_date,omitempty"`
}

// Risk is one identified risk with its mitigation.
type Risk struct {
	Label      string `json:"label" yaml:"label"`
	Likelihood string `json:"likelihood,omitempty" yaml:"likelihood,omitempty"`
	Impact     string `json:"impact,omitempty" yaml:"impact,omitempty"`
	Mitigation string `json:"mitigation,omitempty" yaml:"mitigation,omitempty"`
}

// Clone returns a deep copy of the document. Module contents are copied
// through their own clone helpers so merged documents never alias inputs.
func (m *MarketData) Clone() *MarketData {
	if m == nil {
		return nil
	}
	out := &MarketData{SchemaVersion: m.SchemaVersion}
	if m.Meta != nil {
		meta := *m.Meta
		out.Meta = &meta
	}
	out.MarketSizing = m.MarketSizing.clone()
	out.MarketShare = m.MarketShare.clone()
	out.CompetitiveLandscape = m.CompetitiveLandscape.clone()
	out.CustomerAnalysis = m.CustomerAnalysis.clone()
	out.StrategicPlanning = m.StrategicPlanning.clone()
	return out
}

func (s *MarketSizing) clone() *MarketSizing {
	if s == nil {
		return nil
	}
	out := &MarketSizing{}
	if tam := s.TotalAddressableMarket; tam != nil {
		out.TotalAddressableMarket = &TotalAddressableMarket{
			BaseValue:  tam.BaseValue,
			GrowthRate: cloneNumber(tam.GrowthRate),
			Segments:   append([]MarketSegment(nil), tam.Segments...),
		}
	}
	if sam := s.ServiceableAddressableMarket; sam != nil {
		copied := *sam
		out.ServiceableAddressableMarket = &copied
	}
	if som := s.ServiceableObtainableMarket; som != nil {
		copied := *som
		out.ServiceableObtainableMarket = &copied
	}
	return out
}

func (s *MarketShare) clone() *MarketShare {
	if s == nil {
		return nil
	}
	out := &MarketShare{Milestones: append([]Milestone(nil), s.Milestones...)}
	if s.CurrentPosition != nil {
		copied := *s.CurrentPosition
		out.CurrentPosition = &copied
	}
	if s.TargetPosition != nil {
		copied := *s.TargetPosition
		out.TargetPosition = &copied
	}
	return out
}

func (c *CompetitiveLandscape) clone() *CompetitiveLandscape {
	if c == nil {
		return nil
	}
	out := &CompetitiveLandscape{CompetitiveAdvantages: append([]string(nil), c.CompetitiveAdvantages...)}
	for _, competitor := range c.Competitors {
		competitor.MarketShare = cloneNumber(competitor.MarketShare)
		competitor.Strengths = append([]string(nil), competitor.Strengths...)
		competitor.Weaknesses = append([]string(nil), competitor.Weaknesses...)
		out.Competitors = append(out.Competitors, competitor)
	}
	return out
}

func (c *CustomerAnalysis) clone() *CustomerAnalysis {
	if c == nil {
		return nil
	}
	out := &CustomerAnalysis{}
	for _, segment := range c.Segments {
		segment.Size = cloneNumber(segment.Size)
		segment.WillingnessToPay = cloneNumber(segment.WillingnessToPay)
		segment.PainPoints = append([]string(nil), segment.PainPoints...)
		out.Segments = append(out.Segments, segment)
	}
	return out
}

func (s *StrategicPlanning) clone() *StrategicPlanning {
	if s == nil {
		return nil
	}
	out := &StrategicPlanning{Risks: append([]Risk(nil), s.Risks...)}
	if s.GoToMarket != nil {
		out.GoToMarket = &GoToMarket{
			Channels:   append([]string(nil), s.GoToMarket.Channels...),
			LaunchDate: s.GoToMarket.LaunchDate,
		}
	}
	return out
}

func cloneNumber(n *value.Number) *value.Number {
	if n == nil {
		return nil
	}
	copied := *n
	return &copied
}
