package market

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/iwvelando/business-case/pkg/constants"
	"github.com/iwvelando/business-case/pkg/value"
)

// ErrUnknownModule is returned for module identifiers outside Modules.
var ErrUnknownModule = eris.New("unknown market module")

// Template encodings.
const (
	TemplateJSON = "json"
	TemplateYAML = "yaml"
)

// Instructions tell the person filling in a template what it contains.
type Instructions struct {
	Modules []string `json:"modules" yaml:"modules"`
	Notes   []string `json:"notes" yaml:"notes"`
}

// TemplateDocument is a module-filtered market document with instructions.
type TemplateDocument struct {
	MarketData   `yaml:",inline"`
	Instructions Instructions `json:"instructions" yaml:"instructions"`
}

// BuildTemplate returns a template holding only the selected modules. No
// selection means every module. Duplicates are collapsed.
func BuildTemplate(modules []string) (*TemplateDocument, error) {
	selected, err := normalizeModules(modules)
	if err != nil {
		return nil, err
	}

	doc := &TemplateDocument{
		MarketData: MarketData{
			SchemaVersion: constants.SchemaVersion,
			Meta:          &Meta{Title: "", Currency: "EUR"},
		},
		Instructions: Instructions{
			Modules: selected,
			Notes: []string{
				"Every numeric field is a {value, unit, rationale} triple; state where each number comes from in its rationale.",
				"Percentages are whole numbers, e.g. 8 for 8%.",
				"Import the filled template with: business-case import market <file>. Modules not present in the file are left untouched.",
			},
		},
	}

	for _, module := range selected {
		switch module {
		case ModuleMarketSizing:
			doc.MarketSizing = &MarketSizing{
				TotalAddressableMarket:       &TotalAddressableMarket{BaseValue: value.NewNumber(0, "customers", "")},
				ServiceableAddressableMarket: &ServiceableAddressableMarket{PercentageOfTAM: value.NewNumber(0, "%", "")},
				ServiceableObtainableMarket:  &ServiceableObtainableMarket{PercentageOfSAM: value.NewNumber(0, "%", "")},
			}
			doc.MarketShare = &MarketShare{
				CurrentPosition: &CurrentPosition{CurrentShare: value.NewNumber(0, "%", "")},
				TargetPosition:  &TargetPosition{TargetShare: value.NewNumber(0, "%", ""), TargetDate: ""},
			}
		case ModuleCompetitiveLandscape:
			doc.CompetitiveLandscape = &CompetitiveLandscape{
				Competitors: []Competitor{{Name: "", Strengths: []string{""}, Weaknesses: []string{""}, ThreatLevel: "medium"}},
			}
		case ModuleCustomerAnalysis:
			doc.CustomerAnalysis = &CustomerAnalysis{
				Segments: []CustomerSegment{{ID: "segment-1", Label: "", PainPoints: []string{""}}},
			}
		case ModuleStrategicPlanning:
			doc.StrategicPlanning = &StrategicPlanning{
				GoToMarket: &GoToMarket{Channels: []string{""}},
				Risks:      []Risk{{Label: "", Likelihood: "medium", Impact: "medium"}},
			}
		}
	}
	return doc, nil
}

// Template renders BuildTemplate in the given encoding.
func Template(modules []string, encoding string) ([]byte, error) {
	doc, err := BuildTemplate(modules)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(encoding) {
	case TemplateJSON, "":
		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, eris.Wrap(err, "market: encode json template")
		}
		return out, nil
	case TemplateYAML, "yml":
		out, err := yaml.Marshal(doc)
		if err != nil {
			return nil, eris.Wrap(err, "market: encode yaml template")
		}
		return out, nil
	default:
		return nil, eris.Errorf("market: unsupported template encoding %q", encoding)
	}
}

func normalizeModules(modules []string) ([]string, error) {
	if len(modules) == 0 {
		return append([]string(nil), Modules...), nil
	}
	seen := make(map[string]bool, len(modules))
	for _, module := range modules {
		module = strings.TrimSpace(module)
		if !IsKnownModule(module) {
			return nil, eris.Wrap(ErrUnknownModule, fmt.Sprintf("module %q", module))
		}
		seen[module] = true
	}
	var selected []string
	for _, module := range Modules {
		if seen[module] {
			selected = append(selected, module)
		}
	}
	return selected, nil
}
