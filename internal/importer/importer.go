// Package importer decodes business-case and market-analysis documents. JSON
// is tried strictly first, then repaired, then parsed as Hjson; YAML is used
// when the caller asks for it.
package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/iwvelando/business-case/internal/business"
	"github.com/iwvelando/business-case/internal/market"
	"github.com/iwvelando/business-case/pkg/constants"
)

// ErrMalformedDocument is returned for oversized or undecodable documents.
var ErrMalformedDocument = eris.New("malformed document")

// Format selects the document syntax.
type Format string

const (
	// FormatAuto tries JSON, repaired JSON and Hjson in turn.
	FormatAuto Format = ""
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatAuto
	}
}

// Strategy names the decoding pass that succeeded.
type Strategy string

const (
	StrategyStrict   Strategy = "strict"
	StrategyRepaired Strategy = "repaired"
	StrategyHjson    Strategy = "hjson"
	StrategyYAML     Strategy = "yaml"
)

// Decoder decodes documents up to a maximum size.
type Decoder struct {
	logger  *zap.Logger
	maxSize int64
}

// NewDecoder creates a Decoder. A non-positive maxSize selects
// constants.DefaultMaxImportSizeBytes.
func NewDecoder(logger *zap.Logger, maxSize int64) *Decoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxSize <= 0 {
		maxSize = constants.DefaultMaxImportSizeBytes
	}
	return &Decoder{logger: logger, maxSize: maxSize}
}

// ReadAll reads r while enforcing the size limit.
func (d *Decoder) ReadAll(r io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r, d.maxSize+1))
	if err != nil {
		return nil, eris.Wrap(err, "importer: read document")
	}
	if int64(len(raw)) > d.maxSize {
		return nil, eris.Wrapf(ErrMalformedDocument, "document exceeds the %d byte limit", d.maxSize)
	}
	return raw, nil
}

// Decode decodes raw into target, which must be a pointer. JSON struct tags
// and custom JSON unmarshalers of target apply to every format.
func (d *Decoder) Decode(raw []byte, format Format, target any) (Strategy, error) {
	if int64(len(raw)) > d.maxSize {
		return "", eris.Wrapf(ErrMalformedDocument, "document is %d bytes; the limit is %d", len(raw), d.maxSize)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", eris.Wrap(ErrMalformedDocument, "document is empty")
	}

	if format == FormatYAML {
		if err := decodeYAML(raw, target); err != nil {
			return "", eris.Wrapf(ErrMalformedDocument, "yaml: %v", err)
		}
		return StrategyYAML, nil
	}

	strictErr := json.Unmarshal(raw, target)
	if strictErr == nil {
		return StrategyStrict, nil
	}

	if repaired, err := jsonrepair.RepairJSON(string(raw)); err == nil {
		if err := json.Unmarshal([]byte(repaired), target); err == nil {
			d.logger.Warn("document was not valid JSON and has been repaired",
				zap.String("op", "importer.Decode"),
				zap.Error(strictErr),
			)
			return StrategyRepaired, nil
		}
	}

	if err := decodeHjson(raw, target); err == nil {
		d.logger.Warn("document was decoded as Hjson",
			zap.String("op", "importer.Decode"),
			zap.Error(strictErr),
		)
		return StrategyHjson, nil
	}

	return "", eris.Wrapf(ErrMalformedDocument, "not valid JSON (%v) and could not be repaired", strictErr)
}

// BusinessData decodes a business case and stamps the schema version.
func (d *Decoder) BusinessData(raw []byte, format Format) (*business.BusinessData, error) {
	var data business.BusinessData
	if _, err := d.Decode(raw, format, &data); err != nil {
		return nil, eris.Wrap(err, "importer: decode business data")
	}
	data.EnsureSchemaVersion()
	return &data, nil
}

// MarketData decodes a market analysis and stamps the schema version.
func (d *Decoder) MarketData(raw []byte, format Format) (*market.MarketData, error) {
	var data market.MarketData
	if _, err := d.Decode(raw, format, &data); err != nil {
		return nil, eris.Wrap(err, "importer: decode market data")
	}
	if data.SchemaVersion == "" {
		data.SchemaVersion = constants.SchemaVersion
	}
	return &data, nil
}

func decodeHjson(raw []byte, target any) error {
	var generic any
	if err := hjson.Unmarshal(raw, &generic); err != nil {
		return err
	}
	return remarshal(generic, target)
}

func decodeYAML(raw []byte, target any) error {
	var generic any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return err
	}
	return remarshal(generic, target)
}

// remarshal routes a generic tree through encoding/json so the target's JSON
// tags and unmarshalers apply.
func remarshal(generic any, target any) error {
	if _, ok := generic.(map[string]any); !ok {
		return fmt.Errorf("top level must be an object, got %T", generic)
	}
	out, err := json.Marshal(generic)
	if err != nil {
		return err
	}
	return json.Unmarshal(out, target)
}
