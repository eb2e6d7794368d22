// Package state holds the working business case, market analysis, UI mode and
// saved projects, and persists every change through a Port.
//
// Mutations are applied to a clone and committed in memory only after the
// port write succeeds. Mutations that need data which is not loaded log a
// warning and do nothing.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/iwvelando/business-case/internal/business"
	"github.com/iwvelando/business-case/internal/importer"
	"github.com/iwvelando/business-case/internal/market"
	"github.com/iwvelando/business-case/internal/metrics"
	"github.com/iwvelando/business-case/internal/sourcing"
	"github.com/iwvelando/business-case/internal/storage"
	"github.com/iwvelando/business-case/pkg/constants"
)

// Port persists serialized documents by key. Load returns storage.ErrNotFound
// for keys that were never saved.
type Port interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Remove(ctx context.Context, key string) error
}

// Persisted keys.
const (
	KeyPrefix       = "business-case:"
	KeyBusinessData = KeyPrefix + "business_data"
	KeyMarketData   = KeyPrefix + "market_data"
	KeyMode         = KeyPrefix + "mode"
	KeyProjects     = KeyPrefix + "projects"
)

// Mode is the active authoring tool.
type Mode string

const (
	ModeBusiness Mode = "business"
	ModeMarket   Mode = "market"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeBusiness || m == ModeMarket
}

// Options configure a Store. Zero values select defaults.
type Options struct {
	Syncer  *sourcing.Syncer
	Decoder *importer.Decoder
	Metrics metrics.Options
	Now     func() time.Time
}

// Store is the in-memory working state backed by a Port.
type Store struct {
	mu     sync.Mutex
	port   Port
	logger *zap.Logger

	syncer  *sourcing.Syncer
	decoder *importer.Decoder
	metrics metrics.Options
	now     func() time.Time
	newID   func() string

	business *business.BusinessData
	market   *market.MarketData
	mode     Mode
	projects []Project
}

// NewStore creates an empty Store. Call Load to read persisted state.
func NewStore(logger *zap.Logger, port Port, opts Options) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if port == nil {
		port = storage.NewMemory()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Syncer == nil {
		opts.Syncer = sourcing.NewSyncer(logger, 0, opts.Now)
	}
	if opts.Decoder == nil {
		opts.Decoder = importer.NewDecoder(logger, 0)
	}
	return &Store{
		port:    port,
		logger:  logger,
		syncer:  opts.Syncer,
		decoder: opts.Decoder,
		metrics: opts.Metrics,
		now:     opts.Now,
		newID:   uuid.NewString,
		mode:    ModeBusiness,
	}
}

// Load replaces the in-memory state with what the port holds. Missing keys
// leave the corresponding state empty.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		bd       *business.BusinessData
		md       *market.MarketData
		mode     = ModeBusiness
		projects []Project
	)
	if _, err := s.loadJSON(ctx, KeyBusinessData, &bd); err != nil {
		return err
	}
	if _, err := s.loadJSON(ctx, KeyMarketData, &md); err != nil {
		return err
	}
	if _, err := s.loadJSON(ctx, KeyMode, &mode); err != nil {
		return err
	}
	if _, err := s.loadJSON(ctx, KeyProjects, &projects); err != nil {
		return err
	}
	if !mode.Valid() {
		s.logger.Warn("ignoring unknown persisted mode",
			zap.String("op", "state.Load"),
			zap.String("mode", string(mode)),
		)
		mode = ModeBusiness
	}

	s.business, s.market, s.mode, s.projects = bd, md, mode, projects
	s.logger.Debug("state loaded",
		zap.String("op", "state.Load"),
		zap.Bool("businessData", bd != nil),
		zap.Bool("marketData", md != nil),
		zap.Int("projects", len(projects)),
	)
	return nil
}

// BusinessData returns a copy of the current business case, or nil.
func (s *Store) BusinessData() *business.BusinessData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.business.Clone()
}

// MarketData returns a copy of the current market analysis, or nil.
func (s *Store) MarketData() *market.MarketData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.market.Clone()
}

// SetBusinessData replaces the business case.
func (s *Store) SetBusinessData(ctx context.Context, d *business.BusinessData) error {
	if d == nil {
		return eris.New("state: business data is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitBusiness(ctx, d.Clone())
}

// SetMarketData replaces the market analysis without merging.
func (s *Store) SetMarketData(ctx context.Context, md *market.MarketData) error {
	if md == nil {
		return eris.New("state: market data is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitMarket(ctx, md.Clone())
}

// ImportBusinessData decodes raw and replaces the business case with it.
func (s *Store) ImportBusinessData(ctx context.Context, raw []byte, format importer.Format) (*business.BusinessData, error) {
	d, err := s.decoder.BusinessData(raw, format)
	if err != nil {
		return nil, eris.Wrap(err, "state: import business data")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.commitBusiness(ctx, d); err != nil {
		return nil, err
	}
	s.logger.Info("imported business data",
		zap.String("op", "state.ImportBusinessData"),
		zap.String("title", d.Meta.Title),
		zap.Int("segments", len(d.Assumptions.Customers.Segments)),
	)
	return d.Clone(), nil
}

// ImportMarketData decodes raw, merges it into the current market analysis
// module by module and marks every market-sourced segment volume stale.
func (s *Store) ImportMarketData(ctx context.Context, raw []byte, format importer.Format) (*market.MarketData, error) {
	incoming, err := s.decoder.MarketData(raw, format)
	if err != nil {
		return nil, eris.Wrap(err, "state: import market data")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := market.Merge(s.market, incoming)
	if merged.SchemaVersion == "" {
		merged.SchemaVersion = constants.SchemaVersion
	}
	stale := s.staleBusiness()

	if err := s.saveJSON(ctx, KeyMarketData, merged); err != nil {
		return nil, err
	}
	if stale != nil {
		if err := s.saveJSON(ctx, KeyBusinessData, stale); err != nil {
			s.rollback(ctx, "state.ImportMarketData", KeyMarketData, s.market)
			return nil, err
		}
		s.business = stale
	}
	s.market = merged

	s.logger.Info("imported market data",
		zap.String("op", "state.ImportMarketData"),
		zap.Strings("incomingModules", market.AvailableModules(incoming)),
		zap.Strings("modules", market.AvailableModules(merged)),
	)
	return merged.Clone(), nil
}

// staleBusiness returns a copy of the business case with every market-sourced
// segment volume marked stale, or nil when nothing is market-sourced.
func (s *Store) staleBusiness() *business.BusinessData {
	if s.business == nil {
		return nil
	}
	segments := s.business.Assumptions.Customers.Segments
	sourced := make([]*sourcing.Assumption, len(segments))
	found := false
	for i, segment := range segments {
		sourced[i] = segment.SourcedVolume
		found = found || segment.SourcedVolume.IsMarketSourced()
	}
	if !found {
		return nil
	}

	out := s.business.Clone()
	for i, a := range s.syncer.MarkAsStale(sourced) {
		out.Assumptions.Customers.Segments[i].SourcedVolume = a
	}
	return out
}

// Mode returns the active mode.
func (s *Store) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode switches the active mode.
func (s *Store) SetMode(ctx context.Context, mode Mode) error {
	if !mode.Valid() {
		return eris.Errorf("state: unknown mode %q", mode)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.saveJSON(ctx, KeyMode, mode); err != nil {
		return err
	}
	s.mode = mode
	return nil
}

// Clear removes the business case, market analysis and mode. Saved projects
// are kept.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range []string{KeyBusinessData, KeyMarketData, KeyMode} {
		if err := s.port.Remove(ctx, key); err != nil {
			return eris.Wrapf(err, "state: remove %s", key)
		}
	}
	s.business, s.market, s.mode = nil, nil, ModeBusiness
	s.logger.Info("state cleared", zap.String("op", "state.Clear"))
	return nil
}

func (s *Store) commitBusiness(ctx context.Context, d *business.BusinessData) error {
	d.EnsureSchemaVersion()
	if err := s.saveJSON(ctx, KeyBusinessData, d); err != nil {
		return err
	}
	s.business = d
	return nil
}

func (s *Store) commitMarket(ctx context.Context, md *market.MarketData) error {
	if md.SchemaVersion == "" {
		md.SchemaVersion = constants.SchemaVersion
	}
	if err := s.saveJSON(ctx, KeyMarketData, md); err != nil {
		return err
	}
	s.market = md
	return nil
}

// rollback rewrites key with the document still held in memory after a later
// write of the same operation failed. A failed rollback is logged; the
// in-memory state stays authoritative.
func (s *Store) rollback(ctx context.Context, op, key string, previous any) {
	if err := s.replaceDocument(ctx, key, previous); err != nil {
		s.logger.Error("failed to restore document after a partial write",
			zap.String("op", op),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

// requireBusiness logs a warning and reports false when no business case is
// loaded.
func (s *Store) requireBusiness(op string) bool {
	if s.business != nil {
		return true
	}
	s.logger.Warn("no business data loaded, ignoring mutation", zap.String("op", op))
	return false
}

func (s *Store) saveJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return eris.Wrapf(err, "state: encode %s", key)
	}
	if err := s.port.Save(ctx, key, data); err != nil {
		return eris.Wrapf(err, "state: save %s", key)
	}
	return nil
}

func (s *Store) loadJSON(ctx context.Context, key string, v any) (bool, error) {
	data, err := s.port.Load(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrapf(err, "state: load %s", key)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, eris.Wrapf(err, "state: decode %s", key)
	}
	return true, nil
}
