package state

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iwvelando/business-case/internal/business"
	"github.com/iwvelando/business-case/internal/importer"
	"github.com/iwvelando/business-case/internal/sourcing"
	"github.com/iwvelando/business-case/internal/storage"
	"github.com/iwvelando/business-case/pkg/constants"
	"github.com/iwvelando/business-case/pkg/testutil"
)

var errDiskFull = eris.New("disk full")

// flakyPort fails every Save while failSave is set, and Saves of failKey.
type flakyPort struct {
	*storage.Memory
	failSave bool
	failKey  string
}

func (p *flakyPort) Save(ctx context.Context, key string, data []byte) error {
	if p.failSave || key == p.failKey {
		return errDiskFull
	}
	return p.Memory.Save(ctx, key, data)
}

var fixedNow = time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)

func newTestStore(port Port) *Store {
	now := func() time.Time { return fixedNow }
	return NewStore(nil, port, Options{Now: now})
}

func TestMutationsWithoutDataAreNoOps(t *testing.T) {
	ctx := context.Background()
	port := storage.NewMemory()
	s := newTestStore(port)

	assert.NoError(t, s.UpdateAssumption(ctx, "assumptions.pricing.avg_unit_price.value", 10))
	assert.NoError(t, s.AddDriver(ctx, business.Driver{Key: "k"}))
	assert.NoError(t, s.RemoveDriver(ctx, "k"))
	assert.NoError(t, s.SwitchSegmentSource(ctx, "smb", sourcing.SourceUserInput))
	assert.NoError(t, s.ResyncSegment(ctx, "smb"))

	result, err := s.TransferMarketVolume(ctx, "smb")
	require.NoError(t, err)
	assert.False(t, result.Success)

	assert.Nil(t, s.BusinessData())
	_, err = port.Load(ctx, KeyBusinessData)
	assert.True(t, errors.Is(err, storage.ErrNotFound), "nothing should have been persisted")
}

func TestSetBusinessDataPersists(t *testing.T) {
	ctx := context.Background()
	port := storage.NewMemory()
	s := newTestStore(port)

	d := testutil.RecurringBusinessData()
	d.SchemaVersion = ""
	require.NoError(t, s.SetBusinessData(ctx, d))
	require.NoError(t, s.SetMarketData(ctx, testutil.MarketFunnel()))
	require.NoError(t, s.SetMode(ctx, ModeMarket))

	reloaded := newTestStore(port)
	require.NoError(t, reloaded.Load(ctx))

	got := reloaded.BusinessData()
	require.NotNil(t, got)
	assert.Equal(t, constants.SchemaVersion, got.SchemaVersion)
	assert.Equal(t, d.Meta.Title, got.Meta.Title)
	assert.Equal(t, ModeMarket, reloaded.Mode())
	require.NotNil(t, reloaded.MarketData())
	assert.Equal(t, 2500000.0, reloaded.MarketData().MarketSizing.TotalAddressableMarket.BaseValue.Value)

	got.Meta.Title = "changed"
	assert.Equal(t, d.Meta.Title, reloaded.BusinessData().Meta.Title, "BusinessData() should return a copy")
}

func TestLoadEmptyPort(t *testing.T) {
	s := newTestStore(storage.NewMemory())
	require.NoError(t, s.Load(context.Background()))
	assert.Nil(t, s.BusinessData())
	assert.Nil(t, s.MarketData())
	assert.Equal(t, ModeBusiness, s.Mode())
	assert.Empty(t, s.ListProjects())
}

func TestLoadRejectsCorruptDocument(t *testing.T) {
	ctx := context.Background()
	port := storage.NewMemory()
	require.NoError(t, port.Save(ctx, KeyBusinessData, []byte("{not json")))

	assert.Error(t, newTestStore(port).Load(ctx))
}

func TestFailedWriteLeavesStateIntact(t *testing.T) {
	ctx := context.Background()
	port := &flakyPort{Memory: storage.NewMemory()}
	s := newTestStore(port)
	require.NoError(t, s.SetBusinessData(ctx, testutil.RecurringBusinessData()))

	port.failSave = true
	err := s.UpdateAssumption(ctx, "assumptions.pricing.avg_unit_price.value", 99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errDiskFull))
	assert.Equal(t, 50.0, s.BusinessData().Assumptions.Pricing.AvgUnitPrice.Value)

	assert.Error(t, s.SetMode(ctx, ModeMarket))
	assert.Equal(t, ModeBusiness, s.Mode())

	_, err = s.SaveProject(ctx, "draft")
	assert.Error(t, err)
	assert.Empty(t, s.ListProjects())
}

func TestUpdateAssumption(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(nil)
	require.NoError(t, s.SetBusinessData(ctx, testutil.RecurringBusinessData()))

	require.NoError(t, s.UpdateAssumption(ctx, "assumptions.pricing.avg_unit_price.value", 65))
	assert.Equal(t, 65.0, s.BusinessData().Assumptions.Pricing.AvgUnitPrice.Value)

	err := s.UpdateAssumption(ctx, "assumptions.pricing.discount.value", 1)
	assert.True(t, errors.Is(err, business.ErrUnknownPath), "error = %v", err)
}

func TestDrivers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(nil)
	require.NoError(t, s.SetBusinessData(ctx, testutil.RecurringBusinessData()))

	cogs := business.Driver{Key: "cogs", Path: "assumptions.unit_economics.cogs_pct.value", Range: []float64{0.2, 0.4}, Rationale: "supplier quotes"}
	require.NoError(t, s.AddDriver(ctx, cogs))
	assert.Len(t, s.BusinessData().Drivers, 2)

	assert.True(t, errors.Is(s.AddDriver(ctx, cogs), ErrDuplicateDriver))
	assert.True(t, errors.Is(s.AddDriver(ctx, business.Driver{Key: "x", Path: "assumptions.nope.value"}), business.ErrUnknownPath))

	cogs.Range = []float64{0.25, 0.35}
	require.NoError(t, s.UpdateDriver(ctx, "cogs", cogs))
	assert.Equal(t, []float64{0.25, 0.35}, s.BusinessData().Drivers[1].Range)

	cogs.Key = "price"
	assert.True(t, errors.Is(s.UpdateDriver(ctx, "cogs", cogs), ErrDuplicateDriver))
	assert.True(t, errors.Is(s.UpdateDriver(ctx, "missing", cogs), ErrDriverNotFound))

	require.NoError(t, s.RemoveDriver(ctx, "price"))
	drivers := s.BusinessData().Drivers
	require.Len(t, drivers, 1)
	assert.Equal(t, "cogs", drivers[0].Key)
	assert.True(t, errors.Is(s.RemoveDriver(ctx, "price"), ErrDriverNotFound))
}

func TestProjection(t *testing.T) {
	s := newTestStore(nil)
	empty := s.Projection()
	assert.Empty(t, empty.Records)
	assert.False(t, empty.Validation.Valid())

	require.NoError(t, s.SetBusinessData(context.Background(), testutil.RecurringBusinessData()))
	p := s.Projection()
	assert.Len(t, p.Records, 24)
	assert.True(t, p.Validation.Valid())
	assert.Greater(t, p.Metrics.TotalRevenue, 0.0)
}

func TestImportBusinessData(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(nil)

	raw, err := json.Marshal(testutil.RecurringBusinessData())
	require.NoError(t, err)
	d, err := s.ImportBusinessData(ctx, raw, importer.FormatAuto)
	require.NoError(t, err)
	assert.Equal(t, "Team plan launch", d.Meta.Title)
	assert.Equal(t, d.Meta.Title, s.BusinessData().Meta.Title)

	_, err = s.ImportBusinessData(ctx, []byte("[1]"), importer.FormatAuto)
	assert.True(t, errors.Is(err, importer.ErrMalformedDocument))
	assert.Equal(t, "Team plan launch", s.BusinessData().Meta.Title)
}

func TestModeAndClear(t *testing.T) {
	ctx := context.Background()
	port := storage.NewMemory()
	s := newTestStore(port)
	require.NoError(t, s.SetBusinessData(ctx, testutil.RecurringBusinessData()))
	require.NoError(t, s.SetMode(ctx, ModeMarket))
	assert.Error(t, s.SetMode(ctx, Mode("spreadsheet")))
	_, err := s.SaveProject(ctx, "keep me")
	require.NoError(t, err)

	require.NoError(t, s.Clear(ctx))
	assert.Nil(t, s.BusinessData())
	assert.Equal(t, ModeBusiness, s.Mode())
	assert.Len(t, s.ListProjects(), 1, "Clear() keeps saved projects")

	_, err = port.Load(ctx, KeyMode)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}
