package state

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/iwvelando/business-case/internal/business"
	"github.com/iwvelando/business-case/internal/metrics"
	"github.com/iwvelando/business-case/internal/projection"
	"github.com/iwvelando/business-case/pkg/validation"
)

var (
	// ErrDriverNotFound is returned when no driver has the requested key.
	ErrDriverNotFound = eris.New("driver not found")

	// ErrDuplicateDriver is returned when adding a driver whose key exists.
	ErrDuplicateDriver = eris.New("driver already exists")
)

// Projection is the derived view of the current business case.
type Projection struct {
	Records    []projection.MonthlyRecord `json:"records"`
	Metrics    metrics.Metrics            `json:"metrics"`
	Validation validation.Report          `json:"validation"`
}

// UpdateAssumption sets the numeric field at path.
func (s *Store) UpdateAssumption(ctx context.Context, path string, v float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.requireBusiness("state.UpdateAssumption") {
		return nil
	}

	updated, err := business.SetValue(s.business, path, v)
	if err != nil {
		return eris.Wrap(err, "state: update assumption")
	}
	if err := s.commitBusiness(ctx, updated); err != nil {
		return err
	}
	s.logger.Debug("assumption updated",
		zap.String("op", "state.UpdateAssumption"),
		zap.String("path", path),
		zap.Float64("value", v),
	)
	return nil
}

// AddDriver appends a driver. Its path must resolve against the business case.
func (s *Store) AddDriver(ctx context.Context, driver business.Driver) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.requireBusiness("state.AddDriver") {
		return nil
	}
	if s.business.DriverByKey(driver.Key) >= 0 {
		return eris.Wrapf(ErrDuplicateDriver, "state: add driver %q", driver.Key)
	}
	if err := business.ResolvePath(s.business, driver.Path); err != nil {
		return eris.Wrapf(err, "state: add driver %q", driver.Key)
	}

	updated := s.business.Clone()
	driver.Range = append([]float64(nil), driver.Range...)
	updated.Drivers = append(updated.Drivers, driver)
	return s.commitBusiness(ctx, updated)
}

// UpdateDriver replaces the driver stored under key.
func (s *Store) UpdateDriver(ctx context.Context, key string, driver business.Driver) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.requireBusiness("state.UpdateDriver") {
		return nil
	}
	i := s.business.DriverByKey(key)
	if i < 0 {
		return eris.Wrapf(ErrDriverNotFound, "state: update driver %q", key)
	}
	if driver.Key != key && s.business.DriverByKey(driver.Key) >= 0 {
		return eris.Wrapf(ErrDuplicateDriver, "state: rename driver %q", key)
	}
	if err := business.ResolvePath(s.business, driver.Path); err != nil {
		return eris.Wrapf(err, "state: update driver %q", key)
	}

	updated := s.business.Clone()
	driver.Range = append([]float64(nil), driver.Range...)
	updated.Drivers[i] = driver
	return s.commitBusiness(ctx, updated)
}

// RemoveDriver deletes the driver stored under key.
func (s *Store) RemoveDriver(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.requireBusiness("state.RemoveDriver") {
		return nil
	}
	i := s.business.DriverByKey(key)
	if i < 0 {
		return eris.Wrapf(ErrDriverNotFound, "state: remove driver %q", key)
	}

	updated := s.business.Clone()
	updated.Drivers = append(updated.Drivers[:i], updated.Drivers[i+1:]...)
	return s.commitBusiness(ctx, updated)
}

// Projection recomputes the records, metrics and findings of the current
// business case. Without a business case the records are empty and the
// metrics are metrics.DefaultMetrics.
func (s *Store) Projection() Projection {
	d := s.BusinessData()
	records := projection.NewEngine(s.logger).Generate(d)
	return Projection{
		Records:    records,
		Metrics:    metrics.Calculate(records, s.metrics),
		Validation: validation.ValidateBusinessData(d),
	}
}
