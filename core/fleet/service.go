package fleet

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/fleetops/fleetd/core/logger"
	"github.com/fleetops/fleetd/core/metrics"
	"github.com/fleetops/fleetd/core/model"
	"github.com/fleetops/fleetd/core/store"
)

// ErrInvalidState is returned when an operation is not valid for the
// vehicle's current status.
var ErrInvalidState = errors.New("operation not valid for vehicle status")

// Recorder is the subset of the activity log recorder used by the engine.
type Recorder interface {
	Record(ctx context.Context, vehicleID string, typ model.ActivityType, description string) (model.ActivityLogEntry, error)
	ListByVehicle(ctx context.Context, vehicleID string) ([]model.ActivityLogEntry, error)
}

// Service enforces the fleet state rules: status transitions and their
// side effects, monotonic odometer accrual and maintenance resets.
// Every meaningful mutation is mirrored into the activity log.
type Service struct {
	vehicles store.VehicleStore
	reports  store.ReportStore
	recorder Recorder
	sink     metrics.StatusChangeRecorder
	log      logger.Logger
	now      func() time.Time
	rand     *rand.Rand
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRand overrides the random source used for location simulation.
func WithRand(r *rand.Rand) Option {
	return func(s *Service) { s.rand = r }
}

// WithStatusSink attaches a recorder for status transitions.
func WithStatusSink(sink metrics.StatusChangeRecorder) Option {
	return func(s *Service) { s.sink = sink }
}

// New creates the fleet service.
func New(vehicles store.VehicleStore, reports store.ReportStore, recorder Recorder, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		vehicles: vehicles,
		reports:  reports,
		recorder: recorder,
		log:      log,
		now:      time.Now,
		rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// CreateSpec describes a vehicle to create. Status defaults to
// Available when empty.
type CreateSpec struct {
	Brand           string
	Model           string
	Year            int
	Specifications  []string
	Image           string
	TotalKilometers float64
	Status          model.Status
}

// Create constructs and persists a new vehicle and records a creation
// entry. KilometersSinceMaintenance always starts at zero.
func (s *Service) Create(ctx context.Context, spec CreateSpec) (model.Vehicle, error) {
	now := s.now()
	status := spec.Status
	if status == "" {
		status = model.StatusAvailable
	}
	v := model.Vehicle{
		ID:                uuid.NewString(),
		Brand:             spec.Brand,
		Model:             spec.Model,
		Year:              spec.Year,
		Specifications:    spec.Specifications,
		Image:             spec.Image,
		TotalKilometers:   spec.TotalKilometers,
		LastMaintenanceAt: now,
		Status:            status,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.vehicles.Insert(ctx, v); err != nil {
		return model.Vehicle{}, fmt.Errorf("insert vehicle: %w", err)
	}
	if _, err := s.recorder.Record(ctx, v.ID, model.ActivityVehicleCreated,
		fmt.Sprintf("New vehicle %q created.", v.DisplayName())); err != nil {
		return model.Vehicle{}, err
	}
	s.log.Infof("vehicle %s created (%s)", v.ID, v.DisplayName())
	return v, nil
}

// Patch carries the fields of an update. Nil fields are left untouched.
type Patch struct {
	Brand           *string
	Model           *string
	Year            *int
	Specifications  *[]string
	Image           *string
	TotalKilometers *float64
}

// Update applies the patch to the vehicle. A new odometer value only
// takes effect when strictly greater than the stored one; the distance
// driven then accrues into KilometersSinceMaintenance. Equal or lower
// values are ignored, distance cannot move backward.
func (s *Service) Update(ctx context.Context, id string, p Patch) (model.Vehicle, error) {
	v, err := s.vehicles.FindByID(ctx, id)
	if err != nil {
		return model.Vehicle{}, fmt.Errorf("find vehicle %s: %w", id, err)
	}

	if p.TotalKilometers != nil && *p.TotalKilometers > v.TotalKilometers {
		driven := *p.TotalKilometers - v.TotalKilometers
		v.KilometersSinceMaintenance += driven
		v.TotalKilometers = *p.TotalKilometers
	}
	if p.Brand != nil {
		v.Brand = *p.Brand
	}
	if p.Model != nil {
		v.Model = *p.Model
	}
	if p.Year != nil {
		v.Year = *p.Year
	}
	if p.Specifications != nil {
		v.Specifications = *p.Specifications
	}
	if p.Image != nil {
		v.Image = *p.Image
	}
	v.UpdatedAt = s.now()

	if err := s.vehicles.Update(ctx, v); err != nil {
		return model.Vehicle{}, fmt.Errorf("update vehicle %s: %w", id, err)
	}
	if _, err := s.recorder.Record(ctx, id, model.ActivityVehicleUpdated,
		fmt.Sprintf("Vehicle %q updated.", v.DisplayName())); err != nil {
		return model.Vehicle{}, err
	}
	return v, nil
}

// ChangeStatus moves the vehicle to newStatus. Every transition is
// permitted; side effects are attached to specific destinations:
// entering Available resets the maintenance counter, and entering it
// from Maintenance additionally records a completion entry.
func (s *Service) ChangeStatus(ctx context.Context, id string, newStatus model.Status) (model.Vehicle, error) {
	v, err := s.vehicles.FindByID(ctx, id)
	if err != nil {
		return model.Vehicle{}, fmt.Errorf("find vehicle %s: %w", id, err)
	}

	oldStatus := v.Status
	v.Status = newStatus
	if newStatus == model.StatusAvailable {
		v.KilometersSinceMaintenance = 0
		v.LastMaintenanceAt = s.now()
	}
	v.UpdatedAt = s.now()

	if err := s.vehicles.Update(ctx, v); err != nil {
		return model.Vehicle{}, fmt.Errorf("update vehicle %s: %w", id, err)
	}
	if newStatus == model.StatusAvailable && oldStatus == model.StatusMaintenance {
		if _, err := s.recorder.Record(ctx, id, model.ActivityMaintenanceCompleted,
			fmt.Sprintf("Vehicle %q maintenance completed and set to %s.", v.DisplayName(), model.StatusAvailable)); err != nil {
			return model.Vehicle{}, err
		}
	}
	if _, err := s.recorder.Record(ctx, id, model.ActivityStatusChanged,
		fmt.Sprintf("Vehicle %q status changed from %s to %s.", v.DisplayName(), oldStatus, newStatus)); err != nil {
		return model.Vehicle{}, err
	}
	if s.sink != nil {
		if err := s.sink.RecordStatusChange(metrics.StatusChangeEvent{
			VehicleID: id, From: oldStatus, To: newStatus, Time: s.now(),
		}); err != nil {
			s.log.Warnf("record status change metric: %v", err)
		}
	}
	return v, nil
}

// SimulateLocation draws a random position for a reserved vehicle.
// Location tracking is only meaningful while the vehicle is in use, so
// any other status fails with ErrInvalidState. No activity entry is
// recorded: position polls are frequent and would flood the log.
func (s *Service) SimulateLocation(ctx context.Context, id string) (model.Vehicle, error) {
	v, err := s.vehicles.FindByID(ctx, id)
	if err != nil {
		return model.Vehicle{}, fmt.Errorf("find vehicle %s: %w", id, err)
	}
	if v.Status != model.StatusReserved {
		return model.Vehicle{}, fmt.Errorf("vehicle %s is %s: %w", id, v.Status, ErrInvalidState)
	}

	v.Location = &model.Location{
		Latitude:  round6(s.rand.Float64()*180 - 90),
		Longitude: round6(s.rand.Float64()*360 - 180),
	}
	v.UpdatedAt = s.now()
	if err := s.vehicles.Update(ctx, v); err != nil {
		return model.Vehicle{}, fmt.Errorf("update vehicle %s: %w", id, err)
	}
	return v, nil
}

// Remove deletes the vehicle and records a deletion entry against its
// id. The history outlives the record.
func (s *Service) Remove(ctx context.Context, id string) error {
	v, err := s.vehicles.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find vehicle %s: %w", id, err)
	}
	if err := s.vehicles.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete vehicle %s: %w", id, err)
	}
	if _, err := s.recorder.Record(ctx, id, model.ActivityVehicleDeleted,
		fmt.Sprintf("Vehicle %q deleted.", v.DisplayName())); err != nil {
		return err
	}
	s.log.Infof("vehicle %s removed", id)
	return nil
}

// Get returns a single vehicle.
func (s *Service) Get(ctx context.Context, id string) (model.Vehicle, error) {
	v, err := s.vehicles.FindByID(ctx, id)
	if err != nil {
		return model.Vehicle{}, fmt.Errorf("find vehicle %s: %w", id, err)
	}
	return v, nil
}

// List returns vehicles, optionally filtered by status.
func (s *Service) List(ctx context.Context, f store.Filter) ([]model.Vehicle, error) {
	return s.vehicles.FindAll(ctx, f)
}

// AddReport attaches an immutable inspection report to the vehicle.
func (s *Service) AddReport(ctx context.Context, vehicleID, description string, severity model.Severity) (model.Report, error) {
	v, err := s.vehicles.FindByID(ctx, vehicleID)
	if err != nil {
		return model.Report{}, fmt.Errorf("find vehicle %s: %w", vehicleID, err)
	}
	if severity == "" {
		severity = model.SeverityLow
	}
	r := model.Report{
		ID:          uuid.NewString(),
		VehicleID:   vehicleID,
		Description: description,
		Severity:    severity,
		CreatedAt:   s.now(),
	}
	if err := s.reports.Insert(ctx, r); err != nil {
		return model.Report{}, fmt.Errorf("insert report: %w", err)
	}
	if _, err := s.recorder.Record(ctx, vehicleID, model.ActivityReportAdded,
		fmt.Sprintf("Report %q added to vehicle %q.", description, v.DisplayName())); err != nil {
		return model.Report{}, err
	}
	return r, nil
}

// ReportsByVehicle lists the vehicle's inspection reports.
func (s *Service) ReportsByVehicle(ctx context.Context, vehicleID string) ([]model.Report, error) {
	return s.reports.FindByVehicle(ctx, vehicleID)
}

// LogsByVehicle lists the vehicle's activity history.
func (s *Service) LogsByVehicle(ctx context.Context, vehicleID string) ([]model.ActivityLogEntry, error) {
	return s.recorder.ListByVehicle(ctx, vehicleID)
}

func round6(f float64) float64 {
	return math.Round(f*1e6) / 1e6
}
