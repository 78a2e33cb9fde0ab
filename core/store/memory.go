package store

import (
	"context"
	"sort"
	"sync"

	"github.com/fleetops/fleetd/core/model"
)

// MemoryStore is an in-process Store used by tests and the "memory"
// backend. Listings are sorted so results are stable.
type MemoryStore struct {
	mu       sync.RWMutex
	vehicles map[string]model.Vehicle
	reports  []model.Report
	logs     []model.ActivityLogEntry
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{vehicles: map[string]model.Vehicle{}}
}

func (s *MemoryStore) Vehicles() VehicleStore         { return (*memVehicles)(s) }
func (s *MemoryStore) Reports() ReportStore           { return (*memReports)(s) }
func (s *MemoryStore) ActivityLogs() ActivityLogStore { return (*memLogs)(s) }
func (s *MemoryStore) Close() error                   { return nil }

type memVehicles MemoryStore

func (s *memVehicles) Insert(_ context.Context, v model.Vehicle) error {
	s.mu.Lock()
	s.vehicles[v.ID] = v
	s.mu.Unlock()
	return nil
}

func (s *memVehicles) FindByID(_ context.Context, id string) (model.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vehicles[id]
	if !ok {
		return model.Vehicle{}, ErrNotFound
	}
	return v, nil
}

func (s *memVehicles) FindAll(_ context.Context, f Filter) ([]model.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]model.Vehicle, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		if f.Status != "" && v.Status != f.Status {
			continue
		}
		res = append(res, v)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (s *memVehicles) Update(_ context.Context, v model.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vehicles[v.ID]; !ok {
		return ErrNotFound
	}
	s.vehicles[v.ID] = v
	return nil
}

func (s *memVehicles) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vehicles[id]; !ok {
		return ErrNotFound
	}
	delete(s.vehicles, id)
	return nil
}

type memReports MemoryStore

func (s *memReports) Insert(_ context.Context, r model.Report) error {
	s.mu.Lock()
	s.reports = append(s.reports, r)
	s.mu.Unlock()
	return nil
}

func (s *memReports) FindByVehicle(_ context.Context, vehicleID string) ([]model.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []model.Report
	for _, r := range s.reports {
		if r.VehicleID == vehicleID {
			res = append(res, r)
		}
	}
	return res, nil
}

type memLogs MemoryStore

func (s *memLogs) Append(_ context.Context, e model.ActivityLogEntry) error {
	s.mu.Lock()
	s.logs = append(s.logs, e)
	s.mu.Unlock()
	return nil
}

func (s *memLogs) FindByVehicle(_ context.Context, vehicleID string) ([]model.ActivityLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []model.ActivityLogEntry
	for _, e := range s.logs {
		if e.VehicleID == vehicleID {
			res = append(res, e)
		}
	}
	// Entries are appended in order; a stable sort keeps insertion order
	// for equal timestamps.
	sort.SliceStable(res, func(i, j int) bool { return res[i].Timestamp.Before(res[j].Timestamp) })
	return res, nil
}
