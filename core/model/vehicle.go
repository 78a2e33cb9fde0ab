package model

import "time"

// Status is the operational phase of a fleet vehicle.
type Status string

const (
	StatusAvailable   Status = "AVAILABLE"
	StatusReserved    Status = "RESERVED"
	StatusMaintenance Status = "MAINTENANCE"
)

// ParseStatus converts a string to a Status.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusAvailable, StatusReserved, StatusMaintenance:
		return Status(s), true
	default:
		return "", false
	}
}

// MaintenanceSoonKm is the distance since the last maintenance above
// which a vehicle is flagged as needing maintenance soon.
const MaintenanceSoonKm = 10000

// Location is a vehicle position. It is only meaningful while the
// vehicle is reserved.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Vehicle represents a fleet vehicle and its accumulated usage.
type Vehicle struct {
	ID             string    `json:"id"`
	Brand          string    `json:"brand"`
	Model          string    `json:"model"`
	Year           int       `json:"year"`
	Specifications []string  `json:"specifications,omitempty"`
	Image          string    `json:"image,omitempty"`

	// TotalKilometers is cumulative odometer data and never decreases.
	TotalKilometers float64 `json:"total_kilometers"`
	// KilometersSinceMaintenance accrues with the odometer and resets to
	// zero whenever the vehicle enters StatusAvailable.
	KilometersSinceMaintenance float64   `json:"kilometers_since_maintenance"`
	LastMaintenanceAt          time.Time `json:"last_maintenance_at"`

	Status   Status    `json:"status"`
	Location *Location `json:"location,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName returns the human readable "brand model" pair used in
// activity log descriptions.
func (v Vehicle) DisplayName() string {
	return v.Brand + " " + v.Model
}

// NeedsMaintenanceSoon reports whether the vehicle should be scheduled
// for maintenance. Vehicles already in maintenance are excluded.
func (v Vehicle) NeedsMaintenanceSoon() bool {
	return v.Status != StatusMaintenance && v.KilometersSinceMaintenance >= MaintenanceSoonKm
}
