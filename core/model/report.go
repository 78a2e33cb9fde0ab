package model

import "time"

// Severity classifies an inspection report.
type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// ParseSeverity converts a string to a Severity.
func ParseSeverity(s string) (Severity, bool) {
	switch Severity(s) {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return Severity(s), true
	default:
		return "", false
	}
}

// Report is an immutable inspection finding attached to a vehicle.
type Report struct {
	ID          string    `json:"id"`
	VehicleID   string    `json:"vehicle_id"`
	Description string    `json:"description"`
	Severity    Severity  `json:"severity"`
	CreatedAt   time.Time `json:"created_at"`
}
