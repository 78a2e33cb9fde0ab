package model

import "time"

// ActivityType enumerates the events recorded in a vehicle's activity log.
type ActivityType string

const (
	ActivityVehicleCreated       ActivityType = "VEHICLE_CREATED"
	ActivityVehicleUpdated       ActivityType = "VEHICLE_UPDATED"
	ActivityStatusChanged        ActivityType = "STATUS_CHANGED"
	ActivityMaintenanceCompleted ActivityType = "MAINTENANCE_COMPLETED"
	ActivityReportAdded          ActivityType = "REPORT_ADDED"
	ActivityVehicleDeleted       ActivityType = "VEHICLE_DELETED"

	// Telematics events emitted by the simulator for reserved vehicles.
	ActivityEngineStarted      ActivityType = "ENGINE_STARTED"
	ActivityEngineStopped      ActivityType = "ENGINE_STOPPED"
	ActivityDoorOpened         ActivityType = "DOOR_OPENED"
	ActivityDoorClosed         ActivityType = "DOOR_CLOSED"
	ActivityPassengerDoor      ActivityType = "PASSENGER_DOOR_OPENED"
	ActivityTrunkOpened        ActivityType = "TRUNK_OPENED"
	ActivityBonnetOpened       ActivityType = "BONNET_OPENED"
	ActivityHighTemperature    ActivityType = "HIGH_TEMPERATURE"
	ActivitySpeedExceeded      ActivityType = "SPEED_EXCEEDED"
	ActivitySuddenBraking      ActivityType = "SUDDEN_BRAKING"
	ActivityLowFuel            ActivityType = "LOW_FUEL"
	ActivityLowBattery         ActivityType = "LOW_BATTERY"
	ActivityHighRPM            ActivityType = "HIGH_RPM"
)

// ActivityLogEntry is one immutable entry in a vehicle's history.
// Entries are ordered by timestamp, ties broken by insertion order.
type ActivityLogEntry struct {
	ID          string       `json:"id"`
	VehicleID   string       `json:"vehicle_id"`
	Type        ActivityType `json:"type"`
	Description string       `json:"description"`
	Timestamp   time.Time    `json:"timestamp"`
}
