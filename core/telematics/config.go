package telematics

import "fmt"

// Config defines settings for the telematics simulator.
type Config struct {
	Enabled bool `json:"enabled"`
	// IntervalSeconds is the period between simulation ticks.
	IntervalSeconds int `json:"interval_seconds"`
	// MaxEventsPerVehicle bounds the events generated per reserved
	// vehicle and tick; the count is drawn uniformly from 0..max.
	MaxEventsPerVehicle int `json:"max_events_per_vehicle"`
	// Seed fixes the random source. Zero seeds from the clock.
	Seed int64 `json:"seed"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.IntervalSeconds == 0 {
		c.IntervalSeconds = 60
	}
	if c.MaxEventsPerVehicle == 0 {
		c.MaxEventsPerVehicle = 3
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.IntervalSeconds <= 0 {
		return fmt.Errorf("interval_seconds must be positive")
	}
	if c.MaxEventsPerVehicle < 0 {
		return fmt.Errorf("max_events_per_vehicle must not be negative")
	}
	return nil
}
