package config

import "fmt"

// MetricsConfig defines settings for metrics sinks.
type MetricsConfig struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusAddr    string `json:"prometheus_addr"`

	InfluxEnabled bool   `json:"influx_enabled"`
	InfluxURL     string `json:"influx_url"`
	InfluxToken   string `json:"influx_token"`
	InfluxOrg     string `json:"influx_org"`
	InfluxBucket  string `json:"influx_bucket"`

	// SnapshotIntervalSeconds is the period between fleet snapshot
	// exports. Zero disables the exporter.
	SnapshotIntervalSeconds int `json:"snapshot_interval_seconds"`
}

// SetDefaults applies sane defaults.
func (c *MetricsConfig) SetDefaults() {
	if c.PrometheusAddr == "" {
		c.PrometheusAddr = ":9090"
	}
}

// Validate checks mandatory fields.
func (c MetricsConfig) Validate() error {
	if c.InfluxEnabled && c.InfluxURL == "" {
		return fmt.Errorf("influx_url is required")
	}
	if c.SnapshotIntervalSeconds < 0 {
		return fmt.Errorf("snapshot_interval_seconds must not be negative")
	}
	return nil
}
