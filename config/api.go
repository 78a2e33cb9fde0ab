package config

import "fmt"

// APIConfig defines the HTTP API listener.
type APIConfig struct {
	Addr string `json:"addr"`
	// Token guards mutating endpoints when non-empty.
	Token string `json:"token"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

// Validate checks mandatory fields.
func (c APIConfig) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	return nil
}
