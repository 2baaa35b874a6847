package ratelimit

import (
	"fmt"
	"time"
)

// Config describes one endpoint class: how many requests a single client may
// make within a sliding window. UniqueClients is a nominal sizing hint for
// the backing store and has no effect on correctness.
type Config struct {
	Name          string
	Window        time.Duration
	MaxRequests   int
	UniqueClients int
}

// Preset configs, one per endpoint class.
var (
	Auth    = Config{Name: "auth", Window: time.Minute, MaxRequests: 5, UniqueClients: 500}
	Upload  = Config{Name: "upload", Window: time.Minute, MaxRequests: 10, UniqueClients: 500}
	Delete  = Config{Name: "delete", Window: time.Minute, MaxRequests: 20, UniqueClients: 500}
	General = Config{Name: "general", Window: time.Minute, MaxRequests: 100, UniqueClients: 1000}
	Test    = Config{Name: "test", Window: time.Minute, MaxRequests: 50, UniqueClients: 100}
)

// Presets returns the named preset configs in a stable order.
func Presets() []Config {
	return []Config{Auth, Upload, Delete, General, Test}
}

// Validate reports a malformed config. A bad config is a programmer error;
// callers should fail fast at startup rather than tolerate it at runtime.
func (c Config) Validate() error {
	if c.Window <= 0 {
		return fmt.Errorf("rate limit config %q: window must be positive, got %v", c.Name, c.Window)
	}
	if c.MaxRequests < 1 {
		return fmt.Errorf("rate limit config %q: max requests must be at least 1, got %d", c.Name, c.MaxRequests)
	}
	return nil
}
