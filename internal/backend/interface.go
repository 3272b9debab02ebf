// Package backend selects and wires the gateway the bill store talks
// to: the real remote API or the in-process one used for dev and tests.
package backend

import (
	"context"
	"fmt"
	"time"

	"contas/internal/config"
	"contas/internal/remote"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the gateway instance and optional cleanup function
type Result struct {
	Gateway remote.Gateway
	Cleanup CleanupFunc
}

// Factory creates gateways based on configuration
type Factory interface {
	CreateGateway(ctx context.Context, cfg Config) (*Result, error)
}

// Config holds configuration for gateway creation
type Config struct {
	Type Type

	// Remote API specific
	APIBaseURL     string
	APIPathPrefix  string
	RequestTimeout time.Duration

	// Memory backend specific
	SeedSampleData bool
}

// Type represents the kind of gateway backing the store
type Type string

const (
	RemoteBackend Type = "remote"
	MemoryBackend Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case RemoteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := Type(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:           backendType,
		APIBaseURL:     appConfig.APIBaseURL,
		APIPathPrefix:  appConfig.APIPathPrefix,
		RequestTimeout: appConfig.RequestTimeout,
		SeedSampleData: appConfig.MemorySeed,
	}, nil
}
