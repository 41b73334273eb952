package service

// Service defines the lifecycle interface for long-lived subsystems
// Services manage resources: the audio graph and its backend, the settings store
//
// Lifecycle:
//  1. Construction (via factory)
//  2. Init(args...) - configuration from parsed flags, env and config file
//  3. Start() - launch background goroutines
//  4. [runtime operation]
//  5. Stop() - halt goroutines, release resources
type Service interface {
	// Name returns the unique identifier for this service
	Name() string

	// Dependencies returns names of services that must Init before this one
	// Return nil or empty slice if no dependencies
	Dependencies() []string

	// Init configures the service from optional args
	// Args are service-specific (audio config, data directory)
	Init(args ...any) error

	// Start begins service operation (launches goroutines if any)
	// Called after all services have initialized
	Start() error

	// Stop halts service operation and releases resources
	// Must be idempotent - safe to call multiple times
	Stop() error
}

// Binder is implemented by services that use their dependencies directly.
// The hub calls Bind with every declared dependency, already initialised,
// just before the service's own Init.
type Binder interface {
	Bind(deps map[string]Service) error
}
