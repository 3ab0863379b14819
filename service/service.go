package service

// Service is the lifecycle contract for long-lived subsystems: scene world, HTTP listener
//
// Lifecycle:
//  1. Construction with static configuration
//  2. Init(args...) - load resources; args carry shared context such as the owning Hub
//  3. Start() - launch background goroutines
//  4. Stop() - halt goroutines, release resources
type Service interface {
	// Name returns the unique identifier for this service
	Name() string

	// Dependencies returns names of services that must Init and Start before this one
	Dependencies() []string

	Init(args ...any) error

	// Start is called after every service has initialized
	Start() error

	// Stop must be idempotent
	Stop() error
}

// HubFrom returns the first *Hub in args, for services that resolve dependencies in Init
func HubFrom(args []any) (*Hub, bool) {
	for _, a := range args {
		if h, ok := a.(*Hub); ok {
			return h, true
		}
	}
	return nil, false
}
