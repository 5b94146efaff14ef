package factory

import "context"

// Engine defines the analytics update operations
type Engine interface {
	Process(ctx context.Context) error
	IsInterfaceNil() bool
}

// RunLogHandler defines the lifecycle operations of the run log component
type RunLogHandler interface {
	Close() error
	IsInterfaceNil() bool
}

// WebServer defines the artifact-serving server operations
type WebServer interface {
	Start()
	Address() string
	Close() error
	IsInterfaceNil() bool
}
