package executor

import (
	"context"
	"io"
)

// Executor defines the interface for executing external commands
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
	Start(ctx context.Context, name string, args ...string) (Process, error)
}

// Process is a started command whose output is read while it runs.
type Process interface {
	Stdout() io.Reader
	// Wait blocks until the command exits. Stdout must be drained first.
	Wait() error
	Kill() error
}
