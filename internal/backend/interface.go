package backend

import (
	"context"

	"saldo/internal/notify"
	"saldo/internal/remote"
	"saldo/internal/worker"
)

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// BackendResult is everything the binaries need from a backend.
type BackendResult struct {
	Store    remote.Store
	Notifier notify.Notifier
	// Recorder keeps delivered notifications; nil for backends without
	// persistence.
	Recorder worker.Recorder
	Cleanup  CleanupFunc
}

// Close runs Cleanup if set.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SQLiteDBPath string

	// AMQP is optional for every backend; without it notifications go to
	// the log.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

type BackendType string

const (
	MemoryBackend BackendType = "memory"
	SQLiteBackend BackendType = "sqlite"
)

func (t BackendType) IsValid() bool {
	switch t {
	case MemoryBackend, SQLiteBackend:
		return true
	}
	return false
}

func (t BackendType) String() string {
	return string(t)
}
