package poll

import (
	"context"
	"time"
)

// FetchFunc is called once per tick. A returned error is logged and polling continues.
type FetchFunc func(ctx context.Context) error

type PollerConfig struct {
	Interval time.Duration
	// RunImmediately fires the first fetch on Start instead of after one interval
	RunImmediately bool
}

type MetaFunc struct {
	FetchFunc
	PollerConfig
}

// Poller runs registered fetch functions on their own intervals
type Poller interface {
	// Start begins polling in the background
	Start(ctx context.Context) error
	// Stop stops polling and waits for in-flight fetches
	Stop() error
	// RegisterFetchFunc adds a fetch function; only allowed before Start
	RegisterFetchFunc(name string, fetchFunc FetchFunc, config PollerConfig) error
}
