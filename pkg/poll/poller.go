package poll

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Alwanly/heroku-ranger/pkg/logger"
)

var ErrAlreadyStarted = errors.New("poller already started")

type poller struct {
	logger     *logger.CanonicalLogger
	mu         sync.Mutex
	started    bool
	stopped    bool
	stopCh     chan struct{}
	wg         sync.WaitGroup
	fetchFuncs map[string]MetaFunc
}

// NewPoller creates a new Poller instance
func NewPoller(log *logger.CanonicalLogger) Poller {
	return &poller{
		logger:     log,
		stopCh:     make(chan struct{}),
		fetchFuncs: make(map[string]MetaFunc),
	}
}

func (p *poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return ErrAlreadyStarted
	}
	p.started = true

	for name, meta := range p.fetchFuncs {
		p.wg.Add(1)
		go p.run(ctx, name, meta)
	}
	return nil
}

func (p *poller) Stop() error {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		close(p.stopCh)
	}
	p.mu.Unlock()

	p.wg.Wait()
	return nil
}

func (p *poller) run(ctx context.Context, name string, meta MetaFunc) {
	defer p.wg.Done()

	ticker := time.NewTicker(meta.Interval)
	defer ticker.Stop()

	p.logger.Debug("started polling", logger.String(logger.FieldPollName, name), logger.Duration("interval", meta.Interval))

	if meta.RunImmediately {
		p.performPoll(ctx, name, meta.FetchFunc)
	}

	for {
		select {
		case <-p.stopCh:
			p.logger.Debug("stopping poller", logger.String(logger.FieldPollName, name))
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.performPoll(ctx, name, meta.FetchFunc)
		}
	}
}

func (p *poller) performPoll(ctx context.Context, name string, fetch FetchFunc) {
	if err := fetch(ctx); err != nil {
		p.logger.WithError(err).Warn("poll failed", logger.String(logger.FieldPollName, name))
		return
	}
	p.logger.Debug("poll succeeded", logger.String(logger.FieldPollName, name))
}

func (p *poller) RegisterFetchFunc(name string, fetchFunc FetchFunc, config PollerConfig) error {
	if name == "" || fetchFunc == nil {
		return errors.New("invalid fetch function registration")
	}
	if config.Interval <= 0 {
		return fmt.Errorf("poll %q: interval must be positive", name)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return ErrAlreadyStarted
	}
	if _, exists := p.fetchFuncs[name]; exists {
		return fmt.Errorf("poll %q already registered", name)
	}
	p.fetchFuncs[name] = MetaFunc{FetchFunc: fetchFunc, PollerConfig: config}
	p.logger.Debug("fetch function registered", logger.String(logger.FieldPollName, name), logger.Duration("interval", config.Interval))
	return nil
}
