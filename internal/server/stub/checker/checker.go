package checker

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Alwanly/heroku-ranger/internal/models"
	"github.com/Alwanly/heroku-ranger/internal/server/stub/repository"
	"github.com/Alwanly/heroku-ranger/pkg/logger"
)

// CodeUnreachable is stored when the check gets no HTTP response at all.
const CodeUnreachable = 0

const (
	defaultConcurrency = 8
	maxDrainBytes      = 64 << 10
)

// Checker checks every monitored URL and records the response code.
type Checker struct {
	Repo        repository.IRepository
	Client      *http.Client
	Logger      *logger.CanonicalLogger
	Concurrency int
	Now         func() time.Time
}

func NewChecker(repo repository.IRepository, timeout time.Duration, log *logger.CanonicalLogger) *Checker {
	return &Checker{
		Repo:        repo,
		Client:      &http.Client{Timeout: timeout},
		Logger:      log.Component("checker"),
		Concurrency: defaultConcurrency,
		Now:         time.Now,
	}
}

// Run checks all dependencies once. It has the shape of a poll.FetchFunc.
func (c *Checker) Run(ctx context.Context) error {
	deps, err := c.Repo.AllDependencies(ctx)
	if err != nil {
		return err
	}

	var g errgroup.Group
	g.SetLimit(c.Concurrency)
	for _, dep := range deps {
		dep := dep
		g.Go(func() error {
			return c.record(ctx, dep, c.CheckURL(ctx, dep.URL))
		})
	}
	return g.Wait()
}

// CheckURL issues a GET and returns the status code, or CodeUnreachable.
func (c *Checker) CheckURL(ctx context.Context, rawURL string) int {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return CodeUnreachable
	}
	req.Header.Set("User-Agent", "ranger-checker")

	start := time.Now()
	resp, err := c.Client.Do(req)
	if err != nil {
		c.Logger.Debug("check failed", logger.String(logger.FieldURL, rawURL), logger.Err(err))
		return CodeUnreachable
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	c.Logger.Debug("check finished",
		logger.String(logger.FieldURL, rawURL),
		logger.Int(logger.FieldStatusCode, resp.StatusCode),
		logger.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return resp.StatusCode
}

func (c *Checker) record(ctx context.Context, dep models.Dependency, code int) error {
	previous, err := c.Repo.UpdateResponseCode(ctx, dep.ID, code)
	if err != nil {
		// deleted while the check was in flight
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	if previous != nil && *previous == code {
		return nil
	}

	watchers, err := c.Repo.ListWatchers(ctx, dep.AppID)
	if err != nil {
		return err
	}
	emails := make([]string, 0, len(watchers))
	for _, w := range watchers {
		emails = append(emails, w.Email)
	}

	current := code
	event := models.StatusEvent{
		AppID:        dep.AppID,
		URL:          dep.URL,
		PreviousCode: previous,
		CurrentCode:  &current,
		Watchers:     emails,
		ObservedAt:   c.Now().UTC().Format(time.RFC3339),
	}

	c.Logger.Info("dependency status changed",
		logger.String(logger.FieldAppID, dep.AppID),
		logger.String(logger.FieldURL, dep.URL),
		logger.Int(logger.FieldStatusCode, code),
	)
	return c.Repo.PublishStatusEvent(ctx, event)
}
