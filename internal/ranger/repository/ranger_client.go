package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Alwanly/heroku-ranger/internal/config"
	"github.com/Alwanly/heroku-ranger/internal/models"
	"github.com/Alwanly/heroku-ranger/internal/ranger/dto"
	"github.com/Alwanly/heroku-ranger/pkg/logger"
	"github.com/Alwanly/heroku-ranger/pkg/retry"
)

// APIError is returned for every non-2xx answer other than a benign 404.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("ranger api: %s %s returned status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("ranger api: %s %s returned status %d: %s", e.Method, e.Path, e.StatusCode, body)
}

type rangerClient struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	userAgent   string
	logger      *logger.CanonicalLogger
	retryConfig retry.Config
}

// NewRangerClient creates a client bound to one API key
func NewRangerClient(cfg *config.CLIConfig, apiKey, version string, log *logger.CanonicalLogger) IRangerClient {
	return &rangerClient{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:    strings.TrimRight(cfg.RangerURL, "/"),
		apiKey:     apiKey,
		userAgent:  "heroku-ranger/" + version,
		logger:     log.Component("ranger_client"),
		retryConfig: retry.Config{
			MaxRetries:     cfg.MaxRetries,
			InitialBackoff: cfg.InitialBackoff,
			MaxBackoff:     cfg.MaxBackoff,
			Multiplier:     2.0,
			Jitter:         true,
		},
	}
}

func (c *rangerClient) FetchStatus(ctx context.Context, appID string) ([]models.Dependency, bool, error) {
	var records []dto.DependencyRecord
	found, err := c.getJSON(ctx, "/status/"+url.PathEscape(appID), &records)
	if err != nil || !found {
		return nil, false, err
	}
	return dto.UnwrapDependencies(records), true, nil
}

func (c *rangerClient) ListDependencies(ctx context.Context, appID string) ([]models.Dependency, error) {
	var records []dto.DependencyRecord
	if _, err := c.getJSON(ctx, appPath(appID, "dependencies.json"), &records); err != nil {
		return nil, err
	}
	return dto.UnwrapDependencies(records), nil
}

func (c *rangerClient) CreateDependency(ctx context.Context, appID, rawURL string) (*models.Dependency, error) {
	req := dto.NewCreateDependencyRequest(rawURL)

	var record dto.DependencyRecord
	ok, err := c.postForm(ctx, appPath(appID, "dependencies.json"), req.Form(c.apiKey), &record)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &models.Dependency{URL: rawURL}, nil
	}
	return &record.Dependency, nil
}

func (c *rangerClient) DeleteDependency(ctx context.Context, appID string, id int64) (bool, error) {
	return c.delete(ctx, appPath(appID, "dependencies", strconv.FormatInt(id, 10)+".json"))
}

func (c *rangerClient) ListWatchers(ctx context.Context, appID string) ([]models.Watcher, error) {
	var records []dto.WatcherRecord
	if _, err := c.getJSON(ctx, appPath(appID, "watchers.json"), &records); err != nil {
		return nil, err
	}
	return dto.UnwrapWatchers(records), nil
}

func (c *rangerClient) CreateWatcher(ctx context.Context, appID, email string) (*models.Watcher, error) {
	req := dto.CreateWatcherRequest{Email: email}

	var record dto.WatcherRecord
	ok, err := c.postForm(ctx, appPath(appID, "watchers.json"), req.Form(c.apiKey), &record)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &models.Watcher{Email: email}, nil
	}
	return &record.Watcher, nil
}

func (c *rangerClient) DeleteWatcher(ctx context.Context, appID string, id int64) (bool, error) {
	return c.delete(ctx, appPath(appID, "watchers", strconv.FormatInt(id, 10)+".json"))
}

// getJSON decodes a 2xx body into out. A 404 yields found=false.
func (c *rangerClient) getJSON(ctx context.Context, path string, out interface{}) (bool, error) {
	found := false
	op := func(ctx context.Context) error {
		status, body, err := c.send(ctx, http.MethodGet, path, c.authQuery(), nil)
		if err != nil {
			return err
		}
		if status == http.StatusNotFound {
			found = false
			return nil
		}
		if err := classify(http.MethodGet, path, status, body); err != nil {
			return err
		}
		if err := json.Unmarshal(body, out); err != nil {
			return retry.Permanent(fmt.Errorf("failed to decode response from %s: %w", path, err))
		}
		found = true
		return nil
	}

	if err := retry.WithExponentialBackoff(ctx, c.retryConfig, op); err != nil {
		return false, err
	}
	return found, nil
}

// postForm is never retried; creating twice would add duplicate records.
// ok is false when the service answered 2xx with an empty body.
func (c *rangerClient) postForm(ctx context.Context, path string, form url.Values, out interface{}) (bool, error) {
	status, body, err := c.send(ctx, http.MethodPost, path, nil, form)
	if err != nil {
		return false, err
	}
	if err := classify(http.MethodPost, path, status, body); err != nil {
		return false, unwrapPermanent(err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return true, nil
}

func (c *rangerClient) delete(ctx context.Context, path string) (bool, error) {
	deleted := false
	op := func(ctx context.Context) error {
		status, body, err := c.send(ctx, http.MethodDelete, path, c.authQuery(), nil)
		if err != nil {
			return err
		}
		if status == http.StatusNotFound {
			deleted = false
			return nil
		}
		if err := classify(http.MethodDelete, path, status, body); err != nil {
			return err
		}
		deleted = true
		return nil
	}

	if err := retry.WithExponentialBackoff(ctx, c.retryConfig, op); err != nil {
		return false, err
	}
	return deleted, nil
}

func (c *rangerClient) send(ctx context.Context, method, path string, query, form url.Values) (int, []byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reqBody io.Reader
	if form != nil {
		reqBody = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return 0, nil, retry.Permanent(fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if id := logger.GetCorrelationID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("ranger request failed",
			logger.String("method", method),
			logger.String("path", path),
			logger.Err(err),
		)
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.HTTP(method, path, resp.StatusCode, time.Since(start).Milliseconds())
	return resp.StatusCode, body, nil
}

func (c *rangerClient) authQuery() url.Values {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	return q
}

// classify turns a non-2xx status into an error. 5xx stays retryable.
func classify(method, path string, status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}
	apiErr := &APIError{Method: method, Path: path, StatusCode: status, Body: string(body)}
	if status >= 500 {
		return apiErr
	}
	return retry.Permanent(apiErr)
}

func unwrapPermanent(err error) error {
	if u, ok := err.(interface{ Unwrap() error }); ok {
		return u.Unwrap()
	}
	return err
}

func appPath(appID string, parts ...string) string {
	escaped := make([]string, 0, len(parts)+2)
	escaped = append(escaped, "apps", url.PathEscape(appID))
	for _, p := range parts {
		escaped = append(escaped, url.PathEscape(p))
	}
	return "/" + strings.Join(escaped, "/")
}
