package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Alwanly/heroku-ranger/internal/config"
	"github.com/Alwanly/heroku-ranger/pkg/logger"
)

const acceptHeader = "application/vnd.heroku+json; version=3"

var ErrAppNotFound = errors.New("app not found")

// App is the subset of the platform app resource the plugin reads.
type App struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Owner struct {
		Email string `json:"email"`
	} `json:"owner"`
}

// Client talks to the Heroku Platform API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     *logger.CanonicalLogger
}

func NewClient(cfg *config.CLIConfig, log *logger.CanonicalLogger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:    strings.TrimRight(cfg.PlatformURL, "/"),
		token:      cfg.PlatformToken,
		logger:     log.Component("platform_client"),
	}
}

// Configured reports whether an API token is available.
func (c *Client) Configured() bool {
	return c.token != ""
}

// ConfigVars returns the config vars of app.
func (c *Client) ConfigVars(ctx context.Context, app string) (map[string]string, error) {
	vars := make(map[string]string)
	if err := c.get(ctx, "/apps/"+url.PathEscape(app)+"/config-vars", &vars); err != nil {
		return nil, fmt.Errorf("failed to fetch config vars for %s: %w", app, err)
	}
	return vars, nil
}

// AppInfo returns the app resource, including its owner.
func (c *Client) AppInfo(ctx context.Context, app string) (*App, error) {
	var info App
	if err := c.get(ctx, "/apps/"+url.PathEscape(app), &info); err != nil {
		return nil, fmt.Errorf("failed to fetch app %s: %w", app, err)
	}
	return &info, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Authorization", "Bearer "+c.token)
	if id := logger.GetCorrelationID(ctx); id != "" {
		req.Header.Set("Request-Id", id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("platform request", logger.String("path", path), logger.Int("status", resp.StatusCode))

	if resp.StatusCode == http.StatusNotFound {
		return ErrAppNotFound
	}
	if resp.StatusCode != http.StatusOK {
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("platform api returned status %d (body unreadable: %v)", resp.StatusCode, err)
		}
		return fmt.Errorf("platform api returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
