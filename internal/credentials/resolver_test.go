package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alwanly/heroku-ranger/internal/config"
	"github.com/Alwanly/heroku-ranger/internal/platform"
	"github.com/Alwanly/heroku-ranger/pkg/logger"
)

type staticStore struct {
	vals  map[string]string
	err   error
	calls int
}

func (s *staticStore) Name() string { return "static" }

func (s *staticStore) Lookup(ctx context.Context, app string) (map[string]string, error) {
	s.calls++
	return s.vals, s.err
}

func envFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestResolve_EnvironmentWins(t *testing.T) {
	store := &staticStore{vals: map[string]string{KeyAPIKey: "store-key", KeyAppID: "store-id"}}
	r := &Resolver{Getenv: envFrom(map[string]string{KeyAPIKey: "env-key", KeyAppID: "env-id"}), Stores: []Store{store}}

	creds, err := r.Resolve(context.Background(), "shiny-app")
	require.NoError(t, err)
	assert.Equal(t, "env-key", creds.APIKey)
	assert.Equal(t, "env-id", creds.AppID)
	assert.Zero(t, store.calls, "stores are consulted lazily")
}

func TestResolve_FillsMissingKeysFromStore(t *testing.T) {
	store := &staticStore{vals: map[string]string{KeyAPIKey: "store-key", KeyAppID: "store-id"}}
	r := &Resolver{Getenv: envFrom(map[string]string{KeyAPIKey: "env-key"}), Stores: []Store{store}, Logger: logger.NewNop()}

	creds, err := r.Resolve(context.Background(), "shiny-app")
	require.NoError(t, err)
	assert.Equal(t, "env-key", creds.APIKey)
	assert.Equal(t, "store-id", creds.AppID)
}

func TestResolve_MissingAPIKey(t *testing.T) {
	unavailable := &staticStore{err: ErrStoreUnavailable}
	r := &Resolver{Getenv: envFrom(nil), Stores: []Store{unavailable}}

	_, err := r.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Equal(t, "Please add the ranger addon first.", err.Error())
}

func TestResolve_MissingAppID(t *testing.T) {
	r := &Resolver{Getenv: envFrom(map[string]string{KeyAPIKey: "k"})}

	_, err := r.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingAppID)
}

func TestResolve_StoreFailureIsAnError(t *testing.T) {
	boom := errors.New("boom")
	r := &Resolver{Getenv: envFrom(nil), Stores: []Store{&staticStore{err: boom}}}

	_, err := r.Resolve(context.Background(), "shiny-app")
	assert.ErrorIs(t, err, boom)
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
default:
  api_key: default-key
apps:
  shiny-app:
    app_id: "42"
`), 0600))

	store := NewFileStore(path)

	vals, err := store.Lookup(context.Background(), "shiny-app")
	require.NoError(t, err)
	assert.Equal(t, "default-key", vals[KeyAPIKey])
	assert.Equal(t, "42", vals[KeyAppID])

	vals, err = store.Lookup(context.Background(), "other-app")
	require.NoError(t, err)
	assert.Empty(t, vals[KeyAppID])
}

func TestFileStore_MissingFileIsUnavailable(t *testing.T) {
	_, err := NewFileStore(filepath.Join(t.TempDir(), "nope.yml")).Lookup(context.Background(), "x")
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = NewFileStore("").Lookup(context.Background(), "x")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestFileStore_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yml")
	require.NoError(t, os.WriteFile(path, []byte("apps: [unterminated"), 0600))

	_, err := NewFileStore(path).Lookup(context.Background(), "x")
	assert.ErrorContains(t, err, "failed to parse")
}

func TestPlatformStore(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{KeyAPIKey: "pk", KeyAppID: "7"})
	}))
	defer ts.Close()

	cfg := &config.CLIConfig{PlatformURL: ts.URL, PlatformToken: "tok", RequestTimeout: time.Second}
	store := NewPlatformStore(platform.NewClient(cfg, logger.NewNop()))

	_, err := store.Lookup(context.Background(), "")
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	r := &Resolver{Getenv: envFrom(nil), Stores: []Store{NewFileStore(""), store}}
	creds, err := r.Resolve(context.Background(), "shiny-app")
	require.NoError(t, err)
	assert.Equal(t, "pk", creds.APIKey)
	assert.Equal(t, "7", creds.AppID)
}
