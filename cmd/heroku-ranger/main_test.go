package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alwanly/heroku-ranger/internal/config"
	"github.com/Alwanly/heroku-ranger/internal/ranger/command"
	"github.com/Alwanly/heroku-ranger/internal/server/stub/handler"
	"github.com/Alwanly/heroku-ranger/pkg/database"
	"github.com/Alwanly/heroku-ranger/pkg/deps"
	"github.com/Alwanly/heroku-ranger/pkg/logger"
	"github.com/Alwanly/heroku-ranger/pkg/middleware"
)

const stubKey = "local-ranger-key"

func newStub(t *testing.T) string {
	t.Helper()

	db, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "ranger.db"))
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))

	log := logger.NewNop()
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(log)})
	_, err = handler.NewHandler(deps.App{Fiber: app, Logger: log, Database: db}, &config.StubConfig{APIKey: stubKey})
	require.NoError(t, err)

	ts := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(func() {
		ts.Close()
		if conn, err := db.DB(); err == nil {
			_ = conn.Close()
		}
	})
	return ts.URL + handler.APIPrefix
}

func testConfig(rangerURL string) *config.CLIConfig {
	return &config.CLIConfig{
		RangerURL:        rangerURL,
		RequestTimeout:   2 * time.Second,
		MaxRetries:       1,
		InitialBackoff:   time.Millisecond,
		MaxBackoff:       5 * time.Millisecond,
		ClearConcurrency: 2,
	}
}

func execute(t *testing.T, cfg *config.CLIConfig, args ...string) (string, error) {
	t.Helper()

	root := command.NewRootCommand(command.Options{
		Version: "test",
		Setup:   newSetup(cfg, logger.NewNop()),
	})
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestEndToEnd_AgainstStub(t *testing.T) {
	t.Setenv("RANGER_API_KEY", stubKey)
	t.Setenv("RANGER_APP_ID", "77")
	cfg := testConfig(newStub(t))

	out, err := execute(t, cfg, "ranger")
	require.NoError(t, err)
	assert.Contains(t, out, "No domains are being monitored for this app.")

	out, err = execute(t, cfg, "ranger:domains", "add", "http://yourapp.heroku.com")
	require.NoError(t, err)
	assert.Equal(t, "Added http://yourapp.heroku.com to the monitoring list\n", out)

	_, err = execute(t, cfg, "ranger:domains", "add", "http://other.heroku.com")
	require.NoError(t, err)

	out, err = execute(t, cfg, "ranger:watchers", "add", "ops@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Added ops@example.com as a watcher\n", out)

	out, err = execute(t, cfg, "ranger")
	require.NoError(t, err)
	assert.Equal(t, "\nRanger Status\n"+
		"------------------------------------------\n"+
		"http://yourapp.heroku.com => not checked yet\n"+
		"http://other.heroku.com => not checked yet\n"+
		"\nApp Watchers\n"+
		"------------------------------------------\n"+
		"ops@example.com\n\n", out)

	out, err = execute(t, cfg, "ranger:domains", "remove", "http://yourapp.heroku.com")
	require.NoError(t, err)
	assert.Equal(t, "Removed http://yourapp.heroku.com from the monitoring list\n", out)

	out, err = execute(t, cfg, "ranger:domains", "remove", "http://yourapp.heroku.com")
	require.NoError(t, err)
	assert.Equal(t, "No domain with that URL found in the monitoring list\n", out)

	out, err = execute(t, cfg, "ranger:domains", "clear")
	require.NoError(t, err)
	assert.Equal(t, "All domains removed from the monitoring list\n", out)

	out, err = execute(t, cfg, "ranger:watchers", "clear")
	require.NoError(t, err)
	assert.Equal(t, "All watchers removed\n", out)

	out, err = execute(t, cfg, "ranger:watchers")
	require.NoError(t, err)
	assert.Equal(t, "\nApp Watchers\n------------------------------------------\n\n", out)
}

func TestEndToEnd_WrongKeyIsReported(t *testing.T) {
	t.Setenv("RANGER_API_KEY", "wrong")
	t.Setenv("RANGER_APP_ID", "77")
	cfg := testConfig(newStub(t))

	_, err := execute(t, cfg, "ranger:watchers")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.NotContains(t, err.Error(), "wrong")
}

func TestRun_MissingAddonPrintsError(t *testing.T) {
	t.Setenv("RANGER_API_KEY", "")
	t.Setenv("RANGER_APP_ID", "")
	t.Setenv("HEROKU_API_KEY", "")
	t.Setenv("RANGER_CONFIG", filepath.Join(t.TempDir(), "missing.yml"))

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	code := run([]string{"ranger:domains"}, stdout, stderr)

	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
	assert.Equal(t, " !   Please add the ranger addon first.\n", stderr.String())
}

func TestRun_UsageError(t *testing.T) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	code := run([]string{"ranger:domains", "bogus"}, stdout, stderr)

	assert.Equal(t, 1, code)
	assert.Equal(t, " !   usage: heroku ranger:domains <add | remove | clear>\n", stderr.String())
}

func TestRun_InvalidDomainPrintsReasonAndUsage(t *testing.T) {
	t.Setenv("RANGER_API_KEY", stubKey)
	t.Setenv("RANGER_APP_ID", "77")
	t.Setenv("RANGER_API_URL", newStub(t))
	t.Setenv("RANGER_CONFIG", filepath.Join(t.TempDir(), "missing.yml"))

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	code := run([]string{"ranger:domains", "add", "yourapp"}, stdout, stderr)

	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
	lines := strings.Split(strings.TrimSuffix(stderr.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], ` !   invalid argument "yourapp"`)
	assert.Equal(t, " !   usage: heroku ranger:domains <add | remove | clear>", lines[1])
}
