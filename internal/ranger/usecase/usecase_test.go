package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alwanly/heroku-ranger/internal/models"
)

type mockRangerClient struct {
	mu          sync.Mutex
	nextID      int64
	deps        map[int64]models.Dependency
	watchers    map[int64]models.Watcher
	statusErr   error
	deleteErr   map[int64]error
	deleteCalls []int64
}

func newMockClient() *mockRangerClient {
	return &mockRangerClient{
		deps:      make(map[int64]models.Dependency),
		watchers:  make(map[int64]models.Watcher),
		deleteErr: make(map[int64]error),
	}
}

func (m *mockRangerClient) sortedDeps() []models.Dependency {
	out := make([]models.Dependency, 0, len(m.deps))
	for _, d := range m.deps {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *mockRangerClient) FetchStatus(ctx context.Context, appID string) ([]models.Dependency, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.statusErr != nil {
		return nil, false, m.statusErr
	}
	if len(m.deps) == 0 {
		return nil, false, nil
	}
	return m.sortedDeps(), true, nil
}

func (m *mockRangerClient) ListDependencies(ctx context.Context, appID string) ([]models.Dependency, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedDeps(), nil
}

func (m *mockRangerClient) CreateDependency(ctx context.Context, appID, rawURL string) (*models.Dependency, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	d := models.Dependency{ID: m.nextID, URL: rawURL, CheckEveryInterval: 1}
	m.deps[d.ID] = d
	return &d, nil
}

func (m *mockRangerClient) DeleteDependency(ctx context.Context, appID string, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls = append(m.deleteCalls, id)
	if err := m.deleteErr[id]; err != nil {
		return false, err
	}
	_, ok := m.deps[id]
	delete(m.deps, id)
	return ok, nil
}

func (m *mockRangerClient) ListWatchers(ctx context.Context, appID string) ([]models.Watcher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Watcher, 0, len(m.watchers))
	for _, w := range m.watchers {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockRangerClient) CreateWatcher(ctx context.Context, appID, email string) (*models.Watcher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	w := models.Watcher{ID: m.nextID, Email: email}
	m.watchers[w.ID] = w
	return &w, nil
}

func (m *mockRangerClient) DeleteWatcher(ctx context.Context, appID string, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls = append(m.deleteCalls, id)
	if err := m.deleteErr[id]; err != nil {
		return false, err
	}
	_, ok := m.watchers[id]
	delete(m.watchers, id)
	return ok, nil
}

func newTestUseCase(client *mockRangerClient) *UseCase {
	return NewUseCase(UseCase{Client: client, AppID: "app-1", ClearConcurrency: 3})
}

func TestListDomains_EmptyIsNotFound(t *testing.T) {
	uc := newTestUseCase(newMockClient())

	deps, found, err := uc.ListDomains(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, deps)
}

func TestAddDomainThenList(t *testing.T) {
	uc := newTestUseCase(newMockClient())
	ctx := context.Background()

	_, err := uc.AddDomain(ctx, "http://yourapp.heroku.com")
	require.NoError(t, err)

	deps, found, err := uc.ListDomains(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, deps, 1)
	assert.Equal(t, "http://yourapp.heroku.com", deps[0].URL)
}

func TestAddDomain_RejectsInvalidURL(t *testing.T) {
	client := newMockClient()
	uc := newTestUseCase(client)

	_, err := uc.AddDomain(context.Background(), "yourapp")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "yourapp", verr.Argument)
	assert.Empty(t, client.deps)
}

func TestRemoveDomain_DeletesEveryMatch(t *testing.T) {
	client := newMockClient()
	uc := newTestUseCase(client)
	ctx := context.Background()

	for _, u := range []string{"http://a.example", "http://b.example", "http://a.example"} {
		_, err := uc.AddDomain(ctx, u)
		require.NoError(t, err)
	}

	n, err := uc.RemoveDomain(ctx, "http://a.example")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, client.deps, 1)
	assert.Equal(t, "http://b.example", client.sortedDeps()[0].URL)
}

func TestRemoveDomain_NoMatch(t *testing.T) {
	client := newMockClient()
	uc := newTestUseCase(client)
	ctx := context.Background()

	_, err := uc.AddDomain(ctx, "http://a.example")
	require.NoError(t, err)

	n, err := uc.RemoveDomain(ctx, "http://missing.example")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, client.deleteCalls)
	assert.Len(t, client.deps, 1)
}

func TestClearDomains(t *testing.T) {
	client := newMockClient()
	uc := newTestUseCase(client)
	ctx := context.Background()

	for _, u := range []string{"http://a.example", "http://b.example", "http://c.example", "http://d.example"} {
		_, err := uc.AddDomain(ctx, u)
		require.NoError(t, err)
	}

	n, err := uc.ClearDomains(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, found, err := uc.ListDomains(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestClearDomains_AttemptsEveryDeleteOnFailure(t *testing.T) {
	client := newMockClient()
	uc := newTestUseCase(client)
	ctx := context.Background()

	for _, u := range []string{"http://a.example", "http://b.example", "http://c.example"} {
		_, err := uc.AddDomain(ctx, u)
		require.NoError(t, err)
	}
	boom := errors.New("boom")
	client.deleteErr[2] = boom

	_, err := uc.ClearDomains(ctx)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, client.deleteCalls, 3)
	assert.Len(t, client.deps, 1)
}

func TestStatus_IncludesWatchers(t *testing.T) {
	client := newMockClient()
	uc := newTestUseCase(client)
	ctx := context.Background()

	_, err := uc.AddDomain(ctx, "http://a.example")
	require.NoError(t, err)
	_, err = uc.AddWatcher(ctx, "ops@example.com")
	require.NoError(t, err)

	report, err := uc.Status(ctx)
	require.NoError(t, err)
	assert.True(t, report.Found)
	assert.Len(t, report.Dependencies, 1)
	require.Len(t, report.Watchers, 1)
	assert.Equal(t, "ops@example.com", report.Watchers[0].Email)
}

func TestStatus_PropagatesErrors(t *testing.T) {
	client := newMockClient()
	client.statusErr = errors.New("connection refused")
	uc := newTestUseCase(client)

	_, err := uc.Status(context.Background())
	assert.ErrorContains(t, err, "connection refused")
}

func TestWatchers_Lifecycle(t *testing.T) {
	client := newMockClient()
	uc := newTestUseCase(client)
	ctx := context.Background()

	_, err := uc.AddWatcher(ctx, "not-an-email")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "not-an-email", verr.Argument)
	assert.NotEmpty(t, verr.Reason)

	for _, e := range []string{"a@example.com", "b@example.com", "a@example.com"} {
		_, err := uc.AddWatcher(ctx, e)
		require.NoError(t, err)
	}

	n, err := uc.RemoveWatcher(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = uc.RemoveWatcher(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = uc.ClearWatchers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	watchers, err := uc.ListWatchers(ctx)
	require.NoError(t, err)
	assert.Empty(t, watchers)
}
