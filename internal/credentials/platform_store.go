package credentials

import (
	"context"

	"github.com/Alwanly/heroku-ranger/internal/platform"
)

// PlatformStore reads the app's config vars, where the addon stores its keys.
type PlatformStore struct {
	Client *platform.Client
}

func NewPlatformStore(client *platform.Client) *PlatformStore {
	return &PlatformStore{Client: client}
}

func (s *PlatformStore) Name() string { return "platform config vars" }

func (s *PlatformStore) Lookup(ctx context.Context, app string) (map[string]string, error) {
	if app == "" || s.Client == nil || !s.Client.Configured() {
		return nil, ErrStoreUnavailable
	}
	return s.Client.ConfigVars(ctx, app)
}
