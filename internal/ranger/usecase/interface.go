package usecase

import (
	"context"

	"github.com/Alwanly/heroku-ranger/internal/models"
)

// StatusReport is everything the status screen renders.
type StatusReport struct {
	Found        bool
	Dependencies []models.Dependency
	Watchers     []models.Watcher
}

// IUseCase defines the Ranger operations available to the command router
type IUseCase interface {
	// Status returns the latest check results plus the watchers
	Status(ctx context.Context) (*StatusReport, error)
	// ListDomains returns the monitored domains; found is false when none are monitored
	ListDomains(ctx context.Context) (deps []models.Dependency, found bool, err error)
	// AddDomain starts monitoring rawURL
	AddDomain(ctx context.Context, rawURL string) (*models.Dependency, error)
	// RemoveDomain deletes every dependency whose URL equals rawURL and returns how many matched
	RemoveDomain(ctx context.Context, rawURL string) (int, error)
	// ClearDomains deletes every dependency
	ClearDomains(ctx context.Context) (int, error)
	// ListWatchers returns the app watchers
	ListWatchers(ctx context.Context) ([]models.Watcher, error)
	// AddWatcher subscribes email
	AddWatcher(ctx context.Context, email string) (*models.Watcher, error)
	// RemoveWatcher deletes every watcher whose email equals email and returns how many matched
	RemoveWatcher(ctx context.Context, email string) (int, error)
	// ClearWatchers deletes every watcher
	ClearWatchers(ctx context.Context) (int, error)
}
