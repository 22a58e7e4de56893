package repository

import (
	"context"

	"github.com/Alwanly/heroku-ranger/internal/models"
)

// IRangerClient defines the calls made against the Ranger REST API.
// A 404 is never an error: FetchStatus reports found=false, lists come back
// empty and deletes report deleted=false.
type IRangerClient interface {
	// FetchStatus returns the latest check result of every monitored dependency
	FetchStatus(ctx context.Context, appID string) (deps []models.Dependency, found bool, err error)
	// ListDependencies returns the monitored dependencies of the app
	ListDependencies(ctx context.Context, appID string) ([]models.Dependency, error)
	// CreateDependency starts monitoring rawURL
	CreateDependency(ctx context.Context, appID, rawURL string) (*models.Dependency, error)
	// DeleteDependency stops monitoring the dependency with the given id
	DeleteDependency(ctx context.Context, appID string, id int64) (deleted bool, err error)
	// ListWatchers returns the app's watchers
	ListWatchers(ctx context.Context, appID string) ([]models.Watcher, error)
	// CreateWatcher subscribes email to notifications
	CreateWatcher(ctx context.Context, appID, email string) (*models.Watcher, error)
	// DeleteWatcher removes the watcher with the given id
	DeleteWatcher(ctx context.Context, appID string, id int64) (deleted bool, err error)
}
