package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Alwanly/heroku-ranger/internal/models"
	"github.com/Alwanly/heroku-ranger/pkg/pubsub"
)

// NotificationChannel carries models.StatusEvent payloads.
const NotificationChannel = "ranger:notifications"

var ErrNotFound = errors.New("record not found")

type IRepository interface {
	ListDependencies(ctx context.Context, appID string) ([]models.Dependency, error)
	AllDependencies(ctx context.Context) ([]models.Dependency, error)
	CreateDependency(ctx context.Context, dep *models.Dependency) error
	DeleteDependency(ctx context.Context, appID string, id int64) error
	UpdateResponseCode(ctx context.Context, id int64, code int) (*int, error)
	ListWatchers(ctx context.Context, appID string) ([]models.Watcher, error)
	CreateWatcher(ctx context.Context, w *models.Watcher) error
	DeleteWatcher(ctx context.Context, appID string, id int64) error
	PublishStatusEvent(ctx context.Context, event models.StatusEvent) error
}

type Repository struct {
	DB  *gorm.DB
	Pub pubsub.Publisher
}

func NewRepository(db *gorm.DB, publisher pubsub.Publisher) *Repository {
	return &Repository{DB: db, Pub: publisher}
}

func (r *Repository) ListDependencies(ctx context.Context, appID string) ([]models.Dependency, error) {
	var deps []models.Dependency
	if err := r.DB.WithContext(ctx).Where("app_id = ?", appID).Order("id ASC").Find(&deps).Error; err != nil {
		return nil, fmt.Errorf("failed to list dependencies: %w", err)
	}
	return deps, nil
}

// AllDependencies returns the dependencies of every app, for the uptime checker.
func (r *Repository) AllDependencies(ctx context.Context) ([]models.Dependency, error) {
	var deps []models.Dependency
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&deps).Error; err != nil {
		return nil, fmt.Errorf("failed to list dependencies: %w", err)
	}
	return deps, nil
}

func (r *Repository) CreateDependency(ctx context.Context, dep *models.Dependency) error {
	if err := r.DB.WithContext(ctx).Create(dep).Error; err != nil {
		return fmt.Errorf("failed to create dependency: %w", err)
	}
	return nil
}

func (r *Repository) DeleteDependency(ctx context.Context, appID string, id int64) error {
	result := r.DB.WithContext(ctx).Where("app_id = ?", appID).Delete(&models.Dependency{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete dependency: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateResponseCode stores the latest check result and returns the previous one.
func (r *Repository) UpdateResponseCode(ctx context.Context, id int64, code int) (*int, error) {
	var previous *int
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dep models.Dependency
		if err := tx.First(&dep, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		previous = dep.LatestResponseCode

		return tx.Model(&dep).Update("latest_response_code", code).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update response code: %w", err)
	}
	return previous, nil
}

func (r *Repository) ListWatchers(ctx context.Context, appID string) ([]models.Watcher, error) {
	var watchers []models.Watcher
	if err := r.DB.WithContext(ctx).Where("app_id = ?", appID).Order("id ASC").Find(&watchers).Error; err != nil {
		return nil, fmt.Errorf("failed to list watchers: %w", err)
	}
	return watchers, nil
}

func (r *Repository) CreateWatcher(ctx context.Context, w *models.Watcher) error {
	if err := r.DB.WithContext(ctx).Create(w).Error; err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	return nil
}

func (r *Repository) DeleteWatcher(ctx context.Context, appID string, id int64) error {
	result := r.DB.WithContext(ctx).Where("app_id = ?", appID).Delete(&models.Watcher{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete watcher: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// PublishStatusEvent publishes a status change notification to Redis (if configured)
func (r *Repository) PublishStatusEvent(ctx context.Context, event models.StatusEvent) error {
	if r.Pub == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal status event: %w", err)
	}

	if err := r.Pub.Publish(ctx, NotificationChannel, string(payload)); err != nil {
		return fmt.Errorf("failed to publish status event: %w", err)
	}
	return nil
}
