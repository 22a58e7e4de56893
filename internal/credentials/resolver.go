package credentials

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Alwanly/heroku-ranger/internal/models"
	"github.com/Alwanly/heroku-ranger/pkg/logger"
)

const (
	KeyAPIKey = "RANGER_API_KEY"
	KeyAppID  = "RANGER_APP_ID"
)

var (
	ErrMissingAPIKey = errors.New("Please add the ranger addon first.")
	ErrMissingAppID  = errors.New("RANGER_APP_ID is not set. Please add the ranger addon first.")

	// ErrStoreUnavailable makes the resolver skip a store.
	ErrStoreUnavailable = errors.New("credential store unavailable")
)

// Store is an app configuration source consulted when the environment lacks a key.
type Store interface {
	Name() string
	Lookup(ctx context.Context, app string) (map[string]string, error)
}

type Resolver struct {
	Getenv func(string) string
	Stores []Store
	Logger *logger.CanonicalLogger
}

func NewResolver(log *logger.CanonicalLogger, stores ...Store) *Resolver {
	return &Resolver{Getenv: os.Getenv, Stores: stores, Logger: log}
}

// Resolve picks each key from the environment first, then from the stores in order.
func (r *Resolver) Resolve(ctx context.Context, app string) (models.Credentials, error) {
	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	creds := models.Credentials{
		APIKey: getenv(KeyAPIKey),
		AppID:  getenv(KeyAppID),
	}

	for _, store := range r.Stores {
		if creds.APIKey != "" && creds.AppID != "" {
			break
		}

		vals, err := store.Lookup(ctx, app)
		if errors.Is(err, ErrStoreUnavailable) {
			r.debug("credential store skipped", logger.String("store", store.Name()))
			continue
		}
		if err != nil {
			return models.Credentials{}, fmt.Errorf("%s: %w", store.Name(), err)
		}

		if creds.APIKey == "" {
			creds.APIKey = vals[KeyAPIKey]
		}
		if creds.AppID == "" {
			creds.AppID = vals[KeyAppID]
		}
		r.debug("credential store consulted", logger.String("store", store.Name()))
	}

	if creds.APIKey == "" {
		return models.Credentials{}, ErrMissingAPIKey
	}
	if creds.AppID == "" {
		return models.Credentials{}, ErrMissingAppID
	}
	return creds, nil
}

func (r *Resolver) debug(msg string, fields ...zap.Field) {
	if r.Logger != nil {
		r.Logger.Debug(msg, fields...)
	}
}
