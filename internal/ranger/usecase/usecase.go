package usecase

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Alwanly/heroku-ranger/internal/models"
	"github.com/Alwanly/heroku-ranger/internal/ranger/dto"
	"github.com/Alwanly/heroku-ranger/internal/ranger/repository"
	"github.com/Alwanly/heroku-ranger/pkg/logger"
	"github.com/Alwanly/heroku-ranger/pkg/validator"
)

// ValidationError reports an argument rejected before any API call.
type ValidationError struct {
	Argument string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Argument, e.Reason)
}

type UseCase struct {
	Client           repository.IRangerClient
	AppID            string
	Logger           *logger.CanonicalLogger
	ClearConcurrency int
}

func NewUseCase(uc UseCase) *UseCase {
	if uc.ClearConcurrency < 1 {
		uc.ClearConcurrency = 1
	}
	if uc.Logger == nil {
		uc.Logger = logger.NewNop()
	}
	uc.Logger = uc.Logger.WithAppID(uc.AppID)
	return &uc
}

func (uc *UseCase) Status(ctx context.Context) (*StatusReport, error) {
	deps, found, err := uc.Client.FetchStatus(ctx, uc.AppID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch status: %w", err)
	}
	if !found || len(deps) == 0 {
		return &StatusReport{Found: false}, nil
	}

	watchers, err := uc.ListWatchers(ctx)
	if err != nil {
		return nil, err
	}

	return &StatusReport{Found: true, Dependencies: deps, Watchers: watchers}, nil
}

func (uc *UseCase) ListDomains(ctx context.Context) ([]models.Dependency, bool, error) {
	deps, found, err := uc.Client.FetchStatus(ctx, uc.AppID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch status: %w", err)
	}
	if !found || len(deps) == 0 {
		return nil, false, nil
	}
	return deps, true, nil
}

func (uc *UseCase) AddDomain(ctx context.Context, rawURL string) (*models.Dependency, error) {
	req := dto.NewCreateDependencyRequest(rawURL)
	if err := validator.ValidateStruct(req); err != nil {
		return nil, &ValidationError{Argument: rawURL, Reason: validator.Describe(err)}
	}

	dep, err := uc.Client.CreateDependency(ctx, uc.AppID, rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to add domain: %w", err)
	}

	uc.Logger.Debug("domain added", logger.String(logger.FieldURL, rawURL), logger.Int64(logger.FieldRecordID, dep.ID))
	return dep, nil
}

func (uc *UseCase) RemoveDomain(ctx context.Context, rawURL string) (int, error) {
	deps, err := uc.Client.ListDependencies(ctx, uc.AppID)
	if err != nil {
		return 0, fmt.Errorf("failed to list domains: %w", err)
	}

	matched := 0
	for _, d := range deps {
		if d.URL != rawURL {
			continue
		}
		matched++
		if _, err := uc.Client.DeleteDependency(ctx, uc.AppID, d.ID); err != nil {
			return matched, fmt.Errorf("failed to remove domain %d: %w", d.ID, err)
		}
		uc.Logger.Debug("domain removed", logger.String(logger.FieldURL, rawURL), logger.Int64(logger.FieldRecordID, d.ID))
	}
	return matched, nil
}

func (uc *UseCase) ClearDomains(ctx context.Context) (int, error) {
	deps, err := uc.Client.ListDependencies(ctx, uc.AppID)
	if err != nil {
		return 0, fmt.Errorf("failed to list domains: %w", err)
	}

	ids := make([]int64, 0, len(deps))
	for _, d := range deps {
		ids = append(ids, d.ID)
	}
	if err := uc.deleteAll(ctx, ids, uc.Client.DeleteDependency); err != nil {
		return 0, fmt.Errorf("failed to clear domains: %w", err)
	}
	return len(ids), nil
}

func (uc *UseCase) ListWatchers(ctx context.Context) ([]models.Watcher, error) {
	watchers, err := uc.Client.ListWatchers(ctx, uc.AppID)
	if err != nil {
		return nil, fmt.Errorf("failed to list watchers: %w", err)
	}
	return watchers, nil
}

func (uc *UseCase) AddWatcher(ctx context.Context, email string) (*models.Watcher, error) {
	if err := validator.ValidateVar(email, "required,email"); err != nil {
		return nil, &ValidationError{Argument: email, Reason: validator.Describe(err)}
	}

	w, err := uc.Client.CreateWatcher(ctx, uc.AppID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to add watcher: %w", err)
	}

	uc.Logger.Debug("watcher added", logger.String(logger.FieldEmail, email), logger.Int64(logger.FieldRecordID, w.ID))
	return w, nil
}

func (uc *UseCase) RemoveWatcher(ctx context.Context, email string) (int, error) {
	watchers, err := uc.Client.ListWatchers(ctx, uc.AppID)
	if err != nil {
		return 0, fmt.Errorf("failed to list watchers: %w", err)
	}

	matched := 0
	for _, w := range watchers {
		if w.Email != email {
			continue
		}
		matched++
		if _, err := uc.Client.DeleteWatcher(ctx, uc.AppID, w.ID); err != nil {
			return matched, fmt.Errorf("failed to remove watcher %d: %w", w.ID, err)
		}
		uc.Logger.Debug("watcher removed", logger.String(logger.FieldEmail, email), logger.Int64(logger.FieldRecordID, w.ID))
	}
	return matched, nil
}

func (uc *UseCase) ClearWatchers(ctx context.Context) (int, error) {
	watchers, err := uc.Client.ListWatchers(ctx, uc.AppID)
	if err != nil {
		return 0, fmt.Errorf("failed to list watchers: %w", err)
	}

	ids := make([]int64, 0, len(watchers))
	for _, w := range watchers {
		ids = append(ids, w.ID)
	}
	if err := uc.deleteAll(ctx, ids, uc.Client.DeleteWatcher); err != nil {
		return 0, fmt.Errorf("failed to clear watchers: %w", err)
	}
	return len(ids), nil
}

type deleteFunc func(ctx context.Context, appID string, id int64) (bool, error)

// deleteAll attempts every delete even after a failure and reports the first error.
func (uc *UseCase) deleteAll(ctx context.Context, ids []int64, del deleteFunc) error {
	var g errgroup.Group
	g.SetLimit(uc.ClearConcurrency)

	for _, id := range ids {
		id := id
		g.Go(func() error {
			deleted, err := del(ctx, uc.AppID, id)
			if err != nil {
				uc.Logger.WithError(err).Warn("delete failed", logger.Int64(logger.FieldRecordID, id))
				return err
			}
			uc.Logger.Debug("record deleted", logger.Int64(logger.FieldRecordID, id), logger.Bool("existed", deleted))
			return nil
		})
	}
	return g.Wait()
}
