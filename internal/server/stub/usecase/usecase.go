package usecase

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/Alwanly/heroku-ranger/internal/models"
	"github.com/Alwanly/heroku-ranger/internal/ranger/dto"
	"github.com/Alwanly/heroku-ranger/internal/server/stub/repository"
	"github.com/Alwanly/heroku-ranger/pkg/logger"
	"github.com/Alwanly/heroku-ranger/pkg/wrapper"
)

type UseCase struct {
	Repo   repository.IRepository
	Logger *logger.CanonicalLogger
}

type UseCaseInterface interface {
	Status(ctx context.Context, appID string) wrapper.JSONResult
	ListDependencies(ctx context.Context, appID string) wrapper.JSONResult
	CreateDependency(ctx context.Context, appID string, req dto.CreateDependencyRequest) wrapper.JSONResult
	DeleteDependency(ctx context.Context, appID string, id int64) wrapper.JSONResult
	ListWatchers(ctx context.Context, appID string) wrapper.JSONResult
	CreateWatcher(ctx context.Context, appID string, req dto.CreateWatcherRequest) wrapper.JSONResult
	DeleteWatcher(ctx context.Context, appID string, id int64) wrapper.JSONResult
}

func NewUseCase(uc UseCase) *UseCase {
	if uc.Logger == nil {
		uc.Logger = logger.NewNop()
	}
	return &uc
}

// Status answers 404 for apps that have never registered a dependency.
func (uc *UseCase) Status(ctx context.Context, appID string) wrapper.JSONResult {
	deps, err := uc.Repo.ListDependencies(ctx, appID)
	if err != nil {
		return uc.internalError(ctx, "failed to load status", err)
	}
	if len(deps) == 0 {
		return wrapper.ResponseFailed(http.StatusNotFound, "app not found", nil)
	}
	return wrapper.ResponseSuccess(http.StatusOK, dto.WrapDependencies(deps))
}

func (uc *UseCase) ListDependencies(ctx context.Context, appID string) wrapper.JSONResult {
	deps, err := uc.Repo.ListDependencies(ctx, appID)
	if err != nil {
		return uc.internalError(ctx, "failed to list dependencies", err)
	}
	return wrapper.ResponseSuccess(http.StatusOK, dto.WrapDependencies(deps))
}

func (uc *UseCase) CreateDependency(ctx context.Context, appID string, req dto.CreateDependencyRequest) wrapper.JSONResult {
	every, err := strconv.Atoi(req.CheckEvery)
	if err != nil || every <= 0 {
		return wrapper.ResponseFailed(http.StatusUnprocessableEntity, "check_every must be a positive number", nil)
	}

	dep := &models.Dependency{
		AppID:              appID,
		Name:               req.Name,
		URL:                req.URL,
		CheckEveryInterval: every,
	}
	if err := uc.Repo.CreateDependency(ctx, dep); err != nil {
		return uc.internalError(ctx, "failed to create dependency", err)
	}

	logger.AddToContext(ctx, zap.Int64(logger.FieldRecordID, dep.ID), zap.String(logger.FieldURL, dep.URL))
	return wrapper.ResponseSuccess(http.StatusCreated, dto.DependencyRecord{Dependency: *dep})
}

func (uc *UseCase) DeleteDependency(ctx context.Context, appID string, id int64) wrapper.JSONResult {
	logger.AddToContext(ctx, zap.Int64(logger.FieldRecordID, id))

	if err := uc.Repo.DeleteDependency(ctx, appID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return wrapper.ResponseFailed(http.StatusNotFound, "dependency not found", nil)
		}
		return uc.internalError(ctx, "failed to delete dependency", err)
	}
	return wrapper.ResponseSuccess(http.StatusNoContent, nil)
}

func (uc *UseCase) ListWatchers(ctx context.Context, appID string) wrapper.JSONResult {
	watchers, err := uc.Repo.ListWatchers(ctx, appID)
	if err != nil {
		return uc.internalError(ctx, "failed to list watchers", err)
	}
	return wrapper.ResponseSuccess(http.StatusOK, dto.WrapWatchers(watchers))
}

func (uc *UseCase) CreateWatcher(ctx context.Context, appID string, req dto.CreateWatcherRequest) wrapper.JSONResult {
	w := &models.Watcher{AppID: appID, Email: req.Email}
	if err := uc.Repo.CreateWatcher(ctx, w); err != nil {
		return uc.internalError(ctx, "failed to create watcher", err)
	}

	logger.AddToContext(ctx, zap.Int64(logger.FieldRecordID, w.ID), zap.String(logger.FieldEmail, w.Email))
	return wrapper.ResponseSuccess(http.StatusCreated, dto.WatcherRecord{Watcher: *w})
}

func (uc *UseCase) DeleteWatcher(ctx context.Context, appID string, id int64) wrapper.JSONResult {
	logger.AddToContext(ctx, zap.Int64(logger.FieldRecordID, id))

	if err := uc.Repo.DeleteWatcher(ctx, appID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return wrapper.ResponseFailed(http.StatusNotFound, "watcher not found", nil)
		}
		return uc.internalError(ctx, "failed to delete watcher", err)
	}
	return wrapper.ResponseSuccess(http.StatusNoContent, nil)
}

func (uc *UseCase) internalError(ctx context.Context, message string, err error) wrapper.JSONResult {
	logger.AddToContext(ctx, zap.Error(err))
	uc.Logger.WithError(err).Error(message)
	return wrapper.ResponseFailed(http.StatusInternalServerError, message, nil)
}
