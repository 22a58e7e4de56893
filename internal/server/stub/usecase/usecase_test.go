package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alwanly/heroku-ranger/internal/models"
	"github.com/Alwanly/heroku-ranger/internal/ranger/dto"
	"github.com/Alwanly/heroku-ranger/internal/server/stub/repository"
)

type fakeRepo struct {
	repository.IRepository
	deps      []models.Dependency
	err       error
	deleteErr error
	created   *models.Dependency
}

func (f *fakeRepo) ListDependencies(ctx context.Context, appID string) ([]models.Dependency, error) {
	return f.deps, f.err
}

func (f *fakeRepo) CreateDependency(ctx context.Context, dep *models.Dependency) error {
	if f.err != nil {
		return f.err
	}
	dep.ID = 11
	f.created = dep
	return nil
}

func (f *fakeRepo) DeleteDependency(ctx context.Context, appID string, id int64) error {
	return f.deleteErr
}

func TestStatus(t *testing.T) {
	uc := NewUseCase(UseCase{Repo: &fakeRepo{}})
	assert.Equal(t, http.StatusNotFound, uc.Status(context.Background(), "77").Code)

	uc = NewUseCase(UseCase{Repo: &fakeRepo{deps: []models.Dependency{{ID: 1, URL: "http://a.example"}}}})
	res := uc.Status(context.Background(), "77")
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Len(t, res.Data, 1)

	uc = NewUseCase(UseCase{Repo: &fakeRepo{err: errors.New("disk full")}})
	res = uc.Status(context.Background(), "77")
	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.NotContains(t, res.Message, "disk full")
}

func TestCreateDependency(t *testing.T) {
	repo := &fakeRepo{}
	uc := NewUseCase(UseCase{Repo: repo})

	res := uc.CreateDependency(context.Background(), "77", dto.NewCreateDependencyRequest("http://a.example"))
	assert.Equal(t, http.StatusCreated, res.Code)
	assert.Equal(t, "77", repo.created.AppID)
	assert.Equal(t, 1, repo.created.CheckEveryInterval)

	req := dto.NewCreateDependencyRequest("http://a.example")
	req.CheckEvery = "0"
	res = uc.CreateDependency(context.Background(), "77", req)
	assert.Equal(t, http.StatusUnprocessableEntity, res.Code)
}

func TestDeleteDependency(t *testing.T) {
	uc := NewUseCase(UseCase{Repo: &fakeRepo{deleteErr: repository.ErrNotFound}})
	assert.Equal(t, http.StatusNotFound, uc.DeleteDependency(context.Background(), "77", 3).Code)

	uc = NewUseCase(UseCase{Repo: &fakeRepo{}})
	res := uc.DeleteDependency(context.Background(), "77", 3)
	assert.Equal(t, http.StatusNoContent, res.Code)
	assert.Nil(t, res.Data)
}
