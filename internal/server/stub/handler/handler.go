package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Alwanly/heroku-ranger/internal/config"
	"github.com/Alwanly/heroku-ranger/internal/ranger/dto"
	"github.com/Alwanly/heroku-ranger/internal/server/stub/checker"
	"github.com/Alwanly/heroku-ranger/internal/server/stub/repository"
	"github.com/Alwanly/heroku-ranger/internal/server/stub/usecase"
	"github.com/Alwanly/heroku-ranger/pkg/deps"
	"github.com/Alwanly/heroku-ranger/pkg/logger"
	"github.com/Alwanly/heroku-ranger/pkg/middleware"
	"github.com/Alwanly/heroku-ranger/pkg/poll"
	"github.com/Alwanly/heroku-ranger/pkg/validator"
	"github.com/Alwanly/heroku-ranger/pkg/wrapper"
)

// APIPrefix matches the path of the hosted service, so RANGER_API_URL only
// needs its host swapped.
const APIPrefix = "/api/v1"

type Handler struct {
	Logger  *logger.CanonicalLogger
	UseCase usecase.UseCaseInterface
	Checker *checker.Checker
	Config  *config.StubConfig
}

func NewHandler(d deps.App, cfg *config.StubConfig) (*Handler, error) {
	repo := repository.NewRepository(d.Database, d.Pub)

	uc := usecase.NewUseCase(usecase.UseCase{
		Repo:   repo,
		Logger: d.Logger,
	})

	h := &Handler{
		Logger:  d.Logger,
		UseCase: uc,
		Checker: checker.NewChecker(repo, cfg.CheckTimeout, d.Logger),
		Config:  cfg,
	}

	if d.Poller != nil {
		err := d.Poller.RegisterFetchFunc("uptime_check", h.Checker.Run, poll.PollerConfig{
			Interval:       cfg.CheckInterval,
			RunImmediately: true,
		})
		if err != nil {
			return nil, err
		}
	}

	// Health check endpoint (no auth required)
	d.Fiber.Get("/health", h.health)

	api := d.Fiber.Group(APIPrefix, middleware.APIKeyAuth(cfg.APIKey, d.Logger))
	api.Get("/status/:app", h.status)
	api.Get("/apps/:app/dependencies.json", h.listDependencies)
	api.Post("/apps/:app/dependencies.json", h.createDependency)
	api.Delete("/apps/:app/dependencies/:file", h.deleteDependency)
	api.Get("/apps/:app/watchers.json", h.listWatchers)
	api.Post("/apps/:app/watchers.json", h.createWatcher)
	api.Delete("/apps/:app/watchers/:file", h.deleteWatcher)

	return h, nil
}

func (h *Handler) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy", "service": "rangerstub"})
}

func (h *Handler) status(c *fiber.Ctx) error {
	app := h.begin(c, "status")
	return respond(c, h.UseCase.Status(c.UserContext(), app))
}

func (h *Handler) listDependencies(c *fiber.Ctx) error {
	app := h.begin(c, "list_dependencies")
	return respond(c, h.UseCase.ListDependencies(c.UserContext(), app))
}

func (h *Handler) createDependency(c *fiber.Ctx) error {
	app := h.begin(c, "create_dependency")

	req := dto.CreateDependencyRequest{
		Name:       c.FormValue("dependency[name]", dto.DefaultDependencyName),
		URL:        c.FormValue("dependency[url]"),
		CheckEvery: c.FormValue("dependency[check_every]", dto.DefaultCheckEvery),
	}
	if err := validator.ValidateStruct(req); err != nil {
		logger.AddToContext(c.UserContext(), zap.Error(err))
		return respond(c, wrapper.ResponseFailed(http.StatusUnprocessableEntity, validator.Describe(err), validator.TranslateError(err)))
	}

	return respond(c, h.UseCase.CreateDependency(c.UserContext(), app, req))
}

func (h *Handler) deleteDependency(c *fiber.Ctx) error {
	app := h.begin(c, "delete_dependency")

	id, ok := recordID(c)
	if !ok {
		return respond(c, wrapper.ResponseFailed(http.StatusNotFound, "dependency not found", nil))
	}
	return respond(c, h.UseCase.DeleteDependency(c.UserContext(), app, id))
}

func (h *Handler) listWatchers(c *fiber.Ctx) error {
	app := h.begin(c, "list_watchers")
	return respond(c, h.UseCase.ListWatchers(c.UserContext(), app))
}

func (h *Handler) createWatcher(c *fiber.Ctx) error {
	app := h.begin(c, "create_watcher")

	req := dto.CreateWatcherRequest{Email: c.FormValue("watcher[email]")}
	if err := validator.ValidateStruct(req); err != nil {
		logger.AddToContext(c.UserContext(), zap.Error(err))
		return respond(c, wrapper.ResponseFailed(http.StatusUnprocessableEntity, validator.Describe(err), validator.TranslateError(err)))
	}

	return respond(c, h.UseCase.CreateWatcher(c.UserContext(), app, req))
}

func (h *Handler) deleteWatcher(c *fiber.Ctx) error {
	app := h.begin(c, "delete_watcher")

	id, ok := recordID(c)
	if !ok {
		return respond(c, wrapper.ResponseFailed(http.StatusNotFound, "watcher not found", nil))
	}
	return respond(c, h.UseCase.DeleteWatcher(c.UserContext(), app, id))
}

// begin tags the canonical log line and returns the app id path param.
func (h *Handler) begin(c *fiber.Ctx, operation string) string {
	app := c.Params("app")
	logger.AddToContext(c.UserContext(),
		zap.String(logger.FieldOperation, operation),
		zap.String(logger.FieldAppID, app),
	)
	return app
}

// recordID parses ":file" params of the form "42.json".
func recordID(c *fiber.Ctx) (int64, bool) {
	raw := strings.TrimSuffix(c.Params("file"), ".json")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func respond(c *fiber.Ctx, res wrapper.JSONResult) error {
	if !res.Success {
		return c.Status(res.Code).JSON(res)
	}
	if res.Data == nil {
		return c.SendStatus(res.Code)
	}
	return c.Status(res.Code).JSON(res.Data)
}
