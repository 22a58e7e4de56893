package main

import (
	"context"

	"github.com/Alwanly/heroku-ranger/internal/config"
	"github.com/Alwanly/heroku-ranger/internal/credentials"
	"github.com/Alwanly/heroku-ranger/internal/platform"
	"github.com/Alwanly/heroku-ranger/internal/ranger/command"
	"github.com/Alwanly/heroku-ranger/internal/ranger/repository"
	"github.com/Alwanly/heroku-ranger/internal/ranger/usecase"
	"github.com/Alwanly/heroku-ranger/pkg/logger"
)

// newSetup resolves the addon credentials for app and binds the Ranger client to them.
func newSetup(cfg *config.CLIConfig, log *logger.CanonicalLogger) command.SetupFunc {
	return func(ctx context.Context, app string) (usecase.IUseCase, error) {
		pc := platform.NewClient(cfg, log)

		resolver := credentials.NewResolver(log,
			credentials.NewFileStore(cfg.CredentialsFile),
			credentials.NewPlatformStore(pc),
		)
		creds, err := resolver.Resolve(ctx, app)
		if err != nil {
			return nil, err
		}

		logOwner(ctx, pc, app, log)

		client := repository.NewRangerClient(cfg, creds.APIKey, version, log)
		return usecase.NewUseCase(usecase.UseCase{
			Client:           client,
			AppID:            creds.AppID,
			Logger:           log,
			ClearConcurrency: cfg.ClearConcurrency,
		}), nil
	}
}

func logOwner(ctx context.Context, pc *platform.Client, app string, log *logger.CanonicalLogger) {
	if app == "" || !pc.Configured() {
		return
	}
	info, err := pc.AppInfo(ctx, app)
	if err != nil {
		log.Debug("app owner lookup failed", logger.String("app", app), logger.Err(err))
		return
	}
	log.Debug("app owner", logger.String("app", info.Name), logger.String(logger.FieldEmail, info.Owner.Email))
}
