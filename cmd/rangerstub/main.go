package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/Alwanly/heroku-ranger/internal/config"
	"github.com/Alwanly/heroku-ranger/internal/server/stub/handler"
	"github.com/Alwanly/heroku-ranger/pkg/database"
	"github.com/Alwanly/heroku-ranger/pkg/deps"
	"github.com/Alwanly/heroku-ranger/pkg/logger"
	"github.com/Alwanly/heroku-ranger/pkg/middleware"
	"github.com/Alwanly/heroku-ranger/pkg/poll"
	"github.com/Alwanly/heroku-ranger/pkg/pubsub"
)

func main() {
	cfg, err := config.LoadStubConfig()
	if err != nil {
		panic(err)
	}

	log, err := logger.NewLogger("rangerstub", cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	log.Info("starting ranger stub service",
		logger.String("server_addr", cfg.ServerAddr),
		logger.String("database_path", cfg.DatabasePath),
		logger.Duration("check_interval", cfg.CheckInterval),
	)

	db, err := database.NewSQLiteDB(cfg.DatabasePath)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}

	if err := database.RunMigrations(db); err != nil {
		log.WithError(err).Fatal("failed to migrate database")
	}
	log.Info("database migrations applied successfully")

	app := fiber.New(fiber.Config{
		AppName:               "Ranger Stub",
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.CanonicalLoggerMiddleware(log))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := deps.App{
		Fiber:    app,
		Database: db,
		Logger:   log,
	}

	if cfg.RedisAddr != "" {
		pub, err := pubsub.NewRedisPublisher(ctx, pubsub.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, log)
		if err != nil {
			log.WithError(err).Error("failed to initialize redis, status notifications disabled")
		} else {
			d.Pub = pub
			defer pub.Close()
		}
	} else {
		log.Info("no redis address provided; status notifications disabled")
	}

	if cfg.CheckInterval > 0 {
		d.Poller = poll.NewPoller(log)
	} else {
		log.Info("uptime checks disabled; set STUB_CHECK_INTERVAL to enable")
	}

	if _, err := handler.NewHandler(d, cfg); err != nil {
		log.WithError(err).Fatal("failed to register handlers")
	}

	gErr, gCtx := errgroup.WithContext(ctx)

	gErr.Go(func() error {
		log.Info("ranger stub is running", logger.String("address", cfg.ServerAddr))
		if err := app.Listen(cfg.ServerAddr); err != nil {
			cancel()
			return err
		}
		return nil
	})

	if d.Poller != nil {
		if err := d.Poller.Start(gCtx); err != nil {
			log.WithError(err).Fatal("failed to start uptime checker")
		}
	}

	gErr.Go(func() error {
		<-gCtx.Done()

		if d.Poller != nil {
			if err := d.Poller.Stop(); err != nil {
				log.WithError(err).Error("failed to stop uptime checker")
			}
		}

		if err := app.Shutdown(); err != nil {
			log.WithError(err).Error("failed to shutdown fiber app")
			return err
		}

		conn, err := db.DB()
		if err != nil {
			log.WithError(err).Error("failed to get database connection")
			return err
		}
		if err := conn.Close(); err != nil {
			log.WithError(err).Error("failed to close database")
			return err
		}
		return nil
	})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Info("shutdown signal received")
		cancel()
	}()

	if err := gErr.Wait(); err != nil {
		log.WithError(err).Fatal("ranger stub encountered an error")
	}

	log.Info("ranger stub stopped gracefully")
}
