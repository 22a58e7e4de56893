package deps

import (
	"github.com/Alwanly/heroku-ranger/pkg/logger"
	"github.com/Alwanly/heroku-ranger/pkg/poll"
	"github.com/Alwanly/heroku-ranger/pkg/pubsub"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// App bundles what the stub server's handlers and checker are built from.
// Pub and Poller are nil when notifications or checks are disabled.
type App struct {
	Fiber    *fiber.App
	Logger   *logger.CanonicalLogger
	Database *gorm.DB
	Poller   poll.Poller
	Pub      pubsub.Publisher
}
