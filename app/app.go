// Package app assembles services, middleware, and routes into a Fiber app.
package app

import (
	"errors"
	"strings"

	"github.com/amirasaad/pinbank/infra/initializer"
	"github.com/amirasaad/pinbank/pkg/locking"
	authsvc "github.com/amirasaad/pinbank/pkg/service/auth"
	"github.com/amirasaad/pinbank/pkg/service/engine"
	"github.com/amirasaad/pinbank/webapi/account"
	"github.com/amirasaad/pinbank/webapi/auth"
	"github.com/amirasaad/pinbank/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// New builds all services and returns the Fiber app.
func New(deps *initializer.Deps) *fiber.App {
	cfg := deps.Config
	// One lock registry for both services: logins and transactions on the
	// same account serialize against each other.
	locks := locking.NewRegistry()
	authSvc := authsvc.New(deps.Uow, cfg.Jwt, cfg.Bank, deps.Logger, authsvc.WithLockRegistry(locks))
	eng := engine.New(deps.Uow, cfg.Bank, deps.Logger, engine.WithLockRegistry(locks))

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				return common.ProblemDetailsJSON(c, fiberErr.Message, nil, fiberErr.Code)
			}
			// Domain errors keep their status mapping; anything else is a 500.
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})

	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit.MaxRequests,
		Expiration: cfg.RateLimit.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
				if commaIndex := strings.Index(forwardedFor, ","); commaIndex != -1 {
					return strings.TrimSpace(forwardedFor[:commaIndex])
				}
				return strings.TrimSpace(forwardedFor)
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return common.ProblemDetailsJSON(c, "Too Many Requests",
				errors.New("rate limit exceeded"), fiber.StatusTooManyRequests)
		},
	}))
	app.Use(recover.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("pinbank is up")
	})

	auth.Routes(app, authSvc)
	account.Routes(app, eng, authSvc, cfg)
	return app
}
