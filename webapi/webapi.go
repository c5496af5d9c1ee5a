// Package webapi assembles the HTTP surface of the gold ledger:
//   - gold: quotes, balances, holdings and trades
//   - investment: plan subscriptions and payouts
//   - requests: top-ups, withdrawals and internal transfers
//   - admin: review queues
package webapi

import (
	"errors"
	"strings"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/app"
	adminweb "github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/webapi/admin"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/webapi/common"
	goldweb "github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/webapi/gold"
	investmentweb "github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/webapi/investment"
	requestsweb "github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/webapi/requests"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// SetupApp builds the fiber app with rate limiting, panic recovery and
// request logging in front of every route.
func SetupApp(a *app.App) *fiber.App {
	bodyLimit := 4 * 1024 * 1024
	if a.Config.Evidence != nil && a.Config.Evidence.MaxBytes > 0 {
		// multipart overhead on top of the largest accepted upload
		bodyLimit = a.Config.Evidence.MaxBytes + 64*1024
	}
	fiberApp := fiber.New(fiber.Config{
		BodyLimit: bodyLimit,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})

	// Behind a proxy the first X-Forwarded-For hop is the client.
	fiberApp.Use(limiter.New(limiter.Config{
		Max:        a.Config.RateLimit.MaxRequests,
		Expiration: a.Config.RateLimit.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
				if i := strings.Index(forwardedFor, ","); i != -1 {
					return strings.TrimSpace(forwardedFor[:i])
				}
				return strings.TrimSpace(forwardedFor)
			}
			if realIP := c.Get("X-Real-IP"); realIP != "" {
				return realIP
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return common.ProblemDetailsJSON(
				c,
				"Too Many Requests",
				errors.New("rate limit exceeded"),
				fiber.StatusTooManyRequests,
			)
		},
	}))
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())

	fiberApp.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Gold ledger API is running")
	})

	engine := a.Settlement
	goldweb.Routes(fiberApp, engine, a.Config)
	investmentweb.Routes(fiberApp, engine, a.Config)
	requestsweb.Routes(fiberApp, engine, a.Deps.Evidence, a.Config)
	adminweb.Routes(fiberApp, engine, a.Config)
	return fiberApp
}
