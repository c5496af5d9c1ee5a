// Package gold serves quotes, balances, holdings and gold trades.
package gold

import (
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/config"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/middleware"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/service/settlement"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// Routes registers:
//   - GET  /prices          : the caller's current buy/sell quote.
//   - GET  /plans           : the investment plan catalog.
//   - GET  /me/balances     : spendable and withdrawable balances.
//   - GET  /me/gold         : lots with total, mature and locked grams.
//   - GET  /me/gold/sales   : past sales with their FIFO trail.
//   - POST /me/gold/buy     : buy grams at the current price.
//   - POST /me/gold/sell    : sell mature grams at the current price.
func Routes(app *fiber.App, engine *settlement.Engine, cfg *config.App) {
	auth := middleware.JwtProtected(cfg.Auth.Jwt)
	app.Get("/prices", auth, Prices(engine))
	app.Get("/plans", Plans(engine))
	app.Get("/me/balances", auth, Balances(engine))
	app.Get("/me/gold", auth, Holdings(engine))
	app.Get("/me/gold/sales", auth, Sales(engine))
	app.Post("/me/gold/buy", auth, Buy(engine))
	app.Post("/me/gold/sell", auth, Sell(engine))
}

func Prices(engine *settlement.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := common.Caller(c)
		if !ok {
			return err
		}
		p, err := engine.Prices(c.UserContext(), id.UserID)
		if err != nil {
			log.Errorf("Failed to quote prices: %v", err)
			return common.ProblemDetailsJSON(c, "Prices unavailable", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Current prices", p)
	}
}

func Plans(engine *settlement.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		plans, err := engine.Plans(c.UserContext())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Plans unavailable", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Investment plans", plans)
	}
}

func Balances(engine *settlement.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := common.Caller(c)
		if !ok {
			return err
		}
		b, err := engine.Balances(c.UserContext(), id.UserID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to load balances", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Balances fetched", b)
	}
}

func Holdings(engine *settlement.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := common.Caller(c)
		if !ok {
			return err
		}
		h, err := engine.Holdings(c.UserContext(), id.UserID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to load holdings", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Holdings fetched", h)
	}
}

func Sales(engine *settlement.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := common.Caller(c)
		if !ok {
			return err
		}
		sales, err := engine.Sales(c.UserContext(), id.UserID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to load sales", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Sales fetched", sales)
	}
}

func Buy(engine *settlement.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := common.Caller(c)
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[TradeRequest](c)
		if input == nil {
			return err
		}
		r, err := engine.BuyGold(c.UserContext(), id.UserID, input.Grams)
		if err != nil {
			log.Errorf("Buy failed for %s: %v", id.UserID, err)
			return common.ProblemDetailsJSON(c, "Failed to buy gold", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Gold purchased",
			LotResponse{Lot: r.Record, Balances: r.Balances})
	}
}

func Sell(engine *settlement.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := common.Caller(c)
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[TradeRequest](c)
		if input == nil {
			return err
		}
		r, err := engine.SellGold(c.UserContext(), id.UserID, input.Grams)
		if err != nil {
			log.Errorf("Sell failed for %s: %v", id.UserID, err)
			return common.ProblemDetailsJSON(c, "Failed to sell gold", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Gold sold",
			SaleResponse{Sale: r.Record, Balances: r.Balances})
	}
}
