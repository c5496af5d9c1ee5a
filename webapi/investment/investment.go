// Package investment serves plan subscriptions and matured payouts.
package investment

import (
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/config"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/investment"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/wallet"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/middleware"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/service/settlement"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
)

// OpenRequest subscribes to a plan with one of its principal options.
type OpenRequest struct {
	PlanID    string          `json:"plan_id" validate:"required,max=64"`
	Principal decimal.Decimal `json:"principal" validate:"required,gt=0"`
}

// PositionResponse is a position together with the balances it left.
type PositionResponse struct {
	Position *investment.Position `json:"position"`
	Balances wallet.Balances      `json:"balances"`
}

// Routes registers:
//   - GET  /me/investments              : the caller's positions.
//   - POST /me/investments              : open a position.
//   - POST /me/investments/:id/withdraw : pay out a matured position.
func Routes(app *fiber.App, engine *settlement.Engine, cfg *config.App) {
	auth := middleware.JwtProtected(cfg.Auth.Jwt)
	app.Get("/me/investments", auth, List(engine))
	app.Post("/me/investments", auth, Open(engine))
	app.Post("/me/investments/:id/withdraw", auth, Withdraw(engine))
}

func List(engine *settlement.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := common.Caller(c)
		if !ok {
			return err
		}
		positions, err := engine.Positions(c.UserContext(), id.UserID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to load investments", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Investments fetched", positions)
	}
}

func Open(engine *settlement.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := common.Caller(c)
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[OpenRequest](c)
		if input == nil {
			return err
		}
		r, err := engine.OpenInvestment(c.UserContext(), id.UserID, input.PlanID, input.Principal)
		if err != nil {
			log.Errorf("Open investment failed for %s: %v", id.UserID, err)
			return common.ProblemDetailsJSON(c, "Failed to open investment", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Investment opened",
			PositionResponse{Position: r.Record, Balances: r.Balances})
	}
}

func Withdraw(engine *settlement.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := common.Caller(c)
		if !ok {
			return err
		}
		positionID, ok, err := common.ParamUUID(c, "id")
		if !ok {
			return err
		}
		r, err := engine.WithdrawMaturedInvestment(c.UserContext(), id.UserID, positionID)
		if err != nil {
			log.Errorf("Investment payout failed for %s: %v", positionID, err)
			return common.ProblemDetailsJSON(c, "Failed to withdraw investment", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Investment paid out",
			PositionResponse{Position: r.Record, Balances: r.Balances})
	}
}
