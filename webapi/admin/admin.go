// Package admin serves the review queues staff work through.
package admin

import (
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/config"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/request"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/wallet"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/middleware"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/service/settlement"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// DecisionRequest is an admin's verdict on a pending request.
type DecisionRequest struct {
	Decision request.Decision `json:"decision" validate:"required,oneof=approve reject decline"`
	Note     string           `json:"note" validate:"max=1000"`
}

// DecisionResponse is the decided request and the owner's balances after it.
type DecisionResponse[T any] struct {
	Request  T               `json:"request"`
	Balances wallet.Balances `json:"balances"`
}

// Routes registers, behind the admin role:
//   - GET  /admin/topups/pending               : top-ups awaiting review.
//   - POST /admin/topups/:id/decision          : approve or reject.
//   - GET  /admin/withdrawals/pending          : bank withdrawals awaiting review.
//   - POST /admin/withdrawals/:id/decision     : approve or decline.
func Routes(app *fiber.App, engine *settlement.Engine, cfg *config.App) {
	g := app.Group("/admin", middleware.JwtProtected(cfg.Auth.Jwt), middleware.RequireAdmin())
	g.Get("/topups/pending", PendingTopups(engine))
	g.Post("/topups/:id/decision", DecideTopup(engine))
	g.Get("/withdrawals/pending", PendingWithdrawals(engine))
	g.Post("/withdrawals/:id/decision", DecideWithdrawal(engine))
}

func PendingTopups(engine *settlement.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := engine.PendingTopups(c.UserContext())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to load pending top-ups", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Pending top-ups", list)
	}
}

func PendingWithdrawals(engine *settlement.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := engine.PendingWithdrawals(c.UserContext())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to load pending withdrawals", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Pending withdrawals", list)
	}
}

func DecideTopup(engine *settlement.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		admin, ok, err := common.Caller(c)
		if !ok {
			return err
		}
		topupID, ok, err := common.ParamUUID(c, "id")
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[DecisionRequest](c)
		if input == nil {
			return err
		}
		r, err := engine.DecideTopup(c.UserContext(), admin.UserID, topupID, input.Decision, input.Note)
		if err != nil {
			log.Errorf("Top-up decision failed for %s: %v", topupID, err)
			return common.ProblemDetailsJSON(c, "Failed to decide top-up", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Top-up decided",
			DecisionResponse[*request.Topup]{Request: r.Record, Balances: r.Balances})
	}
}

func DecideWithdrawal(engine *settlement.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		admin, ok, err := common.Caller(c)
		if !ok {
			return err
		}
		withdrawalID, ok, err := common.ParamUUID(c, "id")
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[DecisionRequest](c)
		if input == nil {
			return err
		}
		r, err := engine.DecideWithdrawal(c.UserContext(), admin.UserID, withdrawalID, input.Decision, input.Note)
		if err != nil {
			log.Errorf("Withdrawal decision failed for %s: %v", withdrawalID, err)
			return common.ProblemDetailsJSON(c, "Failed to decide withdrawal", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Withdrawal decided",
			DecisionResponse[*request.Withdrawal]{Request: r.Record, Balances: r.Balances})
	}
}
