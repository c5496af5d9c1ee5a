// Package requests serves top-ups, bank withdrawals and internal transfers
// from the user's side.
package requests

import (
	"io"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/config"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/request"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/wallet"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/middleware"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/provider"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/service/settlement"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
)

//revive:disable

type TopupRequest struct {
	Amount      decimal.Decimal `json:"amount" validate:"required,gt=0"`
	EvidenceRef string          `json:"evidence_ref" validate:"required,max=255"`
}

type WithdrawalRequest struct {
	Amount      decimal.Decimal `json:"amount" validate:"required,gt=0"`
	BankDetails string          `json:"bank_details" validate:"required,min=6,max=512"`
}

type TransferRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required,gt=0"`
}

type WithdrawalResponse struct {
	Withdrawal *request.Withdrawal `json:"withdrawal"`
	Balances   wallet.Balances     `json:"balances"`
}

type EvidenceResponse struct {
	EvidenceRef string `json:"evidence_ref"`
}

//revive:enable

// Routes registers:
//   - POST /me/topups/evidence : upload a payment screenshot (multipart "file").
//   - POST /me/topups          : submit a top-up for review.
//   - GET  /me/topups          : the caller's top-ups.
//   - POST /me/withdrawals     : request a bank withdrawal.
//   - GET  /me/withdrawals     : the caller's withdrawals and transfers.
//   - POST /me/transfers       : move withdrawable into spendable.
func Routes(app *fiber.App, engine *settlement.Engine, evidence provider.EvidenceStore, cfg *config.App) {
	auth := middleware.JwtProtected(cfg.Auth.Jwt)
	app.Post("/me/topups/evidence", auth, UploadEvidence(evidence))
	app.Post("/me/topups", auth, SubmitTopup(engine))
	app.Get("/me/topups", auth, ListTopups(engine))
	app.Post("/me/withdrawals", auth, RequestWithdrawal(engine))
	app.Get("/me/withdrawals", auth, ListWithdrawals(engine))
	app.Post("/me/transfers", auth, Transfer(engine))
}

func UploadEvidence(store provider.EvidenceStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok, err := common.Caller(c); !ok {
			return err
		}
		fh, err := c.FormFile("file")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Missing evidence file", err, fiber.StatusBadRequest)
		}
		f, err := fh.Open()
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unreadable evidence file", err, fiber.StatusBadRequest)
		}
		defer f.Close() //nolint:errcheck
		data, err := io.ReadAll(f)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unreadable evidence file", err, fiber.StatusBadRequest)
		}
		ref, err := store.Put(c.UserContext(), fh.Header.Get(fiber.HeaderContentType), data)
		if err != nil {
			log.Errorf("Evidence upload failed: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to store evidence", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Evidence stored", EvidenceResponse{EvidenceRef: ref})
	}
}

func SubmitTopup(engine *settlement.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := common.Caller(c)
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[TopupRequest](c)
		if input == nil {
			return err
		}
		t, err := engine.SubmitTopup(c.UserContext(), id.UserID, input.Amount, input.EvidenceRef)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to submit top-up", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Top-up submitted", t)
	}
}

func ListTopups(engine *settlement.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := common.Caller(c)
		if !ok {
			return err
		}
		list, err := engine.Topups(c.UserContext(), id.UserID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to load top-ups", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Top-ups fetched", list)
	}
}

func RequestWithdrawal(engine *settlement.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := common.Caller(c)
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[WithdrawalRequest](c)
		if input == nil {
			return err
		}
		r, err := engine.RequestWithdrawal(c.UserContext(), id.UserID, input.Amount, input.BankDetails)
		if err != nil {
			log.Errorf("Withdrawal request failed for %s: %v", id.UserID, err)
			return common.ProblemDetailsJSON(c, "Failed to request withdrawal", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Withdrawal requested",
			WithdrawalResponse{Withdrawal: r.Record, Balances: r.Balances})
	}
}

func ListWithdrawals(engine *settlement.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := common.Caller(c)
		if !ok {
			return err
		}
		list, err := engine.Withdrawals(c.UserContext(), id.UserID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to load withdrawals", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Withdrawals fetched", list)
	}
}

func Transfer(engine *settlement.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := common.Caller(c)
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[TransferRequest](c)
		if input == nil {
			return err
		}
		r, err := engine.TransferWithdrawableToSpendable(c.UserContext(), id.UserID, input.Amount)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to transfer", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Transfer completed",
			WithdrawalResponse{Withdrawal: r.Record, Balances: r.Balances})
	}
}
