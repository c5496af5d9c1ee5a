package webapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	infrabus "github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/infra/eventbus"
	infraprovider "github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/infra/provider"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/internal/fixtures/plans"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/app"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/config"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/middleware"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/testutils"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/webapi"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Title   string          `json:"title"`
	Detail  string          `json:"detail"`
}

type balances struct {
	Spendable    decimal.Decimal `json:"spendable"`
	Withdrawable decimal.Decimal `json:"withdrawable"`
}

type WebAPITestSuite struct {
	suite.Suite
	cfg        *config.App
	clock      *testutils.Clock
	app        *fiber.App
	userToken  string
	adminToken string
}

func testConfig(maxRequests int) *config.App {
	return &config.App{
		Auth:      &config.Auth{Jwt: &config.Jwt{Secret: "webapi-test", Expiry: time.Hour}},
		RateLimit: &config.RateLimit{MaxRequests: maxRequests, Window: time.Minute},
		Ledger: &config.Ledger{
			GoldLockDays:      30,
			MinSellGrams:      decimal.NewFromInt(1),
			MinWithdrawal:     decimal.NewFromInt(100),
			MaxRetries:        3,
			RetryBaseInterval: time.Millisecond,
			RetryMaxInterval:  5 * time.Millisecond,
		},
		Pricing: &config.Pricing{
			Jurisdiction: "US",
			BuyPerGram:   decimal.NewFromInt(65),
			SellPerGram:  decimal.RequireFromString("63.50"),
			BuyFeePct:    decimal.Zero,
			SellFeePct:   decimal.Zero,
			BuyOverrides: map[string]decimal.Decimal{"AE": decimal.NewFromInt(240)},
		},
		Evidence: &config.Evidence{Driver: "memory", MaxBytes: 1024},
	}
}

func newApp(t *testing.T, cfg *config.App, clock *testutils.Clock) *fiber.App {
	t.Helper()
	uow, _ := testutils.NewTestUoW(t)
	catalog, err := plans.LoadPlansCSV("")
	if err != nil {
		t.Fatal(err)
	}
	oracle, err := infraprovider.NewStaticPriceOracle(cfg.Pricing, catalog)
	if err != nil {
		t.Fatal(err)
	}
	bus := infrabus.NewWithMemory(slog.Default())
	a := app.New(&app.Deps{
		Uow:      uow,
		Prices:   oracle,
		Notifier: infraprovider.NewBusNotifier(bus),
		Evidence: infraprovider.NewMemoryEvidenceStore(cfg.Evidence.MaxBytes),
		EventBus: bus,
		Logger:   slog.Default(),
		Clock:    clock.Now,
	}, cfg)
	return webapi.SetupApp(a)
}

func (s *WebAPITestSuite) SetupTest() {
	s.cfg = testConfig(1000)
	s.clock = testutils.NewClock(time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC))
	s.app = newApp(s.T(), s.cfg, s.clock)

	var err error
	s.userToken, err = middleware.IssueToken(s.cfg.Auth.Jwt, middleware.Identity{UserID: uuid.New(), Role: middleware.RoleUser})
	s.Require().NoError(err)
	s.adminToken, err = middleware.IssueToken(s.cfg.Auth.Jwt, middleware.Identity{UserID: uuid.New(), Role: middleware.RoleAdmin})
	s.Require().NoError(err)
}

func (s *WebAPITestSuite) do(method, path, body, token string, wantStatus int) envelope {
	s.T().Helper()
	resp := testutils.MakeRequest(s.app, method, path, body, token)
	defer resp.Body.Close() //nolint:errcheck
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Require().Equal(wantStatus, resp.StatusCode, "%s %s: %s", method, path, raw)
	var env envelope
	if len(raw) > 0 && raw[0] == '{' {
		s.Require().NoError(json.Unmarshal(raw, &env))
	}
	return env
}

func (s *WebAPITestSuite) balances(token string) balances {
	env := s.do(fiber.MethodGet, "/me/balances", "", token, fiber.StatusOK)
	var b balances
	s.Require().NoError(json.Unmarshal(env.Data, &b))
	return b
}

func (s *WebAPITestSuite) uploadEvidence(token string, size int) *http.Response {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "receipt.png")
	s.Require().NoError(err)
	_, err = part.Write(bytes.Repeat([]byte{0x89}, size))
	s.Require().NoError(err)
	s.Require().NoError(w.Close())

	req := httptest.NewRequest(fiber.MethodPost, "/me/topups/evidence", &body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	return resp
}

// fund runs the whole top-up path: upload, submit, admin approval.
func (s *WebAPITestSuite) fund(amount string) {
	resp := s.uploadEvidence(s.userToken, 16)
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)
	var env envelope
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&env))
	_ = resp.Body.Close()
	var ev struct {
		EvidenceRef string `json:"evidence_ref"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &ev))
	s.Require().NotEmpty(ev.EvidenceRef)

	env = s.do(fiber.MethodPost, "/me/topups",
		`{"amount":"`+amount+`","evidence_ref":"`+ev.EvidenceRef+`"}`, s.userToken, fiber.StatusCreated)
	var topup struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &topup))
	s.Equal("pending", topup.Status)

	s.do(fiber.MethodPost, "/admin/topups/"+topup.ID+"/decision",
		`{"decision":"approve","note":"bank statement matches"}`, s.adminToken, fiber.StatusOK)
}

func (s *WebAPITestSuite) TestHealthAndPlans() {
	s.do(fiber.MethodGet, "/", "", "", fiber.StatusOK)
	env := s.do(fiber.MethodGet, "/plans", "", "", fiber.StatusOK)
	var catalog []struct {
		ID string `json:"id"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &catalog))
	s.NotEmpty(catalog)
}

func (s *WebAPITestSuite) TestAuthRequired() {
	s.do(fiber.MethodGet, "/me/balances", "", "", fiber.StatusBadRequest)
	s.do(fiber.MethodGet, "/me/balances", "", "not-a-jwt", fiber.StatusUnauthorized)
	s.do(fiber.MethodGet, "/admin/topups/pending", "", s.userToken, fiber.StatusForbidden)
}

func (s *WebAPITestSuite) TestPricesFollowJurisdiction() {
	token, err := middleware.IssueToken(s.cfg.Auth.Jwt,
		middleware.Identity{UserID: uuid.New(), Role: middleware.RoleUser, Jurisdiction: "ae"})
	s.Require().NoError(err)
	env := s.do(fiber.MethodGet, "/prices", "", token, fiber.StatusOK)
	var p struct {
		Jurisdiction string          `json:"jurisdiction"`
		BuyPerGram   decimal.Decimal `json:"buy_per_gram"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &p))
	s.Equal("AE", p.Jurisdiction)
	s.True(p.BuyPerGram.Equal(decimal.NewFromInt(240)))
}

func (s *WebAPITestSuite) TestTopupBuyLockSellWithdraw() {
	s.True(s.balances(s.userToken).Spendable.IsZero())
	s.fund("1000")
	s.True(s.balances(s.userToken).Spendable.Equal(decimal.NewFromInt(1000)))

	s.do(fiber.MethodPost, "/me/gold/buy", `{"grams":"2"}`, s.userToken, fiber.StatusCreated)
	s.True(s.balances(s.userToken).Spendable.Equal(decimal.NewFromInt(870)))

	env := s.do(fiber.MethodPost, "/me/gold/sell", `{"grams":"2"}`, s.userToken, fiber.StatusUnprocessableEntity)
	s.Contains(env.Detail, "insufficient mature gold")

	s.clock.AdvanceDays(30)
	s.do(fiber.MethodPost, "/me/gold/sell", `{"grams":"0.5"}`, s.userToken, fiber.StatusUnprocessableEntity)
	s.do(fiber.MethodPost, "/me/gold/sell", `{"grams":"2"}`, s.userToken, fiber.StatusCreated)
	b := s.balances(s.userToken)
	s.True(b.Spendable.Equal(decimal.NewFromInt(870)))
	s.True(b.Withdrawable.Equal(decimal.NewFromInt(127)), b.Withdrawable.String())

	env = s.do(fiber.MethodGet, "/me/gold", "", s.userToken, fiber.StatusOK)
	var h struct {
		Total decimal.Decimal `json:"total_grams"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &h))
	s.True(h.Total.IsZero())

	s.do(fiber.MethodPost, "/me/withdrawals", `{"amount":"50","bank_details":"IBAN AE07 0331"}`, s.userToken, fiber.StatusUnprocessableEntity)
	env = s.do(fiber.MethodPost, "/me/withdrawals", `{"amount":"100","bank_details":"IBAN AE07 0331"}`, s.userToken, fiber.StatusCreated)
	var w struct {
		Withdrawal struct {
			ID string `json:"id"`
		} `json:"withdrawal"`
		Balances balances `json:"balances"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &w))
	s.True(w.Balances.Withdrawable.Equal(decimal.NewFromInt(27)))

	env = s.do(fiber.MethodGet, "/admin/withdrawals/pending", "", s.adminToken, fiber.StatusOK)
	s.Contains(string(env.Data), w.Withdrawal.ID)

	decision := "/admin/withdrawals/" + w.Withdrawal.ID + "/decision"
	s.do(fiber.MethodPost, decision, `{"decision":"reject"}`, s.adminToken, fiber.StatusBadRequest)
	s.do(fiber.MethodPost, decision, `{"decision":"decline","note":"name mismatch"}`, s.adminToken, fiber.StatusOK)
	s.do(fiber.MethodPost, decision, `{"decision":"approve"}`, s.adminToken, fiber.StatusConflict)
	s.True(s.balances(s.userToken).Withdrawable.Equal(decimal.NewFromInt(127)))

	s.do(fiber.MethodPost, "/me/transfers", `{"amount":"200"}`, s.userToken, fiber.StatusUnprocessableEntity)
	s.do(fiber.MethodPost, "/me/transfers", `{"amount":"27"}`, s.userToken, fiber.StatusCreated)
	b = s.balances(s.userToken)
	s.True(b.Spendable.Equal(decimal.NewFromInt(897)))
	s.True(b.Withdrawable.Equal(decimal.NewFromInt(100)))

	env = s.do(fiber.MethodGet, "/me/withdrawals", "", s.userToken, fiber.StatusOK)
	s.Contains(string(env.Data), "internal_transfer")
}

func (s *WebAPITestSuite) TestInvestmentLifecycle() {
	s.fund("600")
	s.do(fiber.MethodPost, "/me/investments", `{"plan_id":"starter-30","principal":"120"}`, s.userToken, fiber.StatusBadRequest)
	s.do(fiber.MethodPost, "/me/investments", `{"plan_id":"unknown","principal":"100"}`, s.userToken, fiber.StatusNotFound)
	env := s.do(fiber.MethodPost, "/me/investments", `{"plan_id":"starter-30","principal":"500"}`, s.userToken, fiber.StatusCreated)
	var p struct {
		Position struct {
			ID string `json:"id"`
		} `json:"position"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &p))

	path := "/me/investments/" + p.Position.ID + "/withdraw"
	s.do(fiber.MethodPost, path, "", s.userToken, fiber.StatusUnprocessableEntity)
	s.do(fiber.MethodPost, "/me/investments/not-a-uuid/withdraw", "", s.userToken, fiber.StatusBadRequest)

	s.clock.AdvanceDays(30)
	s.do(fiber.MethodPost, path, "", s.userToken, fiber.StatusOK)
	s.do(fiber.MethodPost, path, "", s.userToken, fiber.StatusConflict)
	b := s.balances(s.userToken)
	s.True(b.Spendable.Equal(decimal.NewFromInt(100)))
	s.True(b.Withdrawable.Equal(decimal.NewFromInt(515)), b.Withdrawable.String())
}

func (s *WebAPITestSuite) TestEvidenceTooLarge() {
	resp := s.uploadEvidence(s.userToken, 2048)
	defer resp.Body.Close() //nolint:errcheck
	s.Equal(fiber.StatusRequestEntityTooLarge, resp.StatusCode)
}

func (s *WebAPITestSuite) TestRejectedTopupCreditsNothing() {
	env := s.do(fiber.MethodPost, "/me/topups", `{"amount":"300","evidence_ref":"ev_manual"}`, s.userToken, fiber.StatusCreated)
	var topup struct {
		ID string `json:"id"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &topup))
	s.do(fiber.MethodPost, "/admin/topups/"+topup.ID+"/decision", `{"decision":"reject","note":"blurry"}`, s.adminToken, fiber.StatusOK)
	s.do(fiber.MethodPost, "/admin/topups/"+topup.ID+"/decision", `{"decision":"approve"}`, s.adminToken, fiber.StatusConflict)
	s.do(fiber.MethodPost, "/admin/topups/"+uuid.NewString()+"/decision", `{"decision":"approve"}`, s.adminToken, fiber.StatusNotFound)
	s.True(s.balances(s.userToken).Spendable.IsZero())
}

func TestWebAPITestSuite(t *testing.T) {
	suite.Run(t, new(WebAPITestSuite))
}

func TestRateLimit(t *testing.T) {
	a := newApp(t, testConfig(5), testutils.NewClock(time.Now()))
	for i := range 6 {
		resp := testutils.MakeRequest(a, fiber.MethodGet, "/", "", "")
		_ = resp.Body.Close()
		if i < 5 {
			if resp.StatusCode != fiber.StatusOK {
				t.Fatalf("request %d: got %d", i+1, resp.StatusCode)
			}
			continue
		}
		if resp.StatusCode != fiber.StatusTooManyRequests {
			t.Fatalf("request %d: expected 429, got %d", i+1, resp.StatusCode)
		}
	}
}
