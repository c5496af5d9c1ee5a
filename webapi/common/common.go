// Package common holds the response envelope, problem details and request
// binding shared by every route package.
package common

import (
	"errors"
	"reflect"
	"sync"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/common"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/middleware"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/provider"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Response is the envelope for successful responses.
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ProblemDetails follows RFC 9457.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	Errors   any    `json:"errors,omitempty"`
}

// SuccessResponseJSON writes data inside the standard envelope.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{Status: status, Message: message, Data: data})
}

// ProblemDetailsJSON writes an RFC 9457 body for err. The optional extra
// arguments are an int status override and/or a string or structured detail.
// Without an override the status comes from ErrorToStatusCode.
func ProblemDetailsJSON(c *fiber.Ctx, title string, err error, extra ...any) error {
	status := ErrorToStatusCode(err)
	pd := ProblemDetails{Type: "about:blank", Title: title, Instance: c.OriginalURL()}
	if err != nil {
		pd.Detail = err.Error()
	}
	for _, e := range extra {
		switch v := e.(type) {
		case int:
			status = v
		case string:
			pd.Detail = v
		case nil:
		default:
			pd.Errors = v
		}
	}
	pd.Status = status
	c.Set(fiber.HeaderContentType, "application/problem+json")
	return c.Status(status).JSON(pd)
}

// ErrorToStatusCode maps domain errors to HTTP status codes.
func ErrorToStatusCode(err error) int {
	var fe *fiber.Error
	switch {
	case err == nil:
		return fiber.StatusInternalServerError
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, provider.ErrEvidenceTooLarge):
		return fiber.StatusRequestEntityTooLarge
	case errors.Is(err, common.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, common.ErrNotFound), errors.Is(err, provider.ErrEvidenceNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, common.ErrAlreadySettled),
		errors.Is(err, common.ErrInvalidTransition),
		errors.Is(err, common.ErrAlreadyExists):
		return fiber.StatusConflict
	case errors.Is(err, common.ErrInsufficientFunds),
		errors.Is(err, common.ErrInsufficientMatureGold),
		errors.Is(err, common.ErrBelowMinimum),
		errors.Is(err, common.ErrNotYetMature):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, common.ErrContention), errors.Is(err, provider.ErrProviderUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator. decimal.Decimal fields validate as
// float64 so numeric tags such as gt=0 apply to them.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
	})
	return validate
}

// BindAndValidate parses and validates the request body. On failure it has
// already written the error response and returns nil.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		return nil, ProblemDetailsJSON(c, "Invalid request body", err, fiber.StatusBadRequest)
	}
	if err := Validator().Struct(input); err != nil {
		return nil, ProblemDetailsJSON(c, "Validation failed", err, fiber.StatusBadRequest)
	}
	return &input, nil
}

// ParamUUID reads a uuid path parameter. On failure it has already written
// the error response and returns false.
func ParamUUID(c *fiber.Ctx, name string) (uuid.UUID, bool, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, false, ProblemDetailsJSON(c, "Invalid "+name, err, fiber.StatusBadRequest)
	}
	return id, true, nil
}

// Caller returns the authenticated identity. On failure it has already
// written a 401 and returns false.
func Caller(c *fiber.Ctx) (middleware.Identity, bool, error) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return id, false, ProblemDetailsJSON(c, "Unauthorized", nil, fiber.StatusUnauthorized, "missing user context")
	}
	return id, true, nil
}
