// Package middleware holds the fiber middleware that establishes who is
// calling: JWT verification and the identity extracted from its claims.
package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/config"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/provider"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	identityKey = "identity"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID       uuid.UUID
	Role         string
	Jurisdiction string
}

// IsAdmin reports whether the caller may review requests.
func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// JwtProtected verifies the bearer token and stores the caller's Identity.
// The jurisdiction claim, when present, is also put on the user context so
// the price oracle can see it.
func JwtProtected(cfg *config.Jwt) fiber.Handler {
	verify := jwtware.New(jwtware.Config{
		SigningKey:   jwtware.SigningKey{Key: []byte(cfg.Secret)},
		ErrorHandler: jwtError,
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwt.Token)
			if !ok {
				return jwtError(c, errors.New("missing token"))
			}
			id, err := identityFrom(token)
			if err != nil {
				return jwtError(c, err)
			}
			c.Locals(identityKey, id)
			if id.Jurisdiction != "" {
				c.SetUserContext(provider.WithJurisdiction(c.UserContext(), id.Jurisdiction))
			}
			return c.Next()
		},
	})
	return verify
}

func identityFrom(token *jwt.Token) (Identity, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, errors.New("invalid claims")
	}
	raw, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(raw)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid user_id claim: %w", err)
	}
	role, _ := claims["role"].(string)
	if role == "" {
		role = RoleUser
	}
	jurisdiction, _ := claims["jurisdiction"].(string)
	return Identity{UserID: userID, Role: role, Jurisdiction: jurisdiction}, nil
}

func jwtError(c *fiber.Ctx, err error) error {
	status := fiber.StatusUnauthorized
	title := "Invalid or expired JWT"
	if err != nil && strings.EqualFold(err.Error(), "missing or malformed JWT") {
		status = fiber.StatusBadRequest
		title = "Missing or malformed JWT"
	}
	c.Set(fiber.HeaderContentType, "application/problem+json")
	return c.Status(status).JSON(fiber.Map{
		"type":   "about:blank",
		"title":  title,
		"status": status,
	})
}

// CurrentIdentity returns the Identity stored by JwtProtected.
func CurrentIdentity(c *fiber.Ctx) (Identity, bool) {
	id, ok := c.Locals(identityKey).(Identity)
	return id, ok
}

// RequireAdmin rejects callers without the admin role. It must run after
// JwtProtected.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := CurrentIdentity(c)
		if !ok || !id.IsAdmin() {
			c.Set(fiber.HeaderContentType, "application/problem+json")
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"type":   "about:blank",
				"title":  "Forbidden",
				"status": fiber.StatusForbidden,
			})
		}
		return c.Next()
	}
}

// IssueToken signs a token for id. Login lives outside this service; this
// is used by the operator CLI and tests.
func IssueToken(cfg *config.Jwt, id Identity) (string, error) {
	claims := jwt.MapClaims{
		"user_id": id.UserID.String(),
		"role":    id.Role,
		"exp":     time.Now().Add(cfg.Expiry).Unix(),
	}
	if id.Jurisdiction != "" {
		claims["jurisdiction"] = id.Jurisdiction
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
}
