package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog/log"
	"github.com/wichananm65/account-service/internal/apperror"
	"github.com/wichananm65/account-service/internal/token"
)

// ContextKey is the locals key holding the verified *jwt.Token.
const ContextKey = "user"

// missingTokenText is what jwtware reports when no bearer token was extracted.
const missingTokenText = "missing or malformed JWT"

var (
	ErrNoToken     = apperror.New(apperror.Auth, "Not authorized, no token")
	ErrTokenFailed = apperror.New(apperror.Auth, "Not authorized, token failed")
)

// Protect rejects requests without a valid bearer token. On success the
// parsed token is stored under ContextKey and UserID can read it.
func Protect(tokens *token.Manager) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:     tokens.SigningKey(),
		SigningMethod:  token.SigningMethod,
		Claims:         &token.Claims{},
		ContextKey:     ContextKey,
		TokenLookup:    "header:" + fiber.HeaderAuthorization,
		AuthScheme:     "Bearer",
		ErrorHandler:   unauthorized,
		SuccessHandler: requireClaims,
	})
}

// requireClaims rejects correctly signed tokens that carry no expiry or no
// user id.
func requireClaims(c *fiber.Ctx) error {
	tok, _ := c.Locals(ContextKey).(*jwt.Token)
	if tok != nil {
		if claims, ok := tok.Claims.(*token.Claims); ok && claims.ExpiresAt != nil && claims.UserID > 0 {
			return c.Next()
		}
	}
	return unauthorized(c, token.ErrInvalidToken)
}

func unauthorized(c *fiber.Ctx, err error) error {
	if strings.EqualFold(err.Error(), missingTokenText) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": ErrNoToken.Message})
	}

	log.Debug().
		Str("path", c.Path()).
		AnErr("reason", token.Classify(err)).
		Msg("rejected bearer token")
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": ErrTokenFailed.Message})
}

// UserID extracts the caller's id from the token stored by Protect.
func UserID(c *fiber.Ctx) (int, error) {
	tok, ok := c.Locals(ContextKey).(*jwt.Token)
	if !ok || tok == nil {
		return 0, ErrNoToken
	}
	claims, ok := tok.Claims.(*token.Claims)
	if !ok || claims.UserID <= 0 {
		return 0, ErrTokenFailed
	}
	return claims.UserID, nil
}
