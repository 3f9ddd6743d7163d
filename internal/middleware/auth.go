package middleware

import (
	"errors"
	"strings"

	"workorder/internal/auth"
	"workorder/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UnauthorizedMessage is returned for a missing, malformed or expired token.
const UnauthorizedMessage = "Unauthorized, please log in"

// Locals keys set by UseToken.
const (
	LocalUserID   = "userID"
	LocalUsername = "username"
)

// UseToken authenticates the request with a bearer token. The token is read
// from the Authorization header, or from the "token" query parameter for
// WebSocket upgrades where browsers cannot set headers.
func UseToken(tokens *auth.TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, ok := bearer(c)
		if !ok {
			logger.SecurityLogger.Warn("Missing token", zap.String("path", c.Path()))
			return unauthorized(c)
		}
		claims, err := tokens.Parse(raw)
		if err != nil {
			logger.SecurityLogger.Warn("Rejected token",
				zap.String("path", c.Path()),
				zap.Bool("expired", errors.Is(err, auth.ErrTokenExpired)),
				zap.Error(err))
			return unauthorized(c)
		}
		c.Locals(LocalUserID, claims.Subject)
		c.Locals(LocalUsername, claims.Username)
		return c.Next()
	}
}

func bearer(c *fiber.Ctx) (string, bool) {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", false
		}
		token := strings.TrimSpace(parts[1])
		return token, token != ""
	}
	if token := c.Query("token"); token != "" {
		return token, true
	}
	return "", false
}

// unauthorized answers every token failure the same way; the reason is
// only logged.
func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"code":    fiber.StatusUnauthorized,
		"message": UnauthorizedMessage,
		"data":    nil,
	})
}

// UserID returns the authenticated user id set by UseToken, or "".
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

func Username(c *fiber.Ctx) string {
	name, _ := c.Locals(LocalUsername).(string)
	return name
}
