package middleware

import (
	"strings"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/jwt"
	"github.com/gofiber/fiber/v3"
	"github.com/tramitesplus/cuadre-api/internal/logger"
	"github.com/tramitesplus/cuadre-api/internal/utils"
)

// UserIDKey is the Locals key holding the authenticated Clerk subject.
const UserIDKey = "user_id"

// TokenVerifier checks a session token and returns its subject.
type TokenVerifier func(c fiber.Ctx, token string) (string, error)

// ClerkAuth validates Clerk session tokens with the given secret key.
func ClerkAuth(secretKey string) fiber.Handler {
	clerk.SetKey(secretKey)
	return BearerAuth(func(c fiber.Ctx, token string) (string, error) {
		claims, err := jwt.Verify(c.Context(), &jwt.VerifyParams{Token: token})
		if err != nil {
			return "", err
		}
		return claims.Subject, nil
	})
}

// BearerAuth requires an Authorization: Bearer header accepted by verify.
func BearerAuth(verify TokenVerifier) fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return utils.WriteError(c, utils.NewUnauthorizedError("missing authorization token"))
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader || token == "" {
			return utils.WriteError(c, utils.NewUnauthorizedError("invalid authorization header format"))
		}

		subject, err := verify(c, token)
		if err != nil {
			log := logger.FromContext(c.Context())
			log.Debug().Err(err).Msg("token rejected")
			return utils.WriteError(c, utils.NewUnauthorizedError("invalid or expired token"))
		}

		c.Locals(UserIDKey, subject)
		return c.Next()
	}
}
