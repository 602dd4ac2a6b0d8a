package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/questforge/gateway/app_errors"
)

// SessionAuth validates the bearer token the auth provider minted at
// login. An empty secret disables the check and leaves the routes open.
func SessionAuth(secret string) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		if secret == "" {
			return ctx.Next()
		}

		authHeader := ctx.Get(fiber.HeaderAuthorization)
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || tokenString == "" {
			return app_errors.InvalidCredentials("missing bearer token")
		}

		token, err := jwt.Parse(
			tokenString,
			func(*jwt.Token) (any, error) { return []byte(secret), nil },
			jwt.WithValidMethods([]string{"HS256"}),
		)
		if err != nil || !token.Valid {
			return app_errors.InvalidCredentials("invalid session token")
		}

		if subject, err := token.Claims.GetSubject(); err == nil && subject != "" {
			ctx.Locals("user_id", subject)
		}
		return ctx.Next()
	}
}
