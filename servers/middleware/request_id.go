package middleware

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const RequestIdHeader = "X-Request-Id"

// RequestIdMiddleware tags every request with an id, honoring one the
// client already sent.
func RequestIdMiddleware() fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestId := ctx.Get(RequestIdHeader)
		if requestId == "" {
			requestId = uuid.NewString()
		}
		ctx.Locals("request_id", requestId)
		ctx.Set(RequestIdHeader, requestId)
		return ctx.Next()
	}
}
