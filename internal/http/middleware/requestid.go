package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"soundblast/internal/logging"
)

const (
	// RequestIDHeader carries the request id in and out.
	RequestIDHeader = "X-Request-ID"
	// RequestIDLocalKey is the Fiber locals key holding the request id.
	RequestIDLocalKey = "request_id"
)

// RequestID tags every request with an id taken from X-Request-ID or a fresh
// UUID. The id is echoed in the response, kept in locals for the access log and
// error bodies, and attached to the user context so service logs emitted while
// handling the request (pipeline stages, transcription failures) carry it too.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals(RequestIDLocalKey, id)
		c.SetUserContext(logging.WithRequestID(c.UserContext(), id))
		c.Set(RequestIDHeader, id)

		return c.Next()
	}
}
