package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"soundblast/internal/apperr"
	"soundblast/internal/http/middleware"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "TOOL_FAILURE")
// - message: human-readable safe message
// - details: optional diagnostic text, such as captured tool stderr
func writeError(c *fiber.Ctx, status int, code, message string, details ...string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	if len(details) > 0 {
		res.Error.Details = details[0]
	}
	return c.Status(status).JSON(res)
}

type kindResponse struct {
	status int
	code   string
}

var kindResponses = map[apperr.Kind]kindResponse{
	apperr.KindNotFound:            {fiber.StatusNotFound, "NOT_FOUND"},
	apperr.KindInvalidIdentifier:   {fiber.StatusBadRequest, "INVALID_ID"},
	apperr.KindInvalid:             {fiber.StatusBadRequest, "BAD_REQUEST"},
	apperr.KindStorage:             {fiber.StatusInternalServerError, "STORAGE_ERROR"},
	apperr.KindProcessSpawn:        {fiber.StatusInternalServerError, "TOOL_UNAVAILABLE"},
	apperr.KindToolFailure:         {fiber.StatusInternalServerError, "TOOL_FAILURE"},
	apperr.KindMalformedToolOutput: {fiber.StatusInternalServerError, "MALFORMED_TOOL_OUTPUT"},
	apperr.KindIO:                  {fiber.StatusInternalServerError, "IO_ERROR"},
}

// writeAppError maps an error kind to its status code and envelope.
func writeAppError(c *fiber.Ctx, err error) error {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
	res, ok := kindResponses[appErr.Kind]
	if !ok {
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}

	msg := apperr.Message(err)
	if msg == "" {
		msg = appErr.Kind.String()
	}
	if diag := apperr.DiagnosticOf(err); diag != "" {
		return writeError(c, res.status, res.code, msg, diag)
	}
	return writeError(c, res.status, res.code, msg)
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		} else if apperr.KindOf(err) != apperr.KindUnknown {
			return writeAppError(c, err)
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
