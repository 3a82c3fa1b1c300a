package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"soundblast/internal/model"
	"soundblast/internal/service"
)

type transcribeRequest struct {
	ID string `json:"id"`
}

type transcribeResponse struct {
	Success bool              `json:"success"`
	Result  *model.Transcript `json:"result"`
}

// Transcribe godoc
// @Summary      Transcribe a stored file
// @Description  Returns the stored transcript when one exists; otherwise runs the pipeline. Repeat calls for one id never rerun the tools.
// @Tags         transcription
// @Accept       json
// @Produce      json
// @Param        request  body      transcribeRequest  true  "File to transcribe"
// @Success      201      {object}  transcribeResponse
// @Failure      400      {object}  errorPayload
// @Failure      404      {object}  errorPayload
// @Failure      500      {object}  errorPayload
// @Router       /api/transcribe [post]
func Transcribe(transcriber service.TranscriptionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req transcribeRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be JSON with an id")
		}
		id := strings.TrimSpace(req.ID)
		if id == "" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "id is required")
		}

		t, err := transcriber.Transcribe(c.UserContext(), id)
		if err != nil {
			return writeAppError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(transcribeResponse{Success: true, Result: t})
	}
}
