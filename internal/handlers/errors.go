package handlers

import (
	"errors"

	"github.com/civictrack/backend/internal/workflow"
	"github.com/civictrack/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// respondError maps workflow errors onto HTTP statuses. Conflict-class errors
// (bad transition, wrong state) come back 409 so clients can refetch and
// retry; storage trouble is 502 because the request itself was fine. Every
// failure carries a retryability hint so clients do not hammer requests that
// can never succeed.
func respondError(c *fiber.Ctx, err error) error {
	retryable := workflow.Retryable(err)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return utils.FailureResponse(c, fiber.StatusNotFound, "Complaint not found", retryable)
	case errors.Is(err, workflow.ErrForbidden):
		return utils.FailureResponse(c, fiber.StatusForbidden, "Action not permitted for your role", retryable)
	case errors.Is(err, workflow.ErrInvalidTransition):
		return utils.FailureResponse(c, fiber.StatusConflict, "Complaint state changed, refresh and retry", retryable)
	case errors.Is(err, workflow.ErrInvalidState):
		return utils.FailureResponse(c, fiber.StatusConflict, "Action not available in the current status", retryable)
	case errors.Is(err, workflow.ErrMissingJustification):
		return utils.FailureResponse(c, fiber.StatusBadRequest, "Remarks are required for this action", retryable)
	case errors.Is(err, workflow.ErrTooManyImages):
		return utils.FailureResponse(c, fiber.StatusBadRequest, "Too many images for this stage", retryable)
	case errors.Is(err, workflow.ErrUnsupportedMediaType):
		return utils.FailureResponse(c, fiber.StatusUnsupportedMediaType, "Only image uploads are accepted", retryable)
	case errors.Is(err, workflow.ErrUpstreamStorage):
		return utils.FailureResponse(c, fiber.StatusBadGateway, "File storage is temporarily unavailable", retryable)
	default:
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, err.Error())
	}
}
