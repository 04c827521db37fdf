package handlers

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/civictrack/backend/internal/workflow"
	"github.com/civictrack/backend/pkg/utils"
)

func respondWith(t *testing.T, err error) (int, utils.Response) {
	t.Helper()
	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return respondError(c, err)
	})
	resp, reqErr := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, reqErr)
	defer resp.Body.Close()

	var body utils.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{gorm.ErrRecordNotFound, fiber.StatusNotFound},
		{workflow.ErrForbidden, fiber.StatusForbidden},
		{workflow.ErrInvalidTransition, fiber.StatusConflict},
		{workflow.ErrInvalidState, fiber.StatusConflict},
		{workflow.ErrMissingJustification, fiber.StatusBadRequest},
		{workflow.ErrTooManyImages, fiber.StatusBadRequest},
		{workflow.ErrUnsupportedMediaType, fiber.StatusUnsupportedMediaType},
		{workflow.ErrUpstreamStorage, fiber.StatusBadGateway},
	}
	for _, tc := range cases {
		status, body := respondWith(t, tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.False(t, body.Success)
		assert.NotEmpty(t, body.Error)
	}
}

func TestRespondErrorRetryableHint(t *testing.T) {
	// Storage trouble is worth retrying once the object store recovers.
	_, body := respondWith(t, fmt.Errorf("uploading: %w", workflow.ErrUpstreamStorage))
	require.NotNil(t, body.Retryable)
	assert.True(t, *body.Retryable)

	// A forbidden action stays forbidden no matter how often it is retried.
	_, body = respondWith(t, workflow.ErrForbidden)
	require.NotNil(t, body.Retryable)
	assert.False(t, *body.Retryable)
}
