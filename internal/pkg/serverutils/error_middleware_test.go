package serverutils

import (
	"errors"
	"net/http/httptest"
	"testing"

	"ai-docshelper-be/pkg/pipeline"
	"ai-docshelper-be/pkg/pipeline/mutation"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func newTestApp(handler fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/boom", handler)
	return app
}

func TestErrorHandlerMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "no target records maps to 404",
			err:        mutation.ErrNoTargetRecords,
			wantStatus: fiber.StatusNotFound,
		},
		{
			name:       "mutation failure maps to 500",
			err:        &mutation.FailedError{Action: "replace", Err: errors.New("db down")},
			wantStatus: fiber.StatusInternalServerError,
		},
		{
			name:       "dependency failure maps to 503",
			err:        &pipeline.DependencyError{Dependency: "embedding", Err: errors.New("timeout")},
			wantStatus: fiber.StatusServiceUnavailable,
		},
		{
			name:       "fiber error keeps its code",
			err:        fiber.NewError(fiber.StatusBadRequest, "invalid session id"),
			wantStatus: fiber.StatusBadRequest,
		},
		{
			name:       "unknown error maps to 500",
			err:        errors.New("mystery"),
			wantStatus: fiber.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(func(ctx *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
			assert.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestValidateRequest(t *testing.T) {
	type req struct {
		Query string `validate:"required"`
	}

	assert.NoError(t, ValidateRequest(req{Query: "hello"}))
	assert.Error(t, ValidateRequest(req{}))
}
