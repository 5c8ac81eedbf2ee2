package serverutils

import (
	"errors"

	"ai-docshelper-be/pkg/pipeline"
	"ai-docshelper-be/pkg/pipeline/mutation"
	"ai-docshelper-be/pkg/pipeline/stage"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps errors returned by handlers to HTTP statuses.
// Pipeline fallbacks never reach here; only hard failures do.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(fiber.Map{"message": fiberErr.Message})
		}

		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": validationErrs.Error()})
		}

		if errors.Is(err, mutation.ErrNoTargetRecords) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "no matching records found"})
		}

		var mutationErr *mutation.FailedError
		if errors.As(err, &mutationErr) {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": mutationErr.Error()})
		}

		var depErr *pipeline.DependencyError
		if errors.As(err, &depErr) {
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": depErr.Error()})
		}

		var malformedErr *stage.MalformedOutputError
		var schemaErr *stage.SchemaValidationError
		if errors.As(err, &malformedErr) || errors.As(err, &schemaErr) {
			return ctx.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": err.Error()})
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}
