package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/reimbursement-service/internal/auth"
	"github.com/spec-kit/reimbursement-service/internal/domain"
	apperrors "github.com/spec-kit/reimbursement-service/pkg/util/errorutil"
)

func ok(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"success": true, "data": data})
}

func callerOf(c *fiber.Ctx) (*domain.Caller, error) {
	caller, found := auth.CallerFromContext(c)
	if !found {
		return nil, apperrors.NewInvalidToken("Invalid token")
	}
	return caller, nil
}

// orStoreError keeps classified failures and maps anything else to the
// endpoint's storage error.
func orStoreError(err error, wrap func(string, error) error, message string) error {
	return apperrors.OrElse(err, func(cause error) error {
		return wrap(message, cause)
	})
}
