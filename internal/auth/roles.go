package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/reimbursement-service/internal/domain"
	apperrors "github.com/spec-kit/reimbursement-service/pkg/util/errorutil"
)

// RequireRole fails with PermissionDenied unless the account holds role.
func RequireRole(user *domain.User, role domain.Role) error {
	if user == nil || user.Role != role {
		return apperrors.NewPermissionDenied("Not enough permissions")
	}
	return nil
}

// RequireRoleHandler ensures the resolved caller holds role. It must run after Gate.Handle.
func RequireRoleHandler(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, ok := CallerFromContext(c)
		if !ok {
			return apperrors.NewInvalidToken("Invalid token")
		}
		if caller.Role != role {
			return apperrors.NewPermissionDenied("Not enough permissions")
		}
		return c.Next()
	}
}
