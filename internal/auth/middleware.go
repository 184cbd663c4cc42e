package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/reimbursement-service/internal/domain"
	"github.com/spec-kit/reimbursement-service/internal/repository"
	apperrors "github.com/spec-kit/reimbursement-service/pkg/util/errorutil"
)

const callerKey = "auth_caller"

// IdentityLookup loads accounts by id regardless of suspension.
type IdentityLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Gate resolves bearer tokens into callers.
type Gate struct {
	tokens *TokenManager
	users  IdentityLookup
}

// NewGate constructs the authorization gate.
func NewGate(tokens *TokenManager, users IdentityLookup) *Gate {
	return &Gate{tokens: tokens, users: users}
}

// ResolveCaller verifies the Authorization header value. The "Bearer " prefix is optional.
func (g *Gate) ResolveCaller(header string) (*domain.TokenClaims, error) {
	token := strings.TrimSpace(header)
	if token == "" {
		return nil, ErrInvalidToken
	}
	if len(token) >= 7 && strings.EqualFold(token[:7], "Bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		return nil, ErrInvalidToken
	}
	return g.tokens.VerifyToken(token)
}

// Handle enforces authentication for protected routes. A token whose embedded
// digest no longer matches the stored one was issued before a password change
// and is rejected.
func (g *Gate) Handle(c *fiber.Ctx) error {
	claims, err := g.ResolveCaller(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return apperrors.NewInvalidToken("Invalid token")
	}

	user, err := g.users.GetByID(c.UserContext(), claims.IdentityID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNoUserFound()
		}
		return apperrors.NewStoreQueryError("Query user failed", err)
	}
	if user.PasswordHash != claims.PasswordDigest {
		return apperrors.NewInvalidToken("Invalid token")
	}

	c.Locals(callerKey, &domain.Caller{
		ID:        user.ID,
		Email:     user.Email,
		Role:      user.Role,
		Suspended: user.Suspended,
	})
	return c.Next()
}

// CallerFromContext retrieves the authenticated caller.
func CallerFromContext(c *fiber.Ctx) (*domain.Caller, bool) {
	val := c.Locals(callerKey)
	if val == nil {
		return nil, false
	}
	caller, ok := val.(*domain.Caller)
	return caller, ok
}
