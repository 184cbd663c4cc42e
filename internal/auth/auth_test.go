package auth

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/reimbursement-service/internal/domain"
	"github.com/spec-kit/reimbursement-service/internal/repository"
	apperrors "github.com/spec-kit/reimbursement-service/pkg/util/errorutil"
)

func newTokens(enforce bool) *TokenManager {
	return NewTokenManager(TokenOptions{Secret: "s3cret", Issuer: "test", TTL: time.Hour, EnforceExpiry: enforce})
}

func TestTokenRoundTrip(t *testing.T) {
	tm := newTokens(true)
	issued := time.Now().Truncate(time.Second)

	token, exp, err := tm.IssueToken(42, "digest", issued)
	require.NoError(t, err)
	assert.Equal(t, issued.Add(time.Hour), exp)

	claims, err := tm.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.IdentityID)
	assert.Equal(t, "digest", claims.PasswordDigest)
	assert.Equal(t, issued.Format(loginTimeLayout), claims.LoginTime)
	assert.True(t, claims.ExpiresAt.Equal(exp))
}

func TestVerifyTokenRejects(t *testing.T) {
	tm := newTokens(true)
	token, _, err := tm.IssueToken(1, "digest", time.Now())
	require.NoError(t, err)

	other := NewTokenManager(TokenOptions{Secret: "other"})
	_, err = other.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tm.VerifyToken(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tm.VerifyToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	missingID, _, err := tm.IssueToken(0, "digest", time.Now())
	require.NoError(t, err)
	_, err = tm.VerifyToken(missingID)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenExpiry(t *testing.T) {
	stale := time.Now().Add(-2 * time.Hour)

	token, _, err := newTokens(true).IssueToken(7, "digest", stale)
	require.NoError(t, err)

	_, err = newTokens(true).VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims, err := newTokens(false).VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.IdentityID)
}

func TestHashers(t *testing.T) {
	sha := SHA256Hasher{}
	digest, err := sha.Hash("password1")
	require.NoError(t, err)
	assert.Equal(t, "0b14d501a594442a01c6859541bcb3e8164d183d32937b851835442f69d5c94e", digest)
	assert.True(t, sha.Matches(digest, "password1"))
	assert.False(t, sha.Matches(digest, "password2"))

	bc := BcryptHasher{Cost: 4}
	hashed, err := bc.Hash("password1")
	require.NoError(t, err)
	assert.True(t, bc.Matches(hashed, "password1"))
	assert.False(t, bc.Matches(hashed, "password2"))

	h, err := NewHasher("bcrypt", 4)
	require.NoError(t, err)
	assert.IsType(t, BcryptHasher{}, h)
	h, err = NewHasher("", 0)
	require.NoError(t, err)
	assert.IsType(t, SHA256Hasher{}, h)
	_, err = NewHasher("md5", 0)
	assert.Error(t, err)
}

type lookupStub map[int64]domain.User

func (l lookupStub) GetByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := l[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func gateApp(g *Gate, guards ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		de := apperrors.ToDomainError(err)
		return c.Status(de.HTTPStatus).SendString(de.Code)
	}})
	handlers := append([]fiber.Handler{g.Handle}, guards...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		caller, ok := CallerFromContext(c)
		if !ok {
			return fiber.ErrInternalServerError
		}
		return c.SendString(caller.Email)
	})
	app.Get("/me", handlers...)
	return app
}

func call(t *testing.T, app *fiber.App, header string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set(fiber.HeaderAuthorization, header)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	buf := new(bytes.Buffer)
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, buf.String()
}

func TestGate(t *testing.T) {
	tm := newTokens(true)
	users := lookupStub{
		1: {ID: 1, Email: "a@x.com", PasswordHash: "digest-a", Role: domain.RoleEmployee},
		2: {ID: 2, Email: "boss@x.com", PasswordHash: "digest-b", Role: domain.RoleEmployer, Suspended: true},
	}
	app := gateApp(NewGate(tm, users))

	tokenA, _, err := tm.IssueToken(1, "digest-a", time.Now())
	require.NoError(t, err)
	stale, _, err := tm.IssueToken(1, "old-digest", time.Now())
	require.NoError(t, err)
	ghost, _, err := tm.IssueToken(9, "digest", time.Now())
	require.NoError(t, err)
	tokenB, _, err := tm.IssueToken(2, "digest-b", time.Now())
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"bearer", "Bearer " + tokenA, fiber.StatusOK, "a@x.com"},
		{"bare token", tokenA, fiber.StatusOK, "a@x.com"},
		{"missing", "", fiber.StatusUnauthorized, apperrors.CodeInvalidToken},
		{"empty bearer", "Bearer ", fiber.StatusUnauthorized, apperrors.CodeInvalidToken},
		{"password changed", "Bearer " + stale, fiber.StatusUnauthorized, apperrors.CodeInvalidToken},
		{"unknown identity", "Bearer " + ghost, fiber.StatusUnauthorized, apperrors.CodeNoUserFound},
		{"suspended still resolves", "Bearer " + tokenB, fiber.StatusOK, "boss@x.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := call(t, app, tt.header)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.body, body)
		})
	}
}

func TestRequireRoleHandler(t *testing.T) {
	tm := newTokens(true)
	users := lookupStub{
		1: {ID: 1, Email: "a@x.com", PasswordHash: "d", Role: domain.RoleEmployee},
		2: {ID: 2, Email: "boss@x.com", PasswordHash: "d", Role: domain.RoleEmployer},
	}
	app := gateApp(NewGate(tm, users), RequireRoleHandler(domain.RoleEmployer))

	employee, _, err := tm.IssueToken(1, "d", time.Now())
	require.NoError(t, err)
	employer, _, err := tm.IssueToken(2, "d", time.Now())
	require.NoError(t, err)

	status, body := call(t, app, "Bearer "+employee)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, apperrors.CodePermissionDenied, body)

	status, _ = call(t, app, "Bearer "+employer)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestRequireRole(t *testing.T) {
	assert.NoError(t, RequireRole(&domain.User{Role: domain.RoleEmployer}, domain.RoleEmployer))
	assert.True(t, apperrors.IsCode(RequireRole(&domain.User{Role: domain.RoleEmployee}, domain.RoleEmployer), apperrors.CodePermissionDenied))
	assert.True(t, apperrors.IsCode(RequireRole(nil, domain.RoleEmployer), apperrors.CodePermissionDenied))
}
