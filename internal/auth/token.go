package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/reimbursement-service/internal/domain"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// loginTimeLayout matches the human-readable login stamp embedded in tokens.
const loginTimeLayout = "2006-01-02 15:04:05"

// TokenManager handles issuing and validating signed tokens.
type TokenManager struct {
	secret        []byte
	issuer        string
	ttl           time.Duration
	enforceExpiry bool
}

// TokenOptions configures a TokenManager.
type TokenOptions struct {
	Secret        string
	Issuer        string
	TTL           time.Duration
	EnforceExpiry bool
}

// NewTokenManager builds a new manager.
func NewTokenManager(opts TokenOptions) *TokenManager {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{
		secret:        []byte(opts.Secret),
		issuer:        opts.Issuer,
		ttl:           ttl,
		enforceExpiry: opts.EnforceExpiry,
	}
}

// TokenData is the identity assertion carried inside the token.
type TokenData struct {
	ID        int64  `json:"id"`
	Password  string `json:"password"`
	LoginTime string `json:"login_time"`
}

// Claims describes the token payload.
type Claims struct {
	Data *TokenData `json:"data"`
	jwt.RegisteredClaims
}

// IssueToken signs a token for the identity with the password digest snapshot.
func (tm *TokenManager) IssueToken(identityID int64, passwordDigest string, issuedAt time.Time) (string, time.Time, error) {
	expiresAt := issuedAt.Add(tm.ttl)
	claims := &Claims{
		Data: &TokenData{
			ID:        identityID,
			Password:  passwordDigest,
			LoginTime: issuedAt.Format(loginTimeLayout),
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tm.issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// VerifyToken checks the signature and required fields. Expiry is only
// checked when the manager was built with EnforceExpiry.
func (tm *TokenManager) VerifyToken(tokenStr string) (*domain.TokenClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if !tm.enforceExpiry {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	}, opts...)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Data == nil || claims.Data.ID == 0 || claims.Data.Password == "" {
		return nil, ErrInvalidToken
	}

	out := &domain.TokenClaims{
		IdentityID:     claims.Data.ID,
		PasswordDigest: claims.Data.Password,
		LoginTime:      claims.Data.LoginTime,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
