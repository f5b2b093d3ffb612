package auth

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/floodwatch/apiserver/types"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a token fails signature, expiry, or
// claim checks. There is no revocation store; validity is purely a
// function of signature and expiry.
var ErrInvalidToken = errors.New("invalid or expired token")

// SessionClaims are embedded in session tokens issued at login and
// registration.
type SessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// UserID parses the numeric subject of the claims.
func (c SessionClaims) UserID() (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(c.Subject))
	if err != nil || id < 1 {
		return 0, ErrInvalidToken
	}
	return id, nil
}

// TokenManager issues and verifies signed JWTs.
type TokenManager struct {
	secret     []byte
	sessionTTL time.Duration
	resetTTL   time.Duration
}

// NewTokenManager creates a manager with the provided secret and lifetimes.
func NewTokenManager(secret string, sessionTTL, resetTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		resetTTL:   resetTTL,
	}
}

// IssueSession returns a signed session token embedding the user's
// id, email, name, and role.
func (t *TokenManager) IssueSession(user types.User) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.sessionTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// VerifySession validates a session token and returns its claims.
func (t *TokenManager) VerifySession(tokenString string) (SessionClaims, error) {
	var claims SessionClaims
	if err := t.parse(tokenString, &claims); err != nil {
		return SessionClaims{}, err
	}
	// Reset tokens carry a bare subject; they are not valid sessions.
	if strings.TrimSpace(claims.Email) == "" {
		return SessionClaims{}, ErrInvalidToken
	}
	if _, err := claims.UserID(); err != nil {
		return SessionClaims{}, err
	}
	return claims, nil
}

// IssueReset returns a short-lived token carrying only the user id,
// for password-reset flows.
func (t *TokenManager) IssueReset(userID int) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.resetTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// VerifyReset validates a reset token and returns the user id it was
// issued for.
func (t *TokenManager) VerifyReset(tokenString string) (int, error) {
	var claims jwt.RegisteredClaims
	if err := t.parse(tokenString, &claims); err != nil {
		return 0, err
	}
	id, err := strconv.Atoi(strings.TrimSpace(claims.Subject))
	if err != nil || id < 1 {
		return 0, ErrInvalidToken
	}
	return id, nil
}

func (t *TokenManager) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
