package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// TokenPurpose separates tokens signed with the same secret so that, say,
// a verification link cannot be replayed as an access token.
type TokenPurpose string

const (
	PurposeVerify  TokenPurpose = "verify"
	PurposeAccess  TokenPurpose = "access"
	PurposeRefresh TokenPurpose = "refresh"
	PurposeReset   TokenPurpose = "reset"
)

type Claims struct {
	UserID   string       `json:"id"`
	Username string       `json:"username,omitempty"`
	Purpose  TokenPurpose `json:"purpose"`
	// Stamp binds a token to some server-side state, e.g. the current password hash.
	Stamp string `json:"stamp,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 tokens with a shared secret.
type TokenManager struct {
	secret []byte
	now    func() time.Time
}

func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret), now: time.Now}
}

// WithClock returns a copy that reads the time from now. Used in tests.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	cp := *m
	cp.now = now
	return &cp
}

func (m *TokenManager) Issue(userID, username string, purpose TokenPurpose, ttl time.Duration) (string, error) {
	return m.IssueStamped(userID, username, purpose, ttl, "")
}

// IssueStamped is Issue with a Stamp claim the caller checks on Parse.
func (m *TokenManager) IssueStamped(userID, username string, purpose TokenPurpose, ttl time.Duration, stamp string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("empty user id")
	}
	now := m.now()
	claims := &Claims{
		UserID:   userID,
		Username: username,
		Purpose:  purpose,
		Stamp:    stamp,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", purpose, err)
	}
	return s, nil
}

// Parse verifies signature, expiry and purpose and returns the claims.
// Expired tokens yield ErrTokenExpired, everything else ErrTokenInvalid.
func (m *TokenManager) Parse(tokenStr string, purpose TokenPurpose) (*Claims, error) {
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		return nil, ErrTokenInvalid
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		// принимаем только HMAC
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid || claims.UserID == "" || claims.Purpose != purpose {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
