package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/arthamatics/arthamatics-be/internal/models"
)

// ErrInvalidToken indicates a token that failed signature or claim checks.
var ErrInvalidToken = errors.New("invalid session token")

// Claims are the application-level fields extracted from a verified token.
type Claims struct {
	UserID int64
	Role   string
}

// TokenManager issues and verifies signed JWTs for authenticated users.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenManager creates a manager with the provided secret, issuer, and lifetime.
func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}
}

// Generate issues a signed JWT string for the provided user.
func (t *TokenManager) Generate(user models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":  t.issuer,
		"sub":  fmt.Sprintf("%d", user.ID),
		"role": user.Role,
		"iat":  now.Unix(),
		"nbf":  now.Unix(),
		"exp":  now.Add(t.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Parse verifies a token string and returns its claims.
func (t *TokenManager) Parse(tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithIssuer(t.issuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	sub, err := mapClaims.GetSubject()
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	role, _ := mapClaims["role"].(string)

	return Claims{UserID: userID, Role: role}, nil
}
