package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrBadSubject is returned when a token parses but its subject is not a
// user id.
var ErrBadSubject = errors.New("token subject is not a user id")

// SignedToken is a serialized JWT together with its expiry.
type SignedToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken signs an HS256 access token for userID valid for ttl.
// Claims: sub (user id), iat, exp.
func NewAccessToken(secret string, userID uint64, ttl time.Duration) (SignedToken, error) {
	return sign(secret, userID, ttl, "")
}

// NewRefreshToken signs an HS256 refresh token for userID valid for ttl.
// A random jti keeps two tokens issued in the same second distinct, which
// matters because the stored hash is compared by value.
func NewRefreshToken(secret string, userID uint64, ttl time.Duration) (SignedToken, error) {
	return sign(secret, userID, ttl, uuid.NewString())
}

func sign(secret string, userID uint64, ttl time.Duration, jti string) (SignedToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
		ID:        jti,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return SignedToken{}, err
	}
	return SignedToken{Token: signed, Exp: exp}, nil
}

// ParseToken verifies signature, algorithm and expiry of raw and returns the
// user id held in its subject.
func ParseToken(secret, raw string) (uint64, error) {
	var claims jwt.RegisteredClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return 0, err
	}
	if !tok.Valid {
		return 0, jwt.ErrTokenInvalidClaims
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrBadSubject
	}
	return id, nil
}

// HashRefreshRaw returns the SHA-256 hex digest of a refresh token. Only
// the digest is stored, so a leaked users table cannot refresh sessions.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
