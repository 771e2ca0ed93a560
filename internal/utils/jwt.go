package utils // package utils provides helper functions for token creation and hashing

import (
	"time" // expiry computation

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// AccessToken is a signed HS256 JWT together with its expiry. The token is
// sent in the Authorization header when calling protected endpoints.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for a user. Claims carry the
// subject (user ID), the role, the user's wallet address, expiration and
// issued-at. The wallet claim lets handlers resolve the caller's funding
// account without a user lookup on every purchase.
func NewAccessToken(secret string, userID uint64, role, wallet string, ttlMin int) (AccessToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":    userID,
		"role":   role,
		"wallet": wallet,
		"exp":    exp.Unix(),
		"iat":    time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}
