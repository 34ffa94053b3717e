package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "shoutout"

// Claims is the payload inside every JWT token.
//
// Tokens are issued by the identity service. This service only needs to
// know WHO is calling: the user's department and role are looked up fresh
// on every request, so a role change takes effect without re-issuing the
// token.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed HS256 JWT for a user.
//
// The engine never logs anyone in; this exists for the seeding tools and
// for tests that need a valid bearer token.
//
// Why HS256 (symmetric)?
//   - The identity service and this engine share one secret. There is no
//     third party that needs to verify tokens without being able to mint
//     them, which is the case RS256 exists for.
//
// Why put the id in both UserID and Subject?
//   - "sub" is what generic JWT tooling (gateways, log scrubbers) reads;
//     UserID keeps the engine's own parsing a typed int64 with no strconv.
func GenerateToken(userID int64, secret string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", userID),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// ParseToken validates a JWT string and extracts the claims.
//
// It verifies:
//  1. The signature matches our secret (not tampered with).
//  2. The token hasn't expired (ExpiresAt is in the future).
//  3. The signing method is HMAC (prevents algorithm-switching attacks).
//  4. The token carries a positive user id.
func ParseToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(token *jwt.Token) (any, error) {
			// The algorithm-switching attack: a token that says "alg: none"
			// or "RS256" while we hand back an HMAC secret. Checking the
			// method type first means the secret is only ever used as an
			// HMAC key.
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		},
		jwt.WithIssuer(issuer),
		// A token without exp would be valid forever; refuse it outright.
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.UserID <= 0 {
		return nil, fmt.Errorf("token has no user id")
	}

	return claims, nil
}
