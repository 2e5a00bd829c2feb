package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpired reports whether the JWT carries an exp claim in the past.
// The signature is deliberately not verified: the server remains the
// authority on token validity. This only lets the client skip a doomed
// round trip for a token it already knows is stale. Tokens that do not
// parse or carry no exp claim are left for the server to judge.
func tokenExpired(token string, now time.Time) bool {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
