package auth

import (
	"log/slog"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates session tokens signed with HMAC-SHA256 and extracts
// the principal they carry. A Verifier never returns an error: any token
// that fails validation for any reason is reported as absent, so callers
// treat "no token" and "bad token" identically.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewVerifier creates a Verifier checking signatures against secret and
// requiring the given issuer claim.
func NewVerifier(secret []byte, issuer string) *Verifier {
	return &Verifier{
		secret: secret,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithExpirationRequired(),
		),
	}
}

// sessionClaims is the expected shape of a session token payload.
type sessionClaims struct {
	Email    string `json:"email"`
	Role     string `json:"role"`
	TenantID string `json:"tenantId"`
	jwt.RegisteredClaims
}

// Verify parses and validates a raw token string. The second return value
// is false when the token is empty, malformed, forged, expired, or issued
// by anyone else; in that case the principal is nil.
func (v *Verifier) Verify(raw string) (*Principal, bool) {
	if raw == "" {
		return nil, false
	}

	claims := &sessionClaims{}
	token, err := v.parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		slog.Debug("session token rejected", slog.String("error", err.Error()))
		return nil, false
	}
	if !token.Valid {
		return nil, false
	}
	if claims.Subject == "" {
		slog.Debug("session token rejected", slog.String("error", "missing subject claim"))
		return nil, false
	}

	return &Principal{
		UserID:   claims.Subject,
		Email:    claims.Email,
		Role:     ParseRole(claims.Role),
		TenantID: claims.TenantID,
	}, true
}
