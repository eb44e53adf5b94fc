package token

import (
	"github.com/classmate-hq/auth-service/internal/domain/auth/model"
	"github.com/golang-jwt/jwt/v5"
)

const (
	TypeRefresh = "refresh"
	TypeAccess  = "access"
)

// Claims is the payload carried by both refresh and access tokens. An access
// token is always a derivative of a refresh token: it keeps the parent's jti,
// subject and session tag, so revoking the refresh entry kills both.
type Claims struct {
	jwt.RegisteredClaims
	TokenType  string `json:"token_type"`
	SessionTag string `json:"x-auth-services-num,omitempty"`
	TenantID   string `json:"tenant_id,omitempty"`
}

type Codec interface {
	// IssueRefresh mints a refresh token for the user with a fresh jti
	// and an opaque session tag.
	IssueRefresh(user model.User) (signed string, claims Claims, err error)

	// DeriveAccess builds an access token from refresh claims, copying
	// everything except token_type and exp.
	DeriveAccess(refresh Claims) (signed string, claims Claims, err error)

	// Parse verifies signature, expiry and token_type of a raw token.
	Parse(raw string, expectedType string) (Claims, error)

	// Restamp re-issues refresh claims with a new iat/exp window, keeping
	// jti and all other claims intact (sliding refresh).
	Restamp(refresh Claims) (signed string, claims Claims, err error)

	RefreshTTLSeconds() int
}
