package token

import (
	"errors"
	"strings"
	"time"

	customErrors "github.com/classmate-hq/auth-service/internal/domain/auth/errors"
	"github.com/classmate-hq/auth-service/internal/domain/auth/model"
	domaintoken "github.com/classmate-hq/auth-service/internal/domain/auth/token"
	"github.com/classmate-hq/auth-service/internal/infra/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type CodecImpl struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	audience   string
	now        func() time.Time
}

func NewCodec(cfg *config.Config) *CodecImpl {
	return &CodecImpl{
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		issuer:     cfg.JWTIssuer,
		audience:   cfg.JWTAudience,
		now:        time.Now,
	}
}

func (c *CodecImpl) IssueRefresh(user model.User) (string, domaintoken.Claims, error) {
	now := c.now()

	claims := domaintoken.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.refreshTTL)),
			ID:        uuid.NewString(),
		},
		TokenType:  domaintoken.TypeRefresh,
		SessionTag: strings.ReplaceAll(uuid.NewString(), "-", ""),
	}
	if user.TenantID != nil {
		claims.TenantID = user.TenantID.String()
	}

	signed, err := c.sign(claims)
	if err != nil {
		return "", domaintoken.Claims{}, customErrors.WrapInternal(err, "sign refresh token")
	}
	return signed, claims, nil
}

// DeriveAccess copies every claim from the refresh token except token_type
// and exp. The jti stays the parent's, so access validity follows the refresh
// session entry.
func (c *CodecImpl) DeriveAccess(refresh domaintoken.Claims) (string, domaintoken.Claims, error) {
	now := c.now()
	if expired(refresh, now) {
		return "", domaintoken.Claims{}, customErrors.ErrExpiredToken
	}

	access := refresh
	access.TokenType = domaintoken.TypeAccess
	access.ExpiresAt = jwt.NewNumericDate(now.Add(c.accessTTL))

	signed, err := c.sign(access)
	if err != nil {
		return "", domaintoken.Claims{}, customErrors.WrapInternal(err, "sign access token")
	}
	return signed, access, nil
}

func (c *CodecImpl) Restamp(refresh domaintoken.Claims) (string, domaintoken.Claims, error) {
	now := c.now()

	restamped := refresh
	restamped.IssuedAt = jwt.NewNumericDate(now)
	restamped.ExpiresAt = jwt.NewNumericDate(now.Add(c.refreshTTL))

	signed, err := c.sign(restamped)
	if err != nil {
		return "", domaintoken.Claims{}, customErrors.WrapInternal(err, "sign refresh token")
	}
	return signed, restamped, nil
}

func (c *CodecImpl) Parse(raw string, expectedType string) (domaintoken.Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &domaintoken.Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, customErrors.ErrInvalidSignature
		}
		return c.secret, nil
	}, jwt.WithoutClaimsValidation())

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return domaintoken.Claims{}, customErrors.ErrInvalidSignature
		case errors.Is(err, customErrors.ErrInvalidSignature):
			return domaintoken.Claims{}, customErrors.ErrInvalidSignature
		default:
			return domaintoken.Claims{}, customErrors.ErrMalformedToken
		}
	}

	claims, ok := parsed.Claims.(*domaintoken.Claims)
	if !ok {
		return domaintoken.Claims{}, customErrors.ErrMalformedToken
	}

	if claims.ExpiresAt == nil {
		return domaintoken.Claims{}, customErrors.ErrMalformedToken
	}
	// границa включительно: now == exp уже протухший
	if expired(*claims, c.now()) {
		return domaintoken.Claims{}, customErrors.ErrExpiredToken
	}

	if c.issuer != "" && claims.Issuer != c.issuer {
		return domaintoken.Claims{}, customErrors.ErrInvalidSignature
	}
	if c.audience != "" && !hasAudience(claims.Audience, c.audience) {
		return domaintoken.Claims{}, customErrors.ErrInvalidSignature
	}

	if claims.TokenType != expectedType {
		return domaintoken.Claims{}, customErrors.ErrWrongTokenType
	}

	return *claims, nil
}

func (c *CodecImpl) RefreshTTLSeconds() int {
	return int(c.refreshTTL.Seconds())
}

func (c *CodecImpl) sign(claims domaintoken.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Timestamps compare in whole seconds since epoch.
func expired(claims domaintoken.Claims, now time.Time) bool {
	return claims.ExpiresAt != nil && now.Unix() >= claims.ExpiresAt.Unix()
}

func hasAudience(aud jwt.ClaimStrings, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}
	return false
}
