package middleware

import (
	"strings"

	transporthttp "github.com/classmate-hq/auth-service/internal/adapters/transport/http"
	"github.com/classmate-hq/auth-service/internal/app/auth/session"
	customErrors "github.com/classmate-hq/auth-service/internal/domain/auth/errors"
	"github.com/classmate-hq/auth-service/internal/domain/auth/model"
	"github.com/classmate-hq/auth-service/internal/domain/auth/repo"
	domaintoken "github.com/classmate-hq/auth-service/internal/domain/auth/token"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	userContextKey   = "auth.user"
	claimsContextKey = "auth.claims"

	bearerScheme = "bearer"
)

// CurrentUser returns the identity resolved by Authenticate, ok=false for
// anonymous (skipped) requests.
func CurrentUser(c *gin.Context) (model.User, bool) {
	v, ok := c.Get(userContextKey)
	if !ok {
		return model.User{}, false
	}
	user, ok := v.(model.User)
	return user, ok
}

func CurrentClaims(c *gin.Context) (domaintoken.Claims, bool) {
	v, ok := c.Get(claimsContextKey)
	if !ok {
		return domaintoken.Claims{}, false
	}
	claims, ok := v.(domaintoken.Claims)
	return claims, ok
}

// Authenticate validates the bearer access token of every request: parse,
// blacklist check, then user resolution from the snapshot cache with a store
// fallback. The service root and the introspection paths pass through as
// anonymous.
func Authenticate(codec domaintoken.Codec, sessions *session.Registry, users repo.UserRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		if canSkip(c.Request.URL.Path) {
			c.Next()
			return
		}

		raw, err := rawToken(c.GetHeader("Authorization"))
		if err != nil {
			transporthttp.AbortWithError(c, err)
			return
		}

		claims, err := codec.Parse(raw, domaintoken.TypeAccess)
		if err != nil {
			transporthttp.AbortWithError(c, err)
			return
		}

		uid, err := uuid.Parse(claims.Subject)
		if err != nil {
			transporthttp.AbortWithError(c, customErrors.ErrMalformedToken)
			return
		}

		blacklisted, err := sessions.IsBlacklisted(c.Request.Context(), uid, claims.ID)
		if err != nil {
			transporthttp.AbortWithError(c, err)
			return
		}
		if blacklisted {
			transporthttp.AbortWithError(c, customErrors.ErrSessionTerminated)
			return
		}

		user, err := resolveUser(c, sessions, users, uid)
		if err != nil {
			transporthttp.AbortWithError(c, err)
			return
		}
		if !user.IsActive {
			transporthttp.AbortWithError(c, customErrors.ErrAccountInactive)
			return
		}

		c.Set(userContextKey, user)
		c.Set(claimsContextKey, claims)
		c.Next()
	}
}

func resolveUser(c *gin.Context, sessions *session.Registry, users repo.UserRepo, uid uuid.UUID) (model.User, error) {
	snapshot, ok, err := sessions.CachedUser(c.Request.Context(), uid)
	if err != nil {
		return model.User{}, err
	}
	if ok {
		return snapshot.User(), nil
	}
	return users.FindUser(c.Request.Context(), repo.UserFilter{ID: &uid})
}

// rawToken enforces the exact "Bearer <token>" shape: exactly two fields,
// scheme compared case-insensitively, and the literal "null" the frontends
// sometimes send counts as no token at all.
func rawToken(header string) (string, error) {
	if header == "" {
		return "", customErrors.ErrMissingToken
	}
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return "", customErrors.ErrMissingToken
	}
	if !strings.EqualFold(parts[0], bearerScheme) {
		return "", customErrors.ErrWrongTokenScheme
	}
	if parts[1] == "" || parts[1] == "null" {
		return "", customErrors.ErrEmptyToken
	}
	return parts[1], nil
}

// canSkip lets the service root and the documentation/introspection paths
// through without credentials.
func canSkip(path string) bool {
	if path == "/" {
		return true
	}
	segments := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	for i, seg := range segments {
		if i > 1 {
			break
		}
		switch seg {
		case "docs", "swagger", "schema":
			return true
		}
	}
	return false
}
