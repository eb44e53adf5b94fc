package authenticator

import (
	"context"
	"fmt"

	"github.com/alexedwards/argon2id"
	customErrors "github.com/classmate-hq/auth-service/internal/domain/auth/errors"
	"github.com/classmate-hq/auth-service/internal/domain/auth/model"
	"github.com/classmate-hq/auth-service/internal/domain/auth/repo"
	"github.com/classmate-hq/auth-service/internal/infra/config"
)

// Credentials are ephemeral and never persisted.
type Credentials struct {
	Username string
	Email    string
	Password string
}

// TenantPolicy is an optional hook applied after the account checks. The
// default policy allows everyone; multi-tenant deployments can reject logins
// whose tenant scoping does not match.
type TenantPolicy func(user model.User) error

type Authenticator struct {
	userRepo repo.UserRepo
	cache    repo.CacheStore
	cfg      *config.Config
	policy   TenantPolicy
}

func New(userRepo repo.UserRepo, cache repo.CacheStore, cfg *config.Config, policy TenantPolicy) *Authenticator {
	return &Authenticator{userRepo: userRepo, cache: cache, cfg: cfg, policy: policy}
}

// Authenticate resolves the identifier to exactly one user and verifies the
// password. Returned error kinds stay distinct (wrong password vs unknown
// user); the HTTP boundary collapses them into one opaque message so login
// responses cannot be used for user enumeration.
func (a *Authenticator) Authenticate(ctx context.Context, creds Credentials) (model.User, error) {
	var filter repo.UserFilter
	switch {
	case creds.Username != "":
		filter.Username = creds.Username
	case creds.Email != "":
		filter.Email = creds.Email
	default:
		return model.User{}, customErrors.NewInvalidArgument("email or username required")
	}

	user, err := a.userRepo.FindUser(ctx, filter)
	if err != nil {
		return model.User{}, err
	}

	ok, err := argon2id.ComparePasswordAndHash(creds.Password+a.cfg.PasswordPepper, user.PasswordHash)
	if err != nil {
		return model.User{}, customErrors.WrapInternal(err, "Authenticate")
	}
	if !ok {
		return model.User{}, customErrors.ErrInvalidCredentials
	}

	if user.IsDeleted {
		return model.User{}, customErrors.ErrAccountDeleted
	}
	if !user.IsActive {
		return model.User{}, customErrors.ErrAccountInactive
	}

	if a.policy != nil {
		if err := a.policy(user); err != nil {
			return model.User{}, err
		}
	}

	snapshot, err := model.SnapshotOf(user).JSON()
	if err != nil {
		return model.User{}, customErrors.WrapInternal(err, "serialize snapshot")
	}
	key := fmt.Sprintf("user:%s", user.ID)
	ttl := a.cfg.RefreshTokenTTL
	if err := a.cache.Set(ctx, key, snapshot, ttl); err != nil {
		return model.User{}, customErrors.WrapInternal(err, "cache snapshot")
	}

	return user, nil
}
