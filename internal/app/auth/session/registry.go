package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	customErrors "github.com/classmate-hq/auth-service/internal/domain/auth/errors"
	"github.com/classmate-hq/auth-service/internal/domain/auth/model"
	"github.com/classmate-hq/auth-service/internal/domain/auth/repo"
	domaintoken "github.com/classmate-hq/auth-service/internal/domain/auth/token"
	"github.com/google/uuid"
)

// Registry orchestrates session issuance and revocation. A refresh token is
// valid iff its token:{uid}:{jti} entry is still in the cache; access tokens
// are never tracked on their own — they die with the parent refresh entry.
type Registry struct {
	cache    repo.CacheStore
	codec    domaintoken.Codec
	userRepo repo.UserRepo
}

func New(cache repo.CacheStore, codec domaintoken.Codec, userRepo repo.UserRepo) *Registry {
	return &Registry{cache: cache, codec: codec, userRepo: userRepo}
}

func sessionKey(userID uuid.UUID, jti string) string {
	return fmt.Sprintf("token:%s:%s", userID, jti)
}

func sessionPattern(userID uuid.UUID) string {
	return fmt.Sprintf("token:%s:*", userID)
}

func userKey(userID uuid.UUID) string {
	return fmt.Sprintf("user:%s", userID)
}

// Login mints a refresh/access pair and registers the session. With
// singleLogin the eviction of prior sessions happens BEFORE the new entry is
// written, otherwise the pattern delete would wipe the token just created.
// Two concurrent logins for the same user can still race; last write wins and
// the loser's session dies on next validation.
func (r *Registry) Login(ctx context.Context, user model.User, singleLogin bool) (model.TokenPair, error) {
	rawRefresh, refresh, err := r.codec.IssueRefresh(user)
	if err != nil {
		return model.TokenPair{}, err
	}
	rawAccess, access, err := r.codec.DeriveAccess(refresh)
	if err != nil {
		return model.TokenPair{}, err
	}

	if singleLogin {
		if _, err := r.cache.DeleteMatching(ctx, sessionPattern(user.ID)); err != nil {
			return model.TokenPair{}, customErrors.WrapInternal(err, "evict prior sessions")
		}
	}

	ttl := time.Until(refresh.ExpiresAt.Time)

	entry, err := json.Marshal(refresh)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "serialize session entry")
	}
	if err := r.cache.Set(ctx, sessionKey(user.ID, refresh.ID), string(entry), ttl); err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "store session entry")
	}

	snapshot, err := model.SnapshotOf(user).JSON()
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "serialize user snapshot")
	}
	if err := r.cache.Set(ctx, userKey(user.ID), snapshot, ttl); err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "store user snapshot")
	}

	now := time.Now()
	if err := r.userRepo.SaveLastLogin(ctx, user.ID, now); err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "save last login")
	}

	return model.TokenPair{
		AccessToken:     rawAccess,
		RefreshToken:    rawRefresh,
		AccessTTL:       time.Until(access.ExpiresAt.Time),
		RefreshTTL:      ttl,
		UserId:          user.ID,
		RefreshTokenJTI: refresh.ID,
	}, nil
}

// Refresh re-stamps the refresh token's iat/exp window and derives a fresh
// access token. Blacklist status is deliberately not re-checked here: the
// refresh path stays cheap, and the session entry's own TTL bounds how long a
// revoked-but-unexpired token can keep sliding.
func (r *Registry) Refresh(ctx context.Context, rawRefresh string) (model.TokenPair, error) {
	claims, err := r.codec.Parse(rawRefresh, domaintoken.TypeRefresh)
	if err != nil {
		return model.TokenPair{}, err
	}

	newRefresh, restamped, err := r.codec.Restamp(claims)
	if err != nil {
		return model.TokenPair{}, err
	}
	newAccess, access, err := r.codec.DeriveAccess(restamped)
	if err != nil {
		return model.TokenPair{}, err
	}

	uid, err := uuid.Parse(restamped.Subject)
	if err != nil {
		return model.TokenPair{}, customErrors.ErrMalformedToken
	}

	return model.TokenPair{
		AccessToken:     newAccess,
		RefreshToken:    newRefresh,
		AccessTTL:       time.Until(access.ExpiresAt.Time),
		RefreshTTL:      time.Until(restamped.ExpiresAt.Time),
		UserId:          uid,
		RefreshTokenJTI: restamped.ID,
	}, nil
}

// IsBlacklisted treats absence of the session entry as revoked: deleted,
// expired and never-issued all look the same.
func (r *Registry) IsBlacklisted(ctx context.Context, userID uuid.UUID, jti string) (bool, error) {
	_, ok, err := r.cache.Get(ctx, sessionKey(userID, jti))
	if err != nil {
		return true, customErrors.WrapInternal(err, "blacklist check")
	}
	return !ok, nil
}

// Blacklist drops the user snapshot and every session entry of the user.
// Idempotent: a second call removes nothing and returns false.
func (r *Registry) Blacklist(ctx context.Context, userID uuid.UUID, jti string) (bool, error) {
	_ = jti // все сессии пользователя гасятся разом

	removedUser, err := r.cache.Delete(ctx, userKey(userID))
	if err != nil {
		return false, customErrors.WrapInternal(err, "delete user snapshot")
	}
	removedSessions, err := r.cache.DeleteMatching(ctx, sessionPattern(userID))
	if err != nil {
		return false, customErrors.WrapInternal(err, "delete sessions")
	}
	return removedUser || removedSessions > 0, nil
}

// CachedUser returns the denormalized snapshot, ok=false on a cache miss.
func (r *Registry) CachedUser(ctx context.Context, userID uuid.UUID) (model.Snapshot, bool, error) {
	raw, ok, err := r.cache.Get(ctx, userKey(userID))
	if err != nil {
		return model.Snapshot{}, false, customErrors.WrapInternal(err, "user snapshot lookup")
	}
	if !ok {
		return model.Snapshot{}, false, nil
	}
	snapshot, err := model.SnapshotFromJSON(raw)
	if err != nil {
		return model.Snapshot{}, false, customErrors.WrapInternal(err, "decode user snapshot")
	}
	return snapshot, true, nil
}
