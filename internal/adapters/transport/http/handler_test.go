package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/alicebob/miniredis/v2"
	redisstore "github.com/classmate-hq/auth-service/internal/adapters/db/redis"
	transporthttp "github.com/classmate-hq/auth-service/internal/adapters/transport/http"
	"github.com/classmate-hq/auth-service/internal/adapters/transport/http/middleware"
	"github.com/classmate-hq/auth-service/internal/app/auth/authenticator"
	"github.com/classmate-hq/auth-service/internal/app/auth/session"
	apptoken "github.com/classmate-hq/auth-service/internal/app/auth/token"
	customErrors "github.com/classmate-hq/auth-service/internal/domain/auth/errors"
	"github.com/classmate-hq/auth-service/internal/domain/auth/model"
	"github.com/classmate-hq/auth-service/internal/domain/auth/repo"
	domaintoken "github.com/classmate-hq/auth-service/internal/domain/auth/token"
	"github.com/classmate-hq/auth-service/internal/infra/config"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type userRepoStub struct{ users []model.User }

func (u *userRepoStub) FindUser(_ context.Context, f repo.UserFilter) (model.User, error) {
	var matches []model.User
	for _, user := range u.users {
		switch {
		case f.ID != nil:
			if user.ID == *f.ID {
				matches = append(matches, user)
			}
		case f.Username != "":
			if user.Username == f.Username {
				matches = append(matches, user)
			}
		case f.Email != "":
			if strings.EqualFold(user.Email, f.Email) {
				matches = append(matches, user)
			}
		}
	}
	if len(matches) != 1 {
		return model.User{}, customErrors.ErrUserNotFound
	}
	return matches[0], nil
}
func (u *userRepoStub) SaveLastLogin(_ context.Context, _ uuid.UUID, _ time.Time) error { return nil }
func (u *userRepoStub) CreateUser(_ context.Context, m model.User) (uuid.UUID, error) {
	return m.ID, nil
}
func (u *userRepoStub) UpdateUser(_ context.Context, _ model.User) error { return nil }
func (u *userRepoStub) DeleteUser(_ context.Context, _ uuid.UUID) error  { return nil }

const testPassword = "correct horse"

type apiFixture struct {
	router *gin.Engine
	redis  *miniredis.Miniredis
	user   model.User
}

func newAPIFixture(t *testing.T) *apiFixture {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		JWTSecret:       "api-test-secret",
		JWTIssuer:       "test",
		JWTAudience:     "test",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
		SingleLogin:     true,
		PasswordPepper:  "pepper",
	}

	hash, err := argon2id.CreateHash(testPassword+cfg.PasswordPepper, argon2id.DefaultParams)
	require.NoError(t, err)
	user := model.User{
		ID:           uuid.New(),
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: hash,
		FirstName:    "Alice",
		LastName:     "Liddell",
		IsActive:     true,
	}
	users := &userRepoStub{users: []model.User{user}}

	mr := miniredis.RunT(t)
	t.Cleanup(mr.Close)
	store := redisstore.NewRedisCacheStore(redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()}))

	codec := apptoken.NewCodec(cfg)
	registry := session.New(store, codec, users)
	auth := authenticator.New(users, store, cfg, nil)

	handler := transporthttp.NewHandler(auth, registry, cfg, validator.New(), zap.NewNop())
	guard := middleware.Authenticate(codec, registry, users)
	identity := func(c *gin.Context) (model.User, domaintoken.Claims, bool) {
		u, ok := middleware.CurrentUser(c)
		if !ok {
			return model.User{}, domaintoken.Claims{}, false
		}
		claims, ok := middleware.CurrentClaims(c)
		return u, claims, ok
	}

	r := gin.New()
	handler.Register(r, guard, identity)

	return &apiFixture{router: r, redis: mr, user: user}
}

func (f *apiFixture) post(t *testing.T, path string, body any, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	f.router.ServeHTTP(w, req)
	return w
}

func (f *apiFixture) login(t *testing.T) (access, refresh string) {
	t.Helper()
	w := f.post(t, "/api/v2/auth/login", gin.H{"email": f.user.Email, "password": testPassword}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		JWT struct {
			Refresh string `json:"refresh"`
			Access  string `json:"access"`
		} `json:"jwt"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.JWT.Access, body.JWT.Refresh
}

func TestLogin_Success(t *testing.T) {
	f := newAPIFixture(t)

	w := f.post(t, "/api/v2/auth/login", gin.H{"email": f.user.Email, "password": testPassword}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		JWT struct {
			Refresh string `json:"refresh"`
			Access  string `json:"access"`
		} `json:"jwt"`
		Detail   string `json:"detail"`
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Name     string `json:"name"`
		Status   string `json:"status"`
		IsStaff  bool   `json:"is_staff"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "Login successful", body.Detail)
	require.Equal(t, "success", body.Status)
	require.Equal(t, f.user.ID.String(), body.ID)
	require.Equal(t, "alice", body.Username)
	require.Equal(t, "Alice Liddell", body.Name)
	require.False(t, body.IsStaff)
	require.NotEmpty(t, body.JWT.Access)
	require.NotEmpty(t, body.JWT.Refresh)
	require.NotEqual(t, body.JWT.Access, body.JWT.Refresh)

	// сессия и снапшот легли в кэш
	require.True(t, f.redis.Exists("user:"+f.user.ID.String()))
}

func TestLogin_ByUsername(t *testing.T) {
	f := newAPIFixture(t)
	w := f.post(t, "/api/v2/auth/login", gin.H{"login": "alice", "password": testPassword}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newAPIFixture(t)

	w := f.post(t, "/api/v2/auth/login", gin.H{"email": f.user.Email, "password": "nope"}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "invalid_username_password")
	// провал аутентификации ничего не пишет в кэш
	require.Empty(t, f.redis.Keys())
}

func TestLogin_UnknownUserSameMessage(t *testing.T) {
	f := newAPIFixture(t)
	w := f.post(t, "/api/v2/auth/login", gin.H{"email": "ghost@example.com", "password": "x"}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "invalid_username_password")
}

func TestLogin_MissingPassword(t *testing.T) {
	f := newAPIFixture(t)
	w := f.post(t, "/api/v2/auth/login", gin.H{"email": f.user.Email}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_NullPassword(t *testing.T) {
	f := newAPIFixture(t)
	for _, password := range []string{"null", " "} {
		w := f.post(t, "/api/v2/auth/login", gin.H{"email": f.user.Email, "password": password}, "")
		require.Equal(t, http.StatusUnauthorized, w.Code, password)
		require.Contains(t, w.Body.String(), "invalid_username_password")
	}
}

func TestRefresh_Success(t *testing.T) {
	f := newAPIFixture(t)
	_, refresh := f.login(t)

	w := f.post(t, "/api/v2/auth/refresh-token", gin.H{"refresh": refresh}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Access)
	require.NotEmpty(t, body.Refresh)
	require.NotEqual(t, body.Access, body.Refresh)
}

func TestRefresh_AccessTokenRejected(t *testing.T) {
	f := newAPIFixture(t)
	access, _ := f.login(t)

	w := f.post(t, "/api/v2/auth/refresh-token", gin.H{"refresh": access}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "Token is invalid or expired")
}

func TestRefresh_MissingBody(t *testing.T) {
	f := newAPIFixture(t)
	w := f.post(t, "/api/v2/auth/refresh-token", gin.H{}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogout_TerminatesSession(t *testing.T) {
	f := newAPIFixture(t)
	access, _ := f.login(t)

	w := f.post(t, "/api/v2/auth/logout", gin.H{}, access)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Contains(t, w.Body.String(), "Logout successful")

	// повторный вызов с тем же токеном упирается в погашенную сессию
	w = f.post(t, "/api/v2/auth/logout", gin.H{}, access)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "session is terminated")
}

func TestLogout_RequiresToken(t *testing.T) {
	f := newAPIFixture(t)
	w := f.post(t, "/api/v2/auth/logout", gin.H{}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
