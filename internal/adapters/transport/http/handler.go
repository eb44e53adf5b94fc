package http

import (
	"net/http"
	"time"

	"github.com/classmate-hq/auth-service/internal/adapters/transport/http/dto"
	"github.com/classmate-hq/auth-service/internal/app/auth/authenticator"
	"github.com/classmate-hq/auth-service/internal/app/auth/session"
	customErrors "github.com/classmate-hq/auth-service/internal/domain/auth/errors"
	"github.com/classmate-hq/auth-service/internal/domain/auth/model"
	domaintoken "github.com/classmate-hq/auth-service/internal/domain/auth/token"
	"github.com/classmate-hq/auth-service/internal/infra/config"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const lastLoginLayout = "2006-01-02T15:04:05-0700"

type Handler struct {
	auth     *authenticator.Authenticator
	sessions *session.Registry
	cfg      *config.Config
	v        *validator.Validate
	log      *zap.Logger
}

func NewHandler(
	auth *authenticator.Authenticator,
	sessions *session.Registry,
	cfg *config.Config,
	v *validator.Validate,
	log *zap.Logger,
) *Handler {
	return &Handler{auth: auth, sessions: sessions, cfg: cfg, v: v, log: log}
}

// CurrentIdentity lets the middleware package expose the resolved identity
// without the handler importing it back (the router wires both).
type CurrentIdentity func(c *gin.Context) (model.User, domaintoken.Claims, bool)

// Register mounts the auth routes. Login and refresh are public; logout sits
// behind the request validator.
func (h *Handler) Register(r gin.IRouter, authGuard gin.HandlerFunc, identity CurrentIdentity) {
	auth := r.Group("/api/v2/auth")
	auth.POST("/login", h.Login)
	auth.POST("/refresh-token", h.Refresh)
	auth.POST("/logout", authGuard, h.Logout(identity))
}

func (h *Handler) Login(c *gin.Context) {
	var body dto.LoginDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, customErrors.NewInvalidArgument(err.Error()))
		return
	}
	if err := h.v.Struct(body); err != nil {
		AbortWithError(c, customErrors.NewInvalidArgument(err.Error()))
		return
	}
	// «null» и пробел — мусор от фронтенда, не повод дёргать хэшер
	if body.Password == "" || body.Password == " " || body.Password == "null" {
		AbortWithError(c, customErrors.ErrInvalidCredentials)
		return
	}

	user, err := h.auth.Authenticate(c.Request.Context(), authenticator.Credentials{
		Username: body.Login,
		Email:    body.Email,
		Password: body.Password,
	})
	if err != nil {
		h.log.Info("login rejected", zap.String("path", c.Request.URL.Path))
		AbortWithError(c, err)
		return
	}

	pair, err := h.sessions.Login(c.Request.Context(), user, h.cfg.SingleLogin)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	now := time.Now()
	c.JSON(http.StatusOK, dto.LoginResponse{
		JWT: dto.JWTPair{
			Refresh: pair.RefreshToken,
			Access:  pair.AccessToken,
		},
		Detail:    "Login successful",
		ID:        user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		Name:      user.FullName(),
		LastLogin: now.Format(lastLoginLayout),
		Status:    "success",
		IsStaff:   user.IsStaff,
	})
}

func (h *Handler) Refresh(c *gin.Context) {
	var body dto.RefreshDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, customErrors.NewInvalidArgument(err.Error()))
		return
	}
	if err := h.v.Struct(body); err != nil {
		AbortWithError(c, customErrors.NewInvalidArgument(err.Error()))
		return
	}

	pair, err := h.sessions.Refresh(c.Request.Context(), body.Refresh)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.RefreshResponse{
		Access:  pair.AccessToken,
		Refresh: pair.RefreshToken,
	})
}

// Logout terminates every session of the caller. Requires a valid access
// token, so it sits behind the auth middleware.
func (h *Handler) Logout(identity CurrentIdentity) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, claims, ok := identity(c)
		if !ok {
			AbortWithError(c, customErrors.ErrMissingToken)
			return
		}

		if _, err := h.sessions.Blacklist(c.Request.Context(), user.ID, claims.ID); err != nil {
			AbortWithError(c, err)
			return
		}
		h.log.Info("logout", zap.String("user_id", user.ID.String()))

		c.JSON(http.StatusOK, dto.DetailResponse{Detail: "Logout successful"})
	}
}
