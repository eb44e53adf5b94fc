package repo

import (
	"context"
	"time"

	"github.com/classmate-hq/auth-service/internal/domain/auth/model"
	"github.com/google/uuid"
)

// UserFilter narrows a lookup to exactly one user. Username matches exactly,
// Email matches case-insensitively. A filter that matches zero or more than
// one row must surface errors.ErrUserNotFound — ambiguous is never "pick one".
type UserFilter struct {
	ID       *uuid.UUID
	Username string
	Email    string
}

type UserRepo interface {
	FindUser(ctx context.Context, f UserFilter) (model.User, error)

	SaveLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error

	CreateUser(ctx context.Context, u model.User) (uuid.UUID, error)

	UpdateUser(ctx context.Context, u model.User) error

	DeleteUser(ctx context.Context, id uuid.UUID) error
}
