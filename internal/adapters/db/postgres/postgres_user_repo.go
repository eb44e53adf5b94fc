package postgres

import (
	"context"
	"errors"
	"time"

	customErrors "github.com/classmate-hq/auth-service/internal/domain/auth/errors"
	"github.com/classmate-hq/auth-service/internal/domain/auth/model"
	"github.com/classmate-hq/auth-service/internal/domain/auth/repo"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"gorm.io/gorm"
)

type PostgresUserRepo struct {
	db *gorm.DB
}

func NewPostgresUserRepo(db *gorm.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindUser resolves the filter to exactly one user. Zero rows and multiple
// rows both come back as ErrUserNotFound: an ambiguous lookup must never pick
// a row, and callers must not learn whether the identifier exists at all.
func (p *PostgresUserRepo) FindUser(ctx context.Context, f repo.UserFilter) (model.User, error) {
	q := p.db.WithContext(ctx).Model(&model.User{})
	switch {
	case f.ID != nil:
		q = q.Where("id = ?", *f.ID)
	case f.Username != "":
		q = q.Where("username = ?", f.Username)
	case f.Email != "":
		q = q.Where("lower(email) = lower(?)", f.Email)
	default:
		return model.User{}, customErrors.ErrUserNotFound
	}

	var users []model.User
	if err := q.Limit(2).Find(&users).Error; err != nil {
		return model.User{}, customErrors.WrapInternal(err, "FindUser")
	}
	if len(users) != 1 {
		return model.User{}, customErrors.ErrUserNotFound
	}
	return users[0], nil
}

func (p *PostgresUserRepo) SaveLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	res := p.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("last_login", at)
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "SaveLastLogin")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrUserNotFound
	}
	return nil
}

func (p *PostgresUserRepo) CreateUser(ctx context.Context, user model.User) (uuid.UUID, error) {
	res := p.db.WithContext(ctx).Create(&user)
	if err := res.Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return uuid.Nil, customErrors.ErrAlreadyExists
		}
		return uuid.Nil, customErrors.WrapInternal(err, "CreateUser")
	}
	return user.ID, nil
}

func (p *PostgresUserRepo) UpdateUser(ctx context.Context, user model.User) error {
	res := p.db.WithContext(ctx).Save(&user)
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "UpdateUser")
	}
	return nil
}

func (p *PostgresUserRepo) DeleteUser(ctx context.Context, id uuid.UUID) error {
	res := p.db.WithContext(ctx).Delete(&model.User{}, "id = ?", id)
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "DeleteUser")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotFound
	}
	return nil
}
