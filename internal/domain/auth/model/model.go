package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	IsStaff      bool
	IsActive     bool
	IsDeleted    bool
	TenantID     *uuid.UUID
	DateJoined   time.Time
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName powers the "name" field of the login response.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// Snapshot is the denormalized projection of a user that lives in the cache
// under user:{id}. It is read-only: request validation deserializes it instead
// of hitting the user store.
type Snapshot struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	IsStaff    bool      `json:"is_staff"`
	IsActive   bool      `json:"is_active"`
	DateJoined time.Time `json:"date_joined"`
}

func SnapshotOf(u User) Snapshot {
	return Snapshot{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		IsStaff:    u.IsStaff,
		IsActive:   u.IsActive,
		DateJoined: u.DateJoined,
	}
}

func (s Snapshot) JSON() (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func SnapshotFromJSON(data string) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

// User restores a model.User from the cached projection. Fields absent from
// the snapshot stay zero; the request path only needs identity and flags.
func (s Snapshot) User() User {
	return User{
		ID:         s.ID,
		Username:   s.Username,
		Email:      s.Email,
		FirstName:  s.FirstName,
		LastName:   s.LastName,
		IsStaff:    s.IsStaff,
		IsActive:   s.IsActive,
		DateJoined: s.DateJoined,
	}
}

type TokenPair struct {
	AccessToken     string
	RefreshToken    string
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	UserId          uuid.UUID
	RefreshTokenJTI string
}
