package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	Username     string         `gorm:"size:64;not null" json:"username"`
	Email        string         `gorm:"index;size:191;not null" json:"email"`
	PasswordHash string         `gorm:"size:191;not null" json:"-"`
	Role         string         `gorm:"size:16;not null;default:user" json:"role"` // "user"/"admin"
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

// ListUsersQuery is the admin-side listing filter.
type ListUsersQuery struct {
	Offset      int
	Limit       int
	Search      string // matches email or username
	WithDeleted bool
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	// FindByID returns ErrNotFound for missing or soft-deleted users.
	FindByID(ctx context.Context, id string) (*User, error)
	// FindByEmail returns ErrNotFound for missing or soft-deleted users.
	FindByEmail(ctx context.Context, email string) (*User, error)
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, q ListUsersQuery) ([]User, int64, error)
}
