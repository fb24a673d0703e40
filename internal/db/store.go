package db

import (
	"context"
	"errors"

	"tasknest/internal/models"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// UserStore persists users keyed by email.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUsername(ctx context.Context, email, username string) error
	UpdatePassword(ctx context.Context, email, hash string) error
	SetVerificationCode(ctx context.Context, email, code string) error
	MarkVerified(ctx context.Context, email string) error
}

// TodoStore persists todos. Update and delete match on both id and owner;
// a miss is not an error.
type TodoStore interface {
	CreateTodo(ctx context.Context, t *models.Todo) error
	UpdateTodoText(ctx context.Context, id uint, owner, text string) error
	DeleteTodo(ctx context.Context, id uint, owner string) error
	TodosByOwner(ctx context.Context, owner string) ([]models.Todo, error)
}
