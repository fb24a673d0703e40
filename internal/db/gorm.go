package db

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"tasknest/internal/models"
)

// Store is the postgres-backed UserStore and TodoStore.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	err := s.db.WithContext(ctx).Create(u).Error
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) UpdateUsername(ctx context.Context, email, username string) error {
	return s.updateUser(ctx, email, map[string]any{"username": username})
}

func (s *Store) UpdatePassword(ctx context.Context, email, hash string) error {
	return s.updateUser(ctx, email, map[string]any{"password": hash})
}

func (s *Store) SetVerificationCode(ctx context.Context, email, code string) error {
	return s.updateUser(ctx, email, map[string]any{"verification_code": code})
}

func (s *Store) MarkVerified(ctx context.Context, email string) error {
	return s.updateUser(ctx, email, map[string]any{"is_verified": true, "verification_code": nil})
}

func (s *Store) updateUser(ctx context.Context, email string, fields map[string]any) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CreateTodo(ctx context.Context, t *models.Todo) error {
	return s.db.WithContext(ctx).Create(t).Error
}

func (s *Store) UpdateTodoText(ctx context.Context, id uint, owner, text string) error {
	return s.db.WithContext(ctx).
		Model(&models.Todo{}).
		Where("id = ? AND email = ?", id, owner).
		Update("todo_text", text).Error
}

func (s *Store) DeleteTodo(ctx context.Context, id uint, owner string) error {
	return s.db.WithContext(ctx).
		Where("id = ? AND email = ?", id, owner).
		Delete(&models.Todo{}).Error
}

func (s *Store) TodosByOwner(ctx context.Context, owner string) ([]models.Todo, error) {
	todos := []models.Todo{}
	err := s.db.WithContext(ctx).Where("email = ?", owner).Order("id").Find(&todos).Error
	if err != nil {
		return nil, err
	}
	return todos, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
