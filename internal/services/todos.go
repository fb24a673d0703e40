package services

import (
	"context"
	"log/slog"

	"tasknest/internal/db"
	"tasknest/internal/models"
)

// TodoService manages todos owned by the authenticated user. Edit and
// Remove on an ID the owner does not have succeed without effect.
type TodoService struct {
	todos  db.TodoStore
	logger *slog.Logger
}

func NewTodoService(todos db.TodoStore, logger *slog.Logger) *TodoService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TodoService{todos: todos, logger: logger.With("component", "todos")}
}

func (s *TodoService) Add(ctx context.Context, owner, text string) (*models.Todo, error) {
	if owner == "" {
		return nil, ErrAuthRequired
	}
	todo := &models.Todo{OwnerEmail: owner, Text: text}
	if err := s.todos.CreateTodo(ctx, todo); err != nil {
		return nil, storageErr("create todo", err)
	}
	return todo, nil
}

func (s *TodoService) Edit(ctx context.Context, owner string, id uint, text string) error {
	if owner == "" {
		return ErrAuthRequired
	}
	if err := s.todos.UpdateTodoText(ctx, id, owner, text); err != nil {
		return storageErr("update todo", err)
	}
	return nil
}

func (s *TodoService) Remove(ctx context.Context, owner string, id uint) error {
	if owner == "" {
		return ErrAuthRequired
	}
	if err := s.todos.DeleteTodo(ctx, id, owner); err != nil {
		return storageErr("delete todo", err)
	}
	return nil
}

func (s *TodoService) ListFor(ctx context.Context, owner string) ([]models.Todo, error) {
	if owner == "" {
		return nil, ErrAuthRequired
	}
	todos, err := s.todos.TodosByOwner(ctx, owner)
	if err != nil {
		return nil, storageErr("list todos", err)
	}
	return todos, nil
}
