package db

import (
	"context"
	"sort"
	"sync"

	"tasknest/internal/models"
)

// MemoryStore keeps users and todos in process memory. It is used when
// STORAGE_DRIVER=memory and in tests.
type MemoryStore struct {
	mu         sync.RWMutex
	users      map[string]models.User
	todos      map[uint]models.Todo
	nextUserID uint
	nextTodoID uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: map[string]models.User{},
		todos: map[uint]models.Todo{},
	}
}

func (m *MemoryStore) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[u.Email]; ok {
		return ErrDuplicateEmail
	}
	m.nextUserID++
	u.ID = m.nextUserID
	m.users[u.Email] = *u
	return nil
}

func (m *MemoryStore) UserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[email]
	if !ok {
		return nil, ErrNotFound
	}
	if u.VerificationCode != nil {
		code := *u.VerificationCode
		u.VerificationCode = &code
	}
	return &u, nil
}

func (m *MemoryStore) UpdateUsername(_ context.Context, email, username string) error {
	return m.update(email, func(u *models.User) { u.Username = username })
}

func (m *MemoryStore) UpdatePassword(_ context.Context, email, hash string) error {
	return m.update(email, func(u *models.User) { u.PasswordHash = hash })
}

func (m *MemoryStore) SetVerificationCode(_ context.Context, email, code string) error {
	return m.update(email, func(u *models.User) { u.VerificationCode = &code })
}

func (m *MemoryStore) MarkVerified(_ context.Context, email string) error {
	return m.update(email, func(u *models.User) {
		u.IsVerified = true
		u.VerificationCode = nil
	})
}

func (m *MemoryStore) update(email string, fn func(*models.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[email]
	if !ok {
		return ErrNotFound
	}
	fn(&u)
	m.users[email] = u
	return nil
}

func (m *MemoryStore) CreateTodo(_ context.Context, t *models.Todo) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextTodoID++
	t.ID = m.nextTodoID
	m.todos[t.ID] = *t
	return nil
}

func (m *MemoryStore) UpdateTodoText(_ context.Context, id uint, owner, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.todos[id]
	if !ok || t.OwnerEmail != owner {
		return nil
	}
	t.Text = text
	m.todos[id] = t
	return nil
}

func (m *MemoryStore) DeleteTodo(_ context.Context, id uint, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.todos[id]; ok && t.OwnerEmail == owner {
		delete(m.todos, id)
	}
	return nil
}

func (m *MemoryStore) TodosByOwner(_ context.Context, owner string) ([]models.Todo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Todo{}
	for _, t := range m.todos {
		if t.OwnerEmail == owner {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
