package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"tasknest/internal/db"
	"tasknest/internal/models"
	"tasknest/internal/session"
	"tasknest/internal/utils"
)

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

// brokenUsers fails every call, standing in for an unreachable database.
type brokenUsers struct{}

var errDBDown = errors.New("db down")

func (brokenUsers) CreateUser(context.Context, *models.User) error { return errDBDown }
func (brokenUsers) UserByEmail(context.Context, string) (*models.User, error) {
	return nil, errDBDown
}
func (brokenUsers) UpdateUsername(context.Context, string, string) error { return errDBDown }
func (brokenUsers) UpdatePassword(context.Context, string, string) error { return errDBDown }
func (brokenUsers) SetVerificationCode(context.Context, string, string) error {
	return errDBDown
}
func (brokenUsers) MarkVerified(context.Context, string) error { return errDBDown }

type countingHasher struct {
	Hasher
	checks int
}

func (c *countingHasher) Check(password, hash string) bool {
	c.checks++
	return c.Hasher.Check(password, hash)
}

type testEnv struct {
	accounts *AccountService
	todos    *TodoService
	store    *db.MemoryStore
	sessions *session.MemoryStore
	mailer   *fakeMailer
	tokens   *utils.TokenIssuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := db.NewMemoryStore()
	sessions := session.NewMemoryStore()
	mailer := &fakeMailer{}
	tokens, err := utils.NewTokenIssuer("test-secret", 15*time.Minute)
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	accounts := NewAccountService(AccountDeps{
		Users:      store,
		Todos:      store,
		Sessions:   sessions,
		Hasher:     utils.NewBcryptHasher(bcrypt.MinCost),
		Tokens:     tokens,
		Mailer:     mailer,
		SessionTTL: time.Hour,
		Logger:     logger,
	})
	return &testEnv{
		accounts: accounts,
		todos:    NewTodoService(store, logger),
		store:    store,
		sessions: sessions,
		mailer:   mailer,
		tokens:   tokens,
	}
}
