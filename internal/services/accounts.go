package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"tasknest/internal/db"
	"tasknest/internal/models"
	"tasknest/internal/session"
	"tasknest/internal/utils"
	"tasknest/internal/validation"
)

const (
	verificationSubject = "Your Email Verification Code"
	verificationBody    = "Enter this %d-digit code to verify your email:\n\n%s\n"
)

type Hasher interface {
	Hash(password string) (string, error)
	Check(password, hash string) bool
}

type TokenIssuer interface {
	Issue(email, username string) (string, error)
}

type Mailer interface {
	Send(to, subject, body string) error
}

type AccountDeps struct {
	Users      db.UserStore
	Todos      db.TodoStore
	Sessions   session.Store
	Hasher     Hasher
	Tokens     TokenIssuer
	Mailer     Mailer
	SessionTTL time.Duration
	Logger     *slog.Logger
}

// AccountService runs registration, login, password reset, profile edits and
// email verification.
type AccountService struct {
	users      db.UserStore
	todos      db.TodoStore
	sessions   session.Store
	hasher     Hasher
	tokens     TokenIssuer
	mailer     Mailer
	sessionTTL time.Duration
	logger     *slog.Logger

	newCode func() (string, error)
	now     func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAccountService(d AccountDeps) *AccountService {
	if d.SessionTTL <= 0 {
		d.SessionTTL = time.Hour
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &AccountService{
		users:      d.Users,
		todos:      d.Todos,
		sessions:   d.Sessions,
		hasher:     d.Hasher,
		tokens:     d.Tokens,
		mailer:     d.Mailer,
		sessionTTL: d.SessionTTL,
		logger:     d.Logger.With("component", "accounts"),
		newCode: func() (string, error) {
			return utils.GenerateNumericOTP(utils.VerificationCodeLength)
		},
		now: time.Now,
	}
}

// Dashboard is what a logged-in user lands on.
type Dashboard struct {
	Username   string        `json:"username"`
	Email      string        `json:"email"`
	IsVerified bool          `json:"isVerified"`
	Todos      []models.Todo `json:"todos"`
}

// Register creates an unverified user. It does not log the user in.
func (s *AccountService) Register(ctx context.Context, in validation.RegisterInput) (*models.User, error) {
	in, err := validation.Register(in)
	if err != nil {
		return nil, err
	}

	_, err = s.users.UserByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, ErrDuplicateEmail
	case !errors.Is(err, db.ErrNotFound):
		return nil, storageErr("find user", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, internalErr("hash password", err)
	}
	user := &models.User{Username: in.Username, Email: in.Email, PasswordHash: hash}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, db.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, storageErr("create user", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login checks credentials and opens a new session. A previous session ID,
// if the client presented one, is discarded.
func (s *AccountService) Login(ctx context.Context, in validation.LoginInput, previousID string) (*session.Session, error) {
	in, err := validation.Login(in)
	if err != nil {
		return nil, err
	}

	user, err := s.users.UserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			// same bcrypt work as a wrong password
			s.hasher.Check(in.Password, s.unknownUserHash())
			return nil, ErrUnknownEmail
		}
		return nil, storageErr("find user", err)
	}
	if !s.hasher.Check(in.Password, user.PasswordHash) {
		return nil, ErrInvalidCredential
	}

	token, err := s.tokens.Issue(user.Email, user.Username)
	if err != nil {
		return nil, internalErr("issue token", err)
	}

	if previousID != "" {
		if err := s.sessions.Delete(ctx, previousID); err != nil {
			s.logger.WarnContext(ctx, "could not drop previous session", "error", err)
		}
	}

	sess := session.New(s.now(), s.sessionTTL)
	sess.Email = user.Email
	sess.Username = user.Username
	sess.IsVerified = user.IsVerified
	sess.Token = token
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, storageErr("save session", err)
	}

	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return sess, nil
}

func (s *AccountService) unknownUserHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("unknown-user-placeholder")
		if err != nil {
			s.logger.Error("could not build placeholder hash", "error", err)
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func (s *AccountService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return storageErr("delete session", err)
	}
	return nil
}

// RequestPasswordReset returns the path of the reset form for email.
//
// The email alone is the capability to reset: there is no emailed token.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if _, err := s.users.UserByEmail(ctx, email); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return "", ErrUnknownEmail
		}
		return "", storageErr("find user", err)
	}
	return "/reset-password/" + url.PathEscape(email), nil
}

// ResetPassword overwrites the password of the user with the given email.
// It is not gated by a session or by proof of email ownership.
func (s *AccountService) ResetPassword(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if err := validation.Password(password); err != nil {
		return err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return internalErr("hash password", err)
	}
	if err := s.users.UpdatePassword(ctx, email, hash); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrUnknownEmail
		}
		return storageErr("update password", err)
	}
	s.logger.InfoContext(ctx, "password reset")
	return nil
}

// EditProfile renames the session's user and mirrors the change into the
// live session.
func (s *AccountService) EditProfile(ctx context.Context, sess *session.Session, username string) error {
	if sess == nil {
		return ErrAuthRequired
	}
	username, err := validation.Username(username)
	if err != nil {
		return err
	}
	if err := s.users.UpdateUsername(ctx, sess.Email, username); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrUnknownEmail
		}
		return storageErr("update username", err)
	}
	sess.Username = username
	if err := s.sessions.Save(ctx, sess); err != nil {
		return storageErr("save session", err)
	}
	return nil
}

// RequestVerification stores a fresh code on the user, then mails it. The
// code is persisted before sending, so a failed send leaves it in place and
// a later request replaces it.
func (s *AccountService) RequestVerification(ctx context.Context, sess *session.Session) error {
	if sess == nil {
		return ErrAuthRequired
	}
	code, err := s.newCode()
	if err != nil {
		return internalErr("generate code", err)
	}
	if err := s.users.SetVerificationCode(ctx, sess.Email, code); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrUnknownEmail
		}
		return storageErr("store code", err)
	}
	body := fmt.Sprintf(verificationBody, len(code), code)
	if err := s.mailer.Send(sess.Email, verificationSubject, body); err != nil {
		return internalErr("send verification email", err)
	}
	return nil
}

// SubmitVerificationCode marks the user verified when code matches the
// stored one. The stored code is single use.
func (s *AccountService) SubmitVerificationCode(ctx context.Context, sess *session.Session, code string) error {
	if sess == nil {
		return ErrAuthRequired
	}
	user, err := s.users.UserByEmail(ctx, sess.Email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrUnknownEmail
		}
		return storageErr("find user", err)
	}
	code = strings.TrimSpace(code)
	if user.VerificationCode == nil || code == "" ||
		subtle.ConstantTimeCompare([]byte(*user.VerificationCode), []byte(code)) != 1 {
		return ErrInvalidCode
	}
	if err := s.users.MarkVerified(ctx, sess.Email); err != nil {
		return storageErr("mark verified", err)
	}
	sess.IsVerified = true
	if err := s.sessions.Save(ctx, sess); err != nil {
		return storageErr("save session", err)
	}
	s.logger.InfoContext(ctx, "email verified", "user_id", user.ID)
	return nil
}

func (s *AccountService) Dashboard(ctx context.Context, sess *session.Session) (*Dashboard, error) {
	if sess == nil {
		return nil, ErrAuthRequired
	}
	todos, err := s.todos.TodosByOwner(ctx, sess.Email)
	if err != nil {
		return nil, storageErr("list todos", err)
	}
	return &Dashboard{
		Username:   sess.Username,
		Email:      sess.Email,
		IsVerified: sess.IsVerified,
		Todos:      todos,
	}, nil
}
