package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"tasknest/internal/db"
	"tasknest/internal/middleware"
	"tasknest/internal/services"
	"tasknest/internal/session"
	"tasknest/internal/utils"
)

type captureMailer struct {
	bodies []string
}

func (m *captureMailer) Send(_, _, body string) error {
	m.bodies = append(m.bodies, body)
	return nil
}

type testServer struct {
	router   *gin.Engine
	mailer   *captureMailer
	sessions *session.MemoryStore
	cookie   *http.Cookie
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := db.NewMemoryStore()
	sessions := session.NewMemoryStore()
	mailer := &captureMailer{}
	tokens, err := utils.NewTokenIssuer("router-test-secret", 15*time.Minute)
	require.NoError(t, err)

	accounts := services.NewAccountService(services.AccountDeps{
		Users:      store,
		Todos:      store,
		Sessions:   sessions,
		Hasher:     utils.NewBcryptHasher(bcrypt.MinCost),
		Tokens:     tokens,
		Mailer:     mailer,
		SessionTTL: time.Hour,
		Logger:     logger,
	})
	router := NewRouter(Deps{
		Accounts: accounts,
		Todos:    services.NewTodoService(store, logger),
		Sessions: sessions,
		Tokens:   tokens,
		Cookie:   middleware.SessionCookie{Name: "sid"},
		Registry: prometheus.NewRegistry(),
		Logger:   logger,
	})
	return &testServer{router: router, mailer: mailer, sessions: sessions}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(payload))
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}
	resp := httptest.NewRecorder()
	s.router.ServeHTTP(resp, req)
	return resp
}

func decode(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	return out
}

func (s *testServer) registerAndLogin(t *testing.T) {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/register", gin.H{"username": "alice", "email": "alice@x.com", "password": "secret1"})
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = s.do(t, http.MethodPost, "/login", gin.H{"email": "alice@x.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, resp.Code)
	for _, c := range resp.Result().Cookies() {
		if c.Name == "sid" {
			s.cookie = c
		}
	}
	require.NotNil(t, s.cookie, "login must set the session cookie")

	user := decode(t, resp)["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, false, user["isVerified"])
}

func TestTodoScenario(t *testing.T) {
	s := newTestServer(t)
	s.registerAndLogin(t)

	resp := s.do(t, http.MethodPost, "/add-todo", gin.H{"todo": "buy milk"})
	require.Equal(t, http.StatusOK, resp.Code)
	added := decode(t, resp)
	assert.Equal(t, float64(1), added["id"])
	assert.Equal(t, "buy milk", added["todo_text"])

	resp = s.do(t, http.MethodPost, "/edit-todo", gin.H{"id": 1, "todo_text": "buy bread"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = s.do(t, http.MethodGet, "/todos", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	todos := decode(t, resp)["todos"].([]any)
	require.Len(t, todos, 1)
	assert.Equal(t, "buy bread", todos[0].(map[string]any)["todo_text"])

	resp = s.do(t, http.MethodPost, "/delete-todo", gin.H{"id": 1})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = s.do(t, http.MethodGet, "/todos", nil)
	assert.Empty(t, decode(t, resp)["todos"])
}

func TestVerificationScenario(t *testing.T) {
	s := newTestServer(t)
	s.registerAndLogin(t)

	resp := s.do(t, http.MethodPost, "/verify-email/request", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Len(t, s.mailer.bodies, 1)
	code := regexp.MustCompile(`\b[0-9]{8}\b`).FindString(s.mailer.bodies[0])
	require.NotEmpty(t, code)

	wrong := "00000000"
	if code == wrong {
		wrong = "11111111"
	}
	resp = s.do(t, http.MethodPost, "/verify-email", gin.H{"code": wrong})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, false, decode(t, s.do(t, http.MethodGet, "/dashboard", nil))["user"].(map[string]any)["isVerified"])

	resp = s.do(t, http.MethodPost, "/verify-email", gin.H{"code": code})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, true, decode(t, resp)["isVerified"])

	dash := decode(t, s.do(t, http.MethodGet, "/dashboard", nil))
	assert.Equal(t, true, dash["user"].(map[string]any)["isVerified"])
}

func TestGuardRedirectsAnonymousAndLoggedOut(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/dashboard", "/todos"} {
		resp := s.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusFound, resp.Code)
		assert.Equal(t, "/login", resp.Header().Get("Location"))
	}

	s.registerAndLogin(t)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/dashboard", nil).Code)

	resp := s.do(t, http.MethodPost, "/logout", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = s.do(t, http.MethodGet, "/dashboard", nil)
	assert.Equal(t, http.StatusFound, resp.Code)
}

func TestLoginFailuresShareOneMessage(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/register", gin.H{"username": "alice", "email": "alice@x.com", "password": "secret1"})

	unknown := s.do(t, http.MethodPost, "/login", gin.H{"email": "bob@x.com", "password": "secret1"})
	wrong := s.do(t, http.MethodPost, "/login", gin.H{"email": "alice@x.com", "password": "wrong-pass"})

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, unknown.Code, wrong.Code)
	assert.Equal(t, unknown.Body.String(), wrong.Body.String())
	assert.Empty(t, wrong.Result().Cookies())
}

func TestRegisterErrors(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodPost, "/register", gin.H{"username": "al", "email": "alice@x.com", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	body := decode(t, resp)
	assert.Equal(t, "register", body["view"])
	assert.Equal(t, "username must be at least 3 characters", body["error"])

	s.do(t, http.MethodPost, "/register", gin.H{"username": "alice", "email": "alice@x.com", "password": "secret1"})
	resp = s.do(t, http.MethodPost, "/register", gin.H{"username": "alice", "email": "alice@x.com", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestPasswordResetFlow(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/register", gin.H{"username": "alice", "email": "alice@x.com", "password": "secret1"})

	resp := s.do(t, http.MethodPost, "/forgot-password", gin.H{"email": "nobody@x.com"})
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = s.do(t, http.MethodPost, "/forgot-password", gin.H{"email": "alice@x.com"})
	require.Equal(t, http.StatusSeeOther, resp.Code)
	location := resp.Header().Get("Location")
	assert.Equal(t, "/reset-password/"+url.PathEscape("alice@x.com"), location)

	resp = s.do(t, http.MethodGet, location, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "alice@x.com", decode(t, resp)["email"])

	resp = s.do(t, http.MethodPost, "/reset-password", gin.H{"email": "alice@x.com", "password": "newsecret"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = s.do(t, http.MethodPost, "/login", gin.H{"email": "alice@x.com", "password": "newsecret"})
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestEditProfile(t *testing.T) {
	s := newTestServer(t)
	s.registerAndLogin(t)

	resp := s.do(t, http.MethodPost, "/profile", gin.H{"username": "alicia"})
	require.Equal(t, http.StatusOK, resp.Code)

	dash := decode(t, s.do(t, http.MethodGet, "/dashboard", nil))
	assert.Equal(t, "alicia", dash["user"].(map[string]any)["username"])

	resp = s.do(t, http.MethodPost, "/profile", gin.H{"username": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/healthz", nil).Code)

	resp := s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "tasknest_http_requests_total")
}
