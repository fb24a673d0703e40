package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"tasknest/internal/session"
	"tasknest/internal/utils"
)

// LoginPath is where rejected requests are sent.
const LoginPath = "/login"

const sessionContextKey = "session"

type TokenVerifier interface {
	Verify(token string) (*utils.Claims, error)
}

// Authorize reports whether sess may reach a protected route: it must exist,
// carry a token, and the token must verify and name the session's email.
func Authorize(sess *session.Session, verifier TokenVerifier) bool {
	if sess == nil || sess.Token == "" {
		return false
	}
	claims, err := verifier.Verify(sess.Token)
	if err != nil {
		return false
	}
	return claims.Email == sess.Email
}

// RequireAuth loads the session named by the cookie and lets the request
// through only if Authorize passes. Every failure redirects to the login
// page the same way.
func RequireAuth(store session.Store, verifier TokenVerifier, cookie SessionCookie, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var sess *session.Session
		id := cookie.Read(c)
		if id != "" {
			s, err := store.Get(ctx, id)
			if err != nil && !errors.Is(err, session.ErrNotFound) {
				logger.WarnContext(ctx, "session lookup failed", "error", err)
			}
			sess = s
		}

		if !Authorize(sess, verifier) {
			if id != "" {
				cookie.Clear(c)
			}
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
			return
		}

		c.Set(sessionContextKey, sess)
		c.Request = c.Request.WithContext(session.NewContext(ctx, sess))
		c.Next()
	}
}

// CurrentSession returns the session RequireAuth attached to the request.
func CurrentSession(c *gin.Context) *session.Session {
	sess, _ := session.FromContext(c.Request.Context())
	return sess
}
