package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SessionCookie carries the opaque session ID to and from the client.
type SessionCookie struct {
	Name   string
	Secure bool
}

func (sc SessionCookie) Read(c *gin.Context) string {
	v, err := c.Cookie(sc.Name)
	if err != nil {
		return ""
	}
	return v
}

func (sc SessionCookie) Set(c *gin.Context, id string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sc.Name, id, int(ttl.Seconds()), "/", "", sc.Secure, true)
}

func (sc SessionCookie) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sc.Name, "", -1, "/", "", sc.Secure, true)
}
