package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"storefront/internal/domain"
	usersvc "storefront/internal/service/user"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

const (
	sessionCookie  = "sid"
	sessionIDValue = "id"
	ctxSessionKey  = "session"
)

type sessionResolver interface {
	Resolve(ctx context.Context, id string) (*domain.Session, error)
}

// NewCookieStore signs the session id cookie with secret.
func NewCookieStore(secret string, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// sessionMiddleware attaches the server-side session named by the cookie. An
// idle session has already been evicted by the resolver; the client is sent
// to the login page.
func (h *handlers) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, _ := h.deps.SessionStore.Get(c.Request, sessionCookie)
		id, _ := cookie.Values[sessionIDValue].(string)
		if id == "" {
			c.Next()
			return
		}
		sess, err := h.deps.Sessions.Resolve(c.Request.Context(), id)
		switch {
		case err == nil:
			c.Set(ctxSessionKey, sess)
			c.Next()
		case errors.Is(err, usersvc.ErrSessionIdle):
			h.clearCookie(c)
			const target = "/auth/login?logout=inactive"
			if wantsJSON(c) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "You have been logged out due to inactivity.", "redirect": target})
				return
			}
			c.Redirect(http.StatusFound, target)
			c.Abort()
		case errors.Is(err, domain.ErrNotFound):
			h.clearCookie(c)
			c.Next()
		default:
			h.logger.Printf("session middleware: resolve error=%v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": genericErrorMessage})
		}
	}
}

func (h *handlers) saveSessionID(c *gin.Context, id string) error {
	cookie, _ := h.deps.SessionStore.Get(c.Request, sessionCookie)
	cookie.Values[sessionIDValue] = id
	return cookie.Save(c.Request, c.Writer)
}

func (h *handlers) clearCookie(c *gin.Context) {
	cookie, _ := h.deps.SessionStore.Get(c.Request, sessionCookie)
	delete(cookie.Values, sessionIDValue)
	cookie.Options.MaxAge = -1
	if err := cookie.Save(c.Request, c.Writer); err != nil {
		h.logger.Printf("session: clear cookie error=%v", err)
	}
}

func currentSession(c *gin.Context) *domain.Session {
	v, ok := c.Get(ctxSessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*domain.Session)
	return sess
}

func loginMessage(path string) string {
	switch {
	case strings.Contains(path, "/cart/add"):
		return "Please log in to add items to your cart."
	case strings.Contains(path, "/cart"):
		return "Please log in to view your cart."
	case strings.Contains(path, "/dashboard"):
		return "Please log in to access your dashboard."
	default:
		return "Please log in to view this page."
	}
}

func requireAuth(c *gin.Context) {
	if currentSession(c) != nil {
		c.Next()
		return
	}
	msg := loginMessage(c.Request.URL.Path)
	if wantsJSON(c) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
		return
	}
	c.Redirect(http.StatusFound, "/auth/login?error="+url.QueryEscape(msg))
	c.Abort()
}

func requireAdmin(c *gin.Context) {
	sess := currentSession(c)
	if sess == nil || !sess.IsAdmin() {
		c.String(http.StatusForbidden, "Access Denied")
		c.Abort()
		return
	}
	c.Next()
}
