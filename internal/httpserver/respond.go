package httpserver

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
)

const genericErrorMessage = "Something went wrong. Try again."

// wantsJSON reports whether the client posted or accepts JSON. Everyone else is
// treated as a form client and gets redirects.
func wantsJSON(c *gin.Context) bool {
	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		return true
	}
	return strings.HasPrefix(c.ContentType(), "application/json")
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrEmptyCart), errors.Is(err, domain.ErrNothingSelected):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, domain.ErrExpiredToken):
		return http.StatusGone
	case errors.Is(err, domain.ErrExternalService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// messageFor is the text shown to the user for err.
func messageFor(err error) string {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.Is(err, domain.ErrEmptyCart):
		return "Your cart is empty."
	case errors.Is(err, domain.ErrNothingSelected):
		return "Invalid selection."
	case errors.Is(err, domain.ErrNotFound):
		return "Not found."
	case errors.Is(err, domain.ErrInvalidTransition):
		return "This order cannot be updated right now."
	case errors.Is(err, domain.ErrExpiredToken):
		return "Token expired."
	default:
		return genericErrorMessage
	}
}

// withQuery appends key=msg to path, keeping any existing query.
func withQuery(path, key, msg string) string {
	u, err := url.Parse(path)
	if err != nil {
		return path
	}
	q := u.Query()
	q.Set(key, msg)
	u.RawQuery = q.Encode()
	return u.String()
}

func (h *handlers) fail(c *gin.Context, err error, back string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	msg := messageFor(err)
	if wantsJSON(c) || back == "" {
		c.AbortWithStatusJSON(status, gin.H{"error": msg})
		return
	}
	c.Redirect(http.StatusFound, withQuery(back, "error", msg))
	c.Abort()
}

// done answers a successful mutation: JSON clients get payload, form clients
// are redirected to next with a success message.
func done(c *gin.Context, status int, payload any, next, msg string) {
	if wantsJSON(c) {
		if payload == nil {
			payload = gin.H{"success": true, "message": msg}
		}
		c.JSON(status, payload)
		return
	}
	if msg != "" {
		next = withQuery(next, "success", msg)
	}
	c.Redirect(http.StatusFound, next)
}

// flash collects the ?error= and ?success= messages for page payloads.
func flash(c *gin.Context) gin.H {
	out := gin.H{}
	if v := c.Query("error"); v != "" {
		out["error"] = v
	}
	if v := c.Query("success"); v != "" {
		out["success"] = v
	}
	return out
}

func page(c *gin.Context, data gin.H) {
	for k, v := range flash(c) {
		if _, taken := data[k]; !taken {
			data[k] = v
		}
	}
	c.JSON(http.StatusOK, data)
}
