package httpserver

import (
	"errors"
	"net/http"

	"storefront/internal/domain"
	usersvc "storefront/internal/service/user"

	"github.com/gin-gonic/gin"
)

func (h *handlers) registerPage(c *gin.Context) {
	page(c, gin.H{})
}

func (h *handlers) register(c *gin.Context) {
	var in usersvc.RegisterInput
	if err := c.ShouldBind(&in); err != nil {
		h.fail(c, domain.Invalid("Invalid request."), "/auth/register")
		return
	}
	in.RemoteIP = c.ClientIP()
	if _, err := h.deps.AccountSvc.Register(c.Request.Context(), in); err != nil {
		h.fail(c, err, "/auth/register")
		return
	}
	if wantsJSON(c) {
		c.JSON(http.StatusCreated, gin.H{"message": usersvc.VerifyPendingText})
		return
	}
	c.Redirect(http.StatusFound, withQuery("/auth/login", "success", usersvc.VerifyPendingText))
}

func (h *handlers) verifyEmail(c *gin.Context) {
	err := h.deps.AccountSvc.Verify(c.Request.Context(), c.Param("token"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": usersvc.VerifiedText})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Invalid token."})
	case errors.Is(err, domain.ErrExpiredToken):
		c.JSON(http.StatusGone, gin.H{"message": "Token expired."})
	default:
		h.fail(c, err, "")
	}
}

// loginPage turns the reset/logout query flags into a page message.
func (h *handlers) loginPage(c *gin.Context) {
	data := gin.H{"user": currentSession(c)}
	if c.Query("reset") == "success" {
		data["message"] = "Password has been reset successfully. You can now log in."
	}
	switch c.Query("logout") {
	case "inactive":
		data["message"] = "You've been logged out due to inactivity. Please log in again."
	case "manual":
		data["message"] = "You have successfully logged out."
	}
	page(c, data)
}

func (h *handlers) login(c *gin.Context) {
	var in usersvc.LoginInput
	if err := c.ShouldBind(&in); err != nil {
		h.fail(c, usersvc.ErrInvalidCredentials, "/auth/login")
		return
	}
	in.RemoteIP = c.ClientIP()
	u, sess, err := h.deps.AccountSvc.Login(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err, "/auth/login")
		return
	}
	if err := h.saveSessionID(c, sess.ID); err != nil {
		h.fail(c, err, "/auth/login")
		return
	}
	next := "/dashboard/customer"
	if u.IsAdmin() {
		next = "/dashboard/admin"
	}
	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"user": u, "redirect": next})
		return
	}
	c.Redirect(http.StatusFound, next)
}

// logout evicts the server-side session before redirecting.
func (h *handlers) logout(c *gin.Context) {
	if sess := currentSession(c); sess != nil {
		if err := h.deps.AccountSvc.Logout(c.Request.Context(), sess.ID); err != nil {
			h.logger.Printf("logout: session=%s error=%v", sess.ID, err)
		}
	}
	h.clearCookie(c)
	c.Redirect(http.StatusFound, "/auth/login?logout=manual")
}

func (h *handlers) forgotPage(c *gin.Context) {
	page(c, gin.H{})
}

func (h *handlers) forgotPassword(c *gin.Context) {
	var in usersvc.ForgotInput
	if err := c.ShouldBind(&in); err != nil {
		h.fail(c, domain.Invalid("Invalid request."), "/auth/forgot")
		return
	}
	in.RemoteIP = c.ClientIP()
	if err := h.deps.AccountSvc.ForgotPassword(c.Request.Context(), in); err != nil {
		h.fail(c, err, "/auth/forgot")
		return
	}
	done(c, http.StatusOK, gin.H{"message": usersvc.ForgotPasswordText}, "/auth/forgot", usersvc.ForgotPasswordText)
}

func (h *handlers) resetPage(c *gin.Context) {
	token := c.Param("token")
	if err := h.deps.AccountSvc.CheckResetToken(c.Request.Context(), token); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"message": messageFor(err)})
			return
		}
		h.fail(c, err, "")
		return
	}
	page(c, gin.H{"token": token})
}

func (h *handlers) resetPassword(c *gin.Context) {
	var in usersvc.ResetInput
	if err := c.ShouldBind(&in); err != nil {
		h.fail(c, domain.Invalid("Invalid request."), "/auth/forgot")
		return
	}
	in.RemoteIP = c.ClientIP()
	if err := h.deps.AccountSvc.ResetPassword(c.Request.Context(), in); err != nil {
		back := "/auth/reset/" + in.ResetToken
		if errors.Is(err, usersvc.ErrInvalidResetToken) {
			back = "/auth/forgot"
		}
		h.fail(c, err, back)
		return
	}
	done(c, http.StatusOK, gin.H{"message": "Password has been reset successfully."}, "/auth/login?reset=success", "")
}
