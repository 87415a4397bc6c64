package httpserver

import (
	"net/http"

	"storefront/internal/domain"
	usersvc "storefront/internal/service/user"

	"github.com/gin-gonic/gin"
)

type payRequest struct {
	PaymentMethod string `json:"paymentMethod" form:"paymentMethod"`
}

func (h *handlers) profile(c *gin.Context) {
	u, err := h.deps.AccountSvc.Profile(c.Request.Context(), currentSession(c).UserID)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	data := gin.H{"user": u}
	if c.Query("updated") != "" {
		data["success"] = "Profile updated successfully."
	}
	page(c, data)
}

func (h *handlers) updateProfile(c *gin.Context) {
	var in usersvc.ProfileInput
	if err := c.ShouldBind(&in); err != nil {
		h.fail(c, err, "/user/profile")
		return
	}
	u, err := h.deps.AccountSvc.UpdateProfile(c.Request.Context(), currentSession(c).UserID, in)
	if err != nil {
		h.fail(c, err, "/user/profile")
		return
	}
	if wantsJSON(c) {
		c.JSON(http.StatusOK, u)
		return
	}
	c.Redirect(http.StatusFound, "/user/profile?updated=1")
}

// purchaseHistory lists the user's orders grouped by status, newest first.
func (h *handlers) purchaseHistory(c *gin.Context) {
	sess := currentSession(c)
	grouped, err := h.deps.OrderSvc.GroupByStatus(c.Request.Context(), sess.UserID)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	page(c, gin.H{"user": sess, "ordersByStatus": grouped})
}

func (h *handlers) payOrder(c *gin.Context) {
	var req payRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, domain.Invalid("Please choose a payment method."), "/user/orders")
		return
	}
	if err := h.deps.OrderSvc.Pay(c.Request.Context(), currentSession(c).UserID, c.Param("id"), req.PaymentMethod); err != nil {
		h.fail(c, err, "/user/orders")
		return
	}
	done(c, http.StatusOK, nil, "/user/orders", "Payment received")
}

func (h *handlers) completeOrder(c *gin.Context) {
	if err := h.deps.OrderSvc.MarkCompleted(c.Request.Context(), currentSession(c).UserID, c.Param("id")); err != nil {
		h.fail(c, err, "/user/orders")
		return
	}
	done(c, http.StatusOK, nil, "/user/orders", "Order marked as completed")
}

func (h *handlers) customerDashboard(c *gin.Context) {
	sess := currentSession(c)
	summary, err := h.deps.OrderSvc.StatusCounts(c.Request.Context(), sess.UserID)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	page(c, gin.H{"user": sess, "statusCounts": summary.Counts, "totalOrders": summary.TotalOrders})
}
