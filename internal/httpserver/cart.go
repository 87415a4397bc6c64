package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"

	"github.com/gin-gonic/gin"
)

type cartView struct {
	*domain.Cart
	TotalCents int64 `json:"totalCents"`
}

// lineRequest takes the quantity as text so a non-numeric value reaches the
// service as zero instead of failing the bind.
type lineRequest struct {
	ProductID string      `json:"productId" form:"productId"`
	Variant   string      `json:"variant" form:"variant"`
	Quantity  json.Number `json:"quantity" form:"quantity"`
}

type checkoutRequest struct {
	SelectedItems []string `json:"selectedItems" form:"selectedItems"`
}

func (h *handlers) viewCart(c *gin.Context) {
	cart, err := h.deps.CartSvc.Get(c.Request.Context(), currentSession(c).UserID)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	page(c, gin.H{"user": currentSession(c), "cart": cartView{Cart: cart, TotalCents: cart.TotalCents()}})
}

// bindLine reads a cart line. Quantities that are not integers become zero:
// AddItem then defaults to one and UpdateItem rejects them.
func (h *handlers) bindLine(c *gin.Context) (cartsvc.LineInput, bool) {
	var req lineRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, domain.Invalid("Invalid request."), "/cart")
		return cartsvc.LineInput{}, false
	}
	qty, err := strconv.Atoi(strings.TrimSpace(string(req.Quantity)))
	if err != nil {
		qty = 0
	}
	return cartsvc.LineInput{
		ProductID: strings.TrimSpace(req.ProductID),
		Variant:   req.Variant,
		Quantity:  qty,
	}, true
}

func (h *handlers) addToCart(c *gin.Context) {
	in, ok := h.bindLine(c)
	if !ok {
		return
	}
	cart, err := h.deps.CartSvc.AddItem(c.Request.Context(), currentSession(c).UserID, in)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.fail(c, err, "/products")
		return
	case err != nil:
		h.fail(c, err, "/product/"+in.ProductID)
		return
	}
	if wantsJSON(c) {
		c.JSON(http.StatusOK, cartView{Cart: cart, TotalCents: cart.TotalCents()})
		return
	}
	c.Redirect(http.StatusFound, "/product/"+in.ProductID+"?added=true")
}

// updateCart sets a line quantity. Quantities below one are rejected before
// any write.
func (h *handlers) updateCart(c *gin.Context) {
	in, ok := h.bindLine(c)
	if !ok {
		return
	}
	if _, err := h.deps.CartSvc.UpdateItem(c.Request.Context(), currentSession(c).UserID, in); err != nil {
		h.fail(c, err, "/cart")
		return
	}
	done(c, http.StatusOK, nil, "/cart", "Cart updated")
}

func (h *handlers) removeFromCart(c *gin.Context) {
	in, ok := h.bindLine(c)
	if !ok {
		return
	}
	if _, err := h.deps.CartSvc.RemoveItem(c.Request.Context(), currentSession(c).UserID, in); err != nil {
		h.fail(c, err, "/cart")
		return
	}
	done(c, http.StatusOK, nil, "/cart", "Item removed")
}

func (h *handlers) checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBind(&req); err != nil || len(req.SelectedItems) == 0 {
		h.fail(c, domain.Invalid("Please select items to checkout."), "/cart")
		return
	}
	sess := currentSession(c)
	order, err := h.deps.OrderSvc.Checkout(c.Request.Context(), sess.UserID, req.SelectedItems)
	if err != nil {
		h.fail(c, err, "/cart")
		return
	}
	next := "/dashboard/customer"
	if sess.IsAdmin() {
		next = "/dashboard/admin/orders"
	}
	done(c, http.StatusCreated, order, next, "Order placed successfully")
}
