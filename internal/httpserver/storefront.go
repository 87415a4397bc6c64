package httpserver

import (
	"net/http"
	"strings"

	productrepo "storefront/internal/repository/product"

	"github.com/gin-gonic/gin"
)

func (h *handlers) home(c *gin.Context) {
	ctx := c.Request.Context()
	featured, err := h.deps.ProductSvc.Featured(ctx)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	newest, err := h.deps.ProductSvc.Newest(ctx)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	page(c, gin.H{"user": currentSession(c), "featuredProducts": featured, "newestProducts": newest})
}

// listProducts serves the public catalogue. category=all means no filter.
func (h *handlers) listProducts(c *gin.Context) {
	ctx := c.Request.Context()
	category := strings.TrimSpace(c.Query("category"))
	if category == "all" {
		category = ""
	}
	products, err := h.deps.ProductSvc.List(ctx, productrepo.Filter{
		Search:     c.Query("search"),
		CategoryID: category,
	})
	if err != nil {
		h.fail(c, err, "")
		return
	}
	categories, err := h.deps.CategorySvc.List(ctx)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	selected := category
	if selected == "" {
		selected = "all"
	}
	page(c, gin.H{
		"user":             currentSession(c),
		"products":         products,
		"categories":       categories,
		"search":           c.Query("search"),
		"selectedCategory": selected,
	})
}

func (h *handlers) productDetail(c *gin.Context) {
	p, err := h.deps.ProductSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "")
		return
	}
	data := gin.H{"user": currentSession(c), "product": p, "categoryName": p.CategoryName}
	if c.Query("added") == "true" {
		data["success"] = "Item added to cart."
	}
	page(c, data)
}

func (h *handlers) dashboardRedirect(c *gin.Context) {
	if currentSession(c).IsAdmin() {
		c.Redirect(http.StatusFound, "/dashboard/admin")
		return
	}
	c.Redirect(http.StatusFound, "/dashboard/customer")
}
