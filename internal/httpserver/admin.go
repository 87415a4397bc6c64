package httpserver

import (
	"net/http"
	"strings"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
	categorysvc "storefront/internal/service/category"
	productsvc "storefront/internal/service/product"
	reportsvc "storefront/internal/service/report"
	usersvc "storefront/internal/service/user"

	"github.com/gin-gonic/gin"
)

const (
	adminUsersPath      = "/dashboard/admin/users"
	adminCategoriesPath = "/dashboard/admin/categories"
	adminProductsPath   = "/dashboard/admin/products"
	adminOrdersPath     = "/dashboard/admin/orders"
)

type statusRequest struct {
	Status string `json:"status" form:"status"`
}

type userRequest struct {
	UserID string `json:"userId" form:"userId"`
}

func (h *handlers) adminDashboard(c *gin.Context) {
	users, err := h.deps.AccountSvc.ListCustomers(c.Request.Context())
	if err != nil {
		h.fail(c, err, "")
		return
	}
	page(c, gin.H{"user": currentSession(c), "users": users})
}

func (h *handlers) adminUsers(c *gin.Context) {
	h.adminDashboard(c)
}

func (h *handlers) banUser(c *gin.Context) {
	var in usersvc.BanInput
	if err := c.ShouldBind(&in); err != nil {
		h.fail(c, domain.Invalid("Failed to ban user"), adminUsersPath)
		return
	}
	if err := h.deps.AccountSvc.Ban(c.Request.Context(), in); err != nil {
		h.logger.Printf("ban user=%s error=%v", in.UserID, err)
		h.fail(c, domain.Invalid("Failed to ban user"), adminUsersPath)
		return
	}
	done(c, http.StatusOK, nil, adminUsersPath, "User banned successfully")
}

func (h *handlers) unbanUser(c *gin.Context) {
	var in userRequest
	if err := c.ShouldBind(&in); err != nil || strings.TrimSpace(in.UserID) == "" {
		h.fail(c, domain.Invalid("Failed to unban user"), adminUsersPath)
		return
	}
	if err := h.deps.AccountSvc.Unban(c.Request.Context(), in.UserID); err != nil {
		h.logger.Printf("unban user=%s error=%v", in.UserID, err)
		h.fail(c, domain.Invalid("Failed to unban user"), adminUsersPath)
		return
	}
	done(c, http.StatusOK, nil, adminUsersPath, "User unbanned successfully")
}

func (h *handlers) adminCategories(c *gin.Context) {
	categories, err := h.deps.CategorySvc.List(c.Request.Context())
	if err != nil {
		h.fail(c, err, "")
		return
	}
	page(c, gin.H{"user": currentSession(c), "categories": categories})
}

// categoryForm serves both the new and the edit form.
func (h *handlers) categoryForm(c *gin.Context) {
	data := gin.H{"user": currentSession(c)}
	if id := c.Param("id"); id != "" {
		cat, err := h.deps.CategorySvc.Get(c.Request.Context(), id)
		if err != nil {
			h.fail(c, err, adminCategoriesPath)
			return
		}
		data["category"] = cat
	}
	page(c, data)
}

func (h *handlers) createCategory(c *gin.Context) {
	var in categorysvc.Input
	if err := c.ShouldBind(&in); err != nil {
		h.fail(c, domain.Invalid("Invalid request."), adminCategoriesPath+"/new")
		return
	}
	cat, err := h.deps.CategorySvc.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err, adminCategoriesPath+"/new")
		return
	}
	done(c, http.StatusCreated, cat, adminCategoriesPath, "Category Created")
}

func (h *handlers) updateCategory(c *gin.Context) {
	id := c.Param("id")
	var in categorysvc.Input
	if err := c.ShouldBind(&in); err != nil {
		h.fail(c, domain.Invalid("Invalid request."), adminCategoriesPath+"/edit/"+id)
		return
	}
	cat, err := h.deps.CategorySvc.Update(c.Request.Context(), id, in)
	if err != nil {
		h.fail(c, err, adminCategoriesPath+"/edit/"+id)
		return
	}
	done(c, http.StatusOK, cat, adminCategoriesPath, "Category Updated")
}

func (h *handlers) deleteCategory(c *gin.Context) {
	if err := h.deps.CategorySvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err, adminCategoriesPath)
		return
	}
	done(c, http.StatusOK, nil, adminCategoriesPath, "Category Deleted")
}

func (h *handlers) adminProducts(c *gin.Context) {
	ctx := c.Request.Context()
	products, err := h.deps.ProductSvc.List(ctx, productrepo.Filter{
		Search:     c.Query("search"),
		CategoryID: strings.TrimSpace(c.Query("category")),
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
	page(c, gin.H{
		"user":             currentSession(c),
		"products":         products,
		"categories":       categories,
		"search":           c.Query("search"),
		"selectedCategory": c.Query("category"),
	})
}

func (h *handlers) productForm(c *gin.Context) {
	ctx := c.Request.Context()
	categories, err := h.deps.CategorySvc.List(ctx)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	data := gin.H{"user": currentSession(c), "categories": categories}
	if id := c.Param("id"); id != "" {
		p, err := h.deps.ProductSvc.Get(ctx, id)
		if err != nil {
			h.fail(c, err, adminProductsPath)
			return
		}
		data["product"] = p
	}
	page(c, data)
}

// bindProduct reads the product editor. Form posts carry the variant rows as
// parallel variantNames/variantPrices fields and hasVariants=on.
func bindProduct(c *gin.Context) (productsvc.Input, error) {
	var in productsvc.Input
	if strings.HasPrefix(c.ContentType(), "application/json") {
		err := c.ShouldBindJSON(&in)
		return in, err
	}
	in = productsvc.Input{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Price:       c.PostForm("price"),
		CategoryID:  c.PostForm("categoryId"),
		ImgURL:      c.PostForm("imgUrl"),
		HasVariants: c.PostForm("hasVariants") == "on" || c.PostForm("hasVariants") == "true",
	}
	names := c.PostFormArray("variantNames")
	prices := c.PostFormArray("variantPrices")
	for i, name := range names {
		if i >= len(prices) {
			break
		}
		in.Variants = append(in.Variants, productsvc.VariantInput{Name: name, Price: prices[i]})
	}
	return in, nil
}

func (h *handlers) createProduct(c *gin.Context) {
	in, err := bindProduct(c)
	if err != nil {
		h.fail(c, domain.Invalid("Invalid request."), adminProductsPath+"/new")
		return
	}
	p, err := h.deps.ProductSvc.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err, adminProductsPath+"/new")
		return
	}
	done(c, http.StatusCreated, p, adminProductsPath, "Product Created Successfully")
}

func (h *handlers) updateProduct(c *gin.Context) {
	id := c.Param("id")
	in, err := bindProduct(c)
	if err != nil {
		h.fail(c, domain.Invalid("Invalid request."), adminProductsPath+"/edit/"+id)
		return
	}
	p, err := h.deps.ProductSvc.Update(c.Request.Context(), id, in)
	if err != nil {
		h.fail(c, err, adminProductsPath+"/edit/"+id)
		return
	}
	done(c, http.StatusOK, p, adminProductsPath, "Product Updated Successfully")
}

func (h *handlers) deleteProduct(c *gin.Context) {
	if err := h.deps.ProductSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err, adminProductsPath)
		return
	}
	done(c, http.StatusOK, nil, adminProductsPath, "Product Deleted Successfully")
}

func (h *handlers) adminOrders(c *gin.Context) {
	orders, err := h.deps.OrderSvc.ListAll(c.Request.Context())
	if err != nil {
		h.fail(c, err, "")
		return
	}
	page(c, gin.H{"user": currentSession(c), "orders": orders, "statuses": domain.OrderStatuses})
}

func (h *handlers) adminOrder(c *gin.Context) {
	o, err := h.deps.OrderSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, adminOrdersPath)
		return
	}
	page(c, gin.H{"user": currentSession(c), "order": o})
}

func (h *handlers) updateOrderStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, domain.Invalid("Invalid status."), adminOrdersPath)
		return
	}
	if err := h.deps.OrderSvc.UpdateStatus(c.Request.Context(), c.Param("id"), domain.OrderStatus(req.Status)); err != nil {
		h.fail(c, err, adminOrdersPath)
		return
	}
	done(c, http.StatusOK, nil, adminOrdersPath, "Order status updated")
}

func (h *handlers) salesReport(c *gin.Context) {
	var q reportsvc.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		h.fail(c, domain.Invalid("Invalid report filter."), "")
		return
	}
	report, err := h.deps.ReportSvc.Sales(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	page(c, gin.H{"user": currentSession(c), "report": report})
}
