package httpserver

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
	cartsvc "storefront/internal/service/cart"
	categorysvc "storefront/internal/service/category"
	ordersvc "storefront/internal/service/order"
	productsvc "storefront/internal/service/product"
	reportsvc "storefront/internal/service/report"
	usersvc "storefront/internal/service/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/jackc/pgx/v5/pgxpool"
)

type productService interface {
	List(ctx context.Context, f productrepo.Filter) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Featured(ctx context.Context) ([]domain.Product, error)
	Newest(ctx context.Context) ([]domain.Product, error)
	Create(ctx context.Context, in productsvc.Input) (*domain.Product, error)
	Update(ctx context.Context, id string, in productsvc.Input) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

type categoryService interface {
	List(ctx context.Context) ([]domain.Category, error)
	Get(ctx context.Context, id string) (*domain.Category, error)
	Create(ctx context.Context, in categorysvc.Input) (*domain.Category, error)
	Update(ctx context.Context, id string, in categorysvc.Input) (*domain.Category, error)
	Delete(ctx context.Context, id string) error
}

type cartService interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID string, in cartsvc.LineInput) (*domain.Cart, error)
	UpdateItem(ctx context.Context, userID string, in cartsvc.LineInput) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID string, in cartsvc.LineInput) (*domain.Cart, error)
}

type orderService interface {
	Checkout(ctx context.Context, userID string, selected []string) (*domain.Order, error)
	Pay(ctx context.Context, userID, orderID, method string) error
	MarkCompleted(ctx context.Context, userID, orderID string) error
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
	Get(ctx context.Context, id string) (*domain.Order, error)
	GroupByStatus(ctx context.Context, userID string) (map[domain.OrderStatus][]domain.Order, error)
	StatusCounts(ctx context.Context, userID string) (*ordersvc.StatusSummary, error)
	ListAll(ctx context.Context) ([]domain.OrderWithOwner, error)
}

type reportService interface {
	Sales(ctx context.Context, q reportsvc.Query) (*reportsvc.Report, error)
}

type accountService interface {
	Register(ctx context.Context, in usersvc.RegisterInput) (*domain.User, error)
	Verify(ctx context.Context, token string) error
	Login(ctx context.Context, in usersvc.LoginInput) (*domain.User, *domain.Session, error)
	Logout(ctx context.Context, sessionID string) error
	ForgotPassword(ctx context.Context, in usersvc.ForgotInput) error
	CheckResetToken(ctx context.Context, token string) error
	ResetPassword(ctx context.Context, in usersvc.ResetInput) error
	Profile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, in usersvc.ProfileInput) (*domain.User, error)
	ListCustomers(ctx context.Context) ([]domain.UserStats, error)
	Ban(ctx context.Context, in usersvc.BanInput) error
	Unban(ctx context.Context, userID string) error
}

// Deps groups the services the router dispatches to.
type Deps struct {
	ProductSvc   productService
	CategorySvc  categoryService
	CartSvc      cartService
	OrderSvc     orderService
	ReportSvc    reportService
	AccountSvc   accountService
	Sessions     sessionResolver
	SessionStore sessions.Store
	CORSOrigins  []string
}

type handlers struct {
	deps   Deps
	logger *log.Logger
}

// buildRouter wires routes for the storefront and the admin back office.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if deps.SessionStore == nil || deps.Sessions == nil {
		return nil, errors.New("session store and resolver are required")
	}
	h := &handlers{deps: deps, logger: logger}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	app := router.Group("/", h.sessionMiddleware())

	app.GET("/", h.home)
	app.GET("/products", h.listProducts)
	app.GET("/product/:id", h.productDetail)

	auth := app.Group("/auth")
	auth.GET("/register", h.registerPage)
	auth.POST("/register", h.register)
	auth.GET("/verify/:token", h.verifyEmail)
	auth.GET("/login", h.loginPage)
	auth.POST("/login", h.login)
	auth.GET("/forgot", h.forgotPage)
	auth.POST("/forgot", h.forgotPassword)
	auth.GET("/reset/:token", h.resetPage)
	auth.POST("/reset", h.resetPassword)
	auth.GET("/logout", h.logout)

	cart := app.Group("/cart", requireAuth)
	cart.GET("", h.viewCart)
	cart.POST("/add", h.addToCart)
	cart.POST("/update", h.updateCart)
	cart.POST("/remove", h.removeFromCart)

	app.POST("/orders/checkout", requireAuth, h.checkout)

	account := app.Group("/user", requireAuth)
	account.GET("/profile", h.profile)
	account.POST("/profile", h.updateProfile)
	account.GET("/orders", h.purchaseHistory)
	account.POST("/orders/:id/pay", h.payOrder)
	account.POST("/orders/:id/complete", h.completeOrder)

	dashboard := app.Group("/dashboard", requireAuth)
	dashboard.GET("", h.dashboardRedirect)
	dashboard.GET("/customer", h.customerDashboard)

	admin := dashboard.Group("/admin", requireAdmin)
	admin.GET("", h.adminDashboard)

	admin.GET("/users", h.adminUsers)
	admin.POST("/users/ban", h.banUser)
	admin.POST("/users/unban", h.unbanUser)

	admin.GET("/categories", h.adminCategories)
	admin.GET("/categories/new", h.categoryForm)
	admin.POST("/categories/new", h.createCategory)
	admin.GET("/categories/edit/:id", h.categoryForm)
	admin.POST("/categories/edit/:id", h.updateCategory)
	admin.POST("/categories/delete/:id", h.deleteCategory)

	admin.GET("/products", h.adminProducts)
	admin.GET("/products/new", h.productForm)
	admin.POST("/products/new", h.createProduct)
	admin.GET("/products/edit/:id", h.productForm)
	admin.POST("/products/edit/:id", h.updateProduct)
	admin.POST("/products/delete/:id", h.deleteProduct)

	admin.GET("/orders", h.adminOrders)
	admin.GET("/orders/:id", h.adminOrder)
	admin.POST("/orders/:id/status", h.updateOrderStatus)

	admin.GET("/reports/sales", h.salesReport)

	return router, nil
}
