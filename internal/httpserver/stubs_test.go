package httpserver

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
	cartsvc "storefront/internal/service/cart"
	categorysvc "storefront/internal/service/category"
	ordersvc "storefront/internal/service/order"
	productsvc "storefront/internal/service/product"
	reportsvc "storefront/internal/service/report"
	usersvc "storefront/internal/service/user"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type stubResolver struct {
	sessions map[string]*domain.Session
	idle     map[string]bool
}

func (r *stubResolver) Resolve(_ context.Context, id string) (*domain.Session, error) {
	if r.idle[id] {
		return nil, usersvc.ErrSessionIdle
	}
	s, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

type stubProductService struct {
	products  []domain.Product
	deleteErr error
	created   *productsvc.Input
}

func (s *stubProductService) List(context.Context, productrepo.Filter) ([]domain.Product, error) {
	return s.products, nil
}

func (s *stubProductService) Get(_ context.Context, id string) (*domain.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubProductService) Featured(context.Context) ([]domain.Product, error) {
	return s.products, nil
}

func (s *stubProductService) Newest(context.Context) ([]domain.Product, error) {
	return s.products, nil
}

func (s *stubProductService) Create(_ context.Context, in productsvc.Input) (*domain.Product, error) {
	s.created = &in
	return &domain.Product{ID: "new", Name: in.Name}, nil
}

func (s *stubProductService) Update(_ context.Context, id string, in productsvc.Input) (*domain.Product, error) {
	return &domain.Product{ID: id, Name: in.Name}, nil
}

func (s *stubProductService) Delete(context.Context, string) error {
	return s.deleteErr
}

type stubCategoryService struct{}

func (stubCategoryService) List(context.Context) ([]domain.Category, error) {
	return []domain.Category{{ID: "cat-1", Name: "Plush"}}, nil
}

func (stubCategoryService) Get(_ context.Context, id string) (*domain.Category, error) {
	return &domain.Category{ID: id, Name: "Plush"}, nil
}

func (stubCategoryService) Create(_ context.Context, in categorysvc.Input) (*domain.Category, error) {
	return &domain.Category{ID: "cat-new", Name: in.Name}, nil
}

func (stubCategoryService) Update(_ context.Context, id string, in categorysvc.Input) (*domain.Category, error) {
	return &domain.Category{ID: id, Name: in.Name}, nil
}

func (stubCategoryService) Delete(context.Context, string) error {
	return nil
}

type stubCartService struct {
	cart      domain.Cart
	err       error
	lastInput cartsvc.LineInput
}

func (s *stubCartService) Get(context.Context, string) (*domain.Cart, error) {
	return &s.cart, s.err
}

func (s *stubCartService) AddItem(_ context.Context, _ string, in cartsvc.LineInput) (*domain.Cart, error) {
	s.lastInput = in
	if s.err != nil {
		return nil, s.err
	}
	return &s.cart, nil
}

func (s *stubCartService) UpdateItem(_ context.Context, _ string, in cartsvc.LineInput) (*domain.Cart, error) {
	s.lastInput = in
	if in.Quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}
	return &s.cart, s.err
}

func (s *stubCartService) RemoveItem(_ context.Context, _ string, in cartsvc.LineInput) (*domain.Cart, error) {
	s.lastInput = in
	return &s.cart, s.err
}

type stubOrderService struct {
	checkoutErr error
	selected    []string
	payErr      error
	paidMethod  string
	statusErr   error
	newStatus   domain.OrderStatus
}

func (s *stubOrderService) Checkout(_ context.Context, userID string, selected []string) (*domain.Order, error) {
	s.selected = selected
	if s.checkoutErr != nil {
		return nil, s.checkoutErr
	}
	return &domain.Order{ID: "order-1", UserID: userID, Status: domain.StatusToPay}, nil
}

func (s *stubOrderService) Pay(_ context.Context, _, _, method string) error {
	s.paidMethod = method
	return s.payErr
}

func (s *stubOrderService) MarkCompleted(context.Context, string, string) error {
	return nil
}

func (s *stubOrderService) UpdateStatus(_ context.Context, _ string, status domain.OrderStatus) error {
	s.newStatus = status
	return s.statusErr
}

func (s *stubOrderService) Get(_ context.Context, id string) (*domain.Order, error) {
	return &domain.Order{ID: id}, nil
}

func (s *stubOrderService) GroupByStatus(context.Context, string) (map[domain.OrderStatus][]domain.Order, error) {
	return map[domain.OrderStatus][]domain.Order{}, nil
}

func (s *stubOrderService) StatusCounts(context.Context, string) (*ordersvc.StatusSummary, error) {
	return &ordersvc.StatusSummary{Counts: map[domain.OrderStatus]int{domain.StatusToPay: 2}, TotalOrders: 2}, nil
}

func (s *stubOrderService) ListAll(context.Context) ([]domain.OrderWithOwner, error) {
	return nil, nil
}

type stubReportService struct {
	query reportsvc.Query
	err   error
}

func (s *stubReportService) Sales(_ context.Context, q reportsvc.Query) (*reportsvc.Report, error) {
	s.query = q
	if s.err != nil {
		return nil, s.err
	}
	return &reportsvc.Report{DateRange: q.DateRange, Status: q.Status}, nil
}

type stubAccountService struct {
	user       *domain.User
	session    *domain.Session
	loginErr   error
	loggedOut  string
	banErr     error
	resetErr   error
	registered *usersvc.RegisterInput
}

func (s *stubAccountService) Register(_ context.Context, in usersvc.RegisterInput) (*domain.User, error) {
	s.registered = &in
	return s.user, nil
}

func (s *stubAccountService) Verify(context.Context, string) error {
	return nil
}

func (s *stubAccountService) Login(context.Context, usersvc.LoginInput) (*domain.User, *domain.Session, error) {
	return s.user, s.session, s.loginErr
}

func (s *stubAccountService) Logout(_ context.Context, id string) error {
	s.loggedOut = id
	return nil
}

func (s *stubAccountService) ForgotPassword(context.Context, usersvc.ForgotInput) error {
	return nil
}

func (s *stubAccountService) CheckResetToken(context.Context, string) error {
	return s.resetErr
}

func (s *stubAccountService) ResetPassword(context.Context, usersvc.ResetInput) error {
	return s.resetErr
}

func (s *stubAccountService) Profile(context.Context, string) (*domain.User, error) {
	return s.user, nil
}

func (s *stubAccountService) UpdateProfile(_ context.Context, _ string, in usersvc.ProfileInput) (*domain.User, error) {
	u := *s.user
	u.Address, u.ContactNumber = in.Address, in.ContactNumber
	return &u, nil
}

func (s *stubAccountService) ListCustomers(context.Context) ([]domain.UserStats, error) {
	return nil, nil
}

func (s *stubAccountService) Ban(context.Context, usersvc.BanInput) error {
	return s.banErr
}

func (s *stubAccountService) Unban(context.Context, string) error {
	return nil
}

type testEnv struct {
	router   *gin.Engine
	store    sessions.Store
	resolver *stubResolver
	products *stubProductService
	carts    *stubCartService
	orders   *stubOrderService
	reports  *stubReportService
	accounts *stubAccountService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	env := &testEnv{
		store: NewCookieStore("test-secret-0123456789abcdef0123", false),
		resolver: &stubResolver{
			sessions: map[string]*domain.Session{
				"customer-sid": {ID: "customer-sid", UserID: "u1", Name: "Ana", Role: domain.RoleCustomer, LastActivity: time.Now()},
				"admin-sid":    {ID: "admin-sid", UserID: "admin", Name: "Boss", Role: domain.RoleAdmin, LastActivity: time.Now()},
			},
			idle: map[string]bool{"idle-sid": true},
		},
		products: &stubProductService{products: []domain.Product{{ID: "p1", Name: "Bear", PriceCents: 1000, CategoryName: "Plush"}}},
		carts:    &stubCartService{},
		orders:   &stubOrderService{},
		reports:  &stubReportService{},
		accounts: &stubAccountService{},
	}
	router, err := buildRouter(logDiscard(), nil, Deps{
		ProductSvc:   env.products,
		CategorySvc:  stubCategoryService{},
		CartSvc:      env.carts,
		OrderSvc:     env.orders,
		ReportSvc:    env.reports,
		AccountSvc:   env.accounts,
		Sessions:     env.resolver,
		SessionStore: env.store,
	})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	gin.SetMode(gin.TestMode)
	env.router = router
	return env
}

// cookie returns a signed session cookie naming sid.
func (e *testEnv) cookie(t *testing.T, sid string) *http.Cookie {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s, _ := e.store.Get(req, sessionCookie)
	s.Values[sessionIDValue] = sid
	if err := s.Save(req, rec); err != nil {
		t.Fatalf("save cookie: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("no cookie written")
	}
	return cookies[0]
}

func (e *testEnv) do(t *testing.T, req *http.Request, sid string) *httptest.ResponseRecorder {
	t.Helper()
	if sid != "" {
		req.AddCookie(e.cookie(t, sid))
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}
