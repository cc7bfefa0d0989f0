package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	cartsvc "github.com/sellora/sellora-backend/internal/cart"
	notifsvc "github.com/sellora/sellora-backend/internal/notifications"
	ordersvc "github.com/sellora/sellora-backend/internal/orders"
	"github.com/sellora/sellora-backend/internal/pricing"
	productsvc "github.com/sellora/sellora-backend/internal/products"
	promosrepo "github.com/sellora/sellora-backend/internal/promos"
	sellersvc "github.com/sellora/sellora-backend/internal/sellers"
	pkgauth "github.com/sellora/sellora-backend/pkg/auth"
	"github.com/sellora/sellora-backend/pkg/auth/session"
	"github.com/sellora/sellora-backend/pkg/config"
	"github.com/sellora/sellora-backend/pkg/db/models"
	"github.com/sellora/sellora-backend/pkg/enums"
	"github.com/sellora/sellora-backend/pkg/logger"
	"github.com/sellora/sellora-backend/pkg/pagination"
	"github.com/sellora/sellora-backend/pkg/redis"
	"github.com/sellora/sellora-backend/pkg/storage/assets"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubPromoRepo struct{}

func (s stubPromoRepo) WithTx(tx *gorm.DB) promosrepo.Repository {
	return s
}

func (stubPromoRepo) FindByCode(ctx context.Context, code string) (*models.Promo, error) {
	return nil, gorm.ErrRecordNotFound
}

type stubProductService struct{}

func (stubProductService) Create(ctx context.Context, input productsvc.CreateProductInput) (*productsvc.ProductView, error) {
	panic("unimplemented")
}

func (stubProductService) Update(ctx context.Context, sellerID, productID uuid.UUID, input productsvc.UpdateProductInput) (*productsvc.ProductView, error) {
	panic("unimplemented")
}

func (stubProductService) Hold(ctx context.Context, sellerID, productID uuid.UUID) error {
	panic("unimplemented")
}

func (stubProductService) Restock(ctx context.Context, sellerID, productID uuid.UUID, qty int) (*productsvc.ProductView, error) {
	panic("unimplemented")
}

func (stubProductService) SoftDelete(ctx context.Context, sellerID, productID uuid.UUID) error {
	panic("unimplemented")
}

func (stubProductService) Get(ctx context.Context, productID uuid.UUID) (*productsvc.ProductView, error) {
	panic("unimplemented")
}

func (stubProductService) ListPublic(ctx context.Context, params pagination.Params) (*productsvc.Page, error) {
	return &productsvc.Page{}, nil
}

func (stubProductService) ListForSeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*productsvc.Page, error) {
	return &productsvc.Page{}, nil
}

type stubCartService struct{}

func (stubCartService) AddOrIncrement(ctx context.Context, ownerKey string, productID uuid.UUID, delta int) (*models.CartLine, error) {
	panic("unimplemented")
}

func (stubCartService) SetQuantity(ctx context.Context, ownerKey string, productID uuid.UUID, qty int) (*models.CartLine, error) {
	panic("unimplemented")
}

func (stubCartService) Remove(ctx context.Context, ownerKey string, productID uuid.UUID) error {
	panic("unimplemented")
}

func (stubCartService) Snapshot(ctx context.Context, ownerKey string) (*cartsvc.Snapshot, error) {
	return &cartsvc.Snapshot{}, nil
}

func (stubCartService) MergeInto(ctx context.Context, anonKey, ownerKey string) (*cartsvc.MergeResult, error) {
	panic("unimplemented")
}

func (stubCartService) Count(ctx context.Context, ownerKey string) (int64, error) {
	return 0, nil
}

type stubOrderService struct{}

func (stubOrderService) PlaceOrder(ctx context.Context, input ordersvc.PlaceOrderInput) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrderService) Approve(ctx context.Context, orderID uuid.UUID, actor ordersvc.Actor) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrderService) Reject(ctx context.Context, orderID uuid.UUID, actor ordersvc.Actor, reason string) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrderService) Ship(ctx context.Context, orderID uuid.UUID, actor ordersvc.Actor) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrderService) Cancel(ctx context.Context, orderID uuid.UUID, actor ordersvc.Actor) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrderService) Rollback(ctx context.Context, orderID uuid.UUID, actor ordersvc.Actor) error {
	panic("unimplemented")
}

func (stubOrderService) Get(ctx context.Context, orderID uuid.UUID, actor ordersvc.Actor) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrderService) ListForOwner(ctx context.Context, ownerKey string, params pagination.Params) (*ordersvc.Page, error) {
	return &ordersvc.Page{}, nil
}

func (stubOrderService) ListByStatus(ctx context.Context, status enums.OrderStatus, params pagination.Params) (*ordersvc.Page, error) {
	return &ordersvc.Page{}, nil
}

type stubSellerService struct{}

func (stubSellerService) Register(ctx context.Context, input sellersvc.RegisterInput) (*sellersvc.SellerView, error) {
	panic("unimplemented")
}

func (stubSellerService) Update(ctx context.Context, sellerID uuid.UUID, input sellersvc.UpdateInput) (*sellersvc.SellerView, error) {
	panic("unimplemented")
}

func (stubSellerService) Get(ctx context.Context, sellerID uuid.UUID) (*sellersvc.SellerView, error) {
	panic("unimplemented")
}

func (stubSellerService) GetBySlug(ctx context.Context, slug string) (*sellersvc.SellerView, error) {
	panic("unimplemented")
}

type stubNotificationService struct{}

func (stubNotificationService) List(ctx context.Context, params notifsvc.ListParams) (*notifsvc.ListResult, error) {
	return &notifsvc.ListResult{}, nil
}

func (stubNotificationService) MarkRead(ctx context.Context, ownerKey string, notificationID uuid.UUID) error {
	return nil
}

func (stubNotificationService) MarkAllRead(ctx context.Context, ownerKey string) (int64, error) {
	return 0, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	resolver, err := assets.NewResolver(config.AssetsConfig{PublicBaseURL: "https://assets.example.com"})
	if err != nil {
		t.Fatalf("build resolver: %v", err)
	}
	calculator := pricing.NewCalculator(stubPromoRepo{}, config.ShippingConfig{FlatRateCents: 500})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		resolver,
		stubProductService{},
		stubCartService{},
		calculator,
		stubOrderService{},
		stubSellerService{},
		stubNotificationService{},
	)
}

func buildToken(t *testing.T, cfg *config.Config, operator bool) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID:   uuid.New(),
		Operator: operator,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestPublicProductsNeedNoCredentials(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public products got %d", resp.Code)
	}
}

func TestSessionMintIsPublic(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for session mint got %d", resp.Code)
	}
}

func TestCartRejectsMissingCredentials(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without credentials got %d", resp.Code)
	}
}

func TestCartAcceptsSessionToken(t *testing.T) {
	router := newTestRouter(t, testConfig())
	token, err := session.NewToken()
	if err != nil {
		t.Fatalf("mint session token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("X-Session-Token", token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with session token got %d", resp.Code)
	}
}

func TestCartAcceptsBearerJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, false))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with jwt got %d", resp.Code)
	}
}

func TestOrdersRequireIdentity(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)
	token, err := session.NewToken()
	if err != nil {
		t.Fatalf("mint session token: %v", err)
	}

	anon := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	anon.Header.Set("X-Session-Token", token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, anon)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous orders list got %d", resp.Code)
	}

	identified := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	identified.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, false))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, identified)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for identified orders list got %d", resp.Code)
	}
}

func TestAdminOrdersRequireOperator(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	buyer := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
	buyer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, false))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, buyer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-operator got %d", resp.Code)
	}

	operator := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
	operator.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, true))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, operator)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for operator got %d", resp.Code)
	}
}
