package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sellora/sellora-backend/api/controllers"
	"github.com/sellora/sellora-backend/api/middleware"
	cartsvc "github.com/sellora/sellora-backend/internal/cart"
	notifsvc "github.com/sellora/sellora-backend/internal/notifications"
	ordersvc "github.com/sellora/sellora-backend/internal/orders"
	productsvc "github.com/sellora/sellora-backend/internal/products"
	"github.com/sellora/sellora-backend/internal/pricing"
	sellersvc "github.com/sellora/sellora-backend/internal/sellers"
	"github.com/sellora/sellora-backend/pkg/config"
	"github.com/sellora/sellora-backend/pkg/db"
	"github.com/sellora/sellora-backend/pkg/logger"
	"github.com/sellora/sellora-backend/pkg/metrics"
	"github.com/sellora/sellora-backend/pkg/redis"
	"github.com/sellora/sellora-backend/pkg/storage/assets"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	assetResolver *assets.Resolver,
	productService productsvc.Service,
	cartService cartsvc.Service,
	calculator *pricing.Calculator,
	orderService ordersvc.Service,
	sellerService sellersvc.Service,
	notificationService notifsvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Public catalog surface: no identity, no session.
		r.Get("/products", controllers.ProductsList(productService, logg))
		r.Get("/products/{id}", controllers.ProductGet(productService, logg))
		r.Get("/sellers/{slug}", controllers.SellerPublicGet(sellerService, logg))
		r.Get("/promos/{code}", controllers.PromoPreview(calculator, logg))
		r.With(middleware.RateLimit("session", cfg.RateLimit.SessionLimit, cfg.RateLimit.SessionWindow, redisClient, logg)).
			Post("/session", controllers.SessionCreate(logg))

		// Cart works for anonymous shoppers (X-Session-Token) and signed-in
		// buyers alike; the owner key is whichever the middleware resolves.
		r.Group(func(r chi.Router) {
			r.Use(middleware.SessionOrAuth(cfg.JWT, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartGet(cartService, assetResolver, logg))
				r.Post("/", controllers.CartAdd(cartService, logg))
				r.Get("/count", controllers.CartCount(cartService, logg))
				r.Post("/quote", controllers.CartQuote(cartService, calculator, logg))
				r.Put("/items/{productID}", controllers.CartSetQuantity(cartService, logg))
				r.Delete("/items/{productID}", controllers.CartRemove(cartService, logg))
			})

			// Everything past this point needs a signed-in buyer.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireIdentity(logg))
				r.Use(middleware.Idempotency(redisClient, logg))

				r.Post("/cart/merge", controllers.CartMerge(cartService, logg))
				r.Post("/checkout", controllers.Checkout(orderService, logg))

				r.Route("/orders", func(r chi.Router) {
					r.Get("/", controllers.OrdersList(orderService, logg))
					r.Get("/{id}", controllers.OrderGet(orderService, logg))
					r.Post("/{id}/cancel", controllers.OrderCancel(orderService, logg))
				})

				r.Route("/notifications", func(r chi.Router) {
					r.Get("/", controllers.NotificationsList(notificationService, logg))
					r.Post("/{id}/read", controllers.NotificationRead(notificationService, logg))
					r.Post("/read-all", controllers.NotificationsReadAll(notificationService, logg))
				})

				r.Route("/seller", func(r chi.Router) {
					r.Post("/profile", controllers.SellerProfileCreate(sellerService, logg))
					r.Get("/profile", controllers.SellerProfileGet(sellerService, logg))
					r.Put("/profile", controllers.SellerProfileUpdate(sellerService, logg))

					r.Route("/products", func(r chi.Router) {
						r.Get("/", controllers.SellerProductsList(productService, logg))
						r.Post("/", controllers.SellerProductCreate(productService, logg))
						r.Patch("/{id}", controllers.SellerProductUpdate(productService, logg))
						r.Delete("/{id}", controllers.SellerProductDelete(productService, logg))
						r.Post("/{id}/restock", controllers.SellerProductRestock(productService, logg))
						r.Post("/{id}/hold", controllers.SellerProductHold(productService, logg))
					})
				})
			})

			r.Route("/admin/orders", func(r chi.Router) {
				r.Use(middleware.RequireOperator(logg))
				r.Use(middleware.Idempotency(redisClient, logg))

				r.Get("/", controllers.AdminOrdersList(orderService, logg))
				r.Post("/{id}/approve", controllers.AdminOrderApprove(orderService, logg))
				r.Post("/{id}/reject", controllers.AdminOrderReject(orderService, logg))
				r.Post("/{id}/ship", controllers.AdminOrderShip(orderService, logg))
				r.Delete("/{id}", controllers.AdminOrderRollback(orderService, logg))
			})
		})
	})

	return r
}
