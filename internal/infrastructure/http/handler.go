// Package httpserver is the HTTP surface of the storefront: the customer
// checkout and catalog endpoints, the session-gated back office, and the
// operational endpoints.
package httpserver

import (
	"net/http"

	appanalytics "github.com/nillpakhi2003-droid/habib-furniture/internal/application/analytics"
	appauth "github.com/nillpakhi2003-droid/habib-furniture/internal/application/auth"
	appcatalog "github.com/nillpakhi2003-droid/habib-furniture/internal/application/catalog"
	apporder "github.com/nillpakhi2003-droid/habib-furniture/internal/application/order"
	appsettings "github.com/nillpakhi2003-droid/habib-furniture/internal/application/settings"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/observability"
)

const componentHTTPHandler = "http_server"

type Handler struct {
	orderService     *apporder.Service
	catalogService   *appcatalog.Service
	authService      *appauth.Service
	settingsService  *appsettings.Service
	analyticsService *appanalytics.Service

	tel observability.Observability
	log observability.Logger

	httpRequests observability.Counter
	httpDuration observability.Histogram

	// metricsHandler serves GET /metrics; promhttp in production, absent in
	// tests.
	metricsHandler http.Handler
}

type HandlerConfig struct {
	Orders    *apporder.Service
	Catalog   *appcatalog.Service
	Auth      *appauth.Service
	Settings  *appsettings.Service
	Analytics *appanalytics.Service
	Metrics   http.Handler
}

func NewHandler(cfg HandlerConfig, tel observability.Observability) *Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Handler{
		orderService:     cfg.Orders,
		catalogService:   cfg.Catalog,
		authService:      cfg.Auth,
		settingsService:  cfg.Settings,
		analyticsService: cfg.Analytics,
		tel:              tel,
		log:              tel.Logger().With(observability.F("component", componentHTTPHandler)),
		httpRequests:     tel.Metrics().Counter(observability.MHTTPRequests),
		httpDuration:     tel.Metrics().Histogram(observability.MHTTPRequestDuration),
		metricsHandler:   cfg.Metrics,
	}
}

// Router builds the full route table. Every route runs behind the security
// headers and the observability stack; /admin routes (login aside) also run
// behind the session gate.
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	// Storefront.
	h.handle(mux, "POST /api/orders", h.handlePlaceOrder)
	h.handle(mux, "GET /api/products", h.handleListProducts)
	h.handle(mux, "GET /api/products/{slug}", h.handleGetProduct)
	h.handle(mux, "GET /api/settings/delivery", h.handleDeliveryCharge)
	h.handle(mux, "POST /api/analytics/track", h.handleTrack)

	// Back office.
	h.handle(mux, "POST /admin/login", h.handleLogin)
	h.handle(mux, "POST /admin/logout", h.handleLogout)
	h.handleGated(mux, "GET /admin/orders", h.handleListOrders)
	h.handleGated(mux, "GET /admin/orders/{id}", h.handleGetOrder)
	h.handleGated(mux, "POST /admin/orders/{id}/confirm", h.handleConfirmOrder)
	h.handleGated(mux, "POST /admin/orders/{id}/status", h.handleOrderStatus)
	h.handleGated(mux, "POST /admin/orders/{id}/payment", h.handleOrderPayment)
	h.handleGated(mux, "POST /admin/products", h.handleCreateProduct)
	h.handleGated(mux, "GET /admin/products/{id}", h.handleGetProductByID)
	h.handleGated(mux, "PUT /admin/products/{id}", h.handleUpdateProduct)
	h.handleGated(mux, "DELETE /admin/products/{id}", h.handleDeleteProduct)
	h.handleGated(mux, "POST /admin/products/{id}/stock", h.handleAdjustStock)
	h.handleGated(mux, "POST /admin/products/{id}/images", h.handleAddImage)
	h.handleGated(mux, "POST /admin/products/{id}/images/{imageID}/primary", h.handleSetPrimaryImage)
	h.handleGated(mux, "DELETE /admin/products/{id}/images/{imageID}", h.handleRemoveImage)
	h.handleGated(mux, "POST /admin/products/bulk", h.handleBulkImport)
	h.handleGated(mux, "GET /admin/settings", h.handleGetSettings)
	h.handleGated(mux, "PUT /admin/settings", h.handleUpdateSettings)

	// Ops.
	h.handle(mux, "GET /healthz", h.handleHealth)
	if h.metricsHandler != nil {
		mux.Handle("GET /metrics", h.metricsHandler)
	}

	return withSecurityHeaders(mux)
}

func (h *Handler) handle(mux *http.ServeMux, pattern string, fn http.HandlerFunc) {
	mux.Handle(pattern, h.wrap(pattern, fn))
}

func (h *Handler) handleGated(mux *http.ServeMux, pattern string, fn http.HandlerFunc) {
	mux.Handle(pattern, h.wrap(pattern, h.requireSession(fn).ServeHTTP))
}

func (h *Handler) wrap(pattern string, fn http.HandlerFunc) http.Handler {
	inner := h.withObservability(fn)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = r.WithContext(contextWithRoute(r.Context(), pattern))
		inner.ServeHTTP(w, r)
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
