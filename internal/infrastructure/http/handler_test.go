package httpserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appanalytics "github.com/nillpakhi2003-droid/habib-furniture/internal/application/analytics"
	appauth "github.com/nillpakhi2003-droid/habib-furniture/internal/application/auth"
	appcatalog "github.com/nillpakhi2003-droid/habib-furniture/internal/application/catalog"
	apporder "github.com/nillpakhi2003-droid/habib-furniture/internal/application/order"
	appsettings "github.com/nillpakhi2003-droid/habib-furniture/internal/application/settings"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/auth/session"
	catdomain "github.com/nillpakhi2003-droid/habib-furniture/internal/domain/catalog"
	userdomain "github.com/nillpakhi2003-droid/habib-furniture/internal/domain/user"
	httpserver "github.com/nillpakhi2003-droid/habib-furniture/internal/infrastructure/http"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/infrastructure/id"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/infrastructure/memory"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/infrastructure/ratelimit"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fixture struct {
	router   http.Handler
	store    *memory.Store
	sessions *session.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	idGen := id.NewUUIDGenerator()

	sessions, err := session.NewManager(testSecret)
	require.NoError(t, err)

	limiter := ratelimit.NewPolicyLimiter(
		ratelimit.NewMemoryLimiter(ratelimit.Config{Window: time.Minute, Limit: 100}),
		false, nil, nil)

	handler := httpserver.NewHandler(httpserver.HandlerConfig{
		Orders:    apporder.NewService(store, limiter, idGen, nil, nil),
		Catalog:   appcatalog.NewService(store, idGen, nil),
		Auth:      appauth.NewService(store, sessions, nil),
		Settings:  appsettings.NewService(store, nil),
		Analytics: appanalytics.NewService(store, nil),
	}, nil)

	return &fixture{
		router:   handler.Router(),
		store:    store,
		sessions: sessions,
	}
}

func (f *fixture) seedProduct(t *testing.T, slug string, stock int) *catdomain.Product {
	t.Helper()
	p, err := catdomain.New("prod-"+slug, "Product "+slug, slug, decimal.NewFromInt(4500), nil, stock)
	require.NoError(t, err)
	require.NoError(t, f.store.Insert(context.Background(), p))
	return p
}

func (f *fixture) seedAdmin(t *testing.T, phone, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	f.store.PutUser(&userdomain.User{
		ID:           "admin-1",
		Name:         "Admin",
		Phone:        phone,
		PasswordHash: string(hash),
		Role:         userdomain.RoleAdmin,
	})
}

func (f *fixture) adminCookie(t *testing.T) *http.Cookie {
	t.Helper()
	c, err := f.sessions.IssueCookie("admin-1", userdomain.RoleAdmin)
	require.NoError(t, err)
	return c
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSecurityHeadersOnEveryResponse(t *testing.T) {
	f := newFixture(t)

	for _, target := range []string{"/healthz", "/nope", "/admin/orders"} {
		rec := f.do(httptest.NewRequest(http.MethodGet, target, nil))
		h := rec.Header()
		assert.Equal(t, "max-age=63072000; includeSubDomains", h.Get("Strict-Transport-Security"), target)
		assert.Equal(t, "SAMEORIGIN", h.Get("X-Frame-Options"), target)
		assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"), target)
		assert.Equal(t, "strict-origin-when-cross-origin", h.Get("Referrer-Policy"), target)
		assert.NotEmpty(t, h.Get("Permissions-Policy"), target)
	}
}

func TestPlaceOrderEndpoint(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, "teak-chair", 5)

	body := `{
		"productId": "` + p.ID + `",
		"quantity": 2,
		"customerName": "Rahim Uddin",
		"phone": "01712345678",
		"address": "House 12, Road 5, Dhanmondi, Dhaka",
		"deliveryCharge": "60"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	rec := f.do(req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	got := decodeBody(t, rec)
	assert.Equal(t, true, got["ok"])
	assert.NotEmpty(t, got["orderId"])
	assert.Equal(t, "9060", got["total"])
}

func TestPlaceOrderEndpointErrors(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, "oak-desk", 1)

	valid := func() map[string]any {
		return map[string]any{
			"productId":    p.ID,
			"quantity":     1,
			"customerName": "Rahim Uddin",
			"phone":        "01712345678",
			"address":      "House 12, Road 5, Dhanmondi, Dhaka",
		}
	}

	post := func(payload map[string]any) *httptest.ResponseRecorder {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		return f.do(httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(string(raw))))
	}

	unknown := valid()
	unknown["productId"] = "missing"
	rec := post(unknown)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "PRODUCT_NOT_FOUND", decodeBody(t, rec)["error"])

	tooMany := valid()
	tooMany["quantity"] = 2
	rec = post(tooMany)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "INSUFFICIENT_STOCK", decodeBody(t, rec)["error"])

	badPhone := valid()
	badPhone["phone"] = "12345"
	rec = post(badPhone)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decodeBody(t, rec)["error"])

	wallet := valid()
	wallet["paymentMethod"] = "BKASH"
	rec = post(wallet)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "PAYMENT_PHONE_REQUIRED", decodeBody(t, rec)["error"])

	// Unknown JSON fields are rejected outright.
	extra := valid()
	extra["surprise"] = true
	rec = post(extra)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type denyLimiter struct{ retryAfter int }

func (d denyLimiter) Allow(context.Context, string) ratelimit.Decision {
	return ratelimit.Decision{Allowed: false, RetryAfter: d.retryAfter}
}

func TestPlaceOrderRateLimited(t *testing.T) {
	store := memory.NewStore()
	sessions, err := session.NewManager(testSecret)
	require.NoError(t, err)

	handler := httpserver.NewHandler(httpserver.HandlerConfig{
		Orders: apporder.NewService(store, denyLimiter{retryAfter: 42}, id.NewUUIDGenerator(), nil, nil),
		Auth:   appauth.NewService(store, sessions, nil),
	}, nil)
	f := &fixture{router: handler.Router(), store: store, sessions: sessions}
	p := f.seedProduct(t, "bed-frame", 3)

	body := `{"productId":"` + p.ID + `","quantity":1,"customerName":"Karim","phone":"01812345678","address":"22 Green Road, Farmgate, Dhaka"}`
	rec := f.do(httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body)))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", decodeBody(t, rec)["error"])
	assert.Equal(t, "42", rec.Header().Get("Retry-After"))

	// Nothing was reserved for the rejected request.
	got, err := f.store.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock)
}

func TestAdminGateRedirectsBrowsers(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/admin/orders", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
}

func TestAdminGateReturns401ForAPI(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req.Header.Set("Accept", "application/json")
	rec := f.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "NO_SESSION", decodeBody(t, rec)["error"])

	// Mutating calls never redirect.
	rec = f.do(httptest.NewRequest(http.MethodPost, "/admin/orders/abc/confirm", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminGateRejectsTamperedCookie(t *testing.T) {
	f := newFixture(t)

	c := f.adminCookie(t)
	c.Value = c.Value[:len(c.Value)-4] + "AAAA"
	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req.Header.Set("Accept", "application/json")
	req.AddCookie(c)
	rec := f.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminOrderFlow(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, "sofa", 4)

	// Customer places an order.
	body := `{"productId":"` + p.ID + `","quantity":1,"customerName":"Karim","phone":"01812345678","address":"22 Green Road, Farmgate, Dhaka"}`
	rec := f.do(httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	orderID := decodeBody(t, rec)["orderId"].(string)

	cookie := f.adminCookie(t)

	// Admin lists pending orders.
	req := httptest.NewRequest(http.MethodGet, "/admin/orders?status=PENDING", nil)
	req.Header.Set("Accept", "application/json")
	req.AddCookie(cookie)
	rec = f.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decodeBody(t, rec)["total"])

	// Confirm twice; the second call reports no change.
	confirm := func() map[string]any {
		req := httptest.NewRequest(http.MethodPost, "/admin/orders/"+orderID+"/confirm", nil)
		req.AddCookie(cookie)
		rec := f.do(req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		return decodeBody(t, rec)
	}
	first := confirm()
	assert.Equal(t, true, first["changed"])
	assert.Equal(t, "CONFIRMED", first["status"])

	second := confirm()
	assert.Equal(t, false, second["changed"])
	assert.Equal(t, "CONFIRMED", second["status"])

	// Stock was taken at placement and confirmation did not touch it.
	got, err := f.store.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock)
}

func TestLoginSetsSessionCookie(t *testing.T) {
	f := newFixture(t)
	f.seedAdmin(t, "01712345678", "s3cret-pass")

	body := `{"phone":"01712345678","password":"s3cret-pass"}`
	rec := f.do(httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, session.CookieName, c.Name)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, 3600, c.MaxAge)

	// The issued cookie passes the gate.
	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req.Header.Set("Accept", "application/json")
	req.AddCookie(c)
	assert.Equal(t, http.StatusOK, f.do(req).Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	f.seedAdmin(t, "01712345678", "s3cret-pass")

	rec := f.do(httptest.NewRequest(http.MethodPost, "/admin/login",
		strings.NewReader(`{"phone":"01712345678","password":"wrong-guess"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decodeBody(t, rec)["error"])
	assert.Empty(t, rec.Result().Cookies())
}

func TestLogoutRevokesCookie(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodPost, "/admin/logout", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, session.CookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestProductEndpoints(t *testing.T) {
	f := newFixture(t)
	cookie := f.adminCookie(t)

	// Create through the admin API.
	createBody := `{"name":"Teak Bookshelf","slug":"teak-bookshelf","price":"7800","stock":6,"imagePaths":["/img/1.jpg"]}`
	req := httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(createBody))
	req.AddCookie(cookie)
	rec := f.do(req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Customers see it by slug.
	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/products/teak-bookshelf", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	product := decodeBody(t, rec)["product"].(map[string]any)
	assert.Equal(t, "Teak Bookshelf", product["name"])
	assert.Equal(t, "7800", product["price"])

	// And in the listing.
	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/products", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decodeBody(t, rec)["total"])

	// Unknown slug is a 404 with the standard envelope.
	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/products/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["ok"])
}

func TestBulkImportEndpoint(t *testing.T) {
	f := newFixture(t)
	cookie := f.adminCookie(t)

	csv := "name,slug,description,category,price,discount_price,stock\n" +
		"Teak Chair,teak-chair,,chairs,4500,,12\n" +
		"Broken,broken,,misc,oops,,1\n"
	req := httptest.NewRequest(http.MethodPost, "/admin/products/bulk", strings.NewReader(csv))
	req.AddCookie(cookie)
	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decodeBody(t, rec)
	assert.EqualValues(t, 1, got["created"])
	assert.Len(t, got["errors"], 1)
}

func TestSettingsEndpoints(t *testing.T) {
	f := newFixture(t)
	cookie := f.adminCookie(t)

	// Defaults before anything is saved.
	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/settings/delivery?zone=dhaka", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "60", decodeBody(t, rec)["charge"])

	req := httptest.NewRequest(http.MethodPut, "/admin/settings",
		strings.NewReader(`{"deliveryChargeDhaka":"90"}`))
	req.AddCookie(cookie)
	rec = f.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/settings/delivery?zone=dhaka", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "90", decodeBody(t, rec)["charge"])
}

func TestTrackEndpoint(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodPost, "/api/analytics/track",
		strings.NewReader(`{"path":"/products/teak-chair"}`)))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	day := time.Now().UTC().Truncate(24 * time.Hour)
	assert.Equal(t, 1, f.store.Views("/products/teak-chair", day))
}
