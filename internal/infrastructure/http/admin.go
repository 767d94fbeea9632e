package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	appauth "github.com/nillpakhi2003-droid/habib-furniture/internal/application/auth"
	appcatalog "github.com/nillpakhi2003-droid/habib-furniture/internal/application/catalog"
	apporder "github.com/nillpakhi2003-droid/habib-furniture/internal/application/order"
	appsettings "github.com/nillpakhi2003-droid/habib-furniture/internal/application/settings"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/auth/session"
	orddomain "github.com/nillpakhi2003-droid/habib-furniture/internal/domain/order"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/domain/payment"
	setdomain "github.com/nillpakhi2003-droid/habib-furniture/internal/domain/settings"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/observability"
	"github.com/shopspring/decimal"
)

type loginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT")
		return
	}

	result, err := h.authService.Login(r.Context(), req.Phone, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, appauth.ErrInvalidInput):
			respondError(w, http.StatusBadRequest, "INVALID_INPUT")
		case errors.Is(err, appauth.ErrInvalidCredentials):
			respondError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS")
		case errors.Is(err, appauth.ErrNotAllowed):
			respondError(w, http.StatusForbidden, "NOT_ALLOWED")
		default:
			respondError(w, http.StatusInternalServerError, "INTERNAL")
		}
		return
	}

	http.SetCookie(w, session.NewCookie(result.Token))
	respondOK(w, http.StatusOK, map[string]any{
		"user": map[string]any{
			"id":   result.User.ID,
			"name": result.User.Name,
			"role": string(result.User.Role),
		},
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, session.RevokeCookie())
	respondOK(w, http.StatusOK, nil)
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("perPage"))

	status := orddomain.Status(q.Get("status"))
	if status != "" && !orddomain.ValidStatus(string(status)) {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT")
		return
	}

	orders, total, err := h.orderService.List(r.Context(), apporder.ListFilter{
		Status:  status,
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		respondOrderError(w, err)
		return
	}

	out := make([]map[string]any, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderJSON(o))
	}
	respondOK(w, http.StatusOK, map[string]any{"orders": out, "total": total})
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orderService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondOrderError(w, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"order": orderJSON(o)})
}

func (h *Handler) handleConfirmOrder(w http.ResponseWriter, r *http.Request) {
	result, err := h.orderService.ConfirmOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		respondOrderError(w, err)
		return
	}
	if sess, ok := SessionFromContext(r.Context()); ok {
		h.log.Info("order_confirm_by",
			observability.F("order_id", result.OrderID),
			observability.F("admin_uid", sess.UID),
		)
	}
	respondOK(w, http.StatusOK, map[string]any{
		"orderId": result.OrderID,
		"status":  string(result.Status),
		"changed": result.Changed,
	})
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req orderStatusRequest
	if err := decodeJSON(r, &req); err != nil || !orddomain.ValidStatus(req.Status) {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT")
		return
	}

	o, err := h.orderService.UpdateStatus(r.Context(), r.PathValue("id"), orddomain.Status(req.Status))
	if err != nil {
		respondOrderError(w, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"order": orderJSON(o)})
}

type orderPaymentRequest struct {
	PaymentStatus string `json:"paymentStatus"`
}

func (h *Handler) handleOrderPayment(w http.ResponseWriter, r *http.Request) {
	var req orderPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT")
		return
	}

	o, err := h.orderService.UpdatePaymentStatus(r.Context(), r.PathValue("id"), payment.Status(req.PaymentStatus))
	if err != nil {
		respondOrderError(w, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"order": orderJSON(o)})
}

type productRequest struct {
	Name          string   `json:"name"`
	Slug          string   `json:"slug"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	Price         string   `json:"price"`
	DiscountPrice *string  `json:"discountPrice"`
	Stock         int      `json:"stock"`
	IsFeatured    bool     `json:"isFeatured"`
	ImagePaths    []string `json:"imagePaths"`
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT")
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT")
		return
	}
	var discount *decimal.Decimal
	if req.DiscountPrice != nil {
		d, err := decimal.NewFromString(*req.DiscountPrice)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_INPUT")
			return
		}
		discount = &d
	}

	p, err := h.catalogService.Create(r.Context(), appcatalog.CreateProductInput{
		Name:          req.Name,
		Slug:          req.Slug,
		Description:   req.Description,
		Category:      req.Category,
		Price:         price,
		DiscountPrice: discount,
		Stock:         req.Stock,
		IsFeatured:    req.IsFeatured,
		ImagePaths:    req.ImagePaths,
	})
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondOK(w, http.StatusCreated, map[string]any{"product": productJSON(p)})
}

type productUpdateRequest struct {
	Name          *string `json:"name"`
	Slug          *string `json:"slug"`
	Description   *string `json:"description"`
	Category      *string `json:"category"`
	Price         *string `json:"price"`
	DiscountPrice *string `json:"discountPrice"`
	ClearDiscount bool    `json:"clearDiscount"`
	IsActive      *bool   `json:"isActive"`
	IsFeatured    *bool   `json:"isFeatured"`
}

// handleGetProductByID serves the admin edit form; unlike the storefront
// lookup it returns inactive products too.
func (h *Handler) handleGetProductByID(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalogService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"product": productJSON(p)})
}

func (h *Handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req productUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT")
		return
	}

	in := appcatalog.UpdateProductInput{
		Name:          req.Name,
		Slug:          req.Slug,
		Description:   req.Description,
		Category:      req.Category,
		ClearDiscount: req.ClearDiscount,
		IsActive:      req.IsActive,
		IsFeatured:    req.IsFeatured,
	}
	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_INPUT")
			return
		}
		in.Price = &price
	}
	if req.DiscountPrice != nil {
		d, err := decimal.NewFromString(*req.DiscountPrice)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_INPUT")
			return
		}
		in.DiscountPrice = &d
	}

	p, err := h.catalogService.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"product": productJSON(p)})
}

func (h *Handler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogService.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondCatalogError(w, err)
		return
	}
	respondOK(w, http.StatusOK, nil)
}

type stockRequest struct {
	Delta int `json:"delta"`
}

func (h *Handler) handleAdjustStock(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT")
		return
	}
	p, err := h.catalogService.AdjustStock(r.Context(), r.PathValue("id"), req.Delta)
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"product": productJSON(p)})
}

type imageRequest struct {
	Path    string `json:"path"`
	Primary bool   `json:"primary"`
}

func (h *Handler) handleAddImage(w http.ResponseWriter, r *http.Request) {
	var req imageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT")
		return
	}
	p, err := h.catalogService.AddImage(r.Context(), r.PathValue("id"), req.Path, req.Primary)
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"product": productJSON(p)})
}

func (h *Handler) handleSetPrimaryImage(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalogService.SetPrimaryImage(r.Context(), r.PathValue("id"), r.PathValue("imageID"))
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"product": productJSON(p)})
}

func (h *Handler) handleRemoveImage(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalogService.RemoveImage(r.Context(), r.PathValue("id"), r.PathValue("imageID"))
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"product": productJSON(p)})
}

// handleBulkImport takes a CSV body (or the "file" part of a multipart form)
// and imports products row by row.
func (h *Handler) handleBulkImport(w http.ResponseWriter, r *http.Request) {
	body := r.Body
	if file, _, err := r.FormFile("file"); err == nil {
		defer file.Close()
		body = file
	}

	result, err := h.catalogService.ImportCSV(r.Context(), body)
	if err != nil {
		if errors.Is(err, appcatalog.ErrBadImportHeader) {
			respondError(w, http.StatusBadRequest, "INVALID_CSV_HEADER")
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL")
		return
	}

	rows := make([]map[string]any, 0, len(result.Errors))
	for _, re := range result.Errors {
		rows = append(rows, map[string]any{"line": re.Line, "message": re.Message})
	}
	respondOK(w, http.StatusOK, map[string]any{
		"created": result.Created,
		"errors":  rows,
	})
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.settingsService.Get(r.Context())
	if err != nil {
		respondSettingsError(w, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"settings": settingsJSON(cfg)})
}

type settingsRequest struct {
	DeliveryChargeDhaka   *string `json:"deliveryChargeDhaka"`
	DeliveryChargeOutside *string `json:"deliveryChargeOutside"`
	BkashNumber           *string `json:"bkashNumber"`
	NagadNumber           *string `json:"nagadNumber"`
	FacebookPixelID       *string `json:"facebookPixelId"`
}

func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT")
		return
	}

	in := appsettings.UpdateInput{
		BkashNumber:     req.BkashNumber,
		NagadNumber:     req.NagadNumber,
		FacebookPixelID: req.FacebookPixelID,
	}
	if req.DeliveryChargeDhaka != nil {
		d, err := decimal.NewFromString(*req.DeliveryChargeDhaka)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_INPUT")
			return
		}
		in.DeliveryChargeDhaka = &d
	}
	if req.DeliveryChargeOutside != nil {
		d, err := decimal.NewFromString(*req.DeliveryChargeOutside)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_INPUT")
			return
		}
		in.DeliveryChargeOutside = &d
	}

	cfg, err := h.settingsService.Update(r.Context(), in)
	if err != nil {
		respondSettingsError(w, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"settings": settingsJSON(cfg)})
}

func orderJSON(o *orddomain.Order) map[string]any {
	items := make([]map[string]any, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, map[string]any{
			"id":            it.ID,
			"productId":     it.ProductID,
			"quantity":      it.Quantity,
			"priceSnapshot": it.PriceSnapshot.String(),
		})
	}
	return map[string]any{
		"id":             o.ID,
		"customerName":   o.CustomerName,
		"phone":          o.Phone,
		"address":        o.Address,
		"paymentMethod":  string(o.PaymentMethod),
		"paymentStatus":  string(o.PaymentStatus),
		"paymentPhone":   o.PaymentPhone,
		"transactionId":  o.TransactionID,
		"deliveryCharge": o.DeliveryCharge.String(),
		"totalAmount":    o.TotalAmount.String(),
		"status":         string(o.Status),
		"items":          items,
		"createdAt":      o.CreatedAt,
	}
}

func settingsJSON(cfg setdomain.Settings) map[string]any {
	return map[string]any{
		"deliveryChargeDhaka":   cfg.DeliveryChargeDhaka.String(),
		"deliveryChargeOutside": cfg.DeliveryChargeOutside.String(),
		"bkashNumber":           cfg.BkashNumber,
		"nagadNumber":           cfg.NagadNumber,
		"facebookPixelId":       cfg.FacebookPixelID,
	}
}
