package httpserver

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	appcatalog "github.com/nillpakhi2003-droid/habib-furniture/internal/application/catalog"
	apporder "github.com/nillpakhi2003-droid/habib-furniture/internal/application/order"
	catdomain "github.com/nillpakhi2003-droid/habib-furniture/internal/domain/catalog"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/domain/payment"
	"github.com/shopspring/decimal"
)

type placeOrderRequest struct {
	ProductID      string `json:"productId"`
	Quantity       int    `json:"quantity"`
	CustomerName   string `json:"customerName"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	PaymentMethod  string `json:"paymentMethod"`
	DeliveryCharge string `json:"deliveryCharge"`
	PaymentPhone   string `json:"paymentPhone"`
	TransactionID  string `json:"transactionId"`
}

func (h *Handler) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, apporder.CodeInvalidInput)
		return
	}

	method, err := payment.ParseMethod(req.PaymentMethod)
	if err != nil {
		respondError(w, http.StatusBadRequest, apporder.CodeInvalidInput)
		return
	}

	charge := decimal.Zero
	if req.DeliveryCharge != "" {
		if charge, err = decimal.NewFromString(req.DeliveryCharge); err != nil {
			respondError(w, http.StatusBadRequest, apporder.CodeInvalidInput)
			return
		}
	}

	result, err := h.orderService.PlaceOrder(r.Context(), apporder.PlaceOrderInput{
		ProductID:      req.ProductID,
		Quantity:       req.Quantity,
		CustomerName:   req.CustomerName,
		Phone:          req.Phone,
		Address:        req.Address,
		PaymentMethod:  method,
		DeliveryCharge: charge,
		PaymentPhone:   req.PaymentPhone,
		TransactionID:  req.TransactionID,
		ClientKey:      clientIP(r),
	})
	if err != nil {
		respondOrderError(w, err)
		return
	}

	respondOK(w, http.StatusCreated, map[string]any{
		"orderId": result.OrderID,
		"total":   result.TotalAmount.String(),
	})
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("perPage"))

	products, total, err := h.catalogService.List(r.Context(), appcatalog.ListFilter{
		Category:     q.Get("category"),
		Search:       q.Get("search"),
		FeaturedOnly: q.Get("featured") == "true",
		ActiveOnly:   true,
		Page:         page,
		PerPage:      perPage,
	})
	if err != nil {
		respondCatalogError(w, err)
		return
	}

	out := make([]map[string]any, 0, len(products))
	for _, p := range products {
		out = append(out, productJSON(p))
	}
	respondOK(w, http.StatusOK, map[string]any{"products": out, "total": total})
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalogService.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"product": productJSON(p)})
}

func (h *Handler) handleDeliveryCharge(w http.ResponseWriter, r *http.Request) {
	charge, err := h.settingsService.DeliveryCharge(r.Context(), r.URL.Query().Get("zone"))
	if err != nil {
		respondSettingsError(w, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"charge": charge.String()})
}

type trackRequest struct {
	Path string `json:"path"`
}

func (h *Handler) handleTrack(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT")
		return
	}
	h.analyticsService.Track(r.Context(), req.Path)
	respondOK(w, http.StatusAccepted, nil)
}

func productJSON(p *catdomain.Product) map[string]any {
	images := make([]map[string]any, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, map[string]any{
			"id":        img.ID,
			"path":      img.Path,
			"isPrimary": img.IsPrimary,
		})
	}
	out := map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"slug":        p.Slug,
		"description": p.Description,
		"category":    p.Category,
		"price":       p.Price.String(),
		"stock":       p.Stock,
		"isActive":    p.IsActive,
		"isFeatured":  p.IsFeatured,
		"images":      images,
	}
	if p.DiscountPrice != nil {
		out["discountPrice"] = p.DiscountPrice.String()
	}
	return out
}

// clientIP prefers the first X-Forwarded-For hop, falling back to the
// connection address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
