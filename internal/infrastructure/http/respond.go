package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	apporder "github.com/nillpakhi2003-droid/habib-furniture/internal/application/order"
	appsettings "github.com/nillpakhi2003-droid/habib-furniture/internal/application/settings"
	catdomain "github.com/nillpakhi2003-droid/habib-furniture/internal/domain/catalog"
	orddomain "github.com/nillpakhi2003-droid/habib-furniture/internal/domain/order"
)

// Every JSON response carries ok plus either the payload or an error code.

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondOK(w http.ResponseWriter, status int, payload map[string]any) {
	body := map[string]any{"ok": true}
	for k, v := range payload {
		body[k] = v
	}
	writeJSON(w, status, body)
}

func respondError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]any{"ok": false, "error": code})
}

// respondOrderError maps the checkout error taxonomy onto HTTP statuses. The
// code in the body is the stable contract; the status is a convenience.
func respondOrderError(w http.ResponseWriter, err error) {
	code := apporder.Code(err)
	switch code {
	case apporder.CodeProductNotFound:
		respondError(w, http.StatusNotFound, code)
	case apporder.CodeRateLimited:
		var rle *apporder.RateLimitedError
		if errors.As(err, &rle) && rle.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(rle.RetryAfter))
		}
		respondError(w, http.StatusTooManyRequests, code)
	case apporder.CodeOutOfStock, apporder.CodeInsufficientStock:
		respondError(w, http.StatusConflict, code)
	case apporder.CodeTransactionFailed:
		if errors.Is(err, orddomain.ErrNotFound) {
			respondError(w, http.StatusNotFound, "ORDER_NOT_FOUND")
			return
		}
		if errors.Is(err, orddomain.ErrInvalidStateTransition) {
			respondError(w, http.StatusConflict, "INVALID_STATUS_TRANSITION")
			return
		}
		respondError(w, http.StatusInternalServerError, code)
	default:
		respondError(w, http.StatusBadRequest, code)
	}
}

func respondCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catdomain.ErrNotFound), errors.Is(err, catdomain.ErrImageNotFound):
		respondError(w, http.StatusNotFound, "PRODUCT_NOT_FOUND")
	case errors.Is(err, catdomain.ErrSlugTaken):
		respondError(w, http.StatusConflict, "SLUG_TAKEN")
	case errors.Is(err, catdomain.ErrInvalidName),
		errors.Is(err, catdomain.ErrInvalidSlug),
		errors.Is(err, catdomain.ErrInvalidPrice),
		errors.Is(err, catdomain.ErrInvalidDiscount),
		errors.Is(err, catdomain.ErrNegativeStock):
		respondError(w, http.StatusBadRequest, "INVALID_INPUT")
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL")
	}
}

func respondSettingsError(w http.ResponseWriter, err error) {
	if errors.Is(err, appsettings.ErrNegativeCharge) {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT")
		return
	}
	respondError(w, http.StatusInternalServerError, "INTERNAL")
}

// decodeJSON parses a request body strictly: unknown fields are rejected so
// client typos surface as errors instead of silently dropped fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
