package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"recommend-service/internal/directory"
	"recommend-service/internal/session"
)

type reviewRequest struct {
	OrderID string  `json:"orderId"`
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment"`
}

// CreateReview rates a supplier for one order of the caller. The supplier's
// rating becomes the average of its reviews.
func CreateReview(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := reqLogger(r, d.Logger)
		sess := session.From(r.Context())
		if sess.Anonymous() {
			fail(w, log, errUnauthorized)
			return
		}
		var req reviewRequest
		if err := decodeJSON(r, &req); err != nil {
			fail(w, log, err)
			return
		}
		rv, err := d.Dir.CreateReview(r.Context(), directory.Review{
			OrderID:    req.OrderID,
			VendorID:   sess.UserID,
			SupplierID: chi.URLParam(r, "id"),
			Rating:     req.Rating,
			Comment:    req.Comment,
		})
		if err != nil {
			fail(w, log, err)
			return
		}
		log.Info().Str("supplier", rv.SupplierID).Str("order", rv.OrderID).Float64("rating", rv.Rating).Msg("review created")
		_ = writeJSON(w, http.StatusCreated, rv)
	}
}

// SupplierReviews lists a supplier's reviews, newest first.
func SupplierReviews(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := reqLogger(r, d.Logger)
		id := chi.URLParam(r, "id")
		if _, err := d.Dir.Get(r.Context(), id); err != nil {
			fail(w, log, err)
			return
		}
		list, err := d.Dir.Reviews(r.Context(), id)
		if err != nil {
			fail(w, log, err)
			return
		}
		_ = writeJSON(w, http.StatusOK, list)
	}
}

// OrderReview returns the review left for an order, 404 when not rated yet.
func OrderReview(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := reqLogger(r, d.Logger)
		rv, err := d.Dir.ReviewByOrder(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			fail(w, log, err)
			return
		}
		_ = writeJSON(w, http.StatusOK, rv)
	}
}
