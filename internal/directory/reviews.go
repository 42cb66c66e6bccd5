package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidReview   = errors.New("review needs order id, supplier id and a rating from 1 to 5")
	ErrDuplicateReview = errors.New("order already reviewed")
)

// Review is a vendor's rating of a supplier for one order.
type Review struct {
	ID         string    `json:"id"`
	OrderID    string    `json:"orderId"`
	VendorID   string    `json:"vendorId"`
	SupplierID string    `json:"supplierId"`
	Rating     float64   `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (r Review) validate() error {
	if strings.TrimSpace(r.OrderID) == "" || strings.TrimSpace(r.SupplierID) == "" {
		return ErrInvalidReview
	}
	if math.IsNaN(r.Rating) || r.Rating < 1 || r.Rating > 5 {
		return ErrInvalidReview
	}
	return nil
}

// CreateReview stores one review per order and sets the supplier's rating
// to the average of its reviews. The supplier must be in stock.
func (s *Store) CreateReview(ctx context.Context, r Review) (Review, error) {
	if err := r.validate(); err != nil {
		return Review{}, err
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := s.now()
	r.CreatedAt = time.UnixMilli(now.UnixMilli())

	if s.db == nil {
		if err := s.createReviewMem(r); err != nil {
			return Review{}, err
		}
	} else if err := s.createReviewSQL(ctx, r); err != nil {
		return Review{}, err
	}

	s.publish(Event{Kind: EventReview, IDs: []string{r.SupplierID}, At: r.CreatedAt})
	return r, nil
}

func (s *Store) createReviewMem(r Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	e, ok := s.mem[r.SupplierID]
	if !ok || !e.available {
		return ErrNotFound
	}
	if _, dup := s.reviews[r.OrderID]; dup {
		return ErrDuplicateReview
	}
	s.reviews[r.OrderID] = r

	var sum float64
	var n int
	for _, x := range s.reviews {
		if x.SupplierID == r.SupplierID {
			sum += x.Rating
			n++
		}
	}
	e.supplier.Rating = sum / float64(n)
	e.updatedAt = r.CreatedAt.UnixMilli()
	s.mem[r.SupplierID] = e
	return nil
}

func (s *Store) createReviewSQL(ctx context.Context, r Review) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var one int
	q := fmt.Sprintf("SELECT 1 FROM suppliers WHERE id = %s AND stock_available = %s", ph(s.backend, 1), ph(s.backend, 2))
	switch err := tx.QueryRowContext(ctx, q, r.SupplierID, true).Scan(&one); {
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case err != nil:
		return fmt.Errorf("review supplier %s: %w", r.SupplierID, err)
	}

	q = fmt.Sprintf("SELECT 1 FROM reviews WHERE order_id = %s", ph(s.backend, 1))
	switch err := tx.QueryRowContext(ctx, q, r.OrderID).Scan(&one); {
	case err == nil:
		return ErrDuplicateReview
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("review order %s: %w", r.OrderID, err)
	}

	q = fmt.Sprintf("INSERT INTO reviews (%s) VALUES (%s)", strings.Join(reviewColumns, ", "), placeholders(s.backend, len(reviewColumns), 1))
	ts := r.CreatedAt.UnixMilli()
	if _, err := tx.ExecContext(ctx, q, r.ID, r.OrderID, r.VendorID, r.SupplierID, r.Rating, r.Comment, ts); err != nil {
		return fmt.Errorf("insert review %s: %w", r.OrderID, err)
	}

	// средняя оценка по всем отзывам поставщика
	var avg float64
	q = fmt.Sprintf("SELECT AVG(rating) FROM reviews WHERE supplier_id = %s", ph(s.backend, 1))
	if err := tx.QueryRowContext(ctx, q, r.SupplierID).Scan(&avg); err != nil {
		return fmt.Errorf("average rating %s: %w", r.SupplierID, err)
	}
	q = fmt.Sprintf("UPDATE suppliers SET rating = %s, updated_at = %s WHERE id = %s",
		ph(s.backend, 1), ph(s.backend, 2), ph(s.backend, 3))
	if _, err := tx.ExecContext(ctx, q, avg, ts, r.SupplierID); err != nil {
		return fmt.Errorf("update rating %s: %w", r.SupplierID, err)
	}
	return tx.Commit()
}

// Reviews lists a supplier's reviews, newest first.
func (s *Store) Reviews(ctx context.Context, supplierID string) ([]Review, error) {
	if s.db == nil {
		s.mu.RLock()
		out := []Review{}
		for _, r := range s.reviews {
			if r.SupplierID == supplierID {
				out = append(out, r)
			}
		}
		s.mu.RUnlock()
		sort.Slice(out, func(i, j int) bool {
			if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
			return out[i].OrderID < out[j].OrderID
		})
		return out, nil
	}

	q := fmt.Sprintf("SELECT %s FROM reviews WHERE supplier_id = %s ORDER BY created_at DESC, order_id",
		strings.Join(reviewColumns, ", "), ph(s.backend, 1))
	rows, err := s.db.QueryContext(ctx, q, supplierID)
	if err != nil {
		return nil, fmt.Errorf("list reviews %s: %w", supplierID, err)
	}
	defer rows.Close()

	out := []Review{}
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ReviewByOrder tells whether an order was already rated.
func (s *Store) ReviewByOrder(ctx context.Context, orderID string) (Review, error) {
	if s.db == nil {
		s.mu.RLock()
		r, ok := s.reviews[orderID]
		s.mu.RUnlock()
		if !ok {
			return Review{}, ErrNotFound
		}
		return r, nil
	}

	q := fmt.Sprintf("SELECT %s FROM reviews WHERE order_id = %s", strings.Join(reviewColumns, ", "), ph(s.backend, 1))
	r, err := scanReview(s.db.QueryRowContext(ctx, q, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return Review{}, ErrNotFound
	}
	return r, err
}

func scanReview(sc scanner) (Review, error) {
	var (
		r  Review
		ts int64
	)
	if err := sc.Scan(&r.ID, &r.OrderID, &r.VendorID, &r.SupplierID, &r.Rating, &r.Comment, &ts); err != nil {
		return Review{}, err
	}
	r.CreatedAt = time.UnixMilli(ts)
	return r, nil
}
