package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"recommend-service/internal/recommend/model"
)

// Profile is a completed role profile of a user. Role is one of
// "vendor", "supplier", "delivery".
type Profile struct {
	UserID      string          `json:"userId"`
	Role        string          `json:"role"`
	DisplayName string          `json:"displayName"`
	Location    *model.Location `json:"location,omitempty"`
}

var ErrInvalidProfile = errors.New("profile needs user id and role")

// PutProfile creates or replaces the user's profile for p.Role.
func (s *Store) PutProfile(ctx context.Context, p Profile) error {
	if strings.TrimSpace(p.UserID) == "" || strings.TrimSpace(p.Role) == "" {
		return ErrInvalidProfile
	}
	if s.db == nil {
		if p.Location != nil {
			// как в SQL-ветке: имя точки = отображаемое имя профиля
			loc := *p.Location
			loc.Name = p.DisplayName
			p.Location = &loc
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return ErrClosed
		}
		s.profiles[profileKey{p.UserID, p.Role}] = p
		return nil
	}

	var lat, lon *float64
	if p.Location != nil {
		lat, lon = &p.Location.Latitude, &p.Location.Longitude
	}
	q := upsertQuery(s.backend, "profiles", profileColumns, []string{"user_id", "role"})
	_, err := s.db.ExecContext(ctx, q,
		p.UserID, p.Role, p.DisplayName, nullFloat(lat), nullFloat(lon), s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("put profile %s/%s: %w", p.Role, p.UserID, err)
	}
	return nil
}

// LookupProfile returns ErrNotFound when the user has no profile for role.
func (s *Store) LookupProfile(ctx context.Context, role, userID string) (Profile, error) {
	if s.db == nil {
		s.mu.RLock()
		p, ok := s.profiles[profileKey{userID, role}]
		s.mu.RUnlock()
		if !ok {
			return Profile{}, ErrNotFound
		}
		return p, nil
	}

	q := fmt.Sprintf("SELECT user_id, role, display_name, latitude, longitude FROM profiles WHERE user_id = %s AND role = %s",
		ph(s.backend, 1), ph(s.backend, 2))
	var (
		p        Profile
		lat, lon sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, q, userID, role).Scan(&p.UserID, &p.Role, &p.DisplayName, &lat, &lon)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("lookup profile %s/%s: %w", role, userID, err)
	}
	if lat.Valid && lon.Valid {
		p.Location = &model.Location{Latitude: lat.Float64, Longitude: lon.Float64, Name: p.DisplayName}
	}
	return p, nil
}
