package session

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"recommend-service/internal/directory"
)

// ProfileSource is satisfied by *directory.Store.
type ProfileSource interface {
	LookupProfile(ctx context.Context, role, userID string) (directory.Profile, error)
}

type Resolver struct {
	src ProfileSource
	log zerolog.Logger
}

func NewResolver(src ProfileSource, log zerolog.Logger) *Resolver {
	return &Resolver{src: src, log: log.With().Str("component", "session").Logger()}
}

// Resolve looks up the user's vendor, supplier and delivery profiles in
// parallel. The first existing one in that order decides the role; with
// none, the hint (token metadata) is used and ProfileCompleted is false.
// A failed lookup is logged and treated as "not completed".
func (r *Resolver) Resolve(ctx context.Context, userID string, hint Role) Session {
	s := Session{UserID: userID, Role: hint}
	if userID == "" {
		s.Role = RoleNone
		s.RoleLabel = s.Role.Label()
		return s
	}

	type result struct {
		p   directory.Profile
		err error
	}
	results := make([]result, len(Roles))
	var wg sync.WaitGroup
	for i, role := range Roles {
		wg.Add(1)
		go func(i int, role Role) {
			defer wg.Done()
			p, err := r.src.LookupProfile(ctx, string(role), userID)
			results[i] = result{p, err}
		}(i, role)
	}
	wg.Wait()

	for i, res := range results {
		if res.err != nil && !errors.Is(res.err, directory.ErrNotFound) {
			r.log.Error().Err(res.err).Str("user", userID).Str("role", string(Roles[i])).Msg("profile lookup failed")
			s.ProfileCompleted = false
			s.Profile = nil
			s.RoleLabel = s.Role.Label()
			return s
		}
	}
	for i, res := range results {
		if res.err == nil {
			p := res.p
			s.Role = Roles[i]
			s.Profile = &p
			s.ProfileCompleted = true
			break
		}
	}
	s.RoleLabel = s.Role.Label()
	return s
}
