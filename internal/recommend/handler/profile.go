package handler

import (
	"fmt"
	"net/http"
	"strings"

	"recommend-service/internal/directory"
	"recommend-service/internal/recommend/model"
	"recommend-service/internal/session"
)

type profileRequest struct {
	Role        string          `json:"role"`
	DisplayName string          `json:"displayName"`
	Location    *model.Location `json:"location"`
}

// PutProfile completes or updates the caller's role profile. The role
// comes from the body, else from the session.
func PutProfile(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := reqLogger(r, d.Logger)
		sess := session.From(r.Context())
		if sess.Anonymous() {
			fail(w, log, errUnauthorized)
			return
		}

		var req profileRequest
		if err := decodeJSON(r, &req); err != nil {
			fail(w, log, err)
			return
		}
		role := sess.Role
		if req.Role != "" {
			role = session.ParseRole(req.Role)
		}
		if role == session.RoleNone {
			fail(w, log, fmt.Errorf("%w: role must be vendor, supplier or delivery", errBadRequest))
			return
		}

		p := directory.Profile{
			UserID:      sess.UserID,
			Role:        string(role),
			DisplayName: strings.TrimSpace(req.DisplayName),
			Location:    req.Location,
		}
		if p.Location != nil {
			loc := *p.Location
			loc.Name = p.DisplayName
			p.Location = &loc
		}
		if err := d.Dir.PutProfile(r.Context(), p); err != nil {
			fail(w, log, err)
			return
		}
		log.Info().Str("user", p.UserID).Str("role", p.Role).Msg("profile saved")

		sess.Role = role
		sess.RoleLabel = role.Label()
		sess.ProfileCompleted = true
		sess.Profile = &p
		_ = writeJSON(w, http.StatusOK, sess)
	}
}
