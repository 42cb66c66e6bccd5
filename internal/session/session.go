// Package session turns a bearer token into an explicit Session value:
// who the user is, which role profile they completed and where a vendor
// is located.
package session

import (
	"context"
	"strings"

	"recommend-service/internal/directory"
	"recommend-service/internal/recommend/model"
)

type Role string

const (
	RoleNone     Role = ""
	RoleVendor   Role = "vendor"
	RoleSupplier Role = "supplier"
	RoleDelivery Role = "delivery"
)

// Roles is the lookup order used when a user has several profiles.
var Roles = []Role{RoleVendor, RoleSupplier, RoleDelivery}

func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleVendor:
		return RoleVendor
	case RoleSupplier:
		return RoleSupplier
	case RoleDelivery, "delivery_partner", "delivery partner":
		return RoleDelivery
	default:
		return RoleNone
	}
}

// Label is the human name shown next to the user in menus.
func (r Role) Label() string {
	switch r {
	case RoleVendor:
		return "Vendor"
	case RoleSupplier:
		return "Supplier"
	case RoleDelivery:
		return "Delivery Partner"
	default:
		return "User"
	}
}

type Session struct {
	UserID           string             `json:"userId,omitempty"`
	Email            string             `json:"email,omitempty"`
	Role             Role               `json:"role"`
	RoleLabel        string             `json:"roleLabel"`
	ProfileCompleted bool               `json:"profileCompleted"`
	Profile          *directory.Profile `json:"profile,omitempty"`
}

func (s Session) Anonymous() bool { return s.UserID == "" }

// Location is the vendor's own position, used as the default buyer
// location for recommendations.
func (s Session) Location() *model.Location {
	if s.Role != RoleVendor || s.Profile == nil || s.Profile.Location == nil {
		return nil
	}
	loc := *s.Profile.Location
	return &loc
}

type ctxKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// From returns the request session; anonymous when none was attached.
func From(ctx context.Context) Session {
	if s, ok := ctx.Value(ctxKey{}).(Session); ok {
		return s
	}
	return Session{RoleLabel: RoleNone.Label()}
}
