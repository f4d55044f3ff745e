// Package scope resolves which location's rows a request may touch. The
// resolved scope is passed explicitly to repositories; nothing reads ambient
// state, so the same inputs always produce the same visibility.
package scope

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hbarretto/franchisepos-backend/pkg/enums"
	pkgerrors "github.com/hbarretto/franchisepos-backend/pkg/errors"
)

// Scope is the resolved visibility for one request. Exactly one of three
// shapes: all locations (superadmin without a selection), a single location,
// or empty (staff with no assignment yet).
type Scope struct {
	locationID *uuid.UUID
	all        bool
}

// All returns a scope spanning every location.
func All() Scope {
	return Scope{all: true}
}

// Single returns a scope pinned to one location.
func Single(locationID uuid.UUID) Scope {
	return Scope{locationID: &locationID}
}

// Empty returns a scope that matches no rows.
func Empty() Scope {
	return Scope{}
}

// IsAll reports whether the scope spans every location.
func (s Scope) IsAll() bool {
	return s.all
}

// IsEmpty reports whether the scope matches no rows.
func (s Scope) IsEmpty() bool {
	return !s.all && s.locationID == nil
}

// LocationID returns the pinned location when the scope is single.
func (s Scope) LocationID() (uuid.UUID, bool) {
	if s.locationID == nil {
		return uuid.Nil, false
	}
	return *s.locationID, true
}

// Apply narrows the query to the scope using the given column. An empty scope
// yields a contradiction so listings return zero rows instead of leaking.
func (s Scope) Apply(q *gorm.DB, column string) *gorm.DB {
	if s.all {
		return q
	}
	if s.locationID == nil {
		return q.Where("1 = 0")
	}
	return q.Where(column+" = ?", *s.locationID)
}

// Resolve computes the read scope for an actor. Superadmins see everything
// unless they selected a location; everyone else sees their assigned location
// and may not select a different one.
func Resolve(role enums.UserRole, assigned *uuid.UUID, selected *uuid.UUID) (Scope, error) {
	if !role.IsValid() {
		return Scope{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown actor role")
	}

	if role == enums.UserRoleSuperadmin {
		if selected != nil {
			return Single(*selected), nil
		}
		return All(), nil
	}

	if assigned == nil {
		return Empty(), nil
	}
	if selected != nil && *selected != *assigned {
		return Scope{}, pkgerrors.New(pkgerrors.CodeForbidden, "cannot act on another location")
	}
	return Single(*assigned), nil
}

// ResolveMutation is Resolve restricted to writes: every mutation must land
// on exactly one location, so all-location and empty scopes are rejected.
func ResolveMutation(role enums.UserRole, assigned *uuid.UUID, selected *uuid.UUID) (uuid.UUID, error) {
	resolved, err := Resolve(role, assigned, selected)
	if err != nil {
		return uuid.Nil, err
	}
	locationID, ok := resolved.LocationID()
	if !ok {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeNoLocation, "no location selected for this operation")
	}
	return locationID, nil
}
