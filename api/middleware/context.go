package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/hbarretto/franchisepos-backend/internal/scope"
	"github.com/hbarretto/franchisepos-backend/pkg/enums"
	pkgerrors "github.com/hbarretto/franchisepos-backend/pkg/errors"
)

type contextKey string

const (
	ctxActorID          contextKey = "actor_id"
	ctxRole             contextKey = "actor_role"
	ctxAssignedLocation contextKey = "assigned_location"
	ctxAccessID         contextKey = "access_id"
	ctxScope            contextKey = "scope"
)

func ActorIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxActorID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

func RoleFromContext(ctx context.Context) enums.UserRole {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(enums.UserRole); ok {
		return v
	}
	return ""
}

// AssignedLocationFromContext returns the location pinned in the token, nil
// for superadmins.
func AssignedLocationFromContext(ctx context.Context) *uuid.UUID {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxAssignedLocation).(*uuid.UUID); ok {
		return v
	}
	return nil
}

// AccessIDFromContext returns the jti of the presented token, used by logout.
func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// ScopeFromContext returns the resolved visibility for this request. The
// second return is false when the scope middleware did not run.
func ScopeFromContext(ctx context.Context) (scope.Scope, bool) {
	if ctx == nil {
		return scope.Scope{}, false
	}
	if v, ok := ctx.Value(ctxScope).(scope.Scope); ok {
		return v, true
	}
	return scope.Scope{}, false
}

// MutationLocationFromContext narrows the resolved scope to the single
// location a write must land on.
func MutationLocationFromContext(ctx context.Context) (uuid.UUID, error) {
	sc, ok := ScopeFromContext(ctx)
	if !ok {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing scope")
	}
	locationID, ok := sc.LocationID()
	if !ok {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeNoLocation, "no location selected for this operation")
	}
	return locationID, nil
}
