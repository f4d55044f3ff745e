package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/hbarretto/franchisepos-backend/api/responses"
	"github.com/hbarretto/franchisepos-backend/internal/scope"
	pkgerrors "github.com/hbarretto/franchisepos-backend/pkg/errors"
	"github.com/hbarretto/franchisepos-backend/pkg/logger"
)

// locationHeader carries an explicit location selection, mainly for
// superadmins who are not pinned to one by their token.
const locationHeader = "X-Location-Id"

type locationChecker interface {
	ExistsActive(ctx context.Context, id uuid.UUID) (bool, error)
}

// Scope resolves the request's location visibility from the authenticated
// claims plus the optional selection header, and stores it in the context.
// Must run after Auth.
func Scope(locations locationChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var selected *uuid.UUID
			if raw := strings.TrimSpace(r.Header.Get(locationHeader)); raw != "" {
				id, err := uuid.Parse(raw)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid location header"))
					return
				}
				if locations != nil {
					ok, err := locations.ExistsActive(ctx, id)
					if err != nil {
						responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking location"))
						return
					}
					if !ok {
						responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "selected location does not exist or is inactive"))
						return
					}
				}
				selected = &id
			}

			resolved, err := scope.Resolve(RoleFromContext(ctx), AssignedLocationFromContext(ctx), selected)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}

			ctx = context.WithValue(ctx, ctxScope, resolved)
			if logg != nil {
				if locationID, ok := resolved.LocationID(); ok {
					ctx = logg.WithLocationID(ctx, locationID.String())
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
