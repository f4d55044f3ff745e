package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hbarretto/franchisepos-backend/internal/scope"
	"github.com/hbarretto/franchisepos-backend/pkg/db/models"
	pkgerrors "github.com/hbarretto/franchisepos-backend/pkg/errors"
)

// Service exposes read access to committed sales. Writes happen only through
// checkout, which persists via the repository inside its own transaction.
type Service interface {
	Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (*models.Sale, error)
	List(ctx context.Context, sc scope.Scope, query ListQuery) (*ListResult, error)
}

type service struct {
	repo Repository
}

// NewService wires the sales service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (*models.Sale, error) {
	sale, err := s.repo.FindByID(ctx, sc, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading sale")
	}
	return sale, nil
}

func (s *service) List(ctx context.Context, sc scope.Scope, query ListQuery) (*ListResult, error) {
	result, err := s.repo.List(ctx, sc, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing sales")
	}
	return result, nil
}
