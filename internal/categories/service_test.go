package categories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hbarretto/franchisepos-backend/internal/scope"
	"github.com/hbarretto/franchisepos-backend/pkg/db/models"
	pkgerrors "github.com/hbarretto/franchisepos-backend/pkg/errors"
)

type stubCategoryRepo struct {
	category *models.Category
	taken    bool
	err      error
	created  *models.Category
	updated  *models.Category
}

func (s *stubCategoryRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCategoryRepo) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	if s.err != nil {
		return nil, s.err
	}
	category.ID = uuid.New()
	s.created = category
	return category, nil
}

func (s *stubCategoryRepo) Update(ctx context.Context, category *models.Category) (*models.Category, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.updated = category
	return category, nil
}

func (s *stubCategoryRepo) FindByID(ctx context.Context, sc scope.Scope, id uuid.UUID) (*models.Category, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.category == nil {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.category
	return &copied, nil
}

func (s *stubCategoryRepo) List(ctx context.Context, sc scope.Scope, activeOnly bool) ([]models.Category, error) {
	return nil, s.err
}

func (s *stubCategoryRepo) ExistsInLocation(ctx context.Context, id, locationID uuid.UUID) (bool, error) {
	return false, s.err
}

func (s *stubCategoryRepo) NameTakenInLocation(ctx context.Context, name string, locationID uuid.UUID) (bool, error) {
	return s.taken, s.err
}

func TestServiceCreateRejectsDuplicateName(t *testing.T) {
	svc, err := NewService(&stubCategoryRepo{taken: true})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Create(context.Background(), uuid.New(), CreateCategoryInput{Name: "Teas"})
	if !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestServiceCreateDefaultsToActive(t *testing.T) {
	repo := &stubCategoryRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	created, err := svc.Create(context.Background(), uuid.New(), CreateCategoryInput{Name: "Teas"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !created.IsActive {
		t.Fatal("new category should be active")
	}
}

func TestServiceUpdateMapsNotFound(t *testing.T) {
	svc, err := NewService(&stubCategoryRepo{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	name := "Spices"
	_, err = svc.Update(context.Background(), uuid.New(), uuid.New(), UpdateCategoryInput{Name: &name})
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServiceDeactivateIsIdempotent(t *testing.T) {
	repo := &stubCategoryRepo{category: &models.Category{ID: uuid.New(), IsActive: false}}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if err := svc.Deactivate(context.Background(), uuid.New(), repo.category.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if repo.updated != nil {
		t.Fatal("already inactive category should not be rewritten")
	}
}
