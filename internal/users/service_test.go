package users

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hbarretto/franchisepos-backend/internal/scope"
	"github.com/hbarretto/franchisepos-backend/pkg/config"
	"github.com/hbarretto/franchisepos-backend/pkg/db/models"
	"github.com/hbarretto/franchisepos-backend/pkg/enums"
	pkgerrors "github.com/hbarretto/franchisepos-backend/pkg/errors"
	"github.com/hbarretto/franchisepos-backend/pkg/logger"
	"github.com/hbarretto/franchisepos-backend/pkg/security"
)

type stubUserRepo struct {
	user    *models.User
	byEmail *models.User
	err     error
	created *models.User
	updated *models.User
}

func (s *stubUserRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	user.ID = uuid.New()
	s.created = user
	return user, nil
}

func (s *stubUserRepo) Update(ctx context.Context, user *models.User) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.updated = user
	return user, nil
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.user == nil {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.user
	return &copied, nil
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.byEmail == nil {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.byEmail
	return &copied, nil
}

func (s *stubUserRepo) List(ctx context.Context, sc scope.Scope, activeOnly bool) ([]models.User, error) {
	return nil, s.err
}

func (s *stubUserRepo) Count(ctx context.Context) (int64, error) {
	return 0, s.err
}

func (s *stubUserRepo) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	return s.err
}

type stubLocationChecker struct {
	exists bool
	err    error
}

func (s stubLocationChecker) ExistsActive(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.exists, s.err
}

func newTestService(t *testing.T, repo Repository, locations locationChecker) Service {
	t.Helper()
	log := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(repo, locations, config.PasswordConfig{}, log)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestServiceCreateRejectsSuperadminGrantByAdmin(t *testing.T) {
	svc := newTestService(t, &stubUserRepo{}, stubLocationChecker{exists: true})

	_, err := svc.Create(context.Background(), enums.UserRoleAdmin, CreateUserInput{
		Email:    "root@franchise.test",
		FullName: "Root",
		Role:     "superadmin",
		Password: "s3cret-pass",
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestServiceCreateSuperadminBySuperadmin(t *testing.T) {
	repo := &stubUserRepo{}
	svc := newTestService(t, repo, stubLocationChecker{exists: true})

	created, err := svc.Create(context.Background(), enums.UserRoleSuperadmin, CreateUserInput{
		Email:    "root@franchise.test",
		FullName: "Root",
		Role:     "superadmin",
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.LocationID != nil {
		t.Fatal("superadmin should carry no location")
	}
}

func TestServiceCreateRequiresLocationForStaff(t *testing.T) {
	svc := newTestService(t, &stubUserRepo{}, stubLocationChecker{exists: true})

	_, err := svc.Create(context.Background(), enums.UserRoleSuperadmin, CreateUserInput{
		Email:    "sales@franchise.test",
		FullName: "Sales",
		Role:     "salesperson",
		Password: "s3cret-pass",
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceCreateRejectsInactiveLocation(t *testing.T) {
	svc := newTestService(t, &stubUserRepo{}, stubLocationChecker{exists: false})

	locationID := uuid.NewString()
	_, err := svc.Create(context.Background(), enums.UserRoleSuperadmin, CreateUserInput{
		Email:      "sales@franchise.test",
		FullName:   "Sales",
		Role:       "salesperson",
		LocationID: &locationID,
		Password:   "s3cret-pass",
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceCreateHashesPassword(t *testing.T) {
	repo := &stubUserRepo{}
	svc := newTestService(t, repo, stubLocationChecker{exists: true})

	locationID := uuid.NewString()
	created, err := svc.Create(context.Background(), enums.UserRoleAdmin, CreateUserInput{
		Email:      "sales@franchise.test",
		FullName:   "Sales",
		Role:       "salesperson",
		LocationID: &locationID,
		Password:   "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.PasswordHash == "s3cret-pass" {
		t.Fatal("password stored in plain text")
	}
	ok, err := security.VerifyPassword("s3cret-pass", created.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("stored hash does not verify: ok=%v err=%v", ok, err)
	}
}

func TestServiceCreateMapsDuplicateEmailToConflict(t *testing.T) {
	repo := &stubUserRepo{err: errors.New(`ERROR: duplicate key value violates unique constraint "users_email_key" (SQLSTATE 23505)`)}
	svc := newTestService(t, repo, stubLocationChecker{exists: true})

	locationID := uuid.NewString()
	_, err := svc.Create(context.Background(), enums.UserRoleAdmin, CreateUserInput{
		Email:      "sales@franchise.test",
		FullName:   "Sales",
		Role:       "salesperson",
		LocationID: &locationID,
		Password:   "s3cret-pass",
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestServiceSetActiveIsIdempotent(t *testing.T) {
	repo := &stubUserRepo{user: &models.User{ID: uuid.New(), IsActive: true}}
	svc := newTestService(t, repo, stubLocationChecker{exists: true})

	_, err := svc.SetActive(context.Background(), repo.user.ID, true)
	if err != nil {
		t.Fatalf("set active: %v", err)
	}
	if repo.updated != nil {
		t.Fatal("unchanged status should not be rewritten")
	}

	updated, err := svc.SetActive(context.Background(), repo.user.ID, false)
	if err != nil {
		t.Fatalf("set active: %v", err)
	}
	if updated.IsActive {
		t.Fatal("expected user deactivated")
	}
}

func TestServiceResetPasswordSwallowsUnknownEmail(t *testing.T) {
	repo := &stubUserRepo{}
	svc := newTestService(t, repo, stubLocationChecker{exists: true})

	if err := svc.ResetPassword(context.Background(), "nobody@franchise.test"); err != nil {
		t.Fatalf("reset for unknown email should not error: %v", err)
	}
	if repo.updated != nil {
		t.Fatal("nothing should be written for an unknown email")
	}
}

func TestServiceResetPasswordRotatesHash(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "asha@franchise.test", PasswordHash: "old-hash"}
	repo := &stubUserRepo{byEmail: user}
	svc := newTestService(t, repo, stubLocationChecker{exists: true})

	if err := svc.ResetPassword(context.Background(), user.Email); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if repo.updated == nil {
		t.Fatal("expected user rewritten with new hash")
	}
	if repo.updated.PasswordHash == "old-hash" {
		t.Fatal("password hash was not rotated")
	}
}
