package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hbarretto/franchisepos-backend/internal/scope"
	"github.com/hbarretto/franchisepos-backend/pkg/config"
	"github.com/hbarretto/franchisepos-backend/pkg/db"
	"github.com/hbarretto/franchisepos-backend/pkg/db/models"
	"github.com/hbarretto/franchisepos-backend/pkg/enums"
	pkgerrors "github.com/hbarretto/franchisepos-backend/pkg/errors"
	"github.com/hbarretto/franchisepos-backend/pkg/logger"
	"github.com/hbarretto/franchisepos-backend/pkg/security"
)

const tempPasswordLength = 12

type locationChecker interface {
	ExistsActive(ctx context.Context, id uuid.UUID) (bool, error)
}

// CreateUserInput describes a new staff account.
type CreateUserInput struct {
	Email      string  `json:"email" validate:"required,email"`
	FullName   string  `json:"full_name" validate:"required,min=1,max=150"`
	Role       string  `json:"role" validate:"required"`
	LocationID *string `json:"location_id,omitempty" validate:"omitempty,uuid"`
	Password   string  `json:"password" validate:"required,min=8,max=128"`
}

// Service defines staff account management.
type Service interface {
	Create(ctx context.Context, actorRole enums.UserRole, input CreateUserInput) (*models.User, error)
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, sc scope.Scope, activeOnly bool) ([]models.User, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.User, error)
	ResetPassword(ctx context.Context, email string) error
}

type service struct {
	repo        Repository
	locations   locationChecker
	passwordCfg config.PasswordConfig
	log         *logger.Logger
}

// NewService wires the user service.
func NewService(repo Repository, locations locationChecker, passwordCfg config.PasswordConfig, log *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if locations == nil {
		return nil, fmt.Errorf("location checker required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, locations: locations, passwordCfg: passwordCfg, log: log}, nil
}

func (s *service) Create(ctx context.Context, actorRole enums.UserRole, input CreateUserInput) (*models.User, error) {
	role, err := enums.ParseUserRole(input.Role)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	// Only a superadmin may mint another superadmin.
	if role == enums.UserRoleSuperadmin && actorRole != enums.UserRoleSuperadmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only a superadmin can grant the superadmin role")
	}

	var locationID *uuid.UUID
	if role.RequiresLocation() {
		if input.LocationID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "location is required for this role")
		}
		parsed, err := uuid.Parse(*input.LocationID)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid location id")
		}
		ok, err := s.locations.ExistsActive(ctx, parsed)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking location")
		}
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "location does not exist or is inactive")
		}
		locationID = &parsed
	} else if input.LocationID != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "superadmins carry no location assignment")
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	user := &models.User{
		Email:        input.Email,
		FullName:     input.FullName,
		PasswordHash: hash,
		Role:         role,
		LocationID:   locationID,
		IsActive:     true,
	}
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if db.IsUniqueViolation(err, "users_email_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating user")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupErr(err)
	}
	return user, nil
}

func (s *service) List(ctx context.Context, sc scope.Scope, activeOnly bool) ([]models.User, error) {
	rows, err := s.repo.List(ctx, sc, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing users")
	}
	return rows, nil
}

func (s *service) SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupErr(err)
	}
	if user.IsActive == active {
		return user, nil
	}
	user.IsActive = active
	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating user status")
	}
	return updated, nil
}

// ResetPassword rotates the account's credentials to a temporary password.
// The endpoint is fire-and-forget: the outcome is identical whether or not
// the email matches an account, so callers cannot probe for valid emails.
// Delivery of the temporary password happens out-of-band.
func (s *service) ResetPassword(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Info(s.log.WithField(ctx, "email", email), "password reset requested for unknown email")
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading user")
	}

	temp, err := security.GenerateTempPassword(tempPasswordLength)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating temp password")
	}
	hash, err := security.HashPassword(temp, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing temp password")
	}

	user.PasswordHash = hash
	if _, err := s.repo.Update(ctx, user); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving temp password")
	}

	s.log.Info(s.log.WithUserID(ctx, user.ID.String()), "temporary password issued")
	return nil
}

func mapLookupErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading user")
}
