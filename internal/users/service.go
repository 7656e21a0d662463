package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storeratings/storeratings-backend/pkg/db"
	"github.com/storeratings/storeratings-backend/pkg/db/models"
	"github.com/storeratings/storeratings-backend/pkg/enums"
	pkgerrors "github.com/storeratings/storeratings-backend/pkg/errors"
	"github.com/storeratings/storeratings-backend/pkg/pagination"
)

const (
	duplicateEmailMessage  = "email already registered"
	emailUniqueConstraint  = "users_email_key"
	sqliteEmailConstraint  = "users.email"
	wrongPasswordMessage   = "current password is incorrect"
	userNotFoundMessage    = "user not found"
	ownerRoleLockedMessage = "user owns a store; unlink the store before changing role"
)

// Service exposes profile and admin user operations.
type Service interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*UserDTO, error)
	ChangePassword(ctx context.Context, id uuid.UUID, req ChangePasswordRequest) error

	List(ctx context.Context, filter ListFilter) (pagination.Page[UserDTO], error)
	Get(ctx context.Context, id uuid.UUID) (*UserDetailDTO, error)
	Create(ctx context.Context, req CreateUserRequest) (*UserDTO, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*UserDTO, error)
	Delete(ctx context.Context, actorID, id uuid.UUID) error

	// EnsureAdmin creates a system_admin for req.Email unless one already exists.
	EnsureAdmin(ctx context.Context, req CreateUserRequest) (*UserDTO, bool, error)
}

type userRepository interface {
	Create(ctx context.Context, dto CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListFilter) ([]models.User, int64, error)
}

// PasswordHasher is satisfied by security.Hasher.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

type ownedStoreLookup interface {
	FindByOwnerWithStats(ctx context.Context, ownerID uuid.UUID) (*models.StoreWithStats, error)
}

type ServiceParams struct {
	Repo   userRepository
	Hasher PasswordHasher
	Stores ownedStoreLookup
}

type service struct {
	repo   userRepository
	hasher PasswordHasher
	stores ownedStoreLookup
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.Hasher == nil {
		return nil, fmt.Errorf("password hasher required")
	}
	if params.Stores == nil {
		return nil, fmt.Errorf("store lookup required")
	}
	return &service{repo: params.Repo, hasher: params.Hasher, stores: params.Stores}, nil
}

func (s *service) GetProfile(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "load user")
	}
	return FromModel(user), nil
}

func (s *service) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*UserDTO, error) {
	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Address != nil {
		updates["address"] = strings.TrimSpace(*req.Address)
	}
	user, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, mapLookupError(err, "update profile")
		}
		return nil, MapWriteError(err, "update profile")
	}
	return FromModel(user), nil
}

func (s *service) ChangePassword(ctx context.Context, id uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return mapLookupError(err, "load user")
	}

	ok, err := s.hasher.Verify(req.CurrentPassword, user.PasswordHash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, wrongPasswordMessage).
			WithDetails(map[string]string{"current_password": "is incorrect"})
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.repo.UpdatePasswordHash(ctx, id, hash); err != nil {
		return mapLookupError(err, "update password")
	}
	return nil
}

func (s *service) List(ctx context.Context, filter ListFilter) (pagination.Page[UserDTO], error) {
	filter.Page = pagination.NewParams(filter.Page.Page, filter.Page.Limit)
	if filter.Sort.Field == "" {
		filter.Sort = SortSpec.Resolve("", "")
	}

	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return pagination.Page[UserDTO]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}
	items := make([]UserDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	return pagination.NewPage(items, filter.Page, total), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserDetailDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "load user")
	}
	detail := &UserDetailDTO{UserDTO: *FromModel(user)}
	if user.Role != enums.RoleStoreOwner {
		return detail, nil
	}

	store, err := s.stores.FindByOwnerWithStats(ctx, user.ID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load owned store")
	default:
		detail.Store = ownedStoreFromModel(store)
	}
	return detail, nil
}

func (s *service) Create(ctx context.Context, req CreateUserRequest) (*UserDTO, error) {
	if !req.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role").WithDetails(map[string]string{"role": "must be a known role"})
	}
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	user, err := s.repo.Create(ctx, CreateUserDTO{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Address:      req.Address,
		Role:         req.Role,
	})
	if err != nil {
		return nil, MapWriteError(err, "create user")
	}
	return FromModel(user), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*UserDTO, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "load user")
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		updates["email"] = NormalizeEmail(*req.Email)
	}
	if req.Address != nil {
		updates["address"] = strings.TrimSpace(*req.Address)
	}
	if req.Role != nil && *req.Role != current.Role {
		if !req.Role.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role").WithDetails(map[string]string{"role": "must be a known role"})
		}
		if current.Role == enums.RoleStoreOwner {
			if err := s.ensureOwnsNoStore(ctx, id); err != nil {
				return nil, err
			}
		}
		updates["role"] = *req.Role
	}

	user, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, mapLookupError(err, "update user")
		}
		return nil, MapWriteError(err, "update user")
	}
	return FromModel(user), nil
}

func (s *service) ensureOwnsNoStore(ctx context.Context, id uuid.UUID) error {
	_, err := s.stores.FindByOwnerWithStats(ctx, id)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	case err != nil:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load owned store")
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, ownerRoleLockedMessage).WithDetails(map[string]string{"role": "user owns a store"})
	}
}

func (s *service) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return pkgerrors.New(pkgerrors.CodeValidation, "administrators cannot delete their own account")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapLookupError(err, "delete user")
	}
	return nil
}

func (s *service) EnsureAdmin(ctx context.Context, req CreateUserRequest) (*UserDTO, bool, error) {
	existing, err := s.repo.FindByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return FromModel(existing), false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup admin")
	}

	req.Role = enums.RoleSystemAdmin
	user, err := s.Create(ctx, req)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func mapLookupError(err error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, userNotFoundMessage)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}

// MapWriteError turns a duplicate email or a schema CHECK failure into a
// client error.
func MapWriteError(err error, action string) error {
	if db.IsUniqueViolation(err, emailUniqueConstraint) || db.IsUniqueViolation(err, sqliteEmailConstraint) {
		return pkgerrors.Wrap(pkgerrors.CodeDuplicate, err, duplicateEmailMessage).
			WithDetails(map[string]string{"email": "already registered"})
	}
	if db.IsCheckViolation(err) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "user fields out of range")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}
