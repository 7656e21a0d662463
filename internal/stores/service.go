package stores

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
	storeNotFoundMessage  = "store not found"
	duplicateEmailMessage = "store email already exists"
)

type storeRepository interface {
	List(ctx context.Context, in ListInput) ([]models.StoreWithStats, int64, error)
	FindByIDWithStats(ctx context.Context, id uuid.UUID) (*models.StoreWithStats, error)
	FindByOwnerWithStats(ctx context.Context, ownerID uuid.UUID) (*models.StoreWithStats, error)
	Create(ctx context.Context, store *models.Store) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListRatings(ctx context.Context, storeID uuid.UUID, sort pagination.Sort, page pagination.Params) ([]StoreRatingRow, int64, error)
	UserRatings(ctx context.Context, userID uuid.UUID, storeIDs []uuid.UUID) (map[uuid.UUID]int, error)
}

type userLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service exposes store browsing and admin store management.
type Service interface {
	List(ctx context.Context, in ListInput) (pagination.Page[StoreDTO], error)
	Get(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*StoreDTO, error)
	ListRatings(ctx context.Context, storeID uuid.UUID, page pagination.Params) (pagination.Page[StoreRatingDTO], error)
	Create(ctx context.Context, req CreateStoreRequest) (*StoreDTO, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateStoreRequest) (*StoreDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo  storeRepository
	users userLookup
}

// NewService builds a store service with the provided repositories.
func NewService(repo storeRepository, users userLookup) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo, users: users}, nil
}

func (s *service) List(ctx context.Context, in ListInput) (pagination.Page[StoreDTO], error) {
	in.Page = pagination.NewParams(in.Page.Page, in.Page.Limit)
	if in.Sort.Field == "" {
		in.Sort = SortSpec.Resolve("", "")
	}
	in.Search = strings.TrimSpace(in.Search)

	rows, total, err := s.repo.List(ctx, in)
	if err != nil {
		return pagination.Page[StoreDTO]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list stores")
	}

	items := make([]StoreDTO, 0, len(rows))
	ids := make([]uuid.UUID, 0, len(rows))
	for i := range rows {
		items = append(items, FromStats(&rows[i]))
		ids = append(ids, rows[i].ID)
	}
	if err := s.attachUserRatings(ctx, in.ViewerID, ids, items); err != nil {
		return pagination.Page[StoreDTO]{}, err
	}
	return pagination.NewPage(items, in.Page, total), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*StoreDTO, error) {
	row, err := s.repo.FindByIDWithStats(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "load store")
	}
	items := []StoreDTO{FromStats(row)}
	if err := s.attachUserRatings(ctx, viewerID, []uuid.UUID{id}, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (s *service) attachUserRatings(ctx context.Context, viewerID *uuid.UUID, ids []uuid.UUID, items []StoreDTO) error {
	if viewerID == nil || len(ids) == 0 {
		return nil
	}
	mine, err := s.repo.UserRatings(ctx, *viewerID, ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user ratings")
	}
	for i := range items {
		if value, ok := mine[items[i].ID]; ok {
			v := value
			items[i].UserRating = &v
		}
	}
	return nil
}

func (s *service) ListRatings(ctx context.Context, storeID uuid.UUID, page pagination.Params) (pagination.Page[StoreRatingDTO], error) {
	if _, err := s.repo.FindByIDWithStats(ctx, storeID); err != nil {
		return pagination.Page[StoreRatingDTO]{}, mapLookupError(err, "load store")
	}
	page = pagination.NewParams(page.Page, page.Limit)

	rows, total, err := s.repo.ListRatings(ctx, storeID, RatingsSortSpec.Resolve("", ""), page)
	if err != nil {
		return pagination.Page[StoreRatingDTO]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list store ratings")
	}
	items := make([]StoreRatingDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDTO())
	}
	return pagination.NewPage(items, page, total), nil
}

func (s *service) Create(ctx context.Context, req CreateStoreRequest) (*StoreDTO, error) {
	if req.OwnerID != nil {
		if err := s.validateOwner(ctx, *req.OwnerID, uuid.Nil); err != nil {
			return nil, err
		}
	}

	store := req.toModel()
	if err := s.repo.Create(ctx, store); err != nil {
		return nil, mapWriteError(err, "create store")
	}
	return s.Get(ctx, store.ID, nil)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateStoreRequest) (*StoreDTO, error) {
	if _, err := s.repo.FindByIDWithStats(ctx, id); err != nil {
		return nil, mapLookupError(err, "load store")
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		updates["email"] = normalizeEmail(*req.Email)
	}
	if req.Address != nil {
		updates["address"] = strings.TrimSpace(*req.Address)
	}
	if req.OwnerID.Set {
		if req.OwnerID.ID != nil {
			if err := s.validateOwner(ctx, *req.OwnerID.ID, id); err != nil {
				return nil, err
			}
			updates["owner_id"] = *req.OwnerID.ID
		} else {
			updates["owner_id"] = nil
		}
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, mapLookupError(err, "update store")
		}
		return nil, mapWriteError(err, "update store")
	}
	return s.Get(ctx, id, nil)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapLookupError(err, "delete store")
	}
	return nil
}

// validateOwner requires an existing store_owner with no store other than storeID.
func (s *service) validateOwner(ctx context.Context, ownerID, storeID uuid.UUID) error {
	owner, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ownerError("owner does not exist")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load owner")
	}
	if owner.Role != enums.RoleStoreOwner {
		return ownerError("owner must have the store_owner role")
	}

	existing, err := s.repo.FindByOwnerWithStats(ctx, ownerID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	case err != nil:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load owner store")
	case existing.ID != storeID:
		return ownerError("owner already has a store")
	}
	return nil
}

func ownerError(message string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(map[string]string{"owner_id": message})
}

func mapLookupError(err error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, storeNotFoundMessage)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}

func mapWriteError(err error, action string) error {
	switch {
	case db.IsUniqueViolation(err, "stores_email_key"), db.IsUniqueViolation(err, "stores.email"):
		return pkgerrors.Wrap(pkgerrors.CodeDuplicate, err, duplicateEmailMessage)
	case db.IsUniqueViolation(err, "stores_owner_id_key"), db.IsUniqueViolation(err, "stores.owner_id"):
		return ownerError("owner already has a store")
	case db.IsCheckViolation(err):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "store fields out of range")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}
