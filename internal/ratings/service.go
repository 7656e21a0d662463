package ratings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storeratings/storeratings-backend/pkg/db"
	"github.com/storeratings/storeratings-backend/pkg/db/models"
	pkgerrors "github.com/storeratings/storeratings-backend/pkg/errors"
	"github.com/storeratings/storeratings-backend/pkg/metrics"
	"github.com/storeratings/storeratings-backend/pkg/pagination"
)

const (
	storeNotFoundMessage  = "store not found"
	ratingNotFoundMessage = "rating not found"
)

type ratingRepository interface {
	StoreExists(ctx context.Context, storeID uuid.UUID) (bool, error)
	Find(ctx context.Context, userID, storeID uuid.UUID) (*models.Rating, error)
	Upsert(ctx context.Context, rating *models.Rating) error
	DeleteByUserStore(ctx context.Context, userID, storeID uuid.UUID) (int64, error)
	DeleteByID(ctx context.Context, id uuid.UUID) (int64, error)
	Stats(ctx context.Context, storeID uuid.UUID) (models.StoreRatingStats, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page pagination.Params) ([]RatingRow, int64, error)
	ListAll(ctx context.Context, filter AdminFilter) ([]RatingRow, int64, error)
}

type submissionCounter interface {
	Inc(outcome string)
}

// Service defines rating submission and moderation.
type Service interface {
	Submit(ctx context.Context, userID, storeID uuid.UUID, req SubmitRatingRequest) (*SubmitResult, error)
	Delete(ctx context.Context, userID, storeID uuid.UUID) (*StoreAggregate, error)
	ListMine(ctx context.Context, userID uuid.UUID, page pagination.Params) (pagination.Page[MyRatingDTO], error)
	AdminList(ctx context.Context, filter AdminFilter) (pagination.Page[AdminRatingDTO], error)
	AdminDelete(ctx context.Context, id uuid.UUID) error
}

type ServiceParams struct {
	Repo    ratingRepository
	Metrics submissionCounter
}

type service struct {
	repo    ratingRepository
	metrics submissionCounter
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("ratings repository required")
	}
	counter := params.Metrics
	if counter == nil {
		counter = (*metrics.RatingMetrics)(nil)
	}
	return &service{repo: params.Repo, metrics: counter}, nil
}

func (s *service) Submit(ctx context.Context, userID, storeID uuid.UUID, req SubmitRatingRequest) (*SubmitResult, error) {
	if req.Rating < MinRating || req.Rating > MaxRating {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5").
			WithDetails(map[string]string{"rating": "must be between 1 and 5"})
	}
	comment := normalizeComment(req.Comment)
	if comment != nil && len([]rune(*comment)) > maxCommentLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "comment too long").
			WithDetails(map[string]string{"comment": "must be at most 1000 characters"})
	}

	exists, err := s.repo.StoreExists(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, storeNotFoundMessage)
	}

	created := false
	if _, err := s.repo.Find(ctx, userID, storeID); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load rating")
		}
		created = true
	}

	if err := s.repo.Upsert(ctx, &models.Rating{
		UserID:  userID,
		StoreID: storeID,
		Rating:  req.Rating,
		Comment: comment,
	}); err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, storeNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save rating")
	}

	saved, err := s.repo.Find(ctx, userID, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload rating")
	}
	aggregate, err := s.aggregate(ctx, storeID)
	if err != nil {
		return nil, err
	}

	if created {
		s.metrics.Inc(metrics.RatingCreated)
	} else {
		s.metrics.Inc(metrics.RatingUpdated)
	}
	return &SubmitResult{Rating: FromModel(saved), Store: *aggregate, Created: created}, nil
}

func (s *service) Delete(ctx context.Context, userID, storeID uuid.UUID) (*StoreAggregate, error) {
	removed, err := s.repo.DeleteByUserStore(ctx, userID, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete rating")
	}
	if removed == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, ratingNotFoundMessage)
	}
	s.metrics.Inc(metrics.RatingDeleted)
	return s.aggregate(ctx, storeID)
}

func (s *service) aggregate(ctx context.Context, storeID uuid.UUID) (*StoreAggregate, error) {
	row, err := s.repo.Stats(ctx, storeID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = models.StoreRatingStats{StoreID: storeID}
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store aggregate")
	}
	out := aggregateFromStats(row)
	return &out, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, page pagination.Params) (pagination.Page[MyRatingDTO], error) {
	page = pagination.NewParams(page.Page, page.Limit)
	rows, total, err := s.repo.ListByUser(ctx, userID, page)
	if err != nil {
		return pagination.Page[MyRatingDTO]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list ratings")
	}
	items := make([]MyRatingDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, MyRatingDTO{RatingDTO: row.base(), StoreName: row.StoreName, StoreAddress: row.StoreAddress})
	}
	return pagination.NewPage(items, page, total), nil
}

func (s *service) AdminList(ctx context.Context, filter AdminFilter) (pagination.Page[AdminRatingDTO], error) {
	filter.Page = pagination.NewParams(filter.Page.Page, filter.Page.Limit)
	rows, total, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return pagination.Page[AdminRatingDTO]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list ratings")
	}
	items := make([]AdminRatingDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, AdminRatingDTO{
			RatingDTO: row.base(),
			UserName:  row.UserName,
			UserEmail: row.UserEmail,
			StoreName: row.StoreName,
		})
	}
	return pagination.NewPage(items, filter.Page, total), nil
}

func (s *service) AdminDelete(ctx context.Context, id uuid.UUID) error {
	removed, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete rating")
	}
	if removed == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, ratingNotFoundMessage)
	}
	s.metrics.Inc(metrics.RatingDeleted)
	return nil
}
