package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storeratings/storeratings-backend/pkg/config"
	"github.com/storeratings/storeratings-backend/pkg/db/models"
	"github.com/storeratings/storeratings-backend/pkg/enums"
	pkgerrors "github.com/storeratings/storeratings-backend/pkg/errors"
	"github.com/storeratings/storeratings-backend/pkg/pagination"
	"github.com/storeratings/storeratings-backend/pkg/stats"
)

const (
	defaultTrendDays    = 30
	defaultTopStores    = 5
	defaultRecentRating = 10
)

// Service provides the owner and admin dashboards.
type Service interface {
	OwnerDashboard(ctx context.Context, ownerID uuid.UUID) (*OwnerDashboard, error)
	OwnerRaters(ctx context.Context, ownerID uuid.UUID, sort pagination.Sort, page pagination.Params) (pagination.Page[RaterDTO], error)
	AdminDashboard(ctx context.Context) (*AdminDashboard, error)
}

type analyticsRepository interface {
	StoreForOwner(ctx context.Context, ownerID uuid.UUID) (*models.Store, error)
	Summary(ctx context.Context, storeID *uuid.UUID) (summaryRow, error)
	Distribution(ctx context.Context, storeID *uuid.UUID) (map[int]int64, error)
	PointsSince(ctx context.Context, storeID *uuid.UUID, since time.Time) ([]RatingPoint, error)
	Raters(ctx context.Context, storeID uuid.UUID, sort pagination.Sort, page pagination.Params) ([]RaterRow, int64, error)
	Totals(ctx context.Context) (Totals, error)
	CreatedSince(ctx context.Context, since time.Time) (Totals, error)
	TopStores(ctx context.Context, limit int) ([]models.StoreWithStats, error)
}

type roleCounter interface {
	CountByRole(ctx context.Context) (map[enums.Role]int64, error)
}

type ServiceParams struct {
	Repo   analyticsRepository
	Users  roleCounter
	Config config.AnalyticsConfig
	Now    func() time.Time
}

type service struct {
	repo  analyticsRepository
	users roleCounter
	cfg   config.AnalyticsConfig
	now   func() time.Time
}

// NewService builds the dashboard service. Zero config values fall back to defaults.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("analytics repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	cfg := params.Config
	if cfg.TrendWindowDays <= 0 {
		cfg.TrendWindowDays = defaultTrendDays
	}
	if cfg.TopStoresLimit <= 0 {
		cfg.TopStoresLimit = defaultTopStores
	}
	if cfg.RecentRatingsLimit <= 0 {
		cfg.RecentRatingsLimit = defaultRecentRating
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, users: params.Users, cfg: cfg, now: now}, nil
}

func (s *service) ownerStore(ctx context.Context, ownerID uuid.UUID) (*models.Store, error) {
	store, err := s.repo.StoreForOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "no store is linked to this owner")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load owner store")
	}
	return store, nil
}

func (s *service) OwnerDashboard(ctx context.Context, ownerID uuid.UUID) (*OwnerDashboard, error) {
	store, err := s.ownerStore(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	summary, err := s.summarize(ctx, &store.ID)
	if err != nil {
		return nil, err
	}
	trend, err := s.trend(ctx, &store.ID)
	if err != nil {
		return nil, err
	}

	recent, _, err := s.repo.Raters(ctx, store.ID, RatersSortSpec.Resolve("", ""), pagination.NewParams(1, s.cfg.RecentRatingsLimit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load recent ratings")
	}
	recentDTOs := make([]RaterDTO, 0, len(recent))
	for _, row := range recent {
		recentDTOs = append(recentDTOs, row.toDTO())
	}

	return &OwnerDashboard{
		Store: OwnerStoreDTO{
			ID:      store.ID,
			Name:    store.Name,
			Email:   store.Email,
			Address: store.Address,
		},
		RatingSummary: *summary,
		WindowDays:    s.cfg.TrendWindowDays,
		Trend:         trend,
		RecentRatings: recentDTOs,
	}, nil
}

func (s *service) OwnerRaters(ctx context.Context, ownerID uuid.UUID, sort pagination.Sort, page pagination.Params) (pagination.Page[RaterDTO], error) {
	store, err := s.ownerStore(ctx, ownerID)
	if err != nil {
		return pagination.Page[RaterDTO]{}, err
	}
	page = pagination.NewParams(page.Page, page.Limit)
	if sort.Field == "" {
		sort = RatersSortSpec.Resolve("", "")
	}

	rows, total, err := s.repo.Raters(ctx, store.ID, sort, page)
	if err != nil {
		return pagination.Page[RaterDTO]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list raters")
	}
	items := make([]RaterDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDTO())
	}
	return pagination.NewPage(items, page, total), nil
}

func (s *service) AdminDashboard(ctx context.Context) (*AdminDashboard, error) {
	totals, err := s.repo.Totals(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count totals")
	}
	byRole, err := s.users.CountByRole(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count users by role")
	}
	summary, err := s.summarize(ctx, nil)
	if err != nil {
		return nil, err
	}

	since := WindowStart(s.now(), s.cfg.TrendWindowDays)
	created, err := s.repo.CreatedSince(ctx, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count growth")
	}
	trend, err := s.trend(ctx, nil)
	if err != nil {
		return nil, err
	}

	top, err := s.repo.TopStores(ctx, s.cfg.TopStoresLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load top stores")
	}
	topDTOs := make([]TopStoreDTO, 0, len(top))
	for _, row := range top {
		topDTOs = append(topDTOs, TopStoreDTO{
			ID:            row.ID,
			Name:          row.Name,
			AverageRating: stats.Round2(row.AverageRating),
			TotalRatings:  row.TotalRatings,
		})
	}

	return &AdminDashboard{
		Totals:        totals,
		UsersByRole:   byRole,
		RatingSummary: *summary,
		Growth: Growth{
			WindowDays: s.cfg.TrendWindowDays,
			NewUsers:   created.Users,
			NewStores:  created.Stores,
			NewRatings: created.Ratings,
		},
		TopStores: topDTOs,
		Trend:     trend,
	}, nil
}

func (s *service) summarize(ctx context.Context, storeID *uuid.UUID) (*RatingSummary, error) {
	row, err := s.repo.Summary(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summarize ratings")
	}
	counts, err := s.repo.Distribution(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load distribution")
	}

	distribution := make([]DistributionBucket, 0, 5)
	for score := 1; score <= 5; score++ {
		distribution = append(distribution, DistributionBucket{
			Rating:  score,
			Count:   counts[score],
			Percent: stats.Percent(counts[score], row.Count),
		})
	}

	return &RatingSummary{
		AverageRating: stats.Average(row.Sum, row.Count),
		TotalRatings:  row.Count,
		PositiveShare: stats.Percent(row.Positive, row.Count),
		NegativeShare: stats.Percent(row.Negative, row.Count),
		MinRating:     row.MinRating,
		MaxRating:     row.MaxRating,
		Distribution:  distribution,
	}, nil
}

func (s *service) trend(ctx context.Context, storeID *uuid.UUID) ([]TrendPoint, error) {
	start := WindowStart(s.now(), s.cfg.TrendWindowDays)
	points, err := s.repo.PointsSince(ctx, storeID, start)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load trend")
	}
	return BuildTrend(points, start, s.cfg.TrendWindowDays), nil
}
