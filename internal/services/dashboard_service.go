package services

import (
	"context"
	"strings"

	"storerate/internal/models"
	"storerate/internal/repositories"
)

const (
	recentActivityLimit  = 10
	customerRecentLimit  = 5
	msgNoStoreForOwner   = "No store found for this owner"
	msgUnsupportedParams = "Invalid role or parameters"
)

// DashboardQuery selects whose dashboard to build. Only admins may set
// UserID and UserRole to look at another user's dashboard. StoreID picks one
// of a store owner's stores.
type DashboardQuery struct {
	UserID   string
	UserRole string
	StoreID  string
}

// DashboardStats holds the payload for exactly one role.
type DashboardStats struct {
	Role     models.Role
	Admin    *models.AdminStats
	Owner    *models.OwnerStats
	Customer *models.CustomerStats
}

// DashboardService computes role-scoped dashboard aggregates.
type DashboardService struct {
	dashRepo  repositories.DashboardRepository
	storeRepo repositories.StoreRepository
	userRepo  repositories.UserRepository
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(dashRepo repositories.DashboardRepository, storeRepo repositories.StoreRepository, userRepo repositories.UserRepository) *DashboardService {
	return &DashboardService{
		dashRepo:  dashRepo,
		storeRepo: storeRepo,
		userRepo:  userRepo,
	}
}

// Stats builds the dashboard of the caller, or of the user named in q when
// the caller is an admin.
func (s *DashboardService) Stats(ctx context.Context, actor Identity, q DashboardQuery) (*DashboardStats, error) {
	userID, role, err := s.target(ctx, actor, q)
	if err != nil {
		return nil, err
	}

	switch role {
	case models.RoleAdmin:
		stats, err := s.adminStats(ctx)
		if err != nil {
			return nil, err
		}
		return &DashboardStats{Role: role, Admin: stats}, nil
	case models.RoleStoreOwner:
		stats, err := s.ownerStats(ctx, userID, strings.TrimSpace(q.StoreID))
		if err != nil {
			return nil, err
		}
		return &DashboardStats{Role: role, Owner: stats}, nil
	case models.RoleCustomer:
		stats, err := s.customerStats(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &DashboardStats{Role: role, Customer: stats}, nil
	}
	return nil, newError(KindValidation, msgUnsupportedParams)
}

// target resolves the user and role whose dashboard is requested.
func (s *DashboardService) target(ctx context.Context, actor Identity, q DashboardQuery) (string, models.Role, error) {
	userID := strings.TrimSpace(q.UserID)
	role := models.Role(strings.TrimSpace(q.UserRole))

	if role != "" && !role.Valid() {
		return "", "", newError(KindValidation, msgUnsupportedParams)
	}
	if (userID == "" || userID == actor.UserID) && (role == "" || role == actor.Role) {
		return actor.UserID, actor.Role, nil
	}
	if !actor.IsAdmin() {
		return "", "", newError(KindForbidden, "You can only view your own dashboard")
	}
	if userID == "" {
		if role == models.RoleAdmin {
			return actor.UserID, role, nil
		}
		return "", "", newError(KindValidation, msgUnsupportedParams)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", "", fromRepo(err, msgUserNotFound, "")
	}
	if role != "" && role != user.Role {
		return "", "", newError(KindValidation, msgUnsupportedParams)
	}
	return user.ID, user.Role, nil
}

func (s *DashboardService) adminStats(ctx context.Context) (*models.AdminStats, error) {
	totals, err := s.dashRepo.Totals(ctx)
	if err != nil {
		return nil, fromRepo(err, "", "")
	}
	roles, err := s.dashRepo.RoleCounts(ctx)
	if err != nil {
		return nil, fromRepo(err, "", "")
	}
	for _, r := range []models.Role{models.RoleAdmin, models.RoleStoreOwner, models.RoleCustomer} {
		if _, ok := roles[r]; !ok {
			roles[r] = 0
		}
	}
	activity, err := s.dashRepo.RecentActivity(ctx, recentActivityLimit)
	if err != nil {
		return nil, fromRepo(err, "", "")
	}
	if activity == nil {
		activity = []models.ActivityEntry{}
	}
	return &models.AdminStats{
		TotalUsers:     totals.Users,
		TotalStores:    totals.Stores,
		TotalRatings:   totals.Ratings,
		UserRoles:      roles,
		RecentActivity: activity,
	}, nil
}

func (s *DashboardService) ownerStats(ctx context.Context, ownerID, storeID string) (*models.OwnerStats, error) {
	stores, err := s.storeRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fromRepo(err, "", "")
	}
	if len(stores) == 0 {
		return nil, newError(KindNotFound, msgNoStoreForOwner)
	}

	store := &stores[0]
	if storeID != "" {
		store = nil
		for i := range stores {
			if stores[i].ID == storeID {
				store = &stores[i]
				break
			}
		}
		if store == nil {
			return nil, newError(KindNotFound, msgStoreNotFound)
		}
	}

	reviews, err := s.dashRepo.StoreReviews(ctx, store.ID)
	if err != nil {
		return nil, fromRepo(err, "", "")
	}
	if reviews == nil {
		reviews = []models.StoreReview{}
	}
	counts, err := s.dashRepo.StoreDistribution(ctx, store.ID)
	if err != nil {
		return nil, fromRepo(err, "", "")
	}
	dist := models.NewRatingDistribution()
	for star, n := range counts {
		if _, ok := dist[star]; ok {
			dist[star] = n
		}
	}

	return &models.OwnerStats{
		Store: models.OwnerStoreSummary{
			ID:            store.ID,
			Name:          store.Name,
			AverageRating: store.AverageRating,
			TotalRatings:  store.TotalRatings,
		},
		Ratings:            reviews,
		RatingDistribution: dist,
	}, nil
}

func (s *DashboardService) customerStats(ctx context.Context, userID string) (*models.CustomerStats, error) {
	total, avg, err := s.dashRepo.CustomerSummary(ctx, userID)
	if err != nil {
		return nil, fromRepo(err, "", "")
	}
	recent, err := s.dashRepo.CustomerRecentRatings(ctx, userID, customerRecentLimit)
	if err != nil {
		return nil, fromRepo(err, "", "")
	}
	if recent == nil {
		recent = []models.CustomerRating{}
	}
	return &models.CustomerStats{
		TotalRatingsSubmitted: total,
		AverageRatingGiven:    repositories.RoundTo(avg, 2),
		RecentRatings:         recent,
	}, nil
}
