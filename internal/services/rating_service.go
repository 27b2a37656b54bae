package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"storerate/internal/metrics"
	"storerate/internal/models"
	"storerate/internal/repositories"
	"storerate/pkg/rabbitmq"
)

const (
	msgRatingNotFound   = "Rating not found"
	msgDuplicateRating  = "You have already rated this store. Use PUT to update your rating."
	msgNoExistingRating = "No existing rating found. Use POST to create a new rating."
)

// Publisher sends a message body to an exchange with a routing key.
type Publisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// RatingInput submits or replaces the caller's rating of a store. UserID is
// optional and must match the caller unless the caller is an admin.
type RatingInput struct {
	UserID  string  `json:"userId"`
	StoreID string  `json:"storeId" validate:"required"`
	Rating  *int    `json:"rating" validate:"required,stars"`
	Review  *string `json:"review" validate:"omitempty,max=1000"`
}

// UpdateRatingInput replaces the score and review of a rating by id.
type UpdateRatingInput struct {
	Rating *int    `json:"rating" validate:"required,stars"`
	Review *string `json:"review" validate:"omitempty,max=1000"`
}

// RatingResult is a committed rating together with its store's new aggregate.
type RatingResult struct {
	Rating *models.Rating         `json:"rating"`
	Store  *models.StoreAggregate `json:"store"`
}

// RatingService handles business logic related to ratings.
type RatingService struct {
	ratingRepo repositories.RatingRepository
	storeRepo  repositories.StoreRepository
	userRepo   repositories.UserRepository
	validate   *Validator
	publisher  Publisher
}

// NewRatingService creates a new RatingService. publisher may be nil, in
// which case no events are sent.
func NewRatingService(ratingRepo repositories.RatingRepository, storeRepo repositories.StoreRepository, userRepo repositories.UserRepository, validate *Validator, publisher Publisher) *RatingService {
	return &RatingService{
		ratingRepo: ratingRepo,
		storeRepo:  storeRepo,
		userRepo:   userRepo,
		validate:   validate,
		publisher:  publisher,
	}
}

// ListRatings returns ratings matching filter.
func (s *RatingService) ListRatings(ctx context.Context, filter repositories.RatingFilter) ([]models.RatingView, error) {
	ratings, err := s.ratingRepo.List(ctx, filter)
	if err != nil {
		return nil, fromRepo(err, "", "")
	}
	return ratings, nil
}

// GetRating returns one rating with its author and store names.
func (s *RatingService) GetRating(ctx context.Context, id string) (*models.RatingView, error) {
	rating, err := s.ratingRepo.GetView(ctx, id)
	if err != nil {
		return nil, fromRepo(err, msgRatingNotFound, "")
	}
	return rating, nil
}

// CreateRating records a first rating of a store by the rating user.
func (s *RatingService) CreateRating(ctx context.Context, actor Identity, in RatingInput) (*RatingResult, error) {
	in.StoreID = strings.TrimSpace(in.StoreID)
	in.Review = nonEmpty(in.Review)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	userID, err := s.resolveRater(ctx, actor, in.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.checkStore(ctx, in.StoreID); err != nil {
		return nil, err
	}

	rating := &models.Rating{
		UserID:  userID,
		StoreID: in.StoreID,
		Rating:  *in.Rating,
		Review:  in.Review,
	}
	agg, err := s.ratingRepo.Create(ctx, rating)
	if err != nil {
		return nil, fromRepo(err, msgStoreNotFound, msgDuplicateRating)
	}

	s.committed(models.RatingCreated, rating, agg)
	return &RatingResult{Rating: rating, Store: agg}, nil
}

// UpdateMyRating overwrites the rating user gave in.StoreID.
func (s *RatingService) UpdateMyRating(ctx context.Context, actor Identity, in RatingInput) (*RatingResult, error) {
	in.StoreID = strings.TrimSpace(in.StoreID)
	in.Review = nonEmpty(in.Review)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	userID, err := s.resolveRater(ctx, actor, in.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.checkStore(ctx, in.StoreID); err != nil {
		return nil, err
	}

	rating, agg, err := s.ratingRepo.UpdateForUser(ctx, userID, in.StoreID, *in.Rating, in.Review)
	if err != nil {
		return nil, fromRepo(err, msgNoExistingRating, "")
	}

	s.committed(models.RatingUpdated, rating, agg)
	return &RatingResult{Rating: rating, Store: agg}, nil
}

// UpdateRating overwrites rating id. Only its author or an admin may do so.
func (s *RatingService) UpdateRating(ctx context.Context, actor Identity, id string, in UpdateRatingInput) (*RatingResult, error) {
	in.Review = nonEmpty(in.Review)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.authorizeRating(ctx, actor, id); err != nil {
		return nil, err
	}

	rating, agg, err := s.ratingRepo.UpdateByID(ctx, id, *in.Rating, in.Review)
	if err != nil {
		return nil, fromRepo(err, msgRatingNotFound, "")
	}

	s.committed(models.RatingUpdated, rating, agg)
	return &RatingResult{Rating: rating, Store: agg}, nil
}

// DeleteRating removes rating id. Only its author or an admin may do so.
func (s *RatingService) DeleteRating(ctx context.Context, actor Identity, id string) (*models.StoreAggregate, error) {
	if _, err := s.authorizeRating(ctx, actor, id); err != nil {
		return nil, err
	}

	rating, agg, err := s.ratingRepo.Delete(ctx, id)
	if err != nil {
		return nil, fromRepo(err, msgRatingNotFound, "")
	}

	s.committed(models.RatingDeleted, rating, agg)
	return agg, nil
}

// resolveRater returns the user a rating is written for. Store owners cannot
// rate, and only admins may act on behalf of another user.
func (s *RatingService) resolveRater(ctx context.Context, actor Identity, requested string) (string, error) {
	if actor.Role == models.RoleStoreOwner {
		return "", newError(KindForbidden, "Store owners cannot submit ratings")
	}
	requested = strings.TrimSpace(requested)
	if requested == "" || requested == actor.UserID {
		return actor.UserID, nil
	}
	if !actor.IsAdmin() {
		return "", newError(KindForbidden, "You can only submit ratings as yourself")
	}

	user, err := s.userRepo.GetByID(ctx, requested)
	if err != nil {
		return "", fromRepo(err, msgUserNotFound, "")
	}
	if user.Role == models.RoleStoreOwner {
		return "", newError(KindForbidden, "Store owners cannot submit ratings")
	}
	return user.ID, nil
}

func (s *RatingService) checkStore(ctx context.Context, storeID string) error {
	if _, err := s.storeRepo.GetByID(ctx, storeID); err != nil {
		return fromRepo(err, msgStoreNotFound, "")
	}
	return nil
}

func (s *RatingService) authorizeRating(ctx context.Context, actor Identity, id string) (*models.Rating, error) {
	rating, err := s.ratingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err, msgRatingNotFound, "")
	}
	if !actor.IsAdmin() && rating.UserID != actor.UserID {
		return nil, newError(KindForbidden, "You can only modify your own ratings")
	}
	return rating, nil
}

// committed records metrics and publishes the event for a committed mutation.
// Publishing failures are logged and never fail the request.
func (s *RatingService) committed(kind models.RatingEventType, rating *models.Rating, agg *models.StoreAggregate) {
	metrics.RecordRating(strings.TrimPrefix(string(kind), "rating."))

	event := models.RatingEvent{
		Type:       kind,
		RatingID:   rating.ID,
		StoreID:    rating.StoreID,
		UserID:     rating.UserID,
		Rating:     rating.Rating,
		OccurredAt: time.Now().UTC(),
	}
	if agg != nil {
		event.AverageRating = agg.AverageRating
		event.TotalRatings = agg.TotalRatings
	}

	logger := log.WithFields(log.Fields{
		"event":     kind,
		"rating_id": rating.ID,
		"store_id":  rating.StoreID,
	})
	if s.publisher == nil {
		logger.Debug("event publisher not configured, skipping rating event")
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		logger.WithError(err).Error("failed to marshal rating event")
		return
	}
	if err := s.publisher.Publish("", rabbitmq.RatingEventsQueue, body); err != nil {
		logger.WithError(err).Warn("failed to publish rating event")
		return
	}
	logger.Debug("published rating event")
}
