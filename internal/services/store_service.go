package services

import (
	"context"
	"strings"

	"storerate/internal/models"
	"storerate/internal/repositories"
)

const (
	msgStoreNotFound = "Store not found"
	msgOwnerNotFound = "Owner not found"
)

// StoreInput is a store creation request.
type StoreInput struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Address     string  `json:"address" validate:"required,max=400"`
	Category    string  `json:"category" validate:"required,max=50"`
	ImageURL    string  `json:"imageUrl" validate:"image_ref"`
	OwnerID     string  `json:"ownerId"`
}

// UpdateStoreInput is a partial store update. Nil fields are left as they are.
type UpdateStoreInput struct {
	Name        *string `json:"name" validate:"omitnil,required,max=100"`
	Description *string `json:"description" validate:"omitnil,max=1000"`
	Address     *string `json:"address" validate:"omitnil,required,max=400"`
	Category    *string `json:"category" validate:"omitnil,required,max=50"`
	ImageURL    *string `json:"imageUrl" validate:"omitnil,image_ref"`
	OwnerID     *string `json:"ownerId"`
}

// StoreService handles business logic related to stores.
type StoreService struct {
	storeRepo repositories.StoreRepository
	userRepo  repositories.UserRepository
	validate  *Validator
}

// NewStoreService creates a new StoreService.
func NewStoreService(storeRepo repositories.StoreRepository, userRepo repositories.UserRepository, validate *Validator) *StoreService {
	return &StoreService{
		storeRepo: storeRepo,
		userRepo:  userRepo,
		validate:  validate,
	}
}

// ListStores returns the filtered, sorted store directory. When
// filter.ViewerID is set each store carries that user's own rating.
func (s *StoreService) ListStores(ctx context.Context, filter repositories.StoreFilter) ([]models.StoreView, error) {
	stores, err := s.storeRepo.List(ctx, filter)
	if err != nil {
		return nil, fromRepo(err, "", "")
	}
	return stores, nil
}

// GetStore returns one store, with viewerID's rating when viewerID is set.
func (s *StoreService) GetStore(ctx context.Context, id, viewerID string) (*models.StoreView, error) {
	store, err := s.storeRepo.GetView(ctx, id, viewerID)
	if err != nil {
		return nil, fromRepo(err, msgStoreNotFound, "")
	}
	return store, nil
}

// CreateStore creates a store. Store owners create stores for themselves;
// admins may name any store owner or admin as the owner.
func (s *StoreService) CreateStore(ctx context.Context, actor Identity, in StoreInput) (*models.Store, error) {
	if actor.Role != models.RoleStoreOwner && !actor.IsAdmin() {
		return nil, newError(KindForbidden, "Only store owners and admins can create stores")
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	in.Category = strings.TrimSpace(in.Category)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	in.Description = nonEmpty(in.Description)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	ownerID := strings.TrimSpace(in.OwnerID)
	switch {
	case ownerID == "":
		ownerID = actor.UserID
	case ownerID != actor.UserID && !actor.IsAdmin():
		return nil, newError(KindForbidden, "You can only create stores you own")
	}
	if err := s.checkOwner(ctx, ownerID); err != nil {
		return nil, err
	}

	store := &models.Store{
		Name:        in.Name,
		Description: in.Description,
		Address:     in.Address,
		Category:    in.Category,
		ImageURL:    imageOrDefault(in.ImageURL),
		OwnerID:     ownerID,
	}
	if err := s.storeRepo.Create(ctx, store); err != nil {
		return nil, fromRepo(err, msgOwnerNotFound, "")
	}
	return store, nil
}

// UpdateStore applies a partial update. Only the store's owner or an admin
// may update it, and only an admin may move it to another owner.
func (s *StoreService) UpdateStore(ctx context.Context, actor Identity, id string, in UpdateStoreInput) (*models.Store, error) {
	in.Name = trimmed(in.Name)
	in.Address = trimmed(in.Address)
	in.Category = trimmed(in.Category)
	in.ImageURL = trimmed(in.ImageURL)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	store, err := s.authorizeStore(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if in.OwnerID != nil {
		ownerID := strings.TrimSpace(*in.OwnerID)
		if ownerID != store.OwnerID {
			if !actor.IsAdmin() {
				return nil, newError(KindForbidden, "Only admins can transfer store ownership")
			}
			if err := s.checkOwner(ctx, ownerID); err != nil {
				return nil, err
			}
			store.OwnerID = ownerID
		}
	}
	if in.Name != nil {
		store.Name = *in.Name
	}
	if in.Description != nil {
		store.Description = nonEmpty(in.Description)
	}
	if in.Address != nil {
		store.Address = *in.Address
	}
	if in.Category != nil {
		store.Category = *in.Category
	}
	if in.ImageURL != nil {
		store.ImageURL = imageOrDefault(*in.ImageURL)
	}

	if err := s.storeRepo.Update(ctx, store); err != nil {
		return nil, fromRepo(err, msgStoreNotFound, "")
	}
	return store, nil
}

// DeleteStore removes a store and its ratings. Owner or admin only.
func (s *StoreService) DeleteStore(ctx context.Context, actor Identity, id string) error {
	if _, err := s.authorizeStore(ctx, actor, id); err != nil {
		return err
	}
	if err := s.storeRepo.Delete(ctx, id); err != nil {
		return fromRepo(err, msgStoreNotFound, "")
	}
	return nil
}

// authorizeStore loads a store the actor is allowed to modify.
func (s *StoreService) authorizeStore(ctx context.Context, actor Identity, id string) (*models.Store, error) {
	store, err := s.storeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err, msgStoreNotFound, "")
	}
	if !actor.IsAdmin() && store.OwnerID != actor.UserID {
		return nil, newError(KindForbidden, "You can only modify stores you own")
	}
	return store, nil
}

// checkOwner verifies the prospective owner exists and may own stores.
func (s *StoreService) checkOwner(ctx context.Context, ownerID string) error {
	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		return fromRepo(err, msgOwnerNotFound, "")
	}
	if owner.Role != models.RoleStoreOwner && owner.Role != models.RoleAdmin {
		return newError(KindForbidden, "Store owner must have the store_owner or admin role")
	}
	return nil
}

func imageOrDefault(url string) string {
	if url == "" {
		return models.DefaultStoreImage
	}
	return url
}
