package services

import (
	"context"
	"crypto/subtle"
	"errors"

	log "github.com/sirupsen/logrus"

	"storerate/internal/models"
	"storerate/internal/repositories"
)

// Schema drops and recreates the application tables.
type Schema interface {
	Reset(ctx context.Context) error
}

type demoAccount struct {
	name     string
	email    string
	password string
	role     models.Role
}

var demoAccounts = []demoAccount{
	{"System Administrator Account", "admin@storerate.com", "Admin123!", models.RoleAdmin},
	{"Demo Store Owner Account", "owner@storerate.com", "Owner123!", models.RoleStoreOwner},
	{"Demo Customer Account User", "customer@storerate.com", "Customer123!", models.RoleCustomer},
}

var demoStores = []models.Store{
	{Name: "Cozy Corner Cafe", Address: "123 Main Street, Downtown", Category: "Restaurant"},
	{Name: "TechHub Electronics", Address: "456 Tech Avenue, Silicon Valley", Category: "Electronics"},
	{Name: "Fashion Forward Boutique", Address: "789 Style Boulevard, Fashion District", Category: "Fashion"},
}

var demoDescriptions = map[string]string{
	"Cozy Corner Cafe":         "A warm neighbourhood cafe serving fresh coffee and homemade pastries.",
	"TechHub Electronics":      "Latest gadgets, computers and accessories with expert advice.",
	"Fashion Forward Boutique": "Trendy clothing and accessories for every season.",
}

// SeedSummary reports what a seed run created.
type SeedSummary struct {
	Users  int `json:"users"`
	Stores int `json:"stores"`
}

// AdminService resets the database and loads demo data.
type AdminService struct {
	schema    Schema
	userRepo  repositories.UserRepository
	storeRepo repositories.StoreRepository
	initToken string
}

// NewAdminService creates a new AdminService. An empty initToken leaves
// database initialisation unprotected.
func NewAdminService(schema Schema, userRepo repositories.UserRepository, storeRepo repositories.StoreRepository, initToken string) *AdminService {
	return &AdminService{
		schema:    schema,
		userRepo:  userRepo,
		storeRepo: storeRepo,
		initToken: initToken,
	}
}

// InitDatabase drops and recreates the schema, then seeds the demo accounts
// and stores.
func (s *AdminService) InitDatabase(ctx context.Context, token string) (*SeedSummary, error) {
	if s.initToken != "" && subtle.ConstantTimeCompare([]byte(token), []byte(s.initToken)) != 1 {
		return nil, newError(KindUnauthorized, "Invalid init token")
	}

	if err := s.schema.Reset(ctx); err != nil {
		return nil, fromRepo(repositories.Classify(err), "", "")
	}
	log.Warn("database schema reset")
	return s.SeedDemo(ctx)
}

// SeedDemo creates the demo accounts and the demo owner's stores. Accounts
// that already exist are left untouched, and stores are only added for a
// newly created owner.
func (s *AdminService) SeedDemo(ctx context.Context) (*SeedSummary, error) {
	summary := &SeedSummary{}
	var ownerID string
	for _, acc := range demoAccounts {
		_, err := s.userRepo.GetByEmail(ctx, acc.email)
		if err == nil {
			log.WithField("email", acc.email).Debug("demo account already exists")
			continue
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, fromRepo(err, "", "")
		}

		hash, err := HashPassword(acc.password)
		if err != nil {
			return nil, &Error{Kind: KindInternal, Message: "Internal server error", Err: err}
		}
		user := &models.User{Name: acc.name, Email: acc.email, PasswordHash: hash, Role: acc.role}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fromRepo(err, "", "")
		}
		summary.Users++
		if acc.role == models.RoleStoreOwner {
			ownerID = user.ID
		}
	}

	if ownerID != "" {
		for _, tmpl := range demoStores {
			description := demoDescriptions[tmpl.Name]
			store := tmpl
			store.Description = &description
			store.ImageURL = models.DefaultStoreImage
			store.OwnerID = ownerID
			if err := s.storeRepo.Create(ctx, &store); err != nil {
				return nil, fromRepo(err, "", "")
			}
			summary.Stores++
		}
	}

	log.WithFields(log.Fields{"users": summary.Users, "stores": summary.Stores}).Info("demo data seeded")
	return summary, nil
}
