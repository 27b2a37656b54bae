package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"storerate/internal/metrics"
	"storerate/internal/models"
	"storerate/internal/repositories"
)

// PasswordCost is the bcrypt cost used for every stored password.
const PasswordCost = 10

const (
	msgInvalidCredentials = "Invalid email or password"
	msgEmailTaken         = "User with this email already exists"
	msgUserNotFound       = "User not found"
)

// Identity is the caller of a service operation, taken from a verified token.
type Identity struct {
	UserID string
	Email  string
	Role   models.Role
}

// IsAdmin reports whether the caller holds the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// RegisterInput is the public signup request.
type RegisterInput struct {
	Name     string      `json:"name" validate:"required,runes=20-60"`
	Email    string      `json:"email" validate:"required,email_format"`
	Password string      `json:"password" validate:"required,runes=8-16,has_upper,has_special"`
	Address  *string     `json:"address" validate:"omitempty,max=400"`
	Role     models.Role `json:"role" validate:"omitempty,role"`
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo  repositories.UserRepository
	validate  *Validator
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, validate *Validator, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		validate:  validate,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// Register creates a customer or store owner account. Admin accounts can
// only be created by an admin through the user directory.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Address = nonEmpty(in.Address)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	role := in.Role
	if role == "" {
		role = models.RoleCustomer
	}
	if role == models.RoleAdmin {
		return nil, newError(KindForbidden, "Admin accounts cannot be created through registration")
	}

	return createAccount(ctx, s.userRepo, in.Name, in.Email, in.Password, in.Address, role)
}

// createAccount hashes the password and stores a new user.
func createAccount(ctx context.Context, repo repositories.UserRepository, name, email, password string, address *string, role models.Role) (*models.User, error) {
	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return nil, newError(KindConflict, msgEmailTaken)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fromRepo(err, "", "")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, &Error{Kind: KindInternal, Message: "Internal server error", Err: err}
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Address:      address,
		Role:         role,
	}
	if err := repo.Create(ctx, user); err != nil {
		return nil, fromRepo(err, "", msgEmailTaken)
	}
	return user, nil
}

// HashPassword hashes a plaintext password with PasswordCost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Login authenticates a user by email and password and returns the user with
// a signed token. Unknown emails and wrong passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", newError(KindValidation, "Email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			metrics.RecordLogin(metrics.LoginFailure)
			return nil, "", newError(KindUnauthorized, msgInvalidCredentials)
		}
		return nil, "", fromRepo(err, "", "")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		metrics.RecordLogin(metrics.LoginFailure)
		return nil, "", newError(KindUnauthorized, msgInvalidCredentials)
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", &Error{Kind: KindInternal, Message: "Internal server error", Err: err}
	}
	metrics.RecordLogin(metrics.LoginSuccess)
	return user, token, nil
}

// IssueToken signs an HS256 token carrying the user's identity.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    string(user.Role),
		"exp":     now.Add(s.tokenTTL).Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the identity it carries.
func (s *AuthService) ValidateToken(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.WithError(err).Debug("token validation failed")
		return nil, &Error{Kind: KindUnauthorized, Message: "Invalid or expired token", Err: err}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, newError(KindUnauthorized, "Invalid or expired token")
	}

	userID, _ := claims["user_id"].(string)
	role, _ := claims["role"].(string)
	email, _ := claims["email"].(string)
	if userID == "" || !models.Role(role).Valid() {
		return nil, newError(KindUnauthorized, "Invalid or expired token")
	}
	return &Identity{UserID: userID, Email: email, Role: models.Role(role)}, nil
}

// Authenticate verifies a bearer token and loads the account it names. The
// token only proves the user id; role and email come from the stored account,
// so a role change applies to tokens issued before it.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*Identity, error) {
	claimed, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, claimed.UserID)
	if err != nil {
		return nil, fromRepo(err, msgUserNotFound, "")
	}
	if user.Role != claimed.Role {
		log.WithFields(log.Fields{
			"user_id":     user.ID,
			"token_role":  claimed.Role,
			"stored_role": user.Role,
		}).Debug("token role is stale")
	}
	return &Identity{UserID: user.ID, Email: user.Email, Role: user.Role}, nil
}

// Me returns the account behind a verified identity.
func (s *AuthService) Me(ctx context.Context, actor Identity) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, fromRepo(err, msgUserNotFound, "")
	}
	return user, nil
}
