package services

import (
	"context"
	"errors"
	"strings"

	"storerate/internal/models"
	"storerate/internal/repositories"
)

// CreateUserInput is an admin request to create an account of any role.
type CreateUserInput struct {
	Name     string      `json:"name" validate:"required,runes=20-60"`
	Email    string      `json:"email" validate:"required,email_format"`
	Password string      `json:"password" validate:"required,runes=8-16,has_upper,has_special"`
	Address  *string     `json:"address" validate:"omitempty,max=400"`
	Role     models.Role `json:"role" validate:"required,role"`
}

// UpdateUserInput is a partial profile update. Nil fields are left as they are.
type UpdateUserInput struct {
	Name     *string      `json:"name" validate:"omitnil,runes=20-60"`
	Email    *string      `json:"email" validate:"omitnil,email_format"`
	Password *string      `json:"password" validate:"omitnil,runes=8-16,has_upper,has_special"`
	Address  *string      `json:"address" validate:"omitnil,max=400"`
	Role     *models.Role `json:"role" validate:"omitnil,role"`
}

// UserService manages the user directory.
type UserService struct {
	userRepo repositories.UserRepository
	validate *Validator
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository, validate *Validator) *UserService {
	return &UserService{
		userRepo: userRepo,
		validate: validate,
	}
}

// ListUsers returns the filtered, sorted user directory. Admin only.
func (s *UserService) ListUsers(ctx context.Context, actor Identity, filter repositories.UserFilter) ([]models.UserView, error) {
	if !actor.IsAdmin() {
		return nil, newError(KindForbidden, "Only admins can list users")
	}
	users, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, fromRepo(err, "", "")
	}
	return users, nil
}

// CreateUser creates an account of any role. Admin only.
func (s *UserService) CreateUser(ctx context.Context, actor Identity, in CreateUserInput) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, newError(KindForbidden, "Only admins can create users")
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Address = nonEmpty(in.Address)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	return createAccount(ctx, s.userRepo, in.Name, in.Email, in.Password, in.Address, in.Role)
}

// GetUser returns one user to an admin or to the user themselves.
func (s *UserService) GetUser(ctx context.Context, actor Identity, id string) (*models.User, error) {
	if !actor.IsAdmin() && actor.UserID != id {
		return nil, newError(KindForbidden, "You can only view your own profile")
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err, msgUserNotFound, "")
	}
	return user, nil
}

// UpdateUser applies a partial update. Users may edit their own profile;
// only admins may edit others or change a role.
func (s *UserService) UpdateUser(ctx context.Context, actor Identity, id string, in UpdateUserInput) (*models.User, error) {
	if !actor.IsAdmin() && actor.UserID != id {
		return nil, newError(KindForbidden, "You can only update your own profile")
	}

	in.Name = trimmed(in.Name)
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		in.Email = &email
	}
	in.Address = trimmed(in.Address)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err, msgUserNotFound, "")
	}

	if in.Role != nil && *in.Role != user.Role && !actor.IsAdmin() {
		return nil, newError(KindForbidden, "Only admins can change roles")
	}

	if in.Email != nil && *in.Email != user.Email {
		if _, err := s.userRepo.GetByEmail(ctx, *in.Email); err == nil {
			return nil, newError(KindConflict, msgEmailTaken)
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return nil, fromRepo(err, "", "")
		}
		user.Email = *in.Email
	}
	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Address != nil {
		user.Address = nonEmpty(in.Address)
	}
	if in.Role != nil {
		user.Role = *in.Role
	}
	if in.Password != nil {
		hash, err := HashPassword(*in.Password)
		if err != nil {
			return nil, &Error{Kind: KindInternal, Message: "Internal server error", Err: err}
		}
		user.PasswordHash = hash
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fromRepo(err, msgUserNotFound, msgEmailTaken)
	}
	return user, nil
}
