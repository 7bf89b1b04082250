package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Raymond9734/storefront-backend/internal/auth"
	"github.com/Raymond9734/storefront-backend/internal/models"
	"github.com/Raymond9734/storefront-backend/internal/observability/metrics"
	"github.com/Raymond9734/storefront-backend/internal/repository"
)

// UserService handles platform user accounts
type UserService interface {
	Register(ctx context.Context, actor *Actor, req *RegisterUserRequest) (*models.User, error)
	Login(ctx context.Context, req *LoginRequest) (*LoginResult, error)
	List(ctx context.Context) ([]*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, actor *Actor, id string, req *UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, actor *Actor, id string) error
}

type userService struct {
	userRepo repository.UserRepository
	hasher   auth.PasswordHasher
	tokens   *auth.TokenManager
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repository.UserRepository,
	hasher auth.PasswordHasher,
	tokens *auth.TokenManager,
	logger *zap.Logger,
) UserService {
	return &userService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		logger:   logger,
	}
}

// Register creates a user. actor is nil for anonymous sign-up; only an
// admin actor may create another admin.
func (s *userService) Register(ctx context.Context, actor *Actor, req *RegisterUserRequest) (user *models.User, err error) {
	defer func() { metrics.ObserveMutation("user", "create", err) }()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	role, err := models.ParseUserRole(req.Role)
	if err != nil {
		return nil, err
	}
	if role == models.UserRoleAdmin && (actor == nil || !actor.Admin) {
		return nil, models.ErrForbiddenWithMsg("only admins can create admin users")
	}

	if err := s.ensureEmailAvailable(ctx, req.Email, ""); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user, err = models.NewUser(models.UserParams{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("failed to create user", zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID()),
		zap.String("role", string(user.Role())),
	)

	return user, nil
}

// Login checks credentials and issues a user token
func (s *userService) Login(ctx context.Context, req *LoginRequest) (*LoginResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, models.NormalizeEmail(req.Email))
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrUnauthorizedWithMsg("invalid credentials")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHashForAuth(), req.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, models.ErrUnauthorizedWithMsg("invalid credentials")
		}
		return nil, err
	}

	token, err := s.tokens.GenerateUserToken(user.ID(), user.Email(), string(user.Role()))
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID()))

	return &LoginResult{
		Token:     token,
		ExpiresIn: int64(s.tokens.ExpiresIn().Seconds()),
		User:      NewUserResponse(user),
	}, nil
}

// List returns every user
func (s *userService) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetByID retrieves a user by ID
func (s *userService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

// Update applies a partial update. Callers may edit themselves; admins may
// edit anyone and are the only ones allowed to change a role.
func (s *userService) Update(ctx context.Context, actor *Actor, id string, req *UpdateUserRequest) (user *models.User, err error) {
	defer func() { metrics.ObserveMutation("user", "update", err) }()

	if err := authorizeSelfOrAdmin(actor, id); err != nil {
		return nil, err
	}
	if req.empty() {
		return nil, models.ErrInvalidInputWithMsg("no fields to update")
	}
	if req.Role != nil && !actor.Admin {
		return nil, models.ErrForbiddenWithMsg("only admins can change roles")
	}

	user, err = s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := user.ChangeName(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Email != nil {
		if err := s.ensureEmailAvailable(ctx, *req.Email, user.ID()); err != nil {
			return nil, err
		}
		if err := user.ChangeEmail(*req.Email); err != nil {
			return nil, err
		}
	}
	if req.Password != nil {
		if err := models.ValidatePassword(*req.Password); err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, err
		}
		if err := user.ChangePasswordHash(hash); err != nil {
			return nil, err
		}
	}
	if req.Role != nil {
		role, err := models.ParseUserRole(*req.Role)
		if err != nil {
			return nil, err
		}
		if err := user.ChangeRole(role); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("failed to update user",
			zap.String("user_id", id),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("user updated", zap.String("user_id", id))

	return user, nil
}

// Delete removes a user permanently
func (s *userService) Delete(ctx context.Context, actor *Actor, id string) (err error) {
	defer func() { metrics.ObserveMutation("user", "delete", err) }()

	if err := authorizeSelfOrAdmin(actor, id); err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("user deleted",
		zap.String("user_id", id),
		zap.String("actor_id", actor.UserID),
	)

	return nil
}

func authorizeSelfOrAdmin(actor *Actor, id string) error {
	if actor == nil {
		return models.ErrUnauthorizedWithMsg("authentication required")
	}
	if !actor.Admin && actor.UserID != id {
		return models.ErrForbiddenWithMsg("not allowed to modify this user")
	}
	return nil
}

func (s *userService) ensureEmailAvailable(ctx context.Context, email, selfID string) error {
	existing, err := s.userRepo.FindByEmail(ctx, models.NormalizeEmail(email))
	if errors.Is(err, models.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if existing.ID() == selfID {
		return nil
	}
	return models.ErrConflictWithMsg("email already registered")
}
