package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/identity"
	"github.com/murdhanno/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// UserService manages staff accounts. Every operation is admin only.
type UserService struct {
	userRepo       identity.UserRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewUserService creates a new user management service
func NewUserService(userRepo identity.UserRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{userRepo: userRepo, logger: logger}
}

// SetEventPublisher sets the event publisher for account events
func (s *UserService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ListUsers lists staff accounts
func (s *UserService) ListUsers(ctx context.Context, actor shared.Actor, req ListUsersRequest) ([]UserInfo, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
	}
	users, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	result := make([]UserInfo, len(users))
	for i := range users {
		result[i] = toUserInfo(&users[i])
	}
	return result, nil
}

// CreateUser adds a staff account. Role defaults to user.
func (s *UserService) CreateUser(ctx context.Context, actor shared.Actor, req CreateUserRequest) (*UserInfo, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Username already exists")
	}

	role := identity.RoleUser
	if req.Role != "" {
		role = identity.Role(req.Role)
	}
	user, err := identity.NewUser(req.Username, req.Email, req.Password, role)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)),
		zap.String("created_by", actor.UserID.String()))
	s.publish(ctx, user)

	info := toUserInfo(user)
	return &info, nil
}

// ToggleActive activates or deactivates an account. Admins cannot
// deactivate themselves.
func (s *UserService) ToggleActive(ctx context.Context, actor shared.Actor, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.loadOther(ctx, actor, userID, "You cannot deactivate your own account")
	if err != nil {
		return nil, err
	}
	user.ToggleActive()
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	s.logger.Info("User status changed",
		zap.String("user_id", user.ID.String()),
		zap.Bool("active", user.Active))
	s.publish(ctx, user)

	info := toUserInfo(user)
	return &info, nil
}

// ToggleRole switches an account between admin and user. Admins cannot
// demote themselves.
func (s *UserService) ToggleRole(ctx context.Context, actor shared.Actor, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.loadOther(ctx, actor, userID, "You cannot change your own role")
	if err != nil {
		return nil, err
	}
	user.ToggleRole()
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	s.logger.Info("User role changed",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	info := toUserInfo(user)
	return &info, nil
}

func (s *UserService) loadOther(ctx context.Context, actor shared.Actor, userID uuid.UUID, selfMsg string) (*identity.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if userID == actor.UserID {
		return nil, shared.NewDomainError("INVALID_OPERATION", selfMsg)
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "User not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) publish(ctx context.Context, user *identity.User) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, user); err != nil {
		s.logger.Warn("failed to publish user events", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
}

func requireAdmin(actor shared.Actor) error {
	if !actor.IsAdmin {
		return shared.NewDomainError("FORBIDDEN", "Administrator access required")
	}
	return nil
}
