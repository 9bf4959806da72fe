package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/identity"
	"github.com/murdhanno/backend/internal/infrastructure/auth"
)

type LoginInput struct {
	Username string
	Password string
	IP       string
}

type LoginResult struct {
	auth.TokenPair
	User UserInfo
}

type RefreshTokenInput struct {
	RefreshToken string
}

type RefreshTokenResult struct {
	auth.TokenPair
}

// LogoutInput names the access token to revoke by jti, with its remaining
// lifetime. RefreshToken is optional.
type LogoutInput struct {
	UserID       uuid.UUID
	TokenJTI     string
	TokenTTL     time.Duration
	RefreshToken string
}

type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// UserInfo is the user as shown to the console; the password hash never
// leaves the domain.
type UserInfo struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	IsAdmin     bool       `json:"is_admin"`
	Active      bool       `json:"active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        string(u.Role),
		IsAdmin:     u.IsAdmin(),
		Active:      u.Active,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// CreateUserRequest is an admin adding a staff account
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,min=3,max=80"`
	Email    string `json:"email" binding:"required,email,max=120"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Role     string `json:"role" binding:"omitempty,oneof=admin user"`
}

type ListUsersRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=created_at username role last_login_at"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search   string `form:"search" binding:"max=100"`
}
