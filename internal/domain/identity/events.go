package identity

import (
	"github.com/murdhanno/backend/internal/domain/shared"
)

const AggregateTypeUser = "User"

const (
	EventTypeUserCreated       = "UserCreated"
	EventTypeUserStatusChanged = "UserStatusChanged"
)

// UserCreatedEvent is raised when a staff account is created
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

func NewUserCreatedEvent(u *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserCreated, AggregateTypeUser, u.ID),
		Username:        u.Username,
		Role:            u.Role,
	}
}

// UserStatusChangedEvent is raised when an account is enabled or disabled
type UserStatusChangedEvent struct {
	shared.BaseDomainEvent
	Active bool `json:"active"`
}

func NewUserStatusChangedEvent(u *User) *UserStatusChangedEvent {
	return &UserStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserStatusChanged, AggregateTypeUser, u.ID),
		Active:          u.Active,
	}
}
