package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User aggregate
type UserModel struct {
	AggregateModel
	Username     string     `gorm:"type:varchar(80);not null;uniqueIndex"`
	Email        string     `gorm:"type:varchar(120);not null"`
	PasswordHash string     `gorm:"type:varchar(255);not null"`
	Role         string     `gorm:"type:varchar(10);not null;default:'user'"`
	Active       bool       `gorm:"not null;default:true"`
	LastLoginAt  *time.Time `gorm:"index"`
	LastLoginIP  string     `gorm:"type:varchar(45)"`
}

func (UserModel) TableName() string {
	return "users"
}

func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Username:          m.Username,
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		Role:              identity.Role(m.Role),
		Active:            m.Active,
		LastLoginAt:       m.LastLoginAt,
		LastLoginIP:       m.LastLoginIP,
	}
}

func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Active:       u.Active,
		LastLoginAt:  u.LastLoginAt,
		LastLoginIP:  u.LastLoginIP,
	}
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	return m
}

// LoginAttemptModel is an append-only audit row
type LoginAttemptModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	IPAddress string    `gorm:"type:varchar(45);not null;index:idx_login_attempts_ip_time"`
	Username  string    `gorm:"type:varchar(80)"`
	Success   bool      `gorm:"not null"`
	Timestamp time.Time `gorm:"column:attempted_at;not null;index:idx_login_attempts_ip_time"`
}

func (LoginAttemptModel) TableName() string {
	return "login_attempts"
}

func (m *LoginAttemptModel) ToDomain() *identity.LoginAttempt {
	return &identity.LoginAttempt{
		ID:        m.ID,
		IPAddress: m.IPAddress,
		Username:  m.Username,
		Success:   m.Success,
		Timestamp: m.Timestamp,
	}
}

func LoginAttemptModelFromDomain(a *identity.LoginAttempt) *LoginAttemptModel {
	return &LoginAttemptModel{
		ID:        a.ID,
		IPAddress: a.IPAddress,
		Username:  a.Username,
		Success:   a.Success,
		Timestamp: a.Timestamp,
	}
}
