package identity

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/murdhanno/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) IsValid() bool { return r == RoleAdmin || r == RoleUser }

const bcryptCost = 12

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_\-.]{3,80}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// User is a staff member who can sign in to the order console
type User struct {
	shared.BaseAggregateRoot
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	Active       bool
	LastLoginAt  *time.Time
	LastLoginIP  string
}

// NewUser creates an active user with a hashed password
func NewUser(username, email, password string, role Role) (*User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Role must be admin or user")
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          strings.ToLower(strings.TrimSpace(username)),
		Email:             email,
		PasswordHash:      hash,
		Role:              role,
		Active:            true,
	}
	user.AddDomainEvent(NewUserCreatedEvent(user))
	return user, nil
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// SetPassword replaces the password hash
func (u *User) SetPassword(password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.Bump()
	return nil
}

// RecordLogin stamps a successful sign-in
func (u *User) RecordLogin(ip string) {
	now := time.Now()
	u.LastLoginAt = &now
	u.LastLoginIP = ip
	u.UpdatedAt = now
}

// ToggleActive flips the active flag. Deactivated users cannot sign in.
func (u *User) ToggleActive() {
	u.Active = !u.Active
	u.Bump(NewUserStatusChangedEvent(u))
}

// ToggleRole switches between admin and user
func (u *User) ToggleRole() {
	if u.IsAdmin() {
		u.Role = RoleUser
	} else {
		u.Role = RoleAdmin
	}
	u.Bump()
}

func validateUsername(username string) error {
	if !usernamePattern.MatchString(strings.TrimSpace(username)) {
		return shared.NewDomainError("INVALID_USERNAME",
			"Username must be 3 to 80 letters, numbers, underscores, hyphens or dots")
	}
	return nil
}

// validatePassword caps the length at bcrypt's 72 byte input limit
func validatePassword(password string) error {
	if len(password) < 8 || len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be 8 to 72 characters")
	}
	hasLetter := strings.ContainsFunc(password, func(r rune) bool { return r < unicode.MaxASCII && unicode.IsLetter(r) })
	hasDigit := strings.ContainsFunc(password, unicode.IsDigit)
	if !hasLetter || !hasDigit {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > 120 || !emailPattern.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	if err := validatePassword(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	return string(hash), nil
}
