package identity

import (
	"strings"
	"testing"

	"github.com/murdhanno/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	tests := []struct {
		name      string
		username  string
		email     string
		password  string
		role      Role
		errorCode string
	}{
		{"valid admin", "Admin", "Admin@Example.com", "secret123", RoleAdmin, ""},
		{"short username", "ab", "a@b.co", "secret123", RoleUser, "INVALID_USERNAME"},
		{"bad username chars", "bad name", "a@b.co", "secret123", RoleUser, "INVALID_USERNAME"},
		{"bad email", "staff", "nope", "secret123", RoleUser, "INVALID_EMAIL"},
		{"weak password", "staff", "a@b.co", "password", RoleUser, "INVALID_PASSWORD"},
		{"long password", "staff", "a@b.co", strings.Repeat("a1", 40), RoleUser, "INVALID_PASSWORD"},
		{"unknown role", "staff", "a@b.co", "secret123", Role("root"), "INVALID_ROLE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := NewUser(tt.username, tt.email, tt.password, tt.role)
			if tt.errorCode != "" {
				var de *shared.DomainError
				require.ErrorAs(t, err, &de)
				assert.Equal(t, tt.errorCode, de.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "admin", u.Username)
			assert.Equal(t, "admin@example.com", u.Email)
			assert.True(t, u.Active)
			assert.True(t, u.IsAdmin())
			assert.NotEqual(t, tt.password, u.PasswordHash)
		})
	}
}

func TestUser_Password(t *testing.T) {
	u, err := NewUser("staff", "staff@example.com", "secret123", RoleUser)
	require.NoError(t, err)

	assert.True(t, u.VerifyPassword("secret123"))
	assert.False(t, u.VerifyPassword("secret124"))

	require.NoError(t, u.SetPassword("another99"))
	assert.True(t, u.VerifyPassword("another99"))
	assert.Error(t, u.SetPassword("short"))
}

func TestUser_Toggles(t *testing.T) {
	u, err := NewUser("staff", "staff@example.com", "secret123", RoleUser)
	require.NoError(t, err)
	u.ClearDomainEvents()

	u.ToggleActive()
	assert.False(t, u.Active)
	require.Len(t, u.GetDomainEvents(), 1)

	u.ToggleRole()
	assert.True(t, u.IsAdmin())
	u.ToggleRole()
	assert.False(t, u.IsAdmin())

	u.RecordLogin("10.0.0.1")
	assert.NotNil(t, u.LastLoginAt)
	assert.Equal(t, "10.0.0.1", u.LastLoginIP)
}

func TestNewLoginAttempt_TruncatesIP(t *testing.T) {
	a := NewLoginAttempt(strings.Repeat("f", 60), "staff", false)
	assert.Len(t, a.IPAddress, 45)
	assert.False(t, a.Success)
}
