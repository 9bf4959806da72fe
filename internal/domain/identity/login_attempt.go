package identity

import (
	"time"

	"github.com/google/uuid"
)

// LoginAttempt is an audit record of one sign-in attempt
type LoginAttempt struct {
	ID        uuid.UUID
	IPAddress string
	Username  string
	Success   bool
	Timestamp time.Time
}

// NewLoginAttempt records an attempt from ip at the current time
func NewLoginAttempt(ip, username string, success bool) *LoginAttempt {
	if len(ip) > 45 {
		ip = ip[:45]
	}
	return &LoginAttempt{
		ID:        uuid.New(),
		IPAddress: ip,
		Username:  username,
		Success:   success,
		Timestamp: time.Now(),
	}
}
