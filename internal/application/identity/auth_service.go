package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/identity"
	"github.com/murdhanno/backend/internal/domain/shared"
	"github.com/murdhanno/backend/internal/infrastructure/auth"
	"github.com/murdhanno/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

var (
	errInvalidCredentials = shared.NewDomainError("UNAUTHORIZED", "Invalid username or password")
	errDeactivated        = shared.NewDomainError("FORBIDDEN", "Your account has been deactivated")
	errUserNotFound       = shared.NewDomainError("USER_NOT_FOUND", "User not found")
	errTokenIssue         = shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	errTooManyAttempts    = shared.NewDomainError("TOO_MANY_ATTEMPTS", "Too many failed login attempts. Please try again later.")
)

// AuthService logs staff in and out and rotates their tokens
type AuthService struct {
	users     identity.UserRepository
	attempts  identity.LoginAttemptRepository
	tokens    *auth.JWTService
	blacklist auth.TokenBlacklist
	logger    *zap.Logger

	lockoutFailures int
	lockoutWindow   time.Duration
	now             func() time.Time
}

type AuthOption func(*AuthService)

// WithLockout refuses logins from an IP once it has failed that many times in
// window. It needs the login attempt repository.
func WithLockout(failures int, window time.Duration) AuthOption {
	return func(s *AuthService) {
		s.lockoutFailures, s.lockoutWindow = failures, window
	}
}

// NewAuthService wires the service. attempts and blacklist may be nil: then
// attempts are not recorded and logout only drops the client's tokens.
func NewAuthService(
	users identity.UserRepository,
	attempts identity.LoginAttemptRepository,
	tokens *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
	opts ...AuthOption,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AuthService{
		users:     users,
		attempts:  attempts,
		tokens:    tokens,
		blacklist: blacklist,
		logger:    logger.Named("auth"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login checks the username, then the password, then the active flag, so a
// deactivated account is only revealed to someone who knows its password.
// Every outcome is recorded as a login attempt.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	log := s.logger.With(zap.String("username", in.Username), zap.String("ip", in.IP))

	if err := s.checkLockout(ctx, in.IP); err != nil {
		log.Warn("login refused, too many failures")
		return nil, err
	}

	user, err := s.users.FindByUsername(ctx, in.Username)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		log.Warn("login for unknown user")
		s.recordAttempt(ctx, in, false)
		return nil, errInvalidCredentials
	case err != nil:
		return nil, err
	case !user.VerifyPassword(in.Password):
		log.Warn("login with wrong password")
		s.recordAttempt(ctx, in, false)
		return nil, errInvalidCredentials
	case !user.Active:
		log.Warn("login for deactivated account")
		s.recordAttempt(ctx, in, false)
		return nil, errDeactivated
	}

	pair, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	user.RecordLogin(in.IP)
	if err := s.users.Save(ctx, user); err != nil {
		// tokens are already issued; a stale last-login is acceptable
		log.Error("saving last login failed", zap.Error(err))
	}
	s.recordAttempt(ctx, in, true)

	log.Info("user logged in", zap.Stringer("user_id", user.ID))
	return &LoginResult{TokenPair: *pair, User: toUserInfo(user)}, nil
}

func (s *AuthService) checkLockout(ctx context.Context, ip string) error {
	if s.lockoutFailures <= 0 || s.attempts == nil || ip == "" {
		return nil
	}
	failures, err := s.attempts.CountFailuresSince(ctx, ip, s.now().Add(-s.lockoutWindow))
	if err != nil {
		// an unreadable audit table must not block every login
		s.logger.Error("counting failed logins failed", zap.Error(err))
		return nil
	}
	if failures >= int64(s.lockoutFailures) {
		return errTooManyAttempts
	}
	return nil
}

func (s *AuthService) recordAttempt(ctx context.Context, in LoginInput, success bool) {
	if s.attempts == nil {
		return
	}
	if err := s.attempts.Save(ctx, identity.NewLoginAttempt(in.IP, in.Username, success)); err != nil {
		s.logger.Warn("recording login attempt failed", zap.Error(err))
	}
}

func (s *AuthService) issue(user *identity.User) (*auth.TokenPair, error) {
	pair, err := s.tokens.GenerateTokenPair(auth.GenerateTokenInput{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
	})
	if err != nil {
		s.logger.Error("signing tokens failed", zap.Error(err))
		return nil, errTokenIssue
	}
	return pair, nil
}

// RefreshToken trades a refresh token for a new pair. The old refresh token
// is revoked so it cannot be replayed.
func (s *AuthService) RefreshToken(ctx context.Context, in RefreshTokenInput) (*RefreshTokenResult, error) {
	claims, err := s.tokens.ValidateRefreshToken(in.RefreshToken)
	if err != nil {
		s.logger.Warn("refresh token rejected", zap.Error(err))
		return nil, refreshTokenError(err)
	}
	if err := s.ensureNotRevoked(ctx, claims.ID); err != nil {
		return nil, err
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid user ID in token")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, errUserNotFound
	}
	if !user.Active {
		return nil, errDeactivated
	}

	pair, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.revoke(ctx, claims.ID, claims.RemainingTTL())

	s.logger.Info("token refreshed", zap.Stringer("user_id", userID))
	return &RefreshTokenResult{TokenPair: *pair}, nil
}

// Logout revokes the access token and the refresh token when one is given.
// Revocation is best effort: blacklist failures are logged, not returned.
func (s *AuthService) Logout(ctx context.Context, in LogoutInput) error {
	s.revoke(ctx, in.TokenJTI, in.TokenTTL)
	if in.RefreshToken != "" {
		if claims, err := s.tokens.ValidateRefreshToken(in.RefreshToken); err == nil {
			s.revoke(ctx, claims.ID, claims.RemainingTTL())
		}
	}
	s.logger.Info("user logged out", zap.Stringer("user_id", in.UserID))
	return nil
}

// IsTokenRevoked backs the JWT middleware's revocation check
func (s *AuthService) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	if s.blacklist == nil || jti == "" {
		return false, nil
	}
	return s.blacklist.IsBlacklisted(ctx, jti)
}

func (s *AuthService) ensureNotRevoked(ctx context.Context, jti string) error {
	revoked, err := s.IsTokenRevoked(ctx, jti)
	if err != nil {
		s.logger.Error("revocation lookup failed", zap.Error(err))
		return shared.NewDomainError("TOKEN_ERROR", "Failed to validate token")
	}
	if revoked {
		return shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
	}
	return nil
}

// revoke blacklists jti until the token would have expired on its own
func (s *AuthService) revoke(ctx context.Context, jti string, ttl time.Duration) {
	if s.blacklist == nil || jti == "" || ttl <= 0 {
		return
	}
	if err := s.blacklist.AddToBlacklist(ctx, jti, ttl); err != nil {
		s.logger.Error("blacklisting token failed", zap.String("jti", jti), zap.Error(err))
	}
}

func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, errUserNotFound
	}
	info := toUserInfo(user)
	return &info, nil
}

// ChangePassword requires the current password even for a signed-in user
func (s *AuthService) ChangePassword(ctx context.Context, in ChangePasswordInput) error {
	user, err := s.users.FindByID(ctx, in.UserID)
	if err != nil {
		return errUserNotFound
	}
	if !user.VerifyPassword(in.OldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	if err := user.SetPassword(in.NewPassword); err != nil {
		return err
	}
	if err := s.users.Save(ctx, user); err != nil {
		s.logger.Error("saving new password failed", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to update password")
	}
	s.logger.Info("password changed", zap.Stringer("user_id", in.UserID))
	return nil
}

// SeedAdmin creates the configured administrator on an empty users table and
// reports whether it did.
func (s *AuthService) SeedAdmin(ctx context.Context, cfg config.AdminConfig) (bool, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return false, nil
	}
	if n, err := s.users.Count(ctx); err != nil || n > 0 {
		return false, err
	}

	admin, err := identity.NewUser(cfg.Username, cfg.Email, cfg.Password, identity.RoleAdmin)
	if err != nil {
		return false, err
	}
	if err := s.users.Save(ctx, admin); err != nil {
		return false, err
	}
	s.logger.Info("administrator seeded", zap.String("username", admin.Username))
	return true, nil
}

func refreshTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidTokenType), errors.Is(err, auth.ErrInvalidClaims):
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}
	return shared.NewDomainError("TOKEN_ERROR", "Failed to validate refresh token")
}
