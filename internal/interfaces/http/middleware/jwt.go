package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/shared"
	"github.com/murdhanno/backend/internal/infrastructure/auth"
	"github.com/murdhanno/backend/internal/infrastructure/logger"
	"github.com/murdhanno/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// gin context keys set by the JWT middleware
const (
	JWTClaimsKey   = "jwt_claims"
	JWTUserIDKey   = "jwt_user_id"
	JWTUsernameKey = "jwt_username"
	JWTRoleKey     = "jwt_role"
)

const (
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
	AdminRole     = "admin"
)

// RevocationChecker reports whether a token id was revoked by logout
type RevocationChecker interface {
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

type JWTMiddlewareConfig struct {
	JWTService *auth.JWTService
	// Revocations is optional. Without it logout only drops the client's copy.
	Revocations RevocationChecker
	// SkipPaths are matched exactly against the request path
	SkipPaths []string
	// OnError replaces the default 401 response
	OnError func(c *gin.Context, err error)
	Logger  *zap.Logger
}

// DefaultJWTConfig lets health checks, login and refresh through unauthenticated
func DefaultJWTConfig(jwtService *auth.JWTService) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths:  []string{"/health", "/api/v1/health", "/api/v1/auth/login", "/api/v1/auth/refresh"},
	}
}

func JWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(DefaultJWTConfig(jwtService))
}

var (
	errMissingHeader = errors.New("missing authorization header")
	errNotBearer     = errors.New("authorization header is not a bearer token")
)

// authFailures maps token errors to the API code and message, first match wins
var authFailures = []struct {
	err     error
	code    string
	message string
}{
	{auth.ErrExpiredToken, dto.ErrCodeTokenExpired, "Token has expired"},
	{auth.ErrTokenNotYetValid, dto.ErrCodeTokenInvalid, "Token is not yet valid"},
	{auth.ErrInvalidToken, dto.ErrCodeTokenInvalid, "Invalid token"},
	{auth.ErrInvalidTokenType, dto.ErrCodeTokenInvalid, "Invalid token"},
	{auth.ErrTokenBlacklisted, dto.ErrCodeTokenRevoked, "Token has been revoked"},
}

func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	reject := func(c *gin.Context, err error) {
		if cfg.OnError != nil {
			cfg.OnError(c, err)
			return
		}
		log.Warn("JWT authentication failed", zap.Error(err), zap.String("path", c.Request.URL.Path))

		code, message := dto.ErrCodeUnauthorized, "Authentication required"
		for _, f := range authFailures {
			if errors.Is(err, f.err) {
				code, message = f.code, f.message
				break
			}
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
	}

	return func(c *gin.Context) {
		if slices.Contains(cfg.SkipPaths, c.Request.URL.Path) {
			c.Next()
			return
		}

		token, err := bearerToken(c.GetHeader(AuthHeaderKey))
		if err != nil {
			reject(c, err)
			return
		}
		claims, err := cfg.JWTService.ValidateAccessToken(token)
		if err != nil {
			reject(c, err)
			return
		}

		if cfg.Revocations != nil && claims.ID != "" {
			revoked, err := cfg.Revocations.IsTokenRevoked(c.Request.Context(), claims.ID)
			switch {
			case err != nil:
				// fail open: an unreachable blacklist must not lock everyone out
				log.Error("token revocation check failed", zap.String("jti", claims.ID), zap.Error(err))
			case revoked:
				reject(c, auth.ErrTokenBlacklisted)
				return
			}
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTUsernameKey, claims.Username)
		c.Set(JWTRoleKey, claims.Role)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errMissingHeader
	}
	token, ok := strings.CutPrefix(header, BearerPrefix)
	if !ok {
		return "", errNotBearer
	}
	if token == "" {
		return "", auth.ErrInvalidToken
	}
	return token, nil
}

// RequireAdmin must run after the JWT middleware
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetJWTRole(c) == AdminRole {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden,
			dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "Administrator access required", getRequestID(c)))
	}
}

func GetJWTClaims(c *gin.Context) *auth.Claims {
	v, _ := c.Get(JWTClaimsKey)
	claims, _ := v.(*auth.Claims)
	return claims
}

func GetJWTUserID(c *gin.Context) string   { return c.GetString(JWTUserIDKey) }
func GetJWTUsername(c *gin.Context) string { return c.GetString(JWTUsernameKey) }
func GetJWTRole(c *gin.Context) string     { return c.GetString(JWTRoleKey) }

// GetActor is the caller identity the services use for ownership checks
func GetActor(c *gin.Context) (shared.Actor, error) {
	raw := GetJWTUserID(c)
	if raw == "" {
		return shared.Actor{}, errors.New("user ID not found in context")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return shared.Actor{}, err
	}
	return shared.Actor{UserID: id, IsAdmin: GetJWTRole(c) == AdminRole}, nil
}
