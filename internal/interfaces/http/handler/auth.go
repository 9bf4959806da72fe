package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/murdhanno/backend/internal/application/identity"
	"github.com/murdhanno/backend/internal/interfaces/http/middleware"
)

// AuthHandler serves /auth: sign in, token refresh, sign out and the
// caller's own profile.
type AuthHandler struct {
	BaseHandler
	auth *identity.AuthService
}

func NewAuthHandler(authService *identity.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login godoc
// @Summary      Sign in
// @Description  Issues an access and refresh token pair. Repeated failures lock the account for a while.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} dto.Response{data=LoginResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	req, ok := bindJSON[LoginRequest](&h.BaseHandler, c)
	if !ok {
		return
	}
	result, err := h.auth.Login(c.Request.Context(), identity.LoginInput{
		Username: req.Username,
		Password: req.Password,
		IP:       c.ClientIP(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, LoginResponse{Token: TokenResponse(result.TokenPair), User: result.User})
}

// RefreshToken godoc
// @Summary      Refresh the token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshTokenRequest true "Refresh token"
// @Success      200 {object} dto.Response{data=RefreshTokenResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	req, ok := bindJSON[RefreshTokenRequest](&h.BaseHandler, c)
	if !ok {
		return
	}
	result, err := h.auth.RefreshToken(c.Request.Context(), identity.RefreshTokenInput{RefreshToken: req.RefreshToken})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, RefreshTokenResponse{Token: TokenResponse(result.TokenPair)})
}

// Logout godoc
// @Summary      Sign out
// @Description  Revokes the presented access token, and the refresh token when the body carries one.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LogoutRequest false "Refresh token to revoke as well"
// @Success      200 {object} dto.Response{data=MessageResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	userID, err := claims.GetUserUUID()
	if err != nil {
		h.Unauthorized(c, "Invalid user ID in token")
		return
	}

	var req LogoutRequest
	if c.Request.ContentLength > 0 {
		var ok bool
		if req, ok = bindJSON[LogoutRequest](&h.BaseHandler, c); !ok {
			return
		}
	}

	err = h.auth.Logout(c.Request.Context(), identity.LogoutInput{
		UserID:       userID,
		TokenJTI:     claims.ID,
		TokenTTL:     claims.RemainingTTL(),
		RefreshToken: req.RefreshToken,
	})
	h.reply(c, MessageResponse{Message: "Logged out successfully"}, err)
}

// GetCurrentUser godoc
// @Summary      Get the signed-in user
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response{data=identity.UserInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	user, err := h.auth.GetCurrentUser(c.Request.Context(), actor.UserID)
	h.reply(c, user, err)
}

// ChangePassword godoc
// @Summary      Change own password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ChangePasswordRequest true "Old and new password"
// @Success      200 {object} dto.Response{data=MessageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	req, ok := bindJSON[ChangePasswordRequest](&h.BaseHandler, c)
	if !ok {
		return
	}
	err := h.auth.ChangePassword(c.Request.Context(), identity.ChangePasswordInput{
		UserID:      actor.UserID,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	h.reply(c, MessageResponse{Message: "Password changed successfully"}, err)
}
