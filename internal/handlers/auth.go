package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	iauth "github.com/hazemkhaled/digimarket/internal/auth"
	"github.com/hazemkhaled/digimarket/internal/models"
	"github.com/hazemkhaled/digimarket/internal/services"
	apperrors "github.com/hazemkhaled/digimarket/pkg/errors"
	"github.com/hazemkhaled/digimarket/pkg/logger"
	"github.com/hazemkhaled/digimarket/pkg/response"
)

// AuthHandler manages authentication flows (register/login/refresh/logout/me).
type AuthHandler struct {
	db       *gorm.DB
	authn    *iauth.LocalAuthenticator
	sessions *iauth.SessionService
	notify   *services.NotificationService
}

func NewAuthHandler(db *gorm.DB, authn *iauth.LocalAuthenticator, sessions *iauth.SessionService, notify *services.NotificationService) *AuthHandler {
	return &AuthHandler{db: db, authn: authn, sessions: sessions, notify: notify}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func userPayload(user *models.User) gin.H {
	return gin.H{
		"id":        user.ID,
		"username":  user.Username,
		"email":     user.Email,
		"is_admin":  user.IsAdmin,
		"is_active": user.IsActive,
	}
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.authn.Register(iauth.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if services.IsUniqueConstraintError(err) {
			response.Error(c, apperrors.ErrConflict)
			return
		}
		logger.WithModule("auth").Error("register", zap.Error(err))
		response.Error(c, apperrors.ErrInternalServer)
		return
	}

	// Best effort; registration succeeds whether or not the mail lands.
	if h.notify != nil {
		if err := h.notify.SendWelcome(requestContext(c), user); err != nil {
			logger.WithModule("auth").Warn("welcome email", zap.Error(err))
		}
		if err := h.notify.NotifyAdminsNewUser(requestContext(c), user); err != nil {
			logger.WithModule("auth").Warn("admin registration alert", zap.Error(err))
		}
	}

	pair, _, err := h.sessions.CreateSession(user, iauth.SessionMetadata{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		response.Error(c, apperrors.ErrInternalServer)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"tokens": tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken},
		"user":   userPayload(user),
	})
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.authn.Authenticate(iauth.AuthenticateInput{
		Identifier: req.Identifier,
		Password:   req.Password,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
	if err != nil {
		// Lockouts surface as 429 so clients can back off; everything else
		// collapses to 401.
		if errors.Is(err, iauth.ErrAccountLocked) {
			response.Error(c, apperrors.ErrRateLimit)
			return
		}
		response.Error(c, apperrors.ErrInvalidCredentials)
		return
	}

	pair, _, err := h.sessions.CreateSession(user, iauth.SessionMetadata{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		response.Error(c, apperrors.ErrInternalServer)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"tokens": tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken},
		"user":   userPayload(user),
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bindAndValidate(c, &req) {
		return
	}
	req.RefreshToken = strings.TrimSpace(req.RefreshToken)
	if req.RefreshToken == "" {
		response.Error(c, apperrors.NewBadRequest("refresh token is required"))
		return
	}

	pair, _, err := h.sessions.RefreshSession(req.RefreshToken)
	if err != nil {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	response.Success(c, http.StatusOK, tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	sid := currentSessionID(c)
	if sid == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	if err := h.sessions.RevokeSession(sid); err != nil {
		response.Error(c, apperrors.ErrInternalServer)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"revoked": true})
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	uid := currentUserID(c)
	if uid == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var user models.User
	if err := h.db.WithContext(requestContext(c)).Take(&user, "id = ?", uid).Error; err != nil {
		response.Error(c, apperrors.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, userPayload(&user))
}
