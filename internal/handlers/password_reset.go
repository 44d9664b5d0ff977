package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hazemkhaled/digimarket/internal/services"
	apperrors "github.com/hazemkhaled/digimarket/pkg/errors"
	"github.com/hazemkhaled/digimarket/pkg/logger"
	"github.com/hazemkhaled/digimarket/pkg/response"
)

// PasswordResetHandler exposes the reset code request/confirm endpoints.
type PasswordResetHandler struct {
	resets *services.PasswordResetService
}

func NewPasswordResetHandler(resets *services.PasswordResetService) *PasswordResetHandler {
	return &PasswordResetHandler{resets: resets}
}

type resetRequestPayload struct {
	Email string `json:"email" validate:"required,email"`
}

type resetConfirmPayload struct {
	Email           string `json:"email" validate:"required,email"`
	Code            string `json:"code" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// POST /api/auth/password-reset/request
//
// The response is identical whether or not an account exists for the address,
// so this endpoint cannot be used to enumerate accounts.
func (h *PasswordResetHandler) Request(c *gin.Context) {
	var req resetRequestPayload
	if !bindAndValidate(c, &req) {
		return
	}

	_, err := h.resets.Request(requestContext(c), req.Email)
	if err != nil && !errors.Is(err, services.ErrUnknownEmail) {
		switch {
		case errors.Is(err, services.ErrEmailRequired), errors.Is(err, services.ErrEmailInvalid):
			response.Error(c, apperrors.NewBadRequest("a valid email address is required"))
		default:
			logger.WithModule("reset").Error("issue reset code", zap.Error(err))
			response.Error(c, apperrors.ErrInternalServer)
		}
		return
	}
	if errors.Is(err, services.ErrUnknownEmail) {
		logger.WithModule("reset").Info("reset requested for unknown email")
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "If an account exists for this address, a reset code has been sent",
	})
}

// POST /api/auth/password-reset/confirm
func (h *PasswordResetHandler) Confirm(c *gin.Context) {
	var req resetConfirmPayload
	if !bindAndValidate(c, &req) {
		return
	}

	err := h.resets.Confirm(requestContext(c), req.Email, req.Code, req.NewPassword, req.ConfirmPassword)
	switch {
	case err == nil:
		response.Success(c, http.StatusOK, gin.H{"message": "Password updated successfully"})
	case errors.Is(err, services.ErrCodeInvalid):
		response.Error(c, apperrors.ErrResetCodeInvalid)
	case errors.Is(err, services.ErrPasswordMismatch):
		response.Error(c, apperrors.NewBadRequest("passwords do not match"))
	case errors.Is(err, services.ErrPasswordTooShort):
		response.Error(c, apperrors.NewBadRequest("password must be at least 6 characters"))
	case errors.Is(err, services.ErrCodeRequired), errors.Is(err, services.ErrPasswordRequired),
		errors.Is(err, services.ErrEmailRequired), errors.Is(err, services.ErrEmailInvalid):
		response.Error(c, apperrors.ErrBadRequest)
	case errors.Is(err, services.ErrCredentialUpdate):
		// The code was consumed; a fresh one must be requested.
		logger.WithModule("reset").Error("credential update failed", zap.Error(err))
		response.Error(c, apperrors.ErrInternalServer)
	default:
		logger.WithModule("reset").Error("confirm reset code", zap.Error(err))
		response.Error(c, apperrors.ErrInternalServer)
	}
}
