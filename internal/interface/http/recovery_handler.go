package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/todo-organizer/internal/application"
	"github.com/oksasatya/todo-organizer/pkg/response"
	"github.com/oksasatya/todo-organizer/pkg/validation"
)

const (
	msgRecoverySent    = "If the account exists, a recovery code has been sent"
	msgInvalidRecovery = "Invalid data at password recovery"
	msgInvalidCode     = "Invalid or expired recovery code"
	msgPasswordUpdated = "Password updated"
)

type RecoveryHandler struct {
	Auth   *application.AuthService
	Logger *logrus.Logger
}

func NewRecoveryHandler(auth *application.AuthService, logger *logrus.Logger) *RecoveryHandler {
	return &RecoveryHandler{Auth: auth, Logger: logger}
}

type sendCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type updatePasswordRequest struct {
	Email        string `json:"email" binding:"required,email"`
	RecoveryCode string `json:"RecoveryCode" binding:"required"`
	Password     string `json:"password" binding:"required,pwd"`
}

// SendCode POST /api/recover_password/send_code {email}
func (h *RecoveryHandler) SendCode(c *gin.Context) {
	var req sendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Invalid(c, msgInvalidRecovery, validation.ToErrors(err))
		return
	}
	if err := h.Auth.SendRecoveryCode(c.Request.Context(), req.Email, requestMeta(c)); err != nil {
		response.Internal(c, h.Logger, err)
		return
	}
	response.Message(c, http.StatusOK, msgRecoverySent)
}

// Update POST /api/recover_password/update {email, RecoveryCode, password}
func (h *RecoveryHandler) Update(c *gin.Context) {
	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Invalid(c, msgInvalidRecovery, validation.ToErrors(err))
		return
	}
	err := h.Auth.ResetPassword(c.Request.Context(), req.Email, req.RecoveryCode, req.Password, requestMeta(c))
	switch {
	case errors.Is(err, application.ErrInvalidRecoveryCode):
		response.Message(c, http.StatusBadRequest, msgInvalidCode)
	case err != nil:
		response.Internal(c, h.Logger, err)
	default:
		response.Message(c, http.StatusOK, msgPasswordUpdated)
	}
}
