package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/todo-organizer/internal/application"
	"github.com/oksasatya/todo-organizer/internal/interface/middleware"
	"github.com/oksasatya/todo-organizer/pkg/response"
	"github.com/oksasatya/todo-organizer/pkg/validation"
)

const (
	msgPasswordRequired = "Password is required"
	msgWrongPassword    = "Wrong password"
	msgUserDeleted      = "User deleted"
)

type UserHandler struct {
	Auth   *application.AuthService
	Logger *logrus.Logger
}

func NewUserHandler(auth *application.AuthService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Auth: auth, Logger: logger}
}

type deleteUserRequest struct {
	Password string `json:"password" binding:"required"`
}

// DeleteAccount DELETE /api/auth/user (bearer) {password}
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	var req deleteUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Invalid(c, msgPasswordRequired, validation.ToErrors(err))
		return
	}

	err := h.Auth.DeleteAccount(c.Request.Context(), middleware.UserID(c), req.Password, requestMeta(c))
	switch {
	case errors.Is(err, application.ErrUserNotFound):
		response.Message(c, http.StatusBadRequest, msgUserNotFound)
	case errors.Is(err, application.ErrWrongPassword):
		response.Message(c, http.StatusBadRequest, msgWrongPassword)
	case err != nil:
		response.Internal(c, h.Logger, err)
	default:
		h.Logger.WithField("user_id", middleware.UserID(c)).Info("account deleted")
		response.Message(c, http.StatusCreated, msgUserDeleted)
	}
}
