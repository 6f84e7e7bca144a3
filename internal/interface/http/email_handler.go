package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/todo-organizer/internal/application"
	"github.com/oksasatya/todo-organizer/internal/interface/middleware"
	"github.com/oksasatya/todo-organizer/pkg/response"
)

const (
	msgInvalidConfirmLink = "Invalid confirmation link"
	msgConfirmationSent   = "Confirmation email sent"
	msgAlreadyConfirmed   = "Email already confirmed"
)

type EmailHandler struct {
	Auth   *application.AuthService
	Logger *logrus.Logger
	// RedirectURL receives the browser after a successful confirmation.
	RedirectURL string
}

func NewEmailHandler(auth *application.AuthService, logger *logrus.Logger, redirectURL string) *EmailHandler {
	return &EmailHandler{Auth: auth, Logger: logger, RedirectURL: redirectURL}
}

// Confirm GET /api/confirmEmail/:token
func (h *EmailHandler) Confirm(c *gin.Context) {
	err := h.Auth.ConfirmEmail(c.Request.Context(), c.Param("token"), requestMeta(c))
	switch {
	case errors.Is(err, application.ErrInvalidConfirmation):
		response.Message(c, http.StatusBadRequest, msgInvalidConfirmLink)
	case err != nil:
		response.Internal(c, h.Logger, err)
	default:
		c.Redirect(http.StatusFound, h.RedirectURL)
	}
}

// Resend POST /api/confirmEmail/send (bearer)
func (h *EmailHandler) Resend(c *gin.Context) {
	sent, err := h.Auth.ResendConfirmation(c.Request.Context(), middleware.UserID(c))
	switch {
	case errors.Is(err, application.ErrUserNotFound):
		response.Message(c, http.StatusUnauthorized, middleware.MsgUserNoLongerHere)
	case err != nil:
		response.Internal(c, h.Logger, err)
	case sent:
		response.Message(c, http.StatusOK, msgConfirmationSent)
	default:
		response.Message(c, http.StatusOK, msgAlreadyConfirmed)
	}
}
