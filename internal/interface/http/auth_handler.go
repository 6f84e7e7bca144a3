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
	msgInvalidRegistration = "Invalid data at registration"
	msgInvalidLogin        = "Invalid data at login"
	msgUserExists          = "User already exist"
	msgUserCreated         = "User created"
	msgUserNotFound        = "User not found"
)

type AuthHandler struct {
	Auth   *application.AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(auth *application.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Logger: logger}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Username string `json:"username" binding:"required,username"`
	Timezone string `json:"Timezone" binding:"required,tz"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// sessionResponse is returned by registration and both login paths.
type sessionResponse struct {
	Token          string `json:"token"`
	UserID         string `json:"userId"`
	Username       string `json:"username"`
	Timezone       string `json:"Timezone"`
	Email          string `json:"email"`
	EmailConfirmed bool   `json:"emailConfirmed"`
	Message        string `json:"message,omitempty"`
}

func newSessionResponse(s *application.Session, message string) sessionResponse {
	return sessionResponse{
		Token:          s.Token,
		UserID:         s.User.ID,
		Username:       s.User.Username,
		Timezone:       s.User.Timezone,
		Email:          s.User.Email,
		EmailConfirmed: s.User.IsConfirmed(),
		Message:        message,
	}
}

func requestMeta(c *gin.Context) application.RequestMeta {
	return application.RequestMeta{IP: middleware.ClientIP(c), UserAgent: c.GetHeader("User-Agent")}
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Invalid(c, msgInvalidRegistration, validation.ToErrors(err))
		return
	}

	sess, err := h.Auth.Register(c.Request.Context(), application.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
		Timezone: req.Timezone,
	}, requestMeta(c))
	switch {
	case errors.Is(err, application.ErrUserExists):
		response.Message(c, http.StatusBadRequest, msgUserExists)
		return
	case err != nil:
		response.Internal(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, newSessionResponse(sess, msgUserCreated))
}

// LoginForm POST /api/auth/login/form
func (h *AuthHandler) LoginForm(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Invalid(c, msgInvalidLogin, validation.ToErrors(err))
		return
	}

	sess, err := h.Auth.LoginWithPassword(c.Request.Context(), req.Email, req.Password, requestMeta(c))
	if h.writeLoginError(c, err, http.StatusBadRequest) {
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(sess, ""))
}

// LoginJWT POST /api/auth/login/jwt (bearer)
func (h *AuthHandler) LoginJWT(c *gin.Context) {
	sess, err := h.Auth.LoginWithToken(c.Request.Context(), middleware.UserID(c), requestMeta(c))
	if h.writeLoginError(c, err, http.StatusUnauthorized) {
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(sess, ""))
}

// writeLoginError reports whether err was written. notFound is the status for
// an unknown account.
func (h *AuthHandler) writeLoginError(c *gin.Context, err error, notFound int) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, application.ErrInvalidCredentials), errors.Is(err, application.ErrUserNotFound):
		response.Message(c, notFound, msgUserNotFound)
	case errors.Is(err, application.ErrEmailNotConfirmed):
		response.Message(c, http.StatusConflict, middleware.MsgConfirmRequired)
	default:
		response.Internal(c, h.Logger, err)
	}
	return true
}
