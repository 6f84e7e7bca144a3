package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/todo-organizer/internal/application"
	"github.com/oksasatya/todo-organizer/internal/domain/entity"
	"github.com/oksasatya/todo-organizer/pkg/helpers"
	"github.com/oksasatya/todo-organizer/pkg/response"
)

const CtxUserIDKey = "userID"

const (
	MsgAuthRequired     = "Authorization required"
	MsgInvalidToken     = "Invalid token"
	MsgTokenExpired     = "Token expired"
	MsgTokenRevoked     = "Token revoked"
	MsgConfirmRequired  = "You must confirm email. If you can't find the letter, check the Spam folder"
	MsgUserNoLongerHere = "User no longer exists"
)

// VersionSource reports the current token version of a user.
type VersionSource interface {
	Current(ctx context.Context, uid string) (int64, error)
}

// BearerAuth validates "Authorization: Bearer <token>" and sets userID in
// the Gin context. Tokens older than the user's current version are
// rejected; version lookups that fail let the request through.
func BearerAuth(jwt *helpers.JWTManager, versions VersionSource, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Abort(c, http.StatusUnauthorized, MsgAuthRequired)
			return
		}
		claims, err := jwt.Parse(token)
		if err != nil {
			msg := MsgInvalidToken
			if errors.Is(err, helpers.ErrTokenExpired) {
				msg = MsgTokenExpired
			}
			response.Abort(c, http.StatusUnauthorized, msg)
			return
		}

		if versions != nil {
			current, err := versions.Current(c.Request.Context(), claims.UserID)
			if err != nil {
				logger.WithError(err).WithField("user_id", claims.UserID).Warn("token version lookup failed")
			} else if claims.Version < current {
				response.Abort(c, http.StatusUnauthorized, MsgTokenRevoked)
				return
			}
		}

		c.Set(CtxUserIDKey, claims.UserID)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// UserLoader loads the authenticated user; *application.AuthService implements it.
type UserLoader interface {
	CurrentUser(ctx context.Context, userID string) (*entity.User, error)
}

// RequireConfirmedEmail must run after BearerAuth. Pending accounts get 409,
// deleted accounts 401.
func RequireConfirmedEmail(users UserLoader, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := users.CurrentUser(c.Request.Context(), c.GetString(CtxUserIDKey))
		switch {
		case errors.Is(err, application.ErrUserNotFound):
			response.Abort(c, http.StatusUnauthorized, MsgUserNoLongerHere)
			return
		case err != nil:
			response.Internal(c, logger, err)
			c.Abort()
			return
		case !u.IsConfirmed():
			response.Abort(c, http.StatusConflict, MsgConfirmRequired)
			return
		}
		c.Next()
	}
}

// UserID returns the id set by BearerAuth.
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserIDKey)
}
