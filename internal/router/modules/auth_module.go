package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/todo-organizer/internal/interface/http"
)

// AuthModule mounts registration, both login paths and account deletion.
type AuthModule struct {
	Auth   *handlers.AuthHandler
	User   *handlers.UserHandler
	Bearer gin.HandlerFunc
}

func NewAuthModule(auth *handlers.AuthHandler, user *handlers.UserHandler, bearer gin.HandlerFunc) *AuthModule {
	return &AuthModule{Auth: auth, User: user, Bearer: bearer}
}

func (m *AuthModule) Name() string { return "auth" }

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/auth")
	g.POST("/register", m.Auth.Register)
	g.POST("/login/form", m.Auth.LoginForm)

	// Protected
	g.POST("/login/jwt", m.Bearer, m.Auth.LoginJWT)
	g.DELETE("/user", m.Bearer, m.User.DeleteAccount)
}
