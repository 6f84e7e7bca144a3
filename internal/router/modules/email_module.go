package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/todo-organizer/internal/interface/http"
)

type EmailModule struct {
	Handler *handlers.EmailHandler
	Bearer  gin.HandlerFunc
}

func NewEmailModule(h *handlers.EmailHandler, bearer gin.HandlerFunc) *EmailModule {
	return &EmailModule{Handler: h, Bearer: bearer}
}

func (m *EmailModule) Name() string { return "email" }

func (m *EmailModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/confirmEmail")
	g.POST("/send", m.Bearer, m.Handler.Resend)
	g.GET("/:token", m.Handler.Confirm)
}
