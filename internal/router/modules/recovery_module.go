package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/todo-organizer/internal/interface/http"
)

// RecoveryModule is public; the recovery code is the credential.
type RecoveryModule struct {
	Handler *handlers.RecoveryHandler
}

func NewRecoveryModule(h *handlers.RecoveryHandler) *RecoveryModule {
	return &RecoveryModule{Handler: h}
}

func (m *RecoveryModule) Name() string { return "recovery" }

func (m *RecoveryModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/recover_password")
	g.POST("/send_code", m.Handler.SendCode)
	g.POST("/update", m.Handler.Update)
}
