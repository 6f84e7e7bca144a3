package modules

import (
	"expvar"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/todo-organizer/internal/interface/middleware"
)

// DebugModule exposes expvar counters to loopback and private peers only.
type DebugModule struct{}

func NewDebugModule() *DebugModule { return &DebugModule{} }

func (m *DebugModule) Name() string { return "debug" }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rg.GET("/debug/vars", middleware.AllowPrivateIP(), gin.WrapH(expvar.Handler()))
}
