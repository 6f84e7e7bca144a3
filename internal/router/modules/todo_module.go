package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/todo-organizer/internal/interface/http"
)

// TodoModule wires the owned-entity routes under /for_authorized_users.
// Every route requires a valid bearer token and a confirmed email.
type TodoModule struct {
	Handler *handlers.TodoHandler
	Guards  []gin.HandlerFunc
}

func NewTodoModule(h *handlers.TodoHandler, guards ...gin.HandlerFunc) *TodoModule {
	return &TodoModule{Handler: h, Guards: guards}
}

func (m *TodoModule) Name() string { return "todo" }

func (m *TodoModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/for_authorized_users")
	g.Use(m.Guards...)
	{
		g.GET("/get_all", m.Handler.GetAll)
		g.GET("/search", m.Handler.Search)

		g.POST("/groups", m.Handler.CreateGroup)
		g.PUT("/groups/:id", m.Handler.UpdateGroup)
		g.DELETE("/groups/:id", m.Handler.DeleteGroup)

		g.POST("/lists", m.Handler.CreateList)
		g.PUT("/lists/:id", m.Handler.UpdateList)
		g.DELETE("/lists/:id", m.Handler.DeleteList)

		g.POST("/tasks", m.Handler.CreateTask)
		g.PUT("/tasks/:id", m.Handler.UpdateTask)
		g.DELETE("/tasks/:id", m.Handler.DeleteTask)

		g.POST("/steps", m.Handler.CreateStep)
		g.PUT("/steps/:id", m.Handler.UpdateStep)
		g.DELETE("/steps/:id", m.Handler.DeleteStep)
	}
}
