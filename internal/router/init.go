package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/todo-organizer/internal/container"
	handlers "github.com/oksasatya/todo-organizer/internal/interface/http"
	"github.com/oksasatya/todo-organizer/internal/interface/middleware"
	"github.com/oksasatya/todo-organizer/internal/router/modules"
)

// InitModules builds the handlers from c and adds every feature module to r.
func InitModules(r *Registry, c *container.Container) {
	bearer := middleware.BearerAuth(c.JWT, c.Versions, c.Logger)
	confirmed := middleware.RequireConfirmedEmail(c.AuthService, c.Logger)

	r.Add(
		modules.NewAuthModule(
			handlers.NewAuthHandler(c.AuthService, c.Logger),
			handlers.NewUserHandler(c.AuthService, c.Logger),
			bearer,
		),
		modules.NewEmailModule(handlers.NewEmailHandler(c.AuthService, c.Logger, c.Config.BaseURL), bearer),
		modules.NewRecoveryModule(handlers.NewRecoveryHandler(c.AuthService, c.Logger)),
		modules.NewTodoModule(handlers.NewTodoHandler(c.TodoService, c.Logger), bearer, confirmed),
	)
	if c.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}

// NewEngine returns a gin engine with the global middleware chain and every
// module registered. Client IP resolution only runs for /api routes.
func NewEngine(c *container.Container) *gin.Engine {
	cfg := c.Config

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(cors.New(corsConfig(cfg.CORSOrigins())))
	if cfg.HTTPLogEnabled {
		r.Use(middleware.AccessLog(c.Logger))
	}

	reg := NewRegistry(r, c.Logger)
	reg.Use(middleware.RealIP())
	InitModules(reg, c)
	reg.RegisterAll()
	return r
}

// corsConfig allows any origin when none is configured. Tokens travel in the
// Authorization header, so credentials are never enabled.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders: []string{"Content-Length", middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
