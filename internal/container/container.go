package container

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/todo-organizer/config"
	"github.com/oksasatya/todo-organizer/internal/application"
	repo "github.com/oksasatya/todo-organizer/internal/domain/repository"
	"github.com/oksasatya/todo-organizer/pkg/helpers"
	"github.com/oksasatya/todo-organizer/pkg/mailer"
)

// Deps are the infrastructure pieces built by cmd/main. Redis and Index are
// optional.
type Deps struct {
	Config *config.Config
	Logger *logrus.Logger

	Users repo.UserRepository
	Todos repo.TodoRepository
	Audit repo.AuditRepository

	Sender mailer.Sender
	Redis  *redis.Client
	Index  application.TaskIndex
}

// Container holds the constructed components shared by the router modules.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	JWT      *helpers.JWTManager
	Versions *helpers.TokenVersions
	Hasher   *helpers.PasswordHasher
	Notifier *application.Notifier

	Users repo.UserRepository
	Todos repo.TodoRepository
	Audit repo.AuditRepository
	Index application.TaskIndex

	AuthService *application.AuthService
	TodoService *application.TodoService
}

func New(d Deps) *Container {
	cfg := d.Config
	logger := d.Logger
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	sender := d.Sender
	if sender == nil {
		sender = mailer.DiscardSender{Logger: logger}
	}

	c := &Container{
		Config:   cfg,
		Logger:   logger,
		JWT:      helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL),
		Versions: helpers.NewTokenVersions(d.Redis),
		Hasher:   helpers.NewPasswordHasher(cfg.BcryptCost),
		Notifier: application.NewNotifier(cfg, sender, logger),
		Users:    d.Users,
		Todos:    d.Todos,
		Audit:    d.Audit,
		Index:    d.Index,
	}

	c.AuthService = application.NewAuthService(c.Users, c.Audit, c.Hasher, c.JWT, c.Versions, c.Notifier, logger, cfg.RecoveryCodeTTL)
	c.TodoService = application.NewTodoService(c.Todos, logger)
	if c.Index != nil {
		c.AuthService.Index = c.Index
		c.TodoService.Index = c.Index
	}
	return c
}
