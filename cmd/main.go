package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/oksasatya/todo-organizer/config"
	"github.com/oksasatya/todo-organizer/internal/container"
	esinfra "github.com/oksasatya/todo-organizer/internal/infrastructure/elasticsearch"
	"github.com/oksasatya/todo-organizer/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/todo-organizer/internal/infrastructure/postgres"
	"github.com/oksasatya/todo-organizer/internal/router"
	"github.com/oksasatya/todo-organizer/pkg/helpers"
	"github.com/oksasatya/todo-organizer/pkg/mailer"
	"github.com/oksasatya/todo-organizer/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
	logger.Info("server exited properly")
}

// run wires the dependencies and serves until SIGINT or SIGTERM. Every
// connection it opens is closed before it returns.
func run(cfg *config.Config, logger *logrus.Logger) error {
	ctx := context.Background()
	deps := container.Deps{Config: cfg, Logger: logger}

	// Storage
	switch cfg.StorageDriver {
	case "memory":
		logger.Warn("using in-memory storage; data is lost on restart")
		store := memory.NewStore()
		deps.Users, deps.Todos, deps.Audit = store, store, store
	case "postgres":
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()

		if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		deps.Users = pginfra.NewUserRepository(pool)
		deps.Todos = pginfra.NewTodoRepository(pool)
		deps.Audit = pginfra.NewAuditRepository(pool)
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	// Redis backs token revocation; without it tokens live until they expire.
	if cfg.RedisAddr != "" {
		rdb, err := helpers.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer func() { _ = rdb.Close() }()
		deps.Redis = rdb
	} else {
		logger.Warn("REDIS_ADDR not set; token revocation disabled")
	}

	// Mail
	sender, closeSender, err := newSender(cfg, logger)
	if err != nil {
		return fmt.Errorf("init mail sender: %w", err)
	}
	defer closeSender()
	deps.Sender = sender

	// Elasticsearch task index is optional; search falls back to the database.
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(ctx, addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Warn("elasticsearch unavailable; task search uses the database")
		} else {
			idx := esinfra.NewTaskIndex(es, cfg.ESTasksIndex)
			if err := idx.EnsureIndex(ctx); err != nil {
				logger.WithError(err).Warn("ensure task index failed")
			}
			deps.Index = idx
		}
	}

	c := container.New(deps)
	r := router.NewEngine(c)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// newSender picks the mail path from config. The returned func releases any
// connection it opened.
func newSender(cfg *config.Config, logger *logrus.Logger) (mailer.Sender, func(), error) {
	nop := func() {}
	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; emails are logged and dropped")
		return mailer.DiscardSender{Logger: logger}, nop, nil
	}

	switch cfg.MailTransport {
	case "queue":
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			return nil, nop, fmt.Errorf("rabbitmq: %w", err)
		}
		return mailer.QueueSender{Pub: pub}, pub.Close, nil
	case "direct":
		if !cfg.MailgunConfigured() {
			return nil, nop, errors.New("mailgun not configured")
		}
		mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender, cfg.MailgunAPIBase)
		return mailer.DirectSender{Transport: mg}, nop, nil
	default:
		return nil, nop, fmt.Errorf("unknown MAIL_TRANSPORT %q", cfg.MailTransport)
	}
}

func runMigrations(dsn string, migrationsDir string, logger *logrus.Logger) error {
	// Open sql DB via pgx stdlib
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
