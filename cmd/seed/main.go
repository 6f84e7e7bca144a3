package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/todo-organizer/config"
	"github.com/oksasatya/todo-organizer/internal/application"
	"github.com/oksasatya/todo-organizer/internal/container"
	repo "github.com/oksasatya/todo-organizer/internal/domain/repository"
	pginfra "github.com/oksasatya/todo-organizer/internal/infrastructure/postgres"
	"github.com/oksasatya/todo-organizer/pkg/helpers"
	"github.com/oksasatya/todo-organizer/pkg/mailer"
)

const (
	demoEmail    = "demo@organizer.local"
	demoPassword = "password123"
	demoUsername = "demoUser"
	demoTimezone = "Europe/Kyiv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)

	if err := run(context.Background(), cfg, logger); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	c := container.New(container.Deps{
		Config: cfg,
		Logger: logger,
		Users:  pginfra.NewUserRepository(pool),
		Todos:  pginfra.NewTodoRepository(pool),
		Audit:  pginfra.NewAuditRepository(pool),
		Sender: mailer.DiscardSender{Logger: logger},
	})

	userID, err := ensureDemoUser(ctx, c)
	if err != nil {
		return fmt.Errorf("seed user: %w", err)
	}
	fmt.Printf("seeded user: id=%s email=%s username=%s password=%s\n", userID, demoEmail, demoUsername, demoPassword)

	snap, err := c.TodoService.Snapshot(ctx, userID)
	if err != nil {
		return fmt.Errorf("load todos: %w", err)
	}
	if len(snap.Groups) > 0 || len(snap.Lists) > 0 {
		fmt.Println("demo todos already present")
		return nil
	}
	if err := seedTodos(ctx, c.TodoService, userID); err != nil {
		return fmt.Errorf("seed todos: %w", err)
	}
	fmt.Println("seeded demo group, list, task and step")
	return nil
}

// ensureDemoUser registers the demo account when missing and confirms it.
func ensureDemoUser(ctx context.Context, c *container.Container) (string, error) {
	u, err := c.Users.GetByEmail(ctx, demoEmail)
	if errors.Is(err, repo.ErrNotFound) {
		if _, err := c.AuthService.Register(ctx, application.RegisterInput{
			Email:    demoEmail,
			Password: demoPassword,
			Username: demoUsername,
			Timezone: demoTimezone,
		}, application.RequestMeta{UserAgent: "seed"}); err != nil {
			return "", err
		}
		u, err = c.Users.GetByEmail(ctx, demoEmail)
	}
	if err != nil {
		return "", err
	}
	if !u.IsConfirmed() {
		if err := c.AuthService.ConfirmEmail(ctx, u.ConfirmationToken(), application.RequestMeta{UserAgent: "seed"}); err != nil {
			return "", err
		}
	}
	return u.ID, nil
}

func seedTodos(ctx context.Context, todos *application.TodoService, userID string) error {
	g, err := todos.CreateGroup(ctx, userID, "Home")
	if err != nil {
		return err
	}
	l, err := todos.CreateList(ctx, userID, application.ListInput{Title: "Groceries", GroupID: &g.ID})
	if err != nil {
		return err
	}
	due := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Hour)
	t, err := todos.CreateTask(ctx, userID, application.TaskInput{
		Title:     "Buy milk",
		ListID:    l.ID,
		Note:      "Oat, 2 litres",
		Important: true,
		DueDate:   &due,
	})
	if err != nil {
		return err
	}
	_, err = todos.CreateStep(ctx, userID, application.StepInput{Title: "Check the fridge", TaskID: t.ID})
	return err
}
