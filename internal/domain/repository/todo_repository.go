package repository

import (
	"context"

	"github.com/oksasatya/todo-organizer/internal/domain/entity"
)

// TodoRepository stores the group/list/task/step hierarchy. Every method is
// scoped by owner; rows of other owners behave as missing (ErrNotFound).
// Deletes remove descendants in the same transaction.
type TodoRepository interface {
	Snapshot(ctx context.Context, ownerID string) (*entity.Snapshot, error)

	CreateGroup(ctx context.Context, g *entity.Group) error
	GetGroup(ctx context.Context, ownerID, id string) (*entity.Group, error)
	UpdateGroup(ctx context.Context, g *entity.Group) error
	DeleteGroup(ctx context.Context, ownerID, id string) error

	CreateList(ctx context.Context, l *entity.List) error
	GetList(ctx context.Context, ownerID, id string) (*entity.List, error)
	UpdateList(ctx context.Context, l *entity.List) error
	DeleteList(ctx context.Context, ownerID, id string) error

	CreateTask(ctx context.Context, t *entity.Task) error
	GetTask(ctx context.Context, ownerID, id string) (*entity.Task, error)
	UpdateTask(ctx context.Context, t *entity.Task) error
	DeleteTask(ctx context.Context, ownerID, id string) error
	// SearchTasks matches title or note case-insensitively.
	SearchTasks(ctx context.Context, ownerID, query string, limit int) ([]entity.Task, error)

	CreateStep(ctx context.Context, s *entity.Step) error
	GetStep(ctx context.Context, ownerID, id string) (*entity.Step, error)
	UpdateStep(ctx context.Context, s *entity.Step) error
	DeleteStep(ctx context.Context, ownerID, id string) error
}
