package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/todo-organizer/internal/domain/entity"
	"github.com/oksasatya/todo-organizer/internal/domain/repository"
)

type TodoRepository struct {
	db DB
}

func NewTodoRepository(db DB) *TodoRepository {
	return &TodoRepository{db: db}
}

const (
	groupColumns = `id, owner_id, title, created_at, updated_at`
	listColumns  = `id, owner_id, group_id, title, created_at, updated_at`
	taskColumns  = `id, owner_id, list_id, title, note, completed, important, due_date, created_at, updated_at`
	stepColumns  = `id, owner_id, task_id, title, completed, created_at, updated_at`
)

func scanGroup(row pgx.Row) (*entity.Group, error) {
	g := &entity.Group{}
	if err := row.Scan(&g.ID, &g.OwnerID, &g.Title, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	return g, nil
}

func scanList(row pgx.Row) (*entity.List, error) {
	l := &entity.List{}
	if err := row.Scan(&l.ID, &l.OwnerID, &l.GroupID, &l.Title, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	return l, nil
}

func scanTask(row pgx.Row) (*entity.Task, error) {
	t := &entity.Task{}
	if err := row.Scan(&t.ID, &t.OwnerID, &t.ListID, &t.Title, &t.Note, &t.Completed, &t.Important,
		&t.DueDate, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	return t, nil
}

func scanStep(row pgx.Row) (*entity.Step, error) {
	s := &entity.Step{}
	if err := row.Scan(&s.ID, &s.OwnerID, &s.TaskID, &s.Title, &s.Completed, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	return s, nil
}

func collect[T any](rows pgx.Rows, scan func(pgx.Row) (*T, error)) ([]T, error) {
	defer rows.Close()
	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

// insertScoped maps "no row inserted" to a missing parent: inserts select
// from the parent constrained by owner.
func insertScoped(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrOwnerMissing
	}
	return mapError(err)
}

func (r *TodoRepository) Snapshot(ctx context.Context, ownerID string) (*entity.Snapshot, error) {
	snap := entity.NewSnapshot()
	var err error

	rows, err := r.db.Query(ctx, `SELECT `+groupColumns+` FROM groups WHERE owner_id = $1 ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, mapError(err)
	}
	if snap.Groups, err = collect(rows, scanGroup); err != nil {
		return nil, err
	}

	rows, err = r.db.Query(ctx, `SELECT `+listColumns+` FROM lists WHERE owner_id = $1 ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, mapError(err)
	}
	if snap.Lists, err = collect(rows, scanList); err != nil {
		return nil, err
	}

	rows, err = r.db.Query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE owner_id = $1 ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, mapError(err)
	}
	if snap.Tasks, err = collect(rows, scanTask); err != nil {
		return nil, err
	}

	rows, err = r.db.Query(ctx, `SELECT `+stepColumns+` FROM steps WHERE owner_id = $1 ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, mapError(err)
	}
	if snap.Steps, err = collect(rows, scanStep); err != nil {
		return nil, err
	}
	return snap, nil
}

// ---- groups ----

func (r *TodoRepository) CreateGroup(ctx context.Context, g *entity.Group) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO groups (owner_id, title) VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`, g.OwnerID, g.Title)
	return mapError(row.Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt))
}

func (r *TodoRepository) GetGroup(ctx context.Context, ownerID, id string) (*entity.Group, error) {
	return scanGroup(r.db.QueryRow(ctx, `SELECT `+groupColumns+` FROM groups WHERE id = $1 AND owner_id = $2`, id, ownerID))
}

func (r *TodoRepository) UpdateGroup(ctx context.Context, g *entity.Group) error {
	g.UpdatedAt = time.Now()
	res, err := r.db.Exec(ctx, `UPDATE groups SET title = $1, updated_at = $2 WHERE id = $3 AND owner_id = $4`,
		g.Title, g.UpdatedAt, g.ID, g.OwnerID)
	return affected(res.RowsAffected(), err)
}

func (r *TodoRepository) DeleteGroup(ctx context.Context, ownerID, id string) error {
	return r.deleteTree(ctx, ownerID, `SELECT id FROM groups WHERE id = $1 AND owner_id = $2 FOR UPDATE`, id, []string{
		`DELETE FROM steps WHERE owner_id = $2 AND task_id IN (
			SELECT t.id FROM tasks t JOIN lists l ON l.id = t.list_id WHERE l.group_id = $1)`,
		`DELETE FROM tasks WHERE owner_id = $2 AND list_id IN (SELECT id FROM lists WHERE group_id = $1)`,
		`DELETE FROM lists WHERE owner_id = $2 AND group_id = $1`,
		`DELETE FROM groups WHERE owner_id = $2 AND id = $1`,
	})
}

// ---- lists ----

func (r *TodoRepository) CreateList(ctx context.Context, l *entity.List) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO lists (owner_id, group_id, title)
		SELECT $1, $2::uuid, $3
		WHERE $2::uuid IS NULL OR EXISTS (SELECT 1 FROM groups WHERE id = $2::uuid AND owner_id = $1)
		RETURNING id, created_at, updated_at
	`, l.OwnerID, l.GroupID, l.Title)
	return insertScoped(row.Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt))
}

func (r *TodoRepository) GetList(ctx context.Context, ownerID, id string) (*entity.List, error) {
	return scanList(r.db.QueryRow(ctx, `SELECT `+listColumns+` FROM lists WHERE id = $1 AND owner_id = $2`, id, ownerID))
}

func (r *TodoRepository) UpdateList(ctx context.Context, l *entity.List) error {
	l.UpdatedAt = time.Now()
	res, err := r.db.Exec(ctx, `
		UPDATE lists SET title = $1, group_id = $2::uuid, updated_at = $3
		WHERE id = $4 AND owner_id = $5
		  AND ($2::uuid IS NULL OR EXISTS (SELECT 1 FROM groups WHERE id = $2::uuid AND owner_id = $5))
	`, l.Title, l.GroupID, l.UpdatedAt, l.ID, l.OwnerID)
	return affected(res.RowsAffected(), err)
}

func (r *TodoRepository) DeleteList(ctx context.Context, ownerID, id string) error {
	return r.deleteTree(ctx, ownerID, `SELECT id FROM lists WHERE id = $1 AND owner_id = $2 FOR UPDATE`, id, []string{
		`DELETE FROM steps WHERE owner_id = $2 AND task_id IN (SELECT id FROM tasks WHERE list_id = $1)`,
		`DELETE FROM tasks WHERE owner_id = $2 AND list_id = $1`,
		`DELETE FROM lists WHERE owner_id = $2 AND id = $1`,
	})
}

// ---- tasks ----

func (r *TodoRepository) CreateTask(ctx context.Context, t *entity.Task) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO tasks (owner_id, list_id, title, note, completed, important, due_date)
		SELECT $1, l.id, $3, $4, $5, $6, $7
		FROM lists l WHERE l.id = $2 AND l.owner_id = $1
		RETURNING id, created_at, updated_at
	`, t.OwnerID, t.ListID, t.Title, t.Note, t.Completed, t.Important, t.DueDate)
	return insertScoped(row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt))
}

func (r *TodoRepository) GetTask(ctx context.Context, ownerID, id string) (*entity.Task, error) {
	return scanTask(r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND owner_id = $2`, id, ownerID))
}

func (r *TodoRepository) UpdateTask(ctx context.Context, t *entity.Task) error {
	t.UpdatedAt = time.Now()
	res, err := r.db.Exec(ctx, `
		UPDATE tasks SET list_id = $1, title = $2, note = $3, completed = $4, important = $5,
		       due_date = $6, updated_at = $7
		WHERE id = $8 AND owner_id = $9
		  AND EXISTS (SELECT 1 FROM lists WHERE id = $1 AND owner_id = $9)
	`, t.ListID, t.Title, t.Note, t.Completed, t.Important, t.DueDate, t.UpdatedAt, t.ID, t.OwnerID)
	return affected(res.RowsAffected(), err)
}

func (r *TodoRepository) DeleteTask(ctx context.Context, ownerID, id string) error {
	return r.deleteTree(ctx, ownerID, `SELECT id FROM tasks WHERE id = $1 AND owner_id = $2 FOR UPDATE`, id, []string{
		`DELETE FROM steps WHERE owner_id = $2 AND task_id = $1`,
		`DELETE FROM tasks WHERE owner_id = $2 AND id = $1`,
	})
}

func (r *TodoRepository) SearchTasks(ctx context.Context, ownerID, query string, limit int) ([]entity.Task, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE owner_id = $1 AND (title ILIKE $2 ESCAPE '\' OR note ILIKE $2 ESCAPE '\')
		ORDER BY updated_at DESC
		LIMIT $3
	`, ownerID, "%"+escapeLike(query)+"%", limit)
	if err != nil {
		return nil, mapError(err)
	}
	return collect(rows, scanTask)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// ---- steps ----

func (r *TodoRepository) CreateStep(ctx context.Context, s *entity.Step) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO steps (owner_id, task_id, title, completed)
		SELECT $1, t.id, $3, $4
		FROM tasks t WHERE t.id = $2 AND t.owner_id = $1
		RETURNING id, created_at, updated_at
	`, s.OwnerID, s.TaskID, s.Title, s.Completed)
	return insertScoped(row.Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt))
}

func (r *TodoRepository) GetStep(ctx context.Context, ownerID, id string) (*entity.Step, error) {
	return scanStep(r.db.QueryRow(ctx, `SELECT `+stepColumns+` FROM steps WHERE id = $1 AND owner_id = $2`, id, ownerID))
}

func (r *TodoRepository) UpdateStep(ctx context.Context, s *entity.Step) error {
	s.UpdatedAt = time.Now()
	res, err := r.db.Exec(ctx, `UPDATE steps SET title = $1, completed = $2, updated_at = $3 WHERE id = $4 AND owner_id = $5`,
		s.Title, s.Completed, s.UpdatedAt, s.ID, s.OwnerID)
	return affected(res.RowsAffected(), err)
}

func (r *TodoRepository) DeleteStep(ctx context.Context, ownerID, id string) error {
	res, err := r.db.Exec(ctx, `DELETE FROM steps WHERE id = $1 AND owner_id = $2`, id, ownerID)
	return affected(res.RowsAffected(), err)
}

// deleteTree locks the root row then runs the delete statements (leaves
// first) in one transaction. Statements take $1 = root id, $2 = owner id.
func (r *TodoRepository) deleteTree(ctx context.Context, ownerID, lockSQL, id string, stmts []string) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		var locked string
		if err := tx.QueryRow(ctx, lockSQL, id, ownerID).Scan(&locked); err != nil {
			return mapError(err)
		}
		for _, stmt := range stmts {
			if _, err := tx.Exec(ctx, stmt, id, ownerID); err != nil {
				return mapError(err)
			}
		}
		return nil
	})
}

func affected(n int64, err error) error {
	if err != nil {
		return mapError(err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.TodoRepository = (*TodoRepository)(nil)
