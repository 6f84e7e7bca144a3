package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/todo-organizer/internal/domain/entity"
	repo "github.com/oksasatya/todo-organizer/internal/domain/repository"
	"github.com/oksasatya/todo-organizer/pkg/helpers"
)

const searchLimit = 50

// TodoService manages the group/list/task/step hierarchy of one owner at a
// time. Rows of other owners are reported as ErrNotFound.
type TodoService struct {
	Repo   repo.TodoRepository
	Index  TaskIndex
	Logger *logrus.Logger
}

func NewTodoService(r repo.TodoRepository, logger *logrus.Logger) *TodoService {
	return &TodoService{Repo: r, Logger: logger}
}

func mapRepoErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repo.ErrOwnerMissing):
		return ErrParentNotFound
	default:
		return err
	}
}

// parentErr turns a missing parent lookup into ErrParentNotFound.
func parentErr(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrParentNotFound
	}
	return err
}

func (s *TodoService) Snapshot(ctx context.Context, ownerID string) (*entity.Snapshot, error) {
	snap, err := s.Repo.Snapshot(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return snap, nil
}

// ---- groups ----

func (s *TodoService) CreateGroup(ctx context.Context, ownerID, title string) (*entity.Group, error) {
	g := &entity.Group{OwnerID: ownerID, Title: title}
	if err := s.Repo.CreateGroup(ctx, g); err != nil {
		if errors.Is(err, repo.ErrOwnerMissing) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return g, nil
}

func (s *TodoService) UpdateGroup(ctx context.Context, ownerID, id, title string) (*entity.Group, error) {
	g, err := s.Repo.GetGroup(ctx, ownerID, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	g.Title = title
	if err := s.Repo.UpdateGroup(ctx, g); err != nil {
		return nil, mapRepoErr(err)
	}
	return g, nil
}

func (s *TodoService) DeleteGroup(ctx context.Context, ownerID, id string) error {
	stale := s.tasksUnder(ctx, ownerID, func(snap *entity.Snapshot) map[string]bool {
		lists := map[string]bool{}
		for _, l := range snap.Lists {
			if l.GroupID != nil && *l.GroupID == id {
				lists[l.ID] = true
			}
		}
		return lists
	})
	if err := s.Repo.DeleteGroup(ctx, ownerID, id); err != nil {
		return mapRepoErr(err)
	}
	s.unindex(ctx, stale...)
	return nil
}

// ---- lists ----

type ListInput struct {
	Title   string
	GroupID *string
}

func (s *TodoService) checkGroup(ctx context.Context, ownerID string, groupID *string) error {
	if groupID == nil {
		return nil
	}
	_, err := s.Repo.GetGroup(ctx, ownerID, *groupID)
	return parentErr(err)
}

func (s *TodoService) CreateList(ctx context.Context, ownerID string, in ListInput) (*entity.List, error) {
	if err := s.checkGroup(ctx, ownerID, in.GroupID); err != nil {
		return nil, err
	}
	l := &entity.List{OwnerID: ownerID, GroupID: in.GroupID, Title: in.Title}
	if err := s.Repo.CreateList(ctx, l); err != nil {
		return nil, mapRepoErr(err)
	}
	return l, nil
}

func (s *TodoService) UpdateList(ctx context.Context, ownerID, id string, in ListInput) (*entity.List, error) {
	l, err := s.Repo.GetList(ctx, ownerID, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if err := s.checkGroup(ctx, ownerID, in.GroupID); err != nil {
		return nil, err
	}
	l.Title = in.Title
	l.GroupID = in.GroupID
	if err := s.Repo.UpdateList(ctx, l); err != nil {
		return nil, mapRepoErr(err)
	}
	return l, nil
}

func (s *TodoService) DeleteList(ctx context.Context, ownerID, id string) error {
	stale := s.tasksUnder(ctx, ownerID, func(*entity.Snapshot) map[string]bool {
		return map[string]bool{id: true}
	})
	if err := s.Repo.DeleteList(ctx, ownerID, id); err != nil {
		return mapRepoErr(err)
	}
	s.unindex(ctx, stale...)
	return nil
}

// ---- tasks ----

type TaskInput struct {
	Title     string
	ListID    string
	Note      string
	Completed bool
	Important bool
	DueDate   *time.Time
}

func (s *TodoService) CreateTask(ctx context.Context, ownerID string, in TaskInput) (*entity.Task, error) {
	if _, err := s.Repo.GetList(ctx, ownerID, in.ListID); err != nil {
		return nil, parentErr(err)
	}
	t := &entity.Task{
		OwnerID:   ownerID,
		ListID:    in.ListID,
		Title:     in.Title,
		Note:      in.Note,
		Completed: in.Completed,
		Important: in.Important,
		DueDate:   in.DueDate,
	}
	if err := s.Repo.CreateTask(ctx, t); err != nil {
		return nil, mapRepoErr(err)
	}
	s.index(ctx, *t)
	return t, nil
}

// UpdateTask replaces the task fields; an empty ListID keeps the current list.
func (s *TodoService) UpdateTask(ctx context.Context, ownerID, id string, in TaskInput) (*entity.Task, error) {
	t, err := s.Repo.GetTask(ctx, ownerID, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if in.ListID != "" && in.ListID != t.ListID {
		if _, err := s.Repo.GetList(ctx, ownerID, in.ListID); err != nil {
			return nil, parentErr(err)
		}
		t.ListID = in.ListID
	}
	t.Title = in.Title
	t.Note = in.Note
	t.Completed = in.Completed
	t.Important = in.Important
	t.DueDate = in.DueDate
	if err := s.Repo.UpdateTask(ctx, t); err != nil {
		return nil, mapRepoErr(err)
	}
	s.index(ctx, *t)
	return t, nil
}

func (s *TodoService) DeleteTask(ctx context.Context, ownerID, id string) error {
	if err := s.Repo.DeleteTask(ctx, ownerID, id); err != nil {
		return mapRepoErr(err)
	}
	s.unindex(ctx, id)
	return nil
}

// SearchTasks uses the search index when configured and falls back to the
// repository when the index is absent or failing.
func (s *TodoService) SearchTasks(ctx context.Context, ownerID, q string) ([]entity.Task, error) {
	if s.Index != nil {
		ids, err := s.Index.Search(ctx, ownerID, q, searchLimit)
		if err == nil {
			out := make([]entity.Task, 0, len(ids))
			for _, id := range ids {
				t, err := s.Repo.GetTask(ctx, ownerID, id)
				if errors.Is(err, repo.ErrNotFound) {
					continue
				}
				if err != nil {
					return nil, err
				}
				out = append(out, *t)
			}
			return out, nil
		}
		s.Logger.WithError(err).Warn("search index query failed, using database")
	}
	tasks, err := s.Repo.SearchTasks(ctx, ownerID, q, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("search tasks: %w", err)
	}
	return tasks, nil
}

// ---- steps ----

type StepInput struct {
	Title     string
	TaskID    string
	Completed bool
}

func (s *TodoService) CreateStep(ctx context.Context, ownerID string, in StepInput) (*entity.Step, error) {
	if _, err := s.Repo.GetTask(ctx, ownerID, in.TaskID); err != nil {
		return nil, parentErr(err)
	}
	st := &entity.Step{OwnerID: ownerID, TaskID: in.TaskID, Title: in.Title, Completed: in.Completed}
	if err := s.Repo.CreateStep(ctx, st); err != nil {
		return nil, mapRepoErr(err)
	}
	return st, nil
}

func (s *TodoService) UpdateStep(ctx context.Context, ownerID, id string, in StepInput) (*entity.Step, error) {
	st, err := s.Repo.GetStep(ctx, ownerID, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	st.Title = in.Title
	st.Completed = in.Completed
	if err := s.Repo.UpdateStep(ctx, st); err != nil {
		return nil, mapRepoErr(err)
	}
	return st, nil
}

func (s *TodoService) DeleteStep(ctx context.Context, ownerID, id string) error {
	return mapRepoErr(s.Repo.DeleteStep(ctx, ownerID, id))
}

// ---- search index upkeep ----

// tasksUnder lists ids of tasks whose list is selected by pick. Only used
// for index cleanup, so it returns nothing when no index is configured.
func (s *TodoService) tasksUnder(ctx context.Context, ownerID string, pick func(*entity.Snapshot) map[string]bool) []string {
	if s.Index == nil {
		return nil
	}
	snap, err := s.Repo.Snapshot(ctx, ownerID)
	if err != nil {
		s.Logger.WithError(err).Warn("load snapshot for index cleanup failed")
		return nil
	}
	lists := pick(snap)
	var ids []string
	for _, t := range snap.Tasks {
		if lists[t.ListID] {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

func (s *TodoService) index(ctx context.Context, t entity.Task) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, t); err != nil {
		helpers.LogError(s.Logger, "index task failed", err, logrus.Fields{"task_id": t.ID})
	}
}

func (s *TodoService) unindex(ctx context.Context, ids ...string) {
	if s.Index == nil {
		return
	}
	for _, id := range ids {
		if err := s.Index.Delete(ctx, id); err != nil {
			helpers.LogError(s.Logger, "remove task from index failed", err, logrus.Fields{"task_id": id})
		}
	}
}
