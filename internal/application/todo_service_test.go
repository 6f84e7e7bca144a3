package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/todo-organizer/internal/domain/entity"
	"github.com/oksasatya/todo-organizer/internal/infrastructure/memory"
	"github.com/oksasatya/todo-organizer/pkg/helpers"
)

func newTodoFixture(t *testing.T) (*TodoService, *memory.Store, string, string) {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()
	alice := &entity.User{Email: "alice@example.com"}
	bob := &entity.User{Email: "bob@example.com"}
	require.NoError(t, store.Create(ctx, alice))
	require.NoError(t, store.Create(ctx, bob))
	return NewTodoService(store, helpers.NewDiscardLogger()), store, alice.ID, bob.ID
}

func TestTodo_CreateHierarchyAndSnapshot(t *testing.T) {
	svc, _, alice, _ := newTodoFixture(t)
	ctx := context.Background()

	g, err := svc.CreateGroup(ctx, alice, "Home")
	require.NoError(t, err)
	l, err := svc.CreateList(ctx, alice, ListInput{Title: "Chores", GroupID: &g.ID})
	require.NoError(t, err)
	loose, err := svc.CreateList(ctx, alice, ListInput{Title: "Inbox"})
	require.NoError(t, err)
	due := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	tk, err := svc.CreateTask(ctx, alice, TaskInput{Title: "Vacuum", ListID: l.ID, Important: true, DueDate: &due})
	require.NoError(t, err)
	_, err = svc.CreateStep(ctx, alice, StepInput{Title: "Empty bag", TaskID: tk.ID})
	require.NoError(t, err)

	snap, err := svc.Snapshot(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, snap.Groups, 1)
	assert.Len(t, snap.Lists, 2)
	assert.Len(t, snap.Tasks, 1)
	assert.Len(t, snap.Steps, 1)
	assert.Nil(t, loose.GroupID)
	assert.True(t, snap.Tasks[0].Important)
	assert.True(t, snap.Tasks[0].DueDate.Equal(due))
}

func TestTodo_ParentMustBeOwned(t *testing.T) {
	svc, _, alice, bob := newTodoFixture(t)
	ctx := context.Background()
	g, err := svc.CreateGroup(ctx, alice, "Home")
	require.NoError(t, err)
	l, err := svc.CreateList(ctx, alice, ListInput{Title: "Chores"})
	require.NoError(t, err)
	tk, err := svc.CreateTask(ctx, alice, TaskInput{Title: "Vacuum", ListID: l.ID})
	require.NoError(t, err)

	_, err = svc.CreateList(ctx, bob, ListInput{Title: "x", GroupID: &g.ID})
	assert.ErrorIs(t, err, ErrParentNotFound)
	_, err = svc.CreateTask(ctx, bob, TaskInput{Title: "x", ListID: l.ID})
	assert.ErrorIs(t, err, ErrParentNotFound)
	_, err = svc.CreateStep(ctx, bob, StepInput{Title: "x", TaskID: tk.ID})
	assert.ErrorIs(t, err, ErrParentNotFound)
	_, err = svc.CreateTask(ctx, alice, TaskInput{Title: "x", ListID: "missing"})
	assert.ErrorIs(t, err, ErrParentNotFound)
}

func TestTodo_OtherOwnersRowsAreNotFound(t *testing.T) {
	svc, _, alice, bob := newTodoFixture(t)
	ctx := context.Background()
	g, err := svc.CreateGroup(ctx, alice, "Home")
	require.NoError(t, err)

	_, err = svc.UpdateGroup(ctx, bob, g.ID, "Mine now")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeleteGroup(ctx, bob, g.ID), ErrNotFound)

	snap, err := svc.Snapshot(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, snap.Groups)
}

func TestTodo_Updates(t *testing.T) {
	svc, _, alice, _ := newTodoFixture(t)
	ctx := context.Background()
	g, err := svc.CreateGroup(ctx, alice, "Home")
	require.NoError(t, err)
	l1, err := svc.CreateList(ctx, alice, ListInput{Title: "One"})
	require.NoError(t, err)
	l2, err := svc.CreateList(ctx, alice, ListInput{Title: "Two"})
	require.NoError(t, err)
	tk, err := svc.CreateTask(ctx, alice, TaskInput{Title: "Task", ListID: l1.ID})
	require.NoError(t, err)
	st, err := svc.CreateStep(ctx, alice, StepInput{Title: "Step", TaskID: tk.ID})
	require.NoError(t, err)

	g, err = svc.UpdateGroup(ctx, alice, g.ID, "House")
	require.NoError(t, err)
	assert.Equal(t, "House", g.Title)

	l1, err = svc.UpdateList(ctx, alice, l1.ID, ListInput{Title: "One", GroupID: &g.ID})
	require.NoError(t, err)
	require.NotNil(t, l1.GroupID)
	assert.Equal(t, g.ID, *l1.GroupID)

	bad := "missing"
	_, err = svc.UpdateList(ctx, alice, l1.ID, ListInput{Title: "One", GroupID: &bad})
	assert.ErrorIs(t, err, ErrParentNotFound)

	tk, err = svc.UpdateTask(ctx, alice, tk.ID, TaskInput{Title: "Moved", ListID: l2.ID, Completed: true, Note: "n"})
	require.NoError(t, err)
	assert.Equal(t, l2.ID, tk.ListID)
	assert.True(t, tk.Completed)

	tk, err = svc.UpdateTask(ctx, alice, tk.ID, TaskInput{Title: "Kept"})
	require.NoError(t, err)
	assert.Equal(t, l2.ID, tk.ListID, "empty list id keeps the current list")

	st, err = svc.UpdateStep(ctx, alice, st.ID, StepInput{Title: "Done", Completed: true})
	require.NoError(t, err)
	assert.True(t, st.Completed)
	assert.Equal(t, tk.ID, st.TaskID)
}

func TestTodo_DeletesCascade(t *testing.T) {
	svc, _, alice, _ := newTodoFixture(t)
	ctx := context.Background()
	idx := newFakeIndex()
	svc.Index = idx

	g, err := svc.CreateGroup(ctx, alice, "Home")
	require.NoError(t, err)
	l, err := svc.CreateList(ctx, alice, ListInput{Title: "Chores", GroupID: &g.ID})
	require.NoError(t, err)
	tk, err := svc.CreateTask(ctx, alice, TaskInput{Title: "Vacuum", ListID: l.ID})
	require.NoError(t, err)
	_, err = svc.CreateStep(ctx, alice, StepInput{Title: "Empty bag", TaskID: tk.ID})
	require.NoError(t, err)
	assert.Contains(t, idx.indexed, tk.ID)

	require.NoError(t, svc.DeleteGroup(ctx, alice, g.ID))

	snap, err := svc.Snapshot(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, snap.Groups)
	assert.Empty(t, snap.Lists, "lists of a deleted group are deleted")
	assert.Empty(t, snap.Tasks)
	assert.Empty(t, snap.Steps)
	assert.NotContains(t, idx.indexed, tk.ID)

	assert.ErrorIs(t, svc.DeleteStep(ctx, alice, "missing"), ErrNotFound)
}

func TestTodo_SearchUsesIndexThenFallsBack(t *testing.T) {
	svc, _, alice, bob := newTodoFixture(t)
	ctx := context.Background()
	l, err := svc.CreateList(ctx, alice, ListInput{Title: "Inbox"})
	require.NoError(t, err)
	milk, err := svc.CreateTask(ctx, alice, TaskInput{Title: "Buy milk", ListID: l.ID})
	require.NoError(t, err)
	bl, err := svc.CreateList(ctx, bob, ListInput{Title: "Inbox"})
	require.NoError(t, err)
	bobs, err := svc.CreateTask(ctx, bob, TaskInput{Title: "Buy milk too", ListID: bl.ID})
	require.NoError(t, err)

	got, err := svc.SearchTasks(ctx, alice, "milk")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, milk.ID, got[0].ID)

	idx := newFakeIndex()
	idx.searchFn = func(context.Context, string, string, int) ([]string, error) {
		return []string{bobs.ID, "stale", milk.ID}, nil
	}
	svc.Index = idx
	got, err = svc.SearchTasks(ctx, alice, "milk")
	require.NoError(t, err)
	require.Len(t, got, 1, "foreign and stale hits are dropped")
	assert.Equal(t, milk.ID, got[0].ID)

	idx.searchFn = func(context.Context, string, string, int) ([]string, error) {
		return nil, errors.New("cluster down")
	}
	got, err = svc.SearchTasks(ctx, alice, "milk")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestTodo_CreateGroupForDeletedUser(t *testing.T) {
	svc, store, alice, _ := newTodoFixture(t)
	ctx := context.Background()
	require.NoError(t, store.DeleteCascade(ctx, alice))

	_, err := svc.CreateGroup(ctx, alice, "Home")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
