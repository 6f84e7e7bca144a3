// Package memory is a process-local implementation of the repositories,
// used with STORAGE_DRIVER=memory and by tests. All state is lost on exit.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/todo-organizer/internal/domain/entity"
	"github.com/oksasatya/todo-organizer/internal/domain/repository"
)

// Store keeps users, the todo hierarchy and audit entries behind one lock,
// so cascades are atomic with respect to other callers.
type Store struct {
	mu     sync.RWMutex
	now    func() time.Time
	users  map[string]entity.User
	groups map[string]entity.Group
	lists  map[string]entity.List
	tasks  map[string]entity.Task
	steps  map[string]entity.Step
	audit  []entity.AuditEntry
}

func NewStore() *Store {
	return &Store{
		now:    time.Now,
		users:  map[string]entity.User{},
		groups: map[string]entity.Group{},
		lists:  map[string]entity.List{},
		tasks:  map[string]entity.Task{},
		steps:  map[string]entity.Step{},
	}
}

var (
	_ repository.UserRepository  = (*Store)(nil)
	_ repository.TodoRepository  = (*Store)(nil)
	_ repository.AuditRepository = (*Store)(nil)
)

// ---- users ----

func (s *Store) Create(_ context.Context, u *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrDuplicateEmail
		}
	}
	now := s.now()
	u.ID = uuid.NewString()
	u.CreatedAt, u.UpdatedAt = now, now
	s.users[u.ID] = *u
	return nil
}

func (s *Store) GetByID(_ context.Context, id string) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) ConfirmByToken(_ context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, repository.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, u := range s.users {
		if u.Confirmation.IsPending() && u.Confirmation.Token() == token {
			u.Confirm()
			u.UpdatedAt = s.now()
			s.users[id] = u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) SetRecoveryCode(_ context.Context, id, code string, exp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.SetRecoveryCode(code, exp)
	u.UpdatedAt = s.now()
	s.users[id] = u
	return nil
}

func (s *Store) TakeRecoveryAttempt(_ context.Context, email string, maxAttempts int) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, u := range s.users {
		if !strings.EqualFold(u.Email, email) {
			continue
		}
		if u.RecoveryCode == nil || u.RecoveryAttempts >= maxAttempts {
			return nil, repository.ErrNotFound
		}
		u.RecoveryAttempts++
		s.users[id] = u
		return &u, nil
	}
	return nil, repository.ErrNotFound
}

func (s *Store) ResetPassword(_ context.Context, id, code, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.RecoveryCode == nil || *u.RecoveryCode != code {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	u.ClearRecoveryCode()
	u.UpdatedAt = s.now()
	s.users[id] = u
	return nil
}

func (s *Store) ClearRecoveryCode(_ context.Context, id, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.RecoveryCode == nil || *u.RecoveryCode != code {
		return repository.ErrNotFound
	}
	u.ClearRecoveryCode()
	u.UpdatedAt = s.now()
	s.users[id] = u
	return nil
}

func (s *Store) DeleteCascade(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return repository.ErrNotFound
	}
	for k, v := range s.steps {
		if v.OwnerID == id {
			delete(s.steps, k)
		}
	}
	for k, v := range s.tasks {
		if v.OwnerID == id {
			delete(s.tasks, k)
		}
	}
	for k, v := range s.lists {
		if v.OwnerID == id {
			delete(s.lists, k)
		}
	}
	for k, v := range s.groups {
		if v.OwnerID == id {
			delete(s.groups, k)
		}
	}
	delete(s.users, id)
	return nil
}

// ---- audit ----

func (s *Store) Insert(_ context.Context, e entity.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	s.audit = append(s.audit, e)
	return nil
}

// AuditEntries returns a copy of the recorded entries in insertion order.
func (s *Store) AuditEntries() []entity.AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entity.AuditEntry(nil), s.audit...)
}

// ---- todo hierarchy ----

func (s *Store) Snapshot(_ context.Context, ownerID string) (*entity.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := entity.NewSnapshot()
	for _, g := range s.groups {
		if g.OwnerID == ownerID {
			snap.Groups = append(snap.Groups, g)
		}
	}
	for _, l := range s.lists {
		if l.OwnerID == ownerID {
			snap.Lists = append(snap.Lists, l)
		}
	}
	for _, t := range s.tasks {
		if t.OwnerID == ownerID {
			snap.Tasks = append(snap.Tasks, t)
		}
	}
	for _, st := range s.steps {
		if st.OwnerID == ownerID {
			snap.Steps = append(snap.Steps, st)
		}
	}
	sortByCreated(snap.Groups, func(g entity.Group) (time.Time, string) { return g.CreatedAt, g.ID })
	sortByCreated(snap.Lists, func(l entity.List) (time.Time, string) { return l.CreatedAt, l.ID })
	sortByCreated(snap.Tasks, func(t entity.Task) (time.Time, string) { return t.CreatedAt, t.ID })
	sortByCreated(snap.Steps, func(st entity.Step) (time.Time, string) { return st.CreatedAt, st.ID })
	return snap, nil
}

func sortByCreated[T any](items []T, key func(T) (time.Time, string)) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, idi := key(items[i])
		tj, idj := key(items[j])
		if ti.Equal(tj) {
			return idi < idj
		}
		return ti.Before(tj)
	})
}

// ownerExists must be called with the lock held.
func (s *Store) ownerExists(id string) bool {
	_, ok := s.users[id]
	return ok
}

func (s *Store) CreateGroup(_ context.Context, g *entity.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ownerExists(g.OwnerID) {
		return repository.ErrOwnerMissing
	}
	now := s.now()
	g.ID = uuid.NewString()
	g.CreatedAt, g.UpdatedAt = now, now
	s.groups[g.ID] = *g
	return nil
}

func (s *Store) GetGroup(_ context.Context, ownerID, id string) (*entity.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[id]
	if !ok || g.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	return &g, nil
}

func (s *Store) UpdateGroup(_ context.Context, g *entity.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.groups[g.ID]
	if !ok || cur.OwnerID != g.OwnerID {
		return repository.ErrNotFound
	}
	g.CreatedAt = cur.CreatedAt
	g.UpdatedAt = s.now()
	s.groups[g.ID] = *g
	return nil
}

func (s *Store) DeleteGroup(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[id]
	if !ok || g.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	for lid, l := range s.lists {
		if l.GroupID != nil && *l.GroupID == id {
			s.deleteListLocked(lid)
		}
	}
	delete(s.groups, id)
	return nil
}

func (s *Store) groupOwned(ownerID string, id *string) bool {
	if id == nil {
		return true
	}
	g, ok := s.groups[*id]
	return ok && g.OwnerID == ownerID
}

func (s *Store) CreateList(_ context.Context, l *entity.List) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ownerExists(l.OwnerID) || !s.groupOwned(l.OwnerID, l.GroupID) {
		return repository.ErrOwnerMissing
	}
	now := s.now()
	l.ID = uuid.NewString()
	l.CreatedAt, l.UpdatedAt = now, now
	s.lists[l.ID] = *l
	return nil
}

func (s *Store) GetList(_ context.Context, ownerID, id string) (*entity.List, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.lists[id]
	if !ok || l.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	return &l, nil
}

func (s *Store) UpdateList(_ context.Context, l *entity.List) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.lists[l.ID]
	if !ok || cur.OwnerID != l.OwnerID || !s.groupOwned(l.OwnerID, l.GroupID) {
		return repository.ErrNotFound
	}
	l.CreatedAt = cur.CreatedAt
	l.UpdatedAt = s.now()
	s.lists[l.ID] = *l
	return nil
}

func (s *Store) DeleteList(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lists[id]
	if !ok || l.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	s.deleteListLocked(id)
	return nil
}

func (s *Store) deleteListLocked(id string) {
	for tid, t := range s.tasks {
		if t.ListID == id {
			s.deleteTaskLocked(tid)
		}
	}
	delete(s.lists, id)
}

func (s *Store) CreateTask(_ context.Context, t *entity.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lists[t.ListID]
	if !ok || l.OwnerID != t.OwnerID {
		return repository.ErrOwnerMissing
	}
	now := s.now()
	t.ID = uuid.NewString()
	t.CreatedAt, t.UpdatedAt = now, now
	s.tasks[t.ID] = *t
	return nil
}

func (s *Store) GetTask(_ context.Context, ownerID, id string) (*entity.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (s *Store) UpdateTask(_ context.Context, t *entity.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.tasks[t.ID]
	if !ok || cur.OwnerID != t.OwnerID {
		return repository.ErrNotFound
	}
	if l, ok := s.lists[t.ListID]; !ok || l.OwnerID != t.OwnerID {
		return repository.ErrNotFound
	}
	t.CreatedAt = cur.CreatedAt
	t.UpdatedAt = s.now()
	s.tasks[t.ID] = *t
	return nil
}

func (s *Store) DeleteTask(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	s.deleteTaskLocked(id)
	return nil
}

func (s *Store) deleteTaskLocked(id string) {
	for sid, st := range s.steps {
		if st.TaskID == id {
			delete(s.steps, sid)
		}
	}
	delete(s.tasks, id)
}

func (s *Store) SearchTasks(_ context.Context, ownerID, query string, limit int) ([]entity.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q := strings.ToLower(query)
	out := make([]entity.Task, 0)
	for _, t := range s.tasks {
		if t.OwnerID != ownerID {
			continue
		}
		if strings.Contains(strings.ToLower(t.Title), q) || strings.Contains(strings.ToLower(t.Note), q) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) CreateStep(_ context.Context, st *entity.Step) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[st.TaskID]
	if !ok || t.OwnerID != st.OwnerID {
		return repository.ErrOwnerMissing
	}
	now := s.now()
	st.ID = uuid.NewString()
	st.CreatedAt, st.UpdatedAt = now, now
	s.steps[st.ID] = *st
	return nil
}

func (s *Store) GetStep(_ context.Context, ownerID, id string) (*entity.Step, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.steps[id]
	if !ok || st.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	return &st, nil
}

func (s *Store) UpdateStep(_ context.Context, st *entity.Step) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.steps[st.ID]
	if !ok || cur.OwnerID != st.OwnerID {
		return repository.ErrNotFound
	}
	st.TaskID = cur.TaskID
	st.CreatedAt = cur.CreatedAt
	st.UpdatedAt = s.now()
	s.steps[st.ID] = *st
	return nil
}

func (s *Store) DeleteStep(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.steps[id]
	if !ok || st.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(s.steps, id)
	return nil
}
