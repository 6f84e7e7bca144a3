package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/todo-organizer/config"
	"github.com/oksasatya/todo-organizer/internal/domain/entity"
	"github.com/oksasatya/todo-organizer/internal/infrastructure/memory"
	"github.com/oksasatya/todo-organizer/pkg/helpers"
	"github.com/oksasatya/todo-organizer/pkg/mailer"
)

// --- Mail ---

// recordingSender keeps every job it is asked to send.
type recordingSender struct {
	mu   sync.Mutex
	jobs []mailer.EmailJob
	err  error
}

func (s *recordingSender) Send(_ context.Context, job mailer.EmailJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
	return s.err
}

func (s *recordingSender) Jobs() []mailer.EmailJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mailer.EmailJob(nil), s.jobs...)
}

// --- Users with failure injection ---

// flakyUsers wraps the memory store; set deleteCascadeFn to fail deletes and
// beforeConfirm to run something just before a confirmation is written.
type flakyUsers struct {
	*memory.Store
	deleteCascadeFn func(ctx context.Context, id string) error
	beforeConfirm   func()
}

func (f *flakyUsers) ConfirmByToken(ctx context.Context, token string) (*entity.User, error) {
	if f.beforeConfirm != nil {
		f.beforeConfirm()
	}
	return f.Store.ConfirmByToken(ctx, token)
}

func (f *flakyUsers) DeleteCascade(ctx context.Context, id string) error {
	if f.deleteCascadeFn != nil {
		return f.deleteCascadeFn(ctx, id)
	}
	return f.Store.DeleteCascade(ctx, id)
}

// --- Search index ---

type fakeIndex struct {
	mu              sync.Mutex
	indexed         map[string]entity.Task
	deletedOwners   []string
	searchFn        func(ctx context.Context, ownerID, q string, size int) ([]string, error)
	deleteByOwnerFn func(ctx context.Context, ownerID string) error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{indexed: map[string]entity.Task{}}
}

func (f *fakeIndex) Index(_ context.Context, t entity.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed[t.ID] = t
	return nil
}

func (f *fakeIndex) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.indexed, id)
	return nil
}

func (f *fakeIndex) DeleteByOwner(ctx context.Context, ownerID string) error {
	f.mu.Lock()
	f.deletedOwners = append(f.deletedOwners, ownerID)
	f.mu.Unlock()
	if f.deleteByOwnerFn != nil {
		return f.deleteByOwnerFn(ctx, ownerID)
	}
	return nil
}

func (f *fakeIndex) Search(ctx context.Context, ownerID, q string, size int) ([]string, error) {
	if f.searchFn != nil {
		return f.searchFn(ctx, ownerID, q, size)
	}
	return nil, nil
}

// --- Service wiring ---

type authFixture struct {
	svc    *AuthService
	store  *memory.Store
	users  *flakyUsers
	sender *recordingSender
	redis  *miniredis.Miniredis
	jwt    *helpers.JWTManager
}

func testConfig() *config.Config {
	return &config.Config{
		AppName:     "Organizer",
		CompanyName: "Organizer",
		BaseURL:     "http://localhost:5000",
	}
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := memory.NewStore()
	users := &flakyUsers{Store: store}
	sender := &recordingSender{}
	logger := helpers.NewDiscardLogger()
	notifier := NewNotifier(testConfig(), sender, logger)
	notifier.Dispatch = func(f func()) { f() }
	jwt := helpers.NewJWTManager("test-secret", time.Hour)

	svc := NewAuthService(users, store, helpers.NewPasswordHasher(bcrypt.MinCost), jwt,
		helpers.NewTokenVersions(rdb), notifier, logger, 15*time.Minute)
	return &authFixture{svc: svc, store: store, users: users, sender: sender, redis: mr, jwt: jwt}
}

func (f *authFixture) register(t *testing.T, email, password string) *Session {
	t.Helper()
	sess, err := f.svc.Register(context.Background(), RegisterInput{
		Email: email, Password: password, Username: "alice", Timezone: "UTC",
	}, RequestMeta{})
	require.NoError(t, err)
	return sess
}

// confirm clears the pending confirmation the way the emailed link would.
func (f *authFixture) confirm(t *testing.T, userID string) {
	t.Helper()
	u, err := f.store.GetByID(context.Background(), userID)
	require.NoError(t, err)
	require.NoError(t, f.svc.ConfirmEmail(context.Background(), u.ConfirmationToken(), RequestMeta{}))
}
