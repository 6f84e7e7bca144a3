package container

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/todo-organizer/config"
	"github.com/oksasatya/todo-organizer/internal/domain/entity"
	"github.com/oksasatya/todo-organizer/internal/infrastructure/memory"
)

type nopIndex struct{}

func (nopIndex) Index(context.Context, entity.Task) error                      { return nil }
func (nopIndex) Delete(context.Context, string) error                          { return nil }
func (nopIndex) DeleteByOwner(context.Context, string) error                   { return nil }
func (nopIndex) Search(context.Context, string, string, int) ([]string, error) { return nil, nil }

func testConfig() *config.Config {
	return &config.Config{JWTSecret: "s", JWTTTL: time.Hour, BcryptCost: 4, RecoveryCodeTTL: time.Minute}
}

func TestNew_WithoutOptionalDeps(t *testing.T) {
	store := memory.NewStore()
	c := New(Deps{Config: testConfig(), Users: store, Todos: store, Audit: store})

	require.NotNil(t, c.Logger)
	assert.False(t, c.Versions.Enabled())
	assert.Nil(t, c.AuthService.Index)
	assert.Nil(t, c.TodoService.Index)
	assert.Equal(t, 4, c.Hasher.Cost)
}

func TestNew_SharesIndex(t *testing.T) {
	store := memory.NewStore()
	c := New(Deps{Config: testConfig(), Users: store, Todos: store, Audit: store, Index: nopIndex{}})

	assert.Equal(t, nopIndex{}, c.AuthService.Index)
	assert.Equal(t, nopIndex{}, c.TodoService.Index)
}
