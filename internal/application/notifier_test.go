package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/todo-organizer/internal/domain/entity"
	"github.com/oksasatya/todo-organizer/pkg/helpers"
	"github.com/oksasatya/todo-organizer/pkg/mailer/templates"
)

func TestNotifier_SendsInBackground(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(testConfig(), sender, helpers.NewDiscardLogger())
	u := &entity.User{ID: "u1", Email: "a@b.com", Username: "alice", Confirmation: entity.PendingConfirmation("tok")}

	n.SendConfirmation(u)

	assert.Eventually(t, func() bool { return len(sender.Jobs()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, "http://localhost:5000/api/confirmEmail/tok", sender.Jobs()[0].Data["VerifyURL"])
}

func TestNotifier_SkipsConfirmedUsers(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(testConfig(), sender, helpers.NewDiscardLogger())
	n.Dispatch = func(f func()) { f() }

	n.SendConfirmation(&entity.User{ID: "u1", Email: "a@b.com"})

	assert.Empty(t, sender.Jobs())
}

func TestNotifier_RecoveryCodeInUserTimezone(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(testConfig(), sender, helpers.NewDiscardLogger())
	n.Dispatch = func(f func()) { f() }
	u := &entity.User{ID: "u1", Email: "a@b.com", Username: "alice", Timezone: "Asia/Tokyo"}
	exp := time.Date(2024, 1, 1, 0, 15, 0, 0, time.UTC)

	n.SendRecoveryCode(u, "123456", exp)

	jobs := sender.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, templates.RecoveryCode, jobs[0].Template)
	assert.Equal(t, "123456", jobs[0].Data["Code"])
	assert.Equal(t, helpers.FormatInZone(exp, "Asia/Tokyo"), jobs[0].Data["ExpiresAtText"])
}
