package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/todo-organizer/config"
)

func TestRenderConfirmEmail(t *testing.T) {
	cfg := &config.Config{AppName: "Organizer"}
	data := NewConfirmEmailData(cfg, "alice", "a@b.com", "http://localhost:5000/api/confirmEmail/tok")

	subject, text, html, err := Render(ConfirmEmail, data)
	require.NoError(t, err)

	assert.Equal(t, "Confirm your email for Organizer", subject)
	assert.Contains(t, text, "Hi alice,")
	assert.Contains(t, text, "http://localhost:5000/api/confirmEmail/tok")
	assert.Contains(t, html, `href="http://localhost:5000/api/confirmEmail/tok"`)
}

func TestRenderRecoveryCode_LocalizesExpiry(t *testing.T) {
	cfg := &config.Config{}
	exp := time.Date(2026, 1, 2, 8, 15, 0, 0, time.UTC)
	data := NewRecoveryCodeData(cfg, "", "a@b.com", "042042", WithTimezone("UTC"), WithExpiresAt(exp))

	subject, text, html, err := Render(RecoveryCode, data)
	require.NoError(t, err)

	assert.Equal(t, "Your password recovery code", subject)
	assert.Contains(t, text, "Hi there,")
	assert.Contains(t, text, "042042")
	assert.Contains(t, text, "02 January 2026, 08:15 UTC")
	assert.Contains(t, html, "<b>042042</b>")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, _, _, err := Render("missing", map[string]any{})
	assert.Error(t, err)
}

func TestDefaultFn(t *testing.T) {
	assert.Equal(t, "x", defaultFn("x", ""))
	assert.Equal(t, "x", defaultFn("x", nil))
	assert.Equal(t, "x", defaultFn("x", "   "))
	assert.Equal(t, 0, defaultFn("x", 0))
	assert.Equal(t, "v", defaultFn("x", "v"))
	assert.Equal(t, 3, defaultFn("x", 3))
}
