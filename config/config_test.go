package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_TTL", "")
	t.Setenv("BASE_URL", "")

	cfg := Load()

	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, "http://localhost:5000", cfg.BaseURL)
	assert.Equal(t, "postgres", cfg.StorageDriver)
	assert.Empty(t, cfg.ESAddrs())
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("JWT_TTL", "two hours")
	t.Setenv("BCRYPT_COST", "strong")
	t.Setenv("MAIL_SEND_ENABLED", "maybe")

	cfg := Load()

	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.True(t, cfg.MailSendEnabled)
}

func TestConfirmEmailURL_TrimsTrailingSlash(t *testing.T) {
	t.Setenv("BASE_URL", "https://todo.example.com/")

	cfg := Load()

	assert.Equal(t, "https://todo.example.com/api/confirmEmail/abc", cfg.ConfirmEmailURL("abc"))
}

func TestSplitLists(t *testing.T) {
	cfg := &Config{CORSAllowedOrigins: " http://a.test , ,http://b.test", ElasticsearchAddrs: "http://es:9200"}

	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins())
	assert.Equal(t, []string{"http://es:9200"}, cfg.ESAddrs())
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "5432", DBName: "d", DBSSLMode: "disable"}

	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", cfg.PostgresDSN())
}

func TestMailgunConfigured(t *testing.T) {
	cfg := &Config{MailgunDomain: "mg.example.com", MailgunAPIKey: "key"}
	assert.False(t, cfg.MailgunConfigured())

	cfg.MailgunSender = "Organizer <no-reply@example.com>"
	assert.True(t, cfg.MailgunConfigured())
}
