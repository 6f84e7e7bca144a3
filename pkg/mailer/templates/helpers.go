package templates

import (
	"time"

	"github.com/oksasatya/todo-organizer/config"
	"github.com/oksasatya/todo-organizer/pkg/helpers"
)

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option      { return func(d *EmailData) { d.TimeAt = t.UTC() } }
func WithVerifyURL(url string) Option  { return func(d *EmailData) { d.VerifyURL = url } }
func WithCode(code string) Option      { return func(d *EmailData) { d.Code = code } }
func WithTimezone(tz string) Option    { return func(d *EmailData) { d.Timezone = tz } }
func WithExpiresAt(t time.Time) Option { return func(d *EmailData) { d.ExpiresAt = t.UTC() } }

// NewBaseEmailData fills common fields from config, applies options, then
// renders the time fields in the recipient's timezone.
func NewBaseEmailData(cfg *config.Config, typ string, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		Email:          email,
		RecipientEmail: email,
		Type:           typ,

		CompanyName: cfg.CompanyName,
		AppName:     cfg.AppName,
		SupportURL:  cfg.SupportURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	if !d.TimeAt.IsZero() {
		d.Time = helpers.FormatInZone(d.TimeAt, d.Timezone)
	}
	if !d.ExpiresAt.IsZero() {
		d.ExpiresAtText = helpers.FormatInZone(d.ExpiresAt, d.Timezone)
	}
	return d
}

func NewConfirmEmailData(cfg *config.Config, name, email, verifyURL string, opts ...Option) map[string]any {
	opts = append([]Option{WithVerifyURL(verifyURL)}, opts...)
	return ToMap(NewBaseEmailData(cfg, ConfirmEmail, name, email, opts...))
}

func NewRecoveryCodeData(cfg *config.Config, name, email, code string, opts ...Option) map[string]any {
	opts = append([]Option{WithCode(code)}, opts...)
	return ToMap(NewBaseEmailData(cfg, RecoveryCode, name, email, opts...))
}
