package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/todo-organizer/config"
	"github.com/oksasatya/todo-organizer/internal/domain/entity"
	"github.com/oksasatya/todo-organizer/pkg/helpers"
	"github.com/oksasatya/todo-organizer/pkg/mailer"
	"github.com/oksasatya/todo-organizer/pkg/mailer/templates"
)

const mailTimeout = 15 * time.Second

// Notifier sends account emails. Sends are best-effort: they run detached
// from the request, and a failure is logged and counted but never reported
// to the caller.
type Notifier struct {
	cfg    *config.Config
	sender mailer.Sender
	logger *logrus.Logger

	// Dispatch runs a send; defaults to a new goroutine.
	Dispatch func(func())
}

func NewNotifier(cfg *config.Config, sender mailer.Sender, logger *logrus.Logger) *Notifier {
	return &Notifier{
		cfg:      cfg,
		sender:   sender,
		logger:   logger,
		Dispatch: func(f func()) { go f() },
	}
}

// SendConfirmation mails the link for the user's pending confirmation token.
// Confirmed users are skipped.
func (n *Notifier) SendConfirmation(u *entity.User) {
	if u.IsConfirmed() {
		return
	}
	data := templates.NewConfirmEmailData(n.cfg, u.Username, u.Email, n.cfg.ConfirmEmailURL(u.ConfirmationToken()),
		templates.WithTimezone(u.Timezone),
		templates.WithTime(time.Now()),
	)
	n.send(mailer.EmailJob{To: u.Email, Template: templates.ConfirmEmail, Data: data}, u.ID)
}

func (n *Notifier) SendRecoveryCode(u *entity.User, code string, expiresAt time.Time) {
	data := templates.NewRecoveryCodeData(n.cfg, u.Username, u.Email, code,
		templates.WithTimezone(u.Timezone),
		templates.WithTime(time.Now()),
		templates.WithExpiresAt(expiresAt),
	)
	n.send(mailer.EmailJob{To: u.Email, Template: templates.RecoveryCode, Data: data}, u.ID)
}

func (n *Notifier) send(job mailer.EmailJob, userID string) {
	n.Dispatch(func() {
		ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()
		if err := n.sender.Send(ctx, job); err != nil {
			mailFailuresTotal.Add(1)
			helpers.LogError(n.logger, "send email failed", err, logrus.Fields{
				"user_id":  userID,
				"template": job.Template,
			})
		}
	})
}
