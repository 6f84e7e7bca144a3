package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/todo-organizer/pkg/mailer/templates"
)

// ErrRender marks jobs that can never be delivered as-is.
var ErrRender = errors.New("render email")

// Sender delivers or enqueues a single email job.
type Sender interface {
	Send(ctx context.Context, job EmailJob) error
}

// Publisher is the queue side of QueueSender; helpers.RabbitPublisher implements it.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Transport sends a rendered message; *Mailgun implements it.
type Transport interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// QueueSender hands jobs to the email worker through RabbitMQ.
type QueueSender struct {
	Pub Publisher
}

func (s QueueSender) Send(ctx context.Context, job EmailJob) error {
	job.EnsureRecipient()
	return s.Pub.PublishJSON(ctx, job)
}

// DirectSender renders and sends in-process.
type DirectSender struct {
	Transport Transport
}

func (s DirectSender) Send(ctx context.Context, job EmailJob) error {
	job.EnsureRecipient()
	subject, text, html, err := Render(job)
	if err != nil {
		return err
	}
	return s.Transport.Send(ctx, job.To, subject, text, html)
}

// DiscardSender only logs; used when MAIL_SEND_ENABLED=false.
type DiscardSender struct {
	Logger *logrus.Logger
}

func (s DiscardSender) Send(_ context.Context, job EmailJob) error {
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"to": job.To, "template": job.Template}).Debug("mail sending disabled, dropping email")
	}
	return nil
}

// Render produces subject, text and html for a job, from its template when set.
func Render(job EmailJob) (subject, text, html string, err error) {
	if job.Template == "" {
		if job.Subject == "" || (job.Text == "" && job.HTML == "") {
			return "", "", "", fmt.Errorf("%w: subject with text or html is required", ErrRender)
		}
		return job.Subject, job.Text, job.HTML, nil
	}
	subject, text, html, err = templates.Render(job.Template, job.Data)
	if err != nil {
		return "", "", "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	return subject, text, html, nil
}
