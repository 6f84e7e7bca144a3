package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/todo-organizer/config"
	"github.com/oksasatya/todo-organizer/pkg/helpers"
	"github.com/oksasatya/todo-organizer/pkg/mailer"
)

const (
	prefetch    = 16
	sendTimeout = 15 * time.Second
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env, cfg.LogLevel)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled (no real emails will be sent)")
		return
	}
	if err := run(cfg, logger); err != nil {
		log.Fatalf("email worker: %v", err)
	}
}

func run(cfg *config.Config, logger *logrus.Logger) error {
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		return errors.New("rabbitmq not configured")
	}
	if !cfg.MailgunConfigured() {
		return errors.New("mailgun not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		return fmt.Errorf("amqp dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Prefetch for fair dispatch across workers
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return fmt.Errorf("qos: %w", err)
	}
	if err := helpers.DeclareQueue(ch, cfg.RabbitMQEmailQueue); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(cfg.RabbitMQEmailQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	sender := mailer.DirectSender{
		Transport: mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender, cfg.MailgunAPIBase),
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			handle(msg, sender, logger)
		}
		close(done)
	}()

	logger.Infof("email worker listening on queue=%s", cfg.RabbitMQEmailQueue)
	select {
	case <-stop:
		logger.Info("shutting down...")
		_ = ch.Close()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
		}
		return nil
	case <-done:
		return errors.New("delivery channel closed")
	}
}

// handle acks delivered mail, requeues transient send failures and drops
// messages that can never be delivered.
func handle(msg amqp.Delivery, sender mailer.Sender, logger *logrus.Logger) {
	var job mailer.EmailJob
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		helpers.LogError(logger, "bad message, dropping", err, nil)
		_ = msg.Nack(false, false)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	err := sender.Send(ctx, job)
	fields := logrus.Fields{"to": job.To, "template": job.Template}
	switch {
	case err == nil:
		_ = msg.Ack(false)
	case errors.Is(err, mailer.ErrRender):
		helpers.LogError(logger, "render failed, dropping", err, fields)
		_ = msg.Nack(false, false)
	default:
		helpers.LogError(logger, "send failed, requeueing", err, fields)
		_ = msg.Nack(false, true)
	}
}
