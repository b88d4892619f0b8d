// Package mailer decouples email delivery from request handling. Services
// enqueue a task; a NATS worker picks it up and drives the SMTP client, so
// a slow or failing mail server never blocks an API response.
package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/journihealth/journi_backend/pkg/email"
)

// SubjectMailSend is the NATS subject mail tasks are published to.
const SubjectMailSend = "journi.mail.send"

// Task is one queued email.
type Task struct {
	Message email.Message `json:"message"`
}

// Queue accepts mail tasks for asynchronous delivery.
type Queue interface {
	Enqueue(ctx context.Context, task Task) error
}

// NatsQueue publishes mail tasks to NATS.
type NatsQueue struct {
	nc *nats.Conn
}

func NewNatsQueue(nc *nats.Conn) *NatsQueue {
	return &NatsQueue{nc: nc}
}

var _ Queue = (*NatsQueue)(nil)

func (q *NatsQueue) Enqueue(_ context.Context, task Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to encode mail task: %w", err)
	}
	if err := q.nc.Publish(SubjectMailSend, data); err != nil {
		return fmt.Errorf("failed to publish mail task: %w", err)
	}
	return nil
}

// Sender is the delivery side of the queue. *email.Client satisfies it.
type Sender interface {
	Send(ctx context.Context, m email.Message) error
}

// StartWorker subscribes the mail worker on the shared NATS connection.
func StartWorker(nc *nats.Conn, sender Sender) error {
	_, err := nc.Subscribe(SubjectMailSend, func(msg *nats.Msg) {
		var task Task
		if err := json.Unmarshal(msg.Data, &task); err != nil {
			slog.Warn("mail_worker: malformed task", "err", err)
			return
		}

		if err := sender.Send(context.Background(), task.Message); err != nil {
			// ErrDisabled is expected in dev setups without SMTP.
			var disabled email.ErrDisabled
			if errors.As(err, &disabled) {
				slog.Debug("mail_worker: email disabled, task dropped", "to", task.Message.To)
				return
			}
			slog.Warn("mail_worker: send failed", "to", task.Message.To, "err", err)
			return
		}
		slog.Debug("mail_worker: sent", "to", task.Message.To, "subject", task.Message.Subject)
	})
	if err != nil {
		return fmt.Errorf("mail_worker: subscribe failed: %w", err)
	}

	slog.Info("mail_worker: started")
	return nil
}

// Buffer is an in-memory Queue for tests. It records every enqueued task.
type Buffer struct {
	mu    sync.Mutex
	tasks []Task
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

var _ Queue = (*Buffer)(nil)

func (b *Buffer) Enqueue(_ context.Context, task Task) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tasks = append(b.tasks, task)
	return nil
}

// Tasks returns a snapshot of everything enqueued so far.
func (b *Buffer) Tasks() []Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Task(nil), b.tasks...)
}
