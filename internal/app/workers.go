package app

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/journihealth/journi_backend/internal/mailer"
	"github.com/journihealth/journi_backend/pkg/email"
)

// WorkerModule registers the NATS mail worker.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc    fx.Lifecycle
	NC    *nats.Conn
	Email *email.Client
}

func RegisterWorkers(p WorkerParams) {
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := mailer.StartWorker(p.NC, p.Email); err != nil {
				return err
			}
			slog.Info("mail_worker: started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			// NATS drain handled by ProvideNatsClient
			return nil
		},
	})
}
