package mailer

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

// Publisher queues a JSON payload, normally helpers.RabbitPublisher.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Dispatcher routes email jobs to the queue when one is configured and
// sends them inline otherwise. With Enabled false jobs are only logged.
type Dispatcher struct {
	Queue   Publisher
	Sender  Sender
	Logger  *logrus.Logger
	Enabled bool
}

var ErrNoTransport = errors.New("no email transport configured")

func NewDispatcher(queue Publisher, sender Sender, logger *logrus.Logger, enabled bool) *Dispatcher {
	return &Dispatcher{Queue: queue, Sender: sender, Logger: logger, Enabled: enabled}
}

func (d *Dispatcher) Dispatch(ctx context.Context, job EmailJob) error {
	if !d.Enabled {
		if d.Logger != nil {
			d.Logger.WithFields(logrus.Fields{"to": job.To, "template": job.Template, "data": job.Data}).
				Debug("mail sending disabled; job not delivered")
		}
		return nil
	}
	if d.Queue != nil {
		return d.Queue.PublishJSON(ctx, job)
	}
	if d.Sender == nil {
		return ErrNoTransport
	}
	return Deliver(ctx, d.Sender, job)
}

// Deliver renders job and hands it to s.
func Deliver(ctx context.Context, s Sender, job EmailJob) error {
	if err := job.Prepare(); err != nil {
		return err
	}
	return s.Send(ctx, job.To, job.Subject, job.Text, job.HTML)
}
