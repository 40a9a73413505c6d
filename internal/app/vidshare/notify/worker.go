package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Sender delivers one invitation job. The in-tree implementation only logs;
// a mail provider slots in behind this interface.
type Sender interface {
	Send(ctx context.Context, job Job) error
}

type LogSender struct{}

func (LogSender) Send(_ context.Context, job Job) error {
	slog.Info("invitation delivered", "job_id", job.ID, "recipients", len(job.Emails), "message", job.Message)
	return nil
}

type Worker struct {
	rdb    *redis.Client
	key    string
	sender Sender
}

func NewWorker(rdb *redis.Client, key string, sender Sender) *Worker {
	if key == "" {
		key = "invites:jobs"
	}
	if sender == nil {
		sender = LogSender{}
	}
	return &Worker{rdb: rdb, key: key, sender: sender}
}

// Run consumes jobs until ctx is cancelled. A bad payload is logged and
// skipped; a failed send is logged but not retried.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := w.rdb.BRPop(ctx, 2*time.Second, w.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			slog.Error("invite worker: pop failed", "err", err)
			time.Sleep(200 * time.Millisecond)
			continue
		}
		if len(res) != 2 {
			continue
		}

		var job Job
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			slog.Error("invite worker: bad payload", "err", err)
			continue
		}

		if err := w.sender.Send(ctx, job); err != nil {
			slog.Error("invite worker: send failed", "err", err, "job_id", job.ID)
		}
	}
}
