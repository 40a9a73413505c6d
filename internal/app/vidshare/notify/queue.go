package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"vidshare.local/internal/platform/metrics"
)

// Job is one invitation batch as serialized onto the redis list. Workers pop
// from the tail, so delivery order follows enqueue order.
type Job struct {
	ID        string   `json:"id"`
	CreatedAt string   `json:"createdAt"`
	Emails    []string `json:"emails"`
	Message   string   `json:"message"`
}

type Queue struct {
	rdb *redis.Client
	key string
}

func NewQueue(rdb *redis.Client, key string) *Queue {
	if key == "" {
		key = "invites:jobs"
	}
	return &Queue{rdb: rdb, key: key}
}

// Dispatch enqueues one invitation job. It never returns an error: delivery
// is best effort and the caller's transaction already committed.
func (q *Queue) Dispatch(ctx context.Context, emails []string, message string) (string, bool) {
	job := Job{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Emails:    emails,
		Message:   message,
	}

	data, err := json.Marshal(job)
	if err != nil {
		slog.Error("invite queue: marshal failed", "err", err)
		metrics.InvitationJobsTotal.WithLabelValues("failed").Inc()
		return "", false
	}

	qctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	if err := q.rdb.LPush(qctx, q.key, data).Err(); err != nil {
		slog.Error("invite queue: enqueue failed", "err", err, "job_id", job.ID)
		metrics.InvitationJobsTotal.WithLabelValues("failed").Inc()
		return "", false
	}

	metrics.InvitationJobsTotal.WithLabelValues("ok").Inc()
	return job.ID, true
}
