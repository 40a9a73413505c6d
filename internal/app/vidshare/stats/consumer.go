package stats

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Consumer drains the channel collector into view_stats in batches. It only
// writes detail rows; click_count is incremented on the resolve path so the
// counter is never behind.
type Consumer struct {
	db        *pgxpool.Pool
	collector *ChannelCollector
	batchSize int
	interval  time.Duration
}

func NewConsumer(db *pgxpool.Pool, collector *ChannelCollector) *Consumer {
	return &Consumer{
		db:        db,
		collector: collector,
		batchSize: 100,
		interval:  time.Second,
	}
}

func (c *Consumer) Run(ctx context.Context) {
	batch := make([]ViewEvent, 0, c.batchSize)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.flush(batch)
			return
		case event, ok := <-c.collector.Events():
			if !ok {
				c.flush(batch)
				return
			}
			batch = append(batch, event)
			if len(batch) >= c.batchSize {
				c.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				c.flush(batch)
				batch = batch[:0]
			}
		}
	}
}

func (c *Consumer) flush(batch []ViewEvent) {
	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tx, err := c.db.Begin(ctx)
	if err != nil {
		slog.Error("view stats: begin tx failed", "err", err)
		return
	}
	defer tx.Rollback(context.Background())

	for _, e := range batch {
		if _, err := tx.Exec(ctx,
			`INSERT INTO view_stats (code,viewed_at,ip,user_agent,referer) VALUES ($1,$2,$3,$4,$5)`,
			e.Code, e.ViewedAt, e.IP, e.UserAgent, e.Referer); err != nil {
			slog.Error("view stats: insert failed", "err", err, "code", e.Code)
			continue
		}
	}

	if err := tx.Commit(ctx); err != nil {
		slog.Error("view stats: commit failed", "err", err)
	} else {
		slog.Debug("view stats: flushed", "count", len(batch))
	}
}
