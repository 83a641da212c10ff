// Package scheduler integrates the asynq job queue for service-visit
// reminders. The API process enqueues through Client; the worker binary
// consumes through Worker.
package scheduler

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"boatyard_backend/internal/repairs/ports"
	"boatyard_backend/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// reminderLead is how far ahead of the scheduled visit the reminder fires.
const reminderLead = 24 * time.Hour

// Client enqueues reminder tasks. It implements ports.ReminderScheduler.
type Client struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	queue     string
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	return &Client{
		client:    asynq.NewClient(opt),
		inspector: asynq.NewInspector(opt),
		queue:     queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// ScheduleReminder enqueues a reminder to fire 24 hours before the visit.
// Visits inside the lead window get no reminder. The stable task ID makes
// re-scheduling a no-op while a reminder is already pending.
func (c *Client) ScheduleReminder(ctx context.Context, bookingID string, scheduledAt time.Time) error {
	if c == nil || c.client == nil {
		return nil
	}

	runAt := scheduledAt.Add(-reminderLead)
	if !runAt.After(time.Now()) {
		return nil
	}

	task, err := NewRepairReminderTask(RepairReminderPayload{BookingID: bookingID})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.ProcessAt(runAt),
		asynq.Queue(c.queue),
		asynq.TaskID(reminderTaskID(bookingID)),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

// CancelReminder removes the pending reminder for a booking, if any.
func (c *Client) CancelReminder(_ context.Context, bookingID string) error {
	if c == nil || c.inspector == nil {
		return nil
	}

	err := c.inspector.DeleteTask(c.queue, reminderTaskID(bookingID))
	if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
		return nil
	}
	return err
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}

var _ ports.ReminderScheduler = (*Client)(nil)
