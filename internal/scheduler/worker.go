package scheduler

import (
	"context"
	"fmt"

	"boatyard_backend/internal/email"
	"boatyard_backend/internal/repairs/ports"
	"boatyard_backend/internal/repairs/repository"
	"boatyard_backend/platform/apperr"
	"boatyard_backend/platform/config"
	"boatyard_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Worker consumes reminder tasks and emails the customer ahead of the visit.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	repo   *repository.Repository
	users  ports.UserProvider
	mail   email.Sender
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, users ports.UserProvider, mail email.Sender, log *logger.Logger) (*Worker, error) {
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

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		repo:   repository.New(pool),
		users:  users,
		mail:   mail,
		log:    log,
	}

	mux.HandleFunc(TaskRepairReminder, w.handleRepairReminder)

	return w, nil
}

// Run serves tasks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleRepairReminder(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseRepairReminderPayload(task)
	if err != nil {
		return err
	}

	req, err := w.repo.GetByBookingID(ctx, payload.BookingID)
	if err != nil {
		// The booking was deleted after the reminder was enqueued.
		if apperr.Is(err, apperr.KindNotFound) {
			return nil
		}
		return err
	}

	if req.Status.IsTerminal() || req.ScheduledAt == nil {
		return nil
	}

	customer, err := w.users.GetUserInfo(ctx, req.CustomerID)
	if err != nil {
		return err
	}
	if customer.Email == "" {
		return nil
	}

	scheduledDate := req.ScheduledAt.Format("Monday, January 2, 2006 at 3:04 PM")
	if err := w.mail.SendReminderEmail(ctx, customer.Email, customer.Name, req.BookingID, req.ServiceType, scheduledDate); err != nil {
		return fmt.Errorf("send reminder for %s: %w", req.BookingID, err)
	}

	w.log.Info("reminder sent", "booking_id", req.BookingID)
	return nil
}
