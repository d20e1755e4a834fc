package fanout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/shenikar/livestock_alerts/internal/models"
	"github.com/sirupsen/logrus"
)

const defaultSweepBatch = 100

type PendingLister interface {
	Pending(ctx context.Context, olderThan time.Duration, maxClaims, limit int) ([]uuid.UUID, error)
}

type Publisher interface {
	Publish(ctx context.Context, event models.AlertCreatedEvent) error
}

type SweeperOptions struct {
	Schedule  string
	OlderThan time.Duration
	MaxClaims int
	Batch     int
	Timeout   time.Duration
}

// Sweeper по расписанию возвращает в очередь строки outbox, которые
// не были обработаны: событие потерялось или обработчик упал посреди рассылки
type Sweeper struct {
	cron      *cron.Cron
	outbox    PendingLister
	publisher Publisher
	logger    *logrus.Logger
	opts      SweeperOptions
}

func NewSweeper(outbox PendingLister, publisher Publisher, logger *logrus.Logger, opts SweeperOptions) *Sweeper {
	if opts.Batch <= 0 {
		opts.Batch = defaultSweepBatch
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Sweeper{
		cron:      cron.New(),
		outbox:    outbox,
		publisher: publisher,
		logger:    logger,
		opts:      opts,
	}
}

func (s *Sweeper) Start() error {
	_, err := s.cron.AddFunc(s.opts.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.Timeout)
		defer cancel()
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.WithError(err).Error("Outbox sweep failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule outbox sweep %q: %w", s.opts.Schedule, err)
	}
	s.cron.Start()
	s.logger.WithField("schedule", s.opts.Schedule).Info("Outbox sweeper started")
	return nil
}

// Stop останавливает расписание и ждет завершения текущей проверки
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// Sweep публикует событие для каждой зависшей строки и возвращает их число
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	ids, err := s.outbox.Pending(ctx, s.opts.OlderThan, s.opts.MaxClaims, s.opts.Batch)
	if err != nil {
		return 0, fmt.Errorf("fanout: could not list pending alerts: %w", err)
	}

	published := 0
	for _, id := range ids {
		event := models.AlertCreatedEvent{AlertID: id, OccurredAt: time.Now()}
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.WithError(err).WithField("alert_id", id).Warn("Failed to republish fan-out event")
			continue
		}
		published++
	}
	if published > 0 {
		s.logger.WithField("count", published).Info("Republished pending fan-out events")
	}
	return published, nil
}
