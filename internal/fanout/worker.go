package fanout

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/livestock_alerts/internal/models"
	"github.com/sirupsen/logrus"
)

// EventSource отдает события рассылки; ok=false, если событий пока нет
type EventSource interface {
	Next(ctx context.Context) (event models.AlertCreatedEvent, ok bool, err error)
}

type Processor interface {
	Process(ctx context.Context, alertID uuid.UUID) (models.DeliveryReport, error)
}

// Worker - фоновый обработчик очереди рассылки
type Worker struct {
	source     EventSource
	processor  Processor
	logger     *logrus.Logger
	retryDelay time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewWorker(source EventSource, processor Processor, logger *logrus.Logger) *Worker {
	return &Worker{
		source:     source,
		processor:  processor,
		logger:     logger,
		retryDelay: time.Second,
	}
}

// Start запускает горутину для обработки очереди
func (w *Worker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.logger.Info("Starting fan-out worker...")
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()
}

// Stop останавливает обработчик и ждет завершения текущей рассылки
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Stopping fan-out worker.")
			return
		default:
		}

		event, ok, err := w.source.Next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				continue
			}
			w.logger.WithError(err).Error("Failed to read fan-out event")
			w.sleep(ctx, w.retryDelay)
			continue
		}
		if !ok {
			continue
		}

		log := w.logger.WithField("alert_id", event.AlertID)
		log.Debug("Processing fan-out event...")
		if _, err := w.processor.Process(ctx, event.AlertID); err != nil {
			// Строка outbox осталась необработанной, ее подберет sweeper
			log.WithError(err).Warn("Fan-out failed, will be retried by sweeper")
		}
	}
}

func (w *Worker) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
