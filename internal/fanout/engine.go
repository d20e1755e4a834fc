package fanout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/livestock_alerts/internal/apperr"
	"github.com/shenikar/livestock_alerts/internal/metrics"
	"github.com/shenikar/livestock_alerts/internal/models"
	"github.com/shenikar/livestock_alerts/internal/notify"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"
)

// Outbox - очередь рассылки в бд
type Outbox interface {
	Claim(ctx context.Context, alertID uuid.UUID, lease time.Duration) (bool, error)
	Complete(ctx context.Context, report models.DeliveryReport) error
	Release(ctx context.Context, alertID uuid.UUID) error
}

// Directory выбирает получателей по региону и каналу
type Directory interface {
	FindRecipients(ctx context.Context, query models.RecipientQuery) ([]models.Recipient, error)
}

type AlertSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Alert, error)
}

type Options struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	AttemptTimeout time.Duration
	Concurrency    int
	Lease          time.Duration
}

func (o *Options) normalize() {
	if o.MaxAttempts < 1 {
		o.MaxAttempts = 1
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = 500 * time.Millisecond
	}
	if o.AttemptTimeout <= 0 {
		o.AttemptTimeout = 10 * time.Second
	}
	if o.Concurrency < 1 {
		o.Concurrency = 1
	}
	if o.Lease <= 0 {
		o.Lease = 2 * time.Minute
	}
}

// Engine рассылает уведомления о новом сообщении всем получателям региона.
// Ошибка доставки одному получателю не влияет на остальных.
type Engine struct {
	outbox    Outbox
	directory Directory
	alerts    AlertSource
	notifiers []notify.Notifier
	metrics   *metrics.Metrics
	logger    *logrus.Logger
	opts      Options
	now       func() time.Time
}

func NewEngine(outbox Outbox, directory Directory, alerts AlertSource, notifiers []notify.Notifier, m *metrics.Metrics, logger *logrus.Logger, opts Options) *Engine {
	opts.normalize()
	return &Engine{
		outbox:    outbox,
		directory: directory,
		alerts:    alerts,
		notifiers: notifiers,
		metrics:   m,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
	}
}

type delivery struct {
	notifier  notify.Notifier
	recipient models.Recipient
}

// Process выполняет рассылку по одному сообщению. Строка outbox захватывается
// на время рассылки; при сбое инфраструктуры захват снимается и рассылку
// повторит следующая проверка очереди.
func (e *Engine) Process(ctx context.Context, alertID uuid.UUID) (models.DeliveryReport, error) {
	log := e.logger.WithFields(logrus.Fields{
		"service":  "fanout",
		"method":   "Process",
		"alert_id": alertID,
	})
	report := models.DeliveryReport{AlertID: alertID}
	start := e.now()

	claimed, err := e.outbox.Claim(ctx, alertID, e.opts.Lease)
	if err != nil {
		log.WithError(err).Error("Failed to claim outbox entry")
		return report, fmt.Errorf("fanout: could not claim alert: %w", err)
	}
	if !claimed {
		log.Debug("Outbox entry already processed or claimed, skipping")
		report.Skipped = true
		e.metrics.ObserveFanout("skipped", 0)
		return report, nil
	}

	alert, err := e.alerts.GetByID(ctx, alertID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			// Сообщение удалено, строка outbox удалена вместе с ним
			log.Info("Alert no longer exists, nothing to notify")
			report.Skipped = true
			e.metrics.ObserveFanout("skipped", 0)
			return report, nil
		}
		e.release(ctx, log, alertID)
		return report, fmt.Errorf("fanout: could not load alert: %w", err)
	}

	// Сначала получатели по всем каналам, чтобы сбой справочника не приводил
	// к частичной рассылке
	deliveries, err := e.resolve(ctx, log, alert)
	if err != nil {
		e.release(ctx, log, alertID)
		return report, fmt.Errorf("fanout: could not resolve recipients: %w", err)
	}

	report.Attempted = len(deliveries)
	report.Delivered, report.Failed = e.dispatch(ctx, log, alert, deliveries)

	if ctx.Err() != nil {
		// Остановка посреди рассылки: не закрываем строку, чтобы недоставленное ушло позже
		e.release(context.WithoutCancel(ctx), log, alertID)
		return report, fmt.Errorf("fanout: interrupted: %w", ctx.Err())
	}

	if err := e.outbox.Complete(ctx, report); err != nil {
		log.WithError(err).Error("Failed to complete outbox entry")
		return report, fmt.Errorf("fanout: could not complete alert: %w", err)
	}

	e.metrics.ObserveFanout("completed", e.now().Sub(start))
	log.WithFields(logrus.Fields{
		"attempted": report.Attempted,
		"delivered": report.Delivered,
		"failed":    report.Failed,
	}).Info("Fan-out finished")
	return report, nil
}

func (e *Engine) resolve(ctx context.Context, log *logrus.Entry, alert *models.Alert) ([]delivery, error) {
	var deliveries []delivery
	for _, n := range e.notifiers {
		recipients, err := e.directory.FindRecipients(ctx, models.RecipientQuery{
			State:         alert.Location.State,
			District:      alert.Location.District,
			Channel:       n.Channel(),
			ExcludeUserID: alert.ReportedBy.ID,
		})
		if err != nil {
			log.WithError(err).WithField("channel", n.Channel()).Error("Failed to resolve recipients")
			return nil, err
		}
		e.metrics.ObserveRecipients(string(n.Channel()), len(recipients))
		for _, r := range recipients {
			deliveries = append(deliveries, delivery{notifier: n, recipient: r})
		}
	}
	return deliveries, nil
}

// dispatch запускает все доставки параллельно и дожидается каждой
func (e *Engine) dispatch(ctx context.Context, log *logrus.Entry, alert *models.Alert, deliveries []delivery) (delivered, failed int) {
	var mu sync.Mutex
	p := pool.New().WithMaxGoroutines(e.opts.Concurrency)
	for _, d := range deliveries {
		p.Go(func() {
			channel := string(d.notifier.Channel())
			dlog := log.WithFields(logrus.Fields{
				"channel":      channel,
				"recipient_id": d.recipient.ID,
			})

			// Паника канала считается неудачной доставкой и не роняет остальные
			var err error
			var pc panics.Catcher
			pc.Try(func() { err = e.deliver(ctx, dlog, d, alert) })
			if r := pc.Recovered(); r != nil {
				err = apperr.Internal("notifier panicked", r.AsError())
				dlog.WithField("stack", string(r.Stack)).Error("Notifier panicked")
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				e.metrics.ObserveDelivery(channel, metrics.OutcomeFailed)
				dlog.WithError(err).Warn("Notification delivery failed")
				return
			}
			delivered++
			e.metrics.ObserveDelivery(channel, metrics.OutcomeDelivered)
			dlog.Debug("Notification delivered")
		})
	}
	p.Wait()
	return delivered, failed
}

// deliver повторяет попытку с экспоненциальной задержкой, пока ошибка временная
func (e *Engine) deliver(ctx context.Context, log *logrus.Entry, d delivery, alert *models.Alert) error {
	delay := e.opts.BaseDelay
	var err error
	for attempt := 1; attempt <= e.opts.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, e.opts.AttemptTimeout)
		err = d.notifier.Notify(attemptCtx, d.recipient, alert)
		cancel()
		if err == nil {
			return nil
		}
		if notify.IsPermanent(err) || attempt == e.opts.MaxAttempts {
			break
		}

		e.metrics.ObserveDelivery(string(d.notifier.Channel()), metrics.OutcomeRetried)
		log.WithError(err).Debugf("Delivery attempt %d failed. Retrying in %v", attempt, delay)
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
		delay *= 2
	}
	return err
}

func (e *Engine) release(ctx context.Context, log *logrus.Entry, alertID uuid.UUID) {
	e.metrics.ObserveFanout("released", 0)
	if err := e.outbox.Release(ctx, alertID); err != nil {
		log.WithError(err).Warn("Failed to release outbox entry, lease will expire")
	}
}
