package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/shenikar/livestock_alerts/internal/models"
)

// Notifier доставляет одно уведомление одному получателю по своему каналу
type Notifier interface {
	Channel() models.Channel
	Notify(ctx context.Context, recipient models.Recipient, alert *models.Alert) error
}

// ErrNoAddress - у получателя нет адреса для канала
var ErrNoAddress = errors.New("recipient has no address for channel")

// permanentError помечает ошибку, после которой повторять попытку бессмысленно
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe) || errors.Is(err, ErrNoAddress)
}

// runWithContext выполняет вызов клиента без поддержки context так,
// чтобы ожидание прерывалось по ctx
func runWithContext(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("delivery interrupted: %w", ctx.Err())
	}
}
