package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shenikar/livestock_alerts/internal/apperr"
)

// DefaultOpTimeout ограничивает каждую операцию с бд, если таймаут не задан
const DefaultOpTimeout = 5 * time.Second

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultOpTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// mapError переводит ошибки pgx в категории приложения
func mapError(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("alert not found")
	}
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return apperr.Unavailable(op+": store timeout", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.CheckViolation:
			return apperr.Validation("%s: constraint %s violated", op, pgErr.ConstraintName)
		case pgerrcode.ForeignKeyViolation:
			// Сообщение удалено параллельно
			if strings.Contains(pgErr.ConstraintName, "alert_id") {
				return apperr.NotFound("alert not found")
			}
			return apperr.Validation("%s: referenced user does not exist", op)
		case pgerrcode.QueryCanceled, pgerrcode.AdminShutdown, pgerrcode.CannotConnectNow, pgerrcode.TooManyConnections:
			return apperr.Unavailable(op+": store unavailable", err)
		}
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return apperr.Unavailable(op+": store unavailable", err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// queryArgs нумерует плейсхолдеры по мере добавления аргументов
type queryArgs struct {
	args []any
}

// bind подставляет номера плейсхолдеров вместо %d в format
func (q *queryArgs) bind(format string, vals ...any) string {
	idx := make([]any, len(vals))
	for i, v := range vals {
		q.args = append(q.args, v)
		idx[i] = len(q.args)
	}
	return fmt.Sprintf(format, idx...)
}

func (q *queryArgs) clone() *queryArgs {
	return &queryArgs{args: append([]any(nil), q.args...)}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern строит шаблон ILIKE для поиска подстроки
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(s)) + "%"
}
