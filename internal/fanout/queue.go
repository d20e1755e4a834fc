package fanout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/livestock_alerts/internal/models"
)

const (
	fanoutQueueKey    = "alert_fanout_events"
	defaultPopTimeout = 5 * time.Second
)

// RedisQueue - очередь событий рассылки в Redis. Событие только будит
// обработчик, источником истины остается outbox в бд.
type RedisQueue struct {
	redisClient *redis.Client
	popTimeout  time.Duration
}

func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{
		redisClient: client,
		popTimeout:  defaultPopTimeout,
	}
}

// Publish публикует событие в очередь Redis
func (q *RedisQueue) Publish(ctx context.Context, event models.AlertCreatedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal fan-out event: %w", err)
	}

	// LPUSH добавляет в левую часть списка, BRPOP забирает из правой
	if err := q.redisClient.LPush(ctx, fanoutQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish fan-out event to Redis: %w", err)
	}
	return nil
}

// Next ждет следующее событие не дольше popTimeout. ok=false, если очередь пуста.
func (q *RedisQueue) Next(ctx context.Context) (models.AlertCreatedEvent, bool, error) {
	result, err := q.redisClient.BRPop(ctx, q.popTimeout, fanoutQueueKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.AlertCreatedEvent{}, false, nil
		}
		return models.AlertCreatedEvent{}, false, fmt.Errorf("failed to pop fan-out event from Redis: %w", err)
	}

	// result[0] - ключ, result[1] - значение
	event, err := decodeEvent(result[1])
	if err != nil {
		return models.AlertCreatedEvent{}, false, err
	}
	return event, true, nil
}

func decodeEvent(payload string) (models.AlertCreatedEvent, error) {
	var event models.AlertCreatedEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return event, fmt.Errorf("failed to unmarshal fan-out event: %w", err)
	}
	if event.AlertID == uuid.Nil {
		return event, errors.New("fan-out event has no alert id")
	}
	return event, nil
}
