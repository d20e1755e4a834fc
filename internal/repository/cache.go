package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/livestock_alerts/internal/models"
	"github.com/shenikar/livestock_alerts/internal/service"
)

const defaultCacheTTL = 5 * time.Minute

// AlertCache хранит карточки сообщений в Redis
type AlertCache struct {
	redisClient *redis.Client
	ttl         time.Duration
}

func NewAlertCache(redisClient *redis.Client, ttl time.Duration) service.AlertCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &AlertCache{
		redisClient: redisClient,
		ttl:         ttl,
	}
}

func alertCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("alert:%s", id.String())
}

func alertGenerationKey(id uuid.UUID) string {
	return fmt.Sprintf("alert:%s:gen", id.String())
}

// Поколение живет дольше самой записи, иначе сброс счетчика совпал бы со старым значением
const generationTTL = 24 * time.Hour

// setIfGeneration сохраняет карточку, только если поколение не изменилось.
// KEYS[1] - карточка, KEYS[2] - поколение; ARGV: поколение, значение, ttl в мс.
var setIfGeneration = redis.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// Get возвращает сообщение из кэша (nil при промахе) и поколение записи
func (c *AlertCache) Get(ctx context.Context, id uuid.UUID) (*models.Alert, int64, error) {
	vals, err := c.redisClient.MGet(ctx, alertCacheKey(id), alertGenerationKey(id)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get alert from cache: %w", err)
	}

	var generation int64
	if raw, ok := vals[1].(string); ok {
		generation, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid cache generation %q: %w", raw, err)
		}
	}

	raw, ok := vals[0].(string)
	if !ok {
		return nil, generation, nil
	}
	alert := &models.Alert{}
	if err := json.Unmarshal([]byte(raw), alert); err != nil {
		return nil, 0, fmt.Errorf("failed to unmarshal alert from cache: %w", err)
	}
	return alert, generation, nil
}

// Set сохраняет снимок, прочитанный при поколении generation. Если с тех пор
// запись инвалидировали, снимок устарел и отбрасывается.
func (c *AlertCache) Set(ctx context.Context, alert *models.Alert, generation int64) error {
	val, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert for cache: %w", err)
	}
	keys := []string{alertCacheKey(alert.ID), alertGenerationKey(alert.ID)}
	if err := setIfGeneration.Run(ctx, c.redisClient, keys, generation, val, c.ttl.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("failed to set alert in cache: %w", err)
	}
	return nil
}

// Invalidate удаляет карточку и увеличивает поколение
func (c *AlertCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	genKey := alertGenerationKey(id)
	_, err := c.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		pipe.Del(ctx, alertCacheKey(id))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate alert cache: %w", err)
	}
	return nil
}
