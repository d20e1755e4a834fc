package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/livestock_alerts/internal/models"
	"github.com/shenikar/livestock_alerts/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// generationCache повторяет поведение Redis-кэша в памяти: Set принимается
// только при совпадении поколения, Invalidate увеличивает поколение.
type generationCache struct {
	mu          sync.Mutex
	data        map[uuid.UUID]models.Alert
	generations map[uuid.UUID]int64
}

func newGenerationCache() *generationCache {
	return &generationCache{
		data:        make(map[uuid.UUID]models.Alert),
		generations: make(map[uuid.UUID]int64),
	}
}

func (c *generationCache) Get(_ context.Context, id uuid.UUID) (*models.Alert, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	gen := c.generations[id]
	a, ok := c.data[id]
	if !ok {
		return nil, gen, nil
	}
	return &a, gen, nil
}

func (c *generationCache) Set(_ context.Context, alert *models.Alert, generation int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[alert.ID] != generation {
		return nil
	}
	c.data[alert.ID] = *alert
	return nil
}

func (c *generationCache) Invalidate(_ context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[id]++
	delete(c.data, id)
	return nil
}

// gatedRepository хранит одно сообщение; чтение, помеченное через holdNextRead,
// делает снимок и ждет, пока тест не откроет gate.
type gatedRepository struct {
	AlertRepository

	mu       sync.Mutex
	alert    models.Alert
	hold     bool
	snapshot chan struct{}
	gate     chan struct{}
}

func (r *gatedRepository) holdNextRead() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hold = true
	r.snapshot = make(chan struct{})
	r.gate = make(chan struct{})
}

func (r *gatedRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Alert, error) {
	r.mu.Lock()
	a := r.alert
	a.Comments = append([]models.Comment(nil), r.alert.Comments...)
	hold := r.hold
	r.hold = false
	snapshot, gate := r.snapshot, r.gate
	r.mu.Unlock()

	if hold {
		close(snapshot)
		<-gate
	}
	return &a, nil
}

func (r *gatedRepository) AddComment(_ context.Context, comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment.ID = uuid.New()
	r.alert.Comments = append(r.alert.Comments, *comment)
	return nil
}

func TestGetAlert_StaleReadDoesNotRefillCacheAfterWrite(t *testing.T) {
	ctx := context.Background()
	alert := newAlert(uuid.New())
	repo := &gatedRepository{alert: *alert}
	cache := newGenerationCache()
	svc := NewAlertService(repo, cache, nil, logger.NewDiscard()).(*alertService)
	svc.now = func() time.Time { return fixedNow }

	// Читатель получает снимок без комментария и застревает до записи в кэш
	repo.holdNextRead()
	type result struct {
		alert *models.Alert
		err   error
	}
	readerDone := make(chan result, 1)
	go func() {
		a, err := svc.GetAlert(ctx, models.Caller{}, alert.ID)
		readerDone <- result{a, err}
	}()
	select {
	case <-repo.snapshot:
	case <-time.After(5 * time.Second):
		t.Fatal("reader did not reach the repository")
	}

	// Параллельная запись фиксируется и сбрасывает кэш
	_, err := svc.AddComment(ctx, userCaller(), alert.ID, "Vet is on the way")
	require.NoError(t, err)

	close(repo.gate)
	var stale result
	select {
	case stale = <-readerDone:
	case <-time.After(5 * time.Second):
		t.Fatal("reader did not finish")
	}
	require.NoError(t, stale.err)
	assert.Empty(t, stale.alert.Comments)

	// Устаревший снимок не должен был попасть в кэш
	fresh, err := svc.GetAlert(ctx, models.Caller{}, alert.ID)
	require.NoError(t, err)
	assert.Len(t, fresh.Comments, 1)

	cached, _, err := cache.Get(ctx, alert.ID)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Len(t, cached.Comments, 1)
}

func TestGetAlert_CacheFilledWhenNoWriteIntervenes(t *testing.T) {
	ctx := context.Background()
	alert := newAlert(uuid.New())
	repo := &gatedRepository{alert: *alert}
	cache := newGenerationCache()
	svc := NewAlertService(repo, cache, nil, logger.NewDiscard())

	_, err := svc.GetAlert(ctx, models.Caller{}, alert.ID)
	require.NoError(t, err)

	cached, gen, err := cache.Get(ctx, alert.ID)
	require.NoError(t, err)
	assert.NotNil(t, cached)
	assert.Zero(t, gen)
}
