package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const dedupKeyPrefix = "storebot:update"

// UpdateDeduper remembers Telegram update ids for a while. Seen reports
// whether the id was already recorded and records it otherwise.
type UpdateDeduper interface {
	Seen(ctx context.Context, updateID int64) (bool, error)
}

type redisUpdateDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

func (d *redisUpdateDeduper) Seen(ctx context.Context, updateID int64) (bool, error) {
	key := dedupKeyPrefix + ":" + strconv.FormatInt(updateID, 10)
	created, err := d.client.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		return false, err
	}
	return !created, nil
}

type memoryUpdateDeduper struct {
	mu      sync.Mutex
	expires map[int64]time.Time
	ttl     time.Duration
	sweepAt time.Time
	now     func() time.Time
}

func newMemoryUpdateDeduper(ttl time.Duration) *memoryUpdateDeduper {
	d := &memoryUpdateDeduper{
		expires: make(map[int64]time.Time),
		ttl:     ttl,
		now:     time.Now,
	}
	d.sweepAt = d.now().Add(ttl)
	return d
}

func (d *memoryUpdateDeduper) Seen(_ context.Context, updateID int64) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if exp, ok := d.expires[updateID]; ok && now.Before(exp) {
		return true, nil
	}
	d.expires[updateID] = now.Add(d.ttl)

	if now.After(d.sweepAt) {
		d.sweep(now)
	}
	return false, nil
}

func (d *memoryUpdateDeduper) sweep(now time.Time) {
	for id, exp := range d.expires {
		if !now.Before(exp) {
			delete(d.expires, id)
		}
	}
	d.sweepAt = now.Add(d.ttl)
}

// NewUpdateDeduper stores update ids in Redis, or in memory when client is nil.
func NewUpdateDeduper(client *redis.Client, ttl time.Duration) UpdateDeduper {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if client == nil {
		return newMemoryUpdateDeduper(ttl)
	}
	return &redisUpdateDeduper{client: client, ttl: ttl}
}

// updateID peeks at the update id without consuming the body. Zero means the
// body is not a Telegram update.
func updateID(req *http.Request) int64 {
	if req.Body == nil {
		return 0
	}
	raw, err := io.ReadAll(req.Body)
	req.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil || len(raw) == 0 {
		return 0
	}
	var update struct {
		UpdateID int64 `json:"update_id"`
	}
	if json.Unmarshal(raw, &update) != nil {
		return 0
	}
	return update.UpdateID
}

// TelegramUpdateDedup answers repeated webhook deliveries with 200 so
// Telegram stops retrying, without running the bot handler again. Dedup
// errors let the update through.
func TelegramUpdateDedup(deduper UpdateDeduper, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if deduper == nil {
				return next(c)
			}
			id := updateID(c.Request())
			if id == 0 {
				return next(c)
			}

			dup, err := deduper.Seen(c.Request().Context(), id)
			if err != nil {
				logger.Warn("Update dedup failed", zap.Int64("update_id", id), zap.Error(err))
				return next(c)
			}
			if dup {
				logger.Debug("Duplicate update dropped", zap.Int64("update_id", id))
				return c.NoContent(http.StatusOK)
			}
			return next(c)
		}
	}
}
