package http

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nexiq/storefront-api/internal/auth"
	"github.com/nexiq/storefront-api/internal/observability"
	"github.com/nexiq/storefront-api/internal/persistence"
	apperrors "github.com/nexiq/storefront-api/pkg/util"
)

// IdempotencyKeyHeader carries the client-chosen key for a retryable request.
const IdempotencyKeyHeader = "X-Idempotency-Key"

const defaultProcessingTTL = 60 * time.Second

type idempotencyStatus string

const (
	statusProcessing idempotencyStatus = "processing"
	statusCompleted  idempotencyStatus = "completed"
)

type idempotencyRecord struct {
	Status       idempotencyStatus `json:"status"`
	RequestHash  string            `json:"request_hash"`
	ResponseCode int               `json:"response_code,omitempty"`
	ResponseBody string            `json:"response_body,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// IdempotencyStore is the subset of the Redis client the middleware uses.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// IdempotencyConfig configures Idempotency.
type IdempotencyConfig struct {
	Store         IdempotencyStore
	TTL           time.Duration
	ProcessingTTL time.Duration
	Logger        *zap.Logger
	Metrics       *observability.Metrics
}

// Idempotency replays the stored response for a repeated X-Idempotency-Key.
// Requests without the header pass through. Keys are scoped to the token
// subject, so it must run after the gate. A key reused with a different body
// is 422 and a key whose first request is still running is 409. Redis
// failures fail open.
func Idempotency(cfg IdempotencyConfig) fiber.Handler {
	if cfg.ProcessingTTL <= 0 {
		cfg.ProcessingTTL = defaultProcessingTTL
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		key := c.Get(IdempotencyKeyHeader)
		if key == "" || cfg.Store == nil {
			return c.Next()
		}

		ctx := c.UserContext()
		subject := auth.SubjectEmail(c)
		redisKey := persistence.Key("idempotency", subject, key)
		hash := requestHash(c.Method(), c.Path(), subject, c.Body())

		existing, err := loadRecord(ctx, cfg.Store, redisKey)
		if err != nil && !errors.Is(err, redis.Nil) {
			cfg.Logger.Warn("idempotency lookup failed", zap.String("key", key), zap.Error(err))
			cfg.Metrics.RecordIdempotency("bypassed")
			return c.Next()
		}
		if existing != nil {
			return replay(c, cfg.Metrics, existing, hash)
		}

		record := &idempotencyRecord{Status: statusProcessing, RequestHash: hash, CreatedAt: time.Now().UTC()}
		acquired, err := storeRecord(ctx, cfg.Store, redisKey, record, cfg.ProcessingTTL, true)
		if err != nil {
			cfg.Logger.Warn("idempotency reserve failed", zap.String("key", key), zap.Error(err))
			cfg.Metrics.RecordIdempotency("bypassed")
			return c.Next()
		}
		if !acquired {
			existing, err = loadRecord(ctx, cfg.Store, redisKey)
			if err == nil && existing != nil {
				return replay(c, cfg.Metrics, existing, hash)
			}
			cfg.Metrics.RecordIdempotency("conflict")
			return apperrors.NewDomainError("REQUEST_IN_PROGRESS", "a request with this idempotency key is already being processed", fiber.StatusConflict, nil)
		}

		if err := c.Next(); err != nil {
			// failed requests may be retried with the same key
			_ = cfg.Store.Del(context.WithoutCancel(ctx), redisKey).Err()
			return err
		}

		status := c.Response().StatusCode()
		if status >= fiber.StatusInternalServerError {
			_ = cfg.Store.Del(context.WithoutCancel(ctx), redisKey).Err()
			return nil
		}

		record.Status = statusCompleted
		record.ResponseCode = status
		record.ResponseBody = string(c.Response().Body())
		if _, err := storeRecord(context.WithoutCancel(ctx), cfg.Store, redisKey, record, cfg.TTL, false); err != nil {
			cfg.Logger.Warn("idempotency save failed", zap.String("key", key), zap.Error(err))
		}
		cfg.Metrics.RecordIdempotency("stored")
		return nil
	}
}

func replay(c *fiber.Ctx, metrics *observability.Metrics, record *idempotencyRecord, hash string) error {
	if record.RequestHash != hash {
		metrics.RecordIdempotency("mismatch")
		return apperrors.NewDomainError("IDEMPOTENCY_KEY_REUSED", "idempotency key already used with a different request", fiber.StatusUnprocessableEntity, nil)
	}
	if record.Status == statusProcessing {
		metrics.RecordIdempotency("conflict")
		return apperrors.NewDomainError("REQUEST_IN_PROGRESS", "a request with this idempotency key is already being processed", fiber.StatusConflict, nil)
	}
	metrics.RecordIdempotency("replayed")
	c.Set("Idempotent-Replayed", "true")
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(record.ResponseCode).SendString(record.ResponseBody)
}

// requestHash fingerprints a request. Each field is length-prefixed so that
// shifting bytes between adjacent fields changes the hash.
func requestHash(method, path, subject string, body []byte) string {
	h := sha256.New()
	for _, field := range [][]byte{[]byte(method), []byte(path), []byte(subject), body} {
		var size [8]byte
		binary.BigEndian.PutUint64(size[:], uint64(len(field)))
		h.Write(size[:])
		h.Write(field)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func loadRecord(ctx context.Context, store IdempotencyStore, key string) (*idempotencyRecord, error) {
	raw, err := store.Get(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	var record idempotencyRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func storeRecord(ctx context.Context, store IdempotencyStore, key string, record *idempotencyRecord, ttl time.Duration, onlyIfAbsent bool) (bool, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return false, err
	}
	if onlyIfAbsent {
		return store.SetNX(ctx, key, string(data), ttl).Result()
	}
	return true, store.Set(ctx, key, string(data), ttl).Err()
}
