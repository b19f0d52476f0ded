package idempotency

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/errors"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/logging"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/metrics"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/middleware"
)

// Outcomes reported to metrics
const (
	outcomeMiss         = "miss"
	outcomeReplay       = "replay"
	outcomeMismatch     = "mismatch"
	outcomeConcurrent   = "concurrent"
	outcomeStorageError = "storage_error"
)

// Config configures the middleware
type Config struct {
	Repository  Repository
	Metrics     *metrics.Metrics
	Logger      *logging.Logger
	Retention   time.Duration
	LockTimeout time.Duration
	MaxKeyLen   int
	Now         func() time.Time
}

// DefaultConfig keeps answers for a day
func DefaultConfig(repo Repository, m *metrics.Metrics, logger *logging.Logger) *Config {
	return &Config{
		Repository:  repo,
		Metrics:     m,
		Logger:      logger,
		Retention:   24 * time.Hour,
		LockTimeout: 2 * time.Minute,
		MaxKeyLen:   DefaultMaxKeyLen,
		Now:         func() time.Time { return time.Now().UTC() },
	}
}

type recorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *recorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *recorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Middleware guards mutating requests that carry an Idempotency-Key. Requests
// without the header pass through. Server errors are not stored so the
// caller may retry them with the same key.
func Middleware(config *Config) gin.HandlerFunc {
	logger := config.Logger.WithComponent("idempotency")

	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(HeaderKey))
		if key == "" || !mutating(c.Request.Method) {
			c.Next()
			return
		}
		if err := ValidateKey(key, config.MaxKeyLen); err != nil {
			middleware.AbortWithAppError(c, errors.ErrBadRequest(err.Error()))
			return
		}

		path := c.FullPath()
		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}

		now := config.Now()
		rec := &Record{
			ID:          uuid.New().String(),
			Key:         key,
			UserID:      c.GetString(middleware.ContextKeyUserID),
			Fingerprint: Fingerprint(c.Request.Method, c.Request.URL.Path, body),
			LockedAt:    now,
			ExpiresAt:   now.Add(config.Retention),
		}

		ctx := c.Request.Context()
		stored, created, err := config.Repository.Acquire(ctx, rec)
		if err != nil {
			logger.WithError(err).Error("Failed to acquire idempotency key", "key", key)
			config.record(path, outcomeStorageError)
			middleware.AbortWithAppError(c, errors.ErrServiceUnavailable("idempotency storage"))
			return
		}

		if !created {
			switch {
			case stored.Fingerprint != rec.Fingerprint:
				config.record(path, outcomeMismatch)
				middleware.AbortWithAppError(c, errors.NewAppError("IDEMPOTENCY_MISMATCH",
					"request differs from the original request with this idempotency key", http.StatusUnprocessableEntity))
				return
			case stored.IsCompleted():
				config.record(path, outcomeReplay)
				logger.Info("Replaying stored response", "key", key, "status", stored.StatusCode)
				c.Header("Idempotent-Replayed", "true")
				c.Data(stored.StatusCode, stored.ContentType, stored.Body)
				c.Abort()
				return
			case now.Sub(stored.LockedAt) < config.LockTimeout:
				config.record(path, outcomeConcurrent)
				middleware.AbortWithAppError(c, errors.ErrConflict("a request with this idempotency key is in progress"))
				return
			}
			// Stale lock of a request that never finished; take it over
			logger.Warn("Taking over stale idempotency lock", "key", key, "lockedAt", stored.LockedAt)
		}
		config.record(path, outcomeMiss)

		w := &recorder{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		status := w.Status()
		if status >= http.StatusInternalServerError {
			if err := config.Repository.Release(ctx, stored.ID); err != nil {
				logger.WithError(err).Error("Failed to release idempotency key", "key", key)
			}
			return
		}
		resp := Response{
			StatusCode:  status,
			ContentType: w.Header().Get("Content-Type"),
			Body:        w.body.Bytes(),
			CompletedAt: config.Now(),
		}
		if err := config.Repository.Complete(ctx, stored.ID, resp); err != nil {
			config.record(path, outcomeStorageError)
			logger.WithError(err).Error("Failed to store idempotent response", "key", key)
		}
	}
}

func (c *Config) record(path, outcome string) {
	if c.Metrics != nil {
		c.Metrics.RecordIdempotency(path, outcome)
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
