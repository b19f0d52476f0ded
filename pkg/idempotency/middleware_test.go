package idempotency

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/logging"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/middleware"
)

type memoryRepository struct {
	mu      sync.Mutex
	records map[string]*Record
	err     error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{records: map[string]*Record{}}
}

func (r *memoryRepository) Acquire(_ context.Context, rec *Record) (*Record, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, false, r.err
	}
	k := rec.UserID + "/" + rec.Key
	if stored, ok := r.records[k]; ok {
		copied := *stored
		return &copied, false, nil
	}
	copied := *rec
	r.records[k] = &copied
	return rec, true, nil
}

func (r *memoryRepository) Complete(_ context.Context, id string, resp Response) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ID == id {
			rec.StatusCode = resp.StatusCode
			rec.ContentType = resp.ContentType
			rec.Body = append([]byte(nil), resp.Body...)
			rec.CompletedAt = &resp.CompletedAt
		}
	}
	return nil
}

func (r *memoryRepository) Release(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, rec := range r.records {
		if rec.ID == id && !rec.IsCompleted() {
			delete(r.records, k)
		}
	}
	return nil
}

type harness struct {
	repo   *memoryRepository
	router *gin.Engine
	calls  int
	status int
	now    time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := &harness{
		repo:   newMemoryRepository(),
		status: http.StatusOK,
		now:    time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC),
	}
	config := DefaultConfig(h.repo, nil, logging.Nop())
	config.Now = func() time.Time { return h.now }

	h.router = gin.New()
	h.router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, c.GetHeader("X-User-ID"))
		c.Next()
	}, Middleware(config))
	h.router.POST("/actions/:name", func(c *gin.Context) {
		h.calls++
		c.JSON(h.status, gin.H{"call": h.calls})
	})
	return h
}

func (h *harness) post(user, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/actions/cancelOrder", strings.NewReader(body))
	req.Header.Set("X-User-ID", user)
	if key != "" {
		req.Header.Set(HeaderKey, key)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func TestMiddleware(t *testing.T) {
	t.Run("retry replays the first answer", func(t *testing.T) {
		h := newHarness(t)

		first := h.post("u-1", "key-1", `{"ids":["o-1"]}`)
		second := h.post("u-1", "key-1", `{"ids":["o-1"]}`)

		require.Equal(t, http.StatusOK, second.Code)
		assert.Equal(t, 1, h.calls)
		assert.JSONEq(t, first.Body.String(), second.Body.String())
		assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	})

	t.Run("requests without a key are not tracked", func(t *testing.T) {
		h := newHarness(t)

		h.post("u-1", "", `{}`)
		h.post("u-1", "", `{}`)

		assert.Equal(t, 2, h.calls)
		assert.Empty(t, h.repo.records)
	})

	t.Run("keys are scoped per user", func(t *testing.T) {
		h := newHarness(t)

		h.post("u-1", "key-1", `{}`)
		h.post("u-2", "key-1", `{}`)

		assert.Equal(t, 2, h.calls)
	})

	t.Run("different body with the same key", func(t *testing.T) {
		h := newHarness(t)

		h.post("u-1", "key-1", `{"ids":["o-1"]}`)
		w := h.post("u-1", "key-1", `{"ids":["o-2"]}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, 1, h.calls)
	})

	t.Run("server errors are not stored", func(t *testing.T) {
		h := newHarness(t)
		h.status = http.StatusServiceUnavailable

		h.post("u-1", "key-1", `{}`)
		h.status = http.StatusOK
		w := h.post("u-1", "key-1", `{}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 2, h.calls)
	})

	t.Run("in-flight key is a conflict until the lock goes stale", func(t *testing.T) {
		h := newHarness(t)
		h.repo.records["u-1/key-1"] = &Record{
			ID: "r-1", Key: "key-1", UserID: "u-1",
			Fingerprint: Fingerprint(http.MethodPost, "/actions/cancelOrder", []byte(`{}`)),
			LockedAt:    h.now,
		}

		w := h.post("u-1", "key-1", `{}`)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, 0, h.calls)

		h.now = h.now.Add(5 * time.Minute)
		w = h.post("u-1", "key-1", `{}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, h.calls)
		assert.True(t, h.repo.records["u-1/key-1"].IsCompleted())
	})

	t.Run("malformed key", func(t *testing.T) {
		h := newHarness(t)

		w := h.post("u-1", "bad key!", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, 0, h.calls)
	})

	t.Run("storage failure", func(t *testing.T) {
		h := newHarness(t)
		h.repo.err = errors.New("connection refused")

		w := h.post("u-1", "key-1", `{}`)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, 0, h.calls)
	})
}

func TestValidateKey(t *testing.T) {
	assert.NoError(t, ValidateKey("550e8400-e29b-41d4-a716-446655440000", DefaultMaxKeyLen))
	assert.ErrorIs(t, ValidateKey("a b", DefaultMaxKeyLen), ErrKeyInvalid)
	assert.ErrorIs(t, ValidateKey(strings.Repeat("a", 10), 5), ErrKeyTooLong)
}
