// Package idempotency replays the stored answer of a mutating request that is
// retried with the same Idempotency-Key, so a double submit of an action runs
// it once.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"
	"time"
)

const (
	HeaderKey        = "Idempotency-Key"
	DefaultMaxKeyLen = 255
)

var (
	ErrKeyInvalid = errors.New("invalid idempotency key format")
	ErrKeyTooLong = errors.New("idempotency key is too long")
)

var keyPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Record is one stored key. A record without CompletedAt is in flight.
type Record struct {
	ID          string     `bson:"_id"`
	Key         string     `bson:"key"`
	UserID      string     `bson:"userId"`
	Fingerprint string     `bson:"fingerprint"`
	LockedAt    time.Time  `bson:"lockedAt"`
	CompletedAt *time.Time `bson:"completedAt,omitempty"`
	StatusCode  int        `bson:"statusCode,omitempty"`
	Body        []byte     `bson:"body,omitempty"`
	ContentType string     `bson:"contentType,omitempty"`
	ExpiresAt   time.Time  `bson:"expiresAt"`
}

// IsCompleted reports whether the answer is stored
func (r *Record) IsCompleted() bool {
	return r.CompletedAt != nil
}

// Repository stores records. Acquire must be atomic: it inserts rec unless a
// record with the same user and key exists, and returns whichever is stored.
type Repository interface {
	Acquire(ctx context.Context, rec *Record) (stored *Record, created bool, err error)
	Complete(ctx context.Context, id string, resp Response) error
	Release(ctx context.Context, id string) error
}

// Response is the answer stored for replay
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
	CompletedAt time.Time
}

// ValidateKey checks the key's alphabet and length
func ValidateKey(key string, maxLen int) error {
	if len(key) > maxLen {
		return ErrKeyTooLong
	}
	if !keyPattern.MatchString(key) {
		return ErrKeyInvalid
	}
	return nil
}

// Fingerprint identifies a request by method, path and body
func Fingerprint(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(strings.ToUpper(method) + " " + path + "\n"))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
