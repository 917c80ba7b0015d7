// Package breaker wraps remote store gateways in circuit breakers so a failing Supabase
// project fails requests fast instead of stacking timeouts.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/quire"
	"github.com/sony/gobreaker"
)

// Settings controls when a breaker opens and how long it stays open.
type Settings struct {
	// FailureRatio trips the breaker once this share of requests in an interval failed.
	FailureRatio float64
	// MinRequests is the number of requests an interval needs before the ratio is considered.
	MinRequests uint32
	// MaxRequests is how many trial requests a half-open breaker lets through.
	MaxRequests uint32
	// Interval is the closed-state window after which counts reset.
	Interval time.Duration
	// Timeout is how long the breaker stays open before going half-open.
	Timeout time.Duration
}

// DefaultSettings returns settings that tolerate sporadic errors but open on sustained failure.
func DefaultSettings() Settings {
	return Settings{
		FailureRatio: 0.6,
		MinRequests:  5,
		MaxRequests:  3,
		Interval:     30 * time.Second,
		Timeout:      30 * time.Second,
	}
}

// New builds a named breaker. Caller errors (not found, bad input, no echo, cancellation)
// do not count against the remote store.
func New(name string, s Settings) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= s.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: isSuccessful,
	})
}

func isSuccessful(err error) bool {
	switch {
	case err == nil,
		errors.Is(err, quire.ErrNotFound),
		errors.Is(err, quire.ErrInvalidInput),
		errors.Is(err, quire.ErrNoEcho),
		errors.Is(err, context.Canceled):
		return true
	}
	return false
}

func run[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	v, err := cb.Execute(func() (any, error) { return fn() })
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		var zero T
		return zero, fmt.Errorf("%s: %w", cb.Name(), err)
	}
	out, _ := v.(T)
	return out, err
}

type repo struct {
	next quire.RecordRepo
	cb   *gobreaker.CircuitBreaker
}

// Repo guards every RecordRepo call with cb.
func Repo(next quire.RecordRepo, cb *gobreaker.CircuitBreaker) quire.RecordRepo {
	return &repo{next: next, cb: cb}
}

func (r *repo) Insert(ctx context.Context, rec quire.FileRecord) (quire.FileRecord, error) {
	return run(r.cb, func() (quire.FileRecord, error) { return r.next.Insert(ctx, rec) })
}

func (r *repo) Get(ctx context.Context, scope quire.Scope, id uuid.UUID) (quire.FileRecord, error) {
	return run(r.cb, func() (quire.FileRecord, error) { return r.next.Get(ctx, scope, id) })
}

func (r *repo) List(ctx context.Context, q quire.ListQuery) (quire.ListResult, error) {
	return run(r.cb, func() (quire.ListResult, error) { return r.next.List(ctx, q) })
}

func (r *repo) Rename(ctx context.Context, scope quire.Scope, id uuid.UUID, name string) (quire.FileRecord, error) {
	return run(r.cb, func() (quire.FileRecord, error) { return r.next.Rename(ctx, scope, id, name) })
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID, ownerID string) (int64, error) {
	return run(r.cb, func() (int64, error) { return r.next.Delete(ctx, id, ownerID) })
}

func (r *repo) Exists(ctx context.Context, id uuid.UUID, ownerID string) (bool, error) {
	return run(r.cb, func() (bool, error) { return r.next.Exists(ctx, id, ownerID) })
}

func (r *repo) Lookup(ctx context.Context, id uuid.UUID) (quire.FileRecord, error) {
	return run(r.cb, func() (quire.FileRecord, error) { return r.next.Lookup(ctx, id) })
}

type storage struct {
	next quire.BlobStorage
	cb   *gobreaker.CircuitBreaker
}

// Storage guards every BlobStorage call with cb.
func Storage(next quire.BlobStorage, cb *gobreaker.CircuitBreaker) quire.BlobStorage {
	return &storage{next: next, cb: cb}
}

func (s *storage) Exists(ctx context.Context, p string) (bool, error) {
	return run(s.cb, func() (bool, error) { return s.next.Exists(ctx, p) })
}

func (s *storage) Read(ctx context.Context, p string) (quire.Blob, error) {
	return run(s.cb, func() (quire.Blob, error) { return s.next.Read(ctx, p) })
}

func (s *storage) Write(ctx context.Context, p string, content io.Reader, contentType string) (quire.SaveResult, error) {
	return run(s.cb, func() (quire.SaveResult, error) { return s.next.Write(ctx, p, content, contentType) })
}

func (s *storage) Delete(ctx context.Context, p string) error {
	_, err := run(s.cb, func() (struct{}, error) { return struct{}{}, s.next.Delete(ctx, p) })
	return err
}

func (s *storage) List(ctx context.Context, prefix string) ([]quire.BlobEntry, error) {
	return run(s.cb, func() ([]quire.BlobEntry, error) { return s.next.List(ctx, prefix) })
}
