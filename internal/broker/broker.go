// Copyright (c) 2026 ToeiRei
// AllSQLAdmin - database credential vault and connection broker
// This source code is licensed under the MIT license found in the LICENSE file.

// Package broker owns the single active database session. At most one
// session is current at a time; opening a new one closes its predecessor,
// and a failed open leaves the broker exactly as it was.
package broker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/uptrace/bun"

	"github.com/toeirei/allsqladmin/internal/backend"
	"github.com/toeirei/allsqladmin/internal/logging"
	"github.com/toeirei/allsqladmin/internal/profile"
	"github.com/toeirei/allsqladmin/internal/security"
)

// sqlOpenFunc allows tests to override database opening behavior.
var sqlOpenFunc = sql.Open

// ErrNotConnected is returned by operations that need a session when none
// is open.
var ErrNotConnected = errors.New("not connected to a database")

// ConnectionError reports a failed connection attempt. Err carries the
// driver's message unchanged.
type ConnectionError struct {
	Backend backend.Kind
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot connect to %s: %v", e.Backend, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Session is one live connection wrapped in a *bun.DB.
type Session struct {
	dialect  backend.Dialect
	db       *bun.DB
	host     string
	database string
	opened   time.Time

	closeOnce sync.Once
	closeErr  error
	closed    atomic.Bool
}

// Kind is the backend family of the session.
func (s *Session) Kind() backend.Kind { return s.dialect.Kind() }

// Dialect returns the capabilities of the session's backend.
func (s *Session) Dialect() backend.Dialect { return s.dialect }

// DB is the underlying handle.
func (s *Session) DB() *bun.DB { return s.db }

// Label describes the session for logs and prompts.
func (s *Session) Label() string {
	return fmt.Sprintf("%s %s/%s", s.dialect.Kind(), s.host, s.database)
}

// Close releases the connection. Calling it more than once is harmless.
// A broker whose current session was closed this way reports itself
// disconnected.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.closeErr = s.db.Close()
		logging.Debugf("closed session %s after %s", s.Label(), time.Since(s.opened).Round(time.Millisecond))
	})
	return s.closeErr
}

// Broker serializes session lifecycle and statement execution.
type Broker struct {
	mu             sync.Mutex
	cur            *Session
	connectTimeout time.Duration
}

// Option configures a Broker.
type Option func(*Broker)

// WithConnectTimeout bounds the open+probe step when the caller's context
// has no deadline of its own. Zero disables the bound.
func WithConnectTimeout(d time.Duration) Option {
	return func(b *Broker) { b.connectTimeout = d }
}

// New returns a disconnected Broker.
func New(opts ...Option) *Broker {
	b := &Broker{}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Open connects to a backend of the given kind.
func (b *Broker) Open(ctx context.Context, kind backend.Kind, p backend.Params) (*Session, error) {
	d, err := backend.Lookup(kind)
	if err != nil {
		return nil, &ConnectionError{Backend: kind, Err: err}
	}
	return b.OpenDialect(ctx, d, p)
}

// OpenProfile connects using a stored profile and its decrypted password.
func (b *Broker) OpenProfile(ctx context.Context, p profile.Profile, password security.Secret) (*Session, error) {
	return b.Open(ctx, p.Backend, p.Params(password))
}

// OpenDialect connects with an explicit dialect. On success the new session
// becomes current and the previous one is closed.
func (b *Broker) OpenDialect(ctx context.Context, d backend.Dialect, p backend.Params) (*Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, err := b.connect(ctx, d, p)
	if err != nil {
		logging.Warnf("connect to %s %s/%s failed: %v", d.Kind(), p.Host, p.Database, err)
		return nil, &ConnectionError{Backend: d.Kind(), Err: err}
	}

	prev := b.current()
	b.cur = s
	if prev != nil {
		logging.Infof("session %s superseded by %s", prev.Label(), s.Label())
		if err := prev.Close(); err != nil {
			logging.Warnf("close superseded session: %v", err)
		}
	}
	logging.Infof("connected to %s", s.Label())
	return s, nil
}

func (b *Broker) connect(ctx context.Context, d backend.Dialect, p backend.Params) (*Session, error) {
	dsn, err := d.DSN(p)
	if err != nil {
		return nil, err
	}
	sqlDB, err := sqlOpenFunc(d.DriverName(), dsn)
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	db := bun.NewDB(sqlDB, d.BunDialect())

	if _, ok := ctx.Deadline(); !ok && b.connectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.connectTimeout)
		defer cancel()
	}
	var one any
	if err := db.QueryRowContext(ctx, d.ProbeQuery()).Scan(&one); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Session{
		dialect:  d,
		db:       db,
		host:     p.Host,
		database: p.Database,
		opened:   time.Now(),
	}, nil
}

// Current returns the open session or ErrNotConnected.
func (b *Broker) Current() (*Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cur := b.current()
	if cur == nil {
		return nil, ErrNotConnected
	}
	return cur, nil
}

// current returns the live session, dropping one that was closed directly.
// Callers hold b.mu.
func (b *Broker) current() *Session {
	if b.cur != nil && b.cur.closed.Load() {
		logging.Debugf("session %s was closed outside the broker", b.cur.Label())
		b.cur = nil
	}
	return b.cur
}

// Connected reports whether a session is open.
func (b *Broker) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current() != nil
}

// Close closes the current session, if any. Closing a disconnected broker
// is a no-op.
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	cur := b.current()
	if cur == nil {
		return nil
	}
	b.cur = nil
	return cur.Close()
}

// Do runs fn against the current session while holding the broker lock, so
// no open or close can interleave with it.
func (b *Broker) Do(ctx context.Context, fn func(ctx context.Context, s *Session) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	cur := b.current()
	if cur == nil {
		return ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, cur)
}
