// Package session runs editing sessions: one engine per session, driven by
// its own goroutine, persisted to a store and mirrored to websocket clients.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/inamate/vecedit/internal/engine"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrClosed   = errors.New("session closed")
)

// Session owns one engine. Every access goes through Do, which runs on the
// session goroutine.
type Session struct {
	ID      string
	Created time.Time

	engine *engine.Engine
	reqs   chan request
	quit   chan struct{}
	done   chan struct{}
	log    *slog.Logger
}

type request struct {
	ctx  context.Context
	fn   func(*engine.Engine) error
	errc chan error
}

func start(id string, e *engine.Engine, log *slog.Logger) *Session {
	s := &Session{
		ID:      id,
		Created: time.Now().UTC(),
		engine:  e,
		reqs:    make(chan request),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		log:     log.With("session", id),
	}
	go s.run()
	return s
}

func (s *Session) run() {
	defer close(s.done)
	for {
		select {
		case req := <-s.reqs:
			req.errc <- s.apply(req)
		case <-s.quit:
			s.engine.Close()
			s.log.Debug("session stopped")
			return
		}
	}
}

func (s *Session) apply(req request) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("session operation panicked", "panic", r)
			err = fmt.Errorf("session %s: operation failed: %v", s.ID, r)
		}
	}()
	ed := s.engine.Editor()
	ed.SetContext(req.ctx)
	defer ed.SetContext(context.Background())
	return req.fn(s.engine)
}

// Do runs fn on the session goroutine and returns its error. It gives up
// when ctx ends or the session stops.
func (s *Session) Do(ctx context.Context, fn func(*engine.Engine) error) error {
	req := request{ctx: ctx, fn: fn, errc: make(chan error, 1)}
	select {
	case s.reqs <- req:
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) stop() {
	select {
	case <-s.quit:
	default:
		close(s.quit)
	}
	<-s.done
}
