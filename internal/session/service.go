package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/inamate/vecedit/internal/collab"
	"github.com/inamate/vecedit/internal/document"
	"github.com/inamate/vecedit/internal/editor"
	"github.com/inamate/vecedit/internal/engine"
	"github.com/inamate/vecedit/internal/input"
	"github.com/inamate/vecedit/internal/store"
	"github.com/inamate/vecedit/internal/typeid"
)

// Broadcaster pushes session messages to connected clients.
type Broadcaster interface {
	Broadcast(sessionID, typ string, payload any)
	CloseSession(sessionID string)
}

type Options struct {
	Editor           editor.Options
	AutosaveInterval time.Duration
	Logger           *slog.Logger
}

// Service keeps the open sessions and saves them to the store.
type Service struct {
	mu       sync.Mutex
	sessions map[string]*Session
	store    store.Store
	clients  Broadcaster
	opts     Options
	log      *slog.Logger
}

func NewService(st store.Store, clients Broadcaster, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Editor.Logger == nil {
		opts.Editor.Logger = opts.Logger
	}
	return &Service{
		sessions: make(map[string]*Session),
		store:    st,
		clients:  clients,
		opts:     opts,
		log:      opts.Logger,
	}
}

// Create opens a new session on doc; nil starts from an empty sheet.
func (s *Service) Create(ctx context.Context, doc *document.Document) (*Session, error) {
	if doc == nil {
		sheet := s.opts.Editor.Sheet
		doc = &document.Document{Sheet: document.Sheet{
			Width:      int(sheet.Width),
			Height:     int(sheet.Height),
			Background: "#ffffff",
		}}
	}
	if _, err := document.Decode(doc); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	data, err := doc.Marshal()
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	id := typeid.NewSessionID()
	if _, err := s.store.Save(ctx, id, data); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	sess, err := s.open(id, doc, true)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()
	s.log.Info("session created", "session", id, "figures", len(doc.Figures))
	return sess, nil
}

// open builds the engine for doc and starts its goroutine. A saved
// document starts clean.
func (s *Service) open(id string, doc *document.Document, saved bool) (*Session, error) {
	e := engine.New(s.opts.Editor)
	if err := e.Load(doc); err != nil {
		e.Close()
		return nil, err
	}
	if saved {
		e.MarkSaved(e.Revision())
	}
	if s.clients != nil {
		e.OnChange(func(c engine.Change) {
			s.clients.Broadcast(id, collab.TypeDocChange, c)
		})
	}
	return start(id, e, s.log), nil
}

// Get returns an open session, reopening it from its latest snapshot when
// it is not in memory.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	if err := typeid.Validate(id, typeid.PrefixSession); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}

	snap, err := s.store.Latest(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	doc, err := document.Parse(snap.Document)
	if err != nil {
		return nil, fmt.Errorf("load session %s version %d: %w", id, snap.Version, err)
	}
	sess, err := s.open(id, doc, true)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	s.sessions[id] = sess
	s.log.Info("session restored", "session", id, "version", snap.Version)
	return sess, nil
}

// Do looks the session up and runs fn on it.
func (s *Service) Do(ctx context.Context, id string, fn func(*engine.Engine) error) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return sess.Do(ctx, fn)
}

// Dispatch applies input events and returns the new revision.
func (s *Service) Dispatch(ctx context.Context, id string, events []input.Event) (int64, error) {
	var rev int64
	err := s.Do(ctx, id, func(e *engine.Engine) error {
		err := e.HandleEvents(events...)
		rev = e.Revision()
		return err
	})
	return rev, err
}

// Revision returns the session's model revision.
func (s *Service) Revision(ctx context.Context, id string) (int64, error) {
	var rev int64
	err := s.Do(ctx, id, func(e *engine.Engine) error {
		rev = e.Revision()
		return nil
	})
	return rev, err
}

// Document returns a copy of the session's document.
func (s *Service) Document(ctx context.Context, id string) (*document.Document, error) {
	var doc *document.Document
	err := s.Do(ctx, id, func(e *engine.Engine) error {
		doc = e.Document()
		return nil
	})
	return doc, err
}

// Save writes a snapshot when the session changed since the last one.
func (s *Service) Save(ctx context.Context, sess *Session) error {
	var (
		data  []byte
		rev   int64
		dirty bool
	)
	err := sess.Do(ctx, func(e *engine.Engine) error {
		if dirty = e.Dirty(); !dirty {
			return nil
		}
		rev = e.Revision()
		var err error
		data, err = e.Document().Marshal()
		return err
	})
	if err != nil || !dirty {
		return err
	}

	snap, err := s.store.Save(ctx, sess.ID, data)
	if err != nil {
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	err = sess.Do(ctx, func(e *engine.Engine) error {
		e.MarkSaved(rev)
		return nil
	})
	s.log.Debug("session saved", "session", sess.ID, "version", snap.Version, "revision", rev)
	return err
}

// Close saves a session, stops it and disconnects its clients.
func (s *Service) Close(ctx context.Context, id string) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	saveErr := s.Save(ctx, sess)

	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	sess.stop()
	if s.clients != nil {
		s.clients.CloseSession(id)
	}
	s.log.Info("session closed", "session", id)
	return saveErr
}

// Delete closes a session and drops its snapshots.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.Close(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		s.log.Warn("save before delete failed", "session", id, "error", err)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Open returns the IDs of sessions held in memory.
func (s *Service) Open() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}

func (s *Service) snapshot() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out
}

// SaveAll saves every dirty session and returns the first error.
func (s *Service) SaveAll(ctx context.Context) error {
	var errs []error
	for _, sess := range s.snapshot() {
		if err := s.Save(ctx, sess); err != nil && !errors.Is(err, ErrClosed) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Run autosaves dirty sessions until ctx ends.
func (s *Service) Run(ctx context.Context) {
	if s.opts.AutosaveInterval <= 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(s.opts.AutosaveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := s.SaveAll(ctx); err != nil {
				s.log.Error("autosave", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Shutdown saves and stops every session.
func (s *Service) Shutdown(ctx context.Context) error {
	err := s.SaveAll(ctx)
	for _, sess := range s.snapshot() {
		sess.stop()
	}
	s.mu.Lock()
	clear(s.sessions)
	s.mu.Unlock()
	s.log.Info("sessions saved", "error", err)
	return err
}
