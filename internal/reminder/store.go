package reminder

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store holds the reminder collection in memory, backed by a single JSON file.
//
// Every exported method runs under one mutex for the whole read, compute and persist
// sequence, so interactive edits and scheduler sweeps never interleave. Mutations also
// hold an advisory lock on <path>.lock and first reload the file if another process
// replaced it, so several processes can share one reminders file.
type Store struct {
	mu        sync.Mutex
	path      string
	reminders []Reminder
	dirty     bool        // memory is ahead of the file after a failed sweep write
	seen      os.FileInfo // file as of the last load or save; nil if absent

	now   func() time.Time
	newID func() string
	log   *zap.SugaredLogger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used to validate due times.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(s *Store) { s.log = log }
}

// WithIDGenerator overrides how new reminder ids are produced.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// NewStore creates an empty store bound to path without touching the file.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path:  path,
		now:   time.Now,
		newID: func() string { return uuid.Must(uuid.NewV7()).String() },
		log:   zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "store")
	return s
}

// Open creates a store and loads path. A malformed file is moved aside to
// <path>.corrupt-<timestamp> and the store starts empty; any other load failure is
// returned.
func Open(path string, opts ...Option) (*Store, error) {
	s := NewStore(path, opts...)

	err := s.Load()
	if err == nil {
		return s, nil
	}

	var perr *PersistenceError
	if !errors.As(err, &perr) || !perr.Malformed() {
		return nil, err
	}

	backup := fmt.Sprintf("%s.corrupt-%s", path, s.now().Format("20060102150405"))
	if renameErr := os.Rename(path, backup); renameErr != nil {
		return nil, fmt.Errorf("%w (and failed to move it aside: %v)", err, renameErr)
	}
	s.log.Warnw("reminders file is malformed, starting empty",
		"path", path, "backup", backup, "error", err)
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load replaces the in-memory collection with the file contents.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

// Save writes the whole collection to the file.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := lockFile(s.lockPath())
	if err != nil {
		return &PersistenceError{Op: "lock", Path: s.path, Err: err}
	}
	defer unlock()

	return s.commit(s.reminders)
}

// Add validates in, appends a new reminder and persists the collection.
func (s *Store) Add(in Input) (Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in, err := s.validate(in)
	if err != nil {
		return Reminder{}, err
	}

	unlock, err := s.acquire()
	if err != nil {
		return Reminder{}, err
	}
	defer unlock()

	r := Reminder{
		ID:          s.newID(),
		Description: in.Description,
		DueAt:       in.DueAt,
		Repeat:      in.Repeat,
	}

	next := append(slices.Clone(s.reminders), r)
	if err := s.commit(next); err != nil {
		return Reminder{}, err
	}

	s.log.Infow("reminder added", "id", r.ID, "due_at", FormatTime(r.DueAt), "repeat", r.Repeat)
	return r, nil
}

// List returns a snapshot of all reminders in insertion order.
func (s *Store) List() []Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshOrWarn()
	return slices.Clone(s.reminders)
}

// Get returns a single reminder by id.
func (s *Store) Get(id string) (Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshOrWarn()

	i := s.indexOf(id)
	if i < 0 {
		return Reminder{}, &NotFoundError{ID: id}
	}
	return s.reminders[i], nil
}

// Update re-validates in and replaces the fields of the reminder with the given id.
func (s *Store) Update(id string, in Input) (Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.acquire()
	if err != nil {
		return Reminder{}, err
	}
	defer unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Reminder{}, &NotFoundError{ID: id}
	}

	in, err = s.validate(in)
	if err != nil {
		return Reminder{}, err
	}

	next := slices.Clone(s.reminders)
	next[i].Description = in.Description
	next[i].DueAt = in.DueAt
	next[i].Repeat = in.Repeat

	if err := s.commit(next); err != nil {
		return Reminder{}, err
	}

	s.log.Infow("reminder updated", "id", id, "due_at", FormatTime(in.DueAt), "repeat", in.Repeat)
	return next[i], nil
}

// Remove deletes the reminder with the given id.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.acquire()
	if err != nil {
		return err
	}
	defer unlock()

	i := s.indexOf(id)
	if i < 0 {
		return &NotFoundError{ID: id}
	}

	next := slices.Delete(slices.Clone(s.reminders), i, i+1)
	if err := s.commit(next); err != nil {
		return err
	}

	s.log.Infow("reminder removed", "id", id)
	return nil
}

// Sweep fires every reminder due at or before now. Recurring reminders advance by one
// period, others are dropped. The resulting collection is kept even when persisting it
// fails; the error is returned so the caller can retry on its next pass.
func (s *Store) Sweep(now time.Time) ([]Fired, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer unlock()

	var fired []Fired
	next := make([]Reminder, 0, len(s.reminders))
	for _, r := range s.reminders {
		if r.DueAt.After(now) {
			next = append(next, r)
			continue
		}

		ev := Fired{
			ID:          r.ID,
			Description: r.Description,
			DueAt:       r.DueAt,
			FiredAt:     now,
			Repeat:      r.Repeat,
		}
		if due, ok := r.Repeat.Next(r.DueAt); ok {
			r.DueAt = due
			ev.Next = due
			next = append(next, r)
		}
		fired = append(fired, ev)
	}

	if len(fired) == 0 && !s.dirty {
		return nil, nil
	}

	s.reminders = next
	if err := s.commit(next); err != nil {
		s.dirty = true
		return fired, err
	}
	return fired, nil
}

// commit persists next and swaps it in only when the write succeeded.
func (s *Store) commit(next []Reminder) error {
	if err := writeFile(s.path, next); err != nil {
		return err
	}
	s.reminders = next
	s.dirty = false
	s.seen = s.stat()
	return nil
}

func (s *Store) lockPath() string {
	return s.path + ".lock"
}

// acquire takes the cross-process lock and brings memory up to date with the file.
// The returned func releases the lock.
func (s *Store) acquire() (func(), error) {
	unlock, err := lockFile(s.lockPath())
	if err != nil {
		return nil, &PersistenceError{Op: "lock", Path: s.path, Err: err}
	}
	if err := s.refresh(); err != nil {
		unlock()
		return nil, err
	}
	return unlock, nil
}

// refresh reloads the file when it was created, replaced or removed since this store
// last read or wrote it.
func (s *Store) refresh() error {
	info, err := os.Stat(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if s.seen == nil {
			return nil
		}
		s.log.Infow("reminders file removed externally, starting empty", "path", s.path)
		s.reminders = nil
		s.seen = nil
		s.dirty = false
		return nil
	case err != nil:
		return &PersistenceError{Op: "read", Path: s.path, Err: err}
	case s.seen != nil && os.SameFile(s.seen, info) &&
		s.seen.ModTime().Equal(info.ModTime()) && s.seen.Size() == info.Size():
		return nil
	}

	if s.dirty {
		s.log.Warnw("reminders file changed externally while unsaved sweep results were pending; using the file",
			"path", s.path)
	}
	return s.load()
}

func (s *Store) refreshOrWarn() {
	if err := s.refresh(); err != nil {
		s.log.Warnw("could not reload reminders file, serving cached reminders", "path", s.path, "error", err)
	}
}

func (s *Store) load() error {
	info := s.stat()
	reminders, err := readFile(s.path, s.newID)
	if err != nil {
		return err
	}
	s.reminders = reminders
	s.dirty = false
	s.seen = info
	s.log.Debugw("loaded reminders", "path", s.path, "count", len(reminders))
	return nil
}

func (s *Store) stat() os.FileInfo {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil
	}
	return info
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.reminders, func(r Reminder) bool { return r.ID == id })
}

func (s *Store) validate(in Input) (Input, error) {
	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" {
		return in, &ValidationError{Field: "description", Reason: "must not be empty"}
	}
	if in.DueAt.IsZero() {
		return in, &ValidationError{Field: "due_at", Reason: "is required"}
	}
	if !in.DueAt.After(s.now()) {
		return in, &ValidationError{Field: "due_at", Reason: "must be in the future"}
	}

	repeat, err := ParseRepeat(string(in.Repeat))
	if err != nil {
		return in, &ValidationError{Field: "repeat", Reason: err.Error()}
	}
	in.Repeat = repeat
	in.DueAt = truncateMinute(in.DueAt)
	return in, nil
}
