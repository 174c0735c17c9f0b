package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"todo/internal/store"
)

// DefaultKey is the store key the collection is kept under.
const DefaultKey = "todos"

// maxIDAttempts bounds id regeneration when a generator repeats itself.
const maxIDAttempts = 10

var (
	// ErrTextTooLong is returned by Add for text over MaxTextLength characters.
	ErrTextTooLong = errors.New("task text too long")

	// ErrPersist wraps a failed store write. The in-memory change is kept.
	ErrPersist = errors.New("persist task collection")
)

// Option configures a Manager.
type Option func(*Manager)

// WithKey overrides the store key.
func WithKey(key string) Option {
	return func(m *Manager) {
		if key != "" {
			m.key = key
		}
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(log logrus.FieldLogger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithClock sets the time source for createdAt.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithIDGenerator sets the task id generator.
func WithIDGenerator(newID func() string) Option {
	return func(m *Manager) {
		if newID != nil {
			m.newID = newID
		}
	}
}

// Manager owns the ordered task collection and mirrors it to a store.
// Every successful mutation writes the complete collection before returning.
type Manager struct {
	mu    sync.Mutex
	store store.Store
	key   string
	log   logrus.FieldLogger
	now   func() time.Time
	newID func() string
	tasks []Task
}

// Open creates a Manager and rehydrates the collection from st.
//
// A missing key starts an empty collection. A value that cannot be read or
// decoded is logged and also starts an empty collection; the stored value
// is left as is until the next successful mutation overwrites it.
func Open(ctx context.Context, st store.Store, opts ...Option) *Manager {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	m := &Manager{
		store: st,
		key:   DefaultKey,
		log:   discard,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(m)
	}
	m.rehydrate(ctx)
	return m
}

func (m *Manager) rehydrate(ctx context.Context) {
	log := m.log.WithField("key", m.key)
	if m.store == nil {
		log.Warn("no task store configured, starting empty")
		return
	}

	value, ok, err := m.store.Get(ctx, m.key)
	if err != nil {
		log.WithError(err).Warn("failed to read task collection, starting empty")
		return
	}
	if !ok {
		log.Debug("no stored task collection")
		return
	}

	tasks, err := DecodeTasks(value)
	if err != nil {
		log.WithError(err).Warn("failed to parse stored task collection, starting empty")
		return
	}
	m.tasks = tasks
	log.WithField("count", len(tasks)).Debug("loaded task collection")
}

// Tasks returns a copy of the collection, newest first.
func (m *Manager) Tasks() []Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Task, len(m.tasks))
	copy(out, m.tasks)
	return out
}

// Find returns the task with the given id.
func (m *Manager) Find(id string) (Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.indexOf(id); i >= 0 {
		return m.tasks[i], true
	}
	return Task{}, false
}

// Counts returns counts derived from the collection.
func (m *Manager) Counts() Counts {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := Counts{Total: len(m.tasks)}
	for _, t := range m.tasks {
		if t.Completed {
			c.Completed++
		}
	}
	c.Active = c.Total - c.Completed
	return c
}

// Add trims text and prepends a new task.
// Empty text is a no-op (ok=false, nil error).
func (m *Manager) Add(ctx context.Context, text string) (Task, bool, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Task{}, false, nil
	}
	if n := utf8.RuneCountInString(text); n > MaxTextLength {
		return Task{}, false, fmt.Errorf("%w: %d characters (max %d)", ErrTextTooLong, n, MaxTextLength)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := m.uniqueID()
	if err != nil {
		return Task{}, false, err
	}
	task := Task{
		ID:        id,
		Text:      text,
		CreatedAt: m.now().UTC().Truncate(time.Millisecond),
	}

	tasks := make([]Task, 0, len(m.tasks)+1)
	tasks = append(tasks, task)
	m.tasks = append(tasks, m.tasks...)

	return task, true, m.persist(ctx)
}

// Toggle flips the completed flag of the task with the given id.
func (m *Manager) Toggle(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return false, nil
	}
	m.tasks[i].Completed = !m.tasks[i].Completed
	return true, m.persist(ctx)
}

// Delete removes the task with the given id.
func (m *Manager) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return false, nil
	}
	tasks := make([]Task, 0, len(m.tasks)-1)
	tasks = append(tasks, m.tasks[:i]...)
	m.tasks = append(tasks, m.tasks[i+1:]...)
	return true, m.persist(ctx)
}

// ClearCompleted removes every completed task, keeping the order of the rest.
func (m *Manager) ClearCompleted(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := make([]Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		if !t.Completed {
			kept = append(kept, t)
		}
	}
	removed := len(m.tasks) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	m.tasks = kept
	return removed, m.persist(ctx)
}

func (m *Manager) indexOf(id string) int {
	for i, t := range m.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (m *Manager) uniqueID() (string, error) {
	for range maxIDAttempts {
		id := m.newID()
		if id != "" && m.indexOf(id) < 0 {
			return id, nil
		}
	}
	return "", errors.New("could not generate a unique task id")
}

// persist writes the full collection. Callers hold m.mu.
func (m *Manager) persist(ctx context.Context) error {
	log := m.log.WithFields(logrus.Fields{"key": m.key, "count": len(m.tasks)})

	if m.store == nil {
		log.Warn("no task store configured, change not persisted")
		return fmt.Errorf("%w: %w", ErrPersist, store.ErrNotConfigured)
	}

	value, err := EncodeTasks(m.tasks)
	if err != nil {
		log.WithError(err).Warn("failed to encode task collection")
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if err := m.store.Set(ctx, m.key, value); err != nil {
		log.WithError(err).Warn("failed to write task collection")
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}

	log.Debug("persisted task collection")
	return nil
}

var _ Service = (*Manager)(nil)
