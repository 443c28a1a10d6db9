package question

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store is the durable slot the repository snapshots into after every mutation.
type Store interface {
	Load(ctx context.Context) ([]Question, error)
	Save(ctx context.Context, questions []Question) error
}

// ErrCorruptSnapshot is returned by a Store whose slot holds data that cannot
// be decoded into questions. Open recovers from it with an empty collection.
var ErrCorruptSnapshot = errors.New("corrupt question snapshot")

// Op names the mutation carried by an Event.
type Op string

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpDeleted Op = "deleted"
)

// Event is delivered to subscribers after a mutation has been persisted.
type Event struct {
	Op       Op
	ID       string
	Snapshot []Question
}

// Options tunes repository behavior; zero values pick the defaults.
type Options struct {
	Now    func() time.Time
	NewID  func() string
	Logger zerolog.Logger
}

// Repository owns the authoritative, newest-first question collection.
type Repository struct {
	mu        sync.Mutex
	items     []Question
	store     Store
	now       func() time.Time
	newID     func() string
	logger    zerolog.Logger
	recovered bool

	// pending and delivering are guarded by mu.
	pending    []Event
	delivering bool

	subsMu      sync.RWMutex
	subscribers []subscription
	nextSub     int
}

type subscription struct {
	id int
	fn func(Event)
}

// Open loads the collection from store. A corrupt snapshot is logged and
// replaced by an empty collection; any other load error is returned.
func Open(ctx context.Context, store Store, opts Options) (*Repository, error) {
	r := &Repository{
		store:  store,
		now:    opts.Now,
		newID:  opts.NewID,
		logger: opts.Logger.With().Str("component", "question_repository").Logger(),
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.newID == nil {
		r.newID = uuid.NewString
	}

	items, err := store.Load(ctx)
	switch {
	case errors.Is(err, ErrCorruptSnapshot):
		r.logger.Warn().Err(err).Msg("stored questions unreadable, starting with an empty collection")
		r.recovered = true
		items = nil
	case err != nil:
		return nil, fmt.Errorf("load questions: %w", err)
	}
	if items == nil {
		items = []Question{}
	}
	r.items = cloneAll(items)
	r.logger.Info().Int("count", len(r.items)).Msg("questions loaded")
	return r, nil
}

// Recovered reports whether Open discarded a corrupt snapshot.
func (r *Repository) Recovered() bool {
	return r.recovered
}

// List returns a copy of the collection, newest first.
func (r *Repository) List(_ context.Context) []Question {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneAll(r.items)
}

// Get returns a copy of the question with id.
func (r *Repository) Get(_ context.Context, id string) (Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexOf(id)
	if idx < 0 {
		return Question{}, ErrNotFound
	}
	return r.items[idx].Clone(), nil
}

// Create stores a new question at the front of the collection.
func (r *Repository) Create(ctx context.Context, f Fields) (Question, error) {
	if err := f.Validate(); err != nil {
		return Question{}, err
	}

	r.mu.Lock()
	id := r.newID()
	for r.indexOf(id) >= 0 {
		id = r.newID()
	}
	created := Question{ID: id, CreatedAt: r.now().UTC()}
	created.apply(f)

	prev := r.items
	next := make([]Question, 0, len(prev)+1)
	next = append(next, created)
	next = append(next, prev...)

	if err := r.commit(ctx, prev, next); err != nil {
		r.mu.Unlock()
		return Question{}, err
	}
	r.publishLocked(Event{Op: OpCreated, ID: id})
	return created.Clone(), nil
}

// Update replaces the mutable fields of question id in place.
func (r *Repository) Update(ctx context.Context, id string, f Fields) (Question, error) {
	if err := f.Validate(); err != nil {
		return Question{}, err
	}

	r.mu.Lock()
	idx := r.indexOf(id)
	if idx < 0 {
		r.mu.Unlock()
		return Question{}, ErrNotFound
	}

	prev := r.items
	next := make([]Question, len(prev))
	copy(next, prev)
	updated := prev[idx].Clone()
	updated.apply(f)
	next[idx] = updated

	if err := r.commit(ctx, prev, next); err != nil {
		r.mu.Unlock()
		return Question{}, err
	}
	r.publishLocked(Event{Op: OpUpdated, ID: id})
	return updated.Clone(), nil
}

// Delete removes question id if present and persists either way.
// The returned bool reports whether a question was removed.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	prev := r.items
	next := make([]Question, 0, len(prev))
	for _, item := range prev {
		if item.ID != id {
			next = append(next, item)
		}
	}
	removed := len(next) != len(prev)

	if err := r.commit(ctx, prev, next); err != nil {
		r.mu.Unlock()
		return false, err
	}
	if !removed {
		r.mu.Unlock()
		return false, nil
	}
	r.publishLocked(Event{Op: OpDeleted, ID: id})
	return true, nil
}

// Topics returns the distinct topics of the current collection.
func (r *Repository) Topics(ctx context.Context) []string {
	return DistinctTopics(r.List(ctx))
}

// Filter returns the current collection narrowed by q.
func (r *Repository) Filter(ctx context.Context, q Query) []Question {
	return Filter(r.List(ctx), q)
}

// Statistics returns difficulty counts for the current collection.
func (r *Repository) Statistics(ctx context.Context) Statistics {
	return Stats(r.List(ctx))
}

// Subscribe registers fn for post-mutation events. Events arrive in mutation
// order, one at a time, in subscription order. fn may read or mutate the
// repository; events raised from inside fn are queued behind the current one.
// A mutation that overlaps a delivery already running on another goroutine
// returns once its event is queued. The returned func unsubscribes.
func (r *Repository) Subscribe(fn func(Event)) func() {
	r.subsMu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subscribers = append(r.subscribers, subscription{id: id, fn: fn})
	r.subsMu.Unlock()

	return func() {
		r.subsMu.Lock()
		defer r.subsMu.Unlock()
		for i, sub := range r.subscribers {
			if sub.id == id {
				r.subscribers = append(r.subscribers[:i:i], r.subscribers[i+1:]...)
				return
			}
		}
	}
}

// commit persists next and installs it, or leaves prev in place on failure.
// Caller holds r.mu.
func (r *Repository) commit(ctx context.Context, prev, next []Question) error {
	if err := r.store.Save(ctx, cloneAll(next)); err != nil {
		r.items = prev
		r.logger.Error().Err(err).Msg("save failed, in-memory change rolled back")
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	r.items = next
	return nil
}

// publishLocked queues ev and releases r.mu. The first publisher drains the
// queue; publishers arriving while a drain is running leave it to that drain.
func (r *Repository) publishLocked(ev Event) {
	ev.Snapshot = cloneAll(r.items)
	r.pending = append(r.pending, ev)
	if r.delivering {
		r.mu.Unlock()
		return
	}
	r.delivering = true
	r.mu.Unlock()

	for {
		r.mu.Lock()
		if len(r.pending) == 0 {
			r.delivering = false
			r.mu.Unlock()
			return
		}
		next := r.pending[0]
		r.pending[0] = Event{}
		r.pending = r.pending[1:]
		r.mu.Unlock()

		r.deliver(next)
	}
}

func (r *Repository) deliver(ev Event) {
	r.subsMu.RLock()
	subs := make([]func(Event), 0, len(r.subscribers))
	for _, sub := range r.subscribers {
		subs = append(subs, sub.fn)
	}
	r.subsMu.RUnlock()

	for _, fn := range subs {
		event := ev
		event.Snapshot = cloneAll(ev.Snapshot)
		fn(event)
	}
}

func (r *Repository) indexOf(id string) int {
	for i, item := range r.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
