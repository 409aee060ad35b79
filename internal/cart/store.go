package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

// Store is the authoritative in-memory line collection for one cart,
// mirrored to Storage after every mutation. Persistence failures are logged
// and swallowed; the in-memory state stays authoritative for the session.
type Store struct {
	mu       sync.Mutex
	lines    []Line
	storage  Storage
	key      string
	log      logrus.FieldLogger
	onChange []func()
}

// NewStore builds a store seeded from whatever Storage holds under key.
// Absent or unreadable persisted data is an empty cart, never an error.
func NewStore(ctx context.Context, storage Storage, key string, log logrus.FieldLogger) *Store {
	s := &Store{storage: storage, key: key, log: log}

	lines, err := storage.Load(ctx, key)
	switch {
	case err == nil:
		s.lines = lines
	case errors.Is(err, ErrNotFound):
	default:
		log.WithError(err).WithField("key", key).Warn("cart load failed, starting empty")
	}
	return s
}

// Subscribe registers a callback invoked after every mutation.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// AddItem adds quantity of the referenced catalog item, merging with any
// existing line for the same product and trimmed notes. Quantities that
// round to zero or below are ignored.
func (s *Store) AddItem(ctx context.Context, ref CatalogRef, quantity float64) {
	if roundQty(quantity) <= 0 {
		return
	}
	s.apply(ctx, func(lines []Line) []Line {
		return addLine(lines, ref, quantity)
	})
}

func (s *Store) RemoveItem(ctx context.Context, lineID string) {
	s.apply(ctx, func(lines []Line) []Line {
		return removeLine(lines, lineID)
	})
}

// UpdateQuantity sets the line's quantity to the value rounded to one
// decimal; zero or below removes the line. Unknown ids are a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, lineID string, quantity float64) {
	s.apply(ctx, func(lines []Line) []Line {
		return setQuantity(lines, lineID, quantity)
	})
}

func (s *Store) UpdateNotes(ctx context.Context, lineID, notes string) {
	s.apply(ctx, func(lines []Line) []Line {
		return setNotes(lines, lineID, notes)
	})
}

func (s *Store) Clear(ctx context.Context) {
	s.apply(ctx, func([]Line) []Line {
		return nil
	})
}

// Lines returns a copy of the collection in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// TotalCount is the sum of all quantities, recomputed on every read.
func (s *Store) TotalCount() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, l := range s.lines {
		total += l.Quantity
	}
	return total
}

// TotalPrice is the exact sum of unitPrice x quantity over all lines, with
// no per-line rounding.
func (s *Store) TotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, l := range s.lines {
		total += float64(l.UnitPrice) * l.Quantity
	}
	return total
}

func (s *Store) apply(ctx context.Context, reduce func([]Line) []Line) {
	s.mu.Lock()
	s.lines = reduce(s.lines)
	lines := make([]Line, len(s.lines))
	copy(lines, s.lines)
	subs := s.onChange
	s.mu.Unlock()

	if err := s.storage.Save(ctx, s.key, lines); err != nil {
		s.log.WithError(err).WithField("key", s.key).Warn("cart save failed")
	}
	for _, fn := range subs {
		fn()
	}
}
