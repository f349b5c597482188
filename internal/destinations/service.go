// Package destinations owns the live destination collection and keeps the
// record store in sync with every mutation.
package destinations

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"wanderlist/internal/model"
)

// Store is the persistence the service writes through.
type Store interface {
	Load(ctx context.Context) []model.Destination
	Save(ctx context.Context, list []model.Destination) error
	NewID() string
}

// Confirm is asked before a destination is removed.
type Confirm func(d model.Destination) bool

// Confirmed approves every removal. Use it once the user has already agreed.
func Confirmed(model.Destination) bool { return true }

// Service holds the collection in insertion order.
type Service struct {
	mu      sync.Mutex
	store   Store
	log     *slog.Logger
	now     func() time.Time
	items   []model.Destination
	warning error
}

// NewService loads the collection from st. A nil logger uses slog.Default().
func NewService(ctx context.Context, st Store, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	s := &Service{
		store: st,
		log:   log,
		now:   time.Now,
	}
	for _, d := range st.Load(ctx) {
		s.items = append(s.items, d.Clone())
	}
	return s
}

// List returns a copy of the collection in insertion order.
func (s *Service) List() []model.Destination {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// GetByID returns the first destination with id.
func (s *Service) GetByID(id string) (model.Destination, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i].Clone(), true
	}
	return model.Destination{}, false
}

// Add validates data, assigns identity and creation time, appends the new
// destination and persists the collection.
func (s *Service) Add(ctx context.Context, data model.NewDestination) (model.Destination, error) {
	if err := data.Validate(); err != nil {
		return model.Destination{}, err
	}

	d := model.Destination{
		Name:        data.Name,
		Category:    data.Category,
		Notes:       data.Notes,
		Rating:      data.Rating,
		ImageBase64: data.ImageBase64,
		ImageURL:    data.ImageURL,
		AITips:      data.AITips,
		Extra:       data.Extra,
	}
	if d.Rating == 0 {
		d.Rating = model.DefaultRating
	}
	if d.ImageBase64 != "" {
		d.ImageURL = ""
	}
	d = d.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	d.ID = s.uniqueID()
	d.CreatedAt = s.now().UnixMilli()
	s.items = append(s.items, d)
	s.persist(ctx)

	s.log.Debug("destination added", "id", d.ID, "name", d.Name)
	return d.Clone(), nil
}

// Update merges patch over the destination with id. found is false, and
// nothing changes, when id is unknown.
func (s *Service) Update(ctx context.Context, id string, patch model.DestinationPatch) (d model.Destination, found bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.Destination{}, false, nil
	}
	if err := patch.Validate(); err != nil {
		return model.Destination{}, true, err
	}
	s.items[i] = patch.Apply(s.items[i])
	s.persist(ctx)

	s.log.Debug("destination updated", "id", id)
	return s.items[i].Clone(), true, nil
}

// Remove deletes the destination with id once confirm approves it.
// It reports whether anything was removed.
func (s *Service) Remove(ctx context.Context, id string, confirm Confirm) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	if confirm == nil || !confirm(s.items[i].Clone()) {
		return false
	}

	s.items = append(s.items[:i], s.items[i+1:]...)
	s.persist(ctx)

	s.log.Debug("destination removed", "id", id)
	return true
}

// Restore puts a previously removed destination back at index, keeping its
// id and creation time. index is clamped to the collection bounds.
func (s *Service) Restore(ctx context.Context, d model.Destination, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.ID == "" {
		return fmt.Errorf("%w: destination has no id", model.ErrValidation)
	}
	if s.indexOf(d.ID) >= 0 {
		return fmt.Errorf("%w: destination %s already exists", model.ErrValidation, d.ID)
	}
	if index < 0 {
		index = 0
	}
	if index > len(s.items) {
		index = len(s.items)
	}

	s.items = append(s.items, model.Destination{})
	copy(s.items[index+1:], s.items[index:])
	s.items[index] = d.Clone()
	s.persist(ctx)
	return nil
}

// IndexOf returns the collection position of id, or -1.
func (s *Service) IndexOf(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(id)
}

// Warning returns the last persistence failure, or nil once a later save
// succeeded. In-memory state stays authoritative either way.
func (s *Service) Warning() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.warning
}

func (s *Service) persist(ctx context.Context) {
	if err := s.store.Save(ctx, s.snapshot()); err != nil {
		s.log.Warn("failed to persist destinations", "error", err)
		s.warning = err
		return
	}
	s.warning = nil
}

func (s *Service) snapshot() []model.Destination {
	out := make([]model.Destination, len(s.items))
	for i, d := range s.items {
		out[i] = d.Clone()
	}
	return out
}

func (s *Service) indexOf(id string) int {
	for i, d := range s.items {
		if d.ID == id {
			return i
		}
	}
	return -1
}

// uniqueID retries the store's generator on the unlikely clash with an
// existing record.
func (s *Service) uniqueID() string {
	for {
		id := s.store.NewID()
		if s.indexOf(id) < 0 {
			return id
		}
	}
}
