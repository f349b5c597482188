// Package store persists the destination collection in a single key-value
// slot and hands out record identities.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"wanderlist/internal/db"
	"wanderlist/internal/model"
)

// DestinationsKey is the slot holding the JSON array of destinations.
const DestinationsKey = "dream_destinations_v1"

// ErrQuotaExceeded is returned by Save when the collection does not fit.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Backend is the durable key-value slot the store writes to.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// RecordStore loads and saves the whole destination collection.
type RecordStore struct {
	backend Backend
	log     *slog.Logger
	now     func() time.Time
	ids     *idSource
}

// New returns a RecordStore over backend. A nil logger uses slog.Default().
func New(backend Backend, log *slog.Logger) *RecordStore {
	if log == nil {
		log = slog.Default()
	}
	return &RecordStore{
		backend: backend,
		log:     log,
		now:     time.Now,
		ids:     &idSource{},
	}
}

// Load returns the persisted collection. A missing slot, an empty array or a
// payload that is not a JSON array is replaced by the sample destinations,
// which are written back. Single records that cannot be decoded are skipped
// and the stored data is left as is.
func (s *RecordStore) Load(ctx context.Context) []model.Destination {
	raw, ok, err := s.backend.Get(ctx, DestinationsKey)
	if err != nil {
		s.log.Warn("failed to read destinations, seeding defaults", "error", err)
		return s.seed(ctx)
	}
	if !ok || raw == "" {
		return s.seed(ctx)
	}

	var records []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		s.log.Warn("failed to parse destinations, seeding defaults", "error", err)
		return s.seed(ctx)
	}
	if len(records) == 0 {
		return s.seed(ctx)
	}

	list := make([]model.Destination, 0, len(records))
	for i, rec := range records {
		var d model.Destination
		if err := json.Unmarshal(rec, &d); err != nil {
			s.log.Warn("skipping unreadable destination", "index", i, "error", err)
			continue
		}
		list = append(list, d)
	}
	return list
}

// Save writes the full collection. A capacity rejection wraps ErrQuotaExceeded.
func (s *RecordStore) Save(ctx context.Context, list []model.Destination) error {
	if list == nil {
		list = []model.Destination{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to encode destinations: %w", err)
	}
	if err := s.backend.Put(ctx, DestinationsKey, string(data)); err != nil {
		if errors.Is(err, db.ErrSlotFull) {
			return fmt.Errorf("%w: please remove some images or destinations: %v", ErrQuotaExceeded, err)
		}
		return fmt.Errorf("failed to save destinations: %w", err)
	}
	return nil
}

// Reset drops the stored collection. The next Load seeds the samples.
func (s *RecordStore) Reset(ctx context.Context) error {
	if err := s.backend.Delete(ctx, DestinationsKey); err != nil {
		return fmt.Errorf("failed to reset destinations: %w", err)
	}
	s.log.Info("stored destinations cleared")
	return nil
}

// NewID returns a "<unix-millis>-<random base36>" identity.
func (s *RecordStore) NewID() string {
	return s.ids.next(s.now())
}

func (s *RecordStore) seed(ctx context.Context) []model.Destination {
	list := SampleDestinations(s.now())
	if err := s.Save(ctx, list); err != nil {
		s.log.Warn("failed to persist sample destinations", "error", err)
	}
	return list
}

type idSource struct {
	mu   sync.Mutex
	last int64
}

func (g *idSource) next(now time.Time) string {
	g.mu.Lock()
	ms := now.UnixMilli()
	if ms < g.last {
		ms = g.last
	}
	g.last = ms
	g.mu.Unlock()

	return strconv.FormatInt(ms, 10) + "-" + randomSuffix()
}

// randomSuffix renders the random bits of a v4 UUID as 9 base36 digits.
func randomSuffix() string {
	u := uuid.New()
	n := new(big.Int).SetBytes(u[:])
	s := n.Text(36)
	for len(s) < 9 {
		s = "0" + s
	}
	return s[len(s)-9:]
}
