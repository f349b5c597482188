package store_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wanderlist/internal/db"
	"wanderlist/internal/model"
	"wanderlist/internal/store"
)

// fakeBackend is a map-backed store.Backend. Set putErr or getErr to
// simulate storage failures.
type fakeBackend struct {
	values    map[string]string
	getErr    error
	putErr    error
	deleteErr error
	puts      int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{values: make(map[string]string)}
}

func (f *fakeBackend) Get(_ context.Context, key string) (string, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *fakeBackend) Put(_ context.Context, key, value string) error {
	f.puts++
	if f.putErr != nil {
		return f.putErr
	}
	f.values[key] = value
	return nil
}

func (f *fakeBackend) Delete(_ context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.values, key)
	return nil
}

var _ store.Backend = (*fakeBackend)(nil)

func openSlots(t *testing.T, maxBytes int) *db.Slots {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return db.NewSlots(database, maxBytes)
}

func names(list []model.Destination) []string {
	out := make([]string, 0, len(list))
	for _, d := range list {
		out = append(out, d.Name)
	}
	return out
}

func TestLoad_EmptyStorageSeedsSamples(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	s := store.New(backend, nil)

	got := s.Load(ctx)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"Paris", "Bali", "Swiss Alps"}, names(got))
	for _, d := range got {
		assert.NotEmpty(t, d.ID)
		assert.Equal(t, 5, d.Rating)
	}
	assert.Contains(t, backend.values, store.DestinationsKey, "seed must be persisted")
}

func TestLoad_EmptyListSeedsSamples(t *testing.T) {
	backend := newFakeBackend()
	backend.values[store.DestinationsKey] = "[]"

	got := store.New(backend, nil).Load(context.Background())

	assert.Equal(t, []string{"Paris", "Bali", "Swiss Alps"}, names(got))
}

func TestLoad_CorruptPayloadSeedsSamples(t *testing.T) {
	backend := newFakeBackend()
	backend.values[store.DestinationsKey] = "{not json"

	got := store.New(backend, nil).Load(context.Background())

	assert.Len(t, got, 3)
	assert.NotEqual(t, "{not json", backend.values[store.DestinationsKey])
}

func TestLoad_ReadErrorSeedsSamples(t *testing.T) {
	backend := newFakeBackend()
	backend.getErr = errors.New("disk on fire")

	got := store.New(backend, nil).Load(context.Background())

	assert.Len(t, got, 3)
}

func TestLoad_ToleratesUnknownFieldsAndLegacyCategories(t *testing.T) {
	backend := newFakeBackend()
	backend.values[store.DestinationsKey] = `[
		{"id":"a","name":"Kyoto","category":"Temple Town","rating":4,"createdAt":10,
		 "location":"Japan","tags":["Zen"],"imageBase64":null}
	]`

	got := store.New(backend, nil).Load(context.Background())

	require.Len(t, got, 1)
	assert.Equal(t, "Kyoto", got[0].Name)
	assert.Equal(t, "Temple Town", got[0].Category)
	assert.Equal(t, "", got[0].ImageBase64)
	assert.JSONEq(t, `"Japan"`, string(got[0].Extra["location"]))
	assert.JSONEq(t, `["Zen"]`, string(got[0].Extra["tags"]))
}

func TestLoad_KeepsValidRecordsNextToMistypedOnes(t *testing.T) {
	backend := newFakeBackend()
	stored := `[
		{"id":"a","name":"Mine","category":"Asia","rating":"4","createdAt":"1700000000000"},
		{"id":7,"name":"Numbered","category":"Europe","rating":4.5,"createdAt":12.9},
		{"id":"b","name":"Broken","rating":{"stars":2}},
		null,
		{"id":"c","name":"Fine","category":"Oceania","rating":5,"createdAt":3}
	]`
	backend.values[store.DestinationsKey] = stored

	got := store.New(backend, nil).Load(context.Background())

	assert.Equal(t, []string{"Mine", "Numbered", "Fine"}, names(got))
	assert.Equal(t, 4, got[0].Rating)
	assert.Equal(t, int64(1700000000000), got[0].CreatedAt)
	assert.Equal(t, "7", got[1].ID)
	assert.Equal(t, 4, got[1].Rating)
	assert.Equal(t, int64(12), got[1].CreatedAt)
	assert.Zero(t, backend.puts, "user data must not be replaced by samples")
	assert.Equal(t, stored, backend.values[store.DestinationsKey])
}

func TestLoad_AllRecordsUnreadableDoesNotSeed(t *testing.T) {
	backend := newFakeBackend()
	backend.values[store.DestinationsKey] = `[{"id":"x","name":["Paris"]}]`

	got := store.New(backend, nil).Load(context.Background())

	assert.Empty(t, got)
	assert.Zero(t, backend.puts)
}

func TestReset_NextLoadSeedsSamples(t *testing.T) {
	ctx := context.Background()
	s := store.New(openSlots(t, 0), nil)
	require.NoError(t, s.Save(ctx, []model.Destination{{ID: "x", Name: "Mine", Rating: 2}}))
	require.Equal(t, []string{"Mine"}, names(s.Load(ctx)))

	require.NoError(t, s.Reset(ctx))

	assert.Equal(t, []string{"Paris", "Bali", "Swiss Alps"}, names(s.Load(ctx)))
}

func TestReset_BackendError(t *testing.T) {
	backend := newFakeBackend()
	backend.deleteErr = errors.New("locked")

	err := store.New(backend, nil).Reset(context.Background())

	assert.ErrorContains(t, err, "locked")
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := store.New(openSlots(t, 0), nil)

	original := s.Load(ctx)
	require.NoError(t, s.Save(ctx, original))

	assert.Equal(t, original, s.Load(ctx))
}

func TestSaveLoad_RoundTripCustomCollection(t *testing.T) {
	ctx := context.Background()
	s := store.New(openSlots(t, 0), nil)

	list := []model.Destination{
		{ID: "1", Name: "Tokyo", Category: model.CategoryAsia, Rating: 4, Notes: "sushi", CreatedAt: 100, AITips: "go early"},
		{ID: "2", Name: "Lima", Category: model.CategorySouthAmerica, Rating: 2, ImageBase64: "data:image/png;base64,AAAA", CreatedAt: 200},
	}
	require.NoError(t, s.Save(ctx, list))

	assert.Equal(t, list, s.Load(ctx))
}

func TestSave_QuotaExceeded(t *testing.T) {
	s := store.New(openSlots(t, 64), nil)

	list := []model.Destination{{ID: "1", Name: strings.Repeat("x", 200), Rating: 3}}
	err := s.Save(context.Background(), list)

	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrQuotaExceeded)
}

func TestSave_OtherBackendErrorIsNotQuota(t *testing.T) {
	backend := newFakeBackend()
	backend.putErr = errors.New("locked")

	err := store.New(backend, nil).Save(context.Background(), nil)

	require.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrQuotaExceeded)
}

func TestSave_WrappedSlotFullIsQuota(t *testing.T) {
	backend := newFakeBackend()
	backend.putErr = fmt.Errorf("put: %w", db.ErrSlotFull)

	err := store.New(backend, nil).Save(context.Background(), nil)

	assert.ErrorIs(t, err, store.ErrQuotaExceeded)
}

func TestNewID_FormatAndUniqueness(t *testing.T) {
	s := store.New(newFakeBackend(), nil)
	pattern := regexp.MustCompile(`^\d+-[0-9a-z]{9}$`)

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := s.NewID()
		require.Regexp(t, pattern, id)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
