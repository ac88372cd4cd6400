package optionset

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/epiwatch/surveillance/pkg/common/logger"
	"github.com/epiwatch/surveillance/pkg/common/models"
)

func init() {
	logger.Init()
}

type fakeFetcher struct {
	sets    map[string]models.OptionSet
	failing map[string]bool
	calls   int
}

func (f *fakeFetcher) GetOptionSet(ctx context.Context, id string) (models.OptionSet, error) {
	f.calls++
	if f.failing[id] {
		return models.OptionSet{}, errors.New("connection refused")
	}
	set, ok := f.sets[id]
	if !ok {
		return models.OptionSet{}, fmt.Errorf("option set %s not found", id)
	}
	return set, nil
}

type failingStore struct{}

func (failingStore) Read(ctx context.Context) ([]byte, error)  { return nil, errors.New("read denied") }
func (failingStore) Write(ctx context.Context, _ []byte) error { return errors.New("write denied") }

func optionSet(id string, codes ...string) models.OptionSet {
	set := models.OptionSet{ID: id, Name: "Set " + id}
	for i, code := range codes {
		set.Options = append(set.Options, models.Option{
			ID:        fmt.Sprintf("%s-opt-%d", id, i),
			Code:      code,
			Name:      "Name " + code,
			SortOrder: i + 1,
		})
	}
	return set
}

func TestLoadThenListConsistency(t *testing.T) {
	ctx := context.Background()
	fetcher := &fakeFetcher{sets: map[string]models.OptionSet{
		"set1": optionSet("set1", "A", "B", "C"),
	}}
	cache := New(ctx, NewMemoryStore(), fetcher, nil)

	loaded, err := cache.LoadOptions(ctx, "set1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	listed := cache.ListOptions("set1")
	if len(listed) != len(loaded) {
		t.Fatalf("expected %d options, got %d", len(loaded), len(listed))
	}
	for i := range listed {
		if !reflect.DeepEqual(listed[i], loaded[i]) {
			t.Fatalf("option %d differs: %+v vs %+v", i, listed[i], loaded[i])
		}
	}
}

func TestLoadCachesAcrossCalls(t *testing.T) {
	ctx := context.Background()
	fetcher := &fakeFetcher{sets: map[string]models.OptionSet{
		"set1": optionSet("set1", "A"),
	}}
	cache := New(ctx, NewMemoryStore(), fetcher, nil)

	if _, err := cache.LoadOptions(ctx, "set1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cache.LoadOptions(ctx, "set1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetcher.calls != 1 {
		t.Fatalf("expected a single fetch, got %d", fetcher.calls)
	}
}

func TestCorruptDocumentStartsEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Write(ctx, []byte("{not json")); err != nil {
		t.Fatalf("seeding store: %v", err)
	}

	cache := New(ctx, store, &fakeFetcher{}, nil)
	if got := cache.ListOptions("anything"); len(got) != 0 {
		t.Fatalf("expected empty cache, got %d options", len(got))
	}
}

func TestStorageFailuresAreAbsorbed(t *testing.T) {
	ctx := context.Background()
	fetcher := &fakeFetcher{sets: map[string]models.OptionSet{
		"set1": optionSet("set1", "A"),
	}}
	cache := New(ctx, failingStore{}, fetcher, nil)

	options, err := cache.LoadOptions(ctx, "set1")
	if err != nil {
		t.Fatalf("storage failure leaked: %v", err)
	}
	if len(options) != 1 {
		t.Fatalf("expected 1 option, got %d", len(options))
	}
	// the in-memory session keeps working
	if name := cache.NameByCode("set1", "A"); name != "Name A" {
		t.Fatalf("expected lookup to work, got %q", name)
	}
}

func TestDocumentSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	fetcher := &fakeFetcher{sets: map[string]models.OptionSet{
		"set1": optionSet("set1", "A", "B"),
	}}

	first := New(ctx, store, fetcher, nil)
	if _, err := first.LoadOptions(ctx, "set1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := New(ctx, store, &fakeFetcher{}, nil)
	if got := second.ListOptions("set1"); len(got) != 2 {
		t.Fatalf("expected persisted options, got %d", len(got))
	}
}

func TestPrimeRequiredSwallowsFailures(t *testing.T) {
	ctx := context.Background()
	sets := map[string]models.OptionSet{}
	required := make([]string, 0, 6)
	for i := 0; i < 6; i++ {
		id := fmt.Sprintf("set%d", i)
		required = append(required, id)
		sets[id] = optionSet(id, "X")
	}
	fetcher := &fakeFetcher{sets: sets, failing: map[string]bool{"set3": true}}

	cache := New(ctx, NewMemoryStore(), fetcher, required)
	cache.PrimeRequired(ctx)

	cached := 0
	for _, id := range required {
		if len(cache.ListOptions(id)) > 0 {
			cached++
		}
	}
	if cached != 5 {
		t.Fatalf("expected exactly 5 cached sets, got %d", cached)
	}
	if len(cache.ListOptions("set3")) != 0 {
		t.Fatal("failing set must stay uncached")
	}
}

func TestLookupsBeforePriming(t *testing.T) {
	ctx := context.Background()
	cache := New(ctx, NewMemoryStore(), &fakeFetcher{}, nil)

	if _, ok := cache.OptionByCode("set1", "A"); ok {
		t.Fatal("expected miss before priming")
	}
	if name := cache.NameByCode("set1", "A"); name != "" {
		t.Fatalf("expected empty name, got %q", name)
	}
	if got := cache.ListOptions("set1"); len(got) != 0 {
		t.Fatalf("expected empty list, got %d", len(got))
	}
}

func TestRefreshOverwrites(t *testing.T) {
	ctx := context.Background()
	fetcher := &fakeFetcher{sets: map[string]models.OptionSet{
		"set1": optionSet("set1", "A"),
	}}
	cache := New(ctx, NewMemoryStore(), fetcher, nil)

	if _, err := cache.LoadOptions(ctx, "set1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fetcher.sets["set1"] = optionSet("set1", "A", "B")
	if err := cache.Refresh(ctx, "set1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cache.ListOptions("set1"); len(got) != 2 {
		t.Fatalf("expected refreshed list of 2, got %d", len(got))
	}
}
