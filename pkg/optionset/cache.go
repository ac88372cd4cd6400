package optionset

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/epiwatch/surveillance/pkg/common/logger"
	"github.com/epiwatch/surveillance/pkg/common/models"
)

// Fetcher is the network fallback for cache misses; the platform client
// satisfies it.
type Fetcher interface {
	GetOptionSet(ctx context.Context, id string) (models.OptionSet, error)
}

// Entry is one cached option set: its metadata plus the resolved options.
type Entry struct {
	ID          string          `json:"id"`
	Name        string          `json:"name,omitempty"`
	DisplayName string          `json:"displayName,omitempty"`
	Options     []models.Option `json:"options"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Document is the serialized shape persisted under the store's fixed key.
type Document struct {
	ByID map[string]Entry `json:"byId"`
	TS   time.Time        `json:"ts"`
}

// Cache provides synchronous-after-priming lookup of option-set entries,
// backed by durable storage and a network fallback. Storage failures are
// absorbed: a cache that cannot read or write its document still works for
// the lifetime of the process.
type Cache struct {
	mu       sync.RWMutex
	doc      Document
	store    Store
	fetcher  Fetcher
	required []string
}

// New loads the persisted document and returns a ready cache. Construction
// never fails: a missing, unreadable, or corrupt document starts the cache
// empty.
func New(ctx context.Context, store Store, fetcher Fetcher, required []string) *Cache {
	c := &Cache{store: store, fetcher: fetcher, required: required}
	c.doc = c.ensureDocument(ctx)
	return c
}

func (c *Cache) ensureDocument(ctx context.Context) Document {
	empty := Document{ByID: map[string]Entry{}, TS: time.Now()}

	data, err := c.store.Read(ctx)
	if err != nil {
		logger.Log.WithError(err).Warn("option-set cache read failed, starting empty")
		c.persist(ctx, empty)
		return empty
	}
	if len(data) == 0 {
		c.persist(ctx, empty)
		return empty
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil || doc.ByID == nil {
		logger.Log.WithError(err).Warn("option-set cache document unreadable, starting empty")
		c.persist(ctx, empty)
		return empty
	}
	return doc
}

// LoadOptions returns the cached option list for an option set, fetching,
// caching, and persisting it on a miss. Only remote failures surface.
func (c *Cache) LoadOptions(ctx context.Context, optionSetID string) ([]models.Option, error) {
	c.mu.RLock()
	entry, ok := c.doc.ByID[optionSetID]
	c.mu.RUnlock()
	if ok {
		return copyOptions(entry.Options), nil
	}

	set, err := c.fetcher.GetOptionSet(ctx, optionSetID)
	if err != nil {
		return nil, err
	}

	entry = Entry{
		ID:          optionSetID,
		Name:        set.Name,
		DisplayName: set.DisplayName,
		Options:     extractOptions(set.Options),
		UpdatedAt:   time.Now(),
	}

	c.mu.Lock()
	c.doc.ByID[optionSetID] = entry
	c.doc.TS = time.Now()
	doc := c.snapshotLocked()
	c.mu.Unlock()

	c.persist(ctx, doc)
	return copyOptions(entry.Options), nil
}

// Refresh re-fetches an option set and overwrites its cache slot. This is
// the only way a populated entry changes; failures leave the old entry in
// place.
func (c *Cache) Refresh(ctx context.Context, optionSetID string) error {
	set, err := c.fetcher.GetOptionSet(ctx, optionSetID)
	if err != nil {
		return err
	}

	entry := Entry{
		ID:          optionSetID,
		Name:        set.Name,
		DisplayName: set.DisplayName,
		Options:     extractOptions(set.Options),
		UpdatedAt:   time.Now(),
	}

	c.mu.Lock()
	c.doc.ByID[optionSetID] = entry
	c.doc.TS = time.Now()
	doc := c.snapshotLocked()
	c.mu.Unlock()

	c.persist(ctx, doc)
	return nil
}

// PrimeRequired loads every required option set that is not yet cached.
// Per-set failures are logged and swallowed; the call itself never fails.
// Intended to run once at startup, before any screen needs a vocabulary.
func (c *Cache) PrimeRequired(ctx context.Context) {
	for _, id := range c.required {
		c.mu.RLock()
		_, ok := c.doc.ByID[id]
		c.mu.RUnlock()
		if ok {
			continue
		}
		if _, err := c.LoadOptions(ctx, id); err != nil {
			logger.Log.WithError(err).WithField("option_set", id).Warn("failed to prime option set")
		}
	}
}

// OptionByCode looks up a cached option by its business code. It never
// fetches: before priming completes it reports misses instead of blocking.
func (c *Cache) OptionByCode(optionSetID, code string) (models.Option, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.doc.ByID[optionSetID]
	if !ok {
		return models.Option{}, false
	}
	for _, opt := range entry.Options {
		if opt.Code == code {
			return opt, true
		}
	}
	return models.Option{}, false
}

// NameByCode resolves a code to its option name, or "" when unknown.
func (c *Cache) NameByCode(optionSetID, code string) string {
	opt, ok := c.OptionByCode(optionSetID, code)
	if !ok {
		return ""
	}
	return opt.Name
}

// ListOptions returns whatever is currently cached for the option set; an
// unprimed set yields an empty list.
func (c *Cache) ListOptions(optionSetID string) []models.Option {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.doc.ByID[optionSetID]
	if !ok {
		return []models.Option{}
	}
	return copyOptions(entry.Options)
}

// persist writes the document best-effort. An in-memory-only session keeps
// working; it just loses the cache on restart.
func (c *Cache) persist(ctx context.Context, doc Document) {
	data, err := json.Marshal(doc)
	if err != nil {
		logger.Log.WithError(err).Warn("failed to encode option-set cache document")
		return
	}
	if err := c.store.Write(ctx, data); err != nil {
		logger.Log.WithError(err).Warn("failed to persist option-set cache document")
	}
}

func (c *Cache) snapshotLocked() Document {
	byID := make(map[string]Entry, len(c.doc.ByID))
	for k, v := range c.doc.ByID {
		byID[k] = v
	}
	return Document{ByID: byID, TS: c.doc.TS}
}

// extractOptions keeps only the fields the cache serves: id, code, name,
// displayName, sortOrder. Attribute values stay out of the document.
func extractOptions(options []models.Option) []models.Option {
	out := make([]models.Option, 0, len(options))
	for _, opt := range options {
		out = append(out, models.Option{
			ID:          opt.ID,
			Code:        opt.Code,
			Name:        opt.Name,
			DisplayName: opt.DisplayName,
			SortOrder:   opt.SortOrder,
		})
	}
	return out
}

func copyOptions(options []models.Option) []models.Option {
	out := make([]models.Option, len(options))
	copy(out, options)
	return out
}
