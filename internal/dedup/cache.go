package dedup

import (
	"context"
	"fmt"
	"sync"

	"github.com/roach88/hitdata/internal/ir"
	"github.com/roach88/hitdata/internal/store"
)

// Backend is the subset of the storage engine a Cache needs.
type Backend interface {
	FindEntryID(ctx context.Context, table string, cols ir.Columns) (int64, bool, error)
	InsertEntry(ctx context.Context, table string, cols ir.Columns) (int64, error)
	ScanTable(ctx context.Context, table string) ([]store.Row, error)
	Rollbacks() uint64
}

// Codec maps a key to its identifying columns and back.
type Codec[K comparable] struct {
	// Columns returns the identifying columns written for key.
	Columns func(key K) ir.Columns

	// Key rebuilds a key from a scanned row. Rows that do not decode are skipped.
	Key func(row store.Row) (K, bool)
}

// Cache is a find-or-create index from key to row id over one table.
// It is safe for concurrent use.
type Cache[K comparable] struct {
	mu sync.Mutex

	backend Backend
	table   string
	codec   Codec[K]

	ids      map[K]int64
	hydrated bool
	inserts  int

	// rollbacks is the backend's rollback count the cached ids were read at.
	rollbacks uint64
}

// New creates an empty cache over table.
func New[K comparable](backend Backend, table string, codec Codec[K]) *Cache[K] {
	return &Cache[K]{
		backend:   backend,
		table:     table,
		codec:     codec,
		ids:       make(map[K]int64),
		rollbacks: backend.Rollbacks(),
	}
}

// Table returns the backing table name.
func (c *Cache[K]) Table() string {
	return c.table
}

// Hydrate loads every existing row of the backing table into the cache.
// It runs once; later calls return nil without touching the store, unless
// a batch has been rolled back since, which forces a fresh scan.
// A failed hydration leaves the cache unhydrated so the next call retries.
func (c *Cache[K]) Hydrate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hydrateLocked(ctx)
}

// invalidateLocked forgets every cached id once the backend has lost a batch
// since the ids were read. A lost row's id can be handed to a different key,
// so the next GetOrCreate rehydrates from the rows that survived.
func (c *Cache[K]) invalidateLocked() {
	n := c.backend.Rollbacks()
	if n == c.rollbacks {
		return
	}
	c.rollbacks = n
	c.ids = make(map[K]int64)
	c.hydrated = false
}

func (c *Cache[K]) hydrateLocked(ctx context.Context) error {
	c.invalidateLocked()
	if c.hydrated {
		return nil
	}

	rows, err := c.backend.ScanTable(ctx, c.table)
	if err != nil {
		return fmt.Errorf("hydrate %s: %w", c.table, err)
	}

	for _, row := range rows {
		key, ok := c.codec.Key(row)
		if !ok {
			continue
		}
		// Keep the lowest id if the table holds duplicates.
		if _, seen := c.ids[key]; !seen {
			c.ids[key] = row.ID()
		}
	}
	c.hydrated = true
	return nil
}

// GetOrCreate returns the id for key, inserting a row the first time the
// key is seen. The cache hydrates itself first if needed.
func (c *Cache[K]) GetOrCreate(ctx context.Context, key K) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.hydrateLocked(ctx); err != nil {
		return store.NoID, err
	}
	if id, ok := c.ids[key]; ok {
		return id, nil
	}

	cols := c.codec.Columns(key)
	id, err := c.backend.InsertEntry(ctx, c.table, cols)
	if err != nil {
		if !store.IsUniqueViolation(err) {
			return store.NoID, fmt.Errorf("create %s entry: %w", c.table, err)
		}
		// Another writer created the row after hydration.
		found, ok, findErr := c.backend.FindEntryID(ctx, c.table, cols)
		if findErr != nil {
			return store.NoID, fmt.Errorf("create %s entry: %w", c.table, findErr)
		}
		if !ok {
			return store.NoID, fmt.Errorf("create %s entry: %w", c.table, err)
		}
		id = found
	} else {
		c.inserts++
	}

	c.ids[key] = id
	return id, nil
}

// Lookup returns the cached id for key without touching the store.
func (c *Cache[K]) Lookup(key K) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked()
	id, ok := c.ids[key]
	return id, ok
}

// Len returns the number of cached keys.
func (c *Cache[K]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked()
	return len(c.ids)
}

// Inserts returns how many rows this cache has inserted.
func (c *Cache[K]) Inserts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inserts
}
