// Package arcdex is the embedded SDK for the archive metadata index: it
// wires the Redis-backed store, repositories, and services into a single
// client so tools and tests can use the index without running the server.
package arcdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arcdex/arcdex/internal/db"
	dbredis "github.com/arcdex/arcdex/internal/db/redis"
	"github.com/arcdex/arcdex/internal/domain"
	recordrepo "github.com/arcdex/arcdex/internal/repository/record"
	recorduc "github.com/arcdex/arcdex/internal/usecase/record"
	searchuc "github.com/arcdex/arcdex/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Record is the archive metadata record. See internal/schema/record.schema.json
// for the wire contract.
type Record = domain.Record

// Query is a filtered archive search.
type Query = searchuc.Query

// Result is one page of search matches.
type Result = searchuc.Result

// ErrRecordNotFound is returned when a record id is not in the index.
var ErrRecordNotFound = domain.ErrRecordNotFound

// Client is the arcdex SDK entry point.
type Client struct {
	store     db.Store
	keyPrefix string
	indexName string
	records   *recorduc.Service
	search    *searchuc.Service
}

// New creates a Client and connects to the database.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix:       "arcdex:",
		indexName:       "arcdex:records:idx",
		defaultPageSize: 20,
		maxPageSize:     100,
	}
	for _, o := range opts {
		o(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("arcdex: database address required (use WithRedis)")
	}

	store, err := dbredis.NewStore(dbredis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
		DB:       cfg.database,
	})
	if err != nil {
		return nil, fmt.Errorf("arcdex: create store: %w", err)
	}

	if err := store.WaitForReady(context.Background(), defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("arcdex: database not ready: %w", err)
	}

	return wireClient(store, cfg), nil
}

func wireClient(store db.Store, cfg *clientConfig) *Client {
	repo := recordrepo.New(store, cfg.keyPrefix, cfg.indexName)
	return &Client{
		store:     store,
		keyPrefix: cfg.keyPrefix,
		indexName: cfg.indexName,
		records:   recorduc.New(repo).WithPagination(cfg.defaultPageSize, cfg.maxPageSize),
		search:    searchuc.New(repo).WithPagination(cfg.defaultPageSize, cfg.maxPageSize),
	}
}

// EnsureIndex creates the record FT index if it does not exist (idempotent).
func (c *Client) EnsureIndex(ctx context.Context) error {
	exists, err := c.store.IndexExists(ctx, c.indexName)
	if err != nil {
		return fmt.Errorf("arcdex: check index: %w", err)
	}
	if exists {
		return nil
	}

	def, err := recordrepo.IndexDefinition(c.indexName, c.keyPrefix)
	if err != nil {
		return fmt.Errorf("arcdex: build index definition: %w", err)
	}
	if err := c.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("arcdex: create index: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

// Close releases the database connection.
func (c *Client) Close() {
	c.store.Close()
}

// Upsert validates and stores a record. Returns the stored record (with
// derived _id) and whether it was created.
func (c *Client) Upsert(ctx context.Context, rec Record) (Record, bool, error) {
	return c.records.Upsert(ctx, rec)
}

// Get returns a record by id.
func (c *Client) Get(ctx context.Context, id string) (Record, error) {
	return c.records.Get(ctx, id)
}

// GetByPath returns the record for an archive path.
func (c *Client) GetByPath(ctx context.Context, path string) (Record, error) {
	return c.records.Get(ctx, domain.RecordID(path))
}

// Delete removes a record by id.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.records.Delete(ctx, id)
}

// List returns one page of records and the cursor for the next page.
func (c *Client) List(ctx context.Context, cursor string, limit int) ([]Record, string, error) {
	return c.records.List(ctx, cursor, limit)
}

// Count returns the number of indexed records.
func (c *Client) Count(ctx context.Context) (int, error) {
	return c.records.Count(ctx)
}

// Search runs a filtered archive query.
func (c *Client) Search(ctx context.Context, q Query) (Result, error) {
	return c.search.Search(ctx, q)
}
