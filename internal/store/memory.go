package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/budgetsakkie/pricefeed/internal/domain"
)

// MemoryGateway is an in-memory Gateway for tests and demo runs. Tables are
// registered up front with their schemas; the pipeline itself never creates
// tables. The hook fields let tests inject failures at specific points.
type MemoryGateway struct {
	mu      sync.Mutex
	schemas map[string]domain.TableSchema
	rows    map[string][]domain.Record

	// ConnectErr, when set, makes every Connected call fail.
	ConnectErr error
	// DeleteErr, when set, makes DeleteAll fail.
	DeleteErr error
	// InsertHook runs before each InsertBatch call; call numbering starts at
	// 1 and counts every insert across tables. Returning an error fails that
	// chunk without recording its rows.
	InsertHook func(table string, call int, records []domain.Record) error
	// CountErr, when set, makes CountRows fail.
	CountErr error

	insertCalls int
}

// NewMemoryGateway creates an empty in-memory gateway.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		schemas: make(map[string]domain.TableSchema),
		rows:    make(map[string][]domain.Record),
	}
}

// RegisterTable declares a destination table and its schema.
func (g *MemoryGateway) RegisterTable(schema domain.TableSchema) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.schemas[schema.Name] = schema
	if _, ok := g.rows[schema.Name]; !ok {
		g.rows[schema.Name] = nil
	}
}

// Rows returns a copy of the stored rows for a table.
func (g *MemoryGateway) Rows(name string) []domain.Record {
	g.mu.Lock()
	defer g.mu.Unlock()
	rows := make([]domain.Record, len(g.rows[name]))
	copy(rows, g.rows[name])
	return rows
}

// InsertCalls reports how many InsertBatch calls the gateway has seen.
func (g *MemoryGateway) InsertCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.insertCalls
}

func (g *MemoryGateway) Connected(ctx context.Context) error {
	return g.ConnectErr
}

func (g *MemoryGateway) TableExists(ctx context.Context, name string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.schemas[name]
	return ok, nil
}

func (g *MemoryGateway) GetSchema(ctx context.Context, name string) (domain.TableSchema, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	schema, ok := g.schemas[name]
	if !ok {
		return domain.TableSchema{}, fmt.Errorf("no schema available for table %s", name)
	}
	return schema, nil
}

func (g *MemoryGateway) DeleteAll(ctx context.Context, name string) error {
	if g.DeleteErr != nil {
		return g.DeleteErr
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rows[name] = nil
	return nil
}

func (g *MemoryGateway) InsertBatch(ctx context.Context, name string, columns []string, records []domain.Record) (int, error) {
	g.mu.Lock()
	g.insertCalls++
	call := g.insertCalls
	g.mu.Unlock()

	if g.InsertHook != nil {
		if err := g.InsertHook(name, call, records); err != nil {
			return 0, err
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.schemas[name]; !ok {
		return 0, fmt.Errorf("table %s does not exist", name)
	}
	g.rows[name] = append(g.rows[name], records...)
	return len(records), nil
}

func (g *MemoryGateway) CountRows(ctx context.Context, name string) (int64, error) {
	if g.CountErr != nil {
		return 0, g.CountErr
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return int64(len(g.rows[name])), nil
}

func (g *MemoryGateway) ListTables(ctx context.Context) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	tables := make([]string, 0, len(g.schemas))
	for name := range g.schemas {
		tables = append(tables, name)
	}
	sort.Strings(tables)
	return tables, nil
}
