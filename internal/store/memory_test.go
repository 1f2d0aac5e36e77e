package store

import (
	"context"
	"testing"

	"github.com/budgetsakkie/pricefeed/internal/domain"
)

func TestMemoryGatewayLifecycle(t *testing.T) {
	ctx := context.Background()
	gateway := NewMemoryGateway()
	gateway.RegisterTable(domain.TableSchema{
		Name: "prices",
		Columns: []domain.ColumnSchema{
			{Name: "product_name", Type: domain.TypeText, Nullable: false},
		},
	})

	if err := gateway.Connected(ctx); err != nil {
		t.Fatalf("connected returned error: %v", err)
	}

	exists, err := gateway.TableExists(ctx, "prices")
	if err != nil || !exists {
		t.Fatalf("expected table to exist, got %v %v", exists, err)
	}
	exists, err = gateway.TableExists(ctx, "missing")
	if err != nil || exists {
		t.Fatalf("expected table to be absent, got %v %v", exists, err)
	}

	n, err := gateway.InsertBatch(ctx, "prices", []string{"product_name"}, []domain.Record{
		{"product_name": "Milk"},
		{"product_name": "Bread"},
	})
	if err != nil || n != 2 {
		t.Fatalf("insert returned %d, %v", n, err)
	}

	count, err := gateway.CountRows(ctx, "prices")
	if err != nil || count != 2 {
		t.Fatalf("count returned %d, %v", count, err)
	}

	if err := gateway.DeleteAll(ctx, "prices"); err != nil {
		t.Fatalf("delete returned error: %v", err)
	}
	count, _ = gateway.CountRows(ctx, "prices")
	if count != 0 {
		t.Fatalf("expected empty table after delete, got %d", count)
	}
}

func TestMemoryGatewayInsertIntoUnknownTable(t *testing.T) {
	gateway := NewMemoryGateway()
	if _, err := gateway.InsertBatch(context.Background(), "missing", []string{"a"}, []domain.Record{{"a": 1}}); err == nil {
		t.Fatalf("expected error for unknown table")
	}
}
