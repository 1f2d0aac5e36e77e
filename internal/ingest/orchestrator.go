// Package ingest sequences the tabular ingestion pipeline: connectivity and
// schema checks, validation, type coercion, optional purge, ordered chunked
// insert, and post-insert reconciliation.
package ingest

import (
	"context"
	"fmt"
	"log"

	"github.com/budgetsakkie/pricefeed/internal/coerce"
	"github.com/budgetsakkie/pricefeed/internal/domain"
	"github.com/budgetsakkie/pricefeed/internal/schema/validator"
	"github.com/budgetsakkie/pricefeed/internal/store"
)

// Orchestrator drives a batch through the store pipeline. It holds no state
// between calls; the gateway owns everything durable.
type Orchestrator struct {
	gateway store.Gateway
}

// NewOrchestrator creates an orchestrator writing through the given gateway.
func NewOrchestrator(gateway store.Gateway) *Orchestrator {
	return &Orchestrator{gateway: gateway}
}

// Store runs the full pipeline for one batch against one table.
//
// Connectivity, table-existence, schema, and validation failures are fatal
// and atomic: nothing is written. Coercion failures are recorded but never
// abort by themselves (nullable cells self-heal to nil, non-nullable cells
// surface at insert). Chunk insert failures stop the pipeline in transaction
// mode and accumulate otherwise; chunks already inserted stay either way.
// Success is true only when every row of the converted batch was inserted.
func (o *Orchestrator) Store(ctx context.Context, batch domain.Batch, tableName string, opts StoreOptions) domain.StorageResult {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}

	if err := o.gateway.Connected(ctx); err != nil {
		return failure(err.Error())
	}

	exists, err := o.gateway.TableExists(ctx, tableName)
	if err != nil {
		return failure(fmt.Sprintf("failed to check table existence: %v", err))
	}
	if !exists {
		return failure(fmt.Sprintf("table %s does not exist", tableName))
	}

	schema, err := o.gateway.GetSchema(ctx, tableName)
	if err != nil {
		return failure(err.Error())
	}

	if res := validator.ValidateAgainstSchema(batch, schema, opts.StrictValidation); !res.Valid {
		return domain.StorageResult{Errors: res.Errors}
	}

	if opts.CustomValidator != nil {
		if res := opts.CustomValidator(batch); !res.Valid {
			return domain.StorageResult{Errors: res.Errors}
		}
	}

	conversion := coerce.ConvertBatch(batch, schema)
	result := domain.StorageResult{Errors: conversion.Errors}

	if opts.ReplaceExisting {
		if err := o.gateway.DeleteAll(ctx, tableName); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to clear table %s: %v", tableName, err))
			return result
		}
	}

	converted := conversion.Data
	chunks := chunkRecords(converted.Records, opts.BatchSize)
	inserted := 0

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("aborted before chunk %d: %v", i+1, err))
			break
		}

		n, err := o.gateway.InsertBatch(ctx, tableName, converted.Columns, chunk)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to insert chunk %d: %v", i+1, err))
			reportChunk(opts.OnProgress, i, len(chunks))
			if opts.UseTransaction {
				break
			}
			continue
		}
		inserted += n
		reportChunk(opts.OnProgress, i, len(chunks))
	}

	result.RowsProcessed = inserted
	result.Success = inserted == len(converted.Records)

	// Reconciliation is best effort: a failed count is logged and never
	// changes the outcome.
	if count, err := o.gateway.CountRows(ctx, tableName); err != nil {
		log.Printf("[INGEST] failed to reconcile row count for %s: %v", tableName, err)
	} else {
		result.TableInfo = &domain.TableInfo{Name: tableName, RowCount: count}
	}

	return result
}

// StoreEntry pairs a batch with its destination for StoreMany.
type StoreEntry struct {
	Table   string
	Batch   domain.Batch
	Options StoreOptions
}

// StoreMany runs Store once per entry, sequentially and in order. One entry
// failing does not stop later entries; the returned bool is the logical AND
// of every per-table result.
func (o *Orchestrator) StoreMany(ctx context.Context, entries []StoreEntry) (map[string]domain.StorageResult, bool) {
	results := make(map[string]domain.StorageResult, len(entries))
	ok := true
	for _, entry := range entries {
		res := o.Store(ctx, entry.Batch, entry.Table, entry.Options)
		results[entry.Table] = res
		ok = ok && res.Success
	}
	return results, ok
}

func chunkRecords(records []domain.Record, size int) [][]domain.Record {
	var chunks [][]domain.Record
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		chunks = append(chunks, records[start:end])
	}
	return chunks
}

func reportChunk(progress ProgressFunc, index, total int) {
	if progress == nil {
		return
	}
	progress(PhaseStoring, float64(index+1)/float64(total)*100)
}

func failure(msg string) domain.StorageResult {
	return domain.StorageResult{Errors: []string{msg}}
}
