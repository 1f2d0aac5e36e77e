package ingest

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/budgetsakkie/pricefeed/internal/codec"
	"github.com/budgetsakkie/pricefeed/internal/domain"
	"github.com/budgetsakkie/pricefeed/internal/schema/validator"
	"github.com/budgetsakkie/pricefeed/internal/store"
)

// Service is the public ingestion surface: store an in-memory batch, or
// import a delimited-text or xlsx file end to end with phase-tagged progress.
type Service struct {
	orch    *Orchestrator
	gateway store.Gateway
}

// NewService creates a service writing through the given gateway.
func NewService(gateway store.Gateway) *Service {
	return &Service{
		orch:    NewOrchestrator(gateway),
		gateway: gateway,
	}
}

// StoreBatch stores an already-parsed batch.
func (s *Service) StoreBatch(ctx context.Context, batch domain.Batch, tableName string, opts StoreOptions) domain.StorageResult {
	return s.orch.Store(ctx, batch, tableName, opts)
}

// ImportCSV parses delimited text and stores the result. Progress reports a
// parsing phase at 0%, an optional validating phase at 0% then 100%, and a
// storing phase driven by the orchestrator's per-chunk callback. The
// pre-validation pass (ExpectedColumns/RequiredColumns) rejects malformed
// input before anything touches the store.
func (s *Service) ImportCSV(ctx context.Context, text string, tableName string, opts ImportOptions) domain.StorageResult {
	opts.progress(PhaseParsing, 0)
	batch := codec.Parse(text, opts.Parse)
	return s.storeParsed(ctx, batch, tableName, opts)
}

// ImportExcel reads the first sheet of an xlsx workbook and stores it through
// the same path as ImportCSV. The first row is the header; short rows are
// padded with empty strings.
func (s *Service) ImportExcel(ctx context.Context, data []byte, tableName string, opts ImportOptions) domain.StorageResult {
	opts.progress(PhaseParsing, 0)

	batch, err := parseWorkbook(data)
	if err != nil {
		return domain.StorageResult{Errors: []string{err.Error()}}
	}
	return s.storeParsed(ctx, batch, tableName, opts)
}

func (s *Service) storeParsed(ctx context.Context, batch domain.Batch, tableName string, opts ImportOptions) domain.StorageResult {
	if batch.IsEmpty() {
		return domain.StorageResult{Errors: []string{"file is empty or could not be parsed"}}
	}

	if opts.ValidateSchema && (len(opts.ExpectedColumns) > 0 || len(opts.RequiredColumns) > 0) {
		opts.progress(PhaseValidating, 0)
		if res := validator.ValidateShape(batch, opts.ExpectedColumns, opts.RequiredColumns); !res.Valid {
			return domain.StorageResult{Errors: res.Errors}
		}
		opts.progress(PhaseValidating, 100)
	}

	return s.orch.Store(ctx, batch, tableName, opts.Store)
}

// Tables lists the destination tables available in the store.
func (s *Service) Tables(ctx context.Context) ([]string, error) {
	return s.gateway.ListTables(ctx)
}

// TableSchema fetches the authoritative schema of one destination table.
func (s *Service) TableSchema(ctx context.Context, tableName string) (domain.TableSchema, error) {
	return s.gateway.GetSchema(ctx, tableName)
}

func parseWorkbook(data []byte) (domain.Batch, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return domain.Batch{}, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return domain.Batch{}, fmt.Errorf("excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return domain.Batch{}, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}
	if len(rows) == 0 {
		return domain.Batch{}, nil
	}

	headers := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		headers[i] = strings.TrimSpace(cell)
	}

	batch := domain.Batch{Columns: headers}
	for _, row := range rows[1:] {
		record := make(domain.Record, len(headers))
		for i, name := range headers {
			if i < len(row) {
				record[name] = strings.TrimSpace(row[i])
			} else {
				record[name] = ""
			}
		}
		batch.Records = append(batch.Records, record)
	}
	return batch, nil
}
