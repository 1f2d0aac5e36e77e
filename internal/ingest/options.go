package ingest

import (
	"github.com/budgetsakkie/pricefeed/internal/codec"
	"github.com/budgetsakkie/pricefeed/internal/domain"
)

// Phase labels the stage a progress callback is reporting on.
type Phase string

const (
	PhaseParsing    Phase = "parsing"
	PhaseValidating Phase = "validating"
	PhaseStoring    Phase = "storing"
)

// ProgressFunc receives phase-tagged progress. During the storing phase the
// percentage advances once per insert chunk, in chunk order.
type ProgressFunc func(phase Phase, percent float64)

// DefaultBatchSize is the number of rows per insert chunk when the caller
// does not override it.
const DefaultBatchSize = 1000

// StoreOptions configures a single store attempt. Use DefaultStoreOptions as
// the starting point; the zero value disables strict validation and
// transaction mode, which is rarely what a caller wants.
type StoreOptions struct {
	// BatchSize is the number of rows per insert chunk; values <= 0 fall
	// back to DefaultBatchSize.
	BatchSize int
	// ReplaceExisting purges the destination table before inserting. A
	// failed purge aborts the whole operation with nothing written.
	ReplaceExisting bool
	// StrictValidation enables type-mismatch scanning during schema
	// validation.
	StrictValidation bool
	// UseTransaction stops dispatching further chunks after the first chunk
	// failure. Chunks inserted before the failure are NOT rolled back; this
	// is at-least-once, not atomic, semantics.
	UseTransaction bool
	// CustomValidator, when set, runs after built-in schema validation and
	// can reject the batch before anything is written.
	CustomValidator func(domain.Batch) domain.ValidationResult
	// OnProgress receives storing-phase progress after every chunk, success
	// or failure.
	OnProgress ProgressFunc
}

// DefaultStoreOptions returns the standard configuration: 1000-row chunks,
// strict validation, transaction mode, no purge.
func DefaultStoreOptions() StoreOptions {
	return StoreOptions{
		BatchSize:        DefaultBatchSize,
		StrictValidation: true,
		UseTransaction:   true,
	}
}

// ImportOptions configures an end-to-end file import: how the text parses,
// which columns the caller insists on before touching the store, and how the
// resulting batch is stored.
type ImportOptions struct {
	Parse codec.ParseOptions
	// ExpectedColumns and RequiredColumns drive the pre-validation pass.
	// This pass is separate from, and in addition to, the orchestrator's own
	// schema validation: it rejects obviously malformed input before any
	// network round trip.
	ExpectedColumns []string
	RequiredColumns []string
	// ValidateSchema enables the pre-validation pass.
	ValidateSchema bool
	Store          StoreOptions
}

// DefaultImportOptions returns defaults matching DefaultParseOptions and
// DefaultStoreOptions, with pre-validation enabled.
func DefaultImportOptions() ImportOptions {
	return ImportOptions{
		Parse:          codec.DefaultParseOptions(),
		ValidateSchema: true,
		Store:          DefaultStoreOptions(),
	}
}

func (o ImportOptions) progress(phase Phase, percent float64) {
	if o.Store.OnProgress != nil {
		o.Store.OnProgress(phase, percent)
	}
}
