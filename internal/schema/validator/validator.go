// Package validator checks row batches against a destination table's column
// list and nullability constraints before anything touches the store.
package validator

import (
	"fmt"
	"strings"

	"github.com/budgetsakkie/pricefeed/internal/coerce"
	"github.com/budgetsakkie/pricefeed/internal/domain"
)

const (
	// maxTypeErrors bounds how much type-mismatch detail a single validation
	// pass accumulates before giving up with a terminal marker.
	maxTypeErrors = 10
	// maxScannedRecords bounds how deep strict validation scans a batch.
	maxScannedRecords = 100
)

// ValidateShape checks a batch against caller-declared expected and required
// column lists. All expected columns missing from the batch are reported as a
// single combined error. Required-column null violations are deduplicated per
// column: each offending column is reported once, at the first row where it
// is seen missing, no matter how many rows violate it.
func ValidateShape(batch domain.Batch, expectedColumns, requiredColumns []string) domain.ValidationResult {
	if batch.IsEmpty() {
		return invalid("batch is empty")
	}

	var errs []string
	actual := batch.ColumnSet()

	var missing []string
	for _, name := range expectedColumns {
		if _, ok := actual[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		errs = append(errs, fmt.Sprintf("missing columns: %s", strings.Join(missing, ", ")))
	}

	reported := make(map[string]bool, len(requiredColumns))
	for i, record := range batch.Records {
		for _, name := range requiredColumns {
			if reported[name] {
				continue
			}
			if value, ok := record[name]; !ok || value == nil {
				errs = append(errs, fmt.Sprintf("required column %s is null (row %d)", name, i+1))
				reported[name] = true
			}
		}
	}

	return domain.ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// ValidateAgainstSchema checks a batch against the authoritative table schema.
// Non-nullable columns are required; any of them absent from the batch's
// column set are reported as one combined error. With strict enabled the
// first 100 records are additionally scanned for type mismatches, stopping
// with a terminal "too many type errors" marker once 10 have accumulated.
// Nullable columns exempt nil values from type checking.
func ValidateAgainstSchema(batch domain.Batch, schema domain.TableSchema, strict bool) domain.ValidationResult {
	if batch.IsEmpty() {
		return invalid("batch is empty")
	}

	var errs []string
	actual := batch.ColumnSet()

	var missing []string
	for _, name := range schema.RequiredColumns() {
		if _, ok := actual[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		errs = append(errs, fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")))
	}

	if strict {
		errs = append(errs, scanTypes(batch, schema)...)
	}

	return domain.ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

func scanTypes(batch domain.Batch, schema domain.TableSchema) []string {
	collector := newErrorCollector(maxTypeErrors, "too many type errors; validation stopped")

	for i, record := range batch.Records {
		if i >= maxScannedRecords || collector.full() {
			break
		}
		for _, col := range schema.Columns {
			value, present := record[col.Name]
			if !present || value == nil {
				if present && !col.Nullable {
					if !collector.add(fmt.Sprintf("row %d column %s: null value in non-nullable column", i+1, col.Name)) {
						break
					}
				}
				continue
			}
			if !coerce.ValidForType(value, col.Type) {
				if !collector.add(fmt.Sprintf("row %d column %s: value %v does not match type %s", i+1, col.Name, value, col.Type)) {
					break
				}
			}
		}
	}

	return collector.errors()
}

func invalid(msg string) domain.ValidationResult {
	return domain.ValidationResult{Valid: false, Errors: []string{msg}}
}
