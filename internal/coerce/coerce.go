// Package coerce converts raw, stringly-typed cell values into the Go values
// a destination column's declared type calls for.
package coerce

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/budgetsakkie/pricefeed/internal/domain"
)

var timeLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05.000000",
	"2006/01/02",
	"01/02/2006",
	"02/01/2006",
}

// ValidForType reports whether a value conforms to the declared type. It is a
// pure predicate and never panics. nil is always valid here: nullability is
// the validator's concern, not the coercer's.
func ValidForType(value any, tag domain.TypeTag) bool {
	if value == nil {
		return true
	}
	switch tag {
	case domain.TypeInteger:
		f, ok := toFloat(value)
		return ok && f == math.Trunc(f) && !math.IsInf(f, 0)
	case domain.TypeNumeric:
		_, ok := toFloat(value)
		return ok
	case domain.TypeBoolean:
		switch v := value.(type) {
		case bool:
			return true
		case string:
			return v == "true" || v == "false"
		default:
			f, ok := toFloat(value)
			return ok && (f == 0 || f == 1)
		}
	case domain.TypeText:
		switch value.(type) {
		case string, int, int32, int64, float32, float64, json.Number:
			return true
		}
		return false
	case domain.TypeTimestamp:
		_, err := parseTimestamp(stringify(value))
		return err == nil
	case domain.TypeJSON:
		switch value.(type) {
		case map[string]any, []any:
			return true
		}
		var out any
		return json.Unmarshal([]byte(stringify(value)), &out) == nil
	case domain.TypeUUID:
		s, ok := value.(string)
		if !ok {
			return false
		}
		return isCanonicalUUID(s)
	default:
		// Unrecognized declared types accept anything present.
		return true
	}
}

// Coerce converts a value to the declared type, or returns an error the
// caller is expected to catch per cell. nil passes through unchanged.
func Coerce(value any, tag domain.TypeTag) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch tag {
	case domain.TypeInteger:
		return coerceInteger(value)
	case domain.TypeNumeric:
		f, ok := toFloat(value)
		if !ok {
			return nil, fmt.Errorf("unable to coerce %q to numeric", stringify(value))
		}
		return f, nil
	case domain.TypeBoolean:
		return coerceBoolean(value)
	case domain.TypeText:
		return stringify(value), nil
	case domain.TypeTimestamp:
		ts, err := parseTimestamp(stringify(value))
		if err != nil {
			return nil, fmt.Errorf("unable to coerce %q to timestamp: %w", stringify(value), err)
		}
		return ts.UTC().Format(time.RFC3339), nil
	case domain.TypeJSON:
		switch v := value.(type) {
		case map[string]any, []any:
			return v, nil
		}
		var out any
		if err := json.Unmarshal([]byte(stringify(value)), &out); err != nil {
			return nil, fmt.Errorf("invalid json payload: %w", err)
		}
		return out, nil
	case domain.TypeUUID:
		s, ok := value.(string)
		if !ok || !isCanonicalUUID(s) {
			return nil, fmt.Errorf("%q is not a valid uuid", stringify(value))
		}
		return s, nil
	default:
		return value, nil
	}
}

func coerceInteger(value any) (any, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	}
	raw := stringify(value)
	if i, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err == nil {
		return i, nil
	}
	if f, ok := toFloat(value); ok && f == math.Trunc(f) && !math.IsInf(f, 0) {
		return int64(f), nil
	}
	return nil, fmt.Errorf("unable to coerce %q to integer", raw)
}

func coerceBoolean(value any) (any, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		switch v {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	if f, ok := toFloat(value); ok {
		switch f {
		case 1:
			return true, nil
		case 0:
			return false, nil
		}
	}
	return nil, fmt.Errorf("unable to coerce %q to boolean", stringify(value))
}

// ConvertBatch coerces every cell whose column appears in the schema. On a
// per-cell failure the error is recorded with its 1-based row index; nullable
// columns self-heal to nil so the row stays insertable, non-nullable columns
// keep the original invalid value and surface the failure at insert time.
// Columns absent from the schema pass through untouched, and no row is ever
// dropped. Errors are ordered row-major, following the batch's column order.
func ConvertBatch(batch domain.Batch, schema domain.TableSchema) domain.ConversionResult {
	result := domain.ConversionResult{
		Data: domain.Batch{
			Columns: batch.Columns,
			Records: make([]domain.Record, len(batch.Records)),
		},
	}

	for i, record := range batch.Records {
		converted := make(domain.Record, len(record))
		for name, value := range record {
			converted[name] = value
		}

		for _, name := range columnOrder(batch, record) {
			col, ok := schema.Column(name)
			if !ok {
				continue
			}
			value, present := record[name]
			if !present || value == nil {
				continue
			}

			coerced, err := Coerce(value, col.Type)
			if err != nil {
				result.Errors = append(result.Errors,
					fmt.Sprintf("row %d column %s: %v", i+1, name, err))
				if col.Nullable {
					converted[name] = nil
				}
				continue
			}
			converted[name] = coerced
		}

		result.Data.Records[i] = converted
	}
	return result
}

// columnOrder yields the record's columns in batch order, falling back to a
// sorted key list when the batch carries no explicit order.
func columnOrder(batch domain.Batch, record domain.Record) []string {
	if len(batch.Columns) > 0 {
		return batch.Columns
	}
	return domain.NewBatch([]domain.Record{record}).Columns
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func stringify(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format")
}

func isCanonicalUUID(s string) bool {
	// Canonical 8-4-4-4-12 form only; uuid.Parse alone also accepts braced
	// and urn-prefixed variants.
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
