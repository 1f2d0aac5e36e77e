// Package codec converts between raw delimited text and row batches.
//
// Parsing is a plain split on newlines and the delimiter: quoted fields are
// NOT honored on input, only produced on output. Changing that would alter
// how input that happens to contain quotes parses today, so it stays.
package codec

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/budgetsakkie/pricefeed/internal/domain"
)

// ParseOptions controls how raw text is split into records.
type ParseOptions struct {
	Delimiter      string
	HasHeader      bool
	SkipEmptyLines bool
	TrimValues     bool
}

// DefaultParseOptions returns the standard comma-separated configuration:
// first line is the header, empty lines are dropped, values are trimmed.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		Delimiter:      ",",
		HasHeader:      true,
		SkipEmptyLines: true,
		TrimValues:     true,
	}
}

// SerializeOptions controls batch-to-text output.
type SerializeOptions struct {
	// Columns restricts and orders the emitted columns. Defaults to the
	// batch's own column order.
	Columns       []string
	IncludeHeader bool
	Delimiter     string
}

// DefaultSerializeOptions returns comma-separated output with a header line.
func DefaultSerializeOptions() SerializeOptions {
	return SerializeOptions{IncludeHeader: true, Delimiter: ","}
}

// Parse converts delimited text into a batch. A header-only file (or text
// that is all empty lines) yields an empty batch. Lines with fewer fields
// than the header are padded with empty strings; extra fields are dropped.
// Input line order is preserved.
func Parse(text string, opts ParseOptions) domain.Batch {
	if opts.Delimiter == "" {
		opts.Delimiter = ","
	}

	lines := strings.Split(text, "\n")
	if opts.SkipEmptyLines {
		kept := lines[:0]
		for _, line := range lines {
			if strings.TrimSpace(line) != "" {
				kept = append(kept, line)
			}
		}
		lines = kept
	}
	if len(lines) == 0 {
		return domain.Batch{}
	}

	var headers []string
	var dataLines []string
	if opts.HasHeader {
		headers = splitFields(lines[0], opts)
		dataLines = lines[1:]
	} else {
		// Synthesize column names from the first data line's field count.
		width := len(splitFields(lines[0], opts))
		headers = make([]string, width)
		for i := range headers {
			headers[i] = fmt.Sprintf("column%d", i)
		}
		dataLines = lines
	}

	batch := domain.Batch{Columns: headers}
	for _, line := range dataLines {
		fields := splitFields(line, opts)
		record := make(domain.Record, len(headers))
		for i, name := range headers {
			if i < len(fields) {
				record[name] = fields[i]
			} else {
				record[name] = ""
			}
		}
		batch.Records = append(batch.Records, record)
	}
	return batch
}

func splitFields(line string, opts ParseOptions) []string {
	fields := strings.Split(line, opts.Delimiter)
	if opts.TrimValues {
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
	}
	return fields
}

// Serialize renders a batch as delimited text. Every row, including the last,
// is terminated with a newline. Cell rendering: nil becomes the empty string,
// maps and slices are JSON-encoded, and any value containing the delimiter, a
// double quote, or a newline is wrapped in double quotes with internal quotes
// doubled. Types do not survive the text boundary: Parse(Serialize(b)) yields
// every cell back as a string.
func Serialize(batch domain.Batch, opts SerializeOptions) string {
	if opts.Delimiter == "" {
		opts.Delimiter = ","
	}
	columns := opts.Columns
	if len(columns) == 0 {
		columns = batch.Columns
		if len(columns) == 0 && len(batch.Records) > 0 {
			columns = domain.NewBatch(batch.Records).Columns
		}
	}

	var sb strings.Builder
	if opts.IncludeHeader {
		writeRow(&sb, columns, opts.Delimiter)
	}
	for _, record := range batch.Records {
		fields := make([]string, len(columns))
		for i, name := range columns {
			fields[i] = renderCell(record[name], opts.Delimiter)
		}
		writeRow(&sb, fields, opts.Delimiter)
	}
	return sb.String()
}

func writeRow(sb *strings.Builder, fields []string, delimiter string) {
	sb.WriteString(strings.Join(fields, delimiter))
	sb.WriteString("\n")
}

func renderCell(value any, delimiter string) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return quoteIfNeeded(v, delimiter)
	case map[string]any, []any:
		encoded, err := json.Marshal(v)
		if err != nil {
			return quoteIfNeeded(fmt.Sprint(v), delimiter)
		}
		return quoteIfNeeded(string(encoded), delimiter)
	default:
		return quoteIfNeeded(fmt.Sprint(v), delimiter)
	}
}

func quoteIfNeeded(s, delimiter string) string {
	if strings.Contains(s, delimiter) || strings.Contains(s, `"`) || strings.Contains(s, "\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
