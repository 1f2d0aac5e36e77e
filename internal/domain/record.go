package domain

import "sort"

// Record is a single row keyed by column name. Values are dynamically typed:
// raw parses hold strings, converted batches hold the coerced Go values
// (int64, float64, bool, string, maps/slices for json columns) or nil.
type Record map[string]any

// Batch is an ordered sequence of records being ingested together. Go maps do
// not preserve key order, so the column order travels alongside the records;
// Parse fills it from the header row and Serialize defaults to it. All records
// in a batch are assumed to share the column set of the first record.
type Batch struct {
	Columns []string
	Records []Record
}

// NewBatch builds a batch from raw records, inferring the column order from
// the first record. Map iteration order is random, so inferred columns are
// sorted to keep downstream output deterministic.
func NewBatch(records []Record) Batch {
	batch := Batch{Records: records}
	if len(records) == 0 {
		return batch
	}
	for name := range records[0] {
		batch.Columns = append(batch.Columns, name)
	}
	sort.Strings(batch.Columns)
	return batch
}

// Len returns the number of records in the batch.
func (b Batch) Len() int {
	return len(b.Records)
}

// IsEmpty reports whether the batch holds no records.
func (b Batch) IsEmpty() bool {
	return len(b.Records) == 0
}

// ColumnSet returns the batch's columns as a lookup set. When the batch was
// built without an explicit column order the set is inferred from the first
// record.
func (b Batch) ColumnSet() map[string]struct{} {
	set := make(map[string]struct{}, len(b.Columns))
	for _, name := range b.Columns {
		set[name] = struct{}{}
	}
	if len(set) == 0 && len(b.Records) > 0 {
		for name := range b.Records[0] {
			set[name] = struct{}{}
		}
	}
	return set
}
