package domain

// ValidationResult accumulates validation failures. Validation never stops at
// the first problem; it collects errors until an internal cap truncates
// type-mismatch detail.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ConversionResult carries a batch after type coercion together with every
// per-cell failure encountered along the way. Conversion never drops rows:
// the output batch always has the same length as the input.
type ConversionResult struct {
	Data   Batch
	Errors []string
}

// TableInfo reports the reconciled state of the destination table after a
// store attempt.
type TableInfo struct {
	Name     string `json:"name"`
	RowCount int64  `json:"rowCount"`
}

// StorageResult is the outcome of a single store attempt. Success is true only
// when every row of the converted batch was inserted. Errors holds the full
// accumulated list: validation, coercion, and insert failures in the order
// they occurred.
type StorageResult struct {
	Success       bool       `json:"success"`
	RowsProcessed int        `json:"rowsProcessed"`
	Errors        []string   `json:"errors,omitempty"`
	TableInfo     *TableInfo `json:"tableInfo,omitempty"`
}
