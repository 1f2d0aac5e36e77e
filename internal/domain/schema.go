package domain

// TypeTag identifies the declared type of a destination column.
type TypeTag string

const (
	TypeInteger   TypeTag = "integer"
	TypeNumeric   TypeTag = "numeric"
	TypeBoolean   TypeTag = "boolean"
	TypeText      TypeTag = "text"
	TypeTimestamp TypeTag = "timestamp"
	TypeJSON      TypeTag = "json"
	TypeUUID      TypeTag = "uuid"
)

// Known reports whether the tag is part of the closed taxonomy. Unrecognized
// tags fall back to a permissive accept-anything-non-nil rule in validation
// and pass values through untouched in coercion.
func (t TypeTag) Known() bool {
	switch t {
	case TypeInteger, TypeNumeric, TypeBoolean, TypeText, TypeTimestamp, TypeJSON, TypeUUID:
		return true
	}
	return false
}

// ColumnSchema describes a single destination column.
type ColumnSchema struct {
	Name     string  `json:"name"`
	Type     TypeTag `json:"type"`
	Nullable bool    `json:"nullable"`
}

// TableSchema is the authoritative column list of a destination table, fetched
// from the store gateway. Column names are unique within a table.
type TableSchema struct {
	Name    string         `json:"name"`
	Columns []ColumnSchema `json:"columns"`
}

// Column looks up a column by name.
func (s TableSchema) Column(name string) (ColumnSchema, bool) {
	for _, col := range s.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return ColumnSchema{}, false
}

// ColumnNames returns the schema's column names in declaration order.
func (s TableSchema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		names[i] = col.Name
	}
	return names
}

// RequiredColumns returns the names of all non-nullable columns in
// declaration order.
func (s TableSchema) RequiredColumns() []string {
	var names []string
	for _, col := range s.Columns {
		if !col.Nullable {
			names = append(names, col.Name)
		}
	}
	return names
}
