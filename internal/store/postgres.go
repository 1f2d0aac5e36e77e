package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/budgetsakkie/pricefeed/internal/domain"
)

// PostgresGateway implements Gateway over a pgx connection pool. Destination
// tables live in the public schema; their definitions are introspected from
// information_schema rather than declared in code.
type PostgresGateway struct {
	pool *pgxpool.Pool
}

// NewPostgresGateway creates a gateway backed by the given pool.
func NewPostgresGateway(pool *pgxpool.Pool) *PostgresGateway {
	return &PostgresGateway{pool: pool}
}

func (g *PostgresGateway) Connected(ctx context.Context) error {
	if err := g.pool.Ping(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	return nil
}

func (g *PostgresGateway) TableExists(ctx context.Context, name string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)`
	var exists bool
	if err := g.pool.QueryRow(ctx, query, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check table existence: %w", err)
	}
	return exists, nil
}

func (g *PostgresGateway) GetSchema(ctx context.Context, name string) (domain.TableSchema, error) {
	const query = `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1
		ORDER BY ordinal_position`

	rows, err := g.pool.Query(ctx, query, name)
	if err != nil {
		return domain.TableSchema{}, fmt.Errorf("failed to fetch schema: %w", err)
	}
	defer rows.Close()

	schema := domain.TableSchema{Name: name}
	for rows.Next() {
		var columnName, dataType, isNullable string
		if err := rows.Scan(&columnName, &dataType, &isNullable); err != nil {
			return domain.TableSchema{}, fmt.Errorf("failed to scan schema row: %w", err)
		}
		schema.Columns = append(schema.Columns, domain.ColumnSchema{
			Name:     columnName,
			Type:     mapDataType(dataType),
			Nullable: isNullable == "YES",
		})
	}
	if err := rows.Err(); err != nil {
		return domain.TableSchema{}, fmt.Errorf("failed to read schema rows: %w", err)
	}
	if len(schema.Columns) == 0 {
		return domain.TableSchema{}, fmt.Errorf("no schema available for table %s", name)
	}
	return schema, nil
}

func (g *PostgresGateway) DeleteAll(ctx context.Context, name string) error {
	if _, err := g.pool.Exec(ctx, "DELETE FROM "+quoteIdentifier(name)); err != nil {
		return fmt.Errorf("failed to delete existing rows: %w", err)
	}
	return nil
}

func (g *PostgresGateway) InsertBatch(ctx context.Context, name string, columns []string, records []domain.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	quotedCols := make([]string, len(columns))
	for i, col := range columns {
		quotedCols[i] = quoteIdentifier(col)
	}

	var sb strings.Builder
	args := make([]any, 0, len(records)*len(columns))
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ",
		quoteIdentifier(name), strings.Join(quotedCols, ", "))

	for i, record := range records {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for j, col := range columns {
			if j > 0 {
				sb.WriteString(", ")
			}
			args = append(args, record[col])
			fmt.Fprintf(&sb, "$%d", len(args))
		}
		sb.WriteString(")")
	}

	tag, err := g.pool.Exec(ctx, sb.String(), args...)
	if err != nil {
		return 0, fmt.Errorf("insert failed: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (g *PostgresGateway) CountRows(ctx context.Context, name string) (int64, error) {
	var count int64
	if err := g.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+quoteIdentifier(name)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return count, nil
}

func (g *PostgresGateway) ListTables(ctx context.Context) ([]string, error) {
	const query = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		ORDER BY table_name`

	rows, err := g.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table rows: %w", err)
	}
	return tables, nil
}

// mapDataType translates a Postgres data type to the pipeline's type taxonomy.
// Types with no mapping are passed through verbatim; downstream validation
// treats unrecognized tags permissively.
func mapDataType(dataType string) domain.TypeTag {
	switch strings.ToLower(dataType) {
	case "smallint", "integer", "bigint":
		return domain.TypeInteger
	case "numeric", "decimal", "real", "double precision":
		return domain.TypeNumeric
	case "boolean":
		return domain.TypeBoolean
	case "text", "character varying", "character":
		return domain.TypeText
	case "timestamp without time zone", "timestamp with time zone", "date":
		return domain.TypeTimestamp
	case "json", "jsonb":
		return domain.TypeJSON
	case "uuid":
		return domain.TypeUUID
	default:
		return domain.TypeTag(dataType)
	}
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
