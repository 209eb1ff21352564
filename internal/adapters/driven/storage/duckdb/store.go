package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	goduckdb "github.com/marcboeker/go-duckdb/v2"

	"github.com/custodia-labs/preciar/internal/core/domain"
	"github.com/custodia-labs/preciar/internal/core/ports/driven"
)

// Table names inside the analytical database.
const (
	RawTable     = "datos_raw"
	CleanTable   = "datos_clean"
	stagingTable = "datos_clean_staging"
)

// Column names used by the subset filter.
const (
	regionColumn    = "l2"
	operationColumn = "operation_type"
)

// Store is a DuckDB-backed analytical store.
type Store struct {
	path string
}

var _ driven.AnalyticalStore = (*Store)(nil)

// NewStore creates a store for the database file at path.
// The file is created on first use.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("duckdb store: empty path")
	}
	return &Store{path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) open(ctx context.Context) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	db, err := sql.Open("duckdb", s.path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w: %w", s.path, domain.ErrStorageFailure, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening %s: %w: %w", s.path, domain.ErrStorageFailure, err)
	}
	return db, nil
}

// HasRawTable reports whether the raw table exists.
func (s *Store) HasRawTable(ctx context.Context) (bool, error) {
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	db, err := s.open(ctx)
	if err != nil {
		return false, err
	}
	defer db.Close()

	var n int
	err = db.QueryRowContext(ctx,
		`SELECT count(*) FROM information_schema.tables WHERE table_name = ?`, RawTable).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking %s: %w: %w", RawTable, domain.ErrStorageFailure, err)
	}
	return n > 0, nil
}

// ReplaceRawTable drops and recreates the raw table from a CSV file.
func (s *Store) ReplaceRawTable(ctx context.Context, csvPath string) (int64, error) {
	db, err := s.open(ctx)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	stmt := fmt.Sprintf(`CREATE OR REPLACE TABLE %s AS SELECT * FROM read_csv_auto(%s)`,
		quoteIdent(RawTable), quoteLiteral(csvPath))
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return 0, fmt.Errorf("loading %s into %s: %w: %w", csvPath, RawTable, domain.ErrStorageFailure, err)
	}

	var rows int64
	if err := db.QueryRowContext(ctx, `SELECT count(*) FROM `+quoteIdent(RawTable)).Scan(&rows); err != nil {
		return 0, fmt.Errorf("counting %s: %w: %w", RawTable, domain.ErrStorageFailure, err)
	}
	return rows, nil
}

// ExportSnapshot writes the raw table to a Parquet file, replacing it.
func (s *Store) ExportSnapshot(ctx context.Context, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	stmt := fmt.Sprintf(`COPY %s TO %s (FORMAT PARQUET)`, quoteIdent(RawTable), quoteLiteral(path))
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("exporting %s to %s: %w: %w", RawTable, path, domain.ErrStorageFailure, err)
	}
	return nil
}

// LoadRaw reads the raw rows matching filter.
// DATE and TIMESTAMP columns become time columns, numeric columns become
// float columns and everything else is read as text.
func (s *Store) LoadRaw(ctx context.Context, filter driven.RawFilter) (*domain.Table, error) {
	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	query := `SELECT * FROM ` + quoteIdent(RawTable)
	var (
		conds []string
		args  []any
	)
	if filter.Region != "" {
		conds = append(conds, quoteIdent(regionColumn)+" = ?")
		args = append(args, filter.Region)
	}
	if filter.Operation != "" {
		conds = append(conds, quoteIdent(operationColumn)+" = ?")
		args = append(args, filter.Operation)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w: %w", RawTable, domain.ErrStorageFailure, err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("reading %s columns: %w", RawTable, err)
	}

	cols := make([]*domain.Column, len(types))
	for i, ct := range types {
		cols[i] = &domain.Column{Name: ct.Name(), Kind: columnKind(ct.DatabaseTypeName())}
	}

	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", RawTable, err)
		}
		for i, c := range cols {
			appendValue(c, values[i])
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", RawTable, err)
	}

	return domain.NewTable(RawTable, cols...), nil
}

// ReplaceCleanTable replaces the clean table with table. Rows are appended
// to a staging table first, so a failed write leaves the previous clean
// table untouched.
func (s *Store) ReplaceCleanTable(ctx context.Context, table *domain.Table) error {
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	defs := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		defs[i] = quoteIdent(c.Name) + " " + sqlType(c.Kind)
	}
	ddl := fmt.Sprintf(`CREATE OR REPLACE TABLE %s (%s)`, quoteIdent(stagingTable), strings.Join(defs, ", "))
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("creating %s: %w: %w", stagingTable, domain.ErrStorageFailure, err)
	}

	if err := s.appendRows(ctx, db, stagingTable, table); err != nil {
		if _, dropErr := db.ExecContext(context.WithoutCancel(ctx), `DROP TABLE IF EXISTS `+quoteIdent(stagingTable)); dropErr != nil {
			err = errors.Join(err, dropErr)
		}
		return fmt.Errorf("writing %s: %w: %w", CleanTable, domain.ErrStorageFailure, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("publishing %s: %w: %w", CleanTable, domain.ErrStorageFailure, err)
	}
	for _, stmt := range []string{
		`DROP TABLE IF EXISTS ` + quoteIdent(CleanTable),
		fmt.Sprintf(`ALTER TABLE %s RENAME TO %s`, quoteIdent(stagingTable), quoteIdent(CleanTable)),
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("publishing %s: %w: %w", CleanTable, domain.ErrStorageFailure, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("publishing %s: %w: %w", CleanTable, domain.ErrStorageFailure, err)
	}
	return nil
}

// appendRow adds one row through the appender.
var appendRow = func(a *goduckdb.Appender, row []driver.Value) error {
	return a.AppendRow(row...)
}

func (s *Store) appendRows(ctx context.Context, db *sql.DB, name string, table *domain.Table) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Close()

	return conn.Raw(func(raw any) error {
		dc, ok := raw.(driver.Conn)
		if !ok {
			return fmt.Errorf("unexpected driver connection %T", raw)
		}
		appender, err := goduckdb.NewAppenderFromConn(dc, "", name)
		if err != nil {
			return err
		}

		row := make([]driver.Value, len(table.Columns))
		for i := 0; i < table.Rows(); i++ {
			if err := ctx.Err(); err != nil {
				appender.Close()
				return err
			}
			for j, c := range table.Columns {
				row[j] = c.Value(i)
			}
			if err := appendRow(appender, row); err != nil {
				appender.Close()
				return err
			}
		}
		return appender.Close()
	})
}

func columnKind(dbType string) domain.ColumnKind {
	t := strings.ToUpper(dbType)
	switch {
	case t == "DATE" || strings.HasPrefix(t, "TIMESTAMP"):
		return domain.KindTime
	case strings.HasPrefix(t, "DECIMAL"):
		return domain.KindNumeric
	}
	switch t {
	case "DOUBLE", "FLOAT", "REAL", "TINYINT", "SMALLINT", "INTEGER", "BIGINT", "HUGEINT",
		"UTINYINT", "USMALLINT", "UINTEGER", "UBIGINT":
		return domain.KindNumeric
	default:
		return domain.KindText
	}
}

func sqlType(kind domain.ColumnKind) string {
	switch kind {
	case domain.KindNumeric:
		return "DOUBLE"
	case domain.KindTime:
		return "TIMESTAMP"
	default:
		return "VARCHAR"
	}
}

func appendValue(c *domain.Column, v any) {
	switch c.Kind {
	case domain.KindNumeric:
		c.Numbers = append(c.Numbers, toFloat(v))
	case domain.KindTime:
		t, ok := v.(time.Time)
		c.Times = append(c.Times, t)
		c.Valid = append(c.Valid, ok)
	default:
		s, ok := toText(v)
		c.Texts = append(c.Texts, s)
		c.Valid = append(c.Valid, ok)
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case *big.Int:
		f, _ := new(big.Float).SetInt(n).Float64()
		return f
	case goduckdb.Decimal:
		if n.Value == nil {
			return math.NaN()
		}
		f, _ := new(big.Float).SetInt(n.Value).Float64()
		return f / math.Pow10(int(n.Scale))
	default:
		return math.NaN()
	}
}

func toText(v any) (string, bool) {
	switch s := v.(type) {
	case nil:
		return "", false
	case string:
		return s, true
	case []byte:
		return string(s), true
	case bool:
		return strconv.FormatBool(s), true
	default:
		return fmt.Sprint(s), true
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
