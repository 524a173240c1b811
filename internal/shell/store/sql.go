package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/artpar/wheelspec/internal/core/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

const entityWheelSpec = "wheel_specification"

// =============================================================================
// Dialects
// =============================================================================

// Dialect identifies the SQL engine behind a store.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// driverName returns the database/sql driver registered for the dialect.
func (d Dialect) driverName() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return "sqlite3"
}

// DetectDialect picks the dialect for a DSN and returns the DSN to hand
// to the driver. postgres:// and postgresql:// URLs select PostgreSQL;
// anything else is treated as a SQLite path, with an optional sqlite://
// prefix stripped.
func DetectDialect(dsn string) (Dialect, string) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return DialectPostgres, dsn
	case strings.HasPrefix(dsn, "sqlite3://"):
		return DialectSQLite, strings.TrimPrefix(dsn, "sqlite3://")
	case strings.HasPrefix(dsn, "sqlite://"):
		return DialectSQLite, strings.TrimPrefix(dsn, "sqlite://")
	default:
		return DialectSQLite, dsn
	}
}

// sqliteDSN adds the connection options the store relies on. Immediate
// transactions make the duplicate check and insert take the write lock
// up front.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate"
}

// ensureDir creates the parent directory of a SQLite database file.
func ensureDir(path string) error {
	if path == "" || strings.HasPrefix(path, ":memory:") || strings.HasPrefix(path, "file:") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// =============================================================================
// Executor Interface - Shared by DB and Transaction
// =============================================================================

// executor abstracts database operations that can be performed on both
// a database connection and a transaction.
type executor interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	Rebind(query string) string
}

// =============================================================================
// SQLStore
// =============================================================================

// SQLStore implements Store on SQLite or PostgreSQL.
type SQLStore struct {
	db      *sqlx.DB
	dialect Dialect
}

// Open connects to the database named by dsn, sizes the pool and runs
// migrations.
func Open(dsn string, opts PoolOptions) (*SQLStore, error) {
	dialect, driverDSN := DetectDialect(dsn)
	opts = opts.Normalize()

	if dialect == DialectSQLite {
		if err := ensureDir(driverDSN); err != nil {
			return nil, NewStoreError("Open", "", "", "failed to create database directory", ErrConnectionFailed)
		}
		driverDSN = sqliteDSN(driverDSN)
	}

	db, err := sqlx.Open(dialect.driverName(), driverDSN)
	if err != nil {
		return nil, NewStoreError("Open", "", "", "failed to open database", ErrConnectionFailed)
	}

	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, NewStoreError("Open", "", "", "failed to ping database", ErrConnectionFailed)
	}

	// Run migrations
	if err := runMigrations(db.DB, dialect); err != nil {
		db.Close()
		return nil, NewStoreError("Open", "", "", err.Error(), ErrMigrationFailed)
	}

	return &SQLStore{db: db, dialect: dialect}, nil
}

// NewSQLiteStore opens a SQLite store at path with the default pool.
func NewSQLiteStore(path string) (*SQLStore, error) {
	return Open(path, DefaultPoolOptions())
}

// runMigrations runs the embedded migrations of the dialect.
func runMigrations(db *sql.DB, dialect Dialect) error {
	var (
		driver database.Driver
		name   string
		err    error
	)
	switch dialect {
	case DialectPostgres:
		driver, err = migratepgx.WithInstance(db, &migratepgx.Config{})
		name = "pgx5"
	default:
		driver, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
		name = "sqlite3"
	}
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations/"+string(dialect))
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, name, driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Dialect returns the engine the store is connected to.
func (s *SQLStore) Dialect() Dialect {
	return s.dialect
}

// Ping checks that the database is reachable.
func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return NewStoreError("Ping", "", "", err.Error(), ErrConnectionFailed)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// =============================================================================
// Wheel Specification Operations
// =============================================================================

// wheelSpecRow represents a wheel_specifications row in the database.
type wheelSpecRow struct {
	ID            string `db:"id"`
	FormNumber    string `db:"form_number"`
	SubmittedBy   string `db:"submitted_by"`
	SubmittedDate string `db:"submitted_date"`
	Fields        string `db:"fields"`
	Status        string `db:"status"`
	CreatedAt     string `db:"created_at"`
	UpdatedAt     string `db:"updated_at"`
}

const wheelSpecColumns = `id, form_number, submitted_by, submitted_date, fields, status, created_at, updated_at`

// CreateWheelSpecification runs the duplicate check and insert in one transaction.
func (s *SQLStore) CreateWheelSpecification(ctx context.Context, spec *domain.WheelSpecification) error {
	return s.WithTx(ctx, func(tx Store) error {
		return tx.CreateWheelSpecification(ctx, spec)
	})
}

func (s *SQLStore) GetWheelSpecification(ctx context.Context, formNumber string) (*domain.WheelSpecification, error) {
	return getWheelSpecification(ctx, s.db, formNumber)
}

func (s *SQLStore) ListWheelSpecifications(ctx context.Context, filter domain.Filter) ([]domain.WheelSpecification, error) {
	return listWheelSpecifications(ctx, s.db, filter)
}

// =============================================================================
// Transaction Support
// =============================================================================

func (s *SQLStore) WithTx(ctx context.Context, fn func(Store) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return NewStoreError("WithTx", "", "", "failed to begin transaction", ErrTxFailed)
	}

	txS := &txSQLStore{tx: tx}

	if err := fn(txS); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return NewStoreError("WithTx", "", "", fmt.Sprintf("rollback failed after error: %v", err), ErrTxFailed)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return NewStoreError("WithTx", entityWheelSpec, "", "form number already exists", ErrDuplicateFormNumber)
		}
		return NewStoreError("WithTx", "", "", "failed to commit transaction", ErrTxFailed)
	}

	return nil
}

// =============================================================================
// Transaction Store
// =============================================================================

// txSQLStore implements Store within a transaction.
type txSQLStore struct {
	tx *sqlx.Tx
}

func (s *txSQLStore) CreateWheelSpecification(ctx context.Context, spec *domain.WheelSpecification) error {
	return createWheelSpecification(ctx, s.tx, spec)
}

func (s *txSQLStore) GetWheelSpecification(ctx context.Context, formNumber string) (*domain.WheelSpecification, error) {
	return getWheelSpecification(ctx, s.tx, formNumber)
}

func (s *txSQLStore) ListWheelSpecifications(ctx context.Context, filter domain.Filter) ([]domain.WheelSpecification, error) {
	return listWheelSpecifications(ctx, s.tx, filter)
}

func (s *txSQLStore) WithTx(ctx context.Context, fn func(Store) error) error {
	// Already in a transaction, just run the function
	return fn(s)
}

func (s *txSQLStore) Ping(ctx context.Context) error {
	return nil
}

func (s *txSQLStore) Close() error {
	// No-op for tx store
	return nil
}

// =============================================================================
// Shared Implementation Functions
// =============================================================================

func createWheelSpecification(ctx context.Context, exec executor, spec *domain.WheelSpecification) error {
	const op = "CreateWheelSpecification"

	var count int
	err := exec.GetContext(ctx, &count,
		exec.Rebind(`SELECT COUNT(1) FROM wheel_specifications WHERE form_number = ?`), spec.FormNumber)
	if err != nil {
		return NewStoreError(op, entityWheelSpec, spec.FormNumber, err.Error(), err)
	}
	if count > 0 {
		return NewStoreError(op, entityWheelSpec, spec.FormNumber, "wheel specification with this form number already exists", ErrDuplicateFormNumber)
	}

	fieldsJSON, err := json.Marshal(spec.Fields)
	if err != nil {
		return NewStoreError(op, entityWheelSpec, spec.FormNumber, "failed to serialize fields", ErrInvalidData)
	}

	now := time.Now().UTC().Truncate(time.Second)

	query := `
		INSERT INTO wheel_specifications (
			id, form_number, submitted_by, submitted_date, fields, status,
			created_at, updated_at
		) VALUES (
			:id, :form_number, :submitted_by, :submitted_date, :fields, :status,
			:created_at, :updated_at
		)`

	row := map[string]any{
		"id":             spec.FormNumber,
		"form_number":    spec.FormNumber,
		"submitted_by":   spec.SubmittedBy,
		"submitted_date": spec.SubmittedDateString(),
		"fields":         string(fieldsJSON),
		"status":         string(domain.StatusSaved),
		"created_at":     now.Format(time.RFC3339),
		"updated_at":     now.Format(time.RFC3339),
	}

	_, err = exec.NamedExecContext(ctx, query, row)
	if err != nil {
		if isUniqueViolation(err) {
			return NewStoreError(op, entityWheelSpec, spec.FormNumber, "wheel specification with this form number already exists", ErrDuplicateFormNumber)
		}
		return NewStoreError(op, entityWheelSpec, spec.FormNumber, err.Error(), err)
	}

	spec.Status = domain.StatusSaved
	spec.CreatedAt = now
	spec.UpdatedAt = now
	return nil
}

func getWheelSpecification(ctx context.Context, exec executor, formNumber string) (*domain.WheelSpecification, error) {
	query := exec.Rebind(`SELECT ` + wheelSpecColumns + ` FROM wheel_specifications WHERE form_number = ?`)

	var row wheelSpecRow
	err := exec.GetContext(ctx, &row, query, formNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetWheelSpecification", entityWheelSpec, formNumber, "wheel specification not found", ErrNotFound)
		}
		return nil, NewStoreError("GetWheelSpecification", entityWheelSpec, formNumber, err.Error(), err)
	}

	return rowToWheelSpecification(&row)
}

func listWheelSpecifications(ctx context.Context, exec executor, filter domain.Filter) ([]domain.WheelSpecification, error) {
	var (
		conds []string
		args  []any
	)
	if filter.FormNumber != "" {
		conds = append(conds, "form_number = ?")
		args = append(args, filter.FormNumber)
	}
	if filter.SubmittedBy != "" {
		conds = append(conds, "submitted_by = ?")
		args = append(args, filter.SubmittedBy)
	}
	if filter.SubmittedDate != nil {
		conds = append(conds, "submitted_date = ?")
		args = append(args, filter.SubmittedDate.Format(domain.DateLayout))
	}

	query := `SELECT ` + wheelSpecColumns + ` FROM wheel_specifications`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY form_number`

	var rows []wheelSpecRow
	if err := exec.SelectContext(ctx, &rows, exec.Rebind(query), args...); err != nil {
		return nil, NewStoreError("ListWheelSpecifications", entityWheelSpec, "", err.Error(), err)
	}

	specs := make([]domain.WheelSpecification, 0, len(rows))
	for i := range rows {
		spec, err := rowToWheelSpecification(&rows[i])
		if err != nil {
			return nil, err
		}
		specs = append(specs, *spec)
	}

	return specs, nil
}

// =============================================================================
// Helper Functions
// =============================================================================

func rowToWheelSpecification(row *wheelSpecRow) (*domain.WheelSpecification, error) {
	const op = "rowToWheelSpecification"

	submittedDate, err := time.Parse(domain.DateLayout, row.SubmittedDate)
	if err != nil {
		return nil, NewStoreError(op, entityWheelSpec, row.FormNumber, "failed to parse submitted_date", ErrInvalidData)
	}

	var fields domain.Fields
	if err := json.Unmarshal([]byte(row.Fields), &fields); err != nil {
		return nil, NewStoreError(op, entityWheelSpec, row.FormNumber, "failed to deserialize fields", ErrInvalidData)
	}

	status, err := domain.ParseStatus(row.Status)
	if err != nil {
		return nil, NewStoreError(op, entityWheelSpec, row.FormNumber, "unknown status "+row.Status, ErrInvalidData)
	}

	spec := &domain.WheelSpecification{
		FormNumber:    row.FormNumber,
		SubmittedBy:   row.SubmittedBy,
		SubmittedDate: domain.DateOf(submittedDate),
		Fields:        fields,
		Status:        status,
	}
	spec.CreatedAt, _ = time.Parse(time.RFC3339, row.CreatedAt)
	spec.UpdatedAt, _ = time.Parse(time.RFC3339, row.UpdatedAt)

	return spec, nil
}

// isUniqueViolation reports whether err is a unique or primary key
// violation from either engine.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	return false
}
