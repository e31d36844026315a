package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"              // SQLite driver (pure Go)
)

// Dialect names the SQL flavour of the backing database.
type Dialect string

// Supported dialects.
const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// ParseDialect validates a dialect name.
func ParseDialect(name string) (Dialect, error) {
	switch Dialect(strings.ToLower(name)) {
	case DialectSQLite, "sqlite3", "":
		return DialectSQLite, nil
	case DialectPostgres, "postgresql", "pgx":
		return DialectPostgres, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownDialect, name)
}

func (d Dialect) driver() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return "sqlite"
}

// SQLStore is the database-backed store.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	dsn     string
	logger  *slog.Logger
}

// New creates a store. If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *SQLStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLStore{logger: logger}
}

// Open connects to the database. For SQLite the dsn is a file path or
// ":memory:" for an in-memory database.
func (s *SQLStore) Open(ctx context.Context, dialect Dialect, dsn string) error {
	conn := dsn
	if dialect == DialectSQLite {
		conn = sqliteDSN(dsn)
	}

	s.logger.Debug("opening database", slog.String("dialect", string(dialect)))

	db, err := sql.Open(dialect.driver(), conn)
	if err != nil {
		return fmt.Errorf("failed to open %s database: %w", dialect, err)
	}
	if dialect == DialectSQLite && dsn == ":memory:" {
		// Every connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping %s database: %w", dialect, err)
	}

	s.db = db
	s.dialect = dialect
	s.dsn = dsn
	return nil
}

func sqliteDSN(path string) string {
	if path == ":memory:" {
		return "file::memory:?_pragma=foreign_keys(1)&_time_format=sqlite"
	}
	return path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_time_format=sqlite"
}

// Attach wraps an already open connection, typically a mock in tests.
func (s *SQLStore) Attach(db *sql.DB, dialect Dialect) {
	s.db = db
	s.dialect = dialect
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB returns the underlying connection.
func (s *SQLStore) DB() *sql.DB { return s.db }

// Dialect returns the dialect the store was opened with.
func (s *SQLStore) Dialect() Dialect { return s.dialect }

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (s *SQLStore) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}
	return s.db.ExecContext(ctx, s.rebind(query), args...)
}

func (s *SQLStore) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}
	return s.db.QueryContext(ctx, s.rebind(query), args...)
}

func (s *SQLStore) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.rebind(query), args...)
}

// expectOne maps a zero-row update or delete to ErrNotFound.
func expectOne(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
	}
	return nil
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// now returns the current time truncated for storage. SQLite keeps times as
// text, so a fixed precision keeps them comparable.
func now() time.Time {
	return storedTime(time.Now())
}

func storedTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
