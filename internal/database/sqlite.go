package database

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added idx_documents_seq for ordered scans
const currentSchemaVersion = 1

// SQLite keeps a collection in a SQLite file.
// Uses WAL mode so readers do not block the single writer.
type SQLite struct {
	base

	path string

	connMu sync.Mutex
	db     *sql.DB
}

var _ Adapter = (*SQLite)(nil)

// NewSQLite creates an adapter for collection in the database file at path.
// Nothing is opened before Connect.
func NewSQLite(path, collection string, ids IDGenerator) *SQLite {
	s := &SQLite{path: path}
	s.base.init(collection, ids)
	return s
}

// Connect opens the database, applying pragmas and migrations.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//
// This function is idempotent - safe to call multiple times.
func (s *SQLite) Connect(ctx context.Context) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite3", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLite) conn() (*sql.DB, error) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.db == nil {
		return nil, &Error{Code: ErrCodeNotConnected, Message: "no connection to database", Collection: s.collection}
	}
	return s.db, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 adds the seq index for databases created before it was part of
// schema.sql.
func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_documents_seq
		ON documents(collection, seq)
	`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// CheckItem implements Adapter.
func (s *SQLite) CheckItem(ctx context.Context, id string) (bool, error) {
	if err := s.checkID(id); err != nil {
		return false, err
	}
	db, err := s.conn()
	if err != nil {
		return false, err
	}
	return exists(ctx, db, s.collection, id)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func exists(ctx context.Context, q querier, collection, id string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check item: %w", err)
	}
	return n == 1, nil
}

// whereClause builds the filter condition. Keys are sorted so the same filter
// always produces the same SQL.
func whereClause(collection string, filter Document) (string, []any, error) {
	conds := []string{"collection = ?"}
	args := []any{collection}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v, err := normalize(filter[k])
		if err != nil {
			return "", nil, invalidArgument(collection, "filter %s: %v", k, err)
		}
		if k == "id" {
			conds = append(conds, "id = ?")
			args = append(args, fmt.Sprint(v))
			continue
		}
		switch val := v.(type) {
		case nil:
			conds = append(conds, "json_type(data, ?) = 'null'")
			args = append(args, "$."+k)
		case map[string]any, []any:
			return "", nil, invalidArgument(collection, "filter %s: only scalar values are supported", k)
		default:
			conds = append(conds, "json_extract(data, ?) = ?")
			args = append(args, "$."+k, val)
		}
	}
	return strings.Join(conds, " AND "), args, nil
}

// CountItems implements Adapter.
func (s *SQLite) CountItems(ctx context.Context, filter Document) (int, error) {
	if err := s.checkFilter(filter); err != nil {
		return 0, err
	}
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	where, args, err := whereClause(s.collection, filter)
	if err != nil {
		return 0, err
	}

	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

// FindItems implements Adapter.
func (s *SQLite) FindItems(ctx context.Context, filter Document, offset, limit int) ([]Document, error) {
	if err := s.checkFilter(filter); err != nil {
		return nil, err
	}
	if offset < 0 {
		return nil, invalidArgument(s.collection, "negative offset %d", offset)
	}
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	where, args, err := whereClause(s.collection, filter)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	args = append(args, limit, offset)

	rows, err := db.QueryContext(ctx, `
		SELECT id, data FROM documents
		WHERE `+where+`
		ORDER BY seq ASC, id ASC COLLATE BINARY
		LIMIT ? OFFSET ?
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("find items: %w", err)
	}
	defer rows.Close()

	out := []Document{}
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("find items: %w", err)
		}
		doc, err := decode(id, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find items: %w", err)
	}
	return out, nil
}

// GetItem implements Adapter.
func (s *SQLite) GetItem(ctx context.Context, id string) (Document, bool, error) {
	if err := s.checkID(id); err != nil {
		return nil, false, err
	}
	db, err := s.conn()
	if err != nil {
		return nil, false, err
	}

	var revision int64
	caching := s.enabled(FeatureCache)
	if caching {
		revision, err = currentRevision(ctx, db, s.collection)
		if err != nil {
			return nil, false, err
		}
		if doc, ok := s.cached(id, revision); ok {
			return doc, true, nil
		}
	}

	var raw string
	err = db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND id = ?`,
		s.collection, id,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get item: %w", err)
	}

	doc, err := decode(id, raw)
	if err != nil {
		return nil, false, err
	}
	if caching {
		s.remember(id, revision, doc)
	}
	return doc, true, nil
}

// AddItem implements Adapter.
func (s *SQLite) AddItem(ctx context.Context, id string, data Document, mode ConflictMode) (string, error) {
	if err := s.checkWrite(data, mode); err != nil {
		return "", err
	}
	raw, err := encode(data)
	if err != nil {
		return "", err
	}
	db, err := s.conn()
	if err != nil {
		return "", err
	}
	if id == "" {
		id = s.ids.Generate()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("add item: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	found, err := exists(ctx, tx, s.collection, id)
	if err != nil {
		return "", err
	}
	if found {
		switch mode {
		case ConflictSkip:
			return "", nil
		case ConflictIgnore:
			if err := replace(ctx, tx, s.collection, id, raw); err != nil {
				return "", err
			}
		default:
			return "", &Error{Code: ErrCodeIDInUse, Message: "adding item failed - id already in use", Collection: s.collection, ID: id}
		}
	} else if err := insert(ctx, tx, s.collection, id, raw); err != nil {
		return "", err
	}

	if err := nextRevision(ctx, tx, s.collection); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("add item: commit: %w", err)
	}
	return id, nil
}

// UpdateItem implements Adapter.
func (s *SQLite) UpdateItem(ctx context.Context, id string, data Document, mode ConflictMode) (bool, error) {
	if err := s.checkID(id); err != nil {
		return false, err
	}
	if err := s.checkWrite(data, mode); err != nil {
		return false, err
	}
	raw, err := encode(data)
	if err != nil {
		return false, err
	}
	db, err := s.conn()
	if err != nil {
		return false, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("update item: begin tx: %w", err)
	}
	defer tx.Rollback()

	found, err := exists(ctx, tx, s.collection, id)
	if err != nil {
		return false, err
	}
	switch {
	case found:
		err = replace(ctx, tx, s.collection, id, raw)
	case mode == ConflictIgnore:
		err = insert(ctx, tx, s.collection, id, raw)
	case mode == ConflictSkip:
		return false, nil
	default:
		return false, &Error{Code: ErrCodeNotFound, Message: "updating item failed - no such id", Collection: s.collection, ID: id}
	}
	if err != nil {
		return false, err
	}

	if err := nextRevision(ctx, tx, s.collection); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("update item: commit: %w", err)
	}
	return true, nil
}

// RemoveItem implements Adapter.
func (s *SQLite) RemoveItem(ctx context.Context, id string, mode ConflictMode) (bool, error) {
	if err := s.checkID(id); err != nil {
		return false, err
	}
	if mode != ConflictError && mode != ConflictSkip {
		return false, invalidArgument(s.collection, "invalid conflict mode %q", mode)
	}
	db, err := s.conn()
	if err != nil {
		return false, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("remove item: begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`,
		s.collection, id,
	)
	if err != nil {
		return false, fmt.Errorf("remove item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove item: %w", err)
	}
	if n == 0 {
		if mode == ConflictSkip {
			return false, nil
		}
		return false, &Error{Code: ErrCodeNotFound, Message: "removing item failed - no such id", Collection: s.collection, ID: id}
	}

	if err := nextRevision(ctx, tx, s.collection); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("remove item: commit: %w", err)
	}
	return true, nil
}

// Revision implements Adapter.
func (s *SQLite) Revision(ctx context.Context) (int64, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	return currentRevision(ctx, db, s.collection)
}

// EnableFeature implements Adapter.
func (s *SQLite) EnableFeature(feature Feature, mode ConflictMode) error {
	return s.enableFeature(feature, mode)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insert(ctx context.Context, tx *sql.Tx, collection, id, raw string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO documents (collection, id, seq, data)
		VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM documents WHERE collection = ?), ?)
	`, collection, id, collection, raw)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func replace(ctx context.Context, e execer, collection, id, raw string) error {
	_, err := e.ExecContext(ctx,
		`UPDATE documents SET data = ? WHERE collection = ? AND id = ?`,
		raw, collection, id,
	)
	if err != nil {
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}

func currentRevision(ctx context.Context, q querier, collection string) (int64, error) {
	var rev int64
	err := q.QueryRowContext(ctx,
		`SELECT current FROM revisions WHERE collection = ?`, collection,
	).Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get revision: %w", err)
	}
	return rev, nil
}

// nextRevision increments the collection's revision, creating it at 1.
func nextRevision(ctx context.Context, e execer, collection string) error {
	_, err := e.ExecContext(ctx, `
		INSERT INTO revisions (collection, current) VALUES (?, 1)
		ON CONFLICT(collection) DO UPDATE SET current = current + 1
	`, collection)
	if err != nil {
		return fmt.Errorf("next revision: %w", err)
	}
	return nil
}
