package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

type sqliteBackend struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) a SQLite database at path and returns a
// Gateway over it. Use ":memory:" for a throwaway database.
func NewSQLite(path string, logger *slog.Logger) (*Gateway, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: connect database: %w", err)
	}

	b := &sqliteBackend{db: db}
	if err := b.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: run migrations: %w", err)
	}
	return newGateway(b, logger), nil
}

func (s *sqliteBackend) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			key TEXT NOT NULL,
			sort_ts INTEGER NOT NULL DEFAULT 0,
			body TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (collection, key)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_sort ON documents(collection, sort_ts)`,
	}
	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

func (s *sqliteBackend) get(ctx context.Context, collection, key string) (Document, bool, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND key = ?`,
		collection, key,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	doc, err := unmarshalDocument(body)
	if err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

func (s *sqliteBackend) put(ctx context.Context, collection, key string, doc Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	var sortTS int64
	if t, ok := asTime(doc[fieldDate]); ok {
		sortTS = t.UnixNano()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, key, sort_ts, body) VALUES (?, ?, ?, ?)
		 ON CONFLICT(collection, key) DO UPDATE SET
			sort_ts = excluded.sort_ts,
			body = excluded.body,
			updated_at = CURRENT_TIMESTAMP`,
		collection, key, sortTS, string(body),
	)
	return err
}

func (s *sqliteBackend) list(ctx context.Context, collection string, q listQuery) ([]Document, error) {
	var (
		sb   strings.Builder
		args = []any{collection}
	)
	sb.WriteString(`SELECT body FROM documents WHERE collection = ?`)
	if q.arrayField != "" {
		sb.WriteString(` AND EXISTS (SELECT 1 FROM json_each(documents.body, ?) WHERE json_each.value = ?)`)
		args = append(args, "$."+q.arrayField, q.arrayValue)
	}
	switch {
	case q.orderByDate && q.desc:
		sb.WriteString(` ORDER BY sort_ts DESC, key DESC`)
	case q.orderByDate:
		sb.WriteString(` ORDER BY sort_ts ASC, key ASC`)
	default:
		sb.WriteString(` ORDER BY key ASC`)
	}
	if q.limit > 0 {
		sb.WriteString(` LIMIT ?`)
		args = append(args, q.limit)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		doc, err := unmarshalDocument(body)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *sqliteBackend) close() error {
	return s.db.Close()
}

func unmarshalDocument(body string) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	dec.UseNumber()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return doc, nil
}
