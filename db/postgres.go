package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq" // registers the "postgres" driver
)

const documentsSchema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT        NOT NULL,
	id         TEXT        NOT NULL,
	fields     JSONB       NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS documents_fields_gin ON documents USING GIN (fields jsonb_path_ops);`

// Connect открывает пул соединений и проверяет его пингом с таймаутом.
func Connect(dsn string, timeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database handle: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database within %v: %w (close: %v)", timeout, err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database within %v: %w", timeout, err)
	}

	return db, nil
}

// postgresStore хранит документы в одной таблице JSONB. Равенство в Query реализовано через @>.
type postgresStore struct {
	db *sql.DB
}

// NewPostgresStore подключается к PostgreSQL и создает таблицу documents, если её нет.
func NewPostgresStore(ctx context.Context, dsn string, timeout time.Duration) (DocumentStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: DATABASE_URL is not set", ErrStoreUnavailable)
	}
	conn, err := Connect(dsn, timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if _, err := conn.ExecContext(ctx, documentsSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create documents table: %w", mapPQError(err))
	}
	return &postgresStore{db: conn}, nil
}

func (s *postgresStore) serverNow(ctx context.Context) (time.Time, error) {
	var now time.Time
	if err := s.db.QueryRowContext(ctx, `SELECT now()`).Scan(&now); err != nil {
		return time.Time{}, mapPQError(err)
	}
	return now.UTC(), nil
}

func (s *postgresStore) encode(ctx context.Context, fields Fields) ([]byte, error) {
	needsNow := false
	for _, v := range fields {
		if v == ServerTimestamp {
			needsNow = true
			break
		}
	}
	if needsNow {
		now, err := s.serverNow(ctx)
		if err != nil {
			return nil, err
		}
		fields = resolveTimestamps(fields, now)
	}
	return json.Marshal(fields)
}

func (s *postgresStore) Insert(ctx context.Context, collection string, fields Fields) (string, error) {
	if collection == "" {
		return "", ErrEmptyCollection
	}
	payload, err := s.encode(ctx, fields)
	if err != nil {
		return "", fmt.Errorf("failed to encode document for %s: %w", collection, err)
	}

	id := uuid.NewString()
	query := `INSERT INTO documents (collection, id, fields) VALUES ($1, $2, $3)`
	if _, err := s.db.ExecContext(ctx, query, collection, id, payload); err != nil {
		return "", fmt.Errorf("postgres insert into %s: %w", collection, mapPQError(err))
	}
	return id, nil
}

func (s *postgresStore) Get(ctx context.Context, collection, id string) (Document, bool, error) {
	if err := checkRef(collection, id); err != nil {
		return Document{}, false, err
	}

	var raw []byte
	query := `SELECT fields FROM documents WHERE collection = $1 AND id = $2`
	err := s.db.QueryRowContext(ctx, query, collection, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, false, nil
		}
		return Document{}, false, fmt.Errorf("postgres get %s/%s: %w", collection, id, mapPQError(err))
	}

	fields, err := decodeFields(raw)
	if err != nil {
		return Document{}, false, fmt.Errorf("failed to decode %s/%s: %w", collection, id, err)
	}
	return Document{ID: id, Fields: fields}, true, nil
}

func (s *postgresStore) Query(ctx context.Context, collection, field string, value interface{}) ([]Document, error) {
	if collection == "" {
		return nil, ErrEmptyCollection
	}
	filter, err := json.Marshal(map[string]interface{}{field: value})
	if err != nil {
		return nil, fmt.Errorf("failed to encode filter %s == %v: %w", field, value, err)
	}

	query := `
		SELECT id, fields
		FROM documents
		WHERE collection = $1 AND fields @> $2::jsonb
		ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, collection, filter)
	if err != nil {
		return nil, fmt.Errorf("postgres query %s where %s == %v: %w", collection, field, value, mapPQError(err))
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		fields, err := decodeFields(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s/%s: %w", collection, id, err)
		}
		docs = append(docs, Document{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *postgresStore) Set(ctx context.Context, collection, id string, fields Fields, merge bool) error {
	if err := checkRef(collection, id); err != nil {
		return err
	}
	payload, err := s.encode(ctx, fields)
	if err != nil {
		return fmt.Errorf("failed to encode document %s/%s: %w", collection, id, err)
	}

	query := `
		INSERT INTO documents (collection, id, fields) VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO UPDATE SET fields = EXCLUDED.fields`
	if merge {
		query = `
		INSERT INTO documents (collection, id, fields) VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO UPDATE SET fields = documents.fields || EXCLUDED.fields`
	}

	if _, err := s.db.ExecContext(ctx, query, collection, id, payload); err != nil {
		return fmt.Errorf("postgres set %s/%s: %w", collection, id, mapPQError(err))
	}
	return nil
}

func (s *postgresStore) Delete(ctx context.Context, collection, id string) error {
	if err := checkRef(collection, id); err != nil {
		return err
	}
	query := `DELETE FROM documents WHERE collection = $1 AND id = $2`
	if _, err := s.db.ExecContext(ctx, query, collection, id); err != nil {
		return fmt.Errorf("postgres delete %s/%s: %w", collection, id, mapPQError(err))
	}
	return nil
}

func (s *postgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *postgresStore) Close() error {
	return s.db.Close()
}

func decodeFields(raw []byte) (Fields, error) {
	fields := make(Fields)
	if len(raw) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// mapPQError переводит ошибки подключения/отсутствия таблицы в ErrStoreUnavailable.
func mapPQError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08", "57", "28": // connection_exception, operator_intervention, invalid_authorization
			return fmt.Errorf("%w: %s", ErrStoreUnavailable, pqErr.Message)
		}
		if pqErr.Code == "42P01" { // undefined_table
			return fmt.Errorf("%w: documents table is missing: %s", ErrStoreUnavailable, pqErr.Message)
		}
	}
	return err
}
