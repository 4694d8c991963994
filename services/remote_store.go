package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// Remote collections mirrored by the store. The jurisdiction tree is
// local-only and never appears here.
const (
	CollectionCases      = "cases"
	CollectionTasks      = "tasks"
	CollectionPromotions = "promotions"
)

// ErrDocumentNotFound is returned when an operation targets a document
// that does not exist remotely. Callers use it to trigger the
// create-from-local recovery path.
var ErrDocumentNotFound = errors.New("remote document not found")

// RemoteStore is the best-effort bridge to the remote document database.
// Array operations are the opportunistic single-element path; callers
// fall back to a full-field Update when they fail.
type RemoteStore interface {
	GetAll(ctx context.Context, collection string) (map[string]json.RawMessage, error)
	Get(ctx context.Context, collection, id string) (json.RawMessage, error)
	Set(ctx context.Context, collection, id string, doc interface{}) error
	Update(ctx context.Context, collection, id string, fields map[string]interface{}) error
	ArrayAppend(ctx context.Context, collection, id, field string, elem interface{}) error
	ArrayRemove(ctx context.Context, collection, id, field, elemID string) error
	Delete(ctx context.Context, collection, id string) error
}

// LibSQLStore implements RemoteStore over a Turso/libsql database with
// one (id, doc) table per collection.
type LibSQLStore struct {
	db *sql.DB
}

// NewLibSQLStore connects to the remote database and ensures the
// collection tables exist.
func NewLibSQLStore(databaseURL, authToken string) (*LibSQLStore, error) {
	dsn := databaseURL
	if authToken != "" {
		dsn = fmt.Sprintf("%s?authToken=%s", databaseURL, url.QueryEscape(authToken))
	}

	db, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open remote database: %w", err)
	}

	store := &LibSQLStore{db: db}
	if err := store.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}

	log.Printf("Remote store connection established (libsql)")
	return store, nil
}

func (s *LibSQLStore) ensureSchema() error {
	for _, collection := range []string{CollectionCases, CollectionTasks, CollectionPromotions} {
		query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (id TEXT PRIMARY KEY, doc TEXT NOT NULL)", collection)
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to create remote table %s: %w", collection, err)
		}
	}
	return nil
}

// Close closes the underlying connection
func (s *LibSQLStore) Close() error {
	return s.db.Close()
}

func validCollection(collection string) error {
	switch collection {
	case CollectionCases, CollectionTasks, CollectionPromotions:
		return nil
	}
	return fmt.Errorf("unknown collection: %s", collection)
}

// GetAll reads every document in a collection, keyed by id
func (s *LibSQLStore) GetAll(ctx context.Context, collection string) (map[string]json.RawMessage, error) {
	if err := validCollection(collection); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT id, doc FROM %s", collection))
	if err != nil {
		return nil, fmt.Errorf("failed to read collection %s: %w", collection, err)
	}
	defer rows.Close()

	docs := map[string]json.RawMessage{}
	for rows.Next() {
		var id, doc string
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs[id] = json.RawMessage(doc)
	}
	return docs, rows.Err()
}

// Get reads a single document
func (s *LibSQLStore) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	if err := validCollection(collection); err != nil {
		return nil, err
	}

	var doc string
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT doc FROM %s WHERE id = ?", collection), id).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s/%s: %w", collection, id, err)
	}
	return json.RawMessage(doc), nil
}

// Set writes the full document, creating or replacing it
func (s *LibSQLStore) Set(ctx context.Context, collection, id string, doc interface{}) error {
	if err := validCollection(collection); err != nil {
		return err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (id, doc) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET doc = excluded.doc",
		collection)
	if _, err := s.db.ExecContext(ctx, query, id, string(data)); err != nil {
		return fmt.Errorf("failed to write document %s/%s: %w", collection, id, err)
	}
	return nil
}

// Update patches top-level fields of an existing document without
// touching the rest of it.
func (s *LibSQLStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	if err := validCollection(collection); err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}

	expr := "doc"
	args := make([]interface{}, 0, len(fields)+1)
	for field, value := range fields {
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode field %s: %w", field, err)
		}
		expr = fmt.Sprintf("json_set(%s, '$.%s', json(?))", expr, field)
		args = append(args, string(data))
	}
	args = append(args, id)

	result, err := s.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET doc = %s WHERE id = ?", collection, expr), args...)
	if err != nil {
		return fmt.Errorf("failed to update document %s/%s: %w", collection, id, err)
	}
	return requireRow(result, collection, id)
}

// ArrayAppend appends one element to a JSON array field
func (s *LibSQLStore) ArrayAppend(ctx context.Context, collection, id, field string, elem interface{}) error {
	if err := validCollection(collection); err != nil {
		return err
	}

	data, err := json.Marshal(elem)
	if err != nil {
		return fmt.Errorf("failed to encode array element: %w", err)
	}

	query := fmt.Sprintf(
		"UPDATE %s SET doc = json_insert(doc, '$.%s[#]', json(?)) WHERE id = ?",
		collection, field)
	result, err := s.db.ExecContext(ctx, query, string(data), id)
	if err != nil {
		return fmt.Errorf("failed to append to %s/%s.%s: %w", collection, id, field, err)
	}
	return requireRow(result, collection, id)
}

// ArrayRemove removes the element whose "id" key matches elemID from a
// JSON array field.
func (s *LibSQLStore) ArrayRemove(ctx context.Context, collection, id, field, elemID string) error {
	if err := validCollection(collection); err != nil {
		return err
	}

	query := fmt.Sprintf(
		`UPDATE %s SET doc = json_set(doc, '$.%s',
			(SELECT json_group_array(json(value)) FROM json_each(doc, '$.%s')
			 WHERE json_extract(value, '$.id') <> ?))
		 WHERE id = ?`,
		collection, field, field)
	result, err := s.db.ExecContext(ctx, query, elemID, id)
	if err != nil {
		return fmt.Errorf("failed to remove from %s/%s.%s: %w", collection, id, field, err)
	}
	return requireRow(result, collection, id)
}

// Delete removes a document. Deleting a missing document is a no-op.
func (s *LibSQLStore) Delete(ctx context.Context, collection, id string) error {
	if err := validCollection(collection); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE id = ?", collection), id); err != nil {
		return fmt.Errorf("failed to delete document %s/%s: %w", collection, id, err)
	}
	return nil
}

func requireRow(result sql.Result, collection, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result for %s/%s: %w", collection, id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrDocumentNotFound)
	}
	return nil
}
