package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Document is a stored LaTeX document.
type Document struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Content   string `json:"content,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Version is one entry in a document's append-only version history.
type Version struct {
	ID          string `json:"id"`
	DocumentID  string `json:"document_id"`
	Content     string `json:"content"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

// CreateDocument stores a new document and records its initial version.
func (s *Store) CreateDocument(ctx context.Context, name, content string) (*Document, error) {
	doc := &Document{
		ID:        uuid.NewString(),
		Name:      name,
		Content:   content,
		CreatedAt: now(),
	}
	doc.UpdatedAt = doc.CreatedAt

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO documents (id, name, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		doc.ID, doc.Name, doc.Content, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("store: inserting document: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO document_versions (id, document_id, content, description, created_at) VALUES (?, ?, ?, ?, ?)",
		uuid.NewString(), doc.ID, content, "Initial version", doc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("store: inserting initial version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit: %w", err)
	}
	return doc, nil
}

// GetDocument fetches a document by id.
func (s *Store) GetDocument(ctx context.Context, id string) (*Document, error) {
	var doc Document
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, content, created_at, updated_at FROM documents WHERE id = ?", id).
		Scan(&doc.ID, &doc.Name, &doc.Content, &doc.CreatedAt, &doc.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: querying document: %w", err)
	}
	return &doc, nil
}

// UpdateDocument replaces a document's content and appends the new
// content to its version history.
func (s *Store) UpdateDocument(ctx context.Context, id, content, description string) (*Document, error) {
	if description == "" {
		description = "Updated"
	}
	ts := now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback()

	var doc Document
	err = tx.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM documents WHERE id = ?", id).
		Scan(&doc.ID, &doc.Name, &doc.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: querying document: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO document_versions (id, document_id, content, description, created_at) VALUES (?, ?, ?, ?, ?)",
		uuid.NewString(), id, content, description, ts)
	if err != nil {
		return nil, fmt.Errorf("store: inserting version: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE documents SET content = ?, updated_at = ? WHERE id = ?", content, ts, id)
	if err != nil {
		return nil, fmt.Errorf("store: updating document: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit: %w", err)
	}

	doc.Content = content
	doc.UpdatedAt = ts
	return &doc, nil
}

// ListDocuments returns all documents, newest first, without content.
func (s *Store) ListDocuments(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, created_at, updated_at FROM documents ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("store: listing documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Name, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("store: scanning document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// DeleteDocument removes a document together with its versions,
// conversations and messages.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"DELETE FROM messages WHERE conversation_id IN (SELECT id FROM conversations WHERE document_id = ?)", id)
	if err != nil {
		return fmt.Errorf("store: deleting messages: %w", err)
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM conversations WHERE document_id = ?", id); err != nil {
		return fmt.Errorf("store: deleting conversations: %w", err)
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM document_versions WHERE document_id = ?", id); err != nil {
		return fmt.Errorf("store: deleting versions: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("store: deleting document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// ListVersions returns a document's version history, newest first.
func (s *Store) ListVersions(ctx context.Context, documentID string) ([]Version, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, document_id, content, COALESCE(description, ''), created_at FROM document_versions WHERE document_id = ? ORDER BY created_at DESC",
		documentID)
	if err != nil {
		return nil, fmt.Errorf("store: listing versions: %w", err)
	}
	defer rows.Close()

	var versions []Version
	for rows.Next() {
		var v Version
		if err := rows.Scan(&v.ID, &v.DocumentID, &v.Content, &v.Description, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scanning version: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}
