package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Conversation groups the messages exchanged about one document.
type Conversation struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	CreatedAt  string `json:"created_at"`
}

// Message is one chat turn within a conversation. ModifiedLatex holds
// the document produced by an assistant turn, if it requested edits;
// Status tracks whether the user accepted that result.
type Message struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	Role           string `json:"role"`
	Content        string `json:"content"`
	ModifiedLatex  string `json:"modified_latex,omitempty"`
	Status         string `json:"status"`
	CreatedAt      string `json:"created_at"`
}

// CreateConversation starts a new conversation for a document.
func (s *Store) CreateConversation(ctx context.Context, documentID string) (*Conversation, error) {
	conv := &Conversation{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		CreatedAt:  now(),
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO conversations (id, document_id, created_at) VALUES (?, ?, ?)",
		conv.ID, conv.DocumentID, conv.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("store: inserting conversation: %w", err)
	}
	return conv, nil
}

// AddMessage appends a message to a conversation.
func (s *Store) AddMessage(ctx context.Context, conversationID, role, content, modifiedLatex, status string) (*Message, error) {
	if status == "" {
		status = "pending"
	}
	msg := &Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		ModifiedLatex:  modifiedLatex,
		Status:         status,
		CreatedAt:      now(),
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO messages (id, conversation_id, role, content, modified_latex, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		msg.ID, msg.ConversationID, msg.Role, msg.Content, nullable(msg.ModifiedLatex), msg.Status, msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("store: inserting message: %w", err)
	}
	return msg, nil
}

// ListMessages returns a conversation's messages, oldest first.
func (s *Store) ListMessages(ctx context.Context, conversationID string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, conversation_id, role, content, COALESCE(modified_latex, ''), status, created_at FROM messages WHERE conversation_id = ? ORDER BY created_at ASC",
		conversationID)
	if err != nil {
		return nil, fmt.Errorf("store: listing messages: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.ModifiedLatex, &m.Status, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scanning message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// UpdateMessageStatus changes a message's status (pending/accepted/rejected).
func (s *Store) UpdateMessageStatus(ctx context.Context, messageID, status string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE messages SET status = ? WHERE id = ?", status, messageID)
	if err != nil {
		return fmt.Errorf("store: updating message status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
