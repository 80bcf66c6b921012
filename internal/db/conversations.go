package db

import (
	"context"

	"studypilot/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type CreateConversationParams struct {
	OwnerID  uuid.UUID
	Title    string
	Kind     string
	FileID   pgtype.UUID
	FolderID pgtype.UUID
}

const createConversation = `
INSERT INTO conversations (owner_id, title, kind, file_id, folder_id)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, owner_id, title, kind, file_id, folder_id, created_at, updated_at
`

// CreateConversation inserts a conversation and returns the stored row.
func (q *Queries) CreateConversation(ctx context.Context, arg CreateConversationParams) (models.Conversation, error) {
	row := q.db.QueryRow(ctx, createConversation,
		arg.OwnerID, arg.Title, arg.Kind, arg.FileID, arg.FolderID)
	return scanConversation(row)
}

const getConversationByID = `
SELECT id, owner_id, title, kind, file_id, folder_id, created_at, updated_at
FROM conversations
WHERE id = $1
`

// GetConversationByID fetches a conversation by id, returning pgx.ErrNoRows
// if absent.
func (q *Queries) GetConversationByID(ctx context.Context, id uuid.UUID) (models.Conversation, error) {
	return scanConversation(q.db.QueryRow(ctx, getConversationByID, id))
}

const listConversationsByOwner = `
SELECT id, owner_id, title, kind, file_id, folder_id, created_at, updated_at
FROM conversations
WHERE owner_id = $1
ORDER BY updated_at DESC
`

// ListConversationsByOwner returns the user's conversations, most recently
// active first.
func (q *Queries) ListConversationsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Conversation, error) {
	rows, err := q.db.Query(ctx, listConversationsByOwner, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conversations := []models.Conversation{}
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, c)
	}
	return conversations, rows.Err()
}

type CreateMessageParams struct {
	ConversationID uuid.UUID
	Role           string
	Content        string
}

const createMessage = `
WITH inserted AS (
    INSERT INTO messages (conversation_id, role, content)
    VALUES ($1, $2, $3)
    RETURNING id, conversation_id, role, content, created_at
), touched AS (
    UPDATE conversations SET updated_at = now() WHERE id = $1
)
SELECT id, conversation_id, role, content, created_at FROM inserted
`

// CreateMessage appends a message to a conversation and bumps the
// conversation's updated_at so recency ordering tracks activity. Both writes
// happen in one statement so the timestamp can never go stale between them.
func (q *Queries) CreateMessage(ctx context.Context, arg CreateMessageParams) (models.Message, error) {
	var m models.Message
	row := q.db.QueryRow(ctx, createMessage, arg.ConversationID, arg.Role, arg.Content)
	if err := row.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
		return models.Message{}, err
	}
	m.AttachedFiles = []models.AttachedFile{}
	return m, nil
}

const linkMessageFile = `
INSERT INTO message_files (message_id, file_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING
`

// LinkMessageFile records that a file was attached to a message.
func (q *Queries) LinkMessageFile(ctx context.Context, messageID, fileID uuid.UUID) error {
	_, err := q.db.Exec(ctx, linkMessageFile, messageID, fileID)
	return err
}

const listMessagesByConversation = `
SELECT id, conversation_id, role, content, created_at
FROM messages
WHERE conversation_id = $1
ORDER BY created_at ASC
`

const listMessageFiles = `
SELECT f.id, f.original_name, f.media_type, f.size_bytes, f.url
FROM message_files mf
JOIN files f ON f.id = mf.file_id
WHERE mf.message_id = $1
ORDER BY f.created_at ASC
`

// ListMessagesByConversation returns a conversation's messages oldest first,
// each with its attached file metadata resolved.
func (q *Queries) ListMessagesByConversation(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error) {
	rows, err := q.db.Query(ctx, listMessagesByConversation, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.AttachedFiles = []models.AttachedFile{}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range messages {
		attached, err := q.listMessageFiles(ctx, messages[i].ID)
		if err != nil {
			return nil, err
		}
		messages[i].AttachedFiles = attached
	}
	return messages, nil
}

func (q *Queries) listMessageFiles(ctx context.Context, messageID uuid.UUID) ([]models.AttachedFile, error) {
	rows, err := q.db.Query(ctx, listMessageFiles, messageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attached := []models.AttachedFile{}
	for rows.Next() {
		var a models.AttachedFile
		if err := rows.Scan(&a.ID, &a.OriginalName, &a.MediaType, &a.SizeBytes, &a.URL); err != nil {
			return nil, err
		}
		attached = append(attached, a)
	}
	return attached, rows.Err()
}

func scanConversation(row pgx.Row) (models.Conversation, error) {
	var c models.Conversation
	err := row.Scan(&c.ID, &c.OwnerID, &c.Title, &c.Kind, &c.FileID, &c.FolderID,
		&c.CreatedAt, &c.UpdatedAt)
	return c, err
}
