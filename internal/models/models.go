package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Conversation kinds
const (
	ConversationKindChat    = "chat"
	ConversationKindSummary = "summary"
)

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Question kinds
const (
	QuestionKindMultipleChoice = "multiple-choice"
	QuestionKindCheckbox       = "checkbox"
	QuestionKindDropdown       = "dropdown"
)

// File represents an uploaded file stored in the blob store.
type File struct {
	ID           uuid.UUID  `json:"id"`
	StorageKey   string     `json:"storage_key"`
	OriginalName string     `json:"original_name"`
	MediaType    string     `json:"media_type"`
	SizeBytes    int64      `json:"size_bytes"`
	PageCount    *int32     `json:"page_count,omitempty"`
	URL          string     `json:"url"`
	OwnerID      uuid.UUID  `json:"owner_id"`
	FolderID     *uuid.UUID `json:"folder_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Folder is a user-owned classification node. ParentID is nil for roots.
type Folder struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	OwnerID   uuid.UUID  `json:"owner_id"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	SortOrder int32      `json:"order"`
	CreatedAt time.Time  `json:"created_at"`
}

// FolderNode is a folder with its resolved children, rebuilt per query from
// the flat folder rows. Children are ordered by SortOrder.
type FolderNode struct {
	Folder
	Children []*FolderNode `json:"children"`
}

// BuildFolderTree groups a flat, order-sorted folder list by parent id and
// returns the root nodes. Folders pointing at a parent outside the set are
// treated as roots rather than dropped.
func BuildFolderTree(folders []Folder) []*FolderNode {
	nodes := make(map[uuid.UUID]*FolderNode, len(folders))
	for i := range folders {
		nodes[folders[i].ID] = &FolderNode{Folder: folders[i], Children: []*FolderNode{}}
	}

	roots := []*FolderNode{}
	for i := range folders {
		node := nodes[folders[i].ID]
		if folders[i].ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*folders[i].ParentID]
		if !ok {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}
	return roots
}

// Conversation is an ordered message log, created lazily on first message.
type Conversation struct {
	ID        uuid.UUID  `json:"id"`
	OwnerID   uuid.UUID  `json:"owner_id"`
	Title     string     `json:"title"`
	Kind      string     `json:"kind"`
	FileID    *uuid.UUID `json:"file_id,omitempty"`
	FolderID  *uuid.UUID `json:"folder_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// AttachedFile is the file metadata echoed alongside a message.
type AttachedFile struct {
	ID           uuid.UUID `json:"id"`
	OriginalName string    `json:"name"`
	MediaType    string    `json:"type"`
	SizeBytes    int64     `json:"size"`
	URL          string    `json:"url"`
}

// Message is a single turn in a conversation. Append-only.
type Message struct {
	ID             uuid.UUID      `json:"id"`
	ConversationID uuid.UUID      `json:"conversation_id"`
	Role           string         `json:"role"`
	Content        string         `json:"content"`
	CreatedAt      time.Time      `json:"created_at"`
	AttachedFiles  []AttachedFile `json:"attached_files"`
}

// AnswerKey is a question's correct answer. The model is asked for a single
// string but may emit an array for multi-select questions, so both forms are
// accepted and round-trip through JSON unchanged.
type AnswerKey struct {
	Values []string
	Multi  bool
}

// UnmarshalJSON accepts either a JSON string or an array of strings.
func (k *AnswerKey) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		k.Values = []string{single}
		k.Multi = false
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	k.Values = many
	k.Multi = true
	return nil
}

// MarshalJSON preserves the original scalar-vs-array shape.
func (k AnswerKey) MarshalJSON() ([]byte, error) {
	if !k.Multi && len(k.Values) == 1 {
		return json.Marshal(k.Values[0])
	}
	if k.Values == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(k.Values)
}

// Quiz is a generated question set tied to a source file and folder.
type Quiz struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	FolderID  uuid.UUID `json:"folder_id"`
	FileID    uuid.UUID `json:"file_id"`
	CreatedAt time.Time `json:"created_at"`
}

// QuizQuestion is one graded question. SortOrder is the authoritative
// sequencing key, 0..N-1 within a quiz, assigned at compile time and never
// changed afterwards.
type QuizQuestion struct {
	ID            uuid.UUID `json:"id"`
	QuizID        uuid.UUID `json:"quiz_id"`
	SortOrder     int32     `json:"order"`
	Question      string    `json:"question"`
	Kind          string    `json:"type"`
	Options       []string  `json:"options"`
	CorrectAnswer AnswerKey `json:"correct_answer"`
	Explanation   string    `json:"explanation"`
}

// User is the authenticated owner of files, folders, conversations and
// quizzes. Populated from the Google OAuth profile on first login.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	GoogleID  string    `json:"google_id"`
	Picture   string    `json:"picture"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}
