package db

import (
	"context"

	"studypilot/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type CreateFolderParams struct {
	Name      string
	OwnerID   uuid.UUID
	ParentID  pgtype.UUID
	SortOrder int32
}

const createFolder = `
INSERT INTO folders (name, owner_id, parent_id, sort_order)
VALUES ($1, $2, $3, $4)
RETURNING id, name, owner_id, parent_id, sort_order, created_at
`

// CreateFolder inserts a folder and returns the stored row.
func (q *Queries) CreateFolder(ctx context.Context, arg CreateFolderParams) (models.Folder, error) {
	row := q.db.QueryRow(ctx, createFolder, arg.Name, arg.OwnerID, arg.ParentID, arg.SortOrder)
	return scanFolder(row)
}

const getFolderByID = `
SELECT id, name, owner_id, parent_id, sort_order, created_at
FROM folders
WHERE id = $1
`

// GetFolderByID fetches a folder by id, returning pgx.ErrNoRows if absent.
func (q *Queries) GetFolderByID(ctx context.Context, id uuid.UUID) (models.Folder, error) {
	return scanFolder(q.db.QueryRow(ctx, getFolderByID, id))
}

const listFoldersByOwner = `
SELECT id, name, owner_id, parent_id, sort_order, created_at
FROM folders
WHERE owner_id = $1
ORDER BY sort_order ASC, created_at ASC
`

// ListFoldersByOwner returns every folder the user owns, ordered by sort
// position. The flat result is the input to models.BuildFolderTree.
func (q *Queries) ListFoldersByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Folder, error) {
	rows, err := q.db.Query(ctx, listFoldersByOwner, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	folders := []models.Folder{}
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		folders = append(folders, f)
	}
	return folders, rows.Err()
}

const updateFolderName = `
UPDATE folders
SET name = $2
WHERE id = $1
RETURNING id, name, owner_id, parent_id, sort_order, created_at
`

// UpdateFolderName renames a folder and returns the updated row.
func (q *Queries) UpdateFolderName(ctx context.Context, id uuid.UUID, name string) (models.Folder, error) {
	return scanFolder(q.db.QueryRow(ctx, updateFolderName, id, name))
}

const updateFolderOrder = `
UPDATE folders
SET sort_order = $2
WHERE id = $1
`

// UpdateFolderOrder sets a folder's sort position within its siblings.
func (q *Queries) UpdateFolderOrder(ctx context.Context, id uuid.UUID, sortOrder int32) error {
	_, err := q.db.Exec(ctx, updateFolderOrder, id, sortOrder)
	return err
}

const deleteFolder = `DELETE FROM folders WHERE id = $1`

// DeleteFolder removes a folder. Files inside keep their rows with folder_id
// cleared, and child folders cascade, per the schema's referential actions.
func (q *Queries) DeleteFolder(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteFolder, id)
	return err
}

func scanFolder(row pgx.Row) (models.Folder, error) {
	var f models.Folder
	err := row.Scan(&f.ID, &f.Name, &f.OwnerID, &f.ParentID, &f.SortOrder, &f.CreatedAt)
	return f, err
}
