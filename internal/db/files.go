package db

import (
	"context"

	"studypilot/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// CreateFileParams are the fields for a new file row. PageCount and FolderID
// are nullable.
type CreateFileParams struct {
	StorageKey   string
	OriginalName string
	MediaType    string
	SizeBytes    int64
	PageCount    pgtype.Int4
	URL          string
	OwnerID      uuid.UUID
	FolderID     pgtype.UUID
}

const createFile = `
INSERT INTO files (storage_key, original_name, media_type, size_bytes, page_count, url, owner_id, folder_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, storage_key, original_name, media_type, size_bytes, page_count, url, owner_id, folder_id, created_at
`

// CreateFile inserts a new file record and returns the stored row.
func (q *Queries) CreateFile(ctx context.Context, arg CreateFileParams) (models.File, error) {
	row := q.db.QueryRow(ctx, createFile,
		arg.StorageKey, arg.OriginalName, arg.MediaType, arg.SizeBytes,
		arg.PageCount, arg.URL, arg.OwnerID, arg.FolderID)
	return scanFile(row)
}

const getFileByID = `
SELECT id, storage_key, original_name, media_type, size_bytes, page_count, url, owner_id, folder_id, created_at
FROM files
WHERE id = $1
`

// GetFileByID fetches a file by id, returning pgx.ErrNoRows if absent.
func (q *Queries) GetFileByID(ctx context.Context, id uuid.UUID) (models.File, error) {
	return scanFile(q.db.QueryRow(ctx, getFileByID, id))
}

const listFilesByFolder = `
SELECT id, storage_key, original_name, media_type, size_bytes, page_count, url, owner_id, folder_id, created_at
FROM files
WHERE folder_id = $1
ORDER BY created_at DESC
`

// ListFilesByFolder returns a folder's files, newest first.
func (q *Queries) ListFilesByFolder(ctx context.Context, folderID uuid.UUID) ([]models.File, error) {
	rows, err := q.db.Query(ctx, listFilesByFolder, folderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := []models.File{}
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

const deleteFile = `DELETE FROM files WHERE id = $1`

// DeleteFile removes a file row.
func (q *Queries) DeleteFile(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteFile, id)
	return err
}

func scanFile(row pgx.Row) (models.File, error) {
	var f models.File
	err := row.Scan(&f.ID, &f.StorageKey, &f.OriginalName, &f.MediaType,
		&f.SizeBytes, &f.PageCount, &f.URL, &f.OwnerID, &f.FolderID, &f.CreatedAt)
	return f, err
}
