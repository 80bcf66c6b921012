package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"studypilot/internal/db"
	"studypilot/internal/extract"
	"studypilot/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// Upload size limits per declared media type.
const (
	maxPDFSize    = 32 << 20
	maxTextSize   = 16 << 20
	maxImageSize  = 16 << 20
	maxBinarySize = 32 << 20
)

// admitFile validates a declared media type and size against the upload
// policy. Returns a descriptive error for rejected files.
func admitFile(mediaType string, size int64) error {
	var limit int64
	switch {
	case mediaType == "application/pdf":
		limit = maxPDFSize
	case strings.HasPrefix(mediaType, "text/"):
		limit = maxTextSize
	case strings.HasPrefix(mediaType, "image/"):
		limit = maxImageSize
	default:
		limit = maxBinarySize
	}
	if size > limit {
		return fmt.Errorf("file exceeds %dMB limit for %s", limit>>20, mediaType)
	}
	return nil
}

// HandleUploadFile accepts a single multipart file, stores its bytes, and
// records the file row. Content extraction only contributes the page count
// here; text is re-extracted on demand by the flows that consume it.
func (h *Handler) HandleUploadFile(c *gin.Context) {
	userID := currentUserID(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.handleError(c, userID, http.StatusBadRequest, "Missing file in request", err)
		return
	}

	mediaType := fileHeader.Header.Get("Content-Type")
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	if err := admitFile(mediaType, fileHeader.Size); err != nil {
		h.handleError(c, userID, http.StatusRequestEntityTooLarge, "File rejected by upload policy", err)
		return
	}

	var folderID pgtype.UUID
	if raw := c.PostForm("folder_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.handleError(c, userID, http.StatusBadRequest, "Invalid folder id", err)
			return
		}
		folder, ok := h.ownedFolder(c, userID, id)
		if !ok {
			return
		}
		folderID = pgtype.UUID{Bytes: folder.ID, Valid: true}
	}

	src, err := fileHeader.Open()
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to read uploaded file", err)
		return
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to read uploaded file", err)
		return
	}

	result, err := h.Storage.Upload(c.Request.Context(), data, mediaType, fileHeader.Filename)
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to store file", err)
		return
	}

	extracted := extract.Extract(data, mediaType)
	var pageCount pgtype.Int4
	if extracted.Pages != nil {
		pageCount = pgtype.Int4{Int32: *extracted.Pages, Valid: true}
	}

	fileRow, err := h.DB.Queries.CreateFile(c.Request.Context(), db.CreateFileParams{
		StorageKey:   result.Key,
		OriginalName: fileHeader.Filename,
		MediaType:    mediaType,
		SizeBytes:    fileHeader.Size,
		PageCount:    pageCount,
		URL:          result.URL,
		OwnerID:      userID,
		FolderID:     folderID,
	})
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to record file", err)
		return
	}

	log.Printf("INFO: Stored file %s (%s, %d bytes) for user %s", fileRow.ID, mediaType, fileHeader.Size, userID)
	c.JSON(http.StatusCreated, fileRow)
}

// HandleListFolderFiles lists the files in a folder the caller owns.
func (h *Handler) HandleListFolderFiles(c *gin.Context) {
	userID := currentUserID(c)

	folderID, err := uuid.Parse(c.Param("folderId"))
	if err != nil {
		h.handleError(c, userID, http.StatusBadRequest, "Invalid folder id", err)
		return
	}
	if _, ok := h.ownedFolder(c, userID, folderID); !ok {
		return
	}

	files, err := h.DB.Queries.ListFilesByFolder(c.Request.Context(), folderID)
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to list files", err)
		return
	}
	c.JSON(http.StatusOK, files)
}

// HandleDownloadFile streams a stored file back to its owner.
func (h *Handler) HandleDownloadFile(c *gin.Context) {
	userID := currentUserID(c)

	fileRow, ok := h.ownedFile(c, userID, c.Param("fileId"))
	if !ok {
		return
	}

	data, err := h.Storage.Download(c.Request.Context(), fileRow.URL)
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to fetch file content", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileRow.OriginalName))
	c.Data(http.StatusOK, fileRow.MediaType, data)
}

// HandleDeleteFile removes a file's blob and row. The blob goes first so a
// failure leaves the row pointing at real bytes rather than the reverse.
func (h *Handler) HandleDeleteFile(c *gin.Context) {
	userID := currentUserID(c)

	fileRow, ok := h.ownedFile(c, userID, c.Param("fileId"))
	if !ok {
		return
	}

	if err := h.Storage.Delete(c.Request.Context(), fileRow.StorageKey); err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to delete stored file", err)
		return
	}
	if err := h.DB.Queries.DeleteFile(c.Request.Context(), fileRow.ID); err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to delete file record", err)
		return
	}

	log.Printf("INFO: Deleted file %s for user %s", fileRow.ID, userID)
	c.Status(http.StatusNoContent)
}

// ownedFile resolves a file id path parameter and enforces ownership. On
// failure it writes the error response and returns ok=false.
func (h *Handler) ownedFile(c *gin.Context, userID uuid.UUID, rawID string) (fileRow models.File, ok bool) {
	fileID, err := uuid.Parse(rawID)
	if err != nil {
		h.handleError(c, userID, http.StatusBadRequest, "Invalid file id", err)
		return fileRow, false
	}
	fileRow, err = h.DB.Queries.GetFileByID(c.Request.Context(), fileID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			h.handleError(c, userID, http.StatusNotFound, "File not found", err)
			return fileRow, false
		}
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to look up file", err)
		return fileRow, false
	}
	if fileRow.OwnerID != userID {
		h.handleError(c, userID, http.StatusForbidden, "File not owned by user", errors.New("file owner mismatch"))
		return fileRow, false
	}
	return fileRow, true
}
