package handlers

import (
	"errors"
	"log"
	"net/http"

	"studypilot/internal/db"
	"studypilot/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// CreateFolderRequest is the body for folder creation.
type CreateFolderRequest struct {
	Name     string  `json:"name" binding:"required"`
	ParentID *string `json:"parent_id"`
	Order    int32   `json:"order"`
}

// HandleCreateFolder creates a folder, optionally nested under a parent the
// caller owns.
func (h *Handler) HandleCreateFolder(c *gin.Context) {
	userID := currentUserID(c)

	var req CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, userID, http.StatusBadRequest, "Invalid folder request", err)
		return
	}

	var parentID pgtype.UUID
	if req.ParentID != nil && *req.ParentID != "" {
		id, err := uuid.Parse(*req.ParentID)
		if err != nil {
			h.handleError(c, userID, http.StatusBadRequest, "Invalid parent folder id", err)
			return
		}
		parent, ok := h.ownedFolder(c, userID, id)
		if !ok {
			return
		}
		parentID = pgtype.UUID{Bytes: parent.ID, Valid: true}
	}

	folder, err := h.DB.Queries.CreateFolder(c.Request.Context(), db.CreateFolderParams{
		Name:      req.Name,
		OwnerID:   userID,
		ParentID:  parentID,
		SortOrder: req.Order,
	})
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to create folder", err)
		return
	}

	log.Printf("INFO: Created folder %s for user %s", folder.ID, userID)
	c.JSON(http.StatusCreated, folder)
}

// HandleFolderTree returns the caller's folders as a tree, children ordered
// by sort position.
func (h *Handler) HandleFolderTree(c *gin.Context) {
	userID := currentUserID(c)

	folders, err := h.DB.Queries.ListFoldersByOwner(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to list folders", err)
		return
	}
	c.JSON(http.StatusOK, models.BuildFolderTree(folders))
}

// RenameFolderRequest is the body for a folder rename.
type RenameFolderRequest struct {
	Name string `json:"name" binding:"required"`
}

// HandleRenameFolder renames a folder the caller owns.
func (h *Handler) HandleRenameFolder(c *gin.Context) {
	userID := currentUserID(c)

	folderID, err := uuid.Parse(c.Param("folderId"))
	if err != nil {
		h.handleError(c, userID, http.StatusBadRequest, "Invalid folder id", err)
		return
	}
	if _, ok := h.ownedFolder(c, userID, folderID); !ok {
		return
	}

	var req RenameFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, userID, http.StatusBadRequest, "Invalid folder request", err)
		return
	}

	folder, err := h.DB.Queries.UpdateFolderName(c.Request.Context(), folderID, req.Name)
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to rename folder", err)
		return
	}
	c.JSON(http.StatusOK, folder)
}

// ReorderFoldersRequest assigns new sort positions to a set of folders.
type ReorderFoldersRequest struct {
	Orders []struct {
		ID    string `json:"id" binding:"required"`
		Order int32  `json:"order"`
	} `json:"orders" binding:"required"`
}

// HandleReorderFolders updates sort positions for the caller's folders in a
// single transaction so sibling order never half-applies.
func (h *Handler) HandleReorderFolders(c *gin.Context) {
	userID := currentUserID(c)

	var req ReorderFoldersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, userID, http.StatusBadRequest, "Invalid reorder request", err)
		return
	}

	ctx := c.Request.Context()
	tx, err := h.DB.Pool.Begin(ctx)
	if err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to start transaction", err)
		return
	}
	defer tx.Rollback(ctx)

	qtx := h.DB.Queries.WithTx(tx)
	for _, entry := range req.Orders {
		folderID, err := uuid.Parse(entry.ID)
		if err != nil {
			h.handleError(c, userID, http.StatusBadRequest, "Invalid folder id", err)
			return
		}
		folder, err := qtx.GetFolderByID(ctx, folderID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				h.handleError(c, userID, http.StatusNotFound, "Folder not found", err)
				return
			}
			h.handleError(c, userID, http.StatusInternalServerError, "Failed to look up folder", err)
			return
		}
		if folder.OwnerID != userID {
			h.handleError(c, userID, http.StatusForbidden, "Folder not owned by user", errors.New("folder owner mismatch"))
			return
		}
		if err := qtx.UpdateFolderOrder(ctx, folderID, entry.Order); err != nil {
			h.handleError(c, userID, http.StatusInternalServerError, "Failed to reorder folder", err)
			return
		}
	}

	if err := tx.Commit(ctx); err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to commit reorder", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleDeleteFolder removes a folder the caller owns. Child folders cascade
// and contained files are detached, not deleted.
func (h *Handler) HandleDeleteFolder(c *gin.Context) {
	userID := currentUserID(c)

	folderID, err := uuid.Parse(c.Param("folderId"))
	if err != nil {
		h.handleError(c, userID, http.StatusBadRequest, "Invalid folder id", err)
		return
	}
	if _, ok := h.ownedFolder(c, userID, folderID); !ok {
		return
	}

	if err := h.DB.Queries.DeleteFolder(c.Request.Context(), folderID); err != nil {
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to delete folder", err)
		return
	}

	log.Printf("INFO: Deleted folder %s for user %s", folderID, userID)
	c.Status(http.StatusNoContent)
}

// ownedFolder resolves a folder and enforces ownership. On failure it writes
// the error response and returns ok=false.
func (h *Handler) ownedFolder(c *gin.Context, userID, folderID uuid.UUID) (models.Folder, bool) {
	folder, err := h.DB.Queries.GetFolderByID(c.Request.Context(), folderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			h.handleError(c, userID, http.StatusNotFound, "Folder not found", err)
			return models.Folder{}, false
		}
		h.handleError(c, userID, http.StatusInternalServerError, "Failed to look up folder", err)
		return models.Folder{}, false
	}
	if folder.OwnerID != userID {
		h.handleError(c, userID, http.StatusForbidden, "Folder not owned by user", errors.New("folder owner mismatch"))
		return models.Folder{}, false
	}
	return folder, true
}
