package documents

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"doctoc-backend/internal/shared/server/middleware"
	"doctoc-backend/internal/shared/server/respond"
)

// multipart framing on top of the file itself
const formOverhead = 1 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/docs", h.list)
	rg.POST("/docs", h.upload)
	rg.PUT("/docs/:doc_id", h.rename)
	rg.DELETE("/docs/:doc_id", h.delete)
	rg.GET("/docs/:doc_id/file", h.file)
	rg.GET("/docs/:doc_id/download", h.download)
}

func (h *Handler) list(c *gin.Context) {
	docs, err := h.Svc.List(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list documents", nil)
		return
	}
	respond.OK(c, docs)
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadSize+formOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "file exceeds 25MB limit", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	doc, err := h.Svc.Upload(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, ErrTooLarge):
			respond.Error(c, http.StatusBadRequest, "validation_error", "file exceeds 25MB limit", nil)
		case errors.Is(err, ErrLimitReached):
			respond.Error(c, http.StatusBadRequest, "limit_reached", fmt.Sprintf("max %d documents allowed", MaxDocuments), nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to upload document", nil)
		}
		return
	}

	c.Set(middleware.DocumentIDKey, doc.ID)
	respond.JSON(c, http.StatusCreated, doc)
}

func (h *Handler) file(c *gin.Context) {
	docID := c.Param("doc_id")
	c.Set(middleware.DocumentIDKey, docID)

	rc, err := h.Svc.Open(c.Request.Context(), docID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid document id", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to open document", nil)
		}
		return
	}
	defer rc.Close()

	respond.Stream(c, http.StatusOK, contentTypePDF, -1, rc)
}

type renameRequest struct {
	Name string `json:"name"`
}

func (h *Handler) rename(c *gin.Context) {
	docID := c.Param("doc_id")
	c.Set(middleware.DocumentIDKey, docID)

	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	doc, err := h.Svc.Rename(c.Request.Context(), docID, req.Name)
	if err != nil {
		writeLookupError(c, err, "failed to rename document")
		return
	}
	respond.OK(c, doc)
}

func (h *Handler) delete(c *gin.Context) {
	docID := c.Param("doc_id")
	c.Set(middleware.DocumentIDKey, docID)

	if err := h.Svc.Delete(c.Request.Context(), docID); err != nil {
		writeLookupError(c, err, "failed to delete document")
		return
	}
	respond.OK(c, gin.H{"ok": true})
}

func (h *Handler) download(c *gin.Context) {
	docID := c.Param("doc_id")
	c.Set(middleware.DocumentIDKey, docID)

	doc, rc, err := h.Svc.Download(c.Request.Context(), docID)
	if err != nil {
		writeLookupError(c, err, "failed to open document")
		return
	}
	defer rc.Close()

	respond.Attachment(c, contentTypePDF, doc.FileName, doc.SizeBytes, rc)
}

func writeLookupError(c *gin.Context, err error, internalMsg string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", internalMsg, nil)
	}
}
