package toc

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"doctoc-backend/internal/documents"
	"doctoc-backend/internal/shared/server/middleware"
	"doctoc-backend/internal/shared/server/respond"
)

// RouteTOC is the extraction route; the router rate-limits it separately.
const RouteTOC = "/api/docs/:doc_id/toc"

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches TOC routes to the /api group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/docs/:doc_id/toc", h.toc)
	rg.GET("/docs/:doc_id/toc/runs", h.runs)
}

type tocResponse struct {
	TOC []Heading `json:"toc"`
}

func (h *Handler) toc(c *gin.Context) {
	docID := c.Param("doc_id")
	c.Set(middleware.DocumentIDKey, docID)

	res, err := h.Svc.TOC(c.Request.Context(), docID)
	if res.JobID != "" {
		c.Set(middleware.JobIDKey, res.JobID)
	}
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidDocumentID), errors.Is(err, documents.ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid document id", nil)
		case errors.Is(err, documents.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, ErrExtractionFailed):
			respond.Error(c, http.StatusInternalServerError, "extraction_failed", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read document", nil)
		}
		return
	}

	respond.OK(c, tocResponse{TOC: res.Headings})
}

func (h *Handler) runs(c *gin.Context) {
	docID := c.Param("doc_id")
	c.Set(middleware.DocumentIDKey, docID)

	limit := 0
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "limit must be an integer", nil)
			return
		}
		limit = parsed
	}

	list, err := h.Svc.ListRuns(c.Request.Context(), docID, limit)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidDocumentID):
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid document id", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list runs", nil)
		}
		return
	}

	respond.OK(c, gin.H{"runs": list})
}
