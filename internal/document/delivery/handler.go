package delivery

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"readerdash/internal/document/domain"
	documentdto "readerdash/internal/document/dto"
	"readerdash/internal/document/usecase"

	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	syncUsecase    usecase.SyncUsecase
	archiveUsecase usecase.ArchiveUsecase
	docRepo        DocumentReader
}

// DocumentReader is the listing slice of the repository the handler needs.
type DocumentReader interface {
	List(filter domain.ListFilter) ([]*domain.Document, int64, error)
	GetByID(id string) (*domain.Document, error)
}

func NewDocumentHandler(syncUsecase usecase.SyncUsecase, archiveUsecase usecase.ArchiveUsecase, docRepo DocumentReader) *DocumentHandler {
	return &DocumentHandler{
		syncUsecase:    syncUsecase,
		archiveUsecase: archiveUsecase,
		docRepo:        docRepo,
	}
}

func (h *DocumentHandler) GetSyncStatus(c *gin.Context) {
	progress, err := h.syncUsecase.Status()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (h *DocumentHandler) StartSync(c *gin.Context) {
	progress, err := h.syncUsecase.StartSync()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, progress)
}

// AdvanceSync runs exactly one sync step. The dashboard drives a long sync
// as a visible loop of these calls so each round trip stays short.
func (h *DocumentHandler) AdvanceSync(c *gin.Context) {
	progress, err := h.syncUsecase.Advance(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (h *DocumentHandler) RetrySync(c *gin.Context) {
	progress, err := h.syncUsecase.RetrySamePage()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (h *DocumentHandler) SkipSyncCursor(c *gin.Context) {
	progress, err := h.syncUsecase.SkipCursor()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (h *DocumentHandler) ResetSync(c *gin.Context) {
	progress, err := h.syncUsecase.Reset()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, progress)
}

// RunFullSync loops the state machine to completion in one request; the
// scheduled/unattended entry point.
func (h *DocumentHandler) RunFullSync(c *gin.Context) {
	progress, err := h.syncUsecase.RunFullSync(c.Request.Context())
	if err != nil {
		if errors.Is(err, usecase.ErrSyncInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	filter := domain.ListFilter{
		Location: domain.Location(c.Query("location")),
		Category: domain.Category(c.Query("category")),
		Site:     c.Query("site"),
		Limit:    20,
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			filter.Limit = parsed
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			filter.Offset = parsed
		}
	}

	docs, total, err := h.docRepo.List(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, documentdto.DocumentsResponse{
		Documents: docs,
		Limit:     filter.Limit,
		Offset:    filter.Offset,
		Total:     total,
	})
}

func (h *DocumentHandler) GetDocumentByID(c *gin.Context) {
	id := c.Param("id")
	doc, err := h.docRepo.GetByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if doc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}

	c.JSON(http.StatusOK, doc)
}

func (h *DocumentHandler) ArchiveDocuments(c *gin.Context) {
	var req documentdto.ArchiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.archiveUsecase.ArchiveDocuments(c.Request.Context(), req.IDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *DocumentHandler) ArchiveByCriteria(c *gin.Context) {
	var req documentdto.ArchiveCriteriaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	olderThan := time.Now().AddDate(0, 0, -req.OlderThanDays)
	criteria := domain.ArchiveCriteria{
		OlderThan: &olderThan,
		Category:  domain.Category(req.Category),
		Location:  domain.Location(req.Location),
		Site:      req.Site,
	}

	result, err := h.archiveUsecase.ArchiveByCriteria(c.Request.Context(), criteria)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
