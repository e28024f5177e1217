package certificate

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"dlithe/intern-portal/intern-portal-backend/internal/schema"
	"dlithe/intern-portal/intern-portal-backend/pkg/archive"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	certs := rg.Group("/certificates")
	{
		certs.POST("/batch", h.RunBatch)
		certs.POST("/approved", h.RunApprovedBatch)
		certs.POST("/:id/review", h.MarkReviewed)
		certs.GET("/:id/download", h.Download)
	}
}

// RunBatch ingests an uploaded table and streams back a zip bundle of the
// generated certificates. Per-row failures never abort the batch; their
// count and details travel in the summary headers so the bundle and the
// diagnostics always arrive together.
func (h *Handler) RunBatch(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	variant, err := ParseVariant(c.PostForm("variant"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	var table schema.Table
	if strings.HasSuffix(strings.ToLower(file.Filename), ".xlsx") {
		table, err = schema.ReadXLSX(f)
	} else {
		table, err = schema.ReadCSV(f)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.RunBatch(c.Request.Context(), BatchRequest{
		Table:        table,
		Organization: c.PostForm("organization"),
		Domain:       c.PostForm("domain"),
		Variant:      variant,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrEmptyTable) || errors.Is(err, ErrUnknownDomain) || errors.Is(err, ErrUnknownOrganization) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	h.respondWithBundle(c, result)
}

// RunApprovedBatch renders final certificates for every review_completed
// record of the organization and returns them bundled.
func (h *Handler) RunApprovedBatch(c *gin.Context) {
	var req struct {
		Organization string `json:"organization" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.RunApprovedBatch(c.Request.Context(), req.Organization)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrUnknownOrganization) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	h.respondWithBundle(c, result)
}

// MarkReviewed records a reviewer's approval of one record.
func (h *Handler) MarkReviewed(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return
	}

	record, err := h.service.MarkReviewed(c.Request.Context(), id)
	if err != nil {
		h.respondRecordError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Download re-renders an issued record's final certificate.
func (h *Handler) Download(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return
	}

	doc, err := h.service.RedownloadIssued(c.Request.Context(), id)
	if err != nil {
		h.respondRecordError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Data(http.StatusOK, "application/pdf", doc.Content)
}

func (h *Handler) respondWithBundle(c *gin.Context, result *BatchResult) {
	rowErrors := make([]string, 0, len(result.RowErrors))
	for _, re := range result.RowErrors {
		rowErrors = append(rowErrors, re.Error())
	}

	if len(result.Documents) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"documents":   0,
			"row_errors":  rowErrors,
			"diagnostics": result.Diagnostics,
		})
		return
	}

	files := make([]archive.File, 0, len(result.Documents))
	for _, doc := range result.Documents {
		files = append(files, archive.File{Name: doc.Filename, Data: doc.Content})
	}
	bundle, err := archive.Bundle(files)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.BundleName))
	c.Header("X-Document-Count", fmt.Sprintf("%d", len(result.Documents)))
	c.Header("X-Row-Error-Count", fmt.Sprintf("%d", len(result.RowErrors)))
	if len(rowErrors) > 0 {
		c.Header("X-Row-Errors", strings.Join(rowErrors, "; "))
	}
	c.Header("X-Diagnostic-Count", fmt.Sprintf("%d", len(result.Diagnostics)))
	if len(result.Diagnostics) > 0 {
		c.Header("X-Diagnostics", strings.Join(result.Diagnostics, "; "))
	}
	c.Data(http.StatusOK, "application/zip", bundle)
}

func (h *Handler) respondRecordError(c *gin.Context, err error) {
	var stateErr *StateError
	switch {
	case errors.Is(err, ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &stateErr):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
