package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/agencyval/commission-recon/dto"
	"github.com/agencyval/commission-recon/service"
)

type IngestHandler struct {
	ingestService *service.IngestService
}

func NewIngestHandler(ingestService *service.IngestService) *IngestHandler {
	return &IngestHandler{
		ingestService: ingestService,
	}
}

// UploadStatements handles POST /documents/statements
func (h *IngestHandler) UploadStatements(c *gin.Context) {
	log.Println("Received statement upload request")

	form, err := c.MultipartForm()
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "Failed to parse multipart form", err)
		return
	}

	files := form.File["files[]"]
	if len(files) == 0 {
		h.sendError(c, http.StatusBadRequest, "No files provided", dto.ErrNoFiles)
		return
	}

	request := &dto.StatementUploadRequest{
		Files:    files,
		Metadata: c.PostForm("metadata"),
	}
	if err := request.Validate(); err != nil {
		h.sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	log.Printf("Processing %d statement files", len(files))

	result, err := h.ingestService.IngestStatements(c.Request.Context(), request)
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "Failed to ingest statements", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UploadPolicyList handles POST /documents/policies
func (h *IngestHandler) UploadPolicyList(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "No policy list file provided", err)
		return
	}

	result, err := h.ingestService.IngestPolicyList(c.Request.Context(), fileHeader)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, dto.ErrUnsupportedFormat) || errors.Is(err, dto.ErrNoHeaderRow) ||
			errors.Is(err, dto.ErrFileTooLarge) || errors.Is(err, dto.ErrEmptyDocument) {
			status = http.StatusBadRequest
		}
		h.sendError(c, status, "Failed to load policy list", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetReconciliation handles GET /reconciliation
func (h *IngestHandler) GetReconciliation(c *gin.Context) {
	c.JSON(http.StatusOK, h.ingestService.Reconciliation())
}

// GetRecords handles GET /records
func (h *IngestHandler) GetRecords(c *gin.Context) {
	c.JSON(http.StatusOK, dto.RecordsResponse{Records: h.ingestService.Records()})
}

// GetPolicies handles GET /policies
func (h *IngestHandler) GetPolicies(c *gin.Context) {
	c.JSON(http.StatusOK, h.ingestService.Policies())
}

// ExcludePolicy handles POST /policies/:index/exclude
func (h *IngestHandler) ExcludePolicy(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid policy row index", err)
		return
	}

	var req dto.ExcludePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.ingestService.SetPolicyExcluded(index, req.Excluded); err != nil {
		h.sendError(c, http.StatusBadRequest, "Failed to update policy row", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"index": index, "excluded": req.Excluded})
}

// GetLog handles GET /log
func (h *IngestHandler) GetLog(c *gin.Context) {
	c.JSON(http.StatusOK, dto.LogResponse{Entries: h.ingestService.Log()})
}

// ResetSession handles POST /session/reset
func (h *IngestHandler) ResetSession(c *gin.Context) {
	h.ingestService.Reset()
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

// sendError sends a structured error response
func (h *IngestHandler) sendError(c *gin.Context, statusCode int, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		log.Printf("Error: %s - %v", message, err)
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:   "INGESTION_FAILED",
		Message: errorMsg,
		Code:    statusCode,
	})
}
