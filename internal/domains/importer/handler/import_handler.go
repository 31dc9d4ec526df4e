package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"

	"catalog-importer/internal/domains/importer/model"
	"catalog-importer/internal/domains/importer/service"
	"catalog-importer/internal/shared/response"
)

type Options struct {
	DefaultBatchSize int
	MaxBatchSize     int
}

// ImportHandler exposes batch import triggers to administrators.
type ImportHandler struct {
	service service.ImportService
	opts    Options
}

func NewImportHandler(s service.ImportService, opts Options) *ImportHandler {
	return &ImportHandler{service: s, opts: opts}
}

// ========================================
// IMPORT ENDPOINTS
// ========================================

// StartImport runs one batch.
// POST /api/v1/admin/imports/start
func (h *ImportHandler) StartImport(c *gin.Context) {
	var req model.StartImportRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	batch := model.BatchRequest{
		JobID:     req.JobID,
		BatchSize: h.opts.DefaultBatchSize,
	}
	if req.BatchSize != nil {
		batch.BatchSize = *req.BatchSize
	}
	if req.StartRow != nil {
		batch.StartRow = *req.StartRow
	}

	result, err := h.service.RunBatch(c.Request.Context(), batch)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, model.StartImportResponse{
		Imported:  result.Imported,
		Total:     result.Total,
		NextRow:   result.NextRow,
		Completed: result.Completed,
		Batch:     result,
	})
}

// CheckProgress reports {0, 0} when no run is active.
// GET /api/v1/admin/imports/progress
func (h *ImportHandler) CheckProgress(c *gin.Context) {
	jobID := c.Query("job_id")
	state, err := h.service.Progress(c.Request.Context(), jobID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	resp := model.ProgressResponse{JobID: jobID}
	if resp.JobID == "" {
		resp.JobID = model.DefaultJobID
	}
	if state != nil {
		resp.Imported = state.Imported
		resp.Total = state.Total
		resp.Cursor = state.Cursor
		resp.Active = true
	}
	response.Success(c, http.StatusOK, resp)
}

// ResetProgress drops a stuck job so the next run starts from scratch.
// DELETE /api/v1/admin/imports/progress
func (h *ImportHandler) ResetProgress(c *gin.Context) {
	if err := h.service.Reset(c.Request.Context(), c.Query("job_id")); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ========================================
// HELPERS
// ========================================

// bindAndValidate accepts a JSON body, a form body or plain query parameters.
func (h *ImportHandler) bindAndValidate(c *gin.Context, req *model.StartImportRequest) bool {
	var err error
	if c.Request.ContentLength == 0 {
		err = c.ShouldBindQuery(req)
	} else {
		err = c.ShouldBind(req)
	}
	if err != nil {
		response.BadRequest(c, "invalid request body")
		return false
	}

	if err := req.Validate(h.opts.MaxBatchSize); err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid import request", verrs)
			return false
		}
		response.BadRequest(c, err.Error())
		return false
	}
	return true
}

func (h *ImportHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrFileNotFound):
		response.ErrorResponse(c, http.StatusNotFound, "IMPORT_FILE_NOT_FOUND", "CSV file not found")
	case errors.Is(err, model.ErrEmptyHeader):
		response.ErrorResponse(c, http.StatusUnprocessableEntity, "IMPORT_EMPTY_HEADER", err.Error())
	case errors.Is(err, model.ErrInvalidBatchSize),
		errors.Is(err, model.ErrInvalidStartRow),
		errors.Is(err, model.ErrInvalidJobID):
		response.BadRequest(c, err.Error())
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("import request failed")
		response.InternalError(c)
	}
}
