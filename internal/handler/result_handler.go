package handler

import (
	"encoding/csv"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/elimu-sms/elimu-api/internal/middleware"
	"github.com/elimu-sms/elimu-api/internal/service"
	"github.com/elimu-sms/elimu-api/pkg/config"
	appErrors "github.com/elimu-sms/elimu-api/pkg/errors"
	"github.com/elimu-sms/elimu-api/pkg/response"
)

// ResultHandler exposes result entry endpoints.
type ResultHandler struct {
	results *service.ResultService
	metrics *service.MetricsService
	uploads config.UploadsConfig
}

// NewResultHandler constructs handler.
func NewResultHandler(results *service.ResultService, metrics *service.MetricsService, uploads config.UploadsConfig) *ResultHandler {
	return &ResultHandler{results: results, metrics: metrics, uploads: uploads}
}

// Submit godoc
// @Summary Record a single assessment result
// @Tags Results
// @Accept json
// @Produce json
// @Param payload body service.SubmitResultRequest true "Result payload"
// @Success 201 {object} response.Envelope
// @Router /results [post]
func (h *ResultHandler) Submit(c *gin.Context) {
	var req service.SubmitResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.results.Submit(c.Request.Context(), req, middleware.UserID(c), middleware.SchoolID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.ObserveResultsWritten("single", 1)
	response.Created(c, result)
}

// Bulk godoc
// @Summary Record results for many students against one assessment
// @Tags Results
// @Accept json
// @Produce json
// @Param payload body service.BulkSubmitRequest true "Bulk payload"
// @Success 200 {object} response.Envelope
// @Router /results/bulk [post]
func (h *ResultHandler) Bulk(c *gin.Context) {
	var req service.BulkSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	outcome, err := h.results.BulkSubmit(c.Request.Context(), req, middleware.UserID(c), middleware.SchoolID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.ObserveResultsWritten("bulk", outcome.Successful)
	h.metrics.ObserveResultsRejected("bulk", outcome.Failed)
	response.JSON(c, http.StatusOK, outcome, nil)
}

// Upload godoc
// @Summary Record results from a CSV file upload
// @Tags Results
// @Accept multipart/form-data
// @Produce json
// @Param assessment_id formData string true "Assessment"
// @Param file formData file true "CSV with admission_no, marks, comment columns"
// @Success 200 {object} response.Envelope
// @Router /results/upload [post]
func (h *ResultHandler) Upload(c *gin.Context) {
	assessmentID := c.PostForm("assessment_id")
	if assessmentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "assessment_id is required"))
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "csv file is required"))
		return
	}
	if h.uploads.MaxFileSizeBytes > 0 && fileHeader.Size > h.uploads.MaxFileSizeBytes {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file exceeds maximum upload size"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to open upload"))
		return
	}
	defer file.Close() //nolint:errcheck

	rows, err := h.parseCSV(file)
	if err != nil {
		response.Error(c, err)
		return
	}
	outcome, err := h.results.CSVSubmit(c.Request.Context(), rows, assessmentID, middleware.UserID(c), middleware.SchoolID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.ObserveResultsWritten("csv", outcome.Successful)
	h.metrics.ObserveResultsRejected("csv", outcome.Failed)
	response.JSON(c, http.StatusOK, outcome, nil)
}

// Update godoc
// @Summary Amend a recorded result
// @Tags Results
// @Accept json
// @Produce json
// @Param id path string true "Result ID"
// @Param payload body service.UpdateResultRequest true "Patch payload"
// @Success 200 {object} response.Envelope
// @Router /results/{id} [patch]
func (h *ResultHandler) Update(c *gin.Context) {
	var req service.UpdateResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.results.Update(c.Request.Context(), c.Param("id"), req, middleware.SchoolID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Delete godoc
// @Summary Remove a recorded result
// @Tags Results
// @Produce json
// @Param id path string true "Result ID"
// @Success 204
// @Router /results/{id} [delete]
func (h *ResultHandler) Delete(c *gin.Context) {
	if err := h.results.Delete(c.Request.Context(), c.Param("id"), middleware.SchoolID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// parseCSV reads the upload into rows. The first line must be a header with
// admission_no and marks columns; a comment column is optional.
func (h *ResultHandler) parseCSV(r io.Reader) ([]service.CSVRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "csv file is empty")
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	admissionIdx, ok := columns["admission_no"]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "csv missing admission_no column")
	}
	marksIdx, ok := columns["marks"]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "csv missing marks column")
	}
	commentIdx, hasComment := columns["comment"]

	var rows []service.CSVRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "malformed csv")
		}
		row := service.CSVRow{}
		if admissionIdx < len(record) {
			row.AdmissionNo = strings.TrimSpace(record[admissionIdx])
		}
		if marksIdx < len(record) {
			row.Marks = strings.TrimSpace(record[marksIdx])
		}
		if hasComment && commentIdx < len(record) {
			row.Comment = strings.TrimSpace(record[commentIdx])
		}
		rows = append(rows, row)
		if h.uploads.MaxRows > 0 && len(rows) > h.uploads.MaxRows {
			return nil, appErrors.Clone(appErrors.ErrValidation, "csv exceeds maximum row count")
		}
	}
	if len(rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "csv contains no data rows")
	}
	return rows, nil
}
