package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/elimu-sms/elimu-api/internal/middleware"
	"github.com/elimu-sms/elimu-api/internal/service"
	appErrors "github.com/elimu-sms/elimu-api/pkg/errors"
	"github.com/elimu-sms/elimu-api/pkg/response"
)

// ReportHandler exposes report card and class performance endpoints.
type ReportHandler struct {
	reports *service.ReportService
	exports *service.ExportService
	metrics *service.MetricsService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports *service.ReportService, exports *service.ExportService, metrics *service.MetricsService) *ReportHandler {
	return &ReportHandler{reports: reports, exports: exports, metrics: metrics}
}

// StudentReportCard godoc
// @Summary Assemble a student report card for a term
// @Tags Reports
// @Produce json
// @Param studentId path string true "Student ID"
// @Param termId query string true "Term ID"
// @Param format query string false "json, csv or pdf" default(json)
// @Success 200 {object} response.Envelope
// @Router /reports/report-card/{studentId} [get]
func (h *ReportHandler) StudentReportCard(c *gin.Context) {
	termID := c.Query("termId")
	if termID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "termId is required"))
		return
	}
	report, err := h.reports.StudentReportCard(c.Request.Context(), c.Param("studentId"), termID, middleware.SchoolID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.ObserveReportBuilt("report_card")

	format := service.ExportFormat(c.DefaultQuery("format", "json"))
	if format == "json" {
		response.JSON(c, http.StatusOK, report, nil)
		return
	}
	file, err := h.exports.StudentReport(report, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveFile(c, file)
}

// ClassPerformance godoc
// @Summary Assemble a class performance report for a term
// @Tags Reports
// @Produce json
// @Param classId path string true "Class ID"
// @Param termId query string true "Term ID"
// @Param format query string false "json, csv or pdf" default(json)
// @Success 200 {object} response.Envelope
// @Router /reports/class-performance/{classId} [get]
func (h *ReportHandler) ClassPerformance(c *gin.Context) {
	termID := c.Query("termId")
	if termID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "termId is required"))
		return
	}
	report, err := h.reports.ClassPerformance(c.Request.Context(), c.Param("classId"), termID, middleware.SchoolID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.ObserveReportBuilt("class_performance")

	format := service.ExportFormat(c.DefaultQuery("format", "json"))
	if format == "json" {
		response.JSON(c, http.StatusOK, report, nil)
		return
	}
	file, err := h.exports.ClassPerformance(report, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveFile(c, file)
}

func serveFile(c *gin.Context, file *service.ExportFile) {
	c.Header("Content-Disposition", "attachment; filename="+file.Filename)
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
