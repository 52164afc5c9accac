package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/medtrackhq/medtrack/internal/repository"
	"github.com/medtrackhq/medtrack/internal/service"
	"github.com/medtrackhq/medtrack/pkg/apperror"
	"github.com/medtrackhq/medtrack/pkg/response"
	"github.com/medtrackhq/medtrack/pkg/storage"
	"gorm.io/gorm"
)

type ReportHandler struct {
	service service.ReportService
	reports repository.ReportRepository
}

func NewReportHandler(service service.ReportService, reports repository.ReportRepository) *ReportHandler {
	return &ReportHandler{
		service: service,
		reports: reports,
	}
}

func (h *ReportHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("report")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "report file is required"})
		return
	}

	patientID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	report, err := h.service.Upload(c.Request.Context(), patientID, file)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, report)
}

func (h *ReportHandler) ListForPatient(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid patient id"})
		return
	}

	doctorID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	reports, err := h.service.ListForPatient(c.Request.Context(), doctorID, patientID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, reports)
}

func (h *ReportHandler) HistoryPDF(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid patient id"})
		return
	}

	filename, rendered, err := h.service.HistoryPDF(c.Request.Context(), patientID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/pdf", rendered)
}

// ServeUpload resolves an uploaded report by its stored filename. Local files
// are served from disk; remote backends get a redirect to the stored URL.
func (h *ReportHandler) ServeUpload(c *gin.Context) {
	name := storage.SanitizeFilename(c.Param("filename"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file name"})
		return
	}

	report, err := h.reports.FindByFilename(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, fmt.Errorf("report %s: %w", name, apperror.ErrNotFound))
			return
		}
		response.Error(c, err)
		return
	}

	if strings.HasPrefix(report.FileURL, "http://") || strings.HasPrefix(report.FileURL, "https://") {
		c.Redirect(http.StatusFound, report.FileURL)
		return
	}

	c.File(report.FileURL)
}
