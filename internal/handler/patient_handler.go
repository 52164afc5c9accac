package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/medtrackhq/medtrack/internal/dto"
	"github.com/medtrackhq/medtrack/internal/model"
	"github.com/medtrackhq/medtrack/internal/repository"
	"github.com/medtrackhq/medtrack/internal/service"
	"github.com/medtrackhq/medtrack/pkg/response"
	"github.com/medtrackhq/medtrack/pkg/validator"
)

// PatientHandler serves the doctor-facing patient endpoints: the dashboard
// directory, per-patient history, and prescriptions written by doctors.
type PatientHandler struct {
	userRepo repository.UserRepository
	clinical service.ClinicalService
}

func NewPatientHandler(userRepo repository.UserRepository, clinical service.ClinicalService) *PatientHandler {
	return &PatientHandler{
		userRepo: userRepo,
		clinical: clinical,
	}
}

func (h *PatientHandler) List(c *gin.Context) {
	patients, err := h.userRepo.FindAllByRole(c.Request.Context(), model.RolePatient)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"patients": patients})
}

func (h *PatientHandler) History(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid patient id"})
		return
	}

	history, err := h.clinical.PatientHistory(c.Request.Context(), patientID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}

func (h *PatientHandler) AddDiagnosis(c *gin.Context) {
	var req dto.AddDiagnosisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

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

	diagnosis, err := h.clinical.AddDiagnosis(c.Request.Context(), doctorID, patientID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, diagnosis)
}

func (h *PatientHandler) AddMedicine(c *gin.Context) {
	var req dto.AddMedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid patient id"})
		return
	}

	medicine, err := h.clinical.AddMedicine(c.Request.Context(), patientID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, medicine)
}
