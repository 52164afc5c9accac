package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medtrackhq/medtrack/internal/dto"
	"github.com/medtrackhq/medtrack/internal/service"
	"github.com/medtrackhq/medtrack/pkg/response"
	"github.com/medtrackhq/medtrack/pkg/validator"
)

// ClinicalHandler serves the patient-facing medicine and diagnosis endpoints.
type ClinicalHandler struct {
	clinical service.ClinicalService
}

func NewClinicalHandler(clinical service.ClinicalService) *ClinicalHandler {
	return &ClinicalHandler{clinical: clinical}
}

func (h *ClinicalHandler) ListOwnMedicines(c *gin.Context) {
	patientID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	medicines, err := h.clinical.ListMedicines(c.Request.Context(), patientID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"medicines": medicines})
}

func (h *ClinicalHandler) AddOwnMedicine(c *gin.Context) {
	var req dto.AddMedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	patientID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	medicine, err := h.clinical.AddMedicine(c.Request.Context(), patientID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, medicine)
}

func (h *ClinicalHandler) ListOwnDiagnoses(c *gin.Context) {
	patientID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	diagnoses, err := h.clinical.ListDiagnoses(c.Request.Context(), patientID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"diagnoses": diagnoses})
}
