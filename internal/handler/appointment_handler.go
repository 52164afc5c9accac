package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/medtrackhq/medtrack/internal/dto"
	"github.com/medtrackhq/medtrack/internal/model"
	"github.com/medtrackhq/medtrack/internal/service"
	"github.com/medtrackhq/medtrack/pkg/response"
	"github.com/medtrackhq/medtrack/pkg/validator"
)

type AppointmentHandler struct {
	service service.AppointmentService
}

func NewAppointmentHandler(service service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{service: service}
}

func (h *AppointmentHandler) Book(c *gin.Context) {
	var req dto.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	patientID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	appointment, err := h.service.Book(c.Request.Context(), patientID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, appointment)
}

func (h *AppointmentHandler) ListOwn(c *gin.Context) {
	patientID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	appointments, err := h.service.ListForPatient(c.Request.Context(), patientID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"appointments": appointments})
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid appointment id"})
		return
	}

	patientID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.Cancel(c.Request.Context(), patientID, appointmentID); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "appointment cancelled successfully"})
}

func (h *AppointmentHandler) ListAssigned(c *gin.Context) {
	doctorID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	appointments, err := h.service.ListForDoctor(c.Request.Context(), doctorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"appointments": appointments})
}

func (h *AppointmentHandler) Summary(c *gin.Context) {
	doctorID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), doctorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *AppointmentHandler) Accept(c *gin.Context) {
	h.updateStatus(c, model.StatusAccepted)
}

func (h *AppointmentHandler) Reject(c *gin.Context) {
	h.updateStatus(c, model.StatusRejected)
}

func (h *AppointmentHandler) updateStatus(c *gin.Context, to model.AppointmentStatus) {
	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid appointment id"})
		return
	}

	doctorID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	appointment, err := h.service.UpdateStatus(c.Request.Context(), doctorID, appointmentID, to)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, appointment)
}

func (h *AppointmentHandler) Solve(c *gin.Context) {
	var req dto.SolveAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid appointment id"})
		return
	}

	doctorID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	appointment, err := h.service.Solve(c.Request.Context(), doctorID, appointmentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, appointment)
}
