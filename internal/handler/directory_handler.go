package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medtrackhq/medtrack/internal/service"
	"github.com/medtrackhq/medtrack/pkg/response"
)

type DirectoryHandler struct {
	service service.DirectoryService
}

func NewDirectoryHandler(service service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{service: service}
}

func (h *DirectoryHandler) Specialties(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"specialties": h.service.Specialties()})
}

func (h *DirectoryHandler) FindDoctor(c *gin.Context) {
	if query := c.Query("q"); query != "" {
		doctors, ok, err := h.service.Search(query)
		if err != nil {
			response.Error(c, err)
			return
		}
		if !ok {
			c.JSON(http.StatusNotImplemented, gin.H{"error": "free-text search is not configured"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"doctors": doctors})
		return
	}

	specialty := c.Query("specialty")
	if specialty == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "specialty or q query parameter is required"})
		return
	}

	doctor, ok := h.service.FindBySpecialty(specialty)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no doctor found for this specialty"})
		return
	}

	c.JSON(http.StatusOK, doctor)
}
