package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/skyfare/flightbooking/internal/service/flights"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

// Register wires the read endpoints on the public group and the
// flight-management endpoints on the admin group.
func (h *FlightHandler) Register(public, admin *gin.RouterGroup) {
	public.GET("", h.list)
	public.GET("/:id", h.get)

	admin.POST("", h.create)
	admin.PUT("/:id", h.update)
}

func (h *FlightHandler) list(c *gin.Context) {
	flights, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flights)
}

func (h *FlightHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) create(c *gin.Context) {
	var req flights.CreateFlightInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flight, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, flight)
}

func (h *FlightHandler) update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req flights.UpdateFlightInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flight, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}
