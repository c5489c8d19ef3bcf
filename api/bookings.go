package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/skyfare/flightbooking/internal/auth"
	"github.com/skyfare/flightbooking/internal/domain"
	"github.com/skyfare/flightbooking/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type bookingResponse struct {
	ID                  int64    `json:"id"`
	BookingNumber       string   `json:"booking_number"`
	FlightID            int64    `json:"flight_id"`
	SeatsBooked         int      `json:"seats_booked"`
	PassengerNames      []string `json:"passenger_names,omitempty"`
	PassengerBirthDates []string `json:"passenger_birth_dates,omitempty"`
	TotalPriceCents     int64    `json:"total_price_cents"`
	Status              string   `json:"status"`
	CreatedAt           string   `json:"created_at"`
	UpdatedAt           string   `json:"updated_at"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.GET("/number/:number", h.getByNumber)
	router.POST("/:id/confirm", h.confirm)
	router.POST("/:id/cancel", h.cancel)
	router.PATCH("/:id/status", h.updateStatus)
	router.PATCH("/:id/passengers", h.updatePassengers)
	router.DELETE("/:id", h.remove)
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	resp := bookingResponse{
		ID:              b.ID,
		BookingNumber:   b.BookingNumber,
		FlightID:        b.FlightID,
		SeatsBooked:     b.SeatsBooked,
		PassengerNames:  b.PassengerNames,
		TotalPriceCents: b.TotalPriceCents,
		Status:          string(b.Status),
		CreatedAt:       b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       b.UpdatedAt.Format(time.RFC3339),
	}
	for _, bd := range b.PassengerBirthDates {
		resp.PassengerBirthDates = append(resp.PassengerBirthDates, bd.Format("2006-01-02"))
	}
	return resp
}

func bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return 0, false
	}
	return id, true
}

func (h *BookingHandler) create(c *gin.Context) {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req booking.CreateBookingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.CreateBooking(c.Request.Context(), actor, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(created))
}

func (h *BookingHandler) list(c *gin.Context) {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	bookings, err := h.service.ListBookings(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		resp = append(resp, toBookingResponse(&bookings[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) get(c *gin.Context) {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	id, ok := bookingID(c)
	if !ok {
		return
	}

	found, err := h.service.GetBooking(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(found))
}

func (h *BookingHandler) getByNumber(c *gin.Context) {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	found, err := h.service.GetBookingByNumber(c.Request.Context(), actor, c.Param("number"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(found))
}

func (h *BookingHandler) confirm(c *gin.Context) {
	h.transition(c, func(actor domain.Actor, id int64) (*domain.Booking, error) {
		return h.service.ConfirmBooking(c.Request.Context(), actor, id)
	})
}

func (h *BookingHandler) cancel(c *gin.Context) {
	h.transition(c, func(actor domain.Actor, id int64) (*domain.Booking, error) {
		return h.service.CancelBooking(c.Request.Context(), actor, id)
	})
}

func (h *BookingHandler) transition(c *gin.Context, apply func(domain.Actor, int64) (*domain.Booking, error)) {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	id, ok := bookingID(c)
	if !ok {
		return
	}

	updated, err := apply(actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(updated))
}

func (h *BookingHandler) updateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.transition(c, func(actor domain.Actor, id int64) (*domain.Booking, error) {
		return h.service.UpdateBookingStatus(c.Request.Context(), actor, id, domain.BookingStatus(req.Status))
	})
}

func (h *BookingHandler) updatePassengers(c *gin.Context) {
	var req booking.PassengerData
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.transition(c, func(actor domain.Actor, id int64) (*domain.Booking, error) {
		return h.service.UpdatePassengerData(c.Request.Context(), actor, id, req)
	})
}

func (h *BookingHandler) remove(c *gin.Context) {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	id, ok := bookingID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteBooking(c.Request.Context(), actor, id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
