package handler

import (
	"net/http"

	"padelchat/internal/apperr"
	"padelchat/internal/logger"
	"padelchat/internal/model"

	"github.com/gin-gonic/gin"
)

// APIHandler serves the plain REST API used by the booking calendar
type APIHandler struct {
	service ReservationService
	log     logger.Logger
}

// NewAPIHandler creates a new REST handler
func NewAPIHandler(service ReservationService, log logger.Logger) *APIHandler {
	return &APIHandler{
		service: service,
		log:     log,
	}
}

// Register mounts the REST routes on a router group rooted at /api
func (h *APIHandler) Register(api *gin.RouterGroup) {
	api.GET("/courts", h.ListCourts)
	api.GET("/courts/:id/availability", h.GetAvailability)
	api.POST("/reservations", h.CreateReservation)
	api.GET("/reservations", h.ListReservations)
	api.DELETE("/reservations/:id", h.CancelReservation)
}

// ListCourts handles GET /api/courts
func (h *APIHandler) ListCourts(c *gin.Context) {
	courts, err := h.service.ListCourts(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, courts)
}

// GetAvailability handles GET /api/courts/:id/availability?date=
func (h *APIHandler) GetAvailability(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date is required"})
		return
	}

	availability, err := h.service.CheckAvailability(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, availability)
}

// CreateReservation handles POST /api/reservations
func (h *APIHandler) CreateReservation(c *gin.Context) {
	var body model.ReservationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	reservation, err := h.service.CreateReservation(c.Request.Context(), body.ToCreateRequest())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reservation)
}

// ListReservations handles GET /api/reservations?userName=
func (h *APIHandler) ListReservations(c *gin.Context) {
	reservations, err := h.service.ListReservations(c.Request.Context(), c.Query("userName"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reservations)
}

// CancelReservation handles DELETE /api/reservations/:id
func (h *APIHandler) CancelReservation(c *gin.Context) {
	reservation, err := h.service.CancelReservation(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reservation)
}

func (h *APIHandler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.WithError(err).Error("api request failed", map[string]interface{}{"path": c.FullPath()})
		c.JSON(status, gin.H{"error": "Internal error"})
		return
	}
	c.JSON(status, gin.H{"error": apperr.MessageOf(err), "code": apperr.CodeOf(err)})
}

func statusFor(err error) int {
	switch apperr.CodeOf(err) {
	case apperr.CodeInvalidRequest:
		return http.StatusBadRequest
	case apperr.CodeCourtNotFound, apperr.CodeReservationNotFound:
		return http.StatusNotFound
	case apperr.CodeSlotTaken:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
