package handler

import (
	"context"
	"net/http"

	"padelchat/internal/apperr"
	"padelchat/internal/logger"
	"padelchat/internal/model"

	"github.com/gin-gonic/gin"
)

// ReservationService is the backend the HTTP handlers expose
type ReservationService interface {
	ListCourts(ctx context.Context) ([]model.Court, error)
	GetCourt(ctx context.Context, courtID string) (*model.Court, error)
	CheckAvailability(ctx context.Context, courtID, date string) (*model.Availability, error)
	CreateReservation(ctx context.Context, req model.CreateReservationRequest) (*model.Reservation, error)
	ListReservations(ctx context.Context, userName string) ([]model.Reservation, error)
	CancelReservation(ctx context.Context, reservationID string) (*model.Reservation, error)
}

// ToolHandler serves the /mcp tool endpoints
type ToolHandler struct {
	service ReservationService
	log     logger.Logger
	version string
}

// NewToolHandler creates a new tool handler
func NewToolHandler(service ReservationService, log logger.Logger, version string) *ToolHandler {
	return &ToolHandler{
		service: service,
		log:     log,
		version: version,
	}
}

// Register mounts the tool routes on a router group rooted at /mcp
func (h *ToolHandler) Register(mcp *gin.RouterGroup) {
	mcp.GET("/health", h.Health)
	mcp.GET("/tools", h.ListTools)

	tools := mcp.Group("/tools")
	{
		tools.POST("/list_courts", h.ListCourts)
		tools.POST("/check_availability", h.CheckAvailability)
		tools.POST("/create_reservation", h.CreateReservation)
		tools.POST("/list_my_reservations", h.ListMyReservations)
		tools.POST("/cancel_reservation", h.CancelReservation)
	}
}

// Health handles GET /mcp/health
func (h *ToolHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"server":      "padelchat-tools",
		"version":     h.version,
		"tools_count": len(toolCatalogue),
	})
}

// ListTools handles GET /mcp/tools
func (h *ToolHandler) ListTools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": toolCatalogue})
}

// ListCourts handles POST /mcp/tools/list_courts
func (h *ToolHandler) ListCourts(c *gin.Context) {
	courts, err := h.service.ListCourts(c.Request.Context())
	if err != nil {
		h.fail(c, "list_courts", err)
		return
	}
	h.ok(c, courts, "Courts fetched successfully")
}

// CheckAvailability handles POST /mcp/tools/check_availability
func (h *ToolHandler) CheckAvailability(c *gin.Context) {
	var req model.CheckAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	availability, err := h.service.CheckAvailability(c.Request.Context(), req.CourtID, req.Date)
	if err != nil {
		h.fail(c, "check_availability", err)
		return
	}
	h.ok(c, availability, "Availability fetched successfully")
}

// CreateReservation handles POST /mcp/tools/create_reservation
func (h *ToolHandler) CreateReservation(c *gin.Context) {
	var req model.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	reservation, err := h.service.CreateReservation(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "create_reservation", err)
		return
	}
	h.ok(c, reservation, "Reservation created successfully")
}

// ListMyReservations handles POST /mcp/tools/list_my_reservations
func (h *ToolHandler) ListMyReservations(c *gin.Context) {
	var req model.ListReservationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	reservations, err := h.service.ListReservations(c.Request.Context(), req.UserName)
	if err != nil {
		h.fail(c, "list_my_reservations", err)
		return
	}
	message := "Reservations fetched successfully"
	if len(reservations) == 0 {
		message = "No reservations found"
	}
	h.ok(c, reservations, message)
}

// CancelReservation handles POST /mcp/tools/cancel_reservation
func (h *ToolHandler) CancelReservation(c *gin.Context) {
	var req model.CancelReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	reservation, err := h.service.CancelReservation(c.Request.Context(), req.ReservationID)
	if err != nil {
		h.fail(c, "cancel_reservation", err)
		return
	}
	h.ok(c, reservation, "Reservation cancelled successfully")
}

func (h *ToolHandler) ok(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, model.ToolResponse{Success: true, Data: data, Message: message})
}

func (h *ToolHandler) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, model.ToolResponse{Error: "Invalid request: " + err.Error()})
}

// fail answers rejections with 400 and the service's message; anything else
// is an internal error whose details stay in the log
func (h *ToolHandler) fail(c *gin.Context, tool string, err error) {
	if apperr.IsRejection(err) {
		c.JSON(http.StatusBadRequest, model.ToolResponse{Error: apperr.MessageOf(err)})
		return
	}
	h.log.WithError(err).Error("tool call failed", map[string]interface{}{"tool": tool})
	c.JSON(http.StatusInternalServerError, model.ToolResponse{Error: "Internal error"})
}

func stringProperty(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

var toolCatalogue = []model.ToolDescriptor{
	{
		Name:        "list_courts",
		Description: "List every padel court",
		InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
	},
	{
		Name:        "check_availability",
		Description: "Check the hourly availability of a court on a date",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"court_id": stringProperty("Court ID"),
				"date":     stringProperty("Date (yyyy-MM-dd)"),
			},
			"required": []string{"court_id", "date"},
		},
	},
	{
		Name:        "create_reservation",
		Description: "Book a court",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"court_id":   stringProperty("Court ID"),
				"date":       stringProperty("Date (yyyy-MM-dd)"),
				"start_time": stringProperty("Start time (HH:mm)"),
				"end_time":   stringProperty("End time (HH:mm)"),
				"user_name":  stringProperty("User name"),
			},
			"required": []string{"court_id", "date", "start_time", "end_time", "user_name"},
		},
	},
	{
		Name:        "list_my_reservations",
		Description: "List the confirmed reservations of a user",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"user_name": stringProperty("User name"),
			},
			"required": []string{"user_name"},
		},
	},
	{
		Name:        "cancel_reservation",
		Description: "Cancel a reservation",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"reservation_id": stringProperty("Reservation ID"),
			},
			"required": []string{"reservation_id"},
		},
	},
}
