package model

// ToolResponse is the envelope every /mcp/tools endpoint answers with
type ToolResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// CheckAvailabilityRequest represents a check_availability tool call
type CheckAvailabilityRequest struct {
	CourtID string `json:"court_id" binding:"required"`
	Date    string `json:"date" binding:"required"`
}

// CreateReservationRequest represents a create_reservation tool call
type CreateReservationRequest struct {
	CourtID   string `json:"court_id" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime   string `json:"end_time" validate:"required,datetime=15:04"`
	UserName  string `json:"user_name" validate:"required,max=100"`
}

// ListReservationsRequest represents a list_my_reservations tool call
type ListReservationsRequest struct {
	UserName string `json:"user_name" binding:"required"`
}

// CancelReservationRequest represents a cancel_reservation tool call
type CancelReservationRequest struct {
	ReservationID string `json:"reservation_id" binding:"required"`
}

// ReservationBody is the camelCase payload of POST /api/reservations used by
// the booking calendar
type ReservationBody struct {
	CourtID   string `json:"courtId"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	UserName  string `json:"userName"`
}

// ToCreateRequest converts the calendar payload to the tool request shape
func (b ReservationBody) ToCreateRequest() CreateReservationRequest {
	return CreateReservationRequest{
		CourtID:   b.CourtID,
		Date:      b.Date,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
		UserName:  b.UserName,
	}
}

// ToolDescriptor describes one tool in the GET /mcp/tools catalogue
type ToolDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}
