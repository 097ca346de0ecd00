package model

// Court statuses
const (
	CourtStatusAvailable   = "available"
	CourtStatusMaintenance = "maintenance"
)

// Reservation statuses
const (
	ReservationConfirmed = "confirmed"
	ReservationCancelled = "cancelled"
)

// Court represents a bookable padel court
type Court struct {
	ID           string  `json:"id" db:"id"`
	Name         string  `json:"name" db:"name"`
	Type         string  `json:"type" db:"type"` // indoor, outdoor
	Status       string  `json:"status" db:"status"`
	PricePerHour float64 `json:"pricePerHour" db:"price_per_hour"`
	Description  string  `json:"description" db:"description"`
}

// TimeSlot is one bookable hour of a court
type TimeSlot struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Available bool   `json:"available"`
}

// Availability is the slot grid of one court on one date
type Availability struct {
	Court Court      `json:"court"`
	Date  string     `json:"date"`
	Slots []TimeSlot `json:"slots"`
}

// Reservation represents a booked slot
type Reservation struct {
	ID         string  `json:"id" db:"id"`
	CourtID    string  `json:"courtId" db:"court_id"`
	CourtName  string  `json:"courtName" db:"court_name"`
	Date       string  `json:"date" db:"date"`           // yyyy-MM-dd
	StartTime  string  `json:"startTime" db:"start_time"` // HH:mm
	EndTime    string  `json:"endTime" db:"end_time"`     // HH:mm
	UserName   string  `json:"userName" db:"user_name"`
	Status     string  `json:"status" db:"status"`
	TotalPrice float64 `json:"totalPrice" db:"total_price"`
}
