package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"padelchat/internal/apperr"
	"padelchat/internal/logger"
	"padelchat/internal/metrics"
	"padelchat/internal/model"
	"padelchat/internal/repository"

	"github.com/go-playground/validator/v10"
)

// Opening hours: one slot per hour from OpenHour until CloseHour
const (
	OpenHour  = 8
	CloseHour = 22
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// PadelService handles courts, availability and reservations
type PadelService struct {
	repo     repository.Repository
	validate *validator.Validate
	log      logger.Logger
}

// NewPadelService creates a new reservation service
func NewPadelService(repo repository.Repository, log logger.Logger) *PadelService {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return &PadelService{repo: repo, validate: v, log: log}
}

// ListCourts returns every court
func (s *PadelService) ListCourts(ctx context.Context) ([]model.Court, error) {
	courts, err := s.repo.ListCourts(ctx)
	if err != nil {
		return nil, err
	}
	s.log.Info("listed courts", map[string]interface{}{"count": len(courts)})
	return courts, nil
}

// GetCourt returns one court or COURT_NOT_FOUND
func (s *PadelService) GetCourt(ctx context.Context, courtID string) (*model.Court, error) {
	court, err := s.repo.GetCourt(ctx, courtID)
	if err != nil {
		return nil, err
	}
	if court == nil {
		return nil, apperr.New(apperr.CodeCourtNotFound, "Court not found: "+courtID)
	}
	return court, nil
}

// CheckAvailability returns the hourly slot grid of a court on a date
func (s *PadelService) CheckAvailability(ctx context.Context, courtID, date string) (*model.Availability, error) {
	court, err := s.GetCourt(ctx, courtID)
	if err != nil {
		return nil, err
	}
	if err := s.validate.Var(date, "required,datetime="+dateLayout); err != nil {
		return nil, apperr.New(apperr.CodeInvalidRequest, fmt.Sprintf("Invalid date %q, expected yyyy-MM-dd", date))
	}

	booked, err := s.repo.BookedStartTimes(ctx, courtID, date)
	if err != nil {
		return nil, err
	}

	slots := make([]model.TimeSlot, 0, CloseHour-OpenHour)
	for hour := OpenHour; hour < CloseHour; hour++ {
		start := fmt.Sprintf("%02d:00", hour)
		slots = append(slots, model.TimeSlot{
			StartTime: start,
			EndTime:   fmt.Sprintf("%02d:00", hour+1),
			Available: !booked[start],
		})
	}

	s.log.Info("checked availability", map[string]interface{}{
		"court_id": courtID,
		"date":     date,
		"booked":   len(booked),
	})
	return &model.Availability{Court: *court, Date: date, Slots: slots}, nil
}

// CreateReservation validates and books a slot. The price is the booked
// duration times the court's hourly rate.
func (s *PadelService) CreateReservation(ctx context.Context, req model.CreateReservationRequest) (*model.Reservation, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperr.Wrap(apperr.CodeInvalidRequest, describeValidation(err), err)
	}

	start, _ := time.Parse(timeLayout, req.StartTime)
	end, _ := time.Parse(timeLayout, req.EndTime)
	hours := end.Sub(start).Hours()
	if hours <= 0 {
		return nil, apperr.New(apperr.CodeInvalidRequest, "end_time must be after start_time")
	}
	if minuteOfDay(start) < OpenHour*60 || minuteOfDay(end) > CloseHour*60 {
		return nil, apperr.New(apperr.CodeInvalidRequest,
			fmt.Sprintf("Courts can be booked between %02d:00 and %02d:00", OpenHour, CloseHour))
	}

	court, err := s.GetCourt(ctx, req.CourtID)
	if err != nil {
		return nil, err
	}
	if court.Status != model.CourtStatusAvailable {
		return nil, apperr.New(apperr.CodeSlotTaken, fmt.Sprintf("%s is not open for bookings (%s)", court.Name, court.Status))
	}

	booked, err := s.repo.BookedStartTimes(ctx, req.CourtID, req.Date)
	if err != nil {
		return nil, err
	}
	if booked[req.StartTime] {
		s.log.Warn("slot already booked", map[string]interface{}{
			"court_id":   req.CourtID,
			"date":       req.Date,
			"start_time": req.StartTime,
		})
		return nil, apperr.New(apperr.CodeSlotTaken,
			fmt.Sprintf("Slot %s on %s is already booked", req.StartTime, req.Date))
	}

	reservation := &model.Reservation{
		CourtID:    req.CourtID,
		CourtName:  court.Name,
		Date:       req.Date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		UserName:   req.UserName,
		Status:     model.ReservationConfirmed,
		TotalPrice: hours * court.PricePerHour,
	}
	if err := s.repo.CreateReservation(ctx, reservation); err != nil {
		return nil, err
	}

	metrics.ReservationsCreated.WithLabelValues(reservation.CourtID).Inc()
	s.log.Info("reservation created", map[string]interface{}{
		"reservation_id": reservation.ID,
		"court_id":       reservation.CourtID,
		"date":           reservation.Date,
		"start_time":     reservation.StartTime,
		"user_name":      reservation.UserName,
	})
	return reservation, nil
}

// ListReservations returns a user's confirmed reservations
func (s *PadelService) ListReservations(ctx context.Context, userName string) ([]model.Reservation, error) {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return nil, apperr.New(apperr.CodeInvalidRequest, "user_name is required")
	}
	reservations, err := s.repo.ListReservationsByUser(ctx, userName)
	if err != nil {
		return nil, err
	}
	if reservations == nil {
		reservations = []model.Reservation{}
	}
	return reservations, nil
}

// CancelReservation marks a reservation cancelled and frees its slot
func (s *PadelService) CancelReservation(ctx context.Context, reservationID string) (*model.Reservation, error) {
	if strings.TrimSpace(reservationID) == "" {
		return nil, apperr.New(apperr.CodeInvalidRequest, "reservation_id is required")
	}
	reservation, err := s.repo.CancelReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation == nil {
		return nil, apperr.New(apperr.CodeReservationNotFound, "Reservation not found: "+reservationID)
	}
	s.log.Info("reservation cancelled", map[string]interface{}{"reservation_id": reservationID})
	return reservation, nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fe.Field()+" is required")
		case "datetime":
			format := "HH:mm"
			if fe.Param() == dateLayout {
				format = "yyyy-MM-dd"
			}
			parts = append(parts, fmt.Sprintf("%s must be a valid %s value", fe.Field(), format))
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fe.Field()+" is invalid")
		}
	}
	return "Invalid reservation: " + strings.Join(parts, "; ")
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
