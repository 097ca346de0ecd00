package repository

import (
	"context"
	"fmt"

	"padelchat/internal/model"
)

// Repository stores courts and reservations
type Repository interface {
	ListCourts(ctx context.Context) ([]model.Court, error)
	// GetCourt returns nil, nil when the court does not exist
	GetCourt(ctx context.Context, courtID string) (*model.Court, error)
	// BookedStartTimes returns the start times of confirmed reservations
	BookedStartTimes(ctx context.Context, courtID, date string) (map[string]bool, error)
	// CreateReservation assigns r.ID. A confirmed reservation on the same
	// court, date and start time fails with apperr.CodeSlotTaken.
	CreateReservation(ctx context.Context, r *model.Reservation) error
	// ListReservationsByUser returns confirmed reservations, user name
	// compared case-insensitively, ordered by date then start time
	ListReservationsByUser(ctx context.Context, userName string) ([]model.Reservation, error)
	// CancelReservation returns nil, nil when the reservation does not exist
	CancelReservation(ctx context.Context, reservationID string) (*model.Reservation, error)
	Close() error
}

// DefaultCourts is the catalogue every new repository starts with
func DefaultCourts() []model.Court {
	return []model.Court{
		{
			ID:           "court-1",
			Name:         "Central Court",
			Type:         "indoor",
			Status:       model.CourtStatusAvailable,
			PricePerHour: 25,
			Description:  "Main covered court with LED lighting and air conditioning",
		},
		{
			ID:           "court-2",
			Name:         "North Court",
			Type:         "indoor",
			Status:       model.CourtStatusAvailable,
			PricePerHour: 20,
			Description:  "Covered court with excellent ventilation",
		},
		{
			ID:           "court-3",
			Name:         "South Court",
			Type:         "outdoor",
			Status:       model.CourtStatusAvailable,
			PricePerHour: 18,
			Description:  "Open-air court with a panoramic view",
		},
		{
			ID:           "court-4",
			Name:         "East Court",
			Type:         "outdoor",
			Status:       model.CourtStatusAvailable,
			PricePerHour: 18,
			Description:  "Outdoor court with latest generation artificial grass",
		},
	}
}

func reservationID(n int64) string {
	return fmt.Sprintf("RES-%04d", n)
}
