package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"padelchat/internal/apperr"
	"padelchat/internal/model"
)

// MemoryRepository keeps everything in process memory. It is the default
// when no database is configured and loses its reservations on restart.
type MemoryRepository struct {
	mu           sync.RWMutex
	courts       []model.Court
	reservations map[string]*model.Reservation
	counter      int64
}

// NewMemoryRepository creates a repository seeded with the given courts
func NewMemoryRepository(courts []model.Court) *MemoryRepository {
	seeded := make([]model.Court, len(courts))
	copy(seeded, courts)
	return &MemoryRepository{
		courts:       seeded,
		reservations: make(map[string]*model.Reservation),
	}
}

func (r *MemoryRepository) ListCourts(_ context.Context) ([]model.Court, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	courts := make([]model.Court, len(r.courts))
	copy(courts, r.courts)
	return courts, nil
}

func (r *MemoryRepository) GetCourt(_ context.Context, courtID string) (*model.Court, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.courts {
		if c.ID == courtID {
			court := c
			return &court, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) BookedStartTimes(_ context.Context, courtID, date string) (map[string]bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	booked := make(map[string]bool)
	for _, res := range r.reservations {
		if res.CourtID == courtID && res.Date == date && res.Status == model.ReservationConfirmed {
			booked[res.StartTime] = true
		}
	}
	return booked, nil
}

func (r *MemoryRepository) CreateReservation(_ context.Context, res *model.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.reservations {
		if existing.Status == model.ReservationConfirmed &&
			existing.CourtID == res.CourtID &&
			existing.Date == res.Date &&
			existing.StartTime == res.StartTime {
			return apperr.New(apperr.CodeSlotTaken,
				fmt.Sprintf("Slot %s on %s is already booked", res.StartTime, res.Date))
		}
	}

	r.counter++
	res.ID = reservationID(r.counter)
	stored := *res
	r.reservations[res.ID] = &stored
	return nil
}

func (r *MemoryRepository) ListReservationsByUser(_ context.Context, userName string) ([]model.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.Reservation
	for _, res := range r.reservations {
		if res.Status == model.ReservationConfirmed && strings.EqualFold(res.UserName, userName) {
			out = append(out, *res)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (r *MemoryRepository) CancelReservation(_ context.Context, reservationID string) (*model.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.reservations[reservationID]
	if !ok {
		return nil, nil
	}
	res.Status = model.ReservationCancelled
	cancelled := *res
	return &cancelled, nil
}

func (r *MemoryRepository) Close() error {
	return nil
}
