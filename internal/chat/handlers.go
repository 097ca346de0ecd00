package chat

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"padelchat/internal/apperr"
	"padelchat/internal/logger"
	"padelchat/internal/model"
)

// Backend is the reservation service as seen from the chat layer.
type Backend interface {
	ListCourts(ctx context.Context) ([]model.Court, error)
	CheckAvailability(ctx context.Context, courtID, date string) (*model.Availability, error)
	CreateReservation(ctx context.Context, req model.CreateReservationRequest) (*model.Reservation, error)
	ListReservations(ctx context.Context, userName string) ([]model.Reservation, error)
}

type contextOp int

const (
	contextKeep contextOp = iota
	contextUpdate
	contextClear
)

// Turn is everything a handler sees for one utterance. Context is the
// session's live context; handlers change it only through Remember and Forget.
type Turn struct {
	Utterance string
	UserName  string
	Entities  Entities
	Context   *model.ConversationContext

	today string
	op    contextOp
}

// Court resolves the court: utterance first, then context
func (t *Turn) Court() string {
	if t.Entities.CourtID != "" {
		return t.Entities.CourtID
	}
	return t.Context.CourtID
}

// Date resolves the date: utterance, then context, then today
func (t *Turn) Date() string {
	if t.Entities.Date != "" {
		return t.Entities.Date
	}
	if t.Context.Date != "" {
		return t.Context.Date
	}
	return t.today
}

// StartTime is never carried over between turns
func (t *Turn) StartTime() string {
	return t.Entities.StartTime
}

// Remember stores the outcome of an availability check for later turns
func (t *Turn) Remember(courtID, date string, court *model.Court) {
	t.Context.CourtID = courtID
	t.Context.Date = date
	t.Context.Court = court
	t.op = contextUpdate
}

// Forget drops everything the session remembered
func (t *Turn) Forget() {
	*t.Context = model.ConversationContext{}
	t.op = contextClear
}

// HandlerFunc produces the reply for one classified turn
type HandlerFunc func(ctx context.Context, turn *Turn) *Reply

type handlers struct {
	backend Backend
	log     logger.Logger
}

func (h *handlers) table() map[Intent]HandlerFunc {
	return map[Intent]HandlerFunc{
		IntentListCourts:         h.listCourts,
		IntentCheckAvailability:  h.checkAvailability,
		IntentCreateReservation:  h.createReservation,
		IntentListMyReservations: h.listMyReservations,
		IntentHelp:               h.help,
		IntentUnknown:            h.unknown,
	}
}

func (h *handlers) listCourts(ctx context.Context, _ *Turn) *Reply {
	courts, err := h.backend.ListCourts(ctx)
	if err != nil {
		h.log.WithError(err).Warn("list courts failed", nil)
		return failure(backendCode(err), "I couldn't fetch the courts right now.")
	}
	if len(courts) == 0 {
		return success("There are no courts to show right now.", courts)
	}
	return success(renderCourts(courts), courts)
}

func (h *handlers) checkAvailability(ctx context.Context, turn *Turn) *Reply {
	courtID := turn.Court()
	date := turn.Date()
	if courtID == "" {
		return clarify(askCourtForAvailability, "court")
	}

	availability, err := h.backend.CheckAvailability(ctx, courtID, date)
	if err != nil {
		h.log.WithError(err).Warn("check availability failed", map[string]interface{}{
			"court_id": courtID,
			"date":     date,
		})
		if apperr.IsRejection(err) {
			return failure(apperr.CodeBackendRejected, rejectionText(err, "I couldn't check the availability."))
		}
		return failure(apperr.CodeBackendUnavailable, "There was an error checking the availability.")
	}

	if availability.Date == "" {
		availability.Date = date
	}
	court := availability.Court
	turn.Remember(courtID, date, &court)
	return success(renderAvailability(availability), availability)
}

func (h *handlers) createReservation(ctx context.Context, turn *Turn) *Reply {
	courtID := turn.Court()
	date := turn.Date()
	startTime := turn.StartTime()

	var missing []string
	if courtID == "" {
		missing = append(missing, "court")
	}
	if startTime == "" {
		missing = append(missing, "time")
	}
	if len(missing) > 0 {
		return clarify(renderMissingForReservation(missing), missing...)
	}

	req := model.CreateReservationRequest{
		CourtID:   courtID,
		Date:      date,
		StartTime: startTime,
		EndTime:   endTimeFor(startTime),
		UserName:  turn.UserName,
	}

	reservation, err := h.backend.CreateReservation(ctx, req)
	if err != nil {
		h.log.WithError(err).Warn("create reservation failed", map[string]interface{}{
			"court_id":   req.CourtID,
			"date":       req.Date,
			"start_time": req.StartTime,
		})
		if apperr.IsRejection(err) {
			return failure(apperr.CodeBackendRejected, "❌ "+rejectionText(err, genericSlotTaken))
		}
		return failure(apperr.CodeBackendUnavailable, "There was an error creating the reservation.")
	}

	turn.Forget()
	return success(renderConfirmation(reservation), reservation)
}

func (h *handlers) listMyReservations(ctx context.Context, turn *Turn) *Reply {
	userName := strings.TrimSpace(turn.UserName)
	if userName == "" {
		return clarify("Tell me your name first so I can look up your reservations.", "user_name")
	}

	reservations, err := h.backend.ListReservations(ctx, userName)
	if err != nil {
		h.log.WithError(err).Warn("list reservations failed", map[string]interface{}{"user_name": userName})
		return failure(backendCode(err), "I couldn't fetch your reservations.")
	}
	if len(reservations) == 0 {
		return success(fmt.Sprintf("You have no reservations yet, %s.", userName), reservations)
	}
	return success(renderReservations(userName, reservations), reservations)
}

func (h *handlers) help(context.Context, *Turn) *Reply {
	return success(helpText, nil)
}

func (h *handlers) unknown(context.Context, *Turn) *Reply {
	return &Reply{Kind: ReplyClarification, Message: unknownText, Code: apperr.CodeUnclassifiedIntent}
}

// endTimeFor books exactly one hour: "09:30" ends at "10:00".
func endTimeFor(startTime string) string {
	hourPart, _, _ := strings.Cut(startTime, ":")
	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%02d:00", hour+1)
}

func rejectionText(err error, fallback string) string {
	if msg := apperr.MessageOf(err); msg != "" {
		return msg
	}
	return fallback
}

func backendCode(err error) apperr.Code {
	if apperr.IsRejection(err) {
		return apperr.CodeBackendRejected
	}
	return apperr.CodeBackendUnavailable
}
