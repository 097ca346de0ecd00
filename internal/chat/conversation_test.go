package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"padelchat/internal/apperr"
	"padelchat/internal/logger"
	"padelchat/internal/model"
	"padelchat/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu sync.Mutex

	courts       []model.Court
	listErr      error
	availErr     error
	createErr    error
	reservations []model.Reservation
	listResErr   error

	availCalls  []string
	createCalls []model.CreateReservationRequest
	listUsers   []string
}

var courtCentral = model.Court{ID: "court-1", Name: "Central Court", Type: "indoor", Status: "available", PricePerHour: 25, Description: "LED lighting"}
var courtNorth = model.Court{ID: "court-2", Name: "North Court", Type: "indoor", Status: "available", PricePerHour: 20, Description: "Well ventilated"}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{courts: []model.Court{courtCentral, courtNorth}}
}

func (f *fakeBackend) ListCourts(context.Context) ([]model.Court, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.courts, nil
}

func (f *fakeBackend) CheckAvailability(_ context.Context, courtID, date string) (*model.Availability, error) {
	f.mu.Lock()
	f.availCalls = append(f.availCalls, courtID+"@"+date)
	f.mu.Unlock()
	if f.availErr != nil {
		return nil, f.availErr
	}
	for _, c := range f.courts {
		if c.ID == courtID {
			return &model.Availability{
				Court: c,
				Date:  date,
				Slots: []model.TimeSlot{
					{StartTime: "08:00", EndTime: "09:00", Available: true},
					{StartTime: "09:00", EndTime: "10:00", Available: false},
				},
			}, nil
		}
	}
	return nil, apperr.New(apperr.CodeCourtNotFound, "Court not found: "+courtID)
}

func (f *fakeBackend) CreateReservation(_ context.Context, req model.CreateReservationRequest) (*model.Reservation, error) {
	f.mu.Lock()
	f.createCalls = append(f.createCalls, req)
	f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &model.Reservation{
		ID:         "RES-0001",
		CourtID:    req.CourtID,
		CourtName:  "Central Court",
		Date:       req.Date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		UserName:   req.UserName,
		Status:     model.ReservationConfirmed,
		TotalPrice: 25,
	}, nil
}

func (f *fakeBackend) ListReservations(_ context.Context, userName string) ([]model.Reservation, error) {
	f.listUsers = append(f.listUsers, userName)
	if f.listResErr != nil {
		return nil, f.listResErr
	}
	return f.reservations, nil
}

func (f *fakeBackend) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.availCalls) + len(f.createCalls) + len(f.listUsers)
}

func newTestConversation(t *testing.T, backend Backend, store session.Store) *Conversation {
	t.Helper()
	if store == nil {
		store = session.NewMemoryStore(0)
	}
	return NewConversation(backend, store, logger.NewTestLogger(t), WithExtractor(fixedExtractor()))
}

func TestConversation_ReservationEndToEnd(t *testing.T) {
	backend := newFakeBackend()
	conv := newTestConversation(t, backend, nil)

	reply := conv.Submit(context.Background(), "s1", "Reserve court 1 for tomorrow at 10", "Ana")

	require.Equal(t, ReplySuccess, reply.Kind, reply.Message)
	assert.Equal(t, IntentCreateReservation, reply.Intent)
	require.Len(t, backend.createCalls, 1)
	assert.Equal(t, model.CreateReservationRequest{
		CourtID:   "court-1",
		Date:      "2024-02-15",
		StartTime: "10:00",
		EndTime:   "11:00",
		UserName:  "Ana",
	}, backend.createCalls[0])
	assert.Contains(t, reply.Message, "RES-0001")
	assert.Contains(t, reply.Message, "10:00 - 11:00")
}

func TestConversation_CreateUsesStoredContext(t *testing.T) {
	store := session.NewMemoryStore(0)
	require.NoError(t, store.Save(context.Background(), "s1", &model.ConversationContext{CourtID: "court-2", Date: "2024-02-15"}))

	backend := newFakeBackend()
	conv := newTestConversation(t, backend, store)

	reply := conv.Submit(context.Background(), "s1", "book at 9", "Ana")

	require.Equal(t, ReplySuccess, reply.Kind, reply.Message)
	require.Len(t, backend.createCalls, 1)
	got := backend.createCalls[0]
	assert.Equal(t, "court-2", got.CourtID)
	assert.Equal(t, "2024-02-15", got.Date)
	assert.Equal(t, "09:00", got.StartTime)
	assert.Equal(t, "10:00", got.EndTime)
	assert.Equal(t, Entities{CourtID: "court-2", Date: "2024-02-15", StartTime: "09:00"}, reply.Entities)
}

func TestConversation_ExplicitEntitiesBeatContext(t *testing.T) {
	store := session.NewMemoryStore(0)
	require.NoError(t, store.Save(context.Background(), "s1", &model.ConversationContext{CourtID: "court-2", Date: "2024-02-20"}))

	backend := newFakeBackend()
	conv := newTestConversation(t, backend, store)

	conv.Submit(context.Background(), "s1", "book court 1 tomorrow at 12", "Ana")

	require.Len(t, backend.createCalls, 1)
	assert.Equal(t, "court-1", backend.createCalls[0].CourtID)
	assert.Equal(t, "2024-02-15", backend.createCalls[0].Date)
}

func TestConversation_CheckAvailabilityWithoutCourtClarifies(t *testing.T) {
	backend := newFakeBackend()
	conv := newTestConversation(t, backend, nil)

	reply := conv.Submit(context.Background(), "s1", "is anything available tomorrow?", "Ana")

	assert.Equal(t, IntentCheckAvailability, reply.Intent)
	assert.Equal(t, ReplyClarification, reply.Kind)
	assert.Equal(t, apperr.CodeMissingRequiredEntity, reply.Code)
	assert.Equal(t, []string{"court"}, reply.Missing)
	assert.Contains(t, reply.Message, "court 1")
	assert.Zero(t, backend.calls())
}

func TestConversation_AvailabilityThenBook(t *testing.T) {
	backend := newFakeBackend()
	store := session.NewMemoryStore(0)
	conv := newTestConversation(t, backend, store)
	ctx := context.Background()

	reply := conv.Submit(ctx, "s1", "Is court 2 available tomorrow?", "Ana")
	require.Equal(t, ReplySuccess, reply.Kind, reply.Message)
	assert.Equal(t, []string{"court-2@2024-02-15"}, backend.availCalls)
	assert.Contains(t, reply.Message, "North Court")
	assert.Contains(t, reply.Message, "08:00 ✓")
	assert.Contains(t, reply.Message, "09:00 ✗")

	stored, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "court-2", stored.CourtID)
	assert.Equal(t, "2024-02-15", stored.Date)
	require.NotNil(t, stored.Court)
	assert.Equal(t, "North Court", stored.Court.Name)

	reply = conv.Submit(ctx, "s1", "book at 14", "Ana")
	require.Equal(t, ReplySuccess, reply.Kind, reply.Message)
	require.Len(t, backend.createCalls, 1)
	assert.Equal(t, "court-2", backend.createCalls[0].CourtID)
	assert.Equal(t, "2024-02-15", backend.createCalls[0].Date)
	assert.Equal(t, "14:00", backend.createCalls[0].StartTime)
	assert.Equal(t, "15:00", backend.createCalls[0].EndTime)
}

func TestConversation_SuccessfulBookingClearsContext(t *testing.T) {
	backend := newFakeBackend()
	store := session.NewMemoryStore(0)
	conv := newTestConversation(t, backend, store)
	ctx := context.Background()

	conv.Submit(ctx, "s1", "Is court 2 available tomorrow?", "Ana")
	reply := conv.Submit(ctx, "s1", "book at 14", "Ana")
	require.Equal(t, ReplySuccess, reply.Kind)

	stored, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, stored.IsEmpty())

	reply = conv.Submit(ctx, "s1", "book at 16", "Ana")
	assert.Equal(t, ReplyClarification, reply.Kind)
	assert.Equal(t, []string{"court"}, reply.Missing)
	assert.Len(t, backend.createCalls, 1, "no second booking may reuse the old court")
}

func TestConversation_CreateMissingEverything(t *testing.T) {
	backend := newFakeBackend()
	conv := newTestConversation(t, backend, nil)

	reply := conv.Submit(context.Background(), "s1", "I want to make a reservation", "Ana")

	assert.Equal(t, IntentCreateReservation, reply.Intent)
	assert.Equal(t, ReplyClarification, reply.Kind)
	assert.Equal(t, []string{"court", "time"}, reply.Missing)
	assert.Contains(t, reply.Message, "Court (e.g.")
	assert.Contains(t, reply.Message, "Time (e.g.")
	assert.Contains(t, reply.Message, `Example: "Reserve court 1 for tomorrow at 10"`)
	assert.Zero(t, backend.calls())
}

func TestConversation_CreateMissingTimeOnly(t *testing.T) {
	backend := newFakeBackend()
	conv := newTestConversation(t, backend, nil)

	reply := conv.Submit(context.Background(), "s1", "reserve court central tomorrow", "Ana")

	assert.Equal(t, []string{"time"}, reply.Missing)
	assert.NotContains(t, reply.Message, "Court (e.g.")
	assert.Zero(t, backend.calls())
}

func TestConversation_CreateRejected(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"backend message kept", apperr.BackendRejected("Slot 10:00 is already booked"), "❌ Slot 10:00 is already booked"},
		{"service code kept", apperr.New(apperr.CodeSlotTaken, "already taken"), "❌ already taken"},
		{"empty message", apperr.BackendRejected(""), "❌ " + genericSlotTaken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newFakeBackend()
			backend.createErr = tt.err
			store := session.NewMemoryStore(0)
			require.NoError(t, store.Save(context.Background(), "s1", &model.ConversationContext{CourtID: "court-1", Date: "2024-02-15"}))
			conv := newTestConversation(t, backend, store)

			reply := conv.Submit(context.Background(), "s1", "book at 10", "Ana")

			assert.Equal(t, ReplyError, reply.Kind)
			assert.Equal(t, apperr.CodeBackendRejected, reply.Code)
			assert.Equal(t, tt.want, reply.Message)

			stored, err := store.Load(context.Background(), "s1")
			require.NoError(t, err)
			assert.Equal(t, "court-1", stored.CourtID, "a failed booking keeps the context")
		})
	}
}

func TestConversation_BackendUnavailable(t *testing.T) {
	down := apperr.BackendUnavailable("request", errors.New("connection refused"))
	backend := newFakeBackend()
	backend.listErr = down
	backend.availErr = down
	backend.createErr = down
	backend.listResErr = down
	conv := newTestConversation(t, backend, nil)
	ctx := context.Background()

	for _, utterance := range []string{
		"show me the courts",
		"is court 1 available",
		"book court 1 at 10",
		"my reservations",
	} {
		reply := conv.Submit(ctx, "s1", utterance, "Ana")
		assert.Equal(t, ReplyError, reply.Kind, utterance)
		assert.Equal(t, apperr.CodeBackendUnavailable, reply.Code, utterance)
		assert.NotEmpty(t, reply.Message, utterance)
	}

	// the conversation stays usable after failures
	backend.availErr = nil
	reply := conv.Submit(ctx, "s1", "is court 1 available", "Ana")
	assert.Equal(t, ReplySuccess, reply.Kind)
}

func TestConversation_CheckAvailabilityRejected(t *testing.T) {
	backend := newFakeBackend()
	backend.availErr = apperr.BackendRejected("Court not found: court-3")
	conv := newTestConversation(t, backend, nil)

	reply := conv.Submit(context.Background(), "s1", "is court 3 available", "Ana")

	assert.Equal(t, ReplyError, reply.Kind)
	assert.Equal(t, "Court not found: court-3", reply.Message)
}

func TestConversation_ListCourts(t *testing.T) {
	backend := newFakeBackend()
	conv := newTestConversation(t, backend, nil)

	reply := conv.Submit(context.Background(), "s1", "Show me the courts", "Ana")

	require.Equal(t, ReplySuccess, reply.Kind)
	assert.Contains(t, reply.Message, "Central Court")
	assert.Contains(t, reply.Message, "Type: indoor")
	assert.Contains(t, reply.Message, "Price: €25/hour")
	assert.Contains(t, reply.Message, "Status: available")
	assert.Contains(t, reply.Message, "LED lighting")
	assert.Contains(t, reply.Message, "Ask for it as: court 2, court norte, court north")
	assert.Len(t, reply.Data, 2)
}

func TestConversation_ListCourtsEmpty(t *testing.T) {
	backend := newFakeBackend()
	backend.courts = nil
	conv := newTestConversation(t, backend, nil)

	reply := conv.Submit(context.Background(), "s1", "list courts", "Ana")

	assert.Equal(t, ReplySuccess, reply.Kind)
	assert.Equal(t, "There are no courts to show right now.", reply.Message)
}

func TestConversation_ListMyReservations(t *testing.T) {
	backend := newFakeBackend()
	conv := newTestConversation(t, backend, nil)
	ctx := context.Background()

	reply := conv.Submit(ctx, "s1", "my reservations", "Ana")
	assert.Equal(t, ReplySuccess, reply.Kind)
	assert.Equal(t, "You have no reservations yet, Ana.", reply.Message)

	backend.reservations = []model.Reservation{{
		ID: "RES-0007", CourtName: "North Court", Date: "2024-02-15", StartTime: "09:00", EndTime: "10:00", TotalPrice: 20,
	}}
	reply = conv.Submit(ctx, "s1", "show my reservations", "Ana")
	assert.Contains(t, reply.Message, "Your reservations, Ana:")
	assert.Contains(t, reply.Message, "RES-0007")
	assert.Equal(t, []string{"Ana", "Ana"}, backend.listUsers)

	backend.listResErr = apperr.BackendUnavailable("list", errors.New("timeout"))
	reply = conv.Submit(ctx, "s1", "my reservations", "Ana")
	assert.Equal(t, "I couldn't fetch your reservations.", reply.Message)
}

func TestConversation_ListMyReservationsNeedsUser(t *testing.T) {
	backend := newFakeBackend()
	conv := newTestConversation(t, backend, nil)

	reply := conv.Submit(context.Background(), "s1", "my reservations", "  ")

	assert.Equal(t, ReplyClarification, reply.Kind)
	assert.Empty(t, backend.listUsers)
}

func TestConversation_UnknownAndHelp(t *testing.T) {
	backend := newFakeBackend()
	conv := newTestConversation(t, backend, nil)
	ctx := context.Background()

	reply := conv.Submit(ctx, "s1", "asdkjashd", "Ana")
	assert.Equal(t, IntentUnknown, reply.Intent)
	assert.Equal(t, apperr.CodeUnclassifiedIntent, reply.Code)
	assert.Equal(t, unknownText, reply.Message)

	reply = conv.Submit(ctx, "s1", "help", "Ana")
	assert.Equal(t, IntentHelp, reply.Intent)
	assert.Equal(t, ReplySuccess, reply.Kind)
	assert.Equal(t, helpText, reply.Message)

	assert.Zero(t, backend.calls())
}

func TestConversation_Reset(t *testing.T) {
	backend := newFakeBackend()
	store := session.NewMemoryStore(0)
	conv := newTestConversation(t, backend, store)
	ctx := context.Background()

	s := conv.Session("s1")
	s.Submit(ctx, "is court 1 available", "Ana")
	require.NoError(t, s.Reset(ctx))

	reply := s.Submit(ctx, "book at 10", "Ana")
	assert.Equal(t, ReplyClarification, reply.Kind)
	assert.Equal(t, "s1", s.ID())
}

type failingStore struct{}

func (failingStore) Load(context.Context, string) (*model.ConversationContext, error) {
	return nil, errors.New("store down")
}
func (failingStore) Save(context.Context, string, *model.ConversationContext) error {
	return errors.New("store down")
}
func (failingStore) Clear(context.Context, string) error { return errors.New("store down") }

func TestConversation_StoreFailureDegrades(t *testing.T) {
	backend := newFakeBackend()
	conv := newTestConversation(t, backend, failingStore{})

	reply := conv.Submit(context.Background(), "s1", "Reserve court 1 for tomorrow at 10", "Ana")
	assert.Equal(t, ReplySuccess, reply.Kind)

	reply = conv.Submit(context.Background(), "s1", "is court 1 available", "Ana")
	assert.Equal(t, ReplySuccess, reply.Kind)
}

func TestConversation_SessionsAreIsolated(t *testing.T) {
	backend := newFakeBackend()
	conv := newTestConversation(t, backend, nil)
	ctx := context.Background()

	conv.Submit(ctx, "alice", "is court 2 available", "Alice")
	reply := conv.Submit(ctx, "bob", "book at 10", "Bob")

	assert.Equal(t, ReplyClarification, reply.Kind)
}

func TestConversation_ConcurrentSessions(t *testing.T) {
	backend := newFakeBackend()
	store := session.NewMemoryStore(0)
	conv := newTestConversation(t, backend, store)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", i)
			court := []string{"1", "2"}[i%2]
			conv.Submit(ctx, id, "is court "+court+" available", "Ana")
			reply := conv.Submit(ctx, id, "book at 10", "Ana")
			assert.Equal(t, ReplySuccess, reply.Kind)
		}(i)
	}
	wg.Wait()

	assert.Len(t, backend.createCalls, 20)
	assert.Empty(t, conv.locks)
}

func TestConversation_WithHandlerOverride(t *testing.T) {
	conv := NewConversation(newFakeBackend(), session.NewMemoryStore(0), logger.NewNoOpLogger(),
		WithHandler(IntentHelp, func(context.Context, *Turn) *Reply {
			return &Reply{Kind: ReplySuccess, Message: "custom"}
		}))

	reply := conv.Submit(context.Background(), "s1", "help", "")
	assert.Equal(t, "custom", reply.Message)
	assert.Equal(t, IntentHelp, reply.Intent)
}

func TestConversation_NilReplyFromHandler(t *testing.T) {
	backend := newFakeBackend()
	store := session.NewMemoryStore(0)
	conv := NewConversation(backend, store, logger.NewNoOpLogger(),
		WithExtractor(fixedExtractor()),
		WithHandler(IntentListCourts, func(context.Context, *Turn) *Reply { return nil }))

	var reply *Reply
	require.NotPanics(t, func() {
		reply = conv.Submit(context.Background(), "s1", "show me the courts", "Ana")
	})
	require.NotNil(t, reply)
	assert.Equal(t, ReplyError, reply.Kind)
	assert.Equal(t, noReplyText, reply.Message)
	assert.Equal(t, IntentListCourts, reply.Intent)
	assert.Empty(t, conv.locks)
}

func TestEndTimeFor(t *testing.T) {
	assert.Equal(t, "11:00", endTimeFor("10:00"))
	assert.Equal(t, "10:00", endTimeFor("09:30"))
	assert.Equal(t, "24:00", endTimeFor("23:00"))
	assert.Equal(t, "", endTimeFor("xx"))
}
