package chat

import (
	"context"
	"sync"

	"padelchat/internal/logger"
	"padelchat/internal/metrics"
	"padelchat/internal/model"
	"padelchat/internal/session"
)

// Conversation runs chat turns: classify, extract, resolve against the
// session context, call the backend and persist the context change. Turns of
// the same session are serialised; different sessions run in parallel.
type Conversation struct {
	classifier *Classifier
	extractor  *Extractor
	store      session.Store
	log        logger.Logger
	handlers   map[Intent]HandlerFunc

	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// Option configures a Conversation
type Option func(*Conversation)

// WithClassifier replaces the default rule order
func WithClassifier(c *Classifier) Option {
	return func(conv *Conversation) {
		conv.classifier = c
	}
}

// WithExtractor replaces the default extractor (and its clock)
func WithExtractor(e *Extractor) Option {
	return func(conv *Conversation) {
		conv.extractor = e
	}
}

// WithHandler overrides the handler of one intent
func WithHandler(intent Intent, h HandlerFunc) Option {
	return func(conv *Conversation) {
		conv.handlers[intent] = h
	}
}

// NewConversation creates a turn controller over a backend and a context store
func NewConversation(backend Backend, store session.Store, log logger.Logger, opts ...Option) *Conversation {
	h := &handlers{backend: backend, log: log}
	conv := &Conversation{
		classifier: NewClassifier(),
		extractor:  NewExtractor(),
		store:      store,
		log:        log,
		handlers:   h.table(),
		locks:      make(map[string]*sessionLock),
	}
	for _, opt := range opts {
		opt(conv)
	}
	return conv
}

// Submit processes one utterance for a session. It always returns a reply;
// backend and store failures are turned into messages or logged.
func (c *Conversation) Submit(ctx context.Context, sessionID, text, userName string) *Reply {
	unlock := c.lock(sessionID)
	defer unlock()

	intent := c.classifier.Classify(text)
	entities := c.extractor.Extract(text)

	current, err := c.store.Load(ctx, sessionID)
	if err != nil {
		c.log.WithError(err).Warn("loading conversation context failed, continuing without it", map[string]interface{}{
			"session_id": sessionID,
		})
		current = nil
	}
	if current == nil {
		current = &model.ConversationContext{}
	}

	turn := &Turn{
		Utterance: text,
		UserName:  userName,
		Entities:  entities,
		Context:   current,
		today:     c.extractor.Today(),
	}

	// resolved before the handler runs: a successful booking clears the context
	resolved := Entities{CourtID: turn.Court(), Date: turn.Date(), StartTime: turn.StartTime()}

	handler, ok := c.handlers[intent]
	if !ok {
		handler = c.handlers[IntentUnknown]
	}
	reply := handler(ctx, turn)
	if reply == nil {
		c.log.Warn("handler returned no reply", map[string]interface{}{
			"session_id": sessionID,
			"intent":     string(intent),
		})
		reply = &Reply{Kind: ReplyError, Message: noReplyText}
	}
	reply.Intent = intent
	switch intent {
	case IntentCheckAvailability, IntentCreateReservation:
		reply.Entities = resolved
	default:
		reply.Entities = entities
	}

	c.persist(ctx, sessionID, turn)

	c.log.Debug("chat turn", map[string]interface{}{
		"session_id": sessionID,
		"intent":     string(intent),
		"kind":       string(reply.Kind),
		"court_id":   entities.CourtID,
		"date":       entities.Date,
		"start_time": entities.StartTime,
	})
	metrics.ChatTurns.WithLabelValues(string(intent), string(reply.Kind)).Inc()

	return reply
}

// Reset forgets a session's context
func (c *Conversation) Reset(ctx context.Context, sessionID string) error {
	unlock := c.lock(sessionID)
	defer unlock()
	return c.store.Clear(ctx, sessionID)
}

// Session binds the conversation to one session id
func (c *Conversation) Session(id string) *Session {
	return &Session{id: id, conv: c}
}

func (c *Conversation) persist(ctx context.Context, sessionID string, turn *Turn) {
	var err error
	switch turn.op {
	case contextUpdate:
		err = c.store.Save(ctx, sessionID, turn.Context)
	case contextClear:
		err = c.store.Clear(ctx, sessionID)
	default:
		return
	}
	if err != nil {
		c.log.WithError(err).Error("persisting conversation context failed", map[string]interface{}{
			"session_id": sessionID,
		})
	}
}

func (c *Conversation) lock(sessionID string) func() {
	c.mu.Lock()
	l, ok := c.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		c.locks[sessionID] = l
	}
	l.refs++
	c.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		c.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(c.locks, sessionID)
		}
		c.mu.Unlock()
	}
}

// Session is a Conversation scoped to one session id
type Session struct {
	id   string
	conv *Conversation
}

// ID returns the session id
func (s *Session) ID() string {
	return s.id
}

// Submit processes one utterance in this session
func (s *Session) Submit(ctx context.Context, text, userName string) *Reply {
	return s.conv.Submit(ctx, s.id, text, userName)
}

// Reset forgets this session's context
func (s *Session) Reset(ctx context.Context) error {
	return s.conv.Reset(ctx, s.id)
}
