package chat

import (
	"regexp"
	"strings"
)

// Intent is the classified purpose of an utterance
type Intent string

const (
	IntentListCourts         Intent = "list_courts"
	IntentCheckAvailability  Intent = "check_availability"
	IntentCreateReservation  Intent = "create_reservation"
	IntentListMyReservations Intent = "list_my_reservations"
	IntentHelp               Intent = "help"
	IntentUnknown            Intent = "unknown"
)

// Rule assigns Intent to any utterance matched by at least one of Patterns.
type Rule struct {
	Intent   Intent
	Patterns []*regexp.Regexp
}

// Matches reports whether the case-folded utterance matches the rule
func (r Rule) Matches(normalized string) bool {
	for _, p := range r.Patterns {
		if p.MatchString(normalized) {
			return true
		}
	}
	return false
}

// DefaultRules returns the built-in rule groups in evaluation order. Several
// intents share vocabulary ("reserva", "show"), so the order decides ties.
func DefaultRules() []Rule {
	return []Rule{
		{
			Intent: IntentListCourts,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`\b(show|view|list|display|which|mostrar|muestra|muestrame|muéstrame|ver|listar|cuales|cuáles)\b.*\b(courts|pistas|canchas)\b`),
				regexp.MustCompile(`\b(courts|pistas|canchas)\b.*\b(available|is there|are there|disponibles|hay)\b`),
			},
		},
		{
			Intent: IntentCheckAvailability,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`\b(available|availability|free|disponible|disponibilidad|libre)\b`),
				regexp.MustCompile(`\b(check|verify|consult|consultar|verificar|comprobar)\b.*\b(availability|schedule|hours|disponibilidad|horario)\b`),
			},
		},
		{
			Intent: IntentCreateReservation,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`\b(reserve|book|want|make|reservar|reserva|quiero|hacer)\b.*\b(reservation|booking|court|reserva|pista)\b`),
				regexp.MustCompile(`\b(set aside|schedule|arrange|book|apartar|agendar|programar)\b`),
			},
		},
		{
			Intent: IntentListMyReservations,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`\b(my|mis)\b.*\b(reservations|bookings|reservas|reservaciones)\b`),
				regexp.MustCompile(`\b(show|view|list|see|ver|mostrar|listar)\b.*\b(reservations|bookings|reservas)\b`),
			},
		},
		{
			Intent: IntentHelp,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`\b(help|commands|ayuda|comandos)\b`),
				regexp.MustCompile(`what can you do|qu[eé] puedes hacer`),
			},
		},
	}
}

// Classifier maps utterances to intents by evaluating ordered rules; the first
// matching rule wins and Unknown is returned when none match.
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a classifier with the default rule order
func NewClassifier() *Classifier {
	return NewClassifierWithRules(DefaultRules())
}

// NewClassifierWithRules creates a classifier over a caller-supplied order
func NewClassifierWithRules(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify returns exactly one intent for the utterance
func (c *Classifier) Classify(utterance string) Intent {
	normalized := normalize(utterance)
	if normalized == "" {
		return IntentUnknown
	}
	for _, r := range c.rules {
		if r.Matches(normalized) {
			return r.Intent
		}
	}
	return IntentUnknown
}

// Rules returns the evaluation order
func (c *Classifier) Rules() []Rule {
	return c.rules
}

func normalize(utterance string) string {
	return strings.ToLower(strings.TrimSpace(utterance))
}
