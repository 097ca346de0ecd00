package chat

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"padelchat/internal/utils"
)

// DateLayout is the ISO calendar date format used on the wire
const DateLayout = "2006-01-02"

// Entities are the slots extracted from one utterance. An empty field means
// the utterance did not mention it.
type Entities struct {
	CourtID   string `json:"court_id,omitempty"`
	Date      string `json:"date,omitempty"`
	StartTime string `json:"start_time,omitempty"`
}

var (
	courtBeforeAliasRe = regexp.MustCompile(`\b(?:court|pista|cancha)\s+(?:number\s+|#)?(\d+|` + utils.CourtAliasPattern() + `)\b`)
	courtAfterAliasRe  = regexp.MustCompile(`\b(` + utils.CourtAliasPattern() + `)\s+(?:court|pista|cancha)\b`)

	dateRe = regexp.MustCompile(`(\d{4}-\d{2}-\d{2}|\d{2}[-/]\d{2}[-/]\d{4}|\bday after tomorrow\b|\bpasado mañana\b|\btomorrow\b|\bmañana\b|\btoday\b|\bhoy\b)`)

	markedTimeRe = regexp.MustCompile(`(?:\bat\b|\ba\s+las?\b|@)\s*(?P<hour>\d{1,2})(?::(?P<minute>\d{2}))?` + timeSuffix + `\b`)
	clockTimeRe  = regexp.MustCompile(`\b(?P<hour>\d{1,2}):(?P<minute>\d{2})` + timeSuffix + `\b`)
	bareHourRe   = regexp.MustCompile(`\b(?P<hour>\d{1,2})` + timeSuffix + `\b`)
)

// timeSuffix accepts "10am", "18:30h" and "10 pm" style units after a time
const timeSuffix = `(?:\s*(?P<suffix>hrs|hs|h|am|pm))?`

// Extractor pulls court, date and time references out of free text. It keeps
// no state between calls; the clock only anchors "today" and "tomorrow".
type Extractor struct {
	now func() time.Time
}

// ExtractorOption configures an Extractor
type ExtractorOption func(*Extractor)

// WithClock sets the clock used for relative dates. The returned time's
// location is the calendar "today" is computed in.
func WithClock(now func() time.Time) ExtractorOption {
	return func(e *Extractor) {
		e.now = now
	}
}

// WithLocation anchors relative dates to loc using the wall clock
func WithLocation(loc *time.Location) ExtractorOption {
	return func(e *Extractor) {
		e.now = func() time.Time { return time.Now().In(loc) }
	}
}

// NewExtractor creates an extractor using the local wall clock by default
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Today returns the current date in ISO form
func (e *Extractor) Today() string {
	return e.now().Format(DateLayout)
}

// Extract parses the utterance. Hours are zero-padded but not range checked;
// "25:00" comes back as is and is left to the backend to refuse.
func (e *Extractor) Extract(utterance string) Entities {
	text := normalize(utterance)

	var ent Entities
	masked := []byte(text)

	if id, span, ok := e.extractCourt(text); ok {
		ent.CourtID = id
		blank(masked, span)
	} else if span != nil {
		// an unknown court number still must not be read as a time
		blank(masked, span)
	}

	if date, span, ok := e.extractDate(text); ok {
		ent.Date = date
		blank(masked, span)
	}

	ent.StartTime = extractTime(string(masked))
	return ent
}

func (e *Extractor) extractCourt(text string) (string, []int, bool) {
	for _, re := range []*regexp.Regexp{courtBeforeAliasRe, courtAfterAliasRe} {
		m := re.FindStringSubmatchIndex(text)
		if m == nil {
			continue
		}
		token := text[m[2]:m[3]]
		if id, ok := utils.ResolveCourtAlias(token); ok {
			return id, m[:2], true
		}
		return "", m[:2], false
	}
	return "", nil, false
}

func (e *Extractor) extractDate(text string) (string, []int, bool) {
	m := dateRe.FindStringSubmatchIndex(text)
	if m == nil {
		return "", nil, false
	}
	literal := text[m[2]:m[3]]
	now := e.now()

	switch literal {
	case "today", "hoy":
		return now.Format(DateLayout), m[:2], true
	case "tomorrow", "mañana":
		return now.AddDate(0, 0, 1).Format(DateLayout), m[:2], true
	case "day after tomorrow", "pasado mañana":
		return now.AddDate(0, 0, 2).Format(DateLayout), m[:2], true
	}
	// explicit dates go through untouched; validating them is the backend's job
	return literal, m[:2], true
}

func extractTime(text string) string {
	for _, re := range []*regexp.Regexp{markedTimeRe, clockTimeRe, bareHourRe} {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		minute := "00"
		if i := re.SubexpIndex("minute"); i > 0 && m[i] != "" {
			minute = m[i]
		}
		return formatClock(m[re.SubexpIndex("hour")], minute, m[re.SubexpIndex("suffix")])
	}
	return ""
}

func formatClock(hourDigits, minute, suffix string) string {
	hour, err := strconv.Atoi(hourDigits)
	if err != nil {
		return ""
	}
	switch {
	case suffix == "pm" && hour < 12:
		hour += 12
	case suffix == "am" && hour == 12:
		hour = 0
	}
	return fmt.Sprintf("%02d:%s", hour, minute)
}

func blank(buf []byte, span []int) {
	for i := span[0]; i < span[1]; i++ {
		buf[i] = ' '
	}
}
