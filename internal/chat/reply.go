package chat

import (
	"fmt"
	"strings"

	"padelchat/internal/apperr"
	"padelchat/internal/model"
	"padelchat/internal/utils"
)

// ReplyKind tells the caller how to present a reply
type ReplyKind string

const (
	ReplySuccess       ReplyKind = "success"
	ReplyClarification ReplyKind = "clarification"
	ReplyError         ReplyKind = "error"
)

// Reply is the renderable outcome of one turn
type Reply struct {
	Intent   Intent      `json:"intent"`
	Kind     ReplyKind   `json:"kind"`
	Message  string      `json:"message"`
	Code     apperr.Code `json:"code,omitempty"`
	Missing  []string    `json:"missing,omitempty"`
	Entities Entities    `json:"entities"`
	Data     any         `json:"data,omitempty"`
}

func success(message string, data any) *Reply {
	return &Reply{Kind: ReplySuccess, Message: message, Data: data}
}

func clarify(message string, missing ...string) *Reply {
	return &Reply{
		Kind:    ReplyClarification,
		Message: message,
		Code:    apperr.CodeMissingRequiredEntity,
		Missing: missing,
	}
}

func failure(code apperr.Code, message string) *Reply {
	return &Reply{Kind: ReplyError, Message: message, Code: code}
}

const (
	helpText = `Here is what I can do:
- See courts: "Show me the courts", "List courts", "Which courts are there?"
- Check availability: "Is court 1 available?", "Availability for the central court tomorrow"
- Make a reservation: "Reserve court 1 for tomorrow at 10", "I want to book court north today at 15"
- See your reservations: "My reservations", "Show my reservations"
- Help: "Help", "What can you do?"
Just write the way you would talk.`

	unknownText = `I didn't understand that. Try something like:
- "Show me the courts"
- "Is court 1 available?"
- "Reserve the central court for tomorrow at 10"
- "Show my reservations"
- "Help" to see every command`

	askCourtForAvailability = `Which court should I check? For example "court 1" or "court central".`

	genericSlotTaken = "The reservation could not be created. The slot may already be taken."

	noReplyText = "Sorry, something went wrong with that request. Please try again."
)

func renderCourts(courts []model.Court) string {
	var b strings.Builder
	b.WriteString("Here are the courts:\n")
	for _, c := range courts {
		fmt.Fprintf(&b, "\n%s\n  Type: %s\n  Price: €%s/hour\n  Status: %s\n  %s\n",
			c.Name, c.Type, formatPrice(c.PricePerHour), c.Status, c.Description)
		if aliases := utils.AliasesFor(c.ID); len(aliases) > 0 {
			fmt.Fprintf(&b, "  Ask for it as: court %s\n", strings.Join(aliases, ", court "))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderAvailability(a *model.Availability) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Availability of %s on %s:", a.Court.Name, a.Date)
	if len(a.Slots) == 0 {
		b.WriteString("\nNo time slots available.")
		return b.String()
	}
	for _, s := range a.Slots {
		mark := "✓"
		if !s.Available {
			mark = "✗"
		}
		fmt.Fprintf(&b, "\n  %s %s", s.StartTime, mark)
	}
	return b.String()
}

func renderMissingForReservation(missing []string) string {
	var b strings.Builder
	b.WriteString("To make a reservation I need:")
	for _, m := range missing {
		switch m {
		case "court":
			b.WriteString("\n- Court (e.g. \"court 1\" or \"court central\")")
		case "time":
			b.WriteString("\n- Time (e.g. \"at 10:00\" or \"10\")")
		}
	}
	b.WriteString("\n- Optionally: date (e.g. \"tomorrow\" or \"2024-02-15\")")
	b.WriteString("\nExample: \"Reserve court 1 for tomorrow at 10\"")
	return b.String()
}

func renderConfirmation(r *model.Reservation) string {
	return fmt.Sprintf(`✅ Reservation confirmed!
Your reservation:
  ID: %s
  Court: %s
  Date: %s
  Time: %s - %s
  Price: €%s`, r.ID, r.CourtName, r.Date, r.StartTime, r.EndTime, formatPrice(r.TotalPrice))
}

func renderReservations(userName string, rs []model.Reservation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your reservations, %s:", userName)
	for _, r := range rs {
		fmt.Fprintf(&b, "\n\n%s\n  Date: %s\n  Time: %s - %s\n  Price: €%s\n  ID: %s",
			r.CourtName, r.Date, r.StartTime, r.EndTime, formatPrice(r.TotalPrice), r.ID)
	}
	return b.String()
}

func formatPrice(p float64) string {
	if p == float64(int64(p)) {
		return fmt.Sprintf("%d", int64(p))
	}
	return fmt.Sprintf("%.2f", p)
}
