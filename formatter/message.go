// Package formatter renders an inquiry into the LINE text notification.
package formatter

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/gmfsales/liffbackend/models"
	"github.com/gmfsales/liffbackend/utils"
)

const (
	separator = "━━━━━━━━━━━━━"
	ellipsis  = "…"

	// MaxTextLength is the LINE limit for one text message, counted here in
	// UTF-16 code units.
	MaxTextLength = 5000
)

// Formatter holds the timezone and layouts explicitly so output never
// depends on the host's TZ or locale.
type Formatter struct {
	location       *time.Location
	dateLayout     string
	dateTimeLayout string
}

func New(loc *time.Location, dateLayout, dateTimeLayout string) *Formatter {
	return &Formatter{location: loc, dateLayout: dateLayout, dateTimeLayout: dateTimeLayout}
}

// Format is pure: the same inquiry and submittedAt always yield the same text.
// Output never exceeds MaxTextLength; notes are shortened first.
func (f *Formatter) Format(inq models.SanitizedInquiry, submittedAt time.Time) string {
	notes := inq.Notes
	if notes == "" {
		notes = "-"
	}

	msg := f.render(inq, submittedAt, notes)
	over := textLength(msg) - MaxTextLength
	if over <= 0 {
		return msg
	}

	notes = truncate(notes, textLength(notes)-over-textLength(ellipsis)) + ellipsis
	msg = f.render(inq, submittedAt, notes)
	if textLength(msg) > MaxTextLength {
		msg = truncate(msg, MaxTextLength-textLength(ellipsis)) + ellipsis
	}
	return msg
}

func (f *Formatter) render(inq models.SanitizedInquiry, submittedAt time.Time, notes string) string {
	var b strings.Builder
	b.WriteString("📌 Client Inquiry\n")
	b.WriteString(separator + "\n")
	fmt.Fprintf(&b, "⏰ Submitted: %s\n", submittedAt.In(f.location).Format(f.dateTimeLayout))
	b.WriteString("\n" + separator + "\n")
	fmt.Fprintf(&b, "🏢 %s\n", inq.Company)
	fmt.Fprintf(&b, "👤 %s\n", inq.Contact)
	fmt.Fprintf(&b, "📞 %s\n", inq.Phone)
	b.WriteString("\n" + separator + "\n")
	fmt.Fprintf(&b, "📦 Product: %s\n", inq.Product)
	fmt.Fprintf(&b, "🔢 Quantity: %d\n", inq.Quantity)
	fmt.Fprintf(&b, "💰 Budget: %s\n", inq.Budget)
	fmt.Fprintf(&b, "📅 Target Date: %s\n", f.DeadlineLabel(inq.Deadline, submittedAt))
	b.WriteString("\n" + separator + "\n")
	b.WriteString("📝 NOTES\n")
	b.WriteString(notes)
	return b.String()
}

// DeadlineLabel renders "<date> (N days)", "<date> (Today)" or
// "<date> (N days ago)" relative to the submission date.
func (f *Formatter) DeadlineLabel(deadline, submittedAt time.Time) string {
	date := deadline.Format(f.dateLayout)
	days := utils.DaysBetween(utils.CalendarDate(submittedAt, f.location), deadline)
	switch {
	case days > 0:
		return fmt.Sprintf("%s (%d days)", date, days)
	case days == 0:
		return date + " (Today)"
	default:
		return fmt.Sprintf("%s (%d days ago)", date, -days)
	}
}

func textLength(s string) int {
	n := 0
	for _, r := range s {
		n += runeLength(r)
	}
	return n
}

// truncate keeps the longest rune prefix of s that fits in n code units.
func truncate(s string, n int) string {
	used := 0
	for i, r := range s {
		if used+runeLength(r) > n {
			return s[:i]
		}
		used += runeLength(r)
	}
	return s
}

func runeLength(r rune) int {
	if l := utf16.RuneLen(r); l > 0 {
		return l
	}
	return 1
}
