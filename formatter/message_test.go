package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmfsales/liffbackend/models"
)

func newTestFormatter(t *testing.T) *Formatter {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Bangkok")
	require.NoError(t, err)
	return New(loc, "January 2, 2006", "January 2, 2006, 15:04")
}

// 14:05 in Bangkok on 2026-10-17.
var submittedAt = time.Date(2026, 10, 17, 7, 5, 0, 0, time.UTC)

func sampleInquiry() models.SanitizedInquiry {
	return models.SanitizedInquiry{
		Company:  "Acme Co",
		Contact:  "Jane",
		Phone:    "0812345678",
		Product:  "Widgets",
		Quantity: 500,
		Budget:   "$10k",
		Deadline: time.Date(2026, 10, 27, 0, 0, 0, 0, time.UTC),
		UserID:   "U123",
	}
}

func TestFormat_Layout(t *testing.T) {
	f := newTestFormatter(t)

	want := strings.Join([]string{
		"📌 Client Inquiry",
		"━━━━━━━━━━━━━",
		"⏰ Submitted: October 17, 2026, 14:05",
		"",
		"━━━━━━━━━━━━━",
		"🏢 Acme Co",
		"👤 Jane",
		"📞 0812345678",
		"",
		"━━━━━━━━━━━━━",
		"📦 Product: Widgets",
		"🔢 Quantity: 500",
		"💰 Budget: $10k",
		"📅 Target Date: October 27, 2026 (10 days)",
		"",
		"━━━━━━━━━━━━━",
		"📝 NOTES",
		"-",
	}, "\n")

	assert.Equal(t, want, f.Format(sampleInquiry(), submittedAt))
}

func TestFormat_Notes(t *testing.T) {
	f := newTestFormatter(t)
	inq := sampleInquiry()
	inq.Notes = "Need samples first"

	out := f.Format(inq, submittedAt)
	assert.True(t, strings.HasSuffix(out, "📝 NOTES\nNeed samples first"))
}

func TestFormat_Idempotent(t *testing.T) {
	f := newTestFormatter(t)
	inq := sampleInquiry()
	assert.Equal(t, f.Format(inq, submittedAt), f.Format(inq, submittedAt))
}

func TestDeadlineLabel(t *testing.T) {
	f := newTestFormatter(t)
	today := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		deadline time.Time
		want     string
	}{
		{"today", today, "October 17, 2026 (Today)"},
		{"in five days", today.AddDate(0, 0, 5), "October 22, 2026 (5 days)"},
		{"three days ago", today.AddDate(0, 0, -3), "October 14, 2026 (3 days ago)"},
		{"across year end", time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), "January 1, 2027 (76 days)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.DeadlineLabel(tt.deadline, submittedAt))
		})
	}
}

func TestDeadlineLabel_NoPartialDayDrift(t *testing.T) {
	f := newTestFormatter(t)
	deadline := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)

	// 23:59 Bangkok on the 17th and 00:01 on the 17th both count one day.
	late := time.Date(2026, 10, 17, 16, 59, 0, 0, time.UTC)
	early := time.Date(2026, 10, 16, 17, 1, 0, 0, time.UTC)
	assert.Equal(t, "October 18, 2026 (1 days)", f.DeadlineLabel(deadline, late))
	assert.Equal(t, "October 18, 2026 (1 days)", f.DeadlineLabel(deadline, early))
}

func TestFormat_IgnoresHostTimezone(t *testing.T) {
	f := newTestFormatter(t)
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	out := f.Format(sampleInquiry(), submittedAt.In(ny))
	assert.Contains(t, out, "⏰ Submitted: October 17, 2026, 14:05")
}

func TestFormat_FarFutureDeadline(t *testing.T) {
	f := newTestFormatter(t)
	inq := sampleInquiry()
	inq.Deadline = time.Date(2400, 10, 17, 0, 0, 0, 0, time.UTC)

	assert.Contains(t, f.Format(inq, submittedAt), "📅 Target Date: October 17, 2400 (136601 days)")
}

func TestFormat_LongNotesTruncated(t *testing.T) {
	f := newTestFormatter(t)
	inq := sampleInquiry()
	inq.Notes = strings.Repeat("a", 6000)

	got := f.Format(inq, submittedAt)

	assert.Equal(t, MaxTextLength, textLength(got))
	assert.True(t, strings.HasSuffix(got, "a"+ellipsis))
	assert.Contains(t, got, "🏢 Acme Co\n")
	assert.Contains(t, got, "📝 NOTES\naaa")
	assert.Equal(t, got, f.Format(inq, submittedAt))
}

func TestFormat_LongNotesSurrogatePairs(t *testing.T) {
	f := newTestFormatter(t)
	inq := sampleInquiry()
	inq.Notes = strings.Repeat("😀", 3000)

	got := f.Format(inq, submittedAt)

	assert.LessOrEqual(t, textLength(got), MaxTextLength)
	assert.True(t, strings.HasSuffix(got, "😀"+ellipsis))
}

func TestFormat_OversizedFieldsHardTruncated(t *testing.T) {
	f := newTestFormatter(t)
	inq := sampleInquiry()
	inq.Company = strings.Repeat("b", 6000)
	inq.Notes = "short"

	got := f.Format(inq, submittedAt)

	assert.LessOrEqual(t, textLength(got), MaxTextLength)
	assert.True(t, strings.HasPrefix(got, "📌 Client Inquiry\n"))
	assert.True(t, strings.HasSuffix(got, ellipsis))
}

func TestFormat_ShortNotesUntouched(t *testing.T) {
	f := newTestFormatter(t)
	inq := sampleInquiry()
	inq.Notes = strings.Repeat("c", 100)

	assert.True(t, strings.HasSuffix(f.Format(inq, submittedAt), "📝 NOTES\n"+strings.Repeat("c", 100)))
}
