// Package validation checks and normalizes inquiries received from the
// LIFF form.
package validation

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gmfsales/liffbackend/apperrors"
	"github.com/gmfsales/liffbackend/dto"
	"github.com/gmfsales/liffbackend/utils"
)

const (
	MinQuantity    = 100
	MaxQuantity    = 1_000_000
	MinPhoneDigits = 9
	MaxPhoneDigits = 15
)

var (
	phoneSeparators = regexp.MustCompile(`[\s\-().]`)
	phoneShape      = regexp.MustCompile(`^\+?[0-9]+$`)
)

// ValidateInquiry runs the checks in order and stops at the first failure.
// now is the request time; "today" is its date in loc.
func ValidateInquiry(in dto.InquiryInput, now time.Time, loc *time.Location) error {
	if field := firstMissing(in); field != "" {
		return apperrors.NewValidationError(apperrors.ReasonMissingFields, field)
	}

	if _, ok := NormalizePhone(in.Phone); !ok {
		return apperrors.NewValidationError(apperrors.ReasonInvalidPhone, "phone")
	}

	if _, err := ParseQuantity(in.Quantity.String()); err != nil {
		return apperrors.NewValidationError(apperrors.ReasonInvalidQuantity, "quantity")
	}

	deadline, err := utils.ParseCalendarDate(in.Deadline, loc)
	if err != nil {
		return apperrors.NewValidationError(apperrors.ReasonInvalidDeadline, "deadline")
	}
	if deadline.Before(utils.CalendarDate(now, loc)) {
		return apperrors.NewValidationError(apperrors.ReasonDeadlinePast, "deadline")
	}

	return nil
}

func firstMissing(in dto.InquiryInput) string {
	required := []struct {
		name  string
		value string
	}{
		{"company", in.Company},
		{"contact", in.Contact},
		{"phone", in.Phone},
		{"product", in.Product},
		{"quantity", in.Quantity.String()},
		{"budget", in.Budget},
		{"deadline", in.Deadline},
		{"userId", in.UserID},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return f.name
		}
	}
	return ""
}

// NormalizePhone strips spaces, hyphens, parentheses and dots. ok is false
// unless what remains is an optional leading "+" followed by 9 to 15 digits.
func NormalizePhone(raw string) (string, bool) {
	stripped := phoneSeparators.ReplaceAllString(strings.TrimSpace(raw), "")
	if !phoneShape.MatchString(stripped) {
		return "", false
	}
	digits := len(strings.TrimPrefix(stripped, "+"))
	if digits < MinPhoneDigits || digits > MaxPhoneDigits {
		return "", false
	}
	return stripped, true
}

type quantityError struct{ raw string }

func (e *quantityError) Error() string { return "invalid quantity " + strconv.Quote(e.raw) }

// ParseQuantity accepts a decimal integer, or a number with no fractional
// part, within [MinQuantity, MaxQuantity].
func ParseQuantity(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
			return 0, &quantityError{raw: raw}
		}
		n = int(f)
	}
	if n < MinQuantity || n > MaxQuantity {
		return 0, &quantityError{raw: raw}
	}
	return n, nil
}
