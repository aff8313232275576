package validation

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/gmfsales/liffbackend/dto"
	"github.com/gmfsales/liffbackend/models"
	"github.com/gmfsales/liffbackend/utils"
)

// CleanText trims surrounding whitespace and composes the string to NFC.
// No HTML escaping.
func CleanText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// Sanitize turns a validated input into a SanitizedInquiry. It returns an
// error only when called on input ValidateInquiry would reject.
func Sanitize(in dto.InquiryInput, loc *time.Location) (models.SanitizedInquiry, error) {
	phone, ok := NormalizePhone(in.Phone)
	if !ok {
		return models.SanitizedInquiry{}, fmt.Errorf("sanitize phone %q", in.Phone)
	}
	qty, err := ParseQuantity(in.Quantity.String())
	if err != nil {
		return models.SanitizedInquiry{}, fmt.Errorf("sanitize: %w", err)
	}
	deadline, err := utils.ParseCalendarDate(in.Deadline, loc)
	if err != nil {
		return models.SanitizedInquiry{}, fmt.Errorf("sanitize deadline: %w", err)
	}

	return models.SanitizedInquiry{
		Company:  CleanText(in.Company),
		Contact:  CleanText(in.Contact),
		Phone:    phone,
		Product:  CleanText(in.Product),
		Quantity: qty,
		Budget:   CleanText(in.Budget),
		Deadline: deadline,
		Notes:    CleanText(in.Notes),
		UserID:   strings.TrimSpace(in.UserID),
	}, nil
}
