package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmfsales/liffbackend/apperrors"
	"github.com/gmfsales/liffbackend/dto"
)

var (
	bkk, _ = time.LoadLocation("Asia/Bangkok")
	// 10:00 in Bangkok on 2026-10-17.
	testNow = time.Date(2026, 10, 17, 3, 0, 0, 0, time.UTC)
)

func validInput() dto.InquiryInput {
	return dto.InquiryInput{
		Company:  "Acme Co",
		Contact:  "Jane",
		Phone:    "081-234-5678",
		Product:  "Widgets",
		Quantity: "500",
		Budget:   "$10k",
		Deadline: "2026-10-27",
		Notes:    "",
		UserID:   "U123",
	}
}

func reasonOf(t *testing.T, err error) apperrors.Reason {
	t.Helper()
	var ve *apperrors.ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
	return ve.Reason
}

func TestValidateInquiry_Valid(t *testing.T) {
	assert.NoError(t, ValidateInquiry(validInput(), testNow, bkk))
}

func TestValidateInquiry_MissingFields(t *testing.T) {
	mutations := map[string]func(*dto.InquiryInput){
		"company":  func(in *dto.InquiryInput) { in.Company = "" },
		"contact":  func(in *dto.InquiryInput) { in.Contact = "   " },
		"phone":    func(in *dto.InquiryInput) { in.Phone = "" },
		"product":  func(in *dto.InquiryInput) { in.Product = "" },
		"quantity": func(in *dto.InquiryInput) { in.Quantity = "" },
		"budget":   func(in *dto.InquiryInput) { in.Budget = "" },
		"deadline": func(in *dto.InquiryInput) { in.Deadline = "" },
		"userId":   func(in *dto.InquiryInput) { in.UserID = "\t" },
	}
	for field, mutate := range mutations {
		t.Run(field, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			err := ValidateInquiry(in, testNow, bkk)
			assert.Equal(t, apperrors.ReasonMissingFields, reasonOf(t, err))

			var ve *apperrors.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, field, ve.Field)
			assert.Equal(t, "Missing required fields", ve.Message)
		})
	}
}

func TestValidateInquiry_NotesOptional(t *testing.T) {
	in := validInput()
	in.Notes = ""
	assert.NoError(t, ValidateInquiry(in, testNow, bkk))
}

func TestValidateInquiry_ShortCircuitsInOrder(t *testing.T) {
	in := validInput()
	in.Phone = "12"
	in.Quantity = "5"
	in.Deadline = "2020-01-01"
	assert.Equal(t, apperrors.ReasonInvalidPhone, reasonOf(t, ValidateInquiry(in, testNow, bkk)))

	in.Phone = "0812345678"
	assert.Equal(t, apperrors.ReasonInvalidQuantity, reasonOf(t, ValidateInquiry(in, testNow, bkk)))

	in.Quantity = "100"
	assert.Equal(t, apperrors.ReasonDeadlinePast, reasonOf(t, ValidateInquiry(in, testNow, bkk)))
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"081-234-5678", "0812345678", true},
		{"(081) 234.5678", "0812345678", true},
		{"+66 81 234 5678", "+66812345678", true},
		{"123456789", "123456789", true},               // 9 digits
		{"+123456789012345", "+123456789012345", true}, // 15 digits
		{"12345678", "", false},                        // 8 digits
		{"+12345678", "", false},                       // plus does not count
		{"1234567890123456", "", false},                // 16 digits
		{"081-234-567a", "", false},
		{"66+812345678", "", false},
		{"++66812345678", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := NormalizePhone(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizePhone_SeparatorIndependent(t *testing.T) {
	digits := "0812345678"
	for _, sep := range []string{" ", "-", ".", "(", ")"} {
		raw := digits[:3] + sep + digits[3:6] + sep + digits[6:]
		got, ok := NormalizePhone(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, digits, got)
	}
}

func TestValidateInquiry_PhoneDigitCountRange(t *testing.T) {
	for n := 1; n <= 20; n++ {
		in := validInput()
		phone := ""
		for i := 0; i < n; i++ {
			phone += string(rune('0' + i%10))
			if i%3 == 2 {
				phone += "-"
			}
		}
		in.Phone = phone
		err := ValidateInquiry(in, testNow, bkk)
		if n >= MinPhoneDigits && n <= MaxPhoneDigits {
			assert.NoError(t, err, "digits=%d", n)
		} else {
			assert.Equal(t, apperrors.ReasonInvalidPhone, reasonOf(t, err), "digits=%d", n)
		}
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"100", 100, false},
		{"1000000", 1_000_000, false},
		{" 500 ", 500, false},
		{"5e2", 500, false},
		{"250.0", 250, false},
		{"99", 0, true},
		{"1000001", 0, true},
		{"-500", 0, true},
		{"0", 0, true},
		{"100.5", 0, true},
		{"abc", 0, true},
		{"500 units", 0, true},
		{"1e400", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseQuantity(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateInquiry_QuantityBoundaries(t *testing.T) {
	for _, q := range []dto.Quantity{"100", "1000000"} {
		in := validInput()
		in.Quantity = q
		assert.NoError(t, ValidateInquiry(in, testNow, bkk), q)
	}
	for _, q := range []dto.Quantity{"99", "1000001"} {
		in := validInput()
		in.Quantity = q
		assert.Equal(t, apperrors.ReasonInvalidQuantity, reasonOf(t, ValidateInquiry(in, testNow, bkk)), q)
	}
}

func TestValidateInquiry_Deadline(t *testing.T) {
	tests := []struct {
		name     string
		deadline string
		want     apperrors.Reason
	}{
		{"today", "2026-10-17", ""},
		{"tomorrow", "2026-10-18", ""},
		{"yesterday", "2026-10-16", apperrors.ReasonDeadlinePast},
		{"unparsable", "next week", apperrors.ReasonInvalidDeadline},
		{"impossible date", "2026-02-30", apperrors.ReasonInvalidDeadline},
		{"timestamp later today", "2026-10-17T15:00:00+07:00", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			in.Deadline = tt.deadline
			err := ValidateInquiry(in, testNow, bkk)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.want, reasonOf(t, err))
		})
	}
}

func TestValidateInquiry_TodayIsBusinessTimezone(t *testing.T) {
	// 18:00 UTC on the 16th is already the 17th in Bangkok, so the 16th is past.
	now := time.Date(2026, 10, 16, 18, 0, 0, 0, time.UTC)
	in := validInput()
	in.Deadline = "2026-10-16"

	assert.Equal(t, apperrors.ReasonDeadlinePast, reasonOf(t, ValidateInquiry(in, now, bkk)))
	assert.NoError(t, ValidateInquiry(in, now, time.UTC))
}
