package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// InquiryInput is the untrusted body of POST /liff-submit.
type InquiryInput struct {
	Company  string   `json:"company"`
	Contact  string   `json:"contact"`
	Phone    string   `json:"phone"`
	Product  string   `json:"product"`
	Quantity Quantity `json:"quantity"`
	Budget   string   `json:"budget"`
	Deadline string   `json:"deadline"`
	Notes    string   `json:"notes"`
	UserID   string   `json:"userId"`
}

// Quantity accepts a JSON number or a JSON string and keeps the raw text.
// The LIFF form sends parseInt(...) which becomes null when the field is
// empty, so null decodes to "".
type Quantity string

func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*q = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*q = Quantity(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("quantity must be a number or string: %w", err)
		}
		*q = Quantity(n.String())
		return nil
	}
}

func (q Quantity) String() string { return string(q) }

// SubmitResponse is the body of every /liff-submit reply.
type SubmitResponse struct {
	OK        bool   `json:"ok"`
	Message   string `json:"message"`
	InquiryID string `json:"inquiryId,omitempty"`
}

type HealthResponse struct {
	Status             string `json:"status"`
	Message            string `json:"message"`
	PersistenceEnabled bool   `json:"persistenceEnabled"`
	MonitoringEnabled  bool   `json:"monitoringEnabled"`
	Timestamp          string `json:"timestamp"`
}
