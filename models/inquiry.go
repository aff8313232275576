package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// SanitizedInquiry has passed validation and is safe to format and persist.
// Deadline is a calendar date stored as midnight UTC.
type SanitizedInquiry struct {
	Company  string
	Contact  string
	Phone    string
	Product  string
	Quantity int
	Budget   string
	Deadline time.Time
	Notes    string
	UserID   string
}

// RequestMeta is captured once per request by the controller.
type RequestMeta struct {
	RequestID   string
	ClientIP    string
	UserAgent   string
	SubmittedAt time.Time
}

// StoredInquiry is the document written to the inquiries collection. It is
// inserted once and never updated by this service.
type StoredInquiry struct {
	ID bson.ObjectID `bson:"_id,omitempty" json:"id"`

	Company string `bson:"company" json:"company"`
	Contact string `bson:"contact" json:"contact"`
	Phone   string `bson:"phone"   json:"phone"`

	Product  string    `bson:"product"  json:"product"`
	Quantity int       `bson:"quantity" json:"quantity"`
	Budget   string    `bson:"budget"   json:"budget"`
	Deadline time.Time `bson:"deadline" json:"deadline"`
	Notes    string    `bson:"notes"    json:"notes"`

	UserID string `bson:"userId" json:"userId"`

	SubmittedAt time.Time `bson:"submittedAt" json:"submittedAt"`
	ClientIP    string    `bson:"clientIp"    json:"clientIp"`
	UserAgent   string    `bson:"userAgent"   json:"userAgent"`
	RequestID   string    `bson:"requestId,omitempty" json:"requestId,omitempty"`
}

func NewStoredInquiry(inq SanitizedInquiry, meta RequestMeta) StoredInquiry {
	return StoredInquiry{
		Company:     inq.Company,
		Contact:     inq.Contact,
		Phone:       inq.Phone,
		Product:     inq.Product,
		Quantity:    inq.Quantity,
		Budget:      inq.Budget,
		Deadline:    inq.Deadline,
		Notes:       inq.Notes,
		UserID:      inq.UserID,
		SubmittedAt: meta.SubmittedAt.UTC(),
		ClientIP:    meta.ClientIP,
		UserAgent:   meta.UserAgent,
		RequestID:   meta.RequestID,
	}
}
