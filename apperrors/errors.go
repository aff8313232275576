// Package apperrors holds the error taxonomy of the submission pipeline.
package apperrors

import (
	"fmt"
	"time"
)

// ErrorCode classifies a failure for logs, metrics and monitoring tags.
type ErrorCode string

const (
	CodeValidation         ErrorCode = "VALIDATION_FAILED"
	CodeRateLimited        ErrorCode = "RATE_LIMITED"
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodePersistenceFailed  ErrorCode = "PERSISTENCE_FAILED"
	CodeNotificationFailed ErrorCode = "NOTIFICATION_FAILED"
	CodeUnexpected         ErrorCode = "UNEXPECTED"
)

// User facing messages.
const (
	MsgRateLimited  = "Too many submissions, please try again later."
	MsgUnexpected   = "An unexpected error occurred"
	MsgInvalidBody  = "Invalid request body"
	MsgUnauthorized = "Unauthorized"
)

// Reason is the specific validation rule an inquiry failed.
type Reason string

const (
	ReasonMissingFields   Reason = "missing_required_fields"
	ReasonInvalidPhone    Reason = "invalid_phone"
	ReasonInvalidQuantity Reason = "invalid_quantity"
	ReasonInvalidDeadline Reason = "invalid_deadline"
	ReasonDeadlinePast    Reason = "deadline_in_past"
)

var reasonMessages = map[Reason]string{
	ReasonMissingFields:   "Missing required fields",
	ReasonInvalidPhone:    "Invalid phone number",
	ReasonInvalidQuantity: "Invalid quantity (must be between 100 and 1,000,000)",
	ReasonInvalidDeadline: "Invalid deadline",
	ReasonDeadlinePast:    "Deadline cannot be in the past",
}

// ValidationError is a defect in user input. Its Message is safe to return
// to the caller.
type ValidationError struct {
	Reason  Reason
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation[%s]: %s", e.Reason, e.Message)
	}
	return fmt.Sprintf("validation[%s] %s: %s", e.Reason, e.Field, e.Message)
}

func NewValidationError(reason Reason, field string) *ValidationError {
	return &ValidationError{Reason: reason, Field: field, Message: reasonMessages[reason]}
}

// RateLimitError rejects a requester that exceeded its window.
type RateLimitError struct {
	Key        string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s, retry after %s", e.Key, e.RetryAfter)
}

// PersistenceError is logged and reported, never returned to the caller.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("persistence %s: %v", e.Op, e.Err) }

func (e *PersistenceError) Unwrap() error { return e.Err }

// NotificationKind categorizes a failed push.
type NotificationKind string

const (
	NotificationNetwork  NotificationKind = "network"
	NotificationTimeout  NotificationKind = "timeout"
	NotificationRejected NotificationKind = "rejected"
)

// NotificationError is a failed push to the messaging API. StatusCode and
// Body are set only for NotificationRejected.
type NotificationError struct {
	Kind          NotificationKind
	StatusCode    int
	Body          string
	VendorMessage string
	Err           error
}

func (e *NotificationError) Error() string {
	switch e.Kind {
	case NotificationRejected:
		if e.VendorMessage != "" {
			return fmt.Sprintf("notification rejected (%d): %s", e.StatusCode, e.VendorMessage)
		}
		return fmt.Sprintf("notification rejected (%d)", e.StatusCode)
	default:
		return fmt.Sprintf("notification %s error: %v", e.Kind, e.Err)
	}
}

func (e *NotificationError) Unwrap() error { return e.Err }
