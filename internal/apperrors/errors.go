// Package apperrors defines the error taxonomy shared by services and handlers.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrAlreadySending         = errors.New("broadcast is already sending")
	ErrAlreadySent            = errors.New("broadcast has already been sent")
	ErrNoRecipientsConfigured = errors.New("no recipients configured")
	ErrNoRecipientsFound      = errors.New("no recipients found")
	ErrConflict               = errors.New("resource was modified concurrently")
	ErrForbidden              = errors.New("forbidden")
)

// ValidationError reports a rejected input field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidation is a helper constructor
func NewValidation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError reports a missing resource
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// NewNotFound is a helper constructor
func NewNotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// InvalidStateError reports an operation refused by the broadcast state machine
type InvalidStateError struct {
	ID     string
	Status string
	Op     string
	Err    error
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s broadcast %s in status %s", e.Op, e.ID, e.Status)
}

func (e *InvalidStateError) Unwrap() error { return e.Err }

// NewInvalidState is a helper constructor; cause may be nil
func NewInvalidState(id, status, op string, cause error) error {
	return &InvalidStateError{ID: id, Status: status, Op: op, Err: cause}
}

// NoRecipientsError reports targeting that resolves to nobody
type NoRecipientsError struct {
	BroadcastID string
	Err         error
}

func (e *NoRecipientsError) Error() string {
	return fmt.Sprintf("broadcast %s: %v", e.BroadcastID, e.Err)
}

func (e *NoRecipientsError) Unwrap() error { return e.Err }

// NewNoRecipients wraps ErrNoRecipientsConfigured or ErrNoRecipientsFound
func NewNoRecipients(broadcastID string, cause error) error {
	return &NoRecipientsError{BroadcastID: broadcastID, Err: cause}
}

// StoreError wraps a failed table operation
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// NewStore wraps err unless it is nil or already classified
func NewStore(op string, err error) error {
	if err == nil {
		return nil
	}
	var nf *NotFoundError
	var se *StoreError
	if errors.As(err, &nf) || errors.As(err, &se) || errors.Is(err, ErrConflict) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// ChannelSendError is a failed channel attempt; it is recorded, never returned to callers
type ChannelSendError struct {
	Channel string
	Err     error
}

func (e *ChannelSendError) Error() string {
	return fmt.Sprintf("%s send failed: %v", e.Channel, e.Err)
}

func (e *ChannelSendError) Unwrap() error { return e.Err }

// HTTPStatus maps an error to the response code handlers return
func HTTPStatus(err error) int {
	var (
		ve *ValidationError
		nf *NotFoundError
		is *InvalidStateError
		nr *NoRecipientsError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.As(err, &is), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.As(err, &nr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
