package share

import (
	"fmt"
	"net/http"
)

// Error is the structured failure contract of the sharing service: a stable
// kind plus an optional field, so UI layers never have to parse messages.
type Error struct {
	Kind    string `json:"kind"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Code and name mismatches deliberately share one generic message so a caller
// probing a token cannot learn which factor failed.
const genericVerifyMessage = "invalid access details"

var (
	ErrNotFound        = &Error{Kind: "not_found", Message: "share not found", Status: http.StatusNotFound}
	ErrSessionExpired  = &Error{Kind: "session_expired", Message: "this sharing session has ended", Status: http.StatusGone}
	ErrInvalidCode     = &Error{Kind: "invalid_code", Message: genericVerifyMessage, Status: http.StatusUnauthorized}
	ErrNameMismatch    = &Error{Kind: "name_mismatch", Message: genericVerifyMessage, Status: http.StatusUnauthorized}
	ErrEditingDisabled = &Error{Kind: "editing_disabled", Message: "this share does not accept edits", Status: http.StatusForbidden}
	ErrEmptyScope      = &Error{Kind: "empty_scope", Message: "none of the submitted edits are covered by this share", Status: http.StatusUnprocessableEntity}
	ErrNoPendingEdits  = &Error{Kind: "no_pending_edits", Message: "there is no pending proposal on this share", Status: http.StatusConflict}
	ErrForbidden       = &Error{Kind: "forbidden", Message: "only the share owner may perform this action", Status: http.StatusForbidden}
	ErrTooManyAttempts = &Error{Kind: "too_many_attempts", Message: "too many failed attempts, try again later", Status: http.StatusTooManyRequests}
	ErrInternal        = &Error{Kind: "internal", Message: "something went wrong", Status: http.StatusInternalServerError}
)

func validationError(field, message string) *Error {
	return &Error{Kind: "validation", Field: field, Message: message, Status: http.StatusBadRequest}
}
