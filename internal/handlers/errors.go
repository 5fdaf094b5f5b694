package handlers

import (
	"errors"
	"net/http"

	"github.com/belphemur/haushaltsheld/internal/calendar"
	"github.com/belphemur/haushaltsheld/internal/household"
)

// Error Codes
const (
	ErrCodeInvalidJSON           = "invalid_json"
	ErrCodeInvalidInput          = "invalid_input"
	ErrCodeInvalidArgument       = "invalid_argument"
	ErrCodeInvalidDate           = "invalid_date"
	ErrCodeNotFound              = "not_found"
	ErrCodeInvalidInvitationCode = "invalid_invitation_code"
	ErrCodeAlreadyMember         = "already_member"
	ErrCodeNotMember             = "not_member"
	ErrCodeConflict              = "conflict"
	ErrCodeUnavailable           = "unavailable"
	ErrCodeUnknown               = "unknown_error"
)

// ErrorMessages maps error codes to user-friendly messages
var ErrorMessages = map[string]string{
	ErrCodeInvalidJSON:           "The request body is not valid JSON.",
	ErrCodeInvalidInput:          "Some fields are missing or invalid.",
	ErrCodeInvalidArgument:       "The requested month or week is out of range.",
	ErrCodeInvalidDate:           "Dates must use the YYYY-MM-DD format.",
	ErrCodeNotFound:              "The requested item does not exist.",
	ErrCodeInvalidInvitationCode: "No group uses this invitation code.",
	ErrCodeAlreadyMember:         "You are already a member of this group.",
	ErrCodeNotMember:             "The assigned user is not a member of this group.",
	ErrCodeConflict:              "The item already exists.",
	ErrCodeUnavailable:           "The service is not ready.",
	ErrCodeUnknown:               "An unknown error occurred.",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code string) string {
	if msg, ok := ErrorMessages[code]; ok {
		return msg
	}
	return ErrorMessages[ErrCodeUnknown]
}

// errorStatus maps a service error to its HTTP status and error code
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, household.ErrInvalidInvitationCode):
		return http.StatusNotFound, ErrCodeInvalidInvitationCode
	case errors.Is(err, household.ErrAlreadyMember):
		return http.StatusConflict, ErrCodeAlreadyMember
	case errors.Is(err, household.ErrNotMember):
		return http.StatusUnprocessableEntity, ErrCodeNotMember
	case errors.Is(err, household.ErrInvalidInput):
		return http.StatusBadRequest, ErrCodeInvalidInput
	case errors.Is(err, calendar.ErrInvalidArgument):
		return http.StatusBadRequest, ErrCodeInvalidArgument
	case errors.Is(err, household.ErrNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, household.ErrDuplicate):
		return http.StatusConflict, ErrCodeConflict
	default:
		return http.StatusInternalServerError, ErrCodeUnknown
	}
}
