package common

import (
	"errors"
	"net/http"
)

// Business logic errors
var (
	// Not found
	ErrNotFound     = errors.New("resource not found")
	ErrItemNotFound = errors.New("content item not found")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotOwner     = errors.New("only the owner may perform this action")
	ErrNotModerator = errors.New("moderator role required")

	// State conflicts
	ErrAlreadyPending = errors.New("already pending")
	ErrNotDraft       = errors.New("item is not a draft")
	ErrNotPending     = errors.New("item is not pending review")
	ErrNotRejected    = errors.New("item is not rejected")
	ErrHasVersions    = errors.New("item has published versions")

	// Validation errors
	ErrInvalidInput   = errors.New("invalid input")
	ErrReasonRequired = errors.New("rejection reason is required")

	// Transient faults (network / upstream)
	ErrTransient = errors.New("transient backend fault")
)

// HTTPStatus maps a business error to its HTTP status code
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrItemNotFound), errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotOwner), errors.Is(err, ErrNotModerator):
		return http.StatusForbidden
	case errors.Is(err, ErrAlreadyPending),
		errors.Is(err, ErrNotDraft),
		errors.Is(err, ErrNotPending),
		errors.Is(err, ErrNotRejected),
		errors.Is(err, ErrHasVersions):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrReasonRequired):
		return http.StatusBadRequest
	case errors.Is(err, ErrTransient):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
