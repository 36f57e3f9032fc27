package database

import "errors"

// Business and validation errors raised by the query and ledger layer.
// The HTTP boundary maps these onto response statuses; anything else is
// treated as an infrastructure failure.
var (
	ErrNotFound          = errors.New("assistance not found")
	ErrUnavailable       = errors.New("assistance is not available")
	ErrSelfSubscription  = errors.New("user can not subscribe to their own assistance")
	ErrNoVacancies       = errors.New("assistance has no empty vacancies")
	ErrAlreadySubscribed = errors.New("user is already subscribed")
	ErrNotSubscribed     = errors.New("user is not subscribed")
	ErrNotAllowed        = errors.New("user is not allowed to see subscribers")
	ErrUnknownField      = errors.New("unknown projection field")
	ErrFieldNotAllowed   = errors.New("projection field is not allowed")
	ErrEmptyProjection   = errors.New("fields must be filled")
	ErrBadQueryMode      = errors.New("query mode does not exist")

	errUpdate = errors.New("no record found")
)
