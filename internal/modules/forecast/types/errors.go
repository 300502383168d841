package types

import "errors"

var (
	// ErrInsufficientData is returned when there is no forecast to work with.
	ErrInsufficientData = errors.New("insufficient forecast data")
	// ErrProviderUnavailable covers transport failures and non-success statuses.
	ErrProviderUnavailable = errors.New("forecast provider unavailable")
	// ErrLocationDenied is returned when no location source can produce a coordinate.
	ErrLocationDenied = errors.New("location denied")
)
