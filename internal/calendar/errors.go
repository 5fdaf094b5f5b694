package calendar

import "errors"

// ErrInvalidArgument is returned when a builder or cursor receives a value
// outside its domain, such as month 13 or year 0.
var ErrInvalidArgument = errors.New("invalid argument")
