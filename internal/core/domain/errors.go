package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("access denied")
	ErrValidation       = errors.New("validation error")
	ErrDuplicateTag     = errors.New("tag with this name already exists")
	ErrCheckNotRecorded = errors.New("odometer check was not recorded")
	ErrNoReading        = errors.New("no odometer reading detected")
)
