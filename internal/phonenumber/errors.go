package phonenumber

import "errors"

// Parse failure reasons. The bridge collapses all of them into one
// "invalid number" error; they stay distinguishable with errors.Is.
var (
	ErrNoDigits           = errors.New("no digits in input")
	ErrMissingRegion      = errors.New("region required for numbers without a leading +")
	ErrUnknownRegion      = errors.New("unknown region")
	ErrUnknownCallingCode = errors.New("unknown calling code")
	ErrTooShort           = errors.New("national number too short")
	ErrTooLong            = errors.New("national number too long")
)
