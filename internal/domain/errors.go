package domain

import (
	"errors"
	"fmt"
)

// ValidationError reports a value outside its legal domain.
type ValidationError struct {
	Field string
	Value any
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Msg)
}

// ParseError reports input text that matches no point notation.
type ParseError struct {
	Input string
	Msg   string
}

func (e *ParseError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("unable to parse location %q", e.Input)
	}
	return fmt.Sprintf("unable to parse location %q: %s", e.Input, e.Msg)
}

// DomainError reports a mathematically undefined result for valid inputs.
type DomainError struct {
	Msg string
}

func (e *DomainError) Error() string {
	return e.Msg
}

var (
	// ErrNoSunrise is returned when the sun never rises on the given date.
	ErrNoSunrise error = &DomainError{Msg: "the sun does not rise at this location on this date"}
	// ErrNoSunset is returned when the sun never sets on the given date.
	ErrNoSunset error = &DomainError{Msg: "the sun does not set at this location on this date"}
)

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsParse reports whether err is, or wraps, a ParseError.
func IsParse(err error) bool {
	var target *ParseError
	return errors.As(err, &target)
}

// IsDomain reports whether err is, or wraps, a DomainError.
func IsDomain(err error) bool {
	var target *DomainError
	return errors.As(err, &target)
}
