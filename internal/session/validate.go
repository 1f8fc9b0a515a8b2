package session

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	DefaultNamePattern  = `^[А-Яа-яЁё\s-]+$`
	DefaultPhonePattern = `^[\d+\-()\s]+$`
)

var (
	// ErrValidation marks malformed intake input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an empty search or an out-of-range selection.
	ErrNotFound = errors.New("not found")
)

// Validator checks intake fields. Input is trimmed before matching.
type Validator struct {
	name  *regexp.Regexp
	phone *regexp.Regexp
}

func NewValidator(namePattern, phonePattern string) (*Validator, error) {
	if strings.TrimSpace(namePattern) == "" {
		namePattern = DefaultNamePattern
	}

	if strings.TrimSpace(phonePattern) == "" {
		phonePattern = DefaultPhonePattern
	}

	name, err := regexp.Compile(namePattern)
	if err != nil {
		return nil, fmt.Errorf("compiling name pattern: %w", err)
	}

	phone, err := regexp.Compile(phonePattern)
	if err != nil {
		return nil, fmt.Errorf("compiling phone pattern: %w", err)
	}

	return &Validator{name: name, phone: phone}, nil
}

// FullName returns the trimmed name or an ErrValidation error.
func (v *Validator) FullName(input string) (string, error) {
	return check(v.name, "full name", input)
}

// Phone returns the trimmed phone or an ErrValidation error.
func (v *Validator) Phone(input string) (string, error) {
	return check(v.phone, "phone", input)
}

func check(re *regexp.Regexp, field, input string) (string, error) {
	value := strings.TrimSpace(input)
	if value == "" || !re.MatchString(value) {
		return "", fmt.Errorf("%w: %s %q", ErrValidation, field, value)
	}
	return value, nil
}
