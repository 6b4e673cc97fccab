// Package validate parses free-text user input for each delivery field.
// All functions are pure and total: any input yields either a value or an
// error, never a panic.
package validate

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"
)

var (
	ErrBadWeight        = errors.New("weight must be a number greater than zero")
	ErrBadVolumePerUnit = errors.New("volume per unit must be a number greater than zero")
	ErrBadCount         = errors.New("count must be an integer greater than zero")
	ErrBadPrice         = errors.New("price must be a number greater than zero")
)

// Weight parses a decimal weight. Whitespace is stripped anywhere in the
// text, a comma decimal separator is accepted, and any other non-numeric
// characters (units, currency signs) are ignored.
func Weight(text string) (float64, error) {
	v, err := positiveDecimal(text)
	if err != nil {
		return 0, ErrBadWeight
	}
	return v, nil
}

// VolumePerUnit parses the volume of a single unit. Same rule as Weight,
// kept separate because the two fields fail with different messages.
func VolumePerUnit(text string) (float64, error) {
	v, err := positiveDecimal(text)
	if err != nil {
		return 0, ErrBadVolumePerUnit
	}
	return v, nil
}

// Price parses a decimal price.
func Price(text string) (float64, error) {
	v, err := positiveDecimal(text)
	if err != nil {
		return 0, ErrBadPrice
	}
	return v, nil
}

// Count parses an integer count. Only digit characters matter; anything
// else intermixed is dropped before parsing.
func Count(text string) (int, error) {
	var b strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	n, err := strconv.Atoi(b.String())
	if err != nil || n <= 0 {
		return 0, ErrBadCount
	}
	return n, nil
}

var errNotPositiveDecimal = errors.New("not a positive decimal")

func positiveDecimal(text string) (float64, error) {
	var b strings.Builder
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
		case r == ',':
			b.WriteRune('.')
		case r >= '0' && r <= '9' || r == '.':
			b.WriteRune(r)
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, errNotPositiveDecimal
	}
	if v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, errNotPositiveDecimal
	}
	return v, nil
}
