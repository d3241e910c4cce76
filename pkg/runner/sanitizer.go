package runner

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxInputSize bounds one command line in bytes.
const DefaultMaxInputSize = 64 * 1024

// EnvMaxInputSize overrides DefaultMaxInputSize when set to a positive integer.
const EnvMaxInputSize = "SHRUB_MAX_INPUT_SIZE"

var (
	ErrInputTooLarge = errors.New("input too large")
	ErrInvalidUTF8   = errors.New("input is not valid UTF-8")
)

// SanitizeInput rejects oversized or non UTF-8 input and drops control runes,
// keeping tabs and line breaks.
func SanitizeInput(input string) (string, error) {
	if limit := MaxInputSize(); len(input) > limit {
		return "", fmt.Errorf("%w: %d bytes, limit %d", ErrInputTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}
	if strings.IndexFunc(input, stripped) < 0 {
		return input, nil
	}
	return strings.Map(func(r rune) rune {
		if stripped(r) {
			return -1
		}
		return r
	}, input), nil
}

func stripped(r rune) bool {
	switch r {
	case '\t', '\n', '\r':
		return false
	}
	return unicode.IsControl(r)
}

// MaxInputSize is the active input limit.
func MaxInputSize() int {
	raw := os.Getenv(EnvMaxInputSize)
	if raw == "" {
		return DefaultMaxInputSize
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return DefaultMaxInputSize
	}
	return n
}
