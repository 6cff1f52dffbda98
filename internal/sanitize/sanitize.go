// Package sanitize cleans free-text answers before they reach the flow.
package sanitize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxInputSize matches the JSON body limit of the HTTP adapter.
const DefaultMaxInputSize = 16384

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
	// ErrSensitiveData is returned when input looks like an SSN or card number.
	ErrSensitiveData = errors.New("input contains sensitive personal information")
)

// SensitiveDataMessage is shown to visitors whose answer was refused as PII.
const SensitiveDataMessage = "For your safety, please do not share sensitive personal information like SSN or " +
	"credit card numbers in chat. Our team will collect necessary information securely."

var (
	htmlTag    = regexp.MustCompile(`<[^>]*>`)
	whitespace = regexp.MustCompile(`\s+`)

	piiPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
		regexp.MustCompile(`\b\d{9}\b`),
		regexp.MustCompile(`\b\d{4}[\s-]?\d{4}[\s-]?\d{4}[\s-]?\d{4}\b`),
	}
)

// Sanitizer enforces a size limit on free text.
type Sanitizer struct {
	MaxSize int
}

// New returns a Sanitizer; a non-positive size selects DefaultMaxInputSize.
func New(maxSize int) *Sanitizer {
	if maxSize <= 0 {
		maxSize = DefaultMaxInputSize
	}
	return &Sanitizer{MaxSize: maxSize}
}

// Text validates and cleans a free-text answer: it rejects oversized or
// invalid UTF-8 input, strips control characters and HTML tags, and
// collapses runs of whitespace.
func (s *Sanitizer) Text(input string) (string, error) {
	// Reject rather than truncate so a turn never acts on half an answer.
	if len(input) > s.MaxSize {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), s.MaxSize)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	out := stripControl(input)
	out = htmlTag.ReplaceAllString(out, "")
	out = whitespace.ReplaceAllString(out, " ")
	return strings.TrimSpace(out), nil
}

// Answer is Text plus the PII check used on chat-like input.
func (s *Sanitizer) Answer(input string) (string, error) {
	out, err := s.Text(input)
	if err != nil {
		return "", err
	}
	if ContainsPII(out) {
		return "", ErrSensitiveData
	}
	return out, nil
}

// ContainsPII reports whether text contains an SSN, a bare nine-digit
// number or a sixteen-digit card number.
func ContainsPII(text string) bool {
	for _, p := range piiPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func stripControl(input string) string {
	clean := true
	for _, r := range input {
		if unicode.IsControl(r) && !isSafeControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return input
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !unicode.IsControl(r) || isSafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}
