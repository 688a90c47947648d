package search

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"coverwall/internal/metadata"
)

// DefaultMaxQueryLength is the longest query, in characters, accepted by
// default.
const DefaultMaxQueryLength = 100

var (
	// ErrEmptyQuery means the query was blank after trimming.
	ErrEmptyQuery = errors.New("query is empty")
	// ErrQueryTooLong means the query exceeded the configured length.
	ErrQueryTooLong = errors.New("query is too long")
	// ErrNoMatch means no artwork-bearing candidate was found.
	ErrNoMatch = errors.New("no album cover found")
	// ErrSuperseded means a newer search started before this one finished.
	ErrSuperseded = errors.New("search superseded by a newer search")
	// ErrNoPendingChoices means there is nothing to select from.
	ErrNoPendingChoices = errors.New("no choices pending")
	// ErrUnknownCandidate means the selected track was not offered.
	ErrUnknownCandidate = errors.New("candidate is not among the pending choices")
)

// IsInputError reports whether err was caused by an invalid query.
func IsInputError(err error) bool {
	return errors.Is(err, ErrEmptyQuery) || errors.Is(err, ErrQueryTooLong)
}

// ValidateQuery cleans raw and checks it against maxLen characters.
// A non-positive maxLen means DefaultMaxQueryLength.
func ValidateQuery(raw string, maxLen int) (string, error) {
	if maxLen <= 0 {
		maxLen = DefaultMaxQueryLength
	}

	q := metadata.CleanQuery(raw)
	if q == "" {
		return "", ErrEmptyQuery
	}
	if n := utf8.RuneCountInString(q); n > maxLen {
		return "", fmt.Errorf("%w: %d characters, limit is %d", ErrQueryTooLong, n, maxLen)
	}
	return q, nil
}
