package shortener

import (
	"errors"
	"time"
)

// MaxCodeLength is the widest code the store schema accepts.
const MaxCodeLength = 10

var (
	// ErrInvalidURL is returned for input that is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid url")
	// ErrDuplicateCode is returned by a Repository when the code is taken.
	// Strategies absorb it by retrying with a fresh code.
	ErrDuplicateCode = errors.New("short code already exists")
	// ErrDuplicateURL is returned by a Repository when the URL hash is taken.
	ErrDuplicateURL = errors.New("url already shortened")
	// ErrExhaustedRetries means every candidate code collided.
	ErrExhaustedRetries = errors.New("could not allocate a unique short code")
	// ErrNotFound is returned when no mapping exists for a code or URL.
	ErrNotFound = errors.New("short url not found")
	// ErrInvalidCodeLength rejects a generator length outside the supported range.
	ErrInvalidCodeLength = errors.New("invalid code length")
	// ErrInvalidAlphabet rejects a generator alphabet that could issue
	// codes IsValidCode refuses.
	ErrInvalidAlphabet = errors.New("invalid code alphabet")
)

// Code represents a short URL code.
type Code string

// URLHash is the hex SHA-256 of an original URL.
type URLHash string

// Mapping binds a short code to the URL it redirects to.
type Mapping struct {
	ID          int64
	Code        Code
	OriginalURL string
	URLHash     URLHash // empty for token strategy, populated for hash strategy
	CreatedAt   time.Time
}
