package shortener

import (
	"fmt"
	"strings"

	"github.com/jaevor/go-nanoid"
)

const (
	Base62Alphabet    = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	DefaultCodeLength = 7
	// MinCodeLength is the shortest length nanoid's custom generators can
	// fill; below five characters its read buffer is empty.
	MinCodeLength = 5
)

// CodeGenerator returns a candidate short code. Candidates are not
// guaranteed to be unique.
type CodeGenerator func() string

// NewCodeGenerator returns a generator drawing uniformly from alphabet
// using a cryptographic source. alphabet must hold at least two distinct
// base62 characters so every code it issues passes IsValidCode.
func NewCodeGenerator(alphabet string, length int) (CodeGenerator, error) {
	if length < MinCodeLength || length > MaxCodeLength {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidCodeLength, length, MinCodeLength, MaxCodeLength)
	}

	if err := checkAlphabet(alphabet); err != nil {
		return nil, err
	}

	gen, err := nanoid.CustomASCII(alphabet, length)
	if err != nil {
		return nil, fmt.Errorf("code generator: %w", err)
	}

	return gen, nil
}

func checkAlphabet(alphabet string) error {
	if len(alphabet) < 2 {
		return fmt.Errorf("%w: need at least 2 characters, got %d", ErrInvalidAlphabet, len(alphabet))
	}

	for i := 0; i < len(alphabet); i++ {
		c := alphabet[i]
		if !isBase62(c) {
			return fmt.Errorf("%w: %q is not base62", ErrInvalidAlphabet, c)
		}

		if strings.IndexByte(alphabet[:i], c) >= 0 {
			return fmt.Errorf("%w: %q repeated", ErrInvalidAlphabet, c)
		}
	}

	return nil
}

// IsValidCode reports whether code could have been issued by a base62
// generator.
func IsValidCode(code string) bool {
	if code == "" || len(code) > MaxCodeLength {
		return false
	}

	for i := 0; i < len(code); i++ {
		if !isBase62(code[i]) {
			return false
		}
	}

	return true
}

func isBase62(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z'
}
