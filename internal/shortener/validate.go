package shortener

import (
	"fmt"
	"net/url"

	"github.com/go-playground/validator/v10"
)

// MaxURLLength bounds accepted original URLs.
const MaxURLLength = 2048

var validate = validator.New()

// ValidateURL checks that raw is an absolute http(s) URL with a host.
func ValidateURL(raw string) error {
	if err := validate.Var(raw, fmt.Sprintf("required,url,max=%d", MaxURLLength)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}

	return nil
}
