package events

import (
	"time"

	"github.com/serroba/url-shortener-go/internal/shortener"
)

const TopicURLShortened = "url.shortened"

// URLShortened is emitted after every successful shorten request, including
// idempotent requests that returned an existing mapping.
type URLShortened struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	OriginalURL string    `json:"original_url"`
	Strategy    string    `json:"strategy"`
	CreatedAt   time.Time `json:"created_at"`
	ClientIP    string    `json:"client_ip,omitempty"`
}

// NewURLShortened builds the event for a returned mapping.
func NewURLShortened(mapping *shortener.Mapping, strategy, clientIP string) *URLShortened {
	return &URLShortened{
		ID:          mapping.ID,
		Code:        string(mapping.Code),
		OriginalURL: mapping.OriginalURL,
		Strategy:    strategy,
		CreatedAt:   mapping.CreatedAt,
		ClientIP:    clientIP,
	}
}
