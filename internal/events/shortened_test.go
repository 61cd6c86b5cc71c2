package events_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/serroba/url-shortener-go/internal/events"
	"github.com/serroba/url-shortener-go/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewURLShortened(t *testing.T) {
	createdAt := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	mapping := &shortener.Mapping{
		ID:          12,
		Code:        "abc1234",
		OriginalURL: "https://example.com",
		CreatedAt:   createdAt,
	}

	event := events.NewURLShortened(mapping, "hash", "10.0.0.1")

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"id": 12,
		"code": "abc1234",
		"original_url": "https://example.com",
		"strategy": "hash",
		"created_at": "2025-01-02T03:04:05Z",
		"client_ip": "10.0.0.1"
	}`, string(payload))
}
