package store_test

import (
	"context"
	"testing"

	"github.com/serroba/url-shortener-go/internal/shortener"
	"github.com/serroba/url-shortener-go/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Non-positive limits are answered before any backend is touched, so the
// stores are built without a connection here.
func TestList_NonPositiveLimit(t *testing.T) {
	repos := map[string]shortener.Repository{
		"memory":   store.NewMemoryStore(),
		"postgres": store.NewPostgresStore(nil),
		"redis":    store.NewRedisStore(nil),
	}

	for name, repo := range repos {
		t.Run(name, func(t *testing.T) {
			for _, limit := range []int{0, -1, -100} {
				got, err := repo.List(context.Background(), limit)

				require.NoError(t, err)
				assert.Empty(t, got)
			}
		})
	}
}
