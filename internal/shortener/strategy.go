package shortener

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultMaxAttempts bounds how many candidate codes are tried per request.
const DefaultMaxAttempts = 5

// Strategy defines the interface for URL shortening strategies.
type Strategy interface {
	Shorten(ctx context.Context, rawURL string) (*Mapping, error)
}

// inserter stores a mapping under a freshly generated code, retrying on
// code collisions.
type inserter struct {
	store        Repository
	generateCode CodeGenerator
	maxAttempts  int
	logger       *zap.Logger
	now          func() time.Time
}

func newInserter(store Repository, generator CodeGenerator, maxAttempts int, logger *zap.Logger) inserter {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return inserter{
		store:        store,
		generateCode: generator,
		maxAttempts:  maxAttempts,
		logger:       logger,
		now:          time.Now,
	}
}

func (i inserter) insert(ctx context.Context, rawURL string, hash URLHash) (*Mapping, error) {
	for attempt := 1; attempt <= i.maxAttempts; attempt++ {
		mapping, err := i.store.Insert(ctx, Mapping{
			Code:        Code(i.generateCode()),
			OriginalURL: rawURL,
			URLHash:     hash,
			CreatedAt:   i.now().UTC(),
		})
		if err == nil {
			return mapping, nil
		}

		if !errors.Is(err, ErrDuplicateCode) {
			return nil, err
		}

		i.logger.Debug("short code collision", zap.Int("attempt", attempt))
	}

	i.logger.Error("short code space exhausted",
		zap.Int("attempts", i.maxAttempts),
		zap.String("url", rawURL),
	)

	return nil, fmt.Errorf("%w after %d attempts", ErrExhaustedRetries, i.maxAttempts)
}

// TokenStrategy always generates a new code for each URL.
type TokenStrategy struct {
	inserter
}

// NewTokenStrategy creates a new token-based shortening strategy.
func NewTokenStrategy(store Repository, generator CodeGenerator, maxAttempts int, logger *zap.Logger) *TokenStrategy {
	return &TokenStrategy{inserter: newInserter(store, generator, maxAttempts, logger)}
}

func (s *TokenStrategy) Shorten(ctx context.Context, rawURL string) (*Mapping, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}

	return s.insert(ctx, rawURL, "")
}

// HashStrategy deduplicates URLs by returning the same code for identical URLs.
type HashStrategy struct {
	inserter
}

// NewHashStrategy creates a new hash-based shortening strategy.
func NewHashStrategy(store Repository, generator CodeGenerator, maxAttempts int, logger *zap.Logger) *HashStrategy {
	return &HashStrategy{inserter: newInserter(store, generator, maxAttempts, logger)}
}

func (s *HashStrategy) Shorten(ctx context.Context, rawURL string) (*Mapping, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}

	urlHash := HashURL(rawURL)

	existing, err := s.store.FindByURL(ctx, urlHash)
	if err == nil {
		return existing, nil
	}

	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	mapping, err := s.insert(ctx, rawURL, urlHash)
	if errors.Is(err, ErrDuplicateURL) {
		// A concurrent request stored the same URL first.
		return s.store.FindByURL(ctx, urlHash)
	}

	return mapping, err
}
