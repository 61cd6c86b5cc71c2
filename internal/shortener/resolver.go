package shortener

import "context"

// Resolver maps short codes back to their original URLs.
type Resolver struct {
	store Repository
}

// NewResolver creates a resolver reading from store.
func NewResolver(store Repository) *Resolver {
	return &Resolver{store: store}
}

// Lookup returns the mapping stored under code. Codes that no generator
// could have produced are rejected without touching the store.
func (r *Resolver) Lookup(ctx context.Context, code string) (*Mapping, error) {
	if !IsValidCode(code) {
		return nil, ErrNotFound
	}

	return r.store.FindByCode(ctx, Code(code))
}

// Resolve returns the original URL for code.
func (r *Resolver) Resolve(ctx context.Context, code string) (string, error) {
	mapping, err := r.Lookup(ctx, code)
	if err != nil {
		return "", err
	}

	return mapping.OriginalURL, nil
}
