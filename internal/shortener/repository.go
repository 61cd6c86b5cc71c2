package shortener

import "context"

//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks . Repository

// Repository persists mappings. Implementations enforce code uniqueness
// atomically: Insert returns ErrDuplicateCode when the code is taken and
// ErrDuplicateURL when a non-empty URLHash is already stored.
type Repository interface {
	Insert(ctx context.Context, mapping Mapping) (*Mapping, error)
	FindByCode(ctx context.Context, code Code) (*Mapping, error)
	FindByURL(ctx context.Context, hash URLHash) (*Mapping, error)
	List(ctx context.Context, limit int) ([]*Mapping, error)
}
