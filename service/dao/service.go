package dao

import (
	"context"
)

// Service represents a generic keyed store
type Service[K comparable, T any] interface {
	Save(ctx context.Context, t *T) error

	Load(ctx context.Context, id K) (*T, error)

	Delete(ctx context.Context, id K) error

	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
}

// UpdateFunc mutates an entity in place; returning an error aborts the update
type UpdateFunc[T any] func(t *T) error
