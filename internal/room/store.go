package room

import "context"

// Store persists rooms. Implementations must report a missing id as
// ErrNotFound, a (building, number) collision as ErrDuplicateNumber, an
// unknown building or room type as a *StoreError wrapping
// ErrUnknownReference, and any other failure as a *StoreError.
type Store interface {
	Create(ctx context.Context, in Input) (int64, error)
	Update(ctx context.Context, id int64, in Input) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*Room, error)
	List(ctx context.Context, filter ListFilter) ([]Room, error)
}
