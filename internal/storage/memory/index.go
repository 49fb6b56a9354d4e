package memory

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"
)

// uuidIndex indexes objects of type T by a UUID they carry
type uuidIndex[T any] struct {
	id func(obj T) uuid.UUID
}

var _ memdb.SingleIndexer = (*uuidIndex[any])(nil)

func (index *uuidIndex[T]) FromObject(raw any) (bool, []byte, error) {
	obj, ok := raw.(T)
	if !ok {
		return false, nil, fmt.Errorf("unexpected object type %T", raw)
	}
	id := index.id(obj)
	return id != uuid.Nil, id[:], nil
}

func (index *uuidIndex[T]) FromArgs(args ...any) ([]byte, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("expected exactly one argument, got %d", len(args))
	}
	id, ok := args[0].(uuid.UUID)
	if !ok {
		return nil, fmt.Errorf("expected a uuid.UUID argument, got %T", args[0])
	}
	return id[:], nil
}

// paginate cuts one page out of the given items; a limit of 0 selects 10 items
func paginate[T any](items []T, offset, limit uint64) []T {
	if limit == 0 {
		limit = 10
	}
	if offset >= uint64(len(items)) {
		return []T{}
	}
	end := offset + limit
	if end > uint64(len(items)) {
		end = uint64(len(items))
	}
	return items[offset:end]
}
