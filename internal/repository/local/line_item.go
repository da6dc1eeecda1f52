package local

import (
	"context"
	"slices"

	"tourops/internal/model"
	"tourops/internal/repository"

	"github.com/google/uuid"
)

// itemStore edits one embedded array of a tour document. Callers address
// items by id; positions are resolved per call so a removal never shifts
// the target of a later update.
type itemStore[T any, PT model.LineItemPtr[T]] struct {
	ts    *tourStore
	name  string
	items func(*model.Tour) *[]T
}

func (is *itemStore[T, PT]) Add(ctx context.Context, tourID uuid.UUID, item T) (uuid.UUID, error) {
	id := uuid.New()
	if err := repository.PrepareItem(PT(&item), id); err != nil {
		return uuid.Nil, err
	}
	err := is.ts.s.tx.RunInTx(ctx, func(ctx context.Context) error {
		t, err := is.ts.Get(ctx, tourID)
		if err != nil {
			return err
		}
		list := is.items(t)
		*list = append(*list, item)
		return is.ts.touch(ctx, t)
	})
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (is *itemStore[T, PT]) Update(ctx context.Context, tourID, itemID uuid.UUID, item T) error {
	if err := repository.PrepareItem(PT(&item), itemID); err != nil {
		return err
	}
	return is.ts.s.tx.RunInTx(ctx, func(ctx context.Context) error {
		t, err := is.ts.Get(ctx, tourID)
		if err != nil {
			return err
		}
		list := is.items(t)
		pos, ok := positions[T, PT](*list)[itemID]
		if !ok {
			return repository.ItemNotFound(is.name, tourID, itemID)
		}
		(*list)[pos] = item
		return is.ts.touch(ctx, t)
	})
}

func (is *itemStore[T, PT]) Remove(ctx context.Context, tourID, itemID uuid.UUID) error {
	return is.ts.s.tx.RunInTx(ctx, func(ctx context.Context) error {
		t, err := is.ts.Get(ctx, tourID)
		if err != nil {
			return err
		}
		list := is.items(t)
		pos, ok := positions[T, PT](*list)[itemID]
		if !ok {
			return repository.ItemNotFound(is.name, tourID, itemID)
		}
		*list = slices.Delete(*list, pos, pos+1)
		return is.ts.touch(ctx, t)
	})
}

// positions maps item ids to their current index in the array.
func positions[T any, PT model.LineItemPtr[T]](items []T) map[uuid.UUID]int {
	idx := make(map[uuid.UUID]int, len(items))
	for i := range items {
		idx[PT(&items[i]).ItemID()] = i
	}
	return idx
}
