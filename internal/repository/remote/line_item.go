package remote

import (
	"context"
	"fmt"
	"slices"

	"tourops/internal/model"
	"tourops/internal/repository"

	"github.com/google/uuid"
)

// itemStore edits one child table. Every statement is scoped by tour id and
// runs in the same transaction as the summary write-back.
type itemStore[T any, PT model.LineItemPtr[T]] struct {
	ts    *tourStore
	table string
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
		PT(&item).Attach(tourID, nextPosition[T, PT](*list))
		if err := is.ts.s.conn(ctx).Create(PT(&item)).Error; err != nil {
			return fmt.Errorf("insert %s: %w", is.table, err)
		}
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
		pos := indexOf[T, PT](*list, itemID)
		if pos < 0 {
			return repository.ItemNotFound(is.table, tourID, itemID)
		}
		PT(&item).Attach(tourID, PT(&(*list)[pos]).ItemPosition())

		res := is.ts.s.conn(ctx).Model(PT(&item)).
			Where("tour_id = ?", tourID).
			Select("*").
			Updates(PT(&item))
		if res.Error != nil {
			return fmt.Errorf("update %s %s: %w", is.table, itemID, res.Error)
		}
		if res.RowsAffected == 0 {
			return repository.ItemNotFound(is.table, tourID, itemID)
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
		res := is.ts.s.conn(ctx).Where("id = ? AND tour_id = ?", itemID, tourID).Delete(new(T))
		if res.Error != nil {
			return fmt.Errorf("delete %s %s: %w", is.table, itemID, res.Error)
		}
		if res.RowsAffected == 0 {
			return repository.ItemNotFound(is.table, tourID, itemID)
		}
		list := is.items(t)
		if pos := indexOf[T, PT](*list, itemID); pos >= 0 {
			*list = slices.Delete(*list, pos, pos+1)
		}
		return is.ts.touch(ctx, t)
	})
}

func indexOf[T any, PT model.LineItemPtr[T]](items []T, id uuid.UUID) int {
	return slices.IndexFunc(items, func(item T) bool {
		return PT(&item).ItemID() == id
	})
}

// nextPosition appends after the last row even when earlier rows were removed.
func nextPosition[T any, PT model.LineItemPtr[T]](items []T) int {
	next := 0
	for i := range items {
		if p := PT(&items[i]).ItemPosition(); p >= next {
			next = p + 1
		}
	}
	return next
}
