package service

import (
	"context"
	"errors"
	"fmt"

	"tourops/internal/model"
	"tourops/internal/repository"

	"github.com/google/uuid"
)

type lookupFunc func(ctx context.Context, id uuid.UUID) (*model.MasterBase, error)

func lookupIn[T any, PT model.MasterPtr[T]](repo repository.MasterRepository[T]) lookupFunc {
	return func(ctx context.Context, id uuid.UUID) (*model.MasterBase, error) {
		item, err := repo.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return PT(item).Meta(), nil
	}
}

// snapshotRef fills ref.NameAtBooking from the referenced record. A ref that
// keeps the id it had in prev keeps its stored name too; only a new target
// takes a fresh snapshot. A ref without id is free text and left alone.
func snapshotRef(ctx context.Context, ref *model.EntityRef, prev *model.EntityRef, kind model.Kind, lookup lookupFunc) error {
	if ref.ID == nil {
		return nil
	}
	if prev != nil && prev.ID != nil && *prev.ID == *ref.ID {
		ref.NameAtBooking = prev.NameAtBooking
		return nil
	}
	target, err := lookup(ctx, *ref.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: referenced %s %s does not exist", repository.ErrInvalidInput, kind, *ref.ID)
	}
	if err != nil {
		return err
	}
	ref.NameAtBooking = target.Name
	return nil
}

func parseID(id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id %q", repository.ErrInvalidInput, id)
	}
	return uid, nil
}
