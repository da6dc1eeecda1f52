package service

import (
	"context"
	"encoding/json"
	"fmt"

	"tourops/internal/model"
	"tourops/internal/repository"
	"tourops/pkg/pagination"
)

// resolveFunc fills the references of item. prev is nil on create.
type resolveFunc[T any] func(ctx context.Context, item, prev *T) error

// CatalogService serves one master data kind.
type CatalogService[T any, PT model.MasterPtr[T]] struct {
	repo    repository.MasterRepository[T]
	kind    model.Kind
	notify  Notifier
	resolve resolveFunc[T]
}

func NewCatalogService[T any, PT model.MasterPtr[T]](repo repository.MasterRepository[T], notify Notifier, resolve resolveFunc[T]) *CatalogService[T, PT] {
	var zero T
	return &CatalogService[T, PT]{
		repo:    repo,
		kind:    PT(&zero).EntityKind(),
		notify:  orNop(notify),
		resolve: resolve,
	}
}

func (s *CatalogService[T, PT]) Kind() model.Kind { return s.kind }

// List returns one page of the matching records and the match count.
func (s *CatalogService[T, PT]) List(ctx context.Context, q repository.ListQuery, page pagination.Params) ([]T, int64, error) {
	items, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return pagination.Slice(items, page), int64(len(items)), nil
}

func (s *CatalogService[T, PT]) Get(ctx context.Context, id string) (*T, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, uid)
}

func (s *CatalogService[T, PT]) Create(ctx context.Context, item *T) (*T, error) {
	if s.resolve != nil {
		if err := s.resolve(ctx, item, nil); err != nil {
			return nil, err
		}
	}
	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return nil, err
	}
	s.notify.Publish(s.kind, model.ActionCreated, PT(created).Meta().ID.String())
	return created, nil
}

// clone deep-copies v. Decoding a patch writes through the pointers of v,
// so a shallow copy would see the patched reference ids.
func clone[T any](v *T) (*T, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("copy record: %w", err)
	}
	out := new(T)
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("copy record: %w", err)
	}
	return out, nil
}

// Update merges the JSON patch into the stored record. Fields missing from
// the patch keep their value.
func (s *CatalogService[T, PT]) Update(ctx context.Context, id string, patch json.RawMessage) (*T, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	err = s.repo.Update(ctx, uid, func(item *T) error {
		prev, err := clone(item)
		if err != nil {
			return err
		}
		if err := applyPatch(item, patch); err != nil {
			return err
		}
		if s.resolve != nil {
			return s.resolve(ctx, item, prev)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify.Publish(s.kind, model.ActionUpdated, uid.String())
	return s.repo.Get(ctx, uid)
}

func (s *CatalogService[T, PT]) ToggleStatus(ctx context.Context, id string) (*T, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ToggleStatus(ctx, uid); err != nil {
		return nil, err
	}
	s.notify.Publish(s.kind, model.ActionUpdated, uid.String())
	return s.repo.Get(ctx, uid)
}

func (s *CatalogService[T, PT]) Duplicate(ctx context.Context, id string) (*T, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	dup, err := s.repo.Duplicate(ctx, uid)
	if err != nil {
		return nil, err
	}
	s.notify.Publish(s.kind, model.ActionCreated, PT(dup).Meta().ID.String())
	return dup, nil
}

func (s *CatalogService[T, PT]) Delete(ctx context.Context, id string) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, uid); err != nil {
		return err
	}
	s.notify.Publish(s.kind, model.ActionDeleted, uid.String())
	return nil
}
