package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tourops/internal/model"
	"tourops/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type masterStore[T any, PT model.MasterPtr[T]] struct {
	s    *Store
	kind model.Kind
	// softDelete turns Delete into a flip to inactive.
	softDelete bool
}

func newMasterStore[T any, PT model.MasterPtr[T]](s *Store, kind model.Kind, softDelete bool) *masterStore[T, PT] {
	return &masterStore[T, PT]{s: s, kind: kind, softDelete: softDelete}
}

func (m *masterStore[T, PT]) List(ctx context.Context, q repository.ListQuery) ([]T, error) {
	var items []T
	db := m.s.conn(ctx)
	if q.Status != "" && q.Status != model.StatusAll {
		db = db.Where("status = ?", q.Status)
	}
	if err := db.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", m.kind, err)
	}
	items = repository.FilterMasters[T, PT](items, q)
	repository.SortByName[T, PT](items)
	return items, nil
}

func (m *masterStore[T, PT]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	item := new(T)
	err := m.s.conn(ctx).First(item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.NotFound(m.kind, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", m.kind, id, err)
	}
	return item, nil
}

func (m *masterStore[T, PT]) Create(ctx context.Context, item *T) (*T, error) {
	if err := repository.PrepareCreate(PT(item), m.s.now()); err != nil {
		return nil, err
	}
	err := m.s.tx.RunInTx(ctx, func(ctx context.Context) error {
		return m.insert(ctx, PT(item))
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (m *masterStore[T, PT]) Update(ctx context.Context, id uuid.UUID, apply func(*T) error) error {
	return m.s.tx.RunInTx(ctx, func(ctx context.Context) error {
		item, err := m.Get(ctx, id)
		if err != nil {
			return err
		}
		prev := *PT(item).Meta()
		if err := apply(item); err != nil {
			return err
		}
		if err := repository.PrepareUpdate(PT(item), prev, m.s.now()); err != nil {
			return err
		}
		if err := m.checkUnique(ctx, PT(item)); err != nil {
			return err
		}
		return m.translate(m.s.conn(ctx).Save(item).Error, PT(item))
	})
}

func (m *masterStore[T, PT]) ToggleStatus(ctx context.Context, id uuid.UUID) error {
	return m.Update(ctx, id, func(item *T) error {
		b := PT(item).Meta()
		b.Status = b.Status.Toggle()
		return nil
	})
}

func (m *masterStore[T, PT]) Duplicate(ctx context.Context, id uuid.UUID) (*T, error) {
	var dup *T
	err := m.s.tx.RunInTx(ctx, func(ctx context.Context) error {
		item, err := m.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := repository.PrepareCopy(PT(item), m.s.now()); err != nil {
			return err
		}
		dup = item
		return m.insert(ctx, PT(item))
	})
	if err != nil {
		return nil, err
	}
	return dup, nil
}

// Delete removes the row, or marks it inactive for kinds that tours keep
// pointing at through their expense lines.
func (m *masterStore[T, PT]) Delete(ctx context.Context, id uuid.UUID) error {
	var res *gorm.DB
	if m.softDelete {
		res = m.s.conn(ctx).Model(new(T)).Where("id = ?", id).Updates(map[string]any{
			"status":     model.StatusInactive,
			"updated_at": m.s.now(),
		})
	} else {
		res = m.s.conn(ctx).Where("id = ?", id).Delete(new(T))
	}
	if res.Error != nil {
		return fmt.Errorf("delete %s %s: %w", m.kind, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.NotFound(m.kind, id)
	}
	return nil
}

func (m *masterStore[T, PT]) insert(ctx context.Context, item PT) error {
	if err := m.checkUnique(ctx, item); err != nil {
		return err
	}
	return m.translate(m.s.conn(ctx).Create(item).Error, item)
}

func (m *masterStore[T, PT]) checkUnique(ctx context.Context, item PT) error {
	b := item.Meta()
	taken, err := m.s.nameTaken(ctx, string(m.kind), "name_key", b.NameKey, b.ID)
	if err != nil {
		return err
	}
	if taken {
		return &repository.DuplicateNameError{Kind: m.kind, Name: b.Name}
	}
	return nil
}

func (m *masterStore[T, PT]) translate(err error, item PT) error {
	if err == nil {
		return nil
	}
	if repository.IsUniqueViolation(err) {
		return &repository.DuplicateNameError{Kind: m.kind, Name: item.Meta().Name}
	}
	return fmt.Errorf("save %s %s: %w", m.kind, item.Meta().ID, err)
}

func (m *masterStore[T, PT]) importAll(ctx context.Context, items []T, now time.Time) error {
	batch := make([]T, 0, len(items))
	keys := make(map[string]struct{}, len(items))
	for i := range items {
		rec := items[i]
		item := PT(&rec)
		if err := repository.PrepareImport(item, now); err != nil {
			return fmt.Errorf("import %s %q: %w", m.kind, item.Meta().Name, err)
		}
		// the batch is written at once, so names are checked against the
		// rows before it as well as the stored ones
		if _, dup := keys[item.Meta().NameKey]; dup {
			return &repository.DuplicateNameError{Kind: m.kind, Name: item.Meta().Name}
		}
		keys[item.Meta().NameKey] = struct{}{}
		if err := m.checkUnique(ctx, item); err != nil {
			return err
		}
		batch = append(batch, rec)
	}
	if len(batch) == 0 {
		return nil
	}
	if err := m.s.conn(ctx).CreateInBatches(&batch, 100).Error; err != nil {
		if repository.IsUniqueViolation(err) {
			return &repository.DuplicateNameError{Kind: m.kind, Name: PT(&batch[0]).Meta().Name}
		}
		return fmt.Errorf("import %s: %w", m.kind, err)
	}
	return nil
}
