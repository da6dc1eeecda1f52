package local

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
}

func newMasterStore[T any, PT model.MasterPtr[T]](s *Store, kind model.Kind) *masterStore[T, PT] {
	return &masterStore[T, PT]{s: s, kind: kind}
}

func (m *masterStore[T, PT]) List(ctx context.Context, q repository.ListQuery) ([]T, error) {
	var docs []document
	if err := m.s.table(ctx, m.kind).Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", m.kind, err)
	}

	items := make([]T, len(docs))
	for i, doc := range docs {
		if err := decodeMaster(doc, PT(&items[i])); err != nil {
			return nil, err
		}
	}
	items = repository.FilterMasters[T, PT](items, q)
	repository.SortByName[T, PT](items)
	return items, nil
}

func (m *masterStore[T, PT]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	var doc document
	err := m.s.table(ctx, m.kind).Where("id = ?", id.String()).Take(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.NotFound(m.kind, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", m.kind, id, err)
	}

	item := new(T)
	if err := decodeMaster(doc, PT(item)); err != nil {
		return nil, err
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

		doc, err := encodeMaster(PT(item))
		if err != nil {
			return err
		}
		err = m.s.table(ctx, m.kind).Where("id = ?", doc.ID).Updates(doc.values()).Error
		return m.translate(err, PT(item))
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

func (m *masterStore[T, PT]) Delete(ctx context.Context, id uuid.UUID) error {
	res := m.s.table(ctx, m.kind).Where("id = ?", id.String()).Delete(&document{})
	if res.Error != nil {
		return fmt.Errorf("delete %s %s: %w", m.kind, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.NotFound(m.kind, id)
	}
	return nil
}

// insert scans the kind for a clashing name, then writes the document. The
// unique index on name_key is the final word.
func (m *masterStore[T, PT]) insert(ctx context.Context, item PT) error {
	if err := m.checkUnique(ctx, item); err != nil {
		return err
	}
	doc, err := encodeMaster(item)
	if err != nil {
		return err
	}
	return m.translate(m.s.table(ctx, m.kind).Create(&doc).Error, item)
}

func (m *masterStore[T, PT]) checkUnique(ctx context.Context, item PT) error {
	owners, err := m.s.keyOwners(ctx, m.kind)
	if err != nil {
		return err
	}
	b := item.Meta()
	return repository.CheckUnique(m.kind, b.Name, b.NameKey, b.ID, owners)
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

// importAll writes snapshot records keeping their ids.
func (m *masterStore[T, PT]) importAll(ctx context.Context, items []T, now time.Time) error {
	for i := range items {
		rec := items[i]
		item := PT(&rec)
		if err := repository.PrepareImport(item, now); err != nil {
			return fmt.Errorf("import %s %q: %w", m.kind, item.Meta().Name, err)
		}
		if err := m.checkUnique(ctx, item); err != nil {
			return err
		}
		doc, err := encodeMaster(item)
		if err != nil {
			return err
		}
		if err := m.s.table(ctx, m.kind).Create(&doc).Error; err != nil {
			return fmt.Errorf("import %s %s: %w", m.kind, doc.ID, err)
		}
	}
	return nil
}

// keyOwners reads the id and normalized name of every row of kind.
func (s *Store) keyOwners(ctx context.Context, kind model.Kind) ([]repository.KeyOwner, error) {
	var rows []keyRow
	if err := s.table(ctx, kind).Select("id", "name_key").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("scan %s names: %w", kind, err)
	}
	owners := make([]repository.KeyOwner, 0, len(rows))
	for _, r := range rows {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			return nil, fmt.Errorf("scan %s names: %w", kind, err)
		}
		owners = append(owners, repository.KeyOwner{ID: id, Key: r.NameKey})
	}
	return owners, nil
}
