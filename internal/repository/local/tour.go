package local

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"tourops/internal/model"
	"tourops/internal/repository"
	"tourops/internal/summary"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// tourStore keeps each tour, line items included, in a single document.
type tourStore struct {
	s *Store
}

func (ts *tourStore) table(ctx context.Context) *gorm.DB {
	return ts.s.table(ctx, model.KindTour)
}

func (ts *tourStore) List(ctx context.Context, q repository.ListQuery) ([]model.Tour, error) {
	var docs []document
	if err := ts.table(ctx).Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list tours: %w", err)
	}

	tours := make([]model.Tour, 0, len(docs))
	for _, doc := range docs {
		t, err := decodeTour(doc)
		if err != nil {
			return nil, err
		}
		tours = append(tours, *t)
	}
	tours = repository.FilterTours(tours, q)
	repository.SortTours(tours)
	return tours, nil
}

func (ts *tourStore) Get(ctx context.Context, id uuid.UUID) (*model.Tour, error) {
	var doc document
	err := ts.table(ctx).Where("id = ?", id.String()).Take(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.NotFound(model.KindTour, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get tour %s: %w", id, err)
	}
	return decodeTour(doc)
}

func (ts *tourStore) Create(ctx context.Context, t *model.Tour) (*model.Tour, error) {
	if err := repository.PrepareNewTour(t, ts.s.now()); err != nil {
		return nil, err
	}
	err := ts.s.tx.RunInTx(ctx, func(ctx context.Context) error {
		return ts.insert(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (ts *tourStore) Update(ctx context.Context, id uuid.UUID, apply func(*model.Tour) error) error {
	return ts.s.tx.RunInTx(ctx, func(ctx context.Context) error {
		t, err := ts.Get(ctx, id)
		if err != nil {
			return err
		}
		prev := *t
		prev.Destinations = slices.Clone(t.Destinations)
		prev.Expenses = slices.Clone(t.Expenses)
		prev.Meals = slices.Clone(t.Meals)
		prev.Allowances = slices.Clone(t.Allowances)

		if err := apply(t); err != nil {
			return err
		}
		if err := repository.PrepareTourUpdate(t, &prev, ts.s.now()); err != nil {
			return err
		}
		if err := ts.checkUnique(ctx, t); err != nil {
			return err
		}
		return ts.save(ctx, t)
	})
}

func (ts *tourStore) ToggleStatus(ctx context.Context, id uuid.UUID) error {
	return ts.Update(ctx, id, func(t *model.Tour) error {
		t.Status = t.Status.Toggle()
		return nil
	})
}

func (ts *tourStore) Duplicate(ctx context.Context, id uuid.UUID) (*model.Tour, error) {
	var dup *model.Tour
	err := ts.s.tx.RunInTx(ctx, func(ctx context.Context) error {
		t, err := ts.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := repository.PrepareTourCopy(t, ts.s.now()); err != nil {
			return err
		}
		dup = t
		return ts.insert(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	return dup, nil
}

func (ts *tourStore) Delete(ctx context.Context, id uuid.UUID) error {
	res := ts.table(ctx).Where("id = ?", id.String()).Delete(&document{})
	if res.Error != nil {
		return fmt.Errorf("delete tour %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.NotFound(model.KindTour, id)
	}
	return nil
}

func (ts *tourStore) Destinations() repository.LineItemRepository[model.TourDestination] {
	return &itemStore[model.TourDestination, *model.TourDestination]{
		ts: ts, name: "tour_destinations",
		items: func(t *model.Tour) *[]model.TourDestination { return &t.Destinations },
	}
}

func (ts *tourStore) Expenses() repository.LineItemRepository[model.TourExpense] {
	return &itemStore[model.TourExpense, *model.TourExpense]{
		ts: ts, name: "tour_expenses",
		items: func(t *model.Tour) *[]model.TourExpense { return &t.Expenses },
	}
}

func (ts *tourStore) Meals() repository.LineItemRepository[model.TourMeal] {
	return &itemStore[model.TourMeal, *model.TourMeal]{
		ts: ts, name: "tour_meals",
		items: func(t *model.Tour) *[]model.TourMeal { return &t.Meals },
	}
}

func (ts *tourStore) Allowances() repository.LineItemRepository[model.TourAllowance] {
	return &itemStore[model.TourAllowance, *model.TourAllowance]{
		ts: ts, name: "tour_allowances",
		items: func(t *model.Tour) *[]model.TourAllowance { return &t.Allowances },
	}
}

func (ts *tourStore) insert(ctx context.Context, t *model.Tour) error {
	if err := ts.checkUnique(ctx, t); err != nil {
		return err
	}
	doc, err := encodeTour(t)
	if err != nil {
		return err
	}
	return ts.translate(ts.table(ctx).Create(&doc).Error, t)
}

// save rewrites the whole document, summary included.
func (ts *tourStore) save(ctx context.Context, t *model.Tour) error {
	doc, err := encodeTour(t)
	if err != nil {
		return err
	}
	err = ts.table(ctx).Where("id = ?", doc.ID).Updates(doc.values()).Error
	return ts.translate(err, t)
}

// touch recomputes the summary after a line-item change and persists the tour.
func (ts *tourStore) touch(ctx context.Context, t *model.Tour) error {
	if err := summary.Recompute(t); err != nil {
		return err
	}
	t.UpdatedAt = ts.s.now()
	return ts.save(ctx, t)
}

func (ts *tourStore) checkUnique(ctx context.Context, t *model.Tour) error {
	owners, err := ts.s.keyOwners(ctx, model.KindTour)
	if err != nil {
		return err
	}
	return repository.CheckUnique(model.KindTour, t.TourCode, t.TourCodeKey, t.ID, owners)
}

func (ts *tourStore) translate(err error, t *model.Tour) error {
	if err == nil {
		return nil
	}
	if repository.IsUniqueViolation(err) {
		return &repository.DuplicateNameError{Kind: model.KindTour, Name: t.TourCode}
	}
	return fmt.Errorf("save tour %s: %w", t.ID, err)
}

func (ts *tourStore) importAll(ctx context.Context, tours []model.Tour, now time.Time) error {
	for i := range tours {
		t := tours[i]
		if err := repository.PrepareTourImport(&t, now); err != nil {
			return fmt.Errorf("import tour %q: %w", t.TourCode, err)
		}
		if err := ts.checkUnique(ctx, &t); err != nil {
			return err
		}
		doc, err := encodeTour(&t)
		if err != nil {
			return err
		}
		if err := ts.table(ctx).Create(&doc).Error; err != nil {
			return fmt.Errorf("import tour %s: %w", doc.ID, err)
		}
	}
	return nil
}
