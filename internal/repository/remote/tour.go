package remote

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
	"gorm.io/gorm/clause"
)

// tourStore keeps tours in a parent table and their line items in four
// child tables ordered by position.
type tourStore struct {
	s *Store
}

func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position, id")
}

func withLineItems(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Destinations", byPosition).
		Preload("Expenses", byPosition).
		Preload("Meals", byPosition).
		Preload("Allowances", byPosition)
}

// List reads every matching tour with its line items.
func (ts *tourStore) List(ctx context.Context, q repository.ListQuery) ([]model.Tour, error) {
	var tours []model.Tour
	db := withLineItems(ts.s.conn(ctx))
	if q.Status != "" && q.Status != model.StatusAll {
		db = db.Where("status = ?", q.Status)
	}
	if err := db.Find(&tours).Error; err != nil {
		return nil, fmt.Errorf("list tours: %w", err)
	}
	for i := range tours {
		tours[i].EnsureLineItems()
	}
	tours = repository.FilterTours(tours, q)
	repository.SortTours(tours)
	return tours, nil
}

func (ts *tourStore) Get(ctx context.Context, id uuid.UUID) (*model.Tour, error) {
	var t model.Tour
	err := withLineItems(ts.s.conn(ctx)).First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.NotFound(model.KindTour, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get tour %s: %w", id, err)
	}
	t.EnsureLineItems()
	return &t, nil
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
		if err := ts.insert(ctx, t); err != nil {
			return err
		}
		dup = t
		return ts.insertLineItems(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	return dup, nil
}

func (ts *tourStore) Delete(ctx context.Context, id uuid.UUID) error {
	return ts.s.tx.RunInTx(ctx, func(ctx context.Context) error {
		db := ts.s.conn(ctx)
		children := []any{&model.TourDestination{}, &model.TourExpense{}, &model.TourMeal{}, &model.TourAllowance{}}
		for _, child := range children {
			if err := db.Where("tour_id = ?", id).Delete(child).Error; err != nil {
				return fmt.Errorf("delete tour %s items: %w", id, err)
			}
		}
		res := db.Where("id = ?", id).Delete(&model.Tour{})
		if res.Error != nil {
			return fmt.Errorf("delete tour %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return repository.NotFound(model.KindTour, id)
		}
		return nil
	})
}

func (ts *tourStore) Destinations() repository.LineItemRepository[model.TourDestination] {
	return &itemStore[model.TourDestination, *model.TourDestination]{
		ts: ts, table: "tour_destinations",
		items: func(t *model.Tour) *[]model.TourDestination { return &t.Destinations },
	}
}

func (ts *tourStore) Expenses() repository.LineItemRepository[model.TourExpense] {
	return &itemStore[model.TourExpense, *model.TourExpense]{
		ts: ts, table: "tour_expenses",
		items: func(t *model.Tour) *[]model.TourExpense { return &t.Expenses },
	}
}

func (ts *tourStore) Meals() repository.LineItemRepository[model.TourMeal] {
	return &itemStore[model.TourMeal, *model.TourMeal]{
		ts: ts, table: "tour_meals",
		items: func(t *model.Tour) *[]model.TourMeal { return &t.Meals },
	}
}

func (ts *tourStore) Allowances() repository.LineItemRepository[model.TourAllowance] {
	return &itemStore[model.TourAllowance, *model.TourAllowance]{
		ts: ts, table: "tour_allowances",
		items: func(t *model.Tour) *[]model.TourAllowance { return &t.Allowances },
	}
}

// insert writes the parent row only.
func (ts *tourStore) insert(ctx context.Context, t *model.Tour) error {
	if err := ts.checkUnique(ctx, t); err != nil {
		return err
	}
	err := ts.s.conn(ctx).Omit(clause.Associations).Create(t).Error
	return ts.translate(err, t)
}

func (ts *tourStore) save(ctx context.Context, t *model.Tour) error {
	err := ts.s.conn(ctx).Omit(clause.Associations).Save(t).Error
	return ts.translate(err, t)
}

// touch recomputes the summary after a line-item change and persists it in
// the caller's transaction.
func (ts *tourStore) touch(ctx context.Context, t *model.Tour) error {
	if err := summary.Recompute(t); err != nil {
		return err
	}
	t.UpdatedAt = ts.s.now()
	return ts.save(ctx, t)
}

// insertLineItems writes every line item of t with positions matching the
// slice order.
func (ts *tourStore) insertLineItems(ctx context.Context, t *model.Tour) error {
	db := ts.s.conn(ctx)
	if err := createItems(db, t.ID, t.Destinations); err != nil {
		return fmt.Errorf("insert tour_destinations: %w", err)
	}
	if err := createItems(db, t.ID, t.Expenses); err != nil {
		return fmt.Errorf("insert tour_expenses: %w", err)
	}
	if err := createItems(db, t.ID, t.Meals); err != nil {
		return fmt.Errorf("insert tour_meals: %w", err)
	}
	if err := createItems(db, t.ID, t.Allowances); err != nil {
		return fmt.Errorf("insert tour_allowances: %w", err)
	}
	return nil
}

func createItems[T any, PT model.LineItemPtr[T]](db *gorm.DB, tourID uuid.UUID, items []T) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		PT(&items[i]).Attach(tourID, i)
	}
	return db.Create(&items).Error
}

func (ts *tourStore) checkUnique(ctx context.Context, t *model.Tour) error {
	taken, err := ts.s.nameTaken(ctx, string(model.KindTour), "tour_code_key", t.TourCodeKey, t.ID)
	if err != nil {
		return err
	}
	if taken {
		return &repository.DuplicateNameError{Kind: model.KindTour, Name: t.TourCode}
	}
	return nil
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
		if err := ts.insert(ctx, &t); err != nil {
			return fmt.Errorf("import tour %s: %w", t.ID, err)
		}
		if err := ts.insertLineItems(ctx, &t); err != nil {
			return fmt.Errorf("import tour %s: %w", t.ID, err)
		}
	}
	return nil
}
