package remote

import (
	"context"
	"fmt"

	"tourops/internal/model"
	"tourops/internal/repository"

	"gorm.io/gorm"
)

func (s *Store) ExportData(ctx context.Context) (*model.Snapshot, error) {
	var snap *model.Snapshot
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		snap, err = repository.ExportSnapshot(ctx, s, s.now())
		return err
	})
	return snap, err
}

// ImportData writes the snapshot in one transaction: a failure on any record
// leaves the store as it was.
func (s *Store) ImportData(ctx context.Context, snap *model.Snapshot) error {
	if err := repository.ValidateSnapshot(snap); err != nil {
		return err
	}
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		return s.importSnapshot(ctx, snap)
	})
}

func (s *Store) ReplaceData(ctx context.Context, snap *model.Snapshot) error {
	if err := repository.ValidateSnapshot(snap); err != nil {
		return err
	}
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.clear(ctx); err != nil {
			return err
		}
		return s.importSnapshot(ctx, snap)
	})
}

func (s *Store) ClearAllData(ctx context.Context) error {
	return s.tx.RunInTx(ctx, s.clear)
}

// clear empties children before parents.
func (s *Store) clear(ctx context.Context) error {
	db := s.conn(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	models := []any{
		&model.TourDestination{},
		&model.TourExpense{},
		&model.TourMeal{},
		&model.TourAllowance{},
		&model.Tour{},
		&model.DetailedExpense{},
		&model.ExpenseCategory{},
		&model.Shopping{},
		&model.TouristDestination{},
		&model.Province{},
		&model.Nationality{},
		&model.Company{},
		&model.Guide{},
	}
	for _, m := range models {
		if err := db.Delete(m).Error; err != nil {
			return fmt.Errorf("clear %T: %w", m, err)
		}
	}
	return nil
}

func (s *Store) importSnapshot(ctx context.Context, snap *model.Snapshot) error {
	now := s.now()
	steps := []func() error{
		func() error { return s.guides.importAll(ctx, snap.Guides, now) },
		func() error { return s.companies.importAll(ctx, snap.Companies, now) },
		func() error { return s.nationalities.importAll(ctx, snap.Nationalities, now) },
		func() error { return s.provinces.importAll(ctx, snap.Provinces, now) },
		func() error { return s.touristDestinations.importAll(ctx, snap.TouristDestinations, now) },
		func() error { return s.shoppings.importAll(ctx, snap.Shoppings, now) },
		func() error { return s.expenseCategories.importAll(ctx, snap.ExpenseCategories, now) },
		func() error { return s.detailedExpenses.importAll(ctx, snap.DetailedExpenses, now) },
		func() error { return s.tours.importAll(ctx, snap.Tours, now) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
