package repository

import (
	"context"
	"fmt"
	"time"

	"tourops/internal/model"
)

// ExportSnapshot reads every record through the repositories of ds. A tour
// listed without its line items is read again before it is exported.
func ExportSnapshot(ctx context.Context, ds DataStore, now time.Time) (*model.Snapshot, error) {
	all := ListQuery{Status: model.StatusAll}
	s := &model.Snapshot{Version: model.SnapshotVersion, ExportedAt: now}

	var err error
	if s.Guides, err = ds.Guides().List(ctx, all); err != nil {
		return nil, fmt.Errorf("export guides: %w", err)
	}
	if s.Companies, err = ds.Companies().List(ctx, all); err != nil {
		return nil, fmt.Errorf("export companies: %w", err)
	}
	if s.Nationalities, err = ds.Nationalities().List(ctx, all); err != nil {
		return nil, fmt.Errorf("export nationalities: %w", err)
	}
	if s.Provinces, err = ds.Provinces().List(ctx, all); err != nil {
		return nil, fmt.Errorf("export provinces: %w", err)
	}
	if s.TouristDestinations, err = ds.TouristDestinations().List(ctx, all); err != nil {
		return nil, fmt.Errorf("export tourist destinations: %w", err)
	}
	if s.Shoppings, err = ds.Shoppings().List(ctx, all); err != nil {
		return nil, fmt.Errorf("export shoppings: %w", err)
	}
	if s.ExpenseCategories, err = ds.ExpenseCategories().List(ctx, all); err != nil {
		return nil, fmt.Errorf("export expense categories: %w", err)
	}
	if s.DetailedExpenses, err = ds.DetailedExpenses().List(ctx, all); err != nil {
		return nil, fmt.Errorf("export detailed expenses: %w", err)
	}

	tours, err := ds.Tours().List(ctx, all)
	if err != nil {
		return nil, fmt.Errorf("export tours: %w", err)
	}
	for i := range tours {
		if tours[i].LineItemsLoaded() {
			continue
		}
		full, err := ds.Tours().Get(ctx, tours[i].ID)
		if err != nil {
			return nil, fmt.Errorf("export tour %s: %w", tours[i].ID, err)
		}
		tours[i] = *full
	}
	s.Tours = tours
	return s, nil
}

// ValidateSnapshot rejects snapshots this build cannot read.
func ValidateSnapshot(s *model.Snapshot) error {
	if s == nil {
		return invalid("empty snapshot")
	}
	if s.Version > model.SnapshotVersion {
		return invalid("snapshot version %d is newer than supported version %d", s.Version, model.SnapshotVersion)
	}
	return nil
}
