package repository

import (
	"context"

	"tourops/internal/model"

	"github.com/google/uuid"
)

// Backend names a storage implementation.
type Backend string

const (
	BackendLocal  Backend = "local"
	BackendRemote Backend = "remote"
)

// ListQuery filters a list call. An empty Status or StatusAll disables the
// status filter.
type ListQuery struct {
	Search string
	Status model.Status
}

// MasterRepository is the uniform CRUD contract of a record kind.
type MasterRepository[T any] interface {
	List(ctx context.Context, q ListQuery) ([]T, error)
	Get(ctx context.Context, id uuid.UUID) (*T, error)
	Create(ctx context.Context, item *T) (*T, error)
	// Update loads the record, hands it to apply and persists the result.
	// The id and creation time cannot be changed by apply.
	Update(ctx context.Context, id uuid.UUID, apply func(*T) error) error
	ToggleStatus(ctx context.Context, id uuid.UUID) error
	Duplicate(ctx context.Context, id uuid.UUID) (*T, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// LineItemRepository mutates one financial subcollection of a tour. Items are
// addressed by their stable id and scoped by the tour id. Every mutation
// recomputes and persists the tour summary.
type LineItemRepository[T any] interface {
	Add(ctx context.Context, tourID uuid.UUID, item T) (uuid.UUID, error)
	Update(ctx context.Context, tourID, itemID uuid.UUID, item T) error
	Remove(ctx context.Context, tourID, itemID uuid.UUID) error
}

// TourRepository manages tours. Update ignores changes to the four line-item
// collections; use the line-item repositories for those.
type TourRepository interface {
	MasterRepository[model.Tour]
	Destinations() LineItemRepository[model.TourDestination]
	Expenses() LineItemRepository[model.TourExpense]
	Meals() LineItemRepository[model.TourMeal]
	Allowances() LineItemRepository[model.TourAllowance]
}

// DataStore is the full repository surface of a backend.
type DataStore interface {
	Backend() Backend

	Guides() MasterRepository[model.Guide]
	Companies() MasterRepository[model.Company]
	Nationalities() MasterRepository[model.Nationality]
	Provinces() MasterRepository[model.Province]
	TouristDestinations() MasterRepository[model.TouristDestination]
	Shoppings() MasterRepository[model.Shopping]
	ExpenseCategories() MasterRepository[model.ExpenseCategory]
	DetailedExpenses() MasterRepository[model.DetailedExpense]
	Tours() TourRepository

	// ExportData reads every record, tours with their line items.
	ExportData(ctx context.Context) (*model.Snapshot, error)
	// ImportData writes the snapshot keeping its ids, master data first and
	// tours last. It runs in one transaction.
	ImportData(ctx context.Context, s *model.Snapshot) error
	// ReplaceData clears the store and imports s in one transaction.
	ReplaceData(ctx context.Context, s *model.Snapshot) error
	ClearAllData(ctx context.Context) error
	Close() error
}
