package model

import "time"

// Snapshot is the full content of a data store, as produced by export and
// consumed by import.
type Snapshot struct {
	Version             int                  `json:"version"`
	ExportedAt          time.Time            `json:"exported_at"`
	Guides              []Guide              `json:"guides"`
	Companies           []Company            `json:"companies"`
	Nationalities       []Nationality        `json:"nationalities"`
	Provinces           []Province           `json:"provinces"`
	TouristDestinations []TouristDestination `json:"tourist_destinations"`
	Shoppings           []Shopping           `json:"shoppings"`
	ExpenseCategories   []ExpenseCategory    `json:"expense_categories"`
	DetailedExpenses    []DetailedExpense    `json:"detailed_expenses"`
	Tours               []Tour               `json:"tours"`
}

const SnapshotVersion = 1

// Count returns the number of records per kind.
func (s *Snapshot) Count() map[Kind]int {
	return map[Kind]int{
		KindGuide:              len(s.Guides),
		KindCompany:            len(s.Companies),
		KindNationality:        len(s.Nationalities),
		KindProvince:           len(s.Provinces),
		KindTouristDestination: len(s.TouristDestinations),
		KindShopping:           len(s.Shoppings),
		KindExpenseCategory:    len(s.ExpenseCategories),
		KindDetailedExpense:    len(s.DetailedExpenses),
		KindTour:               len(s.Tours),
	}
}

// ChangeAction is what happened to a record.
type ChangeAction string

const (
	ActionCreated  ChangeAction = "created"
	ActionUpdated  ChangeAction = "updated"
	ActionDeleted  ChangeAction = "deleted"
	ActionImported ChangeAction = "imported"
	ActionCleared  ChangeAction = "cleared"
)

// ChangeEvent is broadcast to websocket clients after a mutation.
type ChangeEvent struct {
	Kind   Kind         `json:"kind"`
	Action ChangeAction `json:"action"`
	ID     string       `json:"id,omitempty"`
	At     time.Time    `json:"at"`
}
