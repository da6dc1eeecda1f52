package repository

import (
	"fmt"
	"sort"
	"time"

	"tourops/internal/model"
	"tourops/internal/summary"
	"tourops/pkg/normalize"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// CopySuffix is appended to the name of a duplicated record.
const CopySuffix = " (Copy)"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate runs the struct tags of v.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// PrepareCreate readies a new catalog record: fresh id, active status, both
// timestamps set to now, keywords and key derived from the trimmed name.
func PrepareCreate(item model.Master, now time.Time) error {
	item.TrimFields()
	b := item.Meta()
	b.ID = uuid.New()
	b.Status = model.StatusActive
	b.CreatedAt = now
	b.UpdatedAt = now
	return finishMaster(item)
}

// PrepareUpdate readies a patched record. prev is the stored state; its id
// and creation time win over whatever the patch did.
func PrepareUpdate(item model.Master, prev model.MasterBase, now time.Time) error {
	item.TrimFields()
	b := item.Meta()
	b.ID = prev.ID
	b.CreatedAt = prev.CreatedAt
	if !b.Status.Valid() {
		b.Status = prev.Status
	}
	b.UpdatedAt = now
	return finishMaster(item)
}

// PrepareCopy turns a loaded record into its duplicate.
func PrepareCopy(item model.Master, now time.Time) error {
	b := item.Meta()
	b.Name += CopySuffix
	b.ID = uuid.New()
	b.CreatedAt = now
	b.UpdatedAt = now
	item.TrimFields()
	return finishMaster(item)
}

// PrepareImport readies a record read from a snapshot. Ids and timestamps
// are kept when present.
func PrepareImport(item model.Master, now time.Time) error {
	item.TrimFields()
	b := item.Meta()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if !b.Status.Valid() {
		b.Status = model.StatusActive
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = b.CreatedAt
	}
	return finishMaster(item)
}

func finishMaster(item model.Master) error {
	b := item.Meta()
	b.NameKey = normalize.Key(b.Name)
	b.SearchKeywords = normalize.Keywords(b.Name)
	if b.NameKey == "" {
		return invalid("%s name is required", item.EntityKind())
	}
	return Validate(item)
}

// CheckUnique fails when a record other than self already owns key.
func CheckUnique(kind model.Kind, name, key string, self uuid.UUID, owners []KeyOwner) error {
	for _, o := range owners {
		if o.Key == key && o.ID != self {
			return &DuplicateNameError{Kind: kind, Name: name}
		}
	}
	return nil
}

// KeyOwner pairs a record id with its normalized name.
type KeyOwner struct {
	ID  uuid.UUID
	Key string
}

// PrepareNewTour readies a tour for creation. Line items are dropped; they
// are added one by one afterwards. The operator inputs of the summary are kept.
func PrepareNewTour(t *model.Tour, now time.Time) error {
	t.TrimFields()
	t.ID = uuid.New()
	t.Status = model.StatusActive
	t.CreatedAt = now
	t.UpdatedAt = now
	t.Destinations = []model.TourDestination{}
	t.Expenses = []model.TourExpense{}
	t.Meals = []model.TourMeal{}
	t.Allowances = []model.TourAllowance{}
	return finishTour(t)
}

// PrepareTourUpdate readies a patched tour. Line items always come from prev.
func PrepareTourUpdate(t *model.Tour, prev *model.Tour, now time.Time) error {
	t.TrimFields()
	t.ID = prev.ID
	t.CreatedAt = prev.CreatedAt
	t.UpdatedAt = now
	if !t.Status.Valid() {
		t.Status = prev.Status
	}
	t.Destinations = prev.Destinations
	t.Expenses = prev.Expenses
	t.Meals = prev.Meals
	t.Allowances = prev.Allowances
	return finishTour(t)
}

// PrepareTourCopy turns a loaded tour into its duplicate, line items
// included under new ids.
func PrepareTourCopy(t *model.Tour, now time.Time) error {
	t.TourCode += CopySuffix
	t.ID = uuid.New()
	t.CreatedAt = now
	t.UpdatedAt = now
	t.TrimFields()
	t.EnsureLineItems()
	for i := range t.Destinations {
		t.Destinations[i].ID = uuid.New()
	}
	for i := range t.Expenses {
		t.Expenses[i].ID = uuid.New()
	}
	for i := range t.Meals {
		t.Meals[i].ID = uuid.New()
	}
	for i := range t.Allowances {
		t.Allowances[i].ID = uuid.New()
	}
	for i := range t.Shoppings {
		t.Shoppings[i].ID = uuid.New()
	}
	return finishTour(t)
}

// PrepareTourImport readies a tour read from a snapshot, keeping its ids.
func PrepareTourImport(t *model.Tour, now time.Time) error {
	t.TrimFields()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if !t.Status.Valid() {
		t.Status = model.StatusActive
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
	t.EnsureLineItems()
	for i := range t.Destinations {
		prepareImportedItem(&t.Destinations[i])
	}
	for i := range t.Expenses {
		prepareImportedItem(&t.Expenses[i])
	}
	for i := range t.Meals {
		prepareImportedItem(&t.Meals[i])
	}
	for i := range t.Allowances {
		prepareImportedItem(&t.Allowances[i])
	}
	return finishTour(t)
}

func prepareImportedItem(item model.LineItem) {
	item.TrimFields()
	if item.ItemID() == uuid.Nil {
		item.SetItemID(uuid.New())
	}
}

func finishTour(t *model.Tour) error {
	t.EnsureLineItems()
	for i := range t.Shoppings {
		if t.Shoppings[i].ID == uuid.Nil {
			t.Shoppings[i].ID = uuid.New()
		}
	}
	if !t.StartDate.IsZero() {
		t.StartDate = model.DateOnly(t.StartDate)
	}
	if !t.EndDate.IsZero() {
		t.EndDate = model.DateOnly(t.EndDate)
	}
	if !t.StartDate.IsZero() && !t.EndDate.IsZero() && t.EndDate.Before(t.StartDate) {
		return invalid("end date %s is before start date %s",
			t.EndDate.Format(time.DateOnly), t.StartDate.Format(time.DateOnly))
	}
	t.Derive()
	t.TourCodeKey = normalize.Key(t.TourCode)
	if t.TourCodeKey == "" {
		return invalid("tour code is required")
	}
	t.SearchKeywords = TourKeywords(t)
	if err := Validate(t); err != nil {
		return err
	}
	return summary.Recompute(t)
}

// TourKeywords merges the tokens of the tour code and the client name.
func TourKeywords(t *model.Tour) []string {
	set := make(map[string]struct{})
	for _, k := range normalize.Keywords(t.TourCode) {
		set[k] = struct{}{}
	}
	for _, k := range normalize.Keywords(t.ClientName) {
		set[k] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// PrepareItem trims and validates a line item and stamps it with id.
func PrepareItem(item model.LineItem, id uuid.UUID) error {
	item.TrimFields()
	item.SetItemID(id)
	return Validate(item)
}
