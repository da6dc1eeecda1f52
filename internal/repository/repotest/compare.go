package repotest

import (
	"testing"

	"tourops/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type masterView struct {
	ID       uuid.UUID
	Name     string
	Status   model.Status
	Keywords []string
}

func viewMasters[T any, PT model.MasterPtr[T]](items []T) []masterView {
	out := make([]masterView, 0, len(items))
	for i := range items {
		b := PT(&items[i]).Meta()
		out = append(out, masterView{ID: b.ID, Name: b.Name, Status: b.Status, Keywords: b.SearchKeywords})
	}
	return out
}

type itemView struct {
	ID    uuid.UUID
	Ref   string
	Price string
}

type tourView struct {
	ID           uuid.UUID
	Code         string
	Status       model.Status
	Guide        string
	Company      string
	Nationality  string
	Guests       int
	Days         int
	Destinations []itemView
	Expenses     []itemView
	Meals        []itemView
	Allowances   []itemView
	Shoppings    int
	Summary      [8]string
}

func viewTours(tours []model.Tour) []tourView {
	out := make([]tourView, 0, len(tours))
	for _, t := range tours {
		v := tourView{
			ID:          t.ID,
			Code:        t.TourCode,
			Status:      t.Status,
			Guide:       t.GuideRef.NameAtBooking,
			Company:     t.CompanyRef.NameAtBooking,
			Nationality: t.ClientNationalityRef.NameAtBooking,
			Guests:      t.TotalGuests,
			Days:        t.TotalDays,
			Shoppings:   len(t.Shoppings),
		}
		for _, d := range t.Destinations {
			v.Destinations = append(v.Destinations, itemView{d.ID, d.DestinationRef.NameAtBooking, d.Price.String()})
		}
		for _, e := range t.Expenses {
			v.Expenses = append(v.Expenses, itemView{e.ID, e.ExpenseRef.NameAtBooking, e.Price.String()})
		}
		for _, m := range t.Meals {
			v.Meals = append(v.Meals, itemView{m.ID, m.Name, m.Price.String()})
		}
		for _, a := range t.Allowances {
			v.Allowances = append(v.Allowances, itemView{a.ID, a.ProvinceRef.NameAtBooking, a.Price.String()})
		}
		s := t.Summary
		v.Summary = [8]string{
			s.TotalTabs.String(), s.AdvancePayment.String(), s.TotalAfterAdvance.String(), s.CompanyTip.String(),
			s.TotalAfterTip.String(), s.CollectionsForCompany.String(), s.TotalAfterCollections.String(), s.FinalTotal.String(),
		}
		out = append(out, v)
	}
	return out
}

// AssertSameContent compares two snapshots record by record, ignoring
// timestamps and storage precision.
func AssertSameContent(t *testing.T, want, got *model.Snapshot) {
	t.Helper()
	assert.Equal(t, viewMasters(want.Guides), viewMasters(got.Guides), "guides")
	assert.Equal(t, viewMasters(want.Companies), viewMasters(got.Companies), "companies")
	assert.Equal(t, viewMasters(want.Nationalities), viewMasters(got.Nationalities), "nationalities")
	assert.Equal(t, viewMasters(want.Provinces), viewMasters(got.Provinces), "provinces")
	assert.Equal(t, viewMasters(want.TouristDestinations), viewMasters(got.TouristDestinations), "tourist destinations")
	assert.Equal(t, viewMasters(want.Shoppings), viewMasters(got.Shoppings), "shoppings")
	assert.Equal(t, viewMasters(want.ExpenseCategories), viewMasters(got.ExpenseCategories), "expense categories")
	assert.Equal(t, viewMasters(want.DetailedExpenses), viewMasters(got.DetailedExpenses), "detailed expenses")
	assert.Equal(t, viewTours(want.Tours), viewTours(got.Tours), "tours")
}
