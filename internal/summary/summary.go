// Package summary folds a tour's line items into its cascading settlement.
package summary

import (
	"errors"

	"tourops/internal/model"

	"github.com/shopspring/decimal"
)

// ErrLineItemsNotLoaded is returned when a tour was read without its
// subcollections. Folding it would silently report zero totals.
var ErrLineItemsNotLoaded = errors.New("tour line items are not loaded")

// ClampGuests bounds a per-row guest override by the tour's guest count.
// A nil override means the whole group. When the tour has no guests the
// override is used as is.
func ClampGuests(guests *int, tourGuests int) int {
	if guests == nil {
		return tourGuests
	}
	g := *guests
	if tourGuests == 0 {
		return g
	}
	if g < 0 {
		return 0
	}
	if g > tourGuests {
		return tourGuests
	}
	return g
}

// LineTotal is price multiplied by the clamped guest count.
func LineTotal(price decimal.Decimal, guests *int, tourGuests int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(ClampGuests(guests, tourGuests))))
}

// AllowanceTotal is price multiplied by quantity, which defaults to 1.
func AllowanceTotal(price decimal.Decimal, quantity *int) decimal.Decimal {
	q := 1
	if quantity != nil {
		q = *quantity
	}
	return price.Mul(decimal.NewFromInt(int64(q)))
}

// Totals holds the per-collection sums.
type Totals struct {
	Destinations decimal.Decimal `json:"destinations"`
	Expenses     decimal.Decimal `json:"expenses"`
	Meals        decimal.Decimal `json:"meals"`
	Allowances   decimal.Decimal `json:"allowances"`
}

// Tabs is the sum of the four collections.
func (t Totals) Tabs() decimal.Decimal {
	return t.Destinations.Add(t.Expenses).Add(t.Meals).Add(t.Allowances)
}

// Collect sums each subcollection of tour.
func Collect(tour *model.Tour) (Totals, error) {
	if !tour.LineItemsLoaded() {
		return Totals{}, ErrLineItemsNotLoaded
	}

	guests := tour.TotalGuests
	var t Totals
	for _, d := range tour.Destinations {
		t.Destinations = t.Destinations.Add(LineTotal(d.Price, d.Guests, guests))
	}
	for _, e := range tour.Expenses {
		t.Expenses = t.Expenses.Add(LineTotal(e.Price, e.Guests, guests))
	}
	for _, m := range tour.Meals {
		t.Meals = t.Meals.Add(LineTotal(m.Price, m.Guests, guests))
	}
	for _, a := range tour.Allowances {
		t.Allowances = t.Allowances.Add(AllowanceTotal(a.Price, a.Quantity))
	}
	return t, nil
}

// Calculate derives the summary of tour. The three operator inputs are taken
// from the tour's current summary.
func Calculate(tour *model.Tour) (model.TourSummary, error) {
	totals, err := Collect(tour)
	if err != nil {
		return model.TourSummary{}, err
	}

	in := tour.Summary
	s := model.TourSummary{
		TotalTabs:             totals.Tabs(),
		AdvancePayment:        in.AdvancePayment,
		CompanyTip:            in.CompanyTip,
		CollectionsForCompany: in.CollectionsForCompany,
	}
	s.TotalAfterAdvance = s.TotalTabs.Sub(s.AdvancePayment)
	s.TotalAfterCollections = s.TotalAfterAdvance.Sub(s.CollectionsForCompany)
	s.TotalAfterTip = s.TotalAfterCollections.Add(s.CompanyTip)
	s.FinalTotal = s.TotalAfterTip
	return s, nil
}

// Recompute replaces tour.Summary with a fresh calculation.
func Recompute(tour *model.Tour) error {
	s, err := Calculate(tour)
	if err != nil {
		return err
	}
	tour.Summary = s
	return nil
}
