package summary

import (
	"testing"

	"tourops/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func emptyTour(guests int) *model.Tour {
	t := &model.Tour{TotalGuests: guests}
	t.EnsureLineItems()
	return t
}

func TestClampGuests(t *testing.T) {
	assert.Equal(t, 4, ClampGuests(intPtr(10), 4))
	assert.Equal(t, 0, ClampGuests(intPtr(-1), 4))
	assert.Equal(t, 3, ClampGuests(intPtr(3), 4))
	assert.Equal(t, 4, ClampGuests(nil, 4))
	assert.Equal(t, 7, ClampGuests(intPtr(7), 0))
	assert.Equal(t, 0, ClampGuests(nil, 0))
}

func TestCalculate_ClampBoundary(t *testing.T) {
	price := decimal.NewFromInt(100000)

	tour := emptyTour(4)
	tour.Destinations = []model.TourDestination{{Price: price, Guests: intPtr(10)}}
	s, err := Calculate(tour)
	require.NoError(t, err)
	assert.Equal(t, "400000", s.TotalTabs.String())

	tour.Destinations = []model.TourDestination{{Price: price, Guests: intPtr(-1)}}
	s, err = Calculate(tour)
	require.NoError(t, err)
	assert.True(t, s.TotalTabs.IsZero())

	tour = emptyTour(0)
	tour.Destinations = []model.TourDestination{{Price: price, Guests: intPtr(7)}}
	s, err = Calculate(tour)
	require.NoError(t, err)
	assert.Equal(t, "700000", s.TotalTabs.String())
}

func TestCalculate_Cascade(t *testing.T) {
	tour := emptyTour(1)
	tour.Allowances = []model.TourAllowance{{Price: decimal.NewFromInt(1000000)}}
	tour.Summary.AdvancePayment = decimal.NewFromInt(200000)
	tour.Summary.CollectionsForCompany = decimal.NewFromInt(50000)
	tour.Summary.CompanyTip = decimal.NewFromInt(30000)

	s, err := Calculate(tour)
	require.NoError(t, err)
	assert.Equal(t, "1000000", s.TotalTabs.String())
	assert.Equal(t, "800000", s.TotalAfterAdvance.String())
	assert.Equal(t, "750000", s.TotalAfterCollections.String())
	assert.Equal(t, "780000", s.TotalAfterTip.String())
	assert.Equal(t, "780000", s.FinalTotal.String())
	assert.Equal(t, "200000", s.AdvancePayment.String())
}

func TestCalculate_AllCollections(t *testing.T) {
	tour := emptyTour(2)
	tour.Destinations = []model.TourDestination{
		{Price: decimal.NewFromInt(50)},
		{Price: decimal.NewFromInt(30), Guests: intPtr(1)},
	}
	tour.Expenses = []model.TourExpense{{Price: decimal.RequireFromString("12.5")}}
	tour.Meals = []model.TourMeal{{Price: decimal.NewFromInt(10), Guests: intPtr(5)}}
	tour.Allowances = []model.TourAllowance{
		{Price: decimal.NewFromInt(20), Quantity: intPtr(3)},
		{Price: decimal.NewFromInt(5)},
	}

	totals, err := Collect(tour)
	require.NoError(t, err)
	assert.Equal(t, "130", totals.Destinations.String())
	assert.Equal(t, "25", totals.Expenses.String())
	assert.Equal(t, "20", totals.Meals.String())
	assert.Equal(t, "65", totals.Allowances.String())

	s, err := Calculate(tour)
	require.NoError(t, err)
	assert.Equal(t, "240", s.TotalTabs.String())
	assert.Equal(t, "240", s.FinalTotal.String())
}

func TestCalculate_EmptyCollectionsGiveZero(t *testing.T) {
	s, err := Calculate(emptyTour(3))
	require.NoError(t, err)
	assert.True(t, s.TotalTabs.IsZero())
	assert.True(t, s.FinalTotal.IsZero())
}

func TestCalculate_RefusesUnloadedTour(t *testing.T) {
	tour := emptyTour(3)
	tour.Meals = nil

	_, err := Calculate(tour)
	assert.ErrorIs(t, err, ErrLineItemsNotLoaded)

	tour.Summary.FinalTotal = decimal.NewFromInt(99)
	assert.ErrorIs(t, Recompute(tour), ErrLineItemsNotLoaded)
	assert.Equal(t, "99", tour.Summary.FinalTotal.String())
}

func TestCalculate_Deterministic(t *testing.T) {
	tour := emptyTour(3)
	tour.Meals = []model.TourMeal{{Price: decimal.RequireFromString("33.33"), Guests: intPtr(2)}}
	tour.Summary.CompanyTip = decimal.RequireFromString("0.01")

	first, err := Calculate(tour)
	require.NoError(t, err)
	second, err := Calculate(tour)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.NoError(t, Recompute(tour))
	assert.Equal(t, "66.67", tour.Summary.FinalTotal.String())
}
