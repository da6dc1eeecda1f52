// Package repotest holds the behaviour every repository.DataStore must show.
// Backends run it from their own tests with a fresh store per case.
package repotest

import (
	"context"
	"testing"
	"time"

	"tourops/internal/model"
	"tourops/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty store. Cleanup is registered on t.
type Factory func(t *testing.T) repository.DataStore

// Run executes the contract suite.
func Run(t *testing.T, newStore Factory) {
	cases := []struct {
		name string
		fn   func(t *testing.T, ds repository.DataStore)
	}{
		{"MasterCreateGetList", testMasterCreateGetList},
		{"MasterSearchAndStatus", testMasterSearchAndStatus},
		{"NameUniqueness", testNameUniqueness},
		{"MasterUpdate", testMasterUpdate},
		{"MasterToggleStatus", testMasterToggleStatus},
		{"MasterDuplicate", testMasterDuplicate},
		{"MasterDelete", testMasterDelete},
		{"MasterValidation", testMasterValidation},
		{"RefSnapshotSurvivesRename", testRefSnapshotSurvivesRename},
		{"TourDerivedFields", testTourDerivedFields},
		{"TourCodeUniqueness", testTourCodeUniqueness},
		{"TourListOrderAndSearch", testTourListOrderAndSearch},
		{"TourListCarriesLineItems", testTourListCarriesLineItems},
		{"TourUpdateRecomputesSummary", testTourUpdateRecomputesSummary},
		{"MoneyKeptAtTwoPlaces", testMoneyKeptAtTwoPlaces},
		{"LineItemsRecomputeSummary", testLineItemsRecomputeSummary},
		{"LineItemAddressingByID", testLineItemAddressingByID},
		{"LineItemScopedByTour", testLineItemScopedByTour},
		{"TourDuplicateAndDelete", testTourDuplicateAndDelete},
		{"ExportImportRoundTrip", testExportImportRoundTrip},
		{"ImportIsAllOrNothing", testImportIsAllOrNothing},
		{"ImportRejectsDuplicateNamesInSnapshot", testImportRejectsDuplicateNamesInSnapshot},
		{"ReplaceAndClear", testReplaceAndClear},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.fn(t, newStore(t))
		})
	}
}

func intPtr(v int) *int { return &v }

func day(s string) time.Time {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return d
}

func guide(name string) *model.Guide {
	return &model.Guide{MasterBase: model.MasterBase{Name: name}}
}

func mustGuide(t *testing.T, ds repository.DataStore, name string) *model.Guide {
	t.Helper()
	g, err := ds.Guides().Create(context.Background(), guide(name))
	require.NoError(t, err)
	return g
}

func mustTour(t *testing.T, ds repository.DataStore, code string, guests int, start string) *model.Tour {
	t.Helper()
	tour, err := ds.Tours().Create(context.Background(), &model.Tour{
		TourCode:  code,
		Adults:    guests,
		StartDate: day(start),
		EndDate:   day(start).AddDate(0, 0, 2),
	})
	require.NoError(t, err)
	return tour
}

func guideNames(items []model.Guide) []string {
	out := make([]string, 0, len(items))
	for _, g := range items {
		out = append(out, g.Name)
	}
	return out
}

func testMasterCreateGetList(t *testing.T, ds repository.DataStore) {
	ctx := context.Background()

	created, err := ds.Guides().Create(ctx, &model.Guide{
		MasterBase: model.MasterBase{Name: "  Trần Minh  ", Status: model.StatusInactive},
		Phone:      " 0903 123 456 ",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, "Trần Minh", created.Name)
	assert.Equal(t, model.StatusActive, created.Status)
	assert.Equal(t, "0903 123 456", created.Phone)
	assert.Equal(t, []string{"minh", "tm", "tran", "tranminh"}, []string(created.SearchKeywords))
	assert.False(t, created.CreatedAt.IsZero())
	assert.WithinDuration(t, created.CreatedAt, created.UpdatedAt, time.Millisecond)

	got, err := ds.Guides().Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Trần Minh", got.Name)
	assert.Equal(t, created.SearchKeywords, got.SearchKeywords)

	mustGuide(t, ds, "Bùi Lan")
	mustGuide(t, ds, "Đỗ Hùng")

	list, err := ds.Guides().List(ctx, repository.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bùi Lan", "Đỗ Hùng", "Trần Minh"}, guideNames(list))

	_, err = ds.Guides().Get(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func testMasterSearchAndStatus(t *testing.T, ds repository.DataStore) {
	ctx := context.Background()
	repo := ds.Provinces()

	for _, name := range []string{"Hà Nội", "Hà Nam", "Huế"} {
		_, err := repo.Create(ctx, &model.Province{MasterBase: model.MasterBase{Name: name}})
		require.NoError(t, err)
	}
	hue, err := repo.List(ctx, repository.ListQuery{Search: "HUẾ"})
	require.NoError(t, err)
	require.Len(t, hue, 1)
	require.NoError(t, repo.ToggleStatus(ctx, hue[0].ID))

	got, err := repo.List(ctx, repository.ListQuery{Search: "ha"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = repo.List(ctx, repository.ListQuery{Search: "hanoi"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Hà Nội", got[0].Name)

	got, err = repo.List(ctx, repository.ListQuery{Status: model.StatusInactive})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Huế", got[0].Name)

	got, err = repo.List(ctx, repository.ListQuery{Status: model.StatusActive})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = repo.List(ctx, repository.ListQuery{Status: model.StatusAll})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func testNameUniqueness(t *testing.T, ds repository.DataStore) {
	ctx := context.Background()
	hanoi := mustGuide(t, ds, "Hà Nội")
	other := mustGuide(t, ds, "Hải Phòng")

	_, err := ds.Guides().Create(ctx, guide("ha noi"))
	var dup *repository.DuplicateNameError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, model.KindGuide, dup.Kind)
	assert.Equal(t, "ha noi", dup.Name)

	err = ds.Guides().Update(ctx, other.ID, func(g *model.Guide) error {
		g.Name = "ha noi"
		return nil
	})
	assert.True(t, repository.IsDuplicateName(err))

	err = ds.Guides().Update(ctx, hanoi.ID, func(g *model.Guide) error {
		g.Name = "ha noi"
		return nil
	})
	require.NoError(t, err)

	// uniqueness is per kind
	_, err = ds.Provinces().Create(ctx, &model.Province{MasterBase: model.MasterBase{Name: "Hà Nội"}})
	assert.NoError(t, err)

	list, err := ds.Guides().List(ctx, repository.ListQuery{})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func testMasterUpdate(t *testing.T, ds repository.DataStore) {
	ctx := context.Background()
	created := mustGuide(t, ds, "Lan")
	time.Sleep(5 * time.Millisecond)

	err := ds.Guides().Update(ctx, created.ID, func(g *model.Guide) error {
		g.ID = uuid.New()
		g.CreatedAt = time.Time{}
		g.Name = " Nguyễn Lan "
		g.Email = "lan@example.com"
		return nil
	})
	require.NoError(t, err)

	got, err := ds.Guides().Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nguyễn Lan", got.Name)
	assert.Equal(t, "lan@example.com", got.Email)
	assert.WithinDuration(t, created.CreatedAt, got.CreatedAt, time.Millisecond)
	assert.True(t, got.UpdatedAt.After(created.UpdatedAt))
	assert.Contains(t, got.SearchKeywords, "nguyenlan")

	err = ds.Guides().Update(ctx, uuid.New(), func(*model.Guide) error { return nil })
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = ds.Guides().Update(ctx, created.ID, func(g *model.Guide) error {
		g.Email = "broken"
		return nil
	})
	assert.ErrorIs(t, err, repository.ErrInvalidInput)
}

func testMasterToggleStatus(t *testing.T, ds repository.DataStore) {
	ctx := context.Background()
	g := mustGuide(t, ds, "Lan")

	require.NoError(t, ds.Guides().ToggleStatus(ctx, g.ID))
	got, err := ds.Guides().Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInactive, got.Status)

	require.NoError(t, ds.Guides().ToggleStatus(ctx, g.ID))
	got, err = ds.Guides().Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, got.Status)

	assert.ErrorIs(t, ds.Guides().ToggleStatus(ctx, uuid.New()), repository.ErrNotFound)
}

func testMasterDuplicate(t *testing.T, ds repository.DataStore) {
	ctx := context.Background()
	province, err := ds.Provinces().Create(ctx, &model.Province{MasterBase: model.MasterBase{Name: "Quảng Ninh"}})
	require.NoError(t, err)
	src, err := ds.TouristDestinations().Create(ctx, &model.TouristDestination{
		MasterBase:  model.MasterBase{Name: "Vịnh Hạ Long"},
		Price:       decimal.NewFromInt(250000),
		ProvinceRef: model.NewRef(&province.MasterBase),
	})
	require.NoError(t, err)

	dup, err := ds.TouristDestinations().Duplicate(ctx, src.ID)
	require.NoError(t, err)
	assert.NotEqual(t, src.ID, dup.ID)
	assert.Equal(t, "Vịnh Hạ Long (Copy)", dup.Name)
	assert.Contains(t, dup.SearchKeywords, "(copy)")
	assert.Equal(t, "250000", dup.Price.String())
	assert.Equal(t, "Quảng Ninh", dup.ProvinceRef.NameAtBooking)

	got, err := ds.TouristDestinations().Get(ctx, dup.ID)
	require.NoError(t, err)
	assert.Equal(t, "Vịnh Hạ Long (Copy)", got.Name)

	_, err = ds.TouristDestinations().Duplicate(ctx, src.ID)
	assert.True(t, repository.IsDuplicateName(err))

	_, err = ds.TouristDestinations().Duplicate(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func testMasterDelete(t *testing.T, ds repository.DataStore) {
	ctx := context.Background()
	g := mustGuide(t, ds, "Lan")

	require.NoError(t, ds.Guides().Delete(ctx, g.ID))
	_, err := ds.Guides().Get(ctx, g.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, ds.Guides().Delete(ctx, g.ID), repository.ErrNotFound)

	// the name is free again
	_, err = ds.Guides().Create(ctx, guide("lan"))
	assert.NoError(t, err)
}

func testMasterValidation(t *testing.T, ds repository.DataStore) {
	ctx := context.Background()

	_, err := ds.Guides().Create(ctx, guide("   "))
	assert.ErrorIs(t, err, repository.ErrInvalidInput)

	_, err = ds.Companies().Create(ctx, &model.Company{MasterBase: model.MasterBase{Name: "Vietravel"}, Email: "nope"})
	assert.ErrorIs(t, err, repository.ErrInvalidInput)

	list, err := ds.Guides().List(ctx, repository.ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func testRefSnapshotSurvivesRename(t *testing.T, ds repository.DataStore) {
	ctx := context.Background()
	category, err := ds.ExpenseCategories().Create(ctx, &model.ExpenseCategory{MasterBase: model.MasterBase{Name: "Vận chuyển"}})
	require.NoError(t, err)
	expense, err := ds.DetailedExpenses().Create(ctx, &model.DetailedExpense{
		MasterBase:  model.MasterBase{Name: "Xe 45 chỗ"},
		Price:       decimal.NewFromInt(3000000),
		CategoryRef: model.NewRef(&category.MasterBase),
	})
	require.NoError(t, err)

	g := mustGuide(t, ds, "Lan")
	tour, err := ds.Tours().Create(ctx, &model.Tour{TourCode: "REF-01", Adults: 2, GuideRef: model.NewRef(&g.MasterBase)})
	require.NoError(t, err)
	_, err = ds.Tours().Expenses().Add(ctx, tour.ID, model.TourExpense{
		ExpenseRef: model.NewRef(&expense.MasterBase),
		Price:      expense.Price,
	})
	require.NoError(t, err)

	require.NoError(t, ds.ExpenseCategories().Update(ctx, category.ID, func(c *model.ExpenseCategory) error {
		c.Name = "Xe cộ"
		return nil
	}))
	require.NoError(t, ds.DetailedExpenses().Update(ctx, expense.ID, func(e *model.DetailedExpense) error {
		e.Name = "Xe 29 chỗ"
		return nil
	}))
	require.NoError(t, ds.Guides().Update(ctx, g.ID, func(g *model.Guide) error {
		g.Name = "Lan Anh"
		return nil
	}))

	gotExpense, err := ds.DetailedExpenses().Get(ctx, expense.ID)
	require.NoError(t, err)
	assert.Equal(t, "Vận chuyển", gotExpense.CategoryRef.NameAtBooking)
	require.NotNil(t, gotExpense.CategoryRef.ID)
	assert.Equal(t, category.ID, *gotExpense.CategoryRef.ID)

	gotTour, err := ds.Tours().Get(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lan", gotTour.GuideRef.NameAtBooking)
	require.Len(t, gotTour.Expenses, 1)
	assert.Equal(t, "Xe 45 chỗ", gotTour.Expenses[0].ExpenseRef.NameAtBooking)
	require.NotNil(t, gotTour.Expenses[0].ExpenseRef.ID)
	assert.Equal(t, expense.ID, *gotTour.Expenses[0].ExpenseRef.ID)
}

func testTourDerivedFields(t *testing.T, ds repository.DataStore) {
	ctx := context.Background()

	tour, err := ds.Tours().Create(ctx, &model.Tour{
		TourCode:     "HL-2501",
		ClientName:   "Nguyễn Văn An",
		Adults:       2,
		Children:     1,
		StartDate:    day("2025-01-01"),
		EndDate:      day("2025-01-03"),
		Destinations: []model.TourDestination{{Price: decimal.NewFromInt(1)}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, tour.TotalGuests)
	assert.Equal(t, 3, tour.TotalDays)
	assert.Equal(t, model.StatusActive, tour.Status)

	got, err := ds.Tours().Get(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.TotalGuests)
	assert.Equal(t, 3, got.TotalDays)
	assert.True(t, got.StartDate.Equal(day("2025-01-01")))
	assert.NotNil(t, got.Destinations)
	assert.Empty(t, got.Destinations)
	assert.Empty(t, got.Expenses)
	assert.Empty(t, got.Meals)
	assert.Empty(t, got.Allowances)
	assert.True(t, got.Summary.TotalTabs.IsZero())
	assert.True(t, got.Summary.FinalTotal.IsZero())

	_, err = ds.Tours().Create(ctx, &model.Tour{TourCode: "BAD", StartDate: day("2025-01-03"), EndDate: day("2025-01-01")})
	assert.ErrorIs(t, err, repository.ErrInvalidInput)
}

func testTourCodeUniqueness(t *testing.T, ds repository.DataStore) {
	ctx := context.Background()
	first := mustTour(t, ds, "Hạ Long 01", 2, "2025-01-01")
	second := mustTour(t, ds, "Huế 01", 2, "2025-01-01")

	_, err := ds.Tours().Create(ctx, &model.Tour{TourCode: "HA LONG 01"})
	assert.True(t, repository.IsDuplicateName(err))

	err = ds.Tours().Update(ctx, second.ID, func(tour *model.Tour) error {
		tour.TourCode = "ha long 01"
		return nil
	})
	assert.True(t, repository.IsDuplicateName(err))

	err = ds.Tours().Update(ctx, first.ID, func(tour *model.Tour) error {
		tour.TourCode = "HẠ LONG 01"
		return nil
	})
	assert.NoError(t, err)
}

func testTourListOrderAndSearch(t *testing.T, ds repository.DataStore) {
	ctx := context.Background()
	mustTour(t, ds, "B-01", 2, "2025-01-01")
	mustTour(t, ds, "C-01", 2, "2025-03-01")
	a := mustTour(t, ds, "A-01", 2, "2025-01-01")
	require.NoError(t, ds.Tours().Update(ctx, a.ID, func(tour *model.Tour) error {
		tour.ClientName = "Phạm Thu Hà"
		return nil
	}))

	list, err := ds.Tours().List(ctx, repository.ListQuery{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "C-01", list[0].TourCode)
	assert.Equal(t, "A-01", list[1].TourCode)
	assert.Equal(t, "B-01", list[2].TourCode)

	list, err = ds.Tours().List(ctx, repository.ListQuery{Search: "thu ha"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "A-01", list[0].TourCode)

	require.NoError(t, ds.Tours().ToggleStatus(ctx, a.ID))
	list, err = ds.Tours().List(ctx, repository.ListQuery{Status: model.StatusInactive})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "A-01", list[0].TourCode)
}

func testTourUpdateRecomputesSummary(t *testing.T, ds repository.DataStore) {
	ctx := context.Background()
	tour := mustTour(t, ds, "SUM-01", 4, "2025-05-01")
	_, err := ds.Tours().Destinations().Add(ctx, tour.ID, model.TourDestination{Price: decimal.NewFromInt(100000)})
	require.NoError(t, err)

	err = ds.Tours().Update(ctx, tour.ID, func(tr *model.Tour) error {
		tr.Children = 1
		tr.Summary.AdvancePayment = decimal.NewFromInt(200000)
		tr.Summary.CollectionsForCompany = decimal.NewFromInt(50000)
		tr.Summary.CompanyTip = decimal.NewFromInt(30000)
		tr.Summary.FinalTotal = decimal.NewFromInt(1)
		// line items only change through the line-item repositories
		tr.Destinations = nil
		tr.Meals = append(tr.Meals, model.TourMeal{Price: decimal.NewFromInt(5)})
		tr.Shoppings = append(tr.Shoppings, model.TourShopping{Note: "Bảo tàng", Amount: decimal.NewFromInt(7)})
		return nil
	})
	require.NoError(t, err)

	got, err := ds.Tours().Get(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.TotalGuests)
	assert.Len(t, got.Destinations, 1)
	assert.Empty(t, got.Meals)
	require.Len(t, got.Shoppings, 1)
	assert.NotEqual(t, uuid.Nil, got.Shoppings[0].ID)

	s := got.Summary
	assert.Equal(t, "500000", s.TotalTabs.String())
	assert.Equal(t, "300000", s.TotalAfterAdvance.String())
	assert.Equal(t, "250000", s.TotalAfterCollections.String())
	assert.Equal(t, "280000", s.TotalAfterTip.String())
	assert.Equal(t, "280000", s.FinalTotal.String())
}

func testMoneyKeptAtTwoPlaces(t *testing.T, ds repository.DataStore) {
	ctx := context.Background()
	dest, err := ds.TouristDestinations().Create(ctx, &model.TouristDestination{
		MasterBase: model.MasterBase{Name: "Chùa Một Cột"}, Price: decimal.RequireFromString("99.999"),
	})
	require.NoError(t, err)
	assert.Equal(t, "100", dest.Price.String())

	tour := mustTour(t, ds, "ROUND-01", 3, "2025-08-01")
	_, err = ds.Tours().Meals().Add(ctx, tour.ID, model.TourMeal{Name: "Phở", Price: decimal.RequireFromString("12345.675")})
	require.NoError(t, err)
	err = ds.Tours().Update(ctx, tour.ID, func(tr *model.Tour) error {
		tr.Summary.AdvancePayment = decimal.RequireFromString("0.125")
		return nil
	})
	require.NoError(t, err)

	got, err := ds.Tours().Get(ctx, tour.ID)
	require.NoError(t, err)
	require.Len(t, got.Meals, 1)
	assert.Equal(t, "12345.68", got.Meals[0].Price.String())
	s := got.Summary
	assert.Equal(t, "0.13", s.AdvancePayment.String())
	assert.Equal(t, "37037.04", s.TotalTabs.String())
	assert.Equal(t, "37036.91", s.TotalAfterAdvance.String())
	assert.Equal(t, "37036.91", s.FinalTotal.String())

	stored, err := ds.TouristDestinations().Get(ctx, dest.ID)
	require.NoError(t, err)
	assert.Equal(t, "100", stored.Price.String())
}

func testLineItemsRecomputeSummary(t *testing.T, ds repository.DataStore) {
	ctx := context.Background()
	tour := mustTour(t, ds, "LI-01", 4, "2025-06-01")
	tours := ds.Tours()
	price := decimal.NewFromInt(100000)

	destID, err := tours.Destinations().Add(ctx, tour.ID, model.TourDestination{Price: price, Guests: intPtr(10)})
	require.NoError(t, err)
	_, err = tours.Expenses().Add(ctx, tour.ID, model.TourExpense{Price: price, Guests: intPtr(-1)})
	require.NoError(t, err)
	_, err = tours.Meals().Add(ctx, tour.ID, model.TourMeal{Name: "Trưa", Price: decimal.NewFromInt(50000), Guests: intPtr(2)})
	require.NoError(t, err)
	allowanceID, err := tours.Allowances().Add(ctx, tour.ID, model.TourAllowance{Name: "Công tác phí", Price: decimal.NewFromInt(200000), Quantity: intPtr(3)})
	require.NoError(t, err)

	got, err := tours.Get(ctx, tour.ID)
	require.NoError(t, err)
	// 400000 + 0 + 100000 + 600000
	assert.Equal(t, "1100000", got.Summary.TotalTabs.String())
	assert.Equal(t, "1100000", got.Summary.FinalTotal.String())

	require.NoError(t, tours.Destinations().Update(ctx, tour.ID, destID, model.TourDestination{Price: price, Guests: intPtr(1)}))
	require.NoError(t, tours.Allowances().Remove(ctx, tour.ID, allowanceID))

	got, err = tours.Get(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, "200000", got.Summary.TotalTabs.String())
	assert.Empty(t, got.Allowances)
	require.Len(t, got.Destinations, 1)
	assert.Equal(t, destID, got.Destinations[0].ID)
	require.NotNil(t, got.Destinations[0].Guests)
	assert.Equal(t, 1, *got.Destinations[0].Guests)

	_, err = tours.Meals().Add(ctx, uuid.New(), model.TourMeal{Price: price})
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, tours.Meals().Remove(ctx, tour.ID, uuid.New()), repository.ErrNotFound)
	assert.ErrorIs(t, tours.Meals().Update(ctx, tour.ID, uuid.New(), model.TourMeal{}), repository.ErrNotFound)
}

// Removing the first of three items must not change which row a held id
// points at, while the array positions do shift.
func testLineItemAddressingByID(t *testing.T, ds repository.DataStore) {
	ctx := context.Background()
	tour := mustTour(t, ds, "POS-01", 2, "2025-07-01")
	dests := ds.Tours().Destinations()

	ids := make([]uuid.UUID, 3)
	for i := range ids {
		id, err := dests.Add(ctx, tour.ID, model.TourDestination{
			Price: decimal.NewFromInt(int64(i+1) * 1000),
			Note:  []string{"first", "second", "third"}[i],
		})
		require.NoError(t, err)
		ids[i] = id
	}

	require.NoError(t, dests.Remove(ctx, tour.ID, ids[0]))
	require.NoError(t, dests.Update(ctx, tour.ID, ids[2], model.TourDestination{Price: decimal.NewFromInt(9000), Note: "third, updated"}))

	got, err := ds.Tours().Get(ctx, tour.ID)
	require.NoError(t, err)
	require.Len(t, got.Destinations, 2)
	assert.Equal(t, ids[1], got.Destinations[0].ID)
	assert.Equal(t, "second", got.Destinations[0].Note)
	assert.Equal(t, "2000", got.Destinations[0].Price.String())
	assert.Equal(t, ids[2], got.Destinations[1].ID)
	assert.Equal(t, "third, updated", got.Destinations[1].Note)
	assert.Equal(t, "9000", got.Destinations[1].Price.String())

	// a later add lands at the end
	fourth, err := dests.Add(ctx, tour.ID, model.TourDestination{Note: "fourth"})
	require.NoError(t, err)
	got, err = ds.Tours().Get(ctx, tour.ID)
	require.NoError(t, err)
	require.Len(t, got.Destinations, 3)
	assert.Equal(t, fourth, got.Destinations[2].ID)
	assert.Equal(t, "22000", got.Summary.TotalTabs.String())
}

func testLineItemScopedByTour(t *testing.T, ds repository.DataStore) {
	ctx := context.Background()
	a := mustTour(t, ds, "SCOPE-A", 2, "2025-08-01")
	b := mustTour(t, ds, "SCOPE-B", 2, "2025-08-01")

	itemID, err := ds.Tours().Meals().Add(ctx, a.ID, model.TourMeal{Name: "Tối", Price: decimal.NewFromInt(10)})
	require.NoError(t, err)

	assert.ErrorIs(t, ds.Tours().Meals().Update(ctx, b.ID, itemID, model.TourMeal{Price: decimal.NewFromInt(99)}), repository.ErrNotFound)
	assert.ErrorIs(t, ds.Tours().Meals().Remove(ctx, b.ID, itemID), repository.ErrNotFound)

	got, err := ds.Tours().Get(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, got.Meals, 1)
	assert.Equal(t, "10", got.Meals[0].Price.String())
}

func testTourDuplicateAndDelete(t *testing.T, ds repository.DataStore) {
	ctx := context.Background()
	src := mustTour(t, ds, "DUP-01", 2, "2025-09-01")
	itemID, err := ds.Tours().Allowances().Add(ctx, src.ID, model.TourAllowance{Name: "Phụ cấp", Price: decimal.NewFromInt(150)})
	require.NoError(t, err)

	dup, err := ds.Tours().Duplicate(ctx, src.ID)
	require.NoError(t, err)
	assert.Equal(t, "DUP-01 (Copy)", dup.TourCode)

	got, err := ds.Tours().Get(ctx, dup.ID)
	require.NoError(t, err)
	require.Len(t, got.Allowances, 1)
	assert.NotEqual(t, itemID, got.Allowances[0].ID)
	assert.Equal(t, "150", got.Summary.TotalTabs.String())

	_, err = ds.Tours().Duplicate(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, ds.Tours().Delete(ctx, src.ID))
	_, err = ds.Tours().Get(ctx, src.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, ds.Tours().Delete(ctx, src.ID), repository.ErrNotFound)

	// the copy keeps its own line items
	got, err = ds.Tours().Get(ctx, dup.ID)
	require.NoError(t, err)
	assert.Len(t, got.Allowances, 1)
}

// Seed fills ds with one record of every kind and a tour using them.
func Seed(t *testing.T, ds repository.DataStore) *model.Tour {
	t.Helper()
	ctx := context.Background()

	g := mustGuide(t, ds, "Lê Văn Tám")
	company, err := ds.Companies().Create(ctx, &model.Company{MasterBase: model.MasterBase{Name: "Saigontourist"}, ContactName: "Chị Mai"})
	require.NoError(t, err)
	nationality, err := ds.Nationalities().Create(ctx, &model.Nationality{MasterBase: model.MasterBase{Name: "Hàn Quốc"}, Code: "kr"})
	require.NoError(t, err)
	province, err := ds.Provinces().Create(ctx, &model.Province{MasterBase: model.MasterBase{Name: "Quảng Nam"}, Region: "Miền Trung"})
	require.NoError(t, err)
	dest, err := ds.TouristDestinations().Create(ctx, &model.TouristDestination{
		MasterBase: model.MasterBase{Name: "Phố cổ Hội An"}, Price: decimal.NewFromInt(120000), ProvinceRef: model.NewRef(&province.MasterBase),
	})
	require.NoError(t, err)
	shop, err := ds.Shoppings().Create(ctx, &model.Shopping{MasterBase: model.MasterBase{Name: "Lụa Hội An"}, ProvinceRef: model.NewRef(&province.MasterBase)})
	require.NoError(t, err)
	category, err := ds.ExpenseCategories().Create(ctx, &model.ExpenseCategory{MasterBase: model.MasterBase{Name: "Ăn uống"}})
	require.NoError(t, err)
	expense, err := ds.DetailedExpenses().Create(ctx, &model.DetailedExpense{
		MasterBase: model.MasterBase{Name: "Nước suối"}, Price: decimal.NewFromInt(10000), CategoryRef: model.NewRef(&category.MasterBase),
	})
	require.NoError(t, err)
	require.NoError(t, ds.Guides().ToggleStatus(ctx, g.ID))

	tour, err := ds.Tours().Create(ctx, &model.Tour{
		TourCode:             "HA-2503",
		CompanyRef:           model.NewRef(&company.MasterBase),
		GuideRef:             model.NewRef(&g.MasterBase),
		ClientNationalityRef: model.NewRef(&nationality.MasterBase),
		ClientName:           "Kim Min-ji",
		Adults:               10,
		Children:             2,
		StartDate:            day("2025-03-01"),
		EndDate:              day("2025-03-04"),
		Shoppings: []model.TourShopping{{
			ShoppingRef: model.NewRef(&shop.MasterBase), Date: ptrTime(day("2025-03-02")), Amount: decimal.NewFromInt(500000),
		}},
		Summary: model.TourSummary{AdvancePayment: decimal.NewFromInt(1000000)},
	})
	require.NoError(t, err)

	tours := ds.Tours()
	_, err = tours.Destinations().Add(ctx, tour.ID, model.TourDestination{DestinationRef: model.NewRef(&dest.MasterBase), Date: ptrTime(day("2025-03-02")), Price: dest.Price})
	require.NoError(t, err)
	_, err = tours.Expenses().Add(ctx, tour.ID, model.TourExpense{ExpenseRef: model.NewRef(&expense.MasterBase), Price: expense.Price, Guests: intPtr(5)})
	require.NoError(t, err)
	_, err = tours.Meals().Add(ctx, tour.ID, model.TourMeal{Name: "Cao lầu", Price: decimal.NewFromInt(45000)})
	require.NoError(t, err)
	_, err = tours.Allowances().Add(ctx, tour.ID, model.TourAllowance{Name: "Công tác phí", ProvinceRef: model.NewRef(&province.MasterBase), Price: decimal.NewFromInt(300000), Quantity: intPtr(4)})
	require.NoError(t, err)

	full, err := tours.Get(ctx, tour.ID)
	require.NoError(t, err)
	return full
}

func ptrTime(t time.Time) *time.Time { return &t }

func testExportImportRoundTrip(t *testing.T, ds repository.DataStore) {
	ctx := context.Background()
	seeded := Seed(t, ds)
	// 12*120000 + 5*10000 + 12*45000 + 4*300000
	assert.Equal(t, "3230000", seeded.Summary.TotalTabs.String())
	assert.Equal(t, "2230000", seeded.Summary.FinalTotal.String())

	snap, err := ds.ExportData(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.SnapshotVersion, snap.Version)
	for kind, n := range snap.Count() {
		assert.Equal(t, 1, n, kind)
	}

	require.NoError(t, ds.ClearAllData(ctx))
	empty, err := ds.ExportData(ctx)
	require.NoError(t, err)
	for kind, n := range empty.Count() {
		assert.Zero(t, n, kind)
	}

	require.NoError(t, ds.ImportData(ctx, snap))
	again, err := ds.ExportData(ctx)
	require.NoError(t, err)
	AssertSameContent(t, snap, again)

	tour, err := ds.Tours().Get(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lê Văn Tám", tour.GuideRef.NameAtBooking)
	assert.Equal(t, "2230000", tour.Summary.FinalTotal.String())
	assert.Equal(t, model.StatusInactive, again.Guides[0].Status)
	assert.Equal(t, "KR", again.Nationalities[0].Code)

	// imported ids keep working with the line-item repositories
	require.NoError(t, ds.Tours().Meals().Remove(ctx, tour.ID, tour.Meals[0].ID))
}

func testImportIsAllOrNothing(t *testing.T, ds repository.DataStore) {
	ctx := context.Background()
	snap := &model.Snapshot{
		Version: model.SnapshotVersion,
		Guides: []model.Guide{
			{MasterBase: model.MasterBase{ID: uuid.New(), Name: "Lan"}},
		},
		Provinces: []model.Province{
			{MasterBase: model.MasterBase{ID: uuid.New(), Name: "Huế"}},
			{MasterBase: model.MasterBase{ID: uuid.New(), Name: "HUE"}},
		},
	}

	assert.Error(t, ds.ImportData(ctx, snap))

	guides, err := ds.Guides().List(ctx, repository.ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, guides)

	assert.ErrorIs(t, ds.ImportData(ctx, &model.Snapshot{Version: model.SnapshotVersion + 1}), repository.ErrInvalidInput)
}

func testImportRejectsDuplicateNamesInSnapshot(t *testing.T, ds repository.DataStore) {
	ctx := context.Background()
	snap := &model.Snapshot{
		Version: model.SnapshotVersion,
		Guides: []model.Guide{
			{MasterBase: model.MasterBase{ID: uuid.New(), Name: "Hà Nội"}},
			{MasterBase: model.MasterBase{ID: uuid.New(), Name: "ha noi"}},
		},
	}

	err := ds.ImportData(ctx, snap)
	require.Error(t, err)
	assert.True(t, repository.IsDuplicateName(err), err.Error())

	guides, err := ds.Guides().List(ctx, repository.ListQuery{Status: model.StatusAll})
	require.NoError(t, err)
	assert.Empty(t, guides)
}

func testTourListCarriesLineItems(t *testing.T, ds repository.DataStore) {
	ctx := context.Background()
	seeded := Seed(t, ds)
	mustTour(t, ds, "BARE-01", 2, "2025-06-01")

	list, err := ds.Tours().List(ctx, repository.ListQuery{Status: model.StatusAll})
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, tour := range list {
		assert.True(t, tour.LineItemsLoaded(), tour.TourCode)
		if tour.ID != seeded.ID {
			assert.Empty(t, tour.Meals)
			continue
		}
		assert.Len(t, tour.Destinations, len(seeded.Destinations))
		assert.Len(t, tour.Expenses, len(seeded.Expenses))
		assert.Len(t, tour.Meals, len(seeded.Meals))
		assert.Len(t, tour.Allowances, len(seeded.Allowances))
		assert.Equal(t, seeded.Meals[0].ID, tour.Meals[0].ID)
	}
}

func testReplaceAndClear(t *testing.T, ds repository.DataStore) {
	ctx := context.Background()
	Seed(t, ds)
	snap, err := ds.ExportData(ctx)
	require.NoError(t, err)

	mustGuide(t, ds, "Extra")
	mustTour(t, ds, "EXTRA-01", 1, "2025-12-01")

	require.NoError(t, ds.ReplaceData(ctx, snap))
	after, err := ds.ExportData(ctx)
	require.NoError(t, err)
	AssertSameContent(t, snap, after)

	require.NoError(t, ds.ClearAllData(ctx))
	tours, err := ds.Tours().List(ctx, repository.ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, tours)
}
