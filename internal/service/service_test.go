package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"tourops/internal/backup"
	"tourops/internal/database"
	"tourops/internal/model"
	"tourops/internal/repository"
	"tourops/internal/repository/local"
	"tourops/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type event struct {
	Kind   model.Kind
	Action model.ChangeAction
	ID     string
}

type recorder struct {
	mu     sync.Mutex
	events []event
}

func (r *recorder) Publish(kind model.Kind, action model.ChangeAction, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{kind, action, id})
}

func (r *recorder) last() event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

func newLocalStore(t *testing.T) repository.DataStore {
	t.Helper()
	db, err := database.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	ds, err := local.New(db)
	require.NoError(t, err)
	return ds
}

func newTestServices(t *testing.T, backups backup.Store) (*Services, *recorder) {
	t.Helper()
	rec := &recorder{}
	return New(newLocalStore(t), backups, rec, zap.NewNop()), rec
}

func ptr[T any](v T) *T { return &v }

var firstPage = pagination.Params{Page: 1, Limit: 20}

func TestCatalogService_CreateSnapshotsReference(t *testing.T) {
	ctx := context.Background()
	svc, rec := newTestServices(t, nil)

	prov, err := svc.Provinces.Create(ctx, &model.Province{MasterBase: model.MasterBase{Name: "Quảng Ninh"}})
	require.NoError(t, err)

	dest, err := svc.TouristDestinations.Create(ctx, &model.TouristDestination{
		MasterBase:  model.MasterBase{Name: "Vịnh Hạ Long"},
		Price:       decimal.NewFromInt(290000),
		ProvinceRef: model.EntityRef{ID: &prov.ID, NameAtBooking: "typed by hand"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Quảng Ninh", dest.ProvinceRef.NameAtBooking)
	assert.Equal(t, event{model.KindTouristDestination, model.ActionCreated, dest.ID.String()}, rec.last())

	_, err = svc.Shoppings.Create(ctx, &model.Shopping{
		MasterBase:  model.MasterBase{Name: "Ngọc trai"},
		ProvinceRef: model.EntityRef{ID: ptr(uuid.New())},
	})
	assert.ErrorIs(t, err, repository.ErrInvalidInput)
}

func TestCatalogService_UpdateMergesPatch(t *testing.T) {
	ctx := context.Background()
	svc, rec := newTestServices(t, nil)

	cat, err := svc.ExpenseCategories.Create(ctx, &model.ExpenseCategory{MasterBase: model.MasterBase{Name: "Vận chuyển"}})
	require.NoError(t, err)
	exp, err := svc.DetailedExpenses.Create(ctx, &model.DetailedExpense{
		MasterBase:  model.MasterBase{Name: "Xe 45 chỗ"},
		Price:       decimal.NewFromInt(3500000),
		CategoryRef: model.NewRef(&cat.MasterBase),
	})
	require.NoError(t, err)

	_, err = svc.ExpenseCategories.Update(ctx, cat.ID.String(), json.RawMessage(`{"name":"Di chuyển"}`))
	require.NoError(t, err)

	updated, err := svc.DetailedExpenses.Update(ctx, exp.ID.String(), json.RawMessage(`{"price":"3800000"}`))
	require.NoError(t, err)
	assert.Equal(t, "Xe 45 chỗ", updated.Name)
	assert.True(t, decimal.NewFromInt(3800000).Equal(updated.Price))
	assert.Equal(t, "Vận chuyển", updated.CategoryRef.NameAtBooking, "unchanged reference keeps its snapshot")
	assert.Equal(t, event{model.KindDetailedExpense, model.ActionUpdated, exp.ID.String()}, rec.last())

	repointed, err := svc.DetailedExpenses.Update(ctx, exp.ID.String(),
		json.RawMessage(fmt.Sprintf(`{"category_ref":{"id":%q}}`, cat.ID)))
	require.NoError(t, err)
	assert.Equal(t, "Vận chuyển", repointed.CategoryRef.NameAtBooking)

	other, err := svc.ExpenseCategories.Create(ctx, &model.ExpenseCategory{MasterBase: model.MasterBase{Name: "Ăn uống"}})
	require.NoError(t, err)
	repointed, err = svc.DetailedExpenses.Update(ctx, exp.ID.String(),
		json.RawMessage(fmt.Sprintf(`{"category_ref":{"id":%q}}`, other.ID)))
	require.NoError(t, err)
	assert.Equal(t, "Ăn uống", repointed.CategoryRef.NameAtBooking)
}

func TestCatalogService_UpdateRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestServices(t, nil)

	g, err := svc.Guides.Create(ctx, &model.Guide{MasterBase: model.MasterBase{Name: "Lan"}})
	require.NoError(t, err)

	_, err = svc.Guides.Update(ctx, g.ID.String(), json.RawMessage(`{"name":`))
	assert.ErrorIs(t, err, repository.ErrInvalidInput)

	_, err = svc.Guides.Update(ctx, "not-a-uuid", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, repository.ErrInvalidInput)

	_, err = svc.Guides.Update(ctx, uuid.NewString(), json.RawMessage(`{"name":"x"}`))
	assert.ErrorIs(t, err, repository.ErrNotFound)

	got, err := svc.Guides.Get(ctx, g.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Lan", got.Name)
}

func TestCatalogService_ListPaginates(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestServices(t, nil)

	for _, name := range []string{"Đà Nẵng", "An Giang", "Bắc Ninh", "Cà Mau", "Hà Nội"} {
		_, err := svc.Provinces.Create(ctx, &model.Province{MasterBase: model.MasterBase{Name: name}})
		require.NoError(t, err)
	}

	items, total, err := svc.Provinces.List(ctx, repository.ListQuery{}, pagination.Params{Page: 2, Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, items, 2)
	assert.Equal(t, "Cà Mau", items[0].Name)
	assert.Equal(t, "Đà Nẵng", items[1].Name)

	items, total, err = svc.Provinces.List(ctx, repository.ListQuery{Search: "ha noi"}, firstPage)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Hà Nội", items[0].Name)
}

func TestCatalogService_ToggleDuplicateDelete(t *testing.T) {
	ctx := context.Background()
	svc, rec := newTestServices(t, nil)

	n, err := svc.Nationalities.Create(ctx, &model.Nationality{MasterBase: model.MasterBase{Name: "Hàn Quốc"}, Code: "kr"})
	require.NoError(t, err)

	toggled, err := svc.Nationalities.ToggleStatus(ctx, n.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.StatusInactive, toggled.Status)

	dup, err := svc.Nationalities.Duplicate(ctx, n.ID.String())
	require.NoError(t, err)
	assert.NotEqual(t, n.ID, dup.ID)
	assert.Equal(t, event{model.KindNationality, model.ActionCreated, dup.ID.String()}, rec.last())

	require.NoError(t, svc.Nationalities.Delete(ctx, n.ID.String()))
	assert.Equal(t, event{model.KindNationality, model.ActionDeleted, n.ID.String()}, rec.last())
	_, err = svc.Nationalities.Get(ctx, n.ID.String())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

type tourFixture struct {
	svc     *Services
	rec     *recorder
	tour    *TourDetail
	guide   *model.Guide
	dest    *model.TouristDestination
	expense *model.DetailedExpense
	prov    *model.Province
}

func newTourFixture(t *testing.T) *tourFixture {
	t.Helper()
	ctx := context.Background()
	svc, rec := newTestServices(t, nil)
	f := &tourFixture{svc: svc, rec: rec}

	var err error
	f.guide, err = svc.Guides.Create(ctx, &model.Guide{MasterBase: model.MasterBase{Name: "Trần Minh"}})
	require.NoError(t, err)
	f.prov, err = svc.Provinces.Create(ctx, &model.Province{MasterBase: model.MasterBase{Name: "Ninh Bình"}})
	require.NoError(t, err)
	f.dest, err = svc.TouristDestinations.Create(ctx, &model.TouristDestination{
		MasterBase: model.MasterBase{Name: "Tràng An"},
		Price:      decimal.NewFromInt(250000),
	})
	require.NoError(t, err)
	f.expense, err = svc.DetailedExpenses.Create(ctx, &model.DetailedExpense{
		MasterBase: model.MasterBase{Name: "Nước suối"},
		Price:      decimal.NewFromInt(10000),
	})
	require.NoError(t, err)

	f.tour, err = svc.Tours.Create(ctx, &model.Tour{
		TourCode: "NB-2504",
		GuideRef: model.NewRef(&f.guide.MasterBase),
		Adults:   3,
		Children: 1,
	})
	require.NoError(t, err)
	return f
}

func TestTourService_CreateSnapshotsGuide(t *testing.T) {
	f := newTourFixture(t)
	assert.Equal(t, "Trần Minh", f.tour.GuideRef.NameAtBooking)
	assert.Equal(t, 4, f.tour.TotalGuests)
	assert.True(t, f.tour.Totals.Tabs().IsZero())
	assert.Equal(t, event{model.KindTour, model.ActionCreated, f.tour.ID.String()}, f.rec.last())

	_, err := f.svc.Tours.Create(context.Background(), &model.Tour{
		TourCode: "NB-2505",
		GuideRef: model.EntityRef{ID: ptr(uuid.New())},
	})
	assert.ErrorIs(t, err, repository.ErrInvalidInput)
}

func TestTourService_RenameKeepsBookingName(t *testing.T) {
	ctx := context.Background()
	f := newTourFixture(t)

	_, err := f.svc.Guides.Update(ctx, f.guide.ID.String(), json.RawMessage(`{"name":"Trần Minh Đức"}`))
	require.NoError(t, err)

	detail, err := f.svc.Tours.Update(ctx, f.tour.ID.String(), json.RawMessage(`{"client_name":"Mr. Park","adults":5}`))
	require.NoError(t, err)
	assert.Equal(t, "Mr. Park", detail.ClientName)
	assert.Equal(t, 6, detail.TotalGuests)
	assert.Equal(t, "Trần Minh", detail.GuideRef.NameAtBooking)
}

func TestTourService_UpdateReplacesShoppingList(t *testing.T) {
	ctx := context.Background()
	f := newTourFixture(t)
	tourID := f.tour.ID.String()
	shop, err := f.svc.Shoppings.Create(ctx, &model.Shopping{MasterBase: model.MasterBase{Name: "Gốm Bát Tràng"}})
	require.NoError(t, err)

	first, err := f.svc.Tours.Update(ctx, tourID, json.RawMessage(fmt.Sprintf(
		`{"shoppings":[{"shopping_ref":{"id":%q},"amount":"750000","note":"đoàn mua nhiều"}]}`, shop.ID)))
	require.NoError(t, err)
	require.Len(t, first.Shoppings, 1)
	oldID := first.Shoppings[0].ID
	assert.Equal(t, "Gốm Bát Tràng", first.Shoppings[0].ShoppingRef.NameAtBooking)

	second, err := f.svc.Tours.Update(ctx, tourID, json.RawMessage(`{"shoppings":[{"note":"ghé chợ"}]}`))
	require.NoError(t, err)
	require.Len(t, second.Shoppings, 1)
	got := second.Shoppings[0]
	assert.NotEqual(t, oldID, got.ID)
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.True(t, got.Amount.IsZero())
	assert.Nil(t, got.ShoppingRef.ID)
	assert.Empty(t, got.ShoppingRef.NameAtBooking)
	assert.Equal(t, "ghé chợ", got.Note)
}

func TestTourService_UpdateNullClearsReference(t *testing.T) {
	ctx := context.Background()
	f := newTourFixture(t)
	require.NotNil(t, f.tour.GuideRef.ID)

	detail, err := f.svc.Tours.Update(ctx, f.tour.ID.String(), json.RawMessage(`{"guide_ref":null,"client_name":"Ms. Lee"}`))
	require.NoError(t, err)
	assert.Nil(t, detail.GuideRef.ID)
	assert.Empty(t, detail.GuideRef.NameAtBooking)
	assert.Equal(t, "Ms. Lee", detail.ClientName)
	assert.Equal(t, 4, detail.TotalGuests)
}

func TestTourService_LineItemsDefaultPriceAndTotals(t *testing.T) {
	ctx := context.Background()
	f := newTourFixture(t)
	tourID := f.tour.ID.String()

	detail, err := f.svc.Tours.Destinations.Add(ctx, tourID, model.TourDestination{
		DestinationRef: model.NewRef(&f.dest.MasterBase),
	})
	require.NoError(t, err)
	require.Len(t, detail.Destinations, 1)
	line := detail.Destinations[0]
	assert.True(t, decimal.NewFromInt(250000).Equal(line.Price), "price comes from the destination")
	assert.Equal(t, "1000000", detail.LineTotals[line.ID.String()].String())

	detail, err = f.svc.Tours.Expenses.Add(ctx, tourID, model.TourExpense{
		ExpenseRef: model.NewRef(&f.expense.MasterBase),
		Price:      decimal.NewFromInt(12000),
		Guests:     ptr(2),
	})
	require.NoError(t, err)
	assert.Equal(t, "24000", detail.Totals.Expenses.String(), "entered price wins")

	detail, err = f.svc.Tours.Allowances.Add(ctx, tourID, model.TourAllowance{
		Name:        "Công tác phí",
		ProvinceRef: model.NewRef(&f.prov.MasterBase),
		Price:       decimal.NewFromInt(300000),
		Quantity:    ptr(2),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ninh Bình", detail.Allowances[0].ProvinceRef.NameAtBooking)
	assert.Equal(t, "1624000", detail.Summary.TotalTabs.String())
	assert.Equal(t, event{model.KindTour, model.ActionUpdated, tourID}, f.rec.last())

	detail, err = f.svc.Tours.Destinations.Update(ctx, tourID, line.ID.String(), model.TourDestination{
		DestinationRef: line.DestinationRef,
		Price:          decimal.NewFromInt(200000),
		Guests:         ptr(10),
	})
	require.NoError(t, err)
	assert.Equal(t, "800000", detail.Totals.Destinations.String(), "guests clamp to the group size")

	detail, err = f.svc.Tours.Destinations.Remove(ctx, tourID, line.ID.String())
	require.NoError(t, err)
	assert.Empty(t, detail.Destinations)
	assert.Equal(t, "624000", detail.Summary.FinalTotal.String())

	_, err = f.svc.Tours.Destinations.Remove(ctx, tourID, line.ID.String())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTourService_Summary(t *testing.T) {
	ctx := context.Background()
	f := newTourFixture(t)
	tourID := f.tour.ID.String()

	_, err := f.svc.Tours.Meals.Add(ctx, tourID, model.TourMeal{Name: "Dê núi", Price: decimal.NewFromInt(150000)})
	require.NoError(t, err)
	_, err = f.svc.Tours.Update(ctx, tourID, json.RawMessage(`{"summary":{"advance_payment":"100000","company_tip":"50000","collections_for_company":"200000"}}`))
	require.NoError(t, err)

	view, err := f.svc.Tours.Summary(ctx, tourID)
	require.NoError(t, err)
	assert.Equal(t, "600000", view.Totals.Meals.String())
	assert.Equal(t, "600000", view.Summary.TotalTabs.String())
	assert.Equal(t, "500000", view.Summary.TotalAfterAdvance.String())
	assert.Equal(t, "300000", view.Summary.TotalAfterCollections.String())
	assert.Equal(t, "350000", view.Summary.FinalTotal.String())
}

func TestTourService_DuplicateAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newTourFixture(t)

	dup, err := f.svc.Tours.Duplicate(ctx, f.tour.ID.String())
	require.NoError(t, err)
	assert.NotEqual(t, f.tour.ID, dup.ID)
	assert.NotEqual(t, f.tour.TourCode, dup.TourCode)

	tours, total, err := f.svc.Tours.List(ctx, repository.ListQuery{}, firstPage)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, tours, 2)

	require.NoError(t, f.svc.Tours.Delete(ctx, dup.ID.String()))
	_, err = f.svc.Tours.Get(ctx, dup.ID.String())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
