package repository

import (
	"testing"
	"time"

	"tourops/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func TestPrepareCreate(t *testing.T) {
	g := &model.Guide{MasterBase: model.MasterBase{Name: "  Hà Nội  ", Status: model.StatusInactive}, Phone: " 0901 "}

	require.NoError(t, PrepareCreate(g, now))
	assert.NotEqual(t, uuid.Nil, g.ID)
	assert.Equal(t, "Hà Nội", g.Name)
	assert.Equal(t, "ha noi", g.NameKey)
	assert.Equal(t, model.StatusActive, g.Status)
	assert.Equal(t, "0901", g.Phone)
	assert.Equal(t, now, g.CreatedAt)
	assert.Equal(t, now, g.UpdatedAt)
	assert.Equal(t, []string{"ha", "hanoi", "hn", "noi"}, []string(g.SearchKeywords))
}

func TestPrepareCreate_Invalid(t *testing.T) {
	err := PrepareCreate(&model.Guide{MasterBase: model.MasterBase{Name: "   "}}, now)
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = PrepareCreate(&model.Guide{MasterBase: model.MasterBase{Name: "Lan"}, Email: "not-an-email"}, now)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPrepareUpdate_KeepsIdentity(t *testing.T) {
	prev := model.MasterBase{ID: uuid.New(), Name: "Huế", Status: model.StatusInactive, CreatedAt: now.Add(-time.Hour)}
	p := &model.Province{MasterBase: model.MasterBase{ID: uuid.New(), Name: "Thừa Thiên Huế"}}

	require.NoError(t, PrepareUpdate(p, prev, now))
	assert.Equal(t, prev.ID, p.ID)
	assert.Equal(t, prev.CreatedAt, p.CreatedAt)
	assert.Equal(t, model.StatusInactive, p.Status)
	assert.Equal(t, now, p.UpdatedAt)
	assert.Contains(t, p.SearchKeywords, "tth")
}

func TestPrepareCopy(t *testing.T) {
	id := uuid.New()
	d := &model.TouristDestination{MasterBase: model.MasterBase{ID: id, Name: "Vịnh Hạ Long", Status: model.StatusInactive}, Price: decimal.NewFromInt(250000)}

	require.NoError(t, PrepareCopy(d, now))
	assert.NotEqual(t, id, d.ID)
	assert.Equal(t, "Vịnh Hạ Long (Copy)", d.Name)
	assert.Equal(t, "vinh ha long (copy)", d.NameKey)
	assert.Equal(t, model.StatusInactive, d.Status)
	assert.Contains(t, d.SearchKeywords, "(copy)")
	assert.True(t, d.Price.Equal(decimal.NewFromInt(250000)))
}

func TestCheckUnique(t *testing.T) {
	self := uuid.New()
	other := uuid.New()
	owners := []KeyOwner{{ID: self, Key: "ha noi"}, {ID: other, Key: "hue"}}

	err := CheckUnique(model.KindProvince, "ha noi", "ha noi", uuid.Nil, owners)
	var dup *DuplicateNameError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, model.KindProvince, dup.Kind)
	assert.Equal(t, "ha noi", dup.Name)

	assert.NoError(t, CheckUnique(model.KindProvince, "Hà Nội", "ha noi", self, owners))
	assert.Error(t, CheckUnique(model.KindProvince, "Huế", "hue", self, owners))
	assert.NoError(t, CheckUnique(model.KindProvince, "Đà Nẵng", "da nang", uuid.Nil, owners))
}

func date(s string) time.Time {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestPrepareNewTour_DerivedFields(t *testing.T) {
	tour := &model.Tour{
		TourCode:     " HL-2501 ",
		ClientName:   "Nguyễn Văn An",
		Adults:       2,
		Children:     1,
		StartDate:    date("2025-01-01"),
		EndDate:      date("2025-01-03"),
		Destinations: []model.TourDestination{{Price: decimal.NewFromInt(1)}},
		Summary:      model.TourSummary{AdvancePayment: decimal.NewFromInt(100)},
	}

	require.NoError(t, PrepareNewTour(tour, now))
	assert.Equal(t, "HL-2501", tour.TourCode)
	assert.Equal(t, 3, tour.TotalGuests)
	assert.Equal(t, 3, tour.TotalDays)
	assert.Empty(t, tour.Destinations)
	assert.NotNil(t, tour.Destinations)
	assert.NotNil(t, tour.Allowances)
	assert.True(t, tour.Summary.TotalTabs.IsZero())
	assert.Equal(t, "-100", tour.Summary.FinalTotal.String())
	assert.Contains(t, tour.SearchKeywords, "nva")
	assert.Contains(t, tour.SearchKeywords, "hl-2501")
}

func TestPrepareNewTour_RejectsReversedDates(t *testing.T) {
	tour := &model.Tour{TourCode: "X", StartDate: date("2025-01-03"), EndDate: date("2025-01-01")}
	assert.ErrorIs(t, PrepareNewTour(tour, now), ErrInvalidInput)
}

func TestPrepareTourUpdate_KeepsLineItems(t *testing.T) {
	prev := &model.Tour{ID: uuid.New(), TourCode: "A", Status: model.StatusActive, TotalGuests: 2, CreatedAt: now.Add(-time.Hour)}
	prev.EnsureLineItems()
	prev.Meals = []model.TourMeal{{ItemBase: model.ItemBase{ID: uuid.New()}, Price: decimal.NewFromInt(10)}}

	patched := *prev
	patched.Adults = 3
	patched.Meals = nil
	patched.Destinations = []model.TourDestination{{Price: decimal.NewFromInt(500)}}

	require.NoError(t, PrepareTourUpdate(&patched, prev, now))
	assert.Len(t, patched.Meals, 1)
	assert.Empty(t, patched.Destinations)
	assert.Equal(t, 3, patched.TotalGuests)
	assert.Equal(t, "30", patched.Summary.TotalTabs.String())
}

func TestPrepareTourCopy(t *testing.T) {
	itemID := uuid.New()
	tour := &model.Tour{ID: uuid.New(), TourCode: "DN-01", Adults: 1}
	tour.EnsureLineItems()
	tour.Expenses = []model.TourExpense{{ItemBase: model.ItemBase{ID: itemID}, Price: decimal.NewFromInt(7)}}

	require.NoError(t, PrepareTourCopy(tour, now))
	assert.Equal(t, "DN-01 (Copy)", tour.TourCode)
	require.Len(t, tour.Expenses, 1)
	assert.NotEqual(t, itemID, tour.Expenses[0].ID)
	assert.Equal(t, "7", tour.Summary.TotalTabs.String())
}
