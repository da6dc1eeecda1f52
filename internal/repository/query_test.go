package repository

import (
	"testing"

	"tourops/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func provinces(t *testing.T, names ...string) []model.Province {
	out := make([]model.Province, 0, len(names))
	for _, n := range names {
		p := model.Province{MasterBase: model.MasterBase{Name: n}}
		require.NoError(t, PrepareCreate(&p, now))
		out = append(out, p)
	}
	return out
}

func names(items []model.Province) []string {
	out := make([]string, 0, len(items))
	for _, p := range items {
		out = append(out, p.Name)
	}
	return out
}

func TestSortByName_IgnoresDiacritics(t *testing.T) {
	items := provinces(t, "Quảng Ninh", "Đà Nẵng", "An Giang", "Bà Rịa")
	SortByName(items)
	assert.Equal(t, []string{"An Giang", "Bà Rịa", "Đà Nẵng", "Quảng Ninh"}, names(items))
}

func TestFilterMasters(t *testing.T) {
	items := provinces(t, "Hà Nội", "Hà Nam", "Huế")
	items[2].Status = model.StatusInactive

	assert.Len(t, FilterMasters(items, ListQuery{}), 3)
	assert.Len(t, FilterMasters(items, ListQuery{Status: model.StatusAll}), 3)
	assert.Equal(t, []string{"Huế"}, names(FilterMasters(items, ListQuery{Status: model.StatusInactive})))
	assert.Equal(t, []string{"Hà Nội", "Hà Nam"}, names(FilterMasters(items, ListQuery{Search: "HA"})))
	assert.Equal(t, []string{"Hà Nội"}, names(FilterMasters(items, ListQuery{Search: "noi", Status: model.StatusActive})))
}

func TestSortTours(t *testing.T) {
	tours := []model.Tour{
		{TourCode: "B", TourCodeKey: "b", StartDate: date("2025-01-01")},
		{TourCode: "C", TourCodeKey: "c", StartDate: date("2025-02-01")},
		{TourCode: "A", TourCodeKey: "a", StartDate: date("2025-01-01")},
	}
	SortTours(tours)
	assert.Equal(t, "C", tours[0].TourCode)
	assert.Equal(t, "A", tours[1].TourCode)
	assert.Equal(t, "B", tours[2].TourCode)
}

func TestFilterTours(t *testing.T) {
	a := model.Tour{TourCode: "HL-01", ClientName: "Trần Bình"}
	a.SearchKeywords = TourKeywords(&a)
	b := model.Tour{TourCode: "DN-02", ClientName: "Smith", Status: model.StatusInactive}
	b.SearchKeywords = TourKeywords(&b)

	got := FilterTours([]model.Tour{a, b}, ListQuery{Search: "tran"})
	require.Len(t, got, 1)
	assert.Equal(t, "HL-01", got[0].TourCode)

	got = FilterTours([]model.Tour{a, b}, ListQuery{Status: model.StatusInactive})
	require.Len(t, got, 1)
	assert.Equal(t, "DN-02", got[0].TourCode)
}
