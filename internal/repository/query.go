package repository

import (
	"cmp"
	"slices"
	"strings"

	"tourops/internal/model"
	"tourops/pkg/normalize"
)

func (q ListQuery) statusFilter() (model.Status, bool) {
	if q.Status == "" || q.Status == model.StatusAll {
		return "", false
	}
	return q.Status, true
}

// FilterMasters keeps the records matching q.
func FilterMasters[T any, PT model.MasterPtr[T]](items []T, q ListQuery) []T {
	status, byStatus := q.statusFilter()
	out := make([]T, 0, len(items))
	for i := range items {
		b := PT(&items[i]).Meta()
		if byStatus && b.Status != status {
			continue
		}
		if !normalize.Matches(q.Search, b.Name, b.SearchKeywords) {
			continue
		}
		out = append(out, items[i])
	}
	return out
}

// SortByName orders records by normalized name, then display name, then id.
func SortByName[T any, PT model.MasterPtr[T]](items []T) {
	slices.SortStableFunc(items, func(a, b T) int {
		ma, mb := PT(&a).Meta(), PT(&b).Meta()
		return cmp.Or(
			strings.Compare(normalize.Key(ma.Name), normalize.Key(mb.Name)),
			strings.Compare(ma.Name, mb.Name),
			strings.Compare(ma.ID.String(), mb.ID.String()),
		)
	})
}

// FilterTours keeps the tours matching q. Search covers the tour code and
// the client name.
func FilterTours(tours []model.Tour, q ListQuery) []model.Tour {
	status, byStatus := q.statusFilter()
	out := make([]model.Tour, 0, len(tours))
	for _, t := range tours {
		if byStatus && t.Status != status {
			continue
		}
		if !normalize.Matches(q.Search, t.TourCode+" "+t.ClientName, t.SearchKeywords) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// SortTours orders tours by start date, latest first, then by tour code.
func SortTours(tours []model.Tour) {
	slices.SortStableFunc(tours, func(a, b model.Tour) int {
		return cmp.Or(
			b.StartDate.Compare(a.StartDate),
			strings.Compare(a.TourCodeKey, b.TourCodeKey),
			strings.Compare(a.ID.String(), b.ID.String()),
		)
	})
}
