package service

import (
	"context"
	"encoding/json"

	"tourops/internal/model"
	"tourops/internal/repository"
	"tourops/internal/summary"
	"tourops/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TourDetail is a tour with the computed total of every line and collection.
type TourDetail struct {
	*model.Tour
	Totals     summary.Totals             `json:"totals"`
	LineTotals map[string]decimal.Decimal `json:"line_totals"` // by item id
}

// NewTourDetail computes the per-line totals of a fully loaded tour.
func NewTourDetail(t *model.Tour) (*TourDetail, error) {
	totals, err := summary.Collect(t)
	if err != nil {
		return nil, err
	}
	lines := make(map[string]decimal.Decimal)
	for _, d := range t.Destinations {
		lines[d.ID.String()] = summary.LineTotal(d.Price, d.Guests, t.TotalGuests)
	}
	for _, e := range t.Expenses {
		lines[e.ID.String()] = summary.LineTotal(e.Price, e.Guests, t.TotalGuests)
	}
	for _, m := range t.Meals {
		lines[m.ID.String()] = summary.LineTotal(m.Price, m.Guests, t.TotalGuests)
	}
	for _, a := range t.Allowances {
		lines[a.ID.String()] = summary.AllowanceTotal(a.Price, a.Quantity)
	}
	return &TourDetail{Tour: t, Totals: totals, LineTotals: lines}, nil
}

// TourSummaryView is the settlement of a tour next to its collection totals.
type TourSummaryView struct {
	Summary model.TourSummary `json:"summary"`
	Totals  summary.Totals    `json:"totals"`
}

// TourService manages tours and their line items.
type TourService struct {
	ds     repository.DataStore
	repo   repository.TourRepository
	notify Notifier

	Destinations *LineItemService[model.TourDestination, *model.TourDestination]
	Expenses     *LineItemService[model.TourExpense, *model.TourExpense]
	Meals        *LineItemService[model.TourMeal, *model.TourMeal]
	Allowances   *LineItemService[model.TourAllowance, *model.TourAllowance]
}

func NewTourService(ds repository.DataStore, notify Notifier) *TourService {
	notify = orNop(notify)
	repo := ds.Tours()
	s := &TourService{ds: ds, repo: repo, notify: notify}

	s.Destinations = &LineItemService[model.TourDestination, *model.TourDestination]{
		tours: repo, repo: repo.Destinations(), notify: notify,
		items:   func(t *model.Tour) []model.TourDestination { return t.Destinations },
		resolve: s.resolveDestination,
	}
	s.Expenses = &LineItemService[model.TourExpense, *model.TourExpense]{
		tours: repo, repo: repo.Expenses(), notify: notify,
		items:   func(t *model.Tour) []model.TourExpense { return t.Expenses },
		resolve: s.resolveExpense,
	}
	s.Meals = &LineItemService[model.TourMeal, *model.TourMeal]{
		tours: repo, repo: repo.Meals(), notify: notify,
		items:   func(t *model.Tour) []model.TourMeal { return t.Meals },
		resolve: func(context.Context, *model.TourMeal, *model.TourMeal) error { return nil },
	}
	s.Allowances = &LineItemService[model.TourAllowance, *model.TourAllowance]{
		tours: repo, repo: repo.Allowances(), notify: notify,
		items:   func(t *model.Tour) []model.TourAllowance { return t.Allowances },
		resolve: s.resolveAllowance,
	}
	return s
}

// List returns one page of tours with their line items.
func (s *TourService) List(ctx context.Context, q repository.ListQuery, page pagination.Params) ([]model.Tour, int64, error) {
	tours, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return pagination.Slice(tours, page), int64(len(tours)), nil
}

func (s *TourService) Get(ctx context.Context, id string) (*TourDetail, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	t, err := s.repo.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	return NewTourDetail(t)
}

func (s *TourService) Summary(ctx context.Context, id string) (*TourSummaryView, error) {
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &TourSummaryView{Summary: detail.Summary, Totals: detail.Totals}, nil
}

func (s *TourService) Create(ctx context.Context, t *model.Tour) (*TourDetail, error) {
	if err := s.resolveTour(ctx, t, nil); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, t)
	if err != nil {
		return nil, err
	}
	s.notify.Publish(model.KindTour, model.ActionCreated, created.ID.String())
	return NewTourDetail(created)
}

// Update merges the JSON patch into the tour. Line-item collections in the
// patch are ignored.
func (s *TourService) Update(ctx context.Context, id string, patch json.RawMessage) (*TourDetail, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	err = s.repo.Update(ctx, uid, func(t *model.Tour) error {
		prev, err := clone(t)
		if err != nil {
			return err
		}
		if err := applyPatch(t, patch); err != nil {
			return err
		}
		return s.resolveTour(ctx, t, prev)
	})
	if err != nil {
		return nil, err
	}
	s.notify.Publish(model.KindTour, model.ActionUpdated, uid.String())
	return s.Get(ctx, id)
}

func (s *TourService) ToggleStatus(ctx context.Context, id string) (*TourDetail, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ToggleStatus(ctx, uid); err != nil {
		return nil, err
	}
	s.notify.Publish(model.KindTour, model.ActionUpdated, uid.String())
	return s.Get(ctx, id)
}

func (s *TourService) Duplicate(ctx context.Context, id string) (*TourDetail, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	dup, err := s.repo.Duplicate(ctx, uid)
	if err != nil {
		return nil, err
	}
	s.notify.Publish(model.KindTour, model.ActionCreated, dup.ID.String())
	return NewTourDetail(dup)
}

func (s *TourService) Delete(ctx context.Context, id string) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, uid); err != nil {
		return err
	}
	s.notify.Publish(model.KindTour, model.ActionDeleted, uid.String())
	return nil
}

func (s *TourService) resolveTour(ctx context.Context, t, prev *model.Tour) error {
	var pc, pg, pn *model.EntityRef
	if prev != nil {
		pc, pg, pn = &prev.CompanyRef, &prev.GuideRef, &prev.ClientNationalityRef
	}
	if err := snapshotRef(ctx, &t.CompanyRef, pc, model.KindCompany, lookupIn(s.ds.Companies())); err != nil {
		return err
	}
	if err := snapshotRef(ctx, &t.GuideRef, pg, model.KindGuide, lookupIn(s.ds.Guides())); err != nil {
		return err
	}
	if err := snapshotRef(ctx, &t.ClientNationalityRef, pn, model.KindNationality, lookupIn(s.ds.Nationalities())); err != nil {
		return err
	}

	shops := lookupIn(s.ds.Shoppings())
	for i := range t.Shoppings {
		var prevRef *model.EntityRef
		if prev != nil {
			for _, p := range prev.Shoppings {
				if p.ID == t.Shoppings[i].ID {
					prevRef = &p.ShoppingRef
					break
				}
			}
		}
		if err := snapshotRef(ctx, &t.Shoppings[i].ShoppingRef, prevRef, model.KindShopping, shops); err != nil {
			return err
		}
	}
	return nil
}

// resolveDestination snapshots the destination and, when no price was
// entered, takes the destination's price.
func (s *TourService) resolveDestination(ctx context.Context, d, prev *model.TourDestination) error {
	var prevRef *model.EntityRef
	if prev != nil {
		prevRef = &prev.DestinationRef
	}
	var master *model.TouristDestination
	lookup := func(ctx context.Context, id uuid.UUID) (*model.MasterBase, error) {
		var err error
		master, err = s.ds.TouristDestinations().Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return &master.MasterBase, nil
	}
	if err := snapshotRef(ctx, &d.DestinationRef, prevRef, model.KindTouristDestination, lookup); err != nil {
		return err
	}
	if master != nil && d.Price.IsZero() {
		d.Price = master.Price
	}
	return nil
}

func (s *TourService) resolveExpense(ctx context.Context, e, prev *model.TourExpense) error {
	var prevRef *model.EntityRef
	if prev != nil {
		prevRef = &prev.ExpenseRef
	}
	var master *model.DetailedExpense
	lookup := func(ctx context.Context, id uuid.UUID) (*model.MasterBase, error) {
		var err error
		master, err = s.ds.DetailedExpenses().Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return &master.MasterBase, nil
	}
	if err := snapshotRef(ctx, &e.ExpenseRef, prevRef, model.KindDetailedExpense, lookup); err != nil {
		return err
	}
	if master != nil && e.Price.IsZero() {
		e.Price = master.Price
	}
	return nil
}

func (s *TourService) resolveAllowance(ctx context.Context, a, prev *model.TourAllowance) error {
	var prevRef *model.EntityRef
	if prev != nil {
		prevRef = &prev.ProvinceRef
	}
	return snapshotRef(ctx, &a.ProvinceRef, prevRef, model.KindProvince, lookupIn(s.ds.Provinces()))
}
