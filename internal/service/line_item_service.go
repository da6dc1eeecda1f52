package service

import (
	"context"

	"tourops/internal/model"
	"tourops/internal/repository"

	"github.com/google/uuid"
)

// LineItemService edits one financial subcollection of a tour.
type LineItemService[T any, PT model.LineItemPtr[T]] struct {
	tours   repository.TourRepository
	repo    repository.LineItemRepository[T]
	items   func(*model.Tour) []T
	notify  Notifier
	resolve resolveFunc[T]
}

func (s *LineItemService[T, PT]) Add(ctx context.Context, tourID string, item T) (*TourDetail, error) {
	tid, err := parseID(tourID)
	if err != nil {
		return nil, err
	}
	if err := s.resolve(ctx, &item, nil); err != nil {
		return nil, err
	}
	if _, err := s.repo.Add(ctx, tid, item); err != nil {
		return nil, err
	}
	return s.done(ctx, tid)
}

func (s *LineItemService[T, PT]) Update(ctx context.Context, tourID, itemID string, item T) (*TourDetail, error) {
	tid, err := parseID(tourID)
	if err != nil {
		return nil, err
	}
	iid, err := parseID(itemID)
	if err != nil {
		return nil, err
	}
	prev, err := s.find(ctx, tid, iid)
	if err != nil {
		return nil, err
	}
	if err := s.resolve(ctx, &item, prev); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, tid, iid, item); err != nil {
		return nil, err
	}
	return s.done(ctx, tid)
}

func (s *LineItemService[T, PT]) Remove(ctx context.Context, tourID, itemID string) (*TourDetail, error) {
	tid, err := parseID(tourID)
	if err != nil {
		return nil, err
	}
	iid, err := parseID(itemID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Remove(ctx, tid, iid); err != nil {
		return nil, err
	}
	return s.done(ctx, tid)
}

// find returns the stored item, or nil when the tour has no such item. The
// repository reports the missing item on write.
func (s *LineItemService[T, PT]) find(ctx context.Context, tourID, itemID uuid.UUID) (*T, error) {
	t, err := s.tours.Get(ctx, tourID)
	if err != nil {
		return nil, err
	}
	items := s.items(t)
	for i := range items {
		if PT(&items[i]).ItemID() == itemID {
			return &items[i], nil
		}
	}
	return nil, nil
}

func (s *LineItemService[T, PT]) done(ctx context.Context, tourID uuid.UUID) (*TourDetail, error) {
	s.notify.Publish(model.KindTour, model.ActionUpdated, tourID.String())
	t, err := s.tours.Get(ctx, tourID)
	if err != nil {
		return nil, err
	}
	return NewTourDetail(t)
}
