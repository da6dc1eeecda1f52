package service

import (
	"context"

	"tourops/internal/backup"
	"tourops/internal/model"
	"tourops/internal/repository"

	"go.uber.org/zap"
)

// Services bundles every service built on one data store.
type Services struct {
	Guides              *CatalogService[model.Guide, *model.Guide]
	Companies           *CatalogService[model.Company, *model.Company]
	Nationalities       *CatalogService[model.Nationality, *model.Nationality]
	Provinces           *CatalogService[model.Province, *model.Province]
	TouristDestinations *CatalogService[model.TouristDestination, *model.TouristDestination]
	Shoppings           *CatalogService[model.Shopping, *model.Shopping]
	ExpenseCategories   *CatalogService[model.ExpenseCategory, *model.ExpenseCategory]
	DetailedExpenses    *CatalogService[model.DetailedExpense, *model.DetailedExpense]
	Tours               *TourService
	Data                *DataService
}

func New(ds repository.DataStore, backups backup.Store, notify Notifier, log *zap.Logger) *Services {
	provinces := lookupIn(ds.Provinces())
	categories := lookupIn(ds.ExpenseCategories())

	return &Services{
		Guides:        NewCatalogService(ds.Guides(), notify, nil),
		Companies:     NewCatalogService(ds.Companies(), notify, nil),
		Nationalities: NewCatalogService(ds.Nationalities(), notify, nil),
		Provinces:     NewCatalogService(ds.Provinces(), notify, nil),
		TouristDestinations: NewCatalogService(ds.TouristDestinations(), notify,
			func(ctx context.Context, d, prev *model.TouristDestination) error {
				var p *model.EntityRef
				if prev != nil {
					p = &prev.ProvinceRef
				}
				return snapshotRef(ctx, &d.ProvinceRef, p, model.KindProvince, provinces)
			}),
		Shoppings: NewCatalogService(ds.Shoppings(), notify,
			func(ctx context.Context, sh, prev *model.Shopping) error {
				var p *model.EntityRef
				if prev != nil {
					p = &prev.ProvinceRef
				}
				return snapshotRef(ctx, &sh.ProvinceRef, p, model.KindProvince, provinces)
			}),
		ExpenseCategories: NewCatalogService(ds.ExpenseCategories(), notify, nil),
		DetailedExpenses: NewCatalogService(ds.DetailedExpenses(), notify,
			func(ctx context.Context, e, prev *model.DetailedExpense) error {
				var p *model.EntityRef
				if prev != nil {
					p = &prev.CategoryRef
				}
				return snapshotRef(ctx, &e.CategoryRef, p, model.KindExpenseCategory, categories)
			}),
		Tours: NewTourService(ds, notify),
		Data:  NewDataService(ds, backups, notify, log),
	}
}
