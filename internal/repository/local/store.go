// Package local is the embedded backend: one sqlite file holding a JSON
// document table per record kind.
package local

import (
	"context"
	"fmt"
	"time"

	"tourops/internal/database"
	"tourops/internal/model"
	"tourops/internal/repository"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Store implements repository.DataStore on an embedded sqlite database.
type Store struct {
	db   *gorm.DB
	tx   repository.TransactionManager
	now  func() time.Time
	owns bool

	guides              *masterStore[model.Guide, *model.Guide]
	companies           *masterStore[model.Company, *model.Company]
	nationalities       *masterStore[model.Nationality, *model.Nationality]
	provinces           *masterStore[model.Province, *model.Province]
	touristDestinations *masterStore[model.TouristDestination, *model.TouristDestination]
	shoppings           *masterStore[model.Shopping, *model.Shopping]
	expenseCategories   *masterStore[model.ExpenseCategory, *model.ExpenseCategory]
	detailedExpenses    *masterStore[model.DetailedExpense, *model.DetailedExpense]
	tours               *tourStore
}

var _ repository.DataStore = (*Store)(nil)

// Open opens (or creates) the sqlite file at path.
func Open(path string, log gormlogger.Interface) (*Store, error) {
	db, err := database.OpenSQLite(path, log)
	if err != nil {
		return nil, err
	}
	s, err := New(db)
	if err != nil {
		_ = database.Close(db)
		return nil, err
	}
	s.owns = true
	return s, nil
}

// New builds a store on an open connection and creates missing tables.
func New(db *gorm.DB) (*Store, error) {
	s := &Store{
		db:  db,
		tx:  repository.NewTransactionManager(db),
		now: func() time.Time { return time.Now().UTC() },
	}
	if err := s.migrate(); err != nil {
		return nil, err
	}

	s.guides = newMasterStore[model.Guide](s, model.KindGuide)
	s.companies = newMasterStore[model.Company](s, model.KindCompany)
	s.nationalities = newMasterStore[model.Nationality](s, model.KindNationality)
	s.provinces = newMasterStore[model.Province](s, model.KindProvince)
	s.touristDestinations = newMasterStore[model.TouristDestination](s, model.KindTouristDestination)
	s.shoppings = newMasterStore[model.Shopping](s, model.KindShopping)
	s.expenseCategories = newMasterStore[model.ExpenseCategory](s, model.KindExpenseCategory)
	s.detailedExpenses = newMasterStore[model.DetailedExpense](s, model.KindDetailedExpense)
	s.tours = &tourStore{s: s}
	return s, nil
}

func tables() []string {
	out := make([]string, 0, len(model.MasterKinds)+1)
	for _, k := range model.MasterKinds {
		out = append(out, string(k))
	}
	return append(out, string(model.KindTour))
}

// migrate creates one document table per kind. Index names are global in
// sqlite, so they are created by hand with the table name in them.
func (s *Store) migrate() error {
	for _, table := range tables() {
		if err := s.db.Table(table).AutoMigrate(&document{}); err != nil {
			return fmt.Errorf("migrate %s: %w", table, err)
		}
		stmts := []string{
			fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_name_key ON %s (name_key)", table, table),
			fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_status ON %s (status)", table, table),
		}
		for _, stmt := range stmts {
			if err := s.db.Exec(stmt).Error; err != nil {
				return fmt.Errorf("index %s: %w", table, err)
			}
		}
	}
	return nil
}

func (s *Store) table(ctx context.Context, kind model.Kind) *gorm.DB {
	return repository.GetDB(ctx, s.db).Table(string(kind))
}

func (s *Store) Backend() repository.Backend { return repository.BackendLocal }

func (s *Store) Guides() repository.MasterRepository[model.Guide]       { return s.guides }
func (s *Store) Companies() repository.MasterRepository[model.Company]  { return s.companies }
func (s *Store) Provinces() repository.MasterRepository[model.Province] { return s.provinces }
func (s *Store) Nationalities() repository.MasterRepository[model.Nationality] {
	return s.nationalities
}
func (s *Store) TouristDestinations() repository.MasterRepository[model.TouristDestination] {
	return s.touristDestinations
}
func (s *Store) Shoppings() repository.MasterRepository[model.Shopping] { return s.shoppings }
func (s *Store) ExpenseCategories() repository.MasterRepository[model.ExpenseCategory] {
	return s.expenseCategories
}
func (s *Store) DetailedExpenses() repository.MasterRepository[model.DetailedExpense] {
	return s.detailedExpenses
}
func (s *Store) Tours() repository.TourRepository { return s.tours }

// Close releases the database when the store opened it.
func (s *Store) Close() error {
	if !s.owns {
		return nil
	}
	return database.Close(s.db)
}
