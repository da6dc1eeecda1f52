// Package remote is the relational backend: normalized tables on PostgreSQL,
// tour line items in child tables addressed by row id.
package remote

import (
	"context"
	"fmt"
	"time"

	"tourops/internal/config"
	"tourops/internal/database"
	"tourops/internal/model"
	"tourops/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Store implements repository.DataStore on a relational database.
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

// Open connects to PostgreSQL, creates missing tables and returns the store.
func Open(ctx context.Context, cfg config.RemoteConfig, log gormlogger.Interface) (*Store, error) {
	db, err := database.OpenPostgres(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, err
	}
	s := New(db)
	s.owns = true
	return s, nil
}

// Migrate creates the tables of every kind and the four line-item tables.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Guide{},
		&model.Company{},
		&model.Nationality{},
		&model.Province{},
		&model.TouristDestination{},
		&model.Shopping{},
		&model.ExpenseCategory{},
		&model.DetailedExpense{},
		&model.Tour{},
		&model.TourDestination{},
		&model.TourExpense{},
		&model.TourMeal{},
		&model.TourAllowance{},
	)
	if err != nil {
		return fmt.Errorf("migrate remote schema: %w", err)
	}
	return nil
}

// New builds a store on a migrated connection.
func New(db *gorm.DB) *Store {
	s := &Store{
		db:  db,
		tx:  repository.NewTransactionManager(db),
		now: func() time.Time { return time.Now().UTC() },
	}
	s.guides = newMasterStore[model.Guide](s, model.KindGuide, false)
	s.companies = newMasterStore[model.Company](s, model.KindCompany, false)
	s.nationalities = newMasterStore[model.Nationality](s, model.KindNationality, false)
	s.provinces = newMasterStore[model.Province](s, model.KindProvince, false)
	s.touristDestinations = newMasterStore[model.TouristDestination](s, model.KindTouristDestination, false)
	s.shoppings = newMasterStore[model.Shopping](s, model.KindShopping, false)
	s.expenseCategories = newMasterStore[model.ExpenseCategory](s, model.KindExpenseCategory, true)
	s.detailedExpenses = newMasterStore[model.DetailedExpense](s, model.KindDetailedExpense, true)
	s.tours = &tourStore{s: s}
	return s
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return repository.GetDB(ctx, s.db)
}

// nameTaken is the indexed fast path of the uniqueness check.
func (s *Store) nameTaken(ctx context.Context, table, column, key string, self uuid.UUID) (bool, error) {
	var n int64
	err := s.conn(ctx).Table(table).
		Where(column+" = ? AND id <> ?", key, self.String()).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check %s name: %w", table, err)
	}
	return n > 0, nil
}

func (s *Store) Backend() repository.Backend { return repository.BackendRemote }

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
