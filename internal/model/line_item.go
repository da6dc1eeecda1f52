package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is implemented by pointers to the four financial line-item types.
type LineItem interface {
	ItemID() uuid.UUID
	SetItemID(id uuid.UUID)
	ItemPosition() int
	Attach(tourID uuid.UUID, position int)
	TrimFields()
}

// LineItemPtr constrains generic line-item stores to *T.
type LineItemPtr[T any] interface {
	*T
	LineItem
}

// ItemBase holds the bookkeeping columns of a line-item row.
type ItemBase struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TourID   uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Position int       `gorm:"not null;default:0" json:"-"`
}

func (b *ItemBase) ItemID() uuid.UUID      { return b.ID }
func (b *ItemBase) SetItemID(id uuid.UUID) { b.ID = id }
func (b *ItemBase) ItemPosition() int      { return b.Position }

// Attach binds the item to its tour and its place in the list.
func (b *ItemBase) Attach(tourID uuid.UUID, position int) {
	b.TourID = tourID
	b.Position = position
}

// TourDestination is a visit to a tourist destination on a given day.
type TourDestination struct {
	ItemBase
	DestinationRef EntityRef       `gorm:"embedded;embeddedPrefix:destination_" json:"destination_ref"`
	Date           *time.Time      `json:"date"`
	Price          decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"price"`
	Guests         *int            `json:"guests"` // nil means the whole group
	Note           string          `gorm:"type:text" json:"note"`
}

func (TourDestination) TableName() string { return "tour_destinations" }
func (d *TourDestination) TrimFields() {
	d.DestinationRef.trim()
	d.Note = strings.TrimSpace(d.Note)
	d.Price = RoundMoney(d.Price)
}

// TourExpense is a detailed expense paid during the tour.
type TourExpense struct {
	ItemBase
	ExpenseRef EntityRef       `gorm:"embedded;embeddedPrefix:expense_" json:"expense_ref"`
	Date       *time.Time      `json:"date"`
	Price      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"price"`
	Guests     *int            `json:"guests"`
	Note       string          `gorm:"type:text" json:"note"`
}

func (TourExpense) TableName() string { return "tour_expenses" }
func (e *TourExpense) TrimFields() {
	e.ExpenseRef.trim()
	e.Note = strings.TrimSpace(e.Note)
	e.Price = RoundMoney(e.Price)
}

type TourMeal struct {
	ItemBase
	Name   string          `gorm:"type:varchar(255)" json:"name" validate:"max=255"`
	Date   *time.Time      `json:"date"`
	Price  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"price"`
	Guests *int            `json:"guests"`
	Note   string          `gorm:"type:text" json:"note"`
}

func (TourMeal) TableName() string { return "tour_meals" }
func (m *TourMeal) TrimFields() {
	m.Name = strings.TrimSpace(m.Name)
	m.Note = strings.TrimSpace(m.Note)
	m.Price = RoundMoney(m.Price)
}

// TourAllowance is a per-diem paid per day, not per guest.
type TourAllowance struct {
	ItemBase
	Name        string          `gorm:"type:varchar(255)" json:"name" validate:"max=255"`
	ProvinceRef EntityRef       `gorm:"embedded;embeddedPrefix:province_" json:"province_ref"`
	Date        *time.Time      `json:"date"`
	Price       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"price"`
	Quantity    *int            `json:"quantity"` // nil counts as 1
	Note        string          `gorm:"type:text" json:"note"`
}

func (TourAllowance) TableName() string { return "tour_allowances" }
func (a *TourAllowance) TrimFields() {
	a.Name = strings.TrimSpace(a.Name)
	a.ProvinceRef.trim()
	a.Note = strings.TrimSpace(a.Note)
	a.Price = RoundMoney(a.Price)
}

// TourShopping records a shop stop. It is stored inline with the tour and
// does not enter the summary.
type TourShopping struct {
	ID          uuid.UUID       `json:"id"`
	ShoppingRef EntityRef       `json:"shopping_ref"`
	Date        *time.Time      `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Note        string          `json:"note"`
}
