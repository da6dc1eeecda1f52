package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Status enum constants
const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusAll      Status = "all" // list filter only
)

type Status string

// Valid reports whether s can be stored on a record.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// Toggle flips active and inactive.
func (s Status) Toggle() Status {
	if s == StatusActive {
		return StatusInactive
	}
	return StatusActive
}

// Kind names an entity collection. The value doubles as the table name.
type Kind string

const (
	KindGuide              Kind = "guides"
	KindCompany            Kind = "companies"
	KindNationality        Kind = "nationalities"
	KindProvince           Kind = "provinces"
	KindTouristDestination Kind = "tourist_destinations"
	KindShopping           Kind = "shoppings"
	KindExpenseCategory    Kind = "expense_categories"
	KindDetailedExpense    Kind = "detailed_expenses"
	KindTour               Kind = "tours"
)

// MasterKinds lists the catalog kinds in import order: referenced kinds come
// before the kinds that reference them.
var MasterKinds = []Kind{
	KindGuide,
	KindCompany,
	KindNationality,
	KindProvince,
	KindTouristDestination,
	KindShopping,
	KindExpenseCategory,
	KindDetailedExpense,
}

// MasterBase holds the fields shared by every catalog record.
type MasterBase struct {
	ID             uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string                      `gorm:"type:varchar(255);not null" json:"name" validate:"required,max=255"`
	NameKey        string                      `gorm:"type:varchar(255);not null;uniqueIndex" json:"-"`
	Status         Status                      `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	SearchKeywords datatypes.JSONSlice[string] `json:"search_keywords"`
	CreatedAt      time.Time                   `json:"created_at"`
	UpdatedAt      time.Time                   `json:"updated_at"`
}

// Meta gives generic code access to the shared fields.
func (b *MasterBase) Meta() *MasterBase { return b }

func (b *MasterBase) trimBase() {
	b.Name = strings.TrimSpace(b.Name)
}

// Master is implemented by pointers to the eight catalog types. TrimFields
// normalizes user input: text is trimmed and money rounded to MoneyScale.
type Master interface {
	Meta() *MasterBase
	EntityKind() Kind
	TrimFields()
}

// MasterPtr constrains generic stores to *T where *T is a catalog type.
type MasterPtr[T any] interface {
	*T
	Master
}

// EntityRef is the snapshot of a catalog record taken when another record
// points at it. NameAtBooking is never refreshed from the referenced record.
type EntityRef struct {
	ID            *uuid.UUID `gorm:"type:uuid" json:"id"`
	NameAtBooking string     `gorm:"type:varchar(255)" json:"name_at_booking"`
}

// NewRef snapshots the given record.
func NewRef(b *MasterBase) EntityRef {
	id := b.ID
	return EntityRef{ID: &id, NameAtBooking: b.Name}
}

// IsZero reports whether the reference points nowhere.
func (r EntityRef) IsZero() bool {
	return r.ID == nil && r.NameAtBooking == ""
}

func (r *EntityRef) trim() {
	r.NameAtBooking = strings.TrimSpace(r.NameAtBooking)
}
