package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Tour is the booking aggregate. Its four financial subcollections are
// child tables in the relational backend and embedded arrays in the local one.
type Tour struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TourCode    string    `gorm:"type:varchar(100);not null" json:"tour_code" validate:"required,max=100"`
	TourCodeKey string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"-"`
	Status      Status    `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`

	CompanyRef           EntityRef `gorm:"embedded;embeddedPrefix:company_" json:"company_ref"`
	GuideRef             EntityRef `gorm:"embedded;embeddedPrefix:guide_" json:"guide_ref"`
	ClientNationalityRef EntityRef `gorm:"embedded;embeddedPrefix:client_nationality_" json:"client_nationality_ref"`
	ClientName           string    `gorm:"type:varchar(255)" json:"client_name" validate:"max=255"`

	Adults      int       `gorm:"not null;default:0" json:"adults" validate:"gte=0"`
	Children    int       `gorm:"not null;default:0" json:"children" validate:"gte=0"`
	TotalGuests int       `gorm:"not null;default:0" json:"total_guests"` // adults + children
	StartDate   time.Time `gorm:"index" json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	TotalDays   int       `gorm:"not null;default:0" json:"total_days"` // inclusive
	Note        string    `gorm:"type:text" json:"note"`

	SearchKeywords datatypes.JSONSlice[string] `json:"search_keywords"`

	Destinations []TourDestination                `gorm:"foreignKey:TourID;constraint:OnDelete:CASCADE" json:"destinations"`
	Expenses     []TourExpense                    `gorm:"foreignKey:TourID;constraint:OnDelete:CASCADE" json:"expenses"`
	Meals        []TourMeal                       `gorm:"foreignKey:TourID;constraint:OnDelete:CASCADE" json:"meals"`
	Allowances   []TourAllowance                  `gorm:"foreignKey:TourID;constraint:OnDelete:CASCADE" json:"allowances"`
	Shoppings    datatypes.JSONSlice[TourShopping] `json:"shoppings"`

	Summary TourSummary `gorm:"embedded;embeddedPrefix:summary_" json:"summary"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Tour) TableName() string { return string(KindTour) }

// TrimFields trims every free-text field of the tour and its shoppings.
func (t *Tour) TrimFields() {
	t.TourCode = strings.TrimSpace(t.TourCode)
	t.ClientName = strings.TrimSpace(t.ClientName)
	t.Note = strings.TrimSpace(t.Note)
	t.CompanyRef.trim()
	t.GuideRef.trim()
	t.ClientNationalityRef.trim()
	for i := range t.Shoppings {
		t.Shoppings[i].Note = strings.TrimSpace(t.Shoppings[i].Note)
		t.Shoppings[i].ShoppingRef.trim()
		t.Shoppings[i].Amount = RoundMoney(t.Shoppings[i].Amount)
	}
	t.Summary.AdvancePayment = RoundMoney(t.Summary.AdvancePayment)
	t.Summary.CompanyTip = RoundMoney(t.Summary.CompanyTip)
	t.Summary.CollectionsForCompany = RoundMoney(t.Summary.CollectionsForCompany)
}

// MoneyScale is the number of decimal places kept for money amounts. It
// matches the decimal(18,2) columns.
const MoneyScale = 2

// RoundMoney rounds d half away from zero to MoneyScale places.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// Derive recomputes TotalGuests and TotalDays.
func (t *Tour) Derive() {
	t.TotalGuests = t.Adults + t.Children
	t.TotalDays = InclusiveDays(t.StartDate, t.EndDate)
}

// LineItemsLoaded reports whether all four financial subcollections were
// read. A nil slice means "not loaded", an empty slice means "no rows".
func (t *Tour) LineItemsLoaded() bool {
	return t.Destinations != nil && t.Expenses != nil && t.Meals != nil && t.Allowances != nil
}

// EnsureLineItems replaces nil subcollections with empty ones.
func (t *Tour) EnsureLineItems() {
	if t.Destinations == nil {
		t.Destinations = []TourDestination{}
	}
	if t.Expenses == nil {
		t.Expenses = []TourExpense{}
	}
	if t.Meals == nil {
		t.Meals = []TourMeal{}
	}
	if t.Allowances == nil {
		t.Allowances = []TourAllowance{}
	}
	if t.Shoppings == nil {
		t.Shoppings = datatypes.JSONSlice[TourShopping]{}
	}
}

// InclusiveDays counts calendar days from start to end, both included.
// Zero dates or an end before the start give 0.
func InclusiveDays(start, end time.Time) int {
	if start.IsZero() || end.IsZero() {
		return 0
	}
	s := DateOnly(start)
	e := DateOnly(end)
	if e.Before(s) {
		return 0
	}
	return int(e.Sub(s).Hours()/24) + 1
}

// DateOnly drops the clock part and pins the date to UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TourSummary is the cascading settlement of a tour. AdvancePayment,
// CompanyTip and CollectionsForCompany are entered by the operator; every
// other field is derived from the line items.
type TourSummary struct {
	TotalTabs             decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_tabs"`
	AdvancePayment        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"advance_payment"`
	TotalAfterAdvance     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_after_advance"`
	CompanyTip            decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"company_tip"`
	TotalAfterTip         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_after_tip"`
	CollectionsForCompany decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"collections_for_company"`
	TotalAfterCollections decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_after_collections"`
	FinalTotal            decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"final_total"`
}
