package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Guide is a tour guide that can be assigned to tours.
type Guide struct {
	MasterBase
	Phone string `gorm:"type:varchar(50)" json:"phone"`
	Email string `gorm:"type:varchar(255)" json:"email" validate:"omitempty,email"`
	Note  string `gorm:"type:text" json:"note"`
}

func (Guide) TableName() string { return string(KindGuide) }
func (Guide) EntityKind() Kind  { return KindGuide }
func (g *Guide) TrimFields() {
	g.trimBase()
	g.Phone = strings.TrimSpace(g.Phone)
	g.Email = strings.TrimSpace(g.Email)
	g.Note = strings.TrimSpace(g.Note)
}

// Company is a travel agency or partner that books tours.
type Company struct {
	MasterBase
	ContactName string `gorm:"type:varchar(255)" json:"contact_name"`
	Phone       string `gorm:"type:varchar(50)" json:"phone"`
	Email       string `gorm:"type:varchar(255)" json:"email" validate:"omitempty,email"`
	Note        string `gorm:"type:text" json:"note"`
}

func (Company) TableName() string { return string(KindCompany) }
func (Company) EntityKind() Kind  { return KindCompany }
func (c *Company) TrimFields() {
	c.trimBase()
	c.ContactName = strings.TrimSpace(c.ContactName)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.TrimSpace(c.Email)
	c.Note = strings.TrimSpace(c.Note)
}

// Nationality of a tour's clients.
type Nationality struct {
	MasterBase
	Code string `gorm:"type:varchar(8)" json:"code" validate:"max=8"`
}

func (Nationality) TableName() string { return string(KindNationality) }
func (Nationality) EntityKind() Kind  { return KindNationality }
func (n *Nationality) TrimFields() {
	n.trimBase()
	n.Code = strings.ToUpper(strings.TrimSpace(n.Code))
}

type Province struct {
	MasterBase
	Region string `gorm:"type:varchar(100)" json:"region"`
}

func (Province) TableName() string { return string(KindProvince) }
func (Province) EntityKind() Kind  { return KindProvince }
func (p *Province) TrimFields() {
	p.trimBase()
	p.Region = strings.TrimSpace(p.Region)
}

// TouristDestination is a sight with an entrance price per guest.
type TouristDestination struct {
	MasterBase
	Price       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"price"`
	ProvinceRef EntityRef       `gorm:"embedded;embeddedPrefix:province_" json:"province_ref"`
}

func (TouristDestination) TableName() string { return string(KindTouristDestination) }
func (TouristDestination) EntityKind() Kind  { return KindTouristDestination }
func (d *TouristDestination) TrimFields() {
	d.trimBase()
	d.ProvinceRef.trim()
	d.Price = RoundMoney(d.Price)
}

// Shopping is a shop where tours stop and the company collects commission.
type Shopping struct {
	MasterBase
	ProvinceRef EntityRef `gorm:"embedded;embeddedPrefix:province_" json:"province_ref"`
	Note        string    `gorm:"type:text" json:"note"`
}

func (Shopping) TableName() string { return string(KindShopping) }
func (Shopping) EntityKind() Kind  { return KindShopping }
func (s *Shopping) TrimFields() {
	s.trimBase()
	s.ProvinceRef.trim()
	s.Note = strings.TrimSpace(s.Note)
}

type ExpenseCategory struct {
	MasterBase
	Description string `gorm:"type:text" json:"description"`
}

func (ExpenseCategory) TableName() string { return string(KindExpenseCategory) }
func (ExpenseCategory) EntityKind() Kind  { return KindExpenseCategory }
func (c *ExpenseCategory) TrimFields() {
	c.trimBase()
	c.Description = strings.TrimSpace(c.Description)
}

// DetailedExpense is a priced expense item inside a category.
type DetailedExpense struct {
	MasterBase
	Price       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"price"`
	CategoryRef EntityRef       `gorm:"embedded;embeddedPrefix:category_" json:"category_ref"`
}

func (DetailedExpense) TableName() string { return string(KindDetailedExpense) }
func (DetailedExpense) EntityKind() Kind  { return KindDetailedExpense }
func (e *DetailedExpense) TrimFields() {
	e.trimBase()
	e.CategoryRef.trim()
	e.Price = RoundMoney(e.Price)
}
