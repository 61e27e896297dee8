package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MenuItem is a vendor catalog entry.
type MenuItem struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	VendorID uuid.UUID `gorm:"column:vendor_id;type:uuid;not null;index" json:"vendor_id"`

	Name        string          `gorm:"column:name;type:varchar(160);not null" json:"name"`
	Description string          `gorm:"column:description;type:text" json:"description,omitempty"`
	Category    string          `gorm:"column:category;type:varchar(80);not null;index" json:"category"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null" json:"price"`
	Available   bool            `gorm:"column:available;not null;default:true" json:"available"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (MenuItem) TableName() string {
	return "menu_items"
}

// PriceCents converts the decimal price to integer cents for order snapshots.
func (m *MenuItem) PriceCents() int64 {
	return m.Price.Mul(decimal.NewFromInt(100)).IntPart()
}
