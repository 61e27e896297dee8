package models

import (
	"time"

	"github.com/google/uuid"
)

// Vendor is a restaurant or kitchen fulfilling scheduled orders.
type Vendor struct {
	ID uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`

	Name     string `gorm:"column:name;type:varchar(160);not null" json:"name"`
	Slug     string `gorm:"column:slug;type:varchar(160);not null;uniqueIndex" json:"slug"`
	Email    string `gorm:"column:email;type:varchar(255);not null" json:"email"`
	Timezone string `gorm:"column:timezone;type:varchar(64);not null;default:'UTC'" json:"timezone"`
	Active   bool   `gorm:"column:active;not null;default:true" json:"active"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Vendor) TableName() string {
	return "vendors"
}
