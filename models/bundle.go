package models

import "time"

type Bundle struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255" json:"title"`
	Description string    `json:"description"`
	Status      string    `gorm:"size:50;default:unpublished" json:"status"`
	CoverImage  string    `gorm:"size:255;default:''" json:"cover_image"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	// Resolved in code from bundle_products rather than preloaded, so the
	// whole listing needs a single association query.
	Products   []Product `gorm:"-" json:"products"`
	ProductIDs []uint    `gorm:"-" json:"productIds"`
}

type BundleProduct struct {
	BundleID  uint    `gorm:"primaryKey;index" json:"bundle_id"`
	ProductID uint    `gorm:"primaryKey;index" json:"product_id"`
	Bundle    Bundle  `gorm:"foreignKey:BundleID;constraint:OnDelete:CASCADE" json:"-"`
	Product   Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
}
