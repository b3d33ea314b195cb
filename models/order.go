package models

import "time"

type Order struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	OrderNumber   string    `gorm:"size:64" json:"order_number"`
	CustomerName  string    `gorm:"size:255" json:"customer_name"`
	CustomerEmail string    `gorm:"size:255" json:"customer_email"`
	Status        string    `gorm:"size:50;default:pending" json:"status"`
	TotalCents    int64     `gorm:"default:0" json:"total_cents"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
