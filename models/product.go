package models

import "time"

type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255" json:"name"`
	Description string    `json:"description"`
	Category    string    `gorm:"size:100;default:''" json:"category"`
	Size        string    `gorm:"size:50;default:''" json:"size"`
	Gender      string    `gorm:"size:50;default:''" json:"gender"`
	Colors      []string  `gorm:"type:text;serializer:json" json:"colors"`
	Price       float64   `json:"price"`
	Stock       uint      `gorm:"default:0" json:"stock"`
	Status      string    `gorm:"size:50;default:unpublished" json:"status"`
	CoverImage  string    `gorm:"size:255;default:''" json:"cover_image"`
	Image1      string    `gorm:"size:255;default:''" json:"image_1"`
	Image2      string    `gorm:"size:255;default:''" json:"image_2"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
