package models

import "time"

// PostView stores aggregated view counts per day and post slug.
type PostView struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Day       time.Time `gorm:"index:idx_pv_day_slug,unique;type:date;not null" json:"day"`
	Slug      string    `gorm:"index;index:idx_pv_day_slug,unique;size:255;not null" json:"slug"`
	Count     int64     `gorm:"not null;default:0" json:"count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
