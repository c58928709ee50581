package models

import "time"

// ScanCandidate is one persisted variant candidate from a scan's result list.
// Position holds the index in the pipeline's final ordered output.
type ScanCandidate struct {
	ID         uint `gorm:"primaryKey"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ScanID     uint   `gorm:"index;not null"`
	Scan       Scan   `gorm:"foreignKey:ScanID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Position   int    `gorm:"not null"`
	CatalogID  string `gorm:"size:64;index"`
	Name       string `gorm:"size:255"`
	SetID      string `gorm:"size:64;index"`
	SetName    string `gorm:"size:255"`
	Number     string `gorm:"size:32"`
	Rarity     string `gorm:"size:64"`
	Variant    string `gorm:"size:64"`
	PriceCents *int64
	Currency   string `gorm:"size:8"`
	Confidence float64
	Similarity *float64
	IsChase    *bool
	Source     string `gorm:"size:16"`
}
