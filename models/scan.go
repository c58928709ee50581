package models

import "time"

// Scan records one identification attempt against an uploaded card photo.
type Scan struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	FileName    string  `gorm:"size:255;not null"`
	StorePath   string  `gorm:"column:store_path;size:512"`
	ContentType string  `gorm:"size:128"`
	RawText     string  `gorm:"size:255"`
	Normalized  string  `gorm:"size:64;index"`
	Shape       string  `gorm:"size:32"`
	Confidence  float64 `gorm:"not null;default:0"`
	Feedback    string  `gorm:"size:512"`
	// Mark scans whose pipeline run failed outright so they can be reviewed
	// instead of silently dropped.
	Failed       bool   `gorm:"default:false;index"`
	FailedReason string `gorm:"size:255"`
	Candidates   []ScanCandidate
}
