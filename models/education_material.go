package models

import "time"

// EducationMaterial is a text unit extracted from an ingested PDF by
// cmd/material-ingest. SourceHash dedupes repeated ingest runs.
type EducationMaterial struct {
	MaterialID int       `gorm:"primaryKey;column:material_id" json:"material_id"`
	Title      string    `gorm:"column:title" json:"title"`
	SourceFile string    `gorm:"column:source_file" json:"source_file"`
	SourceHash string    `gorm:"column:source_hash;index" json:"source_hash"`
	Section    int       `gorm:"column:section" json:"section"`
	Content    string    `gorm:"column:content" json:"content"`
	PageStart  int       `gorm:"column:page_start" json:"page_start"`
	PageEnd    int       `gorm:"column:page_end" json:"page_end"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
}

func (EducationMaterial) TableName() string {
	return "education_materials"
}
