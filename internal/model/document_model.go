package model

import (
	"time"

	"gorm.io/datatypes"
)

// Document is one row of the generic JSONB document table backing the
// document store. Collection + DocId mirror the path addressing scheme.
type Document struct {
	Collection string         `gorm:"primaryKey;size:512;not null"`
	DocId      string         `gorm:"primaryKey;size:128;not null"`
	Data       datatypes.JSON `gorm:"type:jsonb;not null"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime"`
}

func (Document) TableName() string {
	return "documents"
}
