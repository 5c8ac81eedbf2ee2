package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// ContentRecord keeps the original serial integer key so external ingestion
// tooling and mutation responses stay id-compatible.
type ContentRecord struct {
	Id        int64            `gorm:"primaryKey;autoIncrement"`
	Content   string           `gorm:"type:text"`
	SourceURL string           `gorm:"type:text;column:source_url"`
	Embedding *pgvector.Vector `gorm:"type:vector(768)"`
	CreatedAt time.Time        `gorm:"autoCreateTime"`
	UpdatedAt time.Time        `gorm:"autoUpdateTime"`
}

func (ContentRecord) TableName() string {
	return "content_records"
}
