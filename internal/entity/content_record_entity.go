package entity

import "time"

type ContentRecord struct {
	Id        int64
	Content   string
	SourceURL string
	Embedding []float32 // nil until the embed consumer has processed the row
	CreatedAt time.Time
	UpdatedAt time.Time
}
