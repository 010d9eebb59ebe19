package models

import "time"

// UploadedFile represents a document stored under a generated identifier.
type UploadedFile struct {
	ID         string    `json:"file_id"`
	FileName   string    `json:"filename"`
	StoredPath string    `json:"-"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}
