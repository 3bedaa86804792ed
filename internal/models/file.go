package models

import "time"

// FileRecord is one row of the file index: a stored filename and the
// account that uploaded it. The index is append-only.
type FileRecord struct {
	ID         int64     `json:"id"`
	Filename   string    `json:"filename"`
	UserID     int64     `json:"userId"`
	UploadedAt time.Time `json:"uploadedAt"`
}
