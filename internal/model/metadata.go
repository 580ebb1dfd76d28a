package model

import "time"

// FileMetadata is the record written for every accepted upload.
// Records are immutable once written: they are created by the intake
// validator and removed only by the store's expiry sweep.
type FileMetadata struct {
	ID             string    `json:"id"`
	UploadDate     time.Time `json:"uploadDate"`
	FileExtension  string    `json:"fileExtension"`
	FileName       string    `json:"fileName"`
	FileSize       int64     `json:"fileSize"`
	ExpirationTime int64     `json:"expirationTime"` // epoch seconds
}
