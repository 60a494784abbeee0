package models

import "time"

// Upload is the stored record of a user-uploaded file: its metadata plus
// the text extracted from it. Immutable after creation except deletion.
type Upload struct {
	ID          string    `json:"uploadId"`
	ProjectID   string    `json:"projectId"`
	Filename    string    `json:"filename"`
	Content     string    `json:"content"`
	ByteSize    int64     `json:"byteSize"`
	ContentType string    `json:"contentType"`
	UploadedBy  *string   `json:"uploadedBy,omitempty"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// UploadSummary is an upload row with a bounded content preview, used by
// listing endpoints so they stay cheap regardless of file size.
type UploadSummary struct {
	ID          string    `json:"uploadId"`
	ProjectID   string    `json:"projectId"`
	Filename    string    `json:"filename"`
	Preview     string    `json:"preview"`
	ByteSize    int64     `json:"byteSize"`
	ContentType string    `json:"contentType"`
	UploadedBy  *string   `json:"uploadedBy,omitempty"`
	UploadedAt  time.Time `json:"uploadedAt"`
}
