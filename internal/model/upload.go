package model

import "github.com/google/uuid"

type UploadStatus string

const (
	UploadPending   UploadStatus = "pending"
	UploadSucceeded UploadStatus = "succeeded"
	UploadFailed    UploadStatus = "failed"
)

// UploadJob tracks one attachment submission through its bounded retry
// budget. Attempts only ever grows; a job that exhausts the budget goes to
// UploadFailed and is never picked up again.
type UploadJob struct {
	Id        uuid.UUID
	Endpoint  string
	MonthTag  string
	FieldName string
	FileName  string
	MimeType  string
	Size      int64
	Attempts  int
	Status    UploadStatus
}
