package notify

import "time"

type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// PushJob is one queued push delivery, consumed by cmd/worker.
type PushJob struct {
	ID string `gorm:"primaryKey;size:26" json:"id"` // ULID length

	UserID uint64 `gorm:"index;not null" json:"user_id"`

	Title string `gorm:"type:varchar(255);not null" json:"title"`
	Body  string `gorm:"type:text;not null" json:"body"`

	// JSON payload forwarded to the client app.
	Data string `gorm:"type:text" json:"data,omitempty"`

	Status JobStatus `gorm:"type:varchar(16);index;not null" json:"status"`

	// Filled when failed
	Error *string `gorm:"type:text" json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PushJob) TableName() string { return "push_jobs" }
