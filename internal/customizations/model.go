package customizations

import "time"

// Job status values.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Customization represents one resume customization job owned by a client.
type Customization struct {
	ID               string
	ClientID         string
	FileName         string
	Status           string
	SourceKey        string
	ResultKey        string
	TechStacksRaw    string
	PointsAdded      int
	ProjectsModified int
	RecipientEmail   string
	Error            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
