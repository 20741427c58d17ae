package customizations

import "context"

// Repo defines persistence operations for customization jobs.
type Repo interface {
	Create(ctx context.Context, job Customization) error
	GetByID(ctx context.Context, clientID, id string) (Customization, error)
	// Get fetches a job without a client scope; the worker uses it.
	Get(ctx context.Context, id string) (Customization, error)
	ListByClient(ctx context.Context, clientID string, limit, offset int) ([]Customization, error)
	UpdateStatus(ctx context.Context, id, status, errMsg string) error
	UpdateResult(ctx context.Context, id, resultKey string, pointsAdded, projectsModified int) error
}
