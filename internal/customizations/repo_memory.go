package customizations

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo for dev mode.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Customization // id -> job
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Customization)}
}

// Create stores a new job.
func (r *MemoryRepo) Create(ctx context.Context, job Customization) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[job.ID] = job
	return nil
}

// GetByID returns a job owned by the given client.
func (r *MemoryRepo) GetByID(ctx context.Context, clientID, id string) (Customization, error) {
	if err := ctx.Err(); err != nil {
		return Customization{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.data[id]
	if !ok || job.ClientID != clientID {
		return Customization{}, ErrNotFound
	}
	return job, nil
}

// Get returns a job by id regardless of owner.
func (r *MemoryRepo) Get(ctx context.Context, id string) (Customization, error) {
	if err := ctx.Err(); err != nil {
		return Customization{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.data[id]
	if !ok {
		return Customization{}, ErrNotFound
	}
	return job, nil
}

// ListByClient returns jobs for a client, newest first, honoring limit/offset.
func (r *MemoryRepo) ListByClient(ctx context.Context, clientID string, limit, offset int) ([]Customization, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	var jobs []Customization
	for _, job := range r.data {
		if job.ClientID == clientID {
			jobs = append(jobs, job)
		}
	}
	r.mu.RUnlock()

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})

	if offset >= len(jobs) {
		return []Customization{}, nil
	}
	end := len(jobs)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return jobs[offset:end], nil
}

// UpdateStatus sets the status and error message of a job.
func (r *MemoryRepo) UpdateStatus(ctx context.Context, id, status, errMsg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	job.Status = status
	job.Error = errMsg
	job.UpdatedAt = time.Now().UTC()
	r.data[id] = job
	return nil
}

// UpdateResult records the result key and counters and marks the job completed.
func (r *MemoryRepo) UpdateResult(ctx context.Context, id, resultKey string, pointsAdded, projectsModified int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	job.Status = StatusCompleted
	job.ResultKey = resultKey
	job.PointsAdded = pointsAdded
	job.ProjectsModified = projectsModified
	job.Error = ""
	job.UpdatedAt = time.Now().UTC()
	r.data[id] = job
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
