package customizations

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const jobColumns = `id, client_id, file_name, status, source_key, result_key, tech_stacks, points_added, projects_modified, recipient_email, error, created_at, updated_at`

// Create inserts a new customization job.
func (r *PGRepo) Create(ctx context.Context, job Customization) error {
	const query = `
INSERT INTO customizations (
    id,
    client_id,
    file_name,
    status,
    source_key,
    tech_stacks,
    recipient_email,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`

	status := job.Status
	if status == "" {
		status = StatusPending
	}

	var sourceKey sql.NullString
	if job.SourceKey != "" {
		sourceKey = sql.NullString{String: job.SourceKey, Valid: true}
	}
	var stacks sql.NullString
	if job.TechStacksRaw != "" {
		stacks = sql.NullString{String: job.TechStacksRaw, Valid: true}
	}
	var recipient sql.NullString
	if job.RecipientEmail != "" {
		recipient = sql.NullString{String: job.RecipientEmail, Valid: true}
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		job.ID,
		job.ClientID,
		job.FileName,
		status,
		sourceKey,
		stacks,
		recipient,
		job.CreatedAt,
	)
	return err
}

// GetByID fetches a job by id for a client.
func (r *PGRepo) GetByID(ctx context.Context, clientID, id string) (Customization, error) {
	const query = `
SELECT ` + jobColumns + `
FROM customizations
WHERE client_id = $1 AND id = $2
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, clientID, id))
}

// Get fetches a job by id regardless of owner.
func (r *PGRepo) Get(ctx context.Context, id string) (Customization, error) {
	const query = `
SELECT ` + jobColumns + `
FROM customizations
WHERE id = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

// ListByClient lists jobs ordered newest-first.
func (r *PGRepo) ListByClient(ctx context.Context, clientID string, limit, offset int) ([]Customization, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT ` + jobColumns + `
FROM customizations
WHERE client_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, clientID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Customization
	for rows.Next() {
		job, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

// UpdateStatus sets the status and error message of a job.
func (r *PGRepo) UpdateStatus(ctx context.Context, id, status, errMsg string) error {
	const query = `
UPDATE customizations
SET status = $1, error = $2, updated_at = now()
WHERE id = $3`
	var msg sql.NullString
	if errMsg != "" {
		msg = sql.NullString{String: errMsg, Valid: true}
	}
	res, err := r.DB.ExecContext(ctx, query, status, msg, id)
	if err != nil {
		return err
	}
	updated, _ := res.RowsAffected()
	if updated == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateResult records the result key and counters and marks the job completed.
func (r *PGRepo) UpdateResult(ctx context.Context, id, resultKey string, pointsAdded, projectsModified int) error {
	const query = `
UPDATE customizations
SET status = $1, result_key = $2, points_added = $3, projects_modified = $4, error = NULL, updated_at = now()
WHERE id = $5`
	res, err := r.DB.ExecContext(ctx, query, StatusCompleted, resultKey, pointsAdded, projectsModified, id)
	if err != nil {
		return err
	}
	updated, _ := res.RowsAffected()
	if updated == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PGRepo) scanOne(row rowScanner) (Customization, error) {
	var job Customization
	var sourceKey, resultKey, stacks, recipient, errMsg sql.NullString
	err := row.Scan(
		&job.ID,
		&job.ClientID,
		&job.FileName,
		&job.Status,
		&sourceKey,
		&resultKey,
		&stacks,
		&job.PointsAdded,
		&job.ProjectsModified,
		&recipient,
		&errMsg,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Customization{}, ErrNotFound
		}
		return Customization{}, err
	}
	if sourceKey.Valid {
		job.SourceKey = sourceKey.String
	}
	if resultKey.Valid {
		job.ResultKey = resultKey.String
	}
	if stacks.Valid {
		job.TechStacksRaw = stacks.String
	}
	if recipient.Valid {
		job.RecipientEmail = recipient.String
	}
	if errMsg.Valid {
		job.Error = errMsg.String
	}
	return job, nil
}

var _ Repo = (*PGRepo)(nil)
