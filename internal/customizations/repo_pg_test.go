package customizations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func jobRows(jobs ...Customization) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "client_id", "file_name", "status", "source_key", "result_key",
		"tech_stacks", "points_added", "projects_modified", "recipient_email",
		"error", "created_at", "updated_at",
	})
	for _, job := range jobs {
		rows.AddRow(
			job.ID, job.ClientID, job.FileName, job.Status, job.SourceKey,
			job.ResultKey, job.TechStacksRaw, job.PointsAdded,
			job.ProjectsModified, job.RecipientEmail, job.Error,
			job.CreatedAt, job.UpdatedAt,
		)
	}
	return rows
}

func TestPGRepoCreate(t *testing.T) {
	repo, mock := newMockRepo(t)

	job := Customization{
		ID:             "cust-1",
		ClientID:       "client-1",
		FileName:       "resume.docx",
		Status:         StatusPending,
		SourceKey:      "client-1/resume.docx",
		TechStacksRaw:  `{"names":["Go"],"points":{"Go":["p1"]}}`,
		RecipientEmail: "dest@example.com",
		CreatedAt:      time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO customizations").
		WithArgs(
			job.ID,
			job.ClientID,
			job.FileName,
			job.Status,
			sqlmock.AnyArg(), // source_key
			sqlmock.AnyArg(), // tech_stacks
			sqlmock.AnyArg(), // recipient_email
			sqlmock.AnyArg(), // created_at
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), job); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByID(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now().UTC()
	want := Customization{
		ID:        "cust-1",
		ClientID:  "client-1",
		FileName:  "resume.docx",
		Status:    StatusCompleted,
		SourceKey: "client-1/resume.docx",
		ResultKey: "client-1/resume.docx.customized.docx",
		CreatedAt: now,
		UpdatedAt: now,
	}

	mock.ExpectQuery("SELECT (.+) FROM customizations").
		WithArgs("client-1", "cust-1").
		WillReturnRows(jobRows(want))

	got, err := repo.GetByID(context.Background(), "client-1", "cust-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ID != want.ID || got.ResultKey != want.ResultKey || got.Status != want.Status {
		t.Fatalf("unexpected job: %+v", got)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM customizations").
		WithArgs("client-1", "missing").
		WillReturnRows(jobRows())

	_, err := repo.GetByID(context.Background(), "client-1", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoListByClient(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now().UTC()
	first := Customization{ID: "cust-2", ClientID: "client-1", FileName: "b.docx", Status: StatusPending, CreatedAt: now, UpdatedAt: now}
	second := Customization{ID: "cust-1", ClientID: "client-1", FileName: "a.docx", Status: StatusCompleted, CreatedAt: now.Add(-time.Hour), UpdatedAt: now}

	mock.ExpectQuery("SELECT (.+) FROM customizations").
		WithArgs("client-1", 20, 0).
		WillReturnRows(jobRows(first, second))

	jobs, err := repo.ListByClient(context.Background(), "client-1", 0, 0)
	if err != nil {
		t.Fatalf("ListByClient: %v", err)
	}
	if len(jobs) != 2 || jobs[0].ID != "cust-2" || jobs[1].ID != "cust-1" {
		t.Fatalf("unexpected jobs: %+v", jobs)
	}
}

func TestPGRepoUpdateStatusNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE customizations").
		WithArgs(StatusFailed, sqlmock.AnyArg(), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "missing", StatusFailed, "boom")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoUpdateResult(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE customizations").
		WithArgs(StatusCompleted, "key.customized.docx", 5, 2, "cust-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateResult(context.Background(), "cust-1", "key.customized.docx", 5, 2); err != nil {
		t.Fatalf("UpdateResult: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
