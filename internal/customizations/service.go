package customizations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ryanmontogomory-hue/Injector-sub000/internal/email"
	"github.com/ryanmontogomory-hue/Injector-sub000/internal/extract"
	"github.com/ryanmontogomory-hue/Injector-sub000/internal/queue"
	"github.com/ryanmontogomory-hue/Injector-sub000/internal/shared/metrics"
	"github.com/ryanmontogomory-hue/Injector-sub000/internal/shared/storage/object"
	"github.com/ryanmontogomory-hue/Injector-sub000/internal/shared/telemetry"
	"github.com/ryanmontogomory-hue/Injector-sub000/resume/customize"
	"github.com/ryanmontogomory-hue/Injector-sub000/resume/parse"
)

const (
	resultKeySuffix = ".customized.docx"
	manualTechName  = "Additional"
	messageVersion  = 1
	docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Service contains business logic for customization jobs.
type Service struct {
	Repo      Repo
	Store     object.ObjectStore
	Queue     queue.Client
	Email     email.Sender
	Processor *customize.Processor
	Parser    *parse.TechStackParser
}

// CreateInput carries everything needed to start a customization.
type CreateInput struct {
	ClientID       string
	FileName       string
	File           io.Reader
	TechStackText  string
	ManualPoints   string
	RecipientEmail string
	RequestID      string
}

// keySaver is the optional store capability for writing derived objects.
type keySaver interface {
	SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error)
}

// Create stores the upload, parses tech stacks, persists the job and
// either enqueues it or processes it synchronously when no queue is
// configured.
func (s *Service) Create(ctx context.Context, in CreateInput) (Customization, error) {
	if in.FileName == "" || in.File == nil {
		return Customization{}, ErrInvalidInput
	}
	if !strings.EqualFold(filepath.Ext(in.FileName), ".docx") {
		return Customization{}, fmt.Errorf("%w: only .docx files are supported", ErrInvalidInput)
	}

	stacks, err := s.parseStacks(in.TechStackText, in.ManualPoints)
	if err != nil {
		return Customization{}, err
	}

	sourceKey, _, _, err := s.Store.Save(ctx, in.ClientID, in.FileName, in.File)
	if err != nil {
		return Customization{}, fmt.Errorf("store upload: %w", err)
	}

	raw, err := encodeStacks(stacks)
	if err != nil {
		return Customization{}, fmt.Errorf("encode tech stacks: %w", err)
	}

	now := time.Now().UTC()
	job := Customization{
		ID:             uuid.NewString(),
		ClientID:       in.ClientID,
		FileName:       in.FileName,
		Status:         StatusPending,
		SourceKey:      sourceKey,
		TechStacksRaw:  raw,
		RecipientEmail: strings.TrimSpace(in.RecipientEmail),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.Repo.Create(ctx, job); err != nil {
		return Customization{}, fmt.Errorf("persist customization: %w", err)
	}

	if s.Queue != nil {
		msg := queue.Message{
			CustomizationID: job.ID,
			RequestID:       in.RequestID,
			EnqueuedAt:      now.Format(time.RFC3339),
			Version:         messageVersion,
		}
		sendErr := s.Queue.Send(ctx, msg)
		if sendErr == nil {
			telemetry.Info("customization.enqueued", map[string]any{
				"customization_id": job.ID,
				"request_id":       in.RequestID,
			})
			return job, nil
		}
		telemetry.Warn("customization.enqueue_failed", map[string]any{
			"customization_id": job.ID,
			"error":            sendErr.Error(),
		})
	}

	if err := s.Process(ctx, job.ID); err != nil {
		telemetry.Warn("customization.sync_process_failed", map[string]any{
			"customization_id": job.ID,
			"error":            err.Error(),
		})
	}
	return s.Repo.Get(ctx, job.ID)
}

// Process runs the engine for a stored job: load bytes, customize,
// store the result, update the record and email the outcome when a
// recipient is set. Email failure never fails the job.
func (s *Service) Process(ctx context.Context, id string) error {
	started := time.Now()
	metrics.IncCustomizationStarted()

	job, err := s.Repo.Get(ctx, id)
	if err != nil {
		metrics.IncCustomizationFailed()
		return fmt.Errorf("load customization %s: %w", id, err)
	}
	if job.Status == StatusCompleted {
		return nil
	}

	if err := s.Repo.UpdateStatus(ctx, job.ID, StatusProcessing, ""); err != nil {
		metrics.IncCustomizationFailed()
		return fmt.Errorf("mark processing: %w", err)
	}

	content, err := s.loadSource(ctx, job.SourceKey)
	if err != nil {
		return s.fail(ctx, job.ID, err)
	}

	stacks, err := decodeStacks(job.TechStacksRaw)
	if err != nil {
		return s.fail(ctx, job.ID, fmt.Errorf("decode tech stacks: %w", err))
	}

	result, err := s.Processor.ProcessDocument(content, stacks)
	if err != nil {
		return s.fail(ctx, job.ID, err)
	}

	resultKey := job.SourceKey + resultKeySuffix
	if err := s.saveResult(ctx, resultKey, result.Content); err != nil {
		return s.fail(ctx, job.ID, err)
	}

	if err := s.Repo.UpdateResult(ctx, job.ID, resultKey, result.PointsAdded, result.ProjectsModified); err != nil {
		return s.fail(ctx, job.ID, fmt.Errorf("record result: %w", err))
	}

	metrics.IncCustomizationCompleted()
	metrics.AddPointsInserted(result.PointsAdded)
	metrics.ObserveCustomizationDurationMs(float64(time.Since(started).Milliseconds()))
	telemetry.Info("customization.completed", map[string]any{
		"customization_id":  job.ID,
		"request_id":        RequestIDFromContext(ctx),
		"points_added":      result.PointsAdded,
		"projects_modified": result.ProjectsModified,
	})

	s.deliverResult(ctx, job, result.Content)
	return nil
}

// Preview runs detection and distribution on uploaded bytes without
// touching storage or the repo.
func (s *Service) Preview(ctx context.Context, content []byte, techStackText, manualPoints string) (*customize.Preview, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stacks, err := s.parseStacks(techStackText, manualPoints)
	if err != nil {
		return nil, err
	}
	return s.Processor.PreviewDocument(content, stacks)
}

// Get returns a job owned by the client.
func (s *Service) Get(ctx context.Context, clientID, id string) (Customization, error) {
	return s.Repo.GetByID(ctx, clientID, id)
}

// List returns jobs for a client, newest first.
func (s *Service) List(ctx context.Context, clientID string, limit, offset int) ([]Customization, error) {
	return s.Repo.ListByClient(ctx, clientID, limit, offset)
}

// SourceText extracts the plain text of the uploaded document, leaving
// a derived .extracted.txt copy next to the source object.
func (s *Service) SourceText(ctx context.Context, clientID, id string) (string, error) {
	job, err := s.Repo.GetByID(ctx, clientID, id)
	if err != nil {
		return "", err
	}
	return extract.ExtractText(ctx, s.Store, job.SourceKey, docxContentType, job.FileName)
}

// OpenResult opens the customized document of a completed job.
func (s *Service) OpenResult(ctx context.Context, clientID, id string) (io.ReadCloser, Customization, error) {
	job, err := s.Repo.GetByID(ctx, clientID, id)
	if err != nil {
		return nil, Customization{}, err
	}
	if job.Status != StatusCompleted || job.ResultKey == "" {
		return nil, job, fmt.Errorf("customization %s is %s: %w", id, job.Status, ErrNotReady)
	}
	body, err := s.Store.Open(ctx, job.ResultKey)
	if err != nil {
		return nil, job, fmt.Errorf("open result: %w", err)
	}
	return body, job, nil
}

func (s *Service) parseStacks(techStackText, manualPoints string) (*customize.TechStacks, error) {
	stacks := s.Parser.ParseStacks(techStackText)
	for _, point := range parse.ParseManualPoints(manualPoints) {
		stacks.Add(manualTechName, point)
	}
	if stacks.IsEmpty() {
		return nil, ErrNoTechStacks
	}
	return stacks, nil
}

func (s *Service) loadSource(ctx context.Context, sourceKey string) ([]byte, error) {
	body, err := s.Store.Open(ctx, sourceKey)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer body.Close()
	content, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	return content, nil
}

func (s *Service) saveResult(ctx context.Context, key string, content []byte) error {
	saver, ok := s.Store.(keySaver)
	if !ok {
		return fmt.Errorf("object store does not support SaveWithKey")
	}
	if _, err := saver.SaveWithKey(ctx, key, docxContentType, bytes.NewReader(content)); err != nil {
		return fmt.Errorf("store result: %w", err)
	}
	return nil
}

func (s *Service) fail(ctx context.Context, id string, cause error) error {
	metrics.IncCustomizationFailed()
	if err := s.Repo.UpdateStatus(ctx, id, StatusFailed, cause.Error()); err != nil {
		telemetry.Error("customization.mark_failed", map[string]any{
			"customization_id": id,
			"error":            err.Error(),
		})
	}
	return fmt.Errorf("process customization %s: %w", id, cause)
}

func (s *Service) deliverResult(ctx context.Context, job Customization, content []byte) {
	if s.Email == nil || job.RecipientEmail == "" {
		return
	}
	msg := email.Message{
		To:             job.RecipientEmail,
		Subject:        "Your customized resume is ready",
		Body:           "Attached is your resume with the requested tech stack points added.",
		Attachment:     content,
		AttachmentName: resultFileName(job.FileName),
	}
	if err := s.Email.Send(ctx, msg); err != nil {
		metrics.IncEmailsFailed()
		telemetry.Warn("customization.email_failed", map[string]any{
			"customization_id": job.ID,
			"error":            err.Error(),
		})
		return
	}
	metrics.IncEmailsSent()
	telemetry.Info("customization.email_sent", map[string]any{
		"customization_id": job.ID,
	})
}

func resultFileName(original string) string {
	ext := filepath.Ext(original)
	base := strings.TrimSuffix(original, ext)
	if base == "" {
		base = "resume"
	}
	return base + ".customized.docx"
}

type stacksPayload struct {
	Names  []string            `json:"names"`
	Points map[string][]string `json:"points"`
}

func encodeStacks(stacks *customize.TechStacks) (string, error) {
	payload := stacksPayload{Points: map[string][]string{}}
	for _, name := range stacks.Names() {
		payload.Names = append(payload.Names, name)
		payload.Points[name] = stacks.Points(name)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeStacks(raw string) (*customize.TechStacks, error) {
	var payload stacksPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, err
	}
	stacks := customize.NewTechStacks()
	for _, name := range payload.Names {
		stacks.Add(name, payload.Points[name]...)
	}
	return stacks, nil
}
