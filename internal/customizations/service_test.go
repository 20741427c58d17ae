package customizations

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/ryanmontogomory-hue/Injector-sub000/internal/email"
	"github.com/ryanmontogomory-hue/Injector-sub000/internal/queue"
	"github.com/ryanmontogomory-hue/Injector-sub000/resume/customize"
	"github.com/ryanmontogomory-hue/Injector-sub000/resume/parse"
)

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (s *memStore) Save(ctx context.Context, userId, fileName string, r io.Reader) (string, int64, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, "", err
	}
	key := userId + "/" + fileName
	s.mu.Lock()
	s.objects[key] = data
	s.mu.Unlock()
	return key, int64(len(data)), "application/octet-stream", nil
}

func (s *memStore) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	s.mu.Lock()
	data, ok := s.objects[storageKey]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("object %s not found", storageKey)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memStore) SaveWithKey(ctx context.Context, storageKey, contentType string, r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	s.objects[storageKey] = data
	s.mu.Unlock()
	return int64(len(data)), nil
}

type fakeSender struct {
	sent []email.Message
	err  error
}

func (f *fakeSender) Send(ctx context.Context, msg email.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeQueue struct {
	sent []queue.Message
	err  error
}

func (f *fakeQueue) Send(ctx context.Context, msg queue.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func docBytes(t *testing.T, lines ...string) []byte {
	t.Helper()
	var body strings.Builder
	for _, line := range lines {
		var escaped bytes.Buffer
		if err := xml.EscapeText(&escaped, []byte(line)); err != nil {
			t.Fatalf("escape: %v", err)
		}
		body.WriteString(`<w:p><w:r><w:t xml:space="preserve">` + escaped.String() + `</w:t></w:r></w:p>`)
	}
	document := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body>` + body.String() + `</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("zip create: %v", err)
	}
	if _, err := f.Write([]byte(document)); err != nil {
		t.Fatalf("zip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func newTestService(store *memStore, q queue.Client, sender email.Sender) *Service {
	return &Service{
		Repo:      NewMemoryRepo(),
		Store:     store,
		Queue:     q,
		Email:     sender,
		Processor: customize.NewProcessor(customize.DefaultKeywords()),
		Parser:    parse.NewTechStackParser(),
	}
}

func TestCreateProcessesSynchronouslyWithoutQueue(t *testing.T) {
	store := newMemStore()
	sender := &fakeSender{}
	svc := newTestService(store, nil, sender)

	content := docBytes(t,
		"Senior Developer | Jan 2022 - Present",
		"Responsibilities:",
		"- existing one",
	)

	job, err := svc.Create(context.Background(), CreateInput{
		ClientID:       "client-1",
		FileName:       "resume.docx",
		File:           bytes.NewReader(content),
		TechStackText:  "Go: • Built APIs • Wrote tests",
		RecipientEmail: "dest@example.com",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if job.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s (error %q)", job.Status, job.Error)
	}
	if job.PointsAdded != 2 || job.ProjectsModified != 1 {
		t.Fatalf("unexpected counters: %+v", job)
	}
	if job.ResultKey == "" {
		t.Fatal("expected a result key")
	}
	if _, ok := store.objects[job.ResultKey]; !ok {
		t.Fatalf("result object %s not stored", job.ResultKey)
	}
	if len(sender.sent) != 1 || sender.sent[0].To != "dest@example.com" {
		t.Fatalf("expected one email to recipient, got %+v", sender.sent)
	}
	if sender.sent[0].AttachmentName != "resume.customized.docx" {
		t.Fatalf("unexpected attachment name %q", sender.sent[0].AttachmentName)
	}
}

func TestCreateEnqueuesWhenQueueConfigured(t *testing.T) {
	store := newMemStore()
	q := &fakeQueue{}
	svc := newTestService(store, q, nil)

	content := docBytes(t,
		"Senior Developer | Jan 2022 - Present",
		"Responsibilities:",
		"- existing one",
	)

	job, err := svc.Create(context.Background(), CreateInput{
		ClientID:      "client-1",
		FileName:      "resume.docx",
		File:          bytes.NewReader(content),
		TechStackText: "Go: • Built APIs",
		RequestID:     "req-1",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if job.Status != StatusPending {
		t.Fatalf("expected pending, got %s", job.Status)
	}
	if len(q.sent) != 1 || q.sent[0].CustomizationID != job.ID || q.sent[0].RequestID != "req-1" {
		t.Fatalf("unexpected queue messages: %+v", q.sent)
	}
}

func TestCreateFallsBackToSyncOnEnqueueFailure(t *testing.T) {
	store := newMemStore()
	q := &fakeQueue{err: errors.New("sqs down")}
	svc := newTestService(store, q, nil)

	content := docBytes(t,
		"Senior Developer | Jan 2022 - Present",
		"Responsibilities:",
		"- existing one",
	)

	job, err := svc.Create(context.Background(), CreateInput{
		ClientID:      "client-1",
		FileName:      "resume.docx",
		File:          bytes.NewReader(content),
		TechStackText: "Go: • Built APIs",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if job.Status != StatusCompleted {
		t.Fatalf("expected completed after fallback, got %s", job.Status)
	}
}

func TestCreateRejectsUnparseableTechStacks(t *testing.T) {
	svc := newTestService(newMemStore(), nil, nil)

	_, err := svc.Create(context.Background(), CreateInput{
		ClientID: "client-1",
		FileName: "resume.docx",
		File:     bytes.NewReader([]byte("irrelevant")),
	})
	if !errors.Is(err, ErrNoTechStacks) {
		t.Fatalf("expected ErrNoTechStacks, got %v", err)
	}
}

func TestCreateRejectsNonDocx(t *testing.T) {
	svc := newTestService(newMemStore(), nil, nil)

	_, err := svc.Create(context.Background(), CreateInput{
		ClientID:      "client-1",
		FileName:      "resume.pdf",
		File:          bytes.NewReader([]byte("irrelevant")),
		TechStackText: "Go: • Built APIs",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestProcessMarksFailureWhenNoProjects(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeQueue{}, nil)

	content := docBytes(t, "Just prose", "No structure at all")

	job, err := svc.Create(context.Background(), CreateInput{
		ClientID:      "client-1",
		FileName:      "resume.docx",
		File:          bytes.NewReader(content),
		TechStackText: "Go: • Built APIs",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Process(context.Background(), job.ID); err == nil {
		t.Fatal("expected processing error")
	}

	stored, err := svc.Repo.Get(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Status != StatusFailed || stored.Error == "" {
		t.Fatalf("expected failed job with error, got %+v", stored)
	}
}

func TestProcessIsIdempotentForCompletedJobs(t *testing.T) {
	store := newMemStore()
	sender := &fakeSender{}
	svc := newTestService(store, nil, sender)

	content := docBytes(t,
		"Senior Developer | Jan 2022 - Present",
		"Responsibilities:",
		"- existing one",
	)

	job, err := svc.Create(context.Background(), CreateInput{
		ClientID:       "client-1",
		FileName:       "resume.docx",
		File:           bytes.NewReader(content),
		TechStackText:  "Go: • Built APIs",
		RecipientEmail: "dest@example.com",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Process(context.Background(), job.ID); err != nil {
		t.Fatalf("reprocess: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected no second email, got %d", len(sender.sent))
	}
}

func TestEmailFailureDoesNotFailJob(t *testing.T) {
	store := newMemStore()
	sender := &fakeSender{err: errors.New("smtp down")}
	svc := newTestService(store, nil, sender)

	content := docBytes(t,
		"Senior Developer | Jan 2022 - Present",
		"Responsibilities:",
		"- existing one",
	)

	job, err := svc.Create(context.Background(), CreateInput{
		ClientID:       "client-1",
		FileName:       "resume.docx",
		File:           bytes.NewReader(content),
		TechStackText:  "Go: • Built APIs",
		RecipientEmail: "dest@example.com",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if job.Status != StatusCompleted {
		t.Fatalf("expected completed despite email failure, got %s", job.Status)
	}
}

func TestOpenResultNotReady(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeQueue{}, nil)

	content := docBytes(t,
		"Senior Developer | Jan 2022 - Present",
		"Responsibilities:",
		"- existing one",
	)

	job, err := svc.Create(context.Background(), CreateInput{
		ClientID:      "client-1",
		FileName:      "resume.docx",
		File:          bytes.NewReader(content),
		TechStackText: "Go: • Built APIs",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, _, err = svc.OpenResult(context.Background(), "client-1", job.ID)
	if !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
}

func TestPreviewDoesNotPersistAnything(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, nil, nil)

	content := docBytes(t,
		"Senior Developer | Jan 2022 - Present",
		"Responsibilities:",
		"- existing one",
	)

	preview, err := svc.Preview(context.Background(), content, "Go: • Built APIs • Wrote tests", "")
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if !preview.Distribution.Success || preview.Distribution.PointsAdded != 2 {
		t.Fatalf("unexpected distribution: %+v", preview.Distribution)
	}
	if len(store.objects) != 0 {
		t.Fatalf("preview stored objects: %v", store.objects)
	}

	jobs, err := svc.List(context.Background(), "client-1", 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(jobs) != 0 {
		t.Fatalf("preview persisted jobs: %+v", jobs)
	}
}

func TestSourceTextExtractsUploadedDocument(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeQueue{}, nil)

	content := docBytes(t,
		"Senior Developer | Jan 2022 - Present",
		"Responsibilities:",
		"- existing one",
	)

	job, err := svc.Create(context.Background(), CreateInput{
		ClientID:      "client-1",
		FileName:      "resume.docx",
		File:          bytes.NewReader(content),
		TechStackText: "Go: • Built APIs",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	text, err := svc.SourceText(context.Background(), "client-1", job.ID)
	if err != nil {
		t.Fatalf("SourceText: %v", err)
	}
	if !strings.Contains(text, "Senior Developer") || !strings.Contains(text, "- existing one") {
		t.Fatalf("unexpected text %q", text)
	}
	if _, ok := store.objects[job.SourceKey+".extracted.txt"]; !ok {
		t.Fatal("expected derived .extracted.txt object")
	}
}

func TestManualPointsJoinParsedStacks(t *testing.T) {
	svc := newTestService(newMemStore(), nil, nil)

	stacks, err := svc.parseStacks("Go: • Built APIs", "• Shipped the billing migration\n")
	if err != nil {
		t.Fatalf("parseStacks: %v", err)
	}
	if got := stacks.Names(); len(got) != 2 || got[0] != "Go" || got[1] != manualTechName {
		t.Fatalf("unexpected names: %v", got)
	}
	if pts := stacks.Points(manualTechName); len(pts) != 1 || pts[0] != "Shipped the billing migration" {
		t.Fatalf("unexpected manual points: %v", pts)
	}
}

func TestStacksRoundTripThroughJSON(t *testing.T) {
	stacks := customize.NewTechStacks()
	stacks.Add("Go", "p1", "p2")
	stacks.Add("AWS", "a1")

	raw, err := encodeStacks(stacks)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := decodeStacks(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := decoded.Names(); len(got) != 2 || got[0] != "Go" || got[1] != "AWS" {
		t.Fatalf("unexpected names: %v", got)
	}
	if pts := decoded.Points("Go"); len(pts) != 2 || pts[1] != "p2" {
		t.Fatalf("unexpected points: %v", pts)
	}
}
