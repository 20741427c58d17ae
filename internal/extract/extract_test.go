package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
)

func docxBytes(t *testing.T, lines ...string) []byte {
	t.Helper()
	var body strings.Builder
	for _, line := range lines {
		body.WriteString(`<w:p><w:r><w:t xml:space="preserve">` + line + `</w:t></w:r></w:p>`)
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

func TestExtractTextFromBytesDocx(t *testing.T) {
	data := docxBytes(t, "Senior Developer", "- built things")

	text, err := ExtractTextFromBytes(context.Background(), data, mimeDOCX, "resume.docx")
	if err != nil {
		t.Fatalf("ExtractTextFromBytes: %v", err)
	}
	if text != "Senior Developer\n- built things" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestExtractTextFromBytesFallsBackToExtension(t *testing.T) {
	data := docxBytes(t, "Senior Developer")

	if _, err := ExtractTextFromBytes(context.Background(), data, "application/octet-stream", "resume.docx"); err != nil {
		t.Fatalf("expected extension fallback to docx, got error: %v", err)
	}
}

func TestExtractTextFromBytesRejectsUnknownMime(t *testing.T) {
	_, err := ExtractTextFromBytes(context.Background(), []byte("hello"), "text/csv", "notes.csv")
	if err == nil {
		t.Fatal("expected unsupported mime error")
	}
	if !strings.Contains(err.Error(), "unsupported mime type") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExtractTextPersistsDerivedCopy(t *testing.T) {
	store := newMemStore()
	data := docxBytes(t, "Senior Developer", "- built things")
	key, _, _, err := store.Save(context.Background(), "client-1", "resume.docx", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	text, err := ExtractText(context.Background(), store, key, mimeDOCX, "resume.docx")
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if !strings.Contains(text, "Senior Developer") {
		t.Fatalf("unexpected text %q", text)
	}

	derived, ok := store.objects[key+".extracted.txt"]
	if !ok {
		t.Fatal("expected derived .extracted.txt object")
	}
	if string(derived) != text {
		t.Fatalf("derived copy mismatch: %q vs %q", derived, text)
	}
}
