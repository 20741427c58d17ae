package customizations

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ryanmontogomory-hue/Injector-sub000/internal/shared/server/middleware"
)

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ClientID())
	api := r.Group("/api/v1")
	NewHandler(svc, 0).RegisterRoutes(api)
	return r
}

func multipartBody(t *testing.T, fileName string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if fileName != "" {
		part, err := writer.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	for key, val := range fields {
		if err := writer.WriteField(key, val); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestHandlerCreateReturnsCompletedJob(t *testing.T) {
	svc := newTestService(newMemStore(), nil, nil)
	router := newTestRouter(svc)

	content := docBytes(t,
		"Senior Developer | Jan 2022 - Present",
		"Responsibilities:",
		"- existing one",
	)
	body, contentType := multipartBody(t, "resume.docx", content, map[string]string{
		"techStacks": "Go: • Built APIs • Wrote tests",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/customizations", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Client-Id", "client-1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var payload Response
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Status != StatusCompleted || payload.PointsAdded != 2 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestHandlerCreateRequiresFile(t *testing.T) {
	svc := newTestService(newMemStore(), nil, nil)
	router := newTestRouter(svc)

	body, contentType := multipartBody(t, "", nil, map[string]string{
		"techStacks": "Go: • Built APIs",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/customizations", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestHandlerCreateUnparseableStacksIs422(t *testing.T) {
	svc := newTestService(newMemStore(), nil, nil)
	router := newTestRouter(svc)

	content := docBytes(t, "Senior Developer | Jan 2022 - Present")
	body, contentType := multipartBody(t, "resume.docx", content, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/customizations", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", resp.Code, resp.Body.String())
	}
	if !bytes.Contains(resp.Body.Bytes(), []byte("parse_failure")) {
		t.Fatalf("expected parse_failure code: %s", resp.Body.String())
	}
}

func TestHandlerPreview(t *testing.T) {
	svc := newTestService(newMemStore(), nil, nil)
	router := newTestRouter(svc)

	content := docBytes(t,
		"Senior Developer | Jan 2022 - Present",
		"Responsibilities:",
		"- existing one",
	)
	body, contentType := multipartBody(t, "resume.docx", content, map[string]string{
		"techStacks": "Go: • Built APIs • Wrote tests",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/customizations/preview", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var payload PreviewResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.PointsPlanned != 2 || payload.ProjectsUsed != 1 {
		t.Fatalf("unexpected preview: %+v", payload)
	}
}

func TestHandlerPreviewNoProjectsIs422(t *testing.T) {
	svc := newTestService(newMemStore(), nil, nil)
	router := newTestRouter(svc)

	content := docBytes(t, "Just prose", "No structure here")
	body, contentType := multipartBody(t, "resume.docx", content, map[string]string{
		"techStacks": "Go: • Built APIs",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/customizations/preview", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.Code)
	}
	if !bytes.Contains(resp.Body.Bytes(), []byte("detection_failure")) {
		t.Fatalf("expected detection_failure code: %s", resp.Body.String())
	}
}

func TestHandlerGetNotFound(t *testing.T) {
	svc := newTestService(newMemStore(), nil, nil)
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customizations/missing", nil)
	req.Header.Set("X-Client-Id", "client-1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestHandlerText(t *testing.T) {
	svc := newTestService(newMemStore(), &fakeQueue{}, nil)
	router := newTestRouter(svc)

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

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customizations/"+job.ID+"/text", nil)
	req.Header.Set("X-Client-Id", "client-1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if !bytes.Contains(resp.Body.Bytes(), []byte("Senior Developer")) {
		t.Fatalf("expected extracted text in body: %s", resp.Body.String())
	}
}

func TestHandlerDownload(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, nil, nil)
	router := newTestRouter(svc)

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

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customizations/"+job.ID+"/download", nil)
	req.Header.Set("X-Client-Id", "client-1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if got := resp.Header().Get("Content-Disposition"); got != `attachment; filename="resume.customized.docx"` {
		t.Fatalf("unexpected disposition %q", got)
	}
	if resp.Body.Len() == 0 {
		t.Fatal("expected document bytes")
	}
}

func TestHandlerDownloadNotReadyIs409(t *testing.T) {
	svc := newTestService(newMemStore(), &fakeQueue{}, nil)
	router := newTestRouter(svc)

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

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customizations/"+job.ID+"/download", nil)
	req.Header.Set("X-Client-Id", "client-1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
}
