package customizations

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ryanmontogomory-hue/Injector-sub000/internal/shared/server/middleware"
	"github.com/ryanmontogomory-hue/Injector-sub000/internal/shared/server/respond"
	"github.com/ryanmontogomory-hue/Injector-sub000/resume/customize"
)

const defaultMaxUploadBytes = 10 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches customization routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/customizations", h.create)
	rg.POST("/customizations/preview", h.preview)
	rg.GET("/customizations", h.list)
	rg.GET("/customizations/:id", h.get)
	rg.GET("/customizations/:id/text", h.text)
	rg.GET("/customizations/:id/download", h.download)
}

func (h *Handler) create(c *gin.Context) {
	clientID := middleware.ClientIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	job, err := h.Svc.Create(c.Request.Context(), CreateInput{
		ClientID:       clientID,
		FileName:       fileHeader.Filename,
		File:           file,
		TechStackText:  c.PostForm("techStacks"),
		ManualPoints:   c.PostForm("manualPoints"),
		RecipientEmail: c.PostForm("email"),
		RequestID:      middleware.RequestIDFromContext(c),
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNoTechStacks):
			respond.Error(c, http.StatusUnprocessableEntity, "parse_failure", err.Error(), nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create customization", nil)
		}
		return
	}

	c.Set("customizationId", job.ID)
	respond.JSON(c, http.StatusCreated, toResponse(job))
}

func (h *Handler) preview(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}

	preview, err := h.Svc.Preview(c.Request.Context(), content, c.PostForm("techStacks"), c.PostForm("manualPoints"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNoTechStacks):
			respond.Error(c, http.StatusUnprocessableEntity, "parse_failure", err.Error(), nil)
		case errors.Is(err, customize.ErrNoProjects):
			respond.Error(c, http.StatusUnprocessableEntity, "detection_failure", err.Error(), nil)
		case errors.Is(err, customize.ErrNoPoints):
			respond.Error(c, http.StatusUnprocessableEntity, "parse_failure", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to preview customization", nil)
		}
		return
	}

	respond.OK(c, toPreviewResponse(preview))
}

func (h *Handler) list(c *gin.Context) {
	clientID := middleware.ClientIDFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if limit > 50 {
		limit = 50
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	jobs, err := h.Svc.List(c.Request.Context(), clientID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list customizations", nil)
		return
	}

	resp := make([]Response, 0, len(jobs))
	for _, job := range jobs {
		resp = append(resp, toResponse(job))
	}
	respond.OK(c, resp)
}

func (h *Handler) get(c *gin.Context) {
	clientID := middleware.ClientIDFromContext(c)

	job, err := h.Svc.Get(c.Request.Context(), clientID, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "customization not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch customization", nil)
		return
	}

	c.Set("customizationId", job.ID)
	respond.OK(c, toResponse(job))
}

func (h *Handler) text(c *gin.Context) {
	clientID := middleware.ClientIDFromContext(c)

	text, err := h.Svc.SourceText(c.Request.Context(), clientID, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "customization not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to extract text", nil)
		return
	}

	respond.OK(c, gin.H{"customizationId": c.Param("id"), "text": text})
}

func (h *Handler) download(c *gin.Context) {
	clientID := middleware.ClientIDFromContext(c)

	body, job, err := h.Svc.OpenResult(c.Request.Context(), clientID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "customization not found", nil)
		case errors.Is(err, ErrNotReady):
			respond.Error(c, http.StatusConflict, "not_ready", "customization result not ready", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to open result", nil)
		}
		return
	}
	defer body.Close()

	c.Set("customizationId", job.ID)
	c.Header("Content-Disposition", `attachment; filename="`+resultFileName(job.FileName)+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, body)
}
