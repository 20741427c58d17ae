package customizations

import (
	"time"

	"github.com/ryanmontogomory-hue/Injector-sub000/resume/customize"
)

// Response is the outward-facing representation of a customization job.
type Response struct {
	CustomizationID  string    `json:"customizationId"`
	FileName         string    `json:"fileName"`
	Status           string    `json:"status"`
	PointsAdded      int       `json:"pointsAdded"`
	ProjectsModified int       `json:"projectsModified"`
	RecipientEmail   string    `json:"recipientEmail,omitempty"`
	Error            string    `json:"error,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func toResponse(job Customization) Response {
	return Response{
		CustomizationID:  job.ID,
		FileName:         job.FileName,
		Status:           job.Status,
		PointsAdded:      job.PointsAdded,
		ProjectsModified: job.ProjectsModified,
		RecipientEmail:   job.RecipientEmail,
		Error:            job.Error,
		CreatedAt:        job.CreatedAt,
		UpdatedAt:        job.UpdatedAt,
	}
}

// PreviewProject describes one project and the points planned for it.
type PreviewProject struct {
	Title        string   `json:"title"`
	Technologies []string `json:"technologies"`
	Points       []string `json:"points"`
}

// PreviewResponse summarizes a dry run without mutating the document.
type PreviewResponse struct {
	ProjectsFound int              `json:"projectsFound"`
	ProjectsUsed  int              `json:"projectsUsed"`
	PointsPlanned int              `json:"pointsPlanned"`
	Projects      []PreviewProject `json:"projects"`
}

func toPreviewResponse(preview *customize.Preview) PreviewResponse {
	resp := PreviewResponse{
		ProjectsFound: len(preview.Projects),
		ProjectsUsed:  preview.Distribution.ProjectsUsed,
		PointsPlanned: preview.Distribution.PointsAdded,
	}
	for _, project := range preview.Projects {
		alloc, ok := preview.Distribution.Distribution[project.Title]
		if !ok {
			continue
		}
		entry := PreviewProject{Title: project.Title}
		for _, tech := range alloc.Stacks.Names() {
			entry.Technologies = append(entry.Technologies, tech)
			entry.Points = append(entry.Points, alloc.Stacks.Points(tech)...)
		}
		resp.Projects = append(resp.Projects, entry)
	}
	return resp
}
