// Package customize implements the resume enhancement engine: it
// segments a document into project regions, distributes tech-stack
// points round-robin across the top projects, and inserts the points
// as bullets that reproduce the document's own marker and styling.
package customize

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ryanmontogomory-hue/Injector-sub000/resume/docx"
)

var (
	// ErrNoProjects means the detector recognized no project
	// structure. Non-retryable; the document needs clearer sections.
	ErrNoProjects = errors.New("no projects found in the document")
	// ErrNoPoints means the parsed input carried no tech stacks or
	// points to insert.
	ErrNoPoints = errors.New("no tech stack points to insert")
)

// Result is the outcome of a full processing pass.
type Result struct {
	Content          []byte
	PointsAdded      int
	ProjectsModified int
	Distribution     map[string]*ProjectAllocation
}

// Preview is a dry-run: detection and distribution without mutation.
type Preview struct {
	Projects     []Project
	Distribution DistributionResult
}

// Processor wires the detector, distributor and formatter into one
// pass over a document. A Processor is stateless across documents and
// safe for concurrent use as long as each call owns its document.
type Processor struct {
	formatter   *BulletFormatter
	detector    *ProjectDetector
	distributor *PointDistributor
}

func NewProcessor(keywords Keywords) *Processor {
	return &Processor{
		formatter:   NewBulletFormatter(keywords.BulletMarkers),
		detector:    NewProjectDetector(keywords),
		distributor: NewPointDistributor(),
	}
}

// ProcessDocument runs the whole pipeline over a DOCX byte slice and
// returns the modified bytes. Projects are processed in ascending
// insertion-point order with a cumulative paragraph offset, because
// every insertion shifts the positional index of everything after it.
func (p *Processor) ProcessDocument(content []byte, stacks *TechStacks) (*Result, error) {
	if stacks.IsEmpty() {
		return nil, ErrNoPoints
	}

	doc, err := docx.Open(content)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}

	projects := p.detector.FindProjects(doc)
	if len(projects) == 0 {
		return nil, ErrNoProjects
	}

	dist := p.distributor.Distribute(projects, stacks)
	if !dist.Success {
		return nil, errors.New(dist.Error)
	}

	allocations := make([]*ProjectAllocation, 0, len(dist.Distribution))
	for _, alloc := range dist.Distribution {
		allocations = append(allocations, alloc)
	}
	sort.Slice(allocations, func(i, j int) bool {
		return allocations[i].InsertionPoint < allocations[j].InsertionPoint
	})

	totalAdded := 0
	offset := 0
	for _, alloc := range allocations {
		adjusted := *alloc
		adjusted.InsertionPoint += offset
		adjusted.ResponsibilitiesEnd += offset

		added := p.AddPointsToProject(doc, &adjusted)
		totalAdded += added
		offset += added
	}

	modified, err := doc.Save()
	if err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	return &Result{
		Content:          modified,
		PointsAdded:      totalAdded,
		ProjectsModified: dist.ProjectsUsed,
		Distribution:     dist.Distribution,
	}, nil
}

// PreviewDocument runs detection and distribution only, leaving the
// document untouched.
func (p *Processor) PreviewDocument(content []byte, stacks *TechStacks) (*Preview, error) {
	if stacks.IsEmpty() {
		return nil, ErrNoPoints
	}

	doc, err := docx.Open(content)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}

	projects := p.detector.FindProjects(doc)
	if len(projects) == 0 {
		return nil, ErrNoProjects
	}

	return &Preview{Projects: projects, Distribution: p.distributor.Distribute(projects, stacks)}, nil
}

// AddPointsToProject inserts one project's allocated points and
// returns how many landed. A failure on a single point skips that
// point, never the project.
func (p *Processor) AddPointsToProject(doc *docx.Document, alloc *ProjectAllocation) int {
	if alloc == nil || alloc.Stacks.IsEmpty() {
		return 0
	}

	formatting, fallback := p.findBulletFormatting(doc, alloc)
	insertionIndex := p.findInsertionPoint(doc, alloc.InsertionPoint)
	return p.insertBulletPoints(doc, alloc.Stacks, insertionIndex, formatting, fallback)
}

// findBulletFormatting looks for a template bullet in a small window
// around the project region. Local style wins over the document-wide
// marker vote, which is only the fallback.
func (p *Processor) findBulletFormatting(doc *docx.Document, alloc *ProjectAllocation) (*BulletFormatting, *BulletFormatting) {
	total := len(doc.Paragraphs())
	searchStart := alloc.InsertionPoint - 5
	if searchStart < 0 {
		searchStart = 0
	}
	searchEnd := alloc.ResponsibilitiesEnd + 5
	if searchEnd > total {
		searchEnd = total
	}

	for i := searchStart; i < searchEnd; i++ {
		formatting := p.formatter.ExtractFormatting(doc, i)
		if formatting == nil || formatting.Marker == "" {
			continue
		}
		fallback := formatting.WithMarker(strings.TrimSpace(formatting.Marker))
		return formatting, &fallback
	}

	marker := strings.TrimSpace(p.formatter.DetectDocumentMarker(doc))
	fallback := defaultFormatting(marker)
	return nil, &fallback
}

// findInsertionPoint scans forward from the region start for the
// first bullet and targets the slot right after it; with no bullet in
// range the region start itself is the slot.
func (p *Processor) findInsertionPoint(doc *docx.Document, initial int) int {
	paras := doc.Paragraphs()
	for i := initial; i >= 0 && i < len(paras); i++ {
		text := strings.TrimSpace(paras[i].Text())
		if text != "" && p.formatter.IsBulletPoint(text) {
			return i + 1
		}
	}
	return initial
}

func (p *Processor) insertBulletPoints(doc *docx.Document, stacks *TechStacks, insertionIndex int, formatting, fallback *BulletFormatting) int {
	added := 0
	current := insertionIndex

	for _, tech := range stacks.Names() {
		for _, point := range stacks.Points(tech) {
			para, err := p.createParagraphAt(doc, current)
			if err != nil {
				continue
			}
			p.formatter.ApplyFormatting(para, formatting, point, fallback)
			added++
			current++
		}
	}
	return added
}

func (p *Processor) createParagraphAt(doc *docx.Document, index int) (*docx.Paragraph, error) {
	if index < len(doc.Paragraphs()) {
		return doc.InsertParagraphBefore(index)
	}
	return doc.AddParagraph(), nil
}
