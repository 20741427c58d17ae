package customize

import (
	"regexp"
	"strings"

	"github.com/ryanmontogomory-hue/Injector-sub000/resume/docx"
)

// Project is one detected project/role region. Responsibility bounds
// are positional paragraph indices, inclusive on both ends, valid
// only until the document is mutated.
type Project struct {
	Title                 string
	Index                 int
	ResponsibilitiesStart int
	ResponsibilitiesEnd   int
}

var (
	cleanNonAlphaRe = regexp.MustCompile(`[^a-z ]`)
	multiSpaceRe    = regexp.MustCompile(`\s+`)
	upperHeadingRe  = regexp.MustCompile(`^[A-Z\s]+$`)
	monthsRe        = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)\b`)

	companyDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)\b`),
		regexp.MustCompile(`\b\d{4}\b`),
		regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`),
		regexp.MustCompile(`(?i)\b(present|current|now)\b`),
	}
)

var responsibilitiesHeadings = []string{
	"responsibilities", "key responsibilities", "duties", "tasks", "role", "position",
}

// ProjectDetector partitions a resume's paragraph sequence into
// project regions using layered text heuristics. Detection is
// read-only and idempotent over an unmodified document.
type ProjectDetector struct {
	keywords  Keywords
	formatter *BulletFormatter
}

func NewProjectDetector(keywords Keywords) *ProjectDetector {
	return &ProjectDetector{
		keywords:  keywords,
		formatter: NewBulletFormatter(keywords.BulletMarkers),
	}
}

// FindProjects walks the paragraph sequence once and returns the
// detected projects in document order. Supported shapes: a
// "Company | Date" header with an explicit responsibilities heading,
// the same header with bullets directly under the role line, and bare
// role titles followed by bullets. Headers with no discoverable
// bullet or heading evidence are discarded.
func (d *ProjectDetector) FindProjects(doc *docx.Document) []Project {
	paras := doc.Paragraphs()
	texts := make([]string, len(paras))
	for i, para := range paras {
		texts[i] = strings.TrimSpace(para.Text())
	}

	var found []struct {
		title      string
		start, end int
	}

	currentTitle := ""
	haveProject := false
	titleLineSeen := false
	inResponsibilities := false
	responsibilitiesStart := -1
	foundBullets := false

	closeOpenProject := func(headerIndex int) {
		if !haveProject || (responsibilitiesStart == -1 && !foundBullets) {
			return
		}
		start := responsibilitiesStart
		if start == -1 {
			start = headerIndex + 1
		}
		found = append(found, struct {
			title      string
			start, end int
		}{currentTitle, start, findResponsibilitiesEnd(texts, headerIndex, start)})
	}

	for i, text := range texts {
		switch {
		case d.isProjectHeader(text):
			closeOpenProject(i)
			currentTitle = text
			haveProject = true
			titleLineSeen = false
			inResponsibilities = false
			responsibilitiesStart = -1
			foundBullets = false

		// A non-heading, non-bullet line right after the header is a
		// job-title continuation of the project name.
		case haveProject && !titleLineSeen && text != "" &&
			!isResponsibilitiesHeading(text) &&
			!d.formatter.IsBulletPoint(text) &&
			!d.isIntroductoryParagraph(text):
			currentTitle = currentTitle + " - " + text
			titleLineSeen = true

		case text != "" && isResponsibilitiesHeading(text):
			inResponsibilities = true
			responsibilitiesStart = i + 1

		// Descriptive prose before the bullets; skip without closing
		// anything.
		case haveProject && text != "" && d.isIntroductoryParagraph(text):
			continue

		case haveProject && text != "" && d.formatter.IsBulletPoint(text):
			foundBullets = true
			if responsibilitiesStart == -1 {
				responsibilitiesStart = i
			}

		case (inResponsibilities || foundBullets) && text != "" && d.isSectionEnd(text):
			if haveProject && responsibilitiesStart != -1 {
				found = append(found, struct {
					title      string
					start, end int
				}{currentTitle, responsibilitiesStart, i - 1})
			}
			inResponsibilities = false
			responsibilitiesStart = -1
			foundBullets = false
		}
	}

	if haveProject && (responsibilitiesStart != -1 || foundBullets) {
		start := responsibilitiesStart
		if start == -1 {
			start = len(texts) - 1
		}
		found = append(found, struct {
			title      string
			start, end int
		}{currentTitle, start, len(texts) - 1})
	}

	projects := make([]Project, 0, len(found))
	for _, p := range found {
		if p.start == -1 {
			continue
		}
		projects = append(projects, Project{
			Title:                 p.title,
			Index:                 len(projects),
			ResponsibilitiesStart: p.start,
			ResponsibilitiesEnd:   p.end,
		})
	}
	return projects
}

func isResponsibilitiesHeading(text string) bool {
	norm := cleanNonAlphaRe.ReplaceAllString(strings.ToLower(text), "")
	norm = strings.TrimSpace(multiSpaceRe.ReplaceAllString(norm, " "))
	for _, keyword := range responsibilitiesHeadings {
		if strings.HasPrefix(norm, keyword) {
			return true
		}
	}
	return false
}

func (d *ProjectDetector) isIntroductoryParagraph(text string) bool {
	text = strings.TrimSpace(text)
	if d.formatter.IsBulletPoint(text) {
		return false
	}
	if isAllUpper(text) || upperHeadingRe.MatchString(text) {
		return false
	}
	words := len(strings.Fields(text))
	if words < 5 {
		return false
	}
	lower := strings.ToLower(text)
	for _, keyword := range []string{"responsibilities", "duties", "role", "position"} {
		if strings.Contains(lower, keyword) {
			return false
		}
	}
	return words >= 10
}

func (d *ProjectDetector) isProjectHeader(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" || d.formatter.IsBulletPoint(text) {
		return false
	}
	if len(strings.Fields(text)) < 2 {
		return false
	}

	lower := strings.ToLower(text)
	for _, keyword := range d.keywords.ProjectExclude {
		if strings.Contains(lower, keyword) {
			return false
		}
	}

	// Company | Date
	if strings.Contains(text, "|") && looksLikeCompanyDate(text) {
		return true
	}
	// Client - Company - Month Year
	if strings.Contains(text, " - ") && monthsRe.MatchString(text) {
		return true
	}
	// Role at Company (Location)
	if strings.Contains(text, " at ") && strings.Contains(text, "(") && strings.Contains(text, ")") {
		return true
	}
	for _, keyword := range d.keywords.JobTitle {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	if isAllUpper(text) {
		return true
	}
	for _, keyword := range d.keywords.Project {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func looksLikeCompanyDate(text string) bool {
	parts := strings.Split(text, "|")
	if len(parts) != 2 {
		return false
	}
	datePart := strings.ToLower(strings.TrimSpace(parts[1]))
	for _, pattern := range companyDatePatterns {
		if pattern.MatchString(datePart) {
			return true
		}
	}
	return false
}

func (d *ProjectDetector) isSectionEnd(text string) bool {
	if strings.HasPrefix(text, "##") {
		return true
	}
	lower := strings.ToLower(text)
	for _, keyword := range d.keywords.SectionEnd {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return d.isProjectHeader(text)
}

// isAllUpper mirrors Python's str.isupper: at least one cased letter
// and no lower-case ones.
func isAllUpper(text string) bool {
	hasUpper := false
	for _, r := range text {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasUpper = true
		}
	}
	return hasUpper
}

// findResponsibilitiesEnd walks backwards from the closing boundary
// to the last substantive paragraph of the region.
func findResponsibilitiesEnd(texts []string, currentIndex, startIndex int) int {
	end := currentIndex - 1
	for j := currentIndex - 1; j >= startIndex; j-- {
		if j < len(texts) && texts[j] != "" && !strings.HasPrefix(texts[j], "-") {
			end = j
			break
		}
	}
	return end
}
