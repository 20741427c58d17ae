// Package parse extracts tech-stack names and bullet points from the
// free-form text users paste alongside a resume.
package parse

import (
	"regexp"
	"strings"

	"github.com/ryanmontogomory-hue/Injector-sub000/resume/customize"
)

var (
	techStackPattern   = regexp.MustCompile(`(?P<stack>[A-Za-z0-9_+#\- ]+):\s*(?P<points>(?:• .+\n?)+)`)
	bulletPointPattern = regexp.MustCompile(`•\s*(.+)`)
)

// techKeywords flags lines that name a technology even when they are
// longer than the short-line heuristic allows.
var techKeywords = map[string]struct{}{
	"python": {}, "javascript": {}, "java": {}, "react": {}, "node": {},
	"aws": {}, "sql": {}, "html": {}, "css": {}, "git": {}, "docker": {},
	"kubernetes": {}, "angular": {}, "vue": {}, "typescript": {}, "c++": {},
	"c#": {}, ".net": {}, "php": {}, "ruby": {}, "go": {}, "rust": {},
	"swift": {}, "kotlin": {}, "flutter": {}, "django": {}, "flask": {},
	"spring": {}, "laravel": {}, "express": {}, "mongodb": {},
	"postgresql": {}, "redis": {},
}

// defaultExcludeWords open typical bullet points rather than tech
// names.
var defaultExcludeWords = []string{
	"developed", "created", "implemented", "designed",
	"built", "worked", "managed", "used", "wrote", "configured",
}

const manualMarkerSet = "•●◦▪▫‣*- \t"

// TechStackParser turns pasted tech-stack text into ordered points
// and tech names. Three formats are tried in order: blank-line
// separated blocks, the inline "Tech: • p1 • p2" form, and a bare
// bullet scrape under a synthetic "General" tech.
type TechStackParser struct {
	excludeWords []string
}

func NewTechStackParser() *TechStackParser {
	return &TechStackParser{excludeWords: defaultExcludeWords}
}

// Parse returns the flat (points, tech names) pair, both in input
// order. Empty slices mean nothing parseable was found.
func (p *TechStackParser) Parse(text string) (points, techs []string) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	points, techs = p.parseBlockFormat(text)
	if len(points) > 0 && len(techs) > 0 {
		return points, techs
	}

	points, techs = p.parseInlineFormat(text)
	if len(points) > 0 && len(techs) > 0 {
		return points, techs
	}

	if fallback := p.fallbackPoints(text); len(fallback) > 0 {
		return fallback, []string{"General"}
	}
	return nil, nil
}

// ParseStacks normalizes Parse output into the ordered mapping the
// distributor consumes.
func (p *TechStackParser) ParseStacks(text string) *customize.TechStacks {
	points, techs := p.Parse(text)
	return customize.TechStacksFromFlat(points, techs)
}

// parseBlockFormat handles blank-line separated blocks: a tech name
// line followed by its bullet lines.
func (p *TechStackParser) parseBlockFormat(text string) (points, techs []string) {
	for _, block := range splitBlocks(text) {
		if len(block) == 0 {
			continue
		}
		if p.looksLikeTechName(block[0]) {
			techs = append(techs, block[0])
			points = append(points, block[1:]...)
		} else {
			points = append(points, block...)
		}
	}
	return points, techs
}

// parseInlineFormat handles "Tech: • point one • point two" lines.
func (p *TechStackParser) parseInlineFormat(text string) (points, techs []string) {
	for _, match := range techStackPattern.FindAllStringSubmatch(text, -1) {
		stack := strings.TrimSpace(match[1])
		block := strings.TrimSpace(match[2])

		extracted := extractBulletPoints(block)
		if len(extracted) == 0 {
			continue
		}
		points = append(points, extracted...)
		techs = append(techs, stack)
	}
	return points, techs
}

func extractBulletPoints(block string) []string {
	if strings.Contains(block, "•") {
		var points []string
		for _, raw := range strings.Split(block, "•") {
			if point := strings.TrimSpace(raw); point != "" {
				points = append(points, point)
			}
		}
		return points
	}
	var points []string
	for _, match := range bulletPointPattern.FindAllStringSubmatch(block, -1) {
		points = append(points, match[1])
	}
	return points
}

// fallbackPoints scrapes any bulleted line when neither structured
// format matched.
func (p *TechStackParser) fallbackPoints(text string) []string {
	var points []string
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "•") && !strings.HasPrefix(line, "-") &&
			!strings.HasPrefix(line, "*") && !strings.HasPrefix(line, "◦") {
			continue
		}
		if point := strings.TrimLeft(line, "•-*◦ \t"); point != "" {
			points = append(points, point)
		}
	}
	return points
}

func splitBlocks(text string) [][]string {
	var blocks [][]string
	var current []string
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if len(current) > 0 {
				blocks = append(blocks, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks
}

// looksLikeTechName decides whether a line names a technology rather
// than describing work done with one.
func (p *TechStackParser) looksLikeTechName(line string) bool {
	lower := strings.ToLower(strings.TrimSpace(line))
	if lower == "" {
		return false
	}
	for _, word := range p.excludeWords {
		if strings.HasPrefix(lower, word) {
			return false
		}
	}
	for _, marker := range []string{"•", "-", "*", "◦"} {
		if strings.HasPrefix(lower, marker) {
			return false
		}
	}
	for keyword := range techKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	words := len(strings.Fields(line))
	if words <= 3 && !strings.ContainsAny(line, ".!?") {
		return true
	}
	return words <= 2
}

// ParseManualPoints cleans manually entered override points: one per
// line, markers stripped, short leftovers dropped.
func ParseManualPoints(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var points []string
	for _, line := range strings.Split(text, "\n") {
		clean := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), manualMarkerSet))
		if len(clean) > 2 {
			points = append(points, clean)
		}
	}
	return points
}
