package customize

import (
	"regexp"
	"strings"

	"github.com/ryanmontogomory-hue/Injector-sub000/resume/docx"
)

// Marker pattern precedence: dash family, bullet family, asterisk,
// plus, numbered. The first matching family wins.
var bulletPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*[-−–—]\s+`),
	regexp.MustCompile(`^\s*[•·▪▫]\s+`),
	regexp.MustCompile(`^\s*[*]\s+`),
	regexp.MustCompile(`^\s*[+]\s+`),
}

var numberedBulletPattern = regexp.MustCompile(`^\d+[.)]`)

const defaultMarker = "-"

// markerStripSet holds every glyph CleanBulletText strips from the
// front of a point before re-marking it.
const markerStripSet = "-–—−•·●◦▪▫‣* \t"

// BulletFormatter classifies bullet lines, extracts their style, and
// writes new bullets that reproduce it.
type BulletFormatter struct {
	markers []string
}

// NewBulletFormatter builds a formatter over the given marker set;
// nil markers means the default canonical set.
func NewBulletFormatter(markers []string) *BulletFormatter {
	if len(markers) == 0 {
		markers = DefaultKeywords().BulletMarkers
	}
	return &BulletFormatter{markers: markers}
}

// IsBulletPoint reports whether trimmed text opens with a recognized
// marker or a numbered-list prefix. Empty text is never a bullet.
func (f *BulletFormatter) IsBulletPoint(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	for _, marker := range f.markers {
		if strings.HasPrefix(text, marker) {
			return true
		}
	}
	return isNumberedBullet(text)
}

func isNumberedBullet(text string) bool {
	if !numberedBulletPattern.MatchString(text) {
		return false
	}
	head := text
	if len(head) > 3 {
		head = head[:3]
	}
	return strings.ContainsAny(head, ".)")
}

// ExtractMarker returns the literal marker opening the text. Dash
// variants beat bullet glyphs beat asterisk beat plus beat numbered
// prefixes; "-" is the defensive fallback.
func (f *BulletFormatter) ExtractMarker(text string) string {
	text = strings.TrimSpace(text)

	for _, pattern := range bulletPatterns {
		if match := pattern.FindString(text); match != "" {
			return strings.TrimSpace(match)
		}
	}

	// Tight formatting: marker with no separator after it.
	for _, marker := range f.markers {
		if strings.HasPrefix(text, marker+"\t") || strings.HasPrefix(text, marker+" ") {
			return marker
		}
		if strings.HasPrefix(text, marker) && len(text) > len(marker) && !isAlnum(text[len(marker)]) {
			return marker
		}
	}

	if len(text) > 0 && text[0] >= '0' && text[0] <= '9' {
		for i := 0; i < len(text); i++ {
			if text[i] == '.' || text[i] == ')' {
				return text[:i+1]
			}
		}
	}

	return defaultMarker
}

func isAlnum(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// DetectSeparator returns the whitespace run between the marker and
// the first character of the point text, a single space by default.
func (f *BulletFormatter) DetectSeparator(text string) string {
	text = strings.TrimSpace(text)
	marker := f.ExtractMarker(text)
	if !strings.HasPrefix(text, marker) {
		return " "
	}
	rest := text[len(marker):]
	sep := rest[:len(rest)-len(strings.TrimLeft(rest, " \t"))]
	if sep == "" {
		return " "
	}
	return sep
}

// ExtractFormatting snapshots the bullet style of the paragraph at
// index. Returns nil when the index is out of range, the paragraph is
// not a bullet, or it has no runs. Reading never mutates the source.
func (f *BulletFormatter) ExtractFormatting(doc *docx.Document, index int) *BulletFormatting {
	paras := doc.Paragraphs()
	if index < 0 || index >= len(paras) {
		return nil
	}
	para := paras[index]
	text := para.Text()
	if !f.IsBulletPoint(text) {
		return nil
	}
	runs := para.Runs()
	if len(runs) == 0 {
		return nil
	}

	style := para.StyleName()
	if style == "" {
		style = "Normal"
	}

	formatting := &BulletFormatting{
		Paragraph: para.Format(),
		Style:     style,
		Marker:    f.ExtractMarker(text),
		Separator: f.DetectSeparator(text),
		List:      extractListFormat(para, style),
	}
	for _, run := range runs {
		formatting.Runs = append(formatting.Runs, RunStyle{Text: run.Text(), Format: run.Format()})
	}
	return formatting
}

func extractListFormat(para *docx.Paragraph, style string) ListFormat {
	lf := ListFormat{Level: "0", NumID: "1", Style: style, Indent: para.Format().IndentLeft}
	if ilvl, numID, ok := para.Numbering(); ok {
		lf.IsList = true
		if ilvl != "" {
			lf.Level = ilvl
		}
		if numID != "" {
			lf.NumID = numID
		}
	}
	return lf
}

// DetectDocumentMarker tallies the marker of every bullet paragraph
// in the document and returns the most frequent one. Ties break to
// the marker seen first in document order; a document with no bullets
// votes for "-".
func (f *BulletFormatter) DetectDocumentMarker(doc *docx.Document) string {
	counts := map[string]int{}
	var order []string

	for _, para := range doc.Paragraphs() {
		text := strings.TrimSpace(para.Text())
		if text == "" || !f.IsBulletPoint(text) {
			continue
		}
		marker := f.ExtractMarker(text)
		if _, seen := counts[marker]; !seen {
			order = append(order, marker)
		}
		counts[marker]++
	}

	best := ""
	bestCount := 0
	for _, marker := range order {
		if counts[marker] > bestCount {
			best = marker
			bestCount = counts[marker]
		}
	}
	if best == "" {
		return defaultMarker
	}
	return best
}

// ApplyFormatting rewrites the target paragraph as a single bullet
// run "{marker}{separator}{text}", copying style, paragraph and run
// attributes from formatting, falling back per-field to fallback. Any
// pre-existing runs are destroyed; the target is always a fresh
// paragraph. A nil formatting and nil fallback still writes "- "+text
// as plain text.
func (f *BulletFormatter) ApplyFormatting(para *docx.Paragraph, formatting *BulletFormatting, text string, fallback *BulletFormatting) {
	if formatting == nil {
		formatting = fallback
	}

	marker := defaultMarker
	separator := " "
	var runFormat docx.RunFormat

	if formatting != nil {
		if m := strings.TrimSpace(formatting.Marker); m != "" {
			marker = m
		}
		if formatting.Separator != "" {
			separator = formatting.Separator
		}
		if formatting.Style != "" {
			para.SetStyle(formatting.Style)
		}
		para.SetFormat(formatting.Paragraph)
		if formatting.List.IsList {
			para.SetNumbering(formatting.List.Level, formatting.List.NumID)
		}
		if len(formatting.Runs) > 0 {
			runFormat = formatting.Runs[0].Format
		}
	}

	para.ClearRuns()
	para.AddRun(marker+separator+f.CleanBulletText(text), runFormat)
}

// CleanBulletText strips any leading marker and separator so callers
// may pass raw or already-marked point text without double markers.
func (f *BulletFormatter) CleanBulletText(text string) string {
	clean := strings.TrimLeft(text, markerStripSet)
	if len(clean) > 0 && clean[0] >= '0' && clean[0] <= '9' {
		for i := 0; i < len(clean); i++ {
			if clean[i] == '.' || clean[i] == ')' {
				clean = strings.TrimLeft(clean[i+1:], " \t")
				break
			}
		}
	}
	return clean
}
