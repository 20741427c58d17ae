package customize

import "github.com/ryanmontogomory-hue/Injector-sub000/resume/docx"

// BulletFormatting is a read-only snapshot of one bullet line's style:
// the character formatting of its runs, its paragraph attributes, the
// marker glyph and the whitespace between marker and text. Extracted
// once from an existing paragraph and applied to new paragraphs;
// never mutated in place.
type BulletFormatting struct {
	Runs      []RunStyle
	Paragraph docx.ParagraphFormat
	Style     string
	Marker    string
	Separator string
	List      ListFormat
}

// RunStyle pairs a run's text with its character formatting. The
// first run of a bullet is the template for inserted text.
type RunStyle struct {
	Text   string
	Format docx.RunFormat
}

// ListFormat is best-effort Word numbering metadata. IsList reports
// whether the source paragraph carried real w:numPr numbering rather
// than a plain-text marker.
type ListFormat struct {
	Level  string
	NumID  string
	Style  string
	Indent string
	IsList bool
}

// WithMarker returns a copy carrying a different marker, used when
// falling back from a local template to the document-wide vote.
func (f BulletFormatting) WithMarker(marker string) BulletFormatting {
	copied := f
	copied.Marker = marker
	return copied
}

// defaultFormatting synthesizes the profile used when no bullet
// exists anywhere near the insertion point: no run styling, Normal
// style, single-space separator.
func defaultFormatting(marker string) BulletFormatting {
	return BulletFormatting{
		Style:     "Normal",
		Marker:    marker,
		Separator: " ",
		List:      ListFormat{Level: "0", NumID: "1", Style: "List Bullet", IsList: false},
	}
}
