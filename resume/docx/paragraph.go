package docx

import (
	"encoding/xml"
	"strings"
)

// Paragraph wraps a w:p element together with the container it lives
// in, so inserts can splice siblings without re-walking the tree.
type Paragraph struct {
	doc    *Document
	node   *xmlNode
	parent *xmlNode
}

// ParagraphFormat carries the paragraph-level attributes the engine
// copies between bullets. Values are raw WordprocessingML strings
// (twentieths of a point for spacing and indents); empty means unset.
type ParagraphFormat struct {
	Alignment       string
	SpacingBefore   string
	SpacingAfter    string
	LineSpacing     string
	IndentLeft      string
	IndentRight     string
	FirstLineIndent string
}

// RunFormat carries character-level attributes. FontSize is the raw
// half-point w:sz value; empty means inherit.
type RunFormat struct {
	FontName  string
	FontSize  string
	Color     string
	Bold      bool
	Italic    bool
	Underline bool
}

// Run wraps a w:r element.
type Run struct {
	node *xmlNode
}

// Text concatenates the paragraph's w:t descendants.
func (p *Paragraph) Text() string {
	var builder strings.Builder
	walkXML(p.node, func(n *xmlNode) bool {
		if isElement(n, "t") {
			for _, child := range n.Children {
				if child.IsText {
					builder.WriteString(child.Text)
				}
			}
		}
		return true
	})
	return builder.String()
}

// StyleName returns the w:pStyle value, empty when unstyled.
func (p *Paragraph) StyleName() string {
	pPr := childElement(p.node, "pPr")
	return attrValue(childElement(pPr, "pStyle"), "val")
}

// SetStyle sets the paragraph style id.
func (p *Paragraph) SetStyle(name string) {
	if name == "" {
		return
	}
	pPr := ensureChildFirst(p.node, "pPr")
	setAttr(ensureChildFirst(pPr, "pStyle"), "val", name)
}

// Format reads the paragraph-level formatting attributes.
func (p *Paragraph) Format() ParagraphFormat {
	pPr := childElement(p.node, "pPr")
	spacing := childElement(pPr, "spacing")
	ind := childElement(pPr, "ind")
	return ParagraphFormat{
		Alignment:       attrValue(childElement(pPr, "jc"), "val"),
		SpacingBefore:   attrValue(spacing, "before"),
		SpacingAfter:    attrValue(spacing, "after"),
		LineSpacing:     attrValue(spacing, "line"),
		IndentLeft:      attrValue(ind, "left"),
		IndentRight:     attrValue(ind, "right"),
		FirstLineIndent: attrValue(ind, "firstLine"),
	}
}

// SetFormat applies the non-empty fields of f to the paragraph.
func (p *Paragraph) SetFormat(f ParagraphFormat) {
	if f == (ParagraphFormat{}) {
		return
	}
	pPr := ensureChildFirst(p.node, "pPr")
	if f.Alignment != "" {
		setAttr(ensureChild(pPr, "jc"), "val", f.Alignment)
	}
	if f.SpacingBefore != "" || f.SpacingAfter != "" || f.LineSpacing != "" {
		spacing := ensureChild(pPr, "spacing")
		if f.SpacingBefore != "" {
			setAttr(spacing, "before", f.SpacingBefore)
		}
		if f.SpacingAfter != "" {
			setAttr(spacing, "after", f.SpacingAfter)
		}
		if f.LineSpacing != "" {
			setAttr(spacing, "line", f.LineSpacing)
		}
	}
	if f.IndentLeft != "" || f.IndentRight != "" || f.FirstLineIndent != "" {
		ind := ensureChild(pPr, "ind")
		if f.IndentLeft != "" {
			setAttr(ind, "left", f.IndentLeft)
		}
		if f.IndentRight != "" {
			setAttr(ind, "right", f.IndentRight)
		}
		if f.FirstLineIndent != "" {
			setAttr(ind, "firstLine", f.FirstLineIndent)
		}
	}
}

// Numbering returns the list level and numbering id, with ok false
// when the paragraph is not part of a numbered list.
func (p *Paragraph) Numbering() (ilvl, numID string, ok bool) {
	pPr := childElement(p.node, "pPr")
	numPr := childElement(pPr, "numPr")
	if numPr == nil {
		return "", "", false
	}
	return attrValue(childElement(numPr, "ilvl"), "val"),
		attrValue(childElement(numPr, "numId"), "val"),
		true
}

// SetNumbering makes the paragraph a member of a numbered list.
func (p *Paragraph) SetNumbering(ilvl, numID string) {
	pPr := ensureChildFirst(p.node, "pPr")
	numPr := ensureChild(pPr, "numPr")
	setAttr(ensureChild(numPr, "ilvl"), "val", ilvl)
	setAttr(ensureChild(numPr, "numId"), "val", numID)
}

// Runs returns the paragraph's direct runs.
func (p *Paragraph) Runs() []*Run {
	var out []*Run
	for _, child := range p.node.Children {
		if isElement(child, "r") {
			out = append(out, &Run{node: child})
		}
	}
	return out
}

// ClearRuns removes every run, keeping paragraph properties.
func (p *Paragraph) ClearRuns() {
	removeChild(p.node, "r")
}

// SetText replaces the paragraph content with a single unformatted run.
func (p *Paragraph) SetText(text string) {
	p.ClearRuns()
	p.AddRun(text, RunFormat{})
}

// AddRun appends a run with the given text and formatting.
func (p *Paragraph) AddRun(text string, f RunFormat) *Run {
	run := newElement("r")

	if f != (RunFormat{}) {
		rPr := newElement("rPr")
		if f.FontName != "" {
			fonts := newElement("rFonts")
			setAttr(fonts, "ascii", f.FontName)
			setAttr(fonts, "hAnsi", f.FontName)
			rPr.Children = append(rPr.Children, fonts)
		}
		if f.Bold {
			rPr.Children = append(rPr.Children, newElement("b"))
		}
		if f.Italic {
			rPr.Children = append(rPr.Children, newElement("i"))
		}
		if f.Underline {
			u := newElement("u")
			setAttr(u, "val", "single")
			rPr.Children = append(rPr.Children, u)
		}
		if f.Color != "" {
			color := newElement("color")
			setAttr(color, "val", f.Color)
			rPr.Children = append(rPr.Children, color)
		}
		if f.FontSize != "" {
			sz := newElement("sz")
			setAttr(sz, "val", f.FontSize)
			rPr.Children = append(rPr.Children, sz)
		}
		run.Children = append(run.Children, rPr)
	}

	t := newElement("t")
	if text != strings.TrimSpace(text) {
		t.Attr = append(t.Attr, xml.Attr{Name: xml.Name{Local: "xml:space"}, Value: "preserve"})
	}
	if text != "" {
		t.Children = append(t.Children, &xmlNode{IsText: true, Text: text})
	}
	run.Children = append(run.Children, t)

	p.node.Children = append(p.node.Children, run)
	return &Run{node: run}
}

// Text concatenates the run's w:t children.
func (r *Run) Text() string {
	var builder strings.Builder
	for _, child := range r.node.Children {
		if !isElement(child, "t") {
			continue
		}
		for _, sub := range child.Children {
			if sub.IsText {
				builder.WriteString(sub.Text)
			}
		}
	}
	return builder.String()
}

// Format reads the run's character formatting.
func (r *Run) Format() RunFormat {
	rPr := childElement(r.node, "rPr")
	if rPr == nil {
		return RunFormat{}
	}
	fonts := childElement(rPr, "rFonts")
	return RunFormat{
		FontName:  attrValue(fonts, "ascii"),
		FontSize:  attrValue(childElement(rPr, "sz"), "val"),
		Color:     attrValue(childElement(rPr, "color"), "val"),
		Bold:      toggleOn(childElement(rPr, "b")),
		Italic:    toggleOn(childElement(rPr, "i")),
		Underline: underlineOn(childElement(rPr, "u")),
	}
}

func toggleOn(node *xmlNode) bool {
	if node == nil {
		return false
	}
	val := attrValue(node, "val")
	return val == "" || (val != "0" && val != "false" && val != "none")
}

func underlineOn(node *xmlNode) bool {
	if node == nil {
		return false
	}
	return attrValue(node, "val") != "none"
}
