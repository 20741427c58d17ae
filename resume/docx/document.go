// Package docx reads and mutates DOCX files at the paragraph level by
// rewriting word/document.xml in place and leaving every other zip
// entry untouched.
package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
)

const documentXMLName = "word/document.xml"

var ErrNoDocumentXML = errors.New("docx: word/document.xml not found")

// Document is an opened DOCX. Paragraph positions are addresses into
// the current body sequence; inserting a paragraph shifts the
// addresses of everything after it.
type Document struct {
	source    []byte
	header    string
	rootStart string
	rootEnd   string
	root      *xmlNode
	body      *xmlNode
}

// Open parses the document.xml of a DOCX byte slice.
func Open(data []byte) (*Document, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("docx: open archive: %w", err)
	}

	var docFile *zip.File
	for _, file := range reader.File {
		if normalizeZipName(file.Name) == documentXMLName {
			docFile = file
			break
		}
	}
	if docFile == nil {
		return nil, ErrNoDocumentXML
	}

	content, err := readZipFile(docFile)
	if err != nil {
		return nil, fmt.Errorf("docx: read document.xml: %w", err)
	}

	xmlText := string(content)
	rootStart, rootEnd, err := extractRootTags(xmlText)
	if err != nil {
		return nil, fmt.Errorf("docx: parse document.xml: %w", err)
	}
	root, header, err := parseXMLDocument(xmlText)
	if err != nil {
		return nil, fmt.Errorf("docx: parse document.xml: %w", err)
	}
	body := findBodyNode(root)
	if body == nil {
		return nil, errors.New("docx: document.xml has no body")
	}

	return &Document{
		source:    append([]byte(nil), data...),
		header:    header,
		rootStart: rootStart,
		rootEnd:   rootEnd,
		root:      root,
		body:      body,
	}, nil
}

// Paragraphs returns the document's paragraphs in body order,
// including paragraphs nested in tables. The slice reflects the tree
// at call time; re-collect after inserting.
func (d *Document) Paragraphs() []*Paragraph {
	var out []*Paragraph
	d.collectParagraphs(d.body, &out)
	return out
}

func (d *Document) collectParagraphs(container *xmlNode, out *[]*Paragraph) {
	for _, child := range container.Children {
		if child.IsText {
			continue
		}
		if isElement(child, "p") {
			*out = append(*out, &Paragraph{doc: d, node: child, parent: container})
			continue
		}
		d.collectParagraphs(child, out)
	}
}

// InsertParagraphBefore splices a new empty paragraph in front of the
// paragraph at index, inside the same container.
func (d *Document) InsertParagraphBefore(index int) (*Paragraph, error) {
	paras := d.Paragraphs()
	if index < 0 || index >= len(paras) {
		return nil, fmt.Errorf("docx: paragraph index %d out of range [0,%d)", index, len(paras))
	}
	target := paras[index]

	node := newElement("p")
	children := target.parent.Children
	pos := -1
	for i, child := range children {
		if child == target.node {
			pos = i
			break
		}
	}
	if pos == -1 {
		return nil, errors.New("docx: paragraph detached from its container")
	}

	updated := make([]*xmlNode, 0, len(children)+1)
	updated = append(updated, children[:pos]...)
	updated = append(updated, node)
	updated = append(updated, children[pos:]...)
	target.parent.Children = updated

	return &Paragraph{doc: d, node: node, parent: target.parent}, nil
}

// AddParagraph appends an empty paragraph at the end of the body,
// ahead of the trailing section properties when present.
func (d *Document) AddParagraph() *Paragraph {
	node := newElement("p")

	pos := len(d.body.Children)
	for i, child := range d.body.Children {
		if isElement(child, "sectPr") {
			pos = i
			break
		}
	}

	updated := make([]*xmlNode, 0, len(d.body.Children)+1)
	updated = append(updated, d.body.Children[:pos]...)
	updated = append(updated, node)
	updated = append(updated, d.body.Children[pos:]...)
	d.body.Children = updated

	return &Paragraph{doc: d, node: node, parent: d.body}
}

// Save re-encodes document.xml and rewrites the archive, copying every
// other entry through with its original header and bytes.
func (d *Document) Save() ([]byte, error) {
	xmlText, err := encodeXMLDocument(d.header, d.root, d.rootStart, d.rootEnd)
	if err != nil {
		return nil, fmt.Errorf("docx: encode document.xml: %w", err)
	}

	reader, err := zip.NewReader(bytes.NewReader(d.source), int64(len(d.source)))
	if err != nil {
		return nil, fmt.Errorf("docx: reopen archive: %w", err)
	}

	var output bytes.Buffer
	writer := zip.NewWriter(&output)

	for _, file := range reader.File {
		if normalizeZipName(file.Name) == documentXMLName {
			if err := writeZipFile(writer, file, []byte(xmlText)); err != nil {
				return nil, err
			}
			continue
		}
		content, err := readZipFile(file)
		if err != nil {
			return nil, err
		}
		if err := writeZipFile(writer, file, content); err != nil {
			return nil, err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}
	return output.Bytes(), nil
}
