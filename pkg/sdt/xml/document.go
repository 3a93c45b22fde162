package xml

import (
	"encoding/xml"
	"fmt"
	"sort"
)

// Document represents a Word document structure
type Document struct {
	identity
	Body *Body
	// Namespaces maps prefixes to URIs declared on the w:document root
	Namespaces map[string]string
}

// NewDocument creates an empty single-section document
func NewDocument() *Document {
	return &Document{
		Body:       &Body{Section: DefaultSection()},
		Namespaces: DefaultNamespaces(),
	}
}

// Kind implements the Element interface
func (d *Document) Kind() Kind { return KindDocument }

// ExtractNamespaces returns a copy of the namespace declarations of the document root
func (d *Document) ExtractNamespaces() map[string]string {
	namespaces := make(map[string]string, len(d.Namespaces))
	for prefix, uri := range d.Namespaces {
		namespaces[prefix] = uri
	}
	return namespaces
}

// MarshalXML implements custom XML marshaling for Document
func (d *Document) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:document"}
	start.Attr = nil

	namespaces := d.Namespaces
	if len(namespaces) == 0 {
		namespaces = DefaultNamespaces()
	}
	prefixes := make([]string, 0, len(namespaces))
	for prefix := range namespaces {
		prefixes = append(prefixes, prefix)
	}
	// Sorted so the output is deterministic
	sort.Strings(prefixes)
	for _, prefix := range prefixes {
		start.Attr = append(start.Attr, xml.Attr{
			Name:  xml.Name{Local: "xmlns:" + prefix},
			Value: namespaces[prefix],
		})
	}

	if err := e.EncodeToken(start); err != nil {
		return err
	}
	body := d.Body
	if body == nil {
		body = &Body{}
	}
	if err := e.EncodeElement(body, xml.StartElement{Name: xml.Name{Local: "w:body"}}); err != nil {
		return err
	}
	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// Walk visits every element of the document in document order. The path holds
// the kinds of the containers enclosing the visited element, outermost first.
func (d *Document) Walk(fn func(el Element, path []Kind)) {
	if d.Body == nil {
		return
	}
	for _, el := range d.Body.Elements {
		walkElement(el, nil, fn)
	}
}

func walkElement(el Element, path []Kind, fn func(Element, []Kind)) {
	fn(el, path)
	childPath := append(append([]Kind(nil), path...), el.Kind())

	switch v := el.(type) {
	case *Paragraph:
		for _, content := range v.Content {
			walkElement(content, childPath, fn)
		}
	case *Table:
		for _, row := range v.Rows {
			walkElement(row, childPath, fn)
		}
	case *TableRow:
		for _, cell := range v.Cells {
			walkElement(cell, childPath, fn)
		}
	case *TableCell:
		for _, content := range v.Content {
			walkElement(content, childPath, fn)
		}
	}
}

// Body represents the document body
type Body struct {
	// Elements maintains the order of all body elements
	Elements []BlockElement
	// Section at the end of the body (critical for Word compatibility)
	Section *SectionProperties
}

// Append adds block elements to the end of the body
func (b *Body) Append(elements ...BlockElement) {
	b.Elements = append(b.Elements, elements...)
}

// MarshalXML implements custom XML marshaling to preserve element order
func (b *Body) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:body"}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	for _, elem := range b.Elements {
		if err := encodeBlock(e, elem); err != nil {
			return err
		}
	}

	if b.Section != nil {
		if err := e.EncodeElement(b.Section, xml.StartElement{Name: xml.Name{Local: "w:sectPr"}}); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// encodeBlock writes a body or cell level element
func encodeBlock(e *xml.Encoder, elem BlockElement) error {
	switch el := elem.(type) {
	case *Paragraph:
		return e.EncodeElement(el, xml.StartElement{Name: xml.Name{Local: "w:p"}})
	case *Table:
		return e.EncodeElement(el, xml.StartElement{Name: xml.Name{Local: "w:tbl"}})
	case *Fragment:
		return el.encode(e)
	default:
		return fmt.Errorf("unsupported block element %T", elem)
	}
}

// SectionProperties represents the single section of a document
type SectionProperties struct {
	PageSize    *PageSize
	PageMargins *PageMargins
}

// DefaultSection returns an A4 portrait section with one inch margins
func DefaultSection() *SectionProperties {
	return &SectionProperties{
		PageSize: &PageSize{Width: 11906, Height: 16838},
		PageMargins: &PageMargins{
			Top: 1440, Right: 1440, Bottom: 1440, Left: 1440,
			Header: 708, Footer: 708,
		},
	}
}

// MarshalXML implements custom XML marshaling for SectionProperties
func (s SectionProperties) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:sectPr"}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if s.PageSize != nil {
		size := xml.StartElement{
			Name: xml.Name{Local: "w:pgSz"},
			Attr: []xml.Attr{
				{Name: xml.Name{Local: "w:w"}, Value: fmt.Sprintf("%d", s.PageSize.Width)},
				{Name: xml.Name{Local: "w:h"}, Value: fmt.Sprintf("%d", s.PageSize.Height)},
			},
		}
		if err := e.EncodeElement(struct{}{}, size); err != nil {
			return err
		}
	}

	if m := s.PageMargins; m != nil {
		margins := xml.StartElement{
			Name: xml.Name{Local: "w:pgMar"},
			Attr: []xml.Attr{
				{Name: xml.Name{Local: "w:top"}, Value: fmt.Sprintf("%d", m.Top)},
				{Name: xml.Name{Local: "w:right"}, Value: fmt.Sprintf("%d", m.Right)},
				{Name: xml.Name{Local: "w:bottom"}, Value: fmt.Sprintf("%d", m.Bottom)},
				{Name: xml.Name{Local: "w:left"}, Value: fmt.Sprintf("%d", m.Left)},
				{Name: xml.Name{Local: "w:header"}, Value: fmt.Sprintf("%d", m.Header)},
				{Name: xml.Name{Local: "w:footer"}, Value: fmt.Sprintf("%d", m.Footer)},
				{Name: xml.Name{Local: "w:gutter"}, Value: "0"},
			},
		}
		if err := e.EncodeElement(struct{}{}, margins); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// PageSize represents the page dimensions in twentieths of a point
type PageSize struct {
	Width  int
	Height int
}

// PageMargins represents the page margins in twentieths of a point
type PageMargins struct {
	Top    int
	Right  int
	Bottom int
	Left   int
	Header int
	Footer int
}

// Marshal renders a document as the content of word/document.xml
func Marshal(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("failed to marshal document: nil document")
	}
	data, err := xml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	result := []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	return append(result, data...), nil
}

// MarshalElement renders a single element without a document wrapper
func MarshalElement(el Element) ([]byte, error) {
	switch v := el.(type) {
	case *Document:
		return xml.Marshal(v)
	case *Paragraph:
		return xml.Marshal(v)
	case *Run:
		return xml.Marshal(v)
	case *Table:
		return xml.Marshal(v)
	case *TableRow:
		return xml.Marshal(v)
	case *TableCell:
		return xml.Marshal(v)
	case *Fragment:
		return []byte(v.Markup), nil
	default:
		return nil, fmt.Errorf("unsupported element %T", el)
	}
}
