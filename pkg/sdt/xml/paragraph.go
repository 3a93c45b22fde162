package xml

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Paragraph represents a paragraph in the document
type Paragraph struct {
	identity
	Properties *ParagraphProperties
	// Content maintains the order of runs
	Content []ParagraphContent
}

// NewParagraph creates a paragraph from runs
func NewParagraph(runs ...*Run) *Paragraph {
	p := &Paragraph{}
	for _, run := range runs {
		p.Content = append(p.Content, run)
	}
	return p
}

// NewTextParagraph creates a paragraph holding a single plain text run
func NewTextParagraph(text string) *Paragraph {
	return NewParagraph(NewRun(text))
}

// Kind implements the Element interface
func (p *Paragraph) Kind() Kind { return KindParagraph }

// isBlockElement implements the BlockElement interface
func (p *Paragraph) isBlockElement() {}

// AddRun appends a run and returns it
func (p *Paragraph) AddRun(run *Run) *Run {
	p.Content = append(p.Content, run)
	return run
}

// Runs returns the runs of the paragraph in order
func (p *Paragraph) Runs() []*Run {
	var runs []*Run
	for _, content := range p.Content {
		if run, ok := content.(*Run); ok {
			runs = append(runs, run)
		}
	}
	return runs
}

// MarshalXML implements custom XML marshaling for Paragraph to ensure proper namespacing
func (p *Paragraph) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:p"}
	start.Attr = nil
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if p.Properties != nil {
		if err := e.EncodeElement(p.Properties, xml.StartElement{Name: xml.Name{Local: "w:pPr"}}); err != nil {
			return err
		}
	}

	for _, content := range p.Content {
		switch c := content.(type) {
		case *Run:
			if err := e.EncodeElement(c, xml.StartElement{Name: xml.Name{Local: "w:r"}}); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported paragraph content %T", content)
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// GetText returns the concatenated text of all runs in a paragraph
func (p *Paragraph) GetText() string {
	var texts []string
	for _, run := range p.Runs() {
		if text := run.GetText(); text != "" {
			texts = append(texts, text)
		}
	}
	return strings.Join(texts, "")
}

// ParagraphProperties represents paragraph formatting properties
type ParagraphProperties struct {
	Style       *Style
	KeepNext    bool
	Spacing     *Spacing
	Indentation *Indentation
	Alignment   *Alignment
}

// MarshalXML implements custom XML marshaling for ParagraphProperties
func (p ParagraphProperties) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:pPr"}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	// Order follows CT_PPrBase
	if p.Style != nil && p.Style.Val != "" {
		if err := e.EncodeElement(p.Style, xml.StartElement{Name: xml.Name{Local: "w:pStyle"}}); err != nil {
			return err
		}
	}
	if p.KeepNext {
		if err := encodeEmpty(e, "w:keepNext"); err != nil {
			return err
		}
	}
	if p.Spacing != nil {
		if err := e.EncodeElement(p.Spacing, xml.StartElement{Name: xml.Name{Local: "w:spacing"}}); err != nil {
			return err
		}
	}
	if p.Indentation != nil {
		if err := e.EncodeElement(p.Indentation, xml.StartElement{Name: xml.Name{Local: "w:ind"}}); err != nil {
			return err
		}
	}
	if p.Alignment != nil {
		if err := e.EncodeElement(p.Alignment, xml.StartElement{Name: xml.Name{Local: "w:jc"}}); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// Alignment represents paragraph alignment
type Alignment struct {
	Val string
}

// MarshalXML implements custom XML marshaling for Alignment
func (a Alignment) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	return encodeVal(e, "w:jc", a.Val)
}

// Indentation represents paragraph indentation
type Indentation struct {
	Left      int
	Right     int
	FirstLine int
}

// MarshalXML implements custom XML marshaling for Indentation
func (i Indentation) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:ind"}
	start.Attr = []xml.Attr{
		{Name: xml.Name{Local: "w:left"}, Value: fmt.Sprintf("%d", i.Left)},
		{Name: xml.Name{Local: "w:right"}, Value: fmt.Sprintf("%d", i.Right)},
	}
	if i.FirstLine != 0 {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "w:firstLine"}, Value: fmt.Sprintf("%d", i.FirstLine)})
	}
	return e.EncodeElement(struct{}{}, start)
}

// Spacing represents paragraph spacing
type Spacing struct {
	Before int
	After  int
	Line   int
}

// MarshalXML implements custom XML marshaling for Spacing
func (s Spacing) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:spacing"}
	start.Attr = []xml.Attr{
		{Name: xml.Name{Local: "w:before"}, Value: fmt.Sprintf("%d", s.Before)},
		{Name: xml.Name{Local: "w:after"}, Value: fmt.Sprintf("%d", s.After)},
	}
	if s.Line != 0 {
		start.Attr = append(start.Attr,
			xml.Attr{Name: xml.Name{Local: "w:line"}, Value: fmt.Sprintf("%d", s.Line)},
			xml.Attr{Name: xml.Name{Local: "w:lineRule"}, Value: "auto"},
		)
	}
	return e.EncodeElement(struct{}{}, start)
}
