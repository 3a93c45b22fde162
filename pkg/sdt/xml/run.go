package xml

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Run represents a run of text with common properties
type Run struct {
	identity
	Properties *RunProperties
	Text       *Text
	Break      *Break
}

// NewRun creates an unformatted run holding text
func NewRun(text string) *Run {
	return &Run{Text: &Text{Content: text}}
}

// NewFormattedRun creates a run holding text with the given properties
func NewFormattedRun(text string, props *RunProperties) *Run {
	return &Run{Properties: props, Text: &Text{Content: text}}
}

// Kind implements the Element interface
func (r *Run) Kind() Kind { return KindRun }

// isParagraphContent implements the ParagraphContent interface
func (r *Run) isParagraphContent() {}

// MarshalXML implements custom XML marshaling for Run to ensure proper namespacing
func (r *Run) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:r"}
	start.Attr = nil
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if r.Properties != nil && !r.Properties.IsEmpty() {
		if err := e.EncodeElement(r.Properties, xml.StartElement{Name: xml.Name{Local: "w:rPr"}}); err != nil {
			return err
		}
	}

	if r.Text != nil {
		if err := e.EncodeElement(r.Text, xml.StartElement{Name: xml.Name{Local: "w:t"}}); err != nil {
			return err
		}
	}

	if r.Break != nil {
		if err := e.EncodeElement(r.Break, xml.StartElement{Name: xml.Name{Local: "w:br"}}); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// GetText returns the text content of a run
func (r *Run) GetText() string {
	if r.Text == nil {
		return ""
	}
	return r.Text.Content
}

// RunProperties represents run formatting properties
type RunProperties struct {
	Style         *RunStyle
	Font          *Font
	Bold          bool
	Italic        bool
	Strike        bool
	Color         *Color
	Size          *Size
	Underline     *UnderlineStyle
	VerticalAlign *VerticalAlign
}

// IsEmpty reports whether no property is set
func (p *RunProperties) IsEmpty() bool {
	return p.Style == nil && p.Font == nil && !p.Bold && !p.Italic && !p.Strike &&
		p.Color == nil && p.Size == nil && p.Underline == nil && p.VerticalAlign == nil
}

// MarshalXML implements custom XML marshaling for RunProperties
func (p RunProperties) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:rPr"}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	// Order follows EG_RPrBase
	if p.Style != nil {
		if err := encodeVal(e, "w:rStyle", p.Style.Val); err != nil {
			return err
		}
	}
	if p.Font != nil {
		if err := e.EncodeElement(p.Font, xml.StartElement{Name: xml.Name{Local: "w:rFonts"}}); err != nil {
			return err
		}
	}
	if p.Bold {
		if err := encodeEmpty(e, "w:b"); err != nil {
			return err
		}
	}
	if p.Italic {
		if err := encodeEmpty(e, "w:i"); err != nil {
			return err
		}
	}
	if p.Strike {
		if err := encodeEmpty(e, "w:strike"); err != nil {
			return err
		}
	}
	if p.Color != nil {
		if err := encodeVal(e, "w:color", p.Color.Val); err != nil {
			return err
		}
	}
	if p.Size != nil {
		if err := encodeVal(e, "w:sz", fmt.Sprintf("%d", p.Size.Val)); err != nil {
			return err
		}
	}
	if p.Underline != nil {
		if err := encodeVal(e, "w:u", p.Underline.Val); err != nil {
			return err
		}
	}
	if p.VerticalAlign != nil {
		if err := encodeVal(e, "w:vertAlign", p.VerticalAlign.Val); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// Text represents text content
type Text struct {
	Content string
}

// MarshalXML implements custom XML marshaling for Text to ensure proper namespacing
func (t Text) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:t"}
	start.Attr = nil
	if t.Content != strings.TrimSpace(t.Content) {
		start.Attr = append(start.Attr, xml.Attr{
			Name:  xml.Name{Local: "xml:space"},
			Value: "preserve",
		})
	}
	return e.EncodeElement(t.Content, start)
}

// Break represents a line break
type Break struct {
	Type string
}

// MarshalXML implements xml.Marshaler to ensure Break is written as w:br
func (b Break) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:br"}
	start.Attr = nil
	if b.Type != "" {
		start.Attr = append(start.Attr, xml.Attr{
			Name:  xml.Name{Local: "w:type"},
			Value: b.Type,
		})
	}
	return e.EncodeElement(struct{}{}, start)
}

// Color represents text color
type Color struct {
	Val string
}

// Size represents font size in half points
type Size struct {
	Val int
}

// Font represents font information
type Font struct {
	ASCII string
}

// MarshalXML implements custom XML marshaling for Font
func (f Font) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:rFonts"}
	start.Attr = []xml.Attr{
		{Name: xml.Name{Local: "w:ascii"}, Value: f.ASCII},
		{Name: xml.Name{Local: "w:hAnsi"}, Value: f.ASCII},
	}
	return e.EncodeElement(struct{}{}, start)
}

// RunStyle represents a run style reference
type RunStyle struct {
	Val string
}

// UnderlineStyle represents underline formatting
type UnderlineStyle struct {
	Val string
}

// VerticalAlign represents vertical text alignment (superscript/subscript)
type VerticalAlign struct {
	Val string
}
