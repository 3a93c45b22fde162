package xml

import (
	"encoding/xml"
	"sync/atomic"
)

// Namespace URIs used by the element model
const (
	WordNamespace          = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	RelationshipsNamespace = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

// DefaultNamespaces returns the namespace declarations written on a new document root
func DefaultNamespaces() map[string]string {
	return map[string]string{
		"w": WordNamespace,
		"r": RelationshipsNamespace,
	}
}

// Kind identifies the type of an element. Values match the local name of the
// element in WordprocessingML where one exists.
type Kind string

const (
	KindDocument  Kind = "document"
	KindParagraph Kind = "p"
	KindRun       Kind = "r"
	KindTable     Kind = "tbl"
	KindRow       Kind = "tr"
	KindCell      Kind = "tc"
	KindFragment  Kind = "fragment"
)

// Element is implemented by every node of the element tree
type Element interface {
	// ElementID returns the identity token of the element
	ElementID() uint64
	// Kind returns the element kind
	Kind() Kind
}

// BlockElement represents any element that can appear in a document body or a table cell
type BlockElement interface {
	Element
	isBlockElement()
}

// ParagraphContent represents any content that can appear in a paragraph
type ParagraphContent interface {
	Element
	isParagraphContent()
}

var lastElementID atomic.Uint64

// identity holds the lazily minted identity token of an element
type identity struct {
	id uint64
}

// ElementID returns the identity token, minting one on first use
func (i *identity) ElementID() uint64 {
	if i.id == 0 {
		i.id = lastElementID.Add(1)
	}
	return i.id
}

// Style represents a style reference
type Style struct {
	Val string `xml:"val,attr"`
}

// MarshalXML implements custom XML marshaling for Style
func (s Style) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	// The element name depends on the context (pStyle, tblStyle, etc.)
	// so we keep the provided name
	start.Attr = []xml.Attr{
		{Name: xml.Name{Local: "w:val"}, Value: s.Val},
	}
	return e.EncodeElement(struct{}{}, start)
}

// encodeEmpty writes a property element without attributes, such as w:b
func encodeEmpty(e *xml.Encoder, name string) error {
	return e.EncodeElement(struct{}{}, xml.StartElement{Name: xml.Name{Local: name}})
}

// encodeVal writes a property element carrying a single w:val attribute
func encodeVal(e *xml.Encoder, name, val string) error {
	start := xml.StartElement{
		Name: xml.Name{Local: name},
		Attr: []xml.Attr{{Name: xml.Name{Local: "w:val"}, Value: val}},
	}
	return e.EncodeElement(struct{}{}, start)
}
