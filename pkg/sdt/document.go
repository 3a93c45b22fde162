package sdt

import (
	"bytes"
	"io"
	"os"

	"github.com/antchfx/xmlquery"

	sdtxml "github.com/benjaminschreck/go-sdt/pkg/sdt/xml"
)

// Document is a single-section document whose elements can be registered
// for content control treatment. Registered elements are wrapped when the
// document is rendered; the element model itself is never changed.
type Document struct {
	model    *sdtxml.Document
	registry *Registry
	strict   bool
}

// NewDocument creates an empty document using the global settings
func NewDocument() *Document {
	return &Document{
		model:    sdtxml.NewDocument(),
		registry: NewRegistry(),
		strict:   GetGlobalSettings().StrictLocate,
	}
}

// SetStrict controls whether rendering fails when a registered element
// cannot be located in the serialized markup
func (d *Document) SetStrict(strict bool) {
	d.strict = strict
}

// Model returns the underlying element model
func (d *Document) Model() *sdtxml.Document {
	return d.model
}

// Registry returns the registry of the document
func (d *Document) Registry() *Registry {
	return d.registry
}

// AddParagraph appends a paragraph holding text
func (d *Document) AddParagraph(text string) *sdtxml.Paragraph {
	p := sdtxml.NewTextParagraph(text)
	d.model.Body.Append(p)
	return p
}

// AddElement appends a block element
func (d *Document) AddElement(el sdtxml.BlockElement) {
	d.model.Body.Append(el)
}

// AddTable appends a table
func (d *Document) AddTable(t *sdtxml.Table) *sdtxml.Table {
	d.model.Body.Append(t)
	return t
}

// AddFragment appends pre-rendered markup, such as the output of
// TableBuilder.SerializeWithSdts. Content control ids in the markup that
// collide with ids already rendered into the document, or with an earlier
// fragment, are replaced with the next free id when the document is
// rendered.
func (d *Document) AddFragment(markup string) *sdtxml.Fragment {
	f := sdtxml.NewFragment(markup)
	d.model.Body.Append(f)
	return f
}

// Namespaces returns the namespace declarations of the document root
func (d *Document) Namespaces() map[string]string {
	return d.model.ExtractNamespaces()
}

// Register marks an element of the document for wrapping in a content control
func (d *Document) Register(el sdtxml.Element, cfg Config) error {
	if !wrappableKinds[el.Kind()] {
		return NewStructuralError(string(el.Kind()), "element kind cannot be wrapped in a content control")
	}
	return d.registry.Register(el, cfg)
}

// Render serializes the document to the content of word/document.xml with
// every registered element wrapped and every fragment spliced in
func (d *Document) Render() ([]byte, error) {
	data, err := sdtxml.Marshal(d.model)
	if err != nil {
		return nil, NewDocumentError("render", "", err)
	}

	tree, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, NewDocumentError("parse", documentPart, err)
	}

	locations, err := NewLocator(d.strict).Resolve(d.model, tree, d.registry.All())
	if err != nil {
		return nil, err
	}

	injector := NewInjector()
	errs := NewMultiError()
	for _, loc := range locations {
		wrapErr := injector.ProcessElement(tree, loc.Node, loc.Entry.Config, loc.Occurrence, loc.ContainerPath)
		errs.Add(WithContext(wrapErr, "inject", map[string]interface{}{
			"tag":        loc.Entry.Config.Tag,
			"path":       loc.ContainerPath,
			"occurrence": loc.Occurrence,
		}))
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if err := d.spliceFragments(tree); err != nil {
		return nil, err
	}

	WithFields(Fields{
		"controls":   len(locations),
		"registered": d.registry.Count(),
	}).Debug("rendered document")
	return outputDocument(tree), nil
}

// spliceFragments replaces every fragment placeholder comment with its markup
func (d *Document) spliceFragments(tree *xmlquery.Node) error {
	fragments := make(map[uint64]*sdtxml.Fragment)
	d.model.Walk(func(el sdtxml.Element, _ []sdtxml.Kind) {
		if f, ok := el.(*sdtxml.Fragment); ok {
			fragments[f.ElementID()] = f
		}
	})
	if len(fragments) == 0 {
		return nil
	}

	var anchors []*xmlquery.Node
	var visit func(*xmlquery.Node)
	visit = func(n *xmlquery.Node) {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == xmlquery.CommentNode {
				anchors = append(anchors, child)
				continue
			}
			visit(child)
		}
	}
	visit(tree)

	seen := make(map[string]bool)
	for _, idNode := range controlIDNodes(tree) {
		if id := attrValue(idNode, "val"); id != "" {
			seen[id] = true
		}
	}

	reminted := 0
	for _, anchor := range anchors {
		id, err := sdtxml.ParseFragmentMarker(anchor.Data)
		if err != nil {
			continue
		}
		fragment, ok := fragments[id]
		if !ok {
			continue
		}
		nodes, err := spliceFragment(anchor, fragment.Markup)
		if err != nil {
			return err
		}
		for _, n := range nodes {
			reminted += remintControlIDs(n, seen, d.registry.IsIDUsed)
		}
	}
	if reminted > 0 {
		Debug("replaced %d colliding content control ids in fragments", reminted)
	}
	return nil
}

// Save renders the document and writes it as a DOCX package
func (d *Document) Save(w io.Writer) error {
	documentXML, err := d.Render()
	if err != nil {
		return err
	}
	return WritePackage(w, documentXML)
}

// SaveFile renders the document to a DOCX file
func (d *Document) SaveFile(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return NewDocumentError("create", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = NewDocumentError("close", path, cerr)
		}
	}()
	return d.Save(f)
}
