package sdt

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	sdtxml "github.com/benjaminschreck/go-sdt/pkg/sdt/xml"
)

// tableNamespace is the UUID namespace of table shape fingerprints
var tableNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:go-sdt:table-shape"))

// GenerateMarker returns the identity marker of an element. Two distinct
// elements always get different markers, even when their content is equal.
func GenerateMarker(el sdtxml.Element) string {
	id := el.ElementID()
	sum := blake3.Sum256([]byte(fmt.Sprintf("%s:%d", el.Kind(), id)))
	return fmt.Sprintf("%s-%d-%s", el.Kind(), id, hex.EncodeToString(sum[:2]))
}

// GenerateContentHash returns the 8 hex character content fingerprint of an
// element. Elements that render to equivalent markup share a fingerprint.
func GenerateContentHash(el sdtxml.Element) (string, error) {
	if frag, ok := el.(*sdtxml.Fragment); ok {
		return fragmentContentHash(frag.Markup), nil
	}

	data, err := sdtxml.MarshalElement(el)
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s for hashing: %w", el.Kind(), err)
	}
	root, err := parseWrapped(string(data), sdtxml.DefaultNamespaces())
	if err != nil {
		return "", fmt.Errorf("failed to parse %s for hashing: %w", el.Kind(), err)
	}
	node := firstElementChild(root)
	if node == nil {
		return "", NewEmptyInputError(string(el.Kind()))
	}
	return NodeContentHash(node), nil
}

// fragmentContentHash hashes the canonical form of every top-level node of
// the markup, or the raw markup when it does not parse
func fragmentContentHash(markup string) string {
	root, err := parseWrapped(markup, sdtxml.DefaultNamespaces())
	if err != nil {
		return digest(markup)
	}
	var b strings.Builder
	for _, child := range contentChildren(root) {
		canonicalize(&b, child)
	}
	return digest(b.String())
}

// NodeContentHash returns the content fingerprint of a parsed node
func NodeContentHash(node *xmlquery.Node) string {
	var b strings.Builder
	canonicalize(&b, node)
	return digest(b.String())
}

func digest(canonical string) string {
	sum := blake3.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:4])
}

// GenerateTableHash returns a UUID v5 derived from the number of cells in
// each row. Tables with the same shape share the fingerprint.
func GenerateTableHash(t *sdtxml.Table) (string, error) {
	if t == nil || len(t.Rows) == 0 {
		return "", NewEmptyInputError("table")
	}
	return shapeHash(t.Shape()), nil
}

// NodeTableHash returns the shape fingerprint of a parsed w:tbl node
func NodeTableHash(tbl *xmlquery.Node) (string, error) {
	var shape []int
	for _, row := range contentChildren(tbl) {
		if row.Data != "tr" {
			continue
		}
		cells := 0
		for _, cell := range contentChildren(row) {
			if cell.Data == "tc" {
				cells++
			}
		}
		shape = append(shape, cells)
	}
	if len(shape) == 0 {
		return "", NewEmptyInputError("table")
	}
	return shapeHash(shape), nil
}

func shapeHash(shape []int) string {
	cols := make([]string, len(shape))
	for i, n := range shape {
		cols[i] = fmt.Sprintf("%d", n)
	}
	name := fmt.Sprintf("rows=%d;cols=%s", len(shape), strings.Join(cols, ","))
	return uuid.NewSHA1(tableNamespace, []byte(name)).String()
}

// contentChildren returns the element children of n. Content controls are
// transparent: the children of their sdtContent take their place.
func contentChildren(n *xmlquery.Node) []*xmlquery.Node {
	var children []*xmlquery.Node
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		children = append(children, unwrapSdt(child)...)
	}
	return children
}

// unwrapSdt returns n itself, or the content of n when it is a content control
func unwrapSdt(n *xmlquery.Node) []*xmlquery.Node {
	if n.Type != xmlquery.ElementNode {
		return nil
	}
	if n.Data != "sdt" {
		return []*xmlquery.Node{n}
	}
	var content []*xmlquery.Node
	for part := n.FirstChild; part != nil; part = part.NextSibling {
		if part.Type == xmlquery.ElementNode && part.Data == "sdtContent" {
			content = append(content, contentChildren(part)...)
		}
	}
	return content
}

// isPropertyElement reports whether the element only carries formatting
func isPropertyElement(name string) bool {
	return strings.HasSuffix(name, "Pr") || name == "tblGrid"
}

// canonicalize writes the canonical form of an element. Text outside w:t,
// comments and namespace declarations do not contribute.
func canonicalize(b *strings.Builder, n *xmlquery.Node) {
	if n.Type != xmlquery.ElementNode {
		return
	}
	switch {
	case n.Data == "sdt":
		for _, child := range unwrapSdt(n) {
			canonicalize(b, child)
		}
	case n.Data == "p":
		canonicalizeParagraph(b, n)
	case n.Data == "r":
		props, text := runParts(n)
		writeRun(b, props, text)
	case isPropertyElement(n.Data):
		b.WriteString(propertyDescriptor(n))
	default:
		b.WriteString(n.Data)
		b.WriteByte('(')
		for _, child := range contentChildren(n) {
			canonicalize(b, child)
		}
		b.WriteByte(')')
	}
}

// canonicalizeParagraph merges adjacent runs with equal formatting so a
// paragraph split into several runs hashes like the single run it renders as
func canonicalizeParagraph(b *strings.Builder, p *xmlquery.Node) {
	b.WriteString("p(")
	var pendingProps, pendingText string
	pending := false
	flush := func() {
		if pending {
			writeRun(b, pendingProps, pendingText)
			pending = false
		}
	}
	for _, child := range contentChildren(p) {
		if child.Data != "r" {
			flush()
			canonicalize(b, child)
			continue
		}
		props, text := runParts(child)
		if pending && props == pendingProps {
			pendingText += text
			continue
		}
		flush()
		pendingProps, pendingText, pending = props, text, true
	}
	flush()
	b.WriteByte(')')
}

func writeRun(b *strings.Builder, props, text string) {
	b.WriteString("r(")
	b.WriteString(props)
	b.WriteByte('|')
	b.WriteString(text)
	b.WriteByte(')')
}

// runParts returns the formatting descriptor and the rendered text of a run
func runParts(r *xmlquery.Node) (string, string) {
	var props string
	var text strings.Builder
	for _, child := range contentChildren(r) {
		switch child.Data {
		case "rPr":
			props = propertyDescriptor(child)
		case "t", "delText", "instrText":
			text.WriteString(child.InnerText())
		case "tab":
			text.WriteByte('\t')
		case "br", "cr":
			text.WriteByte('\n')
		default:
			text.WriteByte('{')
			canonicalize(&text, child)
			text.WriteByte('}')
		}
	}
	return props, text.String()
}

// propertyDescriptor renders a property element with its attributes and
// children sorted, so attribute and child order do not matter
func propertyDescriptor(n *xmlquery.Node) string {
	var attrs []string
	for _, attr := range n.Attr {
		if attr.Name.Space == "xmlns" || attr.Name.Local == "xmlns" {
			continue
		}
		attrs = append(attrs, attr.Name.Local+"="+attr.Value)
	}
	sort.Strings(attrs)

	var children []string
	for _, child := range contentChildren(n) {
		children = append(children, propertyDescriptor(child))
	}
	sort.Strings(children)

	return n.Data + "[" + strings.Join(attrs, ",") + ";" + strings.Join(children, ",") + "]"
}
