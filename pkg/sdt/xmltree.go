package sdt

import (
	"encoding/xml"
	"sort"
	"strings"

	"github.com/antchfx/xmlquery"

	sdtxml "github.com/benjaminschreck/go-sdt/pkg/sdt/xml"
)

const wrapperElement = "fragment-root"

// parseWrapped parses markup that may hold several top-level elements by
// placing it in a wrapper element declaring namespaces. The wrapper node is
// returned.
func parseWrapped(markup string, namespaces map[string]string) (*xmlquery.Node, error) {
	var b strings.Builder
	b.WriteString("<" + wrapperElement)
	for _, prefix := range sortedKeys(namespaces) {
		b.WriteString(" ")
		if prefix == "" {
			b.WriteString("xmlns")
		} else {
			b.WriteString("xmlns:" + prefix)
		}
		b.WriteString(`="`)
		xml.EscapeText(&b, []byte(namespaces[prefix]))
		b.WriteString(`"`)
	}
	b.WriteString(">")
	b.WriteString(markup)
	b.WriteString("</" + wrapperElement + ">")

	doc, err := xmlquery.Parse(strings.NewReader(b.String()))
	if err != nil {
		return nil, err
	}
	root := firstElementChild(doc)
	if root == nil {
		return nil, NewEmptyInputError("markup")
	}
	return root, nil
}

// firstElementChild returns the first element child of n. Parsed documents
// start with a declaration node, so the root element is not FirstChild.
func firstElementChild(n *xmlquery.Node) *xmlquery.Node {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return child
		}
	}
	return nil
}

// elementChildren returns the element children of n without looking through
// content controls
func elementChildren(n *xmlquery.Node) []*xmlquery.Node {
	var children []*xmlquery.Node
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			children = append(children, child)
		}
	}
	return children
}

// findChild returns the first element child with the given local name
func findChild(n *xmlquery.Node, local string) *xmlquery.Node {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode && child.Data == local {
			return child
		}
	}
	return nil
}

// isNamespaceDecl reports whether attr declares a namespace and returns the
// declared prefix, empty for the default namespace
func isNamespaceDecl(attr xmlquery.Attr) (string, bool) {
	if attr.Name.Space == "xmlns" {
		return attr.Name.Local, true
	}
	if attr.Name.Space == "" && attr.Name.Local == "xmlns" {
		return "", true
	}
	return "", false
}

// declaredNamespaces returns the namespace declarations made on n itself
func declaredNamespaces(n *xmlquery.Node) map[string]string {
	namespaces := make(map[string]string)
	for _, attr := range n.Attr {
		if prefix, ok := isNamespaceDecl(attr); ok {
			namespaces[prefix] = attr.Value
		}
	}
	return namespaces
}

// namespacesInScope returns the namespace declarations visible at n
func namespacesInScope(n *xmlquery.Node) map[string]string {
	namespaces := make(map[string]string)
	for cur := n; cur != nil; cur = cur.Parent {
		for prefix, uri := range declaredNamespaces(cur) {
			if _, shadowed := namespaces[prefix]; !shadowed {
				namespaces[prefix] = uri
			}
		}
	}
	return namespaces
}

// usedPrefixes returns the prefixes used by elements and attributes of the subtree
func usedPrefixes(n *xmlquery.Node) map[string]bool {
	used := make(map[string]bool)
	var visit func(*xmlquery.Node)
	visit = func(cur *xmlquery.Node) {
		if cur.Type != xmlquery.ElementNode {
			return
		}
		if cur.Prefix != "" {
			used[cur.Prefix] = true
		}
		for _, attr := range cur.Attr {
			if _, ok := isNamespaceDecl(attr); ok {
				continue
			}
			if attr.Name.Space != "" && attr.Name.Space != "xml" {
				used[attr.Name.Space] = true
			}
		}
		for child := cur.FirstChild; child != nil; child = child.NextSibling {
			visit(child)
		}
	}
	visit(n)
	return used
}

// removeNamespaceDecl drops the declaration of prefix from n
func removeNamespaceDecl(n *xmlquery.Node, prefix string) {
	attrs := n.Attr[:0]
	for _, attr := range n.Attr {
		if p, ok := isNamespaceDecl(attr); ok && p == prefix {
			continue
		}
		attrs = append(attrs, attr)
	}
	n.Attr = attrs
}

// addNamespaceDecl declares prefix on n
func addNamespaceDecl(n *xmlquery.Node, prefix, uri string) {
	name := xml.Name{Space: "xmlns", Local: prefix}
	if prefix == "" {
		name = xml.Name{Local: "xmlns"}
	}
	n.Attr = append(n.Attr, xmlquery.Attr{Name: name, Value: uri, NamespaceURI: "xmlns"})
}

// wordPrefix returns the prefix bound to the WordprocessingML namespace at n
func wordPrefix(tree, n *xmlquery.Node) string {
	if n != nil && n.NamespaceURI == sdtxml.WordNamespace {
		return n.Prefix
	}
	for _, scope := range []*xmlquery.Node{n, tree} {
		if scope == nil {
			continue
		}
		for prefix, uri := range namespacesInScope(scope) {
			if uri == sdtxml.WordNamespace {
				return prefix
			}
		}
	}
	return "w"
}

// newWordElement creates a detached element in the WordprocessingML namespace
func newWordElement(prefix, local string) *xmlquery.Node {
	return &xmlquery.Node{
		Type:         xmlquery.ElementNode,
		Data:         local,
		Prefix:       prefix,
		NamespaceURI: sdtxml.WordNamespace,
	}
}

// newValElement creates an element carrying a single w:val attribute
func newValElement(prefix, local, val string) *xmlquery.Node {
	n := newWordElement(prefix, local)
	n.Attr = []xmlquery.Attr{{
		Name:         xml.Name{Space: prefix, Local: "val"},
		Value:        val,
		NamespaceURI: sdtxml.WordNamespace,
	}}
	return n
}

// replaceNode puts repl at the position of old and detaches old
func replaceNode(old, repl *xmlquery.Node) {
	parent := old.Parent
	repl.Parent = parent
	repl.PrevSibling = old.PrevSibling
	repl.NextSibling = old.NextSibling
	if old.PrevSibling != nil {
		old.PrevSibling.NextSibling = repl
	} else if parent != nil {
		parent.FirstChild = repl
	}
	if old.NextSibling != nil {
		old.NextSibling.PrevSibling = repl
	} else if parent != nil {
		parent.LastChild = repl
	}
	old.Parent = nil
	old.PrevSibling = nil
	old.NextSibling = nil
}

// insertBefore links n as the previous sibling of anchor
func insertBefore(anchor, n *xmlquery.Node) {
	parent := anchor.Parent
	n.Parent = parent
	n.NextSibling = anchor
	n.PrevSibling = anchor.PrevSibling
	if anchor.PrevSibling != nil {
		anchor.PrevSibling.NextSibling = n
	} else if parent != nil {
		parent.FirstChild = n
	}
	anchor.PrevSibling = n
}

// hasAncestor reports whether an ancestor of n has the given local name
func hasAncestor(n *xmlquery.Node, local string) bool {
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		if cur.Type == xmlquery.ElementNode && cur.Data == local {
			return true
		}
	}
	return false
}

// outputNode serializes n including its own tag
func outputNode(n *xmlquery.Node) string {
	return n.OutputXMLWithOptions(xmlquery.WithOutputSelf(), xmlquery.WithEmptyTagSupport())
}

// outputDocument serializes a parsed document
func outputDocument(doc *xmlquery.Node) []byte {
	return []byte(doc.OutputXMLWithOptions(xmlquery.WithEmptyTagSupport()))
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// setAttrValue sets the value of the attribute with the given local name.
// It does nothing when n has no such attribute.
func setAttrValue(n *xmlquery.Node, local, value string) {
	for i := range n.Attr {
		if n.Attr[i].Name.Local == local {
			n.Attr[i].Value = value
			return
		}
	}
}
