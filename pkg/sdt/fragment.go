package sdt

import (
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

var tableSelector = xpath.MustCompile("//*[local-name()='tbl']")

// ExtractTableFragment returns the markup of the first top-level table of a
// serialized document whose shape fingerprint equals shapeHash. When the
// table sits alone in a content control, the control is extracted with it.
//
// Namespace declarations needed by the fragment are added to its root,
// except those the destination already declares with the same URI. Existing
// root declarations duplicating the destination are dropped.
func ExtractTableFragment(documentXML, shapeHash string, destNamespaces map[string]string) (string, error) {
	doc, err := xmlquery.Parse(strings.NewReader(documentXML))
	if err != nil {
		return "", NewDocumentError("parse", "word/document.xml", err)
	}

	var match *xmlquery.Node
	for _, tbl := range xmlquery.QuerySelectorAll(doc, tableSelector) {
		if hasAncestor(tbl, "tbl") {
			continue
		}
		hash, err := NodeTableHash(tbl)
		if err != nil {
			continue
		}
		if hash == shapeHash {
			match = tbl
			break
		}
	}
	if match == nil {
		return "", NewNotFoundError("table fragment", shapeHash)
	}

	root := enclosingSdt(match)
	reconcileNamespaces(root, destNamespaces)
	return outputNode(root), nil
}

// enclosingSdt climbs from node to the outermost content control wrapping
// it alone
func enclosingSdt(node *xmlquery.Node) *xmlquery.Node {
	for {
		content := node.Parent
		if content == nil || content.Data != "sdtContent" || len(elementChildren(content)) != 1 {
			return node
		}
		sdt := content.Parent
		if sdt == nil || sdt.Data != "sdt" {
			return node
		}
		node = sdt
	}
}

// reconcileNamespaces makes root self-contained for a destination declaring dest
func reconcileNamespaces(root *xmlquery.Node, dest map[string]string) {
	scope := namespacesInScope(root)
	own := declaredNamespaces(root)

	for prefix := range usedPrefixes(root) {
		if _, declared := own[prefix]; declared {
			continue
		}
		uri, ok := scope[prefix]
		if !ok {
			continue
		}
		if dest[prefix] == uri {
			continue
		}
		addNamespaceDecl(root, prefix, uri)
	}

	for prefix, uri := range own {
		if destURI, ok := dest[prefix]; ok && destURI == uri {
			removeNamespaceDecl(root, prefix)
		}
	}
}

// SpliceFragment replaces anchor with the top-level nodes of markup. Any
// namespace declaration on those nodes that duplicates one in scope at the
// anchor is removed.
func SpliceFragment(anchor *xmlquery.Node, markup string) error {
	_, err := spliceFragment(anchor, markup)
	return err
}

// spliceFragment is SpliceFragment returning the inserted nodes
func spliceFragment(anchor *xmlquery.Node, markup string) ([]*xmlquery.Node, error) {
	if anchor.Parent == nil {
		return nil, NewStructuralError(anchor.Data, "cannot splice at a detached node")
	}

	scope := namespacesInScope(anchor.Parent)
	wrapper, err := parseWrapped(markup, scope)
	if err != nil {
		return nil, NewDocumentError("parse fragment", "", err)
	}

	var nodes []*xmlquery.Node
	for child := wrapper.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode || child.Type == xmlquery.CommentNode {
			nodes = append(nodes, child)
		}
	}

	for _, n := range nodes {
		if n.Type == xmlquery.ElementNode {
			for prefix, uri := range declaredNamespaces(n) {
				if inScope, ok := scope[prefix]; ok && inScope == uri {
					removeNamespaceDecl(n, prefix)
				}
			}
		}
		xmlquery.RemoveFromTree(n)
		insertBefore(anchor, n)
	}
	xmlquery.RemoveFromTree(anchor)
	return nodes, nil
}

// controlIDNodes returns the w:id elements of every content control at or
// below n
func controlIDNodes(n *xmlquery.Node) []*xmlquery.Node {
	var ids []*xmlquery.Node
	var visit func(*xmlquery.Node)
	visit = func(n *xmlquery.Node) {
		if n.Type == xmlquery.ElementNode && n.Data == "id" && n.Parent != nil && n.Parent.Data == "sdtPr" {
			ids = append(ids, n)
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			visit(child)
		}
	}
	visit(n)
	return ids
}

// remintControlIDs gives every content control id at or below n that is
// already in seen the next free id, and adds the resulting ids to seen.
// reserved reports ids that must not be handed out either.
func remintControlIDs(n *xmlquery.Node, seen map[string]bool, reserved func(string) bool) int {
	reminted := 0
	for _, idNode := range controlIDNodes(n) {
		id := attrValue(idNode, "val")
		if id == "" {
			continue
		}
		if seen[id] {
			fresh := nextFreeID(id, func(candidate string) bool {
				return seen[candidate] || reserved(candidate)
			})
			setAttrValue(idNode, "val", fresh)
			id = fresh
			reminted++
		}
		seen[id] = true
	}
	return reminted
}

// nextFreeID walks the 8 digit id range upward from id, wrapping around,
// and returns the first id taken rejects
func nextFreeID(id string, taken func(string) bool) string {
	n, err := strconv.Atoi(id)
	if err != nil || n < MinID || n > MaxID {
		n = MinID - 1
	}
	for {
		n++
		if n > MaxID {
			n = MinID
		}
		candidate := strconv.Itoa(n)
		if !taken(candidate) {
			return candidate
		}
	}
}
