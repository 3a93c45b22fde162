package sdt

import (
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"

	sdtxml "github.com/benjaminschreck/go-sdt/pkg/sdt/xml"
)

// wrappableKinds are the element kinds a content control can be placed around
var wrappableKinds = map[sdtxml.Kind]bool{
	sdtxml.KindParagraph: true,
	sdtxml.KindRun:       true,
	sdtxml.KindTable:     true,
	sdtxml.KindRow:       true,
	sdtxml.KindCell:      true,
}

// Location is a registered element resolved to its node in serialized markup
type Location struct {
	Entry Entry
	Node  *xmlquery.Node
	// Hash is the content fingerprint shared by the element and the node
	Hash string
	// Occurrence counts earlier elements with the same kind, path and hash
	Occurrence int
	// ContainerPath lists the enclosing kinds, outermost first, such as "tbl/tr/tc"
	ContainerPath string
}

// Locator resolves registered elements to nodes of the markup their document
// was serialized to. An element is matched by its kind, its container path,
// its content fingerprint and its occurrence index among elements sharing
// those three, so equal paragraphs in one document are told apart by order.
type Locator struct {
	strict bool
	logger *Logger
}

// NewLocator creates a locator. A strict locator fails on the first entry it
// cannot resolve; otherwise such entries are logged and skipped.
func NewLocator(strict bool) *Locator {
	return &Locator{strict: strict, logger: GetLogger()}
}

type matchKey struct {
	kind sdtxml.Kind
	path string
	hash string
}

type modelMatch struct {
	key        matchKey
	occurrence int
}

// Resolve returns the location of every entry, in entry order. All nodes are
// resolved before the caller mutates the tree.
func (l *Locator) Resolve(doc *sdtxml.Document, tree *xmlquery.Node, entries []Entry) ([]Location, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	kinds := make(map[sdtxml.Kind]bool)
	for _, entry := range entries {
		kind := entry.Element.Kind()
		if !wrappableKinds[kind] {
			return nil, NewStructuralError(string(kind), "element kind cannot be wrapped in a content control")
		}
		kinds[kind] = true
	}

	matches, err := indexModel(doc, kinds)
	if err != nil {
		return nil, err
	}
	nodes, err := indexTree(tree, kinds)
	if err != nil {
		return nil, err
	}

	locations := make([]Location, 0, len(entries))
	for _, entry := range entries {
		marker := GenerateMarker(entry.Element)
		match, ok := matches[entry.Element.ElementID()]
		if !ok {
			if err := l.miss(marker, "element is not part of the document"); err != nil {
				return nil, err
			}
			continue
		}
		candidates := nodes[match.key]
		if match.occurrence >= len(candidates) {
			reason := fmt.Sprintf("occurrence %d of %s %s at %q", match.occurrence, match.key.kind, match.key.hash, match.key.path)
			if err := l.miss(marker, reason); err != nil {
				return nil, err
			}
			continue
		}
		locations = append(locations, Location{
			Entry:         entry,
			Node:          candidates[match.occurrence],
			Hash:          match.key.hash,
			Occurrence:    match.occurrence,
			ContainerPath: match.key.path,
		})
	}
	return locations, nil
}

func (l *Locator) miss(marker, reason string) error {
	if l.strict {
		return NewNotFoundError("element "+marker, reason)
	}
	l.logger.WithField("marker", marker).Warn("skipping unresolved element: %s", reason)
	return nil
}

// indexModel computes the match key and occurrence of every element of the
// given kinds, keyed by element id
func indexModel(doc *sdtxml.Document, kinds map[sdtxml.Kind]bool) (map[uint64]modelMatch, error) {
	matches := make(map[uint64]modelMatch)
	counts := make(map[matchKey]int)
	var walkErr error

	doc.Walk(func(el sdtxml.Element, path []sdtxml.Kind) {
		if walkErr != nil || !kinds[el.Kind()] {
			return
		}
		hash, err := GenerateContentHash(el)
		if err != nil {
			walkErr = err
			return
		}
		key := matchKey{kind: el.Kind(), path: joinKinds(path), hash: hash}
		matches[el.ElementID()] = modelMatch{key: key, occurrence: counts[key]}
		counts[key]++
	})
	return matches, walkErr
}

// indexTree lists the nodes of the given kinds under w:body by match key, in
// document order
func indexTree(tree *xmlquery.Node, kinds map[sdtxml.Kind]bool) (map[matchKey][]*xmlquery.Node, error) {
	body := findBody(tree)
	if body == nil {
		return nil, NewNotFoundError("document body", "")
	}

	index := make(map[matchKey][]*xmlquery.Node)
	var visit func(n *xmlquery.Node, path []sdtxml.Kind)
	visit = func(n *xmlquery.Node, path []sdtxml.Kind) {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type != xmlquery.ElementNode || isPropertyElement(child.Data) {
				continue
			}
			kind := sdtxml.Kind(child.Data)
			if kinds[kind] {
				key := matchKey{kind: kind, path: joinKinds(path), hash: NodeContentHash(child)}
				index[key] = append(index[key], child)
			}
			childPath := path
			if wrappableKinds[kind] {
				childPath = append(append([]sdtxml.Kind(nil), path...), kind)
			}
			visit(child, childPath)
		}
	}
	visit(body, nil)
	return index, nil
}

// findBody returns the w:body element of a parsed document
func findBody(tree *xmlquery.Node) *xmlquery.Node {
	root := tree
	if root.Type == xmlquery.DocumentNode {
		root = firstElementChild(root)
	}
	if root == nil {
		return nil
	}
	if root.Data == "body" {
		return root
	}
	return findChild(root, "body")
}

func joinKinds(kinds []sdtxml.Kind) string {
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, "/")
}
