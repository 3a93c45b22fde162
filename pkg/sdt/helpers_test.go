package sdt

import (
	"strings"
	"testing"

	"github.com/antchfx/xmlquery"
	"github.com/stretchr/testify/require"

	sdtxml "github.com/benjaminschreck/go-sdt/pkg/sdt/xml"
)

// wordDocument wraps body markup in a w:document declaring the w namespace
func wordDocument(body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>` +
		`<w:document xmlns:w="` + sdtxml.WordNamespace + `"><w:body>` + body + `</w:body></w:document>`
}

func parseDocument(t *testing.T, documentXML string) *xmlquery.Node {
	t.Helper()
	doc, err := xmlquery.Parse(strings.NewReader(documentXML))
	require.NoError(t, err)
	return doc
}

// findAll returns the elements with the given local name in document order
func findAll(n *xmlquery.Node, local string) []*xmlquery.Node {
	var found []*xmlquery.Node
	var visit func(*xmlquery.Node)
	visit = func(cur *xmlquery.Node) {
		for child := cur.FirstChild; child != nil; child = child.NextSibling {
			if child.Type != xmlquery.ElementNode {
				continue
			}
			if child.Data == local {
				found = append(found, child)
			}
			visit(child)
		}
	}
	visit(n)
	return found
}

func findFirst(t *testing.T, n *xmlquery.Node, local string) *xmlquery.Node {
	t.Helper()
	found := findAll(n, local)
	require.NotEmpty(t, found, "no <%s> element", local)
	return found[0]
}

// sdtProperty returns the w:val of a child of the sdtPr of sdt
func sdtProperty(sdt *xmlquery.Node, local string) (string, bool) {
	pr := findChild(sdt, "sdtPr")
	if pr == nil {
		return "", false
	}
	child := findChild(pr, local)
	if child == nil {
		return "", false
	}
	return attrValue(child, "val"), true
}

// renderDocument renders doc and parses the result
func renderDocument(t *testing.T, doc *Document) (string, *xmlquery.Node) {
	t.Helper()
	out, err := doc.Render()
	require.NoError(t, err)
	return string(out), parseDocument(t, string(out))
}
