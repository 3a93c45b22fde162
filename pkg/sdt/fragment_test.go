package sdt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdtxml "github.com/benjaminschreck/go-sdt/pkg/sdt/xml"
)

const (
	oneByTwoTable = `<w:tbl><w:tr><w:tc><w:p><w:r><w:t>A</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>B</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`
	twoByOneTable = `<w:tbl><w:tr><w:tc><w:p><w:r><w:t>C</w:t></w:r></w:p></w:tc></w:tr><w:tr><w:tc><w:p><w:r><w:t>D</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`
)

func TestExtractTableFragment(t *testing.T) {
	documentXML := wordDocument(`<w:p/>` + oneByTwoTable + twoByOneTable)
	dest := sdtxml.DefaultNamespaces()

	shape := shapeHash([]int{1, 1})
	fragment, err := ExtractTableFragment(documentXML, shape, dest)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(fragment, "<w:tbl>"))
	assert.Contains(t, fragment, "<w:t>C</w:t>")
	assert.NotContains(t, fragment, "<w:t>A</w:t>")
	assert.NotContains(t, fragment, "xmlns", "destination already declares w")

	_, err = ExtractTableFragment(documentXML, shapeHash([]int{3}), dest)
	assert.True(t, IsNotFoundError(err))
}

func TestExtractTableFragmentSkipsNestedTables(t *testing.T) {
	nested := `<w:tbl><w:tr><w:tc>` + twoByOneTable + `<w:p/></w:tc></w:tr></w:tbl>`
	documentXML := wordDocument(nested)

	// The nested 2x1 table is not a candidate
	_, err := ExtractTableFragment(documentXML, shapeHash([]int{1, 1}), sdtxml.DefaultNamespaces())
	assert.True(t, IsNotFoundError(err))

	fragment, err := ExtractTableFragment(documentXML, shapeHash([]int{1}), sdtxml.DefaultNamespaces())
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(fragment, "<w:tbl>"))
}

func TestExtractTableFragmentIncludesEnclosingControl(t *testing.T) {
	documentXML := wordDocument(`<w:sdt><w:sdtPr><w:tag w:val="table"/></w:sdtPr><w:sdtContent>` + oneByTwoTable + `</w:sdtContent></w:sdt>`)

	fragment, err := ExtractTableFragment(documentXML, shapeHash([]int{2}), sdtxml.DefaultNamespaces())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(fragment, "<w:sdt>"))
	assert.Contains(t, fragment, `<w:tag w:val="table"/>`)
}

func TestExtractTableFragmentNamespaces(t *testing.T) {
	documentXML := wordDocument(oneByTwoTable)
	shape := shapeHash([]int{2})

	t.Run("missing declaration is added", func(t *testing.T) {
		fragment, err := ExtractTableFragment(documentXML, shape, map[string]string{"r": sdtxml.RelationshipsNamespace})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(fragment, `<w:tbl xmlns:w="`+sdtxml.WordNamespace+`">`))
		assert.Equal(t, 1, strings.Count(fragment, "xmlns:w"))
	})

	t.Run("conflicting binding is redeclared", func(t *testing.T) {
		fragment, err := ExtractTableFragment(documentXML, shape, map[string]string{"w": "urn:other"})
		require.NoError(t, err)
		assert.Contains(t, fragment, `xmlns:w="`+sdtxml.WordNamespace+`"`)
	})

	t.Run("duplicate root declaration is dropped", func(t *testing.T) {
		declared := strings.Replace(oneByTwoTable, "<w:tbl>", `<w:tbl xmlns:w="`+sdtxml.WordNamespace+`">`, 1)
		fragment, err := ExtractTableFragment(wordDocument(declared), shape, sdtxml.DefaultNamespaces())
		require.NoError(t, err)
		assert.NotContains(t, fragment, "xmlns")
	})
}

func TestSpliceFragment(t *testing.T) {
	tree := parseDocument(t, wordDocument(`<w:p><w:r><w:t>before</w:t></w:r></w:p><!--anchor--><w:p><w:r><w:t>after</w:t></w:r></w:p>`))
	body := findFirst(t, tree, "body")
	var anchor = body.FirstChild.NextSibling
	require.Equal(t, "anchor", anchor.Data)

	markup := `<w:tbl xmlns:w="` + sdtxml.WordNamespace + `"><w:tr><w:tc><w:p/></w:tc></w:tr></w:tbl><w:p><w:r><w:t>tail</w:t></w:r></w:p>`
	require.NoError(t, SpliceFragment(anchor, markup))

	var order []string
	for _, child := range elementChildren(body) {
		order = append(order, child.Data)
	}
	assert.Equal(t, []string{"p", "tbl", "p", "p"}, order)
	assert.Nil(t, anchor.Parent)

	tbl := findFirst(t, body, "tbl")
	assert.Empty(t, declaredNamespaces(tbl), "declaration in scope at the anchor is removed")

	out := string(outputDocument(tree))
	assert.NotContains(t, out, "<!--anchor-->")
	assert.Contains(t, out, "<w:t>tail</w:t>")

	// The result is still well formed
	reparsed := parseDocument(t, out)
	assert.Len(t, findAll(reparsed, "p"), 4)
}

func TestSpliceFragmentDetached(t *testing.T) {
	tree := parseDocument(t, wordDocument(`<w:p/>`))
	p := findFirst(t, tree, "p")
	p.Parent = nil
	assert.True(t, IsStructuralError(SpliceFragment(p, `<w:p/>`)))
}

func TestSpliceFragmentInvalidMarkup(t *testing.T) {
	tree := parseDocument(t, wordDocument(`<w:p/><!--x-->`))
	anchor := findFirst(t, tree, "body").LastChild
	err := SpliceFragment(anchor, `<w:p>`)
	assert.True(t, IsDocumentError(err))
}
