package sdt

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdtxml "github.com/benjaminschreck/go-sdt/pkg/sdt/xml"
)

func TestDocumentRenderWithoutControls(t *testing.T) {
	doc := NewDocument()
	doc.AddParagraph("Hello")

	out, tree := renderDocument(t, doc)
	assert.NotContains(t, out, "sdt")
	assert.Equal(t, "Hello", findFirst(t, tree, "p").InnerText())
	assert.NotNil(t, findFirst(t, tree, "sectPr"))
}

func TestDocumentRenderWrapsRegisteredElements(t *testing.T) {
	doc := NewDocument()
	doc.AddParagraph("Total")
	second := doc.AddParagraph("Total")
	run := sdtxml.NewRun("Ada")
	doc.AddElement(sdtxml.NewParagraph(sdtxml.NewRun("Name: "), run))
	table := doc.AddTable(sdtxml.NewTable(sdtxml.NewTableRow(sdtxml.NewTextCell("A1"), sdtxml.NewTextCell("B1"))))

	require.NoError(t, doc.Register(second, NewConfig("total", "Total").WithID("20000001")))
	require.NoError(t, doc.Register(run, NewConfig("name", "Name").WithRunLevel(true).WithType(ContentPlainText)))
	require.NoError(t, doc.Register(table, NewConfig("table", "Table").WithLock(LockSdt)))
	require.NoError(t, doc.Register(table.Cell(0, 1), NewConfig("b1", "")))

	out, tree := renderDocument(t, doc)

	infos, err := ExtractSDTs(out)
	require.NoError(t, err)
	require.Len(t, infos, 4)
	tags := make(map[string]SDTInfo)
	for _, info := range infos {
		tags[info.Tag] = info
	}

	assert.Equal(t, "p", tags["total"].Content)
	assert.Equal(t, "20000001", tags["total"].ID)
	assert.Equal(t, LevelRun, tags["name"].Level)
	assert.Equal(t, ContentPlainText, tags["name"].Type)
	assert.Equal(t, "tbl", tags["table"].Content)
	assert.Equal(t, LockSdt, tags["table"].Lock)
	assert.Equal(t, "tc", tags["b1"].Content)
	assert.Equal(t, 1, tags["b1"].Depth)

	// The second "Total" paragraph is the wrapped one
	paragraphs := findAll(tree, "p")
	assert.Equal(t, "body", paragraphs[0].Parent.Data)
	assert.Equal(t, "sdtContent", paragraphs[1].Parent.Data)

	// The model is left untouched
	assert.Len(t, doc.Model().Body.Elements, 4)
	assert.Equal(t, 4, doc.Registry().Count())
}

func TestDocumentRenderIsRepeatable(t *testing.T) {
	doc := NewDocument()
	p := doc.AddParagraph("x")
	require.NoError(t, doc.Register(p, NewConfig("x", "").WithID("30000000")))

	first, err := doc.Render()
	require.NoError(t, err)
	second, err := doc.Render()
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
	assert.Equal(t, 1, strings.Count(string(first), "<w:sdt>"))
}

func TestDocumentRegisterRejectsFragments(t *testing.T) {
	doc := NewDocument()
	fragment := doc.AddFragment(`<w:p/>`)
	err := doc.Register(fragment, NewConfig("x", ""))
	assert.True(t, IsStructuralError(err))
	assert.Equal(t, 0, doc.Registry().Count())
}

func TestDocumentStrictLocate(t *testing.T) {
	stray := sdtxml.NewTextParagraph("not added")

	doc := NewDocument()
	doc.SetStrict(true)
	doc.AddParagraph("x")
	require.NoError(t, doc.Register(stray, NewConfig("stray", "")))
	_, err := doc.Render()
	assert.True(t, IsNotFoundError(err))

	doc.SetStrict(false)
	out, err := doc.Render()
	require.NoError(t, err)
	assert.NotContains(t, string(out), "<w:sdt>")
}

func TestDocumentRenderCollectsWrapErrors(t *testing.T) {
	doc := NewDocument()
	empty := sdtxml.NewParagraph()
	doc.AddElement(empty)
	require.NoError(t, doc.Register(empty, NewConfig("inline", "").WithInlineLevel(true)))

	_, err := doc.Render()
	require.Error(t, err)
	assert.True(t, IsStructuralError(err))
}

func TestDocumentRenderReportsConflictingControls(t *testing.T) {
	doc := NewDocument()
	name := sdtxml.NewRun("Jane")
	para := sdtxml.NewParagraph(name, sdtxml.NewRun(" Doe"))
	doc.AddElement(para)
	require.NoError(t, doc.Register(name, NewConfig("name", "").WithRunLevel(true)))
	require.NoError(t, doc.Register(para, NewConfig("para-inline", "").WithInlineLevel(true)))

	_, err := doc.Render()
	require.Error(t, err)
	assert.True(t, IsStructuralError(err))
	assert.Contains(t, err.Error(), "already wrapped by another control")
	assert.Contains(t, err.Error(), "tag=para-inline")
}

func TestDocumentFragments(t *testing.T) {
	doc := NewDocument()
	doc.AddParagraph("before")
	markup := `<w:sdt xmlns:w="` + sdtxml.WordNamespace + `"><w:sdtPr><w:tag w:val="spliced"/></w:sdtPr><w:sdtContent>` +
		`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>cell</w:t></w:r></w:p></w:tc></w:tr></w:tbl></w:sdtContent></w:sdt>`
	doc.AddFragment(markup)
	after := doc.AddParagraph("after")
	require.NoError(t, doc.Register(after, NewConfig("after", "")))

	out, tree := renderDocument(t, doc)
	assert.NotContains(t, out, sdtxml.FragmentMarkerPrefix)
	assert.Equal(t, 1, strings.Count(out, "xmlns:w="), "only the document root declares w")

	var order []string
	for _, child := range elementChildren(findFirst(t, tree, "body")) {
		order = append(order, child.Data)
	}
	assert.Equal(t, []string{"p", "sdt", "sdt", "sectPr"}, order)

	infos, err := ExtractSDTs(out)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "spliced", infos[0].Tag)
	assert.Equal(t, "after", infos[1].Tag)
}

func TestDocumentFragmentControlIDs(t *testing.T) {
	markup := `<w:sdt><w:sdtPr><w:tag w:val="copy"/><w:id w:val="10000001"/></w:sdtPr><w:sdtContent>` +
		`<w:p><w:r><w:t>copy</w:t></w:r></w:p></w:sdtContent></w:sdt>`

	doc := NewDocument()
	own := doc.AddParagraph("own")
	require.NoError(t, doc.Register(own, NewConfig("own", "").WithID("10000001")))
	doc.AddFragment(markup)
	doc.AddFragment(markup)

	out, _ := renderDocument(t, doc)
	infos, err := ExtractSDTs(out)
	require.NoError(t, err)
	require.Len(t, infos, 3)

	assert.Equal(t, "own", infos[0].Tag)
	assert.Equal(t, "10000001", infos[0].ID, "the document keeps its own ids")
	assert.Equal(t, "10000002", infos[1].ID)
	assert.Equal(t, "10000003", infos[2].ID)

	again, err := doc.Render()
	require.NoError(t, err)
	assert.Equal(t, out, string(again))
}

func TestNextFreeID(t *testing.T) {
	none := func(string) bool { return false }
	assert.Equal(t, "12345679", nextFreeID("12345678", none))
	assert.Equal(t, "10000000", nextFreeID("99999999", none))
	assert.Equal(t, "10000000", nextFreeID("-5", none))
	assert.Equal(t, "10000000", nextFreeID("not a number", none))

	taken := map[string]bool{"12345679": true, "12345680": true}
	assert.Equal(t, "12345681", nextFreeID("12345678", func(id string) bool { return taken[id] }))
}

func TestDocumentSave(t *testing.T) {
	doc := NewDocument()
	p := doc.AddParagraph("saved")
	require.NoError(t, doc.Register(p, NewConfig("saved", "Saved")))

	var buf bytes.Buffer
	require.NoError(t, doc.Save(&buf))
	reader, err := NewDocxReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	infos, err := reader.SDTs()
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "Saved", infos[0].Alias)

	path := filepath.Join(t.TempDir(), "out.docx")
	require.NoError(t, doc.SaveFile(path))
	fromFile, err := DocxReaderFromFile(path)
	require.NoError(t, err)
	infos, err = fromFile.SDTs()
	require.NoError(t, err)
	assert.Len(t, infos, 1)

	err = doc.SaveFile(filepath.Join(t.TempDir(), "missing", "out.docx"))
	assert.True(t, IsDocumentError(err))
}

func TestDocumentNamespaces(t *testing.T) {
	doc := NewDocument()
	assert.Equal(t, sdtxml.DefaultNamespaces(), doc.Namespaces())
}
