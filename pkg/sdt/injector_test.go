package sdt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const paragraphBody = `<w:p><w:pPr><w:jc w:val="center"/></w:pPr><w:r><w:t>Hello</w:t></w:r><w:r><w:t> world</w:t></w:r></w:p>`

func TestProcessElementBlock(t *testing.T) {
	tree := parseDocument(t, wordDocument(paragraphBody))
	p := findFirst(t, tree, "p")

	cfg := NewConfig("greeting", "Greeting").WithID("12345678").WithLock(LockSdt)
	require.NoError(t, NewInjector().ProcessElement(tree, p, cfg, 0, ""))

	sdt := p.Parent.Parent
	require.Equal(t, "sdtContent", p.Parent.Data)
	require.Equal(t, "sdt", sdt.Data)
	assert.Equal(t, "body", sdt.Parent.Data)

	tag, _ := sdtProperty(sdt, "tag")
	alias, _ := sdtProperty(sdt, "alias")
	id, _ := sdtProperty(sdt, "id")
	lock, _ := sdtProperty(sdt, "lock")
	assert.Equal(t, "greeting", tag)
	assert.Equal(t, "Greeting", alias)
	assert.Equal(t, "12345678", id)
	assert.Equal(t, "sdtLocked", lock)
	assert.NotNil(t, findChild(findChild(sdt, "sdtPr"), "richText"))

	// Property order follows CT_SdtPr
	var order []string
	for _, child := range elementChildren(findChild(sdt, "sdtPr")) {
		order = append(order, child.Data)
	}
	assert.Equal(t, []string{"alias", "tag", "id", "lock", "richText"}, order)
}

func TestProcessElementOmitsEmptyProperties(t *testing.T) {
	tree := parseDocument(t, wordDocument(paragraphBody))
	p := findFirst(t, tree, "p")

	require.NoError(t, NewInjector().ProcessElement(tree, p, Config{Type: ContentPlainText}, 0, ""))

	pr := findChild(findFirst(t, tree, "sdt"), "sdtPr")
	require.NotNil(t, pr)
	children := elementChildren(pr)
	require.Len(t, children, 1)
	assert.Equal(t, "text", children[0].Data)
}

func TestProcessElementRunLevelTakesPrecedence(t *testing.T) {
	tree := parseDocument(t, wordDocument(paragraphBody))
	run := findFirst(t, tree, "r")

	inj := NewInjector()
	cfg := NewConfig("name", "Name").WithRunLevel(true).WithInlineLevel(true)
	require.NoError(t, inj.ProcessElement(tree, run, cfg, 0, "p"))

	level, ok := inj.ProcessedLevel(run)
	require.True(t, ok)
	assert.Equal(t, LevelRun, level)

	require.Equal(t, "sdtContent", run.Parent.Data)
	assert.Equal(t, "p", run.Parent.Parent.Parent.Data)
	assert.Len(t, findAll(tree, "sdt"), 1)
}

func TestProcessElementInline(t *testing.T) {
	t.Run("wraps first run and keeps paragraph", func(t *testing.T) {
		tree := parseDocument(t, wordDocument(paragraphBody))
		p := findFirst(t, tree, "p")
		firstRun := findFirst(t, p, "r")

		inj := NewInjector()
		require.NoError(t, inj.ProcessElement(tree, p, NewConfig("inline", "").WithInlineLevel(true), 0, ""))

		assert.Equal(t, "body", p.Parent.Data)
		assert.Equal(t, "sdtContent", firstRun.Parent.Data)
		assert.Len(t, findAll(tree, "sdt"), 1)
		// The second run stays outside the control
		runs := findAll(p, "r")
		require.Len(t, runs, 2)
		assert.Equal(t, "p", runs[1].Parent.Data)

		level, _ := inj.ProcessedLevel(p)
		assert.Equal(t, LevelInline, level)
	})

	t.Run("inline on a cell wraps the run in its paragraph", func(t *testing.T) {
		tree := parseDocument(t, wordDocument(`<w:tbl><w:tr><w:tc><w:tcPr/><w:p><w:r><w:t>A1</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`))
		tc := findFirst(t, tree, "tc")

		require.NoError(t, NewInjector().ProcessElement(tree, tc, NewConfig("cell", "").WithInlineLevel(true), 0, "tbl/tr"))

		sdt := findFirst(t, tree, "sdt")
		assert.Equal(t, "p", sdt.Parent.Data)
		assert.Equal(t, "tr", tc.Parent.Data)
	})

	t.Run("no run is a structural error", func(t *testing.T) {
		tree := parseDocument(t, wordDocument(`<w:p><w:pPr/></w:p>`))
		p := findFirst(t, tree, "p")

		err := NewInjector().ProcessElement(tree, p, NewConfig("x", "").WithInlineLevel(true), 0, "")
		require.Error(t, err)
		assert.True(t, IsStructuralError(err))
		assert.Empty(t, findAll(tree, "sdt"))
	})
}

func TestWrapRunInlineStructuralErrors(t *testing.T) {
	tree := parseDocument(t, wordDocument(`<w:r><w:t>loose</w:t></w:r>`+paragraphBody))
	inj := NewInjector()

	looseRun := findFirst(t, tree, "r")
	require.Equal(t, "body", looseRun.Parent.Data)
	errParent := inj.WrapRunInline(looseRun, NewConfig("x", ""))
	require.Error(t, errParent)
	assert.True(t, IsStructuralError(errParent))

	p := findAll(tree, "p")[0]
	errKind := inj.WrapRunInline(p, NewConfig("x", ""))
	require.Error(t, errKind)
	assert.True(t, IsStructuralError(errKind))

	assert.NotEqual(t, errParent.Error(), errKind.Error())
	assert.Contains(t, errParent.Error(), "inside a paragraph")
	assert.Contains(t, errKind.Error(), "can only wrap run elements")
	assert.Empty(t, findAll(tree, "sdt"))
}

func TestInjectorIdempotent(t *testing.T) {
	t.Run("process element twice", func(t *testing.T) {
		tree := parseDocument(t, wordDocument(paragraphBody))
		p := findFirst(t, tree, "p")
		inj := NewInjector()
		cfg := NewConfig("once", "")

		require.NoError(t, inj.ProcessElement(tree, p, cfg, 0, ""))
		assert.True(t, inj.IsElementProcessed(p))
		require.NoError(t, inj.ProcessElement(tree, p, cfg, 0, ""))

		assert.Len(t, findAll(tree, "sdt"), 1)
	})

	t.Run("wrap run inline twice", func(t *testing.T) {
		tree := parseDocument(t, wordDocument(paragraphBody))
		run := findFirst(t, tree, "r")
		inj := NewInjector()

		require.NoError(t, inj.WrapRunInline(run, NewConfig("once", "")))
		assert.True(t, inj.IsElementProcessed(run))
		require.NoError(t, inj.WrapRunInline(run, NewConfig("once", "")))

		assert.Len(t, findAll(tree, "sdt"), 1)
	})

	t.Run("node already alone in a control", func(t *testing.T) {
		tree := parseDocument(t, wordDocument(`<w:sdt><w:sdtPr/><w:sdtContent>`+paragraphBody+`</w:sdtContent></w:sdt>`))
		p := findFirst(t, tree, "p")
		inj := NewInjector()

		assert.True(t, inj.IsElementProcessed(p))
		require.NoError(t, inj.ProcessElement(tree, p, NewConfig("x", ""), 0, ""))
		assert.Len(t, findAll(tree, "sdt"), 1)
	})
}

func TestInjectorRejectsRunWrappedByAnotherControl(t *testing.T) {
	t.Run("run level then inline level", func(t *testing.T) {
		tree := parseDocument(t, wordDocument(paragraphBody))
		p := findFirst(t, tree, "p")
		run := findFirst(t, p, "r")
		inj := NewInjector()

		require.NoError(t, inj.ProcessElement(tree, run, NewConfig("name", "").WithRunLevel(true), 0, "p"))
		err := inj.ProcessElement(tree, p, NewConfig("para", "").WithInlineLevel(true), 0, "")
		require.Error(t, err)
		assert.True(t, IsStructuralError(err))
		assert.Contains(t, err.Error(), "already wrapped by another control")
		assert.Len(t, findAll(tree, "sdt"), 1)
		assert.False(t, inj.IsElementProcessed(p))
	})

	t.Run("inline level then run level", func(t *testing.T) {
		tree := parseDocument(t, wordDocument(paragraphBody))
		p := findFirst(t, tree, "p")
		run := findFirst(t, p, "r")
		inj := NewInjector()

		require.NoError(t, inj.ProcessElement(tree, p, NewConfig("para", "").WithInlineLevel(true), 0, ""))
		err := inj.ProcessElement(tree, run, NewConfig("name", "").WithRunLevel(true), 0, "p")
		require.Error(t, err)
		assert.True(t, IsStructuralError(err))

		err = inj.WrapRunInline(run, NewConfig("name", ""))
		require.Error(t, err)
		assert.True(t, IsStructuralError(err))
		assert.Len(t, findAll(tree, "sdt"), 1)

		// The owner itself stays idempotent
		require.NoError(t, inj.ProcessElement(tree, p, NewConfig("para", "").WithInlineLevel(true), 0, ""))
	})
}

func TestInjectorUsesDocumentPrefix(t *testing.T) {
	doc := `<x:document xmlns:x="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><x:body>` +
		`<x:p><x:r><x:t>Hi</x:t></x:r></x:p></x:body></x:document>`
	tree := parseDocument(t, doc)
	p := findFirst(t, tree, "p")

	require.NoError(t, NewInjector().ProcessElement(tree, p, NewConfig("t", "").WithID("10000001"), 0, ""))

	sdt := findFirst(t, tree, "sdt")
	assert.Equal(t, "x", sdt.Prefix)
	out := outputDocument(tree)
	assert.Contains(t, string(out), `<x:sdt>`)
	assert.Contains(t, string(out), `<x:id x:val="10000001"/>`)
}

func TestWrappedOutputParses(t *testing.T) {
	tree := parseDocument(t, wordDocument(paragraphBody))
	p := findFirst(t, tree, "p")
	require.NoError(t, NewInjector().ProcessElement(tree, p, NewConfig("greeting", "Greeting"), 0, ""))

	reparsed := parseDocument(t, string(outputDocument(tree)))
	sdt := findFirst(t, reparsed, "sdt")
	tag, ok := sdtProperty(sdt, "tag")
	require.True(t, ok)
	assert.Equal(t, "greeting", tag)
	assert.Equal(t, "Hello world", findFirst(t, reparsed, "p").InnerText())
}
