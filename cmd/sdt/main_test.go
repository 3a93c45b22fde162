package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/go-sdt/pkg/sdt"
)

const tableYAML = `
tableTag: totals
tableLockType: sdtLocked
rows:
  - cells:
      - text: Net
      - text: "100.00"
        tag: net
        lock: content
  - cells:
      - text: Gross
      - text: "119.00"
        tag: gross
        level: run
`

func writeSpec(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "table.yaml")
	require.NoError(t, os.WriteFile(path, []byte(tableYAML), 0o644))
	return path
}

func parse(t *testing.T, args ...string) *kong.Context {
	t.Helper()
	parser, err := kong.New(&CLI, kong.Name("sdt"))
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return ctx
}

func TestBuildCommand(t *testing.T) {
	spec := writeSpec(t)
	out := filepath.Join(t.TempDir(), "totals.docx")

	ctx := parse(t, "build", "--spec", spec, "--out", out, "--title", "Totals")
	assert.Equal(t, "build", ctx.Command())
	require.NoError(t, ctx.Run())

	reader, err := sdt.DocxReaderFromFile(out)
	require.NoError(t, err)
	controls, err := reader.SDTs()
	require.NoError(t, err)
	require.Len(t, controls, 3)
	assert.Equal(t, "totals", controls[0].Tag)
	assert.Equal(t, "tbl", controls[0].Content)
	assert.Equal(t, "net", controls[1].Tag)
	assert.Equal(t, "gross", controls[2].Tag)
	assert.Equal(t, sdt.LevelRun, controls[2].Level)

	documentXML, err := reader.GetDocumentXML()
	require.NoError(t, err)
	assert.Contains(t, documentXML, "Totals")
}

func TestBuildFragment(t *testing.T) {
	fragment, err := buildFragment(writeSpec(t))
	require.NoError(t, err)

	infos, err := sdt.ExtractSDTs(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		fragment + `</w:body></w:document>`)
	require.NoError(t, err)
	require.Len(t, infos, 3)
	assert.Equal(t, "totals", infos[0].Tag)

	_, err = buildFragment(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, sdt.IsDocumentError(err))
}

func TestInspectCommand(t *testing.T) {
	spec := writeSpec(t)
	out := filepath.Join(t.TempDir(), "totals.docx")
	require.NoError(t, (&BuildCmd{Spec: spec, Out: out}).Run())

	ctx := parse(t, "inspect", out)
	assert.Equal(t, "inspect <path>", ctx.Command())
	assert.NoError(t, ctx.Run())
}

func TestParseRejectsMissingSpec(t *testing.T) {
	parser, err := kong.New(&CLI, kong.Name("sdt"))
	require.NoError(t, err)
	_, err = parser.Parse([]string{"fragment", "--spec", filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestIndent(t *testing.T) {
	assert.Equal(t, "", indent(0))
	assert.Equal(t, "    ", indent(2))
}
