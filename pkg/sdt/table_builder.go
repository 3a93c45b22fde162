package sdt

import (
	"errors"
	"os"

	"github.com/antchfx/xmlquery"
	"github.com/dustin/go-humanize"

	sdtxml "github.com/benjaminschreck/go-sdt/pkg/sdt/xml"
)

// TableBuilder builds a table in a private single-section document and
// serializes it, content controls included, to a fragment that can be
// placed into another document with Document.AddFragment.
type TableBuilder struct {
	doc            *Document
	table          *sdtxml.Table
	tempDir        string
	destNamespaces map[string]string
	logger         *Logger
}

// BuilderOption configures a TableBuilder
type BuilderOption func(*TableBuilder)

// WithTempDir sets the directory of the temporary package
func WithTempDir(dir string) BuilderOption {
	return func(b *TableBuilder) {
		b.tempDir = dir
	}
}

// WithDestinationNamespaces sets the namespaces declared by the document the
// fragment will be placed in. Declarations it provides are left off the fragment.
func WithDestinationNamespaces(namespaces map[string]string) BuilderOption {
	return func(b *TableBuilder) {
		b.destNamespaces = namespaces
	}
}

// NewTableBuilder creates a builder
func NewTableBuilder(opts ...BuilderOption) *TableBuilder {
	b := &TableBuilder{
		doc:            NewDocument(),
		tempDir:        GetGlobalSettings().TempDir,
		destNamespaces: sdtxml.DefaultNamespaces(),
		logger:         GetLogger().WithField("component", "table-builder"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Table returns the last built table
func (b *TableBuilder) Table() *sdtxml.Table {
	return b.table
}

// Registry returns the registry of the private document. Controls registered
// on elements of the table are injected by SerializeWithSdts.
func (b *TableBuilder) Registry() *Registry {
	return b.doc.Registry()
}

// Register marks an element of the built table for a content control
func (b *TableBuilder) Register(el sdtxml.Element, cfg Config) error {
	return b.doc.Register(el, cfg)
}

// CreateTable validates spec and builds its table in a fresh private
// document. Previous tables and registrations of the builder are discarded.
func (b *TableBuilder) CreateTable(spec *TableSpec) (*sdtxml.Table, error) {
	if err := validateTableSpec(spec); err != nil {
		return nil, err
	}

	doc := NewDocument()
	table := sdtxml.NewTable()
	type cellControl struct {
		element sdtxml.Element
		cfg     Config
	}
	var controls []cellControl

	for r, rowSpec := range spec.Rows {
		row := sdtxml.NewTableRow()
		applyRowStyle(row, rowSpec.Style)

		for c, cellSpec := range rowSpec.Cells {
			cell, content := buildCell(cellSpec)
			row.Cells = append(row.Cells, cell)

			if cellSpec.Tag == "" {
				continue
			}
			target, cfg, err := cellTarget(cell, content, cellSpec)
			if err != nil {
				return nil, NewConfigurationError("row %d cell %d: %v", r, c, err)
			}
			controls = append(controls, cellControl{element: target, cfg: cfg})
		}
		table.Rows = append(table.Rows, row)
	}
	table.Grid = gridFor(table, spec.Style)
	applyTableStyle(table, spec.Style)
	doc.AddTable(table)

	if spec.TableTag != "" {
		alias := spec.TableAlias
		if alias == "" {
			alias = spec.TableTag
		}
		cfg := NewConfig(spec.TableTag, alias).
			WithLock(spec.TableLock).
			WithID(doc.Registry().GenerateUniqueID())
		if err := doc.Register(table, cfg); err != nil {
			return nil, err
		}
	}
	for _, control := range controls {
		cfg := control.cfg.WithID(doc.Registry().GenerateUniqueID())
		if err := doc.Register(control.element, cfg); err != nil {
			return nil, err
		}
	}

	b.doc = doc
	b.table = table
	b.logger.WithFields(Fields{
		"rows":     len(table.Rows),
		"controls": doc.Registry().Count(),
	}).Debug("created table")
	return table, nil
}

// SerializeWithSdts writes the private document to a temporary package,
// reopens it and returns the markup of the table with its content controls.
// The temporary package is removed before returning, whatever the outcome.
func (b *TableBuilder) SerializeWithSdts() (string, error) {
	if b.table == nil {
		return "", NewConfigurationError("no table to serialize")
	}
	shapeHash, err := GenerateTableHash(b.table)
	if err != nil {
		return "", err
	}

	pkg, err := createTempPackage(b.tempDir, b.logger)
	if err != nil {
		return "", err
	}
	defer pkg.release()

	if err := b.doc.Save(pkg.file); err != nil {
		return "", err
	}
	if err := pkg.close(); err != nil {
		return "", err
	}

	reader, err := DocxReaderFromFile(pkg.path)
	if err != nil {
		return "", err
	}
	documentXML, err := reader.GetDocumentXML()
	if err != nil {
		return "", err
	}

	contentHash, err := GenerateContentHash(b.table)
	if err != nil {
		return "", err
	}
	fragment, err := extractBuiltTable(documentXML, shapeHash, contentHash, b.destNamespaces)
	if err != nil {
		return "", err
	}

	b.logger.WithFields(Fields{
		"shape": shapeHash,
		"size":  humanize.Bytes(uint64(len(fragment))),
	}).Debug("extracted table fragment")
	return fragment, nil
}

// extractBuiltTable extracts the table matching the shape fingerprint and
// checks that its content is the content of the built table
func extractBuiltTable(documentXML, shapeHash, contentHash string, dest map[string]string) (string, error) {
	fragment, err := ExtractTableFragment(documentXML, shapeHash, dest)
	if err != nil {
		return "", err
	}
	root, err := parseWrapped(fragment, dest)
	if err != nil {
		return "", NewDocumentError("parse fragment", "", err)
	}
	var tbl *xmlquery.Node
	for _, n := range contentChildren(root) {
		if n.Data == "tbl" {
			tbl = n
			break
		}
	}
	if tbl == nil || NodeContentHash(tbl) != contentHash {
		return "", NewNotFoundError("table fragment", shapeHash+"/"+contentHash)
	}
	return fragment, nil
}

// tempPackage is a temporary DOCX file owned by one function call
type tempPackage struct {
	file   *os.File
	path   string
	closed bool
	logger *Logger
}

func createTempPackage(dir string, logger *Logger) (*tempPackage, error) {
	file, err := os.CreateTemp(dir, "sdt-table-*.docx")
	if err != nil {
		return nil, NewDocumentError("create temp package", dir, err)
	}
	logger.WithField("path", file.Name()).Debug("created temp package")
	return &tempPackage{file: file, path: file.Name(), logger: logger}, nil
}

func (p *tempPackage) close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	if err := p.file.Close(); err != nil {
		return NewDocumentError("close temp package", p.path, err)
	}
	return nil
}

// release closes and deletes the package
func (p *tempPackage) release() {
	if err := p.close(); err != nil {
		p.logger.Warn("%v", err)
	}
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		p.logger.WithField("path", p.path).Warn("failed to remove temp package: %v", err)
		return
	}
	p.logger.WithField("path", p.path).Debug("removed temp package")
}

// buildCell creates a cell for spec and returns it with the element holding
// its content
func buildCell(spec CellSpec) (*sdtxml.TableCell, sdtxml.BlockElement) {
	var content sdtxml.BlockElement
	if spec.Text != nil {
		content = sdtxml.NewTextParagraph(*spec.Text)
	} else {
		content = spec.Element.(sdtxml.BlockElement)
	}
	applyCellTextStyle(content, spec.Style)

	cell := sdtxml.NewTableCell(content)
	if _, ok := content.(*sdtxml.Table); ok {
		// A cell must end with a paragraph
		cell.Content = append(cell.Content, sdtxml.NewParagraph())
	}
	applyCellStyle(cell, spec.Style)
	return cell, content
}

// cellTarget returns the element a cell control is registered on
func cellTarget(cell *sdtxml.TableCell, content sdtxml.BlockElement, spec CellSpec) (sdtxml.Element, Config, error) {
	alias := spec.Alias
	if alias == "" {
		alias = spec.Tag
	}
	cfg := NewConfig(spec.Tag, alias).WithLock(spec.Lock)
	if spec.Text != nil {
		cfg = cfg.WithType(ContentPlainText)
	}

	switch spec.Level {
	case levelCell:
		return cell, cfg, nil
	case LevelRun:
		para, ok := content.(*sdtxml.Paragraph)
		if !ok || len(para.Runs()) == 0 {
			return nil, cfg, errors.New("run level requires a paragraph with a run")
		}
		return para.Runs()[0], cfg.WithRunLevel(true), nil
	case LevelInline:
		return content, cfg.WithInlineLevel(true), nil
	default:
		return content, cfg, nil
	}
}

func gridFor(table *sdtxml.Table, style *TableStyle) *sdtxml.TableGrid {
	grid := sdtxml.NewTable(table.Rows...).Grid
	if grid == nil || style == nil {
		return grid
	}
	for i := range grid.Columns {
		if i < len(style.ColumnWidths) && style.ColumnWidths[i] > 0 {
			grid.Columns[i].Width = style.ColumnWidths[i]
		}
	}
	return grid
}

func applyTableStyle(table *sdtxml.Table, style *TableStyle) {
	if style == nil {
		return
	}
	props := &sdtxml.TableProperties{}
	if style.Name != "" {
		props.Style = &sdtxml.Style{Val: style.Name}
	}
	if style.WidthPct > 0 {
		// pct widths are in fiftieths of a percent
		props.Width = &sdtxml.Width{Type: "pct", Val: style.WidthPct * 50}
	}
	if style.Borders {
		props.Borders = sdtxml.SingleBorders()
	}
	table.Properties = props
}

func applyRowStyle(row *sdtxml.TableRow, style *RowStyle) {
	if style == nil {
		return
	}
	row.Properties = &sdtxml.TableRowProperties{
		CantSplit: style.CantSplit,
		Header:    style.Header,
		Height:    style.Height,
	}
}

func applyCellStyle(cell *sdtxml.TableCell, style *CellStyle) {
	if style == nil {
		return
	}
	props := &sdtxml.TableCellProperties{
		GridSpan: style.GridSpan,
		VAlign:   style.VAlign,
	}
	if style.Width > 0 {
		props.Width = &sdtxml.Width{Val: style.Width}
	}
	if style.Fill != "" {
		props.Shading = &sdtxml.Shading{Fill: style.Fill}
	}
	cell.Properties = props
}

// applyCellTextStyle formats the runs of paragraph content
func applyCellTextStyle(content sdtxml.BlockElement, style *CellStyle) {
	para, ok := content.(*sdtxml.Paragraph)
	if !ok || style == nil {
		return
	}
	applyParagraphStyle(para, style)
	for _, run := range para.Runs() {
		if run.Properties == nil {
			run.Properties = &sdtxml.RunProperties{}
		}
		props := run.Properties
		props.Bold = props.Bold || style.Bold
		props.Italic = props.Italic || style.Italic
		if style.Color != "" {
			props.Color = &sdtxml.Color{Val: style.Color}
		}
		if style.FontSize > 0 {
			// w:sz is in half points
			props.Size = &sdtxml.Size{Val: style.FontSize * 2}
		}
		props.Strike = props.Strike || style.Strike
		if style.Underline != "" {
			props.Underline = &sdtxml.UnderlineStyle{Val: style.Underline}
		}
		if style.Font != "" {
			props.Font = &sdtxml.Font{ASCII: style.Font}
		}
		if style.RunStyle != "" {
			props.Style = &sdtxml.RunStyle{Val: style.RunStyle}
		}
		if style.Baseline != "" {
			props.VerticalAlign = &sdtxml.VerticalAlign{Val: style.Baseline}
		}
	}
}

func applyParagraphStyle(para *sdtxml.Paragraph, style *CellStyle) {
	hasSpacing := style.SpacingBefore > 0 || style.SpacingAfter > 0
	hasIndent := style.IndentLeft > 0 || style.IndentRight > 0
	if style.Alignment == "" && !hasSpacing && !hasIndent && !style.KeepNext {
		return
	}
	if para.Properties == nil {
		para.Properties = &sdtxml.ParagraphProperties{}
	}
	props := para.Properties
	if style.Alignment != "" {
		props.Alignment = &sdtxml.Alignment{Val: style.Alignment}
	}
	if hasSpacing {
		props.Spacing = &sdtxml.Spacing{Before: style.SpacingBefore, After: style.SpacingAfter}
	}
	if hasIndent {
		props.Indentation = &sdtxml.Indentation{Left: style.IndentLeft, Right: style.IndentRight}
	}
	props.KeepNext = props.KeepNext || style.KeepNext
}
