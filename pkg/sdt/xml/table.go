package xml

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Table represents a table in the document
type Table struct {
	identity
	Properties *TableProperties
	Grid       *TableGrid
	Rows       []*TableRow
}

// NewTable creates a table from rows. The grid gets one column per cell of
// the widest row.
func NewTable(rows ...*TableRow) *Table {
	t := &Table{Rows: rows}
	columns := 0
	for _, row := range rows {
		if len(row.Cells) > columns {
			columns = len(row.Cells)
		}
	}
	if columns > 0 {
		t.Grid = &TableGrid{}
		for i := 0; i < columns; i++ {
			t.Grid.Columns = append(t.Grid.Columns, GridColumn{Width: defaultColumnWidth})
		}
	}
	return t
}

// defaultColumnWidth is the grid column width in twentieths of a point
const defaultColumnWidth = 2000

// Kind implements the Element interface
func (t *Table) Kind() Kind { return KindTable }

// isBlockElement implements the BlockElement interface
func (t *Table) isBlockElement() {}

// Shape returns the number of cells in each row
func (t *Table) Shape() []int {
	shape := make([]int, len(t.Rows))
	for i, row := range t.Rows {
		shape[i] = len(row.Cells)
	}
	return shape
}

// Cell returns the cell at the given position or nil when out of range
func (t *Table) Cell(row, col int) *TableCell {
	if row < 0 || row >= len(t.Rows) {
		return nil
	}
	cells := t.Rows[row].Cells
	if col < 0 || col >= len(cells) {
		return nil
	}
	return cells[col]
}

// MarshalXML implements custom XML marshaling for Table to ensure proper namespacing
func (t *Table) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:tbl"}
	start.Attr = nil
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	// w:tblPr is required by the schema even when empty
	props := t.Properties
	if props == nil {
		props = &TableProperties{}
	}
	if err := e.EncodeElement(props, xml.StartElement{Name: xml.Name{Local: "w:tblPr"}}); err != nil {
		return err
	}

	if t.Grid != nil {
		if err := e.EncodeElement(t.Grid, xml.StartElement{Name: xml.Name{Local: "w:tblGrid"}}); err != nil {
			return err
		}
	}

	for _, row := range t.Rows {
		if err := e.EncodeElement(row, xml.StartElement{Name: xml.Name{Local: "w:tr"}}); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// TableProperties represents table formatting properties
type TableProperties struct {
	Style   *Style
	Width   *Width
	Borders *TableBorders
	Look    *TableLook
}

// MarshalXML implements custom XML marshaling for TableProperties
func (p TableProperties) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:tblPr"}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if p.Style != nil {
		if err := e.EncodeElement(p.Style, xml.StartElement{Name: xml.Name{Local: "w:tblStyle"}}); err != nil {
			return err
		}
	}
	if p.Width != nil {
		if err := e.EncodeElement(p.Width, xml.StartElement{Name: xml.Name{Local: "w:tblW"}}); err != nil {
			return err
		}
	}
	if p.Borders != nil {
		if err := e.EncodeElement(p.Borders, xml.StartElement{Name: xml.Name{Local: "w:tblBorders"}}); err != nil {
			return err
		}
	}
	if p.Look != nil {
		if err := e.EncodeElement(p.Look, xml.StartElement{Name: xml.Name{Local: "w:tblLook"}}); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// TableLook represents table style options
type TableLook struct {
	Val         string
	FirstRow    bool
	FirstColumn bool
	NoVBand     bool
}

// MarshalXML implements custom XML marshaling for TableLook
func (t TableLook) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:tblLook"}
	start.Attr = nil
	if t.Val != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "w:val"}, Value: t.Val})
	}
	start.Attr = append(start.Attr,
		xml.Attr{Name: xml.Name{Local: "w:firstRow"}, Value: onOff(t.FirstRow)},
		xml.Attr{Name: xml.Name{Local: "w:firstColumn"}, Value: onOff(t.FirstColumn)},
		xml.Attr{Name: xml.Name{Local: "w:noVBand"}, Value: onOff(t.NoVBand)},
	)
	return e.EncodeElement(struct{}{}, start)
}

func onOff(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

// TableGrid represents table column definitions
type TableGrid struct {
	Columns []GridColumn
}

// MarshalXML implements custom XML marshaling for TableGrid
func (g TableGrid) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:tblGrid"}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, col := range g.Columns {
		if err := e.EncodeElement(col, xml.StartElement{Name: xml.Name{Local: "w:gridCol"}}); err != nil {
			return err
		}
	}
	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// GridColumn represents a table column
type GridColumn struct {
	Width int
}

// MarshalXML implements custom XML marshaling for GridColumn
func (g GridColumn) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:gridCol"}
	start.Attr = []xml.Attr{
		{Name: xml.Name{Local: "w:w"}, Value: fmt.Sprintf("%d", g.Width)},
	}
	return e.EncodeElement(struct{}{}, start)
}

// TableRow represents a row in a table
type TableRow struct {
	identity
	Properties *TableRowProperties
	Cells      []*TableCell
}

// NewTableRow creates a row from cells
func NewTableRow(cells ...*TableCell) *TableRow {
	return &TableRow{Cells: cells}
}

// Kind implements the Element interface
func (r *TableRow) Kind() Kind { return KindRow }

// MarshalXML implements custom XML marshaling for TableRow to ensure proper namespacing
func (r *TableRow) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:tr"}
	start.Attr = nil
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if r.Properties != nil {
		if err := e.EncodeElement(r.Properties, xml.StartElement{Name: xml.Name{Local: "w:trPr"}}); err != nil {
			return err
		}
	}

	for _, cell := range r.Cells {
		if err := e.EncodeElement(cell, xml.StartElement{Name: xml.Name{Local: "w:tc"}}); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// TableRowProperties represents row properties
type TableRowProperties struct {
	CantSplit bool
	Header    bool
	// Height in twentieths of a point, zero for automatic
	Height int
}

// MarshalXML implements custom XML marshaling for TableRowProperties
func (p TableRowProperties) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:trPr"}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if p.CantSplit {
		if err := encodeEmpty(e, "w:cantSplit"); err != nil {
			return err
		}
	}
	if p.Height > 0 {
		if err := encodeVal(e, "w:trHeight", fmt.Sprintf("%d", p.Height)); err != nil {
			return err
		}
	}
	if p.Header {
		if err := encodeEmpty(e, "w:tblHeader"); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// TableCell represents a cell in a table
type TableCell struct {
	identity
	Properties *TableCellProperties
	// Content holds paragraphs and nested tables. A cell must end with a paragraph.
	Content []BlockElement
}

// NewTableCell creates a cell from block content
func NewTableCell(content ...BlockElement) *TableCell {
	return &TableCell{Content: content}
}

// NewTextCell creates a cell holding a single text paragraph
func NewTextCell(text string) *TableCell {
	return NewTableCell(NewTextParagraph(text))
}

// Kind implements the Element interface
func (c *TableCell) Kind() Kind { return KindCell }

// MarshalXML implements custom XML marshaling for TableCell to ensure proper namespacing
func (c *TableCell) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:tc"}
	start.Attr = nil
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if c.Properties != nil {
		if err := e.EncodeElement(c.Properties, xml.StartElement{Name: xml.Name{Local: "w:tcPr"}}); err != nil {
			return err
		}
	}

	for _, elem := range c.Content {
		if err := encodeBlock(e, elem); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// GetText returns the text of all paragraphs in a cell, one line per paragraph
func (c *TableCell) GetText() string {
	var texts []string
	for _, elem := range c.Content {
		if para, ok := elem.(*Paragraph); ok {
			texts = append(texts, para.GetText())
		}
	}
	return strings.Join(texts, "\n")
}

// TableCellProperties represents cell properties
type TableCellProperties struct {
	Width    *Width
	GridSpan int
	Shading  *Shading
	VAlign   string
}

// MarshalXML implements custom XML marshaling for TableCellProperties
func (p TableCellProperties) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:tcPr"}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	// Order follows CT_TcPr
	if p.Width != nil {
		if err := e.EncodeElement(p.Width, xml.StartElement{Name: xml.Name{Local: "w:tcW"}}); err != nil {
			return err
		}
	}
	if p.GridSpan > 1 {
		if err := encodeVal(e, "w:gridSpan", fmt.Sprintf("%d", p.GridSpan)); err != nil {
			return err
		}
	}
	if p.Shading != nil {
		if err := e.EncodeElement(p.Shading, xml.StartElement{Name: xml.Name{Local: "w:shd"}}); err != nil {
			return err
		}
	}
	if p.VAlign != "" {
		if err := encodeVal(e, "w:vAlign", p.VAlign); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// Width represents width settings
type Width struct {
	Type string
	Val  int
}

// MarshalXML keeps the element name chosen by the caller (tblW, tcW)
func (w Width) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	typ := w.Type
	if typ == "" {
		typ = "dxa"
	}
	start.Attr = []xml.Attr{
		{Name: xml.Name{Local: "w:w"}, Value: fmt.Sprintf("%d", w.Val)},
		{Name: xml.Name{Local: "w:type"}, Value: typ},
	}
	return e.EncodeElement(struct{}{}, start)
}

// Shading represents cell shading
type Shading struct {
	Val   string
	Color string
	Fill  string
}

// MarshalXML implements custom XML marshaling for Shading
func (s Shading) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:shd"}
	val := s.Val
	if val == "" {
		val = "clear"
	}
	start.Attr = []xml.Attr{{Name: xml.Name{Local: "w:val"}, Value: val}}
	if s.Color != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "w:color"}, Value: s.Color})
	}
	if s.Fill != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "w:fill"}, Value: s.Fill})
	}
	return e.EncodeElement(struct{}{}, start)
}

// TableBorders represents the outer and inner borders of a table
type TableBorders struct {
	Top     *Border
	Left    *Border
	Bottom  *Border
	Right   *Border
	InsideH *Border
	InsideV *Border
}

// SingleBorders returns single line borders on every edge
func SingleBorders() *TableBorders {
	line := func() *Border { return &Border{Val: "single", Size: 4, Color: "auto"} }
	return &TableBorders{
		Top: line(), Left: line(), Bottom: line(), Right: line(),
		InsideH: line(), InsideV: line(),
	}
}

// MarshalXML implements custom XML marshaling for TableBorders
func (b TableBorders) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:tblBorders"}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	edges := []struct {
		name   string
		border *Border
	}{
		{"w:top", b.Top},
		{"w:left", b.Left},
		{"w:bottom", b.Bottom},
		{"w:right", b.Right},
		{"w:insideH", b.InsideH},
		{"w:insideV", b.InsideV},
	}
	for _, edge := range edges {
		if edge.border == nil {
			continue
		}
		if err := e.EncodeElement(edge.border, xml.StartElement{Name: xml.Name{Local: edge.name}}); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// Border represents a single border edge
type Border struct {
	Val   string
	Size  int
	Color string
}

// MarshalXML keeps the edge name chosen by the caller
func (b Border) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Attr = []xml.Attr{
		{Name: xml.Name{Local: "w:val"}, Value: b.Val},
		{Name: xml.Name{Local: "w:sz"}, Value: fmt.Sprintf("%d", b.Size)},
		{Name: xml.Name{Local: "w:space"}, Value: "0"},
	}
	if b.Color != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "w:color"}, Value: b.Color})
	}
	return e.EncodeElement(struct{}{}, start)
}
