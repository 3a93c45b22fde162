package sdt

import (
	"os"

	"gopkg.in/yaml.v2"

	sdtxml "github.com/benjaminschreck/go-sdt/pkg/sdt/xml"
)

// TableSpec declares a table and the content controls placed in it
type TableSpec struct {
	Rows  []RowSpec   `yaml:"rows"`
	Style *TableStyle `yaml:"style,omitempty"`
	// TableTag registers a table level control when set
	TableTag   string   `yaml:"tableTag,omitempty"`
	TableAlias string   `yaml:"tableAlias,omitempty"`
	TableLock  LockType `yaml:"tableLockType,omitempty"`
}

// RowSpec declares one table row
type RowSpec struct {
	Cells []CellSpec `yaml:"cells"`
	Style *RowStyle  `yaml:"style,omitempty"`
}

// CellSpec declares one cell. Exactly one of Text and Element must be set.
type CellSpec struct {
	Text *string `yaml:"text,omitempty"`
	// Element is an existing paragraph or table placed in the cell
	Element sdtxml.Element `yaml:"-"`
	// Ref names an element by id; this form is not supported
	Ref   string     `yaml:"ref,omitempty"`
	Style *CellStyle `yaml:"style,omitempty"`

	// Tag registers a control on the cell content when set
	Tag   string   `yaml:"tag,omitempty"`
	Alias string   `yaml:"alias,omitempty"`
	Lock  LockType `yaml:"lock,omitempty"`
	// Level is one of block, inline, run or cell. Block wraps the cell
	// content, cell wraps the whole cell.
	Level string `yaml:"level,omitempty"`
}

// TableStyle holds optional table formatting
type TableStyle struct {
	// Name is a table style id such as TableGrid
	Name string `yaml:"name,omitempty"`
	// WidthPct is the table width in percent of the text width
	WidthPct int  `yaml:"widthPct,omitempty"`
	Borders  bool `yaml:"borders,omitempty"`
	// ColumnWidths in twentieths of a point, one per grid column
	ColumnWidths []int `yaml:"columnWidths,omitempty"`
}

// RowStyle holds optional row formatting
type RowStyle struct {
	Height    int  `yaml:"height,omitempty"`
	CantSplit bool `yaml:"cantSplit,omitempty"`
	Header    bool `yaml:"header,omitempty"`
}

// CellStyle holds optional cell and text formatting
type CellStyle struct {
	Width     int    `yaml:"width,omitempty"`
	Fill      string `yaml:"fill,omitempty"`
	VAlign    string `yaml:"vAlign,omitempty"`
	GridSpan  int    `yaml:"gridSpan,omitempty"`
	Bold      bool   `yaml:"bold,omitempty"`
	Italic    bool   `yaml:"italic,omitempty"`
	Color     string `yaml:"color,omitempty"`
	FontSize  int    `yaml:"fontSize,omitempty"`
	Alignment string `yaml:"alignment,omitempty"`
	Strike    bool   `yaml:"strike,omitempty"`
	// Underline is a w:u value such as single or double
	Underline string `yaml:"underline,omitempty"`
	Font      string `yaml:"font,omitempty"`
	RunStyle  string `yaml:"runStyle,omitempty"`
	// Baseline is superscript or subscript
	Baseline string `yaml:"baseline,omitempty"`

	// Paragraph spacing and indentation in twentieths of a point
	SpacingBefore int  `yaml:"spacingBefore,omitempty"`
	SpacingAfter  int  `yaml:"spacingAfter,omitempty"`
	IndentLeft    int  `yaml:"indentLeft,omitempty"`
	IndentRight   int  `yaml:"indentRight,omitempty"`
	KeepNext      bool `yaml:"keepNext,omitempty"`
}

// Text returns a pointer to s, for CellSpec.Text
func Text(s string) *string {
	return &s
}

// LoadTableSpec reads a table specification from a YAML file
func LoadTableSpec(path string) (*TableSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewDocumentError("read table spec", path, err)
	}
	return ParseTableSpec(data)
}

// ParseTableSpec decodes a YAML table specification
func ParseTableSpec(data []byte) (*TableSpec, error) {
	var spec TableSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, NewConfigurationError("invalid table spec: %v", err)
	}
	return &spec, nil
}

// validateTableSpec checks the structure of a specification. Each violation
// has its own message.
func validateTableSpec(spec *TableSpec) error {
	if spec == nil {
		return NewConfigurationError("table spec is required")
	}
	if spec.Rows == nil {
		return NewConfigurationError("table spec must contain 'rows'")
	}
	if len(spec.Rows) == 0 {
		return NewConfigurationError("table spec 'rows' must not be empty")
	}

	for r, row := range spec.Rows {
		if row.Cells == nil {
			return NewConfigurationError("row %d must contain 'cells'", r)
		}
		if len(row.Cells) == 0 {
			return NewConfigurationError("row %d 'cells' must not be empty", r)
		}
		for c, cell := range row.Cells {
			if err := validateCellSpec(r, c, cell); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateCellSpec(r, c int, cell CellSpec) error {
	hasText := cell.Text != nil
	hasElement := cell.Element != nil || cell.Ref != ""

	switch {
	case !hasText && !hasElement:
		return NewConfigurationError("row %d cell %d must specify either 'text' or 'element'", r, c)
	case hasText && hasElement:
		return NewConfigurationError("row %d cell %d cannot specify both 'text' and 'element'", r, c)
	case cell.Ref != "":
		return NewConfigurationError("row %d cell %d: element references by id are not supported, pass the element", r, c)
	}

	if cell.Element != nil {
		switch cell.Element.(type) {
		case *sdtxml.Paragraph, *sdtxml.Table:
		default:
			return NewConfigurationError("row %d cell %d: unsupported cell element %s", r, c, cell.Element.Kind())
		}
	}

	switch cell.Level {
	case "", LevelBlock, LevelInline, LevelRun, levelCell:
	default:
		return NewConfigurationError("row %d cell %d: unknown level %q", r, c, cell.Level)
	}
	if cell.Level == LevelRun {
		if _, ok := cell.Element.(*sdtxml.Table); ok {
			return NewConfigurationError("row %d cell %d: run level requires paragraph content", r, c)
		}
	}
	return nil
}

// levelCell places a cell control around the whole w:tc
const levelCell = "cell"
