package sdt

import (
	"fmt"
	"strings"
)

// LockType is the editing protection applied to a content control
type LockType int

const (
	// LockNone leaves the control and its content editable
	LockNone LockType = iota
	// LockContent prevents editing the content
	LockContent
	// LockSdt prevents deleting the control
	LockSdt
	// LockBoth prevents deleting the control and editing its content
	LockBoth
)

var lockTypeNames = map[LockType]string{
	LockNone:    "unlocked",
	LockContent: "contentLocked",
	LockSdt:     "sdtLocked",
	LockBoth:    "sdtContentLocked",
}

// String returns the w:lock value of the lock type
func (l LockType) String() string {
	if name, ok := lockTypeNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LockType(%d)", int(l))
}

// ParseLockType parses a w:lock value. The short names none, content, sdt
// and both are accepted too.
func ParseLockType(s string) (LockType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "unlocked":
		return LockNone, nil
	case "content", "contentlocked":
		return LockContent, nil
	case "sdt", "sdtlocked":
		return LockSdt, nil
	case "both", "sdtcontentlocked":
		return LockBoth, nil
	}
	return LockNone, fmt.Errorf("unknown lock type %q", s)
}

// UnmarshalYAML implements yaml.Unmarshaler
func (l *LockType) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := ParseLockType(raw)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (l LockType) MarshalYAML() (interface{}, error) {
	return l.String(), nil
}

// ContentType is the kind of content a control holds
type ContentType int

const (
	ContentRichText ContentType = iota
	ContentPlainText
	ContentPicture
	ContentDate
	ContentDropDownList
	ContentComboBox
	ContentGroup
)

// contentTypeElements maps content types to their sdtPr child element
var contentTypeElements = map[ContentType]string{
	ContentRichText:     "richText",
	ContentPlainText:    "text",
	ContentPicture:      "picture",
	ContentDate:         "date",
	ContentDropDownList: "dropDownList",
	ContentComboBox:     "comboBox",
	ContentGroup:        "group",
}

// String returns the local name of the sdtPr element marking the content type
func (c ContentType) String() string {
	if name, ok := contentTypeElements[c]; ok {
		return name
	}
	return fmt.Sprintf("ContentType(%d)", int(c))
}

// ParseContentType parses a content type by its element name
func ParseContentType(s string) (ContentType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "richtext", "rich":
		return ContentRichText, nil
	case "text", "plaintext", "plain":
		return ContentPlainText, nil
	}
	for ct, name := range contentTypeElements {
		if strings.EqualFold(name, s) {
			return ct, nil
		}
	}
	return ContentRichText, fmt.Errorf("unknown content type %q", s)
}

// UnmarshalYAML implements yaml.Unmarshaler
func (c *ContentType) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := ParseContentType(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (c ContentType) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}

// Structural levels at which a control can be placed
const (
	LevelBlock  = "block"
	LevelInline = "inline"
	LevelRun    = "run"
)

// Config describes one content control. It is a value type: the With methods
// return a modified copy and leave the receiver untouched.
type Config struct {
	// ID is the w:id value, a decimal string or empty
	ID    string      `yaml:"id"`
	Alias string      `yaml:"alias"`
	Tag   string      `yaml:"tag"`
	Lock  LockType    `yaml:"lock"`
	Type  ContentType `yaml:"type"`
	// InlineLevel wraps the first run inside the element instead of the element
	InlineLevel bool `yaml:"inline"`
	// RunLevel wraps the element itself as a run. It takes precedence over InlineLevel.
	RunLevel bool `yaml:"run"`
}

// NewConfig creates a rich text block level configuration
func NewConfig(tag, alias string) Config {
	return Config{Tag: tag, Alias: alias}
}

// WithID returns a copy of c with the w:id value set. Ids are 8 decimal
// digits; Registry.GenerateUniqueID mints free ones.
func (c Config) WithID(id string) Config {
	c.ID = id
	return c
}

// WithAlias returns a copy of c with the display name set
func (c Config) WithAlias(alias string) Config {
	c.Alias = alias
	return c
}

// WithTag returns a copy of c with the tag set
func (c Config) WithTag(tag string) Config {
	c.Tag = tag
	return c
}

// WithLock returns a copy of c with the lock set
func (c Config) WithLock(lock LockType) Config {
	c.Lock = lock
	return c
}

// WithType returns a copy of c with the content type set
func (c Config) WithType(contentType ContentType) Config {
	c.Type = contentType
	return c
}

// WithInlineLevel returns a copy of c that wraps the first run of the
// element instead of the element itself
func (c Config) WithInlineLevel(inline bool) Config {
	c.InlineLevel = inline
	return c
}

// WithRunLevel returns a copy of c that wraps a single run inside its
// paragraph. Run level takes precedence over inline level.
func (c Config) WithRunLevel(run bool) Config {
	c.RunLevel = run
	return c
}

// Level returns the structural level the configuration routes to
func (c Config) Level() string {
	switch {
	case c.RunLevel:
		return LevelRun
	case c.InlineLevel:
		return LevelInline
	default:
		return LevelBlock
	}
}

// WithLevel returns a copy routed to the named level
func (c Config) WithLevel(level string) (Config, error) {
	switch strings.ToLower(level) {
	case "", LevelBlock:
		c.InlineLevel, c.RunLevel = false, false
	case LevelInline:
		c.InlineLevel, c.RunLevel = true, false
	case LevelRun:
		c.InlineLevel, c.RunLevel = false, true
	default:
		return c, fmt.Errorf("unknown level %q", level)
	}
	return c, nil
}

// Validate checks that the id, when set, has the decimal form Word expects
func (c Config) Validate() error {
	if c.ID == "" {
		return nil
	}
	for _, r := range c.ID {
		if r < '0' || r > '9' {
			return NewConfigurationError("sdt id %q must be decimal", c.ID)
		}
	}
	return nil
}
