package xml

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// FragmentMarkerPrefix starts the comment written in place of a fragment
const FragmentMarkerPrefix = "sdt-fragment:"

// Fragment is a block of pre-rendered WordprocessingML, such as a table
// already wrapped in content controls. It marshals to a placeholder comment
// that is replaced by Markup once the surrounding document has been rendered.
type Fragment struct {
	identity
	Markup string
}

// NewFragment creates a fragment from markup
func NewFragment(markup string) *Fragment {
	return &Fragment{Markup: markup}
}

// Kind implements the Element interface
func (f *Fragment) Kind() Kind { return KindFragment }

// isBlockElement implements the BlockElement interface
func (f *Fragment) isBlockElement() {}

// Marker returns the comment text that stands in for the fragment
func (f *Fragment) Marker() string {
	return FragmentMarkerPrefix + strconv.FormatUint(f.ElementID(), 10)
}

// MarshalXML writes the placeholder comment
func (f *Fragment) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	return f.encode(e)
}

func (f *Fragment) encode(e *xml.Encoder) error {
	return e.EncodeToken(xml.Comment(f.Marker()))
}

// ParseFragmentMarker returns the element id carried by a placeholder comment
func ParseFragmentMarker(comment string) (uint64, error) {
	raw, ok := strings.CutPrefix(strings.TrimSpace(comment), FragmentMarkerPrefix)
	if !ok {
		return 0, fmt.Errorf("not a fragment marker: %q", comment)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid fragment marker %q: %w", comment, err)
	}
	return id, nil
}
