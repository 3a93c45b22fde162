package sdt

import (
	"math/rand"
	"strconv"

	sdtxml "github.com/benjaminschreck/go-sdt/pkg/sdt/xml"
)

// Bounds of generated ids. Every generated id has exactly 8 digits.
const (
	MinID = 10_000_000
	MaxID = 99_999_999
)

// Entry is a registered element with its content control configuration
type Entry struct {
	Element sdtxml.Element
	Config  Config
}

// Registry maps elements to content control configurations. It guarantees
// that an element is registered at most once and that non-empty ids are
// unique. A Registry is not safe for concurrent use.
type Registry struct {
	entries     []Entry
	byElement   map[uint64]int
	usedIDs     map[string]bool // attached and reserved
	attachedIDs map[string]bool
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		byElement:   make(map[uint64]int),
		usedIDs:     make(map[string]bool),
		attachedIDs: make(map[string]bool),
	}
}

// GenerateUniqueID draws random 8 digit ids until one is free and reserves it
func (r *Registry) GenerateUniqueID() string {
	for {
		id := strconv.Itoa(MinID + rand.Intn(MaxID-MinID+1))
		if !r.usedIDs[id] {
			r.usedIDs[id] = true
			return id
		}
	}
}

// Register attaches a configuration to an element. An id reserved by
// GenerateUniqueID can be attached once. The registry is left unchanged when
// an error is returned.
func (r *Registry) Register(el sdtxml.Element, cfg Config) error {
	if _, ok := r.byElement[el.ElementID()]; ok {
		return NewDuplicateElementError(GenerateMarker(el))
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.ID != "" && r.attachedIDs[cfg.ID] {
		return NewDuplicateIDError(cfg.ID)
	}

	r.byElement[el.ElementID()] = len(r.entries)
	r.entries = append(r.entries, Entry{Element: el, Config: cfg})
	if cfg.ID != "" {
		r.usedIDs[cfg.ID] = true
		r.attachedIDs[cfg.ID] = true
	}

	WithFields(Fields{
		"marker": GenerateMarker(el),
		"tag":    cfg.Tag,
		"id":     cfg.ID,
		"level":  cfg.Level(),
	}).Debug("registered content control")
	return nil
}

// Has reports whether the element is registered
func (r *Registry) Has(el sdtxml.Element) bool {
	_, ok := r.byElement[el.ElementID()]
	return ok
}

// Config returns the configuration of a registered element
func (r *Registry) Config(el sdtxml.Element) (Config, bool) {
	idx, ok := r.byElement[el.ElementID()]
	if !ok {
		return Config{}, false
	}
	return r.entries[idx].Config, true
}

// Count returns the number of registered elements
func (r *Registry) Count() int {
	return len(r.entries)
}

// All returns the entries in registration order
func (r *Registry) All() []Entry {
	entries := make([]Entry, len(r.entries))
	copy(entries, r.entries)
	return entries
}

// IsIDUsed reports whether id is attached to an entry or reserved. The empty
// id is never in use.
func (r *Registry) IsIDUsed(id string) bool {
	if id == "" {
		return false
	}
	return r.usedIDs[id]
}

// Clear removes every entry and releases every id
func (r *Registry) Clear() {
	r.entries = nil
	r.byElement = make(map[uint64]int)
	r.usedIDs = make(map[string]bool)
	r.attachedIDs = make(map[string]bool)
}
