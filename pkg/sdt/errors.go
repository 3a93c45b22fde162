package sdt

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ConfigurationError represents a malformed table specification or a
// builder used out of order
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(format string, args ...interface{}) error {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// DuplicateElementError is returned when an element is registered twice
type DuplicateElementError struct {
	Marker string
}

func (e *DuplicateElementError) Error() string {
	return fmt.Sprintf("element %s is already registered", e.Marker)
}

// NewDuplicateElementError creates a new duplicate element error
func NewDuplicateElementError(marker string) error {
	return &DuplicateElementError{Marker: marker}
}

// DuplicateIDError is returned when a non-empty id is registered twice
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("sdt id %q is already in use", e.ID)
}

// NewDuplicateIDError creates a new duplicate id error
func NewDuplicateIDError(id string) error {
	return &DuplicateIDError{ID: id}
}

// StructuralError represents a wrap attempted on a node of the wrong kind or
// in the wrong place
type StructuralError struct {
	Node    string
	Message string
}

func (e *StructuralError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("structural error at <%s>: %s", e.Node, e.Message)
	}
	return fmt.Sprintf("structural error: %s", e.Message)
}

// NewStructuralError creates a new structural error
func NewStructuralError(node, message string) error {
	return &StructuralError{Node: node, Message: message}
}

// EmptyInputError is returned when a fingerprint is requested for empty input
type EmptyInputError struct {
	Input string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("cannot fingerprint empty %s", e.Input)
}

// NewEmptyInputError creates a new empty input error
func NewEmptyInputError(input string) error {
	return &EmptyInputError{Input: input}
}

// NotFoundError is returned when an element cannot be located in serialized markup
type NotFoundError struct {
	What string
	Key  string
}

func (e *NotFoundError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s not found: %s", e.What, e.Key)
	}
	return fmt.Sprintf("%s not found", e.What)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(what, key string) error {
	return &NotFoundError{What: what, Key: key}
}

// DocumentError represents an error during package operations
type DocumentError struct {
	Operation string
	Path      string
	Cause     error
}

func (e *DocumentError) Error() string {
	if e.Path != "" && e.Cause != nil {
		return fmt.Sprintf("document error during %s of '%s': %v", e.Operation, e.Path, e.Cause)
	} else if e.Path != "" {
		return fmt.Sprintf("document error during %s of '%s'", e.Operation, e.Path)
	} else if e.Cause != nil {
		return fmt.Sprintf("document error during %s: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("document error during %s", e.Operation)
}

func (e *DocumentError) Unwrap() error {
	return e.Cause
}

// NewDocumentError creates a new document error
func NewDocumentError(operation, path string, cause error) error {
	return &DocumentError{
		Operation: operation,
		Path:      path,
		Cause:     cause,
	}
}

// ContextError adds context to an existing error
type ContextError struct {
	Operation string
	Context   map[string]interface{}
	Cause     error
}

func (e *ContextError) Error() string {
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	contextParts := make([]string, 0, len(keys))
	for _, k := range keys {
		contextParts = append(contextParts, fmt.Sprintf("%s=%v", k, e.Context[k]))
	}
	if len(contextParts) > 0 {
		return fmt.Sprintf("%s [%s]: %v", e.Operation, strings.Join(contextParts, ", "), e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Operation, e.Cause)
}

func (e *ContextError) Unwrap() error {
	return e.Cause
}

// WithContext wraps an error with additional context
func WithContext(err error, operation string, context map[string]interface{}) error {
	if err == nil {
		return nil
	}
	return &ContextError{
		Operation: operation,
		Context:   context,
		Cause:     err,
	}
}

// MultiError collects multiple errors
type MultiError struct {
	errors []error
}

// NewMultiError creates a new multi-error collector
func NewMultiError() *MultiError {
	return &MultiError{}
}

// Add adds an error to the collection (ignores nil errors)
func (m *MultiError) Add(err error) {
	if err != nil {
		m.errors = append(m.errors, err)
	}
}

// Len returns the number of errors
func (m *MultiError) Len() int {
	return len(m.errors)
}

// Err returns the multi-error or nil if empty
func (m *MultiError) Err() error {
	if len(m.errors) == 0 {
		return nil
	}
	if len(m.errors) == 1 {
		return m.errors[0]
	}
	return m
}

func (m *MultiError) Error() string {
	parts := make([]string, 0, len(m.errors)+1)
	parts = append(parts, fmt.Sprintf("%d errors occurred:", len(m.errors)))
	for i, err := range m.errors {
		parts = append(parts, fmt.Sprintf("  %d. %v", i+1, err))
	}
	return strings.Join(parts, "\n")
}

// Unwrap exposes the collected errors to errors.Is and errors.As
func (m *MultiError) Unwrap() []error {
	return m.errors
}

// IsConfigurationError checks if an error is a ConfigurationError
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsDuplicateElementError checks if an error is a DuplicateElementError
func IsDuplicateElementError(err error) bool {
	var target *DuplicateElementError
	return errors.As(err, &target)
}

// IsDuplicateIDError checks if an error is a DuplicateIDError
func IsDuplicateIDError(err error) bool {
	var target *DuplicateIDError
	return errors.As(err, &target)
}

// IsStructuralError checks if an error is a StructuralError
func IsStructuralError(err error) bool {
	var target *StructuralError
	return errors.As(err, &target)
}

// IsEmptyInputError checks if an error is an EmptyInputError
func IsEmptyInputError(err error) bool {
	var target *EmptyInputError
	return errors.As(err, &target)
}

// IsNotFoundError checks if an error is a NotFoundError
func IsNotFoundError(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsDocumentError checks if an error is a DocumentError
func IsDocumentError(err error) bool {
	var target *DocumentError
	return errors.As(err, &target)
}
