// Package sdt wraps parts of DOCX documents in structured document tags
// (content controls).
//
// Elements built with the xml subpackage are registered with a content
// control configuration. When the document is rendered, each registered
// element is located in the serialized markup and wrapped in a w:sdt
// element. The element model itself is never modified.
//
// # Quick Start
//
//	doc := sdt.NewDocument()
//	title := doc.AddParagraph("Employment Agreement")
//	err := doc.Register(title, sdt.NewConfig("title", "Title").WithLock(sdt.LockBoth))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := doc.SaveFile("output.docx"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Wrap Levels
//
// A configuration selects one of three levels:
//
//	block   the paragraph, table or cell content is replaced by a w:sdt holding it
//	inline  the first run inside the element is wrapped; the element stays in place
//	run     a single run is wrapped inside its paragraph
//
// Run level takes precedence over inline level. A run can belong to only one
// control; wrapping it for a second entry is a StructuralError.
//
// # Tables
//
// TableBuilder builds a table from a TableSpec, which can be loaded from
// YAML with LoadTableSpec. SerializeWithSdts renders the table with its
// controls in a private document and returns the table markup, ready for
// Document.AddFragment:
//
//	builder := sdt.NewTableBuilder(sdt.WithDestinationNamespaces(doc.Namespaces()))
//	if _, err := builder.CreateTable(spec); err != nil {
//	    log.Fatal(err)
//	}
//	fragment, err := builder.SerializeWithSdts()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	doc.AddFragment(fragment)
//
// # Identification
//
// GenerateMarker names one element instance. GenerateContentHash is shared
// by elements with the same rendered content and ignores content controls,
// so a fingerprint survives wrapping. GenerateTableHash depends only on the
// shape of a table.
//
// # Errors
//
// Failures are reported with typed errors: ConfigurationError,
// DuplicateElementError, DuplicateIDError, StructuralError,
// EmptyInputError, NotFoundError and DocumentError. Use the IsXxxError
// helpers to test for them; they see through ContextError and MultiError.
//
// # Configuration
//
// Global Settings are read from the environment (SDT_LOG_LEVEL,
// SDT_LOG_FORMAT, SDT_TEMP_DIR, SDT_STRICT_LOCATE) and can be loaded from a
// YAML file with LoadSettingsFile.
package sdt
