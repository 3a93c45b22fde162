// Package xml provides the DOCX element model used to build documents before
// they are annotated with structured document tags.
//
// The model is a small, build-only tree of WordprocessingML elements. Every
// element can be marshaled with encoding/xml and produces markup in the
// main "w" namespace, ready to be placed in word/document.xml.
//
// # Structure Organization
//
//   - types.go: Core interfaces (Element, BlockElement, ParagraphContent), element kinds
//     and identity tokens
//   - document.go: Document, Body and section properties, document-order walking
//   - paragraph.go: Paragraph elements and their properties
//   - run.go: Run elements (text runs with formatting), Text and Break
//   - table.go: Table structures (Table, TableRow, TableCell) and their properties
//   - fragment.go: Pre-rendered markup placed into a body as a single block
//
// # Identity
//
// Each element carries an identity token minted from a process-wide counter the
// first time ElementID is called. Two elements with identical content still
// have different tokens, which lets callers key maps by element identity:
//
//	p1 := xml.NewTextParagraph("Total")
//	p2 := xml.NewTextParagraph("Total")
//	p1.ElementID() != p2.ElementID() // always true
//
// Value copies of an element share its token.
//
// # Usage
//
//	doc := xml.NewDocument()
//	doc.Body.Append(xml.NewTextParagraph("Hello, world!"))
//	data, err := xml.Marshal(doc)
//
// # XML Namespaces
//
// Element names are written with the conventional "w" prefix. The document
// root declares the namespaces in Document.Namespaces (w and r by default).
package xml
