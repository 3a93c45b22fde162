package sdt

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

const documentPart = "word/document.xml"

// DocxReader reads the parts of a DOCX package
type DocxReader struct {
	reader *zip.Reader
	Parts  map[string]*zip.File
}

// Relationship represents a relationship in the DOCX package
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

// Relationships represents the collection of relationships
type Relationships struct {
	XMLName      xml.Name       `xml:"Relationships"`
	Namespace    string         `xml:"xmlns,attr"`
	Relationship []Relationship `xml:"Relationship"`
}

// NewDocxReader creates a new DOCX reader
func NewDocxReader(r io.ReaderAt, size int64) (*DocxReader, error) {
	zipReader, err := zip.NewReader(r, size)
	if err != nil {
		return nil, NewDocumentError("open package", "", err)
	}

	dr := &DocxReader{
		reader: zipReader,
		Parts:  make(map[string]*zip.File),
	}
	for _, file := range zipReader.File {
		dr.Parts[file.Name] = file
	}

	if _, ok := dr.Parts[documentPart]; !ok {
		return nil, NewDocumentError("open package", "", fmt.Errorf("missing %s", documentPart))
	}
	return dr, nil
}

// DocxReaderFromFile creates a DocxReader from a file path
func DocxReaderFromFile(path string) (*DocxReader, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, NewDocumentError("read", path, err)
	}
	return NewDocxReader(bytes.NewReader(content), int64(len(content)))
}

// GetDocumentXML retrieves the content of word/document.xml
func (dr *DocxReader) GetDocumentXML() (string, error) {
	content, err := dr.GetPart(documentPart)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// GetPart retrieves the content of a specific part
func (dr *DocxReader) GetPart(partName string) ([]byte, error) {
	file, ok := dr.Parts[partName]
	if !ok {
		return nil, NewNotFoundError("part", partName)
	}

	rc, err := file.Open()
	if err != nil {
		return nil, NewDocumentError("open part", partName, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, NewDocumentError("read part", partName, err)
	}
	return content, nil
}

// ListParts returns the part names of the package, sorted
func (dr *DocxReader) ListParts() []string {
	parts := make([]string, 0, len(dr.Parts))
	for name := range dr.Parts {
		parts = append(parts, name)
	}
	sort.Strings(parts)
	return parts
}

// GetRelationships retrieves relationships for a given part
func (dr *DocxReader) GetRelationships(partName string) ([]Relationship, error) {
	// "word/document.xml" -> "word/_rels/document.xml.rels"
	relPath := "_rels/" + partName + ".rels"
	if idx := strings.LastIndex(partName, "/"); idx != -1 {
		relPath = partName[:idx] + "/_rels/" + partName[idx+1:] + ".rels"
	}

	if _, ok := dr.Parts[relPath]; !ok {
		// Missing relationships file is not an error
		return []Relationship{}, nil
	}
	content, err := dr.GetPart(relPath)
	if err != nil {
		return nil, err
	}

	var rels Relationships
	if err := xml.Unmarshal(content, &rels); err != nil {
		return nil, NewDocumentError("parse relationships", relPath, err)
	}
	return rels.Relationship, nil
}

// SDTs lists the content controls of the main document part
func (dr *DocxReader) SDTs() ([]SDTInfo, error) {
	documentXML, err := dr.GetDocumentXML()
	if err != nil {
		return nil, err
	}
	return ExtractSDTs(documentXML)
}

// Package parts written around the main document
const (
	contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

	packageRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

	documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
</Relationships>`
)

// WritePackage writes a minimal DOCX package holding documentXML as its main part
func WritePackage(w io.Writer, documentXML []byte) error {
	zw := zip.NewWriter(w)
	parts := []struct {
		name    string
		content []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(packageRelsXML)},
		{"word/_rels/document.xml.rels", []byte(documentRelsXML)},
		{documentPart, documentXML},
	}

	for _, part := range parts {
		pw, err := zw.Create(part.name)
		if err != nil {
			return NewDocumentError("write part", part.name, err)
		}
		if _, err := pw.Write(part.content); err != nil {
			return NewDocumentError("write part", part.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return NewDocumentError("write package", "", err)
	}
	return nil
}
