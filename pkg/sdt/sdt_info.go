package sdt

import (
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

var sdtSelector = xpath.MustCompile("//*[local-name()='sdt']")

// SDTInfo describes a content control found in serialized markup
type SDTInfo struct {
	Tag   string
	Alias string
	ID    string
	Lock  LockType
	Type  ContentType
	// Level is "run" when the control wraps runs and "block" otherwise
	Level string
	// Content is the local name of the first wrapped element, such as "tbl"
	Content string
	// Depth counts the content controls enclosing this one
	Depth int
}

// ExtractSDTs lists the content controls of a document part in document order
func ExtractSDTs(documentXML string) ([]SDTInfo, error) {
	doc, err := xmlquery.Parse(strings.NewReader(documentXML))
	if err != nil {
		return nil, NewDocumentError("parse", documentPart, err)
	}

	var infos []SDTInfo
	for _, node := range xmlquery.QuerySelectorAll(doc, sdtSelector) {
		infos = append(infos, describeSdt(node))
	}
	return infos, nil
}

func describeSdt(node *xmlquery.Node) SDTInfo {
	info := SDTInfo{Level: LevelBlock}

	if pr := findChild(node, "sdtPr"); pr != nil {
		for _, child := range elementChildren(pr) {
			val := attrValue(child, "val")
			switch child.Data {
			case "alias":
				info.Alias = val
			case "tag":
				info.Tag = val
			case "id":
				info.ID = val
			case "lock":
				if lock, err := ParseLockType(val); err == nil {
					info.Lock = lock
				}
			default:
				if ct, err := ParseContentType(child.Data); err == nil {
					info.Type = ct
				}
			}
		}
	}

	if content := findChild(node, "sdtContent"); content != nil {
		if first := firstElementChild(content); first != nil {
			info.Content = first.Data
			if first.Data == "r" {
				info.Level = LevelRun
			}
		}
	}

	for cur := node.Parent; cur != nil; cur = cur.Parent {
		if cur.Type == xmlquery.ElementNode && cur.Data == "sdt" {
			info.Depth++
		}
	}
	return info
}

// attrValue returns the value of the attribute with the given local name
func attrValue(n *xmlquery.Node, local string) string {
	for _, attr := range n.Attr {
		if attr.Name.Local == local {
			return attr.Value
		}
	}
	return ""
}
