package sdt

import (
	"github.com/antchfx/xmlquery"
)

// Injector wraps nodes of a parsed document in content controls. Each node
// is wrapped at most once; processing it again is a no-op.
type Injector struct {
	processed map[*xmlquery.Node]wrapRecord
	logger    *Logger
}

// wrapRecord remembers the level of a wrap and the node it was requested for.
// For inline wraps the owner is the paragraph or cell, not the run.
type wrapRecord struct {
	level string
	owner *xmlquery.Node
}

// NewInjector creates an injector logging through the global logger
func NewInjector() *Injector {
	return &Injector{
		processed: make(map[*xmlquery.Node]wrapRecord),
		logger:    GetLogger(),
	}
}

// ProcessElement wraps node according to cfg. Run level takes precedence
// over inline level, which takes precedence over block level. The occurrence
// index and container path only annotate log entries and errors.
func (inj *Injector) ProcessElement(tree, node *xmlquery.Node, cfg Config, occurrence int, containerPath string) error {
	entry := inj.logger.WithFields(Fields{
		"node":       node.Data,
		"level":      cfg.Level(),
		"tag":        cfg.Tag,
		"id":         cfg.ID,
		"occurrence": occurrence,
		"path":       containerPath,
	})

	if rec, ok := inj.processed[node]; ok && rec.owner != node {
		err := NewStructuralError(node.Data, "already wrapped by another control")
		entry.Warn("wrap failed: %v", err)
		return err
	}
	if inj.IsElementProcessed(node) {
		entry.Debug("node already wrapped, skipping")
		return nil
	}

	var err error
	switch cfg.Level() {
	case LevelRun:
		err = inj.wrapRun(tree, node, cfg)
	case LevelInline:
		err = inj.wrapInline(tree, node, cfg)
	default:
		err = inj.wrapBlock(tree, node, cfg)
	}
	if err != nil {
		entry.Warn("wrap failed: %v", err)
		return err
	}
	entry.Debug("wrapped node")
	return nil
}

// WrapRunInline wraps a single run in a run level content control. The run
// must be a child of a paragraph.
func (inj *Injector) WrapRunInline(run *xmlquery.Node, cfg Config) error {
	if rec, ok := inj.processed[run]; ok && rec.owner != run {
		return NewStructuralError(run.Data, "already wrapped by another control")
	}
	if inj.IsElementProcessed(run) {
		return nil
	}
	return inj.wrapRun(nil, run, cfg)
}

// IsElementProcessed reports whether node has been wrapped by this injector
// or already sits alone inside a content control
func (inj *Injector) IsElementProcessed(node *xmlquery.Node) bool {
	if _, ok := inj.processed[node]; ok {
		return true
	}
	parent := node.Parent
	if parent == nil || parent.Type != xmlquery.ElementNode || parent.Data != "sdtContent" {
		return false
	}
	return len(elementChildren(parent)) == 1
}

// ProcessedLevel returns the level at which node was wrapped
func (inj *Injector) ProcessedLevel(node *xmlquery.Node) (string, bool) {
	rec, ok := inj.processed[node]
	return rec.level, ok
}

func (inj *Injector) wrapRun(tree, run *xmlquery.Node, cfg Config) error {
	if run.Type != xmlquery.ElementNode || run.Data != "r" {
		return NewStructuralError(run.Data, "can only wrap run elements")
	}
	if run.Parent == nil || run.Parent.Data != "p" {
		return NewStructuralError(run.Data, "requires run to be inside a paragraph")
	}
	inj.wrap(tree, run, cfg)
	inj.processed[run] = wrapRecord{level: LevelRun, owner: run}
	return nil
}

// wrapInline wraps the first run found in the scope of node, leaving the
// surrounding paragraph or cell untouched
func (inj *Injector) wrapInline(tree, node *xmlquery.Node, cfg Config) error {
	run := firstRun(node)
	if run == nil {
		return NewStructuralError(node.Data, "no run to wrap inline")
	}
	if inj.IsElementProcessed(run) {
		return NewStructuralError(run.Data, "run already wrapped by another control")
	}
	if err := inj.wrapRun(tree, run, cfg); err != nil {
		return err
	}
	rec := wrapRecord{level: LevelInline, owner: node}
	inj.processed[run] = rec
	inj.processed[node] = rec
	return nil
}

func (inj *Injector) wrapBlock(tree, node *xmlquery.Node, cfg Config) error {
	if node.Type != xmlquery.ElementNode {
		return NewStructuralError(node.Data, "can only wrap elements")
	}
	if node.Parent == nil {
		return NewStructuralError(node.Data, "cannot wrap a detached node")
	}
	inj.wrap(tree, node, cfg)
	inj.processed[node] = wrapRecord{level: LevelBlock, owner: node}
	return nil
}

// wrap replaces node with w:sdt holding the properties and node as content
func (inj *Injector) wrap(tree, node *xmlquery.Node, cfg Config) {
	prefix := wordPrefix(tree, node)

	sdt := newWordElement(prefix, "sdt")
	content := newWordElement(prefix, "sdtContent")
	replaceNode(node, sdt)
	xmlquery.AddChild(sdt, buildSdtPr(prefix, cfg))
	xmlquery.AddChild(sdt, content)
	xmlquery.AddChild(content, node)
}

// buildSdtPr creates the w:sdtPr element for cfg. Empty alias, tag and id are
// omitted, as is the lock of an unlocked control.
func buildSdtPr(prefix string, cfg Config) *xmlquery.Node {
	pr := newWordElement(prefix, "sdtPr")
	if cfg.Alias != "" {
		xmlquery.AddChild(pr, newValElement(prefix, "alias", cfg.Alias))
	}
	if cfg.Tag != "" {
		xmlquery.AddChild(pr, newValElement(prefix, "tag", cfg.Tag))
	}
	if cfg.ID != "" {
		xmlquery.AddChild(pr, newValElement(prefix, "id", cfg.ID))
	}
	if cfg.Lock != LockNone {
		xmlquery.AddChild(pr, newValElement(prefix, "lock", cfg.Lock.String()))
	}
	xmlquery.AddChild(pr, newWordElement(prefix, cfg.Type.String()))
	return pr
}

// firstRun returns node when it is a run, or its first run descendant in
// document order
func firstRun(node *xmlquery.Node) *xmlquery.Node {
	if node.Type == xmlquery.ElementNode && node.Data == "r" {
		return node
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != xmlquery.ElementNode || isPropertyElement(child.Data) {
			continue
		}
		if run := firstRun(child); run != nil {
			return run
		}
	}
	return nil
}
