// Package effects projects preference state onto a presentation target:
// document attributes, classes and CSS custom properties.
package effects

import (
	"sort"
	"sync"
)

// Target is the surface the applier writes to. Implementations must be safe
// for use from the goroutine that dispatches state changes.
type Target interface {
	SetAttribute(name, value string)
	SetStyleProperty(name, value string)
	SetClass(name string, on bool)
}

// DocumentSnapshot is a point-in-time copy of a Document.
type DocumentSnapshot struct {
	Attributes map[string]string `json:"attributes"`
	Styles     map[string]string `json:"styles"`
	Classes    []string          `json:"classes"`
}

// HasClass reports whether name is in the snapshot's class list.
func (d DocumentSnapshot) HasClass(name string) bool {
	for _, c := range d.Classes {
		if c == name {
			return true
		}
	}
	return false
}

// Document is an in-memory Target. The HTTP API serves its snapshot so a UI
// can mirror the root element without recomputing the projection.
type Document struct {
	mu         sync.RWMutex
	attributes map[string]string
	styles     map[string]string
	classes    map[string]struct{}
	writes     int
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{
		attributes: make(map[string]string),
		styles:     make(map[string]string),
		classes:    make(map[string]struct{}),
	}
}

// SetAttribute implements Target.
func (d *Document) SetAttribute(name, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.attributes[name] = value
	d.writes++
}

// SetStyleProperty implements Target.
func (d *Document) SetStyleProperty(name, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.styles[name] = value
	d.writes++
}

// SetClass implements Target.
func (d *Document) SetClass(name string, on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if on {
		d.classes[name] = struct{}{}
	} else {
		delete(d.classes, name)
	}
	d.writes++
}

// Writes returns the number of mutations applied so far.
func (d *Document) Writes() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.writes
}

// Snapshot returns a copy of the document.
func (d *Document) Snapshot() DocumentSnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	snap := DocumentSnapshot{
		Attributes: make(map[string]string, len(d.attributes)),
		Styles:     make(map[string]string, len(d.styles)),
		Classes:    make([]string, 0, len(d.classes)),
	}
	for k, v := range d.attributes {
		snap.Attributes[k] = v
	}
	for k, v := range d.styles {
		snap.Styles[k] = v
	}
	for c := range d.classes {
		snap.Classes = append(snap.Classes, c)
	}
	sort.Strings(snap.Classes)
	return snap
}
