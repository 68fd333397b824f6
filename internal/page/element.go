package page

import (
	"slices"
	"strings"
	"sync"
)

// Element is a link-bearing document element. It carries the href
// target plus the mutable annotation surface the engine writes to:
// attributes, style classes, and appended badges.
//
// Design decision: Annotations live on the element rather than only in
// the link index because:
//  1. The navigation gate reads the element it was handed at click
//     time, not the index, mirroring how the two stores can drift
//  2. An element removed from the document keeps its annotations but
//     becomes inert, which is the intended behavior
//  3. It keeps the index free of presentation state
type Element struct {
	mu sync.Mutex

	// tag is the element name, e.g. "a".
	tag string

	// text is the element's visible text content, if any.
	text string

	// attrs holds attribute key/value pairs. Keys are stored as given;
	// lookups are exact.
	attrs map[string]string

	// classes holds style classes in application order.
	classes []string

	// badges holds glyphs appended by the annotation engine.
	badges []string

	// detached reports whether the element has been removed from its
	// document. Annotation writes still succeed but have no visible
	// effect; this mirrors a completed write landing on a removed node.
	detached bool
}

// NewElement creates an element with the given tag and href target.
func NewElement(tag, href string) *Element {
	return &Element{
		tag:   tag,
		attrs: map[string]string{"href": href},
	}
}

// Tag returns the element name.
func (e *Element) Tag() string {
	return e.tag
}

// Text returns the element's visible text content.
func (e *Element) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.text
}

// SetText sets the element's visible text content.
func (e *Element) SetText(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.text = text
}

// Href returns the element's href attribute, empty if absent.
func (e *Element) Href() string {
	v, _ := e.Attr("href")
	return v
}

// IsLink reports whether the element targets an http or https URL.
// Relative hrefs do not qualify on their own; the parser resolves them
// against the document base before elements reach this check.
func (e *Element) IsLink() bool {
	href := e.Href()
	return strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://")
}

// Attr returns the value of the named attribute and whether it is set.
func (e *Element) Attr(name string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.attrs[name]
	return v, ok
}

// SetAttr sets the named attribute, replacing any existing value.
func (e *Element) SetAttr(name, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.attrs[name] = value
}

// AddClass appends a style class if not already present.
func (e *Element) AddClass(class string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !slices.Contains(e.classes, class) {
		e.classes = append(e.classes, class)
	}
}

// HasClass reports whether the element carries the given class.
func (e *Element) HasClass(class string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Contains(e.classes, class)
}

// Classes returns a copy of the element's classes.
func (e *Element) Classes() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.classes)
}

// AppendBadge appends a glyph badge to the element. Appending a glyph
// already present is a no-op, so re-annotation cannot stack badges.
func (e *Element) AppendBadge(glyph string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !slices.Contains(e.badges, glyph) {
		e.badges = append(e.badges, glyph)
	}
}

// Badges returns a copy of the element's badges.
func (e *Element) Badges() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.badges)
}

// Detach marks the element as removed from its document.
func (e *Element) Detach() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.detached = true
}

// Detached reports whether the element has been removed.
func (e *Element) Detached() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.detached
}
