package page

import (
	"slices"
	"sync"
)

// Feed is the change-feed surface of a mutating document. Subscribers
// receive batches of elements as they are inserted. A batch corresponds
// to one mutation event: the inserted roots plus any qualifying
// descendants, already flattened.
type Feed interface {
	// Subscribe registers a callback invoked for every insertion batch.
	// Callbacks run synchronously on the inserting goroutine, in
	// subscription order.
	Subscribe(fn func(batch []*Element))
}

// Document is a live collection of elements. It supports the two
// operations the scanning pipeline needs: enumerate the elements
// present now (initial sweep) and observe insertions (mutation
// watching).
type Document struct {
	mu sync.Mutex

	// url is the document's own location, used to resolve relative
	// links and to identify the page in reports.
	url string

	// elements holds all elements in insertion order.
	elements []*Element

	// subscribers receive insertion batches.
	subscribers []func(batch []*Element)
}

// New creates an empty document located at the given URL.
func New(url string) *Document {
	return &Document{url: url}
}

// URL returns the document's location.
func (d *Document) URL() string {
	return d.url
}

// Elements returns a snapshot of all elements in insertion order.
func (d *Document) Elements() []*Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.elements)
}

// Links returns a snapshot of the elements whose href targets an
// http(s) URL, in document order. This is the qualifying set for the
// initial scan.
func (d *Document) Links() []*Element {
	d.mu.Lock()
	defer d.mu.Unlock()

	links := make([]*Element, 0, len(d.elements))
	for _, el := range d.elements {
		if el.IsLink() {
			links = append(links, el)
		}
	}
	return links
}

// Subscribe registers a change-feed callback. Only insertions that
// happen after the call are delivered.
func (d *Document) Subscribe(fn func(batch []*Element)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers = append(d.subscribers, fn)
}

// Append inserts elements into the document as one mutation event and
// notifies subscribers with the qualifying links among them.
//
// Design decision: Subscribers are invoked after the document lock is
// released because callbacks feed the scanning pipeline, which may
// re-enter the document (e.g. to snapshot links for a report).
func (d *Document) Append(els ...*Element) {
	d.mu.Lock()
	d.elements = append(d.elements, els...)
	subs := slices.Clone(d.subscribers)
	d.mu.Unlock()

	batch := make([]*Element, 0, len(els))
	for _, el := range els {
		if el.IsLink() {
			batch = append(batch, el)
		}
	}
	if len(batch) == 0 {
		return
	}
	for _, fn := range subs {
		fn(batch)
	}
}

// Remove detaches an element from the document. Pending annotations
// for it still complete but become inert. No notification is emitted;
// the pipeline only reacts to insertions.
func (d *Document) Remove(el *Element) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, cur := range d.elements {
		if cur == el {
			d.elements = slices.Delete(d.elements, i, i+1)
			el.Detach()
			return
		}
	}
}
