// Package page models the document being protected: a live, mutating
// collection of link-bearing elements.
//
// The document is deliberately decoupled from any concrete rendering
// engine. A Document is built either by parsing HTML (Parse) or
// programmatically (New + Append), and insertions are surfaced through
// a change-feed subscription so the scanning pipeline can react to
// content that appears after the initial load. A FileWatcher connects
// the change feed to a local HTML file, re-parsing on every write and
// emitting the links that newly appeared.
package page
