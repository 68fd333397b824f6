// Package main provides the entry point for the LinkGate CLI.
//
// LinkGate discovers outbound links in a page, scores them through a
// phishing analysis service, and gates navigation to risky targets.
//
// Usage:
//
//	linkgate scan <page-url>
//	linkgate watch <html-file>
//	linkgate analyze <url>
//
// See --help for all available options.
package main

// main is the entry point for LinkGate.
func main() {
	Execute()
}
