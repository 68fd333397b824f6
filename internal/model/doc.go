// Package model defines the core data types shared across LinkGate:
// risk tiers and thresholds, the navigation verdict policy, analysis
// results from the remote scoring service, session statistics, and
// page scan reports.
//
// This package has no dependencies on other internal packages so it can
// be imported from anywhere without creating cycles.
package model
