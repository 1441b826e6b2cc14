// Package query turns the [[query]] entries of a manifest into resolved
// queries, runs them in parallel and checks the answers against their
// expectations.
//
// Compile validates entries and reports problems as diagnostics; Run
// executes a batch under a jobs limit, memoizing through a shared
// dispcache.Cache; Check turns mismatches into QRY diagnostics.
package query
