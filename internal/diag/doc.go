// Package diag defines the diagnostic model shared by the manifest loader,
// the query checker and the CLI.
//
// A Diagnostic carries a Severity, a numeric Code with a stable string form
// (see codes.go), a short message and a Subject naming where the problem is:
// the manifest file plus a path inside it such as "type[3].method[1]" or
// "query[invalid-op]". Notes add secondary subjects.
//
// Producers emit through a Reporter (usually a BagReporter writing into a
// Bag) so emission stays decoupled from storage. Bag supports limits,
// sorting, deduplication and merging. Rendering for the terminal lives in
// the CLI; FormatShort gives a stable one-line-per-entry form for tests and
// --quiet output.
package diag
