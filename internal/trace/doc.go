// Package trace records what the slotwise driver does and how long it takes.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	slotwise check --trace=- --trace-level=detail hierarchy.toml
//
// or in slotwise.toml:
//
//	[trace]
//	level = "phase"
//	output = "trace.ndjson"
//
// # Tracers
//
//   - Nop: zero-overhead tracer used when tracing is off
//   - StreamTracer: formats events as they arrive, flushed on Flush/Close
//   - RingTracer: keeps the last N events, dumped when the command ends
//   - Tee: stream and ring together (mode "both")
//
// # Levels and scopes
//
// A level selects the scopes that emit:
//
//   - LevelPhase: ScopeDriver and ScopePhase (load, compile, run, check)
//   - LevelDetail: adds ScopeQuery, one span per resolved query
//   - LevelDebug: everything, including point events
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.StartSpan(ctx, trace.ScopePhase, "load")
//	defer span.End("")
//
// Spans started from the returned ctx record span as their parent.
package trace
